package review

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"resume-reviewer/internal/config"
	"resume-reviewer/internal/domain"
)

// defaultSystemPrompt pins the evaluator persona and the strict JSON contract.
const defaultSystemPrompt = "You are a Senior Tech Recruiter and ATS evaluator at a global tech company. " +
	"Return STRICT JSON only with keys: ats_score, missing_keywords, improved_bullets, " +
	"positioning_summary, short_cover_letter, notes. No prose outside JSON."

// defaultFewShot shows the model three bullet transforms and the exact result
// shape before it sees the caller's inputs.
const defaultFewShot = "Bullet Transform Examples:\n" +
	"OLD: Improved app performance.\n" +
	"NEW: Boosted Android cold-start by 42% via lazy-loading and Retrofit caching.\n\n" +
	"OLD: Worked on backend APIs.\n" +
	"NEW: Designed 6 REST endpoints (FastAPI) serving 15k DAU; cut P95 latency 35% using async IO and caching.\n\n" +
	"OLD: Helped migrate database.\n" +
	"NEW: Led PostgreSQL migration (v12→v14) with zero-downtime; reduced ETL 2 days→2 hours via bulk ops + index tuning.\n\n" +
	"JSON Example:\n" +
	"{\n" +
	"  \"ats_score\": 82,\n" +
	"  \"missing_keywords\": [\"Kotlin\", \"RxJava\"],\n" +
	"  \"improved_bullets\": [\"Scaled search throughput 10x ...\"],\n" +
	"  \"positioning_summary\": \"...\",\n" +
	"  \"short_cover_letter\": \"...\",\n" +
	"  \"notes\": [\"...\"]\n" +
	"}"

// Prompts holds the system and few-shot blocks sent with every request.
type Prompts struct {
	System  string
	FewShot string
}

// LoadPrompts returns the prompt set, preferring override files under dir and
// falling back to the compiled-in defaults. A missing file is normal; any
// other read failure is surfaced so a broken override is not silently ignored.
func LoadPrompts(dir string) (Prompts, error) {
	p := Prompts{System: defaultSystemPrompt, FewShot: defaultFewShot}

	system, err := loadOverride(filepath.Join(dir, config.PromptFileSystem))
	if err != nil {
		return p, err
	}
	if system != "" {
		slog.Info("system prompt override loaded", "dir", dir)
		p.System = system
	}

	fewShot, err := loadOverride(filepath.Join(dir, config.PromptFileFewShot))
	if err != nil {
		return p, err
	}
	if fewShot != "" {
		slog.Info("few-shot prompt override loaded", "dir", dir)
		p.FewShot = fewShot
	}

	return p, nil
}

func loadOverride(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read prompt %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// buildReviewPrompt composes the user message for a first review round. The
// caller's inputs go in verbatim inside fenced blocks.
func buildReviewPrompt(req domain.ReviewRequest) string {
	return "Task: Evaluate RESUME vs JD and return STRICT JSON per schema. " +
		"Improve 3–6 bullets with quantified outcomes.\n" +
		"Target role: " + roleOrNA(req.TargetRole) + "\n\n" +
		"JD:\n```text\n" + req.JobDescription + "\n```\n\n" +
		"RESUME:\n```text\n" + req.ResumeText + "\n```\n\n" +
		"Requirements:\n" +
		"- Follow the System Prompt and Few-shot above.\n" +
		"- Do NOT output anything except the JSON object."
}

// buildRefinePrompt composes the follow-up message: the serialized prior
// result plus the literal feedback, asking for minimal targeted changes in
// the same schema.
func buildRefinePrompt(req domain.RefineRequest, priorJSON string) string {
	return "You will refine the prior JSON output based on user feedback. " +
		"Apply minimal, targeted changes; do not regenerate from scratch. " +
		"Keep the same JSON schema and constraints.\n\n" +
		"User feedback:\n```text\n" + req.UserFeedback + "\n```\n\n" +
		"Prior Output JSON:\n```json\n" + priorJSON + "\n```\n\n" +
		"JD:\n```text\n" + req.JobDescription + "\n```\n\n" +
		"RESUME:\n```text\n" + req.ResumeText + "\n```\n\n" +
		"Return STRICT JSON only (same keys)."
}

func roleOrNA(role string) string {
	if role == "" {
		return "N/A"
	}
	return role
}
