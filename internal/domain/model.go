package domain

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// ReviewRequest carries the inputs for one review round.
// All fields may be empty; empty inputs are legal and produce a best-effort
// result rather than an error.
type ReviewRequest struct {
	ResumeText     string `json:"resume_text"`
	JobDescription string `json:"job_description"`
	TargetRole     string `json:"target_role,omitempty"`
}

// ReviewResult is the structured outcome of a review or refine round.
// It is produced fresh per request and never merged with prior results
// except explicitly via refine. Slice fields are non-nil after
// normalization so they serialize as [] rather than null.
type ReviewResult struct {
	ATSScore           int      `json:"ats_score"`
	MissingKeywords    []string `json:"missing_keywords"`
	ImprovedBullets    []string `json:"improved_bullets"`
	PositioningSummary string   `json:"positioning_summary"`
	ShortCoverLetter   string   `json:"short_cover_letter"`
	Notes              []string `json:"notes"`
}

// RefineRequest extends ReviewRequest with the prior result and mandatory
// user feedback. The refined output is expected to be a minimal adjustment
// of Prior; that expectation lives in the prompt, not in any validation here.
type RefineRequest struct {
	Prior          ReviewResult `json:"prior"`
	UserFeedback   string       `json:"user_feedback" validate:"required"`
	ResumeText     string       `json:"resume_text"`
	JobDescription string       `json:"job_description"`
	TargetRole     string       `json:"target_role,omitempty"`
}

// Validate validates the RefineRequest using the validator.
func (r *RefineRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// HistoryEntry is one completed session snapshot kept by the history store.
// EnvironmentLabel records which backend produced the result as
// "provider·model", e.g. "openai·gpt-4o-mini".
type HistoryEntry struct {
	ID                 string       `json:"id"`
	CreatedAt          time.Time    `json:"created_at"`
	TargetRole         string       `json:"target_role"`
	JobDescription     string       `json:"job_description"`
	ResumeDisplayName  string       `json:"resume_display_name"`
	ResumeTextSnapshot string       `json:"resume_text_snapshot"`
	EnvironmentLabel   string       `json:"environment_label"`
	Result             ReviewResult `json:"result"`
}
