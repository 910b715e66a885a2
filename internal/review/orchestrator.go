// Package review composes prompts, calls the model gateway once per action,
// and normalizes the raw output into the result contract. Provider failures
// become a labeled fallback result, so a review action always completes.
package review

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"resume-reviewer/internal/domain"
	"resume-reviewer/internal/llm"
	"resume-reviewer/internal/metrics"
	"resume-reviewer/internal/normalize"
	"resume-reviewer/internal/types"
)

// Orchestrator runs review and refine rounds against a model gateway.
// It never persists anything; history is the caller's concern.
type Orchestrator struct {
	llm     llm.Client
	prompts Prompts
}

// New creates an orchestrator over the given gateway client.
func New(client llm.Client, prompts Prompts) *Orchestrator {
	return &Orchestrator{llm: client, prompts: prompts}
}

// Review evaluates a resume against a job description and returns the
// structured result. A gateway failure yields the deterministic fallback
// result instead of an error; a NormalizationError is returned together with
// the degraded result it describes.
func (o *Orchestrator) Review(ctx context.Context, req domain.ReviewRequest) (domain.ReviewResult, error) {
	return o.run(ctx, "review", req, buildReviewPrompt(req))
}

// Refine folds the prior result and the user's feedback into a follow-up
// round with the same schema. Empty feedback is rejected before any outbound
// call.
func (o *Orchestrator) Refine(ctx context.Context, req domain.RefineRequest) (domain.ReviewResult, error) {
	if err := req.Validate(); err != nil {
		return domain.ReviewResult{}, types.NewValidationError("user_feedback", "feedback text is required")
	}

	priorJSON, err := json.Marshal(req.Prior)
	if err != nil {
		return domain.ReviewResult{}, fmt.Errorf("marshal prior result: %w", err)
	}

	base := domain.ReviewRequest{
		ResumeText:     req.ResumeText,
		JobDescription: req.JobDescription,
		TargetRole:     req.TargetRole,
	}
	return o.run(ctx, "refine", base, buildRefinePrompt(req, string(priorJSON)))
}

// run executes one gateway round trip: exactly one Complete call, then
// normalization. No retry loop lives here; retries are the client's concern.
func (o *Orchestrator) run(ctx context.Context, kind string, req domain.ReviewRequest, userPrompt string) (domain.ReviewResult, error) {
	provider := o.llm.Provider()
	start := time.Now()
	defer func() {
		metrics.ReviewDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	}()

	raw, err := o.llm.Complete(ctx, o.prompts.System, o.prompts.FewShot+"\n\n"+userPrompt)
	if err != nil {
		slog.Warn("model gateway failed, serving fallback",
			"kind", kind, "provider", provider, "error", err)
		metrics.GatewayErrors.WithLabelValues(provider).Inc()
		metrics.ReviewsTotal.WithLabelValues(kind, "fallback").Inc()
		reason := fmt.Sprintf("%s error: %s", provider, truncate(err.Error(), 200))
		return Fallback(req, reason), nil
	}

	result, err := normalize.Normalize(raw)
	if err != nil {
		slog.Warn("model output degraded", "kind", kind, "provider", provider, "error", err)
		metrics.ReviewsTotal.WithLabelValues(kind, "degraded").Inc()
		return result, err
	}

	metrics.ReviewsTotal.WithLabelValues(kind, "ok").Inc()
	return result, nil
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
