package agent

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"resume-reviewer/internal/config"
	"resume-reviewer/internal/types"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

const (
	appName    = "resume-review"
	reviewUser = "reviewer"
)

// ReviewAgent implements llm.Client on top of ADK-Go with a Gemini model.
// Each completion runs an ephemeral single-turn agent: the system prompt
// becomes the agent instruction and the user prompt the sole message.
type ReviewAgent struct {
	llm            model.LLM
	sessionService session.Service
	modelName      string
	timeout        time.Duration
	sem            chan struct{}
}

// NewReviewAgent creates a Gemini-backed review agent.
func NewReviewAgent(ctx context.Context, cfg config.GeminiConfig, timeout time.Duration, maxConcurrency int) (*ReviewAgent, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}

	m, err := gemini.NewModel(ctx, cfg.Model, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini model: %w", err)
	}

	return &ReviewAgent{
		llm:            m,
		sessionService: session.InMemoryService(),
		modelName:      cfg.Model,
		timeout:        timeout,
		sem:            make(chan struct{}, maxConcurrency),
	}, nil
}

// Provider returns the provider name.
func (ra *ReviewAgent) Provider() string {
	return config.ProviderGemini
}

// Model returns the configured model name.
func (ra *ReviewAgent) Model() string {
	return ra.modelName
}

// Close releases provider resources.
func (ra *ReviewAgent) Close() error {
	return nil
}

// Ping sends a minimal request to verify connection
func (ra *ReviewAgent) Ping(ctx context.Context) error {
	req := &model.LLMRequest{
		Contents: []*genai.Content{
			{Role: "user", Parts: []*genai.Part{{Text: "hello"}}},
		},
		Config: &genai.GenerateContentConfig{MaxOutputTokens: 1},
	}
	for _, err := range ra.llm.GenerateContent(ctx, req, false) {
		if err != nil {
			return fmt.Errorf("gemini ping failed: %w", err)
		}
	}
	return nil
}

// Complete runs one agent turn and returns the raw final response text.
func (ra *ReviewAgent) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if ra.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ra.timeout)
		defer cancel()
	}

	select {
	case ra.sem <- struct{}{}:
		defer func() { <-ra.sem }()
	case <-ctx.Done():
		return "", ctx.Err()
	}

	adkAgent, err := llmagent.New(
		llmagent.Config{
			Name:        "resume_review_agent",
			Description: "Evaluates a resume against a job description",
			Model:       &jsonLLM{LLM: ra.llm},
			Instruction: systemPrompt,
		},
	)
	if err != nil {
		return "", fmt.Errorf("create agent: %w", err)
	}

	r, err := runner.New(runner.Config{
		AppName:        appName,
		Agent:          adkAgent,
		SessionService: ra.sessionService,
	})
	if err != nil {
		return "", fmt.Errorf("create runner: %w", err)
	}

	// Unique session ID per run to avoid conflicts in parallel execution
	sessionID := uuid.NewString()

	if _, err := ra.sessionService.Create(ctx, &session.CreateRequest{
		AppName:   appName,
		UserID:    reviewUser,
		SessionID: sessionID,
	}); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := ra.sessionService.Delete(cleanupCtx, &session.DeleteRequest{
			AppName:   appName,
			UserID:    reviewUser,
			SessionID: sessionID,
		}); err != nil {
			slog.Debug("delete session failed", "session_id", sessionID, "error", err)
		}
	}()

	msg := &genai.Content{
		Role: "user",
		Parts: []*genai.Part{
			{Text: userPrompt},
		},
	}

	var finalText string
	for event, err := range r.Run(ctx, reviewUser, sessionID, msg, agent.RunConfig{}) {
		if err != nil {
			return "", types.NewGatewayError(ra.Provider(), fmt.Errorf("agent exec: %w", err), false)
		}
		if event.IsFinalResponse() {
			for _, part := range event.LLMResponse.Content.Parts {
				finalText += part.Text
			}
		}
	}

	if finalText == "" {
		return "", types.NewGatewayError(ra.Provider(), errors.New("no response content"), false)
	}

	return finalText, nil
}

// jsonLLM is a wrapper around model.LLM that pins the JSON response mime type
type jsonLLM struct {
	model.LLM
}

func (j *jsonLLM) GenerateContent(ctx context.Context, req *model.LLMRequest, streaming bool) iter.Seq2[*model.LLMResponse, error] {
	if req.Config == nil {
		req.Config = &genai.GenerateContentConfig{}
	}
	req.Config.ResponseMIMEType = "application/json"
	return j.LLM.GenerateContent(ctx, req, streaming)
}
