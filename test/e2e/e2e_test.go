//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"resume-reviewer/internal/client"
	"resume-reviewer/internal/config"
	"resume-reviewer/internal/domain"
	"resume-reviewer/internal/review"
	"resume-reviewer/internal/server"
	"resume-reviewer/internal/storage"

	"github.com/joho/godotenv"
)

func TestMain(m *testing.M) {
	// Optional: provider credentials for a live run. Without a .env the
	// suite runs against the mock provider and the fallback path.
	_ = godotenv.Load("../../.env")
	os.Exit(m.Run())
}

// startStack boots the full service against a temp database and returns the
// test server base URL.
func startStack(t *testing.T, mutate func(*config.Config)) string {
	t.Helper()

	cfg := config.LoadConfig()
	cfg.LLM.Provider = config.ProviderMock
	cfg.LLM.MaxRetries = 0
	cfg.LLM.Timeout = 15 * time.Second
	if mutate != nil {
		mutate(cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}

	tmpDir, err := os.MkdirTemp("", "resume-reviewer-e2e")
	if err != nil {
		t.Fatalf("temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	store, err := storage.NewSQLiteRepository(filepath.Join(tmpDir, "e2e.db"))
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	llmClient, err := client.NewLLM(context.Background(), cfg)
	if err != nil {
		t.Fatalf("llm: %v", err)
	}
	t.Cleanup(func() { llmClient.Close() })

	prompts, err := review.LoadPrompts(cfg.Prompts.Dir)
	if err != nil {
		t.Fatalf("prompts: %v", err)
	}

	api := server.New(cfg, review.New(llmClient, prompts), store)
	ts := httptest.NewServer(api.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func postJSON(t *testing.T, url string, body any) (*http.Response, []byte) {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, buf.Bytes()
}

func TestReviewFlow(t *testing.T) {
	base := startStack(t, nil)

	resp, body := postJSON(t, base+"/api/review", domain.ReviewRequest{
		ResumeText:     "",
		JobDescription: "Kotlin, RxJava, Retrofit required",
		TargetRole:     "Android Engineer",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", resp.StatusCode, body)
	}

	var result domain.ReviewResult
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if result.ATSScore < 0 || result.ATSScore > 100 {
		t.Errorf("ats_score = %d, want within [0,100]", result.ATSScore)
	}

	// Refine the result with feedback.
	resp, body = postJSON(t, base+"/api/refine", domain.RefineRequest{
		Prior:          result,
		UserFeedback:   "make the cover letter two sentences",
		JobDescription: "Kotlin, RxJava, Retrofit required",
		TargetRole:     "Android Engineer",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refine status = %d, want 200: %s", resp.StatusCode, body)
	}

	// Both rounds landed in history, most recent first.
	histResp, err := http.Get(base + "/api/history")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	defer histResp.Body.Close()

	var entries []domain.HistoryEntry
	if err := json.NewDecoder(histResp.Body).Decode(&entries); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].CreatedAt.Before(entries[1].CreatedAt) {
		t.Error("history not in most-recent-first order")
	}
}

func TestGatewayUnreachableFallsBack(t *testing.T) {
	base := startStack(t, func(cfg *config.Config) {
		// A local port nothing listens on: the gateway call fails fast and
		// the action must still complete with the labeled fallback.
		cfg.LLM.Provider = config.ProviderOllama
		cfg.LLM.Ollama.URL = "http://127.0.0.1:1"
		cfg.LLM.Timeout = 5 * time.Second
	})

	resp, body := postJSON(t, base+"/api/review", domain.ReviewRequest{
		ResumeText:     "",
		JobDescription: "Kotlin, RxJava, Retrofit required",
		TargetRole:     "Android Engineer",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", resp.StatusCode, body)
	}

	var result domain.ReviewResult
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if result.ATSScore < 0 {
		t.Errorf("ats_score = %d, want >= 0", result.ATSScore)
	}

	wanted := map[string]bool{"kotlin": true, "rxjava": true, "retrofit": true}
	found := false
	for _, k := range result.MissingKeywords {
		if wanted[strings.ToLower(k)] {
			found = true
		}
	}
	if !found {
		t.Errorf("missing_keywords = %v, want at least one of Kotlin/RxJava/Retrofit", result.MissingKeywords)
	}

	fallbackNoted := false
	for _, n := range result.Notes {
		if strings.Contains(n, "fallback") {
			fallbackNoted = true
		}
	}
	if !fallbackNoted {
		t.Errorf("notes = %v, want a fallback note", result.Notes)
	}
}

func TestRefineWithoutFeedbackRejected(t *testing.T) {
	base := startStack(t, nil)

	resp, _ := postJSON(t, base+"/api/refine", domain.RefineRequest{
		Prior:          domain.StubResult(),
		UserFeedback:   "",
		JobDescription: "jd",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	histResp, err := http.Get(base + "/api/history")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	defer histResp.Body.Close()

	var entries []domain.HistoryEntry
	if err := json.NewDecoder(histResp.Body).Decode(&entries); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("len(entries) = %d, want 0", len(entries))
	}
}

func TestIdentityAndHealth(t *testing.T) {
	base := startStack(t, nil)

	resp, err := http.Get(base + "/")
	if err != nil {
		t.Fatalf("get identity: %v", err)
	}
	defer resp.Body.Close()

	var identity struct {
		OK       bool   `json:"ok"`
		Provider string `json:"provider"`
		Model    string `json:"model"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		t.Fatalf("decode identity: %v", err)
	}
	if !identity.OK || identity.Provider == "" {
		t.Errorf("identity = %+v, want ok with a provider", identity)
	}

	for _, path := range []string{"/health/live", "/health/ready"} {
		r, err := http.Get(base + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		r.Body.Close()
		if r.StatusCode != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, r.StatusCode)
		}
	}
}
