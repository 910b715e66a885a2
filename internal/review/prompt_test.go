package review

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resume-reviewer/internal/config"
	"resume-reviewer/internal/domain"
)

func TestLoadPromptsDefaults(t *testing.T) {
	p, err := LoadPrompts(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("LoadPrompts: %v", err)
	}
	if !strings.Contains(p.System, "Senior Tech Recruiter") {
		t.Error("default system prompt missing the persona")
	}
	if !strings.Contains(p.FewShot, "Bullet Transform Examples") {
		t.Error("default few-shot missing the bullet examples")
	}
	if !strings.Contains(p.FewShot, "\"ats_score\": 82") {
		t.Error("default few-shot missing the JSON shape example")
	}
}

func TestLoadPromptsFileOverride(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.PromptFileSystem), []byte("custom persona\n"), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}

	p, err := LoadPrompts(dir)
	if err != nil {
		t.Fatalf("LoadPrompts: %v", err)
	}
	if p.System != "custom persona" {
		t.Errorf("system prompt = %q, want the file override", p.System)
	}
	// Only system.md was overridden; few_shot keeps the default.
	if !strings.Contains(p.FewShot, "Bullet Transform Examples") {
		t.Error("few-shot should fall back to the default")
	}
}

func TestFallbackKeywordEnrichment(t *testing.T) {
	tests := []struct {
		name    string
		jd      string
		resume  string
		want    []string
		notWant []string
	}{
		{
			name:   "jd skills absent from resume",
			jd:     "Kotlin, RxJava, Retrofit required",
			resume: "",
			want:   []string{"Kotlin", "RxJava", "Retrofit"},
		},
		{
			name:    "skills already on the resume are not missing",
			jd:      "Docker and Kubernetes experience",
			resume:  "Ran Docker in production for 3 years",
			want:    []string{"Kubernetes"},
			notWant: []string{"Docker"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := missingSkills(tt.jd, tt.resume)
			set := make(map[string]bool, len(got))
			for _, k := range got {
				set[k] = true
			}
			for _, w := range tt.want {
				if !set[w] {
					t.Errorf("missingSkills(%q, %q) = %v, want %q included", tt.jd, tt.resume, got, w)
				}
			}
			for _, nw := range tt.notWant {
				if set[nw] {
					t.Errorf("missingSkills(%q, %q) = %v, want %q excluded", tt.jd, tt.resume, got, nw)
				}
			}
		})
	}
}

func TestFallbackDeduplicatesKeywords(t *testing.T) {
	res := Fallback(domain.ReviewRequest{
		JobDescription: "Kotlin and RxJava and ATS tooling",
	}, "test reason")

	seen := make(map[string]int)
	for _, k := range res.MissingKeywords {
		seen[strings.ToLower(k)]++
	}
	for k, n := range seen {
		if n > 1 {
			t.Errorf("keyword %q appears %d times, want 1", k, n)
		}
	}
}
