package domain

import (
	"encoding/json"
	"testing"
)

func TestRefineRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     RefineRequest
		wantErr bool
	}{
		{
			name: "feedback present",
			req: RefineRequest{
				UserFeedback:   "make the cover letter shorter",
				ResumeText:     "some resume",
				JobDescription: "some jd",
			},
			wantErr: false,
		},
		{
			name: "feedback missing",
			req: RefineRequest{
				ResumeText:     "some resume",
				JobDescription: "some jd",
			},
			wantErr: true,
		},
		{
			name:    "everything empty",
			req:     RefineRequest{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestReviewResultJSONShape(t *testing.T) {
	res := ReviewResult{
		ATSScore:           82,
		MissingKeywords:    []string{"Kotlin", "RxJava"},
		ImprovedBullets:    []string{"Scaled search throughput 10x"},
		PositioningSummary: "Android engineer focused on performance.",
		ShortCoverLetter:   "Dear Hiring Team,",
		Notes:              []string{},
	}

	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, key := range []string{"ats_score", "missing_keywords", "improved_bullets", "positioning_summary", "short_cover_letter", "notes"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("expected key %q in serialized result", key)
		}
	}

	if _, ok := decoded["notes"].([]any); !ok {
		t.Errorf("expected notes to serialize as an array, got %T", decoded["notes"])
	}
}
