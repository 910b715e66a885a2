package extract

import (
	"errors"
	"strings"
	"testing"

	"resume-reviewer/internal/types"
)

func TestExtractPlainTextTypes(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		want     string
	}{
		{
			name:     "utf-8 txt",
			filename: "resume.txt",
			data:     []byte("Senior Go engineer\nBuilt distributed systems."),
			want:     "Senior Go engineer\nBuilt distributed systems.",
		},
		{
			name:     "markdown",
			filename: "resume.MD",
			data:     []byte("# Jane Doe\n- shipped things"),
			want:     "# Jane Doe\n- shipped things",
		},
		{
			name:     "latex source",
			filename: "resume.tex",
			data:     []byte(`\section{Experience}`),
			want:     `\section{Experience}`,
		},
		{
			// 0xE9 is 'é' in latin-1 and invalid as a standalone UTF-8 byte.
			name:     "latin-1 fallback",
			filename: "resume.txt",
			data:     []byte{'R', 0xE9, 's', 'u', 'm', 0xE9},
			want:     "Résumé",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.filename, tt.data)
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if got != tt.want {
				t.Errorf("Extract = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractUnsupportedType(t *testing.T) {
	for _, filename := range []string{"resume.exe", "resume.png", "resume", "resume.doc"} {
		t.Run(filename, func(t *testing.T) {
			_, err := Extract(filename, []byte("payload"))
			var extErr *types.ExtractionError
			if !errors.As(err, &extErr) {
				t.Fatalf("expected ExtractionError, got %v", err)
			}
			if !strings.Contains(extErr.Reason, "Unsupported file type") {
				t.Errorf("reason = %q, want the allow-list message", extErr.Reason)
			}
		})
	}
}

func TestExtractCorruptPDF(t *testing.T) {
	_, err := Extract("resume.pdf", []byte("definitely not a pdf"))
	var extErr *types.ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
}

func TestExtractCorruptDocx(t *testing.T) {
	_, err := Extract("resume.docx", []byte("not a zip archive"))
	var extErr *types.ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
}
