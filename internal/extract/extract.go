// Package extract turns uploaded resume files into plain text. The allow-list
// is fixed: PDF, DOCX, TXT, MD, TEX. Anything else is an ExtractionError the
// HTTP layer maps to 415.
package extract

import (
	"bytes"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"resume-reviewer/internal/metrics"
	"resume-reviewer/internal/types"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// UnsupportedTypeDetail is the user-facing message for files outside the
// allow-list.
const UnsupportedTypeDetail = "Unsupported file type. Allowed: PDF, DOCX, TXT, MD, TEX."

var xmlTags = regexp.MustCompile(`<[^>]+>`)

// Extract returns the plain text of an uploaded file, dispatching on the
// filename extension.
func Extract(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var (
		text string
		err  error
	)
	switch ext {
	case ".pdf":
		text, err = extractPDF(filename, data)
	case ".docx":
		text, err = extractDocx(filename, data)
	case ".txt", ".md", ".tex":
		text = extractPlainText(data)
	default:
		metrics.ExtractionsTotal.WithLabelValues(ext, "unsupported").Inc()
		return "", types.NewExtractionError(filename, UnsupportedTypeDetail, nil)
	}

	if err != nil {
		metrics.ExtractionsTotal.WithLabelValues(ext, "error").Inc()
		return "", err
	}
	metrics.ExtractionsTotal.WithLabelValues(ext, "success").Inc()
	return text, nil
}

// extractPDF concatenates per-page plain text. Pages that fail to extract are
// skipped rather than failing the whole document.
func extractPDF(filename string, data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", types.NewExtractionError(filename, "unreadable pdf", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String()), nil
}

// extractDocx reads the document XML and strips the markup, keeping paragraph
// boundaries as newlines.
func extractDocx(filename string, data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", types.NewExtractionError(filename, "unreadable docx", err)
	}
	defer doc.Close()

	content := doc.Editable().GetContent()
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	content = strings.ReplaceAll(content, "<w:tab/>", "\t")
	content = xmlTags.ReplaceAllString(content, "")
	return strings.TrimSpace(content), nil
}

// extractPlainText decodes UTF-8 input directly and falls back to latin-1 for
// invalid byte sequences, so legacy-encoded resumes still come through.
func extractPlainText(data []byte) string {
	if utf8.Valid(data) {
		return strings.TrimSpace(string(data))
	}

	runes := make([]rune, 0, len(data))
	for _, b := range data {
		runes = append(runes, rune(b))
	}
	return strings.TrimSpace(string(runes))
}
