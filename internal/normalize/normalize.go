// Package normalize coerces raw model output into the review result contract.
// The model is asked for strict JSON but is not trusted to deliver it: the
// parse order is strict, then repair-once, then degrade. A degraded result is
// still a usable result; nothing in this package panics or returns nil slices.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"resume-reviewer/internal/domain"
	"resume-reviewer/internal/metrics"
	"resume-reviewer/internal/types"

	"github.com/tidwall/gjson"
)

// Normalize parses raw model output into a ReviewResult.
//
// A strict JSON pass runs first. On failure a single repair pass strips
// markdown code fences, falls back to the first '{'..last '}' substring, and
// re-parses with tolerant per-field coercion; exactly one note describing the
// repair is appended to the result. When no JSON object can be recovered the
// returned result is zeroed with the failure explained in its notes, alongside
// a NormalizationError; callers surface that result instead of failing.
func Normalize(raw string) (domain.ReviewResult, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		metrics.NormalizationsTotal.WithLabelValues("degraded").Inc()
		return degraded("model returned an empty response"),
			types.NewNormalizationError("empty response")
	}

	var res domain.ReviewResult
	if err := json.Unmarshal([]byte(trimmed), &res); err == nil {
		finalize(&res)
		metrics.NormalizationsTotal.WithLabelValues("strict").Inc()
		return res, nil
	}

	cleaned := types.CleanJSONFromMarkdown(trimmed)
	repair := "stripped markdown code fences"
	if cleaned == trimmed {
		// Nothing was stripped; the strict pass failed on field shape.
		repair = "coerced mistyped fields"
	}
	doc := gjson.Parse(cleaned)
	if !gjson.Valid(cleaned) || !doc.IsObject() {
		// A valid scalar (a quoted refusal, a bare number) is not a result.
		obj, ok := types.ExtractJSONObject(cleaned)
		if !ok || !gjson.Valid(obj) || !gjson.Parse(obj).IsObject() {
			metrics.NormalizationsTotal.WithLabelValues("degraded").Inc()
			return degraded("model output contained no JSON object"),
				types.NewNormalizationError("no JSON object in response")
		}
		doc = gjson.Parse(obj)
		repair = "extracted the JSON object from surrounding prose"
	}

	res = coerce(doc)
	res.Notes = append(res.Notes, "Response repaired: "+repair+".")
	finalize(&res)
	metrics.NormalizationsTotal.WithLabelValues("repaired").Inc()
	return res, nil
}

// coerce builds a result field by field from a parsed JSON document. Missing
// fields default to empty, numeric strings count as numbers, and sequence
// elements are stringified whatever their type.
func coerce(doc gjson.Result) domain.ReviewResult {
	return domain.ReviewResult{
		ATSScore:           int(doc.Get("ats_score").Int()),
		MissingKeywords:    stringSlice(doc.Get("missing_keywords")),
		ImprovedBullets:    stringSlice(doc.Get("improved_bullets")),
		PositioningSummary: doc.Get("positioning_summary").String(),
		ShortCoverLetter:   doc.Get("short_cover_letter").String(),
		Notes:              stringSlice(doc.Get("notes")),
	}
}

func stringSlice(v gjson.Result) []string {
	out := []string{}
	if !v.IsArray() {
		return out
	}
	for _, item := range v.Array() {
		out = append(out, item.String())
	}
	return out
}

// finalize enforces the numeric policy and the non-nil slice contract on a
// parsed result. Scores outside [0,100] are clamped with a note so the
// discrepancy stays visible to the end user.
func finalize(res *domain.ReviewResult) {
	if res.MissingKeywords == nil {
		res.MissingKeywords = []string{}
	}
	if res.ImprovedBullets == nil {
		res.ImprovedBullets = []string{}
	}
	if res.Notes == nil {
		res.Notes = []string{}
	}

	switch {
	case res.ATSScore < 0:
		res.Notes = append(res.Notes, fmt.Sprintf("ats_score %d below range; clamped to 0.", res.ATSScore))
		res.ATSScore = 0
	case res.ATSScore > 100:
		res.Notes = append(res.Notes, fmt.Sprintf("ats_score %d above range; clamped to 100.", res.ATSScore))
		res.ATSScore = 100
	}
}

// degraded returns the zeroed result served when normalization fails outright.
func degraded(reason string) domain.ReviewResult {
	return domain.ReviewResult{
		ATSScore:        0,
		MissingKeywords: []string{},
		ImprovedBullets: []string{},
		Notes:           []string{"Could not parse model output: " + reason + "."},
	}
}
