package review

import (
	"strings"

	"resume-reviewer/internal/domain"
)

// skillTokens is the vocabulary scanned when enriching the fallback result.
// Deliberately small: it only needs to make the stub's missing_keywords
// reflect the actual job description instead of being purely canned.
var skillTokens = []string{
	"Kotlin", "RxJava", "Retrofit", "Java", "Swift", "Android", "iOS",
	"Go", "Python", "TypeScript", "JavaScript", "React", "Vue", "Node.js",
	"FastAPI", "Django", "Spring", "gRPC", "GraphQL", "REST",
	"PostgreSQL", "MySQL", "MongoDB", "Redis", "Kafka", "RabbitMQ", "SQL",
	"Docker", "Kubernetes", "Terraform", "AWS", "GCP", "Azure", "CI/CD",
}

// Fallback returns the deterministic stub review served when the provider is
// unreachable or errored. The canned keyword set is enriched with skill
// tokens that appear in the job description but not in the resume, and a note
// carrying the reason labels the result as a fallback.
func Fallback(req domain.ReviewRequest, reason string) domain.ReviewResult {
	res := domain.StubResult()
	res.MissingKeywords = mergeKeywords(res.MissingKeywords, missingSkills(req.JobDescription, req.ResumeText))
	res.Notes = append(res.Notes, reason+"; using fallback result.")
	return res
}

// missingSkills returns the known skill tokens present in the job description
// and absent from the resume, case-insensitively, in vocabulary order.
func missingSkills(jobDescription, resumeText string) []string {
	jd := strings.ToLower(jobDescription)
	resume := strings.ToLower(resumeText)

	var missing []string
	for _, token := range skillTokens {
		lower := strings.ToLower(token)
		if strings.Contains(jd, lower) && !strings.Contains(resume, lower) {
			missing = append(missing, token)
		}
	}
	return missing
}

func mergeKeywords(base, extra []string) []string {
	seen := make(map[string]bool, len(base))
	for _, k := range base {
		seen[strings.ToLower(k)] = true
	}
	for _, k := range extra {
		if !seen[strings.ToLower(k)] {
			base = append(base, k)
			seen[strings.ToLower(k)] = true
		}
	}
	return base
}
