package domain

// StubResult returns the deterministic review served when the mock provider
// is selected or a live provider fails. Each call returns a fresh copy so
// callers can append notes without sharing slices.
func StubResult() ReviewResult {
	return ReviewResult{
		ATSScore:        84,
		MissingKeywords: []string{"Kotlin", "RxJava", "ATS"},
		ImprovedBullets: []string{
			"Boosted Android cold-start by 42% via lazy-loading and Retrofit caching.",
			"Designed 6 REST endpoints (FastAPI) serving 15k DAU; cut P95 latency 35% using async IO and caching.",
			"Optimized PostgreSQL ETL: 2 days→2 hours via bulk ops + index tuning.",
		},
		PositioningSummary: "Android/Backend engineer focused on performance; collaborative across teams.",
		ShortCoverLetter:   "Dear Hiring Team, I’m excited to apply for ...",
		Notes:              []string{"Align with JD keywords", "Quantify outcomes", "Keep bullets ≤ 2 lines"},
	}
}
