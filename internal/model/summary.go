package model

// MetalBreakdown aggregates outcomes for a single declared metal.
type MetalBreakdown struct {
	Metal             string `json:"metal"`
	Total             int    `json:"total"`
	Conformant        int    `json:"conformant"`
	ConformantPercent int    `json:"conformant_percent"`
}

// StandardBreakdown aggregates outcomes for a single standard. Total is the
// count of all outcomes whose metal was checked, and ConformantPercent
// divides by that overall total rather than a per-standard subset. That
// denominator is a compatibility contract with downstream consumers of the
// published percentages; do not "fix" it.
type StandardBreakdown struct {
	Standard          Standard `json:"standard"`
	Conformant        int      `json:"conformant"`
	Total             int      `json:"total"`
	ConformantPercent int      `json:"conformant_percent"`
}

// ComparisonSummary holds aggregate counts and percentages for one
// comparison run. Recomputed on demand from the outcome list.
type ComparisonSummary struct {
	Total             int                       `json:"total"`
	ByStatus          map[ConformanceStatus]int `json:"by_status"`
	ConformantPercent int                       `json:"conformant_percent"`
	Metals            []MetalBreakdown          `json:"metals"`
	Standards         []StandardBreakdown       `json:"standards"`
}
