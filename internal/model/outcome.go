package model

// MatchTier is the match strength category used to reach an outcome.
type MatchTier string

const (
	TierNone  MatchTier = "none"
	TierExact MatchTier = "exact"
	TierFuzzy MatchTier = "fuzzy"
)

// ConformanceStatus is the final classification assigned to a declared
// facility after matching.
type ConformanceStatus string

const (
	StatusConformant        ConformanceStatus = "conformant"
	StatusActive            ConformanceStatus = "active"
	StatusNonConformant     ConformanceStatus = "non_conformant"
	StatusAttentionRequired ConformanceStatus = "attention_required"
)

// MatchOutcome is the result of reconciling one declared facility against
// the reference index. Confidence is nil when Tier is TierNone, 1.0 for
// exact matches, and the fuzzy similarity score otherwise. Never mutated
// after creation.
type MatchOutcome struct {
	Supplier         string             `json:"supplier"`
	Declared         DeclaredFacility   `json:"declared"`
	Tier             MatchTier          `json:"tier"`
	Confidence       *float64           `json:"confidence,omitempty"`
	Matched          *ReferenceFacility `json:"matched,omitempty"`
	MatchedStandards []Standard         `json:"matched_standards,omitempty"`
	Status           ConformanceStatus  `json:"status"`
}

// HasStandard reports whether the outcome's matched-standards set contains s.
func (o MatchOutcome) HasStandard(s Standard) bool {
	for _, m := range o.MatchedStandards {
		if m == s {
			return true
		}
	}
	return false
}
