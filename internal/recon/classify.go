package recon

import (
	"strings"

	"github.com/sells-group/smelter-recon/internal/model"
)

// DefaultClassifyGate is the minimum fuzzy confidence required before the
// matched record's status text is trusted; a moderate-confidence name match
// must not assert conformance.
const DefaultClassifyGate = 0.8

// Classify maps a matched record's raw assessment-status text to a
// conformance status. The non-conformant test runs before the conformant
// substring test; "Non-Conformant" contains "conformant" and would
// misclassify otherwise.
func Classify(statusText string) model.ConformanceStatus {
	_, remainder, _ := SplitStandardPrefix(statusText)
	lower := strings.ToLower(remainder)

	switch {
	case strings.Contains(lower, "non-conformant"), strings.Contains(lower, "non conformant"):
		return model.StatusNonConformant
	case strings.Contains(lower, "conform"):
		return model.StatusConformant
	case strings.Contains(lower, "active"):
		return model.StatusActive
	default:
		return model.StatusAttentionRequired
	}
}

// classifyResult assigns the final status for a match result. Unmatched
// facilities always need attention, as do fuzzy matches below the gate.
func classifyResult(res MatchResult, gate float64) model.ConformanceStatus {
	if res.Tier == model.TierNone || res.Matched == nil {
		return model.StatusAttentionRequired
	}
	if res.Tier == model.TierFuzzy && (res.Confidence == nil || *res.Confidence < gate) {
		return model.StatusAttentionRequired
	}
	return Classify(res.Matched.AssessmentStatus)
}
