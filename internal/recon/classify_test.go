package recon

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/smelter-recon/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		status string
		want   model.ConformanceStatus
	}{
		{"Conformant", model.StatusConformant},
		{"CMRT: Conformant", model.StatusConformant},
		{"conformant smelter", model.StatusConformant},
		{"Conform", model.StatusConformant},
		{"Active", model.StatusActive},
		{"EMRT: Active", model.StatusActive},
		{"Non-Conformant", model.StatusNonConformant},
		{"non conformant", model.StatusNonConformant},
		{"pending review", model.StatusAttentionRequired},
		{"", model.StatusAttentionRequired},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.status), "status %q", tt.status)
	}
}

// "CMRT: Non-Conformant" contains the substring "conformant"; the
// non-conformant check must win.
func TestClassify_NonConformantBeforeConformant(t *testing.T) {
	assert.Equal(t, model.StatusNonConformant, Classify("CMRT: Non-Conformant"))
}

func TestClassifyResult_NoneTier(t *testing.T) {
	got := classifyResult(MatchResult{Tier: model.TierNone}, DefaultClassifyGate)
	assert.Equal(t, model.StatusAttentionRequired, got)
}

func TestClassifyResult_ExactTrustsStatus(t *testing.T) {
	conf := 1.0
	res := MatchResult{
		Tier:       model.TierExact,
		Confidence: &conf,
		Matched:    &model.ReferenceFacility{AssessmentStatus: "CMRT: Conformant"},
	}
	assert.Equal(t, model.StatusConformant, classifyResult(res, DefaultClassifyGate))
}

func TestClassifyResult_FuzzyBelowGate(t *testing.T) {
	conf := 0.7
	res := MatchResult{
		Tier:       model.TierFuzzy,
		Confidence: &conf,
		Matched:    &model.ReferenceFacility{AssessmentStatus: "CMRT: Conformant"},
	}
	// A moderate-confidence name match must not assert conformance.
	assert.Equal(t, model.StatusAttentionRequired, classifyResult(res, DefaultClassifyGate))
}

func TestClassifyResult_FuzzyAboveGate(t *testing.T) {
	conf := 0.9
	res := MatchResult{
		Tier:       model.TierFuzzy,
		Confidence: &conf,
		Matched:    &model.ReferenceFacility{AssessmentStatus: "CMRT: Non-Conformant"},
	}
	assert.Equal(t, model.StatusNonConformant, classifyResult(res, DefaultClassifyGate))
}
