package recon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/smelter-recon/internal/model"
)

func outcome(metal string, status model.ConformanceStatus, standards ...model.Standard) model.MatchOutcome {
	return model.MatchOutcome{
		Declared:         model.DeclaredFacility{Metal: metal, Name: "x"},
		Status:           status,
		MatchedStandards: standards,
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, []model.Standard{model.StandardCMRT}, []string{"Gold"})

	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 0, s.ConformantPercent)
	for _, count := range s.ByStatus {
		assert.Equal(t, 0, count)
	}
	require.Len(t, s.Metals, 1)
	assert.Equal(t, 0, s.Metals[0].Total)
	assert.Equal(t, 0, s.Metals[0].ConformantPercent)
	require.Len(t, s.Standards, 1)
	assert.Equal(t, 0, s.Standards[0].ConformantPercent)
}

func TestSummarize_Counts(t *testing.T) {
	outcomes := []model.MatchOutcome{
		outcome("Gold", model.StatusConformant, model.StandardCMRT),
		outcome("Gold", model.StatusActive, model.StandardCMRT),
		outcome("Tin", model.StatusNonConformant, model.StandardCMRT),
		outcome("Tin", model.StatusAttentionRequired),
	}
	s := Summarize(outcomes, []model.Standard{model.StandardCMRT}, []string{"Gold", "Tin"})

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.ByStatus[model.StatusConformant])
	assert.Equal(t, 1, s.ByStatus[model.StatusActive])
	assert.Equal(t, 1, s.ByStatus[model.StatusNonConformant])
	assert.Equal(t, 1, s.ByStatus[model.StatusAttentionRequired])
	assert.Equal(t, 25, s.ConformantPercent)
}

func TestSummarize_PerMetal(t *testing.T) {
	outcomes := []model.MatchOutcome{
		outcome("Gold", model.StatusConformant, model.StandardCMRT),
		outcome("Gold", model.StatusConformant, model.StandardCMRT),
		outcome("gold", model.StatusAttentionRequired), // metal compare ignores case
		outcome("Tin", model.StatusConformant, model.StandardCMRT),
	}
	s := Summarize(outcomes, nil, []string{"Gold", "Tin", "Tantalum"})

	require.Len(t, s.Metals, 3)

	gold := s.Metals[0]
	assert.Equal(t, 3, gold.Total)
	assert.Equal(t, 2, gold.Conformant)
	assert.Equal(t, 67, gold.ConformantPercent)

	tin := s.Metals[1]
	assert.Equal(t, 1, tin.Total)
	assert.Equal(t, 100, tin.ConformantPercent)

	tantalum := s.Metals[2]
	assert.Equal(t, 0, tantalum.Total)
	assert.Equal(t, 0, tantalum.ConformantPercent)
}

// The per-standard percentage divides by all checked outcomes, not the
// per-standard subset. That denominator is a compatibility contract.
func TestSummarize_PerStandardDenominator(t *testing.T) {
	outcomes := []model.MatchOutcome{
		outcome("Gold", model.StatusConformant, model.StandardCMRT),
		outcome("Gold", model.StatusConformant, model.StandardEMRT),
		outcome("Gold", model.StatusAttentionRequired),
		outcome("Gold", model.StatusAttentionRequired),
	}
	s := Summarize(outcomes, []model.Standard{model.StandardCMRT, model.StandardEMRT}, []string{"Gold"})

	require.Len(t, s.Standards, 2)

	cmrt := s.Standards[0]
	assert.Equal(t, 1, cmrt.Conformant)
	assert.Equal(t, 4, cmrt.Total)
	// 1 CMRT-conformant out of 4 checked outcomes, not 1 of 1.
	assert.Equal(t, 25, cmrt.ConformantPercent)

	emrt := s.Standards[1]
	assert.Equal(t, 1, emrt.Conformant)
	assert.Equal(t, 25, emrt.ConformantPercent)
}

func TestSummarize_StandardRequiresConformantStatus(t *testing.T) {
	outcomes := []model.MatchOutcome{
		outcome("Gold", model.StatusActive, model.StandardCMRT),
	}
	s := Summarize(outcomes, []model.Standard{model.StandardCMRT}, []string{"Gold"})

	require.Len(t, s.Standards, 1)
	assert.Equal(t, 0, s.Standards[0].Conformant)
}

func TestSummarize_UncheckedMetalExcludedFromStandardTotal(t *testing.T) {
	outcomes := []model.MatchOutcome{
		outcome("Gold", model.StatusConformant, model.StandardCMRT),
		outcome("Cobalt", model.StatusConformant, model.StandardCMRT),
	}
	s := Summarize(outcomes, []model.Standard{model.StandardCMRT}, []string{"Gold"})

	require.Len(t, s.Standards, 1)
	assert.Equal(t, 1, s.Standards[0].Total)
	assert.Equal(t, 2, s.Standards[0].Conformant)
}

func TestPercent_Rounding(t *testing.T) {
	assert.Equal(t, 0, percent(0, 0))
	assert.Equal(t, 33, percent(1, 3))
	assert.Equal(t, 67, percent(2, 3))
	assert.Equal(t, 50, percent(1, 2))
}
