package recon

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/smelter-recon/internal/model"
)

func acmeIndex() *Index {
	return BuildIndex([]model.ReferenceFacility{
		{FacilityID: "F1", StandardName: "Acme Smelting Ltd", Metal: "Gold", AssessmentStatus: "CMRT: Conformant"},
	})
}

func TestCompare_ExactNameMatch(t *testing.T) {
	engine := NewEngine(acmeIndex(), Options{})
	outcomes, err := engine.Compare(context.Background(), "Initech Supply", []model.DeclaredFacility{
		{Metal: "Gold", Name: "ACME SMELTING"},
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)

	o := outcomes[0]
	assert.Equal(t, "Initech Supply", o.Supplier)
	assert.Equal(t, model.TierExact, o.Tier)
	require.NotNil(t, o.Confidence)
	assert.Equal(t, 1.0, *o.Confidence)
	assert.Equal(t, model.StatusConformant, o.Status)
	assert.Equal(t, []model.Standard{model.StandardCMRT}, o.MatchedStandards)
}

func TestCompare_FuzzyTypo(t *testing.T) {
	engine := NewEngine(acmeIndex(), Options{})
	outcomes, err := engine.Compare(context.Background(), "Initech Supply", []model.DeclaredFacility{
		{Metal: "Gold", Name: "Acme Smeltng"},
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)

	o := outcomes[0]
	assert.Equal(t, model.TierFuzzy, o.Tier)
	require.NotNil(t, o.Confidence)
	assert.GreaterOrEqual(t, *o.Confidence, 0.6)
	// Status follows the confidence gate: trusted above it, flagged below.
	if *o.Confidence >= DefaultClassifyGate {
		assert.Equal(t, model.StatusConformant, o.Status)
	} else {
		assert.Equal(t, model.StatusAttentionRequired, o.Status)
	}
}

func TestCompare_MetalNotInReference(t *testing.T) {
	engine := NewEngine(acmeIndex(), Options{})
	outcomes, err := engine.Compare(context.Background(), "Initech Supply", []model.DeclaredFacility{
		{Metal: "Tin", Name: "Acme Smelting Ltd"},
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)

	assert.Equal(t, model.TierNone, outcomes[0].Tier)
	assert.Nil(t, outcomes[0].Confidence)
	assert.Equal(t, model.StatusAttentionRequired, outcomes[0].Status)
}

func TestCompare_PreservesInputOrder(t *testing.T) {
	refs := []model.ReferenceFacility{
		{FacilityID: "F1", StandardName: "Acme Smelting Ltd", Metal: "Gold", AssessmentStatus: "CMRT: Conformant"},
		{FacilityID: "F2", StandardName: "Yunnan Tin Company", Metal: "Tin", AssessmentStatus: "CMRT: Active"},
	}
	engine := NewEngine(BuildIndex(refs), Options{Workers: 8})

	declared := []model.DeclaredFacility{
		{Metal: "Gold", Name: "Acme Smelting"},
		{Metal: "Tin", Name: "Yunnan Tin"},
		{Metal: "Cobalt", Name: "Unknown Refinery"},
		{Metal: "Tin", Name: "Yunnan Tin Company"},
	}
	outcomes, err := engine.Compare(context.Background(), "s", declared)
	require.NoError(t, err)
	require.Len(t, outcomes, len(declared))
	for i := range declared {
		assert.Equal(t, declared[i], outcomes[i].Declared, "position %d", i)
	}
}

func TestCompare_EmptyDeclared(t *testing.T) {
	engine := NewEngine(acmeIndex(), Options{})
	outcomes, err := engine.Compare(context.Background(), "s", nil)
	require.NoError(t, err)
	assert.Empty(t, outcomes)
}

func TestCompare_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngine(acmeIndex(), Options{})
	_, err := engine.Compare(ctx, "s", []model.DeclaredFacility{{Metal: "Gold", Name: "Acme"}})
	assert.Error(t, err)
}

func TestCompare_ThenSummarize(t *testing.T) {
	engine := NewEngine(acmeIndex(), Options{})
	outcomes, err := engine.Compare(context.Background(), "Initech Supply", []model.DeclaredFacility{
		{Metal: "Gold", Name: "Acme Smelting Ltd"},
		{Metal: "Gold", Name: "Totally Unknown Smelter"},
	})
	require.NoError(t, err)

	s := Summarize(outcomes, []model.Standard{model.StandardCMRT}, []string{"Gold"})
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.ByStatus[model.StatusConformant])
	assert.Equal(t, 1, s.ByStatus[model.StatusAttentionRequired])
	assert.Equal(t, 50, s.ConformantPercent)
	require.Len(t, s.Standards, 1)
	assert.Equal(t, 1, s.Standards[0].Conformant)
	assert.Equal(t, 2, s.Standards[0].Total)
	assert.Equal(t, 50, s.Standards[0].ConformantPercent)
}
