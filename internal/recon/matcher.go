package recon

import (
	"github.com/sells-group/smelter-recon/internal/model"
)

// DefaultFuzzyFloor is the minimum fuzzy confidence for a candidate to
// count as a match at all; below it the tier degrades to none.
const DefaultFuzzyFloor = 0.6

// MatchResult carries the tier, confidence, representative reference
// record, and the set of standards under which an equivalent facility
// appears. Confidence is nil when Tier is TierNone.
type MatchResult struct {
	Tier       model.MatchTier
	Confidence *float64
	Matched    *model.ReferenceFacility
	Standards  []model.Standard
}

// Matcher resolves declared facilities against a read-only Index using a
// strict tier cascade: exact id, exact normalized name, then fuzzy.
type Matcher struct {
	index      *Index
	fuzzyFloor float64
}

// NewMatcher creates a Matcher over the given index. A fuzzyFloor of 0
// selects DefaultFuzzyFloor.
func NewMatcher(index *Index, fuzzyFloor float64) *Matcher {
	if fuzzyFloor <= 0 {
		fuzzyFloor = DefaultFuzzyFloor
	}
	return &Matcher{index: index, fuzzyFloor: fuzzyFloor}
}

// Match runs the tier cascade for one declared facility; the first tier
// that produces a hit wins. When several records tie on id or normalized
// name, the first in index insertion order is the representative match and
// the standards of every tied record are unioned. Reproducible but
// arbitrary; callers should not read meaning into the representative.
func (m *Matcher) Match(f model.DeclaredFacility) MatchResult {
	// Tier 1: exact facility id.
	if f.IdentificationNumber != "" {
		if hits := m.index.FindByID(f.IdentificationNumber); len(hits) > 0 {
			return exactResult(hits)
		}
	}

	// Tier 2: exact normalized name, restricted to the declared metal.
	normName := Normalize(f.Name)
	if hits := m.index.FindByNormalizedName(normName, f.Metal); len(hits) > 0 {
		return exactResult(hits)
	}

	// Tier 3: fuzzy. Take the top-ranked candidate and reject it below the
	// confidence floor. Standards come from every record sharing the top
	// candidate's normalized name, across all metals, not just the ranker's
	// first hit; a facility listed under another metal still contributes
	// the standard it appears in.
	if ranked := m.index.FuzzySearch(f.Name, f.Metal); len(ranked) > 0 {
		top := ranked[0]
		if top.Score >= m.fuzzyFloor {
			confidence := top.Score
			equivalents := m.index.FindByNormalizedName(top.NormalizedName, "")
			if len(equivalents) == 0 {
				equivalents = []model.ReferenceFacility{top.Facility}
			}
			matched := top.Facility
			return MatchResult{
				Tier:       model.TierFuzzy,
				Confidence: &confidence,
				Matched:    &matched,
				Standards:  unionStandards(equivalents),
			}
		}
	}

	return MatchResult{Tier: model.TierNone}
}

// exactResult builds a confidence-1.0 result from one or more tied hits.
func exactResult(hits []model.ReferenceFacility) MatchResult {
	confidence := 1.0
	matched := hits[0]
	return MatchResult{
		Tier:       model.TierExact,
		Confidence: &confidence,
		Matched:    &matched,
		Standards:  unionStandards(hits),
	}
}

// unionStandards extracts the standard from each record's status text and
// returns the distinct set in display order.
func unionStandards(records []model.ReferenceFacility) []model.Standard {
	seen := make(map[model.Standard]bool)
	for _, r := range records {
		if std, ok := ExtractStandard(r.AssessmentStatus); ok {
			seen[std] = true
		}
	}
	var out []model.Standard
	for _, std := range model.KnownStandards() {
		if seen[std] {
			out = append(out, std)
		}
	}
	return out
}
