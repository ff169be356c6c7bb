package recon

import (
	"sort"
	"strings"
	"sync"

	"github.com/sells-group/smelter-recon/internal/model"
)

// Index holds the authoritative reference facilities for one comparison
// session, plus lookup structures keyed on lowercased id and normalized
// name. Build once, then read concurrently at will; records are never
// mutated after construction.
type Index struct {
	facilities []model.ReferenceFacility
	normNames  []string // Normalize(StandardName), parallel to facilities
	lowerIDs   []string // lowercased FacilityID, parallel to facilities

	byID   map[string][]int
	byName map[string][]int

	mu         sync.RWMutex
	metalCache map[string][]int // lowercased metal -> candidate positions
}

// Candidate is one fuzzy-search hit, ranked by Score (1 = perfect).
type Candidate struct {
	Facility       model.ReferenceFacility
	NormalizedName string
	Score          float64
}

// BuildIndex constructs an Index over the supplied reference records. An
// empty slice is legal and yields an index that never matches. Records are
// kept in insertion order; that order is the tie-break for equally-good
// exact matches, so callers wanting reproducible runs should supply a
// stably-ordered slice.
func BuildIndex(refs []model.ReferenceFacility) *Index {
	ix := &Index{
		facilities: refs,
		normNames:  make([]string, len(refs)),
		lowerIDs:   make([]string, len(refs)),
		byID:       make(map[string][]int),
		byName:     make(map[string][]int),
		metalCache: make(map[string][]int),
	}
	for i, r := range refs {
		ix.normNames[i] = Normalize(r.StandardName)
		ix.lowerIDs[i] = strings.ToLower(strings.TrimSpace(r.FacilityID))
		if ix.lowerIDs[i] != "" {
			ix.byID[ix.lowerIDs[i]] = append(ix.byID[ix.lowerIDs[i]], i)
		}
		if ix.normNames[i] != "" {
			ix.byName[ix.normNames[i]] = append(ix.byName[ix.normNames[i]], i)
		}
	}
	return ix
}

// Len returns the number of indexed reference records.
func (ix *Index) Len() int { return len(ix.facilities) }

// Standards returns the distinct standards extractable from the indexed
// records' status text, in display order. Used for summary attribution.
func (ix *Index) Standards() []model.Standard {
	seen := make(map[model.Standard]bool)
	for _, r := range ix.facilities {
		if std, ok := ExtractStandard(r.AssessmentStatus); ok {
			seen[std] = true
		}
	}
	out := make([]model.Standard, 0, len(seen))
	for _, std := range model.KnownStandards() {
		if seen[std] {
			out = append(out, std)
		}
	}
	return out
}

// FindByID returns all records whose facility id equals the query,
// case-insensitively, across all standards.
func (ix *Index) FindByID(id string) []model.ReferenceFacility {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return nil
	}
	return ix.collect(ix.byID[id], "")
}

// FindByNormalizedName returns all records whose normalized standard name
// equals the (already normalized) query and whose metal matches
// case-insensitively. A record with an empty metal acts as a wildcard.
func (ix *Index) FindByNormalizedName(normName, metal string) []model.ReferenceFacility {
	if normName == "" {
		return nil
	}
	return ix.collect(ix.byName[normName], metal)
}

// FuzzySearch ranks the metal-restricted candidate set by weighted
// similarity between the query name and each record's normalized name and
// facility id. Results are sorted by descending score; ties keep insertion
// order.
func (ix *Index) FuzzySearch(name, metal string) []Candidate {
	query := Normalize(name)
	if query == "" {
		return nil
	}

	var out []Candidate
	for _, pos := range ix.candidates(metal) {
		out = append(out, Candidate{
			Facility:       ix.facilities[pos],
			NormalizedName: ix.normNames[pos],
			Score:          weightedScore(query, ix.normNames[pos], ix.lowerIDs[pos]),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// collect materializes the records at the given positions, optionally
// filtered by metal (empty record metal is a wildcard).
func (ix *Index) collect(positions []int, metal string) []model.ReferenceFacility {
	var out []model.ReferenceFacility
	for _, pos := range positions {
		if metal != "" && !metalMatches(ix.facilities[pos].Metal, metal) {
			continue
		}
		out = append(out, ix.facilities[pos])
	}
	return out
}

// candidates returns the cached positions of records eligible for the given
// metal. The cache is built lazily, once per distinct metal.
func (ix *Index) candidates(metal string) []int {
	key := strings.ToLower(strings.TrimSpace(metal))

	ix.mu.RLock()
	cached, ok := ix.metalCache[key]
	ix.mu.RUnlock()
	if ok {
		return cached
	}

	var positions []int
	for i := range ix.facilities {
		if ix.normNames[i] == "" {
			continue
		}
		if key == "" || metalMatches(ix.facilities[i].Metal, metal) {
			positions = append(positions, i)
		}
	}

	ix.mu.Lock()
	ix.metalCache[key] = positions
	ix.mu.Unlock()
	return positions
}

// metalMatches reports whether a record's metal satisfies the declared
// metal: equal ignoring case, or empty on the record (wildcard).
func metalMatches(recordMetal, declaredMetal string) bool {
	recordMetal = strings.TrimSpace(recordMetal)
	if recordMetal == "" {
		return true
	}
	return strings.EqualFold(recordMetal, strings.TrimSpace(declaredMetal))
}
