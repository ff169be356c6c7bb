// Package recon implements the facility reconciliation engine: name
// normalization, the reference index, tiered matching, conformance
// classification, and summary aggregation. Everything here is pure
// computation over in-memory records; persistence and parsing live in
// internal/store and internal/ingest.
package recon

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// legalSuffixes matches common legal-entity suffixes as whole words, each
// optionally followed by a trailing period. Alternation order matters:
// longer forms come before their prefixes so "corporation" is not consumed
// as "corp" + leftovers.
var legalSuffixes = regexp.MustCompile(
	`\b(corporation|limited|company|corp|gmbh|llc|ltd|inc|co|sa)\b\.?`)

var (
	nonWord    = regexp.MustCompile(`[^\w\s]`)
	multiSpace = regexp.MustCompile(`\s+`)
)

// stripAccents decomposes and drops combining marks so accented and plain
// spellings of the same facility name compare equal.
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes a facility name for comparison: fold accents,
// lowercase, strip legal-entity suffixes, drop punctuation, collapse
// whitespace, trim. Deterministic and total; both the exact-name and fuzzy
// comparison paths use it so the two tiers stay consistent.
func Normalize(name string) string {
	folded, _, err := transform.String(stripAccents, name)
	if err != nil {
		folded = name
	}
	n := strings.ToLower(folded)
	n = legalSuffixes.ReplaceAllString(n, "")
	n = nonWord.ReplaceAllString(n, "")
	n = multiSpace.ReplaceAllString(n, " ")
	return strings.TrimSpace(n)
}
