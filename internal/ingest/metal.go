package ingest

import (
	"regexp"
	"strings"
)

// Template variants write metals as "Tin (Sn)", "Gold/Au", or just the
// element symbol. CanonicalMetal reduces them all to the plain metal name
// so the matcher's metal filter behaves.

var parenthetical = regexp.MustCompile(`\s*\(.*?\)\s*`)

var symbolAliases = map[string]string{
	"sn": "Tin",
	"ta": "Tantalum",
	"w":  "Tungsten",
	"au": "Gold",
	"co": "Cobalt",
	"al": "Aluminium",
	"cu": "Copper",
	"li": "Lithium",
	"ni": "Nickel",
}

// CanonicalMetal normalizes a declared metal string: parentheticals and
// symbol suffixes are dropped, bare element symbols resolve through the
// alias table, anything else passes through trimmed.
func CanonicalMetal(metal string) string {
	m := strings.TrimSpace(parenthetical.ReplaceAllString(metal, " "))
	if slash := strings.IndexAny(m, "/"); slash > 0 {
		m = strings.TrimSpace(m[:slash])
	}
	if full, ok := symbolAliases[strings.ToLower(m)]; ok {
		return full
	}
	return m
}
