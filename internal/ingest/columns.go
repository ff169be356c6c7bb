// Package ingest parses supplier declaration and reference facility lists
// from XLSX and CSV files into the model types the engine consumes. The
// industry templates vary in header wording and column order, so columns
// are located by keyword rather than position.
package ingest

import (
	"strings"
)

// columnMap holds resolved column positions; -1 means absent.
type columnMap struct {
	metal   int
	name    int
	country int
	id      int
	status  int
	region  int
	city    int
	xref    int
}

// headerKeywords locates a column by substring match against a lowercased
// header cell, first hit wins.
var (
	nameKeywords    = []string{"smelter name", "facility name", "standard smelter name", "smelter or refinery", "name"}
	metalKeywords   = []string{"metal"}
	countryKeywords = []string{"country", "location"}
	idKeywords      = []string{"smelter identification", "facility id", "smelter id", "identification number", "cid"}
	statusKeywords  = []string{"assessment", "status"}
	regionKeywords  = []string{"region", "state", "province"}
	cityKeywords    = []string{"city"}
	xrefKeywords    = []string{"cross reference", "cross-reference", "xref"}
)

// findHeader scans the first rows of a sheet for the header row: the first
// row containing both a name column and a metal column. Templates put
// instructions and revision notes above the table, so a fixed skip count is
// not reliable.
func findHeader(rows [][]string) (rowIdx int, cols columnMap, ok bool) {
	limit := min(len(rows), 30)
	for i := 0; i < limit; i++ {
		cols := mapColumns(rows[i])
		if cols.name >= 0 && cols.metal >= 0 {
			return i, cols, true
		}
	}
	return 0, columnMap{}, false
}

func mapColumns(header []string) columnMap {
	cols := columnMap{metal: -1, name: -1, country: -1, id: -1, status: -1, region: -1, city: -1, xref: -1}
	for j, cell := range header {
		h := strings.ToLower(strings.TrimSpace(cell))
		if h == "" {
			continue
		}
		switch {
		case cols.id < 0 && matchesAny(h, idKeywords):
			cols.id = j
		case cols.status < 0 && matchesAny(h, statusKeywords):
			cols.status = j
		case cols.xref < 0 && matchesAny(h, xrefKeywords):
			cols.xref = j
		case cols.metal < 0 && matchesAny(h, metalKeywords):
			cols.metal = j
		case cols.country < 0 && matchesAny(h, countryKeywords):
			cols.country = j
		case cols.region < 0 && matchesAny(h, regionKeywords):
			cols.region = j
		case cols.city < 0 && matchesAny(h, cityKeywords):
			cols.city = j
		case cols.name < 0 && matchesAny(h, nameKeywords):
			cols.name = j
		}
	}
	return cols
}

func matchesAny(header string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(header, kw) {
			return true
		}
	}
	return false
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
