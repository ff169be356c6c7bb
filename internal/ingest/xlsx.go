package ingest

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/smelter-recon/internal/model"
)

// XLSXOptions selects which worksheet to read.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
}

// DeclaredFromXLSX reads a supplier declaration worksheet into declared
// facilities.
func DeclaredFromXLSX(path string, opts XLSXOptions) ([]model.DeclaredFacility, error) {
	rows, err := readXLSX(path, opts)
	if err != nil {
		return nil, err
	}
	return DeclaredFromRows(rows)
}

// ReferenceFromXLSX reads an authoritative facility-list worksheet into
// reference facilities tagged with the given standard.
func ReferenceFromXLSX(path string, standard model.Standard, opts XLSXOptions) ([]model.ReferenceFacility, error) {
	rows, err := readXLSX(path, opts)
	if err != nil {
		return nil, err
	}
	return ReferenceFromRows(rows, standard)
}

func readXLSX(path string, opts XLSXOptions) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open xlsx")
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		rows = append(rows, rowToStrings(row))
	}
	return rows, nil
}

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("ingest: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("ingest: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
