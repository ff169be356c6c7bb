package ingest

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/smelter-recon/internal/model"
)

// DeclaredFromCSV reads a supplier declaration CSV into declared facilities.
func DeclaredFromCSV(r io.Reader) ([]model.DeclaredFacility, error) {
	rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	return DeclaredFromRows(rows)
}

// ReferenceFromCSV reads a reference facility CSV tagged with the given
// standard.
func ReferenceFromCSV(r io.Reader, standard model.Standard) ([]model.ReferenceFacility, error) {
	rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	return ReferenceFromRows(rows, standard)
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // templates have ragged rows
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, eris.Wrap(err, "ingest: read csv")
		}
		rows = append(rows, record)
	}
}
