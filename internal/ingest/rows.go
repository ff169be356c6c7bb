package ingest

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/smelter-recon/internal/model"
	"github.com/sells-group/smelter-recon/internal/recon"
)

// DeclaredFromRows maps raw sheet rows to declared facilities. The header
// row is located by keyword; rows without a facility name are dropped, per
// the engine's contract that structurally invalid rows never reach it.
func DeclaredFromRows(rows [][]string) ([]model.DeclaredFacility, error) {
	headerIdx, cols, ok := findHeader(rows)
	if !ok {
		return nil, eris.New("ingest: no header row with smelter name and metal columns")
	}

	var out []model.DeclaredFacility
	for _, row := range rows[headerIdx+1:] {
		name := cellAt(row, cols.name)
		if name == "" {
			continue
		}
		out = append(out, model.DeclaredFacility{
			Metal:                CanonicalMetal(cellAt(row, cols.metal)),
			Name:                 name,
			Country:              cellAt(row, cols.country),
			IdentificationNumber: cellAt(row, cols.id),
		})
	}
	return out, nil
}

// ReferenceFromRows maps raw sheet rows to reference facilities. When a
// row's status cell has no standard prefix of its own, the supplied
// standard is prepended so downstream standard extraction still attributes
// the record correctly.
func ReferenceFromRows(rows [][]string, standard model.Standard) ([]model.ReferenceFacility, error) {
	headerIdx, cols, ok := findHeader(rows)
	if !ok {
		return nil, eris.New("ingest: no header row with facility name and metal columns")
	}

	var out []model.ReferenceFacility
	for _, row := range rows[headerIdx+1:] {
		name := cellAt(row, cols.name)
		if name == "" {
			continue
		}
		status := cellAt(row, cols.status)
		if standard != "" {
			if _, _, hasPrefix := recon.SplitStandardPrefix(status); !hasPrefix {
				status = string(standard) + ": " + status
			}
		}
		out = append(out, model.ReferenceFacility{
			FacilityID:       cellAt(row, cols.id),
			StandardName:     name,
			Metal:            CanonicalMetal(cellAt(row, cols.metal)),
			AssessmentStatus: status,
			Country:          cellAt(row, cols.country),
			Region:           cellAt(row, cols.region),
			City:             cellAt(row, cols.city),
			CrossReference:   cellAt(row, cols.xref),
		})
	}
	return out, nil
}
