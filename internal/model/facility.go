// Package model defines the record types shared across the reconciliation
// pipeline: supplier-declared facilities, authoritative reference facilities,
// match outcomes, and comparison summaries.
package model

// Standard identifies a due-diligence reporting scheme a reference record
// may be associated with.
type Standard string

const (
	StandardCMRT Standard = "CMRT" // Conflict Minerals Reporting Template
	StandardEMRT Standard = "EMRT" // Extended Minerals Reporting Template
	StandardAMRT Standard = "AMRT" // Aluminium Reporting Template
	StandardRMI  Standard = "RMI"  // generic RMI tag when no template is identifiable
)

// KnownStandards lists every standard the engine can attribute a reference
// record to, in display order.
func KnownStandards() []Standard {
	return []Standard{StandardCMRT, StandardEMRT, StandardAMRT, StandardRMI}
}

// DeclaredFacility is one smelter/refinery row from a supplier submission.
type DeclaredFacility struct {
	Metal                string `json:"metal"`
	Name                 string `json:"name"`
	Country              string `json:"country,omitempty"`
	IdentificationNumber string `json:"identification_number,omitempty"`
}

// ReferenceFacility is one record from an authoritative facility list.
// AssessmentStatus is free text and may carry a standard prefix such as
// "CMRT: Conformant".
type ReferenceFacility struct {
	FacilityID       string `json:"facility_id"`
	StandardName     string `json:"standard_facility_name"`
	Metal            string `json:"metal"`
	AssessmentStatus string `json:"assessment_status"`
	Country          string `json:"country,omitempty"`
	Region           string `json:"region,omitempty"`
	City             string `json:"city,omitempty"`
	CrossReference   string `json:"cross_reference,omitempty"`
}
