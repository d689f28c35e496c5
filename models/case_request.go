package models

// OutputMode selects the verbosity of the generated study summary.
type OutputMode string

const (
	ModeFiche       OutputMode = "fiche"
	ModeAnalyseLong OutputMode = "analyse_longue"
)

// Valid reports whether the mode is one of the supported output modes.
func (m OutputMode) Valid() bool {
	return m == ModeFiche || m == ModeAnalyseLong
}

// SourceKind tags where the case text was extracted from. Uploads are the
// only supported provenance; anything else is rejected.
type SourceKind string

const (
	SourcePDF  SourceKind = "pdf"
	SourceDOCX SourceKind = "docx"
)

// Valid reports whether the source kind is an accepted upload type.
func (k SourceKind) Valid() bool {
	return k == SourcePDF || k == SourceDOCX
}

// CaseRequest is the unit of work submitted to the case-reader pipeline.
// The text has already been extracted upstream; hints are advisory context
// for the prompt and are never validated against a source of truth.
type CaseRequest struct {
	CaseText   string     `json:"case_text"`
	OutputMode OutputMode `json:"output_mode"`
	SourceKind SourceKind `json:"source_kind"`

	Language         string `json:"language,omitempty"`
	InstitutionSlug  string `json:"institution_slug,omitempty"`
	CourseSlug       string `json:"course_slug,omitempty"`
	JurisdictionHint string `json:"jurisdiction_hint,omitempty"`
	CourtHint        string `json:"court_hint,omitempty"`
	DecisionDateHint string `json:"decision_date_hint,omitempty"`
}
