package models

import (
	"time"

	"github.com/google/uuid"
)

// CodificationNote is a human-authored annotation tied to a decision by its
// normalized citation or name. When a request's case text mentions the
// decision, the note is injected into the prompt as a clearly labeled
// internal note; it is never presented as derived from the decision itself.
type CodificationNote struct {
	ID                 uuid.UUID `json:"id"`
	CodeID             string    `json:"code_id"`
	Jurisdiction       string    `json:"jurisdiction"`
	Citation           string    `json:"citation"`
	NormalizedCitation string    `json:"normalized_citation"`
	DecisionName       *string   `json:"decision_name,omitempty"`
	Note               string    `json:"note"`
	CreatedAt          time.Time `json:"created_at"`
}
