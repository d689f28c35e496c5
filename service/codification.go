package service

import (
	"regexp"
	"strings"

	"droitis-backend/models"
)

// CodificationResolver matches decision citations or names found in case
// text against the codification notes reference table. Built once at
// startup from the repository and read-only afterwards.
type CodificationResolver struct {
	notes []models.CodificationNote
}

// NewCodificationResolver indexes the given notes. Notes with an empty
// normalized citation are dropped.
func NewCodificationResolver(notes []models.CodificationNote) *CodificationResolver {
	kept := make([]models.CodificationNote, 0, len(notes))
	for _, n := range notes {
		if n.NormalizedCitation == "" {
			n.NormalizedCitation = NormalizeCitation(n.Citation)
		}
		if n.NormalizedCitation == "" {
			continue
		}
		kept = append(kept, n)
	}
	return &CodificationResolver{notes: kept}
}

// Resolve returns the first note whose citation or decision name appears in
// the case text, or nil. Consulted once per request, before prompt building.
func (r *CodificationResolver) Resolve(caseText string) *models.CodificationNote {
	if r == nil || len(r.notes) == 0 {
		return nil
	}
	normalized := NormalizeCitation(caseText)
	for i := range r.notes {
		n := &r.notes[i]
		if strings.Contains(normalized, n.NormalizedCitation) {
			return n
		}
		if n.DecisionName != nil {
			if name := NormalizeCitation(*n.DecisionName); name != "" && strings.Contains(normalized, name) {
				return n
			}
		}
	}
	return nil
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	punctRe      = regexp.MustCompile(`[^a-z0-9 -]`)

	// accentReplacer folds the accented characters common in French legal
	// citations; matching must not depend on how the upload encoded them.
	accentReplacer = strings.NewReplacer(
		"à", "a", "â", "a", "ä", "a",
		"é", "e", "è", "e", "ê", "e", "ë", "e",
		"î", "i", "ï", "i",
		"ô", "o", "ö", "o",
		"ù", "u", "û", "u", "ü", "u",
		"ç", "c", "œ", "oe", "æ", "ae",
		" ", " ",
	)
)

// NormalizeCitation lowercases, folds accents, collapses whitespace and
// strips punctuation so that "C.c.Q., art. 1457" and "ccq art 1457" compare
// equal. Mirrors the normalization used when the reference table was
// ingested.
func NormalizeCitation(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = accentReplacer.Replace(s)
	s = punctRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
