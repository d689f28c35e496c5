package service

import (
	"fmt"
	"strings"

	"droitis-backend/models"
)

// PromptBuilder assembles the instruction sets sent to the model. Pure
// functions of their inputs; no I/O.
type PromptBuilder struct{}

// baseRules are the non-negotiable constraints included in every generation
// prompt. The output shape stated here must stay in sync with the answer
// schema, or first-pass validation failure rates rise.
const baseRules = `RÈGLES NON NÉGOCIABLES :
- Chaque affirmation doit être traçable au texte fourni. N'invente RIEN : ni fait, ni date, ni juridiction, ni citation.
- N'invente aucune URL et n'inclus aucun lien, de quelque forme que ce soit.
- Ne reproduis jamais de longs passages du texte : seules de courtes citations d'ancrage (moins de 300 caractères) sont permises.
- Si une information essentielle manque (juridiction, date, parties), réponds avec {"type":"clarify","clarification_questions":[...]} et pose AU MAXIMUM 3 questions.
- Chaque affirmation clé doit porter un ancrage : un identifiant (format LETTRES-CHIFFRES, ex. F-1, MOT-12), un repère de localisation (page ou paragraphe) et une courte citation textuelle en preuve.`

// outputShape states the exact answer shape so the model has a fighting
// chance of passing schema validation on the first attempt.
const outputShape = `FORME DE SORTIE (JSON strict, aucun texte hors JSON) :
{
  "type": "answer",
  "output_mode": "%s",
  "faits": "...",
  "procedure": "...",
  "moyens": "...",
  "question_de_droit": "...",
  "solution": "...",
  "motifs": "...",
  "portee": "...",
  "anchors": [
    {"id": "F-1", "anchor_type": "fait|procedure|moyen|question|solution|motif|portee",
     "location": "p. 2, §14", "evidence_snippet": "courte citation", "confidence": 0.9}
  ]
}`

// Generation builds the system instruction and user payload for the final
// generation call.
func (PromptBuilder) Generation(req *models.CaseRequest, note *models.CodificationNote) (string, string) {
	var b strings.Builder

	b.WriteString("Tu es un assistant juridique pour étudiants en droit. Tu produis des fiches d'arrêt structurées à partir du texte d'une décision de justice, et rien d'autre.\n\n")
	b.WriteString(baseRules)
	b.WriteString("\n\n")

	if req.OutputMode == models.ModeAnalyseLong {
		b.WriteString("MODE : analyse longue. Développe chaque section en plusieurs paragraphes, avec les étapes du raisonnement de la juridiction.\n\n")
	} else {
		b.WriteString("MODE : fiche. Chaque section tient en un paragraphe concis, orienté révision.\n\n")
	}

	b.WriteString(fmt.Sprintf(outputShape, req.OutputMode))
	b.WriteString("\n")

	if hints := formatHints(req); hints != "" {
		b.WriteString("\nCONTEXTE FOURNI PAR L'ÉTUDIANT (indicatif, non vérifié — ne le présente jamais comme établi par la décision) :\n")
		b.WriteString(hints)
	}

	if note != nil {
		b.WriteString(fmt.Sprintf(`
NOTE INTERNE DE CODIFICATION (%s) :
%s
Mentionne cette note dans la section "portee", en précisant qu'il s'agit d'une annotation de cours. Elle ne provient PAS du texte de la décision : ne la présente jamais comme tirée de celui-ci.
`, note.Citation, note.Note))
	}

	user := "TEXTE DE LA DÉCISION :\n\n" + req.CaseText
	return b.String(), user
}

// Condense builds the prompt for the size-reduction pre-pass. The model
// must keep location markers and short verbatim anchors so the final
// generation can still produce grounded anchors.
func (PromptBuilder) Condense(text string) (string, string) {
	system := `Tu es un module de condensation de décisions de justice.
Réduis le texte fourni en conservant :
- les marqueurs de page et de paragraphe existants (ex. [p. 3], §12) ;
- les courtes citations textuelles utiles comme preuves d'ancrage ;
- les faits, la procédure, les moyens, la question de droit, la solution et les motifs.
Supprime le remplissage narratif et les répétitions. N'ajoute RIEN qui ne soit dans le texte.
Réponds en JSON strict : {"condensed_text": "..."} — aucun texte hors JSON.`

	return system, "TEXTE À CONDENSER :\n\n" + text
}

// RepairParse builds the prompt for the parse-failure repair pass: the
// model's prior output was not valid JSON.
func (PromptBuilder) RepairParse(raw string) (string, string) {
	system := `La sortie précédente n'est pas du JSON valide. Corrige-la pour obtenir un unique objet JSON valide.
Ne change PAS le contenu : n'ajoute aucun fait, n'invente rien, corrige uniquement la syntaxe.
Réponds avec l'objet JSON corrigé, sans aucun texte autour.`

	return system, "SORTIE À CORRIGER :\n\n" + raw
}

// RepairSchema builds the prompt for the schema-failure repair pass: the
// JSON parsed but violated the answer schema.
func (PromptBuilder) RepairSchema(malformed string, errs []string) (string, string) {
	system := `L'objet JSON précédent viole le schéma de sortie. Corrige UNIQUEMENT ce que les erreurs ci-dessous exigent.
N'ajoute aucun fait nouveau, n'invente rien, ne reformule pas les sections valides.
Réponds avec l'objet JSON corrigé, sans aucun texte autour.`

	var b strings.Builder
	b.WriteString("ERREURS DE VALIDATION :\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e)
		b.WriteString("\n")
	}
	b.WriteString("\nOBJET À CORRIGER :\n\n")
	b.WriteString(malformed)

	return system, b.String()
}

// formatHints renders the advisory request hints as labeled lines.
func formatHints(req *models.CaseRequest) string {
	var b strings.Builder
	add := func(label, v string) {
		if v != "" {
			fmt.Fprintf(&b, "- %s : %s\n", label, v)
		}
	}
	add("Langue", req.Language)
	add("Établissement", req.InstitutionSlug)
	add("Cours", req.CourseSlug)
	add("Juridiction", req.JurisdictionHint)
	add("Tribunal", req.CourtHint)
	add("Date de la décision", req.DecisionDateHint)
	return b.String()
}
