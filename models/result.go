package models

// ResultKind discriminates the pipeline's success variants.
type ResultKind string

const (
	ResultAnswer  ResultKind = "answer"
	ResultClarify ResultKind = "clarify"
)

// Clarification is returned when the pipeline needs more information from
// the user instead of producing a full answer. Questions is always between
// 1 and 3 entries.
type Clarification struct {
	Type       string     `json:"type"`
	OutputMode OutputMode `json:"output_mode"`
	Questions  []string   `json:"clarification_questions"`
}

// MaxClarificationQuestions caps how many questions a clarification may
// carry.
const MaxClarificationQuestions = 3

// FallbackClarificationQuestion is used when the model asked to clarify but
// supplied no questions of its own.
const FallbackClarificationQuestion = "Pouvez-vous préciser la juridiction, la date et les parties de la décision soumise ?"

// NewClarification builds a Clarification, capping questions at the maximum
// and substituting the generic fallback when none are usable.
func NewClarification(mode OutputMode, questions []string) *Clarification {
	kept := make([]string, 0, MaxClarificationQuestions)
	for _, q := range questions {
		if q == "" {
			continue
		}
		kept = append(kept, q)
		if len(kept) == MaxClarificationQuestions {
			break
		}
	}
	if len(kept) == 0 {
		kept = append(kept, FallbackClarificationQuestion)
	}
	return &Clarification{
		Type:       string(ResultClarify),
		OutputMode: mode,
		Questions:  kept,
	}
}

// PipelineResult is the tagged union produced by a pipeline run. Exactly one
// of Answer or Clarify is set; failures travel as *PipelineError instead.
type PipelineResult struct {
	Kind    ResultKind
	Answer  map[string]interface{}
	Clarify *Clarification
}
