package models

import "fmt"

// FailureStage names where in the generation sequence a pipeline run failed,
// so operators can tell provider outages apart from persistent model
// non-compliance.
type FailureStage string

const (
	StageParse        FailureStage = "parse"
	StageRepairParse  FailureStage = "repair_parse"
	StageSchema       FailureStage = "schema"
	StageRepairSchema FailureStage = "repair_schema"
	StageFinal        FailureStage = "final"
)

// PipelineError is the structured failure surfaced to the caller when no
// valid payload could be produced after all repair attempts.
type PipelineError struct {
	Stage   FailureStage
	Status  int
	Message string
	// Details carries validator errors or provider messages safe to show.
	Details []string
	// ArtifactKey points at the archived raw model output, when one was
	// stored for debugging.
	ArtifactKey string
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline failed at stage %s: %s", e.Stage, e.Message)
}
