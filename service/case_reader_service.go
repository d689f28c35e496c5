// Package service implements the case-reader pipeline: sizing, optional
// condensation, prompt building, the generation and repair loop, and the
// output guard applied to accepted answers.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"droitis-backend/config"
	"droitis-backend/llm"
	"droitis-backend/models"
	"droitis-backend/schema"
	"droitis-backend/storage"

	"github.com/google/uuid"
)

var (
	ErrMissingCaseText   = errors.New("case_text is required")
	ErrMissingOutputMode = errors.New("output_mode is required")
	ErrInvalidOutputMode = errors.New("output_mode must be fiche or analyse_longue")
	ErrInvalidSourceKind = errors.New("source_kind must be pdf or docx")
	ErrCaseTextTooLarge  = errors.New("case_text exceeds the maximum supported length")
)

// ModelInvoker performs one outbound model call. Satisfied by llm.Gemini.
type ModelInvoker interface {
	Invoke(ctx context.Context, req llm.InvokeRequest) (*llm.InvokeResult, error)
}

// CaseReaderService drives a request through the pipeline. All dependencies
// are injected; the service itself holds no mutable state, so one value
// serves all requests.
type CaseReaderService struct {
	invoker      ModelInvoker
	schema       *schema.Artifact
	codification *CodificationResolver
	artifacts    storage.Store
	cfg          *config.Config
	prompts      PromptBuilder
}

// CaseReaderOption is a functional option for CaseReaderService.
type CaseReaderOption func(*CaseReaderService)

// WithInvoker sets the model invoker.
func WithInvoker(invoker ModelInvoker) CaseReaderOption {
	return func(s *CaseReaderService) {
		s.invoker = invoker
	}
}

// WithSchema sets the compiled answer schema.
func WithSchema(artifact *schema.Artifact) CaseReaderOption {
	return func(s *CaseReaderService) {
		s.schema = artifact
	}
}

// WithCodification sets the codification note resolver.
func WithCodification(resolver *CodificationResolver) CaseReaderOption {
	return func(s *CaseReaderService) {
		s.codification = resolver
	}
}

// WithArtifactStore sets the store for failure debugging artifacts.
func WithArtifactStore(store storage.Store) CaseReaderOption {
	return func(s *CaseReaderService) {
		s.artifacts = store
	}
}

// WithConfig sets the pipeline configuration.
func WithConfig(cfg *config.Config) CaseReaderOption {
	return func(s *CaseReaderService) {
		s.cfg = cfg
	}
}

// NewCaseReaderService creates a new case reader service.
func NewCaseReaderService(opts ...CaseReaderOption) *CaseReaderService {
	s := &CaseReaderService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze runs one request through the full pipeline. It returns either a
// PipelineResult (answer or clarification, both HTTP 200 concerns), an
// input sentinel error, or a *models.PipelineError describing where the
// generation sequence failed.
func (s *CaseReaderService) Analyze(ctx context.Context, req *models.CaseRequest) (*models.PipelineResult, error) {
	if s.invoker == nil {
		return nil, errors.New("model invoker not set")
	}
	if s.schema == nil {
		return nil, errors.New("answer schema not set")
	}
	if s.cfg == nil {
		return nil, errors.New("config not set")
	}

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	text := req.CaseText
	switch ClassifySize(text, s.cfg.Sizing) {
	case SizeTooLarge:
		return nil, ErrCaseTextTooLarge
	case SizeBlocked:
		return clarifyResult(req.OutputMode,
			"Le texte soumis est très long. Pouvez-vous limiter l'extrait aux passages pertinents de la décision (faits, motifs, dispositif) ?"), nil
	case SizeCondense:
		condensed, ok := s.condense(ctx, text)
		if !ok {
			// Falling back to the oversized original would defeat the
			// size constraints this stage exists to enforce.
			return clarifyResult(req.OutputMode,
				"Le texte soumis n'a pas pu être condensé. Pouvez-vous limiter l'extrait aux passages pertinents de la décision ?"), nil
		}
		text = condensed
	}

	var note *models.CodificationNote
	if s.codification != nil {
		note = s.codification.Resolve(text)
	}

	promptReq := *req
	promptReq.CaseText = text
	system, user := s.prompts.Generation(&promptReq, note)

	res, err := s.invoker.Invoke(ctx, llm.InvokeRequest{
		System:      system,
		User:        user,
		Contract:    llm.ContractStrict,
		MaxTokens:   s.cfg.MaxTokensFor(string(req.OutputMode)),
		Temperature: 0.2,
		Timeout:     s.cfg.Timeout.Generate,
	})
	if err != nil {
		return nil, &models.PipelineError{Stage: models.StageFinal, Status: 502, Message: err.Error()}
	}

	switch res.Status {
	case llm.StatusAborted:
		return nil, &models.PipelineError{
			Stage:   models.StageFinal,
			Status:  504,
			Message: "la génération a expiré, le texte est peut-être trop long",
		}
	case llm.StatusFailed:
		return nil, providerFailure(models.StageFinal, res)
	}

	parsed := res.Parsed
	raw := res.Raw
	repaired := false

	// Truncated output and unparseable output take the same path: one
	// permissive repair round-trip with the raw text.
	if parsed == nil || res.Status == llm.StatusTruncated {
		parsed, raw, err = s.repair(ctx, req, models.StageParse, raw, nil)
		if err != nil {
			return nil, err
		}
		repaired = true
	}

	if isClarify(parsed) {
		return clarifyFromPayload(req.OutputMode, parsed), nil
	}

	// Non-conforming anchor ids are a mechanical repair, not a reason to
	// spend the repair round-trip on a schema rejection.
	NormalizeAnchorIDs(parsed)

	if errs := s.schema.ValidateValue(parsed); errs != nil {
		if repaired {
			return nil, s.failure(ctx, req, models.StageRepairSchema, 422,
				"la réponse corrigée ne respecte toujours pas le schéma", raw, errs)
		}
		parsed, raw, err = s.repair(ctx, req, models.StageSchema, raw, errs)
		if err != nil {
			return nil, err
		}
		if isClarify(parsed) {
			return clarifyFromPayload(req.OutputMode, parsed), nil
		}
		NormalizeAnchorIDs(parsed)
		if errs := s.schema.ValidateValue(parsed); errs != nil {
			return nil, s.failure(ctx, req, models.StageRepairSchema, 422,
				"la réponse corrigée ne respecte toujours pas le schéma", raw, errs)
		}
	}

	GuardAnswer(parsed)
	return &models.PipelineResult{Kind: models.ResultAnswer, Answer: parsed}, nil
}

// condense runs the size-reduction pre-pass. The second return value is
// false when no usable condensed text came back.
func (s *CaseReaderService) condense(ctx context.Context, text string) (string, bool) {
	system, user := s.prompts.Condense(text)
	res, err := s.invoker.Invoke(ctx, llm.InvokeRequest{
		System:      system,
		User:        user,
		Contract:    llm.ContractJSON,
		MaxTokens:   s.cfg.Tokens.Condense,
		Temperature: 0.2,
		Timeout:     s.cfg.Timeout.Condense,
	})
	if err != nil {
		log.Printf("Warning: condensation call failed: %v", err)
		return "", false
	}
	if res.Status != llm.StatusOK || res.Parsed == nil {
		log.Printf("Warning: condensation produced no usable output (status %d): %s", res.Status, res.Message)
		return "", false
	}
	condensed, _ := res.Parsed["condensed_text"].(string)
	condensed = strings.TrimSpace(condensed)
	if condensed == "" {
		return "", false
	}
	return condensed, true
}

// repair issues the single permissive repair round-trip for the given
// failure class and returns the repaired payload with its raw text. trigger
// is StageParse or StageSchema; validation errors accompany schema repairs.
func (s *CaseReaderService) repair(ctx context.Context, req *models.CaseRequest, trigger models.FailureStage, raw string, errs []string) (map[string]interface{}, string, error) {
	var system, user string
	if trigger == models.StageSchema {
		system, user = s.prompts.RepairSchema(llm.StripCodeFences(raw), errs)
	} else {
		system, user = s.prompts.RepairParse(raw)
	}

	// Repair always uses the permissive contract: re-applying the strict
	// schema to already-malformed content tends to fail outright for
	// unrelated provider-side reasons.
	res, err := s.invoker.Invoke(ctx, llm.InvokeRequest{
		System:      system,
		User:        user,
		Contract:    llm.ContractJSON,
		MaxTokens:   s.cfg.MaxTokensFor(string(req.OutputMode)),
		Temperature: 0,
		Timeout:     s.cfg.Timeout.Repair,
	})
	if err != nil {
		return nil, "", &models.PipelineError{Stage: trigger, Status: 502, Message: err.Error()}
	}
	if res.Status == llm.StatusAborted {
		return nil, "", &models.PipelineError{Stage: trigger, Status: 504, Message: "la réparation a expiré"}
	}
	if res.Status == llm.StatusFailed {
		return nil, "", providerFailure(trigger, res)
	}
	if res.Parsed == nil {
		return nil, "", s.failure(ctx, req, models.StageRepairParse, 502,
			"le modèle n'a pas produit de JSON valide après réparation", res.Raw, nil)
	}
	return res.Parsed, res.Raw, nil
}

// failure builds a model non-compliance error and archives the raw output
// for debugging. Archiving is best-effort; the failure is returned either
// way.
func (s *CaseReaderService) failure(ctx context.Context, req *models.CaseRequest, stage models.FailureStage, status int, message, raw string, errs []string) *models.PipelineError {
	perr := &models.PipelineError{
		Stage:   stage,
		Status:  status,
		Message: message,
		Details: errs,
	}

	if s.artifacts == nil {
		return perr
	}

	artifact := map[string]interface{}{
		"stage":             string(stage),
		"output_mode":       string(req.OutputMode),
		"source_kind":       string(req.SourceKind),
		"raw_output":        raw,
		"validation_errors": errs,
	}
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		log.Printf("Warning: failed to encode failure artifact: %v", err)
		return perr
	}

	key, err := s.artifacts.Save(ctx, uuid.New(), "failure.json", bytes.NewReader(data))
	if err != nil {
		log.Printf("Warning: failed to archive failure artifact: %v", err)
		return perr
	}
	perr.ArtifactKey = key
	return perr
}

func validateRequest(req *models.CaseRequest) error {
	if strings.TrimSpace(req.CaseText) == "" {
		return ErrMissingCaseText
	}
	if req.OutputMode == "" {
		return ErrMissingOutputMode
	}
	if !req.OutputMode.Valid() {
		return ErrInvalidOutputMode
	}
	if !req.SourceKind.Valid() {
		return ErrInvalidSourceKind
	}
	return nil
}

// providerFailure maps a failed invocation onto the caller-facing error,
// without leaking the raw provider blob.
func providerFailure(stage models.FailureStage, res *llm.InvokeResult) *models.PipelineError {
	status := 502
	if res.HTTPStatus == 429 || res.HTTPStatus == 503 {
		status = 503
	}
	return &models.PipelineError{
		Stage:   stage,
		Status:  status,
		Message: res.Message,
	}
}

func isClarify(parsed map[string]interface{}) bool {
	t, _ := parsed["type"].(string)
	return t == string(models.ResultClarify)
}

// clarifyFromPayload normalizes a model-issued clarification into the
// minimal shape; it is accepted unconditionally since it is not trying to
// satisfy the answer schema.
func clarifyFromPayload(mode models.OutputMode, parsed map[string]interface{}) *models.PipelineResult {
	var questions []string
	if rawQs, ok := parsed["clarification_questions"].([]interface{}); ok {
		for _, q := range rawQs {
			if str, ok := q.(string); ok {
				questions = append(questions, strings.TrimSpace(str))
			}
		}
	}
	return &models.PipelineResult{
		Kind:    models.ResultClarify,
		Clarify: models.NewClarification(mode, questions),
	}
}

func clarifyResult(mode models.OutputMode, question string) *models.PipelineResult {
	return &models.PipelineResult{
		Kind:    models.ResultClarify,
		Clarify: models.NewClarification(mode, []string{question}),
	}
}
