package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"droitis-backend/models"
	"droitis-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalyzer struct {
	result *models.PipelineResult
	err    error
	got    *models.CaseRequest
}

func (s *stubAnalyzer) Analyze(ctx context.Context, req *models.CaseRequest) (*models.PipelineResult, error) {
	s.got = req
	return s.result, s.err
}

func newTestRouter(analyzer CaseAnalyzer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/cases/analyze", NewCaseHandler(analyzer).AnalyzeCase)
	return r
}

func postAnalyze(t *testing.T, r *gin.Engine, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/cases/analyze", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func validBody() string {
	return `{"case_text": "Attendu que...", "output_mode": "fiche", "source_kind": "pdf"}`
}

func TestAnalyzeCaseMalformedBody(t *testing.T) {
	stub := &stubAnalyzer{}
	r := newTestRouter(stub)

	w, resp := postAnalyze(t, r, `{"case_text": `)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, resp["success"])
	errObj := resp["error"].(map[string]interface{})
	assert.Equal(t, "INVALID_REQUEST", errObj["code"])
	assert.Nil(t, stub.got, "the pipeline must not run for a malformed body")
}

func TestAnalyzeCaseAnswer(t *testing.T) {
	stub := &stubAnalyzer{result: &models.PipelineResult{
		Kind:   models.ResultAnswer,
		Answer: map[string]interface{}{"type": "answer", "faits": "..."},
	}}
	r := newTestRouter(stub)

	w, resp := postAnalyze(t, r, validBody())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.NotEmpty(t, resp["request_id"])

	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "answer", data["type"])

	require.NotNil(t, stub.got)
	assert.Equal(t, "Attendu que...", stub.got.CaseText)
	assert.Equal(t, models.ModeFiche, stub.got.OutputMode)
	assert.Equal(t, models.SourcePDF, stub.got.SourceKind)
}

func TestAnalyzeCaseClarification(t *testing.T) {
	stub := &stubAnalyzer{result: &models.PipelineResult{
		Kind:    models.ResultClarify,
		Clarify: models.NewClarification(models.ModeFiche, []string{"Quelle juridiction ?"}),
	}}
	r := newTestRouter(stub)

	w, resp := postAnalyze(t, r, validBody())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])

	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "clarify", data["type"])
	assert.Equal(t, "fiche", data["output_mode"])
	assert.Equal(t, []interface{}{"Quelle juridiction ?"}, data["clarification_questions"])
}

func TestAnalyzeCasePipelineError(t *testing.T) {
	stub := &stubAnalyzer{err: &models.PipelineError{
		Stage:       models.StageRepairSchema,
		Status:      422,
		Message:     "la réponse corrigée ne respecte toujours pas le schéma",
		Details:     []string{"required: missing property 'faits'"},
		ArtifactKey: "ab/abcd_failure.json",
	}}
	r := newTestRouter(stub)

	w, resp := postAnalyze(t, r, validBody())

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "repair_schema", resp["attempt_stage"])
	assert.Equal(t, float64(422), resp["status"])
	assert.Equal(t, "la réponse corrigée ne respecte toujours pas le schéma", resp["error"])
	assert.Equal(t, []interface{}{"required: missing property 'faits'"}, resp["details"])
	assert.Equal(t, "ab/abcd_failure.json", resp["artifact_key"])
}

func TestAnalyzeCasePipelineErrorOmitsEmptyFields(t *testing.T) {
	stub := &stubAnalyzer{err: &models.PipelineError{
		Stage:   models.StageFinal,
		Status:  504,
		Message: "la génération a expiré",
	}}
	r := newTestRouter(stub)

	w, resp := postAnalyze(t, r, validBody())

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Equal(t, "final", resp["attempt_stage"])
	assert.NotContains(t, resp, "details")
	assert.NotContains(t, resp, "artifact_key")
}

func TestAnalyzeCaseTooLarge(t *testing.T) {
	stub := &stubAnalyzer{err: service.ErrCaseTextTooLarge}
	r := newTestRouter(stub)

	w, resp := postAnalyze(t, r, validBody())

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	errObj := resp["error"].(map[string]interface{})
	assert.Equal(t, "CASE_TEXT_TOO_LARGE", errObj["code"])
}

func TestAnalyzeCaseInputSentinels(t *testing.T) {
	sentinels := []error{
		service.ErrMissingCaseText,
		service.ErrMissingOutputMode,
		service.ErrInvalidOutputMode,
		service.ErrInvalidSourceKind,
	}

	for _, sentinel := range sentinels {
		t.Run(sentinel.Error(), func(t *testing.T) {
			stub := &stubAnalyzer{err: sentinel}
			r := newTestRouter(stub)

			w, resp := postAnalyze(t, r, validBody())

			assert.Equal(t, http.StatusBadRequest, w.Code)
			errObj := resp["error"].(map[string]interface{})
			assert.Equal(t, "INVALID_REQUEST", errObj["code"])
		})
	}
}

func TestAnalyzeCaseUnknownError(t *testing.T) {
	stub := &stubAnalyzer{err: errors.New("boom")}
	r := newTestRouter(stub)

	w, resp := postAnalyze(t, r, validBody())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	errObj := resp["error"].(map[string]interface{})
	assert.Equal(t, "ANALYSIS_FAILED", errObj["code"])
}
