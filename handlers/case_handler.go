package handlers

import (
	"context"
	"errors"
	"net/http"

	"droitis-backend/models"
	"droitis-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CaseAnalyzer runs one case request through the pipeline.
type CaseAnalyzer interface {
	Analyze(ctx context.Context, req *models.CaseRequest) (*models.PipelineResult, error)
}

// CaseHandler handles HTTP requests for case analysis.
type CaseHandler struct {
	analyzer CaseAnalyzer
}

// NewCaseHandler creates a new case handler.
func NewCaseHandler(analyzer CaseAnalyzer) *CaseHandler {
	return &CaseHandler{analyzer: analyzer}
}

// AnalyzeCase handles POST /api/cases/analyze.
func (h *CaseHandler) AnalyzeCase(c *gin.Context) {
	var req models.CaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	result, err := h.analyzer.Analyze(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	requestID := uuid.New().String()
	switch result.Kind {
	case models.ResultClarify:
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"request_id": requestID,
			"data":       result.Clarify,
		})
	default:
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"request_id": requestID,
			"data":       result.Answer,
		})
	}
}

// writeError maps pipeline errors onto the stable error taxonomy. The
// caller always receives well-formed JSON, never a raw provider blob.
func (h *CaseHandler) writeError(c *gin.Context, err error) {
	var perr *models.PipelineError
	if errors.As(err, &perr) {
		body := gin.H{
			"error":         perr.Message,
			"attempt_stage": perr.Stage,
			"status":        perr.Status,
		}
		if len(perr.Details) > 0 {
			body["details"] = perr.Details
		}
		if perr.ArtifactKey != "" {
			body["artifact_key"] = perr.ArtifactKey
		}
		c.JSON(perr.Status, body)
		return
	}

	switch {
	case errors.Is(err, service.ErrCaseTextTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CASE_TEXT_TOO_LARGE",
				"message": err.Error(),
			},
		})
	case errors.Is(err, service.ErrMissingCaseText),
		errors.Is(err, service.ErrMissingOutputMode),
		errors.Is(err, service.ErrInvalidOutputMode),
		errors.Is(err, service.ErrInvalidSourceKind):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ANALYSIS_FAILED",
				"message": err.Error(),
			},
		})
	}
}
