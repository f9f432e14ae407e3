package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/schedule-conflict-api/internal/dto"
	"github.com/noah-isme/schedule-conflict-api/internal/middleware"
	appErrors "github.com/noah-isme/schedule-conflict-api/pkg/errors"
	"github.com/noah-isme/schedule-conflict-api/pkg/response"
)

type reportingService interface {
	AllConflicts(ctx context.Context, termID, severityFilter string) (*dto.AllConflictsResult, error)
	Dashboard(ctx context.Context, termID string) (*dto.ConflictDashboard, bool, error)
	ConstraintViolations(ctx context.Context, termID, violationType string) (*dto.ConstraintViolationsResult, error)
	OptimizationOpportunities(ctx context.Context, termID string) (*dto.OptimizationOpportunitiesResult, error)
	QualityMetrics(ctx context.Context, termID string) (*dto.ScheduleQualityMetrics, bool, error)
}

// ConflictHandler exposes whole-schedule conflict reports over HTTP.
type ConflictHandler struct {
	service reportingService
}

// NewConflictHandler constructs the handler.
func NewConflictHandler(service reportingService) *ConflictHandler {
	return &ConflictHandler{service: service}
}

func requiredTermID(c *gin.Context) (string, bool) {
	termID := strings.TrimSpace(c.Query("termId"))
	if termID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "termId is required"))
		return "", false
	}
	return termID, true
}

// List godoc
// @Summary List all schedule conflicts for a term
// @Tags Conflicts
// @Produce json
// @Param termId query string true "Term ID"
// @Param severity query string false "Severity filter (CRITICAL, HIGH, MEDIUM, LOW)"
// @Success 200 {object} response.Envelope
// @Router /conflicts [get]
func (h *ConflictHandler) List(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	termID, ok := requiredTermID(c)
	if !ok {
		return
	}
	severity := strings.ToUpper(strings.TrimSpace(c.Query("severity")))
	result, err := h.service.AllConflicts(c.Request.Context(), termID, severity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// Dashboard godoc
// @Summary Conflict dashboard summary
// @Tags Conflicts
// @Produce json
// @Param termId query string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /conflicts/dashboard [get]
func (h *ConflictHandler) Dashboard(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	termID, ok := requiredTermID(c)
	if !ok {
		return
	}
	start := time.Now()
	dashboard, cacheHit, err := h.service.Dashboard(c.Request.Context(), termID)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	middleware.SetProcessingTime(c, time.Since(start))
	response.JSON(c, http.StatusOK, dashboard, nil, middleware.ExtractMeta(c))
}

// Violations godoc
// @Summary List constraint violations
// @Tags Conflicts
// @Produce json
// @Param termId query string true "Term ID"
// @Param type query string false "Violation type (CAPACITY, TEACHER_LOAD)"
// @Success 200 {object} response.Envelope
// @Router /conflicts/violations [get]
func (h *ConflictHandler) Violations(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	termID, ok := requiredTermID(c)
	if !ok {
		return
	}
	violationType := strings.ToUpper(strings.TrimSpace(c.Query("type")))
	result, err := h.service.ConstraintViolations(c.Request.Context(), termID, violationType)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// Opportunities godoc
// @Summary List schedule optimization opportunities
// @Tags Conflicts
// @Produce json
// @Param termId query string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /conflicts/opportunities [get]
func (h *ConflictHandler) Opportunities(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	termID, ok := requiredTermID(c)
	if !ok {
		return
	}
	result, err := h.service.OptimizationOpportunities(c.Request.Context(), termID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// Quality godoc
// @Summary Schedule quality metrics
// @Tags Conflicts
// @Produce json
// @Param termId query string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /conflicts/quality [get]
func (h *ConflictHandler) Quality(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	termID, ok := requiredTermID(c)
	if !ok {
		return
	}
	start := time.Now()
	metrics, cacheHit, err := h.service.QualityMetrics(c.Request.Context(), termID)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	middleware.SetProcessingTime(c, time.Since(start))
	response.JSON(c, http.StatusOK, metrics, nil, middleware.ExtractMeta(c))
}
