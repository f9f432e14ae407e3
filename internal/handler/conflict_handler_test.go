package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/schedule-conflict-api/internal/dto"
	appErrors "github.com/noah-isme/schedule-conflict-api/pkg/errors"
)

type responseEnvelope struct {
	Data  map[string]interface{} `json:"data"`
	Error map[string]interface{} `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

type fakeReportingSrv struct {
	all          *dto.AllConflictsResult
	allErr       error
	dashboard    *dto.ConflictDashboard
	dashboardHit bool
	violations   *dto.ConstraintViolationsResult
	quality      *dto.ScheduleQualityMetrics
	qualityHit   bool
	lastSeverity string
}

func (f *fakeReportingSrv) AllConflicts(_ context.Context, _, severity string) (*dto.AllConflictsResult, error) {
	f.lastSeverity = severity
	return f.all, f.allErr
}

func (f *fakeReportingSrv) Dashboard(context.Context, string) (*dto.ConflictDashboard, bool, error) {
	return f.dashboard, f.dashboardHit, nil
}

func (f *fakeReportingSrv) ConstraintViolations(context.Context, string, string) (*dto.ConstraintViolationsResult, error) {
	return f.violations, nil
}

func (f *fakeReportingSrv) OptimizationOpportunities(context.Context, string) (*dto.OptimizationOpportunitiesResult, error) {
	return &dto.OptimizationOpportunitiesResult{}, nil
}

func (f *fakeReportingSrv) QualityMetrics(context.Context, string) (*dto.ScheduleQualityMetrics, bool, error) {
	return f.quality, f.qualityHit, nil
}

func TestConflictHandlerListRequiresTerm(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewConflictHandler(&fakeReportingSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/conflicts", nil)

	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConflictHandlerListPassesSeverityFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeReportingSrv{all: &dto.AllConflictsResult{TermID: "term-1"}}
	handler := NewConflictHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/conflicts?termId=term-1&severity=CRITICAL", nil)

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CRITICAL", srv.lastSeverity)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, "term-1", envelope.Data["termId"])
}

func TestConflictHandlerListUppercasesSeverity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeReportingSrv{all: &dto.AllConflictsResult{TermID: "term-1"}}
	handler := NewConflictHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/conflicts?termId=term-1&severity=critical", nil)

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CRITICAL", srv.lastSeverity)
}

func TestConflictHandlerListServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewConflictHandler(&fakeReportingSrv{
		allErr: appErrors.Clone(appErrors.ErrValidation, "unknown severity"),
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/conflicts?termId=term-1&severity=SEVERE", nil)

	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConflictHandlerDashboardReportsCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewConflictHandler(&fakeReportingSrv{
		dashboard:    &dto.ConflictDashboard{TermID: "term-1", TotalConflicts: 2},
		dashboardHit: true,
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/conflicts/dashboard?termId=term-1", nil)

	handler.Dashboard(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Equal(t, float64(2), envelope.Data["totalConflicts"])
}

func TestConflictHandlerQuality(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewConflictHandler(&fakeReportingSrv{
		quality: &dto.ScheduleQualityMetrics{TermID: "term-1", CompositeScore: 71.5},
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/conflicts/quality?termId=term-1", nil)

	handler.Quality(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, 71.5, envelope.Data["compositeScore"])
}
