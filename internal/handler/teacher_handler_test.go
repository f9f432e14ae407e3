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
)

type fakeTeacherSrv struct {
	conflicts    *dto.TeacherConflictsResult
	availability *dto.AvailabilityResult
	lastDays     []string
}

func (f *fakeTeacherSrv) TeacherConflicts(context.Context, string, string) (*dto.TeacherConflictsResult, error) {
	return f.conflicts, nil
}

func (f *fakeTeacherSrv) TeacherAvailability(_ context.Context, _, _ string, days []string) (*dto.AvailabilityResult, error) {
	f.lastDays = days
	return f.availability, nil
}

func TestTeacherHandlerConflicts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewTeacherHandler(&fakeTeacherSrv{
		conflicts: &dto.TeacherConflictsResult{TeacherID: "t-1", Found: true, HasConflicts: true},
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/teachers/t-1/conflicts?termId=term-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "t-1"}}

	handler.Conflicts(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, true, envelope.Data["hasConflicts"])
}

func TestTeacherHandlerAvailabilityParsesDays(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeTeacherSrv{availability: &dto.AvailabilityResult{EntityID: "t-1"}}
	handler := NewTeacherHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/teachers/t-1/availability?termId=term-1&days=monday,%20tuesday", nil)
	c.Params = gin.Params{{Key: "id", Value: "t-1"}}

	handler.Availability(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"MONDAY", "TUESDAY"}, srv.lastDays)
}
