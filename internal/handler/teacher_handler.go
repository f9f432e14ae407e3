package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/schedule-conflict-api/internal/dto"
	"github.com/noah-isme/schedule-conflict-api/internal/middleware"
	appErrors "github.com/noah-isme/schedule-conflict-api/pkg/errors"
	"github.com/noah-isme/schedule-conflict-api/pkg/response"
)

type teacherConflictService interface {
	TeacherConflicts(ctx context.Context, teacherID, termID string) (*dto.TeacherConflictsResult, error)
	TeacherAvailability(ctx context.Context, teacherID, termID string, days []string) (*dto.AvailabilityResult, error)
}

// TeacherHandler exposes teacher-scoped conflict endpoints.
type TeacherHandler struct {
	service teacherConflictService
}

// NewTeacherHandler constructs the handler.
func NewTeacherHandler(service teacherConflictService) *TeacherHandler {
	return &TeacherHandler{service: service}
}

// Conflicts godoc
// @Summary Conflicts within one teacher's schedule
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Param termId query string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/conflicts [get]
func (h *TeacherHandler) Conflicts(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	termID, ok := requiredTermID(c)
	if !ok {
		return
	}
	result, err := h.service.TeacherConflicts(c.Request.Context(), c.Param("id"), termID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// Availability godoc
// @Summary Open day/period combinations for a teacher
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Param termId query string true "Term ID"
// @Param days query string false "Comma-separated days"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/availability [get]
func (h *TeacherHandler) Availability(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	termID, ok := requiredTermID(c)
	if !ok {
		return
	}
	result, err := h.service.TeacherAvailability(c.Request.Context(), c.Param("id"), termID, splitDays(c.Query("days")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}
