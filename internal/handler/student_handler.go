package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/schedule-conflict-api/internal/dto"
	"github.com/noah-isme/schedule-conflict-api/internal/middleware"
	appErrors "github.com/noah-isme/schedule-conflict-api/pkg/errors"
	"github.com/noah-isme/schedule-conflict-api/pkg/response"
)

type studentConflictService interface {
	StudentConflicts(ctx context.Context, studentID, termID string) (*dto.StudentConflictsResult, error)
}

type enrollmentCheckService interface {
	CheckCourseAddition(ctx context.Context, studentID, courseID, sectionID, termID string) (*dto.CourseAdditionCheck, error)
}

// StudentHandler exposes student-scoped conflict endpoints.
type StudentHandler struct {
	conflicts  studentConflictService
	enrollment enrollmentCheckService
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(conflicts studentConflictService, enrollment enrollmentCheckService) *StudentHandler {
	return &StudentHandler{conflicts: conflicts, enrollment: enrollment}
}

// Conflicts godoc
// @Summary Conflicts within one student's schedule
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Param termId query string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/conflicts [get]
func (h *StudentHandler) Conflicts(c *gin.Context) {
	if h.conflicts == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	termID, ok := requiredTermID(c)
	if !ok {
		return
	}
	result, err := h.conflicts.StudentConflicts(c.Request.Context(), c.Param("id"), termID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// EnrollmentCheck godoc
// @Summary Check whether a student can join a course section
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Param termId query string true "Term ID"
// @Param courseId query string true "Course ID"
// @Param sectionId query string true "Section ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/enrollment-check [get]
func (h *StudentHandler) EnrollmentCheck(c *gin.Context) {
	if h.enrollment == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	termID, ok := requiredTermID(c)
	if !ok {
		return
	}
	courseID := strings.TrimSpace(c.Query("courseId"))
	if courseID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "courseId is required"))
		return
	}
	sectionID := strings.TrimSpace(c.Query("sectionId"))
	if sectionID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "sectionId is required"))
		return
	}
	result, err := h.enrollment.CheckCourseAddition(c.Request.Context(), c.Param("id"), courseID, sectionID, termID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}
