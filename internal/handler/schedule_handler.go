package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/schedule-conflict-api/internal/dto"
	"github.com/noah-isme/schedule-conflict-api/internal/middleware"
	"github.com/noah-isme/schedule-conflict-api/internal/service"
	appErrors "github.com/noah-isme/schedule-conflict-api/pkg/errors"
	"github.com/noah-isme/schedule-conflict-api/pkg/response"
)

type completionService interface {
	Completion(ctx context.Context, termID string) (*dto.CompletionResult, error)
}

type alternativeSlotsService interface {
	FindAlternativeSlots(ctx context.Context, req service.FindAlternativeSlotsRequest) (*dto.AlternativeSlotsResult, error)
}

// ScheduleHandler exposes schedule-level read endpoints.
type ScheduleHandler struct {
	completion   completionService
	alternatives alternativeSlotsService
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(completion completionService, alternatives alternativeSlotsService) *ScheduleHandler {
	return &ScheduleHandler{completion: completion, alternatives: alternatives}
}

// Completion godoc
// @Summary Schedule assignment completion percentage
// @Tags Schedule
// @Produce json
// @Param termId query string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /schedule/completion [get]
func (h *ScheduleHandler) Completion(c *gin.Context) {
	if h.completion == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	termID, ok := requiredTermID(c)
	if !ok {
		return
	}
	result, err := h.completion.Completion(c.Request.Context(), termID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// AlternativeSlots godoc
// @Summary Open placements for a course given teacher and room constraints
// @Tags Schedule
// @Produce json
// @Param termId query string true "Term ID"
// @Param courseId query string true "Course ID"
// @Param teacherId query string false "Teacher ID"
// @Param roomId query string false "Room ID"
// @Param days query string false "Comma-separated preferred days"
// @Success 200 {object} response.Envelope
// @Router /schedule/alternative-slots [get]
func (h *ScheduleHandler) AlternativeSlots(c *gin.Context) {
	if h.alternatives == nil {
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
	result, err := h.alternatives.FindAlternativeSlots(c.Request.Context(), service.FindAlternativeSlotsRequest{
		CourseID:      courseID,
		TeacherID:     strings.TrimSpace(c.Query("teacherId")),
		RoomID:        strings.TrimSpace(c.Query("roomId")),
		TermID:        termID,
		PreferredDays: splitDays(c.Query("days")),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

func splitDays(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	days := make([]string, 0, len(parts))
	for _, part := range parts {
		if day := strings.ToUpper(strings.TrimSpace(part)); day != "" {
			days = append(days, day)
		}
	}
	return days
}
