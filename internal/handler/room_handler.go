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

type roomConflictService interface {
	RoomConflicts(ctx context.Context, roomID, termID string) (*dto.RoomConflictsResult, error)
	RoomAvailability(ctx context.Context, roomID, termID string, days []string) (*dto.AvailabilityResult, error)
}

// RoomHandler exposes room-scoped conflict endpoints.
type RoomHandler struct {
	service roomConflictService
}

// NewRoomHandler constructs the handler.
func NewRoomHandler(service roomConflictService) *RoomHandler {
	return &RoomHandler{service: service}
}

// Conflicts godoc
// @Summary Conflicts within one room's schedule
// @Tags Rooms
// @Produce json
// @Param id path string true "Room ID"
// @Param termId query string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id}/conflicts [get]
func (h *RoomHandler) Conflicts(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	termID, ok := requiredTermID(c)
	if !ok {
		return
	}
	result, err := h.service.RoomConflicts(c.Request.Context(), c.Param("id"), termID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// Availability godoc
// @Summary Open day/period combinations for a room
// @Tags Rooms
// @Produce json
// @Param id path string true "Room ID"
// @Param termId query string true "Term ID"
// @Param days query string false "Comma-separated days"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id}/availability [get]
func (h *RoomHandler) Availability(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	termID, ok := requiredTermID(c)
	if !ok {
		return
	}
	result, err := h.service.RoomAvailability(c.Request.Context(), c.Param("id"), termID, splitDays(c.Query("days")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}
