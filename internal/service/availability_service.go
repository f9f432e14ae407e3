package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/schedule-conflict-api/internal/dto"
	"github.com/noah-isme/schedule-conflict-api/internal/models"
	appErrors "github.com/noah-isme/schedule-conflict-api/pkg/errors"
)

type availabilitySnapshotReader interface {
	ListSlots(ctx context.Context, filter models.SlotFilter) ([]models.ScheduleSlot, error)
}

// FindAlternativeSlotsRequest carries the placement query for a course.
type FindAlternativeSlotsRequest struct {
	CourseID      string `validate:"required"`
	TeacherID     string
	RoomID        string
	TermID        string `validate:"required"`
	PreferredDays []string
}

// AvailabilityService finds open placements for a course given teacher and
// room constraints.
type AvailabilityService struct {
	repo      availabilitySnapshotReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAvailabilityService constructs an AvailabilityService.
func NewAvailabilityService(repo availabilitySnapshotReader, logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{repo: repo, validator: validator.New(), logger: logger}
}

// FindAlternativeSlots intersects teacher and room availability: a day/period
// pair qualifies only when absent from both occupied sets, restricted to the
// preferred days when given.
func (s *AvailabilityService) FindAlternativeSlots(ctx context.Context, req FindAlternativeSlotsRequest) (*dto.AlternativeSlotsResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid alternative slots query")
	}

	occupied := make(map[models.TimeKey]bool)

	if req.TeacherID != "" {
		slots, err := s.repo.ListSlots(ctx, models.SlotFilter{TermID: req.TermID, TeacherID: req.TeacherID})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher slots")
		}
		for key := range occupiedKeys(slots) {
			occupied[key] = true
		}
	}

	if req.RoomID != "" {
		slots, err := s.repo.ListSlots(ctx, models.SlotFilter{TermID: req.TermID, RoomID: req.RoomID})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room slots")
		}
		for key := range occupiedKeys(slots) {
			occupied[key] = true
		}
	}

	days := normalizeDays(req.PreferredDays)
	alternatives := make([]dto.AvailableSlot, 0, len(days)*models.PeriodsPerDay)
	for _, day := range days {
		for period := 1; period <= models.PeriodsPerDay; period++ {
			if occupied[models.TimeKey{Day: day, Period: period}] {
				continue
			}
			times := bellSchedule[period]
			alternatives = append(alternatives, dto.AvailableSlot{
				DayOfWeek:    day,
				PeriodNumber: period,
				StartTime:    times[0],
				EndTime:      times[1],
			})
		}
	}

	return &dto.AlternativeSlotsResult{
		CourseID:      req.CourseID,
		TeacherID:     req.TeacherID,
		RoomID:        req.RoomID,
		TermID:        req.TermID,
		PreferredDays: req.PreferredDays,
		Alternatives:  alternatives,
		TotalFound:    len(alternatives),
	}, nil
}
