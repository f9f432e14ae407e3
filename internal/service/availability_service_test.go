package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/schedule-conflict-api/internal/models"
)

func TestFindAlternativeSlotsIntersectsTeacherAndRoom(t *testing.T) {
	course := &models.Course{ID: "c-math", Code: "MATH101", Subject: "Math"}
	repo := &fakeSnapshotRepo{slots: []models.ScheduleSlot{
		assignedSlot("slot-1", "t-1", "room-9", "MONDAY", 1, course, nil),
		assignedSlot("slot-2", "t-9", "room-1", "MONDAY", 2, course, nil),
	}}

	svc := NewAvailabilityService(repo, nil)
	result, err := svc.FindAlternativeSlots(context.Background(), FindAlternativeSlotsRequest{
		CourseID:      "c-math",
		TeacherID:     "t-1",
		RoomID:        "room-1",
		TermID:        "term-1",
		PreferredDays: []string{"MONDAY"},
	})
	require.NoError(t, err)

	// Period 1 is blocked by the teacher, period 2 by the room.
	assert.Equal(t, models.PeriodsPerDay-2, result.TotalFound)
	for _, open := range result.Alternatives {
		assert.Equal(t, "MONDAY", open.DayOfWeek)
		assert.NotContains(t, []int{1, 2}, open.PeriodNumber)
	}
}

func TestFindAlternativeSlotsRequiresCourse(t *testing.T) {
	svc := NewAvailabilityService(&fakeSnapshotRepo{}, nil)
	_, err := svc.FindAlternativeSlots(context.Background(), FindAlternativeSlotsRequest{TermID: "term-1"})
	require.Error(t, err)
}

func TestFindAlternativeSlotsDefaultsToWeekdays(t *testing.T) {
	svc := NewAvailabilityService(&fakeSnapshotRepo{}, nil)
	result, err := svc.FindAlternativeSlots(context.Background(), FindAlternativeSlotsRequest{
		CourseID: "c-math",
		TermID:   "term-1",
	})
	require.NoError(t, err)

	assert.Equal(t, models.SlotsPerWeek, result.TotalFound)
}
