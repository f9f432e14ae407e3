package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/schedule-conflict-api/internal/models"
)

func TestStudentConflictsOverlapNamesBothCourses(t *testing.T) {
	math := &models.Course{ID: "c-math", Code: "MATH101", Subject: "Math"}
	bio := &models.Course{ID: "c-bio", Code: "BIO101", Subject: "Science"}

	slotA := assignedSlot("slot-1", "t-1", "room-1", "MONDAY", 3, math, []string{"s-1"})
	slotB := assignedSlot("slot-2", "t-2", "room-2", "MONDAY", 3, bio, []string{"s-1"})

	repo := &fakeSnapshotRepo{
		slots:    []models.ScheduleSlot{slotA, slotB},
		students: map[string]*models.Student{"s-1": {ID: "s-1", FullName: "Alice Tan"}},
	}

	svc := NewEntityConflictService(repo, nil)
	result, err := svc.StudentConflicts(context.Background(), "s-1", "term-1")
	require.NoError(t, err)

	assert.True(t, result.Found)
	assert.True(t, result.HasConflicts)
	assert.Equal(t, "Alice Tan", result.StudentName)
	require.Len(t, result.Conflicts, 1)
	c := result.Conflicts[0]
	assert.Equal(t, models.ConflictTimeOverlap, c.Type)
	assert.Equal(t, models.SeverityHigh, c.Severity)
	assert.False(t, c.Blocking)
	assert.Equal(t, 1, c.StudentsAffected)
	assert.ElementsMatch(t, []string{"MATH101", "BIO101"}, c.CourseCodes)
	assert.ElementsMatch(t, []string{"slot-1", "slot-2"}, c.SlotIDs)
}

func TestStudentConflictsUnknownStudent(t *testing.T) {
	repo := &fakeSnapshotRepo{students: map[string]*models.Student{}}

	svc := NewEntityConflictService(repo, nil)
	result, err := svc.StudentConflicts(context.Background(), "missing", "term-1")
	require.NoError(t, err)

	assert.False(t, result.Found)
	assert.False(t, result.HasConflicts)
	assert.Empty(t, result.Conflicts)
}

func TestTeacherConflictsDailyOverload(t *testing.T) {
	course := &models.Course{ID: "c-math", Code: "MATH101", Subject: "Math"}
	var slots []models.ScheduleSlot
	for period := 1; period <= 4; period++ {
		slot := assignedSlot("slot-"+string(rune('0'+period)), "t-1", "room-"+string(rune('0'+period)), "MONDAY", period, course, nil)
		slots = append(slots, slot)
	}
	repo := &fakeSnapshotRepo{
		slots:    slots,
		teachers: []models.Teacher{{ID: "t-1", FullName: "Budi Santoso", MaxPeriodsPerDay: 3, Active: true}},
	}

	svc := NewEntityConflictService(repo, nil)
	result, err := svc.TeacherConflicts(context.Background(), "t-1", "term-1")
	require.NoError(t, err)

	assert.True(t, result.Found)
	require.Len(t, result.Conflicts, 1)
	c := result.Conflicts[0]
	assert.Equal(t, models.ConflictTeacherOverload, c.Type)
	assert.Equal(t, models.SeverityHigh, c.Severity)
	assert.False(t, c.Blocking)
	assert.Len(t, c.SlotIDs, 4)
}

func TestTeacherConflictsDailyOverloadOnWeekend(t *testing.T) {
	course := &models.Course{ID: "c-math", Code: "MATH101", Subject: "Math"}
	var slots []models.ScheduleSlot
	for period := 1; period <= 4; period++ {
		slot := assignedSlot("slot-"+string(rune('0'+period)), "t-1", "room-"+string(rune('0'+period)), "SATURDAY", period, course, nil)
		slots = append(slots, slot)
	}
	repo := &fakeSnapshotRepo{
		slots:    slots,
		teachers: []models.Teacher{{ID: "t-1", FullName: "Budi Santoso", MaxPeriodsPerDay: 3, Active: true}},
	}

	svc := NewEntityConflictService(repo, nil)
	result, err := svc.TeacherConflicts(context.Background(), "t-1", "term-1")
	require.NoError(t, err)

	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, models.ConflictTeacherOverload, result.Conflicts[0].Type)
	assert.Contains(t, result.Conflicts[0].Description, "SATURDAY")
}

func TestTeacherConflictsUnknownTeacher(t *testing.T) {
	svc := NewEntityConflictService(&fakeSnapshotRepo{}, nil)
	result, err := svc.TeacherConflicts(context.Background(), "missing", "term-1")
	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.Empty(t, result.Conflicts)
}

func TestRoomConflictsCapacityOverflow(t *testing.T) {
	course := &models.Course{ID: "c-bio", Code: "BIO101", Subject: "Science"}
	slot := assignedSlot("slot-1", "t-1", "room-1", "THURSDAY", 2, course, studentIDs(22))

	repo := &fakeSnapshotRepo{
		slots: []models.ScheduleSlot{slot},
		rooms: []models.Room{{ID: "room-1", RoomNumber: "201", Capacity: 20, Type: models.RoomTypeRegular}},
	}

	svc := NewEntityConflictService(repo, nil)
	result, err := svc.RoomConflicts(context.Background(), "room-1", "term-1")
	require.NoError(t, err)

	assert.True(t, result.Found)
	assert.Equal(t, "201", result.RoomNumber)
	require.Len(t, result.Conflicts, 1)
	c := result.Conflicts[0]
	assert.Equal(t, models.ConflictRoomCapacityExceeded, c.Type)
	assert.Equal(t, models.SeverityMedium, c.Severity)
	assert.Equal(t, 2, c.StudentsAffected)
}

func TestTeacherAvailabilityExcludesBookedPeriodsOnly(t *testing.T) {
	course := &models.Course{ID: "c-math", Code: "MATH101", Subject: "Math"}
	var slots []models.ScheduleSlot
	// Monday fully booked; every other day free.
	for period := 1; period <= models.PeriodsPerDay; period++ {
		slots = append(slots, assignedSlot("m-"+string(rune('0'+period)), "t-1", "room-1", "MONDAY", period, course, nil))
	}
	repo := &fakeSnapshotRepo{slots: slots}

	svc := NewEntityConflictService(repo, nil)
	result, err := svc.TeacherAvailability(context.Background(), "t-1", "term-1", nil)
	require.NoError(t, err)

	assert.Equal(t, models.EntityTeacher, result.EntityType)
	assert.Equal(t, 4*models.PeriodsPerDay, result.TotalAvailable)
	for _, open := range result.AvailableSlots {
		assert.NotEqual(t, "MONDAY", open.DayOfWeek)
		assert.NotEmpty(t, open.StartTime)
		assert.NotEmpty(t, open.EndTime)
	}
}

func TestRoomAvailabilityHonorsDayFilter(t *testing.T) {
	course := &models.Course{ID: "c-math", Code: "MATH101", Subject: "Math"}
	repo := &fakeSnapshotRepo{slots: []models.ScheduleSlot{
		assignedSlot("slot-1", "t-1", "room-1", "TUESDAY", 1, course, nil),
	}}

	svc := NewEntityConflictService(repo, nil)
	result, err := svc.RoomAvailability(context.Background(), "room-1", "term-1", []string{"TUESDAY", "NODAY"})
	require.NoError(t, err)

	assert.Equal(t, []string{"TUESDAY"}, result.Days)
	assert.Equal(t, models.PeriodsPerDay-1, result.TotalAvailable)
	for _, open := range result.AvailableSlots {
		assert.Equal(t, "TUESDAY", open.DayOfWeek)
		assert.NotEqual(t, 1, open.PeriodNumber)
	}
}
