package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/schedule-conflict-api/internal/models"
	appErrors "github.com/noah-isme/schedule-conflict-api/pkg/errors"
)

func TestCheckCourseAdditionTimeConflict(t *testing.T) {
	math := &models.Course{ID: "c-math", Code: "MATH101", Subject: "Math"}
	bio := &models.Course{ID: "c-bio", Code: "BIO101", Subject: "Science"}

	existing := assignedSlot("slot-old", "t-1", "room-1", "MONDAY", 3, math, []string{"s-1"})
	existing.StartTime = strPtr("10:00")
	existing.EndTime = strPtr("10:50")

	candidate := assignedSlot("slot-new", "t-2", "room-2", "MONDAY", 3, bio, nil)
	candidate.SectionID = "bio-a"
	candidate.StartTime = strPtr("10:30")
	candidate.EndTime = strPtr("11:20")

	repo := &fakeSnapshotRepo{
		slots:    []models.ScheduleSlot{existing, candidate},
		students: map[string]*models.Student{"s-1": {ID: "s-1", FullName: "Alice Tan"}},
		courses:  map[string]*models.Course{"c-bio": bio},
	}

	svc := NewEnrollmentCheckService(repo, nil)
	result, err := svc.CheckCourseAddition(context.Background(), "s-1", "c-bio", "bio-a", "term-1")
	require.NoError(t, err)

	assert.False(t, result.CanEnroll)
	require.Len(t, result.Conflicts, 1)
	c := result.Conflicts[0]
	assert.Equal(t, models.ConflictTimeConflict, c.Type)
	assert.Equal(t, models.SeverityCritical, c.Severity)
	assert.True(t, c.Blocking)
	assert.ElementsMatch(t, []string{"BIO101", "MATH101"}, c.CourseCodes)
}

func TestCheckCourseAdditionNonOverlappingTimesAllowed(t *testing.T) {
	math := &models.Course{ID: "c-math", Code: "MATH101", Subject: "Math"}
	bio := &models.Course{ID: "c-bio", Code: "BIO101", Subject: "Science"}

	existing := assignedSlot("slot-old", "t-1", "room-1", "MONDAY", 3, math, []string{"s-1"})
	existing.StartTime = strPtr("10:00")
	existing.EndTime = strPtr("10:50")

	// Same day, adjacent interval: end of one equals start of the other.
	candidate := assignedSlot("slot-new", "t-2", "room-2", "MONDAY", 4, bio, nil)
	candidate.SectionID = "bio-a"
	candidate.StartTime = strPtr("10:50")
	candidate.EndTime = strPtr("11:40")

	repo := &fakeSnapshotRepo{
		slots:    []models.ScheduleSlot{existing, candidate},
		students: map[string]*models.Student{"s-1": {ID: "s-1"}},
		courses:  map[string]*models.Course{"c-bio": bio},
	}

	svc := NewEnrollmentCheckService(repo, nil)
	result, err := svc.CheckCourseAddition(context.Background(), "s-1", "c-bio", "bio-a", "term-1")
	require.NoError(t, err)

	assert.True(t, result.CanEnroll)
	assert.Empty(t, result.Conflicts)
}

func TestCheckCourseAdditionRoomFull(t *testing.T) {
	bio := &models.Course{ID: "c-bio", Code: "BIO101", Subject: "Science"}

	candidate := assignedSlot("slot-new", "t-2", "room-2", "TUESDAY", 2, bio, studentIDs(20))
	candidate.SectionID = "bio-a"
	candidate.Room.Capacity = 20

	repo := &fakeSnapshotRepo{
		slots:    []models.ScheduleSlot{candidate},
		students: map[string]*models.Student{"s-1": {ID: "s-1"}},
		courses:  map[string]*models.Course{"c-bio": bio},
	}

	svc := NewEnrollmentCheckService(repo, nil)
	result, err := svc.CheckCourseAddition(context.Background(), "s-1", "c-bio", "bio-a", "term-1")
	require.NoError(t, err)

	assert.False(t, result.CanEnroll)
	require.Len(t, result.Conflicts, 1)
	c := result.Conflicts[0]
	assert.Equal(t, models.ConflictCapacityExceeded, c.Type)
	assert.Equal(t, models.SeverityMedium, c.Severity)
	assert.False(t, c.Blocking)
}

func TestCheckCourseAdditionSuggestsAlternativeSections(t *testing.T) {
	math := &models.Course{ID: "c-math", Code: "MATH101", Subject: "Math"}
	bio := &models.Course{ID: "c-bio", Code: "BIO101", Subject: "Science"}

	existing := assignedSlot("slot-old", "t-1", "room-1", "MONDAY", 3, math, []string{"s-1"})

	blocked := assignedSlot("slot-a", "t-2", "room-2", "MONDAY", 3, bio, nil)
	blocked.SectionID = "bio-a"

	open := assignedSlot("slot-b", "t-3", "room-3", "TUESDAY", 5, bio, nil)
	open.SectionID = "bio-b"

	repo := &fakeSnapshotRepo{
		slots:    []models.ScheduleSlot{existing, blocked, open},
		students: map[string]*models.Student{"s-1": {ID: "s-1"}},
		courses:  map[string]*models.Course{"c-bio": bio},
	}

	svc := NewEnrollmentCheckService(repo, nil)
	result, err := svc.CheckCourseAddition(context.Background(), "s-1", "c-bio", "bio-a", "term-1")
	require.NoError(t, err)

	assert.False(t, result.CanEnroll)
	require.Len(t, result.AlternativeSections, 1)
	alt := result.AlternativeSections[0]
	assert.Equal(t, "bio-b", alt.SectionID)
	require.Len(t, alt.Times, 1)
	assert.Equal(t, "TUESDAY", alt.Times[0].DayOfWeek)
	assert.Equal(t, 5, alt.Times[0].PeriodNumber)
}

func TestCheckCourseAdditionUnknownStudent(t *testing.T) {
	repo := &fakeSnapshotRepo{
		students: map[string]*models.Student{},
		courses:  map[string]*models.Course{"c-bio": {ID: "c-bio", Code: "BIO101"}},
	}

	svc := NewEnrollmentCheckService(repo, nil)
	_, err := svc.CheckCourseAddition(context.Background(), "missing", "c-bio", "bio-a", "term-1")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestCheckCourseAdditionUnknownCourse(t *testing.T) {
	repo := &fakeSnapshotRepo{
		students: map[string]*models.Student{"s-1": {ID: "s-1"}},
		courses:  map[string]*models.Course{},
	}

	svc := NewEnrollmentCheckService(repo, nil)
	_, err := svc.CheckCourseAddition(context.Background(), "s-1", "missing", "sec", "term-1")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
