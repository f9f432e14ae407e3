package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/schedule-conflict-api/internal/dto"
	"github.com/noah-isme/schedule-conflict-api/internal/models"
	appErrors "github.com/noah-isme/schedule-conflict-api/pkg/errors"
)

type enrollmentSnapshotReader interface {
	ListSlots(ctx context.Context, filter models.SlotFilter) ([]models.ScheduleSlot, error)
	ListSlotsByStudent(ctx context.Context, studentID, termID string) ([]models.ScheduleSlot, error)
	GetStudent(ctx context.Context, id string) (*models.Student, error)
	GetCourse(ctx context.Context, id string) (*models.Course, error)
}

// EnrollmentCheckService answers whether a student can be added to a course
// section without breaking their existing schedule.
type EnrollmentCheckService struct {
	repo   enrollmentSnapshotReader
	logger *zap.Logger
	now    func() time.Time
}

// NewEnrollmentCheckService constructs an EnrollmentCheckService.
func NewEnrollmentCheckService(repo enrollmentSnapshotReader, logger *zap.Logger) *EnrollmentCheckService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentCheckService{repo: repo, logger: logger, now: time.Now}
}

// CheckCourseAddition tests every time-assigned slot of the candidate section
// against the student's current slots, and each section slot's room occupancy
// against its capacity. When conflicts exist, alternative sections of the same
// course that avoid the student's occupied times are computed as well.
func (s *EnrollmentCheckService) CheckCourseAddition(ctx context.Context, studentID, courseID, sectionID, termID string) (*dto.CourseAdditionCheck, error) {
	if _, err := s.repo.GetStudent(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	course, err := s.repo.GetCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	sectionSlots, err := s.repo.ListSlots(ctx, models.SlotFilter{TermID: termID, CourseID: courseID, SectionID: sectionID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section slots")
	}
	studentSlots, err := s.repo.ListSlotsByStudent(ctx, studentID, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student slots")
	}

	var conflicts []models.ConflictDetail
	for i := range sectionSlots {
		candidate := &sectionSlots[i]
		if !candidate.HasTime() {
			continue
		}
		for j := range studentSlots {
			existing := &studentSlots[j]
			if !existing.HasTime() {
				continue
			}
			if !timesOverlap(candidate, existing) {
				continue
			}
			conflicts = append(conflicts, models.ConflictDetail{
				Type:               models.ConflictTimeConflict,
				Severity:           models.SeverityCritical,
				Description:        fmt.Sprintf("%s overlaps with %s on %s", course.Code, existing.CourseCode(), *candidate.DayOfWeek),
				ViolatedConstraint: "a student can attend only one class at a time",
				EntityType:         models.EntityStudent,
				EntityID:           studentID,
				SlotIDs:            []string{candidate.ID, existing.ID},
				CourseCodes:        []string{course.Code, existing.CourseCode()},
				StudentsAffected:   1,
				Blocking:           true,
				PossibleSolutions: []string{
					"choose a different section of " + course.Code,
					"drop " + existing.CourseCode(),
				},
			})
		}

		if candidate.Room != nil && candidate.EnrolledCount() >= candidate.Room.Capacity {
			conflicts = append(conflicts, models.ConflictDetail{
				Type:               models.ConflictCapacityExceeded,
				Severity:           models.SeverityMedium,
				Description:        fmt.Sprintf("room %s is full for %s (%d of %d seats taken)", candidate.Room.RoomNumber, course.Code, candidate.EnrolledCount(), candidate.Room.Capacity),
				ViolatedConstraint: "enrollment must not exceed room capacity",
				EntityType:         models.EntityRoom,
				EntityID:           candidate.Room.ID,
				SlotIDs:            []string{candidate.ID},
				CourseCodes:        []string{course.Code},
				StudentsAffected:   1,
				Blocking:           false,
				PossibleSolutions: []string{
					"move the section to a larger room",
					"enroll in a different section",
				},
			})
		}
	}

	finalizeConflicts(conflicts, s.now().UTC())

	result := &dto.CourseAdditionCheck{
		StudentID: studentID,
		CourseID:  courseID,
		SectionID: sectionID,
		TermID:    termID,
		CanEnroll: len(conflicts) == 0,
		Conflicts: conflicts,
	}
	if result.Conflicts == nil {
		result.Conflicts = []models.ConflictDetail{}
	}

	if len(conflicts) > 0 {
		alternatives, err := s.alternativeSections(ctx, courseID, sectionID, termID, studentSlots)
		if err != nil {
			return nil, err
		}
		result.AlternativeSections = alternatives
	}
	return result, nil
}

// alternativeSections finds sections of the course whose timed slots avoid the
// student's occupied time-keys entirely.
func (s *EnrollmentCheckService) alternativeSections(ctx context.Context, courseID, excludeSectionID, termID string, studentSlots []models.ScheduleSlot) ([]dto.AlternativeSection, error) {
	courseSlots, err := s.repo.ListSlots(ctx, models.SlotFilter{TermID: termID, CourseID: courseID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course sections")
	}

	occupied := occupiedKeys(studentSlots)

	bySection := make(map[string][]*models.ScheduleSlot)
	var sectionIDs []string
	for i := range courseSlots {
		slot := &courseSlots[i]
		if slot.SectionID == "" || slot.SectionID == excludeSectionID {
			continue
		}
		if _, seen := bySection[slot.SectionID]; !seen {
			sectionIDs = append(sectionIDs, slot.SectionID)
		}
		bySection[slot.SectionID] = append(bySection[slot.SectionID], slot)
	}
	sort.Strings(sectionIDs)

	var alternatives []dto.AlternativeSection
	for _, sectionID := range sectionIDs {
		slots := bySection[sectionID]
		clear := true
		var times []dto.AvailableSlot
		for _, slot := range slots {
			key, ok := slot.TimeKey()
			if !ok {
				continue
			}
			if occupied[key] {
				clear = false
				break
			}
			start, end := slotTimes(slot)
			times = append(times, dto.AvailableSlot{
				DayOfWeek:    key.Day,
				PeriodNumber: key.Period,
				StartTime:    start,
				EndTime:      end,
			})
		}
		if clear && len(times) > 0 {
			alternatives = append(alternatives, dto.AlternativeSection{SectionID: sectionID, Times: times})
		}
	}
	return alternatives, nil
}

// timesOverlap applies the interval test start1 < end2 && start2 < end1 on two
// timed slots sharing a day. Slots without explicit times fall back to period
// equality.
func timesOverlap(a, b *models.ScheduleSlot) bool {
	if *a.DayOfWeek != *b.DayOfWeek {
		return false
	}
	if a.StartTime == nil || a.EndTime == nil || b.StartTime == nil || b.EndTime == nil {
		return *a.PeriodNumber == *b.PeriodNumber
	}
	return *a.StartTime < *b.EndTime && *b.StartTime < *a.EndTime
}

// slotTimes returns the slot's explicit times, falling back to the bell
// schedule for its period.
func slotTimes(slot *models.ScheduleSlot) (string, string) {
	if slot.StartTime != nil && slot.EndTime != nil {
		return *slot.StartTime, *slot.EndTime
	}
	if slot.PeriodNumber != nil {
		times := bellSchedule[*slot.PeriodNumber]
		return times[0], times[1]
	}
	return "", ""
}
