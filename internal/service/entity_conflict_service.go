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

type entitySnapshotReader interface {
	ListSlots(ctx context.Context, filter models.SlotFilter) ([]models.ScheduleSlot, error)
	ListSlotsByStudent(ctx context.Context, studentID, termID string) ([]models.ScheduleSlot, error)
	GetStudent(ctx context.Context, id string) (*models.Student, error)
	GetTeacher(ctx context.Context, id string) (*models.Teacher, error)
	GetRoom(ctx context.Context, id string) (*models.Room, error)
}

// bellSchedule maps period numbers to default start/end times used when
// reporting availability.
var bellSchedule = map[int][2]string{
	1: {"08:00", "08:50"},
	2: {"09:00", "09:50"},
	3: {"10:00", "10:50"},
	4: {"11:00", "11:50"},
	5: {"12:00", "12:50"},
	6: {"13:00", "13:50"},
	7: {"14:00", "14:50"},
	8: {"15:00", "15:50"},
}

// EntityConflictService produces conflict views and availability scoped to a
// single student, teacher or room.
type EntityConflictService struct {
	repo   entitySnapshotReader
	logger *zap.Logger
	now    func() time.Time
}

// NewEntityConflictService constructs an EntityConflictService.
func NewEntityConflictService(repo entitySnapshotReader, logger *zap.Logger) *EntityConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntityConflictService{repo: repo, logger: logger, now: time.Now}
}

// StudentConflicts reports time overlaps within one student's schedule. A
// student absent from the snapshot yields an empty not-found result rather
// than an error.
func (s *EntityConflictService) StudentConflicts(ctx context.Context, studentID, termID string) (*dto.StudentConflictsResult, error) {
	result := &dto.StudentConflictsResult{
		StudentID: studentID,
		TermID:    termID,
		Conflicts: []models.ConflictDetail{},
	}

	student, err := s.repo.GetStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return result, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	result.Found = true
	result.StudentName = student.FullName

	slots, err := s.repo.ListSlotsByStudent(ctx, studentID, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student slots")
	}

	byKey := make(map[models.TimeKey][]*models.ScheduleSlot)
	var keys []models.TimeKey
	for i := range slots {
		key, ok := slots[i].TimeKey()
		if !ok {
			continue
		}
		if _, seen := byKey[key]; !seen {
			keys = append(keys, key)
		}
		byKey[key] = append(byKey[key], &slots[i])
	}

	var conflicts []models.ConflictDetail
	for _, key := range keys {
		group := byKey[key]
		if len(group) < 2 {
			continue
		}
		slotIDs := make([]string, 0, len(group))
		codes := make([]string, 0, len(group))
		for _, slot := range group {
			slotIDs = append(slotIDs, slot.ID)
			codes = append(codes, slot.CourseCode())
		}
		conflicts = append(conflicts, models.ConflictDetail{
			Type:               models.ConflictTimeOverlap,
			Severity:           models.SeverityHigh,
			Description:        fmt.Sprintf("student %s is enrolled in %d classes on %s period %d", student.FullName, len(group), key.Day, key.Period),
			ViolatedConstraint: "a student can attend only one class per period",
			EntityType:         models.EntityStudent,
			EntityID:           studentID,
			SlotIDs:            slotIDs,
			CourseCodes:        codes,
			StudentsAffected:   1,
			Blocking:           false,
			PossibleSolutions: []string{
				"drop one of the overlapping courses",
				"switch to a section meeting at a different period",
			},
		})
	}

	finalizeConflicts(conflicts, s.now().UTC())
	result.Conflicts = conflicts
	result.HasConflicts = len(conflicts) > 0
	return result, nil
}

// TeacherConflicts reports double-bookings within a teacher's own slots plus
// any day whose load exceeds the teacher's daily period limit.
func (s *EntityConflictService) TeacherConflicts(ctx context.Context, teacherID, termID string) (*dto.TeacherConflictsResult, error) {
	result := &dto.TeacherConflictsResult{
		TeacherID: teacherID,
		TermID:    termID,
		Conflicts: []models.ConflictDetail{},
	}

	teacher, err := s.repo.GetTeacher(ctx, teacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return result, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	result.Found = true
	result.TeacherName = teacher.FullName

	slots, err := s.repo.ListSlots(ctx, models.SlotFilter{TermID: termID, TeacherID: teacherID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher slots")
	}

	conflicts := detectScopedDoubleBookings(slots, models.EntityTeacher, teacherID, teacher.FullName)

	perDay := make(map[string]int)
	for i := range slots {
		if slots[i].DayOfWeek == nil {
			continue
		}
		perDay[*slots[i].DayOfWeek]++
	}
	days := make([]string, 0, len(perDay))
	for day := range perDay {
		days = append(days, day)
	}
	sort.Slice(days, func(a, b int) bool { return dayOrder[days[a]] < dayOrder[days[b]] })
	for _, day := range days {
		load := perDay[day]
		if teacher.MaxPeriodsPerDay <= 0 || load <= teacher.MaxPeriodsPerDay {
			continue
		}
		conflicts = append(conflicts, models.ConflictDetail{
			Type:               models.ConflictTeacherOverload,
			Severity:           models.SeverityHigh,
			Description:        fmt.Sprintf("%s teaches %d periods on %s, above the limit of %d", teacher.FullName, load, day, teacher.MaxPeriodsPerDay),
			ViolatedConstraint: "daily teaching load must not exceed max periods per day",
			EntityType:         models.EntityTeacher,
			EntityID:           teacherID,
			SlotIDs:            slotIDsForDay(slots, day),
			StudentsAffected:   0,
			Blocking:           false,
			PossibleSolutions: []string{
				"move one period to another day",
				"reassign a section to a colleague",
			},
		})
	}

	finalizeConflicts(conflicts, s.now().UTC())
	result.Conflicts = conflicts
	result.HasConflicts = len(conflicts) > 0
	return result, nil
}

// RoomConflicts reports double-bookings and capacity overflow scoped to one
// room.
func (s *EntityConflictService) RoomConflicts(ctx context.Context, roomID, termID string) (*dto.RoomConflictsResult, error) {
	result := &dto.RoomConflictsResult{
		RoomID:    roomID,
		TermID:    termID,
		Conflicts: []models.ConflictDetail{},
	}

	room, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return result, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	result.Found = true
	result.RoomNumber = room.RoomNumber

	slots, err := s.repo.ListSlots(ctx, models.SlotFilter{TermID: termID, RoomID: roomID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room slots")
	}

	conflicts := detectScopedDoubleBookings(slots, models.EntityRoom, roomID, room.RoomNumber)

	for i := range slots {
		slot := &slots[i]
		overflow := slot.EnrolledCount() - room.Capacity
		if overflow <= 0 {
			continue
		}
		conflicts = append(conflicts, models.ConflictDetail{
			Type:               models.ConflictRoomCapacityExceeded,
			Severity:           models.SeverityMedium,
			Description:        fmt.Sprintf("room %s holds %d students for %s but its capacity is %d", room.RoomNumber, slot.EnrolledCount(), slot.CourseCode(), room.Capacity),
			ViolatedConstraint: "enrollment must not exceed room capacity",
			EntityType:         models.EntityRoom,
			EntityID:           roomID,
			SlotIDs:            []string{slot.ID},
			CourseCodes:        []string{slot.CourseCode()},
			StudentsAffected:   overflow,
			Blocking:           false,
			PossibleSolutions: []string{
				"move the section to a larger room",
				"transfer overflow students to another section",
			},
		})
	}

	finalizeConflicts(conflicts, s.now().UTC())
	result.Conflicts = conflicts
	result.HasConflicts = len(conflicts) > 0
	return result, nil
}

// TeacherAvailability enumerates open day/period combinations for a teacher.
// An empty day filter means Monday through Friday.
func (s *EntityConflictService) TeacherAvailability(ctx context.Context, teacherID, termID string, days []string) (*dto.AvailabilityResult, error) {
	slots, err := s.repo.ListSlots(ctx, models.SlotFilter{TermID: termID, TeacherID: teacherID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher slots")
	}
	return buildAvailability(models.EntityTeacher, teacherID, termID, days, occupiedKeys(slots)), nil
}

// RoomAvailability enumerates open day/period combinations for a room.
func (s *EntityConflictService) RoomAvailability(ctx context.Context, roomID, termID string, days []string) (*dto.AvailabilityResult, error) {
	slots, err := s.repo.ListSlots(ctx, models.SlotFilter{TermID: termID, RoomID: roomID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room slots")
	}
	return buildAvailability(models.EntityRoom, roomID, termID, days, occupiedKeys(slots)), nil
}

// detectScopedDoubleBookings flags time-keys occupied by more than one of the
// entity's own slots.
func detectScopedDoubleBookings(slots []models.ScheduleSlot, entityType, entityID, entityName string) []models.ConflictDetail {
	byKey := make(map[models.TimeKey][]*models.ScheduleSlot)
	var keys []models.TimeKey
	for i := range slots {
		key, ok := slots[i].TimeKey()
		if !ok {
			continue
		}
		if _, seen := byKey[key]; !seen {
			keys = append(keys, key)
		}
		byKey[key] = append(byKey[key], &slots[i])
	}

	var conflicts []models.ConflictDetail
	for _, key := range keys {
		group := byKey[key]
		if len(group) < 2 {
			continue
		}
		ctype := models.ConflictTeacherDoubleBooking
		constraint := "a teacher can teach only one section per period"
		solutions := []string{
			"reassign one course to a different teacher",
			"move one course to a different period",
		}
		if entityType == models.EntityRoom {
			ctype = models.ConflictRoomDoubleBooking
			constraint = "a room can host only one section per period"
			solutions = []string{
				"move one course to a different room",
				"move one course to a different period",
			}
		}
		conflicts = append(conflicts, buildDoubleBooking(ctype, entityType, entityID, entityName, key, group, solutions, constraint))
	}
	return conflicts
}

func occupiedKeys(slots []models.ScheduleSlot) map[models.TimeKey]bool {
	occupied := make(map[models.TimeKey]bool)
	for i := range slots {
		if key, ok := slots[i].TimeKey(); ok {
			occupied[key] = true
		}
	}
	return occupied
}

func buildAvailability(entityType, entityID, termID string, days []string, occupied map[models.TimeKey]bool) *dto.AvailabilityResult {
	days = normalizeDays(days)
	available := make([]dto.AvailableSlot, 0, len(days)*models.PeriodsPerDay)
	for _, day := range days {
		for period := 1; period <= models.PeriodsPerDay; period++ {
			if occupied[models.TimeKey{Day: day, Period: period}] {
				continue
			}
			times := bellSchedule[period]
			available = append(available, dto.AvailableSlot{
				DayOfWeek:    day,
				PeriodNumber: period,
				StartTime:    times[0],
				EndTime:      times[1],
			})
		}
	}
	return &dto.AvailabilityResult{
		EntityType:     entityType,
		EntityID:       entityID,
		TermID:         termID,
		Days:           days,
		AvailableSlots: available,
		TotalAvailable: len(available),
	}
}

func normalizeDays(days []string) []string {
	if len(days) == 0 {
		return models.Weekdays
	}
	normalized := make([]string, 0, len(days))
	for _, day := range days {
		if _, ok := dayOrder[day]; ok {
			normalized = append(normalized, day)
		}
	}
	if len(normalized) == 0 {
		return models.Weekdays
	}
	return normalized
}

func slotIDsForDay(slots []models.ScheduleSlot, day string) []string {
	var ids []string
	for i := range slots {
		if slots[i].DayOfWeek != nil && *slots[i].DayOfWeek == day {
			ids = append(ids, slots[i].ID)
		}
	}
	return ids
}
