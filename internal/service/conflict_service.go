package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/schedule-conflict-api/internal/dto"
	"github.com/noah-isme/schedule-conflict-api/internal/models"
	appErrors "github.com/noah-isme/schedule-conflict-api/pkg/errors"
)

type snapshotReader interface {
	ListSlots(ctx context.Context, filter models.SlotFilter) ([]models.ScheduleSlot, error)
	ListRooms(ctx context.Context) ([]models.Room, error)
	ListTeachers(ctx context.Context, activeOnly bool) ([]models.Teacher, error)
}

var dayOrder = map[string]int{
	"MONDAY":    0,
	"TUESDAY":   1,
	"WEDNESDAY": 2,
	"THURSDAY":  3,
	"FRIDAY":    4,
	"SATURDAY":  5,
	"SUNDAY":    6,
}

// ConflictService analyzes a term's slot assignments for conflicts. Every call
// is a stateless read over the snapshot; nothing is persisted or mutated.
type ConflictService struct {
	repo     snapshotReader
	logger   *zap.Logger
	metrics  *MetricsService
	maxSlots int
	now      func() time.Time
}

// NewConflictService constructs a ConflictService.
func NewConflictService(repo snapshotReader, logger *zap.Logger, metrics *MetricsService, maxSlots int) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{repo: repo, logger: logger, metrics: metrics, maxSlots: maxSlots, now: time.Now}
}

// AnalyzeTerm loads the term snapshot and returns every detected conflict,
// sorted by descending severity priority.
func (s *ConflictService) AnalyzeTerm(ctx context.Context, termID string) ([]models.ConflictDetail, error) {
	start := s.now()
	slots, err := s.repo.ListSlots(ctx, models.SlotFilter{TermID: termID, Limit: s.maxSlots})
	s.metrics.ObserveDBQuery("list_slots", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule slots")
	}
	rooms, err := s.repo.ListRooms(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	teachers, err := s.repo.ListTeachers(ctx, true)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}
	conflicts := s.AnalyzeSlots(slots, rooms, teachers)
	s.metrics.ObserveAnalysis("term", len(conflicts), time.Since(start))
	return conflicts, nil
}

// AnalyzeSlots inspects the given slot set against the room/teacher snapshot.
// Partially assigned slots are diagnosed individually; fully assigned slots go
// through cross-slot detection. Slots whose course reference does not resolve
// to a course are logged and skipped.
func (s *ConflictService) AnalyzeSlots(slots []models.ScheduleSlot, rooms []models.Room, teachers []models.Teacher) []models.ConflictDetail {
	var conflicts []models.ConflictDetail
	var assigned []models.ScheduleSlot

	for i := range slots {
		slot := &slots[i]
		if slot.Course == nil {
			s.logger.Warn("slot has no resolvable course, skipping",
				zap.String("slot_id", slot.ID),
				zap.String("course_id", slot.CourseID),
				zap.String("term_id", slot.TermID))
			continue
		}
		if slot.FullyAssigned() {
			assigned = append(assigned, *slot)
			continue
		}
		if c := s.diagnoseUnassigned(slot, rooms, teachers); c != nil {
			conflicts = append(conflicts, *c)
		}
	}

	conflicts = append(conflicts, s.detectCrossSlot(assigned)...)

	finalizeConflicts(conflicts, s.now().UTC())
	return conflicts
}

// finalizeConflicts stamps priority scores and detection time, then applies
// the severity sort every result list must satisfy.
func finalizeConflicts(conflicts []models.ConflictDetail, now time.Time) {
	for i := range conflicts {
		conflicts[i].Priority = conflicts[i].Severity.Priority()
		conflicts[i].DetectedAt = now
	}
	models.SortConflicts(conflicts)
}

// CalculateCompletionPercentage returns the share of slots that are fully
// assigned, as a percentage. An empty slot set yields 0.
func (s *ConflictService) CalculateCompletionPercentage(slots []models.ScheduleSlot) float64 {
	if len(slots) == 0 {
		return 0
	}
	assigned := 0
	for i := range slots {
		if slots[i].FullyAssigned() {
			assigned++
		}
	}
	return float64(assigned) / float64(len(slots)) * 100
}

// Completion loads a term and reports its assignment completion.
func (s *ConflictService) Completion(ctx context.Context, termID string) (*dto.CompletionResult, error) {
	slots, err := s.repo.ListSlots(ctx, models.SlotFilter{TermID: termID, Limit: s.maxSlots})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule slots")
	}
	assigned := 0
	for i := range slots {
		if slots[i].FullyAssigned() {
			assigned++
		}
	}
	return &dto.CompletionResult{
		TermID:               termID,
		TotalSlots:           len(slots),
		FullyAssigned:        assigned,
		CompletionPercentage: s.CalculateCompletionPercentage(slots),
	}, nil
}

// diagnoseUnassigned determines why a partially assigned slot could not be
// completed. Checks run in priority order; the first match wins.
func (s *ConflictService) diagnoseUnassigned(slot *models.ScheduleSlot, rooms []models.Room, teachers []models.Teacher) *models.ConflictDetail {
	if slot.TeacherID == nil {
		return s.diagnoseMissingTeacher(slot, teachers)
	}
	if slot.RoomID == nil {
		return s.diagnoseMissingRoom(slot, rooms)
	}
	if !slot.HasTime() {
		return &models.ConflictDetail{
			Type:               models.ConflictTimeOverlap,
			Severity:           models.SeverityHigh,
			Description:        fmt.Sprintf("course %s could not be placed: all available time slots exhausted", slot.CourseCode()),
			ViolatedConstraint: "every slot requires a day and period assignment",
			SlotIDs:            []string{slot.ID},
			CourseCodes:        []string{slot.CourseCode()},
			StudentsAffected:   slot.EnrolledCount(),
			Blocking:           true,
			PossibleSolutions: []string{
				"extend the school day with an additional period",
				"reduce the number of sections for low-enrollment courses",
				"move another course to a less contested period",
			},
			EstimatedFixMinutes: 10,
		}
	}
	return nil
}

func (s *ConflictService) diagnoseMissingTeacher(slot *models.ScheduleSlot, teachers []models.Teacher) *models.ConflictDetail {
	if slot.Course == nil || slot.Course.TeacherID == nil {
		return &models.ConflictDetail{
			Type:               models.ConflictTeacherOverload,
			Severity:           models.SeverityCritical,
			Description:        fmt.Sprintf("course %s has no teacher assigned", slot.CourseCode()),
			ViolatedConstraint: "every course section requires a teacher",
			SlotIDs:            []string{slot.ID},
			CourseCodes:        []string{slot.CourseCode()},
			StudentsAffected:   slot.EnrolledCount(),
			Blocking:           true,
			PossibleSolutions: []string{
				"assign a qualified teacher to the course",
				"merge the section with another offering of the same course",
			},
			EstimatedFixMinutes: 15,
		}
	}

	solutions := []string{"increase a teacher's daily period limit", "hire or reassign additional staff"}
	if hint := teacherNamesHint(teachers, 3); hint != "" {
		solutions = append(solutions, "candidates: "+hint)
	}
	return &models.ConflictDetail{
		Type:                models.ConflictTeacherOverload,
		Severity:            models.SeverityHigh,
		Description:         fmt.Sprintf("course %s could not be scheduled: all teachers at capacity", slot.CourseCode()),
		ViolatedConstraint:  "teacher daily period limits leave no free load",
		SlotIDs:             []string{slot.ID},
		CourseCodes:         []string{slot.CourseCode()},
		StudentsAffected:    slot.EnrolledCount(),
		Blocking:            true,
		PossibleSolutions:   solutions,
		EstimatedFixMinutes: 10,
	}
}

func (s *ConflictService) diagnoseMissingRoom(slot *models.ScheduleSlot, rooms []models.Room) *models.ConflictDetail {
	course := slot.Course
	enrolled := slot.EnrolledCount()

	if course != nil && course.RequiresLab && !anyRoom(rooms, func(r models.Room) bool { return r.Type.IsLab() }) {
		return &models.ConflictDetail{
			Type:               models.ConflictRoomTypeMismatch,
			Severity:           models.SeverityCritical,
			Description:        fmt.Sprintf("course %s requires a lab but no lab rooms exist", slot.CourseCode()),
			ViolatedConstraint: "lab courses must be placed in lab-typed rooms",
			SlotIDs:            []string{slot.ID},
			CourseCodes:        []string{slot.CourseCode()},
			StudentsAffected:   enrolled,
			Blocking:           true,
			PossibleSolutions: []string{
				"convert a regular room into a lab",
				"partner with another campus for lab access",
			},
			OverrideOptions: []models.OverrideOption{{
				Action:               "FORCE_REGULAR_ROOM",
				Description:          "place the course in a regular room despite the lab requirement",
				RequiresConfirmation: true,
				Warning:              "lab activities cannot run in a regular room",
			}},
			EstimatedFixMinutes: 15,
		}
	}

	if course != nil && isPhysicalEducation(course.Subject) && !anyRoom(rooms, func(r models.Room) bool { return r.Type == models.RoomTypeGymnasium }) {
		return &models.ConflictDetail{
			Type:               models.ConflictRoomTypeMismatch,
			Severity:           models.SeverityCritical,
			Description:        fmt.Sprintf("course %s needs a gymnasium but none exists", slot.CourseCode()),
			ViolatedConstraint: "physical education courses must be placed in a gymnasium",
			SlotIDs:            []string{slot.ID},
			CourseCodes:        []string{slot.CourseCode()},
			StudentsAffected:   enrolled,
			Blocking:           true,
			PossibleSolutions: []string{
				"schedule outdoor facilities for the section",
				"share gymnasium time with a neighboring school",
			},
			OverrideOptions: []models.OverrideOption{{
				Action:               "FORCE_REGULAR_ROOM",
				Description:          "place the course in a regular room despite the gymnasium requirement",
				RequiresConfirmation: true,
				Warning:              "physical activities cannot run in a regular classroom",
			}},
			EstimatedFixMinutes: 15,
		}
	}

	if !anyRoom(rooms, func(r models.Room) bool { return r.Capacity >= enrolled }) {
		return &models.ConflictDetail{
			Type:               models.ConflictRoomCapacityExceeded,
			Severity:           models.SeverityHigh,
			Description:        fmt.Sprintf("no room can hold the %d students enrolled in %s", enrolled, slot.CourseCode()),
			ViolatedConstraint: "enrollment must not exceed room capacity",
			SlotIDs:            []string{slot.ID},
			CourseCodes:        []string{slot.CourseCode()},
			StudentsAffected:   enrolled,
			Blocking:           true,
			PossibleSolutions: []string{
				"split the section into two smaller ones",
				"cap enrollment at the largest room's capacity",
			},
			EstimatedFixMinutes: 10,
		}
	}

	suitable := suitableRoomNumbers(rooms, course, enrolled, 3)
	solutions := []string{
		"move the course to a different period",
		"swap rooms with a smaller section",
	}
	if len(suitable) > 0 {
		solutions = append(solutions, "candidate rooms: "+strings.Join(suitable, ", "))
	}
	return &models.ConflictDetail{
		Type:                models.ConflictRoomDoubleBooking,
		Severity:            models.SeverityHigh,
		Description:         fmt.Sprintf("all suitable rooms for %s are occupied at every remaining time", slot.CourseCode()),
		ViolatedConstraint:  "a room can host only one section per period",
		SlotIDs:             []string{slot.ID},
		CourseCodes:         []string{slot.CourseCode()},
		StudentsAffected:    enrolled,
		Blocking:            true,
		PossibleSolutions:   solutions,
		EstimatedFixMinutes: 5,
	}
}

// detectCrossSlot groups fully-assigned slots by time-key, then checks the
// teacher and room partitions independently. A slot can appear in a teacher
// conflict and a room conflict at the same time; both are reported.
func (s *ConflictService) detectCrossSlot(slots []models.ScheduleSlot) []models.ConflictDetail {
	groups := make(map[models.TimeKey][]*models.ScheduleSlot)
	var keys []models.TimeKey
	for i := range slots {
		key, ok := slots[i].TimeKey()
		if !ok {
			continue
		}
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], &slots[i])
	}

	sort.Slice(keys, func(i, j int) bool {
		if dayOrder[keys[i].Day] != dayOrder[keys[j].Day] {
			return dayOrder[keys[i].Day] < dayOrder[keys[j].Day]
		}
		return keys[i].Period < keys[j].Period
	})

	var conflicts []models.ConflictDetail
	for _, key := range keys {
		group := groups[key]
		conflicts = append(conflicts, s.detectTeacherDoubleBookings(key, group)...)
		conflicts = append(conflicts, s.detectRoomDoubleBookings(key, group)...)
	}

	for i := range slots {
		slot := &slots[i]
		if slot.Room == nil {
			continue
		}
		overflow := slot.EnrolledCount() - slot.Room.Capacity
		if overflow <= 0 {
			continue
		}
		conflicts = append(conflicts, models.ConflictDetail{
			Type:               models.ConflictRoomCapacityExceeded,
			Severity:           models.SeverityMedium,
			Description:        fmt.Sprintf("room %s holds %d students for %s but its capacity is %d", slot.Room.RoomNumber, slot.EnrolledCount(), slot.CourseCode(), slot.Room.Capacity),
			ViolatedConstraint: "enrollment must not exceed room capacity",
			EntityType:         models.EntityRoom,
			EntityID:           slot.Room.ID,
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

	return conflicts
}

func (s *ConflictService) detectTeacherDoubleBookings(key models.TimeKey, group []*models.ScheduleSlot) []models.ConflictDetail {
	byTeacher := make(map[string][]*models.ScheduleSlot)
	var teacherIDs []string
	for _, slot := range group {
		if slot.TeacherID == nil {
			continue
		}
		id := *slot.TeacherID
		if _, seen := byTeacher[id]; !seen {
			teacherIDs = append(teacherIDs, id)
		}
		byTeacher[id] = append(byTeacher[id], slot)
	}
	sort.Strings(teacherIDs)

	var conflicts []models.ConflictDetail
	for _, id := range teacherIDs {
		booked := byTeacher[id]
		if len(booked) < 2 {
			continue
		}
		conflicts = append(conflicts, buildDoubleBooking(
			models.ConflictTeacherDoubleBooking,
			models.EntityTeacher,
			id,
			teacherDisplayName(booked),
			key,
			booked,
			[]string{
				"reassign one course to a different teacher",
				"move one course to a different period",
			},
			"a teacher can teach only one section per period",
		))
	}
	return conflicts
}

func (s *ConflictService) detectRoomDoubleBookings(key models.TimeKey, group []*models.ScheduleSlot) []models.ConflictDetail {
	byRoom := make(map[string][]*models.ScheduleSlot)
	var roomIDs []string
	for _, slot := range group {
		if slot.RoomID == nil {
			continue
		}
		id := *slot.RoomID
		if _, seen := byRoom[id]; !seen {
			roomIDs = append(roomIDs, id)
		}
		byRoom[id] = append(byRoom[id], slot)
	}
	sort.Strings(roomIDs)

	var conflicts []models.ConflictDetail
	for _, id := range roomIDs {
		booked := byRoom[id]
		if len(booked) < 2 {
			continue
		}
		conflicts = append(conflicts, buildDoubleBooking(
			models.ConflictRoomDoubleBooking,
			models.EntityRoom,
			id,
			roomDisplayName(booked),
			key,
			booked,
			[]string{
				"move one course to a different room",
				"move one course to a different period",
			},
			"a room can host only one section per period",
		))
	}
	return conflicts
}

func buildDoubleBooking(ctype models.ConflictType, entityType, entityID, entityName string, key models.TimeKey, booked []*models.ScheduleSlot, solutions []string, constraint string) models.ConflictDetail {
	slotIDs := make([]string, 0, len(booked))
	codes := make([]string, 0, len(booked))
	affected := 0
	for _, slot := range booked {
		slotIDs = append(slotIDs, slot.ID)
		codes = append(codes, slot.CourseCode())
		affected += slot.EnrolledCount()
	}
	return models.ConflictDetail{
		Type:               ctype,
		Severity:           models.SeverityCritical,
		Description:        fmt.Sprintf("%s %s is booked for %s on %s period %d", entityType, entityName, strings.Join(codes, " and "), key.Day, key.Period),
		ViolatedConstraint: constraint,
		EntityType:         entityType,
		EntityID:           entityID,
		SlotIDs:            slotIDs,
		CourseCodes:        codes,
		StudentsAffected:   affected,
		Blocking:           true,
		PossibleSolutions:  solutions,
	}
}

func teacherDisplayName(booked []*models.ScheduleSlot) string {
	for _, slot := range booked {
		if slot.Teacher != nil && slot.Teacher.FullName != "" {
			return slot.Teacher.FullName
		}
	}
	if len(booked) > 0 && booked[0].TeacherID != nil {
		return *booked[0].TeacherID
	}
	return ""
}

func roomDisplayName(booked []*models.ScheduleSlot) string {
	for _, slot := range booked {
		if slot.Room != nil && slot.Room.RoomNumber != "" {
			return slot.Room.RoomNumber
		}
	}
	if len(booked) > 0 && booked[0].RoomID != nil {
		return *booked[0].RoomID
	}
	return ""
}

func anyRoom(rooms []models.Room, match func(models.Room) bool) bool {
	for _, room := range rooms {
		if match(room) {
			return true
		}
	}
	return false
}

func suitableRoomNumbers(rooms []models.Room, course *models.Course, enrolled, limit int) []string {
	var numbers []string
	for _, room := range rooms {
		if room.Capacity < enrolled {
			continue
		}
		if course != nil && course.RequiresLab && !room.Type.IsLab() {
			continue
		}
		numbers = append(numbers, room.RoomNumber)
		if len(numbers) == limit {
			break
		}
	}
	return numbers
}

func teacherNamesHint(teachers []models.Teacher, limit int) string {
	var names []string
	for _, teacher := range teachers {
		if !teacher.Active {
			continue
		}
		names = append(names, teacher.FullName)
		if len(names) == limit {
			break
		}
	}
	return strings.Join(names, ", ")
}

func isPhysicalEducation(subject string) bool {
	upper := strings.ToUpper(subject)
	return upper == "PE" || strings.Contains(upper, "PHYSICAL EDUCATION") || strings.Contains(upper, "GYM")
}
