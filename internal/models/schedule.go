package models

// RoomType classifies rooms for suitability checks.
type RoomType string

const (
	RoomTypeRegular     RoomType = "REGULAR"
	RoomTypeLab         RoomType = "LAB"
	RoomTypeScienceLab  RoomType = "SCIENCE_LAB"
	RoomTypeComputerLab RoomType = "COMPUTER_LAB"
	RoomTypeGymnasium   RoomType = "GYMNASIUM"
	RoomTypeAuditorium  RoomType = "AUDITORIUM"
)

// IsLab reports whether the room type satisfies a lab requirement.
func (t RoomType) IsLab() bool {
	switch t {
	case RoomTypeLab, RoomTypeScienceLab, RoomTypeComputerLab:
		return true
	}
	return false
}

// Weekdays is the fixed universe of school days used by availability queries.
var Weekdays = []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY"}

// PeriodsPerDay is the number of bell periods in a school day.
const PeriodsPerDay = 8

// SlotsPerWeek is the theoretical weekly slot universe per resource.
const SlotsPerWeek = PeriodsPerDay * 5

// Room is a read-only snapshot view of a physical room.
type Room struct {
	ID         string   `db:"id" json:"id"`
	RoomNumber string   `db:"room_number" json:"room_number"`
	Capacity   int      `db:"capacity" json:"capacity"`
	Type       RoomType `db:"room_type" json:"room_type"`
}

// Teacher is a read-only snapshot view of a teacher.
type Teacher struct {
	ID               string `db:"id" json:"id"`
	FullName         string `db:"full_name" json:"full_name"`
	MaxPeriodsPerDay int    `db:"max_periods_per_day" json:"max_periods_per_day"`
	Active           bool   `db:"active" json:"active"`
}

// Course is a read-only snapshot view of a course.
type Course struct {
	ID          string  `db:"id" json:"id"`
	Code        string  `db:"code" json:"code"`
	Name        string  `db:"name" json:"name"`
	Subject     string  `db:"subject" json:"subject"`
	RequiresLab bool    `db:"requires_lab" json:"requires_lab"`
	TeacherID   *string `db:"teacher_id" json:"teacher_id,omitempty"`
}

// Student is a read-only snapshot view of an enrolled student.
type Student struct {
	ID         string `db:"id" json:"id"`
	FullName   string `db:"full_name" json:"full_name"`
	GradeLevel int    `db:"grade_level" json:"grade_level"`
}

// TimeKey identifies a concurrency bucket for schedule slots.
type TimeKey struct {
	Day    string
	Period int
}

// ScheduleSlot is one scheduled occurrence of a course. Teacher, room and time
// are each optional; a slot missing any of them is partially assigned.
type ScheduleSlot struct {
	ID                 string   `json:"id"`
	TermID             string   `json:"term_id"`
	CourseID           string   `json:"course_id"`
	SectionID          string   `json:"section_id"`
	Course             *Course  `json:"course,omitempty"`
	TeacherID          *string  `json:"teacher_id,omitempty"`
	Teacher            *Teacher `json:"teacher,omitempty"`
	RoomID             *string  `json:"room_id,omitempty"`
	Room               *Room    `json:"room,omitempty"`
	DayOfWeek          *string  `json:"day_of_week,omitempty"`
	PeriodNumber       *int     `json:"period_number,omitempty"`
	StartTime          *string  `json:"start_time,omitempty"`
	EndTime            *string  `json:"end_time,omitempty"`
	EnrolledStudentIDs []string `json:"enrolled_student_ids"`
}

// FullyAssigned reports whether teacher, room and time are all present.
func (s *ScheduleSlot) FullyAssigned() bool {
	return s.TeacherID != nil && s.RoomID != nil && s.HasTime()
}

// HasTime reports whether the slot carries a time assignment.
func (s *ScheduleSlot) HasTime() bool {
	return s.DayOfWeek != nil && s.PeriodNumber != nil
}

// TimeKey returns the slot's concurrency bucket. The second return value is
// false when the slot has no time assignment.
func (s *ScheduleSlot) TimeKey() (TimeKey, bool) {
	if !s.HasTime() {
		return TimeKey{}, false
	}
	return TimeKey{Day: *s.DayOfWeek, Period: *s.PeriodNumber}, true
}

// EnrolledCount returns the number of enrolled students.
func (s *ScheduleSlot) EnrolledCount() int {
	return len(s.EnrolledStudentIDs)
}

// CourseCode returns the course code or the course id when the join is absent.
func (s *ScheduleSlot) CourseCode() string {
	if s.Course != nil && s.Course.Code != "" {
		return s.Course.Code
	}
	return s.CourseID
}

// SlotFilter describes query params for listing schedule slots.
type SlotFilter struct {
	TermID    string
	TeacherID string
	RoomID    string
	CourseID  string
	SectionID string
	Limit     int
}
