package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/schedule-conflict-api/internal/models"
)

// SnapshotRepository supplies immutable views of the scheduling domain for a
// term. Ownership of the underlying tables lies with the administration
// platform; this service only reads.
type SnapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository constructs a SnapshotRepository.
func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

const slotColumns = `s.id, s.term_id, s.course_id, s.section_id, s.teacher_id, s.room_id,
	s.day_of_week, s.period_number, s.start_time, s.end_time,
	c.code AS course_code, c.name AS course_name, c.subject AS course_subject,
	c.requires_lab AS course_requires_lab, c.teacher_id AS course_teacher_id,
	t.full_name AS teacher_name, t.max_periods_per_day AS teacher_max_periods, t.active AS teacher_active,
	r.room_number, r.capacity AS room_capacity, r.room_type`

const slotJoins = `FROM schedule_slots s
	LEFT JOIN courses c ON c.id = s.course_id
	LEFT JOIN teachers t ON t.id = s.teacher_id
	LEFT JOIN rooms r ON r.id = s.room_id`

type slotRow struct {
	ID                string  `db:"id"`
	TermID            string  `db:"term_id"`
	CourseID          *string `db:"course_id"`
	SectionID         *string `db:"section_id"`
	TeacherID         *string `db:"teacher_id"`
	RoomID            *string `db:"room_id"`
	DayOfWeek         *string `db:"day_of_week"`
	PeriodNumber      *int    `db:"period_number"`
	StartTime         *string `db:"start_time"`
	EndTime           *string `db:"end_time"`
	CourseCode        *string `db:"course_code"`
	CourseName        *string `db:"course_name"`
	CourseSubject     *string `db:"course_subject"`
	CourseRequiresLab *bool   `db:"course_requires_lab"`
	CourseTeacherID   *string `db:"course_teacher_id"`
	TeacherName       *string `db:"teacher_name"`
	TeacherMaxPeriods *int    `db:"teacher_max_periods"`
	TeacherActive     *bool   `db:"teacher_active"`
	RoomNumber        *string `db:"room_number"`
	RoomCapacity      *int    `db:"room_capacity"`
	RoomType          *string `db:"room_type"`
}

func (row slotRow) toSlot() models.ScheduleSlot {
	slot := models.ScheduleSlot{
		ID:           row.ID,
		TermID:       row.TermID,
		TeacherID:    row.TeacherID,
		RoomID:       row.RoomID,
		DayOfWeek:    row.DayOfWeek,
		PeriodNumber: row.PeriodNumber,
		StartTime:    row.StartTime,
		EndTime:      row.EndTime,
	}
	if row.CourseID != nil {
		slot.CourseID = *row.CourseID
	}
	if row.SectionID != nil {
		slot.SectionID = *row.SectionID
	}
	if row.CourseID != nil && row.CourseCode != nil {
		course := &models.Course{ID: *row.CourseID, Code: *row.CourseCode, TeacherID: row.CourseTeacherID}
		if row.CourseName != nil {
			course.Name = *row.CourseName
		}
		if row.CourseSubject != nil {
			course.Subject = *row.CourseSubject
		}
		if row.CourseRequiresLab != nil {
			course.RequiresLab = *row.CourseRequiresLab
		}
		slot.Course = course
	}
	if row.TeacherID != nil && row.TeacherName != nil {
		teacher := &models.Teacher{ID: *row.TeacherID, FullName: *row.TeacherName}
		if row.TeacherMaxPeriods != nil {
			teacher.MaxPeriodsPerDay = *row.TeacherMaxPeriods
		}
		if row.TeacherActive != nil {
			teacher.Active = *row.TeacherActive
		}
		slot.Teacher = teacher
	}
	if row.RoomID != nil && row.RoomNumber != nil {
		room := &models.Room{ID: *row.RoomID, RoomNumber: *row.RoomNumber}
		if row.RoomCapacity != nil {
			room.Capacity = *row.RoomCapacity
		}
		if row.RoomType != nil {
			room.Type = models.RoomType(*row.RoomType)
		}
		slot.Room = room
	}
	return slot
}

// ListSlots returns schedule slots matching the filter with course, teacher and
// room views joined in and enrolled student ids attached.
func (r *SnapshotRepository) ListSlots(ctx context.Context, filter models.SlotFilter) ([]models.ScheduleSlot, error) {
	var conditions []string
	var args []interface{}

	if filter.TermID != "" {
		conditions = append(conditions, fmt.Sprintf("s.term_id = $%d", len(args)+1))
		args = append(args, filter.TermID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("s.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.RoomID != "" {
		conditions = append(conditions, fmt.Sprintf("s.room_id = $%d", len(args)+1))
		args = append(args, filter.RoomID)
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("s.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.SectionID != "" {
		conditions = append(conditions, fmt.Sprintf("s.section_id = $%d", len(args)+1))
		args = append(args, filter.SectionID)
	}

	query := fmt.Sprintf("SELECT %s %s", slotColumns, slotJoins)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY s.id"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	var rows []slotRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}

	slots := make([]models.ScheduleSlot, 0, len(rows))
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		slots = append(slots, row.toSlot())
		ids = append(ids, row.ID)
	}

	if err := r.attachEnrollments(ctx, slots, ids); err != nil {
		return nil, err
	}
	return slots, nil
}

// ListSlotsByStudent returns the slots a student is enrolled in for a term.
func (r *SnapshotRepository) ListSlotsByStudent(ctx context.Context, studentID, termID string) ([]models.ScheduleSlot, error) {
	query := fmt.Sprintf(`SELECT %s %s
	JOIN slot_enrollments e ON e.slot_id = s.id
	WHERE e.student_id = $1 AND s.term_id = $2
	ORDER BY s.id`, slotColumns, slotJoins)

	var rows []slotRow
	if err := r.db.SelectContext(ctx, &rows, query, studentID, termID); err != nil {
		return nil, fmt.Errorf("list slots by student: %w", err)
	}

	slots := make([]models.ScheduleSlot, 0, len(rows))
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		slots = append(slots, row.toSlot())
		ids = append(ids, row.ID)
	}

	if err := r.attachEnrollments(ctx, slots, ids); err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *SnapshotRepository) attachEnrollments(ctx context.Context, slots []models.ScheduleSlot, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	type enrollmentRow struct {
		SlotID    string `db:"slot_id"`
		StudentID string `db:"student_id"`
	}
	var rows []enrollmentRow
	const query = `SELECT slot_id, student_id FROM slot_enrollments WHERE slot_id = ANY($1) ORDER BY slot_id, student_id`
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("list slot enrollments: %w", err)
	}

	bySlot := make(map[string][]string, len(ids))
	for _, row := range rows {
		bySlot[row.SlotID] = append(bySlot[row.SlotID], row.StudentID)
	}
	for i := range slots {
		slots[i].EnrolledStudentIDs = bySlot[slots[i].ID]
	}
	return nil
}

// ListRooms returns every room in the snapshot.
func (r *SnapshotRepository) ListRooms(ctx context.Context) ([]models.Room, error) {
	const query = `SELECT id, room_number, capacity, room_type FROM rooms ORDER BY room_number`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// ListTeachers returns teachers, optionally restricted to active ones.
func (r *SnapshotRepository) ListTeachers(ctx context.Context, activeOnly bool) ([]models.Teacher, error) {
	query := `SELECT id, full_name, max_periods_per_day, active FROM teachers`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY full_name`
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

// GetTeacher fetches a teacher by id. Returns sql.ErrNoRows when absent.
func (r *SnapshotRepository) GetTeacher(ctx context.Context, id string) (*models.Teacher, error) {
	const query = `SELECT id, full_name, max_periods_per_day, active FROM teachers WHERE id = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// GetRoom fetches a room by id. Returns sql.ErrNoRows when absent.
func (r *SnapshotRepository) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	const query = `SELECT id, room_number, capacity, room_type FROM rooms WHERE id = $1`
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// GetStudent fetches a student by id. Returns sql.ErrNoRows when absent.
func (r *SnapshotRepository) GetStudent(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, full_name, grade_level FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// GetCourse fetches a course by id. Returns sql.ErrNoRows when absent.
func (r *SnapshotRepository) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, code, name, subject, requires_lab, teacher_id FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}
