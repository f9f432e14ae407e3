package dto

import "github.com/noah-isme/schedule-conflict-api/internal/models"

// SeverityCounts tallies conflicts per severity level.
type SeverityCounts struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// AllConflictsResult is the school-wide conflict listing for a term.
type AllConflictsResult struct {
	TermID         string                  `json:"termId"`
	SeverityFilter string                  `json:"severityFilter,omitempty"`
	Conflicts      []models.ConflictDetail `json:"conflicts"`
	TotalCount     int                     `json:"totalCount"`
	Counts         SeverityCounts          `json:"counts"`
}

// ConflictDashboard summarises conflict state for the admin dashboard.
type ConflictDashboard struct {
	TermID          string                  `json:"termId"`
	TotalConflicts  int                     `json:"totalConflicts"`
	ByEntityType    map[string]int          `json:"byEntityType"`
	BySeverity      SeverityCounts          `json:"bySeverity"`
	RecentConflicts []models.ConflictDetail `json:"recentConflicts"`
}

// ConstraintViolation reports one hard-limit breach with offending values.
type ConstraintViolation struct {
	Type         string   `json:"type"`
	EntityType   string   `json:"entityType"`
	EntityID     string   `json:"entityId"`
	EntityName   string   `json:"entityName,omitempty"`
	Description  string   `json:"description"`
	CurrentValue int      `json:"currentValue"`
	AllowedValue int      `json:"allowedValue"`
	SlotIDs      []string `json:"slotIds,omitempty"`
}

// ConstraintViolationsResult lists hard-limit breaches, optionally filtered.
type ConstraintViolationsResult struct {
	TermID        string                `json:"termId"`
	ViolationType string                `json:"violationType,omitempty"`
	Violations    []ConstraintViolation `json:"violations"`
	TotalCount    int                   `json:"totalCount"`
}

// OptimizationOpportunity flags an underused room or an overloaded teacher.
type OptimizationOpportunity struct {
	Type       string  `json:"type"`
	EntityType string  `json:"entityType"`
	EntityID   string  `json:"entityId"`
	EntityName string  `json:"entityName,omitempty"`
	Metric     float64 `json:"metric"`
	Threshold  float64 `json:"threshold"`
	Suggestion string  `json:"suggestion"`
}

// OptimizationOpportunitiesResult lists detected improvement opportunities.
type OptimizationOpportunitiesResult struct {
	TermID        string                    `json:"termId"`
	Opportunities []OptimizationOpportunity `json:"opportunities"`
	TotalCount    int                       `json:"totalCount"`
}

// ScheduleQualityMetrics is the composite whole-schedule quality report.
type ScheduleQualityMetrics struct {
	TermID             string  `json:"termId"`
	TotalSlots         int     `json:"totalSlots"`
	ConflictCount      int     `json:"conflictCount"`
	ConflictRate       float64 `json:"conflictRate"`
	AvgRoomUtilization float64 `json:"avgRoomUtilization"`
	TeacherLoadBalance float64 `json:"teacherLoadBalance"`
	CompositeScore     float64 `json:"compositeScore"`
}

// StudentConflictsResult scopes conflicts to one student.
type StudentConflictsResult struct {
	StudentID    string                  `json:"studentId"`
	StudentName  string                  `json:"studentName,omitempty"`
	TermID       string                  `json:"termId"`
	Found        bool                    `json:"found"`
	HasConflicts bool                    `json:"hasConflicts"`
	Conflicts    []models.ConflictDetail `json:"conflicts"`
}

// TeacherConflictsResult scopes conflicts to one teacher.
type TeacherConflictsResult struct {
	TeacherID    string                  `json:"teacherId"`
	TeacherName  string                  `json:"teacherName,omitempty"`
	TermID       string                  `json:"termId"`
	Found        bool                    `json:"found"`
	HasConflicts bool                    `json:"hasConflicts"`
	Conflicts    []models.ConflictDetail `json:"conflicts"`
}

// RoomConflictsResult scopes conflicts to one room.
type RoomConflictsResult struct {
	RoomID       string                  `json:"roomId"`
	RoomNumber   string                  `json:"roomNumber,omitempty"`
	TermID       string                  `json:"termId"`
	Found        bool                    `json:"found"`
	HasConflicts bool                    `json:"hasConflicts"`
	Conflicts    []models.ConflictDetail `json:"conflicts"`
}

// AvailableSlot is one open day/period combination with bell-schedule times.
type AvailableSlot struct {
	DayOfWeek    string `json:"dayOfWeek"`
	PeriodNumber int    `json:"periodNumber"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
}

// AvailabilityResult lists open day/period combinations for one entity.
type AvailabilityResult struct {
	EntityType     string          `json:"entityType"`
	EntityID       string          `json:"entityId"`
	TermID         string          `json:"termId"`
	Days           []string        `json:"days"`
	AvailableSlots []AvailableSlot `json:"availableSlots"`
	TotalAvailable int             `json:"totalAvailable"`
}

// AlternativeSlotsResult lists open placements for a course given teacher and
// room constraints.
type AlternativeSlotsResult struct {
	CourseID      string          `json:"courseId"`
	TeacherID     string          `json:"teacherId,omitempty"`
	RoomID        string          `json:"roomId,omitempty"`
	TermID        string          `json:"termId"`
	PreferredDays []string        `json:"preferredDays,omitempty"`
	Alternatives  []AvailableSlot `json:"alternatives"`
	TotalFound    int             `json:"totalFound"`
}

// AlternativeSection describes another section of the same course whose times
// do not collide with the student's existing schedule.
type AlternativeSection struct {
	SectionID string          `json:"sectionId"`
	Times     []AvailableSlot `json:"times"`
}

// CourseAdditionCheck reports whether a student can enroll in a section.
type CourseAdditionCheck struct {
	StudentID           string                  `json:"studentId"`
	CourseID            string                  `json:"courseId"`
	SectionID           string                  `json:"sectionId"`
	TermID              string                  `json:"termId"`
	CanEnroll           bool                    `json:"canEnroll"`
	Conflicts           []models.ConflictDetail `json:"conflicts"`
	AlternativeSections []AlternativeSection    `json:"alternativeSections,omitempty"`
}

// CompletionResult reports what share of slots are fully assigned.
type CompletionResult struct {
	TermID               string  `json:"termId"`
	TotalSlots           int     `json:"totalSlots"`
	FullyAssigned        int     `json:"fullyAssigned"`
	CompletionPercentage float64 `json:"completionPercentage"`
}
