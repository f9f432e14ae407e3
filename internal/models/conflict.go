package models

import (
	"sort"
	"time"
)

// ConflictType enumerates the kinds of schedule conflicts the engine reports.
type ConflictType string

const (
	ConflictTeacherOverload      ConflictType = "TEACHER_OVERLOAD"
	ConflictTeacherDoubleBooking ConflictType = "TEACHER_DOUBLE_BOOKING"
	ConflictRoomTypeMismatch     ConflictType = "ROOM_TYPE_MISMATCH"
	ConflictRoomCapacityExceeded ConflictType = "ROOM_CAPACITY_EXCEEDED"
	ConflictRoomDoubleBooking    ConflictType = "ROOM_DOUBLE_BOOKING"
	ConflictTimeOverlap          ConflictType = "TIME_OVERLAP"
	ConflictTimeConflict         ConflictType = "TIME_CONFLICT"
	ConflictCapacityExceeded     ConflictType = "CAPACITY_EXCEEDED"
)

// Severity ranks conflicts for presentation order.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Priority returns the numeric sort score for the severity. Downstream UI
// ordering depends on these exact values.
func (s Severity) Priority() int {
	switch s {
	case SeverityCritical:
		return 100
	case SeverityHigh:
		return 75
	case SeverityMedium:
		return 50
	case SeverityLow:
		return 25
	}
	return 0
}

// EntityType tags which resource a conflict is scoped to.
const (
	EntityStudent = "student"
	EntityTeacher = "teacher"
	EntityRoom    = "room"
)

// OverrideOption describes a manual override a scheduler may apply in spite of
// a conflict.
type OverrideOption struct {
	Action               string `json:"action"`
	Description          string `json:"description"`
	RequiresConfirmation bool   `json:"requires_confirmation"`
	Warning              string `json:"warning,omitempty"`
}

// ConflictDetail is the engine's output record for one detected conflict. It
// is constructed fresh on every analysis call and never mutated afterwards.
type ConflictDetail struct {
	Type                ConflictType     `json:"type"`
	Severity            Severity         `json:"severity"`
	Priority            int              `json:"priority"`
	Description         string           `json:"description"`
	ViolatedConstraint  string           `json:"violated_constraint"`
	EntityType          string           `json:"entity_type,omitempty"`
	EntityID            string           `json:"entity_id,omitempty"`
	SlotIDs             []string         `json:"slot_ids"`
	CourseCodes         []string         `json:"course_codes,omitempty"`
	StudentsAffected    int              `json:"students_affected"`
	Blocking            bool             `json:"blocking"`
	PossibleSolutions   []string         `json:"possible_solutions"`
	OverrideOptions     []OverrideOption `json:"override_options,omitempty"`
	EstimatedFixMinutes int              `json:"estimated_fix_minutes,omitempty"`
	DetectedAt          time.Time        `json:"detected_at"`
}

// SortConflicts orders conflicts by descending severity priority. Ties keep
// discovery order.
func SortConflicts(conflicts []ConflictDetail) {
	sort.SliceStable(conflicts, func(i, j int) bool {
		return conflicts[i].Severity.Priority() > conflicts[j].Severity.Priority()
	})
}

// CountBySeverity tallies conflicts per severity level.
func CountBySeverity(conflicts []ConflictDetail) (critical, high, medium, low int) {
	for _, c := range conflicts {
		switch c.Severity {
		case SeverityCritical:
			critical++
		case SeverityHigh:
			high++
		case SeverityMedium:
			medium++
		case SeverityLow:
			low++
		}
	}
	return critical, high, medium, low
}
