package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/schedule-conflict-api/internal/models"
	appErrors "github.com/noah-isme/schedule-conflict-api/pkg/errors"
)

type fakeAnalyzer struct {
	conflicts []models.ConflictDetail
	err       error
	calls     int
}

func (f *fakeAnalyzer) AnalyzeTerm(context.Context, string) ([]models.ConflictDetail, error) {
	f.calls++
	return f.conflicts, f.err
}

type memoryCacheRepo struct {
	data map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{data: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := m.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(context.Context, string) error {
	m.data = make(map[string][]byte)
	return nil
}

func someConflicts() []models.ConflictDetail {
	return []models.ConflictDetail{
		{Type: models.ConflictTeacherDoubleBooking, Severity: models.SeverityCritical, Priority: 100, EntityType: models.EntityTeacher, EntityID: "t-1"},
		{Type: models.ConflictTimeOverlap, Severity: models.SeverityHigh, Priority: 75, EntityType: models.EntityStudent, EntityID: "s-1"},
		{Type: models.ConflictRoomCapacityExceeded, Severity: models.SeverityMedium, Priority: 50, EntityType: models.EntityRoom, EntityID: "room-1"},
	}
}

func TestAllConflictsSeverityFilter(t *testing.T) {
	svc := NewReportingService(ReportingServiceParams{
		Analyzer: &fakeAnalyzer{conflicts: someConflicts()},
		Repo:     &fakeSnapshotRepo{},
	})

	result, err := svc.AllConflicts(context.Background(), "term-1", "CRITICAL")
	require.NoError(t, err)

	assert.Equal(t, 1, result.TotalCount)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, models.SeverityCritical, result.Conflicts[0].Severity)
	// Counts always cover the unfiltered set.
	assert.Equal(t, 1, result.Counts.Critical)
	assert.Equal(t, 1, result.Counts.High)
	assert.Equal(t, 1, result.Counts.Medium)
}

func TestAllConflictsRejectsUnknownSeverity(t *testing.T) {
	svc := NewReportingService(ReportingServiceParams{
		Analyzer: &fakeAnalyzer{},
		Repo:     &fakeSnapshotRepo{},
	})

	_, err := svc.AllConflicts(context.Background(), "term-1", "SEVERE")
	require.Error(t, err)
}

func TestDashboardCountsAndCaching(t *testing.T) {
	analyzer := &fakeAnalyzer{conflicts: someConflicts()}
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil, true)
	svc := NewReportingService(ReportingServiceParams{
		Analyzer: analyzer,
		Repo:     &fakeSnapshotRepo{},
		Cache:    cache,
	})

	first, hit, err := svc.Dashboard(context.Background(), "term-1")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 3, first.TotalConflicts)
	assert.Equal(t, 1, first.ByEntityType[models.EntityTeacher])
	assert.Equal(t, 1, first.ByEntityType[models.EntityStudent])
	assert.Equal(t, 1, first.ByEntityType[models.EntityRoom])
	assert.Equal(t, 1, first.BySeverity.Critical)

	second, hit, err := svc.Dashboard(context.Background(), "term-1")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first.TotalConflicts, second.TotalConflicts)
	assert.Equal(t, 1, analyzer.calls)
}

func TestDashboardRecentLimit(t *testing.T) {
	var many []models.ConflictDetail
	for i := 0; i < 15; i++ {
		many = append(many, models.ConflictDetail{Type: models.ConflictTimeOverlap, Severity: models.SeverityHigh, Priority: 75})
	}
	svc := NewReportingService(ReportingServiceParams{
		Analyzer: &fakeAnalyzer{conflicts: many},
		Repo:     &fakeSnapshotRepo{},
	})

	dashboard, _, err := svc.Dashboard(context.Background(), "term-1")
	require.NoError(t, err)
	assert.Equal(t, 15, dashboard.TotalConflicts)
	assert.Len(t, dashboard.RecentConflicts, 10)
}

func TestConstraintViolations(t *testing.T) {
	course := &models.Course{ID: "c-math", Code: "MATH101", Subject: "Math"}

	overfull := assignedSlot("slot-1", "t-1", "room-1", "MONDAY", 1, course, studentIDs(25))
	overfull.Room.Capacity = 20

	var slots []models.ScheduleSlot
	slots = append(slots, overfull)
	for period := 2; period <= 5; period++ {
		slot := assignedSlot("slot-"+string(rune('0'+period)), "t-2", "room-2", "MONDAY", period, course, nil)
		slot.Teacher.MaxPeriodsPerDay = 3
		slots = append(slots, slot)
	}

	svc := NewReportingService(ReportingServiceParams{
		Analyzer: &fakeAnalyzer{},
		Repo:     &fakeSnapshotRepo{slots: slots},
	})

	result, err := svc.ConstraintViolations(context.Background(), "term-1", "")
	require.NoError(t, err)
	require.Len(t, result.Violations, 2)

	capacity := result.Violations[0]
	assert.Equal(t, ViolationCapacity, capacity.Type)
	assert.Equal(t, 25, capacity.CurrentValue)
	assert.Equal(t, 20, capacity.AllowedValue)

	load := result.Violations[1]
	assert.Equal(t, ViolationTeacherLoad, load.Type)
	assert.Equal(t, 4, load.CurrentValue)
	assert.Equal(t, 3, load.AllowedValue)
	assert.Len(t, load.SlotIDs, 4)

	filtered, err := svc.ConstraintViolations(context.Background(), "term-1", ViolationCapacity)
	require.NoError(t, err)
	require.Len(t, filtered.Violations, 1)
	assert.Equal(t, ViolationCapacity, filtered.Violations[0].Type)
}

func TestConstraintViolationsTeacherLoadOnWeekend(t *testing.T) {
	course := &models.Course{ID: "c-math", Code: "MATH101", Subject: "Math"}

	var slots []models.ScheduleSlot
	for period := 1; period <= 4; period++ {
		slot := assignedSlot("slot-"+string(rune('0'+period)), "t-1", "room-1", "SATURDAY", period, course, nil)
		slot.Teacher.MaxPeriodsPerDay = 3
		slots = append(slots, slot)
	}

	svc := NewReportingService(ReportingServiceParams{
		Analyzer: &fakeAnalyzer{},
		Repo:     &fakeSnapshotRepo{slots: slots},
	})

	result, err := svc.ConstraintViolations(context.Background(), "term-1", ViolationTeacherLoad)
	require.NoError(t, err)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, ViolationTeacherLoad, result.Violations[0].Type)
	assert.Contains(t, result.Violations[0].Description, "SATURDAY")
	assert.Equal(t, 4, result.Violations[0].CurrentValue)
}

func TestConstraintViolationsRejectsUnknownType(t *testing.T) {
	svc := NewReportingService(ReportingServiceParams{
		Analyzer: &fakeAnalyzer{},
		Repo:     &fakeSnapshotRepo{},
	})
	_, err := svc.ConstraintViolations(context.Background(), "term-1", "ROOM_SIZE")
	require.Error(t, err)
}

func TestOptimizationOpportunities(t *testing.T) {
	course := &models.Course{ID: "c-math", Code: "MATH101", Subject: "Math"}

	var slots []models.ScheduleSlot
	// room-1 hosts 20 periods (50% utilization), room-2 only 2 (5%).
	periods := []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY"}
	idx := 0
	for _, day := range periods {
		for period := 1; period <= 5; period++ {
			idx++
			slot := assignedSlot("busy-"+string(rune('a'+idx)), "t-1", "room-1", day, period, course, nil)
			slots = append(slots, slot)
		}
	}
	slots = append(slots,
		assignedSlot("idle-1", "t-2", "room-2", "FRIDAY", 1, course, nil),
		assignedSlot("idle-2", "t-2", "room-2", "FRIDAY", 2, course, nil),
	)

	repo := &fakeSnapshotRepo{
		slots: slots,
		rooms: []models.Room{
			{ID: "room-1", RoomNumber: "101", Capacity: 30, Type: models.RoomTypeRegular},
			{ID: "room-2", RoomNumber: "102", Capacity: 30, Type: models.RoomTypeRegular},
		},
	}
	svc := NewReportingService(ReportingServiceParams{
		Analyzer: &fakeAnalyzer{},
		Repo:     repo,
	})

	result, err := svc.OptimizationOpportunities(context.Background(), "term-1")
	require.NoError(t, err)

	var types []string
	for _, op := range result.Opportunities {
		types = append(types, op.Type)
	}
	assert.Contains(t, types, "LOW_ROOM_UTILIZATION")
	assert.Contains(t, types, "TEACHER_LOAD_IMBALANCE")
	for _, op := range result.Opportunities {
		if op.Type == "LOW_ROOM_UTILIZATION" {
			assert.Equal(t, "room-2", op.EntityID)
		}
		if op.Type == "TEACHER_LOAD_IMBALANCE" {
			assert.Equal(t, "t-1", op.EntityID)
		}
	}
}

func TestQualityMetricsComposite(t *testing.T) {
	course := &models.Course{ID: "c-math", Code: "MATH101", Subject: "Math"}
	slots := []models.ScheduleSlot{
		assignedSlot("slot-1", "t-1", "room-1", "MONDAY", 1, course, nil),
		assignedSlot("slot-2", "t-1", "room-1", "MONDAY", 2, course, nil),
	}
	repo := &fakeSnapshotRepo{
		slots: slots,
		rooms: []models.Room{{ID: "room-1", RoomNumber: "101", Capacity: 30, Type: models.RoomTypeRegular}},
	}
	svc := NewReportingService(ReportingServiceParams{
		Analyzer: &fakeAnalyzer{},
		Repo:     repo,
	})

	metrics, hit, err := svc.QualityMetrics(context.Background(), "term-1")
	require.NoError(t, err)
	assert.False(t, hit)

	assert.Equal(t, 2, metrics.TotalSlots)
	assert.Equal(t, 0, metrics.ConflictCount)
	assert.InDelta(t, 0.0, metrics.ConflictRate, 0.001)
	assert.InDelta(t, 5.0, metrics.AvgRoomUtilization, 0.001)
	assert.InDelta(t, 100.0, metrics.TeacherLoadBalance, 0.001)
	// (100-0)*0.4 + 5*0.3 + 100*0.3
	assert.InDelta(t, 71.5, metrics.CompositeScore, 0.001)
}
