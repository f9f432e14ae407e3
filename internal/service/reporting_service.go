package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/schedule-conflict-api/internal/dto"
	"github.com/noah-isme/schedule-conflict-api/internal/models"
	appErrors "github.com/noah-isme/schedule-conflict-api/pkg/errors"
)

const (
	// ViolationCapacity filters constraint listings to room capacity breaches.
	ViolationCapacity = "CAPACITY"
	// ViolationTeacherLoad filters constraint listings to daily load breaches.
	ViolationTeacherLoad = "TEACHER_LOAD"

	// roomUtilizationThreshold is the percentage below which a room is flagged
	// as underused.
	roomUtilizationThreshold = 30.0
	// teacherLoadFactor flags teachers whose load exceeds this multiple of the
	// mean load.
	teacherLoadFactor = 1.5
	// dashboardRecentLimit caps the conflicts shown on the dashboard.
	dashboardRecentLimit = 10
)

type conflictAnalyzer interface {
	AnalyzeTerm(ctx context.Context, termID string) ([]models.ConflictDetail, error)
}

// ReportingServiceParams groups constructor dependencies.
type ReportingServiceParams struct {
	Analyzer conflictAnalyzer
	Repo     snapshotReader
	Cache    *CacheService
	Logger   *zap.Logger
	CacheTTL time.Duration
}

// ReportingService produces whole-schedule aggregate reports. Every report is
// a stateless read; expensive dashboard and quality payloads are cached.
type ReportingService struct {
	analyzer conflictAnalyzer
	repo     snapshotReader
	cache    *CacheService
	logger   *zap.Logger
	cacheTTL time.Duration
}

// NewReportingService constructs a ReportingService.
func NewReportingService(params ReportingServiceParams) *ReportingService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ReportingService{
		analyzer: params.Analyzer,
		repo:     params.Repo,
		cache:    params.Cache,
		logger:   logger,
		cacheTTL: ttl,
	}
}

// AllConflicts returns the school-wide conflict listing for a term. Severity
// counts always cover the full set; the listing itself honours the filter.
func (s *ReportingService) AllConflicts(ctx context.Context, termID, severityFilter string) (*dto.AllConflictsResult, error) {
	if severityFilter != "" && models.Severity(severityFilter).Priority() == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown severity %q", severityFilter))
	}

	conflicts, err := s.analyzer.AnalyzeTerm(ctx, termID)
	if err != nil {
		return nil, err
	}

	critical, high, medium, low := models.CountBySeverity(conflicts)

	listed := conflicts
	if severityFilter != "" {
		listed = make([]models.ConflictDetail, 0, len(conflicts))
		for _, c := range conflicts {
			if string(c.Severity) == severityFilter {
				listed = append(listed, c)
			}
		}
	}
	if listed == nil {
		listed = []models.ConflictDetail{}
	}

	return &dto.AllConflictsResult{
		TermID:         termID,
		SeverityFilter: severityFilter,
		Conflicts:      listed,
		TotalCount:     len(listed),
		Counts:         dto.SeverityCounts{Critical: critical, High: high, Medium: medium, Low: low},
	}, nil
}

// Dashboard summarises conflict counts by entity type and severity along with
// the top conflicts. The second return value reports cache utilisation.
func (s *ReportingService) Dashboard(ctx context.Context, termID string) (*dto.ConflictDashboard, bool, error) {
	cacheKey := "conflicts:dashboard:" + termID
	if s.cache.Enabled() {
		var cached dto.ConflictDashboard
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	conflicts, err := s.analyzer.AnalyzeTerm(ctx, termID)
	if err != nil {
		return nil, false, err
	}

	byEntity := map[string]int{
		models.EntityStudent: 0,
		models.EntityTeacher: 0,
		models.EntityRoom:    0,
	}
	for _, c := range conflicts {
		if c.EntityType != "" {
			byEntity[c.EntityType]++
		}
	}

	critical, high, medium, low := models.CountBySeverity(conflicts)

	recent := conflicts
	if len(recent) > dashboardRecentLimit {
		recent = recent[:dashboardRecentLimit]
	}
	if recent == nil {
		recent = []models.ConflictDetail{}
	}

	dashboard := &dto.ConflictDashboard{
		TermID:          termID,
		TotalConflicts:  len(conflicts),
		ByEntityType:    byEntity,
		BySeverity:      dto.SeverityCounts{Critical: critical, High: high, Medium: medium, Low: low},
		RecentConflicts: recent,
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, dashboard, s.cacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return dashboard, false, nil
}

// ConstraintViolations lists hard-limit breaches with the offending
// current-vs-allowed values, optionally filtered by violation type.
func (s *ReportingService) ConstraintViolations(ctx context.Context, termID, violationType string) (*dto.ConstraintViolationsResult, error) {
	if violationType != "" && violationType != ViolationCapacity && violationType != ViolationTeacherLoad {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown violation type %q", violationType))
	}

	slots, err := s.repo.ListSlots(ctx, models.SlotFilter{TermID: termID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule slots")
	}

	var violations []dto.ConstraintViolation

	if violationType == "" || violationType == ViolationCapacity {
		for i := range slots {
			slot := &slots[i]
			if slot.Room == nil || slot.EnrolledCount() <= slot.Room.Capacity {
				continue
			}
			violations = append(violations, dto.ConstraintViolation{
				Type:         ViolationCapacity,
				EntityType:   models.EntityRoom,
				EntityID:     slot.Room.ID,
				EntityName:   slot.Room.RoomNumber,
				Description:  fmt.Sprintf("%s enrolls %d students in room %s (capacity %d)", slot.CourseCode(), slot.EnrolledCount(), slot.Room.RoomNumber, slot.Room.Capacity),
				CurrentValue: slot.EnrolledCount(),
				AllowedValue: slot.Room.Capacity,
				SlotIDs:      []string{slot.ID},
			})
		}
	}

	if violationType == "" || violationType == ViolationTeacherLoad {
		violations = append(violations, s.teacherLoadViolations(slots)...)
	}

	if violations == nil {
		violations = []dto.ConstraintViolation{}
	}
	return &dto.ConstraintViolationsResult{
		TermID:        termID,
		ViolationType: violationType,
		Violations:    violations,
		TotalCount:    len(violations),
	}, nil
}

func (s *ReportingService) teacherLoadViolations(slots []models.ScheduleSlot) []dto.ConstraintViolation {
	type dayLoad struct {
		teacher *models.Teacher
		slotIDs []string
	}
	loads := make(map[string]map[string]*dayLoad)
	var teacherIDs []string
	for i := range slots {
		slot := &slots[i]
		if slot.Teacher == nil || slot.DayOfWeek == nil {
			continue
		}
		id := slot.Teacher.ID
		if _, seen := loads[id]; !seen {
			teacherIDs = append(teacherIDs, id)
			loads[id] = make(map[string]*dayLoad)
		}
		day := *slot.DayOfWeek
		if loads[id][day] == nil {
			loads[id][day] = &dayLoad{teacher: slot.Teacher}
		}
		loads[id][day].slotIDs = append(loads[id][day].slotIDs, slot.ID)
	}
	sort.Strings(teacherIDs)

	var violations []dto.ConstraintViolation
	for _, id := range teacherIDs {
		days := make([]string, 0, len(loads[id]))
		for day := range loads[id] {
			days = append(days, day)
		}
		sort.Slice(days, func(a, b int) bool { return dayOrder[days[a]] < dayOrder[days[b]] })
		for _, day := range days {
			load := loads[id][day]
			max := load.teacher.MaxPeriodsPerDay
			if max <= 0 || len(load.slotIDs) <= max {
				continue
			}
			violations = append(violations, dto.ConstraintViolation{
				Type:         ViolationTeacherLoad,
				EntityType:   models.EntityTeacher,
				EntityID:     id,
				EntityName:   load.teacher.FullName,
				Description:  fmt.Sprintf("%s teaches %d periods on %s (limit %d)", load.teacher.FullName, len(load.slotIDs), day, max),
				CurrentValue: len(load.slotIDs),
				AllowedValue: max,
				SlotIDs:      load.slotIDs,
			})
		}
	}
	return violations
}

// OptimizationOpportunities flags rooms used below the utilization threshold
// and teachers loaded above the imbalance factor.
func (s *ReportingService) OptimizationOpportunities(ctx context.Context, termID string) (*dto.OptimizationOpportunitiesResult, error) {
	slots, err := s.repo.ListSlots(ctx, models.SlotFilter{TermID: termID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule slots")
	}
	rooms, err := s.repo.ListRooms(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}

	roomUse := make(map[string]int)
	teacherLoad := make(map[string]int)
	teacherNames := make(map[string]string)
	var teacherIDs []string
	for i := range slots {
		slot := &slots[i]
		if slot.RoomID != nil && slot.HasTime() {
			roomUse[*slot.RoomID]++
		}
		if slot.TeacherID != nil {
			id := *slot.TeacherID
			if _, seen := teacherLoad[id]; !seen {
				teacherIDs = append(teacherIDs, id)
			}
			teacherLoad[id]++
			if slot.Teacher != nil {
				teacherNames[id] = slot.Teacher.FullName
			}
		}
	}
	sort.Strings(teacherIDs)

	var opportunities []dto.OptimizationOpportunity
	for _, room := range rooms {
		utilization := float64(roomUse[room.ID]) / float64(models.SlotsPerWeek) * 100
		if utilization >= roomUtilizationThreshold {
			continue
		}
		opportunities = append(opportunities, dto.OptimizationOpportunity{
			Type:       "LOW_ROOM_UTILIZATION",
			EntityType: models.EntityRoom,
			EntityID:   room.ID,
			EntityName: room.RoomNumber,
			Metric:     utilization,
			Threshold:  roomUtilizationThreshold,
			Suggestion: fmt.Sprintf("room %s is used %.1f%% of the week; consolidate sections into it or repurpose it", room.RoomNumber, utilization),
		})
	}

	if len(teacherIDs) > 0 {
		total := 0
		for _, id := range teacherIDs {
			total += teacherLoad[id]
		}
		mean := float64(total) / float64(len(teacherIDs))
		threshold := mean * teacherLoadFactor
		for _, id := range teacherIDs {
			load := float64(teacherLoad[id])
			if load <= threshold {
				continue
			}
			name := teacherNames[id]
			if name == "" {
				name = id
			}
			opportunities = append(opportunities, dto.OptimizationOpportunity{
				Type:       "TEACHER_LOAD_IMBALANCE",
				EntityType: models.EntityTeacher,
				EntityID:   id,
				EntityName: name,
				Metric:     load,
				Threshold:  threshold,
				Suggestion: fmt.Sprintf("%s carries %.0f sections against a mean of %.1f; rebalance sections across staff", name, load, mean),
			})
		}
	}

	if opportunities == nil {
		opportunities = []dto.OptimizationOpportunity{}
	}
	return &dto.OptimizationOpportunitiesResult{
		TermID:        termID,
		Opportunities: opportunities,
		TotalCount:    len(opportunities),
	}, nil
}

// QualityMetrics computes the composite schedule quality score:
// (100-conflictRate)*0.4 + avgRoomUtilization*0.3 + teacherLoadBalance*0.3.
// The second return value reports cache utilisation.
func (s *ReportingService) QualityMetrics(ctx context.Context, termID string) (*dto.ScheduleQualityMetrics, bool, error) {
	cacheKey := "conflicts:quality:" + termID
	if s.cache.Enabled() {
		var cached dto.ScheduleQualityMetrics
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	conflicts, err := s.analyzer.AnalyzeTerm(ctx, termID)
	if err != nil {
		return nil, false, err
	}
	slots, err := s.repo.ListSlots(ctx, models.SlotFilter{TermID: termID})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule slots")
	}
	rooms, err := s.repo.ListRooms(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}

	var conflictRate float64
	if len(slots) > 0 {
		conflictRate = float64(len(conflicts)) / float64(len(slots)) * 100
	}

	avgUtilization := averageRoomUtilization(slots, rooms)
	loadBalance := teacherLoadBalance(slots)

	metrics := &dto.ScheduleQualityMetrics{
		TermID:             termID,
		TotalSlots:         len(slots),
		ConflictCount:      len(conflicts),
		ConflictRate:       conflictRate,
		AvgRoomUtilization: avgUtilization,
		TeacherLoadBalance: loadBalance,
		CompositeScore:     (100-conflictRate)*0.4 + avgUtilization*0.3 + loadBalance*0.3,
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, metrics, s.cacheTTL); err != nil {
			s.logger.Warn("quality metrics cache write failed", zap.Error(err))
		}
	}
	return metrics, false, nil
}

func averageRoomUtilization(slots []models.ScheduleSlot, rooms []models.Room) float64 {
	if len(rooms) == 0 {
		return 0
	}
	use := make(map[string]int)
	for i := range slots {
		if slots[i].RoomID != nil && slots[i].HasTime() {
			use[*slots[i].RoomID]++
		}
	}
	total := 0.0
	for _, room := range rooms {
		total += float64(use[room.ID]) / float64(models.SlotsPerWeek) * 100
	}
	return total / float64(len(rooms))
}

// teacherLoadBalance maps the stddev of per-teacher loads onto a 0-100 score:
// 100 - min(100, stddev*10).
func teacherLoadBalance(slots []models.ScheduleSlot) float64 {
	loads := make(map[string]int)
	for i := range slots {
		if slots[i].TeacherID != nil {
			loads[*slots[i].TeacherID]++
		}
	}
	if len(loads) == 0 {
		return 100
	}
	total := 0
	for _, load := range loads {
		total += load
	}
	mean := float64(total) / float64(len(loads))
	variance := 0.0
	for _, load := range loads {
		diff := float64(load) - mean
		variance += diff * diff
	}
	variance /= float64(len(loads))
	stddev := math.Sqrt(variance)
	return 100 - math.Min(100, stddev*10)
}
