package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	"github.com/noah-isme/uni-timetable-api/internal/models"
	"github.com/noah-isme/uni-timetable-api/internal/scheduler"
	"github.com/noah-isme/uni-timetable-api/pkg/config"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
	"github.com/noah-isme/uni-timetable-api/pkg/export"
)

const (
	gridCachePrefix = "timetable:grid:"
	lockPrefix      = "timetable:lock:"

	FormatPDF  = "pdf"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

var exportContentTypes = map[string]string{
	FormatPDF:  "application/pdf",
	FormatCSV:  "text/csv",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

type sectionCandidateReader interface {
	ListCandidates(ctx context.Context, termID string) ([]models.SectionCandidate, error)
}

type examCandidateReader interface {
	ListCandidates(ctx context.Context, termID string) ([]models.ExamCandidate, error)
}

type placementRepository interface {
	ListByTerm(ctx context.Context, termID string, kind models.PlacementKind) ([]models.PlacementDetail, error)
	Create(ctx context.Context, placement *models.Placement) error
	DeleteByTerm(ctx context.Context, termID string, kind models.PlacementKind) (int64, error)
}

type gridRenderer interface {
	RenderGrid(grid export.Grid) ([]byte, error)
}

// TimetableConfig carries the defaults applied to generation runs and grid rendering.
type TimetableConfig struct {
	Weekdays       []scheduler.Weekday
	PeriodStart    int
	PeriodEnd      int
	MaxPerDay      int
	ConsecutiveGap int
	RestGap        int
	ExamMaxPerDay  int
	ExamGap        int
	LockTTL        time.Duration
	GridCacheTTL   time.Duration
}

// NewTimetableConfig converts environment configuration, rejecting unknown weekday names.
func NewTimetableConfig(cfg config.TimetableConfig, cache config.CacheConfig) (TimetableConfig, error) {
	weekdays, err := parseWeekdays(cfg.Weekdays)
	if err != nil {
		return TimetableConfig{}, err
	}
	return TimetableConfig{
		Weekdays:       weekdays,
		PeriodStart:    cfg.PeriodStart,
		PeriodEnd:      cfg.PeriodEnd,
		MaxPerDay:      cfg.MaxPerDay,
		ConsecutiveGap: cfg.ConsecutiveGap,
		RestGap:        cfg.RestGap,
		ExamMaxPerDay:  cfg.ExamMaxPerDay,
		ExamGap:        cfg.ExamGap,
		LockTTL:        cfg.LockTTL,
		GridCacheTTL:   cache.GridTTL,
	}, nil
}

func parseWeekdays(raw []string) ([]scheduler.Weekday, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	weekdays := make([]scheduler.Weekday, 0, len(raw))
	for _, name := range raw {
		day, err := scheduler.ParseWeekday(name)
		if err != nil {
			return nil, err
		}
		weekdays = append(weekdays, day)
	}
	return weekdays, nil
}

func (c TimetableConfig) withDefaults() TimetableConfig {
	defaults := scheduler.DefaultOptions(scheduler.VariantSection)
	if len(c.Weekdays) == 0 {
		c.Weekdays = defaults.Weekdays
	}
	if c.PeriodStart <= 0 {
		c.PeriodStart = defaults.PeriodStart
	}
	if c.PeriodEnd <= 0 {
		c.PeriodEnd = defaults.PeriodEnd
	}
	if c.MaxPerDay <= 0 {
		c.MaxPerDay = defaults.MaxPerDay
	}
	if c.ExamMaxPerDay <= 0 {
		c.ExamMaxPerDay = scheduler.DefaultExamPolicy().MaxPerDay
	}
	if c.LockTTL <= 0 {
		c.LockTTL = 2 * time.Minute
	}
	return c
}

// TimetableService runs the placement engine against stored sections and exams and renders the result.
type TimetableService struct {
	sections   sectionCandidateReader
	exams      examCandidateReader
	placements placementRepository
	cache      *CacheService
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        TimetableConfig
	renderers  map[string]gridRenderer
	events     EventPublisher
}

// NewTimetableService wires timetable dependencies.
func NewTimetableService(
	sections sectionCandidateReader,
	exams examCandidateReader,
	placements placementRepository,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TimetableConfig,
	events EventPublisher,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		sections:   sections,
		exams:      exams,
		placements: placements,
		cache:      cache,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		cfg:        cfg.withDefaults(),
		renderers: map[string]gridRenderer{
			FormatPDF:  export.NewPDFExporter(),
			FormatCSV:  export.NewCSVExporter(),
			FormatXLSX: export.NewXLSXExporter(),
		},
		events: events,
	}
}

// GenerateSections places every unplaced section of the term.
func (s *TimetableService) GenerateSections(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	return s.generate(ctx, scheduler.VariantSection, req)
}

// GenerateExams places every unplaced exam of the term.
func (s *TimetableService) GenerateExams(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	return s.generate(ctx, scheduler.VariantExam, req)
}

func (s *TimetableService) generate(ctx context.Context, variant scheduler.Variant, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation payload")
	}
	opts, err := s.options(variant, req)
	if err != nil {
		return nil, err
	}

	release, err := s.cache.Lock(ctx, lockPrefix+req.TermID+":"+string(variant), s.cfg.LockTTL)
	if err != nil {
		if errors.Is(err, appErrors.ErrGenerationInProgress) {
			s.metrics.RecordLockContention(string(variant))
		}
		return nil, err
	}
	defer release()

	start := time.Now()
	kind := models.PlacementKind(variant)

	candidates, err := s.loadCandidates(ctx, variant, req.TermID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load candidates")
	}
	existing, err := s.loadPlacements(ctx, req.TermID, kind)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load placements")
	}

	store := scheduler.StoreFunc(func(ctx context.Context, placement scheduler.Placement) (string, error) {
		record := placementRecord(req.TermID, kind, placement)
		if err := s.placements.Create(ctx, record); err != nil {
			return "", err
		}
		return record.ID, nil
	})

	// Persistence runs to completion even when the request is cancelled.
	result, genErr := scheduler.Generate(context.WithoutCancel(ctx), candidates, existing, opts, store)
	duration := time.Since(start)
	unplaced, byReason := unplacedViews(result.Unplaced)
	s.metrics.ObserveGeneration(string(variant), len(result.Committed), byReason, duration, genErr)

	if len(result.Committed) > 0 {
		_ = s.cache.Invalidate(ctx, gridCachePrefix+req.TermID+":*")
	}

	if genErr != nil {
		s.logger.Error("timetable generation failed",
			zap.String("term_id", req.TermID),
			zap.String("variant", string(variant)),
			zap.Int("committed", len(result.Committed)),
			zap.Error(genErr),
		)
		return nil, appErrors.Wrap(genErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
			fmt.Sprintf("timetable generation stopped after %d placements", len(result.Committed)))
	}

	stats := generationStats(candidates, existing, result)
	stats.DurationMs = duration.Milliseconds()
	s.logger.Info("timetable generated",
		zap.String("term_id", req.TermID),
		zap.String("variant", string(variant)),
		zap.Int("placed", stats.Placed),
		zap.Int("unplaced", stats.Unplaced),
		zap.Duration("duration", duration),
	)
	if len(result.Committed) > 0 {
		s.publishGenerated(ctx, req.TermID, variant, result, byReason)
	}

	return &dto.GenerateTimetableResponse{
		TermID:     req.TermID,
		Variant:    string(variant),
		Placements: placementViews(result.Placements),
		Committed:  placementViews(result.Committed),
		Unplaced:   unplaced,
		Stats:      stats,
	}, nil
}

func generationStats(candidates []scheduler.Candidate, existing []scheduler.Placement, result *scheduler.Result) dto.GenerationStats {
	represented := make(map[string]struct{}, len(existing))
	for _, placement := range existing {
		represented[placement.CandidateID] = struct{}{}
	}
	alreadyPlaced := 0
	for _, candidate := range candidates {
		if _, ok := represented[candidate.ID]; ok {
			alreadyPlaced++
		}
	}
	stats := dto.GenerationStats{
		Candidates:    len(candidates),
		AlreadyPlaced: alreadyPlaced,
		Placed:        len(result.Committed),
		Unplaced:      len(result.Unplaced),
	}
	stats.OutOfScope = stats.Candidates - stats.AlreadyPlaced - stats.Placed - stats.Unplaced
	return stats
}

// options layers request overrides on top of the configured defaults.
func (s *TimetableService) options(variant scheduler.Variant, req dto.GenerateTimetableRequest) (scheduler.Options, error) {
	opts := scheduler.DefaultOptions(variant)
	opts.Weekdays = s.cfg.Weekdays
	opts.PeriodStart = s.cfg.PeriodStart
	opts.PeriodEnd = s.cfg.PeriodEnd
	opts.MaxPerDay = s.cfg.MaxPerDay
	opts.ConsecutiveGap = s.cfg.ConsecutiveGap
	opts.RestGap = s.cfg.RestGap
	opts.ExamGap = s.cfg.ExamGap
	if variant == scheduler.VariantExam {
		opts.MaxPerDay = s.cfg.ExamMaxPerDay
	}

	if len(req.Weekdays) > 0 {
		weekdays, err := parseWeekdays(req.Weekdays)
		if err != nil {
			return opts, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid weekday")
		}
		opts.Weekdays = weekdays
	}
	override(&opts.PeriodStart, req.PeriodStart)
	override(&opts.PeriodEnd, req.PeriodEnd)
	override(&opts.MaxPerDay, req.MaxPerDay)
	override(&opts.ConsecutiveGap, req.ConsecutiveGap)
	override(&opts.RestGap, req.RestGap)
	override(&opts.ExamGap, req.ExamGap)
	if opts.PeriodEnd < opts.PeriodStart {
		return opts, appErrors.Clone(appErrors.ErrValidation, "periodEnd must not precede periodStart")
	}

	opts.TargetGroup = req.GroupID
	opts.TargetSubjectType = scheduler.SubjectType(req.SubjectType)
	return opts, nil
}

func override(target *int, value *int) {
	if value != nil {
		*target = *value
	}
}

func (s *TimetableService) loadCandidates(ctx context.Context, variant scheduler.Variant, termID string) ([]scheduler.Candidate, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveDBQuery("list_candidates", time.Since(start)) }()

	if variant == scheduler.VariantExam {
		rows, err := s.exams.ListCandidates(ctx, termID)
		if err != nil {
			return nil, err
		}
		candidates := make([]scheduler.Candidate, 0, len(rows))
		for _, row := range rows {
			candidates = append(candidates, examCandidate(row))
		}
		return candidates, nil
	}

	rows, err := s.sections.ListCandidates(ctx, termID)
	if err != nil {
		return nil, err
	}
	candidates := make([]scheduler.Candidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, sectionCandidate(row))
	}
	return candidates, nil
}

func (s *TimetableService) loadPlacements(ctx context.Context, termID string, kind models.PlacementKind) ([]scheduler.Placement, error) {
	start := time.Now()
	rows, err := s.placements.ListByTerm(ctx, termID, kind)
	s.metrics.ObserveDBQuery("list_placements", time.Since(start))
	if err != nil {
		return nil, err
	}
	placements := make([]scheduler.Placement, 0, len(rows))
	for _, row := range rows {
		placement, err := placementFromDetail(row)
		if err != nil {
			return nil, err
		}
		placements = append(placements, placement)
	}
	return placements, nil
}

// Grid returns the stored placements of a term laid out for rendering, with overlap stacking applied.
func (s *TimetableService) Grid(ctx context.Context, query dto.TimetableGridQuery) (*dto.TimetableGridResponse, error) {
	query.Kind = strings.ToUpper(strings.TrimSpace(query.Kind))
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grid query")
	}
	if query.Kind == "" {
		query.Kind = string(models.PlacementKindSection)
	}

	cacheKey := fmt.Sprintf("%s%s:%s:%s:%s:%s", gridCachePrefix, query.TermID, query.Kind, query.GroupID, query.RoomID, query.InstructorID)
	var cached dto.TimetableGridResponse
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	placements, err := s.loadPlacements(ctx, query.TermID, models.PlacementKind(query.Kind))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load placements")
	}
	filtered := placements[:0]
	for _, placement := range placements {
		if matchesFilter(placement, query) {
			filtered = append(filtered, placement)
		}
	}

	grid := s.layout(query, scheduler.ProcessOverlaps(filtered))
	_ = s.cache.Set(ctx, cacheKey, grid, s.cfg.GridCacheTTL)
	return grid, nil
}

// layout buckets grid items into weekday rows. Configured weekdays always get a row; other days only when occupied.
func (s *TimetableService) layout(query dto.TimetableGridQuery, items []scheduler.GridItem) *dto.TimetableGridResponse {
	configured := make(map[scheduler.Weekday]bool, len(s.cfg.Weekdays))
	for _, day := range s.cfg.Weekdays {
		configured[day] = true
	}
	byDay := make(map[scheduler.Weekday][]dto.GridItemView)
	periodStart, periodEnd := s.cfg.PeriodStart, s.cfg.PeriodEnd
	for _, item := range items {
		byDay[item.Weekday] = append(byDay[item.Weekday], dto.GridItemView{
			PlacementView: placementView(item.Placement),
			Overlap:       item.Overlap,
			Offset:        item.Offset,
		})
		if item.Span.Start < periodStart {
			periodStart = item.Span.Start
		}
		if item.Span.End() > periodEnd {
			periodEnd = item.Span.End()
		}
	}

	grid := &dto.TimetableGridResponse{
		TermID:      query.TermID,
		Kind:        query.Kind,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Days:        []dto.GridDayView{},
	}
	for _, day := range scheduler.Weekdays() {
		dayItems := byDay[day]
		if !configured[day] && len(dayItems) == 0 {
			continue
		}
		if dayItems == nil {
			dayItems = []dto.GridItemView{}
		}
		grid.Days = append(grid.Days, dto.GridDayView{
			Weekday: day.String(),
			Depth:   scheduler.StackDepth(items, day),
			Items:   dayItems,
		})
	}
	return grid
}

// Export renders the grid selected by query as a PDF, CSV or XLSX file.
func (s *TimetableService) Export(ctx context.Context, query dto.TimetableGridQuery, format string) (*dto.TimetableExport, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatPDF
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.ErrUnsupportedFormat
	}

	grid, err := s.Grid(ctx, query)
	if err != nil {
		return nil, err
	}
	payload, err := renderer.RenderGrid(exportGrid(grid))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable")
	}

	return &dto.TimetableExport{
		Filename:    fmt.Sprintf("timetable-%s-%s.%s", grid.TermID, strings.ToLower(grid.Kind), format),
		ContentType: exportContentTypes[format],
		Payload:     payload,
	}, nil
}

// Reset removes every stored placement of a kind so the next run starts from an empty grid.
func (s *TimetableService) Reset(ctx context.Context, termID, kind string) (*dto.ResetTimetableResponse, error) {
	kind = strings.ToUpper(strings.TrimSpace(kind))
	if termID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "termId is required")
	}
	if kind != string(models.PlacementKindSection) && kind != string(models.PlacementKindExam) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "kind must be SECTION or EXAM")
	}

	release, err := s.cache.Lock(ctx, lockPrefix+termID+":"+kind, s.cfg.LockTTL)
	if err != nil {
		return nil, err
	}
	defer release()

	removed, err := s.placements.DeleteByTerm(ctx, termID, models.PlacementKind(kind))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset timetable")
	}
	_ = s.cache.Invalidate(ctx, gridCachePrefix+termID+":*")
	s.logger.Info("timetable reset", zap.String("term_id", termID), zap.String("kind", kind), zap.Int64("removed", removed))
	if removed > 0 {
		s.publishReset(ctx, termID, kind, removed)
	}
	return &dto.ResetTimetableResponse{TermID: termID, Kind: kind, Removed: removed}, nil
}
