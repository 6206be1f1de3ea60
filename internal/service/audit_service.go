package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-timetable-api/internal/dto"
	"github.com/noah-isme/campus-timetable-api/internal/models"
	"github.com/noah-isme/campus-timetable-api/pkg/config"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
	"github.com/noah-isme/campus-timetable-api/pkg/jobs"
)

const reauditJobType = "schedule.reaudit"

type reauditPayload struct {
	AcademicYear string `json:"academic_year"`
	Semester     string `json:"semester"`
}

// AuditService orchestrates whole-schedule audits: it loads the roster,
// runs the resolver, caches the result in Redis and keeps the cache fresh
// through background re-audits whenever the schedule changes.
type AuditService struct {
	slots    timeSlotRepository
	refs     referenceLoader
	resolver *ScheduleResolver
	cache    *redis.Client
	metrics  *MetricsService
	queue    *jobs.Queue
	cfg      config.AuditConfig
	engine   config.EngineConfig
	logger   *zap.Logger
}

// NewAuditService constructs an AuditService. The cache and metrics are
// optional; audits degrade to always-fresh computation without them.
func NewAuditService(slots timeSlotRepository, refs referenceLoader, resolver *ScheduleResolver, cache *redis.Client, metrics *MetricsService, cfg config.AuditConfig, engine config.EngineConfig, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if resolver == nil {
		resolver = NewScheduleResolver(nil, engine, logger)
	}
	s := &AuditService{
		slots:    slots,
		refs:     refs,
		resolver: resolver,
		cache:    cache,
		metrics:  metrics,
		cfg:      cfg,
		engine:   engine,
		logger:   logger,
	}
	s.queue = jobs.NewQueue("reaudit", s.handleReaudit, jobs.QueueConfig{
		Workers:    cfg.WorkerCount,
		BufferSize: cfg.QueueBufferSize,
		Logger:     logger,
	})
	return s
}

// Start launches the background re-audit workers.
func (s *AuditService) Start(ctx context.Context) {
	if s.cfg.Enabled {
		s.queue.Start(ctx)
	}
}

// Stop drains the background workers.
func (s *AuditService) Stop() {
	s.queue.Stop()
}

// Audit returns the ranked conflict list for one academic period, serving
// from cache unless the caller forces a refresh.
func (s *AuditService) Audit(ctx context.Context, query dto.AuditQuery) (dto.AuditResponse, error) {
	if query.AcademicYear == "" || query.Semester == "" {
		return dto.AuditResponse{}, appErrors.Clone(appErrors.ErrValidation, "academic_year and semester are required")
	}

	key := auditCacheKey(query.AcademicYear, query.Semester)
	if !query.Refresh && s.cache != nil {
		raw, err := s.cache.Get(ctx, key).Bytes()
		if err == nil {
			var cached dto.AuditResponse
			if err := json.Unmarshal(raw, &cached); err == nil {
				cached.FromCache = true
				s.metrics.RecordAuditCache(true)
				return cached, nil
			}
		}
	}
	s.metrics.RecordAuditCache(false)

	response, err := s.computeAudit(ctx, query.AcademicYear, query.Semester)
	if err != nil {
		return dto.AuditResponse{}, err
	}
	s.storeAudit(ctx, key, response)
	return response, nil
}

// Resolve runs auto-resolution over a fresh audit. The returned roster is a
// working copy; persisting it is a separate decision made by the caller
// through ordinary slot updates.
func (s *AuditService) Resolve(ctx context.Context, req dto.AutoResolveRequest) (models.ResolutionResult, error) {
	roster, refs, err := s.loadContext(ctx, req.AcademicYear, req.Semester)
	if err != nil {
		return models.ResolutionResult{}, err
	}

	conflicts := s.resolver.DetectConflicts(roster, refs)

	maxRelaxation := s.engine.DefaultMaxRelaxation
	if req.MaxRelaxation != nil {
		maxRelaxation = *req.MaxRelaxation
	}
	result := s.resolver.AutoResolve(conflicts, roster, refs, models.ResolveOptions{
		MaxRelaxation:          maxRelaxation,
		PreservePreferences:    req.PreservePreferences,
		AllowPartialResolution: req.AllowPartialResolution,
	})
	s.metrics.RecordResolutionRate(result.SuccessRate)
	return result, nil
}

// ScheduleChanged invalidates the cached audit for a period and queues a
// background re-audit so the next read is warm again.
func (s *AuditService) ScheduleChanged(academicYear, semester string) {
	if s.cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.cache.Del(ctx, auditCacheKey(academicYear, semester)).Err(); err != nil {
			s.logger.Warn("failed to invalidate audit cache", zap.Error(err))
		}
	}
	if !s.cfg.Enabled {
		return
	}
	err := s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    reauditJobType,
		Payload: reauditPayload{AcademicYear: academicYear, Semester: semester},
	})
	if err != nil {
		s.logger.Warn("failed to enqueue re-audit", zap.Error(err))
	}
}

func (s *AuditService) handleReaudit(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(reauditPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type for %s", job.Type)
	}
	response, err := s.computeAudit(ctx, payload.AcademicYear, payload.Semester)
	if err != nil {
		return err
	}
	s.storeAudit(ctx, auditCacheKey(payload.AcademicYear, payload.Semester), response)
	return nil
}

func (s *AuditService) computeAudit(ctx context.Context, academicYear, semester string) (dto.AuditResponse, error) {
	roster, refs, err := s.loadContext(ctx, academicYear, semester)
	if err != nil {
		return dto.AuditResponse{}, err
	}

	started := time.Now()
	conflicts := s.resolver.DetectConflicts(roster, refs)
	summary := summarize(conflicts)
	s.metrics.ObserveAudit(time.Since(started), summary.High, summary.Medium, summary.Low)

	return dto.AuditResponse{
		GeneratedAt: time.Now().UTC(),
		Summary:     summary,
		Conflicts:   conflicts,
	}, nil
}

func (s *AuditService) storeAudit(ctx context.Context, key string, response dto.AuditResponse) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(response)
	if err != nil {
		s.logger.Warn("failed to encode audit for cache", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cfg.CacheTTL).Err(); err != nil {
		s.logger.Warn("failed to cache audit", zap.Error(err))
	}
}

func (s *AuditService) loadContext(ctx context.Context, academicYear, semester string) ([]models.TimeSlot, models.ReferenceSet, error) {
	roster, err := s.slots.ListByPeriod(ctx, academicYear, semester)
	if err != nil {
		return nil, models.ReferenceSet{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	refs := models.ReferenceSet{}
	if s.refs != nil {
		refs, err = s.refs.LoadReferenceSet(ctx)
		if err != nil {
			return nil, models.ReferenceSet{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reference data")
		}
	}
	return roster, refs, nil
}

func summarize(conflicts []models.EnhancedConflict) dto.AuditSummary {
	summary := dto.AuditSummary{Total: len(conflicts)}
	for _, c := range conflicts {
		switch c.Severity {
		case models.AuditHigh:
			summary.High++
		case models.AuditMedium:
			summary.Medium++
		case models.AuditLow:
			summary.Low++
		}
		if c.AutoResolvable {
			summary.AutoResolvable++
		}
	}
	return summary
}

func auditCacheKey(academicYear, semester string) string {
	return fmt.Sprintf("audit:%s:%s", academicYear, semester)
}
