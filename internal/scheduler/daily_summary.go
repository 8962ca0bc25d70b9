// Package scheduler runs the periodic maintenance jobs of the service
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/vfg2006/sales-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/sales-dashboard-api/internal/config"
	"github.com/vfg2006/sales-dashboard-api/internal/domain"
	"github.com/vfg2006/sales-dashboard-api/internal/usecases/aggregating"
	"github.com/vfg2006/sales-dashboard-api/pkg/log"
	"github.com/vfg2006/sales-dashboard-api/pkg/utils"
)

type SessionCleaner interface {
	CleanupExpiredSessions(ctx context.Context) (int64, error)
}

type DailySummaryConfig struct {
	CronSchedule string
	LookbackDays int
	SyncEnabled  bool
}

// DailySummaryService stores one total per calendar day for the recent window
// and drops expired sessions
type DailySummaryService struct {
	scheduler   *gocron.Scheduler
	saleRepo    repository.SaleRepository
	summaryRepo repository.DailySummaryRepository
	sessions    SessionCleaner
	calendar    aggregating.Calendar
	config      DailySummaryConfig
	now         func() time.Time

	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastSyncError       string
}

func NewDailySummaryService(
	saleRepo repository.SaleRepository,
	summaryRepo repository.DailySummaryRepository,
	sessions SessionCleaner,
	cfg *config.Config,
) (*DailySummaryService, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	summaryConfig := DailySummaryConfig{
		CronSchedule: cfg.DailySummary.CronSchedule,
		LookbackDays: cfg.DailySummary.LookbackDays,
		SyncEnabled:  cfg.DailySummary.Enabled,
	}
	if summaryConfig.LookbackDays < 1 {
		summaryConfig.LookbackDays = 1
	}

	log.L.WithFields(log.Fields{
		"cron_schedule": summaryConfig.CronSchedule,
		"lookback_days": summaryConfig.LookbackDays,
	}).Info("daily summary scheduler configured")

	return &DailySummaryService{
		scheduler:   gocron.NewScheduler(loc),
		saleRepo:    saleRepo,
		summaryRepo: summaryRepo,
		sessions:    sessions,
		calendar:    aggregating.NewCalendar(loc),
		config:      summaryConfig,
		now:         time.Now,
	}, nil
}

func (s *DailySummaryService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		log.L.Info("daily summary job disabled by configuration")
		return nil
	}

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		if err := s.Run(ctx); err != nil {
			log.L.WithError(err).Error("daily summary job failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule daily summary job: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		log.L.Info("stopping daily summary scheduler")
		s.scheduler.Stop()
	}()

	return nil
}

// Run rebuilds the summaries of the lookback window. A run already in
// progress makes it return immediately.
func (s *DailySummaryService) Run(ctx context.Context) error {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		log.L.Warn("daily summary job already running")
		return nil
	}
	s.syncRunning = true
	s.lastSyncStartedAt = s.now()
	s.syncMutex.Unlock()

	err := s.summarize(ctx)

	s.syncMutex.Lock()
	s.syncRunning = false
	s.lastSyncCompletedAt = s.now()
	s.lastSyncError = ""
	if err != nil {
		s.lastSyncError = err.Error()
	}
	s.syncMutex.Unlock()

	return err
}

func (s *DailySummaryService) summarize(ctx context.Context) error {
	now := s.now()

	firstDay := s.calendar.DaysBefore(now, s.config.LookbackDays-1)
	from, err := utils.ParseDateIn(string(firstDay), s.calendar.Location)
	if err != nil {
		return fmt.Errorf("resolve window start: %w", err)
	}

	sales, err := s.saleRepo.ListSince(ctx, domain.MillisOf(*from))
	if err != nil {
		return fmt.Errorf("list sales: %w", err)
	}

	buckets := aggregating.BucketByDate(s.calendar, aggregating.SortNewestFirst(sales))

	summaries := make([]*domain.DailySummary, 0, s.config.LookbackDays)
	for n := 0; n < s.config.LookbackDays; n++ {
		key := s.calendar.DaysBefore(now, n)
		daySales, _ := buckets.Get(key)
		summaries = append(summaries, &domain.DailySummary{
			Date:       string(key),
			SalesCount: len(daySales),
			Total:      aggregating.SumTotals(daySales),
			UpdatedAt:  now,
		})
	}

	if err := s.summaryRepo.SaveOrUpdate(ctx, summaries); err != nil {
		return fmt.Errorf("save summaries: %w", err)
	}

	log.L.WithFields(log.Fields{"days": len(summaries), "sales": len(sales)}).Info("daily summaries updated")

	if s.sessions != nil {
		removed, err := s.sessions.CleanupExpiredSessions(ctx)
		if err != nil {
			log.L.WithError(err).Warn("could not remove expired sessions")
		} else if removed > 0 {
			log.L.WithField("removed", removed).Info("expired sessions removed")
		}
	}

	return nil
}

// TriggerManualSync starts a run in the background; it reports false when a
// run is already in progress
func (s *DailySummaryService) TriggerManualSync(ctx context.Context) bool {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		log.L.Info("daily summary job already running, ignoring manual trigger")
		return false
	}
	s.syncMutex.Unlock()

	log.L.Info("starting manual daily summary run")
	go func() {
		if err := s.Run(ctx); err != nil {
			log.L.WithError(err).Error("manual daily summary run failed")
		}
	}()

	return true
}

func (s *DailySummaryService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_enabled":           s.config.SyncEnabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_lookback_days":     s.config.LookbackDays,
		"running":                s.syncRunning,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
		"last_sync_error":        s.lastSyncError,
	}
}
