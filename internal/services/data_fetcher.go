package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Refresher rebuilds the player snapshot. *PlayerService satisfies it.
type Refresher interface {
	Refresh(ctx context.Context, force bool) (SnapshotStatus, error)
}

// Pruner drops history older than a cutoff. *AnalysisStore satisfies it.
type Pruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// Evicter drops expired in-memory entries. *MemoryCache and
// *session.Store satisfy it.
type Evicter interface {
	Evict() int
}

// DataFetcherService refreshes the player snapshot on a schedule and runs
// nightly housekeeping.
type DataFetcherService struct {
	refresher     Refresher
	pruner        Pruner
	evicters      []Evicter
	logger        *logrus.Logger
	cron          *cron.Cron
	mu            sync.Mutex
	isRunning     bool
	fetchInterval time.Duration
	fetchTimeout  time.Duration
	retention     time.Duration
}

// DataFetcherOptions wires optional housekeeping targets.
type DataFetcherOptions struct {
	Pruner       Pruner
	Evicters     []Evicter
	FetchTimeout time.Duration
	Retention    time.Duration
}

func NewDataFetcherService(refresher Refresher, fetchInterval time.Duration, opts DataFetcherOptions, logger *logrus.Logger) *DataFetcherService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 2 * time.Minute
	}
	if opts.Retention <= 0 {
		opts.Retention = 30 * 24 * time.Hour
	}
	return &DataFetcherService{
		refresher:     refresher,
		pruner:        opts.Pruner,
		evicters:      opts.Evicters,
		logger:        logger,
		cron:          cron.New(),
		fetchInterval: fetchInterval,
		fetchTimeout:  opts.FetchTimeout,
		retention:     opts.Retention,
	}
}

// Start schedules the periodic refresh and cleanup and kicks off an
// initial refresh in the background.
func (s *DataFetcherService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("data fetcher is already running")
	}
	if s.fetchInterval <= 0 {
		return fmt.Errorf("invalid fetch interval %v", s.fetchInterval)
	}

	schedule := fmt.Sprintf("@every %s", s.fetchInterval.String())
	if _, err := s.cron.AddFunc(schedule, s.RunRefresh); err != nil {
		return fmt.Errorf("failed to schedule data fetcher: %w", err)
	}
	if _, err := s.cron.AddFunc("0 3 * * *", s.RunCleanup); err != nil {
		return fmt.Errorf("failed to schedule cleanup: %w", err)
	}

	s.cron.Start()
	s.isRunning = true

	go s.RunRefresh()

	s.logger.WithField("interval", s.fetchInterval.String()).Info("Data fetcher service started")
	return nil
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *DataFetcherService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.logger.Info("Data fetcher service stopped")
}

func (s *DataFetcherService) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// RunRefresh performs one scheduled refresh.
func (s *DataFetcherService) RunRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), s.fetchTimeout)
	defer cancel()

	status, err := s.refresher.Refresh(ctx, false)
	if err != nil {
		s.logger.WithError(err).Error("Scheduled player refresh failed")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"gameweek": status.Gameweek,
		"players":  status.PlayerCount,
	}).Debug("Scheduled player refresh completed")
}

// RunCleanup evicts expired in-memory entries and prunes old history.
func (s *DataFetcherService) RunCleanup() {
	evicted := 0
	for _, e := range s.evicters {
		evicted += e.Evict()
	}
	s.logger.WithField("evicted", evicted).Debug("Evicted expired entries")

	if s.pruner == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.fetchTimeout)
	defer cancel()
	if _, err := s.pruner.Prune(ctx, time.Now().Add(-s.retention)); err != nil {
		s.logger.WithError(err).Error("Failed to prune analysis history")
	}
}
