package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/fpl-scout/internal/analytics"
	"github.com/stitts-dev/fpl-scout/internal/models"
	"github.com/stitts-dev/fpl-scout/pkg/logger"
)

// NarrativeAuditor records served narratives. *AnalysisStore satisfies it.
type NarrativeAuditor interface {
	RecordNarrative(ctx context.Context, p models.PlayerRecord, n analytics.Narrative, fingerprint string) error
}

// NarrativeService serves player narratives: the rule-based score, optionally
// overlaid with an external generator's text, cached per player and input
// fingerprint.
type NarrativeService struct {
	cache     Cache
	generator NarrativeGenerator
	auditor   NarrativeAuditor
	logger    *logrus.Logger
	ttl       time.Duration
	timeout   time.Duration

	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NarrativeOptions tunes a NarrativeService. Generator and Auditor may be nil.
type NarrativeOptions struct {
	Generator NarrativeGenerator
	Auditor   NarrativeAuditor
	TTL       time.Duration
	Timeout   time.Duration
}

func NewNarrativeService(cache Cache, opts NarrativeOptions, logger *logrus.Logger) *NarrativeService {
	if cache == nil {
		cache = NewMemoryCache()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Minute
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	return &NarrativeService{
		cache:     cache,
		generator: opts.Generator,
		auditor:   opts.Auditor,
		logger:    logger,
		ttl:       opts.TTL,
		timeout:   opts.Timeout,
		locks:     make(map[string]*keyLock),
	}
}

// Analyze returns the narrative for p. It never fails: external errors fall
// back to the rule-based narrative, and a cancelled ctx discards the
// external result without caching it.
func (s *NarrativeService) Analyze(ctx context.Context, p models.PlayerRecord) analytics.Narrative {
	fingerprint := analytics.Fingerprint(p)
	key := NarrativeCacheKey(p.ID, fingerprint)
	log := logger.WithPlayer(s.logger, p.ID, p.Team).WithField("fingerprint", fingerprint)

	unlock := s.lock(key)
	defer unlock()

	var cached analytics.Narrative
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		return cached
	}
	if !errors.Is(err, ErrCacheMiss) {
		log.WithError(err).Warn("Narrative cache read failed")
	}

	narrative := analytics.Score(p)
	if s.generator != nil {
		external, ok := s.external(ctx, p, log)
		if ctx.Err() != nil {
			log.Debug("Narrative request cancelled, discarding external result")
			return narrative
		}
		if ok {
			narrative = analytics.Merge(narrative, external)
		}
	}

	if err := s.cache.Set(ctx, key, narrative, s.ttl); err != nil {
		log.WithError(err).Warn("Narrative cache write failed")
	}
	s.audit(ctx, p, narrative, fingerprint, log)
	return narrative
}

// Invalidate drops any cached narrative for p's current inputs.
func (s *NarrativeService) Invalidate(ctx context.Context, p models.PlayerRecord) error {
	return s.cache.Delete(ctx, NarrativeCacheKey(p.ID, analytics.Fingerprint(p)))
}

func (s *NarrativeService) external(ctx context.Context, p models.PlayerRecord, log *logrus.Entry) (analytics.ExternalNarrative, bool) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.generator.Generate(callCtx, analytics.BuildPrompt(p))
	if err != nil {
		if ctx.Err() == nil {
			log.WithError(err).Warn("External narrative failed, using rule-based assessment")
		}
		return analytics.ExternalNarrative{}, false
	}

	ext, err := analytics.ParseExternalNarrative(text)
	if err != nil {
		log.WithError(err).Warn("External narrative rejected, using rule-based assessment")
		return analytics.ExternalNarrative{}, false
	}
	return ext, true
}

func (s *NarrativeService) audit(ctx context.Context, p models.PlayerRecord, n analytics.Narrative, fingerprint string, log *logrus.Entry) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.RecordNarrative(ctx, p, n, fingerprint); err != nil {
		log.WithError(err).Warn("Failed to record narrative audit entry")
	}
}

// lock serializes work per cache key so concurrent requests for the same
// player compute once.
func (s *NarrativeService) lock(key string) func() {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &keyLock{}
		s.locks[key] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, key)
		}
		s.mu.Unlock()
	}
}
