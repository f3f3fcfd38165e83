package services

import (
	"context"
	"sync"

	"github.com/vytor/birdtalk/internal/clock"
	"github.com/vytor/birdtalk/internal/errors"
	"github.com/vytor/birdtalk/internal/jobs"
	"github.com/vytor/birdtalk/internal/logger"
	"github.com/vytor/birdtalk/internal/pack"
	"github.com/vytor/birdtalk/internal/progress"
	"github.com/vytor/birdtalk/internal/repository"
)

// ProgressService owns the progress of every profile. Each profile's Stats is
// only touched under that profile's lock; snapshots are persisted in the
// background with an increasing version.
type ProgressService interface {
	// Stats returns a copy of the profile's progress.
	Stats(ctx context.Context, profileID int64) (*progress.Stats, error)
	Summary(ctx context.Context, profileID int64) (progress.Summary, error)
	RecordAnswer(ctx context.Context, profileID int64, birdID uint64, correct, learned bool) error
	RecordPackCompleted(ctx context.Context, profileID int64, p pack.Pack) error
	// Forget drops the cached progress of a deleted profile.
	Forget(profileID int64)
}

type profileProgress struct {
	mu      sync.Mutex
	loaded  bool
	stats   *progress.Stats
	version int64
}

type progressService struct {
	statsRepo repository.StatsRepository
	jobQueue  jobs.JobQueue
	clock     clock.Clock

	mu       sync.Mutex
	profiles map[int64]*profileProgress
}

// NewProgressService creates a new ProgressService
func NewProgressService(statsRepo repository.StatsRepository, jobQueue jobs.JobQueue, c clock.Clock) ProgressService {
	return &progressService{
		statsRepo: statsRepo,
		jobQueue:  jobQueue,
		clock:     c,
		profiles:  make(map[int64]*profileProgress),
	}
}

func (s *progressService) entry(profileID int64) *profileProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.profiles[profileID]
	if !ok {
		e = &profileProgress{}
		s.profiles[profileID] = e
	}
	return e
}

// load must be called with e.mu held.
func (s *progressService) load(ctx context.Context, profileID int64, e *profileProgress) error {
	if e.loaded {
		return nil
	}
	log := logger.FromContext(ctx)
	stored, err := s.statsRepo.Load(ctx, profileID)
	if err != nil {
		log.Error("failed to load stats for profile %d: %v", profileID, err)
		return errors.NewInternalError(err)
	}
	if stored == nil {
		log.Debug("no stored stats for profile %d, starting fresh", profileID)
		e.stats = progress.New()
	} else {
		e.stats = progress.FromSnapshot(stored.Snapshot)
		e.version = stored.Version
	}
	e.loaded = true
	return nil
}

func (s *progressService) read(ctx context.Context, profileID int64, fn func(*progress.Stats)) error {
	e := s.entry(profileID)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := s.load(ctx, profileID, e); err != nil {
		return err
	}
	fn(e.stats)
	return nil
}

func (s *progressService) update(ctx context.Context, profileID int64, fn func(*progress.Stats)) error {
	log := logger.FromContext(ctx)
	e := s.entry(profileID)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := s.load(ctx, profileID, e); err != nil {
		return err
	}

	// The change is applied to a copy and kept only once it has been handed off.
	next := e.stats.Clone()
	fn(next)
	version := e.version + 1
	snap := next.Snapshot()

	if err := s.jobQueue.EnqueueStatsSave(profileID, snap, version); err != nil {
		log.Warn("could not queue stats save for profile %d (%v), saving inline", profileID, err)
		if _, err := s.statsRepo.Save(ctx, profileID, snap, version); err != nil {
			log.Error("failed to save stats for profile %d: %v", profileID, err)
			return errors.NewInternalError(err)
		}
	}
	e.stats = next
	e.version = version
	return nil
}

func (s *progressService) Stats(ctx context.Context, profileID int64) (*progress.Stats, error) {
	var out *progress.Stats
	err := s.read(ctx, profileID, func(st *progress.Stats) { out = st.Clone() })
	return out, err
}

func (s *progressService) Summary(ctx context.Context, profileID int64) (progress.Summary, error) {
	var out progress.Summary
	err := s.read(ctx, profileID, func(st *progress.Stats) { out = st.Summary(s.clock.Today()) })
	return out, err
}

func (s *progressService) RecordAnswer(ctx context.Context, profileID int64, birdID uint64, correct, learned bool) error {
	logger.FromContext(ctx).Debug("recording answer: profile_id=%d, bird_id=%d, correct=%t", profileID, birdID, correct)
	return s.update(ctx, profileID, func(st *progress.Stats) {
		if correct {
			st.RecordCorrect(birdID, learned)
		} else {
			st.RecordIncorrect(birdID)
		}
	})
}

func (s *progressService) RecordPackCompleted(ctx context.Context, profileID int64, p pack.Pack) error {
	logger.FromContext(ctx).Info("pack completed: profile_id=%d, pack=%s", profileID, p.ID)
	return s.update(ctx, profileID, func(st *progress.Stats) {
		st.RecordPackCompleted(p.BirdPackID, p.Day, s.clock.Today())
	})
}

func (s *progressService) Forget(profileID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, profileID)
}
