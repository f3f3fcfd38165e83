// Package rotation runs the periodic housekeeping of the server: creating the
// pack of the day and dropping idle play sessions.
package rotation

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/vytor/birdtalk/internal/clock"
	"github.com/vytor/birdtalk/internal/logger"
	"github.com/vytor/birdtalk/internal/services"
)

// SessionSweepInterval is how often idle play sessions are pruned.
const SessionSweepInterval = 5 * time.Minute

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	daily     services.DailyPackService
	play      services.PlayService
	clock     clock.Clock
	at        string
	log       *logger.Logger
}

// New creates a scheduler that ensures the pack of the day every day at "at"
// (HH:MM in loc) and sweeps idle sessions of play.
func New(daily services.DailyPackService, play services.PlayService, c clock.Clock, at string, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	s := gocron.NewScheduler(loc)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		daily:     daily,
		play:      play,
		clock:     c,
		at:        at,
		log:       logger.Default().WithPrefix("rotation"),
	}
}

// Start ensures today's pack right away, then schedules the recurring jobs
// without blocking.
func (s *Scheduler) Start() error {
	s.Rotate()

	if _, err := s.scheduler.Every(1).Day().At(s.at).Tag("daily_pack").Do(s.Rotate); err != nil {
		return err
	}
	if _, err := s.scheduler.Every(SessionSweepInterval).WaitForSchedule().Tag("session_sweep").Do(s.Sweep); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	s.log.Info("scheduler started: daily pack at %s, session sweep every %s", s.at, SessionSweepInterval)
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.log.Info("scheduler stopped")
}

// Rotate makes sure the pack of the day exists for today. Failures are logged;
// the next run tries again.
func (s *Scheduler) Rotate() {
	ctx := logger.NewContext(context.Background(), s.log)
	day := s.clock.Today()
	bp, created, err := s.daily.EnsureDailyPack(ctx, day)
	if err != nil {
		s.log.Error("failed to ensure pack of the day for %s: %v", day, err)
		return
	}
	if created {
		s.log.Info("pack of the day for %s is ready: id=%d, birds=%d", day, bp.ID, len(bp.Birds))
	}
}

// Sweep prunes idle play sessions.
func (s *Scheduler) Sweep() {
	if s.play == nil {
		return
	}
	if n := s.play.PruneExpired(time.Now()); n > 0 {
		s.log.Debug("swept %d idle play sessions", n)
	}
}
