package services

import (
	"context"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vytor/birdtalk/internal/clock"
	"github.com/vytor/birdtalk/internal/errors"
	"github.com/vytor/birdtalk/internal/logger"
	"github.com/vytor/birdtalk/internal/models"
	"github.com/vytor/birdtalk/internal/pack"
	"github.com/vytor/birdtalk/internal/progress"
	"github.com/vytor/birdtalk/internal/quiz"
)

// PlayService runs play sessions. A round is answered until the correct bird
// is picked; Next then advances, or completes the game once every bird is
// learned.
type PlayService interface {
	Start(ctx context.Context, profileID int64, token string) (*models.Round, error)
	Round(ctx context.Context, profileID int64, sessionID string) (*models.Round, error)
	Answer(ctx context.Context, profileID int64, sessionID string, birdID uint64) (*models.Verdict, error)
	Next(ctx context.Context, profileID int64, sessionID string) (*models.Round, error)
	// PruneExpired drops sessions idle for longer than the session TTL.
	PruneExpired(now time.Time) int
}

// PlayConfig tunes PlayService.
type PlayConfig struct {
	Shuffle      bool
	SessionTTL   time.Duration
	MediaBaseURL string
}

// PlayOption configures a PlayService.
type PlayOption func(*playService)

// WithRandom sets the source of per-session shufflers.
func WithRandom(newRand func() quiz.Shuffler) PlayOption {
	return func(s *playService) {
		s.newRand = newRand
	}
}

// WithNow sets the wall clock used for session expiry.
func WithNow(now func() time.Time) PlayOption {
	return func(s *playService) {
		s.now = now
	}
}

type session struct {
	mu         sync.Mutex
	id         string
	profileID  int64
	pack       pack.Pack
	game       *quiz.Game
	rng        quiz.Shuffler
	before     *progress.Stats
	round      int
	order      []int
	answered   bool
	wrongPicks []uint64
	result     *models.GameResult
	lastActive time.Time
}

type playService struct {
	catalog  CatalogService
	progress ProgressService
	clock    clock.Clock
	cfg      PlayConfig
	newRand  func() quiz.Shuffler
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewPlayService creates a new PlayService
func NewPlayService(catalog CatalogService, progress ProgressService, c clock.Clock, cfg PlayConfig, opts ...PlayOption) PlayService {
	s := &playService{
		catalog:  catalog,
		progress: progress,
		clock:    c,
		cfg:      cfg,
		newRand: func() quiz.Shuffler {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
		now:      time.Now,
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *playService) Start(ctx context.Context, profileID int64, token string) (*models.Round, error) {
	log := logger.FromContext(ctx)
	s.PruneExpired(s.now())

	id := pack.Resolve(ctx, token, s.clock.Today())
	p, err := s.catalog.FetchPack(ctx, id)
	if err != nil {
		return nil, err
	}
	before, err := s.progress.Stats(ctx, profileID)
	if err != nil {
		return nil, err
	}

	rng := s.newRand()
	game, err := quiz.New(p.Birds, rng, s.cfg.Shuffle)
	if err != nil {
		log.Warn("cannot start game for pack %s: %v", p.ID, err)
		return nil, errors.NewValidationError("pack", err.Error())
	}
	game.SetAlreadyLearned(allLearned(before, p.Birds))

	sess := &session{
		id:         uuid.NewString(),
		profileID:  profileID,
		pack:       *p,
		game:       game,
		rng:        rng,
		before:     before,
		lastActive: s.now(),
	}
	sess.newRound()

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	log.Info("play session started: session=%s, profile_id=%d, pack=%s, birds=%d", sess.id, profileID, p.ID, len(p.Birds))
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.view(sess), nil
}

func (s *playService) Round(ctx context.Context, profileID int64, sessionID string) (*models.Round, error) {
	sess, err := s.lock(profileID, sessionID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()
	return s.view(sess), nil
}

func (s *playService) Answer(ctx context.Context, profileID int64, sessionID string, birdID uint64) (*models.Verdict, error) {
	log := logger.FromContext(ctx).WithField("session", sessionID)
	sess, err := s.lock(profileID, sessionID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	switch {
	case sess.result != nil:
		return nil, errors.NewConflictError("game is already complete")
	case sess.answered:
		return nil, errors.NewConflictError("round already answered, move on to the next one")
	case slices.Contains(sess.wrongPicks, birdID):
		return nil, errors.NewConflictError("bird already picked this round")
	}
	if !slices.ContainsFunc(sess.game.Birds(), func(b models.Bird) bool { return b.ID == birdID }) {
		return nil, errors.NewBadRequestError("bird is not one of this round's choices")
	}

	target := sess.game.CorrectChoice()
	correct := birdID == target.Bird.ID
	learned := target.LearnedAfter(correct)
	// Lifetime stats go first so a failed save leaves the round open for a retry.
	if err := s.progress.RecordAnswer(ctx, profileID, target.Bird.ID, correct, learned); err != nil {
		return nil, err
	}

	sess.game.RecordChoice(correct)
	if correct {
		sess.answered = true
	} else {
		sess.wrongPicks = append(sess.wrongPicks, birdID)
	}
	log.Debug("answer recorded: round=%d, correct=%t, learned=%t", sess.round, correct, learned)

	return &models.Verdict{
		Correct:         correct,
		BirdID:          birdID,
		Learned:         learned,
		PercentComplete: sess.game.PercentComplete(),
		GameComplete:    sess.game.IsComplete(),
	}, nil
}

func (s *playService) Next(ctx context.Context, profileID int64, sessionID string) (*models.Round, error) {
	log := logger.FromContext(ctx).WithField("session", sessionID)
	sess, err := s.lock(profileID, sessionID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	if sess.result != nil {
		return nil, errors.NewConflictError("game is already complete")
	}
	if !sess.answered {
		return nil, errors.NewConflictError("answer the current round first")
	}

	if !sess.game.IsComplete() {
		sess.game.AdvanceRound()
		sess.newRound()
		return s.view(sess), nil
	}

	if err := s.progress.RecordPackCompleted(ctx, profileID, sess.pack); err != nil {
		return nil, err
	}
	after, err := s.progress.Stats(ctx, profileID)
	if err != nil {
		return nil, err
	}
	sess.result = &models.GameResult{
		Gains:   after.GainsSince(sess.before),
		Summary: after.Summary(s.clock.Today()),
	}
	log.Info("game complete after %d rounds: xp=+%d, newly_learned=%d", sess.round, sess.result.Gains.XP, len(sess.result.Gains.NewlyLearned))
	return s.view(sess), nil
}

func (s *playService) PruneExpired(now time.Time) int {
	if s.cfg.SessionTTL <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := now.Sub(sess.lastActive)
		sess.mu.Unlock()
		if idle > s.cfg.SessionTTL {
			delete(s.sessions, id)
			pruned++
		}
	}
	if pruned > 0 {
		logger.Default().WithPrefix("play").Debug("pruned %d idle sessions", pruned)
	}
	return pruned
}

// lock finds the profile's session and returns it locked.
func (s *playService) lock(profileID int64, sessionID string) (*session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok || sess.profileID != profileID {
		return nil, errors.NewNotFoundError("play session", sessionID)
	}
	sess.mu.Lock()
	sess.lastActive = s.now()
	return sess, nil
}

// newRound resets the per-round state and picks a display order.
func (sess *session) newRound() {
	sess.round++
	sess.answered = false
	sess.wrongPicks = nil
	n := len(sess.game.Birds())
	sess.order = make([]int, n)
	for i := range sess.order {
		sess.order[i] = i
	}
	sess.rng.Shuffle(n, func(i, j int) { sess.order[i], sess.order[j] = sess.order[j], sess.order[i] })
}

func (s *playService) view(sess *session) *models.Round {
	birds := sess.game.Birds()
	learned, total := sess.game.Progress()
	r := &models.Round{
		SessionID:       sess.id,
		Pack:            sess.pack.ID.String(),
		PackName:        sess.pack.Name,
		Number:          sess.round,
		Choices:         make([]models.Choice, 0, len(birds)),
		SoundURL:        models.NewBirdView(birds[0], s.cfg.MediaBaseURL).SoundURL,
		Answered:        sess.answered,
		Learned:         learned,
		Total:           total,
		PercentComplete: sess.game.PercentComplete(),
		AlreadyLearned:  sess.game.AlreadyLearned(),
		Complete:        sess.result != nil,
		Result:          sess.result,
	}
	for _, i := range sess.order {
		view := models.NewBirdView(birds[i], s.cfg.MediaBaseURL)
		// Only the round's sound is played; a per-choice sound would give the answer away.
		view.SoundURL = ""
		r.Choices = append(r.Choices, models.Choice{
			BirdView: view,
			Disabled: slices.Contains(sess.wrongPicks, birds[i].ID),
		})
	}
	if sess.answered {
		id := birds[0].ID
		r.CorrectBirdID = &id
	}
	return r
}

func allLearned(st *progress.Stats, birds []models.Bird) bool {
	for _, b := range birds {
		if !st.IsLearned(b.ID) {
			return false
		}
	}
	return len(birds) > 0
}
