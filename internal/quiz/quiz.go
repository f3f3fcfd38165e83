// Package quiz schedules the rounds of a single play session.
//
// A Game splits its birds into a choice set of ChoiceSize birds and a backlog.
// Slot 0 of the choice set is the bird the player has to identify; the others
// are decoys. After every round the backlog becomes the next choice set and the
// previous choices go back into the backlog, which is re-sorted so that
// unlearned, often mistaken and long unseen birds come up first. An unlearned
// bird always takes the answer slot when one is on offer.
//
// A Game is not safe for concurrent use.
package quiz

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/vytor/birdtalk/internal/models"
	"github.com/vytor/birdtalk/internal/progress"
)

// ChoiceSize is the number of birds offered in each round.
const ChoiceSize = 4

const (
	learnedWeight = 10
	maxLastSeen   = 5
)

var (
	ErrNotEnoughBirds = fmt.Errorf("a game needs at least %d birds", ChoiceSize)
	ErrDuplicateBird  = errors.New("bird appears more than once")
)

// Shuffler permutes n elements through swap. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type globalRand struct{}

func (globalRand) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// BirdContext is a bird together with what happened to it in this session.
type BirdContext struct {
	Bird       models.Bird `json:"bird"`
	Identified uint32      `json:"identified"`
	// ConsecutivelyIdentified resets to zero on every mistake. The bird is
	// learned once it reaches progress.LearnThreshold.
	ConsecutivelyIdentified uint32 `json:"consecutively_identified"`
	Mistaken                uint32 `json:"mistaken"`
	// LastSeen counts rounds since the bird was last in the choice set; nil
	// until it has been scheduled once.
	LastSeen *uint32 `json:"last_seen,omitempty"`
}

func newBirdContext(b models.Bird) BirdContext {
	return BirdContext{Bird: b}
}

func (bc BirdContext) Learned() bool {
	return bc.ConsecutivelyIdentified >= progress.LearnThreshold
}

func (bc BirdContext) weight() int {
	w := 0
	if bc.Learned() {
		w += learnedWeight
	}
	w -= int(bc.Mistaken)
	seen := uint32(maxLastSeen)
	if bc.LastSeen != nil {
		seen = min(*bc.LastSeen, maxLastSeen)
	}
	return w - int(seen)
}

// LearnedAfter reports whether the bird would be learned once a verdict is
// recorded for it.
func (bc BirdContext) LearnedAfter(correct bool) bool {
	return correct && bc.ConsecutivelyIdentified+1 >= progress.LearnThreshold
}

func (bc *BirdContext) setLastSeen(v uint32) {
	bc.LastSeen = &v
}

// Game is the state of one play session.
type Game struct {
	choices        []BirdContext
	pack           []BirdContext
	alreadyLearned bool
	rng            Shuffler
}

// New starts a game over birds. When shuffle is set the birds are permuted
// before the first choice set is taken. A nil rng uses the global source.
func New(birds []models.Bird, rng Shuffler, shuffle bool) (*Game, error) {
	if len(birds) < ChoiceSize {
		return nil, ErrNotEnoughBirds
	}
	seen := make(map[uint64]struct{}, len(birds))
	all := make([]BirdContext, 0, len(birds))
	for _, b := range birds {
		if _, dup := seen[b.ID]; dup {
			return nil, fmt.Errorf("%w: id %d", ErrDuplicateBird, b.ID)
		}
		seen[b.ID] = struct{}{}
		all = append(all, newBirdContext(b))
	}
	if rng == nil {
		rng = globalRand{}
	}
	if shuffle {
		rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	}
	return &Game{
		choices: all[:ChoiceSize:ChoiceSize],
		pack:    slices.Clone(all[ChoiceSize:]),
		rng:     rng,
	}, nil
}

// Choices returns a copy of the current choice set. Index 0 is the answer.
func (g *Game) Choices() []BirdContext {
	return slices.Clone(g.choices)
}

// Backlog returns a copy of the birds waiting outside the choice set, in
// scheduling order.
func (g *Game) Backlog() []BirdContext {
	return slices.Clone(g.pack)
}

// Birds returns the birds of the current choice set.
func (g *Game) Birds() []models.Bird {
	birds := make([]models.Bird, len(g.choices))
	for i, bc := range g.choices {
		birds[i] = bc.Bird
	}
	return birds
}

func (g *Game) CorrectChoice() BirdContext {
	return g.choices[0]
}

func (g *Game) CorrectBird() models.Bird {
	return g.choices[0].Bird
}

// RecordChoice records the player's verdict on the current round. It only
// touches the correct choice and does not advance the round.
func (g *Game) RecordChoice(correct bool) {
	g.mustBeInProgress("RecordChoice")
	c := &g.choices[0]
	if correct {
		c.Identified++
		c.ConsecutivelyIdentified++
	} else {
		c.Mistaken++
		c.ConsecutivelyIdentified = 0
	}
}

// AdvanceRound moves to the next round. The front of the backlog becomes the
// choice set and the old choices return to the backlog, which is aged and
// re-sorted by weight with ties broken randomly.
//
// When the backlog holds fewer than ChoiceSize birds, all of it is offered and
// the choice set is topped up from the old choices. The answer slot goes to an
// unlearned bird whenever the choice set has one, and never to the previous
// answer while another unlearned bird exists.
func (g *Game) AdvanceRound() {
	g.mustBeInProgress("AdvanceRound")
	prev := g.choices[0].Bird.ID

	old := make([]BirdContext, 0, len(g.choices))
	for _, bc := range g.choices {
		bc.setLastSeen(1)
		old = append(old, bc)
	}

	var next, backlog []BirdContext
	if len(g.pack) >= ChoiceSize {
		next = slices.Clone(g.pack[:ChoiceSize])
		backlog = append(old, aged(g.pack[ChoiceSize:])...)
		g.sortBacklog(backlog)
		answerFirst(next, prev)
	} else {
		waiting := aged(g.pack)
		g.sortBacklog(waiting)
		g.sortBacklog(old)
		all := append(waiting, old...)
		answerFirst(all, prev)
		next = slices.Clone(all[:ChoiceSize])
		backlog = slices.Clone(all[ChoiceSize:])
	}
	for i := range next {
		next[i].setLastSeen(0)
	}

	g.choices = next
	g.pack = backlog
}

func aged(bcs []BirdContext) []BirdContext {
	out := slices.Clone(bcs)
	for i := range out {
		if out[i].LastSeen != nil {
			out[i].setLastSeen(*out[i].LastSeen + 1)
		}
	}
	return out
}

// answerFirst moves the first unlearned bird other than prev to index 0,
// falling back to prev itself. The order of the other birds is kept.
func answerFirst(bcs []BirdContext, prev uint64) {
	pick := -1
	for i, bc := range bcs {
		if bc.Learned() {
			continue
		}
		if bc.Bird.ID != prev {
			pick = i
			break
		}
		if pick < 0 {
			pick = i
		}
	}
	if pick <= 0 {
		return
	}
	chosen := bcs[pick]
	copy(bcs[1:pick+1], bcs[:pick])
	bcs[0] = chosen
}

func (g *Game) sortBacklog(backlog []BirdContext) {
	g.rng.Shuffle(len(backlog), func(i, j int) { backlog[i], backlog[j] = backlog[j], backlog[i] })
	slices.SortStableFunc(backlog, func(a, b BirdContext) int {
		return a.weight() - b.weight()
	})
}

// Progress returns the number of learned birds and the total.
func (g *Game) Progress() (learned, total int) {
	for _, bc := range g.all() {
		if bc.Learned() {
			learned++
		}
	}
	return learned, len(g.choices) + len(g.pack)
}

// PercentComplete is the share of learned birds, rounded down.
func (g *Game) PercentComplete() int {
	learned, total := g.Progress()
	return learned * 100 / total
}

func (g *Game) IsComplete() bool {
	learned, total := g.Progress()
	return learned == total
}

// AlreadyLearned reports whether the player had completed this pack in an
// earlier session.
func (g *Game) AlreadyLearned() bool {
	return g.alreadyLearned
}

func (g *Game) SetAlreadyLearned(v bool) {
	g.alreadyLearned = v
}

func (g *Game) all() []BirdContext {
	return append(slices.Clone(g.choices), g.pack...)
}

func (g *Game) mustBeInProgress(op string) {
	if g.IsComplete() {
		panic("quiz: " + op + " called on a complete game")
	}
}
