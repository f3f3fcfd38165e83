// Package progress keeps a player's permanent learning progress: per bird
// counters, per pack completions, the correct answer streak and the daily
// pack streak.
//
// Stats has no I/O and no clock of its own. Methods that depend on the date
// take today as an argument. Stats is not safe for concurrent use.
package progress

import (
	"maps"
	"slices"

	"cloud.google.com/go/civil"

	"github.com/vytor/birdtalk/internal/clock"
)

const (
	// LearnThreshold is how many times in a row a bird must be identified
	// within a session to count as learned.
	LearnThreshold = 3
	// BirdsPerLevel is the number of learned birds per level.
	BirdsPerLevel = 15

	learnedXP = 10
)

// BirdStats are the lifetime counters for one bird. Learned never goes back
// to false.
type BirdStats struct {
	Identified uint32 `json:"identified"`
	Mistaken   uint32 `json:"mistaken"`
	Learned    bool   `json:"learned"`
}

type PackStats struct {
	TimesCompleted int `json:"times_completed"`
}

type Stats struct {
	birdStats map[uint64]BirdStats
	packStats map[uint64]PackStats
	// dailyPacksCompleted is strictly increasing.
	dailyPacksCompleted []civil.Date
	currentStreak       uint32
	recordStreak        uint32
}

func New() *Stats {
	return &Stats{
		birdStats: make(map[uint64]BirdStats),
		packStats: make(map[uint64]PackStats),
	}
}

// RecordCorrect counts a correct answer for birdID. learned marks the bird
// as learned if this answer completed it.
func (s *Stats) RecordCorrect(birdID uint64, learned bool) {
	s.init()
	s.currentStreak++
	if s.currentStreak > s.recordStreak {
		s.recordStreak = s.currentStreak
	}
	bs := s.birdStats[birdID]
	bs.Identified++
	bs.Learned = bs.Learned || learned
	s.birdStats[birdID] = bs
}

// RecordIncorrect counts a mistake for birdID and breaks the answer streak.
func (s *Stats) RecordIncorrect(birdID uint64) {
	s.init()
	s.currentStreak = 0
	bs := s.birdStats[birdID]
	bs.Mistaken++
	s.birdStats[birdID] = bs
}

// RecordPackCompleted counts a completed pack. birdPackID is nil for ad-hoc
// packs; day is set for packs of the day.
//
// A daily completion is only kept when day is today or yesterday, so a session
// started before midnight still counts, and only once per day.
func (s *Stats) RecordPackCompleted(birdPackID *uint64, day *civil.Date, today civil.Date) {
	s.init()
	if birdPackID != nil {
		ps := s.packStats[*birdPackID]
		ps.TimesCompleted++
		s.packStats[*birdPackID] = ps
	}
	if day == nil || !clock.IsTodayOrYesterday(*day, today) {
		return
	}
	if n := len(s.dailyPacksCompleted); n > 0 && !s.dailyPacksCompleted[n-1].Before(*day) {
		return
	}
	s.dailyPacksCompleted = append(s.dailyPacksCompleted, *day)
}

// ActiveDailyStreak is the run of consecutive days ending at the latest daily
// completion, or zero if that completion is older than yesterday.
func (s *Stats) ActiveDailyStreak(today civil.Date) uint32 {
	n := len(s.dailyPacksCompleted)
	if n == 0 || !clock.IsTodayOrYesterday(s.dailyPacksCompleted[n-1], today) {
		return 0
	}
	return s.trailingRun()
}

// LatestDailyStreak is the most recent daily streak, even if it has lapsed.
func (s *Stats) LatestDailyStreak() uint32 {
	return s.trailingRun()
}

func (s *Stats) trailingRun() uint32 {
	days := s.dailyPacksCompleted
	if len(days) == 0 {
		return 0
	}
	var count uint32
	want := days[len(days)-1]
	for i := len(days) - 1; i >= 0 && days[i] == want; i-- {
		count++
		want = clock.Yesterday(want)
	}
	return count
}

// XP is 10 per learned bird plus one per correct answer.
func (s *Stats) XP() uint32 {
	var xp uint32
	for _, bs := range s.birdStats {
		if bs.Learned {
			xp += learnedXP
		}
		xp += bs.Identified
	}
	return xp
}

func (s *Stats) BirdsLearned() uint32 {
	var n uint32
	for _, bs := range s.birdStats {
		if bs.Learned {
			n++
		}
	}
	return n
}

func (s *Stats) Level() uint32 {
	return 1 + s.BirdsLearned()/BirdsPerLevel
}

func (s *Stats) CurrentStreak() uint32 { return s.currentStreak }
func (s *Stats) RecordStreak() uint32  { return s.recordStreak }

func (s *Stats) BirdStats(birdID uint64) (BirdStats, bool) {
	bs, ok := s.birdStats[birdID]
	return bs, ok
}

func (s *Stats) IsLearned(birdID uint64) bool {
	return s.birdStats[birdID].Learned
}

func (s *Stats) TimesCompleted(birdPackID uint64) int {
	return s.packStats[birdPackID].TimesCompleted
}

// DailyPacksCompleted returns a copy of the days a pack of the day was
// completed, oldest first.
func (s *Stats) DailyPacksCompleted() []civil.Date {
	return slices.Clone(s.dailyPacksCompleted)
}

// LearnedBirds returns the ids of learned birds in ascending order.
func (s *Stats) LearnedBirds() []uint64 {
	var ids []uint64
	for id, bs := range s.birdStats {
		if bs.Learned {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

func (s *Stats) Clone() *Stats {
	return &Stats{
		birdStats:           maps.Clone(s.birdStats),
		packStats:           maps.Clone(s.packStats),
		dailyPacksCompleted: slices.Clone(s.dailyPacksCompleted),
		currentStreak:       s.currentStreak,
		recordStreak:        s.recordStreak,
	}
}

// init lets the zero Stats be used directly.
func (s *Stats) init() {
	if s.birdStats == nil {
		s.birdStats = make(map[uint64]BirdStats)
	}
	if s.packStats == nil {
		s.packStats = make(map[uint64]PackStats)
	}
}
