package progress

import (
	"encoding/json"
	"maps"
	"slices"

	"cloud.google.com/go/civil"
)

// Snapshot is the stored form of Stats.
type Snapshot struct {
	BirdStats           map[uint64]BirdStats `json:"bird_stats" jsonschema:"description=Lifetime counters keyed by bird id"`
	PackStats           map[uint64]PackStats `json:"pack_stats" jsonschema:"description=Completions keyed by catalog pack id"`
	DailyPacksCompleted []civil.Date         `json:"daily_packs_completed" jsonschema:"description=Days a pack of the day was completed (YYYY-MM-DD)"`
	CurrentStreak       uint32               `json:"current_streak"`
	RecordStreak        uint32               `json:"record_streak"`
}

func (s *Stats) Snapshot() Snapshot {
	c := s.Clone()
	return Snapshot{
		BirdStats:           c.birdStats,
		PackStats:           c.packStats,
		DailyPacksCompleted: c.dailyPacksCompleted,
		CurrentStreak:       c.currentStreak,
		RecordStreak:        c.recordStreak,
	}
}

// FromSnapshot rebuilds Stats, sorting and deduplicating daily completions
// that may have been written by hand.
func FromSnapshot(snap Snapshot) *Stats {
	days := slices.Clone(snap.DailyPacksCompleted)
	slices.SortFunc(days, compareDates)
	days = slices.Compact(days)

	s := &Stats{
		birdStats:           maps.Clone(snap.BirdStats),
		packStats:           maps.Clone(snap.PackStats),
		dailyPacksCompleted: days,
		currentStreak:       snap.CurrentStreak,
		recordStreak:        max(snap.RecordStreak, snap.CurrentStreak),
	}
	s.init()
	return s
}

func (s *Stats) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

func (s *Stats) UnmarshalJSON(data []byte) error {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	*s = *FromSnapshot(snap)
	return nil
}

func compareDates(a, b civil.Date) int {
	switch {
	case a.Before(b):
		return -1
	case b.Before(a):
		return 1
	}
	return 0
}
