package progress

import "cloud.google.com/go/civil"

// Summary is a read-only view of Stats as of a given day.
type Summary struct {
	XP                uint32 `json:"xp"`
	Level             uint32 `json:"level"`
	BirdsLearned      uint32 `json:"birds_learned"`
	CurrentStreak     uint32 `json:"current_streak"`
	RecordStreak      uint32 `json:"record_streak"`
	DailyStreak       uint32 `json:"daily_streak"`
	LatestDailyStreak uint32 `json:"latest_daily_streak"`
	// DailyPackDone reports whether today's pack of the day was completed.
	DailyPackDone bool `json:"daily_pack_done"`
}

func (s *Stats) Summary(today civil.Date) Summary {
	n := len(s.dailyPacksCompleted)
	return Summary{
		XP:                s.XP(),
		Level:             s.Level(),
		BirdsLearned:      s.BirdsLearned(),
		CurrentStreak:     s.currentStreak,
		RecordStreak:      s.recordStreak,
		DailyStreak:       s.ActiveDailyStreak(today),
		LatestDailyStreak: s.LatestDailyStreak(),
		DailyPackDone:     n > 0 && s.dailyPacksCompleted[n-1] == today,
	}
}

// Gains is what a session added on top of an earlier copy of Stats.
type Gains struct {
	XP           uint32   `json:"xp"`
	NewlyLearned []uint64 `json:"newly_learned"`
	LevelUp      bool     `json:"level_up"`
}

// GainsSince compares s with before, usually a Clone taken when a session
// started.
func (s *Stats) GainsSince(before *Stats) Gains {
	g := Gains{LevelUp: s.Level() > before.Level()}
	if xp, prev := s.XP(), before.XP(); xp > prev {
		g.XP = xp - prev
	}
	for _, id := range s.LearnedBirds() {
		if !before.IsLearned(id) {
			g.NewlyLearned = append(g.NewlyLearned, id)
		}
	}
	return g
}
