package progress_test

import (
	"encoding/json"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vytor/birdtalk/internal/progress"
)

var today = civil.Date{Year: 2024, Month: 3, Day: 10}

func day(offset int) *civil.Date {
	d := today.AddDays(offset)
	return &d
}

func ptr[T any](v T) *T { return &v }

func TestRecordCorrectAndIncorrect(t *testing.T) {
	s := progress.New()

	s.RecordCorrect(1, false)
	s.RecordCorrect(1, false)
	s.RecordCorrect(2, true)
	assert.Equal(t, uint32(3), s.CurrentStreak())
	assert.Equal(t, uint32(3), s.RecordStreak())

	s.RecordIncorrect(1)
	assert.Zero(t, s.CurrentStreak())
	assert.Equal(t, uint32(3), s.RecordStreak())

	s.RecordCorrect(3, false)
	assert.Equal(t, uint32(1), s.CurrentStreak())
	assert.Equal(t, uint32(3), s.RecordStreak())

	bs, ok := s.BirdStats(1)
	require.True(t, ok)
	assert.Equal(t, progress.BirdStats{Identified: 2, Mistaken: 1}, bs)

	s.RecordIncorrect(4)
	bs, ok = s.BirdStats(4)
	require.True(t, ok)
	assert.Equal(t, progress.BirdStats{Mistaken: 1}, bs)

	_, ok = s.BirdStats(99)
	assert.False(t, ok)
}

func TestLearnedIsSticky(t *testing.T) {
	s := progress.New()
	s.RecordCorrect(1, true)
	s.RecordIncorrect(1)
	s.RecordCorrect(1, false)

	assert.True(t, s.IsLearned(1))
	assert.Equal(t, uint32(1), s.BirdsLearned())
}

func TestXP(t *testing.T) {
	s := progress.New()
	for range 4 {
		s.RecordCorrect(1, false)
	}
	s.RecordCorrect(1, true)
	s.RecordCorrect(2, false)
	s.RecordCorrect(2, false)
	s.RecordIncorrect(2)

	assert.Equal(t, uint32(10+5+2), s.XP())
}

func TestLevel(t *testing.T) {
	s := progress.New()
	assert.Equal(t, uint32(1), s.Level())

	for id := range uint64(progress.BirdsPerLevel - 1) {
		s.RecordCorrect(id, true)
	}
	assert.Equal(t, uint32(1), s.Level())

	s.RecordCorrect(100, true)
	assert.Equal(t, uint32(2), s.Level())
}

func TestZeroValueStatsIsUsable(t *testing.T) {
	var s progress.Stats
	s.RecordCorrect(1, true)
	s.RecordPackCompleted(ptr(uint64(2)), nil, today)
	assert.Equal(t, uint32(11), s.XP())
	assert.Equal(t, 1, s.TimesCompleted(2))
}

func TestRecordPackCompleted_PackStats(t *testing.T) {
	s := progress.New()
	s.RecordPackCompleted(ptr(uint64(7)), nil, today)
	s.RecordPackCompleted(ptr(uint64(7)), nil, today)
	s.RecordPackCompleted(nil, nil, today)

	assert.Equal(t, 2, s.TimesCompleted(7))
	assert.Zero(t, s.TimesCompleted(8))
	assert.Empty(t, s.DailyPacksCompleted())
}

func TestRecordPackCompleted_DailyAppendRule(t *testing.T) {
	s := progress.New()

	s.RecordPackCompleted(nil, day(-2), today)
	assert.Empty(t, s.DailyPacksCompleted(), "older than yesterday is ignored")

	s.RecordPackCompleted(nil, day(1), today)
	assert.Empty(t, s.DailyPacksCompleted(), "future days are ignored")

	s.RecordPackCompleted(nil, day(-1), today)
	s.RecordPackCompleted(nil, day(0), today)
	s.RecordPackCompleted(nil, day(0), today)
	assert.Equal(t, []civil.Date{*day(-1), *day(0)}, s.DailyPacksCompleted())

	s.RecordPackCompleted(nil, day(-1), today)
	assert.Len(t, s.DailyPacksCompleted(), 2, "never goes back in time")
}

func TestDailyStreaks(t *testing.T) {
	s := progress.FromSnapshot(progress.Snapshot{
		DailyPacksCompleted: []civil.Date{*day(-3), *day(-2)},
	})

	assert.Zero(t, s.ActiveDailyStreak(today))
	assert.Equal(t, uint32(2), s.LatestDailyStreak())

	s.RecordPackCompleted(ptr(uint64(1)), day(0), today)
	assert.Equal(t, uint32(1), s.ActiveDailyStreak(today))
	assert.Equal(t, uint32(1), s.LatestDailyStreak())
}

func TestDailyStreaks_YesterdayKeepsStreakAlive(t *testing.T) {
	s := progress.FromSnapshot(progress.Snapshot{
		DailyPacksCompleted: []civil.Date{*day(-10), *day(-3), *day(-2), *day(-1)},
	})

	assert.Equal(t, uint32(3), s.ActiveDailyStreak(today))
	assert.Zero(t, s.ActiveDailyStreak(today.AddDays(1)))
	assert.Equal(t, uint32(3), s.LatestDailyStreak())

	s.RecordPackCompleted(nil, day(0), today)
	assert.Equal(t, uint32(4), s.ActiveDailyStreak(today))
}

func TestDailyStreaks_Empty(t *testing.T) {
	s := progress.New()
	assert.Zero(t, s.ActiveDailyStreak(today))
	assert.Zero(t, s.LatestDailyStreak())
}

func TestClone(t *testing.T) {
	s := progress.New()
	s.RecordCorrect(1, false)
	s.RecordPackCompleted(ptr(uint64(3)), day(0), today)

	c := s.Clone()
	c.RecordCorrect(1, true)
	c.RecordPackCompleted(ptr(uint64(3)), day(0), today.AddDays(1))

	assert.False(t, s.IsLearned(1))
	assert.Equal(t, 1, s.TimesCompleted(3))
	assert.Equal(t, 2, c.TimesCompleted(3))
	assert.Len(t, s.DailyPacksCompleted(), 1)
}

func TestJSONRoundTrip(t *testing.T) {
	s := progress.New()
	s.RecordCorrect(1, true)
	s.RecordIncorrect(2)
	s.RecordPackCompleted(ptr(uint64(5)), day(0), today)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"daily_packs_completed":["2024-03-10"]`)

	var back progress.Stats
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, s.Snapshot(), back.Snapshot())
}

func TestFromSnapshot_RestoresDailyOrder(t *testing.T) {
	s := progress.FromSnapshot(progress.Snapshot{
		DailyPacksCompleted: []civil.Date{*day(0), *day(-1), *day(0)},
		CurrentStreak:       4,
		RecordStreak:        2,
	})
	assert.Equal(t, []civil.Date{*day(-1), *day(0)}, s.DailyPacksCompleted())
	assert.Equal(t, uint32(4), s.RecordStreak())
}

func TestUnmarshalJSON_Invalid(t *testing.T) {
	var s progress.Stats
	assert.Error(t, json.Unmarshal([]byte(`{"daily_packs_completed":["not a date"]}`), &s))
}

func TestSummaryAndGains(t *testing.T) {
	s := progress.New()
	s.RecordCorrect(1, true)
	before := s.Clone()

	s.RecordCorrect(2, false)
	s.RecordCorrect(2, true)
	s.RecordPackCompleted(ptr(uint64(9)), day(0), today)

	sum := s.Summary(today)
	assert.Equal(t, progress.Summary{
		XP:                23,
		Level:             1,
		BirdsLearned:      2,
		CurrentStreak:     3,
		RecordStreak:      3,
		DailyStreak:       1,
		LatestDailyStreak: 1,
		DailyPackDone:     true,
	}, sum)
	assert.False(t, s.Summary(today.AddDays(1)).DailyPackDone)

	gains := s.GainsSince(before)
	assert.Equal(t, uint32(12), gains.XP)
	assert.Equal(t, []uint64{2}, gains.NewlyLearned)
	assert.False(t, gains.LevelUp)
}
