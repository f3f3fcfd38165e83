package pack_test

import (
	"bytes"
	"context"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vytor/birdtalk/internal/clock"
	"github.com/vytor/birdtalk/internal/logger"
	"github.com/vytor/birdtalk/internal/pack"
)

var today = civil.Date{Year: 2024, Month: 6, Day: 1}

func captureLogs(t *testing.T) (context.Context, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithLevel(logger.DEBUG), logger.WithColors(false))
	return logger.NewContext(context.Background(), log), &buf
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  pack.Identifier
	}{
		{"catalog id", "42", pack.ByID(42)},
		{"leading zeros", "007", pack.ByID(7)},
		{"date", "2024-03-05", pack.ByDate(civil.Date{Year: 2024, Month: 3, Day: 5})},
		{"empty", "", pack.ByDate(today)},
		{"garbage", "not-a-pack", pack.ByDate(today)},
		{"negative id", "-3", pack.ByDate(today)},
		{"bad date", "2024-13-40", pack.ByDate(today)},
		{"seven distinct birds", "3.1.4.1.5.9.2.6.5.3", pack.ByDate(today)},
		{"nine distinct birds", "1.2.3.4.5.6.7.8.9", pack.ByDate(today)},
		{"nine distinct with repeats", "1.2.3.4.5.6.7.8.9.9.9", pack.ByDate(today)},
		{"empty segment", "1.2.3.4.5.6.7.8.9..10", pack.ByDate(today)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pack.Resolve(context.Background(), tt.token, today)
			assert.True(t, tt.want.Equal(got), "want %s (%s), got %s (%s)", tt.want, tt.want.Kind(), got, got.Kind())
		})
	}
}

func TestResolve_AdHocBirdsAreDedupedAndSorted(t *testing.T) {
	got := pack.Resolve(context.Background(), "10.3.1.4.1.5.9.2.6.5.3.8.7", today)

	require.Equal(t, pack.KindBirds, got.Kind())
	ids, ok := got.Birds()
	require.True(t, ok)
	assert.Equal(t, []uint64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, ids)
	assert.Equal(t, "1.2.3.4.5.6.7.8.9.10", got.String())
}

func TestResolve_Diagnostics(t *testing.T) {
	ctx, buf := captureLogs(t)
	pack.Resolve(ctx, "", today)
	assert.Empty(t, buf.String())

	pack.Resolve(ctx, "42", today)
	assert.Empty(t, buf.String())

	pack.Resolve(ctx, "nope", today)
	assert.Contains(t, buf.String(), "failed to parse pack identifier")
	assert.Contains(t, buf.String(), "defaulting to pack of the day")
}

func TestIdentifier_StringRoundTrips(t *testing.T) {
	birds, err := pack.ByBirds([]uint64{12, 11, 10, 9, 8, 7, 6, 5, 4, 3})
	require.NoError(t, err)

	for _, id := range []pack.Identifier{
		pack.ByID(0),
		pack.ByID(18446744073709551615),
		pack.ByDate(civil.Date{Year: 1999, Month: 12, Day: 31}),
		birds,
	} {
		got := pack.Resolve(context.Background(), id.String(), today)
		assert.True(t, id.Equal(got), "round trip of %s gave %s", id, got)
	}
}

func TestByBirds(t *testing.T) {
	_, err := pack.ByBirds([]uint64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1})
	assert.ErrorIs(t, err, pack.ErrTooFewBirds)

	input := []uint64{9, 8, 7, 6, 5, 4, 3, 2, 1, 0}
	id, err := pack.ByBirds(input)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), input[0], "input must not be reordered")

	ids, _ := id.Birds()
	ids[0] = 100
	again, _ := id.Birds()
	assert.Equal(t, uint64(0), again[0])
}

func TestIdentifier_Accessors(t *testing.T) {
	id := pack.ByID(5)
	v, ok := id.ID()
	assert.True(t, ok)
	assert.Equal(t, uint64(5), v)
	_, ok = id.Date()
	assert.False(t, ok)
	_, ok = id.Birds()
	assert.False(t, ok)

	assert.False(t, pack.ByID(5).Equal(pack.ByDate(today)))
	assert.True(t, pack.Today(clock.Fixed(today)).Equal(pack.ByDate(today)))
}

func TestIdentifier_MarshalText(t *testing.T) {
	b, err := pack.ByDate(civil.Date{Year: 2024, Month: 3, Day: 5}).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", string(b))
}
