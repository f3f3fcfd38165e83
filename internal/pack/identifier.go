// Package pack turns user supplied tokens into pack selections.
//
// A token is one of a catalog pack id ("42"), a pack-of-the-day date
// ("2024-03-05") or an ad-hoc list of bird ids joined by '.'. Anything else
// falls back to the pack of the day.
package pack

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/vytor/birdtalk/internal/clock"
	"github.com/vytor/birdtalk/internal/logger"
)

// Delimiter separates bird ids in an ad-hoc pack token.
const Delimiter = "."

// MinAdHocBirds is the number of distinct bird ids an ad-hoc pack needs.
const MinAdHocBirds = 10

var ErrTooFewBirds = errors.New("ad-hoc pack needs at least 10 distinct birds")

// Kind tells which form an Identifier takes.
type Kind int

const (
	KindDate Kind = iota
	KindID
	KindBirds
)

func (k Kind) String() string {
	switch k {
	case KindID:
		return "id"
	case KindDate:
		return "date"
	case KindBirds:
		return "birds"
	default:
		return "unknown"
	}
}

// Identifier selects the birds for a play session. The zero value is
// ByDate of the zero date and is not useful; build one with ByID, ByDate,
// ByBirds or Resolve.
type Identifier struct {
	kind  Kind
	id    uint64
	date  civil.Date
	birds []uint64
}

func ByID(id uint64) Identifier {
	return Identifier{kind: KindID, id: id}
}

func ByDate(d civil.Date) Identifier {
	return Identifier{kind: KindDate, date: d}
}

// ByBirds builds an ad-hoc identifier. The ids are deduplicated and stored in
// ascending order.
func ByBirds(ids []uint64) (Identifier, error) {
	distinct := slices.Clone(ids)
	slices.Sort(distinct)
	distinct = slices.Compact(distinct)
	if len(distinct) < MinAdHocBirds {
		return Identifier{}, ErrTooFewBirds
	}
	return Identifier{kind: KindBirds, birds: distinct}, nil
}

// Today is the default identifier: the pack of the day for c.
func Today(c clock.Clock) Identifier {
	return ByDate(c.Today())
}

func (i Identifier) Kind() Kind {
	return i.kind
}

func (i Identifier) ID() (uint64, bool) {
	return i.id, i.kind == KindID
}

func (i Identifier) Date() (civil.Date, bool) {
	return i.date, i.kind == KindDate
}

// Birds returns a copy of the ad-hoc bird ids.
func (i Identifier) Birds() ([]uint64, bool) {
	if i.kind != KindBirds {
		return nil, false
	}
	return slices.Clone(i.birds), true
}

func (i Identifier) Equal(other Identifier) bool {
	if i.kind != other.kind {
		return false
	}
	switch i.kind {
	case KindID:
		return i.id == other.id
	case KindDate:
		return i.date == other.date
	default:
		return slices.Equal(i.birds, other.birds)
	}
}

// String renders the identifier in the same form Resolve accepts.
func (i Identifier) String() string {
	switch i.kind {
	case KindID:
		return strconv.FormatUint(i.id, 10)
	case KindBirds:
		parts := make([]string, len(i.birds))
		for n, id := range i.birds {
			parts[n] = strconv.FormatUint(id, 10)
		}
		return strings.Join(parts, Delimiter)
	default:
		return i.date.String()
	}
}

func (i Identifier) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// Resolve parses token into an Identifier. It never fails: an empty token means
// the pack of the day, and an unparseable one is logged and treated the same.
func Resolve(ctx context.Context, token string, today civil.Date) Identifier {
	if id, ok := Parse(token); ok {
		return id
	}
	if token != "" {
		log := logger.FromContext(ctx).WithPrefix("pack")
		log.Error("failed to parse pack identifier from token: %q", token)
		log.Info("defaulting to pack of the day")
	}
	return ByDate(today)
}

// Parse is Resolve without the fallback.
func Parse(token string) (Identifier, bool) {
	if token == "" {
		return Identifier{}, false
	}
	if id, err := strconv.ParseUint(token, 10, 64); err == nil {
		return ByID(id), true
	}
	if d, err := civil.ParseDate(token); err == nil {
		return ByDate(d), true
	}
	parts := strings.Split(token, Delimiter)
	ids := make([]uint64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return Identifier{}, false
		}
		ids = append(ids, id)
	}
	ident, err := ByBirds(ids)
	if err != nil {
		return Identifier{}, false
	}
	return ident, true
}
