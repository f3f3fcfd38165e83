// Package clock supplies "today" as a calendar date.
//
// Sessions can cross midnight, so callers ask the Clock every time they need the
// date instead of holding on to a value.
package clock

import (
	"time"

	"cloud.google.com/go/civil"
)

// Clock reports the current calendar date in the user's timezone.
type Clock interface {
	Today() civil.Date
}

// Local reads the wall clock in Location, or time.Local when nil.
type Local struct {
	Location *time.Location
}

func (c Local) Today() civil.Date {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return civil.DateOf(time.Now().In(loc))
}

// Fixed always reports the same day.
type Fixed civil.Date

func (f Fixed) Today() civil.Date {
	return civil.Date(f)
}

// Func adapts a function to the Clock interface.
type Func func() civil.Date

func (f Func) Today() civil.Date {
	return f()
}

// Yesterday returns the day before d.
func Yesterday(d civil.Date) civil.Date {
	return d.AddDays(-1)
}

// IsTodayOrYesterday reports whether d is today or the day before.
func IsTodayOrYesterday(d, today civil.Date) bool {
	return d == today || d == Yesterday(today)
}
