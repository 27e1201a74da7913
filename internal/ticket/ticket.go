// Package ticket derives the validity of an access ticket from its stored
// creation time and duration. Nothing here holds a timer: callers that want a
// countdown call Evaluate again with a newer now.
package ticket

import (
	"math"
	"time"
)

type Ticket struct {
	Code            string
	CreatedAt       time.Time
	DurationMinutes int
}

func (t Ticket) ExpiresAt() time.Time {
	return t.CreatedAt.Add(time.Duration(t.DurationMinutes) * time.Minute)
}

type Validity struct {
	ExpiresAt        time.Time
	RemainingSeconds int64
	Active           bool
	PercentRemaining float64
}

// Evaluate is a pure function of (t, now). Once now reaches ExpiresAt the
// ticket stays inactive for every later now.
func Evaluate(t Ticket, now time.Time) Validity {
	expiresAt := t.ExpiresAt()
	remaining := int64(math.Floor(expiresAt.Sub(now).Seconds()))
	remaining = max(remaining, 0)

	v := Validity{
		ExpiresAt:        expiresAt,
		RemainingSeconds: remaining,
		Active:           remaining > 0,
	}
	if total := int64(t.DurationMinutes) * 60; total > 0 {
		v.PercentRemaining = min(max(float64(remaining)/float64(total)*100, 0), 100)
	}
	return v
}
