package timeutil

import (
	"math"
	"time"
)

// Clock abstracts time.Now so scoring and lifecycle timestamps are
// deterministic under test.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// FixedClock always reports T.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// DaysUntil returns ceil((t - now) / 24h). Zero or negative means overdue.
func DaysUntil(t, now time.Time) int {
	return int(math.Ceil(t.Sub(now).Hours() / 24))
}

// DaysSince returns floor((now - t) / 24h), never negative.
func DaysSince(t, now time.Time) int {
	d := int(math.Floor(now.Sub(t).Hours() / 24))
	if d < 0 {
		return 0
	}
	return d
}
