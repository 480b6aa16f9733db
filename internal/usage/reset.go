// AngelaMos | 2026
// reset.go

package usage

import (
	"time"
)

type ResetKind string

const (
	ResetNone    ResetKind = "none"
	ResetDaily   ResetKind = "daily"
	ResetMonthly ResetKind = "monthly"
)

func (k ResetKind) String() string {
	return string(k)
}

// DueReset decides which reset, if any, now triggers for u. Boundaries are
// calendar dates in loc. A monthly reset subsumes the daily one, and a clock
// that moved backwards never triggers anything.
func DueReset(u *Usage, now time.Time, loc *time.Location) ResetKind {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)

	if laterMonth(now, u.LastMonthlyReset.In(loc)) {
		return ResetMonthly
	}
	if laterDay(now, u.LastDailyReset.In(loc)) {
		return ResetDaily
	}
	return ResetNone
}

func laterMonth(now, last time.Time) bool {
	ny, nm, _ := now.Date()
	ly, lm, _ := last.Date()
	return ny*12+int(nm) > ly*12+int(lm)
}

func laterDay(now, last time.Time) bool {
	ny, nm, nd := now.Date()
	ly, lm, ld := last.Date()
	if ny != ly {
		return ny > ly
	}
	if nm != lm {
		return nm > lm
	}
	return nd > ld
}

// countersFor lists the counters a reset kind zeroes.
func countersFor(kind ResetKind) []Counter {
	switch kind {
	case ResetDaily:
		return dailyCounters
	case ResetMonthly:
		return allCounters
	}
	return nil
}
