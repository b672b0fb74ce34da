// Package timing picks the next contact instant for a prospect. Weekends are
// skipped, Tuesday through Thursday is preferred, and the hour band depends
// on the prospect's role.
package timing

import (
	"math/rand"
	"strings"
	"time"

	"github.com/outboundhq/dialer/internal/types"
)

// horizon is how far the planner searches for a Tue-Thu slot before
// settling for Monday or Friday.
const horizon = 7 * 24 * time.Hour

// NextContactTime computes the next optimal contact instant for a prospect.
// The rng is seeded from now, so calls with an identical now produce an
// identical plan. The result is always strictly after now.
func NextContactTime(timezone, role string, hours types.CallHours, now time.Time) time.Time {
	loc, err := time.LoadLocation(timezone)
	if err != nil || timezone == "" {
		loc = time.UTC
	}

	rng := rand.New(rand.NewSource(now.UnixNano()))
	local := now.In(loc)
	day := local

	for {
		day = nextCallableDay(day, local)

		hour := optimalHour(role, rng)
		if hour < hours.Start {
			hour = hours.Start
		}
		if hour > hours.End {
			hour = hours.End
		}

		candidate := time.Date(day.Year(), day.Month(), day.Day(), hour, rng.Intn(60), 0, 0, loc)
		if candidate.After(now) {
			return candidate
		}

		// Chosen slot already passed today, move to the next callable day
		day = day.AddDate(0, 0, 1)
	}
}

// nextCallableDay advances from start to the next day worth calling on.
// Mondays and Fridays are accepted only once the search has covered a week.
func nextCallableDay(day, start time.Time) time.Time {
	for {
		switch day.Weekday() {
		case time.Saturday, time.Sunday:
			day = day.AddDate(0, 0, 1)
			continue
		case time.Tuesday, time.Wednesday, time.Thursday:
			return day
		}

		if day.Sub(start) > horizon {
			return day
		}
		day = day.AddDate(0, 0, 1)
	}
}

// optimalHour picks the hour band for a role: executives early morning or
// late afternoon, managers mid-morning, everyone else mid-afternoon.
func optimalHour(role string, rng *rand.Rand) int {
	lower := strings.ToLower(role)

	switch {
	case strings.Contains(lower, "executive") || strings.Contains(lower, "c-level"):
		if rng.Float64() > 0.5 {
			return 8
		}
		return 16
	case strings.Contains(lower, "manager"):
		return 10
	default:
		return 14
	}
}
