package domain

import (
	"math"
	"time"

	profile "bactrack/internal/modules/profile/domain"
)

// Estimate is every quantity derived from an event list at one instant.
type Estimate struct {
	BAC     float64
	Status  Status
	SoberIn time.Duration
	LegalIn time.Duration
	Series  []Sample
}

// Estimate evaluates the events at asOf and builds the curve from start to
// asOf. Its final sample always carries BAC.
func (c Calculator) Estimate(p profile.Profile, drinks []DrinkEvent, foods []FoodEvent, start, asOf time.Time) (Estimate, error) {
	tl, err := c.Timeline(p, drinks, foods)
	if err != nil {
		return Estimate{}, err
	}
	series, err := c.GenerateSeries(p, drinks, foods, start, asOf)
	if err != nil {
		return Estimate{}, err
	}
	bac := tl.At(asOf)
	return Estimate{
		BAC:     bac,
		Status:  c.params.Classify(bac),
		SoberIn: tl.TimeTo(asOf, 0),
		LegalIn: tl.TimeTo(asOf, c.params.LegalThreshold),
		Series:  series,
	}, nil
}

// TimeTo returns the smallest offset from asOf at which the BAC has fallen
// to target. The curve is linear between event instants, so each segment
// is solved in closed form; later drinks and food are walked in order.
// Offsets too large for a Duration saturate at the maximum.
func (t Timeline) TimeTo(asOf time.Time, target float64) time.Duration {
	level := t.At(asOf)
	if level <= target {
		return 0
	}
	beta := t.calc.params.EliminationRate
	cursor := asOf
	for _, next := range t.changesAfter(asOf) {
		if level-beta*next.Sub(cursor).Hours() <= target {
			break
		}
		cursor = next
		level = t.At(next)
		if level <= target {
			return cursor.Sub(asOf)
		}
	}
	return addSaturating(cursor.Sub(asOf), hoursToDuration((level-target)/beta))
}

// hoursToDuration rounds up so the instant it names is never before the root.
func hoursToDuration(h float64) time.Duration {
	if !(h > 0) {
		return 0
	}
	ns := math.Ceil(h * float64(time.Hour))
	if ns >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns)
}

func addSaturating(a, b time.Duration) time.Duration {
	if b > time.Duration(math.MaxInt64)-a {
		return time.Duration(math.MaxInt64)
	}
	return a + b
}
