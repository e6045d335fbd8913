package domain

import (
	"fmt"
	"math"
	"sort"
	"time"

	profile "bactrack/internal/modules/profile/domain"
	apperrors "bactrack/internal/platform/errors"
)

// Calculator is stateless apart from its parameters; every method is a
// pure function of its arguments and safe for concurrent use.
type Calculator struct {
	params Params
}

func NewCalculator(params Params) (Calculator, error) {
	if err := params.Validate(); err != nil {
		return Calculator{}, err
	}
	return Calculator{params: params}, nil
}

func (c Calculator) Params() Params { return c.params }

// Compute returns the BAC at asOf. Drinks and food later than asOf
// contribute nothing.
func (c Calculator) Compute(p profile.Profile, drinks []DrinkEvent, foods []FoodEvent, asOf time.Time) (float64, error) {
	tl, err := c.Timeline(p, drinks, foods)
	if err != nil {
		return 0, err
	}
	return tl.At(asOf), nil
}

// Timeline is an event list replayed through a single elimination pool.
// A food event modifies drinks only from its own timestamp on, so the
// pool is rebuilt for each evaluation instant.
type Timeline struct {
	calc Calculator
	// scale converts grams into percent for this profile.
	scale  float64
	drinks []DrinkEvent
	foods  []FoodEvent
}

func (c Calculator) Timeline(p profile.Profile, drinks []DrinkEvent, foods []FoodEvent) (Timeline, error) {
	r, err := c.distribution(p)
	if err != nil {
		return Timeline{}, err
	}
	for _, d := range drinks {
		if !finite(d.Grams) || d.Grams < 0 {
			return Timeline{}, fmt.Errorf("%w: drink %s has invalid grams %v", apperrors.ErrInvalidEvent, d.ID, d.Grams)
		}
	}
	sortedDrinks := append([]DrinkEvent(nil), drinks...)
	sort.SliceStable(sortedDrinks, func(i, j int) bool { return sortedDrinks[i].Timestamp.Before(sortedDrinks[j].Timestamp) })
	sortedFoods := append([]FoodEvent(nil), foods...)
	sort.SliceStable(sortedFoods, func(i, j int) bool { return sortedFoods[i].Timestamp.Before(sortedFoods[j].Timestamp) })
	return Timeline{
		calc:   c,
		scale:  percentScale / (p.WeightKg * 1000 * r),
		drinks: sortedDrinks,
		foods:  sortedFoods,
	}, nil
}

func (c Calculator) distribution(p profile.Profile) (float64, error) {
	if !(p.WeightKg > 0) || math.IsInf(p.WeightKg, 0) {
		return 0, fmt.Errorf("%w: weight must be positive, got %v", apperrors.ErrInvalidProfile, p.WeightKg)
	}
	r, err := c.params.Factors.For(p.Sex)
	if err != nil {
		return 0, err
	}
	return r, nil
}

// At replays the pool up to asOf. Between drinks the pool decays at β and
// is floored at zero, so elimination time spent sober is not charged
// against a later drink.
func (t Timeline) At(asOf time.Time) float64 {
	active := t.foodsUntil(asOf)
	level := 0.0
	var last time.Time
	seen := false
	for _, d := range t.drinks {
		if d.Timestamp.After(asOf) {
			break
		}
		if seen {
			level = t.decay(level, d.Timestamp.Sub(last))
		}
		level += d.Grams * t.calc.FoodModifier(d, active) * t.scale
		last = d.Timestamp
		seen = true
	}
	if !seen {
		return 0
	}
	return t.decay(level, asOf.Sub(last))
}

// Empty reports whether no drink contributes to the timeline.
func (t Timeline) Empty() bool { return len(t.drinks) == 0 }

func (t Timeline) foodsUntil(asOf time.Time) []FoodEvent {
	n := sort.Search(len(t.foods), func(i int) bool { return t.foods[i].Timestamp.After(asOf) })
	return t.foods[:n]
}

// changesAfter lists the distinct event instants later than asOf, in order.
// The curve is linear between consecutive instants.
func (t Timeline) changesAfter(asOf time.Time) []time.Time {
	out := make([]time.Time, 0, len(t.drinks)+len(t.foods))
	for _, d := range t.drinks {
		if d.Timestamp.After(asOf) {
			out = append(out, d.Timestamp)
		}
	}
	for _, f := range t.foods {
		if f.Timestamp.After(asOf) {
			out = append(out, f.Timestamp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	uniq := out[:0]
	for _, at := range out {
		if len(uniq) > 0 && at.Equal(uniq[len(uniq)-1]) {
			continue
		}
		uniq = append(uniq, at)
	}
	return uniq
}

func (t Timeline) decay(level float64, elapsed time.Duration) float64 {
	out := level - t.calc.params.EliminationRate*elapsed.Hours()
	if out < 0 || math.IsNaN(out) {
		return 0
	}
	return out
}
