package domain

import "time"

// FoodModifier returns the fraction of d's alcohol that is absorbed given
// nearby food, in (0,1]. Among food events within the proximity window the
// lowest absorption factor wins; ties go to the closest, then the earliest.
func (c Calculator) FoodModifier(d DrinkEvent, foods []FoodEvent) float64 {
	var best *FoodEvent
	var bestGap time.Duration
	for i := range foods {
		f := &foods[i]
		gap := absDuration(f.Timestamp.Sub(d.Timestamp))
		if gap > c.params.FoodWindow {
			continue
		}
		if best == nil ||
			f.AbsorptionFactor < best.AbsorptionFactor ||
			(f.AbsorptionFactor == best.AbsorptionFactor && gap < bestGap) ||
			(f.AbsorptionFactor == best.AbsorptionFactor && gap == bestGap && f.Timestamp.Before(best.Timestamp)) {
			best = f
			bestGap = gap
		}
	}
	if best == nil {
		return 1.0
	}
	w := c.timingWeight(best.Timestamp.Sub(d.Timestamp))
	modifier := 1 - (1-best.AbsorptionFactor)*w
	if modifier <= 0 || modifier > 1 {
		return 1.0
	}
	return modifier
}

// timingWeight takes offset = food - drink.
func (c Calculator) timingWeight(offset time.Duration) float64 {
	switch {
	case absDuration(offset) <= c.params.DuringTolerance:
		return c.params.Weights.During
	case offset < 0:
		return c.params.Weights.Before
	default:
		return c.params.Weights.After
	}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
