package domain_test

import (
	"testing"
	"time"

	"bactrack/internal/modules/bac/domain"
)

func TestFoodModifierTimingWeights(t *testing.T) {
	t.Parallel()
	calc := newCalculator(t)
	d := drink(t, "d1", t0, 14)

	cases := []struct {
		name   string
		offset time.Duration
		want   float64
	}{
		{name: "before", offset: -time.Hour, want: 1 - 0.5*1.0},
		{name: "during exact", offset: 0, want: 1 - 0.5*0.75},
		{name: "during edge", offset: 15 * time.Minute, want: 1 - 0.5*0.75},
		{name: "after", offset: 90 * time.Minute, want: 1 - 0.5*0.5},
		{name: "outside window", offset: 2*time.Hour + time.Second, want: 1},
		{name: "window edge", offset: -2 * time.Hour, want: 1 - 0.5*1.0},
	}
	for _, tc := range cases {
		got := calc.FoodModifier(d, []domain.FoodEvent{food(t, "f", t0.Add(tc.offset), 0.5)})
		if !approx(got, tc.want) {
			t.Fatalf("%s: expected %.4f, got %.4f", tc.name, tc.want, got)
		}
	}
	if got := calc.FoodModifier(d, nil); got != 1 {
		t.Fatalf("no food must not modify, got %v", got)
	}
}

func TestFoodModifierPicksStrongestThenClosest(t *testing.T) {
	t.Parallel()
	calc := newCalculator(t)
	d := drink(t, "d1", t0, 14)

	foods := []domain.FoodEvent{
		food(t, "light", t0.Add(-5*time.Minute), 0.9),
		food(t, "heavy-far", t0.Add(-100*time.Minute), 0.4),
		food(t, "heavy-near", t0.Add(-30*time.Minute), 0.4),
	}
	got := calc.FoodModifier(d, foods)
	if want := 1 - 0.6*1.0; !approx(got, want) {
		t.Fatalf("expected strongest food with before weight %.4f, got %.4f", want, got)
	}

	tie := []domain.FoodEvent{
		food(t, "after", t0.Add(60*time.Minute), 0.4),
		food(t, "during", t0.Add(10*time.Minute), 0.4),
	}
	if got, want := calc.FoodModifier(d, tie), 1-0.6*0.75; !approx(got, want) {
		t.Fatalf("expected closest food to break tie (%.4f), got %.4f", want, got)
	}
}

func TestFoodModifierStaysInUnitInterval(t *testing.T) {
	t.Parallel()
	calc := newCalculator(t)
	d := drink(t, "d1", t0, 14)
	for _, factor := range []float64{0.01, 0.25, 0.5, 0.99, 1} {
		got := calc.FoodModifier(d, []domain.FoodEvent{food(t, "f", t0.Add(-time.Minute), factor)})
		if got <= 0 || got > 1 {
			t.Fatalf("factor %v: modifier %v outside (0,1]", factor, got)
		}
	}
}
