package domain_test

import (
	"math"
	"testing"
	"time"

	"bactrack/internal/modules/bac/domain"
	profile "bactrack/internal/modules/profile/domain"
)

const tolerance = 1e-9

var t0 = time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

func male70() profile.Profile {
	return profile.Profile{ID: "p-1", WeightKg: 70, Sex: profile.SexMale}
}

func newCalculator(t *testing.T) domain.Calculator {
	t.Helper()
	calc, err := domain.NewCalculator(domain.DefaultParams())
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	return calc
}

func drink(t *testing.T, id string, at time.Time, grams float64) domain.DrinkEvent {
	t.Helper()
	d, err := domain.NewDrink(id, at, grams, "")
	if err != nil {
		t.Fatalf("new drink: %v", err)
	}
	return d
}

func food(t *testing.T, id string, at time.Time, factor float64) domain.FoodEvent {
	t.Helper()
	f, err := domain.NewFood(id, at, factor, "")
	if err != nil {
		t.Fatalf("new food: %v", err)
	}
	return f
}

func approx(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}
