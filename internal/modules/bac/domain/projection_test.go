package domain_test

import (
	"math"
	"testing"
	"time"

	"bactrack/internal/modules/bac/domain"
)

func TestEstimateWithoutDrinksIsSafeAndSober(t *testing.T) {
	t.Parallel()
	calc := newCalculator(t)
	est, err := calc.Estimate(male70(), nil, nil, t0, t0.Add(time.Hour))
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if est.BAC != 0 || est.Status != domain.StatusSafe || est.SoberIn != 0 || est.LegalIn != 0 {
		t.Fatalf("unexpected empty estimate: %+v", est)
	}
}

func TestSoberTimeIsMinimalRoot(t *testing.T) {
	t.Parallel()
	calc := newCalculator(t)
	drinks := []domain.DrinkEvent{drink(t, "d1", t0, 14), drink(t, "d2", t0.Add(30*time.Minute), 14)}
	now := t0.Add(45 * time.Minute)

	est, err := calc.Estimate(male70(), drinks, nil, t0, now)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	wantHours := est.BAC / 0.015
	if diff := est.SoberIn.Hours() - wantHours; diff < 0 || diff > 1e-9 {
		t.Fatalf("expected sober in %.6fh, got %.6fh", wantHours, est.SoberIn.Hours())
	}
	at, _ := calc.Compute(male70(), drinks, nil, now.Add(est.SoberIn))
	if at > 1e-9 {
		t.Fatalf("expected zero at sober time, got %v", at)
	}
	before, _ := calc.Compute(male70(), drinks, nil, now.Add(est.SoberIn-time.Minute))
	if before <= 0 {
		t.Fatalf("sober time must be minimal, BAC already zero a minute earlier")
	}
}

func TestLegalTimeCrossesThreshold(t *testing.T) {
	t.Parallel()
	calc := newCalculator(t)
	drinks := []domain.DrinkEvent{drink(t, "d1", t0, 30), drink(t, "d2", t0.Add(10*time.Minute), 30)}
	now := t0.Add(20 * time.Minute)

	est, err := calc.Estimate(male70(), drinks, nil, t0, now)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if est.BAC <= 0.08 || est.Status != domain.StatusDanger {
		t.Fatalf("fixture should be above the legal limit: %+v", est)
	}
	if want := (est.BAC - 0.08) / 0.015; est.LegalIn.Hours()-want > 1e-9 || est.LegalIn.Hours() < want {
		t.Fatalf("expected legal in %.6fh, got %.6fh", want, est.LegalIn.Hours())
	}
	at, _ := calc.Compute(male70(), drinks, nil, now.Add(est.LegalIn))
	if at-0.08 > 1e-9 {
		t.Fatalf("expected legal threshold at legal time, got %v", at)
	}
	if est.LegalIn >= est.SoberIn {
		t.Fatalf("legal time must precede sober time: %v vs %v", est.LegalIn, est.SoberIn)
	}

	low, err := calc.Estimate(male70(), drinks[:1], nil, t0, t0.Add(4*time.Hour))
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if low.LegalIn != 0 {
		t.Fatalf("below the limit legal time must be zero, got %v", low.LegalIn)
	}
}

func TestSoberTimeWalksLaterDatedDrinks(t *testing.T) {
	t.Parallel()
	calc := newCalculator(t)
	drinks := []domain.DrinkEvent{drink(t, "d1", t0, 14), drink(t, "d2", t0.Add(time.Hour), 14)}
	tl, err := calc.Timeline(male70(), drinks, nil)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	sober := tl.TimeTo(t0, 0)
	if tl.At(t0.Add(sober)) > 1e-9 {
		t.Fatalf("expected zero at projected sober instant")
	}
	if sober <= time.Hour {
		t.Fatalf("later drink must extend sober time past it, got %v", sober)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()
	p := domain.DefaultParams()
	cases := map[float64]domain.Status{
		0:     domain.StatusSafe,
		0.049: domain.StatusSafe,
		0.05:  domain.StatusCaution,
		0.079: domain.StatusCaution,
		0.08:  domain.StatusDanger,
		0.2:   domain.StatusDanger,
	}
	for bac, want := range cases {
		if got := p.Classify(bac); got != want {
			t.Fatalf("classify(%v) = %s, want %s", bac, got, want)
		}
	}
}

func TestLaterFoodDoesNotRewriteEarlierBAC(t *testing.T) {
	t.Parallel()
	calc := newCalculator(t)
	drinks := []domain.DrinkEvent{drink(t, "d1", t0, 28)}
	foods := []domain.FoodEvent{food(t, "f1", t0.Add(90*time.Minute), 0.3)}

	plain, err := calc.Compute(male70(), drinks, nil, t0)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	fed, err := calc.Compute(male70(), drinks, foods, t0)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !approx(plain, fed) {
		t.Fatalf("food at t0+90m changed BAC at t0: %.6f vs %.6f", fed, plain)
	}

	series, err := calc.GenerateSeries(male70(), drinks, foods, t0, t0.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	if !approx(series[0].BAC, plain) {
		t.Fatalf("first sample %.6f must ignore later food, want %.6f", series[0].BAC, plain)
	}

	after := t0.Add(2 * time.Hour)
	plainAfter, _ := calc.Compute(male70(), drinks, nil, after)
	fedAfter, _ := calc.Compute(male70(), drinks, foods, after)
	if !(fedAfter < plainAfter) {
		t.Fatalf("food must apply once eaten: %.6f vs %.6f", fedAfter, plainAfter)
	}
	last := series[len(series)-1]
	if !approx(last.BAC, fedAfter) {
		t.Fatalf("final sample %.6f must include the food, want %.6f", last.BAC, fedAfter)
	}
}

func TestProjectionAccountsForLaterFood(t *testing.T) {
	t.Parallel()
	calc := newCalculator(t)
	drinks := []domain.DrinkEvent{drink(t, "d1", t0, 28)}
	foods := []domain.FoodEvent{food(t, "f1", t0.Add(30*time.Minute), 0.5)}

	withFood, err := calc.Timeline(male70(), drinks, foods)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	without, err := calc.Timeline(male70(), drinks, nil)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	sober := withFood.TimeTo(t0, 0)
	if withFood.At(t0.Add(sober)) > 1e-9 {
		t.Fatalf("expected zero at projected sober instant, got %v", withFood.At(t0.Add(sober)))
	}
	if sober >= without.TimeTo(t0, 0) {
		t.Fatalf("food eaten later must shorten the projection: %v", sober)
	}
}

func TestProjectionSaturatesForHugeIntake(t *testing.T) {
	t.Parallel()
	calc := newCalculator(t)
	est, err := calc.Estimate(male70(), []domain.DrinkEvent{drink(t, "d1", t0, 1e8)}, nil, t0, t0)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if est.SoberIn != time.Duration(math.MaxInt64) || est.LegalIn != time.Duration(math.MaxInt64) {
		t.Fatalf("expected saturated projections, got sober=%v legal=%v", est.SoberIn, est.LegalIn)
	}
}
