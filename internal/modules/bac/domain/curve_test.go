package domain_test

import (
	"testing"
	"time"

	"bactrack/internal/modules/bac/domain"
)

func TestSeriesWithoutDrinksHasTwoZeroPoints(t *testing.T) {
	t.Parallel()
	calc := newCalculator(t)
	end := t0.Add(3 * time.Hour)
	series, err := calc.GenerateSeries(male70(), nil, []domain.FoodEvent{food(t, "f", t0.Add(time.Hour), 0.5)}, t0, end)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("expected two points, got %d", len(series))
	}
	if !series[0].At.Equal(t0) || !series[1].At.Equal(end) || series[0].BAC != 0 || series[1].BAC != 0 {
		t.Fatalf("unexpected empty series: %+v", series)
	}
}

func TestSeriesIncludesEventsAndGridStrictlyIncreasing(t *testing.T) {
	t.Parallel()
	calc := newCalculator(t)
	end := t0.Add(3 * time.Hour)
	drinks := []domain.DrinkEvent{
		drink(t, "d1", t0.Add(7*time.Minute), 14),
		drink(t, "d2", t0.Add(65*time.Minute), 14),
		drink(t, "late", end.Add(time.Hour), 14),
	}
	foods := []domain.FoodEvent{food(t, "f1", t0.Add(33*time.Minute), 0.8)}

	series, err := calc.GenerateSeries(male70(), drinks, foods, t0, end)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	if !series[0].At.Equal(t0) || series[0].BAC != 0 {
		t.Fatalf("expected zero sample at start, got %+v", series[0])
	}
	last := series[len(series)-1]
	if !last.At.Equal(end) {
		t.Fatalf("expected final sample at end, got %v", last.At)
	}
	want, _ := calc.Compute(male70(), drinks, foods, end)
	if !approx(last.BAC, want) {
		t.Fatalf("final sample %.6f must equal BAC at end %.6f", last.BAC, want)
	}

	seen := map[time.Time]bool{}
	for i, s := range series {
		seen[s.At] = true
		if s.BAC < 0 {
			t.Fatalf("negative sample %+v", s)
		}
		if i > 0 && !s.At.After(series[i-1].At) {
			t.Fatalf("timestamps must strictly increase at %d: %v then %v", i, series[i-1].At, s.At)
		}
	}
	for _, at := range []time.Time{drinks[0].Timestamp, drinks[1].Timestamp, foods[0].Timestamp} {
		if !seen[at] {
			t.Fatalf("expected event sample at %v", at)
		}
	}
	if seen[drinks[2].Timestamp] {
		t.Fatalf("events after end must not be sampled")
	}
	if len(series) != domain.DefaultParams().SampleCount+3 {
		t.Fatalf("expected grid plus three events, got %d samples", len(series))
	}
}

func TestSeriesIsRestartableAndDeterministic(t *testing.T) {
	t.Parallel()
	calc := newCalculator(t)
	drinks := []domain.DrinkEvent{drink(t, "d1", t0, 14)}
	seq, err := calc.Series(male70(), drinks, nil, t0, t0.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	first := domain.Collect(seq)
	second := domain.Collect(seq)
	if len(first) != len(second) {
		t.Fatalf("restart changed length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("restart changed sample %d: %+v vs %+v", i, first[i], second[i])
		}
	}

	count := 0
	for range seq {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Fatalf("early break should stop iteration")
	}
}

func TestSeriesWithEmptySpanHasSinglePoint(t *testing.T) {
	t.Parallel()
	calc := newCalculator(t)
	series, err := calc.GenerateSeries(male70(), []domain.DrinkEvent{drink(t, "d1", t0, 14)}, nil, t0, t0)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	if len(series) != 1 || !series[0].At.Equal(t0) || series[0].BAC <= 0 {
		t.Fatalf("expected one post-drink sample at start, got %+v", series)
	}
}
