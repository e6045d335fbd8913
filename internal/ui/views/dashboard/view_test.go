package dashboard

import (
	"math"
	"testing"
	"time"

	sessiondto "bactrack/internal/modules/session/dto"
)

func TestResampleInterpolatesBetweenPoints(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 7, 20, 0, 0, 0, time.UTC)
	points := []sessiondto.Point{
		{At: base, BAC: 0},
		{At: base.Add(time.Hour), BAC: 0.04},
		{At: base.Add(2 * time.Hour), BAC: 0.02},
	}
	got := Resample(points, 5)
	want := []float64{0, 0.02, 0.04, 0.03, 0.02}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("column %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestResampleDegenerateInputs(t *testing.T) {
	t.Parallel()

	if got := Resample(nil, 10); got != nil {
		t.Fatalf("expected nil for empty series, got %v", got)
	}
	single := []sessiondto.Point{{At: time.Now(), BAC: 0.05}}
	for _, v := range Resample(single, 3) {
		if v != 0.05 {
			t.Fatalf("single point should fill every column, got %v", v)
		}
	}
}

func TestFormatRemaining(t *testing.T) {
	t.Parallel()

	cases := map[time.Duration]string{
		0:                                 "0m",
		90 * time.Second:                  "2m",
		time.Hour:                         "1h 00m",
		2*time.Hour + 5*time.Minute + 1e9: "2h 06m",
	}
	for in, want := range cases {
		if got := FormatRemaining(in); got != want {
			t.Fatalf("FormatRemaining(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveEventByPrefix(t *testing.T) {
	t.Parallel()

	m := New(Thresholds{Caution: 0.05, Danger: 0.08, Legal: 0.08})
	m.SetSession(sessiondto.SessionOutput{Events: []sessiondto.EventView{
		{ID: "abc123", Kind: "drink"},
		{ID: "abd456", Kind: "food"},
	}})

	id, err := m.ResolveEvent("abc")
	if err != nil || id != "abc123" {
		t.Fatalf("ResolveEvent(abc) = %q, %v", id, err)
	}
	if _, err := m.ResolveEvent("ab"); err == nil {
		t.Fatal("expected ambiguous prefix error")
	}
	if _, err := m.ResolveEvent("zz"); err == nil {
		t.Fatal("expected no-match error")
	}
}
