package out_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	bac "bactrack/internal/modules/bac/domain"
	profile "bactrack/internal/modules/profile/domain"
	"bactrack/internal/modules/session/domain"
)

var t0 = time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

func sampleSession(t *testing.T, id string, closed bool) domain.Session {
	t.Helper()
	calc, err := bac.NewCalculator(bac.DefaultParams())
	require.NoError(t, err)
	tr := domain.NewTracker(calc)

	s, err := tr.Start(id, profile.Profile{ID: "p-1", Name: "Sam Doe", WeightKg: 70, Sex: profile.SexMale}, t0)
	require.NoError(t, err)
	d, err := bac.NewDrink(id+"-d1", t0.Add(5*time.Minute), 14, "pint")
	require.NoError(t, err)
	s, err = tr.AddDrink(s, d, t0.Add(10*time.Minute))
	require.NoError(t, err)
	f, err := bac.NewFood(id+"-f1", t0, 0.7, "pizza")
	require.NoError(t, err)
	s, err = tr.AddFood(s, f, t0.Add(20*time.Minute))
	require.NoError(t, err)
	if closed {
		s, err = tr.End(s, t0.Add(90*time.Minute))
		require.NoError(t, err)
	}
	return s
}
