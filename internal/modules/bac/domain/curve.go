package domain

import (
	"iter"
	"sort"
	"time"

	profile "bactrack/internal/modules/profile/domain"
)

type Sample struct {
	At  time.Time `json:"at"`
	BAC float64   `json:"bac"`
}

// Series yields (time, bac) samples from start to end: both endpoints,
// every event timestamp in between, and SampleCount evenly spaced grid
// points. Timestamps are strictly increasing. The sequence is lazy and
// may be ranged over any number of times.
func (c Calculator) Series(p profile.Profile, drinks []DrinkEvent, foods []FoodEvent, start, end time.Time) (iter.Seq2[time.Time, float64], error) {
	tl, err := c.Timeline(p, drinks, foods)
	if err != nil {
		return nil, err
	}
	if !end.After(start) {
		return func(yield func(time.Time, float64) bool) {
			yield(start, tl.At(start))
		}, nil
	}
	if len(drinks) == 0 {
		return func(yield func(time.Time, float64) bool) {
			if yield(start, 0) {
				yield(end, 0)
			}
		}, nil
	}
	times := c.sampleTimes(drinks, foods, start, end)
	return func(yield func(time.Time, float64) bool) {
		for _, at := range times {
			if !yield(at, tl.At(at)) {
				return
			}
		}
	}, nil
}

// GenerateSeries materializes Series.
func (c Calculator) GenerateSeries(p profile.Profile, drinks []DrinkEvent, foods []FoodEvent, start, end time.Time) ([]Sample, error) {
	seq, err := c.Series(p, drinks, foods, start, end)
	if err != nil {
		return nil, err
	}
	return Collect(seq), nil
}

func Collect(seq iter.Seq2[time.Time, float64]) []Sample {
	out := []Sample{}
	for at, bac := range seq {
		out = append(out, Sample{At: at, BAC: bac})
	}
	return out
}

func (c Calculator) sampleTimes(drinks []DrinkEvent, foods []FoodEvent, start, end time.Time) []time.Time {
	n := c.params.SampleCount
	if n < 2 {
		n = 2
	}
	times := make([]time.Time, 0, n+len(drinks)+len(foods)+2)
	span := end.Sub(start)
	for i := 0; i < n-1; i++ {
		times = append(times, start.Add(span*time.Duration(i)/time.Duration(n-1)))
	}
	times = append(times, end)
	inRange := func(at time.Time) bool { return !at.Before(start) && !at.After(end) }
	for _, d := range drinks {
		if inRange(d.Timestamp) {
			times = append(times, d.Timestamp)
		}
	}
	for _, f := range foods {
		if inRange(f.Timestamp) {
			times = append(times, f.Timestamp)
		}
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	out := times[:0]
	for _, at := range times {
		if len(out) > 0 && !at.After(out[len(out)-1]) {
			continue
		}
		out = append(out, at)
	}
	return out
}
