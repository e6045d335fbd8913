package domain

import (
	"time"

	bac "bactrack/internal/modules/bac/domain"
	profile "bactrack/internal/modules/profile/domain"
)

const SchemaVersion = 1

type State string

const (
	StateActive State = "active"
	StateClosed State = "closed"
)

// Session is a value: transitions return a new Session and never mutate
// the one they were given. Every field from EvaluatedAt down is derived
// from Profile, StartTime, Drinks and Foods.
type Session struct {
	ID        string           `json:"id"`
	Profile   profile.Profile  `json:"profile"`
	StartTime time.Time        `json:"start_time"`
	EndTime   *time.Time       `json:"end_time,omitempty"`
	State     State            `json:"state"`
	Drinks    []bac.DrinkEvent `json:"drinks"`
	Foods     []bac.FoodEvent  `json:"foods"`

	EvaluatedAt time.Time     `json:"evaluated_at"`
	CurrentBAC  float64       `json:"current_bac"`
	PeakBAC     float64       `json:"peak_bac"`
	Status      bac.Status    `json:"status"`
	SoberIn     time.Duration `json:"sober_in"`
	LegalIn     time.Duration `json:"legal_in"`
	Series      []bac.Sample  `json:"series"`
}

func (s Session) Closed() bool { return s.State == StateClosed }

// SoberAt is the projected wall-clock instant the estimate reaches zero.
func (s Session) SoberAt() time.Time { return s.EvaluatedAt.Add(s.SoberIn) }

func (s Session) LegalAt() time.Time { return s.EvaluatedAt.Add(s.LegalIn) }

func (s Session) TotalGrams() float64 {
	total := 0.0
	for _, d := range s.Drinks {
		total += d.Grams
	}
	return total
}

func (s Session) Duration() time.Duration {
	end := s.EvaluatedAt
	if s.EndTime != nil {
		end = *s.EndTime
	}
	if end.Before(s.StartTime) {
		return 0
	}
	return end.Sub(s.StartTime)
}

// Clone deep-copies the slices so the copy can be mutated freely.
func (s Session) Clone() Session {
	out := s
	out.Drinks = append([]bac.DrinkEvent{}, s.Drinks...)
	out.Foods = append([]bac.FoodEvent{}, s.Foods...)
	out.Series = append([]bac.Sample{}, s.Series...)
	if s.EndTime != nil {
		end := *s.EndTime
		out.EndTime = &end
	}
	return out
}

func (s Session) hasEvent(id string) bool {
	for _, d := range s.Drinks {
		if d.ID == id {
			return true
		}
	}
	for _, f := range s.Foods {
		if f.ID == id {
			return true
		}
	}
	return false
}
