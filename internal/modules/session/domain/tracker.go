package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	bac "bactrack/internal/modules/bac/domain"
	profile "bactrack/internal/modules/profile/domain"
	apperrors "bactrack/internal/platform/errors"
)

// Tracker is the session state machine. Each transition validates fully,
// mutates a clone, then recomputes every derived field from scratch; on
// error the input session is returned as is.
type Tracker struct {
	calc bac.Calculator
}

func NewTracker(calc bac.Calculator) Tracker {
	return Tracker{calc: calc}
}

func (t Tracker) Params() bac.Params { return t.calc.Params() }

func (t Tracker) Start(id string, p profile.Profile, at time.Time) (Session, error) {
	if strings.TrimSpace(id) == "" {
		return Session{}, fmt.Errorf("%w: session id is required", apperrors.ErrInvalidInput)
	}
	if err := p.Validate(); err != nil {
		return Session{}, err
	}
	s := Session{
		ID:        id,
		Profile:   p,
		StartTime: at,
		State:     StateActive,
		Drinks:    []bac.DrinkEvent{},
		Foods:     []bac.FoodEvent{},
	}
	return t.recompute(s, at)
}

func (t Tracker) AddDrink(s Session, d bac.DrinkEvent, now time.Time) (Session, error) {
	if s.Closed() {
		return s, apperrors.ErrSessionClosed
	}
	if err := d.Validate(); err != nil {
		return s, err
	}
	if d.Timestamp.Before(s.StartTime) {
		return s, fmt.Errorf("%w: drink at %s precedes session start %s", apperrors.ErrInvalidEvent, d.Timestamp.Format(time.RFC3339), s.StartTime.Format(time.RFC3339))
	}
	if s.hasEvent(d.ID) {
		return s, fmt.Errorf("%w: duplicate event id %q", apperrors.ErrInvalidEvent, d.ID)
	}
	next := s.Clone()
	i := sort.Search(len(next.Drinks), func(i int) bool { return next.Drinks[i].Timestamp.After(d.Timestamp) })
	next.Drinks = append(next.Drinks, bac.DrinkEvent{})
	copy(next.Drinks[i+1:], next.Drinks[i:])
	next.Drinks[i] = d
	return t.commit(s, next, now)
}

// AddFood accepts food eaten before the session started; it can still
// blunt the first drinks.
func (t Tracker) AddFood(s Session, f bac.FoodEvent, now time.Time) (Session, error) {
	if s.Closed() {
		return s, apperrors.ErrSessionClosed
	}
	if err := f.Validate(); err != nil {
		return s, err
	}
	if s.hasEvent(f.ID) {
		return s, fmt.Errorf("%w: duplicate event id %q", apperrors.ErrInvalidEvent, f.ID)
	}
	next := s.Clone()
	i := sort.Search(len(next.Foods), func(i int) bool { return next.Foods[i].Timestamp.After(f.Timestamp) })
	next.Foods = append(next.Foods, bac.FoodEvent{})
	copy(next.Foods[i+1:], next.Foods[i:])
	next.Foods[i] = f
	return t.commit(s, next, now)
}

func (t Tracker) RemoveEvent(s Session, id string, now time.Time) (Session, error) {
	if s.Closed() {
		return s, apperrors.ErrSessionClosed
	}
	next := s.Clone()
	for i, d := range next.Drinks {
		if d.ID == id {
			next.Drinks = append(next.Drinks[:i], next.Drinks[i+1:]...)
			return t.commit(s, next, now)
		}
	}
	for i, f := range next.Foods {
		if f.ID == id {
			next.Foods = append(next.Foods[:i], next.Foods[i+1:]...)
			return t.commit(s, next, now)
		}
	}
	return s, fmt.Errorf("%w: event %q", apperrors.ErrNotFound, id)
}

// Tick re-evaluates against now without touching events. A now before the
// session start is ignored.
func (t Tracker) Tick(s Session, now time.Time) (Session, error) {
	if s.Closed() {
		return s, apperrors.ErrSessionClosed
	}
	if now.Before(s.StartTime) {
		return s, nil
	}
	return t.commit(s, s.Clone(), now)
}

// End stamps the end time, evaluates once more and closes the session.
func (t Tracker) End(s Session, now time.Time) (Session, error) {
	if s.Closed() {
		return s, apperrors.ErrSessionClosed
	}
	if now.Before(s.StartTime) {
		now = s.StartTime
	}
	next := s.Clone()
	end := now
	next.EndTime = &end
	next.State = StateClosed
	return t.commit(s, next, now)
}

// Recompute rebuilds every derived field. Closed sessions are evaluated at
// their end time regardless of now.
func (t Tracker) Recompute(s Session, now time.Time) (Session, error) {
	if s.Closed() && s.EndTime != nil {
		now = *s.EndTime
	}
	return t.commit(s, s.Clone(), now)
}

func (t Tracker) commit(prev, next Session, now time.Time) (Session, error) {
	out, err := t.recompute(next, now)
	if err != nil {
		return prev, err
	}
	return out, nil
}

func (t Tracker) recompute(s Session, now time.Time) (Session, error) {
	at := now
	if at.Before(s.StartTime) {
		at = s.StartTime
	}
	est, err := t.calc.Estimate(s.Profile, s.Drinks, s.Foods, s.StartTime, at)
	if err != nil {
		return Session{}, err
	}
	s.EvaluatedAt = at
	s.CurrentBAC = est.BAC
	s.Status = est.Status
	s.SoberIn = est.SoberIn
	s.LegalIn = est.LegalIn
	s.Series = est.Series
	s.PeakBAC = 0
	for _, sample := range est.Series {
		if sample.BAC > s.PeakBAC {
			s.PeakBAC = sample.BAC
		}
	}
	return s, nil
}
