package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	bac "bactrack/internal/modules/bac/domain"
	profile "bactrack/internal/modules/profile/domain"
	"bactrack/internal/modules/session/domain"
	"bactrack/internal/platform/clock"
	"bactrack/internal/platform/config"
	apperrors "bactrack/internal/platform/errors"
	"bactrack/internal/platform/id"
)

// DrinkSpec is the raw drink description accepted at the edge. Exactly
// one of Preset, VolumeML/ABV or Grams describes the alcohol.
type DrinkSpec struct {
	Preset   string
	Grams    float64
	VolumeML float64
	ABV      float64
	Label    string
	At       time.Time
}

type SessionService struct {
	clock   clock.Clock
	idGen   id.Generator
	tracker domain.Tracker
	presets map[string]config.Preset
}

func NewSessionService(clock clock.Clock, idGen id.Generator, tracker domain.Tracker, presets map[string]config.Preset) *SessionService {
	normalized := make(map[string]config.Preset, len(presets))
	for name, preset := range presets {
		normalized[strings.ToLower(strings.TrimSpace(name))] = preset
	}
	return &SessionService{clock: clock, idGen: idGen, tracker: tracker, presets: normalized}
}

func (s *SessionService) Now() time.Time {
	return s.clock.Now()
}

func (s *SessionService) Presets() []string {
	names := make([]string, 0, len(s.presets))
	for name := range s.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *SessionService) Start(p profile.Profile, at time.Time) (domain.Session, error) {
	if at.IsZero() {
		at = s.clock.Now()
	}
	return s.tracker.Start(s.idGen.New(), p, at)
}

// Refresh brings a loaded session up to now. Stored derived fields are
// never trusted.
func (s *SessionService) Refresh(session domain.Session, now time.Time) (domain.Session, error) {
	return s.tracker.Recompute(session, now)
}

func (s *SessionService) AddDrink(session domain.Session, spec DrinkSpec, now time.Time) (domain.Session, error) {
	d, err := s.buildDrink(spec, now)
	if err != nil {
		return session, err
	}
	return s.tracker.AddDrink(session, d, now)
}

func (s *SessionService) AddFood(session domain.Session, factor float64, label string, at, now time.Time) (domain.Session, error) {
	if at.IsZero() {
		at = now
	}
	f, err := bac.NewFood(s.idGen.New(), at, factor, strings.TrimSpace(label))
	if err != nil {
		return session, err
	}
	return s.tracker.AddFood(session, f, now)
}

func (s *SessionService) RemoveEvent(session domain.Session, eventID string, now time.Time) (domain.Session, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return session, fmt.Errorf("%w: event id is required", apperrors.ErrInvalidInput)
	}
	return s.tracker.RemoveEvent(session, eventID, now)
}

func (s *SessionService) Tick(session domain.Session, now time.Time) (domain.Session, error) {
	return s.tracker.Tick(session, now)
}

func (s *SessionService) End(session domain.Session, now time.Time) (domain.Session, error) {
	return s.tracker.End(session, now)
}

func (s *SessionService) buildDrink(spec DrinkSpec, now time.Time) (bac.DrinkEvent, error) {
	at := spec.At
	if at.IsZero() {
		at = now
	}
	label := strings.TrimSpace(spec.Label)
	eventID := s.idGen.New()

	if name := strings.ToLower(strings.TrimSpace(spec.Preset)); name != "" {
		if spec.Grams != 0 {
			return bac.DrinkEvent{}, fmt.Errorf("%w: preset and grams are mutually exclusive", apperrors.ErrInvalidInput)
		}
		preset, ok := s.presets[name]
		if !ok {
			return bac.DrinkEvent{}, fmt.Errorf("%w: unknown preset %q", apperrors.ErrInvalidInput, name)
		}
		volume, abv := preset.VolumeML, preset.ABV
		if spec.VolumeML != 0 {
			volume = spec.VolumeML
		}
		if spec.ABV != 0 {
			abv = spec.ABV
		}
		if label == "" {
			label = name
		}
		return bac.NewDrinkFromVolume(eventID, at, volume, abv, label)
	}

	if spec.VolumeML != 0 || spec.ABV != 0 {
		if spec.Grams != 0 {
			return bac.DrinkEvent{}, fmt.Errorf("%w: grams and volume are mutually exclusive", apperrors.ErrInvalidInput)
		}
		return bac.NewDrinkFromVolume(eventID, at, spec.VolumeML, spec.ABV, label)
	}
	return bac.NewDrink(eventID, at, spec.Grams, label)
}
