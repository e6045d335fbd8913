package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "bactrack/internal/platform/errors"
)

// EthanolDensity is grams per millilitre.
const EthanolDensity = 0.789

// DrinkEvent is normalized at creation: grams is the only quantity the
// calculator reads.
type DrinkEvent struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Grams     float64   `json:"alcohol_grams"`
	Label     string    `json:"label,omitempty"`
}

// FoodEvent carries the fraction of alcohol still absorbed from nearby drinks.
type FoodEvent struct {
	ID               string    `json:"id"`
	Timestamp        time.Time `json:"timestamp"`
	AbsorptionFactor float64   `json:"absorption_factor"`
	Label            string    `json:"label,omitempty"`
}

func NewDrink(id string, at time.Time, grams float64, label string) (DrinkEvent, error) {
	d := DrinkEvent{ID: id, Timestamp: at, Grams: grams, Label: label}
	if err := d.Validate(); err != nil {
		return DrinkEvent{}, err
	}
	return d, nil
}

// NewDrinkFromVolume converts volume and ABV (percent) into grams once.
func NewDrinkFromVolume(id string, at time.Time, volumeML, abv float64, label string) (DrinkEvent, error) {
	if !finite(volumeML) || volumeML < 0 {
		return DrinkEvent{}, fmt.Errorf("%w: volume must be non-negative", apperrors.ErrInvalidEvent)
	}
	if !finite(abv) || abv < 0 || abv > 100 {
		return DrinkEvent{}, fmt.Errorf("%w: abv must be within [0,100]", apperrors.ErrInvalidEvent)
	}
	return NewDrink(id, at, volumeML*(abv/100)*EthanolDensity, label)
}

func NewFood(id string, at time.Time, absorptionFactor float64, label string) (FoodEvent, error) {
	f := FoodEvent{ID: id, Timestamp: at, AbsorptionFactor: absorptionFactor, Label: label}
	if err := f.Validate(); err != nil {
		return FoodEvent{}, err
	}
	return f, nil
}

func (d DrinkEvent) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("%w: drink id is required", apperrors.ErrInvalidEvent)
	}
	if d.Timestamp.IsZero() {
		return fmt.Errorf("%w: drink timestamp is required", apperrors.ErrInvalidEvent)
	}
	if !finite(d.Grams) || d.Grams < 0 {
		return fmt.Errorf("%w: alcohol grams must be non-negative, got %v", apperrors.ErrInvalidEvent, d.Grams)
	}
	return nil
}

func (f FoodEvent) Validate() error {
	if strings.TrimSpace(f.ID) == "" {
		return fmt.Errorf("%w: food id is required", apperrors.ErrInvalidEvent)
	}
	if f.Timestamp.IsZero() {
		return fmt.Errorf("%w: food timestamp is required", apperrors.ErrInvalidEvent)
	}
	if !finite(f.AbsorptionFactor) || f.AbsorptionFactor <= 0 || f.AbsorptionFactor > 1 {
		return fmt.Errorf("%w: absorption factor must be within (0,1], got %v", apperrors.ErrInvalidEvent, f.AbsorptionFactor)
	}
	return nil
}
