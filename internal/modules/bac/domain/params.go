package domain

import (
	"fmt"
	"math"
	"time"

	profile "bactrack/internal/modules/profile/domain"
	apperrors "bactrack/internal/platform/errors"
)

// BAC is expressed as percent: grams of ethanol per 100 mL of blood. The
// Widmark peak C = A / (W·1000·r) · 100 takes A in grams and W in kg.
const percentScale = 100.0

// TimingWeights scale a food event's blunting effect by where the food
// falls relative to the drink.
type TimingWeights struct {
	Before float64
	During float64
	After  float64
}

// DistributionFactors is the Widmark r per sex.
type DistributionFactors struct {
	Male   float64
	Female float64
	Other  float64
}

func (f DistributionFactors) For(sex profile.Sex) (float64, error) {
	switch sex {
	case profile.SexMale:
		return f.Male, nil
	case profile.SexFemale:
		return f.Female, nil
	case profile.SexOther:
		return f.Other, nil
	default:
		return 0, fmt.Errorf("%w: unsupported sex %q", apperrors.ErrInvalidProfile, string(sex))
	}
}

type Params struct {
	// EliminationRate is β in percent per hour.
	EliminationRate  float64
	CautionThreshold float64
	DangerThreshold  float64
	LegalThreshold   float64
	// FoodWindow bounds how far a food event may sit from a drink and still modify it.
	FoodWindow time.Duration
	// DuringTolerance is the half-width around a drink counted as eating "during".
	DuringTolerance time.Duration
	Weights         TimingWeights
	Factors         DistributionFactors
	// SampleCount is the number of evenly spaced grid points in a series.
	SampleCount int
}

func DefaultParams() Params {
	return Params{
		EliminationRate:  0.015,
		CautionThreshold: 0.05,
		DangerThreshold:  0.08,
		LegalThreshold:   0.08,
		FoodWindow:       2 * time.Hour,
		DuringTolerance:  15 * time.Minute,
		Weights:          TimingWeights{Before: 1.0, During: 0.75, After: 0.5},
		Factors:          DistributionFactors{Male: 0.68, Female: 0.55, Other: 0.615},
		SampleCount:      7,
	}
}

// namedValue keeps validation order stable so the first invalid field is
// always the one reported.
type namedValue struct {
	name  string
	value float64
}

func (p Params) Validate() error {
	for _, f := range []namedValue{
		{"elimination rate", p.EliminationRate},
		{"male factor", p.Factors.Male},
		{"female factor", p.Factors.Female},
		{"other factor", p.Factors.Other},
	} {
		if !finite(f.value) || f.value <= 0 {
			return fmt.Errorf("%w: %s must be positive", apperrors.ErrInvalidConfig, f.name)
		}
	}
	for _, f := range []namedValue{
		{"caution threshold", p.CautionThreshold},
		{"danger threshold", p.DangerThreshold},
		{"legal threshold", p.LegalThreshold},
	} {
		if !finite(f.value) || f.value < 0 {
			return fmt.Errorf("%w: %s must be non-negative", apperrors.ErrInvalidConfig, f.name)
		}
	}
	if p.CautionThreshold > p.DangerThreshold {
		return fmt.Errorf("%w: caution threshold exceeds danger threshold", apperrors.ErrInvalidConfig)
	}
	for _, f := range []namedValue{
		{"before", p.Weights.Before},
		{"during", p.Weights.During},
		{"after", p.Weights.After},
	} {
		if !finite(f.value) || f.value < 0 || f.value > 1 {
			return fmt.Errorf("%w: %s weight must be within [0,1]", apperrors.ErrInvalidConfig, f.name)
		}
	}
	if p.FoodWindow <= 0 {
		return fmt.Errorf("%w: food window must be positive", apperrors.ErrInvalidConfig)
	}
	if p.DuringTolerance < 0 || p.DuringTolerance > p.FoodWindow {
		return fmt.Errorf("%w: during tolerance must be within the food window", apperrors.ErrInvalidConfig)
	}
	if p.SampleCount < 2 {
		return fmt.Errorf("%w: sample count must be at least 2", apperrors.ErrInvalidConfig)
	}
	return nil
}

// Classify maps a BAC onto a status using the caution and danger thresholds.
func (p Params) Classify(bac float64) Status {
	switch {
	case bac >= p.DangerThreshold:
		return StatusDanger
	case bac >= p.CautionThreshold:
		return StatusCaution
	default:
		return StatusSafe
	}
}

type Status string

const (
	StatusSafe    Status = "safe"
	StatusCaution Status = "caution"
	StatusDanger  Status = "danger"
)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
