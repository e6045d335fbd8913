package domain

import (
	"fmt"
	"math"
	"strings"

	apperrors "bactrack/internal/platform/errors"
)

const SchemaVersion = 1

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

func (s Sex) Validate() error {
	switch s {
	case SexMale, SexFemale, SexOther:
		return nil
	default:
		return fmt.Errorf("%w: unsupported sex %q", apperrors.ErrInvalidProfile, string(s))
	}
}

// Profile holds the biometric facts the estimate depends on. Age is
// informational and does not enter the calculation.
type Profile struct {
	ID       string  `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	WeightKg float64 `json:"weight_kg" yaml:"weight_kg"`
	Sex      Sex     `json:"sex" yaml:"sex"`
	Age      int     `json:"age,omitempty" yaml:"age,omitempty"`
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: id is required", apperrors.ErrInvalidProfile)
	}
	if !(p.WeightKg > 0) || math.IsInf(p.WeightKg, 0) {
		return fmt.Errorf("%w: weight must be positive, got %v", apperrors.ErrInvalidProfile, p.WeightKg)
	}
	if err := p.Sex.Validate(); err != nil {
		return err
	}
	if p.Age < 0 {
		return fmt.Errorf("%w: age must be non-negative", apperrors.ErrInvalidProfile)
	}
	return nil
}
