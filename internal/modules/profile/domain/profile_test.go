package domain_test

import (
	"errors"
	"math"
	"testing"

	"bactrack/internal/modules/profile/domain"
	apperrors "bactrack/internal/platform/errors"
)

func TestProfileValidate(t *testing.T) {
	t.Parallel()
	base := domain.Profile{ID: "p-1", Name: "Sam", WeightKg: 70, Sex: domain.SexMale, Age: 30}
	if err := base.Validate(); err != nil {
		t.Fatalf("profile should be valid: %v", err)
	}

	cases := map[string]func(p *domain.Profile){
		"missing id":      func(p *domain.Profile) { p.ID = " " },
		"zero weight":     func(p *domain.Profile) { p.WeightKg = 0 },
		"negative weight": func(p *domain.Profile) { p.WeightKg = -70 },
		"nan weight":      func(p *domain.Profile) { p.WeightKg = math.NaN() },
		"unknown sex":     func(p *domain.Profile) { p.Sex = "robot" },
		"negative age":    func(p *domain.Profile) { p.Age = -1 },
	}
	for name, mutate := range cases {
		p := base
		mutate(&p)
		if err := p.Validate(); !errors.Is(err, apperrors.ErrInvalidProfile) {
			t.Fatalf("%s: expected invalid profile, got %v", name, err)
		}
	}
}
