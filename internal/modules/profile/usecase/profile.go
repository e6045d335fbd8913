package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"bactrack/internal/modules/profile/domain"
	"bactrack/internal/modules/profile/dto"
	profilein "bactrack/internal/modules/profile/port/in"
	"bactrack/internal/modules/profile/service"
	apperrors "bactrack/internal/platform/errors"
)

type Interactor struct {
	svc    *service.ProfileService
	logger zerolog.Logger
}

func NewInteractor(svc *service.ProfileService, logger zerolog.Logger) profilein.Usecase {
	return &Interactor{svc: svc, logger: logger.With().Str("module", "profile").Logger()}
}

// Create stores a new profile. The first profile ever created becomes
// active even when Activate is false.
func (i *Interactor) Create(ctx context.Context, input dto.CreateInput) (dto.ProfileOutput, error) {
	p, path, err := i.svc.Create(ctx, input.Name, input.WeightKg, input.Sex, input.Age)
	if err != nil {
		return dto.ProfileOutput{}, err
	}
	activate := input.Activate
	if !activate {
		if _, err := i.svc.ActiveID(ctx); errors.Is(err, apperrors.ErrNoActiveProfile) {
			activate = true
		}
	}
	if activate {
		if _, err := i.svc.Activate(ctx, p.ID); err != nil {
			return dto.ProfileOutput{}, err
		}
	}
	i.logger.Info().Str("profile_id", p.ID).Bool("active", activate).Msg("profile created")
	return toOutput(p, activate, path), nil
}

func (i *Interactor) Update(ctx context.Context, input dto.UpdateInput) (dto.ProfileOutput, error) {
	p, err := i.svc.Get(ctx, input.ID)
	if err != nil {
		return dto.ProfileOutput{}, err
	}
	if input.Name != nil {
		p.Name = strings.TrimSpace(*input.Name)
	}
	if input.WeightKg != nil {
		p.WeightKg = *input.WeightKg
	}
	if input.Sex != nil {
		p.Sex = domain.Sex(strings.ToLower(strings.TrimSpace(*input.Sex)))
	}
	if input.Age != nil {
		p.Age = *input.Age
	}
	path, err := i.svc.Save(ctx, p)
	if err != nil {
		return dto.ProfileOutput{}, err
	}
	return toOutput(p, i.isActive(ctx, p.ID), path), nil
}

func (i *Interactor) Get(ctx context.Context, id string) (dto.ProfileOutput, error) {
	p, err := i.svc.Get(ctx, id)
	if err != nil {
		return dto.ProfileOutput{}, err
	}
	return toOutput(p, i.isActive(ctx, p.ID), i.svc.Path(p.ID)), nil
}

func (i *Interactor) List(ctx context.Context) ([]dto.ProfileOutput, error) {
	profiles, err := i.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	activeID, _ := i.svc.ActiveID(ctx)
	out := make([]dto.ProfileOutput, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toOutput(p, p.ID == activeID, i.svc.Path(p.ID)))
	}
	return out, nil
}

func (i *Interactor) Activate(ctx context.Context, id string) (dto.ProfileOutput, error) {
	p, err := i.svc.Activate(ctx, id)
	if err != nil {
		return dto.ProfileOutput{}, err
	}
	i.logger.Info().Str("profile_id", p.ID).Msg("profile activated")
	return toOutput(p, true, i.svc.Path(p.ID)), nil
}

// GetActive returns apperrors.ErrNoActiveProfile when no profile was
// activated or the active one has been removed from disk.
func (i *Interactor) GetActive(ctx context.Context) (dto.ProfileOutput, error) {
	p, err := i.svc.Active(ctx)
	if errors.Is(err, apperrors.ErrNotFound) {
		return dto.ProfileOutput{}, apperrors.ErrNoActiveProfile
	}
	if err != nil {
		return dto.ProfileOutput{}, err
	}
	return toOutput(p, true, i.svc.Path(p.ID)), nil
}

func (i *Interactor) isActive(ctx context.Context, id string) bool {
	activeID, err := i.svc.ActiveID(ctx)
	return err == nil && activeID == id
}

func toOutput(p domain.Profile, active bool, path string) dto.ProfileOutput {
	return dto.ProfileOutput{
		ID:       p.ID,
		Name:     p.Name,
		WeightKg: p.WeightKg,
		Sex:      string(p.Sex),
		Age:      p.Age,
		Active:   active,
		Path:     path,
	}
}
