package out

import (
	"context"

	profile "bactrack/internal/modules/profile/domain"
	profilein "bactrack/internal/modules/profile/port/in"
	sessionout "bactrack/internal/modules/session/port/out"
)

type ProfileProviderAdapter struct {
	profiles profilein.Usecase
}

func NewProfileProviderAdapter(profiles profilein.Usecase) sessionout.ProfileProvider {
	return &ProfileProviderAdapter{profiles: profiles}
}

func (a *ProfileProviderAdapter) ActiveProfile(ctx context.Context) (profile.Profile, error) {
	out, err := a.profiles.GetActive(ctx)
	if err != nil {
		return profile.Profile{}, err
	}
	p := profile.Profile{
		ID:       out.ID,
		Name:     out.Name,
		WeightKg: out.WeightKg,
		Sex:      profile.Sex(out.Sex),
		Age:      out.Age,
	}
	if err := p.Validate(); err != nil {
		return profile.Profile{}, err
	}
	return p, nil
}
