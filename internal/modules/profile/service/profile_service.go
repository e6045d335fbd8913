package service

import (
	"context"
	"fmt"
	"strings"

	"bactrack/internal/modules/profile/domain"
	profileout "bactrack/internal/modules/profile/port/out"
	apperrors "bactrack/internal/platform/errors"
	"bactrack/internal/platform/id"
)

type ProfileService struct {
	idGen id.Generator
	store profileout.ProfileStore
}

func NewProfileService(idGen id.Generator, store profileout.ProfileStore) *ProfileService {
	return &ProfileService{idGen: idGen, store: store}
}

func (s *ProfileService) Create(ctx context.Context, name string, weightKg float64, sex string, age int) (domain.Profile, string, error) {
	p := domain.Profile{
		ID:       s.idGen.New(),
		Name:     strings.TrimSpace(name),
		WeightKg: weightKg,
		Sex:      domain.Sex(strings.ToLower(strings.TrimSpace(sex))),
		Age:      age,
	}
	if err := validate(p); err != nil {
		return domain.Profile{}, "", err
	}
	path, err := s.store.Save(ctx, p)
	if err != nil {
		return domain.Profile{}, "", err
	}
	return p, path, nil
}

// Save validates p before writing it. Sessions already started keep the
// profile they were started with.
func (s *ProfileService) Save(ctx context.Context, p domain.Profile) (string, error) {
	if err := validate(p); err != nil {
		return "", err
	}
	return s.store.Save(ctx, p)
}

func validate(p domain.Profile) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", apperrors.ErrInvalidProfile)
	}
	return p.Validate()
}

func (s *ProfileService) Get(ctx context.Context, id string) (domain.Profile, error) {
	return s.store.Load(ctx, strings.TrimSpace(id))
}

func (s *ProfileService) List(ctx context.Context) ([]domain.Profile, error) {
	return s.store.List(ctx)
}

func (s *ProfileService) Activate(ctx context.Context, id string) (domain.Profile, error) {
	p, err := s.store.Load(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.Profile{}, err
	}
	if err := s.store.SetActive(ctx, p.ID); err != nil {
		return domain.Profile{}, err
	}
	return p, nil
}

func (s *ProfileService) ActiveID(ctx context.Context) (string, error) {
	return s.store.ActiveID(ctx)
}

func (s *ProfileService) Active(ctx context.Context) (domain.Profile, error) {
	id, err := s.store.ActiveID(ctx)
	if err != nil {
		return domain.Profile{}, err
	}
	return s.store.Load(ctx, id)
}

func (s *ProfileService) Path(id string) string {
	return s.store.Path(id)
}
