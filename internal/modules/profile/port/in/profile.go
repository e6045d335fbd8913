package in

import (
	"context"

	"bactrack/internal/modules/profile/dto"
)

type Usecase interface {
	Create(ctx context.Context, input dto.CreateInput) (dto.ProfileOutput, error)
	Update(ctx context.Context, input dto.UpdateInput) (dto.ProfileOutput, error)
	Get(ctx context.Context, id string) (dto.ProfileOutput, error)
	List(ctx context.Context) ([]dto.ProfileOutput, error)
	Activate(ctx context.Context, id string) (dto.ProfileOutput, error)
	GetActive(ctx context.Context) (dto.ProfileOutput, error)
}
