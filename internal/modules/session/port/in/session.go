package in

import (
	"context"

	"bactrack/internal/modules/session/dto"
)

// Usecase operates on the active profile's session. Every call that
// returns a SessionOutput has evaluated it at the current time.
type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (dto.SessionOutput, error)
	AddDrink(ctx context.Context, input dto.DrinkInput) (dto.SessionOutput, error)
	AddFood(ctx context.Context, input dto.FoodInput) (dto.SessionOutput, error)
	RemoveEvent(ctx context.Context, input dto.RemoveInput) (dto.SessionOutput, error)
	Tick(ctx context.Context) (dto.SessionOutput, error)
	End(ctx context.Context) (dto.EndOutput, error)
	GetActive(ctx context.Context) (dto.SessionOutput, error)
	History(ctx context.Context, input dto.HistoryInput) ([]dto.HistoryEntry, error)
	Reindex(ctx context.Context, input dto.ReindexInput) (dto.ReindexOutput, error)
}
