package in

import (
	"context"
	"time"

	sessiondto "bactrack/internal/modules/session/dto"
	sessionin "bactrack/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, at time.Time) (sessiondto.SessionOutput, error) {
	return h.usecase.Start(ctx, sessiondto.StartInput{At: at})
}

func (h CLIHandler) Drink(ctx context.Context, input sessiondto.DrinkInput) (sessiondto.SessionOutput, error) {
	return h.usecase.AddDrink(ctx, input)
}

func (h CLIHandler) Food(ctx context.Context, factor float64, label string, at time.Time) (sessiondto.SessionOutput, error) {
	return h.usecase.AddFood(ctx, sessiondto.FoodInput{AbsorptionFactor: factor, Label: label, At: at})
}

func (h CLIHandler) Remove(ctx context.Context, eventID string) (sessiondto.SessionOutput, error) {
	return h.usecase.RemoveEvent(ctx, sessiondto.RemoveInput{EventID: eventID})
}

func (h CLIHandler) Tick(ctx context.Context) (sessiondto.SessionOutput, error) {
	return h.usecase.Tick(ctx)
}

func (h CLIHandler) Status(ctx context.Context) (sessiondto.SessionOutput, error) {
	return h.usecase.GetActive(ctx)
}

func (h CLIHandler) End(ctx context.Context) (sessiondto.EndOutput, error) {
	return h.usecase.End(ctx)
}

func (h CLIHandler) History(ctx context.Context, limit int) ([]sessiondto.HistoryEntry, error) {
	return h.usecase.History(ctx, sessiondto.HistoryInput{Limit: limit})
}

func (h CLIHandler) Reindex(ctx context.Context) (sessiondto.ReindexOutput, error) {
	return h.usecase.Reindex(ctx, sessiondto.ReindexInput{})
}
