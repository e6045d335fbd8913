package in

import (
	"context"

	profiledto "bactrack/internal/modules/profile/dto"
	profilein "bactrack/internal/modules/profile/port/in"
)

type CLIHandler struct {
	usecase profilein.Usecase
}

func NewCLIHandler(usecase profilein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Create(ctx context.Context, name string, weightKg float64, sex string, age int, activate bool) (profiledto.ProfileOutput, error) {
	return h.usecase.Create(ctx, profiledto.CreateInput{Name: name, WeightKg: weightKg, Sex: sex, Age: age, Activate: activate})
}

func (h CLIHandler) Update(ctx context.Context, input profiledto.UpdateInput) (profiledto.ProfileOutput, error) {
	return h.usecase.Update(ctx, input)
}

func (h CLIHandler) Get(ctx context.Context, id string) (profiledto.ProfileOutput, error) {
	return h.usecase.Get(ctx, id)
}

func (h CLIHandler) List(ctx context.Context) ([]profiledto.ProfileOutput, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Use(ctx context.Context, id string) (profiledto.ProfileOutput, error) {
	return h.usecase.Activate(ctx, id)
}

func (h CLIHandler) Active(ctx context.Context) (profiledto.ProfileOutput, error) {
	return h.usecase.GetActive(ctx)
}
