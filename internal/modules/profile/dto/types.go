package dto

type CreateInput struct {
	Name     string
	WeightKg float64
	Sex      string
	Age      int
	Activate bool
}

type UpdateInput struct {
	ID       string
	Name     *string
	WeightKg *float64
	Sex      *string
	Age      *int
}

type ProfileOutput struct {
	ID       string
	Name     string
	WeightKg float64
	Sex      string
	Age      int
	Active   bool
	Path     string
}
