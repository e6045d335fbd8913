package dto

import "time"

type StartInput struct {
	At time.Time
}

// DrinkInput names the alcohol either directly in grams, as volume and
// ABV, or through a configured preset. Exactly one form must be set.
type DrinkInput struct {
	Preset   string
	Grams    float64
	VolumeML float64
	ABV      float64
	Label    string
	At       time.Time
}

type FoodInput struct {
	AbsorptionFactor float64
	Label            string
	At               time.Time
}

type RemoveInput struct {
	EventID string
}

type HistoryInput struct {
	Limit int
}

type ReindexInput struct{}

type Point struct {
	At  time.Time
	BAC float64
}

type EventView struct {
	ID               string
	Kind             string
	At               time.Time
	Grams            float64
	AbsorptionFactor float64
	Label            string
}

type SessionOutput struct {
	SessionID   string
	ProfileID   string
	ProfileName string
	State       string
	StartedAt   time.Time
	EndedAt     *time.Time
	EvaluatedAt time.Time
	CurrentBAC  float64
	PeakBAC     float64
	Status      string
	SoberIn     time.Duration
	LegalIn     time.Duration
	SoberAt     time.Time
	LegalAt     time.Time
	TotalGrams  float64
	Events      []EventView
	Series      []Point
}

type EndOutput struct {
	Session SessionOutput
	Path    string
}

type HistoryEntry struct {
	SessionID  string
	StartedAt  time.Time
	EndedAt    time.Time
	PeakBAC    float64
	FinalBAC   float64
	TotalGrams float64
	DrinkCount int
	FoodCount  int
	Path       string
}

type ReindexOutput struct {
	Indexed int
}
