package domain

import "time"

// HistoryRecord is the queryable summary kept for every ended session.
type HistoryRecord struct {
	SessionID  string
	ProfileID  string
	StartTime  time.Time
	EndTime    time.Time
	PeakBAC    float64
	FinalBAC   float64
	TotalGrams float64
	DrinkCount int
	FoodCount  int
	Path       string
}

func Summarize(s Session, path string) HistoryRecord {
	end := s.EvaluatedAt
	if s.EndTime != nil {
		end = *s.EndTime
	}
	return HistoryRecord{
		SessionID:  s.ID,
		ProfileID:  s.Profile.ID,
		StartTime:  s.StartTime,
		EndTime:    end,
		PeakBAC:    s.PeakBAC,
		FinalBAC:   s.CurrentBAC,
		TotalGrams: s.TotalGrams(),
		DrinkCount: len(s.Drinks),
		FoodCount:  len(s.Foods),
		Path:       path,
	}
}
