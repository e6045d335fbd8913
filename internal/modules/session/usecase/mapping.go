package usecase

import (
	"sort"

	"bactrack/internal/modules/session/domain"
	sessiondto "bactrack/internal/modules/session/dto"
)

func toOutput(s domain.Session) sessiondto.SessionOutput {
	out := sessiondto.SessionOutput{
		SessionID:   s.ID,
		ProfileID:   s.Profile.ID,
		ProfileName: s.Profile.Name,
		State:       string(s.State),
		StartedAt:   s.StartTime,
		EvaluatedAt: s.EvaluatedAt,
		CurrentBAC:  s.CurrentBAC,
		PeakBAC:     s.PeakBAC,
		Status:      string(s.Status),
		SoberIn:     s.SoberIn,
		LegalIn:     s.LegalIn,
		SoberAt:     s.SoberAt(),
		LegalAt:     s.LegalAt(),
		TotalGrams:  s.TotalGrams(),
		Events:      make([]sessiondto.EventView, 0, len(s.Drinks)+len(s.Foods)),
		Series:      make([]sessiondto.Point, 0, len(s.Series)),
	}
	if s.EndTime != nil {
		end := *s.EndTime
		out.EndedAt = &end
	}
	for _, d := range s.Drinks {
		out.Events = append(out.Events, sessiondto.EventView{ID: d.ID, Kind: "drink", At: d.Timestamp, Grams: d.Grams, Label: d.Label})
	}
	for _, f := range s.Foods {
		out.Events = append(out.Events, sessiondto.EventView{ID: f.ID, Kind: "food", At: f.Timestamp, AbsorptionFactor: f.AbsorptionFactor, Label: f.Label})
	}
	sort.SliceStable(out.Events, func(a, b int) bool {
		return out.Events[a].At.Before(out.Events[b].At)
	})
	for _, sample := range s.Series {
		out.Series = append(out.Series, sessiondto.Point{At: sample.At, BAC: sample.BAC})
	}
	return out
}

func toHistoryEntry(r domain.HistoryRecord) sessiondto.HistoryEntry {
	return sessiondto.HistoryEntry{
		SessionID:  r.SessionID,
		StartedAt:  r.StartTime,
		EndedAt:    r.EndTime,
		PeakBAC:    r.PeakBAC,
		FinalBAC:   r.FinalBAC,
		TotalGrams: r.TotalGrams,
		DrinkCount: r.DrinkCount,
		FoodCount:  r.FoodCount,
		Path:       r.Path,
	}
}
