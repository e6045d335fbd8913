package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"bactrack/internal/modules/session/domain"
	sessiondto "bactrack/internal/modules/session/dto"
	sessionin "bactrack/internal/modules/session/port/in"
	sessionout "bactrack/internal/modules/session/port/out"
	"bactrack/internal/modules/session/service"
	apperrors "bactrack/internal/platform/errors"
	"bactrack/internal/platform/tx"
)

type Interactor struct {
	svc      *service.SessionService
	profiles sessionout.ProfileProvider
	active   sessionout.ActiveSessionStore
	history  sessionout.HistoryStore
	index    sessionout.HistoryIndex
	tx       tx.Manager
	logger   zerolog.Logger
}

// NewInteractor wires the session usecase. index may be nil, in which case
// History reads the archive directly.
func NewInteractor(
	svc *service.SessionService,
	profiles sessionout.ProfileProvider,
	active sessionout.ActiveSessionStore,
	history sessionout.HistoryStore,
	index sessionout.HistoryIndex,
	txm tx.Manager,
	logger zerolog.Logger,
) sessionin.Usecase {
	if txm == nil {
		txm = tx.NoopManager{}
	}
	return &Interactor{
		svc:      svc,
		profiles: profiles,
		active:   active,
		history:  history,
		index:    index,
		tx:       txm,
		logger:   logger.With().Str("module", "session").Logger(),
	}
}

func (i *Interactor) Start(ctx context.Context, input sessiondto.StartInput) (sessiondto.SessionOutput, error) {
	var out sessiondto.SessionOutput
	err := i.tx.Within(ctx, func(ctx context.Context) error {
		p, err := i.profiles.ActiveProfile(ctx)
		if err != nil {
			return err
		}
		_, err = i.active.LoadActive(ctx, p.ID)
		if err == nil {
			return apperrors.ErrActiveSessionExists
		}
		if !errors.Is(err, apperrors.ErrNoActiveSession) {
			return apperrors.Persistence("load active session", err)
		}

		s, err := i.svc.Start(p, input.At)
		if err != nil {
			return err
		}
		out = toOutput(s)
		i.logger.Info().Str("session_id", s.ID).Str("profile_id", p.ID).Time("start", s.StartTime).Msg("session started")
		if err := i.active.SaveActive(ctx, s); err != nil {
			return apperrors.Persistence("save active session", err)
		}
		return nil
	})
	return out, err
}

func (i *Interactor) AddDrink(ctx context.Context, input sessiondto.DrinkInput) (sessiondto.SessionOutput, error) {
	spec := service.DrinkSpec{
		Preset:   input.Preset,
		Grams:    input.Grams,
		VolumeML: input.VolumeML,
		ABV:      input.ABV,
		Label:    input.Label,
		At:       input.At,
	}
	return i.mutate(ctx, "add drink", func(s domain.Session, now time.Time) (domain.Session, error) {
		return i.svc.AddDrink(s, spec, now)
	})
}

func (i *Interactor) AddFood(ctx context.Context, input sessiondto.FoodInput) (sessiondto.SessionOutput, error) {
	return i.mutate(ctx, "add food", func(s domain.Session, now time.Time) (domain.Session, error) {
		return i.svc.AddFood(s, input.AbsorptionFactor, input.Label, input.At, now)
	})
}

func (i *Interactor) RemoveEvent(ctx context.Context, input sessiondto.RemoveInput) (sessiondto.SessionOutput, error) {
	return i.mutate(ctx, "remove event", func(s domain.Session, now time.Time) (domain.Session, error) {
		return i.svc.RemoveEvent(s, input.EventID, now)
	})
}

func (i *Interactor) Tick(ctx context.Context) (sessiondto.SessionOutput, error) {
	return i.mutate(ctx, "tick", i.svc.Tick)
}

// End archives the closed session before clearing the active record, so a
// failed append leaves the session active and End can be retried.
func (i *Interactor) End(ctx context.Context) (sessiondto.EndOutput, error) {
	var out sessiondto.EndOutput
	err := i.tx.Within(ctx, func(ctx context.Context) error {
		current, now, err := i.load(ctx)
		if err != nil {
			return err
		}
		closed, err := i.svc.End(current, now)
		if err != nil {
			return err
		}
		out.Session = toOutput(closed)

		path, err := i.history.Append(ctx, closed)
		if err != nil {
			return apperrors.Persistence("append history", err)
		}
		out.Path = path
		if i.index != nil {
			if err := i.index.Record(ctx, closed, path); err != nil {
				i.logger.Warn().Err(err).Str("session_id", closed.ID).Msg("history index out of date; run reindex")
			}
		}
		if err := i.active.ClearActive(ctx, closed.Profile.ID); err != nil {
			return apperrors.Persistence("clear active session", err)
		}
		i.logger.Info().
			Str("session_id", closed.ID).
			Float64("peak_bac", closed.PeakBAC).
			Dur("duration", closed.Duration()).
			Str("path", path).
			Msg("session ended")
		return nil
	})
	return out, err
}

func (i *Interactor) GetActive(ctx context.Context) (sessiondto.SessionOutput, error) {
	var out sessiondto.SessionOutput
	err := i.tx.Within(ctx, func(ctx context.Context) error {
		current, _, err := i.load(ctx)
		if err != nil {
			return err
		}
		out = toOutput(current)
		return nil
	})
	return out, err
}

func (i *Interactor) History(ctx context.Context, input sessiondto.HistoryInput) ([]sessiondto.HistoryEntry, error) {
	p, err := i.profiles.ActiveProfile(ctx)
	if err != nil {
		return nil, err
	}
	var records []domain.HistoryRecord
	if i.index != nil {
		records, err = i.index.List(ctx, p.ID, input.Limit)
		if err != nil {
			return nil, apperrors.Persistence("list history index", err)
		}
	} else {
		records, err = i.scanHistory(ctx, p.ID, input.Limit)
		if err != nil {
			return nil, err
		}
	}
	out := make([]sessiondto.HistoryEntry, 0, len(records))
	for _, record := range records {
		out = append(out, toHistoryEntry(record))
	}
	return out, nil
}

// Reindex rebuilds the history index from the archive. Archived sessions
// are recomputed rather than trusted.
func (i *Interactor) Reindex(ctx context.Context, _ sessiondto.ReindexInput) (sessiondto.ReindexOutput, error) {
	if i.index == nil {
		return sessiondto.ReindexOutput{}, nil
	}
	archived, err := i.history.List(ctx)
	if err != nil {
		return sessiondto.ReindexOutput{}, apperrors.Persistence("list history", err)
	}
	if err := i.index.Reset(ctx); err != nil {
		return sessiondto.ReindexOutput{}, apperrors.Persistence("reset history index", err)
	}
	now := i.svc.Now()
	count := 0
	for _, entry := range archived {
		s, err := i.svc.Refresh(entry.Session, now)
		if err != nil {
			i.logger.Warn().Err(err).Str("path", entry.Path).Msg("skipping unreadable history entry")
			continue
		}
		if err := i.index.Record(ctx, s, entry.Path); err != nil {
			return sessiondto.ReindexOutput{Indexed: count}, apperrors.Persistence("record history", err)
		}
		count++
	}
	i.logger.Info().Int("indexed", count).Msg("history reindexed")
	return sessiondto.ReindexOutput{Indexed: count}, nil
}

type transition func(domain.Session, time.Time) (domain.Session, error)

// mutate runs one load, transition, save cycle. A failed save still
// returns the new snapshot; it is authoritative and the save may be retried.
func (i *Interactor) mutate(ctx context.Context, op string, fn transition) (sessiondto.SessionOutput, error) {
	var out sessiondto.SessionOutput
	err := i.tx.Within(ctx, func(ctx context.Context) error {
		current, now, err := i.load(ctx)
		if err != nil {
			return err
		}
		next, err := fn(current, now)
		if err != nil {
			i.logger.Debug().Err(err).Str("op", op).Str("session_id", current.ID).Msg("transition rejected")
			return err
		}
		out = toOutput(next)
		if err := i.active.SaveActive(ctx, next); err != nil {
			return apperrors.Persistence("save active session", err)
		}
		i.logger.Debug().Str("op", op).Str("session_id", next.ID).Float64("bac", next.CurrentBAC).Msg("session updated")
		return nil
	})
	return out, err
}

// load returns the active profile's session recomputed at the current time.
func (i *Interactor) load(ctx context.Context) (domain.Session, time.Time, error) {
	p, err := i.profiles.ActiveProfile(ctx)
	if err != nil {
		return domain.Session{}, time.Time{}, err
	}
	stored, err := i.active.LoadActive(ctx, p.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoActiveSession) {
			return domain.Session{}, time.Time{}, err
		}
		return domain.Session{}, time.Time{}, apperrors.Persistence("load active session", err)
	}
	now := i.svc.Now()
	current, err := i.svc.Refresh(stored, now)
	if err != nil {
		return domain.Session{}, time.Time{}, err
	}
	return current, now, nil
}

func (i *Interactor) scanHistory(ctx context.Context, profileID string, limit int) ([]domain.HistoryRecord, error) {
	archived, err := i.history.List(ctx)
	if err != nil {
		return nil, apperrors.Persistence("list history", err)
	}
	records := make([]domain.HistoryRecord, 0, len(archived))
	for _, entry := range archived {
		if entry.Session.Profile.ID != profileID {
			continue
		}
		records = append(records, domain.Summarize(entry.Session, entry.Path))
	}
	sort.SliceStable(records, func(a, b int) bool {
		return records[a].StartTime.After(records[b].StartTime)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
