package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	bac "bactrack/internal/modules/bac/domain"
	profileinadapter "bactrack/internal/modules/profile/adapter/in"
	profileoutadapter "bactrack/internal/modules/profile/adapter/out"
	profilein "bactrack/internal/modules/profile/port/in"
	profileservice "bactrack/internal/modules/profile/service"
	profileusecase "bactrack/internal/modules/profile/usecase"
	sessioninadapter "bactrack/internal/modules/session/adapter/in"
	sessionoutadapter "bactrack/internal/modules/session/adapter/out"
	sessiondomain "bactrack/internal/modules/session/domain"
	sessionport "bactrack/internal/modules/session/port/out"
	sessionservice "bactrack/internal/modules/session/service"
	sessionusecase "bactrack/internal/modules/session/usecase"
	"bactrack/internal/platform/clock"
	"bactrack/internal/platform/config"
	"bactrack/internal/platform/id"
	"bactrack/internal/platform/resilience"
	"bactrack/internal/platform/tx"
	uiapp "bactrack/internal/ui/app"
)

type App struct {
	Config     config.Config
	Logger     zerolog.Logger
	ProfileCLI profileinadapter.CLIHandler
	SessionCLI sessioninadapter.CLIHandler
	Presets    []string

	profiles    profilein.Usecase
	activeStore *sessionoutadapter.FileActiveSessionStore
	index       *sessionoutadapter.SQLiteHistoryIndex
	syncer      *sessionoutadapter.RemoteSyncer
	syncBudget  time.Duration
}

// EngineParams converts the engine section of the settings file.
func EngineParams(cfg config.EngineConfig) bac.Params {
	return bac.Params{
		EliminationRate:  cfg.EliminationRate,
		CautionThreshold: cfg.CautionThreshold,
		DangerThreshold:  cfg.DangerThreshold,
		LegalThreshold:   cfg.LegalThreshold,
		FoodWindow:       cfg.FoodWindow,
		DuringTolerance:  cfg.DuringTolerance,
		Weights: bac.TimingWeights{
			Before: cfg.FoodWeights.Before,
			During: cfg.FoodWeights.During,
			After:  cfg.FoodWeights.After,
		},
		Factors: bac.DistributionFactors{
			Male:   cfg.GenderFactors.Male,
			Female: cfg.GenderFactors.Female,
			Other:  cfg.GenderFactors.Other,
		},
		SampleCount: cfg.SampleCount,
	}
}

func New(cfg config.Config, logger zerolog.Logger) (*App, error) {
	clk := clock.SystemClock{}
	ids := id.UUID{}

	calc, err := bac.NewCalculator(EngineParams(cfg.Engine))
	if err != nil {
		return nil, fmt.Errorf("engine settings in %s: %w", cfg.SettingsPath, err)
	}

	profileUC := profileusecase.NewInteractor(
		profileservice.NewProfileService(ids, profileoutadapter.NewYAMLProfileStore(cfg.DataDir)),
		logger,
	)

	fileActive := sessionoutadapter.NewFileActiveSessionStore(cfg.DataDir)
	vault := sessionoutadapter.NewVaultHistoryStore(cfg.DataDir)
	index, err := sessionoutadapter.NewSQLiteHistoryIndex(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new history index: %w", err)
	}

	var (
		active  sessionport.ActiveSessionStore = fileActive
		history sessionport.HistoryStore       = vault
		syncer  *sessionoutadapter.RemoteSyncer
	)
	budget := cfg.Remote.Timeout * time.Duration(cfg.Remote.MaxRetries+1)
	if remote := newRemote(cfg.Remote, logger); remote != nil {
		syncer = sessionoutadapter.NewRemoteSyncer(remote, budget, logger)
		active = sessionoutadapter.NewSyncingActiveStore(fileActive, syncer)
		history = sessionoutadapter.NewSyncingHistoryStore(vault, syncer)
		logger.Debug().Str("url", cfg.Remote.URL).Msg("remote sync enabled")
	}

	sessionSvc := sessionservice.NewSessionService(clk, ids, sessiondomain.NewTracker(calc), cfg.Presets)
	sessionUC := sessionusecase.NewInteractor(
		sessionSvc,
		sessionoutadapter.NewProfileProviderAdapter(profileUC),
		active,
		history,
		index,
		&tx.SerialManager{},
		logger,
	)

	return &App{
		Config:      cfg,
		Logger:      logger,
		ProfileCLI:  profileinadapter.NewCLIHandler(profileUC),
		SessionCLI:  sessioninadapter.NewCLIHandler(sessionUC),
		Presets:     sessionSvc.Presets(),
		profiles:    profileUC,
		activeStore: fileActive,
		index:       index,
		syncer:      syncer,
		syncBudget:  budget,
	}, nil
}

func newRemote(cfg config.RemoteConfig, logger zerolog.Logger) sessionport.RemotePusher {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil
	}
	if _, err := url.ParseRequestURI(cfg.URL); err != nil {
		logger.Warn().Err(err).Str("url", cfg.URL).Msg("ignoring invalid remote url")
		return nil
	}
	rc := resilience.DefaultConfig("session-sync")
	rc.MaxRetries = cfg.MaxRetries
	rc.OnStateChange = func(name string, from, to gobreaker.State) {
		logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
	}
	return sessionoutadapter.NewHTTPSessionPusher(sessionoutadapter.HTTPPusherConfig{
		BaseURL:  cfg.URL,
		Token:    cfg.Token,
		Timeout:  cfg.Timeout,
		Executor: resilience.NewExecutor(rc),
	})
}

// ActiveSessionPath is the file the active profile's live session is kept in.
func (a *App) ActiveSessionPath(ctx context.Context) (string, error) {
	p, err := a.profiles.GetActive(ctx)
	if err != nil {
		return "", err
	}
	return a.activeStore.Path(p.ID), nil
}

// Close waits up to one push budget for queued remote syncs, then
// closes the history index. An abandoned sync is logged, not returned.
func (a *App) Close() error {
	if a.syncer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.syncBudget)
		_ = a.syncer.Close(ctx)
		cancel()
	}
	if a.index == nil {
		return nil
	}
	return a.index.Close()
}

// RunTUI opens the live dashboard for the active profile.
func RunTUI(ctx context.Context, app *App, refresh time.Duration) error {
	path, err := app.ActiveSessionPath(ctx)
	if err != nil {
		return err
	}
	model := uiapp.NewModel(uiapp.Options{
		Session:    app.SessionCLI,
		Presets:    app.Presets,
		WatchPath:  path,
		Refresh:    refresh,
		Logger:     app.Logger,
		CautionAt:  app.Config.Engine.CautionThreshold,
		DangerAt:   app.Config.Engine.DangerThreshold,
		LegalLimit: app.Config.Engine.LegalThreshold,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
