package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"bactrack/internal/bootstrap"
	profiledto "bactrack/internal/modules/profile/dto"
	sessiondto "bactrack/internal/modules/session/dto"
	"bactrack/internal/platform/config"
	"bactrack/internal/platform/logging"
)

type rootFlags struct {
	dataDir   string
	logLevel  string
	logFormat string
	asJSON    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "bactrack",
		Short:         "Blood alcohol estimation and drinking session tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.dataDir, "data", config.DefaultDataDir(), "data directory (profiles, sessions, history)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level override: debug|info|warn|error")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "log format override: console|json")
	root.PersistentFlags().BoolVar(&flags.asJSON, "json", false, "print results as JSON")

	root.AddCommand(newProfileCmd(flags))
	root.AddCommand(newSessionCmd(flags))
	root.AddCommand(newWatchCmd(flags))
	root.AddCommand(newPresetsCmd(flags))
	return root
}

func loadApp(flags *rootFlags) (*bootstrap.App, error) {
	cfg, err := config.New(flags.dataDir)
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Log.Format = flags.logFormat
	}
	return bootstrap.New(cfg, logging.New(cfg.Log, os.Stderr))
}

// withApp opens the app for one command and closes it afterwards.
func withApp(flags *rootFlags, fn func(app *bootstrap.App) error) error {
	app, err := loadApp(flags)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); cerr != nil {
			app.Logger.Warn().Err(cerr).Msg("close app")
		}
	}()
	return fn(app)
}

// ─── profile ─────────────────────────────────────────────────────────────────

func newProfileCmd(flags *rootFlags) *cobra.Command {
	profile := &cobra.Command{Use: "profile", Short: "Manage drinker profiles"}

	var name, sex string
	var weight float64
	var age int
	var activate bool
	create := &cobra.Command{
		Use:   "create --name <name> --weight <kg> --sex <male|female|other>",
		Short: "Create a profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("--name is required")
			}
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.ProfileCLI.Create(cmd.Context(), name, weight, sex, age, activate)
				if err != nil {
					return err
				}
				return printProfile(cmd.OutOrStdout(), out, flags.asJSON)
			})
		},
	}
	create.Flags().StringVar(&name, "name", "", "display name")
	create.Flags().Float64Var(&weight, "weight", 0, "body weight in kg")
	create.Flags().StringVar(&sex, "sex", "other", "sex used for the Widmark factor: male|female|other")
	create.Flags().IntVar(&age, "age", 0, "age in years (optional)")
	create.Flags().BoolVar(&activate, "activate", false, "make this the active profile")

	list := &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				profiles, err := app.ProfileCLI.List(cmd.Context())
				if err != nil {
					return err
				}
				if flags.asJSON {
					return writeJSON(cmd.OutOrStdout(), profiles)
				}
				if len(profiles) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no profiles")
					return nil
				}
				for _, p := range profiles {
					marker := " "
					if p.Active {
						marker = "*"
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\t%s\t%.1fkg\t%s\n", marker, p.ID, p.Name, p.WeightKg, p.Sex)
				}
				return nil
			})
		},
	}

	use := &cobra.Command{
		Use:   "use <id>",
		Short: "Set the active profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.ProfileCLI.Use(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printProfile(cmd.OutOrStdout(), out, flags.asJSON)
			})
		},
	}

	show := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a profile (defaults to the active one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				var (
					out profiledto.ProfileOutput
					err error
				)
				if len(args) == 1 {
					out, err = app.ProfileCLI.Get(cmd.Context(), args[0])
				} else {
					out, err = app.ProfileCLI.Active(cmd.Context())
				}
				if err != nil {
					return err
				}
				return printProfile(cmd.OutOrStdout(), out, flags.asJSON)
			})
		},
	}

	var newName, newSex string
	var newWeight float64
	var newAge int
	update := &cobra.Command{
		Use:   "update <id> [--name ..] [--weight ..] [--sex ..] [--age ..]",
		Short: "Change profile fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := profiledto.UpdateInput{ID: args[0]}
			if cmd.Flags().Changed("name") {
				input.Name = &newName
			}
			if cmd.Flags().Changed("weight") {
				input.WeightKg = &newWeight
			}
			if cmd.Flags().Changed("sex") {
				input.Sex = &newSex
			}
			if cmd.Flags().Changed("age") {
				input.Age = &newAge
			}
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.ProfileCLI.Update(cmd.Context(), input)
				if err != nil {
					return err
				}
				return printProfile(cmd.OutOrStdout(), out, flags.asJSON)
			})
		},
	}
	update.Flags().StringVar(&newName, "name", "", "display name")
	update.Flags().Float64Var(&newWeight, "weight", 0, "body weight in kg")
	update.Flags().StringVar(&newSex, "sex", "", "male|female|other")
	update.Flags().IntVar(&newAge, "age", 0, "age in years")

	profile.AddCommand(create, list, use, show, update)
	return profile
}

// ─── session ─────────────────────────────────────────────────────────────────

func newSessionCmd(flags *rootFlags) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Drinking session lifecycle"}

	var startAt string
	start := &cobra.Command{
		Use:   "start [--at <time>]",
		Short: "Start a session for the active profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			at, err := parseAt(startAt, time.Now())
			if err != nil {
				return err
			}
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.Start(cmd.Context(), at)
				if err != nil {
					return err
				}
				return printSession(cmd.OutOrStdout(), out, flags.asJSON)
			})
		},
	}
	start.Flags().StringVar(&startAt, "at", "", "start time: RFC3339, HH:MM today, or an offset like -45m")

	var drinkAt string
	var drink sessiondto.DrinkInput
	drinkCmd := &cobra.Command{
		Use:   "drink [preset] [--grams g | --ml ml --abv pct]",
		Short: "Log a drink",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := drink
			if len(args) == 1 {
				input.Preset = args[0]
			}
			at, err := parseAt(drinkAt, time.Now())
			if err != nil {
				return err
			}
			input.At = at
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.Drink(cmd.Context(), input)
				if err != nil {
					return err
				}
				return printSession(cmd.OutOrStdout(), out, flags.asJSON)
			})
		},
	}
	drinkCmd.Flags().Float64Var(&drink.Grams, "grams", 0, "pure alcohol in grams")
	drinkCmd.Flags().Float64Var(&drink.VolumeML, "ml", 0, "drink volume in millilitres")
	drinkCmd.Flags().Float64Var(&drink.ABV, "abv", 0, "alcohol by volume in percent")
	drinkCmd.Flags().StringVar(&drink.Label, "label", "", "free-form label")
	drinkCmd.Flags().StringVar(&drinkAt, "at", "", "when it was drunk (default now)")

	var factor float64
	var foodLabel, foodAt string
	food := &cobra.Command{
		Use:   "food --factor <0-1> [--label text]",
		Short: "Log a meal that slows absorption",
		RunE: func(cmd *cobra.Command, _ []string) error {
			at, err := parseAt(foodAt, time.Now())
			if err != nil {
				return err
			}
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.Food(cmd.Context(), factor, foodLabel, at)
				if err != nil {
					return err
				}
				return printSession(cmd.OutOrStdout(), out, flags.asJSON)
			})
		},
	}
	food.Flags().Float64Var(&factor, "factor", 0.7, "fraction of alcohol still absorbed, in (0,1]")
	food.Flags().StringVar(&foodLabel, "label", "", "free-form label")
	food.Flags().StringVar(&foodAt, "at", "", "when it was eaten (default now)")

	remove := &cobra.Command{
		Use:   "remove <event-id>",
		Short: "Remove a drink or food event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.Remove(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printSession(cmd.OutOrStdout(), out, flags.asJSON)
			})
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the active session evaluated now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.Status(cmd.Context())
				if err != nil {
					return err
				}
				return printSession(cmd.OutOrStdout(), out, flags.asJSON)
			})
		},
	}

	tick := &cobra.Command{
		Use:   "tick",
		Short: "Recompute and persist the active session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.Tick(cmd.Context())
				if err != nil {
					return err
				}
				return printSession(cmd.OutOrStdout(), out, flags.asJSON)
			})
		},
	}

	end := &cobra.Command{
		Use:   "end",
		Short: "Close the active session and archive it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.End(cmd.Context())
				if err != nil {
					return err
				}
				if flags.asJSON {
					return writeJSON(cmd.OutOrStdout(), out)
				}
				s := out.Session
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session ended: %s peak=%.3f%% final=%.3f%% alcohol=%.1fg note=%s\n",
					s.SessionID, s.PeakBAC, s.CurrentBAC, s.TotalGrams, out.Path)
				return nil
			})
		},
	}

	var limit int
	history := &cobra.Command{
		Use:   "history [--limit n]",
		Short: "List finished sessions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				entries, err := app.SessionCLI.History(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if flags.asJSON {
					return writeJSON(cmd.OutOrStdout(), entries)
				}
				if len(entries) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
					return nil
				}
				for _, e := range entries {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tpeak=%.3f%%\t%.1fg\tdrinks=%d\t%s\n",
						e.StartedAt.Local().Format("2006-01-02 15:04"), e.SessionID, e.PeakBAC, e.TotalGrams, e.DrinkCount, e.Path)
				}
				return nil
			})
		},
	}
	history.Flags().IntVar(&limit, "limit", 20, "maximum entries (0 for all)")

	reindex := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the SQLite history index from archived notes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.Reindex(cmd.Context())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reindex completed: %d sessions\n", out.Indexed)
				return nil
			})
		},
	}

	session.AddCommand(start, drinkCmd, food, remove, status, tick, end, history, reindex)
	return session
}

// ─── watch / presets ─────────────────────────────────────────────────────────

func newWatchCmd(flags *rootFlags) *cobra.Command {
	var refresh time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Open the live dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				return bootstrap.RunTUI(cmd.Context(), app, refresh)
			})
		},
	}
	cmd.Flags().DurationVar(&refresh, "refresh", 30*time.Second, "recompute interval")
	return cmd
}

func newPresetsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List configured drink presets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				if flags.asJSON {
					return writeJSON(cmd.OutOrStdout(), app.Config.Presets)
				}
				for _, name := range slices.Sorted(maps.Keys(app.Config.Presets)) {
					p := app.Config.Presets[name]
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.0fml\t%.1f%%\n", name, p.VolumeML, p.ABV)
				}
				return nil
			})
		},
	}
}

// ─── output ──────────────────────────────────────────────────────────────────

func printProfile(w io.Writer, p profiledto.ProfileOutput, asJSON bool) error {
	if asJSON {
		return writeJSON(w, p)
	}
	_, _ = fmt.Fprintf(w, "id: %s\nname: %s\nweight: %.1fkg\nsex: %s\nage: %d\nactive: %t\nfile: %s\n",
		p.ID, p.Name, p.WeightKg, p.Sex, p.Age, p.Active, p.Path)
	return nil
}

func printSession(w io.Writer, s sessiondto.SessionOutput, asJSON bool) error {
	if asJSON {
		return writeJSON(w, s)
	}
	_, _ = fmt.Fprintf(w, "session %s (%s) for %s\n", s.SessionID, s.State, s.ProfileName)
	_, _ = fmt.Fprintf(w, "bac: %.3f%% [%s]  peak: %.3f%%  alcohol: %.1fg\n", s.CurrentBAC, s.Status, s.PeakBAC, s.TotalGrams)
	_, _ = fmt.Fprintf(w, "sober in: %s  legal in: %s\n", s.SoberIn.Round(time.Minute), s.LegalIn.Round(time.Minute))
	for _, ev := range s.Events {
		detail := fmt.Sprintf("%.1fg", ev.Grams)
		if ev.Kind == "food" {
			detail = fmt.Sprintf("factor=%.2f", ev.AbsorptionFactor)
		}
		_, _ = fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n", ev.At.Local().Format("15:04"), ev.Kind, detail, ev.Label, ev.ID)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}

// parseAt accepts RFC3339, a wall-clock HH:MM on today's date, or a signed
// offset from now. Empty means "now" and is left to the service clock.
func parseAt(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("15:04", value, now.Location()); err == nil {
		y, mo, d := now.Date()
		return time.Date(y, mo, d, t.Hour(), t.Minute(), 0, 0, now.Location()), nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		return now.Add(d), nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q: want RFC3339, HH:MM or an offset like -30m", value)
}
