package out

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	bac "bactrack/internal/modules/bac/domain"
	profile "bactrack/internal/modules/profile/domain"
	"bactrack/internal/modules/session/domain"
	sessionout "bactrack/internal/modules/session/port/out"
	"bactrack/internal/platform/markdown"
	"bactrack/internal/platform/slug"
)

type historyNote struct {
	SchemaVersion int             `yaml:"schema_version"`
	ID            string          `yaml:"id"`
	Profile       profile.Profile `yaml:"profile"`
	StartTime     time.Time       `yaml:"start_time"`
	EndTime       time.Time       `yaml:"end_time"`
	PeakBAC       float64         `yaml:"peak_bac"`
	FinalBAC      float64         `yaml:"final_bac"`
	TotalGrams    float64         `yaml:"total_grams"`
	Drinks        []noteDrink     `yaml:"drinks"`
	Foods         []noteFood      `yaml:"foods"`
}

type noteDrink struct {
	ID        string    `yaml:"id"`
	Timestamp time.Time `yaml:"timestamp"`
	Grams     float64   `yaml:"alcohol_grams"`
	Label     string    `yaml:"label,omitempty"`
}

type noteFood struct {
	ID               string    `yaml:"id"`
	Timestamp        time.Time `yaml:"timestamp"`
	AbsorptionFactor float64   `yaml:"absorption_factor"`
	Label            string    `yaml:"label,omitempty"`
}

// VaultHistoryStore archives each ended session as a markdown note with
// the full event list in its frontmatter, under history/YYYY/MM/DD.
type VaultHistoryStore struct {
	root string
}

func NewVaultHistoryStore(dataDir string) *VaultHistoryStore {
	return &VaultHistoryStore{root: filepath.Join(dataDir, "history")}
}

var _ sessionout.HistoryStore = (*VaultHistoryStore)(nil)

func (s *VaultHistoryStore) Append(_ context.Context, session domain.Session) (string, error) {
	date := session.StartTime.UTC()
	dir := filepath.Join(s.root, date.Format("2006"), date.Format("01"), date.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create history dir: %w", err)
	}
	shortID := session.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	name := fmt.Sprintf("%s-%s-%s.md", date.Format("150405"), slug.Make(session.Profile.Name, "session"), slug.Make(shortID, "x"))
	path := filepath.Join(dir, name)

	rendered, err := markdown.RenderFrontmatter(toNote(session), renderBody(session))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write history note: %w", err)
	}
	return path, nil
}

func (s *VaultHistoryStore) List(_ context.Context) ([]sessionout.ArchivedSession, error) {
	paths := []string{}
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == s.root {
				return fs.SkipDir
			}
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".md") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk history: %w", err)
	}
	sort.Strings(paths)

	out := make([]sessionout.ArchivedSession, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		note := historyNote{}
		if _, err := markdown.DecodeFrontmatter(string(content), &note); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if note.ID == "" {
			continue
		}
		out = append(out, sessionout.ArchivedSession{Session: fromNote(note), Path: path})
	}
	return out, nil
}

func toNote(s domain.Session) historyNote {
	note := historyNote{
		SchemaVersion: domain.SchemaVersion,
		ID:            s.ID,
		Profile:       s.Profile,
		StartTime:     s.StartTime.UTC(),
		EndTime:       s.EvaluatedAt.UTC(),
		PeakBAC:       s.PeakBAC,
		FinalBAC:      s.CurrentBAC,
		TotalGrams:    s.TotalGrams(),
		Drinks:        make([]noteDrink, 0, len(s.Drinks)),
		Foods:         make([]noteFood, 0, len(s.Foods)),
	}
	if s.EndTime != nil {
		note.EndTime = s.EndTime.UTC()
	}
	for _, d := range s.Drinks {
		note.Drinks = append(note.Drinks, noteDrink{ID: d.ID, Timestamp: d.Timestamp.UTC(), Grams: d.Grams, Label: d.Label})
	}
	for _, f := range s.Foods {
		note.Foods = append(note.Foods, noteFood{ID: f.ID, Timestamp: f.Timestamp.UTC(), AbsorptionFactor: f.AbsorptionFactor, Label: f.Label})
	}
	return note
}

// fromNote restores the events only. Derived fields are left for the
// caller to recompute.
func fromNote(note historyNote) domain.Session {
	end := note.EndTime
	s := domain.Session{
		ID:          note.ID,
		Profile:     note.Profile,
		StartTime:   note.StartTime,
		EndTime:     &end,
		State:       domain.StateClosed,
		Drinks:      make([]bac.DrinkEvent, 0, len(note.Drinks)),
		Foods:       make([]bac.FoodEvent, 0, len(note.Foods)),
		EvaluatedAt: end,
		CurrentBAC:  note.FinalBAC,
		PeakBAC:     note.PeakBAC,
	}
	for _, d := range note.Drinks {
		s.Drinks = append(s.Drinks, bac.DrinkEvent{ID: d.ID, Timestamp: d.Timestamp, Grams: d.Grams, Label: d.Label})
	}
	for _, f := range note.Foods {
		s.Foods = append(s.Foods, bac.FoodEvent{ID: f.ID, Timestamp: f.Timestamp, AbsorptionFactor: f.AbsorptionFactor, Label: f.Label})
	}
	return s
}

func renderBody(s domain.Session) string {
	b := strings.Builder{}
	fmt.Fprintf(&b, "# Session %s\n\n", s.StartTime.UTC().Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "- Profile: %s\n", s.Profile.Name)
	fmt.Fprintf(&b, "- Duration: %s\n", s.Duration().Round(time.Minute))
	fmt.Fprintf(&b, "- Peak BAC: %.3f%%\n", s.PeakBAC)
	fmt.Fprintf(&b, "- Alcohol: %.1f g in %d drinks\n", s.TotalGrams(), len(s.Drinks))
	b.WriteString("\n## Events\n\n| Time | Kind | Detail | Label |\n| --- | --- | --- | --- |\n")
	rows := make([]string, 0, len(s.Drinks)+len(s.Foods))
	for _, d := range s.Drinks {
		rows = append(rows, fmt.Sprintf("| %s | drink | %.1f g | %s |", d.Timestamp.UTC().Format("15:04"), d.Grams, d.Label))
	}
	for _, f := range s.Foods {
		rows = append(rows, fmt.Sprintf("| %s | food | factor %.2f | %s |", f.Timestamp.UTC().Format("15:04"), f.AbsorptionFactor, f.Label))
	}
	sort.Strings(rows)
	for _, row := range rows {
		b.WriteString(row + "\n")
	}
	return b.String()
}
