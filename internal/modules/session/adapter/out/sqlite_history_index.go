package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"bactrack/internal/modules/session/domain"
	sessionout "bactrack/internal/modules/session/port/out"
	apperrors "bactrack/internal/platform/errors"

	_ "modernc.org/sqlite"
)

// Fixed width so that text ordering matches chronological ordering.
const indexTimeLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteHistoryIndex struct {
	db *sql.DB
}

func NewSQLiteHistoryIndex(dbPath string) (*SQLiteHistoryIndex, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	index := &SQLiteHistoryIndex{db: db}
	if err := index.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return index, nil
}

var _ sessionout.HistoryIndex = (*SQLiteHistoryIndex)(nil)

func (s *SQLiteHistoryIndex) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS session_history (
  id TEXT PRIMARY KEY,
  profile_id TEXT NOT NULL,
  started_at TEXT NOT NULL,
  ended_at TEXT NOT NULL,
  peak_bac REAL NOT NULL,
  final_bac REAL NOT NULL,
  total_grams REAL NOT NULL,
  drink_count INTEGER NOT NULL,
  food_count INTEGER NOT NULL,
  path TEXT NOT NULL,
  snapshot TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create session_history table: %w", err)
	}
	const idx = `CREATE INDEX IF NOT EXISTS session_history_profile_started ON session_history (profile_id, started_at);`
	if _, err := s.db.ExecContext(ctx, idx); err != nil {
		return fmt.Errorf("create session_history index: %w", err)
	}
	return nil
}

func (s *SQLiteHistoryIndex) Close() error {
	return s.db.Close()
}

func (s *SQLiteHistoryIndex) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_history`); err != nil {
		return fmt.Errorf("reset session_history: %w", err)
	}
	return nil
}

func (s *SQLiteHistoryIndex) Record(ctx context.Context, session domain.Session, path string) error {
	snapshot, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session snapshot: %w", err)
	}
	record := domain.Summarize(session, path)
	const stmt = `
INSERT INTO session_history (id, profile_id, started_at, ended_at, peak_bac, final_bac, total_grams, drink_count, food_count, path, snapshot)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  profile_id=excluded.profile_id,
  started_at=excluded.started_at,
  ended_at=excluded.ended_at,
  peak_bac=excluded.peak_bac,
  final_bac=excluded.final_bac,
  total_grams=excluded.total_grams,
  drink_count=excluded.drink_count,
  food_count=excluded.food_count,
  path=excluded.path,
  snapshot=excluded.snapshot;
`
	_, err = s.db.ExecContext(ctx, stmt,
		record.SessionID,
		record.ProfileID,
		record.StartTime.UTC().Format(indexTimeLayout),
		record.EndTime.UTC().Format(indexTimeLayout),
		record.PeakBAC,
		record.FinalBAC,
		record.TotalGrams,
		record.DrinkCount,
		record.FoodCount,
		record.Path,
		string(snapshot),
	)
	if err != nil {
		return fmt.Errorf("upsert session history: %w", err)
	}
	return nil
}

// List returns profileID's sessions, newest first. A limit of zero or
// less returns every row.
func (s *SQLiteHistoryIndex) List(ctx context.Context, profileID string, limit int) ([]domain.HistoryRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	const query = `
SELECT id, profile_id, started_at, ended_at, peak_bac, final_bac, total_grams, drink_count, food_count, path
FROM session_history
WHERE profile_id = ?
ORDER BY started_at DESC
LIMIT ?;
`
	rows, err := s.db.QueryContext(ctx, query, profileID, limit)
	if err != nil {
		return nil, fmt.Errorf("query session history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []domain.HistoryRecord{}
	for rows.Next() {
		var (
			record         domain.HistoryRecord
			started, ended string
		)
		if err := rows.Scan(&record.SessionID, &record.ProfileID, &started, &ended, &record.PeakBAC, &record.FinalBAC, &record.TotalGrams, &record.DrinkCount, &record.FoodCount, &record.Path); err != nil {
			return nil, fmt.Errorf("scan session history: %w", err)
		}
		if record.StartTime, err = time.Parse(indexTimeLayout, started); err != nil {
			return nil, fmt.Errorf("parse started_at %q: %w", started, err)
		}
		if record.EndTime, err = time.Parse(indexTimeLayout, ended); err != nil {
			return nil, fmt.Errorf("parse ended_at %q: %w", ended, err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session history: %w", err)
	}
	return out, nil
}

// Snapshot returns the full session stored for id.
func (s *SQLiteHistoryIndex) Snapshot(ctx context.Context, id string) (domain.Session, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT snapshot FROM session_history WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, fmt.Errorf("%w: session %q", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session snapshot: %w", err)
	}
	session := domain.Session{}
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return domain.Session{}, fmt.Errorf("decode session snapshot: %w", err)
	}
	return session, nil
}
