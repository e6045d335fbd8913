package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"bactrack/internal/modules/session/domain"
	sessionout "bactrack/internal/modules/session/port/out"
	apperrors "bactrack/internal/platform/errors"
	"bactrack/internal/platform/slug"
)

type activeRecord struct {
	SchemaVersion int            `json:"schema_version"`
	Session       domain.Session `json:"session"`
}

// FileActiveSessionStore keeps one JSON document per profile under
// <data>/active. Writes go through a temp file and a rename so readers
// never observe a partial document.
type FileActiveSessionStore struct {
	dir string
}

func NewFileActiveSessionStore(dataDir string) *FileActiveSessionStore {
	return &FileActiveSessionStore{dir: filepath.Join(dataDir, "active")}
}

var _ sessionout.ActiveSessionStore = (*FileActiveSessionStore)(nil)

// Path is the file holding profileID's active session.
func (s *FileActiveSessionStore) Path(profileID string) string {
	return filepath.Join(s.dir, slug.Make(profileID, "default")+".json")
}

func (s *FileActiveSessionStore) SaveActive(_ context.Context, session domain.Session) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create active session dir: %w", err)
	}
	payload, err := json.MarshalIndent(activeRecord{SchemaVersion: domain.SchemaVersion, Session: session}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal active session: %w", err)
	}
	path := s.Path(session.Profile.ID)
	tmp, err := os.CreateTemp(s.dir, ".active-*.json")
	if err != nil {
		return fmt.Errorf("create temp active session: %w", err)
	}
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write active session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close active session: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace active session: %w", err)
	}
	return nil
}

func (s *FileActiveSessionStore) LoadActive(_ context.Context, profileID string) (domain.Session, error) {
	payload, err := os.ReadFile(s.Path(profileID))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Session{}, apperrors.ErrNoActiveSession
		}
		return domain.Session{}, fmt.Errorf("read active session: %w", err)
	}
	record := activeRecord{}
	if err := json.Unmarshal(payload, &record); err != nil {
		return domain.Session{}, fmt.Errorf("decode active session: %w", err)
	}
	if record.Session.ID == "" || record.Session.Closed() {
		return domain.Session{}, apperrors.ErrNoActiveSession
	}
	return record.Session, nil
}

func (s *FileActiveSessionStore) ClearActive(_ context.Context, profileID string) error {
	if err := os.Remove(s.Path(profileID)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("clear active session: %w", err)
	}
	return nil
}
