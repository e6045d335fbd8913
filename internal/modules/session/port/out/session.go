package out

import (
	"context"

	profile "bactrack/internal/modules/profile/domain"
	"bactrack/internal/modules/session/domain"
)

// ActiveSessionStore keeps at most one live session per profile.
// LoadActive returns apperrors.ErrNoActiveSession when none is stored.
type ActiveSessionStore interface {
	SaveActive(ctx context.Context, session domain.Session) error
	LoadActive(ctx context.Context, profileID string) (domain.Session, error)
	ClearActive(ctx context.Context, profileID string) error
}

type ArchivedSession struct {
	Session domain.Session
	Path    string
}

// HistoryStore is the durable archive of ended sessions.
type HistoryStore interface {
	Append(ctx context.Context, session domain.Session) (string, error)
	List(ctx context.Context) ([]ArchivedSession, error)
}

// HistoryIndex is a queryable projection of the archive. Record is an
// upsert keyed by session id.
type HistoryIndex interface {
	Record(ctx context.Context, session domain.Session, path string) error
	List(ctx context.Context, profileID string, limit int) ([]domain.HistoryRecord, error)
	Reset(ctx context.Context) error
}

type ProfileProvider interface {
	ActiveProfile(ctx context.Context) (profile.Profile, error)
}

// RemotePusher mirrors a session to a remote endpoint.
type RemotePusher interface {
	Push(ctx context.Context, session domain.Session) error
}
