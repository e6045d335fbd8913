package out

import (
	"context"

	"bactrack/internal/modules/profile/domain"
)

// ProfileStore persists profiles and the active-profile pointer. Load
// returns apperrors.ErrNotFound for unknown ids and ActiveID returns
// apperrors.ErrNoActiveProfile when no pointer is set.
type ProfileStore interface {
	Save(ctx context.Context, profile domain.Profile) (string, error)
	Load(ctx context.Context, id string) (domain.Profile, error)
	List(ctx context.Context) ([]domain.Profile, error)
	SetActive(ctx context.Context, id string) error
	ActiveID(ctx context.Context) (string, error)
	Path(id string) string
}
