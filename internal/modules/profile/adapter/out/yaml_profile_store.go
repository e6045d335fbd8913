package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"bactrack/internal/modules/profile/domain"
	profileout "bactrack/internal/modules/profile/port/out"
	apperrors "bactrack/internal/platform/errors"
	"bactrack/internal/platform/slug"
)

type profileDocument struct {
	SchemaVersion  int `yaml:"schema_version"`
	domain.Profile `yaml:",inline"`
}

// YAMLProfileStore keeps one YAML document per profile under
// <data>/profiles and the active profile id in <data>/active-profile.
type YAMLProfileStore struct {
	dir        string
	activePath string
}

func NewYAMLProfileStore(dataDir string) *YAMLProfileStore {
	return &YAMLProfileStore{
		dir:        filepath.Join(dataDir, "profiles"),
		activePath: filepath.Join(dataDir, "active-profile"),
	}
}

var _ profileout.ProfileStore = (*YAMLProfileStore)(nil)

func (s *YAMLProfileStore) Path(id string) string {
	return filepath.Join(s.dir, slug.Make(id, "profile")+".yaml")
}

func (s *YAMLProfileStore) Save(_ context.Context, p domain.Profile) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create profiles dir: %w", err)
	}
	payload, err := yaml.Marshal(profileDocument{SchemaVersion: domain.SchemaVersion, Profile: p})
	if err != nil {
		return "", fmt.Errorf("marshal profile: %w", err)
	}
	path := s.Path(p.ID)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write profile: %w", err)
	}
	return path, nil
}

func (s *YAMLProfileStore) Load(_ context.Context, id string) (domain.Profile, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Profile{}, fmt.Errorf("%w: profile id is required", apperrors.ErrInvalidInput)
	}
	p, err := s.read(s.Path(id))
	if os.IsNotExist(err) {
		return domain.Profile{}, fmt.Errorf("%w: profile %q", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return domain.Profile{}, err
	}
	if p.ID != id {
		return domain.Profile{}, fmt.Errorf("%w: profile %q", apperrors.ErrNotFound, id)
	}
	return p, nil
}

func (s *YAMLProfileStore) List(_ context.Context) ([]domain.Profile, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("glob profiles: %w", err)
	}
	out := make([]domain.Profile, 0, len(matches))
	for _, path := range matches {
		p, err := s.read(path)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *YAMLProfileStore) SetActive(_ context.Context, id string) error {
	if err := os.MkdirAll(filepath.Dir(s.activePath), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(s.activePath, []byte(id+"\n"), 0o644); err != nil {
		return fmt.Errorf("write active profile: %w", err)
	}
	return nil
}

func (s *YAMLProfileStore) ActiveID(_ context.Context) (string, error) {
	payload, err := os.ReadFile(s.activePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.ErrNoActiveProfile
		}
		return "", fmt.Errorf("read active profile: %w", err)
	}
	id := strings.TrimSpace(string(payload))
	if id == "" {
		return "", apperrors.ErrNoActiveProfile
	}
	return id, nil
}

func (s *YAMLProfileStore) read(path string) (domain.Profile, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Profile{}, err
		}
		return domain.Profile{}, fmt.Errorf("read profile %s: %w", path, err)
	}
	doc := profileDocument{}
	if err := yaml.Unmarshal(payload, &doc); err != nil {
		return domain.Profile{}, fmt.Errorf("decode profile %s: %w", path, err)
	}
	if err := doc.Profile.Validate(); err != nil {
		return domain.Profile{}, fmt.Errorf("profile %s: %w", path, err)
	}
	return doc.Profile, nil
}
