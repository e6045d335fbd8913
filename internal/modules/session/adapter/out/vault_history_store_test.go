package out_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sessionout "bactrack/internal/modules/session/adapter/out"
	"bactrack/internal/modules/session/domain"
)

func TestVaultHistoryStoreAppendAndList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	store := sessionout.NewVaultHistoryStore(dir)

	empty, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	s := sampleSession(t, "0123456789abcdef", true)
	path, err := store.Append(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "history", "2026", "03", "14", "200000-sam-doe-01234567.md"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	note := string(content)
	assert.True(t, strings.HasPrefix(note, "---\n"))
	assert.Contains(t, note, "schema_version: 1")
	assert.Contains(t, note, "| drink | 14.0 g | pint |")
	assert.Contains(t, note, "| food | factor 0.70 | pizza |")

	archived, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	got := archived[0]
	assert.Equal(t, path, got.Path)
	assert.Equal(t, s.ID, got.Session.ID)
	assert.Equal(t, s.Profile, got.Session.Profile)
	assert.Equal(t, domain.StateClosed, got.Session.State)
	require.NotNil(t, got.Session.EndTime)
	assert.True(t, got.Session.EndTime.Equal(*s.EndTime))
	require.Len(t, got.Session.Drinks, 1)
	assert.Equal(t, s.Drinks[0].ID, got.Session.Drinks[0].ID)
	assert.True(t, s.Drinks[0].Timestamp.Equal(got.Session.Drinks[0].Timestamp))
	require.Len(t, got.Session.Foods, 1)
	assert.InDelta(t, 0.7, got.Session.Foods[0].AbsorptionFactor, 1e-12)
}

func TestVaultHistoryStoreSkipsNotesWithoutID(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	notes := filepath.Join(dir, "history", "2026", "01", "01")
	require.NoError(t, os.MkdirAll(notes, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(notes, "scratch.md"), []byte("# just notes\n"), 0o644))

	archived, err := sessionout.NewVaultHistoryStore(dir).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, archived)
}
