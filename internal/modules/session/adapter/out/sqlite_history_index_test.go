package out_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sessionout "bactrack/internal/modules/session/adapter/out"
	apperrors "bactrack/internal/platform/errors"
)

func TestSQLiteHistoryIndexRecordListAndSnapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	index, err := sessionout.NewSQLiteHistoryIndex(filepath.Join(t.TempDir(), "nested", "bactrack.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	older := sampleSession(t, "s-old", true)
	newer := sampleSession(t, "s-new", true)
	newer.StartTime = newer.StartTime.Add(24 * time.Hour)

	require.NoError(t, index.Record(ctx, older, "/h/old.md"))
	require.NoError(t, index.Record(ctx, newer, "/h/new.md"))
	require.NoError(t, index.Record(ctx, newer, "/h/new-moved.md"))

	records, err := index.List(ctx, "p-1", 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "s-new", records[0].SessionID)
	assert.Equal(t, "/h/new-moved.md", records[0].Path)
	assert.Equal(t, "s-old", records[1].SessionID)
	assert.True(t, records[1].StartTime.Equal(older.StartTime))
	assert.InDelta(t, older.PeakBAC, records[1].PeakBAC, 1e-12)
	assert.Equal(t, 1, records[1].DrinkCount)
	assert.Equal(t, 1, records[1].FoodCount)

	limited, err := index.List(ctx, "p-1", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	other, err := index.List(ctx, "p-2", 0)
	require.NoError(t, err)
	assert.Empty(t, other)

	snapshot, err := index.Snapshot(ctx, "s-old")
	require.NoError(t, err)
	assert.Equal(t, older.ID, snapshot.ID)
	assert.Len(t, snapshot.Series, len(older.Series))

	_, err = index.Snapshot(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, index.Reset(ctx))
	records, err = index.List(ctx, "p-1", 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}
