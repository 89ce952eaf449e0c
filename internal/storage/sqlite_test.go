package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	store, err := NewStorage(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndListRuns(t *testing.T) {
	store := newTestStorage(t)
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	first := Run{
		Seeds:             []string{"https://a.test", "https://b.test"},
		MaxPages:          30,
		StartedAt:         base,
		EndedAt:           base.Add(time.Minute),
		PagesCrawled:      30,
		LinksRecorded:     120,
		PagesFailed:       2,
		TrianglesFound:    4,
		TerminationReason: "budget_exhausted",
	}
	id, err := store.RecordRun(first)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	second := first
	second.RunID = "fixed-id"
	second.StartedAt = base.Add(time.Hour)
	second.EndedAt = base.Add(time.Hour + time.Minute)
	second.TerminationReason = "frontier_exhausted"
	id2, err := store.RecordRun(second)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", id2)

	runs, err := store.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "fixed-id", runs[0].RunID, "newest first")
	assert.Equal(t, id, runs[1].RunID)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, runs[1].Seeds)
	assert.Equal(t, 120, runs[1].LinksRecorded)
	assert.Equal(t, 4, runs[1].TrianglesFound)
	assert.Equal(t, "budget_exhausted", runs[1].TerminationReason)
	assert.True(t, runs[1].StartedAt.Equal(base))

	limited, err := store.ListRuns(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRecordRunDuplicateID(t *testing.T) {
	store := newTestStorage(t)
	run := Run{RunID: "dup", StartedAt: time.Now(), EndedAt: time.Now()}

	_, err := store.RecordRun(run)
	require.NoError(t, err)
	_, err = store.RecordRun(run)
	assert.Error(t, err)
}

func TestNewStorageBadPath(t *testing.T) {
	_, err := NewStorage(filepath.Join(t.TempDir(), "missing", "dir", "history.db"))
	assert.Error(t, err)
}
