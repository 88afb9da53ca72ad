package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/tasknest/internal/model"
)

func TestFileWatcher_ReloadsOnExternalRewrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.jsonl")

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	s := NewStore(p)
	t.Cleanup(func() { _ = s.Close() })

	stale, err := s.NewTask("stale", nil)
	require.NoError(t, err)

	fw, err := NewFileWatcher(s, path)
	require.NoError(t, err)
	require.NoError(t, fw.Start())
	t.Cleanup(func() { _ = fw.Stop() })

	// Replace the file the way another process would.
	fresh1 := testTask(t, "fresh one")
	fresh2 := testTask(t, "fresh two")
	other, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	require.NoError(t, other.Rewrite([]model.Task{fresh1, fresh2}))
	require.NoError(t, other.Close())

	assert.Eventually(t, func() bool {
		return s.Count() == 2 && s.Has(fresh1.ID) && s.Has(fresh2.ID) && !s.Has(stale.ID)
	}, 3*time.Second, 25*time.Millisecond)
}

func TestFileWatcher_StartStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.jsonl")

	s := NewStore(nil)
	t.Cleanup(func() { _ = s.Close() })

	fw, err := NewFileWatcher(s, path)
	require.NoError(t, err)

	require.NoError(t, fw.Start())
	// Starting twice is a no-op.
	require.NoError(t, fw.Start())
	require.NoError(t, fw.Stop())
	require.NoError(t, fw.Stop())
}
