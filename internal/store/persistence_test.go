package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/tasknest/internal/model"
)

func newTestPersistence(t *testing.T) (*JSONLPersistence, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.jsonl")
	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p, path
}

func TestJSONLPersistence_AppendLoad(t *testing.T) {
	p, _ := newTestPersistence(t)

	t1 := testTask(t, "first")
	t2 := testTask(t, "second")
	require.NoError(t, p.Append(t1))
	require.NoError(t, p.Append(t2))

	loaded, err := p.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, t1.ID, loaded[0].ID)
	assert.Equal(t, "second", loaded[1].Title)
}

func TestJSONLPersistence_WritesHeader(t *testing.T) {
	_, path := newTestPersistence(t)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"tasknest_schema_version":1`)
}

func TestJSONLPersistence_Rewrite(t *testing.T) {
	p, path := newTestPersistence(t)

	t1 := testTask(t, "keep")
	t2 := testTask(t, "drop")
	require.NoError(t, p.Append(t1))
	require.NoError(t, p.Append(t2))

	require.NoError(t, p.Rewrite([]model.Task{t1}))

	loaded, err := p.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "keep", loaded[0].Title)

	// Backup is removed on success
	_, err = os.Stat(path + ".bak")
	assert.True(t, os.IsNotExist(err))
}

func TestJSONLPersistence_Clear(t *testing.T) {
	p, _ := newTestPersistence(t)

	require.NoError(t, p.Append(testTask(t, "gone soon")))
	require.NoError(t, p.Clear())

	loaded, err := p.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestJSONLPersistence_SkipsMalformedLines(t *testing.T) {
	p, path := newTestPersistence(t)

	require.NoError(t, p.Append(testTask(t, "good")))
	require.NoError(t, p.Close())

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0600)
	require.NoError(t, err)
	_, err = f.WriteString("{not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	p2, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p2.Close()

	loaded, err := p2.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "good", loaded[0].Title)
}

func TestJSONLPersistence_Closed(t *testing.T) {
	p, _ := newTestPersistence(t)
	require.NoError(t, p.Close())

	assert.ErrorIs(t, p.Append(testTask(t, "late")), ErrPersistenceClosed)
	_, err := p.Load()
	assert.ErrorIs(t, err, ErrPersistenceClosed)
}

func TestStore_HydrateFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.jsonl")

	p1, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	s1 := NewStore(p1)

	parent, err := s1.NewTask("parent", nil)
	require.NoError(t, err)
	child, err := s1.NewTask("child", nil)
	require.NoError(t, err)
	require.NoError(t, s1.AddChild(parent.ID, child.ID))
	require.NoError(t, s1.Close())

	p2, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	s2 := NewStore(p2)
	defer s2.Close()

	require.NoError(t, s2.Hydrate())
	assert.Equal(t, 2, s2.Count())
	assert.Equal(t, []string{child.ID}, s2.Children(parent.ID))

	gotParent, ok := s2.Parent(child.ID)
	require.True(t, ok)
	assert.Equal(t, parent.ID, gotParent)
}

func TestStore_Reload_SwapsState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.jsonl")

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	s := NewStore(p)
	defer s.Close()

	stale, err := s.NewTask("stale", nil)
	require.NoError(t, err)

	// Replace the file behind the store's back and reload.
	fresh := testTask(t, "fresh")
	other, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	require.NoError(t, other.Rewrite([]model.Task{fresh}))
	require.NoError(t, other.Close())

	require.NoError(t, s.Reload())
	assert.Equal(t, 1, s.Count())
	assert.False(t, s.Has(stale.ID))
	assert.True(t, s.Has(fresh.ID))
}

func TestRecoverFromCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.jsonl")

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	good := testTask(t, "survivor")
	require.NoError(t, p.Append(good))
	require.NoError(t, p.Close())

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0600)
	require.NoError(t, err)
	_, err = f.WriteString("corrupt garbage line\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, RecoverFromCorruption(path))

	p2, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p2.Close()

	loaded, err := p2.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, good.ID, loaded[0].ID)
}
