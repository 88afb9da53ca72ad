package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/tasknest/internal/store"
)

func TestBackend_NewTask_InvalidDateLeavesNoTask(t *testing.T) {
	st := store.NewStore(nil)
	t.Cleanup(func() { _ = st.Close() })
	b := &backend{store: st}

	_, err := b.newTask("doomed", "yesterday-ish", "", "", nil, nil)
	require.Error(t, err)
	assert.Equal(t, 0, st.Count())

	_, err = b.newTask("doomed", "", "not-a-date", "", nil, nil)
	require.Error(t, err)
	assert.Equal(t, 0, st.Count())
}

func TestBackend_NewTask_Local(t *testing.T) {
	st := store.NewStore(nil)
	t.Cleanup(func() { _ = st.Close() })
	b := &backend{store: st}

	created, err := b.newTask("write minutes", "soon", "", "from the @meeting", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "soon", created.DueDate.String())
	assert.Contains(t, created.Tags, "meeting")
	assert.Equal(t, 1, st.Count())
}
