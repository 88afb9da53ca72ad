package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/tasknest/internal/model"
)

func testTask(t *testing.T, title string) model.Task {
	t.Helper()
	task, err := model.NewTask(title)
	require.NoError(t, err)
	return *task
}

func TestNewStore(t *testing.T) {
	s := NewStore(nil)
	assert.NotNil(t, s)
	assert.Equal(t, 0, s.Count())
}

func TestStore_Add(t *testing.T) {
	s := NewStore(nil)
	defer s.Close()

	task := testTask(t, "first")
	require.NoError(t, s.Add(task))
	assert.Equal(t, 1, s.Count())

	// Duplicate id is skipped
	require.NoError(t, s.Add(task))
	assert.Equal(t, 1, s.Count())

	require.NoError(t, s.Add(testTask(t, "second")))
	assert.Equal(t, 2, s.Count())
}

func TestStore_Add_Invalid(t *testing.T) {
	s := NewStore(nil)
	defer s.Close()

	err := s.Add(model.Task{ID: "x", Status: model.StatusActive})
	assert.ErrorIs(t, err, model.ErrEmptyTitle)
}

func TestStore_NewTask(t *testing.T) {
	s := NewStore(nil)
	defer s.Close()

	task, err := s.NewTask("plan trip @travel", []string{"@summer"})
	require.NoError(t, err)

	assert.Equal(t, []string{"travel", "summer"}, task.Tags)
	assert.True(t, s.Has(task.ID))

	got := s.Get(task.ID)
	require.NotNil(t, got)
	assert.Equal(t, "plan trip @travel", got.Title)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := NewStore(nil)
	defer s.Close()

	task, err := s.NewTask("immutable", []string{"tag"})
	require.NoError(t, err)

	got := s.Get(task.ID)
	got.Tags[0] = "mutated"

	assert.Equal(t, "tag", s.Get(task.ID).Tags[0])
}

func TestStore_Update(t *testing.T) {
	s := NewStore(nil)
	defer s.Close()

	task, err := s.NewTask("old title", nil)
	require.NoError(t, err)

	task.Title = "new title"
	require.NoError(t, s.Update(task))
	assert.Equal(t, "new title", s.Get(task.ID).Title)

	missing := testTask(t, "never stored")
	assert.ErrorIs(t, s.Update(missing), ErrTaskNotFound)
}

func TestStore_Delete(t *testing.T) {
	s := NewStore(nil)
	defer s.Close()

	task, err := s.NewTask("doomed", nil)
	require.NoError(t, err)

	require.NoError(t, s.Delete(task.ID))
	assert.False(t, s.Has(task.ID))
	assert.Equal(t, 0, s.Count())

	// Deleting a missing task is not an error
	require.NoError(t, s.Delete("nope"))
}

func TestStore_DeleteDetachesChildren(t *testing.T) {
	s := NewStore(nil)
	defer s.Close()

	parent, err := s.NewTask("parent", nil)
	require.NoError(t, err)
	child, err := s.NewTask("child", nil)
	require.NoError(t, err)
	require.NoError(t, s.AddChild(parent.ID, child.ID))

	require.NoError(t, s.Delete(parent.ID))

	assert.True(t, s.Has(child.ID), "children survive parent deletion")
	_, hasParent := s.Parent(child.ID)
	assert.False(t, hasParent)
}

func TestStore_AddChild(t *testing.T) {
	s := NewStore(nil)
	defer s.Close()

	parent, err := s.NewTask("parent", nil)
	require.NoError(t, err)
	child, err := s.NewTask("child", nil)
	require.NoError(t, err)

	require.NoError(t, s.AddChild(parent.ID, child.ID))
	assert.Equal(t, []string{child.ID}, s.Children(parent.ID))

	gotParent, ok := s.Parent(child.ID)
	require.True(t, ok)
	assert.Equal(t, parent.ID, gotParent)
}

func TestStore_AddChild_Cycles(t *testing.T) {
	s := NewStore(nil)
	defer s.Close()

	a, err := s.NewTask("a", nil)
	require.NoError(t, err)
	b, err := s.NewTask("b", nil)
	require.NoError(t, err)
	c, err := s.NewTask("c", nil)
	require.NoError(t, err)

	require.NoError(t, s.AddChild(a.ID, b.ID))
	require.NoError(t, s.AddChild(b.ID, c.ID))

	assert.ErrorIs(t, s.AddChild(a.ID, a.ID), ErrCycle)
	assert.ErrorIs(t, s.AddChild(c.ID, a.ID), ErrCycle)
	assert.ErrorIs(t, s.AddChild(b.ID, a.ID), ErrCycle)
}

func TestStore_AddChild_Reparent(t *testing.T) {
	s := NewStore(nil)
	defer s.Close()

	p1, err := s.NewTask("first parent", nil)
	require.NoError(t, err)
	p2, err := s.NewTask("second parent", nil)
	require.NoError(t, err)
	child, err := s.NewTask("child", nil)
	require.NoError(t, err)

	require.NoError(t, s.AddChild(p1.ID, child.ID))
	require.NoError(t, s.AddChild(p2.ID, child.ID))

	assert.Empty(t, s.Children(p1.ID))
	assert.Equal(t, []string{child.ID}, s.Children(p2.ID))
}

func TestStore_TaskIDs(t *testing.T) {
	s := NewStore(nil)
	defer s.Close()

	active, err := s.NewTask("active", nil)
	require.NoError(t, err)

	done, err := s.NewTask("done", nil)
	require.NoError(t, err)
	require.NoError(t, done.SetStatus(model.StatusDone, model.Date{}))
	require.NoError(t, s.Update(done))

	// Empty list defaults to active only
	assert.Equal(t, []string{active.ID}, s.TaskIDs(nil))
	assert.Equal(t, []string{done.ID}, s.TaskIDs([]string{model.StatusDone}))
	assert.Len(t, s.TaskIDs([]string{model.StatusActive, model.StatusDone}), 2)
	assert.Empty(t, s.TaskIDs([]string{model.StatusDismiss}))
}

func TestStore_Subscribe(t *testing.T) {
	s := NewStore(nil)
	defer s.Close()

	ch := s.Subscribe()

	task, err := s.NewTask("observed", nil)
	require.NoError(t, err)

	event := <-ch
	assert.Equal(t, ChangeTypeAdd, event.Type)
	assert.Equal(t, task.ID, event.TaskID)

	require.NoError(t, s.Delete(task.ID))
	event = <-ch
	assert.Equal(t, ChangeTypeDelete, event.Type)
}

func TestStore_Clear(t *testing.T) {
	s := NewStore(nil)
	defer s.Close()

	_, err := s.NewTask("one", nil)
	require.NoError(t, err)
	_, err = s.NewTask("two", nil)
	require.NoError(t, err)

	require.NoError(t, s.Clear())
	assert.Equal(t, 0, s.Count())
}

func TestStore_ClosedOperations(t *testing.T) {
	s := NewStore(nil)
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Add(testTask(t, "late")), ErrStoreClosed)
	assert.ErrorIs(t, s.Delete("x"), ErrStoreClosed)
	assert.ErrorIs(t, s.Clear(), ErrStoreClosed)

	// Closing twice is fine
	require.NoError(t, s.Close())
}
