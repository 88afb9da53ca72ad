package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/tasknest/internal/model"
)

func TestApply_Empty(t *testing.T) {
	result, err := Apply(nil, FilterActive)
	require.NoError(t, err)
	assert.Len(t, result, 0)
}

func TestApply_NoFilters(t *testing.T) {
	tasks := []model.Task{
		{ID: "1", Title: "a", Status: model.StatusActive},
		{ID: "2", Title: "b", Status: model.StatusDone},
	}

	result, err := Apply(tasks)
	require.NoError(t, err)
	assert.Len(t, result, 2)
}

func TestApply_Active(t *testing.T) {
	tasks := []model.Task{
		{ID: "1", Title: "open", Status: model.StatusActive},
		{ID: "2", Title: "finished", Status: model.StatusDone},
		{ID: "3", Title: "skipped", Status: model.StatusDismiss},
	}

	result, err := Apply(tasks, FilterActive)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "1", result[0].ID)

	result, err = Apply(tasks, FilterClosed)
	require.NoError(t, err)
	assert.Len(t, result, 2)
}

func TestApply_Workable(t *testing.T) {
	tasks := []model.Task{
		{ID: "parent", Title: "parent", Status: model.StatusActive, Subtasks: []string{"open-child"}},
		{ID: "open-child", Title: "child", Status: model.StatusActive},
		{ID: "done-parent", Title: "dp", Status: model.StatusActive, Subtasks: []string{"done-child"}},
		{ID: "done-child", Title: "dc", Status: model.StatusDone},
		{ID: "leaf", Title: "leaf", Status: model.StatusActive},
	}

	result, err := Apply(tasks, FilterWorkable)
	require.NoError(t, err)

	ids := make([]string, 0, len(result))
	for _, r := range result {
		ids = append(ids, r.ID)
	}
	// A task with an open subtask is not workable; one whose subtasks are
	// all closed is.
	assert.ElementsMatch(t, []string{"open-child", "done-parent", "leaf"}, ids)
}

func TestApply_Workable_FutureStart(t *testing.T) {
	future := model.NewDate(time.Now().AddDate(0, 0, 7))
	tasks := []model.Task{
		{ID: "1", Title: "later", Status: model.StatusActive, StartDate: future},
		{ID: "2", Title: "now", Status: model.StatusActive},
	}

	result, err := Apply(tasks, FilterWorkable)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "2", result[0].ID)
}

func TestApply_TagFilter(t *testing.T) {
	tasks := []model.Task{
		{ID: "1", Title: "a", Status: model.StatusActive, Tags: []string{"home"}},
		{ID: "2", Title: "b", Status: model.StatusActive, Tags: []string{"work"}},
		{ID: "3", Title: "c", Status: model.StatusActive},
	}

	result, err := Apply(tasks, "@home")
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "1", result[0].ID)

	result, err = Apply(tasks, FilterNoTag)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "3", result[0].ID)
}

func TestApply_Negation(t *testing.T) {
	tasks := []model.Task{
		{ID: "1", Title: "a", Status: model.StatusActive, Tags: []string{"home"}},
		{ID: "2", Title: "b", Status: model.StatusActive},
	}

	result, err := Apply(tasks, "!@home")
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "2", result[0].ID)
}

func TestApply_Chain(t *testing.T) {
	tasks := []model.Task{
		{ID: "1", Title: "a", Status: model.StatusActive, Tags: []string{"home"}},
		{ID: "2", Title: "b", Status: model.StatusDone, Tags: []string{"home"}},
		{ID: "3", Title: "c", Status: model.StatusActive, Tags: []string{"work"}},
	}

	result, err := Apply(tasks, FilterActive, "@home")
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "1", result[0].ID)
}

func TestApply_Late(t *testing.T) {
	overdue := model.NewDate(time.Now().AddDate(0, 0, -3))
	future := model.NewDate(time.Now().AddDate(0, 0, 3))
	tasks := []model.Task{
		{ID: "1", Title: "late", Status: model.StatusActive, DueDate: overdue},
		{ID: "2", Title: "fine", Status: model.StatusActive, DueDate: future},
		{ID: "3", Title: "open-ended", Status: model.StatusActive},
	}

	result, err := Apply(tasks, FilterLate)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "1", result[0].ID)
}

func TestApply_UnknownFilter(t *testing.T) {
	_, err := Apply(nil, "frobnicate")
	assert.Error(t, err)

	_, err = Apply(nil, "!")
	assert.Error(t, err)
}

func TestLookupFilter_CaseInsensitive(t *testing.T) {
	f, err := LookupFilter("Active")
	require.NoError(t, err)

	task := model.Task{ID: "1", Title: "t", Status: model.StatusActive}
	assert.True(t, f(&task, nil))
}
