package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/tasknest/internal/model"
)

var lookupTasks = []model.Task{
	{ID: "01A", Title: "Buy groceries", Text: "milk and eggs", Tags: []string{"errands"}},
	{ID: "01B", Title: "Write quarterly report", Tags: []string{"work"}},
	{ID: "01C", Title: "Call the dentist"},
}

func TestLookupByID(t *testing.T) {
	got := LookupByID(lookupTasks, "01B")
	require.NotNil(t, got)
	assert.Equal(t, "Write quarterly report", got.Title)

	assert.Nil(t, LookupByID(lookupTasks, "missing"))
}

func TestLookupByIndex(t *testing.T) {
	got := LookupByIndex(lookupTasks, 1)
	require.NotNil(t, got)
	assert.Equal(t, "01A", got.ID)

	assert.Nil(t, LookupByIndex(lookupTasks, 0))
	assert.Nil(t, LookupByIndex(lookupTasks, 4))
}

func TestSearch(t *testing.T) {
	result := Search(lookupTasks, "report")
	require.Len(t, result, 1)
	assert.Equal(t, "01B", result[0].ID)

	// Matches in text
	result = Search(lookupTasks, "MILK")
	require.Len(t, result, 1)
	assert.Equal(t, "01A", result[0].ID)

	// Matches in tags
	result = Search(lookupTasks, "errand")
	require.Len(t, result, 1)
	assert.Equal(t, "01A", result[0].ID)

	// Empty term returns everything
	assert.Len(t, Search(lookupTasks, ""), 3)
	assert.Empty(t, Search(lookupTasks, "nonexistent"))
}

func TestClosestTitle(t *testing.T) {
	got, score := ClosestTitle(lookupTasks, "buy groceries")
	require.NotNil(t, got)
	assert.Equal(t, "01A", got.ID)
	assert.Greater(t, score, 0.8)

	// Exact match scores 1
	got, score = ClosestTitle(lookupTasks, "call the dentist")
	require.NotNil(t, got)
	assert.Equal(t, "01C", got.ID)
	assert.InDelta(t, 1.0, score, 0.001)

	// Nothing close enough
	got, _ = ClosestTitle(lookupTasks, "zzzzzzzzzzzzzzzzzzzzzz")
	assert.Nil(t, got)

	got, _ = ClosestTitle(lookupTasks, "")
	assert.Nil(t, got)
}

func TestUniqueTags(t *testing.T) {
	tasks := []model.Task{
		{Tags: []string{"work", "urgent"}},
		{Tags: []string{"home", "work"}},
		{},
	}

	assert.Equal(t, []string{"home", "urgent", "work"}, UniqueTags(tasks))
	assert.Empty(t, UniqueTags(nil))

	// Ordering folds case.
	mixed := []model.Task{
		{Tags: []string{"Work", "home", "Errands"}},
	}
	assert.Equal(t, []string{"Errands", "home", "Work"}, UniqueTags(mixed))
}
