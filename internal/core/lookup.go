package core

import (
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/tasknest/tasknest/internal/model"
)

// LookupByID finds a task by its id. Returns nil if not found.
func LookupByID(tasks []model.Task, id string) *model.Task {
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i]
		}
	}
	return nil
}

// LookupByIndex finds a task by 1-based index. Returns nil if out of
// bounds.
func LookupByIndex(tasks []model.Task, index int) *model.Task {
	idx := index - 1
	if idx < 0 || idx >= len(tasks) {
		return nil
	}
	return &tasks[idx]
}

// Search returns tasks whose title, text, or tags contain the term.
// Case-insensitive substring match.
func Search(tasks []model.Task, term string) []model.Task {
	if term == "" {
		return tasks
	}

	term = strings.ToLower(term)
	var result []model.Task

	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), term) ||
			strings.Contains(strings.ToLower(t.Text), term) {
			result = append(result, t)
			continue
		}
		for _, tag := range t.Tags {
			if strings.Contains(strings.ToLower(tag), term) {
				result = append(result, t)
				break
			}
		}
	}
	return result
}

// closestThreshold is the minimum similarity for a fuzzy title match.
const closestThreshold = 0.5

// ClosestTitle finds the task whose title most closely matches the input,
// scored by normalized Levenshtein distance. Returns nil when nothing
// scores above the threshold.
func ClosestTitle(tasks []model.Task, input string) (*model.Task, float64) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return nil, 0
	}

	var best *model.Task
	bestScore := 0.0

	for i := range tasks {
		score := titleSimilarity(input, strings.ToLower(tasks[i].Title))
		if score > bestScore {
			bestScore = score
			best = &tasks[i]
		}
	}

	if bestScore < closestThreshold {
		return nil, bestScore
	}
	return best, bestScore
}

// titleSimilarity scores two strings in [0,1], 1 meaning identical.
func titleSimilarity(a, b string) float64 {
	longest := max(len(a), len(b))
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// UniqueTags returns a sorted list of unique tags across the tasks.
func UniqueTags(tasks []model.Task) []string {
	seen := make(map[string]bool)
	var tags []string

	for _, t := range tasks {
		for _, tag := range t.Tags {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}

	slices.SortFunc(tags, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return tags
}
