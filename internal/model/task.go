// Package model defines the core data structures for tasknest.
package model

import (
	"crypto/rand"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Task statuses. The literal strings are part of the D-Bus contract and
// therefore never localized or renamed.
const (
	StatusActive  = "Active"
	StatusDone    = "Done"
	StatusDismiss = "Dismiss"
)

// Statuses lists all valid task statuses.
var Statuses = []string{StatusActive, StatusDone, StatusDismiss}

// Task represents a single task in the tree.
// Subtasks holds the ids of direct children; the store maintains the
// reverse (parent) index.
type Task struct {
	ID       string   `json:"id"`
	Status   string   `json:"status"`
	Title    string   `json:"title"`
	Text     string   `json:"text,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Subtasks []string `json:"subtasks,omitempty"`

	DueDate    Date `json:"duedate,omitzero"`
	StartDate  Date `json:"startdate,omitzero"`
	ClosedDate Date `json:"donedate,omitzero"`

	AddedAt    int64 `json:"added_at"`
	ModifiedAt int64 `json:"modified_at"`
}

// Validation errors.
var (
	ErrEmptyID       = errors.New("task id cannot be empty")
	ErrEmptyTitle    = errors.New("task title cannot be empty")
	ErrInvalidStatus = errors.New("status must be Active, Done, or Dismiss")
)

var tagPattern = regexp.MustCompile(`(^|[\s(])@([\w\-.]+)`)

// NewTask creates a new active task with a generated ULID.
func NewTask(title string) (*Task, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ULID: %w", err)
	}

	now := time.Now().Unix()
	t := &Task{
		ID:         id.String(),
		Status:     StatusActive,
		Title:      title,
		AddedAt:    now,
		ModifiedAt: now,
	}
	t.SyncTags()
	return t, nil
}

// Validate checks that the task has all required fields.
func (t *Task) Validate() error {
	if t.ID == "" {
		return ErrEmptyID
	}
	if t.Title == "" {
		return ErrEmptyTitle
	}
	if !slices.Contains(Statuses, t.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// SetStatus changes the task status. Closing statuses record the closed
// date: the provided date if set, otherwise today. Reactivating clears it.
func (t *Task) SetStatus(status string, closed Date) error {
	if !slices.Contains(Statuses, status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	t.Status = status
	switch status {
	case StatusDone, StatusDismiss:
		if closed.IsSet() {
			t.ClosedDate = closed
		} else {
			t.ClosedDate = Today()
		}
	default:
		t.ClosedDate = Date{}
	}
	t.Touch()
	return nil
}

// IsActive reports whether the task is still open.
func (t *Task) IsActive() bool { return t.Status == StatusActive }

// IsClosed reports whether the task is done or dismissed.
func (t *Task) IsClosed() bool { return t.Status == StatusDone || t.Status == StatusDismiss }

// Touch updates the modification timestamp.
func (t *Task) Touch() {
	t.ModifiedAt = time.Now().Unix()
}

// AddTag adds a tag if not already present. The leading @ is stripped so
// tags are stored in canonical bare form.
func (t *Task) AddTag(tag string) {
	tag = strings.TrimPrefix(strings.TrimSpace(tag), "@")
	if tag == "" || slices.Contains(t.Tags, tag) {
		return
	}
	t.Tags = append(t.Tags, tag)
}

// HasTag reports whether the task carries the tag (with or without @).
func (t *Task) HasTag(tag string) bool {
	return slices.Contains(t.Tags, strings.TrimPrefix(tag, "@"))
}

// ExtractTags returns the @tags mentioned in s, in order of appearance.
func ExtractTags(s string) []string {
	var tags []string
	for _, m := range tagPattern.FindAllStringSubmatch(s, -1) {
		tags = append(tags, m[2])
	}
	return tags
}

// SyncTags merges @tags mentioned in the title and text into the tag list.
func (t *Task) SyncTags() {
	for _, tag := range ExtractTags(t.Title) {
		t.AddTag(tag)
	}
	for _, tag := range ExtractTags(t.Text) {
		t.AddTag(tag)
	}
}

// AddSubtask records a direct child id. The store is responsible for cycle
// checks; this only deduplicates.
func (t *Task) AddSubtask(id string) {
	if id == "" || id == t.ID || slices.Contains(t.Subtasks, id) {
		return
	}
	t.Subtasks = append(t.Subtasks, id)
}

// RemoveSubtask removes a direct child id.
func (t *Task) RemoveSubtask(id string) {
	t.Subtasks = slices.DeleteFunc(t.Subtasks, func(s string) bool { return s == id })
}

// Clone creates a deep copy of the task.
func (t *Task) Clone() *Task {
	clone := *t
	clone.Tags = slices.Clone(t.Tags)
	clone.Subtasks = slices.Clone(t.Subtasks)
	return &clone
}

// AddedAtTime returns the creation timestamp as a time.Time.
func (t *Task) AddedAtTime() time.Time {
	return time.Unix(t.AddedAt, 0)
}

// Excerpt returns the task text collapsed to a single line of at most
// maxLen characters.
func (t *Task) Excerpt(maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	text := strings.Join(strings.Fields(t.Text), " ")
	if len(text) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return text[:maxLen]
	}
	return text[:maxLen-3] + "..."
}
