// Package store provides the task store backing the D-Bus service.
package store

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/tasknest/tasknest/internal/model"
)

// ChangeType indicates the type of store change.
type ChangeType int

const (
	// ChangeTypeAdd indicates a task was added.
	ChangeTypeAdd ChangeType = iota
	// ChangeTypeUpdate indicates a task was modified.
	ChangeTypeUpdate
	// ChangeTypeDelete indicates a task was deleted.
	ChangeTypeDelete
	// ChangeTypeClear indicates all tasks were cleared.
	ChangeTypeClear
)

// ChangeEvent signals store content changes.
type ChangeEvent struct {
	Type   ChangeType
	TaskID string
	Count  int
}

// Store errors.
var (
	ErrStoreClosed  = errors.New("store is closed")
	ErrTaskNotFound = errors.New("task not found")
	ErrCycle        = errors.New("subtask relation would create a cycle")
)

// Store manages the task tree with thread-safe operations.
type Store struct {
	mu     sync.RWMutex
	tasks  []model.Task
	index  map[string]int    // task id -> slice index
	parent map[string]string // child id -> parent id

	persistence Persistence

	subscribers []chan ChangeEvent
	closed      bool
}

// NewStore creates a new Store. If persistence is not nil it is used to
// persist tasks.
func NewStore(persistence Persistence) *Store {
	return &Store{
		tasks:       make([]model.Task, 0),
		index:       make(map[string]int),
		parent:      make(map[string]string),
		persistence: persistence,
		subscribers: make([]chan ChangeEvent, 0),
	}
}

// NewTask creates, stores, and persists a new task. Tags are applied on
// top of any @tags extracted from the title.
func (s *Store) NewTask(title string, tags []string) (model.Task, error) {
	t, err := model.NewTask(title)
	if err != nil {
		return model.Task{}, err
	}
	for _, tag := range tags {
		t.AddTag(tag)
	}

	if err := s.Add(*t); err != nil {
		return model.Task{}, err
	}
	return *t, nil
}

// Add adds a task to the store. Tasks with a duplicate id are skipped.
func (s *Store) Add(t model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if err := t.Validate(); err != nil {
		return err
	}
	if _, exists := s.index[t.ID]; exists {
		return nil
	}

	idx := len(s.tasks)
	s.tasks = append(s.tasks, t)
	s.index[t.ID] = idx
	for _, child := range t.Subtasks {
		s.parent[child] = t.ID
	}

	if s.persistence != nil {
		if err := s.persistence.Append(t); err != nil {
			return err
		}
	}

	s.notifyChange(ChangeEvent{Type: ChangeTypeAdd, TaskID: t.ID, Count: 1})
	return nil
}

// Get returns a copy of the task, or nil if it does not exist.
func (s *Store) Get(id string) *model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx, exists := s.index[id]; exists {
		return s.tasks[idx].Clone()
	}
	return nil
}

// Has reports whether the task exists.
func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.index[id]
	return exists
}

// Update replaces a stored task with the given one.
func (s *Store) Update(t model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	idx, exists := s.index[t.ID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, t.ID)
	}
	if err := t.Validate(); err != nil {
		return err
	}

	// Keep the parent index in sync with the new subtask list.
	for _, child := range s.tasks[idx].Subtasks {
		if s.parent[child] == t.ID {
			delete(s.parent, child)
		}
	}
	for _, child := range t.Subtasks {
		s.parent[child] = t.ID
	}

	t.Touch()
	s.tasks[idx] = t

	if s.persistence != nil {
		if err := s.persistence.Rewrite(s.tasks); err != nil {
			return err
		}
	}

	s.notifyChange(ChangeEvent{Type: ChangeTypeUpdate, TaskID: t.ID, Count: 1})
	return nil
}

// Delete removes a task. Its children are detached (they become roots) and
// any reference from its parent is dropped.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	idx, exists := s.index[id]
	if !exists {
		return nil
	}

	for _, child := range s.tasks[idx].Subtasks {
		if s.parent[child] == id {
			delete(s.parent, child)
		}
	}
	if parentID, ok := s.parent[id]; ok {
		if pidx, ok := s.index[parentID]; ok {
			s.tasks[pidx].RemoveSubtask(id)
		}
		delete(s.parent, id)
	}

	s.tasks = slices.Delete(s.tasks, idx, idx+1)
	s.rebuildIndex()

	if s.persistence != nil {
		if err := s.persistence.Rewrite(s.tasks); err != nil {
			return err
		}
	}

	s.notifyChange(ChangeEvent{Type: ChangeTypeDelete, TaskID: id, Count: 1})
	return nil
}

// AddChild makes child a subtask of parent. Both must exist, and the
// relation may not introduce a cycle.
func (s *Store) AddChild(parentID, childID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	pidx, exists := s.index[parentID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, parentID)
	}
	if _, exists := s.index[childID]; !exists {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, childID)
	}
	if parentID == childID {
		return ErrCycle
	}

	// The child may not be an ancestor of the parent.
	for cur := parentID; ; {
		p, ok := s.parent[cur]
		if !ok {
			break
		}
		if p == childID {
			return ErrCycle
		}
		cur = p
	}

	// Detach from a previous parent first.
	if prev, ok := s.parent[childID]; ok && prev != parentID {
		if previdx, ok := s.index[prev]; ok {
			s.tasks[previdx].RemoveSubtask(childID)
		}
	}

	s.tasks[pidx].AddSubtask(childID)
	s.parent[childID] = parentID

	if s.persistence != nil {
		if err := s.persistence.Rewrite(s.tasks); err != nil {
			return err
		}
	}

	s.notifyChange(ChangeEvent{Type: ChangeTypeUpdate, TaskID: parentID, Count: 1})
	return nil
}

// Children returns the direct subtask ids of a task.
func (s *Store) Children(id string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx, exists := s.index[id]; exists {
		return slices.Clone(s.tasks[idx].Subtasks)
	}
	return nil
}

// Parent returns the parent id of a task, if it has one.
func (s *Store) Parent(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.parent[id]
	return p, ok
}

// TaskIDs returns the ids of tasks matching any of the given statuses.
// An empty status list means active tasks only, matching the default view
// of the task browser.
func (s *Store) TaskIDs(statuses []string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(statuses) == 0 {
		statuses = []string{model.StatusActive}
	}

	ids := make([]string, 0, len(s.tasks))
	for i := range s.tasks {
		if slices.Contains(statuses, s.tasks[i].Status) {
			ids = append(ids, s.tasks[i].ID)
		}
	}
	return ids
}

// All returns copies of all tasks ordered by creation time.
func (s *Store) All() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Task, len(s.tasks))
	copy(result, s.tasks)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].AddedAt < result[j].AddedAt
	})
	return result
}

// Count returns the total number of tasks.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// Clear removes all tasks from the store.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	count := len(s.tasks)
	s.tasks = make([]model.Task, 0)
	s.index = make(map[string]int)
	s.parent = make(map[string]string)

	if s.persistence != nil {
		if err := s.persistence.Clear(); err != nil {
			return err
		}
	}

	s.notifyChange(ChangeEvent{Type: ChangeTypeClear, Count: count})
	return nil
}

// Hydrate loads tasks from persistence into the store.
func (s *Store) Hydrate() error {
	if s.persistence == nil {
		return nil
	}

	tasks, err := s.persistence.Load()
	if err != nil {
		return err
	}

	s.mu.Lock()
	added := 0
	for i := range tasks {
		t := tasks[i]
		if _, exists := s.index[t.ID]; exists {
			continue
		}
		idx := len(s.tasks)
		s.tasks = append(s.tasks, t)
		s.index[t.ID] = idx
		for _, child := range t.Subtasks {
			s.parent[child] = t.ID
		}
		added++
	}
	s.mu.Unlock()

	if added > 0 {
		s.notifyChange(ChangeEvent{Type: ChangeTypeAdd, Count: added})
	}
	return nil
}

// Reload replaces the in-memory state with the persisted one. Used
// when the backing file was modified by another process. The new state
// is built first and swapped in under the lock, so concurrent readers
// see either the old or the new state, never an empty store. A load
// failure leaves the current state untouched.
func (s *Store) Reload() error {
	if s.persistence == nil {
		return nil
	}

	loaded, err := s.persistence.Load()
	if err != nil {
		return err
	}

	tasks := make([]model.Task, 0, len(loaded))
	index := make(map[string]int, len(loaded))
	parent := make(map[string]string)
	for i := range loaded {
		t := loaded[i]
		if _, exists := index[t.ID]; exists {
			continue
		}
		index[t.ID] = len(tasks)
		tasks = append(tasks, t)
		for _, child := range t.Subtasks {
			parent[child] = t.ID
		}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	s.tasks = tasks
	s.index = index
	s.parent = parent
	count := len(tasks)
	s.mu.Unlock()

	s.notifyChange(ChangeEvent{Type: ChangeTypeUpdate, Count: count})
	return nil
}

// Subscribe returns a channel that receives change events.
func (s *Store) Subscribe() <-chan ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan ChangeEvent, 10)
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (s *Store) Unsubscribe(ch <-chan ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subscribers {
		if sub == ch {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// Close releases resources and closes all subscriber channels.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for _, ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = nil

	if s.persistence != nil {
		return s.persistence.Close()
	}
	return nil
}

// rebuildIndex recomputes the id index after a slice mutation.
// Caller must hold the write lock.
func (s *Store) rebuildIndex() {
	s.index = make(map[string]int, len(s.tasks))
	for i := range s.tasks {
		s.index[s.tasks[i].ID] = i
	}
}

// notifyChange sends a change event to all subscribers (non-blocking).
func (s *Store) notifyChange(event ChangeEvent) {
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Channel full, skip
		}
	}
}
