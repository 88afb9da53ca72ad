package main

import (
	"fmt"

	godbus "github.com/godbus/dbus/v5"

	"github.com/tasknest/tasknest/internal/config"
	"github.com/tasknest/tasknest/internal/core"
	"github.com/tasknest/tasknest/internal/dbus"
	"github.com/tasknest/tasknest/internal/model"
	"github.com/tasknest/tasknest/internal/store"
)

// backend abstracts where commands read and write tasks: a running
// daemon over the bus, or the tasks file directly when no daemon owns
// the bus name.
type backend struct {
	client *dbus.Client
	store  *store.Store
}

// openBackend connects to the daemon if one is reachable, otherwise
// opens the local store.
func openBackend() (*backend, error) {
	client, err := dbus.NewClientWithName(busName())
	if err == nil {
		if ok, aerr := client.Available(); aerr == nil && ok {
			logger.Debug("using daemon backend", "bus_name", busName())
			return &backend{client: client}, nil
		}
	}

	logger.Debug("daemon not reachable, using local store")
	s, err := openLocalStore()
	if err != nil {
		return nil, err
	}
	return &backend{store: s}, nil
}

// openLocalStore opens and hydrates the store from the tasks file.
func openLocalStore() (*store.Store, error) {
	if err := config.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	tasksPath := globalOpts.tasksFile
	if tasksPath == "" {
		tasksPath = config.TasksPath()
	}

	persistence, err := store.NewJSONLPersistence(tasksPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize persistence: %w", err)
	}

	s := store.NewStore(persistence)
	if err := s.Hydrate(); err != nil {
		logger.Warn("failed to hydrate store from disk", "error", err)
	}
	return s, nil
}

func (b *backend) close() {
	if b.client != nil {
		_ = b.client.Close()
	}
	if b.store != nil {
		_ = b.store.Close()
	}
}

// tasksFiltered returns the tasks passing every named filter.
func (b *backend) tasksFiltered(filters []string) ([]model.Task, error) {
	if b.client != nil {
		dicts, err := b.client.GetTasksFiltered(filters)
		if err != nil {
			return nil, err
		}
		tasks := make([]model.Task, 0, len(dicts))
		for _, dict := range dicts {
			t, err := dbus.TaskFromDict(dict)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, t)
		}
		return tasks, nil
	}
	return core.Apply(b.store.All(), filters...)
}

// get returns a task by id, or nil if it does not exist.
func (b *backend) get(id string) (*model.Task, error) {
	if b.client != nil {
		ok, err := b.client.HasTask(id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		dict, err := b.client.GetTask(id)
		if err != nil {
			return nil, err
		}
		t, err := dbus.TaskFromDict(dict)
		if err != nil {
			return nil, err
		}
		return &t, nil
	}
	return b.store.Get(id), nil
}

// newTask creates a task and returns its final state.
func (b *backend) newTask(title, due, start, text string, tags, subtasks []string) (model.Task, error) {
	if b.client != nil {
		dict, err := b.client.NewTask("", title, due, start, "", tags, text, subtasks)
		if err != nil {
			return model.Task{}, err
		}
		return dbus.TaskFromDict(dict)
	}

	// Parse the dates before creating anything so a bad flag value
	// does not leave a half-initialized task in the store.
	dueDate, err := model.ParseDate(due)
	if err != nil {
		return model.Task{}, err
	}
	startDate, err := model.ParseDate(start)
	if err != nil {
		return model.Task{}, err
	}

	t, err := b.store.NewTask(title, tags)
	if err != nil {
		return model.Task{}, err
	}
	t.DueDate = dueDate
	t.StartDate = startDate
	t.Text = text
	t.SyncTags()
	if err := b.store.Update(t); err != nil {
		return model.Task{}, err
	}
	for _, sub := range subtasks {
		if err := b.store.AddChild(t.ID, sub); err != nil {
			return model.Task{}, err
		}
	}
	updated := b.store.Get(t.ID)
	if updated == nil {
		return model.Task{}, fmt.Errorf("task vanished after creation: %s", t.ID)
	}
	return *updated, nil
}

// modify applies dictionary fields to a task and returns its new state.
func (b *backend) modify(id string, fields map[string]godbus.Variant) (model.Task, error) {
	if b.client != nil {
		dict, err := b.client.ModifyTask(id, fields)
		if err != nil {
			return model.Task{}, err
		}
		return dbus.TaskFromDict(dict)
	}

	t := b.store.Get(id)
	if t == nil {
		return model.Task{}, fmt.Errorf("task not found: %s", id)
	}
	subtasks, err := dbus.ApplyDict(t, fields)
	if err != nil {
		return model.Task{}, err
	}
	if err := b.store.Update(*t); err != nil {
		return model.Task{}, err
	}
	for _, sub := range subtasks {
		if err := b.store.AddChild(id, sub); err != nil {
			return model.Task{}, err
		}
	}
	updated := b.store.Get(id)
	if updated == nil {
		return model.Task{}, fmt.Errorf("task vanished after update: %s", id)
	}
	return *updated, nil
}

// delete removes a task.
func (b *backend) delete(id string) error {
	if b.client != nil {
		return b.client.DeleteTask(id)
	}
	return b.store.Delete(id)
}

// resolve finds a task by id, 1-based index into the filtered list, or
// closest title match.
func (b *backend) resolve(arg string, filters []string) (*model.Task, error) {
	t, err := b.get(arg)
	if err != nil {
		return nil, err
	}
	if t != nil {
		return t, nil
	}

	tasks, err := b.tasksFiltered(filters)
	if err != nil {
		return nil, err
	}

	if idx, ok := parseIndex(arg); ok {
		if t := core.LookupByIndex(tasks, idx); t != nil {
			return t, nil
		}
	}
	if t, score := core.ClosestTitle(tasks, arg); t != nil {
		logger.Debug("resolved task by title", "arg", arg, "title", t.Title, "score", score)
		return t, nil
	}
	return nil, fmt.Errorf("no task matches %q", arg)
}

func parseIndex(s string) (int, bool) {
	idx := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		idx = idx*10 + int(r-'0')
	}
	return idx, idx > 0
}
