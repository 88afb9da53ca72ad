package dbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Client is a typed wrapper around the org.tasknest.Tasknest bus
// object, used by the CLI to talk to a running daemon.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject

	busName string
}

// NewClient connects to the session bus and binds the task service
// object under the default bus name.
func NewClient() (*Client, error) {
	return NewClientWithName(BusName)
}

// NewClientWithName binds the task service object under a custom bus
// name, matching a daemon started with a bus name override.
func NewClientWithName(name string) (*Client, error) {
	if name == "" {
		name = BusName
	}
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Client{
		conn:    conn,
		obj:     conn.Object(name, ObjectPath),
		busName: name,
	}, nil
}

// Close releases the client. The shared session bus connection stays
// open.
func (c *Client) Close() error {
	return nil
}

// Available reports whether a daemon currently owns the bus name.
func (c *Client) Available() (bool, error) {
	var owned bool
	err := c.conn.BusObject().Call("org.freedesktop.DBus.NameHasOwner", 0, c.busName).Store(&owned)
	if err != nil {
		return false, fmt.Errorf("failed to query bus name owner: %w", err)
	}
	return owned, nil
}

func (c *Client) call(method string, args ...interface{}) *dbus.Call {
	return c.obj.Call(Interface+"."+method, 0, args...)
}

// GetTaskIDs returns the ids of tasks matching any of the comma
// separated statuses.
func (c *Client) GetTaskIDs(statuses string) ([]string, error) {
	var ids []string
	if err := c.call("get_task_ids", statuses).Store(&ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// GetTask returns the dictionary form of a single task.
func (c *Client) GetTask(id string) (map[string]dbus.Variant, error) {
	var dict map[string]dbus.Variant
	if err := c.call("get_task", id).Store(&dict); err != nil {
		return nil, err
	}
	return dict, nil
}

// GetTasks returns all active tasks.
func (c *Client) GetTasks() ([]map[string]dbus.Variant, error) {
	var dicts []map[string]dbus.Variant
	if err := c.call("get_tasks").Store(&dicts); err != nil {
		return nil, err
	}
	return dicts, nil
}

// GetActiveTasks returns the tasks in the work view.
func (c *Client) GetActiveTasks(tags []string) ([]map[string]dbus.Variant, error) {
	if tags == nil {
		tags = []string{}
	}
	var dicts []map[string]dbus.Variant
	if err := c.call("get_active_tasks", tags).Store(&dicts); err != nil {
		return nil, err
	}
	return dicts, nil
}

// GetTaskIDsFiltered returns the ids of tasks passing every named
// filter.
func (c *Client) GetTaskIDsFiltered(filters []string) ([]string, error) {
	if filters == nil {
		filters = []string{}
	}
	var ids []string
	if err := c.call("get_task_ids_filtered", filters).Store(&ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// GetTasksFiltered returns the tasks passing every named filter.
func (c *Client) GetTasksFiltered(filters []string) ([]map[string]dbus.Variant, error) {
	if filters == nil {
		filters = []string{}
	}
	var dicts []map[string]dbus.Variant
	if err := c.call("get_tasks_filtered", filters).Store(&dicts); err != nil {
		return nil, err
	}
	return dicts, nil
}

// HasTask reports whether the task exists.
func (c *Client) HasTask(id string) (bool, error) {
	var present bool
	if err := c.call("has_task", id).Store(&present); err != nil {
		return false, err
	}
	return present, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(id string) error {
	return c.call("delete_task", id).Err
}

// NewTask creates a task and returns its dictionary form.
func (c *Client) NewTask(status, title, duedate, startdate, donedate string,
	tags []string, text string, subtasks []string) (map[string]dbus.Variant, error) {
	if tags == nil {
		tags = []string{}
	}
	if subtasks == nil {
		subtasks = []string{}
	}
	var dict map[string]dbus.Variant
	err := c.call("new_task", status, title, duedate, startdate, donedate, tags, text, subtasks).Store(&dict)
	if err != nil {
		return nil, err
	}
	return dict, nil
}

// ModifyTask applies dictionary fields to a task and returns its
// resulting dictionary form.
func (c *Client) ModifyTask(id string, fields map[string]dbus.Variant) (map[string]dbus.Variant, error) {
	if fields == nil {
		fields = map[string]dbus.Variant{}
	}
	var dict map[string]dbus.Variant
	if err := c.call("modify_task", id, fields).Store(&dict); err != nil {
		return nil, err
	}
	return dict, nil
}

// OpenTaskEditor asks the daemon to open the editor on a task.
func (c *Client) OpenTaskEditor(id string) error {
	return c.call("open_task_editor", id).Err
}

// OpenNewTask asks the daemon to create a task and open it.
func (c *Client) OpenNewTask(title, text string) error {
	return c.call("open_new_task", title, text).Err
}

// HideTaskBrowser asks the daemon to hide the task browser.
func (c *Client) HideTaskBrowser() error {
	return c.call("hide_task_browser").Err
}

// ShowTaskBrowser asks the daemon to show the task browser.
func (c *Client) ShowTaskBrowser() error {
	return c.call("show_task_browser").Err
}
