package dbus

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/tasknest/tasknest/internal/core"
	"github.com/tasknest/tasknest/internal/model"
)

const (
	// Interface is the task service interface name.
	Interface = "org.tasknest.Tasknest"
	// ObjectPath is the task service object path.
	ObjectPath = "/org/tasknest/Tasknest"
	// BusName is the well-known bus name to claim.
	BusName = "org.tasknest.Tasknest"
)

// defaultTaskTitle is used when open_new_task is called without a title.
const defaultTaskTitle = "My new task"

// Requester is the task-store surface the service exposes on the bus.
type Requester interface {
	Get(id string) *model.Task
	Has(id string) bool
	All() []model.Task
	TaskIDs(statuses []string) []string
	NewTask(title string, tags []string) (model.Task, error)
	Update(t model.Task) error
	Delete(id string) error
	AddChild(parentID, childID string) error
}

// ViewManager receives the UI pass-through calls (editor and browser
// requests). The headless daemon answers them with signals.
type ViewManager interface {
	OpenTask(id string, isNew bool)
	ShowBrowser()
	HideBrowser()
}

// ConnAware is implemented by view managers that emit signals and
// therefore need the bus connection once the server has one.
type ConnAware interface {
	SetConn(conn *dbus.Conn)
}

// Server exposes the task store on the session bus under the
// org.tasknest.Tasknest interface. Method names on the bus are
// snake_case; they are a stable contract for external scripts.
type Server struct {
	conn   *dbus.Conn
	logger *slog.Logger

	req Requester
	vm  ViewManager

	busName string

	mu      sync.Mutex
	running bool
}

// NewServer creates a new task service server.
func NewServer(req Requester, vm ViewManager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger:  logger,
		req:     req,
		vm:      vm,
		busName: BusName,
	}
}

// SetBusName overrides the well-known bus name claimed on Start.
func (s *Server) SetBusName(name string) {
	if name != "" {
		s.busName = name
	}
}

// Start connects to the session bus and exports the task service.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.mu.Unlock()

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	s.conn = conn

	// Export with explicit snake_case names; godbus's reflection export
	// would capitalize them.
	methods := map[string]interface{}{
		"get_task_ids":          s.getTaskIDs,
		"get_task":              s.getTask,
		"get_tasks":             s.getTasks,
		"get_active_tasks":      s.getActiveTasks,
		"get_task_ids_filtered": s.getTaskIDsFiltered,
		"get_tasks_filtered":    s.getTasksFiltered,
		"has_task":              s.hasTask,
		"delete_task":           s.deleteTask,
		"new_task":              s.newTask,
		"modify_task":           s.modifyTask,
		"open_task_editor":      s.openTaskEditor,
		"open_new_task":         s.openNewTask,
		"hide_task_browser":     s.hideTaskBrowser,
		"show_task_browser":     s.showTaskBrowser,
	}
	if err := conn.ExportMethodTable(methods, ObjectPath, Interface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	// Export introspection data
	node := &introspect.Node{
		Name: ObjectPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    Interface,
				Methods: serviceMethods(),
				Signals: serviceSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), ObjectPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	if aware, ok := s.vm.(ConnAware); ok {
		aware.SetConn(conn)
	}

	reply, err := conn.RequestName(s.busName, dbus.NameFlagDoNotQueue|dbus.NameFlagReplaceExisting)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", s.busName)
	}

	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	s.logger.Info("D-Bus task service started", "interface", Interface, "path", ObjectPath, "name", s.busName)
	return nil
}

// Stop releases the bus name.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if s.conn != nil {
		if _, err := s.conn.ReleaseName(s.busName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
		// Don't close the connection as it's shared (SessionBus)
	}

	s.logger.Info("D-Bus task service stopped")
	return nil
}

// getTaskIDs returns the ids of tasks matching any of the comma
// separated statuses. An empty string selects active tasks.
// D-Bus method: get_task_ids(s) -> as
func (s *Server) getTaskIDs(statuses string) ([]string, *dbus.Error) {
	s.logger.Debug("get_task_ids called", "statuses", statuses)
	return s.req.TaskIDs(NormalizeStatuses(statuses)), nil
}

// getTask returns the dictionary form of a single task.
// D-Bus method: get_task(s) -> a{sv}
func (s *Server) getTask(id string) (map[string]dbus.Variant, *dbus.Error) {
	s.logger.Debug("get_task called", "id", id)

	t := s.req.Get(id)
	if t == nil {
		return nil, dbus.MakeFailedError(fmt.Errorf("task not found: %s", id))
	}
	return TaskToDict(t), nil
}

// getTasks returns all active tasks in dictionary form.
// D-Bus method: get_tasks() -> aa{sv}
func (s *Server) getTasks() ([]map[string]dbus.Variant, *dbus.Error) {
	s.logger.Debug("get_tasks called")

	ids := s.req.TaskIDs(nil)
	dicts := make([]map[string]dbus.Variant, 0, len(ids))
	for _, id := range ids {
		if t := s.req.Get(id); t != nil {
			dicts = append(dicts, TaskToDict(t))
		}
	}
	return dicts, nil
}

// getActiveTasks returns tasks in the work view: active and workable.
// The tags argument is accepted for interface compatibility but does
// not narrow the result.
// D-Bus method: get_active_tasks(as) -> aa{sv}
func (s *Server) getActiveTasks(tags []string) ([]map[string]dbus.Variant, *dbus.Error) {
	s.logger.Debug("get_active_tasks called", "tags", tags)
	return s.filteredDicts(core.FilterActive, core.FilterWorkable)
}

// getTaskIDsFiltered returns the ids of tasks passing every named
// filter.
// D-Bus method: get_task_ids_filtered(as) -> as
func (s *Server) getTaskIDsFiltered(filters []string) ([]string, *dbus.Error) {
	s.logger.Debug("get_task_ids_filtered called", "filters", filters)

	tasks, err := core.Apply(s.req.All(), filters...)
	if err != nil {
		return nil, dbus.MakeFailedError(err)
	}
	ids := make([]string, 0, len(tasks))
	for i := range tasks {
		ids = append(ids, tasks[i].ID)
	}
	return ids, nil
}

// getTasksFiltered returns the tasks passing every named filter, in
// dictionary form.
// D-Bus method: get_tasks_filtered(as) -> aa{sv}
func (s *Server) getTasksFiltered(filters []string) ([]map[string]dbus.Variant, *dbus.Error) {
	s.logger.Debug("get_tasks_filtered called", "filters", filters)
	return s.filteredDicts(filters...)
}

func (s *Server) filteredDicts(filters ...string) ([]map[string]dbus.Variant, *dbus.Error) {
	tasks, err := core.Apply(s.req.All(), filters...)
	if err != nil {
		return nil, dbus.MakeFailedError(err)
	}
	dicts := make([]map[string]dbus.Variant, 0, len(tasks))
	for i := range tasks {
		dicts = append(dicts, TaskToDict(&tasks[i]))
	}
	return dicts, nil
}

// hasTask reports whether the task exists.
// D-Bus method: has_task(s) -> b
func (s *Server) hasTask(id string) (bool, *dbus.Error) {
	s.logger.Debug("has_task called", "id", id)
	return s.req.Has(id), nil
}

// deleteTask removes a task.
// D-Bus method: delete_task(s) -> nothing
func (s *Server) deleteTask(id string) *dbus.Error {
	s.logger.Debug("delete_task called", "id", id)

	if err := s.req.Delete(id); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

// newTask creates a task with the given fields and returns its
// dictionary form.
// D-Bus method: new_task(sssssassas) -> a{sv}
func (s *Server) newTask(status, title, duedate, startdate, donedate string,
	tags []string, text string, subtasks []string) (map[string]dbus.Variant, *dbus.Error) {
	s.logger.Debug("new_task called", "title", title, "status", status)

	if title == "" {
		title = defaultTaskTitle
	}

	// Validate every field before the store sees anything, so a bad
	// call cannot leave a half-initialized task behind.
	due, err := model.ParseDate(duedate)
	if err != nil {
		return nil, dbus.MakeFailedError(err)
	}
	start, err := model.ParseDate(startdate)
	if err != nil {
		return nil, dbus.MakeFailedError(err)
	}
	done, err := model.ParseDate(donedate)
	if err != nil {
		return nil, dbus.MakeFailedError(err)
	}
	if status != "" {
		status = NormalizeStatus(status)
		if !slices.Contains(model.Statuses, status) {
			return nil, dbus.MakeFailedError(fmt.Errorf("%w: %q", model.ErrInvalidStatus, status))
		}
	}

	t, err := s.req.NewTask(title, tags)
	if err != nil {
		return nil, dbus.MakeFailedError(err)
	}

	t.DueDate = due
	t.StartDate = start
	t.Text = text
	if status != "" {
		if err := t.SetStatus(status, done); err != nil {
			return nil, dbus.MakeFailedError(err)
		}
	}
	t.SyncTags()

	if err := s.req.Update(t); err != nil {
		return nil, dbus.MakeFailedError(err)
	}
	for _, sub := range subtasks {
		if err := s.req.AddChild(t.ID, sub); err != nil {
			s.logger.Warn("failed to attach subtask", "parent", t.ID, "child", sub, "error", err)
		}
	}

	return s.getTask(t.ID)
}

// modifyTask applies dictionary fields to an existing task and returns
// its resulting dictionary form.
// D-Bus method: modify_task(sa{sv}) -> a{sv}
func (s *Server) modifyTask(id string, fields map[string]dbus.Variant) (map[string]dbus.Variant, *dbus.Error) {
	s.logger.Debug("modify_task called", "id", id)

	t := s.req.Get(id)
	if t == nil {
		return nil, dbus.MakeFailedError(fmt.Errorf("task not found: %s", id))
	}

	subtasks, err := ApplyDict(t, fields)
	if err != nil {
		return nil, dbus.MakeFailedError(err)
	}
	if err := s.req.Update(*t); err != nil {
		return nil, dbus.MakeFailedError(err)
	}
	for _, sub := range subtasks {
		if err := s.req.AddChild(id, sub); err != nil {
			s.logger.Warn("failed to attach subtask", "parent", id, "child", sub, "error", err)
		}
	}

	return s.getTask(id)
}

// openTaskEditor asks the view manager to open the editor on a task.
// D-Bus method: open_task_editor(s) -> nothing
func (s *Server) openTaskEditor(id string) *dbus.Error {
	s.logger.Debug("open_task_editor called", "id", id)

	if !s.req.Has(id) {
		return dbus.MakeFailedError(fmt.Errorf("task not found: %s", id))
	}
	if s.vm != nil {
		s.vm.OpenTask(id, false)
	}
	return nil
}

// openNewTask creates a task and asks the view manager to open it.
// D-Bus method: open_new_task(ss) -> nothing
func (s *Server) openNewTask(title, text string) *dbus.Error {
	s.logger.Debug("open_new_task called", "title", title)

	if title == "" {
		title = defaultTaskTitle
	}
	t, err := s.req.NewTask(title, nil)
	if err != nil {
		return dbus.MakeFailedError(err)
	}
	if text != "" {
		t.Text = text
		t.SyncTags()
		if err := s.req.Update(t); err != nil {
			return dbus.MakeFailedError(err)
		}
	}
	if s.vm != nil {
		s.vm.OpenTask(t.ID, true)
	}
	return nil
}

// hideTaskBrowser asks the view manager to hide the browser.
// D-Bus method: hide_task_browser() -> nothing
func (s *Server) hideTaskBrowser() *dbus.Error {
	s.logger.Debug("hide_task_browser called")
	if s.vm != nil {
		s.vm.HideBrowser()
	}
	return nil
}

// showTaskBrowser asks the view manager to show the browser.
// D-Bus method: show_task_browser() -> nothing
func (s *Server) showTaskBrowser() *dbus.Error {
	s.logger.Debug("show_task_browser called")
	if s.vm != nil {
		s.vm.ShowBrowser()
	}
	return nil
}

// serviceMethods returns the D-Bus method introspection data.
func serviceMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "get_task_ids",
			Args: []introspect.Arg{
				{Name: "statuses", Type: "s", Direction: "in"},
				{Name: "ids", Type: "as", Direction: "out"},
			},
		},
		{
			Name: "get_task",
			Args: []introspect.Arg{
				{Name: "id", Type: "s", Direction: "in"},
				{Name: "task", Type: "a{sv}", Direction: "out"},
			},
		},
		{
			Name: "get_tasks",
			Args: []introspect.Arg{
				{Name: "tasks", Type: "aa{sv}", Direction: "out"},
			},
		},
		{
			Name: "get_active_tasks",
			Args: []introspect.Arg{
				{Name: "tags", Type: "as", Direction: "in"},
				{Name: "tasks", Type: "aa{sv}", Direction: "out"},
			},
		},
		{
			Name: "get_task_ids_filtered",
			Args: []introspect.Arg{
				{Name: "filters", Type: "as", Direction: "in"},
				{Name: "ids", Type: "as", Direction: "out"},
			},
		},
		{
			Name: "get_tasks_filtered",
			Args: []introspect.Arg{
				{Name: "filters", Type: "as", Direction: "in"},
				{Name: "tasks", Type: "aa{sv}", Direction: "out"},
			},
		},
		{
			Name: "has_task",
			Args: []introspect.Arg{
				{Name: "id", Type: "s", Direction: "in"},
				{Name: "present", Type: "b", Direction: "out"},
			},
		},
		{
			Name: "delete_task",
			Args: []introspect.Arg{
				{Name: "id", Type: "s", Direction: "in"},
			},
		},
		{
			Name: "new_task",
			Args: []introspect.Arg{
				{Name: "status", Type: "s", Direction: "in"},
				{Name: "title", Type: "s", Direction: "in"},
				{Name: "duedate", Type: "s", Direction: "in"},
				{Name: "startdate", Type: "s", Direction: "in"},
				{Name: "donedate", Type: "s", Direction: "in"},
				{Name: "tags", Type: "as", Direction: "in"},
				{Name: "text", Type: "s", Direction: "in"},
				{Name: "subtasks", Type: "as", Direction: "in"},
				{Name: "task", Type: "a{sv}", Direction: "out"},
			},
		},
		{
			Name: "modify_task",
			Args: []introspect.Arg{
				{Name: "id", Type: "s", Direction: "in"},
				{Name: "fields", Type: "a{sv}", Direction: "in"},
				{Name: "task", Type: "a{sv}", Direction: "out"},
			},
		},
		{
			Name: "open_task_editor",
			Args: []introspect.Arg{
				{Name: "id", Type: "s", Direction: "in"},
			},
		},
		{
			Name: "open_new_task",
			Args: []introspect.Arg{
				{Name: "title", Type: "s", Direction: "in"},
				{Name: "text", Type: "s", Direction: "in"},
			},
		},
		{Name: "hide_task_browser"},
		{Name: "show_task_browser"},
	}
}

// serviceSignals returns the D-Bus signal introspection data.
func serviceSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "TaskOpened",
			Args: []introspect.Arg{
				{Name: "id", Type: "s"},
				{Name: "is_new", Type: "b"},
			},
		},
		{
			Name: "BrowserStateChanged",
			Args: []introspect.Arg{
				{Name: "visible", Type: "b"},
			},
		},
	}
}
