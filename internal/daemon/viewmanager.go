// Package daemon holds the headless pieces of tasknestd: the view
// manager answering UI requests with bus signals, and daemon wiring.
package daemon

import (
	"log/slog"
	"sync"

	godbus "github.com/godbus/dbus/v5"

	"github.com/tasknest/tasknest/internal/dbus"
)

// Signal names emitted on the task service interface.
const (
	SignalTaskOpened          = dbus.Interface + ".TaskOpened"
	SignalBrowserStateChanged = dbus.Interface + ".BrowserStateChanged"
)

// ViewManager is the headless stand-in for a desktop shell. It has no
// windows to open; instead it tracks browser visibility and broadcasts
// editor and browser requests as bus signals, so an attached frontend
// can react to them.
type ViewManager struct {
	logger *slog.Logger

	mu      sync.Mutex
	conn    *godbus.Conn
	visible bool
}

// NewViewManager creates a headless view manager. The browser starts
// hidden.
func NewViewManager(logger *slog.Logger) *ViewManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &ViewManager{logger: logger}
}

// SetConn attaches the bus connection used for signal emission. Called
// by the server once it is on the bus.
func (v *ViewManager) SetConn(conn *godbus.Conn) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.conn = conn
}

// OpenTask broadcasts a request to open the editor on a task.
func (v *ViewManager) OpenTask(id string, isNew bool) {
	v.logger.Info("task editor requested", "id", id, "new", isNew)
	v.emit(SignalTaskOpened, id, isNew)
}

// ShowBrowser marks the browser visible and broadcasts the change.
func (v *ViewManager) ShowBrowser() {
	v.setVisible(true)
}

// HideBrowser marks the browser hidden and broadcasts the change.
func (v *ViewManager) HideBrowser() {
	v.setVisible(false)
}

// Visible reports the current browser visibility.
func (v *ViewManager) Visible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visible
}

func (v *ViewManager) setVisible(visible bool) {
	v.mu.Lock()
	v.visible = visible
	v.mu.Unlock()

	v.logger.Info("browser visibility changed", "visible", visible)
	v.emit(SignalBrowserStateChanged, visible)
}

// emit sends a signal if a bus connection is attached.
func (v *ViewManager) emit(name string, values ...interface{}) {
	v.mu.Lock()
	conn := v.conn
	v.mu.Unlock()

	if conn == nil {
		return
	}
	if err := conn.Emit(dbus.ObjectPath, name, values...); err != nil {
		v.logger.Warn("failed to emit signal", "signal", name, "error", err)
	}
}
