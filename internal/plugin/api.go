// Package plugin provides the surface plugins program against: access
// to the task store and view manager, the current selection, UI
// contribution points, and per-plugin configuration objects.
package plugin

import (
	"slices"
	"sync"

	"github.com/tasknest/tasknest/internal/model"
)

// Requester is the task-store surface handed to plugins.
type Requester interface {
	Get(id string) *model.Task
	Has(id string) bool
	All() []model.Task
	NewTask(title string, tags []string) (model.Task, error)
	Update(t model.Task) error
	Delete(id string) error
	AddChild(parentID, childID string) error
}

// ViewManager is the UI surface handed to plugins.
type ViewManager interface {
	OpenTask(id string, isNew bool)
	ShowBrowser()
	HideBrowser()
}

// SelectionFunc is called when the browser selection changes.
type SelectionFunc func(selected []string)

// MenuItem is a menu contribution from a plugin.
type MenuItem struct {
	Label    string
	Activate func()
}

// EditorWidget is an editor panel contribution from a plugin.
type EditorWidget struct {
	Title  string
	Render func(task *model.Task) string
}

// API is the plugin engine's API. Two instances exist per session: one
// bound to the task browser and one to the task editor, and a plugin
// can tell them apart with IsBrowser and IsEditor.
type API struct {
	req Requester
	vm  ViewManager

	mu                 sync.Mutex
	editorTaskID       string
	browserSelection   []string
	selectionListeners map[string]SelectionFunc
	menuItems          []MenuItem
	editorWidgets      map[int]EditorWidget
	nextWidgetID       int
}

// NewBrowserAPI creates an API instance bound to the task browser.
func NewBrowserAPI(req Requester, vm ViewManager) *API {
	return &API{
		req:                req,
		vm:                 vm,
		selectionListeners: make(map[string]SelectionFunc),
		editorWidgets:      make(map[int]EditorWidget),
	}
}

// NewEditorAPI creates an API instance bound to an editor on one task.
func NewEditorAPI(req Requester, vm ViewManager, taskID string) *API {
	api := NewBrowserAPI(req, vm)
	api.editorTaskID = taskID
	return api
}

// IsEditor reports whether this API is bound to a task editor.
func (a *API) IsEditor() bool { return a.editorTaskID != "" }

// IsBrowser reports whether this API is bound to the task browser.
func (a *API) IsBrowser() bool { return !a.IsEditor() }

// Requester returns the task store surface.
func (a *API) Requester() Requester { return a.req }

// ViewManager returns the view manager.
func (a *API) ViewManager() ViewManager { return a.vm }

// Selected returns the edited task id in an editor API, or the current
// browser selection otherwise.
func (a *API) Selected() []string {
	if a.IsEditor() {
		return []string{a.editorTaskID}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.browserSelection)
}

// SetSelection records the browser selection and notifies listeners.
// Editor APIs ignore it; their selection is fixed to the edited task.
func (a *API) SetSelection(ids []string) {
	if a.IsEditor() {
		return
	}

	a.mu.Lock()
	a.browserSelection = slices.Clone(ids)
	listeners := make([]SelectionFunc, 0, len(a.selectionListeners))
	for _, fn := range a.selectionListeners {
		listeners = append(listeners, fn)
	}
	a.mu.Unlock()

	for _, fn := range listeners {
		fn(slices.Clone(ids))
	}
}

// OnSelectionChanged registers a selection listener under an owner key,
// replacing any previous listener from the same owner.
func (a *API) OnSelectionChanged(owner string, fn SelectionFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.selectionListeners[owner] = fn
}

// RemoveSelectionListener drops the listener registered by an owner.
// Plugins call this on deactivation.
func (a *API) RemoveSelectionListener(owner string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.selectionListeners, owner)
}

// AddMenuItem contributes a menu entry.
func (a *API) AddMenuItem(item MenuItem) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.menuItems = append(a.menuItems, item)
}

// RemoveMenuItem removes the menu entries with the given label.
func (a *API) RemoveMenuItem(label string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.menuItems = slices.DeleteFunc(a.menuItems, func(m MenuItem) bool {
		return m.Label == label
	})
}

// MenuItems returns the contributed menu entries.
func (a *API) MenuItems() []MenuItem {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.menuItems)
}

// AddEditorWidget contributes an editor panel and returns its handle.
func (a *API) AddEditorWidget(w EditorWidget) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextWidgetID++
	a.editorWidgets[a.nextWidgetID] = w
	return a.nextWidgetID
}

// RemoveEditorWidget removes a previously contributed editor panel.
// Unknown handles are ignored.
func (a *API) RemoveEditorWidget(id int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.editorWidgets, id)
}

// EditorWidgets returns the contributed editor panels.
func (a *API) EditorWidgets() []EditorWidget {
	a.mu.Lock()
	defer a.mu.Unlock()
	widgets := make([]EditorWidget, 0, len(a.editorWidgets))
	for _, w := range a.editorWidgets {
		widgets = append(widgets, w)
	}
	return widgets
}
