// Package tui provides the BubbleTea-based task browser.
package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/tasknest/tasknest/internal/config"
	"github.com/tasknest/tasknest/internal/core"
	"github.com/tasknest/tasknest/internal/model"
	"github.com/tasknest/tasknest/internal/plugin"
	"github.com/tasknest/tasknest/internal/store"
)

// Mode represents the current UI mode.
type Mode int

const (
	ModeList Mode = iota
	ModeDetail
	ModeSearch
	ModeHelp
)

// Model is the main TUI model.
type Model struct {
	cfg   *config.Config
	store *store.Store

	mode Mode

	// Components
	list        list.Model
	viewport    viewport.Model
	searchInput textinput.Model
	help        help.Model

	// Browser-bound plugin API; plugins see the cursor as the
	// selection and contribute panels to the detail view.
	api *plugin.API

	// State
	tasks       []model.Task
	selected    *model.Task
	searchQuery string
	showClosed  bool
	width       int
	height      int
	ready       bool

	keys KeyMap

	statusMsg string
	statusErr bool

	refreshCh <-chan store.ChangeEvent
}

// taskItem wraps a task for the list component.
type taskItem struct {
	task  model.Task
	index int
}

func (i taskItem) Title() string {
	return i.task.Title
}

func (i taskItem) Description() string {
	parts := []string{i.task.Status}
	if i.task.DueDate.IsSet() {
		parts = append(parts, "due "+i.task.DueDate.Humanize())
	}
	if len(i.task.Tags) > 0 {
		parts = append(parts, "@"+strings.Join(i.task.Tags, " @"))
	}
	if excerpt := i.task.Excerpt(50); excerpt != "" {
		parts = append(parts, excerpt)
	}
	return strings.Join(parts, " - ")
}

func (i taskItem) FilterValue() string {
	return i.task.Title + " " + i.task.Text + " " + strings.Join(i.task.Tags, " ")
}

// taskDelegate is a custom list delegate for styling tasks.
type taskDelegate struct {
	list.DefaultDelegate
}

func newTaskDelegate() taskDelegate {
	d := list.NewDefaultDelegate()
	return taskDelegate{DefaultDelegate: d}
}

// Render renders a list item, dimming closed tasks and flagging overdue
// ones. All items are rendered consistently to avoid visual glitches.
func (d taskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(taskItem)
	if !ok {
		d.DefaultDelegate.Render(w, m, index, item)
		return
	}

	isSelected := index == m.Index()
	isClosed := ti.task.IsClosed()
	isLate := ti.task.DueDate.Overdue() && !isClosed

	itemWidth := m.Width() - d.DefaultDelegate.Styles.NormalTitle.GetHorizontalPadding()

	var titleStyle, descStyle lipgloss.Style
	switch {
	case isClosed:
		// Closed: dimmed/gray color
		if isSelected {
			titleStyle = d.DefaultDelegate.Styles.SelectedTitle.
				Foreground(lipgloss.Color("8"))
			descStyle = d.DefaultDelegate.Styles.SelectedDesc.
				Foreground(lipgloss.Color("8"))
		} else {
			titleStyle = d.DefaultDelegate.Styles.NormalTitle.
				Foreground(lipgloss.Color("8"))
			descStyle = d.DefaultDelegate.Styles.NormalDesc.
				Foreground(lipgloss.Color("8"))
		}
	case isLate:
		if isSelected {
			titleStyle = d.DefaultDelegate.Styles.SelectedTitle.
				Foreground(lipgloss.Color("9"))
			descStyle = d.DefaultDelegate.Styles.SelectedDesc
		} else {
			titleStyle = d.DefaultDelegate.Styles.NormalTitle.
				Foreground(lipgloss.Color("9"))
			descStyle = d.DefaultDelegate.Styles.NormalDesc
		}
	default:
		if isSelected {
			titleStyle = d.DefaultDelegate.Styles.SelectedTitle
			descStyle = d.DefaultDelegate.Styles.SelectedDesc
		} else {
			titleStyle = d.DefaultDelegate.Styles.NormalTitle
			descStyle = d.DefaultDelegate.Styles.NormalDesc
		}
	}

	title := ti.Title()
	switch ti.task.Status {
	case model.StatusDone:
		title = "[x] " + title
	case model.StatusDismiss:
		title = "[-] " + title
	default:
		title = "[ ] " + title
	}

	desc := ti.Description()
	if itemWidth > 0 {
		title = truncateLine(title, itemWidth)
		desc = truncateLine(desc, itemWidth)
	}

	fmt.Fprint(w, titleStyle.Render(title))
	fmt.Fprint(w, "\n")
	fmt.Fprint(w, descStyle.Render(desc))
}

// truncateLine shortens s to the given display width, keeping runes
// intact and accounting for double-width characters.
func truncateLine(s string, width int) string {
	return ansi.Truncate(s, width, "…")
}

// New creates a new TUI model.
func New(cfg *config.Config, s *store.Store) Model {
	delegate := newTaskDelegate()
	l := list.New(nil, delegate, 0, 0)
	l.Title = "Tasks"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	searchInput := textinput.New()
	searchInput.Placeholder = "Search..."
	searchInput.CharLimit = 100

	h := help.New()

	m := Model{
		cfg:         cfg,
		store:       s,
		mode:        ModeList,
		list:        l,
		searchInput: searchInput,
		help:        h,
		keys:        DefaultKeyMap(),
		api:         plugin.NewBrowserAPI(s, nil),
	}
	if cfg != nil {
		m.showClosed = cfg.TUI.ShowClosed
	}

	if s != nil {
		m.refreshCh = s.Subscribe()
	}

	return m
}

// PluginAPI returns the browser-bound plugin API. Plugins register
// their listeners and contributions on it before the program starts.
func (m Model) PluginAPI() *plugin.API {
	return m.api
}

// syncSelection mirrors the highlighted task into the plugin API so
// selection listeners fire as the cursor moves.
func (m Model) syncSelection() {
	if m.api == nil {
		return
	}
	if item, ok := m.list.SelectedItem().(taskItem); ok {
		m.api.SetSelection([]string{item.task.ID})
		return
	}
	m.api.SetSelection(nil)
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadTasks,
		m.watchForChanges,
	)
}

func (m Model) loadTasks() tea.Msg {
	return loadTasksMsg{}
}

type loadTasksMsg struct{}

// watchForChanges waits for the next store change event.
func (m Model) watchForChanges() tea.Msg {
	if m.refreshCh == nil {
		return nil
	}
	<-m.refreshCh
	return refreshMsg{}
}

type refreshMsg struct{}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		m.list.SetSize(msg.Width, msg.Height-2)
		m.viewport = viewport.New(msg.Width, msg.Height-4)
		m.viewport.YPosition = 2

		return m, nil

	case loadTasksMsg:
		m.tasks = m.fetchTasks()
		m.list.SetItems(m.buildListItems())
		m.syncSelection()
		return m, nil

	case refreshMsg:
		m.tasks = m.fetchTasks()
		m.list.SetItems(m.buildListItems())
		m.syncSelection()
		return m, m.watchForChanges

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil
	}

	// Update child components
	switch m.mode {
	case ModeList:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
	case ModeDetail:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	case ModeSearch:
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		if m.mode == ModeHelp {
			m.mode = ModeList
		} else {
			m.mode = ModeHelp
		}
		return m, nil
	}

	switch m.mode {
	case ModeList:
		return m.handleListKey(msg)
	case ModeDetail:
		return m.handleDetailKey(msg)
	case ModeSearch:
		return m.handleSearchKey(msg)
	case ModeHelp:
		if key.Matches(msg, m.keys.Back) {
			m.mode = ModeList
		}
		return m, nil
	}

	return m, nil
}

// handleListKey handles keys in list mode.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Enter):
		if item, ok := m.list.SelectedItem().(taskItem); ok {
			m.selected = &item.task
			m.mode = ModeDetail
			m.viewport.SetContent(m.renderDetail(item.task))
			m.viewport.GotoTop()
		}
		return m, nil

	case key.Matches(msg, m.keys.Done):
		return m.setSelectedStatus(model.StatusDone, "Task marked done")

	case key.Matches(msg, m.keys.Dismiss):
		return m.setSelectedStatus(model.StatusDismiss, "Task dismissed")

	case key.Matches(msg, m.keys.Reopen):
		return m.setSelectedStatus(model.StatusActive, "Task reopened")

	case key.Matches(msg, m.keys.Delete):
		if item, ok := m.list.SelectedItem().(taskItem); ok && m.store != nil {
			if err := m.store.Delete(item.task.ID); err != nil {
				return m, reportStatus("Delete failed: "+err.Error(), true)
			}
			m.tasks = m.fetchTasks()
			m.list.SetItems(m.buildListItems())
			m.syncSelection()
			return m, reportStatus("Task deleted permanently", false)
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleClosed):
		m.showClosed = !m.showClosed
		m.list.SetItems(m.buildListItems())
		if m.showClosed {
			return m, reportStatus("Showing all tasks", false)
		}
		return m, reportStatus("Hiding closed tasks", false)

	case key.Matches(msg, m.keys.Search):
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.list.SetItems(m.buildListItems())
		m.mode = ModeSearch
		m.searchInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadTasks
	}

	// Pass to list
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.syncSelection()
	return m, cmd
}

// setSelectedStatus changes the status of the selected task.
func (m Model) setSelectedStatus(status string, okMsg string) (tea.Model, tea.Cmd) {
	item, ok := m.list.SelectedItem().(taskItem)
	if !ok || m.store == nil {
		return m, nil
	}

	t := item.task
	if t.Status == status {
		return m, nil
	}
	if err := t.SetStatus(status, model.Date{}); err != nil {
		return m, reportStatus(err.Error(), true)
	}
	if err := m.store.Update(t); err != nil {
		return m, reportStatus("Update failed: "+err.Error(), true)
	}

	m.tasks = m.fetchTasks()
	m.list.SetItems(m.buildListItems())
	m.syncSelection()
	return m, reportStatus(okMsg, false)
}

// handleDetailKey handles keys in detail mode.
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = ModeList
		m.selected = nil
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.selected = nil
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.list.SetItems(m.buildListItems())
		m.mode = ModeSearch
		m.searchInput.Focus()
		return m, textinput.Blink
	}

	// Pass to viewport
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// handleSearchKey handles keys in search mode.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeList
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.list.SetItems(m.buildListItems())
		return m, nil

	case tea.KeyEnter:
		if item, ok := m.list.SelectedItem().(taskItem); ok {
			m.selected = &item.task
			m.mode = ModeDetail
			m.searchInput.Blur()
			m.viewport.SetContent(m.renderDetail(item.task))
			m.viewport.GotoTop()
		}
		return m, nil

	case tea.KeyUp, tea.KeyDown:
		// Allow navigating the list while searching
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		m.syncSelection()
		return m, cmd
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	// Live filtering: rebuild the list on each keystroke
	m.searchQuery = m.searchInput.Value()
	m.list.SetItems(m.buildListItems())
	m.syncSelection()

	return m, cmd
}

// fetchTasks gets tasks from the store in the configured sort order.
func (m Model) fetchTasks() []model.Task {
	if m.store == nil {
		return nil
	}
	tasks := m.store.All()

	opts := core.DefaultSortOptions()
	if m.cfg != nil {
		opts.Field = core.ParseSortField(m.cfg.Sort.Field)
		opts.Order = core.ParseSortOrder(m.cfg.Sort.Order)
	}
	core.Sort(tasks, opts)
	return tasks
}

// buildListItems creates list items from the current tasks.
func (m Model) buildListItems() []list.Item {
	tasks := m.tasks

	if !m.showClosed {
		var open []model.Task
		for _, t := range tasks {
			if !t.IsClosed() {
				open = append(open, t)
			}
		}
		tasks = open
	}

	if m.searchQuery != "" {
		tasks = core.Search(tasks, m.searchQuery)
	}

	items := make([]list.Item, len(tasks))
	for i, t := range tasks {
		items[i] = taskItem{task: t, index: i}
	}
	return items
}

// renderDetail renders the detail view for a task.
func (m Model) renderDetail(t model.Task) string {
	var s string

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8"))

	s += headerStyle.Render(t.Title) + "\n\n"

	s += labelStyle.Render("Status: ") + t.Status + "\n"
	if t.DueDate.IsSet() {
		s += labelStyle.Render("Due: ") + t.DueDate.String() + " (" + t.DueDate.Humanize() + ")\n"
	}
	if t.StartDate.IsSet() {
		s += labelStyle.Render("Start: ") + t.StartDate.String() + "\n"
	}
	if t.ClosedDate.IsSet() {
		s += labelStyle.Render("Closed: ") + t.ClosedDate.String() + "\n"
	}
	if len(t.Tags) > 0 {
		s += labelStyle.Render("Tags: ") + strings.Join(t.Tags, ", ") + "\n"
	}

	if len(t.Subtasks) > 0 {
		s += "\n" + labelStyle.Render("Subtasks:") + "\n"
		for _, sub := range t.Subtasks {
			line := "  - " + sub
			if m.store != nil {
				if child := m.store.Get(sub); child != nil {
					line = "  - " + child.Title + " (" + child.Status + ")"
				}
			}
			s += line + "\n"
		}
	}

	if t.Text != "" {
		s += "\n" + labelStyle.Render("Notes:") + "\n"
		s += t.Text + "\n"
	}

	// Panels contributed by plugins.
	if m.api != nil {
		for _, w := range m.api.EditorWidgets() {
			if out := w.Render(&t); out != "" {
				s += "\n" + labelStyle.Render(w.Title+":") + "\n"
				s += out + "\n"
			}
		}
	}

	return s
}

func reportStatus(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	switch m.mode {
	case ModeList:
		return m.viewList()
	case ModeDetail:
		return m.viewDetail()
	case ModeSearch:
		return m.viewSearch()
	case ModeHelp:
		return m.viewHelp()
	default:
		return ""
	}
}

func (m Model) viewList() string {
	s := m.list.View()

	if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))
		if m.statusErr {
			statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
		}
		s += "\n" + statusStyle.Render(m.statusMsg)
	} else {
		s += "\n" + m.help.ShortHelpView(m.keys.ShortHelp())
	}

	return s
}

func (m Model) viewDetail() string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1)

	header := headerStyle.Render("Task Detail")

	return header + "\n" + m.viewport.View() + "\n" + m.help.ShortHelpView(m.keys.ShortHelp())
}

func (m Model) viewSearch() string {
	matchCount := len(m.list.Items())
	countStr := fmt.Sprintf("(%d matches)", matchCount)

	searchBar := "Search: " + m.searchInput.View() + " " +
		lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(countStr)

	return searchBar + "\n" + m.list.View() + "\n" + m.help.ShortHelpView(m.keys.ShortHelp())
}

func (m Model) viewHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)

	s := titleStyle.Render("Keyboard Shortcuts") + "\n\n"
	s += m.help.FullHelpView(m.keys.FullHelp())
	s += "\n\nPress esc to go back."
	return s
}

// Run starts the TUI program.
func Run(cfg *config.Config, s *store.Store) error {
	p := tea.NewProgram(New(cfg, s), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
