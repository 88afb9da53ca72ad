package plugin

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/tasknest/internal/store"
)

type nopViewManager struct{}

func (nopViewManager) OpenTask(id string, isNew bool) {}
func (nopViewManager) ShowBrowser()                   {}
func (nopViewManager) HideBrowser()                   {}

func newTestAPIs(t *testing.T) (*API, *API) {
	t.Helper()
	st := store.NewStore(nil)
	t.Cleanup(func() { _ = st.Close() })
	browser := NewBrowserAPI(st, nopViewManager{})
	editor := NewEditorAPI(st, nopViewManager{}, "01EDITED")
	return browser, editor
}

func TestAPI_Kind(t *testing.T) {
	browser, editor := newTestAPIs(t)

	assert.True(t, browser.IsBrowser())
	assert.False(t, browser.IsEditor())
	assert.True(t, editor.IsEditor())
	assert.False(t, editor.IsBrowser())
}

func TestAPI_Selected(t *testing.T) {
	browser, editor := newTestAPIs(t)

	// Editor selection is pinned to the edited task.
	assert.Equal(t, []string{"01EDITED"}, editor.Selected())
	editor.SetSelection([]string{"other"})
	assert.Equal(t, []string{"01EDITED"}, editor.Selected())

	assert.Empty(t, browser.Selected())
	browser.SetSelection([]string{"a", "b"})
	assert.Equal(t, []string{"a", "b"}, browser.Selected())
}

func TestAPI_SelectionListeners(t *testing.T) {
	browser, _ := newTestAPIs(t)

	var got []string
	calls := 0
	browser.OnSelectionChanged("owner", func(ids []string) {
		got = ids
		calls++
	})

	browser.SetSelection([]string{"x"})
	assert.Equal(t, []string{"x"}, got)
	assert.Equal(t, 1, calls)

	// Re-registering under the same owner replaces the listener.
	browser.OnSelectionChanged("owner", func(ids []string) { calls += 10 })
	browser.SetSelection([]string{"y"})
	assert.Equal(t, 11, calls)

	browser.RemoveSelectionListener("owner")
	browser.SetSelection([]string{"z"})
	assert.Equal(t, 11, calls)
}

func TestAPI_MenuItems(t *testing.T) {
	browser, _ := newTestAPIs(t)

	browser.AddMenuItem(MenuItem{Label: "Export"})
	browser.AddMenuItem(MenuItem{Label: "Sync"})
	require.Len(t, browser.MenuItems(), 2)

	browser.RemoveMenuItem("Export")
	items := browser.MenuItems()
	require.Len(t, items, 1)
	assert.Equal(t, "Sync", items[0].Label)
}

func TestAPI_EditorWidgets(t *testing.T) {
	_, editor := newTestAPIs(t)

	id1 := editor.AddEditorWidget(EditorWidget{Title: "first"})
	id2 := editor.AddEditorWidget(EditorWidget{Title: "second"})
	assert.NotEqual(t, id1, id2)
	assert.Len(t, editor.EditorWidgets(), 2)

	editor.RemoveEditorWidget(id1)
	assert.Len(t, editor.EditorWidgets(), 1)

	// Unknown handles are ignored.
	editor.RemoveEditorWidget(999)
	assert.Len(t, editor.EditorWidgets(), 1)
}

func TestLoadConfigObject_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	defaults := map[string]interface{}{"enabled": true, "limit": 5}

	// Missing file yields the defaults.
	cfg := LoadConfigObject("demo", "settings.yaml", defaults)
	assert.Equal(t, defaults, cfg)

	// A malformed file also yields the defaults.
	dir := ConfigDir("demo")
	require.NoError(t, createFile(dir, "settings.yaml", "{not valid: yaml"))
	cfg = LoadConfigObject("demo", "settings.yaml", defaults)
	assert.Equal(t, defaults, cfg)
}

func TestConfigObject_SaveLoadMerge(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	require.NoError(t, SaveConfigObject("demo", "settings.yaml",
		map[string]interface{}{"limit": 9}))

	cfg := LoadConfigObject("demo", "settings.yaml",
		map[string]interface{}{"enabled": true, "limit": 5})

	// Stored values win, untouched defaults survive.
	assert.Equal(t, 9, cfg["limit"])
	assert.Equal(t, true, cfg["enabled"])
}

func createFile(dir, name, content string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name), []byte(content), 0644)
}
