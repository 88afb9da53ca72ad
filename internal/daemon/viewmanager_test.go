package daemon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewManager_Visibility(t *testing.T) {
	vm := NewViewManager(nil)
	assert.False(t, vm.Visible(), "browser starts hidden")

	vm.ShowBrowser()
	assert.True(t, vm.Visible())

	vm.HideBrowser()
	assert.False(t, vm.Visible())
}

func TestViewManager_NoConnIsSafe(t *testing.T) {
	vm := NewViewManager(nil)

	// Without a bus connection the calls are state changes only.
	assert.NotPanics(t, func() {
		vm.OpenTask("some-id", true)
		vm.ShowBrowser()
		vm.HideBrowser()
	})
}
