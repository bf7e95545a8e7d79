package help

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hariomahlawat/ProjectManagement-sub006/internal/keys"
)

func TestView_ListsBindings(t *testing.T) {
	t.Parallel()

	m := New(keys.DefaultKeyMap(), 200, 40)
	m.SetSize(200, 40)

	view := m.View()
	assert.Contains(t, view, "Keyboard Shortcuts")
	assert.Contains(t, view, "ctrl+r")
	assert.Contains(t, view, "mark all read")
	assert.Contains(t, view, "focused row")
}
