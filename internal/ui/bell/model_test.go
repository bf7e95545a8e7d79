package bell_test

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hariomahlawat/ProjectManagement-sub006/internal/keys"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/model"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/ui"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/ui/bell"
	"github.com/hariomahlawat/ProjectManagement-sub006/tests/testutil"
)

func note(id int64, read bool) model.Notification {
	n := model.Notification{
		ID:        id,
		Title:     "n",
		Module:    "Projects",
		Route:     "/projects/1",
		CreatedAt: time.Date(2024, 1, int(id), 0, 0, 0, 0, time.UTC),
	}
	if read {
		n.MarkRead(n.CreatedAt)
	}
	return n
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newBell(t *testing.T, limit int) (bell.Model, *ui.Subscription, *testutil.FakeActions) {
	t.Helper()
	sub := ui.NewSubscription()
	t.Cleanup(sub.Close)
	actions := &testutil.FakeActions{}
	return bell.New(actions, sub, keys.DefaultKeyMap(), limit, 80, 24), sub, actions
}

func TestBell_SnapshotBoundedByLimit(t *testing.T) {
	t.Parallel()

	m, sub, _ := newBell(t, 2)
	m, _ = m.Update(ui.SnapshotMsg{
		Sub:    sub,
		Items:  []model.Notification{note(3, false), note(2, false), note(1, true)},
		Unread: 2,
	})

	assert.Equal(t, 2, m.Len())
	assert.Equal(t, 2, m.Unread())
	assert.Contains(t, m.View(), "Notifications")
}

func TestBell_IgnoresOtherSubscriptions(t *testing.T) {
	t.Parallel()

	m, _, _ := newBell(t, 5)
	other := ui.NewSubscription()
	defer other.Close()

	m, cmd := m.Update(ui.SnapshotMsg{Sub: other, Items: []model.Notification{note(1, false)}, Unread: 1})
	assert.Nil(t, cmd)
	assert.Zero(t, m.Len())
	assert.Zero(t, m.Unread())
	assert.Contains(t, m.View(), "No notifications")
}

func TestBell_SelectMarksReadThenNavigates(t *testing.T) {
	t.Parallel()

	m, sub, actions := newBell(t, 5)
	m, _ = m.Update(ui.SnapshotMsg{Sub: sub, Items: []model.Notification{note(4, false)}, Unread: 1})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg, ok := cmd().(ui.NavigateMsg)
	require.True(t, ok)
	assert.Equal(t, int64(4), msg.ID)
	assert.Equal(t, "/projects/1", msg.Route)
	assert.NoError(t, msg.MarkErr)
	assert.Equal(t, [][]int64{{4}}, actions.Read)
}

func TestBell_SelectNavigatesWhenMarkFails(t *testing.T) {
	t.Parallel()

	m, sub, actions := newBell(t, 5)
	actions.Err = errors.New("offline")
	m, _ = m.Update(ui.SnapshotMsg{Sub: sub, Items: []model.Notification{note(4, false)}, Unread: 1})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg := cmd().(ui.NavigateMsg)
	assert.Equal(t, "/projects/1", msg.Route)
	assert.Error(t, msg.MarkErr)
}

func TestBell_SelectReadItemSkipsMark(t *testing.T) {
	t.Parallel()

	m, sub, actions := newBell(t, 5)
	m, _ = m.Update(ui.SnapshotMsg{Sub: sub, Items: []model.Notification{note(4, true)}})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_, ok := cmd().(ui.NavigateMsg)
	assert.True(t, ok)
	assert.Empty(t, actions.Read)
}

func TestBell_ToggleRead(t *testing.T) {
	t.Parallel()

	m, sub, actions := newBell(t, 5)
	m, _ = m.Update(ui.SnapshotMsg{Sub: sub, Items: []model.Notification{note(2, true)}})

	_, cmd := m.Update(runes("x"))
	res := cmd().(ui.ActionResultMsg)
	assert.Equal(t, "mark unread", res.Op)
	assert.Equal(t, [][]int64{{2}}, actions.Unread)

	m, _ = m.Update(ui.SnapshotMsg{Sub: sub, Items: []model.Notification{note(2, false)}, Unread: 1})
	_, cmd = m.Update(runes("x"))
	res = cmd().(ui.ActionResultMsg)
	assert.Equal(t, "mark read", res.Op)
	assert.Equal(t, [][]int64{{2}}, actions.Read)
}

func TestBell_MarkAllRead(t *testing.T) {
	t.Parallel()

	m, _, actions := newBell(t, 5)
	_, cmd := m.Update(runes("R"))
	res := cmd().(ui.ActionResultMsg)
	assert.Equal(t, "mark all read", res.Op)
	assert.Equal(t, 1, actions.AllRead)
}
