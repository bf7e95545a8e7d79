package setup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hariomahlawat/ProjectManagement-sub006/internal/model"
)

func TestValidateURL(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validateURL("https://pm.example.com/api"))
	assert.Error(t, validateURL(""))
	assert.Error(t, validateURL("pm.example.com"))
	assert.Error(t, validateURL("://bad"))

	opt := optional(validateURL)
	assert.NoError(t, opt("  "))
	assert.Error(t, opt("nope"))
}

func TestValidateRequired(t *testing.T) {
	t.Parallel()

	assert.EqualError(t, validateRequired("Token")(" "), "Token is required")
	assert.NoError(t, validateRequired("Token")("abc"))
}

func TestApply_NormalizesValues(t *testing.T) {
	t.Parallel()

	cfg := &model.AppConfig{}
	m := New(cfg, nil, func(*model.AppConfig, string) error { return nil }, 80, 24)
	m.vals.apiBase = " https://pm.example.com/api/notifications/ "
	m.vals.hubURL = "https://pm.example.com/hubs/notifications"
	m.vals.centerURL = "/notifications"

	m.apply()

	assert.Equal(t, "https://pm.example.com/api/notifications", cfg.Server.APIBase)
	assert.Equal(t, "https://pm.example.com/hubs/notifications", cfg.Server.HubURL)
	assert.Equal(t, "/notifications", cfg.Server.CenterURLOverride)
	assert.True(t, cfg.Server.Authenticated)
}

func TestValidateAndSave(t *testing.T) {
	t.Parallel()

	cfg := &model.AppConfig{}
	var savedToken string
	save := func(_ *model.AppConfig, token string) error {
		savedToken = token
		return nil
	}

	m := New(cfg, nil, save, 80, 24)
	m.vals.token = " secret "
	msg := m.validateAndSave()()
	assert.Equal(t, savedMsg{}, msg)
	assert.Equal(t, "secret", savedToken)

	updated, cmd := m.Update(msg)
	require.NotNil(t, cmd)
	done, ok := cmd().(DoneMsg)
	require.True(t, ok)
	assert.Same(t, cfg, done.Config)
	assert.False(t, updated.Saving())
}

func TestValidateAndSave_ValidationFails(t *testing.T) {
	t.Parallel()

	saved := false
	validate := func(context.Context, *model.AppConfig, string) error { return errors.New("401") }
	m := New(&model.AppConfig{}, validate, func(*model.AppConfig, string) error {
		saved = true
		return nil
	}, 80, 24)

	msg := m.validateAndSave()().(savedMsg)
	require.Error(t, msg.err)
	assert.ErrorContains(t, msg.err, "connecting to server")
	assert.False(t, saved)

	m, _ = m.Update(msg)
	assert.Error(t, m.Err())
	assert.Contains(t, m.View(), "401")
}
