package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("ENV", "")
		conf, err := NewConfig()
		require.NoError(t, err)

		assert.Equal(t, "DEV", conf.Env)
		assert.True(t, conf.Debug)
		assert.Equal(t, "Campus Companion", conf.AppName)
		assert.Equal(t, ":8080", conf.Server.Address)
		assert.Equal(t, 30*time.Minute, conf.Session.Timeout)
		assert.Equal(t, time.Minute, conf.Session.CheckInterval)
		assert.Equal(t, AuthModeSimulated, conf.Auth.Mode)
		assert.Equal(t, time.Second, conf.Auth.Latency)
		assert.Equal(t, time.Second, conf.UI.RedirectDelay)
		assert.True(t, conf.Portal.SeedData)
	})

	t.Run("test env drops cosmetic delays", func(t *testing.T) {
		t.Setenv("ENV", "test")
		conf, err := NewConfig()
		require.NoError(t, err)

		assert.Equal(t, "TEST", conf.Env)
		assert.True(t, conf.TestMode)
		assert.Zero(t, conf.Auth.Latency)
		assert.Zero(t, conf.UI.RedirectDelay)
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("ENV", "qa")
		t.Setenv("QA_SESSION_TIMEOUT", "45m")
		t.Setenv("QA_AUTH_MODE", "Directory")
		conf, err := NewConfig()
		require.NoError(t, err)

		assert.Equal(t, 45*time.Minute, conf.Session.Timeout)
		assert.Equal(t, AuthModeDirectory, conf.Auth.Mode)
	})

	t.Run("unknown auth mode", func(t *testing.T) {
		t.Setenv("ENV", "qa")
		t.Setenv("QA_AUTH_MODE", "ldap")
		_, err := NewConfig()
		assert.EqualError(t, err, `unknown auth mode "ldap"`)
	})
}

func TestConfig_DefaultFromEmail(t *testing.T) {
	conf := &Config{AppName: "Campus Companion", defaultFromEmail: "noreply@campus.test"}
	assert.Equal(t, "Campus Companion", conf.DefaultFromEmail().Name)
	assert.Equal(t, "noreply@campus.test", conf.DefaultFromEmail().Address)

	conf.defaultFromEmail = "Registrar <registrar@campus.test>"
	assert.Equal(t, "Registrar", conf.DefaultFromEmail().Name)
}
