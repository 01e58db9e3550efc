// File: internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, "info", cfg.Logger().Level)
	assert.Equal(t, "lantern", cfg.Logger().ServiceName)
	assert.Equal(t, 1024.0, cfg.Viewport().Width)
	assert.Equal(t, 768.0, cfg.Viewport().Height)
	assert.Equal(t, 1.0, cfg.Viewport().Scale)
	assert.Equal(t, 30*time.Second, cfg.Network().Timeout)
	assert.Equal(t, 96.0, cfg.Render().DPI)

	require.NoError(t, cfg.Validate())
}

func TestNewConfigFromViperOverrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("viewport.width", 640.0)
	v.Set("viewport.height", 480.0)
	v.Set("network.user_agent", "test-agent")
	v.Set("logger.level", "debug")

	cfg, err := NewConfigFromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 640.0, cfg.Viewport().Width)
	assert.Equal(t, 480.0, cfg.Viewport().Height)
	assert.Equal(t, "test-agent", cfg.Network().UserAgent)
	assert.Equal(t, "debug", cfg.Logger().Level)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"zero width", "viewport.width", 0.0},
		{"negative height", "viewport.height", -1.0},
		{"zero scale", "viewport.scale", 0.0},
		{"zero timeout", "network.timeout", "0s"},
		{"negative rate limit", "network.rate_limit", -1.0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			v.Set(tc.key, tc.value)
			_, err := NewConfigFromViper(v)
			assert.Error(t, err)
		})
	}
}

func TestSetters(t *testing.T) {
	cfg := NewDefaultConfig()

	cfg.SetViewportSize(320, 240)
	cfg.SetViewportScale(2.0)
	assert.Equal(t, 320.0, cfg.Viewport().Width)
	assert.Equal(t, 240.0, cfg.Viewport().Height)
	assert.Equal(t, 2.0, cfg.Viewport().Scale)

	cfg.SetNetworkTimeout(5 * time.Second)
	cfg.SetNetworkIgnoreTLSErrors(true)
	assert.Equal(t, 5*time.Second, cfg.Network().Timeout)
	assert.True(t, cfg.Network().IgnoreTLSErrors)

	sc := SessionConfig{URL: "http://example.test/", Timing: true}
	cfg.SetSessionConfig(sc)
	assert.Equal(t, sc, cfg.Session())
}
