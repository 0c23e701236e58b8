package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dexpr.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)

	cfg, err = loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "%0.6f", cfg.FloatFormat)
	assert.Equal(t, "d", cfg.IntegerFormat)
	assert.Equal(t, 10*time.Second, cfg.IdleReclaim)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
float_format: "%0.2f"
integer_format: H
string_case_sense: true
no_env: true
idle_reclaim: 2s
log_level: debug
`)
	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "%0.2f", cfg.FloatFormat)
	assert.Equal(t, "h", cfg.IntegerFormat)
	assert.True(t, cfg.StringCaseSense)
	assert.True(t, cfg.NoEnv)
	assert.Equal(t, 2*time.Second, cfg.IdleReclaim)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, defaultMaxVarCapacity, cfg.MaxVarCapacity, "unset keys keep their defaults")

	ti := newTestInterpWith(t, cfg)
	got, err := ti.EvalString("1/4")
	require.NoError(t, err)
	assert.Equal(t, "0.25", got)
	got, err = ti.EvalString("255")
	require.NoError(t, err)
	assert.Equal(t, "0xff", got)
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"float format without verb", `float_format: "%d"`},
		{"float format with two verbs", `float_format: "%f %f"`},
		{"integer format", `integer_format: x`},
		{"tiny var capacity", `max_var_capacity: 10`},
		{"tiny deref buffer", `max_deref_buffer: 100`},
		{"negative idle", `idle_reclaim: -1s`},
		{"log level", `log_level: loud`},
		{"not yaml", "float_format: [unclosed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.body))
			assert.ErrorIs(t, err, errBadConfig)
		})
	}
}

func TestValidFloatFormat(t *testing.T) {
	assert.True(t, validFloatFormat("%0.6f"))
	assert.True(t, validFloatFormat("%.3e"))
	assert.True(t, validFloatFormat("%g%%"))
	assert.False(t, validFloatFormat("%"))
	assert.False(t, validFloatFormat("plain"))
	assert.False(t, validFloatFormat("%s"))
}
