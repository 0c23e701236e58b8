package main

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinVars(t *testing.T) {
	ti := newTestInterp(t)

	tests := []struct {
		expr string
		want string
	}{
		{"A_Space", " "},
		{"A_Tab", "\t"},
		{"A_FormatFloat", "%0.6f"},
		{"A_FormatInteger", "d"},
		{"A_StringCaseSense", "Off"},
		{"A_PtrSize", strconv.Itoa(strconv.IntSize / 8)},
		{"false", "0"},
		{"A_ThisFunc", ""},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := ti.EvalString(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := ti.EvalString("A_TickCount >= 0")
	require.NoError(t, err)
	assert.Equal(t, "1", got)

	got, err = ti.EvalString("StrLen(A_Now)")
	require.NoError(t, err)
	assert.Equal(t, "14", got)
}

func TestBuiltinVarsInScript(t *testing.T) {
	ti := newTestInterp(t)
	ti.exec(t, `
Where() {
	return A_ThisFunc
}
name := Where()
line := A_LineNumber
`)
	assert.Equal(t, "Where", ti.value(t, "name"))
	assert.Equal(t, "6", ti.value(t, "line"))
}

func TestEnvironmentFallback(t *testing.T) {
	t.Setenv("DEXPR_TEST_FALLBACK", "from env")
	t.Setenv("DEXPR_TEST_SET", "")

	cfg := defaultConfig()
	ti := newTestInterpWith(t, cfg)

	got, err := ti.EvalString("DEXPR_TEST_FALLBACK")
	require.NoError(t, err)
	assert.Equal(t, "from env", got)

	ti.exec(t, `
EnvSet DEXPR_TEST_SET, abc
EnvGet fetched, DEXPR_TEST_SET
`)
	assert.Equal(t, "abc", ti.value(t, "fetched"))
	assert.Equal(t, "0", ti.value(t, "ErrorLevel"))

	cfg.NoEnv = true
	got, err = ti.EvalString("DEXPR_TEST_FALLBACK")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}
