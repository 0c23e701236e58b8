package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalArithmetic(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string
	}{
		{"add", "1 + 2", "3"},
		{"precedence", "1 + 2 * 3", "7"},
		{"parentheses", "(1 + 2) * 3", "9"},
		{"left associative subtract", "10 - 2 - 3", "5"},
		{"left associative power", "2**3**2", "64"},
		{"power binds before negation", "-2**2", "-4"},
		{"negative exponent", "2**-1", "0.500000"},
		{"zero to negative power", "0**-1", ""},
		{"division is float", "7/2", "3.500000"},
		{"exact division is float", "6/3", "2.000000"},
		{"divide by zero", "1/0", ""},
		{"floor divide", "7//2", "3"},
		{"floor divide negative", "-5//2", "-3"},
		{"floor divide float", "7.0//2", "3.000000"},
		{"floor divide by zero", "1//0", ""},
		{"hex literal", "0x10 + 1", "17"},
		{"leading dot float", ".5 + 1", "1.500000"},
		{"float arithmetic", "1.5 * 2", "3.000000"},
		{"quoted number in arithmetic", `"5" + 3`, "8"},
		{"text in arithmetic", `"abc" + 1`, ""},
		{"unary minus", "-(3)", "-3"},
		{"unary plus", "+4", "4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ti := newTestInterp(t)
			got, err := ti.EvalString(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalBitwise(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"~0", "4294967295"},
		{"1 << 4", "16"},
		{"256 >> 4", "16"},
		{"1 << -1", ""},
		{"6 & 3", "2"},
		{"6 | 3", "7"},
		{"6 ^ 3", "5"},
		{"5.9 | 0", "5"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			ti := newTestInterp(t)
			got, err := ti.EvalString(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalComparisonAndLogic(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"1 < 2", "1"},
		{"2 <= 1", "0"},
		{"10 = 10.0", "1"},
		{"1 != 2", "1"},
		{"1 <> 1", "0"},
		{`"abc" < "abd"`, "1"},
		{`"ABC" = "abc"`, "1"},
		{`"ABC" == "abc"`, "0"},
		{`"abc" == "abc"`, "1"},
		{`"10" = "10.0"`, "0"},
		{"not 0", "1"},
		{"!1", "0"},
		{"true and false", "0"},
		{"true or false", "1"},
		{"1 && 2", "1"},
		{"0 || 0", "0"},
		{"0 and (1/0)", "0"},
		{"1 or (1/0)", "1"},
		{"true", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			ti := newTestInterp(t)
			got, err := ti.EvalString(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalConcat(t *testing.T) {
	ti := newTestInterp(t)

	got, err := ti.EvalString(`"ab" . "cd"`)
	require.NoError(t, err)
	assert.Equal(t, "abcd", got)

	got, err = ti.EvalString(`"ab" "cd"`)
	require.NoError(t, err)
	assert.Equal(t, "abcd", got, "adjacent operands concatenate")

	got, err = ti.EvalString(`1 . 2`)
	require.NoError(t, err)
	assert.Equal(t, "12", got)

	left, _ := ti.EvalString(`("a" . "b") . "c"`)
	right, _ := ti.EvalString(`"a" . ("b" . "c")`)
	assert.Equal(t, left, right)

	got, err = ti.EvalString(`"say ""hi"""`)
	require.NoError(t, err)
	assert.Equal(t, `say "hi"`, got)
}

func TestEvalVariables(t *testing.T) {
	ti := newTestInterp(t)
	require.NoError(t, ti.SetVar("x", "5"))
	require.NoError(t, ti.SetVar("y", "3"))

	got, err := ti.EvalString("x*2 + y**2 - 1")
	require.NoError(t, err)
	assert.Equal(t, "18", got)

	// evaluation has no side effects on its inputs
	again, err := ti.EvalString("x*2 + y**2 - 1")
	require.NoError(t, err)
	assert.Equal(t, got, again)
	assert.Equal(t, "5", ti.value(t, "x"))

	got, err = ti.EvalString("UnsetVariableXyz")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestEvalAddressAndDeref(t *testing.T) {
	ti := newTestInterp(t)
	require.NoError(t, ti.SetVar("PeekMe", "A"))

	got, err := ti.EvalString("*(&PeekMe)")
	require.NoError(t, err)
	assert.Equal(t, "65", got)

	got, err = ti.EvalString("*1")
	require.NoError(t, err)
	assert.Equal(t, "0", got, "low addresses read as zero")

	got, err = ti.EvalString("&EmptyVarXyz")
	require.NoError(t, err)
	assert.Equal(t, "0", got)
}

func TestEvalErrors(t *testing.T) {
	ti := newTestInterp(t)

	_, err := ti.EvalString("(1 + 2")
	assert.ErrorIs(t, err, errExprSyntax)

	_, err = ti.EvalString("NoSuchFunction(1)")
	assert.ErrorIs(t, err, errUnknownFunction)

	_, err = ti.EvalString("1 +")
	assert.ErrorIs(t, err, errEval)
	assert.NotEmpty(t, ti.sink.msgs)
}

func TestEvalFormats(t *testing.T) {
	cfg := defaultConfig()
	cfg.NoEnv = true
	cfg.FloatFormat = "%0.2f"
	cfg.IntegerFormat = "h"
	ti := newTestInterpWith(t, cfg)

	got, err := ti.EvalString("1/4")
	require.NoError(t, err)
	assert.Equal(t, "0.25", got)

	got, err = ti.EvalString("255")
	require.NoError(t, err)
	assert.Equal(t, "0xff", got)

	got, err = ti.EvalString("0 - 255")
	require.NoError(t, err)
	assert.Equal(t, "-0xff", got)
}

func TestEvalStringCaseSense(t *testing.T) {
	cfg := defaultConfig()
	cfg.NoEnv = true
	cfg.StringCaseSense = true
	ti := newTestInterpWith(t, cfg)

	got, err := ti.EvalString(`"ABC" = "abc"`)
	require.NoError(t, err)
	assert.Equal(t, "0", got)

	got, err = ti.EvalString(`"B" < "a"`)
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}

func TestEvalTooManyTokens(t *testing.T) {
	ti := newTestInterp(t)
	_, err := ti.EvalString(strings.Repeat("1+", maxTokens) + "1")
	assert.ErrorIs(t, err, errEval)
	require.NotEmpty(t, ti.sink.msgs)
	assert.Contains(t, ti.sink.msgs[0], errStackOverflow.Error())

	got, err := ti.EvalString(strings.Repeat("1+", 100) + "1")
	require.NoError(t, err)
	assert.Equal(t, "101", got)
}
