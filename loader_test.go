package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unexpected close brace", "x := 1\n}", "unexpected \"}\""},
		{"missing close brace", "if 1 {\nx := 1", "missing \"}\""},
		{"missing close paren", "x := (1 + 2", "missing \")\""},
		{"missing open paren", "x := 1 + 2)", "missing \"(\""},
		{"unknown function", "x := NoSuchThing(1)", "call to nonexistent function"},
		{"else without if", "x := 1\nelse\ny := 2", "ELSE with no matching IF"},
		{"if without action", "if 1", "has no action"},
		{"static outside function", "static s := 1", "only valid inside a function"},
		{"missing percent", "Echo %name", "missing ending"},
		{"unterminated quote", `x := "abc`, "missing close-quote"},
		{"read-only target", "A_Space := 1", "read-only"},
		{"duplicate function", "F() {\n}\nF() {\n}", "duplicate function definition"},
		{"required after optional", "G(a := 1, b) {\n}", "must have a default"},
		{"unclosed function body", "H()\n{", "missing \"}\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ti := newTestInterp(t)
			_, err := ti.Load("test", tt.src)
			require.Error(t, err)
			assert.ErrorIs(t, err, errLoad)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadComments(t *testing.T) {
	ti := newTestInterp(t)
	ti.exec(t, `
; a full line comment
x := 1 ; trailing comment
/*
y := 2
*/
z := "a;b"
`)
	assert.Equal(t, "1", ti.value(t, "x"))
	_, ok := ti.Var("y")
	assert.False(t, ok, "block comments are skipped")
	assert.Equal(t, "a;b", ti.value(t, "z"))
}

func TestLoadFunctionChains(t *testing.T) {
	ti := newTestInterp(t)
	first, err := ti.Load("test", "F(a) {\nreturn a\n}\n")
	require.NoError(t, err)
	assert.Nil(t, first, "definitions stay off the main chain")

	fn := ti.findFunc("f")
	require.NotNil(t, fn)
	assert.Equal(t, 1, fn.minParams)
	assert.Equal(t, 1, fn.maxParams)
	assert.Equal(t, ACT_BLOCK_BEGIN, fn.body.act)
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want []string
	}{
		{"plain", "a, b, c", 0, []string{"a", "b", "c"}},
		{"last takes rest", "a, b, c", 2, []string{"a", "b, c"}},
		{"escaped comma", "a`, b, c", 0, []string{"a`, b", "c"}},
		{"expression keeps call commas", "% F(1, 2), x", 0, []string{"% F(1, 2)", "x"}},
		{"leading comma", ", a", 0, []string{"a"}},
		{"empty", "  ", 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitArgs(tt.in, tt.max, false))
		})
	}
}

func TestStripComment(t *testing.T) {
	assert.Equal(t, "", stripComment("; all comment"))
	assert.Equal(t, "x := 1 ", stripComment("x := 1 ; note"))
	assert.Equal(t, "a;b", stripComment("a;b"))
}
