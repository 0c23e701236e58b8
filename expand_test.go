package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineVars(l *Line) []*Variable {
	vars := make([]*Variable, len(l.args))
	for i := range l.args {
		if l.args[i].typ != ARG_TYPE_NORMAL {
			vars[i] = l.args[i].v
		}
	}
	return vars
}

func TestArgMustBeDereferenced(t *testing.T) {
	ti := newTestInterp(t)

	same, err := ti.Load("same", "StringUpper x, x")
	require.NoError(t, err)
	vars := lineVars(same)
	assert.True(t, same.argMustBeDereferenced(vars[1], 1, vars), "input is also the output")

	other, err := ti.Load("other", "StringUpper y, x")
	require.NoError(t, err)
	vars = lineVars(other)
	assert.False(t, other.argMustBeDereferenced(vars[1], 1, vars))

	builtin, err := ti.Load("builtin", "StringUpper y, A_Space")
	require.NoError(t, err)
	vars = lineVars(builtin)
	assert.True(t, builtin.argMustBeDereferenced(vars[1], 1, vars), "built-in values are computed on demand")
}

func TestInputIsOutputVar(t *testing.T) {
	ti := newTestInterp(t)
	ti.exec(t, `
x := "mixed Case"
StringUpper x, x
n := "abcd"
StringLen n, n
s := "ABC"
StringLower s, s
`)
	assert.Equal(t, "MIXED CASE", ti.value(t, "x"))
	assert.Equal(t, "4", ti.value(t, "n"))
	assert.Equal(t, "abc", ti.value(t, "s"))
}

func TestExpandBeyondEstimate(t *testing.T) {
	ti := newTestInterp(t)
	chunk := strings.Repeat("c", 40000)
	require.NoError(t, ti.SetVar("Chunk", chunk))
	require.NoError(t, ti.SetVar("Name", "mid"))

	_, err := ti.Load("defs", `
Big() {
	global Chunk
	return Chunk . Chunk . Chunk
}
`)
	require.NoError(t, err)
	l, err := ti.Load("line", "EnvSet pre%Name%post, % Big()")
	require.NoError(t, err)

	sizes := make([]int, len(l.args))
	estimate := ti.GetExpandedArgSize(l, lineVars(l), sizes)
	assert.Less(t, estimate, 3*len(chunk), "a function result cannot be estimated")

	x, r := ti.ExpandArgs(l, nil)
	require.Equal(t, OK, r)
	assert.Equal(t, "premidpost", x.argString(0), "earlier arguments survive the buffer growing")
	assert.Equal(t, strings.Repeat(chunk, 3), x.argString(1))
	assert.GreaterOrEqual(t, ti.DerefBufSize(), 3*len(chunk))
}
