package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariableAssignGet(t *testing.T) {
	ti := newTestInterp(t)

	tests := []struct {
		name     string
		value    string
		capacity int
	}{
		{"empty", "", 0},
		{"one byte", "a", 4},
		{"three bytes", "abc", 4},
		{"four bytes", "abcd", 8},
		{"largest simple", strings.Repeat("x", 63), 64},
		{"first heap size", strings.Repeat("y", 64), maxPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newVariable(ti.Interp, "v", VAR_NORMAL)
			require.Equal(t, OK, v.AssignString(tt.value))

			assert.Equal(t, len(tt.value), v.Get(nil))
			buf := make([]byte, v.Get(nil))
			n := v.Get(buf)
			assert.Equal(t, tt.value, string(buf[:n]))
			assert.Equal(t, tt.value, v.Value())
			assert.Equal(t, tt.capacity, v.Capacity())
		})
	}
}

func TestVariableGrowsAcrossTiers(t *testing.T) {
	ti := newTestInterp(t)
	v := newVariable(ti.Interp, "v", VAR_NORMAL)

	steps := []struct {
		value    string
		capacity int
		alloc    uint8
	}{
		{"abc", 4, ALLOC_SIMPLE},
		{"abcd", 8, ALLOC_SIMPLE},
		{"abcdefg", 8, ALLOC_SIMPLE},
		{strings.Repeat("m", 8), maxAllocSimple, ALLOC_SIMPLE},
		{strings.Repeat("n", maxAllocSimple-1), maxAllocSimple, ALLOC_SIMPLE},
		{strings.Repeat("o", maxAllocSimple), maxPath, ALLOC_MALLOC},
	}
	for _, st := range steps {
		require.Equal(t, OK, v.AssignString(st.value))
		buf := make([]byte, v.Get(nil))
		assert.Equal(t, st.value, string(buf[:v.Get(buf)]))
		assert.Equal(t, st.capacity, v.Capacity(), "capacity after %d bytes", len(st.value))
		assert.Equal(t, st.alloc, v.alloc)
	}
}

func TestVariableStaysOnHeap(t *testing.T) {
	ti := newTestInterp(t)
	v := newVariable(ti.Interp, "v", VAR_NORMAL)

	v.AssignString(strings.Repeat("z", 100))
	assert.Equal(t, ALLOC_MALLOC, v.alloc)
	v.AssignString("ok")
	assert.Equal(t, ALLOC_MALLOC, v.alloc)
	assert.Equal(t, "ok", v.Value())
}

func TestVariableBinaryAttribute(t *testing.T) {
	ti := newTestInterp(t)
	v := newVariable(ti.Interp, "v", VAR_NORMAL)

	v.Assign([]byte{'a', 0, 'b'})
	assert.NotZero(t, v.attrib&VAR_ATTRIB_BINARY)
	assert.Equal(t, 3, v.Length())

	v.AssignString("ab")
	assert.Zero(t, v.attrib&VAR_ATTRIB_BINARY)
}

func TestVariableAlias(t *testing.T) {
	ti := newTestInterp(t)
	target := newVariable(ti.Interp, "target", VAR_NORMAL)
	a := newVariable(ti.Interp, "a", VAR_NORMAL)
	b := newVariable(ti.Interp, "b", VAR_NORMAL)

	a.UpdateAlias(target)
	b.UpdateAlias(a)
	assert.Same(t, target, b.alias, "alias chains collapse to the root")

	b.AssignString("shared")
	assert.Equal(t, "shared", target.Value())
	assert.Equal(t, "shared", a.Value())

	a.Free(VAR_ALWAYS_FREE, true)
	assert.Equal(t, VAR_NORMAL, a.Type())
	assert.Equal(t, "shared", target.Value())

	target.UpdateAlias(target)
	assert.Equal(t, VAR_NORMAL, target.Type())
}

func TestVariableBackupRestore(t *testing.T) {
	ti := newTestInterp(t)
	v := newVariable(ti.Interp, "v", VAR_NORMAL)
	v.attrib = VAR_ATTRIB_LOCAL
	v.AssignString("outer")

	bkp := v.backup()
	assert.Equal(t, "", v.Value())
	assert.Equal(t, 0, v.Capacity())
	assert.True(t, v.IsLocal())

	v.AssignString("inner")
	assert.Equal(t, ALLOC_MALLOC, v.alloc, "values of a nested invocation live on the heap")
	v.Free(VAR_ALWAYS_FREE_BUT_EXCLUDE_STATIC, true)
	assert.Equal(t, 0, v.Capacity())

	bkp.restore()
	assert.Equal(t, "outer", v.Value())
}

func TestVariableFreeIfLarge(t *testing.T) {
	ti := newTestInterp(t)
	v := newVariable(ti.Interp, "v", VAR_NORMAL)

	v.AssignString(strings.Repeat("s", 1000))
	c := v.Capacity()
	v.AssignString("")
	assert.Equal(t, c, v.Capacity(), "small heap blocks are kept")

	v.AssignString(strings.Repeat("L", largeVarFreeSize+1))
	v.AssignString("")
	assert.Equal(t, 0, v.Capacity())
}

func TestNumberType(t *testing.T) {
	tests := []struct {
		text string
		want SymbolType
	}{
		{"", SYM_STRING},
		{"12", SYM_INTEGER},
		{" -7 ", SYM_INTEGER},
		{"0x1F", SYM_INTEGER},
		{"0x", SYM_STRING},
		{"1.5", SYM_FLOAT},
		{".5", SYM_FLOAT},
		{"1.5e3", SYM_FLOAT},
		{"1e3", SYM_STRING},
		{"1.2.3", SYM_STRING},
		{"+", SYM_STRING},
		{"abc", SYM_STRING},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, numberType([]byte(tt.text)))
		})
	}
}

func TestParseInt64(t *testing.T) {
	assert.Equal(t, int64(255), parseInt64([]byte("0xff")))
	assert.Equal(t, int64(-12), parseInt64([]byte(" -12")))
	assert.Equal(t, int64(1<<63-1), parseInt64([]byte("99999999999999999999")))
	assert.Equal(t, int64(-1<<63), parseInt64([]byte("-99999999999999999999")))
}

func TestSetVarReadOnly(t *testing.T) {
	ti := newTestInterp(t)
	assert.ErrorIs(t, ti.SetVar("A_Space", "x"), errReadOnlyVar)
	assert.ErrorIs(t, ti.SetVar("bad name", "x"), errInvalidVarName)

	require.NoError(t, ti.SetVar("Greeting", "hi"))
	assert.Equal(t, "hi", ti.value(t, "greeting"))
}
