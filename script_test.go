package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptShortCircuit(t *testing.T) {
	ti := newTestInterp(t)
	ti.exec(t, `
count := 0
Inc() {
	global count
	count += 1
	return 1
}
r1 := 0 and Inc()
r2 := 1 or Inc()
r3 := 1 and Inc()
r4 := 0 or Inc()
`)
	assert.Equal(t, "0", ti.value(t, "r1"))
	assert.Equal(t, "1", ti.value(t, "r2"))
	assert.Equal(t, "1", ti.value(t, "r3"))
	assert.Equal(t, "1", ti.value(t, "r4"))
	assert.Equal(t, "2", ti.value(t, "count"), "right branches run only when needed")
}

func TestScriptRecursion(t *testing.T) {
	ti := newTestInterp(t)
	ti.exec(t, `
Fact(n) {
	if (n <= 1)
		return 1
	keep := n
	return keep * Fact(n - 1)
}
f := Fact(5)
`)
	assert.Equal(t, "120", ti.value(t, "f"))
	assert.Zero(t, ti.errorCount)
}

func TestScriptRecursionReusesArena(t *testing.T) {
	ti := newTestInterp(t)
	_, err := ti.Load("fib", `
Fib(n) {
	if (n < 2)
		return n
	a := Fib(n - 1)
	b := Fib(n - 2)
	return a + b
}
r := Fib(12)
`)
	require.NoError(t, err)

	require.Equal(t, OK, ti.Run())
	assert.Equal(t, "144", ti.value(t, "r"))
	after := ti.arena.Allocated()

	require.Equal(t, OK, ti.Run())
	assert.Equal(t, "144", ti.value(t, "r"))
	assert.Equal(t, after, ti.arena.Allocated(), "nested invocations do not take arena memory")
}

func TestScriptByRef(t *testing.T) {
	ti := newTestInterp(t)
	ti.exec(t, `
Swap(ByRef a, ByRef b) {
	tmp := a
	a := b
	b := tmp
}
p := 1
q := 2
Swap(p, q)
`)
	assert.Equal(t, "2", ti.value(t, "p"))
	assert.Equal(t, "1", ti.value(t, "q"))

	// a literal cannot stand in for a ByRef parameter; only the call fails
	ti.exec(t, `
Swap(p, 5)
after := "ran"
`)
	assert.Equal(t, 1, ti.errorCount)
	assert.Len(t, ti.sink.msgs, 1)
	assert.Contains(t, ti.sink.msgs[0], errByRefNotVar.Error())
	assert.Equal(t, "2", ti.value(t, "p"))
	assert.Equal(t, "ran", ti.value(t, "after"))
}

func TestScriptDefaultsAndStatics(t *testing.T) {
	ti := newTestInterp(t)
	ti.exec(t, `
Add(x, y := 10) {
	return x + y
}
Counter() {
	static n := 0
	n += 1
	return n
}
Greet(who = "world") {
	return "hello " . who
}
s1 := Add(1)
s2 := Add(1, 2)
Counter()
c := Counter()
g := Greet()
`)
	assert.Equal(t, "11", ti.value(t, "s1"))
	assert.Equal(t, "3", ti.value(t, "s2"))
	assert.Equal(t, "2", ti.value(t, "c"))
	assert.Equal(t, "hello world", ti.value(t, "g"))
}

func TestScriptNoReturnValue(t *testing.T) {
	ti := newTestInterp(t)
	ti.exec(t, `
Nothing() {
	tmpval := 1
}
v := "x"
v := Nothing()
`)
	assert.Equal(t, "", ti.value(t, "v"))
}

func TestScriptCommands(t *testing.T) {
	ti := newTestInterp(t)
	ti.exec(t, `
name := "World"
Echo Hello %name%!
Echo % 1+2
who := "there"
greeting = hi %who%
StringUpper up, greeting
StringLower down, up
StringLen size, greeting
`)
	assert.Equal(t, "Hello World!\n3\n", ti.out.String())
	assert.Equal(t, "hi there", ti.value(t, "greeting"))
	assert.Equal(t, "HI THERE", ti.value(t, "up"))
	assert.Equal(t, "hi there", ti.value(t, "down"))
	assert.Equal(t, "8", ti.value(t, "size"))
}

func TestScriptIfElse(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"5", "big"},
		{"2", "small"},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			ti := newTestInterp(t)
			require.NoError(t, ti.SetVar("v", tt.value))
			ti.exec(t, `
if (v > 3) {
	res := "big"
} else {
	res := "small"
}
`)
			assert.Equal(t, tt.want, ti.value(t, "res"))
		})
	}
}

func TestScriptIfWithoutBraces(t *testing.T) {
	ti := newTestInterp(t)
	ti.exec(t, `
n := 0
if n
	a := "yes"
else
	a := "no"
b := "always"
`)
	assert.Equal(t, "no", ti.value(t, "a"))
	assert.Equal(t, "always", ti.value(t, "b"))
}

func TestScriptCompoundAssignment(t *testing.T) {
	ti := newTestInterp(t)
	ti.exec(t, `
total += 5
total *= 3
total -= 1
total++
word := "ab"
word .= "cd"
half := 3
half /= 2
`)
	assert.Equal(t, "15", ti.value(t, "total"))
	assert.Equal(t, "abcd", ti.value(t, "word"))
	assert.Equal(t, "1.500000", ti.value(t, "half"))
}

func TestScriptDynamicReference(t *testing.T) {
	ti := newTestInterp(t)
	ti.exec(t, `
Count := 3
Array3 := "three"
got := Array%Count%
Count := 4
missing := Array%Count%
`)
	assert.Equal(t, "three", ti.value(t, "got"))
	assert.Equal(t, "", ti.value(t, "missing"))
	_, ok := ti.Var("Array4")
	assert.True(t, ok, "a dynamic reference creates the variable")
}

func TestScriptClipboard(t *testing.T) {
	ti := newTestInterp(t)
	ti.exec(t, `
Clipboard := "copied"
back := Clipboard
`)
	assert.Equal(t, "copied", ti.value(t, "back"))

	data, err := ti.clipboard.Read()
	require.NoError(t, err)
	assert.Equal(t, "copied", string(data))
}

func TestScriptExit(t *testing.T) {
	ti := newTestInterp(t)
	r := ti.exec(t, `
before := 1
exit
after := 1
`)
	assert.Equal(t, OK, r)
	assert.Equal(t, "1", ti.value(t, "before"))
	assert.Equal(t, "", ti.value(t, "after"))
}

func TestScriptErrorLevel(t *testing.T) {
	ti := newTestInterp(t)
	assert.Equal(t, "0", ti.value(t, "ErrorLevel"))
}
