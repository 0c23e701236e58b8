package main

import (
	"bytes"
	"os"
	"strconv"
)

// BuiltinVarFunc computes a read-only variable's value. With a nil buf it
// returns the number of bytes the value needs, otherwise it writes the
// value into buf and returns the length written. The size answer may be
// larger than what is later written, never smaller.
type BuiltinVarFunc func(in *Interp, buf []byte) int

// Variable is a named, dynamically typed value. Storage is a byte slice
// whose length is the capacity (terminator included); a nil slice is the
// shared empty string.
type Variable struct {
	name     string
	owner    *Interp
	contents []byte
	alias    *Variable
	builtin  BuiltinVarFunc
	length   int
	kind     uint8
	alloc    uint8
	attrib   uint8
}

func newVariable(in *Interp, name string, kind uint8) *Variable {
	return &Variable{name: name, owner: in, kind: kind}
}

func (v *Variable) String() string {
	return v.name
}

// resolve returns the variable that owns the storage. Aliases never
// point at other aliases, so one step is enough.
func (v *Variable) resolve() *Variable {
	if v.kind == VAR_ALIAS {
		return v.alias
	}
	return v
}

func (v *Variable) Type() uint8 {
	return v.resolve().kind
}

func (v *Variable) Length() int {
	return v.resolve().length
}

// Capacity includes room for the terminator. Zero means the variable is
// sharing the empty string.
func (v *Variable) Capacity() int {
	return len(v.resolve().contents)
}

func (v *Variable) IsStatic() bool {
	return v.attrib&VAR_ATTRIB_STATIC != 0
}

func (v *Variable) IsLocal() bool {
	return v.attrib&VAR_ATTRIB_LOCAL != 0
}

// isVolatile reports whether the value is computed on demand and so must
// always be copied before use.
func (v *Variable) isVolatile() bool {
	k := v.Type()
	return k == VAR_BUILTIN || k == VAR_CLIPBOARD
}

// envValue returns the environment variable standing in for an empty
// global variable of the same name.
func (v *Variable) envValue() (string, bool) {
	if v.kind != VAR_NORMAL || v.length != 0 || v.attrib&VAR_ATTRIB_LOCAL != 0 {
		return "", false
	}
	if v.owner == nil || v.owner.cfg.NoEnv {
		return "", false
	}
	return os.LookupEnv(v.name)
}

func (v *Variable) isEnvShadowed() bool {
	t := v.resolve()
	if t.kind != VAR_NORMAL || t.length != 0 {
		return false
	}
	_, ok := t.envValue()
	return ok
}

// Get copies the value into buf and returns its length. With a nil buf it
// only reports the size needed, excluding the terminator.
func (v *Variable) Get(buf []byte) int {
	switch v.kind {
	case VAR_ALIAS:
		return v.alias.Get(buf)
	case VAR_BUILTIN:
		return v.builtin(v.owner, buf)
	case VAR_CLIPBOARD:
		data := v.owner.clipboardText()
		if buf == nil {
			return len(data)
		}
		return copy(buf, data)
	}
	if v.length == 0 {
		if env, ok := v.envValue(); ok {
			if buf == nil {
				return len(env)
			}
			return copy(buf, env)
		}
	}
	if buf == nil {
		return v.length
	}
	return copy(buf, v.contents[:v.length])
}

// bytesView returns the value without copying when the variable keeps it
// in its own storage, and a private copy otherwise.
func (v *Variable) bytesView() []byte {
	t := v.resolve()
	if t.kind == VAR_NORMAL && t.length > 0 {
		return t.contents[:t.length]
	}
	n := t.Get(nil)
	if n == 0 {
		return nil
	}
	buf := make([]byte, n)
	return buf[:t.Get(buf)]
}

func (v *Variable) Value() string {
	return string(v.bytesView())
}

// growCapacity rounds a heap request up so that a variable which keeps
// growing does not reallocate on every assignment.
func growCapacity(n int) int {
	switch {
	case n < 16:
		return 16
	case n < maxPath:
		return maxPath
	case n < 160*1024:
		return n + n/10
	case n < 1600*1024:
		return n + 16*1024
	case n < 6400*1024:
		return n + n/100
	}
	return n + 64*1024
}

// setCapacity makes sure at least spaceNeeded bytes (terminator included)
// are available. Existing contents are not preserved when the storage moves.
func (v *Variable) setCapacity(spaceNeeded int, exact bool) ResultType {
	if spaceNeeded <= len(v.contents) {
		return OK
	}
	var newSize int
	switch v.alloc {
	case ALLOC_NONE, ALLOC_SIMPLE:
		if spaceNeeded <= maxAllocSimple {
			switch {
			case spaceNeeded < 5:
				newSize = 4
			case exact:
				newSize = spaceNeeded
			case spaceNeeded < 9:
				newSize = 8
			default:
				newSize = maxAllocSimple
			}
			mem, err := v.owner.arena.Alloc(newSize)
			if err != nil {
				return v.owner.memError(err, v.name)
			}
			v.contents = mem
			v.alloc = ALLOC_SIMPLE
			return OK
		}
		// once a variable leaves the arena it stays on the heap
		fallthrough
	case ALLOC_MALLOC:
		newSize = spaceNeeded
		if !exact {
			newSize = growCapacity(spaceNeeded)
		}
		if newSize > v.owner.cfg.MaxVarCapacity {
			if spaceNeeded > v.owner.cfg.MaxVarCapacity {
				return v.owner.memError(errAllocLimit, v.name)
			}
			newSize = v.owner.cfg.MaxVarCapacity
		}
		v.contents = make([]byte, newSize)
		v.alloc = ALLOC_MALLOC
	}
	return OK
}

// Assign stores a copy of b. Assigning the empty string releases storage
// that is larger than the free-if-large threshold.
func (v *Variable) Assign(b []byte) ResultType {
	switch v.kind {
	case VAR_ALIAS:
		return v.alias.Assign(b)
	case VAR_CLIPBOARD:
		return v.owner.setClipboard(b)
	case VAR_BUILTIN:
		return v.owner.reportError(sf("%s is read-only.", v.name), "")
	}
	n := len(b)
	if n == 0 {
		v.Free(VAR_FREE_IF_LARGE, false)
		return OK
	}
	if r := v.setCapacity(n+1, false); r != OK {
		return r
	}
	copy(v.contents, b)
	v.contents[n] = 0
	v.length = n
	if bytes.IndexByte(b, 0) >= 0 {
		v.attrib |= VAR_ATTRIB_BINARY
	} else {
		v.attrib &^= VAR_ATTRIB_BINARY
	}
	return OK
}

func (v *Variable) AssignString(s string) ResultType {
	return v.Assign(stringBytes(s))
}

func (v *Variable) AssignInt(n int64) ResultType {
	var tmp [32]byte
	return v.Assign(v.owner.appendInt(tmp[:0], n))
}

func (v *Variable) AssignFloat(f float64) ResultType {
	var tmp [64]byte
	return v.Assign(v.owner.appendFloat(tmp[:0], f))
}

// AssignToken stores an evaluation result. Heap memory owned by the token
// is adopted rather than copied.
func (v *Variable) AssignToken(t *ExprToken) ResultType {
	switch t.symbol {
	case SYM_INTEGER:
		return v.AssignInt(t.num)
	case SYM_FLOAT:
		return v.AssignFloat(t.flt)
	case SYM_VAR:
		if t.v.resolve() == v.resolve() {
			return OK
		}
		return v.Assign(t.v.bytesView())
	case SYM_STRING, SYM_OPERAND:
		if t.mem != nil && len(t.str) > 0 && len(t.mem) > len(t.str) && &t.mem[0] == &t.str[0] {
			return v.AcceptNewMem(t.mem, len(t.str))
		}
		return v.Assign(t.str)
	}
	return v.Assign(nil)
}

// AcceptNewMem takes ownership of mem, whose first length bytes are the new
// value. mem must have room for the terminator.
func (v *Variable) AcceptNewMem(mem []byte, length int) ResultType {
	switch v.kind {
	case VAR_ALIAS:
		return v.alias.AcceptNewMem(mem, length)
	case VAR_CLIPBOARD, VAR_BUILTIN:
		return v.Assign(mem[:length])
	}
	if length >= len(mem) {
		return v.Assign(mem[:length])
	}
	v.contents = mem
	v.contents[length] = 0
	v.length = length
	v.alloc = ALLOC_MALLOC
	v.attrib &^= VAR_ATTRIB_BINARY
	return OK
}

// Free blanks the variable and, depending on mode, releases its storage.
// With excludeAliases an alias is turned back into a plain variable
// instead of blanking its target.
func (v *Variable) Free(mode uint8, excludeAliases bool) {
	switch v.kind {
	case VAR_ALIAS:
		if !excludeAliases {
			v.alias.Free(mode, false)
			return
		}
		v.kind = VAR_NORMAL
		v.alias = nil
	case VAR_BUILTIN, VAR_CLIPBOARD:
		return
	}
	if mode == VAR_ALWAYS_FREE_BUT_EXCLUDE_STATIC && v.IsStatic() {
		return
	}
	v.length = 0
	v.attrib &^= VAR_ATTRIB_BINARY
	switch v.alloc {
	case ALLOC_SIMPLE:
		// arena memory cannot be given back, keep it for the next value
		if len(v.contents) > 0 {
			v.contents[0] = 0
		}
	case ALLOC_MALLOC:
		if len(v.contents) == 0 {
			return
		}
		if mode == VAR_NEVER_FREE || (mode == VAR_FREE_IF_LARGE && len(v.contents) <= largeVarFreeSize) {
			v.contents[0] = 0
			return
		}
		v.contents = nil
	}
}

// UpdateAlias points v at target's storage. Chains collapse so that an
// alias always refers to a root variable.
func (v *Variable) UpdateAlias(target *Variable) {
	if target.kind == VAR_ALIAS {
		target = target.alias
	}
	if target == v {
		v.kind = VAR_NORMAL
		v.alias = nil
		return
	}
	v.alias = target
	v.kind = VAR_ALIAS
}

// backup moves the variable's storage into a VarBkp and leaves the
// variable empty, ready for a new invocation of its function.
func (v *Variable) backup() VarBkp {
	b := VarBkp{
		v:        v,
		contents: v.contents,
		alias:    v.alias,
		length:   v.length,
		kind:     v.kind,
		alloc:    v.alloc,
		attrib:   v.attrib,
	}
	v.contents = nil
	v.alias = nil
	v.length = 0
	v.kind = VAR_NORMAL
	// the inner invocation's values go on the heap so that Free releases
	// them when it returns
	v.alloc = ALLOC_MALLOC
	v.attrib &= VAR_ATTRIB_LOCAL | VAR_ATTRIB_PARAM
	return b
}

func (b *VarBkp) restore() {
	v := b.v
	v.contents = b.contents
	v.alias = b.alias
	v.length = b.length
	v.kind = b.kind
	v.alloc = b.alloc
	v.attrib = b.attrib
}

// numberType classifies text the way operands are classified: pure
// integers (decimal or 0x hex), floats (a decimal point is required) or
// plain strings. Leading and trailing blanks are allowed.
func numberType(b []byte) SymbolType {
	s := trimBlanks(b)
	if len(s) == 0 {
		return SYM_STRING
	}
	i := 0
	if s[0] == '+' || s[0] == '-' {
		i++
	}
	if i == len(s) {
		return SYM_STRING
	}
	if i+1 < len(s) && s[i] == '0' && (s[i+1] == 'x' || s[i+1] == 'X') {
		i += 2
		if i == len(s) {
			return SYM_STRING
		}
		for ; i < len(s); i++ {
			if !isHexDigit(s[i]) {
				return SYM_STRING
			}
		}
		return SYM_INTEGER
	}
	var digits, dot bool
	for ; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			digits = true
		case c == '.':
			if dot {
				return SYM_STRING
			}
			dot = true
		case (c == 'e' || c == 'E') && dot && digits:
			j := i + 1
			if j < len(s) && (s[j] == '+' || s[j] == '-') {
				j++
			}
			if j == len(s) {
				return SYM_STRING
			}
			for ; j < len(s); j++ {
				if s[j] < '0' || s[j] > '9' {
					return SYM_STRING
				}
			}
			return SYM_FLOAT
		default:
			return SYM_STRING
		}
	}
	if !digits {
		return SYM_STRING
	}
	if dot {
		return SYM_FLOAT
	}
	return SYM_INTEGER
}

// parseInt64 converts text already classified as SYM_INTEGER. Values out
// of range saturate, matching strtoll.
func parseInt64(b []byte) int64 {
	s := string(trimBlanks(b))
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	var n uint64
	var err error
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		n, err = strconv.ParseUint(s[2:], 16, 64)
	} else {
		n, err = strconv.ParseUint(s, 10, 64)
	}
	if err != nil || n > 1<<63-1 {
		if neg {
			return -1 << 63
		}
		return 1<<63 - 1
	}
	if neg {
		return -int64(n)
	}
	return int64(n)
}

func parseFloat64(b []byte) float64 {
	f, _ := strconv.ParseFloat(string(trimBlanks(b)), 64)
	return f
}

func trimBlanks(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t') {
		b = b[1:]
	}
	for len(b) > 0 && (b[len(b)-1] == ' ' || b[len(b)-1] == '\t') {
		b = b[:len(b)-1]
	}
	return b
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}
