package main

import (
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Interp is the state of one script: its variables, functions, loaded
// lines and the deref buffer of the statement being executed. One Interp
// runs one logical thread at a time.
type Interp struct {
	cfg       *Config
	arena     *SimpleHeap
	globals   map[string]*Variable
	builtins  map[string]*Variable
	funcs     map[string]*Func
	firstLine *Line
	lastLine  *Line
	curLine   *Line
	frames    []callFrame
	deref     derefState
	clipboard ClipboardStore
	sink      ErrorSink
	out       io.Writer

	errorLevel *Variable
	startTime  time.Time
	errorCount int
	running    bool
}

var stdlibOnce sync.Once

// NewInterp makes an interpreter with the given settings. A nil cfg means
// the defaults; a nil out discards Echo output.
func NewInterp(cfg *Config, out io.Writer) *Interp {
	stdlibOnce.Do(buildStandardLib)
	if cfg == nil {
		cfg = defaultConfig()
	}
	if out == nil {
		out = io.Discard
	}
	in := &Interp{
		cfg:       cfg,
		arena:     simpleHeap,
		globals:   make(map[string]*Variable, 64),
		builtins:  make(map[string]*Variable, 32),
		funcs:     make(map[string]*Func, 16),
		clipboard: newMemClipboard(),
		sink:      &reportSink{out: os.Stderr},
		out:       out,
		startTime: time.Now(),
	}
	in.defineBuiltinVars()
	in.errorLevel, _ = in.findOrAddGlobal("ErrorLevel")
	in.errorLevel.AssignString("0")
	return in
}

// SetErrorSink replaces the destination for error reports.
func (in *Interp) SetErrorSink(s ErrorSink) {
	in.sink = s
}

// SetClipboard replaces the clipboard backing store.
func (in *Interp) SetClipboard(c ClipboardStore) {
	in.clipboard = c
}

//
// VARIABLE STORE
//

const maxVarNameLength = 253

func isVarChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '_' || c == '#' || c == '@' || c == '$' || c >= 0x80
}

func validVarName(name string) bool {
	if name == "" || len(name) > maxVarNameLength {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isVarChar(name[i]) {
			return false
		}
	}
	return true
}

func varKey(name string) string {
	return strings.ToLower(name)
}

// FindVar looks a name up without creating anything.
func (in *Interp) FindVar(name string, fn *Func) *Variable {
	key := varKey(name)
	if v, ok := in.builtins[key]; ok {
		return v
	}
	if fn != nil {
		if v, ok := fn.vars[key]; ok {
			return v
		}
		if !fn.globalNames[key] {
			return nil
		}
	}
	return in.globals[key]
}

// FindOrAddVar resolves name in the scope of fn (nil for global scope),
// creating a normal variable when none exists. References made at load
// time inside a function create locals unless declared global; dynamic
// references made while running prefer an existing global over a new local.
func (in *Interp) FindOrAddVar(name string, fn *Func, dynamic bool) (*Variable, error) {
	if !validVarName(name) {
		return nil, errInvalidVarName
	}
	key := varKey(name)
	if v, ok := in.builtins[key]; ok {
		return v, nil
	}
	if fn == nil {
		return in.findOrAddGlobal(name)
	}
	if v, ok := fn.vars[key]; ok {
		return v, nil
	}
	if fn.globalNames[key] {
		return in.findOrAddGlobal(name)
	}
	if dynamic {
		if v, ok := in.globals[key]; ok {
			return v, nil
		}
	}
	return fn.addLocal(in, name, 0)
}

func (in *Interp) findOrAddGlobal(name string) (*Variable, error) {
	key := varKey(name)
	if v, ok := in.globals[key]; ok {
		return v, nil
	}
	if !validVarName(name) {
		return nil, errInvalidVarName
	}
	stored, err := in.arena.Strdup(name)
	if err != nil {
		return nil, err
	}
	v := newVariable(in, stored, VAR_NORMAL)
	in.globals[key] = v
	return v, nil
}

func (f *Func) addLocal(in *Interp, name string, attrib uint8) (*Variable, error) {
	key := varKey(name)
	if v, ok := f.vars[key]; ok {
		return v, nil
	}
	if !validVarName(name) {
		return nil, errInvalidVarName
	}
	if _, ok := in.builtins[key]; ok {
		return nil, errReadOnlyVar
	}
	stored, err := in.arena.Strdup(name)
	if err != nil {
		return nil, err
	}
	v := newVariable(in, stored, VAR_NORMAL)
	v.attrib = attrib | VAR_ATTRIB_LOCAL
	f.vars[key] = v
	if attrib&VAR_ATTRIB_STATIC != 0 {
		f.statics = append(f.statics, v)
	} else {
		f.varList = append(f.varList, v)
	}
	return v, nil
}

// ownsVar reports whether v is one of f's non-static locals or params.
func (f *Func) ownsVar(v *Variable) bool {
	for _, l := range f.varList {
		if l == v {
			return true
		}
	}
	return false
}

// Var returns a global variable's current value, for callers outside
// the script.
func (in *Interp) Var(name string) (string, bool) {
	v := in.FindVar(name, nil)
	if v == nil {
		return "", false
	}
	return v.Value(), true
}

// SetVar assigns a global variable from outside the script.
func (in *Interp) SetVar(name, value string) error {
	v, err := in.FindOrAddVar(name, nil, false)
	if err != nil {
		return err
	}
	if v.Type() == VAR_BUILTIN {
		return errReadOnlyVar
	}
	if v.AssignString(value) != OK {
		return errors.New("assignment failed")
	}
	return nil
}

// currentFunc is the innermost user function being executed.
func (in *Interp) currentFunc() *Func {
	if len(in.frames) == 0 {
		return nil
	}
	return in.frames[len(in.frames)-1].fn
}

// findFunc resolves a function name: user functions shadow built-ins.
func (in *Interp) findFunc(name string) *Func {
	key := varKey(name)
	if f, ok := in.funcs[key]; ok {
		return f
	}
	if f, ok := stdlib.fmget(key); ok {
		return f
	}
	return nil
}
