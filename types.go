package main

//
// TYPES
//

// Line holds one loaded statement. Everything reachable from a Line is
// created once at load time and never changes afterwards.
type Line struct {
	args       []ArgStruct
	text       string // arena backed, for error reports
	fn         *Func  // enclosing function, nil at global scope
	next       *Line
	related    *Line // BLOCK_BEGIN: matching BLOCK_END. IF: its ELSE, if any.
	after      *Line // first line following this statement and everything it owns
	lineNumber int
	compound   SymbolType // operator of +=, .= and friends; zero (SYM_STRING) for a plain :=
	act        uint8
}

func (l *Line) isCompound() bool {
	return l.compound != SYM_STRING
}

func (l *Line) String() string {
	return sf("%03d: %s", l.lineNumber, l.text)
}

// ArgStruct is one pre-classified argument of a Line.
type ArgStruct struct {
	text         string // arena backed
	derefs       []DerefType
	v            *Variable // input/output var args
	typ          uint8
	isExpression bool
}

// DerefType marks a span of an arg's text which is a variable reference,
// a function call name or a dynamically named (double) reference.
type DerefType struct {
	v      *Variable
	fn     *Func
	name   string
	parts  []DerefType // DEREF_DOUBLE: the %var% pieces inside the span
	marker int         // offset of the span in the arg text
	length int
	kind   uint8
}

// ExprToken is an element of the infix and postfix streams and of the
// evaluation stack. The symbol says which payload field is live.
type ExprToken struct {
	str     []byte     // SYM_STRING, SYM_OPERAND; read-only view
	mem     []byte     // heap memory owned by this result, may be handed to a variable
	v       *Variable  // SYM_VAR
	fn      *Func      // SYM_FUNC
	circuit *ExprToken // AND/OR to short-circuit to when this token completes a left branch
	num     int64
	flt     float64
	params  int // SYM_FUNC: actual parameter count
	symbol  SymbolType
}

func (t *ExprToken) String() string {
	switch t.symbol {
	case SYM_STRING:
		return sf("%q", t.str)
	case SYM_OPERAND:
		return string(t.str)
	case SYM_INTEGER:
		return sf("%d", t.num)
	case SYM_FLOAT:
		return sf("%g", t.flt)
	case SYM_VAR:
		return "var:" + t.v.name
	case SYM_FUNC:
		if t.fn != nil {
			return sf("%s/%d", t.fn.name, t.params)
		}
		return "func"
	}
	return t.symbol.String()
}

func (t *ExprToken) setInt(n int64) {
	t.symbol = SYM_INTEGER
	t.num = n
	t.str = nil
	t.mem = nil
	t.v = nil
}

func (t *ExprToken) setFloat(f float64) {
	t.symbol = SYM_FLOAT
	t.flt = f
	t.str = nil
	t.mem = nil
	t.v = nil
}

// setString makes the token a string result. quoted picks between an
// explicit string (never numeric) and a generic operand.
func (t *ExprToken) setString(b []byte, quoted bool) {
	if quoted {
		t.symbol = SYM_STRING
	} else {
		t.symbol = SYM_OPERAND
	}
	t.str = b
	t.mem = nil
	t.v = nil
}

func (t *ExprToken) setEmpty() {
	t.setString(nil, true)
}

func (t *ExprToken) isOperand() bool {
	return t.symbol < SYM_OPERAND_END
}

// FuncParam is one formal parameter.
type FuncParam struct {
	v          *Variable
	defStr     string
	defInt     int64
	defFloat   float64
	defSym     SymbolType
	isByRef    bool
	hasDefault bool
}

// BuiltinFunc receives its actual parameters and fills in result, which
// starts out as integer zero. A returned error is not fatal: it is stored
// in ErrorLevel and the call yields an empty string.
type BuiltinFunc = func(in *Interp, result *ExprToken, args []*ExprToken) error

// Func is either a user defined function or a built-in.
type Func struct {
	name        string
	params      []FuncParam
	body        *Line
	vars        map[string]*Variable // locals, params and statics keyed by lower case name
	varList     []*Variable          // non-static locals and params, in declaration order
	statics     []*Variable
	globalNames map[string]bool
	bif         BuiltinFunc
	minParams   int
	maxParams   int
	instances   int // active invocations, drives the backup-only-if-reentered rule
	lineNumber  int
	isBuiltin   bool
}

// VarBkp holds a variable's control data while a re-entrant call of its
// function runs. The storage itself moves into the backup, it is not copied.
type VarBkp struct {
	v        *Variable
	contents []byte
	alias    *Variable
	length   int
	kind     uint8
	alloc    uint8
	attrib   uint8
}

// callFrame is pushed for each active user function invocation.
type callFrame struct {
	fn     *Func
	caller *Line
	backup []VarBkp
}
