package main

// argRef locates one expanded argument. Literal text and input variables
// that need no copy are referenced in place; everything else lives in the
// deref buffer and is addressed by offset so that growing the buffer
// never leaves a stale reference behind.
type argRef struct {
	text   string
	direct []byte
	off    int
	n      int
	kind   uint8
}

const (
	argEmpty uint8 = iota
	argText
	argDirect
	argBuf
)

// expansion is the state of one ExpandArgs call.
type expansion struct {
	in     *Interp
	line   *Line
	buf    *DerefBuffer
	args   []argRef
	vars   []*Variable
	sizes  []int
	target int // next free byte for finished arguments
	tail   int // next free byte for intermediate results
	cur    int // argument being expanded
	mem    exprMem
}

// arg returns the expanded argument i.
func (x *expansion) arg(i int) []byte {
	if i >= len(x.args) {
		return nil
	}
	a := &x.args[i]
	switch a.kind {
	case argText:
		return stringBytes(a.text)
	case argDirect:
		return a.direct
	case argBuf:
		return x.buf.data[a.off : a.off+a.n]
	}
	return nil
}

func (x *expansion) argString(i int) string {
	return string(x.arg(i))
}

// argMustBeDereferenced reports whether an input variable has to be
// copied into the deref buffer rather than passed by reference: its value
// is computed on demand, comes from the environment, or the same variable
// is written by this line.
func (l *Line) argMustBeDereferenced(v *Variable, idx int, argVars []*Variable) bool {
	if v.isVolatile() || v.isEnvShadowed() {
		return true
	}
	r := v.resolve()
	for j := range l.args {
		if j == idx || l.args[j].typ != ARG_TYPE_OUTPUT_VAR || argVars[j] == nil {
			continue
		}
		if argVars[j].resolve() == r {
			return true
		}
	}
	return false
}

func derefSize(d *DerefType) int {
	switch d.kind {
	case DEREF_VAR:
		if d.v.isVolatile() || d.v.isEnvShadowed() {
			return d.v.Get(nil) + 1
		}
	case DEREF_DOUBLE:
		n := d.length + 1
		for i := range d.parts {
			n += d.parts[i].v.Get(nil)
		}
		return n
	}
	return 0
}

// GetExpandedArgSize returns an upper bound on the deref buffer space the
// line's arguments need, and fills sizes with the per-argument share.
func (in *Interp) GetExpandedArgSize(line *Line, argVars []*Variable, sizes []int) int {
	total := 0
	for i := range line.args {
		a := &line.args[i]
		n := 0
		switch {
		case a.typ == ARG_TYPE_OUTPUT_VAR:
		case a.isExpression:
			n = len(a.text) + 1
			for j := range a.derefs {
				n += derefSize(&a.derefs[j])
			}
		case a.typ == ARG_TYPE_INPUT_VAR:
			if line.argMustBeDereferenced(argVars[i], i, argVars) {
				n = argVars[i].Get(nil) + 1
			}
		case len(a.derefs) > 0:
			n = len(a.text) + 1
			for j := range a.derefs {
				n += a.derefs[j].v.Get(nil)
			}
		}
		sizes[i] = n
		total += n
	}
	return total
}

// ExpandArgs resolves every argument of line. Expression arguments are
// evaluated; when result is non-nil the final value of the expression is
// stored there instead of in the buffer.
func (in *Interp) ExpandArgs(line *Line, result *ExprToken) (*expansion, ResultType) {
	n := len(line.args)
	x := &expansion{
		in:    in,
		line:  line,
		args:  make([]argRef, n),
		vars:  make([]*Variable, n),
		sizes: make([]int, n),
	}
	for i := range line.args {
		if line.args[i].typ != ARG_TYPE_NORMAL {
			x.vars[i] = line.args[i].v
		}
	}
	space := in.GetExpandedArgSize(line, x.vars, x.sizes)
	buf, r := in.acquireDerefBuf(space)
	if r != OK {
		return nil, r
	}
	x.buf = buf
	for i := range line.args {
		x.cur = i
		a := &line.args[i]
		switch {
		case a.typ == ARG_TYPE_OUTPUT_VAR:
		case a.isExpression:
			r = x.expandExpression(i, result)
		case a.typ == ARG_TYPE_INPUT_VAR:
			v := x.vars[i]
			if line.argMustBeDereferenced(v, i, x.vars) {
				r = x.copyVar(i, v)
			} else {
				x.args[i] = argRef{kind: argDirect, direct: v.bytesView()}
			}
		case len(a.derefs) == 0:
			x.args[i] = argRef{kind: argText, text: a.text}
		default:
			r = x.expandText(i)
		}
		if r != OK {
			return nil, r
		}
	}
	return x, OK
}

// reserveAfter is the space still promised to the arguments after i.
func (x *expansion) reserveAfter(i int) int {
	n := 0
	for _, s := range x.sizes[i+1:] {
		n += s
	}
	return n
}

// ensure makes room for n more bytes at target without eating into the
// space promised to later arguments.
func (x *expansion) ensure(i, n int) ResultType {
	need := x.target + n + x.reserveAfter(i)
	if need <= len(x.buf.data) {
		return OK
	}
	return x.in.growDerefBuf(x.buf, need)
}

func (x *expansion) finishArg(i, start int) {
	x.buf.data[x.target] = 0
	x.args[i] = argRef{kind: argBuf, off: start, n: x.target - start}
	x.target++
}

func (x *expansion) copyVar(i int, v *Variable) ResultType {
	n := v.Get(nil)
	if r := x.ensure(i, n+1); r != OK {
		return r
	}
	start := x.target
	x.target += v.Get(x.buf.data[start : start+n])
	x.finishArg(i, start)
	return OK
}

// putBytes appends b as the finished value of argument i.
func (x *expansion) putBytes(i int, b []byte) ResultType {
	if r := x.ensure(i, len(b)+1); r != OK {
		return r
	}
	start := x.target
	x.target += copy(x.buf.data[start:], b)
	x.finishArg(i, start)
	return OK
}

// expandText substitutes %var% references in a plain text argument.
func (x *expansion) expandText(i int) ResultType {
	a := &x.line.args[i]
	start := x.target
	pos := 0
	for j := range a.derefs {
		d := &a.derefs[j]
		lit := a.text[pos:d.marker]
		if r := x.ensure(i, len(lit)); r != OK {
			return r
		}
		x.target += copy(x.buf.data[x.target:], lit)
		n := d.v.Get(nil)
		if r := x.ensure(i, n); r != OK {
			return r
		}
		x.target += d.v.Get(x.buf.data[x.target : x.target+n])
		pos = d.marker + d.length
	}
	lit := a.text[pos:]
	if r := x.ensure(i, len(lit)+1); r != OK {
		return r
	}
	x.target += copy(x.buf.data[x.target:], lit)
	x.finishArg(i, start)
	return OK
}

// expandExpression evaluates expression argument i.
func (x *expansion) expandExpression(i int, result *ExprToken) ResultType {
	x.tail = x.target
	infix, r := x.tokenize(i)
	if r != OK {
		return r
	}
	postfix, err := toPostfix(infix)
	if err != nil {
		return x.in.reportError(err.Error(), x.line.args[i].text)
	}
	return x.evaluate(postfix, i, result)
}

// exprMem holds intermediate results that did not fit in the deref buffer
// tail. It dies with the expansion.
type exprMem struct {
	small     []byte
	smallUsed int
	heap      [][]byte
}

// alloc returns n bytes for an intermediate result. Memory comes from the
// unused tail of the deref buffer first, then a small scratch area, then
// the heap. owned is true only for heap memory, which a variable may adopt.
func (x *expansion) alloc(n int) (mem []byte, owned bool, r ResultType) {
	if x.tail < x.target {
		x.tail = x.target
	}
	limit := len(x.buf.data) - x.reserveAfter(x.cur)
	if x.tail+n <= limit {
		mem = x.buf.data[x.tail : x.tail+n : x.tail+n]
		x.tail += n
		return mem, false, OK
	}
	m := &x.mem
	if n < exprSmallMemLimit && m.smallUsed+n <= exprSmallMemTotal {
		if m.small == nil {
			m.small = make([]byte, exprSmallMemTotal)
		}
		mem = m.small[m.smallUsed : m.smallUsed+n : m.smallUsed+n]
		m.smallUsed += n
		return mem, false, OK
	}
	if len(m.heap) >= maxExprMemItems {
		return nil, false, x.in.reportError(errOutOfMemory.Error(), "too many intermediate results")
	}
	if n > x.in.cfg.MaxVarCapacity {
		return nil, false, x.in.memError(errAllocLimit, "expression result")
	}
	mem = make([]byte, n)
	m.heap = append(m.heap, mem)
	return mem, true, OK
}

// persist copies b into memory that outlives the rest of the expression.
func (x *expansion) persist(b []byte) ([]byte, []byte, ResultType) {
	mem, owned, r := x.alloc(len(b) + 1)
	if r != OK {
		return nil, nil, r
	}
	copy(mem, b)
	mem[len(b)] = 0
	if owned {
		return mem[:len(b)], mem, OK
	}
	return mem[:len(b)], nil, OK
}
