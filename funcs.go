package main

import "errors"

// deepest user function nesting before a call is refused
const maxCallDepth = 2000

var errRecursionLimit = errors.New("function recursion limit exceeded")

// callFunc invokes the function of token t with args and leaves the
// result in t.
func (x *expansion) callFunc(t *ExprToken, args []*ExprToken, sideEffectOnly bool) ResultType {
	fn := t.fn
	n := len(args)
	if n > fn.maxParams {
		return x.in.reportError(errTooManyParams.Error(), fn.name)
	}
	if n < fn.minParams {
		return x.in.reportError(errTooFewParams.Error(), fn.name)
	}
	if fn.isBuiltin {
		return x.callBuiltin(t, fn, args)
	}
	return x.callUserFunc(t, fn, args, sideEffectOnly)
}

func (x *expansion) callBuiltin(t *ExprToken, fn *Func, args []*ExprToken) ResultType {
	var result ExprToken
	result.setInt(0)
	if err := fn.bif(x.in, &result, args); err != nil {
		x.in.errorLevel.AssignString(err.Error())
		plog(LOG_INFO, "built-in function failed", map[string]any{"func": fn.name, "error": err.Error()})
		t.setEmpty()
		return OK
	}
	circuit := t.circuit
	*t = result
	t.circuit = circuit
	return OK
}

// callUserFunc runs a user function body. A function that is already
// running has its locals backed up first and restored afterwards, so
// recursion sees fresh locals at every level.
func (x *expansion) callUserFunc(t *ExprToken, fn *Func, args []*ExprToken, sideEffectOnly bool) ResultType {
	in := x.in
	if len(in.frames) >= maxCallDepth {
		return in.reportError(errRecursionLimit.Error(), fn.name)
	}
	reentering := fn.instances > 0

	// Arguments that name variables are resolved before the backup moves
	// their storage away. Passing one of this function's own locals into a
	// recursive call is done by value.
	byValue := make([]bool, len(args))
	for j, a := range args {
		if a.symbol != SYM_VAR {
			continue
		}
		a.v = a.v.resolve()
		if reentering && (!fn.params[j].isByRef || fn.ownsVar(a.v)) {
			b, mem, r := x.persist(a.v.bytesView())
			if r != OK {
				return r
			}
			a.setString(b, false)
			a.mem = mem
			byValue[j] = true
		}
	}
	for j := range args {
		if fn.params[j].isByRef && args[j].symbol != SYM_VAR && !byValue[j] {
			in.callError(errByRefNotVar, fn.params[j].v.name)
			t.setEmpty()
			return OK
		}
	}

	var backup []VarBkp
	if reentering {
		backup = make([]VarBkp, 0, len(fn.varList))
		for _, v := range fn.varList {
			backup = append(backup, v.backup())
		}
	}

	var ret ExprToken
	ret.setEmpty()
	r := func() ResultType {
		in.frames = append(in.frames, callFrame{fn: fn, caller: x.line, backup: backup})
		fn.instances++
		saved := in.detachDerefBuf()
		curLine := in.curLine
		defer func() {
			in.restoreDerefBuf(saved)
			in.curLine = curLine
			fn.instances--
			for _, v := range fn.varList {
				v.Free(VAR_ALWAYS_FREE_BUT_EXCLUDE_STATIC, true)
			}
			for k := len(backup) - 1; k >= 0; k-- {
				backup[k].restore()
			}
			in.frames = in.frames[:len(in.frames)-1]
		}()

		for j := range fn.params {
			p := &fn.params[j]
			var r ResultType
			switch {
			case j < len(args) && p.isByRef && !byValue[j]:
				p.v.UpdateAlias(args[j].v)
				r = OK
			case j < len(args):
				r = p.v.AssignToken(args[j])
			default:
				r = p.assignDefault()
			}
			if r != OK {
				return r
			}
		}

		r := in.ExecUntil(fn.body, ONLY_ONE_LINE, &ret)
		if r == EARLY_RETURN {
			r = OK
		}
		if r != OK || sideEffectOnly {
			return r
		}
		// the result may live in a local or in the callee's deref buffer,
		// both of which are about to go away
		return x.persistResult(t, &ret)
	}()
	if r != OK {
		return r
	}
	if sideEffectOnly {
		t.setEmpty()
	}
	return OK
}

func (p *FuncParam) assignDefault() ResultType {
	if !p.hasDefault {
		return p.v.Assign(nil)
	}
	switch p.defSym {
	case SYM_INTEGER:
		return p.v.AssignInt(p.defInt)
	case SYM_FLOAT:
		return p.v.AssignFloat(p.defFloat)
	}
	return p.v.AssignString(p.defStr)
}

// persistResult copies a function's return value into memory owned by the
// calling expression.
func (x *expansion) persistResult(t *ExprToken, ret *ExprToken) ResultType {
	switch ret.symbol {
	case SYM_INTEGER:
		t.setInt(ret.num)
		return OK
	case SYM_FLOAT:
		t.setFloat(ret.flt)
		return OK
	case SYM_STRING, SYM_OPERAND:
		if ret.mem != nil {
			t.setString(ret.str, ret.symbol == SYM_STRING)
			t.mem = ret.mem
			return OK
		}
		b, mem, r := x.persist(ret.str)
		if r != OK {
			return r
		}
		t.setString(b, ret.symbol == SYM_STRING)
		t.mem = mem
		return OK
	case SYM_VAR:
		b, mem, r := x.persist(ret.v.bytesView())
		if r != OK {
			return r
		}
		t.setString(b, false)
		t.mem = mem
		return OK
	}
	t.setEmpty()
	return OK
}

// callError reports a problem that aborts only the function call being
// made; the calling statement carries on with an empty result.
func (in *Interp) callError(err error, name string) {
	in.errorCount++
	in.sink.ReportError(err.Error(), name, in.curLine)
}
