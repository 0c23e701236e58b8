package main

// evaluate runs the postfix stream of argument argIndex. The final value
// goes to result when one is given, to the output variable of an
// assignment, or otherwise into the deref buffer as the expanded arg.
func (x *expansion) evaluate(postfix []*ExprToken, argIndex int, result *ExprToken) ResultType {
	stack := make([]*ExprToken, 0, 16)
	pop := func() *ExprToken {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return t
	}

	for i := 0; i < len(postfix); i++ {
		t := postfix[i]
		sym := t.symbol
		switch {
		case t.isOperand():

		case sym == SYM_FUNC:
			if len(stack) < t.params {
				return x.syntaxError(errStackUnderflow.Error())
			}
			args := make([]*ExprToken, t.params)
			copy(args, stack[len(stack)-t.params:])
			stack = stack[:len(stack)-t.params]
			sideEffectOnly := x.line.act == ACT_EXPRESSION && i == len(postfix)-1 && result == nil
			if r := x.callFunc(t, args, sideEffectOnly); r != OK {
				return r
			}
			if sideEffectOnly {
				x.args[argIndex] = argRef{kind: argEmpty}
				return OK
			}

		case isPrefixOp(sym):
			if len(stack) < 1 {
				return x.syntaxError(errStackUnderflow.Error())
			}
			if r := x.unaryOp(t, pop()); r != OK {
				return r
			}

		default:
			if len(stack) < 2 {
				return x.syntaxError(errStackUnderflow.Error())
			}
			right := pop()
			left := pop()
			if r := x.binaryOp(t, left, right); r != OK {
				return r
			}
		}

		// A finished left branch whose value already decides its AND/OR
		// skips the right branch. The AND/OR takes the boolean result and
		// may in turn finish another left branch.
		for t.circuit != nil {
			c := t.circuit
			b := tokenToBool(t)
			if c.symbol == SYM_AND && b || c.symbol == SYM_OR && !b {
				break
			}
			for i++; postfix[i] != c; i++ {
			}
			c.setInt(boolInt(b))
			t = c
		}
		stack = append(stack, t)
	}

	var final *ExprToken
	switch len(stack) {
	case 0:
		final = &ExprToken{symbol: SYM_STRING}
	case 1:
		final = stack[0]
	default:
		return x.syntaxError("missing operator")
	}

	if result != nil {
		*result = *final
		return OK
	}
	if x.line.act == ACT_ASSIGNEXPR && argIndex == 1 {
		if x.line.isCompound() {
			return x.applyCompound(final)
		}
		return x.vars[0].AssignToken(final)
	}
	var tmp [64]byte
	return x.putBytes(argIndex, x.in.tokenBytes(final, tmp[:0]))
}

// applyCompound finishes x op= value. An empty target counts as zero for
// the arithmetic operators.
func (x *expansion) applyCompound(right *ExprToken) ResultType {
	out := x.vars[0]
	op := x.line.compound
	left := ExprToken{symbol: SYM_VAR, v: out}
	if op != SYM_CONCAT && out.Get(nil) == 0 {
		left.setInt(0)
	}
	res := ExprToken{symbol: op}
	if r := x.binaryOp(&res, &left, right); r != OK {
		return r
	}
	return out.AssignToken(&res)
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// tokenBytes returns the text of an operand. Numbers are formatted into
// tmp.
func (in *Interp) tokenBytes(t *ExprToken, tmp []byte) []byte {
	switch t.symbol {
	case SYM_INTEGER:
		return in.appendInt(tmp, t.num)
	case SYM_FLOAT:
		return in.appendFloat(tmp, t.flt)
	case SYM_VAR:
		return t.v.bytesView()
	}
	return t.str
}

// tokenNumber classifies an operand for arithmetic. Quoted literals that
// look numeric count as numbers here.
func tokenNumber(t *ExprToken) (SymbolType, int64, float64) {
	switch t.symbol {
	case SYM_INTEGER:
		return SYM_INTEGER, t.num, 0
	case SYM_FLOAT:
		return SYM_FLOAT, 0, t.flt
	}
	var b []byte
	if t.symbol == SYM_VAR {
		b = t.v.bytesView()
	} else {
		b = t.str
	}
	switch numberType(b) {
	case SYM_INTEGER:
		return SYM_INTEGER, parseInt64(b), 0
	case SYM_FLOAT:
		return SYM_FLOAT, 0, parseFloat64(b)
	}
	return SYM_STRING, 0, 0
}

// tokenToBool gives the truth value of an operand. A quoted literal is
// true when non-empty; other text is false when empty or numerically zero.
func tokenToBool(t *ExprToken) bool {
	switch t.symbol {
	case SYM_INTEGER:
		return t.num != 0
	case SYM_FLOAT:
		return t.flt != 0
	case SYM_STRING:
		return len(t.str) > 0
	}
	typ, n, f := tokenNumber(t)
	switch typ {
	case SYM_INTEGER:
		return n != 0
	case SYM_FLOAT:
		return f != 0
	}
	if t.symbol == SYM_VAR {
		return t.v.Get(nil) > 0
	}
	return len(t.str) > 0
}
