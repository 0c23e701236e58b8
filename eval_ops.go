package main

import (
	"bytes"
	"math"
	"strconv"
	"unsafe"
)

//
// NUMBER FORMATTING
//

// appendInt formats n per the integer format setting: decimal, or 0x
// prefixed hex.
func (in *Interp) appendInt(b []byte, n int64) []byte {
	if in.cfg.IntegerFormat == "h" {
		if n < 0 {
			b = append(b, '-', '0', 'x')
			return strconv.AppendUint(b, uint64(-n), 16)
		}
		b = append(b, '0', 'x')
		return strconv.AppendInt(b, n, 16)
	}
	return strconv.AppendInt(b, n, 10)
}

// appendFloat formats f per the float format setting.
func (in *Interp) appendFloat(b []byte, f float64) []byte {
	if in.cfg.FloatFormat == "%0.6f" {
		return strconv.AppendFloat(b, f, 'f', 6, 64)
	}
	return appendf(b, in.cfg.FloatFormat, f)
}

//
// UNARY OPERATORS
//

func (x *expansion) unaryOp(op, right *ExprToken) ResultType {
	switch op.symbol {
	case SYM_HIGHNOT, SYM_LOWNOT:
		op.setInt(boolInt(!tokenToBool(right)))
		return OK
	case SYM_ADDRESS:
		if right.symbol != SYM_VAR {
			op.setEmpty()
			return OK
		}
		op.setInt(int64(x.in.varAddress(right.v)))
		return OK
	}

	typ, n, f := tokenNumber(right)
	if typ == SYM_STRING {
		op.setEmpty()
		return OK
	}
	switch op.symbol {
	case SYM_NEGATIVE:
		if typ == SYM_INTEGER {
			op.setInt(-n)
		} else {
			op.setFloat(-f)
		}
	case SYM_POSITIVE:
		if typ == SYM_INTEGER {
			op.setInt(n)
		} else {
			op.setFloat(f)
		}
	case SYM_BITNOT:
		if typ == SYM_FLOAT {
			n = int64(f)
		}
		// values that fit in 32 bits unsigned are inverted as 32-bit
		if n >= 0 && n <= math.MaxUint32 {
			op.setInt(int64(^uint32(n)))
		} else {
			op.setInt(^n)
		}
	case SYM_DEREF:
		if typ == SYM_FLOAT {
			n = int64(f)
		}
		op.setInt(int64(x.in.peekByte(n)))
	}
	return OK
}

// varAddress is the address of a variable's storage, 0 when it has none.
func (in *Interp) varAddress(v *Variable) uintptr {
	t := v.resolve()
	if t.kind != VAR_NORMAL || len(t.contents) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&t.contents[0]))
}

// peekByte reads one byte at addr. Only addresses inside the live storage
// of a variable of this interpreter are read; anything else, including
// the first 256 addresses, yields 0.
func (in *Interp) peekByte(addr int64) byte {
	if addr < 256 {
		return 0
	}
	a := uintptr(addr)
	look := func(v *Variable) (byte, bool) {
		if v.kind != VAR_NORMAL || len(v.contents) == 0 {
			return 0, false
		}
		base := uintptr(unsafe.Pointer(&v.contents[0]))
		if a < base || a >= base+uintptr(len(v.contents)) {
			return 0, false
		}
		return v.contents[a-base], true
	}
	for _, v := range in.globals {
		if b, ok := look(v); ok {
			return b
		}
	}
	for _, f := range in.funcs {
		for _, v := range f.varList {
			if b, ok := look(v); ok {
				return b
			}
		}
		for _, v := range f.statics {
			if b, ok := look(v); ok {
				return b
			}
		}
	}
	return 0
}

//
// BINARY OPERATORS
//

func isComparison(s SymbolType) bool {
	return s >= SYM_EQUAL && s <= SYM_LTOE
}

func (x *expansion) binaryOp(op, left, right *ExprToken) ResultType {
	sym := op.symbol
	switch {
	case sym == SYM_AND:
		op.setInt(boolInt(tokenToBool(left) && tokenToBool(right)))
		return OK
	case sym == SYM_OR:
		op.setInt(boolInt(tokenToBool(left) || tokenToBool(right)))
		return OK
	case sym == SYM_CONCAT:
		return x.concat(op, left, right)
	case isComparison(sym):
		x.compare(op, left, right)
		return OK
	}

	lt, ln, lf := tokenNumber(left)
	rt, rn, rf := tokenNumber(right)
	if lt == SYM_STRING || rt == SYM_STRING {
		op.setEmpty()
		return OK
	}

	switch sym {
	case SYM_BITOR, SYM_BITXOR, SYM_BITAND, SYM_BITSHIFTLEFT, SYM_BITSHIFTRIGHT:
		if lt == SYM_FLOAT {
			ln = int64(lf)
		}
		if rt == SYM_FLOAT {
			rn = int64(rf)
		}
		bitwiseOp(op, ln, rn)
		return OK
	}

	if lt == SYM_INTEGER && rt == SYM_INTEGER && sym != SYM_DIVIDE {
		integerOp(op, ln, rn)
		return OK
	}
	if lt == SYM_INTEGER {
		lf = float64(ln)
	}
	if rt == SYM_INTEGER {
		rf = float64(rn)
	}
	floatOp(op, lf, rf)
	return OK
}

func bitwiseOp(op *ExprToken, l, r int64) {
	switch op.symbol {
	case SYM_BITOR:
		op.setInt(l | r)
	case SYM_BITXOR:
		op.setInt(l ^ r)
	case SYM_BITAND:
		op.setInt(l & r)
	case SYM_BITSHIFTLEFT:
		if r < 0 {
			op.setEmpty()
			return
		}
		op.setInt(l << uint64(r))
	case SYM_BITSHIFTRIGHT:
		if r < 0 {
			op.setEmpty()
			return
		}
		op.setInt(l >> uint64(r))
	}
}

func integerOp(op *ExprToken, l, r int64) {
	switch op.symbol {
	case SYM_ADD:
		op.setInt(l + r)
	case SYM_SUBTRACT:
		op.setInt(l - r)
	case SYM_MULTIPLY:
		op.setInt(l * r)
	case SYM_FLOORDIVIDE:
		if r == 0 {
			op.setEmpty()
			return
		}
		q := l / r
		if l%r != 0 && (l < 0) != (r < 0) {
			q--
		}
		op.setInt(q)
	case SYM_POWER:
		if r < 0 {
			if l == 0 {
				op.setEmpty()
				return
			}
			op.setFloat(math.Pow(float64(l), float64(r)))
			return
		}
		op.setInt(ipow(l, r))
	}
}

// ipow raises base to a non-negative power with wrapping overflow.
func ipow(base, exp int64) int64 {
	result := int64(1)
	for exp > 0 {
		if exp&1 != 0 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

func floatOp(op *ExprToken, l, r float64) {
	switch op.symbol {
	case SYM_ADD:
		op.setFloat(l + r)
	case SYM_SUBTRACT:
		op.setFloat(l - r)
	case SYM_MULTIPLY:
		op.setFloat(l * r)
	case SYM_DIVIDE:
		if r == 0 {
			op.setEmpty()
			return
		}
		op.setFloat(l / r)
	case SYM_FLOORDIVIDE:
		if r == 0 {
			op.setEmpty()
			return
		}
		op.setFloat(math.Floor(l / r))
	case SYM_POWER:
		if l == 0 && r < 0 {
			op.setEmpty()
			return
		}
		if l < 0 && r != math.Trunc(r) {
			op.setEmpty()
			return
		}
		op.setFloat(math.Pow(l, r))
	}
}

//
// COMPARISON AND CONCATENATION
//

// compareType is the type an operand takes part in a comparison with.
// Quoted literals always compare as strings.
func (x *expansion) compareType(t *ExprToken) (SymbolType, int64, float64) {
	if t.symbol == SYM_STRING {
		return SYM_STRING, 0, 0
	}
	return tokenNumber(t)
}

func (x *expansion) compare(op, left, right *ExprToken) {
	lt, ln, lf := x.compareType(left)
	rt, rn, rf := x.compareType(right)

	var c int
	switch {
	case lt == SYM_STRING || rt == SYM_STRING:
		var lb, rb [64]byte
		l := x.in.tokenBytes(left, lb[:0])
		r := x.in.tokenBytes(right, rb[:0])
		switch op.symbol {
		case SYM_EQUALCASE:
			op.setInt(boolInt(bytes.Equal(l, r)))
			return
		case SYM_EQUAL, SYM_NOTEQUAL:
			var eq bool
			if x.in.cfg.StringCaseSense {
				eq = bytes.Equal(l, r)
			} else {
				eq = equalFoldASCII(l, r)
			}
			op.setInt(boolInt(eq == (op.symbol == SYM_EQUAL)))
			return
		}
		c = x.in.compareStrings(l, r)
	case lt == SYM_INTEGER && rt == SYM_INTEGER:
		c = cmpOrdered(ln, rn)
	default:
		if lt == SYM_INTEGER {
			lf = float64(ln)
		}
		if rt == SYM_INTEGER {
			rf = float64(rn)
		}
		c = cmpOrdered(lf, rf)
	}

	var b bool
	switch op.symbol {
	case SYM_EQUAL, SYM_EQUALCASE:
		b = c == 0
	case SYM_NOTEQUAL:
		b = c != 0
	case SYM_GT:
		b = c > 0
	case SYM_LT:
		b = c < 0
	case SYM_GTOE:
		b = c >= 0
	case SYM_LTOE:
		b = c <= 0
	}
	op.setInt(boolInt(b))
}

func cmpOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// compareStrings orders two strings, folding ASCII case unless string case
// sensitivity is on.
func (in *Interp) compareStrings(a, b []byte) int {
	if in.cfg.StringCaseSense {
		return bytes.Compare(a, b)
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		ca, cb := lowerASCII(a[i]), lowerASCII(b[i])
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
	}
	return cmpOrdered(int64(len(a)), int64(len(b)))
}

func lowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

func equalFoldASCII(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if lowerASCII(a[i]) != lowerASCII(b[i]) {
			return false
		}
	}
	return true
}

// indexFoldASCII is strings.Index ignoring ASCII case. Offsets are byte
// offsets into s.
func indexFoldASCII(s, sub string) int {
outer:
	for i := 0; i+len(sub) <= len(s); i++ {
		for j := 0; j < len(sub); j++ {
			if lowerASCII(s[i+j]) != lowerASCII(sub[j]) {
				continue outer
			}
		}
		return i
	}
	return -1
}

func (x *expansion) concat(op, left, right *ExprToken) ResultType {
	var lb, rb [64]byte
	l := x.in.tokenBytes(left, lb[:0])
	r := x.in.tokenBytes(right, rb[:0])
	n := len(l) + len(r)
	mem, owned, res := x.alloc(n + 1)
	if res != OK {
		return res
	}
	copy(mem, l)
	copy(mem[len(l):], r)
	mem[n] = 0
	op.setString(mem[:n], false)
	if owned {
		op.mem = mem
	}
	return OK
}
