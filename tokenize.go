package main

import (
	"strings"
)

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// endsOperand reports whether a token can be the left side of a binary
// operator.
func endsOperand(t *ExprToken) bool {
	return t.isOperand() || t.symbol == SYM_CPAREN
}

// startsOperand reports whether a token placed right after an operand
// implies concatenation.
func startsOperand(t *ExprToken) bool {
	switch t.symbol {
	case SYM_FUNC, SYM_OPAREN, SYM_HIGHNOT, SYM_LOWNOT, SYM_BITNOT:
		return true
	}
	return t.isOperand()
}

func (x *expansion) syntaxError(detail string) ResultType {
	return x.in.reportError(errExprSyntax.Error(), detail)
}

// addInfix appends t, inserting an implicit concatenation when two
// operands meet.
func (x *expansion) addInfix(infix *[]ExprToken, t ExprToken) ResultType {
	list := *infix
	if n := len(list); n > 0 && endsOperand(&list[n-1]) && startsOperand(&t) {
		if t.symbol != SYM_OPAREN || list[n-1].symbol != SYM_FUNC {
			list = append(list, ExprToken{symbol: SYM_CONCAT})
		}
	}
	if len(list) >= maxTokens {
		return x.syntaxError(errStackOverflow.Error())
	}
	*infix = append(list, t)
	return OK
}

// tokenize turns an expression argument into infix tokens. Variable and
// function references were located at load time; the text around them is
// scanned here for literals, keywords and operators.
func (x *expansion) tokenize(i int) ([]ExprToken, ResultType) {
	a := &x.line.args[i]
	infix := make([]ExprToken, 0, 16)
	pos := 0
	for j := 0; ; j++ {
		end := len(a.text)
		var d *DerefType
		if j < len(a.derefs) {
			d = &a.derefs[j]
			end = d.marker
		}
		if r := x.scanRaw(a.text[pos:end], &infix); r != OK {
			return nil, r
		}
		if d == nil {
			break
		}
		var r ResultType
		switch d.kind {
		case DEREF_FUNC:
			if d.fn == nil {
				return nil, x.in.reportError(errUnknownFunction.Error(), d.name)
			}
			r = x.addInfix(&infix, ExprToken{symbol: SYM_FUNC, fn: d.fn})
		case DEREF_VAR:
			r = x.addVarToken(&infix, d.v)
		case DEREF_DOUBLE:
			v := x.resolveDouble(a.text, d)
			if v == nil {
				r = x.addInfix(&infix, ExprToken{symbol: SYM_OPERAND})
			} else {
				r = x.addVarToken(&infix, v)
			}
		}
		if r != OK {
			return nil, r
		}
		pos = d.marker + d.length
	}
	return infix, OK
}

// addVarToken pushes a variable operand. Values computed on demand are
// copied now so that every read within the expression sees one value.
func (x *expansion) addVarToken(infix *[]ExprToken, v *Variable) ResultType {
	if v.isVolatile() || v.isEnvShadowed() {
		n := v.Get(nil)
		mem, owned, r := x.alloc(n + 1)
		if r != OK {
			return r
		}
		n = v.Get(mem[:n])
		mem[n] = 0
		t := ExprToken{symbol: SYM_OPERAND, str: mem[:n]}
		if owned {
			t.mem = mem
		}
		return x.addInfix(infix, t)
	}
	return x.addInfix(infix, ExprToken{symbol: SYM_VAR, v: v})
}

// resolveDouble builds the variable name of a double deref such as
// Array%i% and finds or creates the variable. Names that are invalid or
// belong to a read-only variable give nil.
func (x *expansion) resolveDouble(text string, d *DerefType) *Variable {
	var tmp [maxVarNameLength + 1]byte
	name := tmp[:0]
	pos := d.marker
	for k := range d.parts {
		p := &d.parts[k]
		name = append(name, text[pos:p.marker]...)
		n := p.v.Get(nil)
		if len(name)+n > maxVarNameLength {
			return nil
		}
		start := len(name)
		name = name[:start+n]
		name = name[:start+p.v.Get(name[start:])]
		pos = p.marker + p.length
	}
	name = append(name, text[pos:d.marker+d.length]...)
	v, err := x.in.FindOrAddVar(string(name), x.line.fn, true)
	if err != nil || v.Type() == VAR_BUILTIN {
		return nil
	}
	return v
}

var keywordSymbols = map[string]SymbolType{
	"and": SYM_AND,
	"or":  SYM_OR,
	"not": SYM_LOWNOT,
}

// scanRaw tokenizes text that holds no variable or function references.
func (x *expansion) scanRaw(s string, infix *[]ExprToken) ResultType {
	for i := 0; i < len(s); {
		c := s[i]
		if isSpace(c) {
			i++
			continue
		}
		list := *infix
		afterOperand := len(list) > 0 && endsOperand(&list[len(list)-1])

		switch {
		case c == '"':
			lit, n, ok := scanQuoted(s[i:])
			if !ok {
				return x.syntaxError("missing close-quote: " + s[i:])
			}
			if r := x.addInfix(infix, ExprToken{symbol: SYM_STRING, str: lit}); r != OK {
				return r
			}
			i += n
			continue

		case isDigit(c) || (c == '.' && i+1 < len(s) && isDigit(s[i+1]) && !afterOperand):
			n := scanNumber(s[i:])
			t, ok := numberToken(s[i : i+n])
			if !ok {
				return x.syntaxError("invalid number: " + s[i:i+n])
			}
			if r := x.addInfix(infix, t); r != OK {
				return r
			}
			i += n
			continue

		case isVarChar(c):
			j := i
			for j < len(s) && isVarChar(s[j]) {
				j++
			}
			sym, ok := keywordSymbols[strings.ToLower(s[i:j])]
			if !ok {
				return x.syntaxError("unexpected word: " + s[i:j])
			}
			if (sym == SYM_AND || sym == SYM_OR) && !afterOperand {
				return x.syntaxError("missing operand before " + s[i:j])
			}
			if r := x.addInfix(infix, ExprToken{symbol: sym}); r != OK {
				return r
			}
			i = j
			continue
		}

		sym, n, r := x.scanOperator(s, i, afterOperand)
		if r != OK {
			return r
		}
		if sym == SYM_NEGATIVE && x.negativeLiteral(s, i+1) {
			m := scanNumber(s[i+1:])
			t, ok := numberToken(s[i : i+1+m])
			if !ok {
				return x.syntaxError("invalid number: " + s[i:i+1+m])
			}
			if r := x.addInfix(infix, t); r != OK {
				return r
			}
			i += 1 + m
			continue
		}
		if r := x.addInfix(infix, ExprToken{symbol: sym}); r != OK {
			return r
		}
		i += n
	}
	return OK
}

// negativeLiteral reports whether the unary minus before s[i:] should be
// folded into a numeric literal. It is not when the number is the base of
// a power, so that -2**2 is -(2**2).
func (x *expansion) negativeLiteral(s string, i int) bool {
	if i >= len(s) || !(isDigit(s[i]) || s[i] == '.' && i+1 < len(s) && isDigit(s[i+1])) {
		return false
	}
	j := i + scanNumber(s[i:])
	for j < len(s) && isSpace(s[j]) {
		j++
	}
	return !strings.HasPrefix(s[j:], "**")
}

// scanOperator reads one operator at s[i]. afterOperand selects between
// the binary and prefix meaning of symbols that have both.
func (x *expansion) scanOperator(s string, i int, afterOperand bool) (SymbolType, int, ResultType) {
	c := s[i]
	var next byte
	if i+1 < len(s) {
		next = s[i+1]
	}
	binary := func(sym SymbolType, n int) (SymbolType, int, ResultType) {
		if !afterOperand {
			return 0, 0, x.syntaxError("missing operand before " + s[i:i+n])
		}
		return sym, n, OK
	}
	switch c {
	case '(':
		return SYM_OPAREN, 1, OK
	case ')':
		return SYM_CPAREN, 1, OK
	case ',':
		return SYM_COMMA, 1, OK
	case '+':
		if afterOperand {
			return SYM_ADD, 1, OK
		}
		return SYM_POSITIVE, 1, OK
	case '-':
		if afterOperand {
			return SYM_SUBTRACT, 1, OK
		}
		return SYM_NEGATIVE, 1, OK
	case '*':
		if afterOperand {
			if next == '*' {
				return SYM_POWER, 2, OK
			}
			return SYM_MULTIPLY, 1, OK
		}
		return SYM_DEREF, 1, OK
	case '/':
		if next == '/' {
			return binary(SYM_FLOORDIVIDE, 2)
		}
		return binary(SYM_DIVIDE, 1)
	case '&':
		if afterOperand {
			if next == '&' {
				return SYM_AND, 2, OK
			}
			return SYM_BITAND, 1, OK
		}
		return SYM_ADDRESS, 1, OK
	case '|':
		if next == '|' {
			return binary(SYM_OR, 2)
		}
		return binary(SYM_BITOR, 1)
	case '^':
		return binary(SYM_BITXOR, 1)
	case '~':
		return SYM_BITNOT, 1, OK
	case '!':
		if next == '=' {
			return binary(SYM_NOTEQUAL, 2)
		}
		return SYM_HIGHNOT, 1, OK
	case '=':
		if next == '=' {
			return binary(SYM_EQUALCASE, 2)
		}
		return binary(SYM_EQUAL, 1)
	case '<':
		switch next {
		case '=':
			return binary(SYM_LTOE, 2)
		case '>':
			return binary(SYM_NOTEQUAL, 2)
		case '<':
			return binary(SYM_BITSHIFTLEFT, 2)
		}
		return binary(SYM_LT, 1)
	case '>':
		switch next {
		case '=':
			return binary(SYM_GTOE, 2)
		case '>':
			return binary(SYM_BITSHIFTRIGHT, 2)
		}
		return binary(SYM_GT, 1)
	case '.':
		return binary(SYM_CONCAT, 1)
	}
	return 0, 0, x.syntaxError("unexpected character: " + s[i:])
}

// scanQuoted reads a quoted literal at the start of s. A doubled quote
// stands for one quote character.
func scanQuoted(s string) ([]byte, int, bool) {
	var out []byte
	escaped := false
	for i := 1; i < len(s); i++ {
		if s[i] != '"' {
			continue
		}
		if i+1 < len(s) && s[i+1] == '"' {
			escaped = true
			i++
			continue
		}
		body := s[1:i]
		if !escaped {
			return stringBytes(body), i + 1, true
		}
		out = make([]byte, 0, len(body))
		for k := 0; k < len(body); k++ {
			out = append(out, body[k])
			if body[k] == '"' {
				k++
			}
		}
		return out, i + 1, true
	}
	return nil, 0, false
}

// scanNumber returns the length of the numeric literal at the start of s.
func scanNumber(s string) int {
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case isDigit(c) || c == '.' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_':
			i++
			if (c == 'e' || c == 'E') && i < len(s) && (s[i] == '+' || s[i] == '-') &&
				strings.IndexByte(s[:i], '.') >= 0 && !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
				i++
			}
		default:
			return i
		}
	}
	return i
}

func numberToken(s string) (ExprToken, bool) {
	var t ExprToken
	b := stringBytes(s)
	switch numberType(b) {
	case SYM_INTEGER:
		t.setInt(parseInt64(b))
	case SYM_FLOAT:
		t.setFloat(parseFloat64(b))
	default:
		return t, false
	}
	return t, true
}
