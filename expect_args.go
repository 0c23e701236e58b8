package main

import (
	"fmt"
)

/* expect_args()
 *  called by built-in functions to validate the actual parameters before
 *  touching them. "number" needs numeric text, "var" needs a variable,
 *  "string" and "any" take anything.
 */
func expect_args(name string, args []*ExprToken, types ...string) error {
	var type_errs string
	for n, a := range args {
		if n >= len(types) {
			break
		}
		switch types[n] {
		case "number":
			if t, _, _ := tokenNumber(a); t == SYM_STRING {
				type_errs += sf("\nargument %d - number expected", n+1)
			}
		case "var":
			if a.symbol != SYM_VAR {
				type_errs += sf("\nargument %d - variable expected", n+1)
			}
		}
	}
	if type_errs != "" {
		return fmt.Errorf("invalid arguments in %s%s", name, type_errs)
	}
	return nil
}

// argText returns the text of an actual parameter.
func (in *Interp) argText(t *ExprToken) string {
	var tmp [64]byte
	return string(in.tokenBytes(t, tmp[:0]))
}

// argInt returns a numeric parameter as an integer, truncating floats.
func argInt(t *ExprToken) int64 {
	typ, n, f := tokenNumber(t)
	if typ == SYM_FLOAT {
		return int64(f)
	}
	return n
}

func argFloat(t *ExprToken) float64 {
	typ, n, f := tokenNumber(t)
	if typ == SYM_INTEGER {
		return float64(n)
	}
	return f
}

// returnString sets a string result in fresh memory that an output
// variable may adopt.
func (t *ExprToken) returnString(s string) {
	if s == "" {
		t.setString(nil, false)
		return
	}
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	t.setString(buf[:len(s)], false)
	t.mem = buf
}
