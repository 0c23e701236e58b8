package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
)

var errEval = errors.New("evaluation failed")

// Run executes the main chain of the loaded script.
func (in *Interp) Run() ResultType {
	return in.run(in.firstLine)
}

// Exec loads src as an addition to the script and runs its statements.
func (in *Interp) Exec(src string) (ResultType, error) {
	first, err := in.Load("<exec>", src)
	if err != nil {
		return FAIL, err
	}
	return in.run(first), nil
}

func (in *Interp) run(first *Line) ResultType {
	in.running = true
	defer func() {
		in.running = false
		in.curLine = nil
	}()
	var ret ExprToken
	r := in.ExecUntil(first, NORMAL_MODE, &ret)
	if r == EARLY_RETURN || r == EARLY_EXIT {
		r = OK
	}
	return r
}

// Evaluate computes a single expression in global scope. A variable
// result is returned as its text.
func (in *Interp) Evaluate(expr string) (ExprToken, error) {
	ld := &loader{in: in, name: "<eval>", lineNo: 1}
	arg, err := ld.expressionArg(expr)
	if err != nil {
		return ExprToken{}, fmt.Errorf("%w: %w", errExprSyntax, err)
	}
	l := &Line{act: ACT_RETURN, text: arg.text, args: []ArgStruct{arg}, lineNumber: 1}
	if err := in.resolveFuncRefs(l); err != nil {
		return ExprToken{}, err
	}

	in.running = true
	defer func() {
		in.running = false
		in.curLine = nil
	}()
	in.curLine = l
	var tok ExprToken
	if _, r := in.ExpandArgs(l, &tok); r != OK {
		return ExprToken{}, fmt.Errorf("%w: %s", errEval, expr)
	}
	switch tok.symbol {
	case SYM_VAR:
		tok.setString(bytes.Clone(tok.v.bytesView()), false)
	case SYM_STRING, SYM_OPERAND:
		tok.str = bytes.Clone(tok.str)
		tok.mem = nil
	}
	tok.circuit = nil
	return tok, nil
}

// EvalString is Evaluate with the result formatted as text.
func (in *Interp) EvalString(expr string) (string, error) {
	tok, err := in.Evaluate(expr)
	if err != nil {
		return "", err
	}
	return in.tokenText(&tok), nil
}

func (in *Interp) tokenText(t *ExprToken) string {
	var tmp [64]byte
	switch t.symbol {
	case SYM_INTEGER:
		return string(in.appendInt(tmp[:0], t.num))
	case SYM_FLOAT:
		return string(in.appendFloat(tmp[:0], t.flt))
	case SYM_VAR:
		return t.v.Value()
	}
	return string(t.str)
}

// ExecUntil runs statements starting at line. In UNTIL_BLOCK_END mode it
// stops at the first block end, in ONLY_ONE_LINE mode after one statement.
// Any result other than OK ends the run and is passed back.
func (in *Interp) ExecUntil(line *Line, mode uint8, result *ExprToken) ResultType {
	for line != nil {
		if line.act == ACT_BLOCK_END {
			if mode == UNTIL_BLOCK_END {
				return OK
			}
			line = line.next
			continue
		}
		r, next := in.execStatement(line, result)
		if r != OK {
			return r
		}
		if mode == ONLY_ONE_LINE {
			return OK
		}
		line = next
	}
	return OK
}

// execStatement runs one statement and everything it owns, returning the
// line to continue with.
func (in *Interp) execStatement(line *Line, result *ExprToken) (ResultType, *Line) {
	in.curLine = line
	switch line.act {
	case ACT_BLOCK_BEGIN:
		return in.ExecUntil(line.next, UNTIL_BLOCK_END, result), line.after

	case ACT_IF:
		cond, r := in.evalCondition(line)
		if r != OK {
			return r, nil
		}
		var branch *Line
		if cond {
			branch = line.next
		} else if line.related != nil {
			branch = line.related.next
		}
		if branch != nil {
			if r, _ := in.execStatement(branch, result); r != OK {
				return r, nil
			}
		}
		return OK, line.after

	case ACT_ELSE:
		return OK, line.after

	case ACT_RETURN:
		if len(line.args) > 0 {
			if _, r := in.ExpandArgs(line, result); r != OK {
				return r, nil
			}
		}
		return EARLY_RETURN, nil

	case ACT_EXIT:
		return EARLY_EXIT, nil

	case ACT_GLOBAL, ACT_LOCAL, ACT_STATIC:
		return OK, line.after
	}
	return in.performAction(line), line.after
}

func (in *Interp) evalCondition(line *Line) (bool, ResultType) {
	var tok ExprToken
	if _, r := in.ExpandArgs(line, &tok); r != OK {
		return false, r
	}
	return tokenToBool(&tok), OK
}

func (in *Interp) performAction(line *Line) ResultType {
	x, r := in.ExpandArgs(line, nil)
	if r != OK {
		return r
	}
	switch line.act {
	case ACT_ASSIGN:
		return x.vars[0].Assign(x.arg(1))
	case ACT_ECHO:
		b := x.arg(0)
		out := make([]byte, 0, len(b)+1)
		out = append(append(out, b...), '\n')
		in.out.Write(out)
	case ACT_STRINGUPPER:
		return x.vars[0].Assign(bytes.ToUpper(x.arg(1)))
	case ACT_STRINGLOWER:
		return x.vars[0].Assign(bytes.ToLower(x.arg(1)))
	case ACT_STRINGLEN:
		return x.vars[0].AssignInt(int64(len(x.arg(1))))
	case ACT_ENVSET:
		var err error
		if value := x.argString(1); value == "" {
			err = os.Unsetenv(x.argString(0))
		} else {
			err = os.Setenv(x.argString(0), value)
		}
		return in.setErrorLevel(err != nil)
	case ACT_ENVGET:
		return x.vars[0].AssignString(os.Getenv(x.argString(1)))
	}
	return OK
}

func (in *Interp) setErrorLevel(failed bool) ResultType {
	return in.errorLevel.AssignInt(boolInt(failed))
}
