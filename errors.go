package main

import (
	"errors"
	"fmt"
	"io"
)

// error classes raised inside the core
var (
	errAllocLimit      = errors.New("memory limit reached")
	errOutOfMemory     = errors.New("out of memory")
	errExprSyntax      = errors.New("expression syntax error")
	errDerefLimit      = errors.New("expanded line exceeds the deref buffer limit")
	errStackOverflow   = errors.New("expression too complex")
	errTooManyParams   = errors.New("too many parameters passed to function")
	errTooFewParams    = errors.New("too few parameters passed to function")
	errByRefNotVar     = errors.New("caller must pass a variable to this ByRef parameter")
	errUnknownFunction = errors.New("call to nonexistent function")
	errInvalidVarName  = errors.New("invalid variable name")
	errReadOnlyVar     = errors.New("variable is read-only")
)

// ErrorSink receives every reported error and decides whether the
// current script thread carries on (OK) or is aborted (FAIL).
type ErrorSink interface {
	ReportError(msg, extra string, line *Line) ResultType
}

// reportSink writes a single report per error and always aborts.
type reportSink struct {
	out io.Writer
}

func (s *reportSink) ReportError(msg, extra string, line *Line) ResultType {
	lineNo := 0
	where := "auto-execute"
	text := ""
	if line != nil {
		lineNo = line.lineNumber
		text = line.text
		if line.fn != nil {
			where = line.fn.name
		}
	}
	fields := map[string]any{"where": where}
	if extra != "" {
		fields["specifically"] = extra
	}
	logError(lineNo, msg, fields)

	if s.out == nil {
		return FAIL
	}
	report := sf("Error in %s (line #%d) : %s\n%s\n", where, lineNo, text, msg)
	if extra != "" {
		report += sf("Specifically: %s\n", extra)
	}
	io.WriteString(s.out, report)
	return FAIL
}

// reportError reports against the line currently executing.
func (in *Interp) reportError(msg, extra string) ResultType {
	return in.lineError(in.curLine, msg, extra)
}

func (in *Interp) lineError(line *Line, msg, extra string) ResultType {
	in.errorCount++
	return in.sink.ReportError(msg, extra, line)
}

// memError reports an allocation failure for the named item.
func (in *Interp) memError(err error, name string) ResultType {
	switch {
	case errors.Is(err, errAllocLimit):
		return in.reportError(sf("%v. Raise max_var_capacity if this is intended.", err), name)
	case errors.Is(err, errArenaRequestTooLarge):
		return in.reportError(errOutOfMemory.Error(), fmt.Sprintf("%s: %v", name, err))
	}
	return in.reportError(err.Error(), name)
}

// warn logs a non-fatal problem; the thread always continues.
func (in *Interp) warn(line *Line, msg string) {
	lineNo := 0
	if line != nil {
		lineNo = line.lineNumber
	}
	plog(LOG_WARNING, msg, map[string]any{"line": lineNo})
}
