package main

import (
	"strconv"
	"time"
	"unsafe"
)

// stringBytes views s as bytes without copying. The result must not be
// written to.
func stringBytes(s string) []byte {
	if s == "" {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

// builtinText wraps a function producing the whole value at once.
func builtinText(f func(in *Interp) string) BuiltinVarFunc {
	return func(in *Interp, buf []byte) int {
		s := f(in)
		if buf == nil {
			return len(s)
		}
		return copy(buf, s)
	}
}

// builtinNumber reports a fixed width on the size query so that a value
// which changes between the query and the copy still fits.
func builtinNumber(f func(in *Interp) int64) BuiltinVarFunc {
	return func(in *Interp, buf []byte) int {
		if buf == nil {
			return 20
		}
		var tmp [24]byte
		return copy(buf, strconv.AppendInt(tmp[:0], f(in), 10))
	}
}

func timeField(layout string) BuiltinVarFunc {
	return builtinText(func(in *Interp) string {
		return time.Now().Format(layout)
	})
}

func onOff(b bool) string {
	if b {
		return "On"
	}
	return "Off"
}

func (in *Interp) defineBuiltinVars() {
	vars := map[string]BuiltinVarFunc{
		"A_Space": builtinText(func(*Interp) string { return " " }),
		"A_Tab":   builtinText(func(*Interp) string { return "\t" }),
		"A_TickCount": builtinNumber(func(in *Interp) int64 {
			return time.Since(in.startTime).Milliseconds()
		}),
		"A_Now":  timeField("20060102150405"),
		"A_Year": timeField("2006"),
		"A_Mon":  timeField("01"),
		"A_MDay": timeField("02"),
		"A_Hour": timeField("15"),
		"A_Min":  timeField("04"),
		"A_Sec":  timeField("05"),
		"A_ScreenWidth": builtinNumber(func(*Interp) int64 {
			w, _ := terminalSize()
			return int64(w)
		}),
		"A_ScreenHeight": builtinNumber(func(*Interp) int64 {
			_, h := terminalSize()
			return int64(h)
		}),
		"A_ThisFunc": builtinText(func(in *Interp) string {
			if f := in.currentFunc(); f != nil {
				return f.name
			}
			return ""
		}),
		"A_LineNumber": builtinNumber(func(in *Interp) int64 {
			if in.curLine == nil {
				return 0
			}
			return int64(in.curLine.lineNumber)
		}),
		"A_FormatFloat":     builtinText(func(in *Interp) string { return in.cfg.FloatFormat }),
		"A_FormatInteger":   builtinText(func(in *Interp) string { return in.cfg.IntegerFormat }),
		"A_StringCaseSense": builtinText(func(in *Interp) string { return onOff(in.cfg.StringCaseSense) }),
		"A_PtrSize":         builtinNumber(func(*Interp) int64 { return strconv.IntSize / 8 }),
		"true":              builtinText(func(*Interp) string { return "1" }),
		"false":             builtinText(func(*Interp) string { return "0" }),
	}
	for name, f := range vars {
		v := newVariable(in, name, VAR_BUILTIN)
		v.builtin = f
		in.builtins[varKey(name)] = v
	}
	in.builtins["clipboard"] = newVariable(in, "Clipboard", VAR_CLIPBOARD)
}
