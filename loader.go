package main

import (
	"errors"
	"fmt"
	"strings"
)

var errLoad = errors.New("load error")

// loader turns script text into linked Lines. Function bodies are kept on
// chains of their own; everything else goes on the main chain.
type loader struct {
	in          *Interp
	name        string
	src         []string
	idx         int
	lineNo      int
	fn          *Func // function whose body is being loaded
	fnDepth     int
	fnLast      *Line
	pendingFunc *Func // definition seen, its "{" not yet
	depth       int
	first       *Line
	last        *Line
	bodies      []*Line
	statics     []*Line
	inComment   bool
}

// Load parses src and returns the first line of its main chain, which is
// nil when src holds only definitions. Static initializers run before
// Load returns.
func (in *Interp) Load(name, src string) (*Line, error) {
	ld := &loader{in: in, name: name, src: strings.Split(src, "\n")}
	for ld.idx = 0; ld.idx < len(ld.src); ld.idx++ {
		ld.lineNo = ld.idx + 1
		raw := strings.TrimRight(ld.src[ld.idx], "\r")
		if err := ld.loadLine(raw); err != nil {
			logError(ld.lineNo, err.Error(), map[string]any{"file": name})
			return nil, fmt.Errorf("%w: %s line %d: %w\n\t%s", errLoad, name, ld.lineNo, err, strings.TrimSpace(raw))
		}
	}
	if ld.pendingFunc != nil {
		return nil, fmt.Errorf("%w: %s: function %s has no body", errLoad, name, ld.pendingFunc.name)
	}
	if ld.depth != 0 {
		return nil, fmt.Errorf("%w: %s: missing \"}\"", errLoad, name)
	}

	chains := append([]*Line{ld.first}, ld.bodies...)
	for _, c := range chains {
		if err := in.resolveFuncRefs(c); err != nil {
			return nil, fmt.Errorf("%w: %s %w", errLoad, name, err)
		}
		if err := preparseBlocks(c); err != nil {
			return nil, fmt.Errorf("%w: %s %w", errLoad, name, err)
		}
	}
	for _, l := range ld.statics {
		if err := in.resolveFuncRefs(l); err != nil {
			return nil, fmt.Errorf("%w: %s %w", errLoad, name, err)
		}
	}

	if in.firstLine == nil {
		in.firstLine = ld.first
	}
	if ld.last != nil {
		in.lastLine = ld.last
	}

	for _, l := range ld.statics {
		in.curLine = l
		if _, r := in.ExpandArgs(l, nil); r != OK {
			return nil, fmt.Errorf("%w: %s line %d: static initializer failed", errLoad, name, l.lineNumber)
		}
	}
	plog(LOG_DEBUG, "script loaded", map[string]any{"file": name, "lines": len(ld.src), "functions": len(ld.bodies)})
	return ld.first, nil
}

// stripComment removes a ; comment that starts the line or follows a
// blank. An escaped `; is kept.
func stripComment(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] != ';' {
			continue
		}
		if i == 0 || (s[i-1] == ' ' || s[i-1] == '\t') {
			return s[:i]
		}
	}
	return s
}

func (ld *loader) loadLine(raw string) error {
	text := strings.TrimSpace(raw)
	if ld.inComment {
		if strings.HasPrefix(text, "*/") {
			ld.inComment = false
		}
		return nil
	}
	if strings.HasPrefix(text, "/*") {
		ld.inComment = !strings.HasSuffix(text, "*/")
		return nil
	}
	text = strings.TrimSpace(stripComment(text))
	if text == "" {
		return nil
	}

	for strings.HasPrefix(text, "}") {
		if err := ld.closeBlock(); err != nil {
			return err
		}
		text = strings.TrimSpace(text[1:])
	}
	if text == "" {
		return nil
	}
	if ld.pendingFunc != nil && text != "{" {
		return errors.New("function definition must be followed by \"{\"")
	}
	if text == "{" {
		return ld.openBlock()
	}

	otb := false
	if strings.HasSuffix(text, "{") {
		prefix := strings.TrimSpace(text[:len(text)-1])
		lp := strings.ToLower(prefix)
		if strings.HasSuffix(prefix, ")") || lp == "else" || strings.HasPrefix(lp, "if ") || strings.HasPrefix(lp, "else ") {
			otb = true
			text = prefix
		}
	}

	if ld.fn == nil && ld.depth == 0 && isFuncDef(text) && (otb || ld.nextLineIsBrace()) {
		if err := ld.defineFunc(text); err != nil {
			return err
		}
		if otb {
			return ld.openBlock()
		}
		return nil
	}
	if err := ld.statement(text); err != nil {
		return err
	}
	if otb {
		return ld.openBlock()
	}
	return nil
}

func (ld *loader) nextLineIsBrace() bool {
	for i := ld.idx + 1; i < len(ld.src); i++ {
		t := strings.TrimSpace(stripComment(strings.TrimSpace(ld.src[i])))
		if t != "" {
			return strings.HasPrefix(t, "{")
		}
	}
	return false
}

// store copies s into the arena. Text longer than an arena block is kept
// on the heap instead.
func (in *Interp) store(s string) string {
	t, err := in.arena.Strdup(s)
	if err != nil {
		return strings.Clone(s)
	}
	return t
}

func (ld *loader) emit(act uint8, text string, args []ArgStruct) *Line {
	l := &Line{
		act:        act,
		text:       ld.in.store(text),
		fn:         ld.fn,
		args:       args,
		lineNumber: ld.lineNo,
	}
	if ld.fn != nil {
		if ld.fnLast != nil {
			ld.fnLast.next = l
		}
		ld.fnLast = l
		return l
	}
	if ld.last != nil {
		ld.last.next = l
	} else {
		ld.first = l
	}
	ld.last = l
	return l
}

func (ld *loader) openBlock() error {
	if fn := ld.pendingFunc; fn != nil {
		ld.pendingFunc = nil
		ld.fn = fn
		ld.fnDepth = ld.depth
		ld.fnLast = nil
		fn.body = ld.emit(ACT_BLOCK_BEGIN, "{", nil)
		ld.bodies = append(ld.bodies, fn.body)
		ld.depth++
		return nil
	}
	ld.emit(ACT_BLOCK_BEGIN, "{", nil)
	ld.depth++
	return nil
}

func (ld *loader) closeBlock() error {
	if ld.depth == 0 {
		return errors.New("unexpected \"}\"")
	}
	ld.depth--
	ld.emit(ACT_BLOCK_END, "}", nil)
	if ld.fn != nil && ld.depth == ld.fnDepth {
		ld.fn = nil
		ld.fnLast = nil
	}
	return nil
}

//
// STATEMENTS
//

var commandActions = map[string]uint8{
	"echo":        ACT_ECHO,
	"stringupper": ACT_STRINGUPPER,
	"stringlower": ACT_STRINGLOWER,
	"stringlen":   ACT_STRINGLEN,
	"envset":      ACT_ENVSET,
	"envget":      ACT_ENVGET,
}

// argument layout and minimum count of each command
var commandArgs = map[uint8]struct {
	types []uint8
	min   int
}{
	ACT_ECHO:        {[]uint8{ARG_TYPE_NORMAL}, 0},
	ACT_STRINGUPPER: {[]uint8{ARG_TYPE_OUTPUT_VAR, ARG_TYPE_INPUT_VAR}, 2},
	ACT_STRINGLOWER: {[]uint8{ARG_TYPE_OUTPUT_VAR, ARG_TYPE_INPUT_VAR}, 2},
	ACT_STRINGLEN:   {[]uint8{ARG_TYPE_OUTPUT_VAR, ARG_TYPE_INPUT_VAR}, 2},
	ACT_ENVSET:      {[]uint8{ARG_TYPE_NORMAL, ARG_TYPE_NORMAL}, 1},
	ACT_ENVGET:      {[]uint8{ARG_TYPE_OUTPUT_VAR, ARG_TYPE_NORMAL}, 2},
}

var assignOps = []struct {
	op  string
	sym SymbolType
}{
	{":=", SYM_STRING},
	{"+=", SYM_ADD},
	{"-=", SYM_SUBTRACT},
	{"*=", SYM_MULTIPLY},
	{"//=", SYM_FLOORDIVIDE},
	{"/=", SYM_DIVIDE},
	{".=", SYM_CONCAT},
	{"|=", SYM_BITOR},
	{"&=", SYM_BITAND},
	{"^=", SYM_BITXOR},
	{"++", SYM_ADD},
	{"--", SYM_SUBTRACT},
}

func splitFirstWord(s string) (string, string) {
	i := 0
	for i < len(s) && isVarChar(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

func (ld *loader) statement(text string) error {
	word, rest := splitFirstWord(text)
	lw := strings.ToLower(word)
	trest := strings.TrimSpace(rest)
	separated := rest == "" || isSpace(rest[0]) || rest[0] == ','

	switch {
	case lw == "else" && separated:
		ld.emit(ACT_ELSE, "else", nil)
		if trest == "" {
			return nil
		}
		return ld.statement(trest)

	case lw == "if" && (separated || rest[0] == '('):
		if trest == "" {
			return errors.New("IF has no condition")
		}
		arg, err := ld.expressionArg(trest)
		if err != nil {
			return err
		}
		ld.emit(ACT_IF, text, []ArgStruct{arg})
		return nil

	case lw == "return" && separated:
		trest = strings.TrimSpace(strings.TrimPrefix(trest, ","))
		if trest == "" {
			ld.emit(ACT_RETURN, text, nil)
			return nil
		}
		arg, err := ld.expressionArg(trest)
		if err != nil {
			return err
		}
		ld.emit(ACT_RETURN, text, []ArgStruct{arg})
		return nil

	case lw == "exit" && separated:
		ld.emit(ACT_EXIT, text, nil)
		return nil

	case (lw == "global" || lw == "local" || lw == "static") && separated && !isAssignment(trest):
		return ld.declaration(lw, text, trest)
	}

	if word != "" {
		for _, a := range assignOps {
			if !strings.HasPrefix(trest, a.op) {
				continue
			}
			return ld.assignment(text, word, a.op, a.sym, strings.TrimSpace(trest[len(a.op):]))
		}
		if strings.HasPrefix(trest, "=") && !strings.HasPrefix(trest, "==") {
			return ld.legacyAssignment(text, word, strings.TrimSpace(trest[1:]))
		}
		if act, ok := commandActions[lw]; ok && separated {
			return ld.command(act, text, rest)
		}
	}

	arg, err := ld.expressionArg(text)
	if err != nil {
		return err
	}
	ld.emit(ACT_EXPRESSION, text, []ArgStruct{arg})
	return nil
}

func isAssignment(s string) bool {
	for _, a := range assignOps {
		if strings.HasPrefix(s, a.op) {
			return true
		}
	}
	return strings.HasPrefix(s, "=") && !strings.HasPrefix(s, "==")
}

func (ld *loader) outputVar(name string) (*Variable, error) {
	v, err := ld.in.FindOrAddVar(name, ld.fn, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, name)
	}
	if v.Type() == VAR_BUILTIN {
		return nil, fmt.Errorf("%w: %s", errReadOnlyVar, name)
	}
	return v, nil
}

func (ld *loader) assignment(text, name, op string, sym SymbolType, expr string) error {
	out, err := ld.outputVar(name)
	if err != nil {
		return err
	}
	if op == "++" || op == "--" {
		if expr != "" {
			return fmt.Errorf("unexpected text after %s", op)
		}
		expr = "1"
	}
	if expr == "" && sym != SYM_STRING {
		return fmt.Errorf("missing value after %s", op)
	}
	arg, err := ld.expressionArg(expr)
	if err != nil {
		return err
	}
	l := ld.emit(ACT_ASSIGNEXPR, text, []ArgStruct{{typ: ARG_TYPE_OUTPUT_VAR, v: out, text: out.name}, arg})
	l.compound = sym
	return nil
}

func (ld *loader) legacyAssignment(text, name, value string) error {
	out, err := ld.outputVar(name)
	if err != nil {
		return err
	}
	arg, err := ld.normalArg(value)
	if err != nil {
		return err
	}
	ld.emit(ACT_ASSIGN, text, []ArgStruct{{typ: ARG_TYPE_OUTPUT_VAR, v: out, text: out.name}, arg})
	return nil
}

func (ld *loader) command(act uint8, text, rest string) error {
	spec := commandArgs[act]
	parts := splitArgs(rest, len(spec.types), false)
	if len(parts) < spec.min {
		return fmt.Errorf("%s needs at least %d parameters", actionNames[act], spec.min)
	}
	args := make([]ArgStruct, 0, len(parts))
	for i, p := range parts {
		switch spec.types[i] {
		case ARG_TYPE_OUTPUT_VAR:
			v, err := ld.outputVar(p)
			if err != nil {
				return err
			}
			args = append(args, ArgStruct{typ: ARG_TYPE_OUTPUT_VAR, v: v, text: v.name})
		case ARG_TYPE_INPUT_VAR:
			v, err := ld.in.FindOrAddVar(p, ld.fn, false)
			if err != nil {
				return fmt.Errorf("%w: %q", err, p)
			}
			args = append(args, ArgStruct{typ: ARG_TYPE_INPUT_VAR, v: v, text: v.name})
		default:
			a, err := ld.normalArg(p)
			if err != nil {
				return err
			}
			args = append(args, a)
		}
	}
	ld.emit(act, text, args)
	return nil
}

// declaration handles global, local and static lists. A static with an
// initializer gets a line of its own that runs once, at the end of Load.
func (ld *loader) declaration(kind, text, list string) error {
	fn := ld.fn
	if fn == nil && kind != "global" {
		return fmt.Errorf("%s is only valid inside a function", kind)
	}
	if list == "" {
		return fmt.Errorf("%s needs a list of variable names", kind)
	}
	act := map[string]uint8{"global": ACT_GLOBAL, "local": ACT_LOCAL, "static": ACT_STATIC}[kind]
	for _, item := range splitArgs(list, 0, true) {
		name, init, hasInit := strings.Cut(item, ":=")
		name = strings.TrimSpace(name)
		init = strings.TrimSpace(init)
		if hasInit && kind != "static" {
			return fmt.Errorf("%s does not take an initializer", kind)
		}
		if !validVarName(name) {
			return fmt.Errorf("%w: %q", errInvalidVarName, name)
		}
		key := varKey(name)
		switch kind {
		case "global":
			if fn != nil {
				if _, used := fn.vars[key]; used {
					return fmt.Errorf("%s declared global after being used as a local", name)
				}
				fn.globalNames[key] = true
			}
			if _, err := ld.in.findOrAddGlobal(name); err != nil {
				return err
			}
		case "local":
			if _, err := fn.addLocal(ld.in, name, 0); err != nil {
				return err
			}
		case "static":
			if _, used := fn.vars[key]; used {
				return fmt.Errorf("%s declared static after being used", name)
			}
			v, err := fn.addLocal(ld.in, name, VAR_ATTRIB_STATIC)
			if err != nil {
				return err
			}
			if hasInit {
				arg, err := ld.expressionArg(init)
				if err != nil {
					return err
				}
				ld.statics = append(ld.statics, &Line{
					act:        ACT_ASSIGNEXPR,
					text:       ld.in.store(item),
					fn:         fn,
					args:       []ArgStruct{{typ: ARG_TYPE_OUTPUT_VAR, v: v, text: v.name}, arg},
					lineNumber: ld.lineNo,
				})
			}
		}
	}
	ld.emit(act, text, nil)
	return nil
}

//
// FUNCTION DEFINITIONS
//

var reservedWords = map[string]bool{"if": true, "else": true, "return": true, "exit": true, "global": true, "local": true, "static": true}

func isFuncDef(text string) bool {
	i := strings.IndexByte(text, '(')
	if i <= 0 || !strings.HasSuffix(text, ")") {
		return false
	}
	name := text[:i]
	return validVarName(name) && !reservedWords[strings.ToLower(name)]
}

func (ld *loader) defineFunc(text string) error {
	i := strings.IndexByte(text, '(')
	name := text[:i]
	key := varKey(name)
	if _, dup := ld.in.funcs[key]; dup {
		return fmt.Errorf("duplicate function definition: %s", name)
	}
	if stdlib.fmexists(key) {
		plog(LOG_NOTICE, "user function replaces a built-in", map[string]any{"func": name, "line": ld.lineNo})
	}
	fn := &Func{
		name:        ld.in.store(name),
		vars:        make(map[string]*Variable),
		globalNames: make(map[string]bool),
		lineNumber:  ld.lineNo,
	}
	plist := strings.TrimSpace(text[i+1 : len(text)-1])
	if plist != "" {
		for _, p := range splitArgs(plist, 0, true) {
			fp, err := ld.param(fn, p)
			if err != nil {
				return err
			}
			if !fp.hasDefault && len(fn.params) > 0 && fn.params[len(fn.params)-1].hasDefault {
				return fmt.Errorf("parameter %s must have a default since it follows an optional one", fp.v.name)
			}
			fn.params = append(fn.params, fp)
		}
	}
	if len(fn.params) > maxFuncParams {
		return fmt.Errorf("%w: %s", errTooManyParams, name)
	}
	fn.maxParams = len(fn.params)
	for _, p := range fn.params {
		if !p.hasDefault {
			fn.minParams++
		}
	}
	ld.in.funcs[key] = fn
	ld.pendingFunc = fn
	return nil
}

func (ld *loader) param(fn *Func, p string) (FuncParam, error) {
	var fp FuncParam
	p = strings.TrimSpace(p)
	if len(p) > 6 && strings.EqualFold(p[:6], "byref ") {
		fp.isByRef = true
		p = strings.TrimSpace(p[6:])
	}
	name, def, hasDef := strings.Cut(p, ":=")
	if !hasDef {
		name, def, hasDef = strings.Cut(p, "=")
	}
	name = strings.TrimSpace(name)
	if _, dup := fn.vars[varKey(name)]; dup {
		return fp, fmt.Errorf("duplicate parameter: %s", name)
	}
	v, err := fn.addLocal(ld.in, name, VAR_ATTRIB_PARAM)
	if err != nil {
		return fp, fmt.Errorf("%w: parameter %q", err, name)
	}
	fp.v = v
	if !hasDef {
		return fp, nil
	}
	fp.hasDefault = true
	def = strings.TrimSpace(def)
	switch {
	case strings.HasPrefix(def, "\""):
		lit, n, ok := scanQuoted(def)
		if !ok || n != len(def) {
			return fp, fmt.Errorf("bad default for %s: %s", name, def)
		}
		fp.defSym = SYM_STRING
		fp.defStr = ld.in.store(string(lit))
	case strings.EqualFold(def, "true"), strings.EqualFold(def, "false"):
		fp.defSym = SYM_INTEGER
		fp.defInt = boolInt(strings.EqualFold(def, "true"))
	default:
		t, ok := numberToken(def)
		if !ok {
			return fp, fmt.Errorf("default for %s must be a literal: %s", name, def)
		}
		fp.defSym = t.symbol
		fp.defInt = t.num
		fp.defFloat = t.flt
	}
	return fp, nil
}

//
// ARGUMENTS
//

func isForcedExpr(s string) bool {
	t := strings.TrimLeft(s, " \t")
	return len(t) >= 2 && t[0] == '%' && (t[1] == ' ' || t[1] == '\t')
}

// splitArgs splits an argument list on commas. A backtick escapes a comma
// and commas inside the parentheses or quotes of an expression do not
// split. With max > 0 the last argument takes the rest of the text.
func splitArgs(s string, max int, allExpr bool) []string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, ",")
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var args []string
	start, depth := 0, 0
	inQuote := false
	expr := allExpr || isForcedExpr(s)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '`':
			i++
		case expr && c == '"':
			inQuote = !inQuote
		case expr && !inQuote && c == '(':
			depth++
		case expr && !inQuote && c == ')':
			depth--
		case c == ',' && depth == 0 && !inQuote && (max <= 0 || len(args) < max-1):
			args = append(args, strings.TrimSpace(s[start:i]))
			start = i + 1
			expr = allExpr || isForcedExpr(s[start:])
		}
	}
	return append(args, strings.TrimSpace(s[start:]))
}

func escapeChar(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case 'b':
		return '\b'
	case 'v':
		return '\v'
	case 'a':
		return '\a'
	case 'f':
		return '\f'
	}
	return c
}

// normalArg parses a plain text argument: escape sequences are applied and
// %name% references recorded. A leading "% " makes it an expression.
func (ld *loader) normalArg(s string) (ArgStruct, error) {
	if isForcedExpr(s) {
		return ld.expressionArg(strings.TrimSpace(strings.TrimLeft(s, " \t")[1:]))
	}
	var out strings.Builder
	var derefs []DerefType
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '`' && i+1 < len(s) {
			i++
			out.WriteByte(escapeChar(s[i]))
			continue
		}
		if c != '%' {
			out.WriteByte(c)
			continue
		}
		j := strings.IndexByte(s[i+1:], '%')
		if j < 0 {
			return ArgStruct{}, fmt.Errorf("missing ending \"%%\": %s", s[i:])
		}
		name := s[i+1 : i+1+j]
		v, err := ld.in.FindOrAddVar(name, ld.fn, false)
		if err != nil {
			return ArgStruct{}, fmt.Errorf("%w: %q", err, name)
		}
		derefs = append(derefs, DerefType{kind: DEREF_VAR, v: v, marker: out.Len(), length: j + 2})
		out.WriteString(s[i : i+j+2])
		i += j + 1
	}
	text := ld.in.store(out.String())
	for k := range derefs {
		d := &derefs[k]
		d.name = text[d.marker+1 : d.marker+d.length-1]
	}
	return ArgStruct{typ: ARG_TYPE_NORMAL, text: text, derefs: derefs}, nil
}

// unescapeExpr applies escape sequences inside the quoted strings of an
// expression.
func unescapeExpr(s string) string {
	if strings.IndexByte(s, '`') < 0 {
		return s
	}
	var out strings.Builder
	inQuote := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' {
			inQuote = !inQuote
		}
		if c == '`' && inQuote && i+1 < len(s) {
			i++
			out.WriteByte(escapeChar(s[i]))
			continue
		}
		out.WriteByte(c)
	}
	return out.String()
}

// expressionArg parses an expression argument, recording each variable
// reference, function call name and dynamic reference it contains.
func (ld *loader) expressionArg(s string) (ArgStruct, error) {
	text := ld.in.store(unescapeExpr(s))
	derefs, err := ld.exprDerefs(text)
	if err != nil {
		return ArgStruct{}, err
	}
	return ArgStruct{typ: ARG_TYPE_NORMAL, text: text, derefs: derefs, isExpression: true}, nil
}

var exprKeywords = map[string]bool{"and": true, "or": true, "not": true}

func (ld *loader) exprDerefs(text string) ([]DerefType, error) {
	var derefs []DerefType
	depth := 0
	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == '"':
			_, n, ok := scanQuoted(text[i:])
			if !ok {
				return nil, fmt.Errorf("missing close-quote: %s", text[i:])
			}
			i += n
			continue
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("missing \"(\": %s", text)
			}
		}
		if isDigit(c) {
			n := scanNumber(text[i:])
			if numberType(stringBytes(text[i:i+n])) != SYM_STRING {
				i += n
				continue
			}
		}
		if !isVarChar(c) && c != '%' {
			i++
			continue
		}

		start := i
		var parts []DerefType
		for i < len(text) {
			if isVarChar(text[i]) {
				i++
				continue
			}
			if text[i] != '%' {
				break
			}
			j := strings.IndexByte(text[i+1:], '%')
			if j < 0 {
				return nil, fmt.Errorf("missing ending \"%%\": %s", text[i:])
			}
			name := text[i+1 : i+1+j]
			v, err := ld.in.FindOrAddVar(name, ld.fn, false)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", err, name)
			}
			parts = append(parts, DerefType{kind: DEREF_VAR, v: v, name: name, marker: i, length: j + 2})
			i += j + 2
		}
		word := text[start:i]
		switch {
		case parts != nil:
			if i < len(text) && text[i] == '(' {
				return nil, fmt.Errorf("dynamic function calls are not supported: %s", word)
			}
			derefs = append(derefs, DerefType{kind: DEREF_DOUBLE, name: word, parts: parts, marker: start, length: len(word)})
		case exprKeywords[strings.ToLower(word)]:
		case i < len(text) && text[i] == '(':
			derefs = append(derefs, DerefType{kind: DEREF_FUNC, name: word, marker: start, length: len(word)})
		default:
			v, err := ld.in.FindOrAddVar(word, ld.fn, false)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", err, word)
			}
			derefs = append(derefs, DerefType{kind: DEREF_VAR, v: v, name: word, marker: start, length: len(word)})
		}
	}
	if depth > 0 {
		return nil, fmt.Errorf("missing \")\": %s", text)
	}
	return derefs, nil
}

//
// LINKING
//

// resolveFuncRefs binds every function call name on the chain.
func (in *Interp) resolveFuncRefs(first *Line) error {
	for l := first; l != nil; l = l.next {
		for a := range l.args {
			for k := range l.args[a].derefs {
				d := &l.args[a].derefs[k]
				if d.kind != DEREF_FUNC {
					continue
				}
				if d.fn = in.findFunc(d.name); d.fn == nil {
					return fmt.Errorf("line %d: %w: %s", l.lineNumber, errUnknownFunction, d.name)
				}
			}
		}
	}
	return nil
}

// stmtAfter returns the line that follows l together with everything l
// owns: a block's contents, an IF's action and its ELSE branch.
func stmtAfter(l *Line) *Line {
	if l == nil {
		return nil
	}
	switch l.act {
	case ACT_BLOCK_BEGIN:
		return l.related.next
	case ACT_IF:
		a := stmtAfter(l.next)
		if a != nil && a.act == ACT_ELSE {
			l.related = a
			return stmtAfter(a.next)
		}
		return a
	}
	return l.next
}

// preparseBlocks pairs braces, attaches each ELSE to its IF and records
// where every statement ends.
func preparseBlocks(first *Line) error {
	var stack []*Line
	for l := first; l != nil; l = l.next {
		switch l.act {
		case ACT_BLOCK_BEGIN:
			stack = append(stack, l)
		case ACT_BLOCK_END:
			if len(stack) == 0 {
				return fmt.Errorf("line %d: unexpected \"}\"", l.lineNumber)
			}
			stack[len(stack)-1].related = l
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		return fmt.Errorf("line %d: missing \"}\"", stack[0].lineNumber)
	}

	claimed := make(map[*Line]bool)
	for l := first; l != nil; l = l.next {
		if l.act == ACT_IF || l.act == ACT_ELSE {
			if n := l.next; n == nil || n.act == ACT_ELSE || n.act == ACT_BLOCK_END {
				return fmt.Errorf("line %d: %s has no action", l.lineNumber, strings.ToUpper(actionNames[l.act]))
			}
		}
		l.after = stmtAfter(l)
		if l.act == ACT_IF && l.related != nil {
			claimed[l.related] = true
		}
	}
	for l := first; l != nil; l = l.next {
		if l.act == ACT_ELSE && !claimed[l] {
			return fmt.Errorf("line %d: ELSE with no matching IF", l.lineNumber)
		}
	}
	return nil
}
