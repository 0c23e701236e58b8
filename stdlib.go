package main

import (
	"strings"
)

type LibHelp struct {
	in     string
	out    string
	action string
}

type Feature struct {
	version  int
	category string
}

var slhelp = make(map[string]LibHelp)
var categories = make(map[string][]string)
var features = make(map[string]Feature)
var stdlib = fmcreate(64)

// help text carries [#i1]..[#i0] italic markers
var helpMarkup = strings.NewReplacer("[#i1]", "", "[#i0]", "")

func buildStandardLib() {
	buildInternalLib()
	buildStringLib()
	buildRegexLib()
	buildMathLib()
	buildConversionLib()
}

// register adds a built-in function callable by name from any script.
func register(name string, minParams, maxParams int, help LibHelp, f BuiltinFunc) {
	key := strings.ToLower(name)
	slhelp[key] = help
	stdlib.fmset(key, &Func{
		name:      name,
		bif:       f,
		minParams: minParams,
		maxParams: maxParams,
		isBuiltin: true,
	})
}

// funcHelp formats the help entry of a built-in, empty when unknown.
func funcHelp(name string) string {
	key := strings.ToLower(name)
	f, ok := stdlib.fmget(key)
	if !ok {
		return ""
	}
	h := slhelp[key]
	return sf("%s(%s) -> %s\n  %s", f.name, h.in, h.out, helpMarkup.Replace(h.action))
}
