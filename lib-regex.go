package main

import (
	"errors"

	"github.com/puzpuzpuz/xsync/v3"
)

// regexEngine is a compiled pattern. The engine behind it is picked at
// build time: PCRE with the pcre tag, the standard library otherwise.
type regexEngine interface {
	// find returns the byte offsets of the first match in s, nil if none.
	find(s string) []int
	// replaceAll substitutes repl literally for every match.
	replaceAll(s, repl string) string
}

var regexCache = xsync.NewMapOf[string, regexEngine]()

var errBadRegex = errors.New("invalid regular expression")

func getRegex(pattern string) (regexEngine, error) {
	if re, ok := regexCache.Load(pattern); ok {
		return re, nil
	}
	re, err := compileRegex(pattern)
	if err != nil {
		return nil, err
	}
	regexCache.Store(pattern, re)
	return re, nil
}

func buildRegexLib() {

	features["regex"] = Feature{version: 1, category: "text"}
	categories["regex"] = []string{"RegExMatch", "RegExReplace"}

	register("RegExMatch", 2, 4, LibHelp{in: "haystack,needle[,output_var[,start]]", out: "integer",
		action: "Returns the position of the first match of pattern [#i1]needle[#i0] in [#i1]haystack[#i0], 0 when there is none.\n" +
			"The matched text is stored in [#i1]output_var[#i0] when given."},
		func(in *Interp, result *ExprToken, args []*ExprToken) error {
			if err := expect_args("RegExMatch", args, "string", "string", "var", "number"); err != nil {
				return err
			}
			hay := in.argText(args[0])
			re, err := getRegex(in.argText(args[1]))
			if err != nil {
				return err
			}
			from := 0
			if len(args) > 3 {
				from = int(argInt(args[3])) - 1
				if from < 0 {
					from += len(hay) + 1
				}
				if from < 0 || from > len(hay) {
					result.setInt(0)
					return nil
				}
			}
			loc := re.find(hay[from:])
			if len(args) > 2 {
				var matched string
				if loc != nil {
					matched = hay[from+loc[0] : from+loc[1]]
				}
				if r := args[2].v.AssignString(matched); r != OK {
					return errAllocLimit
				}
			}
			if loc == nil {
				result.setInt(0)
				return nil
			}
			result.setInt(int64(from + loc[0] + 1))
			return nil
		})

	register("RegExReplace", 2, 3, LibHelp{in: "haystack,needle[,replacement]", out: "string",
		action: "Replaces every match of [#i1]needle[#i0] in [#i1]haystack[#i0] with [#i1]replacement[#i0] (default empty)."},
		func(in *Interp, result *ExprToken, args []*ExprToken) error {
			re, err := getRegex(in.argText(args[1]))
			if err != nil {
				return err
			}
			repl := ""
			if len(args) == 3 {
				repl = in.argText(args[2])
			}
			result.returnString(re.replaceAll(in.argText(args[0]), repl))
			return nil
		})
}
