package main

import (
	"errors"
	"strings"
	"unicode/utf8"
)

func buildStringLib() {

	features["string"] = Feature{version: 1, category: "text"}
	categories["string"] = []string{"StrLen", "SubStr", "InStr", "StrReplace", "Trim", "LTrim", "RTrim", "Asc", "Chr"}

	register("StrLen", 1, 1, LibHelp{in: "string", out: "integer", action: "Returns the length of [#i1]string[#i0] in bytes."},
		func(in *Interp, result *ExprToken, args []*ExprToken) error {
			var tmp [64]byte
			result.setInt(int64(len(in.tokenBytes(args[0], tmp[:0]))))
			return nil
		})

	register("SubStr", 2, 3, LibHelp{in: "string,start[,length]", out: "string",
		action: "Returns [#i1]length[#i0] bytes of [#i1]string[#i0] from position [#i1]start[#i0].\n" +
			"Positions count from 1; 0 is the last byte and less counts further back. A negative length omits that many bytes from the end."},
		func(in *Interp, result *ExprToken, args []*ExprToken) error {
			if err := expect_args("SubStr", args, "string", "number", "number"); err != nil {
				return err
			}
			s := in.argText(args[0])
			start := argInt(args[1])
			if start < 1 {
				start += int64(len(s)) - 1
				if start < 0 {
					start = 0
				}
			} else {
				start--
			}
			if start >= int64(len(s)) {
				result.returnString("")
				return nil
			}
			end := int64(len(s))
			if len(args) == 3 {
				n := argInt(args[2])
				if n < 0 {
					end += n
				} else if n < end-start {
					end = start + n
				}
			}
			if end <= start {
				result.returnString("")
				return nil
			}
			result.returnString(s[start:end])
			return nil
		})

	register("InStr", 2, 4, LibHelp{in: "haystack,needle[,case_sensitive[,start]]", out: "integer",
		action: "Returns the position of the first [#i1]needle[#i0] in [#i1]haystack[#i0], 0 when absent."},
		func(in *Interp, result *ExprToken, args []*ExprToken) error {
			if err := expect_args("InStr", args, "string", "string", "any", "number"); err != nil {
				return err
			}
			hay := in.argText(args[0])
			needle := in.argText(args[1])
			caseSense := len(args) > 2 && tokenToBool(args[2])
			from := 0
			if len(args) > 3 {
				from = int(argInt(args[3])) - 1
				if from < 0 || from > len(hay) {
					result.setInt(0)
					return nil
				}
			}
			h := hay[from:]
			i := indexFoldASCII(h, needle)
			if caseSense {
				i = strings.Index(h, needle)
			}
			if i >= 0 {
				result.setInt(int64(from + i + 1))
				return nil
			}
			result.setInt(0)
			return nil
		})

	register("StrReplace", 2, 3, LibHelp{in: "haystack,search[,replace]", out: "string",
		action: "Replaces every [#i1]search[#i0] in [#i1]haystack[#i0] with [#i1]replace[#i0]."},
		func(in *Interp, result *ExprToken, args []*ExprToken) error {
			hay := in.argText(args[0])
			search := in.argText(args[1])
			if search == "" {
				return errors.New("StrReplace needs a non-empty search string")
			}
			repl := ""
			if len(args) == 3 {
				repl = in.argText(args[2])
			}
			result.returnString(strings.ReplaceAll(hay, search, repl))
			return nil
		})

	trim := func(name string, f func(string, string) string) {
		register(name, 1, 2, LibHelp{in: "string[,omit_chars]", out: "string",
			action: "Removes [#i1]omit_chars[#i0] (default space and tab) from [#i1]string[#i0]."},
			func(in *Interp, result *ExprToken, args []*ExprToken) error {
				omit := " \t"
				if len(args) == 2 {
					omit = in.argText(args[1])
				}
				result.returnString(f(in.argText(args[0]), omit))
				return nil
			})
	}
	trim("Trim", strings.Trim)
	trim("LTrim", strings.TrimLeft)
	trim("RTrim", strings.TrimRight)

	register("Asc", 1, 1, LibHelp{in: "string", out: "integer", action: "Returns the code point of the first character of [#i1]string[#i0]."},
		func(in *Interp, result *ExprToken, args []*ExprToken) error {
			s := in.argText(args[0])
			if s == "" {
				result.setInt(0)
				return nil
			}
			r, _ := utf8.DecodeRuneInString(s)
			result.setInt(int64(r))
			return nil
		})

	register("Chr", 1, 1, LibHelp{in: "number", out: "string", action: "Returns the character with code point [#i1]number[#i0]."},
		func(in *Interp, result *ExprToken, args []*ExprToken) error {
			if err := expect_args("Chr", args, "number"); err != nil {
				return err
			}
			n := argInt(args[0])
			if n <= 0 || n > utf8.MaxRune {
				result.returnString("")
				return nil
			}
			result.returnString(string(rune(n)))
			return nil
		})
}
