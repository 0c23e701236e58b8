package main

import (
	"errors"
)

func buildInternalLib() {

	features["internal"] = Feature{version: 1, category: "debug"}
	categories["internal"] = []string{"VarSetCapacity", "IsFunc", "IsNumber", "Type", "FuncHelp"}

	register("VarSetCapacity", 1, 3, LibHelp{in: "var[,capacity[,fill_byte]]", out: "integer",
		action: "Reserves exactly [#i1]capacity[#i0] bytes for [#i1]var[#i0] and returns the usable capacity.\n" +
			"With no capacity the current capacity is returned. A capacity of 0 frees the storage.\n" +
			"Contents are kept only while the storage does not move. [#i1]fill_byte[#i0] fills the whole capacity."},
		func(in *Interp, result *ExprToken, args []*ExprToken) error {
			if err := expect_args("VarSetCapacity", args, "var", "number", "number"); err != nil {
				return err
			}
			v := args[0].v.resolve()
			if v.kind != VAR_NORMAL {
				return errReadOnlyVar
			}
			if len(args) > 1 {
				n := argInt(args[1])
				if n <= 0 {
					v.Free(VAR_ALWAYS_FREE, false)
					result.setInt(0)
					return nil
				}
				if n >= int64(in.cfg.MaxVarCapacity) {
					in.callError(errAllocLimit, v.name)
					return errAllocLimit
				}
				old := v.contents
				if r := v.setCapacity(int(n)+1, true); r != OK {
					return errAllocLimit
				}
				if len(v.contents) > 0 && (len(old) == 0 || &old[0] != &v.contents[0]) {
					v.length = 0
					v.contents[0] = 0
				}
				if len(args) > 2 && len(v.contents) > 0 {
					fill := byte(argInt(args[2]))
					usable := len(v.contents) - 1
					for i := 0; i < usable; i++ {
						v.contents[i] = fill
					}
					v.contents[usable] = 0
					if fill == 0 {
						v.length = 0
					} else {
						v.length = usable
					}
					v.attrib &^= VAR_ATTRIB_BINARY
				}
			}
			c := v.Capacity()
			if c > 0 {
				c--
			}
			result.setInt(int64(c))
			return nil
		})

	register("IsFunc", 1, 1, LibHelp{in: "name", out: "integer",
		action: "Returns 1 plus the minimum parameter count when [#i1]name[#i0] is a callable function, otherwise 0."},
		func(in *Interp, result *ExprToken, args []*ExprToken) error {
			fn := in.findFunc(in.argText(args[0]))
			if fn == nil {
				result.setInt(0)
				return nil
			}
			result.setInt(int64(fn.minParams + 1))
			return nil
		})

	register("IsNumber", 1, 1, LibHelp{in: "value", out: "integer", action: "Returns 1 when [#i1]value[#i0] is an integer or float."},
		func(in *Interp, result *ExprToken, args []*ExprToken) error {
			typ, _, _ := tokenNumber(args[0])
			result.setInt(boolInt(typ != SYM_STRING))
			return nil
		})

	register("Type", 1, 1, LibHelp{in: "value", out: "string", action: "Returns Integer, Float or String for [#i1]value[#i0]."},
		func(in *Interp, result *ExprToken, args []*ExprToken) error {
			switch typ, _, _ := tokenNumber(args[0]); typ {
			case SYM_INTEGER:
				result.setString(stringBytes("Integer"), true)
			case SYM_FLOAT:
				result.setString(stringBytes("Float"), true)
			default:
				result.setString(stringBytes("String"), true)
			}
			return nil
		})

	register("FuncHelp", 1, 1, LibHelp{in: "name", out: "string", action: "Returns the usage line of built-in [#i1]name[#i0]."},
		func(in *Interp, result *ExprToken, args []*ExprToken) error {
			h := funcHelp(in.argText(args[0]))
			if h == "" {
				return errors.New("no help for " + in.argText(args[0]))
			}
			result.returnString(h)
			return nil
		})
}
