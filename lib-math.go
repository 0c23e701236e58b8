package main

import (
	"errors"
	"math"
)

func buildMathLib() {

	features["math"] = Feature{version: 1, category: "math"}
	categories["math"] = []string{
		"Abs", "Ceil", "Floor", "Round", "Mod", "Sqrt", "Exp", "Log", "Ln",
		"Sin", "Cos", "Tan", "ASin", "ACos", "ATan", "Min", "Max",
	}

	// float functions that are undefined for some inputs yield empty
	float1 := func(name, action string, f func(float64) float64) {
		register(name, 1, 1, LibHelp{in: "number", out: "number", action: action},
			func(in *Interp, result *ExprToken, args []*ExprToken) error {
				if err := expect_args(name, args, "number"); err != nil {
					return err
				}
				r := f(argFloat(args[0]))
				if math.IsNaN(r) || math.IsInf(r, 0) {
					result.setEmpty()
					return nil
				}
				result.setFloat(r)
				return nil
			})
	}
	float1("Sqrt", "Square root of [#i1]number[#i0].", math.Sqrt)
	float1("Exp", "e raised to [#i1]number[#i0].", math.Exp)
	float1("Log", "Base 10 logarithm of [#i1]number[#i0].", math.Log10)
	float1("Ln", "Natural logarithm of [#i1]number[#i0].", math.Log)
	float1("Sin", "Sine of [#i1]number[#i0] radians.", math.Sin)
	float1("Cos", "Cosine of [#i1]number[#i0] radians.", math.Cos)
	float1("Tan", "Tangent of [#i1]number[#i0] radians.", math.Tan)
	float1("ASin", "Arcsine in radians.", math.Asin)
	float1("ACos", "Arccosine in radians.", math.Acos)
	float1("ATan", "Arctangent in radians.", math.Atan)

	register("Abs", 1, 1, LibHelp{in: "number", out: "number", action: "Absolute value of [#i1]number[#i0]."},
		func(in *Interp, result *ExprToken, args []*ExprToken) error {
			if err := expect_args("Abs", args, "number"); err != nil {
				return err
			}
			switch typ, n, f := tokenNumber(args[0]); typ {
			case SYM_INTEGER:
				if n < 0 {
					n = -n
				}
				result.setInt(n)
			default:
				result.setFloat(math.Abs(f))
			}
			return nil
		})

	rounder := func(name string, f func(float64) float64) {
		register(name, 1, 1, LibHelp{in: "number", out: "integer", action: name + " of [#i1]number[#i0] as an integer."},
			func(in *Interp, result *ExprToken, args []*ExprToken) error {
				if err := expect_args(name, args, "number"); err != nil {
					return err
				}
				if typ, n, _ := tokenNumber(args[0]); typ == SYM_INTEGER {
					result.setInt(n)
					return nil
				}
				result.setInt(int64(f(argFloat(args[0]))))
				return nil
			})
	}
	rounder("Ceil", math.Ceil)
	rounder("Floor", math.Floor)

	register("Round", 1, 2, LibHelp{in: "number[,places]", out: "number",
		action: "Rounds [#i1]number[#i0] to [#i1]places[#i0] decimals; an integer when places is omitted or 0."},
		func(in *Interp, result *ExprToken, args []*ExprToken) error {
			if err := expect_args("Round", args, "number", "number"); err != nil {
				return err
			}
			f := argFloat(args[0])
			places := int64(0)
			if len(args) == 2 {
				places = argInt(args[1])
			}
			if places <= 0 {
				p := math.Pow(10, float64(-places))
				result.setInt(int64(math.Round(f/p) * p))
				return nil
			}
			p := math.Pow(10, float64(places))
			result.setFloat(math.Round(f*p) / p)
			return nil
		})

	register("Mod", 2, 2, LibHelp{in: "dividend,divisor", out: "number", action: "Remainder of [#i1]dividend[#i0] / [#i1]divisor[#i0], with the sign of the dividend."},
		func(in *Interp, result *ExprToken, args []*ExprToken) error {
			if err := expect_args("Mod", args, "number", "number"); err != nil {
				return err
			}
			lt, ln, _ := tokenNumber(args[0])
			rt, rn, _ := tokenNumber(args[1])
			if lt == SYM_INTEGER && rt == SYM_INTEGER {
				if rn == 0 {
					return errors.New("division by zero in Mod")
				}
				result.setInt(ln % rn)
				return nil
			}
			d := argFloat(args[1])
			if d == 0 {
				return errors.New("division by zero in Mod")
			}
			result.setFloat(math.Mod(argFloat(args[0]), d))
			return nil
		})

	minmax := func(name string, better func(a, b float64) bool) {
		register(name, 1, maxFuncParams, LibHelp{in: "number[,...]", out: "number", action: "Returns the " + name + " of its arguments."},
			func(in *Interp, result *ExprToken, args []*ExprToken) error {
				best := -1
				allInt := true
				for i, a := range args {
					typ, _, _ := tokenNumber(a)
					if typ == SYM_STRING {
						result.setEmpty()
						return nil
					}
					allInt = allInt && typ == SYM_INTEGER
					if best < 0 || better(argFloat(a), argFloat(args[best])) {
						best = i
					}
				}
				if allInt {
					result.setInt(argInt(args[best]))
				} else {
					result.setFloat(argFloat(args[best]))
				}
				return nil
			})
	}
	minmax("Min", func(a, b float64) bool { return a < b })
	minmax("Max", func(a, b float64) bool { return a > b })
}
