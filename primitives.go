package emlisp

import "math"

// DefineFn registers a native Go function as a callable script value
// bound to name in the root scope, matching spec.md §6's
// `define-fn`/original_source/src/eval.cpp's `runtime::define_fn`: an
// extern cell in call position dispatches straight to fn with the
// already-evaluated argument list.
func (rt *Runtime) DefineFn(name string, fn func(rt *Runtime, args Value) (Value, error)) {
	h := rt.newExternHandle(&externEntry{kind: externHostFunc, fn: fn})
	cell := rt.allocExternCell(h, 0)
	rt.DefineGlobal(name, cell)
}

// DefineGlobal binds name to val in the root scope.
func (rt *Runtime) DefineGlobal(name string, val Value) {
	rt.globalScope()[rt.Symbol(name)] = val
}

// argSlice flattens an evaluated argument list into a Go slice for the
// primitives below, which index fixed positions rather than walking
// cons cells by hand.
func (rt *Runtime) argSlice(args Value) []Value {
	var out []Value
	for args != NIL {
		out = append(out, rt.Car(args))
		args = rt.Cdr(args)
	}
	return out
}

func (rt *Runtime) wantInt(v Value, who string) int64 {
	if v.Tag() != TagInt {
		panic(&TypeMismatchError{Expected: TagInt, Actual: v.Tag(), Message: who})
	}
	return v.Int()
}

func (rt *Runtime) wantFloat(v Value, who string) float64 {
	if v.Tag() != TagFloat {
		panic(&TypeMismatchError{Expected: TagFloat, Actual: v.Tag(), Message: who})
	}
	return float64(v.Float())
}

// mathOp registers a shared arithmetic primitive that folds intOp over
// an all-int argument list or floatOp over an all-float one, starting
// the accumulator at the first argument — a single-argument call is
// therefore the identity, not a unary negation, matching
// original_source/src/funcs.cpp's MATH_OP macro.
func (rt *Runtime) mathOp(name string, intOp func(a, b int64) int64, floatOp func(a, b float64) float64) {
	rt.DefineFn(name, func(rt *Runtime, args Value) (Value, error) {
		a := rt.argSlice(args)
		if a[0].Tag() == TagFloat {
			res := rt.wantFloat(a[0], name)
			for _, v := range a[1:] {
				res = floatOp(res, rt.wantFloat(v, name))
			}
			return FloatValue(float32(res)), nil
		}
		res := rt.wantInt(a[0], name)
		for _, v := range a[1:] {
			res = intOp(res, rt.wantInt(v, name))
		}
		return IntValue(res), nil
	})
}

// defineIntrinsics registers the Go-native primitive layer: pair
// accessors, type predicates, arithmetic, bitwise and float math, and
// string/symbol conversions. This is the host-callable registration
// original_source/src/funcs.cpp's `define_intrinsics` performs, not the
// script-level standard-library prelude (out of scope per spec.md §1).
func (rt *Runtime) defineIntrinsics() {
	rt.DefineFn("cons", func(rt *Runtime, args Value) (Value, error) {
		a := rt.argSlice(args)
		return rt.cons(a[0], a[1]), nil
	})
	rt.DefineFn("car", func(rt *Runtime, args Value) (Value, error) {
		return rt.Car(rt.Car(args)), nil
	})
	rt.DefineFn("cdr", func(rt *Runtime, args Value) (Value, error) {
		return rt.Cdr(rt.Car(args)), nil
	})
	rt.DefineFn("eq?", func(rt *Runtime, args Value) (Value, error) {
		a := rt.argSlice(args)
		return BoolValue(Eq(a[0], a[1])), nil
	})

	predicate := func(tag Tag) func(rt *Runtime, args Value) (Value, error) {
		return func(rt *Runtime, args Value) (Value, error) {
			return BoolValue(rt.Car(args).Tag() == tag), nil
		}
	}
	rt.DefineFn("nil?", func(rt *Runtime, args Value) (Value, error) {
		return BoolValue(rt.Car(args).IsNil()), nil
	})
	rt.DefineFn("bool?", predicate(TagBool))
	rt.DefineFn("int?", predicate(TagInt))
	rt.DefineFn("float?", predicate(TagFloat))
	rt.DefineFn("str?", predicate(TagString))
	rt.DefineFn("sym?", predicate(TagSymbol))
	rt.DefineFn("cons?", predicate(TagPair))
	rt.DefineFn("proc?", func(rt *Runtime, args Value) (Value, error) {
		t := rt.Car(args).Tag()
		return BoolValue(t == TagClosure || t == TagExtern), nil
	})

	rt.DefineFn("not", func(rt *Runtime, args Value) (Value, error) {
		return BoolValue(rt.Car(args).IsFalse()), nil
	})

	rt.mathOp("+", func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b })
	rt.mathOp("-", func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b })
	rt.mathOp("*", func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b })
	rt.mathOp("/", func(a, b int64) int64 { return a / b }, func(a, b float64) float64 { return a / b })

	bitOp := func(name string, op func(a, b int64) int64) {
		rt.DefineFn(name, func(rt *Runtime, args Value) (Value, error) {
			a := rt.argSlice(args)
			res := rt.wantInt(a[0], name)
			for _, v := range a[1:] {
				res = op(res, rt.wantInt(v, name))
			}
			return IntValue(res), nil
		})
	}
	bitOp("bit&", func(a, b int64) int64 { return a & b })
	bitOp("bit|", func(a, b int64) int64 { return a | b })
	bitOp("bit^", func(a, b int64) int64 { return a ^ b })
	bitOp("bit-lsh", func(a, b int64) int64 { return a << uint(b) })
	bitOp("bit-rsh", func(a, b int64) int64 { return a >> uint(b) })

	floatFn := func(f func(float64) float64) func(rt *Runtime, args Value) (Value, error) {
		return func(rt *Runtime, args Value) (Value, error) {
			x := rt.wantFloat(rt.Car(args), "float math")
			return FloatValue(float32(f(x))), nil
		}
	}
	rt.DefineFn("sin", floatFn(math.Sin))
	rt.DefineFn("cos", floatFn(math.Cos))
	rt.DefineFn("tan", floatFn(math.Tan))
	rt.DefineFn("exp", floatFn(math.Exp))
	rt.DefineFn("ln", floatFn(math.Log))

	rt.DefineFn("string-length", func(rt *Runtime, args Value) (Value, error) {
		return IntValue(int64(rt.StringLen(rt.Car(args)))), nil
	})
	rt.DefineFn("string->symbol", func(rt *Runtime, args Value) (Value, error) {
		return rt.Symbol(rt.String(rt.Car(args))), nil
	})
	rt.DefineFn("symbol->string", func(rt *Runtime, args Value) (Value, error) {
		return rt.MakeString(rt.SymbolName(rt.Car(args))), nil
	})
}
