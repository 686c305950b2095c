package emlisp

// function is a captured parameter list, a body value, and a variadic
// flag. Functions are deduplicated by the (Eq) identity of the body
// together with the parameter list (see createFunction), approximating
// the syntactic-location dedup original_source performs (spec §3
// "Function descriptor").
type function struct {
	arguments []Value
	body      Value
	variadic  bool
}

// newFunction parses argList into a function descriptor. A variadic
// parameter list has the shape (... name): the ellipsis sentinel
// followed by a single binding name that receives the whole argument
// list at call time.
func (rt *Runtime) newFunction(argList, body Value) *function {
	fn := &function{body: body}
	if argList != NIL && rt.Car(argList) == rt.symEllipsis {
		fn.variadic = true
		fn.arguments = append(fn.arguments, rt.Car(rt.Cdr(argList)))
		return fn
	}
	for argList != NIL {
		fn.arguments = append(fn.arguments, rt.Car(argList))
		argList = rt.Cdr(argList)
	}
	return fn
}

// createFunction returns an existing function descriptor with the same
// parameters and the same body, or registers a new one. A pair body is
// matched by cell identity, i.e. by syntactic location; a multi-form
// body, which wrapBody wraps in a fresh begin cell on every
// evaluation, is matched by the identity of its wrapped form list.
func (rt *Runtime) createFunction(argList, body Value) *function {
	cand := rt.newFunction(argList, body)
	for _, fn := range rt.functions {
		same := Eq(fn.body, body) || (fn.body.Tag() == TagPair && body.Tag() == TagPair &&
			rt.Car(fn.body) == rt.symBegin && rt.Car(body) == rt.symBegin && Eq(rt.Cdr(fn.body), rt.Cdr(body)))
		if !same || fn.variadic != cand.variadic || len(fn.arguments) != len(cand.arguments) {
			continue
		}
		for i := range fn.arguments {
			same = same && fn.arguments[i] == cand.arguments[i]
		}
		if same {
			return fn
		}
	}
	rt.functions = append(rt.functions, cand)
	return cand
}

func (rt *Runtime) functionIndex(fn *function) int {
	for i, f := range rt.functions {
		if f == fn {
			return i
		}
	}
	panic("emlisp: function not registered")
}
