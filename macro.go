package emlisp

// Expand runs the macro-expansion pass over v and reports the first
// error raised while evaluating a macro body or hitting an explicit
// error-injection head.
func (rt *Runtime) Expand(v Value) (result Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				result, err = NIL, e
				return
			}
			panic(r)
		}
	}()
	return rt.expand(v), nil
}

// expand is the recursive worker: it recognizes `defmacro` (recording
// a parameter list and body against the macro name, returning nil in
// its place), recognizes an explicit error-injection head that aborts
// expansion with a user message, and for any other pair whose head
// names a registered macro, binds parameters (variadic binds the whole
// unevaluated argument list to the single parameter), evaluates the
// body in a scope holding just those bindings, and recursively expands
// the result in place of the original pair. Every other pair expands
// car-first, cdr-next. Grounded on original_source/src/eval.cpp's
// runtime::expand (spec §4.5).
func (rt *Runtime) expand(v Value) Value {
	if v.Tag() != TagPair {
		return v
	}
	head := rt.Car(v)

	if head == rt.symDefmacro {
		sig := rt.Car(rt.Cdr(v))
		body := rt.Car(rt.Cdr(rt.Cdr(v)))
		name := rt.Car(sig)
		args := rt.Cdr(sig)
		rt.macros[name] = rt.createFunction(args, body)
		return NIL
	}

	if head == rt.symMacroError {
		msg := rt.Car(rt.Cdr(v))
		panic(&MacroExpandError{Message: rt.displayString(msg)})
	}

	if head.Tag() == TagSymbol {
		if mac, ok := rt.macros[head]; ok {
			scope := make(map[Value]Value)
			if mac.variadic {
				scope[mac.arguments[0]] = rt.Cdr(v)
			} else {
				a := rt.Cdr(v)
				for _, param := range mac.arguments {
					scope[param] = rt.Car(a)
					a = rt.Cdr(a)
				}
			}
			rt.pushScope(scope)
			res, err := rt.Eval(mac.body)
			rt.popScope()
			if err != nil {
				panic(err)
			}
			return rt.expand(res)
		}
	}

	rt.SetCar(v, rt.expand(rt.Car(v)))
	rt.SetCdr(v, rt.expand(rt.Cdr(v)))
	return v
}

// displayString renders v for inclusion in a macro-expand-error
// message without requiring a full Write round-trip dependency here.
func (rt *Runtime) displayString(v Value) string {
	if v.Tag() == TagString {
		return rt.String(v)
	}
	if v.Tag() == TagSymbol {
		return rt.SymbolName(v)
	}
	return rt.Write(v)
}
