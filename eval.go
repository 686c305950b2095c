package emlisp

// Eval evaluates a single form against the runtime's current scope
// stack. Self-evaluating tags return themselves, symbols resolve
// through the scope stack, and pairs dispatch through apply. A
// TypeMismatchError accumulates x onto its trace at every level of
// this recursion it unwinds through, mirroring
// original_source/src/eval.cpp's eval()/type_mismatch_error
// copy-constructor (spec §7).
func (rt *Runtime) Eval(x Value) (result Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if tme, ok := r.(*TypeMismatchError); ok {
				err = tme.withFrame(rt, x)
				result = NIL
				return
			}
			if e, ok := r.(error); ok {
				err = e
				result = NIL
				return
			}
			panic(r)
		}
	}()

	switch x.Tag() {
	case TagNil, TagBool, TagInt, TagFloat, TagString, TagFVec:
		return x, nil
	case TagSymbol:
		return rt.lookUp(x)
	case TagPair:
		val, aerr := rt.apply(rt.Car(x), rt.Cdr(x))
		if aerr != nil {
			if tme, ok := aerr.(*TypeMismatchError); ok {
				return NIL, tme.withFrame(rt, x)
			}
			return NIL, aerr
		}
		return val, nil
	default:
		return NIL, &InvalidSyntaxError{Message: "cannot evaluate value of tag " + x.Tag().String()}
	}
}

// evalList evaluates every element of an unevaluated argument list,
// in order, producing a freshly-consed evaluated list.
func (rt *Runtime) evalList(x Value) (Value, error) {
	if x == NIL {
		return NIL, nil
	}
	head, err := rt.Eval(rt.Car(x))
	if err != nil {
		return NIL, err
	}
	rest, err := rt.evalList(rt.Cdr(x))
	if err != nil {
		return NIL, err
	}
	return rt.cons(head, rest), nil
}

// apply dispatches a raw (unevaluated) head/argument-list pair: either
// one of the reserved special forms, or an ordinary call, in which case
// f is evaluated to a closure or extern function value before
// argument evaluation and frame setup (spec §4.3; grounded on
// original_source/src/eval.cpp's runtime::apply). begin is not present
// in original_source's apply (its sequencing is done ad hoc wherever a
// body needs more than one expression), but §8's scenario 4 requires
// `(begin ,@body)` inside an expanded macro to evaluate every form in
// order and return the last, so it is added here as the conventional
// Lisp sequencing form. lambda and function-define bodies route
// multi-form tails through wrapBody so the same sequencing applies to
// an ordinary multi-statement function body, not only an explicit
// begin written by the caller.
func (rt *Runtime) apply(f, arguments Value) (Value, error) {
	switch f {
	case rt.symQuote:
		return rt.Car(arguments), nil

	case rt.symUniqueSym:
		name := rt.Car(arguments)
		if name.Tag() != TagSymbol {
			return NIL, &TypeMismatchError{Expected: TagSymbol, Actual: name.Tag(), Message: "unique-symbol expected symbol argument"}
		}
		return rt.UniqueSymbol(name), nil

	case rt.symLet:
		bindings := rt.Car(arguments)
		body := rt.Car(rt.Cdr(arguments))
		scope := make(map[Value]Value)
		for bindings != NIL {
			binding := rt.Car(bindings)
			name := rt.Car(binding)
			if name.Tag() != TagSymbol {
				return NIL, &TypeMismatchError{Expected: TagSymbol, Actual: name.Tag(), Message: "let binding name must be symbol"}
			}
			val, err := rt.Eval(rt.Car(rt.Cdr(binding)))
			if err != nil {
				return NIL, err
			}
			scope[name] = val
			bindings = rt.Cdr(bindings)
		}
		rt.pushScope(scope)
		result, err := rt.Eval(body)
		rt.popScope()
		return result, err

	case rt.symLetSeq:
		bindings := rt.Car(arguments)
		body := rt.Car(rt.Cdr(arguments))
		rt.pushScope(nil)
		for bindings != NIL {
			binding := rt.Car(bindings)
			name := rt.Car(binding)
			if name.Tag() != TagSymbol {
				rt.popScope()
				return NIL, &TypeMismatchError{Expected: TagSymbol, Actual: name.Tag(), Message: "let* binding name must be symbol"}
			}
			val, err := rt.Eval(rt.Car(rt.Cdr(binding)))
			if err != nil {
				rt.popScope()
				return NIL, err
			}
			rt.topScope()[name] = val
			bindings = rt.Cdr(bindings)
		}
		result, err := rt.Eval(body)
		rt.popScope()
		return result, err

	case rt.symLetRec:
		// letrec pre-binds every name to nil, then evaluates the
		// right-hand sides in order. Closures capture by copy (see
		// makeClosure), so a lambda on a right-hand side sees the names
		// bound before it with their values, while its own name and any
		// later names are still nil in its capture frame: self- and
		// mutual recursion through letrec names does not work.
		bindings := rt.Car(arguments)
		body := rt.Car(rt.Cdr(arguments))
		scope := make(map[Value]Value)
		for bc := bindings; bc != NIL; bc = rt.Cdr(bc) {
			name := rt.Car(rt.Car(bc))
			if name.Tag() != TagSymbol {
				return NIL, &TypeMismatchError{Expected: TagSymbol, Actual: name.Tag(), Message: "letrec binding name must be symbol"}
			}
			scope[name] = NIL
		}
		rt.pushScope(scope)
		for bc := bindings; bc != NIL; bc = rt.Cdr(bc) {
			name := rt.Car(rt.Car(bc))
			val, err := rt.Eval(rt.Car(rt.Cdr(rt.Car(bc))))
			if err != nil {
				rt.popScope()
				return NIL, err
			}
			scope[name] = val
		}
		result, err := rt.Eval(body)
		rt.popScope()
		return result, err

	case rt.symLambda:
		args := rt.Car(arguments)
		body := rt.wrapBody(rt.Cdr(arguments))
		fn := rt.createFunction(args, body)
		closure, err := rt.makeClosure(fn, body, NIL)
		return closure, err

	case rt.symIf:
		cond, err := rt.Eval(rt.Car(arguments))
		if err != nil {
			return NIL, err
		}
		if cond.IsTruthy() {
			return rt.Eval(rt.Car(rt.Cdr(arguments)))
		}
		return rt.Eval(rt.Car(rt.Cdr(rt.Cdr(arguments))))

	case rt.symSet:
		name := rt.Car(arguments)
		val, err := rt.Eval(rt.Car(rt.Cdr(arguments)))
		if err != nil {
			return NIL, err
		}
		rt.setExisting(name, val)
		return NIL, nil

	case rt.symDefine:
		head := rt.Car(arguments)
		if head.Tag() == TagSymbol {
			val, err := rt.Eval(rt.Car(rt.Cdr(arguments)))
			if err != nil {
				return NIL, err
			}
			rt.topScope()[head] = val
			return NIL, nil
		}
		if head.Tag() != TagPair {
			return NIL, &InvalidSyntaxError{Message: "invalid define"}
		}
		name := rt.Car(head)
		args := rt.Cdr(head)
		body := rt.wrapBody(rt.Cdr(arguments))
		fn := rt.createFunction(args, body)
		closure, err := rt.makeClosure(fn, body, name)
		if err != nil {
			return NIL, err
		}
		rt.topScope()[name] = closure
		return NIL, nil

	case rt.symQuasiquote:
		return rt.applyQuasiquote(rt.Car(arguments)), nil

	case rt.symBegin:
		result := NIL
		for body := arguments; body != NIL; body = rt.Cdr(body) {
			var err error
			result, err = rt.Eval(rt.Car(body))
			if err != nil {
				return NIL, err
			}
		}
		return result, nil
	}

	fv, err := rt.Eval(f)
	if err != nil {
		return NIL, err
	}

	if fv.Tag() == TagExtern {
		entry := rt.externFunc(fv)
		if entry == nil {
			return NIL, &TypeMismatchError{Expected: TagClosure, Actual: TagExtern, Message: "expected function for function call"}
		}
		args, err := rt.evalList(arguments)
		if err != nil {
			return NIL, err
		}
		return entry(rt, args)
	}

	if fv.Tag() != TagClosure {
		return NIL, &TypeMismatchError{Expected: TagClosure, Actual: fv.Tag(), Message: "expected function for function call"}
	}
	return rt.applyClosure(fv, arguments)
}

// wrapBody turns a lambda/define body tail (zero or more unevaluated
// forms) into the single form applyClosure actually evaluates. A lone
// form is returned as-is; original_source/src/eval.cpp's function body
// is always exactly one expression (function::function,
// compute_closure both take first(second(...))), so multiple trailing
// forms are folded under begin here rather than silently dropping all
// but the first, as the C++ original does.
func (rt *Runtime) wrapBody(forms Value) Value {
	if forms == NIL {
		return NIL
	}
	if rt.Cdr(forms) == NIL {
		return rt.Car(forms)
	}
	return rt.cons(rt.symBegin, forms)
}

// makeClosure builds the capture frame for a freshly-created lambda or
// define-bound function: free variables are computed over body with
// fn's own parameters, extraSelf (the recursive binding name, or NIL),
// and the reserved special-form symbols all held bound, then looked up
// in the current scope stack and copied into the new frame (spec §4.3
// "closure capture").
func (rt *Runtime) makeClosure(fn *function, body, extraSelf Value) (Value, error) {
	bound := make(map[Value]struct{}, len(fn.arguments)+len(rt.reserved)+1)
	for r := range rt.reserved {
		bound[r] = struct{}{}
	}
	for _, a := range fn.arguments {
		bound[a] = struct{}{}
	}
	if extraSelf != NIL {
		bound[extraSelf] = struct{}{}
	}
	free := make(map[Value]struct{})
	rt.computeClosure(body, bound, free)

	frameIdx := rt.allocFrame(nil)
	frame := rt.frameByIndex(frameIdx)
	for name := range free {
		val, err := rt.lookUp(name)
		if err != nil {
			return NIL, err
		}
		frame.set(name, val)
	}
	closure := rt.allocClosure(rt.functionIndex(fn), frameIdx)
	if extraSelf != NIL {
		frame.set(extraSelf, closure)
	}
	return closure, nil
}

// applyClosure implements call discipline: push the captured frame
// (copied, not shared), push a fresh frame binding parameters to the
// evaluated arguments, evaluate the body, pop both scopes, then
// reconcile any `set!` mutations of captured names back into the real
// capture frame (spec §4.3, §9 "set! reconciliation").
func (rt *Runtime) applyClosure(fv, arguments Value) (Value, error) {
	fn := rt.closureFn(fv)
	frame := rt.closureFrame(fv)

	captureScope := make(map[Value]Value, len(frame.entries))
	for k, v := range frame.entries {
		captureScope[k] = v
	}

	callScope := make(map[Value]Value, len(fn.arguments))
	args := arguments
	if fn.variadic {
		rest, err := rt.evalList(args)
		if err != nil {
			return NIL, err
		}
		callScope[fn.arguments[0]] = rest
	} else {
		got := 0
		for _, param := range fn.arguments {
			if args == NIL {
				return NIL, &ArgumentCountMismatchError{Want: len(fn.arguments), Got: got}
			}
			val, err := rt.Eval(rt.Car(args))
			if err != nil {
				return NIL, err
			}
			callScope[param] = val
			args = rt.Cdr(args)
			got++
		}
	}

	rt.pushScope(captureScope)
	rt.pushScope(callScope)
	result, err := rt.Eval(fn.body)
	rt.popScope()
	rt.popScope()

	rt.reconcileCapture(frame, captureScope)

	if err != nil {
		return NIL, err
	}
	return result, nil
}

// reconcileCapture writes back, into frame (the real capture frame
// addressed by the closure cell), every name that already existed in
// frame before the call and whose value changed during it. Names
// introduced only in the call-argument scope, or in captureScope by
// any path other than `set!` on a pre-existing captured name, are
// never written back — the deliberate correction of
// original_source/src/eval.cpp's `closure->data = scopes.back()`,
// which instead replaced the whole capture frame with the innermost
// call scope (spec §9 "set! reconciliation").
func (rt *Runtime) reconcileCapture(frame *Frame, captureScope map[Value]Value) {
	for name := range frame.entries {
		if val, ok := captureScope[name]; ok {
			frame.entries[name] = val
		}
	}
}
