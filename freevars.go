package emlisp

// computeClosure walks body collecting, into free, every symbol that is
// referenced but not in bound. It descends into the binding forms
// (lambda, define, let/let*/letrec) extending bound with their newly
// introduced names, skips quoted data entirely, and inside quasiquote
// only descends into unquote/unquote-splicing operands — never the
// surrounding template (spec §4.3 "closure capture",
// grounded on original_source's runtime::compute_closure).
func (rt *Runtime) computeClosure(v Value, bound map[Value]struct{}, free map[Value]struct{}) {
	switch v.Tag() {
	case TagSymbol:
		if _, ok := bound[v]; !ok {
			free[v] = struct{}{}
		}
	case TagPair:
		head := rt.Car(v)
		switch head {
		case rt.symLambda:
			args := rt.Car(rt.Cdr(v))
			newBound := cloneSet(bound)
			for args != NIL {
				newBound[rt.Car(args)] = struct{}{}
				args = rt.Cdr(args)
			}
			body := rt.wrapBody(rt.Cdr(rt.Cdr(v)))
			rt.computeClosure(body, newBound, free)
		case rt.symDefine:
			sig := rt.Car(rt.Cdr(v))
			if sig.Tag() == TagPair {
				args := rt.Cdr(sig)
				newBound := cloneSet(bound)
				for args != NIL {
					newBound[rt.Car(args)] = struct{}{}
					args = rt.Cdr(args)
				}
				body := rt.wrapBody(rt.Cdr(rt.Cdr(v)))
				rt.computeClosure(body, newBound, free)
			} else if rest := rt.Cdr(rt.Cdr(v)); rest != NIL {
				rt.computeClosure(rt.Car(rest), bound, free)
			}
		case rt.symLet, rt.symLetSeq, rt.symLetRec:
			bindings := rt.Car(rt.Cdr(v))
			newBound := cloneSet(bound)
			for b := bindings; b != NIL; b = rt.Cdr(b) {
				newBound[rt.Car(rt.Car(b))] = struct{}{}
			}
			// let evaluates its right-hand sides outside the new scope;
			// let* and letrec evaluate them with the names in view.
			rhsBound := newBound
			if head == rt.symLet {
				rhsBound = bound
			}
			for b := bindings; b != NIL; b = rt.Cdr(b) {
				rt.computeClosure(rt.Car(rt.Cdr(rt.Car(b))), rhsBound, free)
			}
			body := rt.Car(rt.Cdr(rt.Cdr(v)))
			rt.computeClosure(body, newBound, free)
		case rt.symQuote:
			// skip: quoted data is never a variable reference
		case rt.symQuasiquote:
			stack := []Value{rt.Car(rt.Cdr(v))}
			for len(stack) > 0 {
				inner := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if inner.Tag() != TagPair {
					continue
				}
				for inner != NIL {
					item := rt.Car(inner)
					if item.Tag() == TagPair {
						itemHead := rt.Car(item)
						if itemHead == rt.symUnquote || itemHead == rt.symUnquoteSplicing {
							rt.computeClosure(rt.Car(rt.Cdr(item)), bound, free)
						} else {
							stack = append(stack, item)
						}
					}
					inner = rt.Cdr(inner)
				}
			}
		default:
			for v != NIL {
				rt.computeClosure(rt.Car(v), bound, free)
				v = rt.Cdr(v)
			}
		}
	}
}

func cloneSet(s map[Value]struct{}) map[Value]struct{} {
	out := make(map[Value]struct{}, len(s)+1)
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}
