package emlisp

// applyQuasiquote rebuilds s, replacing each (unquote expr) with the
// evaluated expr and splicing each (unquote-splicing expr) into the
// surrounding list in place, grounded on original_source's
// runtime::apply_quasiquote (spec §4.3 "quasiquote").
func (rt *Runtime) applyQuasiquote(s Value) Value {
	if s.Tag() != TagPair {
		return s
	}
	head := rt.Car(s)
	if head == rt.symUnquote {
		v, err := rt.Eval(rt.Car(rt.Cdr(s)))
		if err != nil {
			panic(err)
		}
		return v
	}
	if head.Tag() == TagPair && rt.Car(head) == rt.symUnquoteSplicing {
		spliced, err := rt.Eval(rt.Car(rt.Cdr(head)))
		if err != nil {
			panic(err)
		}
		if spliced == NIL {
			return rt.applyQuasiquote(rt.Cdr(s))
		}
		rt.checkPair(spliced, "unquote-splicing expression must yield a list")
		end := spliced
		for rt.Cdr(end) != NIL {
			end = rt.Cdr(end)
		}
		rt.SetCdr(end, rt.applyQuasiquote(rt.Cdr(s)))
		return spliced
	}
	return rt.cons(rt.applyQuasiquote(head), rt.applyQuasiquote(rt.Cdr(s)))
}
