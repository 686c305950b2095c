package emlisp

import "golang.org/x/text/unicode/norm"

// Symbol interns s and returns its symbol value. When the runtime's
// symbols.normalize_nfc setting is on (the default), s is normalized to
// NFC first so that identifiers written in different Unicode normalization
// forms (e.g. a precomposed "é" vs. "e"+combining-acute arriving from
// different host platforms or editors) intern to the same symbol
// rather than silently aliasing as distinct names.
func (rt *Runtime) Symbol(s string) Value {
	if rt.normalize {
		s = norm.NFC.String(s)
	}
	if i, ok := rt.symbolIdx[s]; ok {
		return symbolValue(i)
	}
	i := len(rt.symbols)
	rt.symbols = append(rt.symbols, s)
	rt.symbolIdx[s] = i
	return symbolValue(i)
}

// SymbolName returns the interned spelling of a symbol-tagged value.
func (rt *Runtime) SymbolName(v Value) string {
	if v.Tag() != TagSymbol {
		panic(&TypeMismatchError{Expected: TagSymbol, Actual: v.Tag()})
	}
	return rt.symbols[v.symbolIndex()]
}

// UniqueSymbol implements `unique-symbol`: it appends a fresh entry to
// the symbol table with the same textual spelling as name, bypassing
// interning entirely, so the result is equal (by Eq) to no other
// symbol, including the result of a later call with the same spelling
// (spec §3, §8).
func (rt *Runtime) UniqueSymbol(name Value) Value {
	if name.Tag() != TagSymbol {
		panic(&TypeMismatchError{Expected: TagSymbol, Actual: name.Tag(), Message: "unique-symbol expected symbol argument"})
	}
	spelling := rt.symbols[name.symbolIndex()]
	i := len(rt.symbols)
	rt.symbols = append(rt.symbols, spelling)
	// deliberately not added to symbolIdx: interning must never resolve
	// back to this index from the plain spelling.
	return symbolValue(i)
}
