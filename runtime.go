package emlisp

// Runtime is a single, process-local, non-global aggregate owning every
// piece of shared mutable state for one interpreter instance: the
// arena, the symbol table, the function-descriptor set, the macro map,
// the scope stack, the live value-handle slots, and the owned-extern
// set. Runtimes must not be shared between goroutines, and multiple
// runtimes in one process never interact (spec §5, §9).
type Runtime struct {
	arena        *Arena
	heapSize     int
	gcGrowFactor int

	symbols   []string
	symbolIdx map[string]int
	normalize bool

	functions []*function
	macros    map[Value]*function

	scopes     []map[Value]Value
	frameTable []*Frame

	externs          map[uint64]*externEntry
	nextExternHandle uint64

	handles       map[uint64]*handleSlot
	nextHandleID  uint64

	reserved map[Value]struct{}

	symQuote, symLambda, symIf, symSet, symDefine, symDefmacro          Value
	symLet, symLetSeq, symLetRec                                       Value
	symUniqueSym                                                       Value
	symQuasiquote, symUnquote, symUnquoteSplicing                      Value
	symEllipsis, symMacroError                                         Value
	symBegin                                                           Value
}

// NewRuntime constructs a runtime from cfg (or defaults when cfg is
// nil), installs the reserved-symbol table and intrinsic primitives,
// and optionally preloads the script-level standard library.
func NewRuntime(cfg *Config) (*Runtime, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	heapBytes := cfg.GetInt("heap.bytes")

	arena, err := newArena(heapBytes)
	if err != nil {
		return nil, err
	}

	growFactor := cfg.GetInt("gc.grow_factor")
	if growFactor < 1 {
		growFactor = 1
	}

	rt := &Runtime{
		arena:            arena,
		heapSize:         heapBytes,
		gcGrowFactor:     growFactor,
		symbolIdx:        make(map[string]int),
		normalize:        cfg.GetBool("symbols.normalize_nfc"),
		macros:           make(map[Value]*function),
		externs:          make(map[uint64]*externEntry),
		nextExternHandle: 1,
		handles:          make(map[uint64]*handleSlot),
		nextHandleID:     1,
	}

	rt.symQuote = rt.Symbol("quote")
	rt.symLambda = rt.Symbol("lambda")
	rt.symIf = rt.Symbol("if")
	rt.symSet = rt.Symbol("set!")
	rt.symDefine = rt.Symbol("define")
	rt.symDefmacro = rt.Symbol("defmacro")
	rt.symLet = rt.Symbol("let")
	rt.symLetSeq = rt.Symbol("let*")
	rt.symLetRec = rt.Symbol("letrec")
	rt.symUniqueSym = rt.Symbol("unique-symbol")
	rt.symQuasiquote = rt.Symbol("quasiquote")
	rt.symUnquote = rt.Symbol("unquote")
	rt.symUnquoteSplicing = rt.Symbol("unquote-splicing")
	rt.symEllipsis = rt.Symbol("...")
	rt.symMacroError = rt.Symbol("macro-expand-error")
	rt.symBegin = rt.Symbol("begin")

	rt.reserved = map[Value]struct{}{
		rt.symQuote: {}, rt.symQuasiquote: {}, rt.symLambda: {}, rt.symIf: {},
		rt.symSet: {}, rt.symDefine: {}, rt.symEllipsis: {}, rt.symLet: {},
		rt.symLetSeq: {}, rt.symLetRec: {}, rt.symUnquote: {},
		rt.symUnquoteSplicing: {}, rt.symDefmacro: {}, rt.symBegin: {},
		rt.symUniqueSym: {},
	}

	rt.scopes = []map[Value]Value{make(map[Value]Value)}

	rt.defineIntrinsics()

	if cfg.GetBool("heap.preload_stdlib") && stdlibSource != "" {
		forms, err := rt.ReadAll(stdlibSource)
		if err != nil {
			return nil, err
		}
		expanded, err := rt.Expand(forms)
		if err != nil {
			return nil, err
		}
		for expanded != NIL {
			if _, err := rt.Eval(rt.Car(expanded)); err != nil {
				return nil, err
			}
			expanded = rt.Cdr(expanded)
		}
	}

	return rt, nil
}

// globalScope returns the outermost scope map, where DefineGlobal and
// top-level `define` install bindings.
func (rt *Runtime) globalScope() map[Value]Value { return rt.scopes[0] }

// HeapInfo reports the current arena's capacity and usage in bytes.
type HeapInfo struct {
	Size int
	Used int
}

// Heap returns the current heap's size/usage, useful for hosts that
// want to watch growth between CollectGarbage calls.
func (rt *Runtime) Heap() HeapInfo {
	return HeapInfo{Size: rt.arena.Len(), Used: rt.arena.Used()}
}
