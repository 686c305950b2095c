package emlisp

// externKind distinguishes the three things a two-word extern cell can
// mean at the Go level, since Go cannot reinterpret raw bytes as either
// a function pointer or an opaque host pointer the way the C++
// original does (spec §4.6 "External bridge").
type externKind int

const (
	externForeignRef externKind = iota
	externOwned
	externHostFunc
)

// externEntry is the out-of-arena side table a TagExtern cell's handle
// word indexes into. The arena cell itself only ever stores (handle,
// type-hash); everything Go-specific (the payload, the destructor, the
// native function closure) lives here, addressed indirectly so that
// GC never has to relocate a Go value through arena bytes.
type externEntry struct {
	kind       externKind
	payload    interface{}
	typeHash   uint64
	destructor func(interface{})
	moved      bool
	fn         func(rt *Runtime, args Value) (Value, error)
}

func (rt *Runtime) newExternHandle(e *externEntry) uint64 {
	h := rt.nextExternHandle
	rt.nextExternHandle++
	rt.externs[h] = e
	return h
}

// MakeExternReference wraps payload as a non-owning foreign reference:
// the host keeps payload alive, the script only ever holds an opaque
// handle to it (spec §4.6 "Extern reference").
func (rt *Runtime) MakeExternReference(payload interface{}, typeHash uint64) Value {
	h := rt.newExternHandle(&externEntry{kind: externForeignRef, payload: payload, typeHash: typeHash})
	return rt.allocExternCell(h, typeHash)
}

// MakeOwnedExtern wraps payload as a foreign-owned block: lifetime
// follows heap reachability, and destructor runs exactly once when the
// block is not reached by a collection (spec §4.2, §4.6 "Owned
// extern").
func (rt *Runtime) MakeOwnedExtern(payload interface{}, typeHash uint64, destructor func(interface{})) Value {
	h := rt.newExternHandle(&externEntry{kind: externOwned, payload: payload, typeHash: typeHash, destructor: destructor})
	return rt.allocExternCell(h, typeHash)
}

// TakeOwnedExtern copies the payload out of the arena's owned-extern
// set so the next collection will not destroy it, matching spec §4.6's
// take operation. It reports ok=false for a non-extern value, a
// foreign reference rather than an owned block, or a block already
// taken.
func (rt *Runtime) TakeOwnedExtern(v Value) (payload interface{}, ok bool) {
	if v.Tag() != TagExtern {
		return nil, false
	}
	entry := rt.externs[rt.externHandle(v)]
	if entry == nil || entry.kind != externOwned || entry.moved {
		return nil, false
	}
	entry.moved = true
	return entry.payload, true
}

// ExternPayload dereferences a foreign reference or owned extern,
// re-checking the caller-supplied type fingerprint against the one
// recorded at construction time (spec §4.6 "Access re-checks the
// type-hash").
func (rt *Runtime) ExternPayload(v Value, typeHash uint64) (interface{}, error) {
	if v.Tag() != TagExtern {
		return nil, &TypeMismatchError{Expected: TagExtern, Actual: v.Tag()}
	}
	actual := rt.externTypeHash(v)
	if actual != typeHash {
		return nil, &ForeignTypeMismatchError{Expected: typeHash, Actual: actual}
	}
	entry := rt.externs[rt.externHandle(v)]
	if entry == nil || entry.moved {
		return nil, &ForeignTypeMismatchError{Expected: typeHash, Actual: 0}
	}
	return entry.payload, nil
}

// externFunc resolves a TagExtern value to its native callable, or nil
// if it is not a host-function registration (a foreign reference or
// owned extern used in call position).
func (rt *Runtime) externFunc(v Value) func(rt *Runtime, args Value) (Value, error) {
	entry := rt.externs[rt.externHandle(v)]
	if entry == nil || entry.kind != externHostFunc {
		return nil
	}
	return entry.fn
}

// handleSlot is the refcounted slot a host-visible value handle
// addresses; the collector rewrites Value in place during
// CollectGarbage (spec §4.6 "Value handle").
type handleSlot struct {
	value    Value
	refcount int
}

// HandleFor returns a fresh handle id retaining v across collections.
// The host must call ReleaseHandle when done; the slot is reclaimed
// once its refcount reaches zero.
func (rt *Runtime) HandleFor(v Value) uint64 {
	id := rt.nextHandleID
	rt.nextHandleID++
	rt.handles[id] = &handleSlot{value: v, refcount: 1}
	return id
}

// DerefHandle returns the current value held by handle id, which the
// collector may have rewritten since HandleFor was called.
func (rt *Runtime) DerefHandle(id uint64) (Value, bool) {
	slot, ok := rt.handles[id]
	if !ok {
		return NIL, false
	}
	return slot.value, true
}

// RetainHandle increments a handle's refcount, e.g. when a second host
// owner takes a copy of the same handle id.
func (rt *Runtime) RetainHandle(id uint64) {
	if slot, ok := rt.handles[id]; ok {
		slot.refcount++
	}
}

// ReleaseHandle decrements a handle's refcount, reclaiming its slot at
// zero.
func (rt *Runtime) ReleaseHandle(id uint64) {
	slot, ok := rt.handles[id]
	if !ok {
		return
	}
	slot.refcount--
	if slot.refcount <= 0 {
		delete(rt.handles, id)
	}
}
