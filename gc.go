package emlisp

import "encoding/binary"

// GCInfo reports how many bytes were in use in the old arena before a
// collection and in the new arena after it.
type GCInfo struct {
	OldSize int
	NewSize int
}

// CollectGarbage runs a Cheney-style semi-space collection: a fresh
// arena is allocated (grown by gc.grow_factor over the current heap
// size), every root is walked and forwarded into it via gcProcess,
// every reachable owned-extern block's handle is recorded as
// surviving, and every owned-extern block that did not survive has
// its destructor invoked exactly once. The operation is synchronous
// and must only run at a quiescent point (spec §4.4, §5) — the
// runtime does not itself detect reentrancy. Grounded on
// original_source/src/memory.cpp's
// runtime::collect_garbage/gc_process.
//
// A closure's captured frame is only walked when the closure cell
// itself is reached from a live root — frames are never rooted
// wholesale. original_source reaches frames through live closures the
// same way (a frame with no reachable closure pointing at it is just
// unreferenced C++ heap memory); rooting rt.frameTable unconditionally
// would keep every closure ever created alive forever, including
// owned-extern payloads reachable only through a dead closure's frame,
// whose destructor must instead run once that closure becomes
// unreachable.
func (rt *Runtime) CollectGarbage(info *GCInfo) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()

	oldArena := rt.arena
	newSize := rt.heapSize * rt.gcGrowFactor
	newArena, err := newArena(newSize)
	if err != nil {
		return err
	}

	live := make(map[Value]Value)
	survived := make(map[uint64]bool)
	visitedFrames := make(map[int]bool)

	for _, scope := range rt.scopes {
		for name, val := range scope {
			scope[name] = rt.gcProcess(oldArena, newArena, val, live, survived, visitedFrames)
		}
	}
	for _, fn := range rt.functions {
		fn.body = rt.gcProcess(oldArena, newArena, fn.body, live, survived, visitedFrames)
	}
	for _, slot := range rt.handles {
		slot.value = rt.gcProcess(oldArena, newArena, slot.value, live, survived, visitedFrames)
	}

	for handle, entry := range rt.externs {
		if entry.kind == externOwned && !entry.moved && !survived[handle] {
			if entry.destructor != nil {
				entry.destructor(entry.payload)
			}
			delete(rt.externs, handle)
		}
	}

	if info != nil {
		info.OldSize = oldArena.Used()
		info.NewSize = newArena.Used()
	}

	oldArena.Release()
	rt.arena = newArena
	rt.heapSize = newSize
	return nil
}

// gcProcess forwards a single value word into newArena, memoizing
// through live so that shared structure (including cycles) is copied
// exactly once, then recurses into whatever internal references the
// copied cell carries. visitedFrames guards against processing the
// same closure's capture frame twice (recursive closures bind
// themselves into their own frame, so the frame would otherwise be
// revisited through that self-reference).
func (rt *Runtime) gcProcess(oldArena, newArena *Arena, c Value, live map[Value]Value, survived map[uint64]bool, visitedFrames map[int]bool) Value {
	tag := c.Tag()
	if !isHeapTag(tag) {
		return c
	}
	if nv, ok := live[c]; ok {
		return nv
	}

	oldAddr := c.addr()

	switch tag {
	case TagPair, TagClosure, TagExtern:
		newAddr, ok := newArena.reserve(cellWords)
		if !ok {
			panic(&OutOfMemoryError{Requested: cellWords, Available: newArena.Remaining()})
		}
		copy(newArena.bytes(newAddr)[:cellWords], oldArena.bytes(oldAddr)[:cellWords])
		nv := valueFromAddr(newAddr, tag)
		live[c] = nv

		switch tag {
		case TagExtern:
			handle := binary.LittleEndian.Uint64(newArena.bytes(newAddr))
			survived[handle] = true

		case TagPair:
			car := Value(binary.LittleEndian.Uint64(newArena.bytes(newAddr)))
			cdr := Value(binary.LittleEndian.Uint64(newArena.bytes(newAddr + 8)))
			car = rt.gcProcess(oldArena, newArena, car, live, survived, visitedFrames)
			cdr = rt.gcProcess(oldArena, newArena, cdr, live, survived, visitedFrames)
			binary.LittleEndian.PutUint64(newArena.bytes(newAddr), uint64(car))
			binary.LittleEndian.PutUint64(newArena.bytes(newAddr+8), uint64(cdr))

		case TagClosure:
			// The function's body is forwarded by CollectGarbage's walk
			// over rt.functions; forwarding it here as well would run an
			// already-forwarded word through gcProcess a second time.
			frameIdx := int(binary.LittleEndian.Uint64(newArena.bytes(newAddr + 8)))
			if !visitedFrames[frameIdx] {
				visitedFrames[frameIdx] = true
				frame := rt.frameByIndex(frameIdx)
				for name, val := range frame.entries {
					frame.entries[name] = rt.gcProcess(oldArena, newArena, val, live, survived, visitedFrames)
				}
			}
		}
		return nv

	case TagString:
		n := binary.LittleEndian.Uint32(oldArena.bytes(oldAddr))
		need := 4 + int(n)
		newAddr, ok := newArena.reserve(need)
		if !ok {
			panic(&OutOfMemoryError{Requested: need, Available: newArena.Remaining()})
		}
		copy(newArena.bytes(newAddr)[:need], oldArena.bytes(oldAddr)[:need])
		nv := valueFromAddr(newAddr, TagString)
		live[c] = nv
		return nv

	case TagFVec:
		n := binary.LittleEndian.Uint32(oldArena.bytes(oldAddr))
		need := 4 + 4*int(n)
		newAddr, ok := newArena.reserve(need)
		if !ok {
			panic(&OutOfMemoryError{Requested: need, Available: newArena.Remaining()})
		}
		copy(newArena.bytes(newAddr)[:need], oldArena.bytes(oldAddr)[:need])
		nv := valueFromAddr(newAddr, TagFVec)
		live[c] = nv
		return nv
	}

	return c
}
