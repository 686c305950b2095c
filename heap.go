package emlisp

import (
	"encoding/binary"
	"math"
)

// cellWords is the size in bytes of a two-word cell (pair, closure,
// extern): every cell is exactly two aligned machine words (spec §3
// invariant).
const cellWords = 16

func (rt *Runtime) readWord(off uint32) uint64 {
	return binary.LittleEndian.Uint64(rt.arena.bytes(off))
}

func (rt *Runtime) writeWord(off uint32, w uint64) {
	binary.LittleEndian.PutUint64(rt.arena.bytes(off), w)
}

// allocCell reserves a two-word cell, running one collection first if
// the arena is full, and returns its offset.
func (rt *Runtime) allocCell() (uint32, error) {
	off, ok := rt.arena.reserve(cellWords)
	if ok {
		return off, nil
	}
	if err := rt.CollectGarbage(nil); err != nil {
		return 0, err
	}
	off, ok = rt.arena.reserve(cellWords)
	if !ok {
		return 0, &OutOfMemoryError{Requested: cellWords, Available: rt.arena.Remaining()}
	}
	return off, nil
}

// cons allocates a pair cell (fst, snd) -> (car, cdr).
func (rt *Runtime) cons(fst, snd Value) Value {
	off, err := rt.allocCell()
	if err != nil {
		panic(err)
	}
	rt.writeWord(off, uint64(fst))
	rt.writeWord(off+8, uint64(snd))
	return valueFromAddr(off, TagPair)
}

// Cons is the host-facing equivalent of `cons`.
func (rt *Runtime) Cons(fst, snd Value) Value { return rt.cons(fst, snd) }

func (rt *Runtime) checkPair(v Value, msg string) {
	if v.Tag() != TagPair {
		panic(&TypeMismatchError{Expected: TagPair, Actual: v.Tag(), Message: msg})
	}
}

// Car returns the first element of a pair.
func (rt *Runtime) Car(v Value) Value {
	rt.checkPair(v, "car")
	return Value(rt.readWord(v.addr()))
}

// Cdr returns the second element of a pair.
func (rt *Runtime) Cdr(v Value) Value {
	rt.checkPair(v, "cdr")
	return Value(rt.readWord(v.addr() + 8))
}

// SetCar mutates the first element of a pair in place.
func (rt *Runtime) SetCar(v, newCar Value) {
	rt.checkPair(v, "set-car!")
	rt.writeWord(v.addr(), uint64(newCar))
}

// SetCdr mutates the second element of a pair in place.
func (rt *Runtime) SetCdr(v, newCdr Value) {
	rt.checkPair(v, "set-cdr!")
	rt.writeWord(v.addr()+8, uint64(newCdr))
}

// makeString copies src into a length-prefixed immutable byte run.
func (rt *Runtime) makeString(src string) Value {
	need := 4 + len(src)
	off, ok := rt.arena.reserve(need)
	if !ok {
		if err := rt.CollectGarbage(nil); err != nil {
			panic(err)
		}
		off, ok = rt.arena.reserve(need)
		if !ok {
			panic(&OutOfMemoryError{Requested: need, Available: rt.arena.Remaining()})
		}
	}
	buf := rt.arena.bytes(off)
	binary.LittleEndian.PutUint32(buf, uint32(len(src)))
	copy(buf[4:], src)
	return valueFromAddr(off, TagString)
}

// MakeString is the host-facing equivalent of `from_str`.
func (rt *Runtime) MakeString(src string) Value { return rt.makeString(src) }

// StringLen returns the byte length of a string value.
func (rt *Runtime) StringLen(v Value) int {
	if v.Tag() != TagString {
		panic(&TypeMismatchError{Expected: TagString, Actual: v.Tag()})
	}
	buf := rt.arena.bytes(v.addr())
	return int(binary.LittleEndian.Uint32(buf))
}

// String decodes a string-tagged value back to a Go string.
func (rt *Runtime) String(v Value) string {
	if v.Tag() != TagString {
		panic(&TypeMismatchError{Expected: TagString, Actual: v.Tag()})
	}
	buf := rt.arena.bytes(v.addr())
	n := binary.LittleEndian.Uint32(buf)
	return string(buf[4 : 4+n])
}

// makeFVec copies src into a length-prefixed mutable float32 array.
func (rt *Runtime) makeFVec(src []float32) Value {
	need := 4 + 4*len(src)
	off, ok := rt.arena.reserve(need)
	if !ok {
		if err := rt.CollectGarbage(nil); err != nil {
			panic(err)
		}
		off, ok = rt.arena.reserve(need)
		if !ok {
			panic(&OutOfMemoryError{Requested: need, Available: rt.arena.Remaining()})
		}
	}
	buf := rt.arena.bytes(off)
	binary.LittleEndian.PutUint32(buf, uint32(len(src)))
	for i, f := range src {
		binary.LittleEndian.PutUint32(buf[4+4*i:], float32Bits(f))
	}
	return valueFromAddr(off, TagFVec)
}

// MakeFVec is the host-facing equivalent of `from_fvec`.
func (rt *Runtime) MakeFVec(src []float32) Value { return rt.makeFVec(src) }

// FVecLen returns the element count of a float-vector value.
func (rt *Runtime) FVecLen(v Value) int {
	if v.Tag() != TagFVec {
		panic(&TypeMismatchError{Expected: TagFVec, Actual: v.Tag()})
	}
	buf := rt.arena.bytes(v.addr())
	return int(binary.LittleEndian.Uint32(buf))
}

// FVecGet reads element i of a float-vector value.
func (rt *Runtime) FVecGet(v Value, i int) float32 {
	if v.Tag() != TagFVec {
		panic(&TypeMismatchError{Expected: TagFVec, Actual: v.Tag()})
	}
	buf := rt.arena.bytes(v.addr())
	return float32FromBits(binary.LittleEndian.Uint32(buf[4+4*i:]))
}

// FVecSet mutates element i of a float-vector value in place.
func (rt *Runtime) FVecSet(v Value, i int, f float32) {
	if v.Tag() != TagFVec {
		panic(&TypeMismatchError{Expected: TagFVec, Actual: v.Tag()})
	}
	buf := rt.arena.bytes(v.addr())
	binary.LittleEndian.PutUint32(buf[4+4*i:], float32Bits(f))
}

// closure cells store two raw (untagged) words: a function-table
// index and a frame-table index.
func (rt *Runtime) allocClosure(fnIndex, frameIndex int) Value {
	off, err := rt.allocCell()
	if err != nil {
		panic(err)
	}
	rt.writeWord(off, uint64(fnIndex))
	rt.writeWord(off+8, uint64(frameIndex))
	return valueFromAddr(off, TagClosure)
}

func (rt *Runtime) closureFn(v Value) *function {
	idx := int(rt.readWord(v.addr()))
	return rt.functions[idx]
}

func (rt *Runtime) closureFrame(v Value) *Frame {
	idx := int(rt.readWord(v.addr() + 8))
	return rt.frameByIndex(idx)
}

// allocExternCell stores a two-word extern cell: a handle index into
// rt.externs and a type fingerprint, matching the layout described in
// spec §4.6.
func (rt *Runtime) allocExternCell(handle uint64, typeHash uint64) Value {
	off, err := rt.allocCell()
	if err != nil {
		panic(err)
	}
	rt.writeWord(off, handle)
	rt.writeWord(off+8, typeHash)
	return valueFromAddr(off, TagExtern)
}

func (rt *Runtime) externHandle(v Value) uint64 { return rt.readWord(v.addr()) }
func (rt *Runtime) externTypeHash(v Value) uint64 { return rt.readWord(v.addr() + 8) }

func float32Bits(f float32) uint32        { return math.Float32bits(f) }
func float32FromBits(bits uint32) float32 { return math.Float32frombits(bits) }
