package emlisp

// Arena is a contiguous bump-allocated byte region backing one side of
// the runtime's semi-space heap (spec §4.2). It never moves once
// created; collection allocates a new Arena and swaps it in.
type Arena struct {
	data []byte
	next uint32
	free func()
}

// newArena allocates size bytes of zeroed, page-aligned memory via
// mmap when available (see arena_unix.go / arena_fallback.go), and
// returns an Arena with its bump pointer at the base.
func newArena(size int) (*Arena, error) {
	data, free, err := mapArena(size)
	if err != nil {
		return nil, err
	}
	return &Arena{data: data, next: 0, free: free}, nil
}

// Len returns the arena's total capacity in bytes.
func (a *Arena) Len() int { return len(a.data) }

// Used returns the number of bytes claimed by the bump pointer so far.
func (a *Arena) Used() int { return int(a.next) }

// Remaining returns the number of bytes left before the arena limit.
func (a *Arena) Remaining() int { return len(a.data) - int(a.next) }

// reserve advances the bump pointer by size bytes (rounded up to
// 8-byte alignment) and returns the byte offset of the reservation, or
// false if the arena limit would be exceeded.
func (a *Arena) reserve(size int) (uint32, bool) {
	aligned := (size + 7) &^ 7
	if int(a.next)+aligned > len(a.data) {
		return 0, false
	}
	off := a.next
	a.next += uint32(aligned)
	return off, true
}

// bytes returns a slice view into the arena starting at off.
func (a *Arena) bytes(off uint32) []byte { return a.data[off:] }

// Release gives back the arena's backing memory. Safe to call on a
// retired arena after a collection swap.
func (a *Arena) Release() {
	if a.free != nil {
		a.free()
		a.free = nil
	}
}
