//go:build unix

package emlisp

import "golang.org/x/sys/unix"

// mapArena allocates an anonymous, private mapping for the arena.
// Grounded on the pack's hivekit/internal/mmfile unix mapper, adapted
// from a read-only file mapping to an anonymous read-write one sized
// for the heap budget.
func mapArena(size int) ([]byte, func(), error) {
	if size <= 0 {
		return []byte{}, func() {}, nil
	}
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, err
	}
	free := func() { _ = unix.Munmap(data) }
	return data, free, nil
}
