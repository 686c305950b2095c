//go:build !unix

package emlisp

// mapArena falls back to a plain heap allocation when anonymous mmap
// is not available on the target platform.
func mapArena(size int) ([]byte, func(), error) {
	return make([]byte, size), func() {}, nil
}
