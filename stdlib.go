package emlisp

// stdlibSource is the script-level standard-library prelude, evaluated
// at startup when Config's heap.preload_stdlib is set. The prelude's
// source text is an external collaborator out of scope for this core
// (spec.md §1) — preloading is wired end-to-end (NewRuntime reads,
// expands, and evaluates it) against this empty placeholder so a host
// that supplies real prelude text via a build-time replacement needs no
// further changes to runtime.go.
const stdlibSource = ""
