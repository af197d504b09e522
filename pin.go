//go:build amd64 || arm64

package javabridge

import (
	"github.com/obinnaokechukwu/javabridge/internal/handles"
)

// Pin registers a Go object for reference from a Java peer and returns
// a handle to store in the peer's long field. The object stays alive
// until Unpin.
//
// Go pointers must never cross the boundary directly: the collector
// may move or free them while Java still holds the address.
func Pin(v any) int64 {
	return handles.Pin(v)
}

// Pinned resolves a handle previously returned by Pin. Returns nil for
// released or invalid handles; native method implementations should
// treat that as a destroyed peer, not an error.
func Pinned(h int64) any {
	return handles.Resolve(h)
}

// Unpin releases a pinned object. Call it from the peer's teardown
// path, or the Go object leaks for the process lifetime.
func Unpin(h int64) {
	handles.Release(h)
}

// PinnedCount returns the number of live pins, for leak checks.
func PinnedCount() int {
	return handles.Live()
}
