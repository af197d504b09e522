// Package handles provides a thread-safe registry for Go objects that
// are referenced from the Java side.
//
// Java peer objects commonly keep a long field pointing at their native
// counterpart. A Go pointer cannot be stored there: the garbage
// collector may move or collect the object, and JNI would be holding a
// dangling address. Instead the Go object is pinned here and the small
// integer handle is stored in the Java field; native method
// implementations resolve it back on entry.
package handles

import (
	"sync"
)

var (
	mu     sync.RWMutex
	pinned = make(map[int64]any)
	nextID int64 = 1
)

// Pin stores a Go object and returns a handle suitable for a Java long
// field. The object stays reachable until Release is called.
//
// Thread-safe.
func Pin(v any) int64 {
	mu.Lock()
	defer mu.Unlock()
	id := nextID
	nextID++
	pinned[id] = v
	return id
}

// Resolve returns the Go object for a handle, or nil if the handle is
// not pinned (already released, or never valid).
//
// Thread-safe.
func Resolve(id int64) any {
	mu.RLock()
	defer mu.RUnlock()
	return pinned[id]
}

// Release drops a handle, letting the Go object be collected. Call it
// when the Java peer is destroyed.
//
// Thread-safe.
func Release(id int64) {
	mu.Lock()
	defer mu.Unlock()
	delete(pinned, id)
}

// Live returns the number of currently pinned objects. Useful for leak
// checks in tests.
//
// Thread-safe.
func Live() int {
	mu.RLock()
	defer mu.RUnlock()
	return len(pinned)
}
