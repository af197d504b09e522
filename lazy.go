//go:build amd64 || arm64

package javabridge

import (
	"go.uber.org/atomic"
)

// AtomicHandleSlot is a caller-owned cell caching one lazily resolved
// JNI handle. Generated stub code embeds one zero-initialized slot per
// distinct class name or method signature.
//
// A slot holds zero until its first successful resolution and then the
// resolved handle for the remainder of the process; the transition
// happens at most once. Once any thread observes a non-zero value,
// every thread observes that same value forever.
type AtomicHandleSlot = atomic.Uintptr

// lazyPublish implements the resolve-once, publish-once protocol shared
// by class and method-ID caching.
//
// The fast path is a single acquire load: no lock, no boundary call.
// On a zero load the caller's resolve function runs; any number of
// threads may race it, each computing its own candidate. Exactly one
// candidate wins the compare-and-swap; losers pass theirs to discard
// (which releases the duplicate runtime reference, if the handle kind
// holds one) and return the winner's value. Work is duplicated under
// contention, never serialized: no thread waits for another's
// resolution.
//
// resolve must return non-zero; resolution targets that do not exist
// are a contract violation handled fatally inside resolve itself.
func lazyPublish(slot *AtomicHandleSlot, resolve func() uintptr, discard func(uintptr)) uintptr {
	if v := slot.Load(); v != 0 {
		return v
	}
	candidate := resolve()
	if slot.CAS(0, candidate) {
		return candidate
	}
	// Another thread published first. Release our duplicate and adopt
	// the winning value; a discard failure must not mask it.
	if discard != nil {
		discard(candidate)
	}
	return slot.Load()
}
