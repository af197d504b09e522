//go:build amd64 || arm64

// Package javabridge is the bridge layer between native Go code and a
// Java virtual machine, built on purego with no cgo.
//
// Generated stub code drives it in a fixed shape: obtain the calling
// thread's Env with AttachCurrentThread, resolve the class and method
// it needs through the lazy caches LazyGetClass and LazyGetMethodID
// (first use pays the JNI lookup, every later use on any thread is one
// atomic load), invoke across the boundary, then check the exception
// bridge (HasException, ClearException, CheckException).
//
// The process hosting the bridge either launches its own VM with
// CreateJVM or, when loaded into an existing VM, records the handle it
// was given with InitVM. Missing classes or methods, a double InitVM,
// or use before InitVM are contract violations between the stubs and
// the Java API surface; the bridge aborts on them rather than
// returning errors, since no retry can fix a build-time mismatch.
package javabridge
