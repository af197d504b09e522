//go:build !profiling && (amd64 || arm64)

package javabridge

// ProfilingEnabled reports whether the stack frame linker is compiled
// in. Built without the "profiling" tag, so all frame operations are
// no-ops; call sites do not need their own conditionals.
const ProfilingEnabled = false

// FrameLink pairs a native frame with the frame saved before the most
// recent boundary crossing. Unused in non-profiling builds.
type FrameLink struct {
	Frame  uintptr
	Caller uintptr
}

// SaveFramePointer is a no-op in non-profiling builds.
func (e *Env) SaveFramePointer(fp uintptr) func() {
	return func() {}
}

// SavedFramePointer always returns zero in non-profiling builds.
func (e *Env) SavedFramePointer() uintptr {
	return 0
}

// LinkFramePointer returns an empty link in non-profiling builds.
func (e *Env) LinkFramePointer(fp uintptr) FrameLink {
	return FrameLink{}
}
