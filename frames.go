//go:build profiling && (amd64 || arm64)

package javabridge

// ProfilingEnabled reports whether the stack frame linker is compiled
// in. Built with the "profiling" tag.
const ProfilingEnabled = true

// FrameLink pairs a native frame with the frame saved before the most
// recent boundary crossing. Frame-pointer unwinders use it to bridge
// the Java frames between the two, which they cannot walk.
type FrameLink struct {
	Frame  uintptr
	Caller uintptr
}

// SaveFramePointer records the caller's frame pointer before control
// crosses into Java, chained after any earlier save on this thread so
// nested crossings unwind correctly. The returned restore function
// pops the record and must be called exactly once, when the crossing
// returns; unbalanced pairs corrupt the chain for every later unwind
// on this thread.
//
// Generated stubs call this as the last thing before dispatching into
// the JVM.
func (e *Env) SaveFramePointer(fp uintptr) func() {
	e.frames = &savedFrame{fp: fp, prev: e.frames}
	return func() {
		e.frames = e.frames.prev
	}
}

// SavedFramePointer returns the most recently saved frame pointer on
// this thread, or zero when no crossing is in flight.
func (e *Env) SavedFramePointer() uintptr {
	if e.frames == nil {
		return 0
	}
	return e.frames.fp
}

// LinkFramePointer connects the incoming native frame to the most
// recently saved one. Generated callbacks call this as the first thing
// after control returns from Java.
func (e *Env) LinkFramePointer(fp uintptr) FrameLink {
	return FrameLink{Frame: fp, Caller: e.SavedFramePointer()}
}
