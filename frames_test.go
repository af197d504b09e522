//go:build !profiling && (amd64 || arm64)

package javabridge

import "testing"

func TestFrameOperationsDisabled(t *testing.T) {
	setupBridge(t)
	env := testEnv()

	if ProfilingEnabled {
		t.Fatal("ProfilingEnabled true in a non-profiling build")
	}

	restore := env.SaveFramePointer(0xA0)
	if got := env.SavedFramePointer(); got != 0 {
		t.Errorf("saved frame = %#x, want 0 when profiling is off", got)
	}
	restore()

	if link := env.LinkFramePointer(0xC0); link != (FrameLink{}) {
		t.Errorf("link = %+v, want zero value when profiling is off", link)
	}
}
