//go:build amd64 || arm64

package jnienv

import (
	"testing"
	"unsafe"
)

func TestCStrNulTerminated(t *testing.T) {
	b := cstr("java/lang/String")
	if len(b) != len("java/lang/String")+1 {
		t.Errorf("cstr length = %d, want %d", len(b), len("java/lang/String")+1)
	}
	if b[len(b)-1] != 0 {
		t.Error("cstr result is not NUL-terminated")
	}
}

func TestGoStrRoundTrip(t *testing.T) {
	cases := []string{
		"",
		"x",
		"java/lang/Throwable",
		"(Ljava/lang/String;)Ljava/lang/String;",
	}
	for _, want := range cases {
		b := cstr(want)
		got := gostr(unsafe.Pointer(&b[0]))
		if got != want {
			t.Errorf("gostr(cstr(%q)) = %q", want, got)
		}
	}
}

func TestGoStrNil(t *testing.T) {
	if got := gostr(nil); got != "" {
		t.Errorf("gostr(nil) = %q, want empty", got)
	}
}

func TestJvaluesEmpty(t *testing.T) {
	if p := jvalues(nil); p != 0 {
		t.Errorf("jvalues(nil) = %#x, want 0", p)
	}
	if p := jvalues([]uint64{1}); p == 0 {
		t.Error("jvalues of non-empty slice should be non-zero")
	}
}
