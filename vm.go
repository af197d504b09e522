//go:build amd64 || arm64

package javabridge

import (
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/obinnaokechukwu/javabridge/internal/bindings"
	"github.com/obinnaokechukwu/javabridge/internal/jnienv"
)

var (
	// jvm is the process-wide JavaVM handle: written exactly once by
	// InitVM, read by every thread thereafter.
	jvm atomic.Uintptr

	// envs maps raw JNIEnv pointers to their Env wrappers. A raw env is
	// unique to its owning thread, so the wrapper it maps to is too.
	envs sync.Map

	// attachSeq numbers default-generated thread names.
	attachSeq atomic.Int64

	// threadNamePrefix is the prefix for default-generated thread
	// names; configurable before the first attach.
	threadNamePrefix atomic.String
)

func init() {
	threadNamePrefix.Store("JavaBridge")
}

// InitVM records the process-wide JavaVM handle. It must be called
// exactly once, at library load time, before any other bridge
// operation. Calling it twice or passing a zero handle is a contract
// violation and aborts the process.
func InitVM(vm uintptr) {
	if vm == 0 {
		Logger().Fatal("InitVM called with a null JavaVM handle")
	}
	if !jvm.CAS(0, vm) {
		Logger().Fatal("InitVM called twice", zap.Uintptr("vm", vm))
	}
}

// IsVMInitialized reports whether InitVM has been called. Safe from
// any thread at any time, with no side effects.
func IsVMInitialized() bool {
	return jvm.Load() != 0
}

// vmHandle returns the JavaVM handle, aborting if the bridge is used
// before InitVM.
func vmHandle() uintptr {
	vm := jvm.Load()
	if vm == 0 {
		Logger().Fatal("javabridge used before InitVM")
	}
	return vm
}

// AttachCurrentThread attaches the calling thread to the JVM if it is
// not already attached and returns its Env. The call is idempotent per
// thread. A first attachment names the thread with a generated default;
// use AttachCurrentThreadWithName to control the name.
//
// The calling goroutine is pinned to its OS thread until DetachFromVM,
// since the returned Env is only valid on that thread.
func AttachCurrentThread() *Env {
	return attach("", false)
}

// AttachCurrentThreadWithName is AttachCurrentThread with an explicit
// runtime-visible thread name. The name only applies on the thread's
// first attachment: the JVM cannot rename an attached thread, and
// silently renaming would mislead whoever set the original name, so a
// later call with a different name is ignored.
func AttachCurrentThreadWithName(name string) *Env {
	return attach(name, false)
}

// AttachCurrentThreadAsDaemon attaches the calling thread as a daemon
// thread: the JVM will not wait for it during shutdown. Otherwise
// identical to AttachCurrentThread.
func AttachCurrentThreadAsDaemon() *Env {
	return attach("", true)
}

func attach(name string, daemon bool) *Env {
	vm := vmHandle()

	// Pin before touching per-thread VM state. Without the pin the
	// scheduler may move this goroutine between GetEnv and the use of
	// the returned env, handing it another thread's JNIEnv.
	runtime.LockOSThread()

	raw, status := vmCalls.GetEnv(vm, jnienv.Version1_6)
	if status == jnienv.OK {
		e := envFor(raw)
		e.pins++
		return e
	}
	if status != jnienv.EDetached {
		runtime.UnlockOSThread()
		Logger().Fatal("GetEnv failed", zap.Int32("status", status))
	}

	if name == "" {
		name = fmt.Sprintf("%s-%d", threadNamePrefix.Load(), attachSeq.Inc())
	}
	if daemon {
		raw, status = vmCalls.AttachCurrentThreadAsDaemon(vm, name)
	} else {
		raw, status = vmCalls.AttachCurrentThread(vm, name)
	}
	if status != jnienv.OK || raw == 0 {
		runtime.UnlockOSThread()
		Logger().Fatal("AttachCurrentThread failed",
			zap.Int32("status", status), zap.String("name", name))
	}
	e := envFor(raw)
	e.pins++
	return e
}

// envFor returns the stable Env wrapper for a raw JNIEnv pointer.
func envFor(raw uintptr) *Env {
	if v, ok := envs.Load(raw); ok {
		return v.(*Env)
	}
	v, _ := envs.LoadOrStore(raw, &Env{raw: raw})
	return v.(*Env)
}

// DetachFromVM detaches the calling thread from the JVM if it is
// attached; it is a no-op on a never-attached thread or before InitVM.
// Threads not owned by the JVM must call this before terminating, or
// the VM accumulates stale per-thread bookkeeping.
func DetachFromVM() {
	vm := jvm.Load()
	if vm == 0 {
		return
	}
	raw, status := vmCalls.GetEnv(vm, jnienv.Version1_6)
	if status != jnienv.OK {
		return
	}

	var pins int
	if v, ok := envs.Load(raw); ok {
		e := v.(*Env)
		pins = e.pins
		e.pins = 0
		envs.Delete(raw)
	}

	if s := vmCalls.DetachCurrentThread(vm); s != jnienv.OK {
		Logger().Warn("DetachCurrentThread failed", zap.Int32("status", s))
	}
	for ; pins > 0; pins-- {
		runtime.UnlockOSThread()
	}
}

// Init loads the JVM shared library and binds the invocation API. It is
// called implicitly by CreateJVM but can be invoked early to surface
// load errors. Safe to call multiple times.
func Init() error {
	return bindings.Load()
}

// IsLoaded reports whether the JVM library has been loaded.
func IsLoaded() bool {
	return bindings.IsLoaded()
}

// CreateJVM starts a JVM in this process with the given option strings
// (for example "-Djava.class.path=app.jar") and initializes the bridge
// with it. The returned Env belongs to the calling thread, which ends
// up attached and pinned exactly as if it had called
// AttachCurrentThread.
//
// HotSpot supports one VM per process; if one has already been created,
// CreateJVM adopts it and ignores options.
func CreateJVM(options ...string) (*Env, error) {
	if err := bindings.Load(); err != nil {
		return nil, err
	}
	runtime.LockOSThread()

	if vm, err := bindings.CreatedJavaVM(); err == nil && vm != 0 {
		if !IsVMInitialized() {
			InitVM(vm)
		}
		e := attach("", false)
		runtime.UnlockOSThread() // attach holds its own pin
		return e, nil
	}

	vm, raw, err := bindings.CreateJavaVM(options)
	if err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}
	InitVM(vm)
	e := envFor(raw)
	e.pins++
	return e, nil
}
