//go:build amd64 || arm64

package javabridge

import (
	"strings"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Replacement class loader state, set once by InitReplacementClassLoader.
var (
	replacementLoader    atomic.Uintptr // global ref to the ClassLoader
	replacementLoadClass atomic.Uintptr // loadClass(String) method ID
)

// InitReplacementClassLoader installs the class loader used by GetClass
// and LazyGetClass. Without it, lookups performed while no Java frame
// is on the stack fall back to the system class loader, which cannot
// see application classes. Call it once at library load time with a
// loader that can; the loader is promoted to a global reference and
// kept for the process lifetime.
func InitReplacementClassLoader(env *Env, loader Object) {
	if loader == 0 {
		Logger().Fatal("InitReplacementClassLoader called with a null loader")
	}
	loaderClass := GetClass(env, "java/lang/ClassLoader")
	method := GetMethodID(env, loaderClass, MethodInstance,
		"loadClass", "(Ljava/lang/String;)Ljava/lang/Class;")
	env.DeleteLocalRef(Object(loaderClass))

	global := env.NewGlobalRef(loader)
	if global == 0 {
		Logger().Fatal("failed to create a global ref for the class loader")
	}
	// The loader slot is the publish point: GetClass dispatches through
	// loadClass as soon as it observes a non-zero loader, so the method
	// ID must be in place before the loader becomes visible.
	replacementLoadClass.Store(uintptr(method))
	if !replacementLoader.CAS(0, uintptr(global)) {
		Logger().Fatal("InitReplacementClassLoader called twice")
	}
}

// GetClass finds the class named className ("java/lang/String" form)
// and returns it as a local reference. A missing class is a mismatch
// between the native stubs and the Java API surface, so the process
// aborts rather than returning an error; there is no recovery path.
//
// When a replacement class loader is installed the lookup goes through
// it, so application classes resolve even with no Java frame active.
func GetClass(env *Env, className string) Class {
	var cls uintptr
	if loader := replacementLoader.Load(); loader != 0 {
		// loadClass wants the binary name: dots, not slashes.
		binary := env.NewString(strings.ReplaceAll(className, "/", "."))
		cls = uintptr(env.CallObjectMethod(Object(loader),
			Method(replacementLoadClass.Load()), uint64(binary)))
		env.DeleteLocalRef(binary)
	} else {
		cls = envCalls.FindClass(env.raw, className)
	}
	if cls == 0 || HasException(env) {
		envCalls.ExceptionDescribe(env.raw)
		envCalls.ExceptionClear(env.raw)
		Logger().Fatal("class not found", zap.String("class", className))
	}
	return Class(cls)
}

// LazyGetClass resolves className through the caller-owned slot. The
// first call on any thread pays the lookup and publishes a durable
// global reference; every later call on any thread is a single atomic
// load. All callers sharing a slot observe the identical Class value
// for the remainder of the process.
//
// The slot must be zero-initialized and used for exactly one class
// name. Threads may race freely on the same slot.
func LazyGetClass(env *Env, className string, slot *AtomicHandleSlot) Class {
	return Class(lazyPublish(slot,
		func() uintptr {
			local := GetClass(env, className)
			global := envCalls.NewGlobalRef(env.raw, uintptr(local))
			envCalls.DeleteLocalRef(env.raw, uintptr(local))
			if global == 0 {
				Logger().Fatal("failed to create a global class ref",
					zap.String("class", className))
			}
			return global
		},
		func(dup uintptr) {
			// Lost the publish race: release our duplicate global ref
			// or it leaks for the process lifetime. Best effort; a
			// failure here must not disturb the published value.
			envCalls.DeleteGlobalRef(env.raw, dup)
			ClearException(env)
		}))
}
