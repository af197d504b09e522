//go:build amd64 || arm64

package javabridge

import (
	"github.com/obinnaokechukwu/javabridge/internal/jnienv"
)

// Opaque JNI reference kinds. Class and Method values obtained through
// the lazy caches are durable for the life of the process; Object and
// Throwable values are local references that must not be retained past
// the call that produced them unless promoted with NewGlobalRef.
type (
	Class     uintptr
	Method    uintptr
	Object    uintptr
	Throwable uintptr
)

// envDispatch is the raw JNIEnv call surface. The production
// implementation is jnienv.EnvTable, which dispatches through the real
// JNI function table with purego; tests substitute an in-memory fake.
type envDispatch interface {
	FindClass(env uintptr, name string) uintptr
	NewGlobalRef(env, ref uintptr) uintptr
	DeleteGlobalRef(env, ref uintptr)
	DeleteLocalRef(env, ref uintptr)
	GetObjectClass(env, obj uintptr) uintptr
	GetMethodID(env, class uintptr, name, sig string) uintptr
	GetStaticMethodID(env, class uintptr, name, sig string) uintptr
	NewObjectA(env, class, ctor uintptr, args []uint64) uintptr
	CallObjectMethodA(env, obj, method uintptr, args []uint64) uintptr
	CallVoidMethodA(env, obj, method uintptr, args []uint64)
	CallStaticObjectMethodA(env, class, method uintptr, args []uint64) uintptr
	NewStringUTF(env uintptr, s string) uintptr
	GoStringUTF(env, jstr uintptr) string
	ExceptionCheck(env uintptr) bool
	ExceptionOccurred(env uintptr) uintptr
	ExceptionClear(env uintptr)
	ExceptionDescribe(env uintptr)
	RegisterNatives(env, class uintptr, methods []jnienv.NativeMethod) int32
}

// vmDispatch is the raw JavaVM invocation surface.
type vmDispatch interface {
	GetEnv(vm uintptr, version int32) (uintptr, int32)
	AttachCurrentThread(vm uintptr, name string) (uintptr, int32)
	AttachCurrentThreadAsDaemon(vm uintptr, name string) (uintptr, int32)
	DetachCurrentThread(vm uintptr) int32
}

var (
	envCalls envDispatch = jnienv.EnvTable{}
	vmCalls  vmDispatch  = jnienv.VMTable{}
)

// Env is the per-thread handle to the JVM's call interface. An Env is
// exclusively owned by the OS thread that attached it and must never be
// shared with or used from another thread.
type Env struct {
	raw uintptr

	// pins counts runtime.LockOSThread calls made on behalf of this
	// env; DetachFromVM unwinds them. Owner-thread access only.
	pins int

	// frames is the saved-frame chain head for profiling builds.
	// Owner-thread access only.
	frames *savedFrame
}

// savedFrame is one node of the thread-local frame-pointer chain kept
// across boundary crossings in profiling builds.
type savedFrame struct {
	fp   uintptr
	prev *savedFrame
}

// Raw returns the underlying JNIEnv pointer, for handing to generated
// stub code or other JNI-aware libraries.
func (e *Env) Raw() uintptr {
	return e.raw
}

// The call wrappers below are the shapes generated stubs dispatch
// through. Arguments are packed jvalues: one 8-byte word per argument,
// references as their handle value.

// NewObject constructs an instance of class through ctor.
// The result is a local reference.
func (e *Env) NewObject(class Class, ctor Method, args ...uint64) Object {
	return Object(envCalls.NewObjectA(e.raw, uintptr(class), uintptr(ctor), args))
}

// CallObjectMethod invokes an instance method returning a reference.
func (e *Env) CallObjectMethod(obj Object, method Method, args ...uint64) Object {
	return Object(envCalls.CallObjectMethodA(e.raw, uintptr(obj), uintptr(method), args))
}

// CallVoidMethod invokes an instance method returning void.
func (e *Env) CallVoidMethod(obj Object, method Method, args ...uint64) {
	envCalls.CallVoidMethodA(e.raw, uintptr(obj), uintptr(method), args)
}

// CallStaticObjectMethod invokes a static method returning a reference.
func (e *Env) CallStaticObjectMethod(class Class, method Method, args ...uint64) Object {
	return Object(envCalls.CallStaticObjectMethodA(e.raw, uintptr(class), uintptr(method), args))
}

// GetObjectClass returns the class of obj as a local reference.
func (e *Env) GetObjectClass(obj Object) Class {
	return Class(envCalls.GetObjectClass(e.raw, uintptr(obj)))
}

// NewString creates a java.lang.String from s as a local reference.
func (e *Env) NewString(s string) Object {
	return Object(envCalls.NewStringUTF(e.raw, s))
}

// GoString copies the contents of a java.lang.String into a Go string.
func (e *Env) GoString(jstr Object) string {
	return envCalls.GoStringUTF(e.raw, uintptr(jstr))
}

// NewGlobalRef promotes a local reference to a durable global one.
func (e *Env) NewGlobalRef(ref Object) Object {
	return Object(envCalls.NewGlobalRef(e.raw, uintptr(ref)))
}

// DeleteGlobalRef releases a global reference.
func (e *Env) DeleteGlobalRef(ref Object) {
	envCalls.DeleteGlobalRef(e.raw, uintptr(ref))
}

// DeleteLocalRef releases a local reference early. JNI only guarantees
// a small number of live local references per boundary crossing, so
// loops that produce references should release them eagerly.
func (e *Env) DeleteLocalRef(ref Object) {
	envCalls.DeleteLocalRef(e.raw, uintptr(ref))
}
