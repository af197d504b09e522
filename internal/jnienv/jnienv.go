//go:build amd64 || arm64

// Package jnienv dispatches raw calls against JNI function tables using
// purego.
//
// A JNIEnv* is a pointer to a pointer to a table of function pointers
// (the JNINativeInterface); a JavaVM* points at the smaller invocation
// interface. purego has no notion of C++-style vtables, so each call
// reads the function pointer out of the table by index and invokes it
// with purego.SyscallN. The index constants below follow the JNI 1.6
// specification layout (the first four JNIEnv slots and first three
// JavaVM slots are reserved).
package jnienv

import (
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
)

// JNI status codes.
const (
	OK        = 0
	Err       = -1
	EDetached = -2
	EVersion  = -3
)

// JNI versions.
const (
	Version1_6 = 0x00010006
	Version1_8 = 0x00010008
)

// JNIEnv function table indices.
const (
	envGetVersion              = 4
	envFindClass               = 6
	envThrow                   = 13
	envThrowNew                = 14
	envExceptionOccurred       = 15
	envExceptionDescribe       = 16
	envExceptionClear          = 17
	envFatalError              = 18
	envPushLocalFrame          = 19
	envPopLocalFrame           = 20
	envNewGlobalRef            = 21
	envDeleteGlobalRef         = 22
	envDeleteLocalRef          = 23
	envNewObjectA              = 30
	envGetObjectClass          = 31
	envGetMethodID             = 33
	envCallObjectMethodA       = 36
	envCallVoidMethodA         = 63
	envGetStaticMethodID       = 113
	envCallStaticObjectMethodA = 116
	envNewStringUTF            = 167
	envGetStringUTFChars       = 169
	envReleaseStringUTFChars   = 170
	envRegisterNatives         = 215
	envUnregisterNatives       = 216
	envGetJavaVM               = 219
	envExceptionCheck          = 228
)

// JavaVM invocation interface indices.
const (
	vmDestroyJavaVM               = 3
	vmAttachCurrentThread         = 4
	vmDetachCurrentThread         = 5
	vmGetEnv                      = 6
	vmAttachCurrentThreadAsDaemon = 7
)

const ptrSize = unsafe.Sizeof(uintptr(0))

// call invokes table[index] of the object's function table. Both JNIEnv
// and JavaVM lead with a pointer to their table, so the same dispatch
// works for either; the object itself is always the first argument.
func call(obj uintptr, index int, args ...uintptr) uintptr {
	table := *(*uintptr)(unsafe.Pointer(obj))
	fn := *(*uintptr)(unsafe.Pointer(table + uintptr(index)*ptrSize))
	all := make([]uintptr, 0, len(args)+1)
	all = append(all, obj)
	all = append(all, args...)
	r1, _, _ := purego.SyscallN(fn, all...)
	return r1
}

// cstr returns s as a NUL-terminated byte slice. The caller must keep
// the slice alive across the boundary call.
func cstr(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}

func cptr(b []byte) uintptr {
	return uintptr(unsafe.Pointer(&b[0]))
}

// gostr copies a NUL-terminated C string into a Go string.
func gostr(p unsafe.Pointer) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(p), n))
}

// NativeMethod describes one entry for RegisterNatives. Fn is the raw
// function pointer, typically obtained from purego.NewCallback.
type NativeMethod struct {
	Name      string
	Signature string
	Fn        uintptr
}

// jniNativeMethod mirrors the C JNINativeMethod layout.
type jniNativeMethod struct {
	name      *byte
	signature *byte
	fnPtr     uintptr
}

// EnvTable dispatches against a real JNIEnv. It is stateless; every
// method takes the raw env as its first argument.
type EnvTable struct{}

func (EnvTable) FindClass(env uintptr, name string) uintptr {
	cn := cstr(name)
	r := call(env, envFindClass, cptr(cn))
	runtime.KeepAlive(cn)
	return r
}

func (EnvTable) NewGlobalRef(env, ref uintptr) uintptr {
	return call(env, envNewGlobalRef, ref)
}

func (EnvTable) DeleteGlobalRef(env, ref uintptr) {
	call(env, envDeleteGlobalRef, ref)
}

func (EnvTable) DeleteLocalRef(env, ref uintptr) {
	call(env, envDeleteLocalRef, ref)
}

func (EnvTable) GetObjectClass(env, obj uintptr) uintptr {
	return call(env, envGetObjectClass, obj)
}

func (EnvTable) GetMethodID(env, class uintptr, name, sig string) uintptr {
	cn, cs := cstr(name), cstr(sig)
	r := call(env, envGetMethodID, class, cptr(cn), cptr(cs))
	runtime.KeepAlive(cn)
	runtime.KeepAlive(cs)
	return r
}

func (EnvTable) GetStaticMethodID(env, class uintptr, name, sig string) uintptr {
	cn, cs := cstr(name), cstr(sig)
	r := call(env, envGetStaticMethodID, class, cptr(cn), cptr(cs))
	runtime.KeepAlive(cn)
	runtime.KeepAlive(cs)
	return r
}

// NewObjectA constructs an object through the given constructor method.
// Arguments are packed as 8-byte jvalues.
func (EnvTable) NewObjectA(env, class, ctor uintptr, args []uint64) uintptr {
	r := call(env, envNewObjectA, class, ctor, jvalues(args))
	runtime.KeepAlive(args)
	return r
}

func (EnvTable) CallObjectMethodA(env, obj, method uintptr, args []uint64) uintptr {
	r := call(env, envCallObjectMethodA, obj, method, jvalues(args))
	runtime.KeepAlive(args)
	return r
}

func (EnvTable) CallVoidMethodA(env, obj, method uintptr, args []uint64) {
	call(env, envCallVoidMethodA, obj, method, jvalues(args))
	runtime.KeepAlive(args)
}

func (EnvTable) CallStaticObjectMethodA(env, class, method uintptr, args []uint64) uintptr {
	r := call(env, envCallStaticObjectMethodA, class, method, jvalues(args))
	runtime.KeepAlive(args)
	return r
}

func (EnvTable) NewStringUTF(env uintptr, s string) uintptr {
	cs := cstr(s)
	r := call(env, envNewStringUTF, cptr(cs))
	runtime.KeepAlive(cs)
	return r
}

// GoStringUTF copies the contents of a java.lang.String into a Go
// string, releasing the UTF chars before returning.
func (EnvTable) GoStringUTF(env, jstr uintptr) string {
	if jstr == 0 {
		return ""
	}
	chars := call(env, envGetStringUTFChars, jstr, 0)
	if chars == 0 {
		return ""
	}
	// chars points into VM-owned memory, never the Go heap.
	s := gostr(*(*unsafe.Pointer)(unsafe.Pointer(&chars)))
	call(env, envReleaseStringUTFChars, jstr, chars)
	return s
}

func (EnvTable) ExceptionCheck(env uintptr) bool {
	return call(env, envExceptionCheck)&0xff != 0
}

func (EnvTable) ExceptionOccurred(env uintptr) uintptr {
	return call(env, envExceptionOccurred)
}

func (EnvTable) ExceptionClear(env uintptr) {
	call(env, envExceptionClear)
}

func (EnvTable) ExceptionDescribe(env uintptr) {
	call(env, envExceptionDescribe)
}

// RegisterNatives registers the given native method table on class.
// Returns the JNI status code.
func (EnvTable) RegisterNatives(env, class uintptr, methods []NativeMethod) int32 {
	if len(methods) == 0 {
		return OK
	}
	names := make([][]byte, len(methods))
	table := make([]jniNativeMethod, len(methods))
	sigs := make([][]byte, len(methods))
	for i, m := range methods {
		names[i] = cstr(m.Name)
		sigs[i] = cstr(m.Signature)
		table[i] = jniNativeMethod{
			name:      &names[i][0],
			signature: &sigs[i][0],
			fnPtr:     m.Fn,
		}
	}
	r := call(env, envRegisterNatives, class,
		uintptr(unsafe.Pointer(&table[0])), uintptr(len(methods)))
	runtime.KeepAlive(names)
	runtime.KeepAlive(sigs)
	runtime.KeepAlive(table)
	return int32(r)
}

func jvalues(args []uint64) uintptr {
	if len(args) == 0 {
		// RegisterNatives-era VMs tolerate a non-nil pointer for an
		// empty jvalue array, but passing 0 is the documented form.
		return 0
	}
	return uintptr(unsafe.Pointer(&args[0]))
}

// attachArgs mirrors the C JavaVMAttachArgs layout.
type attachArgs struct {
	version int32
	_       int32
	name    *byte
	group   uintptr
}

// VMTable dispatches against a real JavaVM invocation interface.
type VMTable struct{}

// GetEnv returns the JNIEnv for the current thread, with the JNI status
// code: OK when attached, EDetached when not.
func (VMTable) GetEnv(vm uintptr, version int32) (uintptr, int32) {
	var env uintptr
	r := call(vm, vmGetEnv, uintptr(unsafe.Pointer(&env)), uintptr(version))
	return env, int32(r)
}

// AttachCurrentThread attaches the calling OS thread, setting its
// runtime-visible name if this is the first attachment. An empty name
// lets the VM pick its default.
func (VMTable) AttachCurrentThread(vm uintptr, name string) (uintptr, int32) {
	var env uintptr
	args := attachArgs{version: Version1_6}
	var cn []byte
	if name != "" {
		cn = cstr(name)
		args.name = &cn[0]
	}
	r := call(vm, vmAttachCurrentThread,
		uintptr(unsafe.Pointer(&env)), uintptr(unsafe.Pointer(&args)))
	runtime.KeepAlive(cn)
	runtime.KeepAlive(&args)
	return env, int32(r)
}

// AttachCurrentThreadAsDaemon is the daemon variant; the VM will not
// wait for daemon threads on shutdown.
func (VMTable) AttachCurrentThreadAsDaemon(vm uintptr, name string) (uintptr, int32) {
	var env uintptr
	args := attachArgs{version: Version1_6}
	var cn []byte
	if name != "" {
		cn = cstr(name)
		args.name = &cn[0]
	}
	r := call(vm, vmAttachCurrentThreadAsDaemon,
		uintptr(unsafe.Pointer(&env)), uintptr(unsafe.Pointer(&args)))
	runtime.KeepAlive(cn)
	runtime.KeepAlive(&args)
	return env, int32(r)
}

func (VMTable) DetachCurrentThread(vm uintptr) int32 {
	return int32(call(vm, vmDetachCurrentThread))
}
