//go:build amd64 || arm64

package javabridge

import (
	"go.uber.org/zap"
)

// MethodType selects static or instance dispatch for method-ID lookup.
type MethodType int

const (
	MethodStatic MethodType = iota
	MethodInstance
)

func (t MethodType) String() string {
	switch t {
	case MethodStatic:
		return "static"
	case MethodInstance:
		return "instance"
	default:
		return "unknown"
	}
}

// GetMethodID returns the ID of the method with the given name and JNI
// signature on class. A missing method is a mismatch between the
// native stubs and the Java API surface, so the process aborts rather
// than returning an error.
//
// Method IDs are not references: they stay valid as long as the class
// does and are never released.
func GetMethodID(env *Env, class Class, typ MethodType, name, signature string) Method {
	var id uintptr
	switch typ {
	case MethodStatic:
		id = envCalls.GetStaticMethodID(env.raw, uintptr(class), name, signature)
	default:
		id = envCalls.GetMethodID(env.raw, uintptr(class), name, signature)
	}
	if id == 0 || HasException(env) {
		envCalls.ExceptionDescribe(env.raw)
		envCalls.ExceptionClear(env.raw)
		Logger().Fatal("method not found",
			zap.String("method", name),
			zap.String("signature", signature),
			zap.Stringer("type", typ))
	}
	return Method(id)
}

// LazyGetMethodID resolves a method ID through the caller-owned slot,
// with the same publish protocol as LazyGetClass. Method IDs carry no
// reference to release, so a losing racer simply adopts the winner's
// value.
//
// The slot must be zero-initialized and used for exactly one
// class/name/signature triple.
func LazyGetMethodID(env *Env, class Class, typ MethodType, name, signature string, slot *AtomicHandleSlot) Method {
	return Method(lazyPublish(slot,
		func() uintptr {
			return uintptr(GetMethodID(env, class, typ, name, signature))
		},
		nil))
}
