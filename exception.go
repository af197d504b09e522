//go:build amd64 || arm64

package javabridge

import (
	"go.uber.org/zap"
)

// HasException reports whether a Java exception is pending on env.
// Non-destructive: the pending state is left untouched.
func HasException(env *Env) bool {
	return envCalls.ExceptionCheck(env.raw)
}

// ClearException clears the pending Java exception, if any, and
// reports whether one was cleared.
func ClearException(env *Env) bool {
	if !HasException(env) {
		return false
	}
	envCalls.ExceptionClear(env.raw)
	return true
}

// CheckException aborts the process if a Java exception is pending,
// after surfacing its stack trace. A pending exception reaching this
// call is a programming error: call sites that expect exceptions must
// check and clear them explicitly instead.
func CheckException(env *Env) {
	if !HasException(env) {
		return
	}
	throwable := Throwable(envCalls.ExceptionOccurred(env.raw))
	envCalls.ExceptionDescribe(env.raw)
	envCalls.ExceptionClear(env.raw)

	info := "<no throwable>"
	if throwable != 0 {
		info = GetJavaExceptionInfo(env, throwable)
	}
	Logger().Fatal("unhandled Java exception", zap.String("throwable", info))
}

// GetJavaExceptionInfo renders a human-readable description of
// throwable, including its Java-side stack trace, for diagnostics.
// It neither clears nor consumes pending exception state, but the env
// must not have an exception pending when it is called: clear first,
// keeping a reference to the throwable, as CheckException does.
//
// The rendering mirrors what Throwable.printStackTrace produces:
// the throwable is printed into a PrintStream over an in-memory
// ByteArrayOutputStream, which is then converted to a string.
func GetJavaExceptionInfo(env *Env, throwable Throwable) string {
	baosClass := GetClass(env, "java/io/ByteArrayOutputStream")
	baosCtor := GetMethodID(env, baosClass, MethodInstance, "<init>", "()V")
	baos := env.NewObject(baosClass, baosCtor)
	if baos == 0 {
		env.DeleteLocalRef(Object(baosClass))
		return "<failed to allocate output stream>"
	}

	psClass := GetClass(env, "java/io/PrintStream")
	psCtor := GetMethodID(env, psClass, MethodInstance, "<init>", "(Ljava/io/OutputStream;)V")
	ps := env.NewObject(psClass, psCtor, uint64(baos))

	throwableClass := GetClass(env, "java/lang/Throwable")
	printStackTrace := GetMethodID(env, throwableClass, MethodInstance,
		"printStackTrace", "(Ljava/io/PrintStream;)V")
	env.CallVoidMethod(Object(throwable), printStackTrace, uint64(ps))

	toString := GetMethodID(env, baosClass, MethodInstance, "toString", "()Ljava/lang/String;")
	jstr := env.CallObjectMethod(baos, toString)
	info := env.GoString(jstr)

	for _, ref := range []Object{jstr, Object(throwableClass), ps, Object(psClass), baos, Object(baosClass)} {
		if ref != 0 {
			env.DeleteLocalRef(ref)
		}
	}
	return info
}
