//go:build amd64 || arm64

package javabridge

import (
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/obinnaokechukwu/javabridge/internal/jnienv"
)

// fakeVM is an in-memory JavaVM invocation interface. It models a
// single attachable thread, which is all the sequential lifecycle
// tests need.
type fakeVM struct {
	mu sync.Mutex

	attached    bool
	env         uintptr
	threadName  string
	daemon      bool
	attachCalls int
	detachCalls int
}

func newFakeVM() *fakeVM {
	return &fakeVM{env: 0xE0}
}

func (v *fakeVM) GetEnv(vm uintptr, version int32) (uintptr, int32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.attached {
		return v.env, jnienv.OK
	}
	return 0, jnienv.EDetached
}

func (v *fakeVM) AttachCurrentThread(vm uintptr, name string) (uintptr, int32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.attachCalls++
	if !v.attached {
		v.attached = true
		v.threadName = name
	}
	return v.env, jnienv.OK
}

func (v *fakeVM) AttachCurrentThreadAsDaemon(vm uintptr, name string) (uintptr, int32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.attachCalls++
	if !v.attached {
		v.attached = true
		v.threadName = name
		v.daemon = true
	}
	return v.env, jnienv.OK
}

func (v *fakeVM) DetachCurrentThread(vm uintptr) int32 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.detachCalls++
	v.attached = false
	return jnienv.OK
}

// fakeRef is one live reference in the fake env, modeled on the
// reference maps a mock JNIEnv keeps.
type fakeRef struct {
	class  string  // class name for class refs, or the object's class
	str    string  // payload for strings and in-memory output streams
	trace  string  // stack trace for throwables
	target uintptr // PrintStream -> underlying stream link
	global bool
}

// fakeEnv is an in-memory JNIEnv dispatch surface.
type fakeEnv struct {
	mu sync.Mutex

	classes map[string]bool
	methods map[string]uintptr

	refs    map[uintptr]*fakeRef
	nextRef uintptr

	globals        int
	deletedGlobals int

	pending uintptr

	findCalls          map[string]int
	methodCalls        map[string]int
	loadClassViaLoader int

	failRegister bool
	registered   map[string][]jnienv.NativeMethod
	nextMethodID uintptr
}

func newFakeEnv() *fakeEnv {
	return &fakeEnv{
		classes:      make(map[string]bool),
		methods:      make(map[string]uintptr),
		refs:         make(map[uintptr]*fakeRef),
		nextRef:      0x1000,
		findCalls:    make(map[string]int),
		methodCalls:  make(map[string]int),
		registered:   make(map[string][]jnienv.NativeMethod),
		nextMethodID: 0x9000,
	}
}

func (f *fakeEnv) addClass(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.classes[name] = true
}

func (f *fakeEnv) addMethod(class, name, sig string, static bool) uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextMethodID
	f.nextMethodID++
	f.methods[methodKey(class, name, sig, static)] = id
	return id
}

func methodKey(class, name, sig string, static bool) string {
	k := class + "#" + name + sig
	if static {
		k = "static:" + k
	}
	return k
}

// throwException makes an exception pending, as a boundary call that
// raised would.
func (f *fakeEnv) throwException(trace string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = f.newRefLocked(&fakeRef{class: "java/lang/RuntimeException", trace: trace})
}

func (f *fakeEnv) newRefLocked(r *fakeRef) uintptr {
	id := f.nextRef
	f.nextRef++
	f.refs[id] = r
	return id
}

func (f *fakeEnv) liveGlobals() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.globals - f.deletedGlobals
}

func (f *fakeEnv) FindClass(env uintptr, name string) uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findCalls[name]++
	if !f.classes[name] {
		f.pending = f.newRefLocked(&fakeRef{
			class: "java/lang/NoClassDefFoundError",
			trace: "java.lang.NoClassDefFoundError: " + name,
		})
		return 0
	}
	return f.newRefLocked(&fakeRef{class: name})
}

func (f *fakeEnv) NewGlobalRef(env, ref uintptr) uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()
	src, ok := f.refs[ref]
	if !ok {
		return 0
	}
	f.globals++
	cp := *src
	cp.global = true
	return f.newRefLocked(&cp)
}

func (f *fakeEnv) DeleteGlobalRef(env, ref uintptr) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.refs[ref]; ok && r.global {
		f.deletedGlobals++
		delete(f.refs, ref)
	}
}

func (f *fakeEnv) DeleteLocalRef(env, ref uintptr) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.refs, ref)
}

func (f *fakeEnv) GetObjectClass(env, obj uintptr) uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.refs[obj]; ok {
		return f.newRefLocked(&fakeRef{class: r.class})
	}
	return 0
}

func (f *fakeEnv) getMethodID(class uintptr, name, sig string, static bool) uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()
	cr, ok := f.refs[class]
	if !ok {
		return 0
	}
	key := methodKey(cr.class, name, sig, static)
	f.methodCalls[key]++
	id, ok := f.methods[key]
	if !ok {
		f.pending = f.newRefLocked(&fakeRef{
			class: "java/lang/NoSuchMethodError",
			trace: "java.lang.NoSuchMethodError: " + name,
		})
		return 0
	}
	return id
}

func (f *fakeEnv) GetMethodID(env, class uintptr, name, sig string) uintptr {
	return f.getMethodID(class, name, sig, false)
}

func (f *fakeEnv) GetStaticMethodID(env, class uintptr, name, sig string) uintptr {
	return f.getMethodID(class, name, sig, true)
}

func (f *fakeEnv) NewObjectA(env, class, ctor uintptr, args []uint64) uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()
	cr, ok := f.refs[class]
	if !ok {
		return 0
	}
	r := &fakeRef{class: cr.class}
	if cr.class == "java/io/PrintStream" && len(args) > 0 {
		r.target = uintptr(args[0])
	}
	return f.newRefLocked(r)
}

func (f *fakeEnv) CallObjectMethodA(env, obj, method uintptr, args []uint64) uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()
	or, ok := f.refs[obj]
	if !ok {
		return 0
	}
	switch method {
	case f.methods[methodKey("java/lang/ClassLoader", "loadClass", "(Ljava/lang/String;)Ljava/lang/Class;", false)]:
		f.loadClassViaLoader++
		jname := f.refs[uintptr(args[0])]
		name := strings.ReplaceAll(jname.str, ".", "/")
		if !f.classes[name] {
			f.pending = f.newRefLocked(&fakeRef{
				class: "java/lang/ClassNotFoundException",
				trace: "java.lang.ClassNotFoundException: " + jname.str,
			})
			return 0
		}
		return f.newRefLocked(&fakeRef{class: name})
	case f.methods[methodKey("java/io/ByteArrayOutputStream", "toString", "()Ljava/lang/String;", false)]:
		return f.newRefLocked(&fakeRef{class: "java/lang/String", str: or.str})
	}
	return f.newRefLocked(&fakeRef{class: "java/lang/Object"})
}

func (f *fakeEnv) CallVoidMethodA(env, obj, method uintptr, args []uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if method == f.methods[methodKey("java/lang/Throwable", "printStackTrace", "(Ljava/io/PrintStream;)V", false)] {
		throwable := f.refs[obj]
		ps := f.refs[uintptr(args[0])]
		if throwable == nil || ps == nil {
			return
		}
		if stream := f.refs[ps.target]; stream != nil {
			stream.str = throwable.trace
		}
	}
}

func (f *fakeEnv) CallStaticObjectMethodA(env, class, method uintptr, args []uint64) uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.newRefLocked(&fakeRef{class: "java/lang/Object"})
}

func (f *fakeEnv) NewStringUTF(env uintptr, s string) uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.newRefLocked(&fakeRef{class: "java/lang/String", str: s})
}

func (f *fakeEnv) GoStringUTF(env, jstr uintptr) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.refs[jstr]; ok {
		return r.str
	}
	return ""
}

func (f *fakeEnv) ExceptionCheck(env uintptr) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending != 0
}

func (f *fakeEnv) ExceptionOccurred(env uintptr) uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

func (f *fakeEnv) ExceptionClear(env uintptr) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = 0
}

func (f *fakeEnv) ExceptionDescribe(env uintptr) {}

func (f *fakeEnv) RegisterNatives(env, class uintptr, methods []jnienv.NativeMethod) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRegister {
		return jnienv.Err
	}
	if cr, ok := f.refs[class]; ok {
		f.registered[cr.class] = append(f.registered[cr.class], methods...)
	}
	return jnienv.OK
}

// installExceptionInfoClasses registers the java.io classes the
// exception renderer walks through.
func installExceptionInfoClasses(f *fakeEnv) {
	f.addClass("java/io/ByteArrayOutputStream")
	f.addClass("java/io/PrintStream")
	f.addClass("java/lang/Throwable")
	f.addMethod("java/io/ByteArrayOutputStream", "<init>", "()V", false)
	f.addMethod("java/io/ByteArrayOutputStream", "toString", "()Ljava/lang/String;", false)
	f.addMethod("java/io/PrintStream", "<init>", "(Ljava/io/OutputStream;)V", false)
	f.addMethod("java/lang/Throwable", "printStackTrace", "(Ljava/io/PrintStream;)V", false)
}

// setupBridge resets all process-wide bridge state and installs fresh
// fakes. Returns the fake VM and env dispatch surfaces.
func setupBridge(t *testing.T) (*fakeVM, *fakeEnv) {
	t.Helper()
	resetBridgeState()
	vm := newFakeVM()
	env := newFakeEnv()
	vmCalls = vm
	envCalls = env
	t.Cleanup(resetBridgeState)
	return vm, env
}

func resetBridgeState() {
	jvm.Store(0)
	envs.Range(func(k, _ any) bool {
		envs.Delete(k)
		return true
	})
	attachSeq.Store(0)
	threadNamePrefix.Store("JavaBridge")
	registrationType.Store(int32(RegisterAll))
	registrationTypeSet.Store(false)
	replacementLoader.Store(0)
	replacementLoadClass.Store(0)
	vmCalls = jnienv.VMTable{}
	envCalls = jnienv.EnvTable{}
	SetLogger(nil)
}

// testEnv returns an Env wired to the fake dispatch without going
// through the attach machinery.
func testEnv() *Env {
	return &Env{raw: 0xE0}
}

// expectFatal runs fn with a logger whose Fatal panics instead of
// exiting, and fails the test if fn completes without aborting.
func expectFatal(t *testing.T, fn func()) {
	t.Helper()
	SetLogger(zap.New(zapcore.NewNopCore(), zap.OnFatal(zapcore.WriteThenPanic)))
	defer SetLogger(nil)
	defer func() {
		if recover() == nil {
			t.Fatal("expected a fatal abort")
		}
	}()
	fn()
}
