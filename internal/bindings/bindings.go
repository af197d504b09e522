//go:build amd64 || arm64

// Package bindings handles loading the JVM shared library and
// registering the JNI invocation API bindings using purego.
//
// Only the three exported JNI_* entry points of libjvm are bound here;
// everything else in JNI is reached through per-object function tables,
// which internal/jnienv dispatches.
package bindings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/javabridge/internal/platform"
)

// ErrNotLoaded is returned when JVM functions are called before Load().
var ErrNotLoaded = errors.New("javabridge: JVM library not loaded; call javabridge.Init() first")

// ErrLibraryNotFound is returned when the JVM library cannot be found.
var ErrLibraryNotFound = errors.New("javabridge: JVM library not found")

var (
	libJVM uintptr

	loaded   bool
	loadOnce sync.Once
	loadErr  error

	// Explicit library path, set before Load via SetLibraryPath.
	libraryPath string
)

// Invocation API bindings
var (
	jniCreateJavaVM         func(pvm, penv, args unsafe.Pointer) int32
	jniGetCreatedJavaVMs    func(vmBuf unsafe.Pointer, bufLen int32, nVMs unsafe.Pointer) int32
	jniGetDefaultVMInitArgs func(args unsafe.Pointer) int32
)

// vmOption mirrors the C JavaVMOption layout.
type vmOption struct {
	optionString *byte
	extraInfo    uintptr
}

// vmInitArgs mirrors the C JavaVMInitArgs layout.
type vmInitArgs struct {
	version            int32
	nOptions           int32
	options            *vmOption
	ignoreUnrecognized uint8
	_                  [7]byte
}

const jniVersion16 = 0x00010006

// IsLoaded returns true if the JVM library has been successfully loaded.
func IsLoaded() bool {
	return loaded
}

// SetLibraryPath overrides the JVM library search with an explicit
// path. Must be called before the first Load; later calls have no
// effect on an already-loaded library.
func SetLibraryPath(path string) {
	libraryPath = path
}

// Load locates and loads the JVM library and registers the invocation
// API bindings. It is safe to call multiple times; subsequent calls are
// no-ops. Returns an error if the library cannot be found or loaded.
func Load() error {
	loadOnce.Do(func() {
		loadErr = doLoad()
		if loadErr == nil {
			loaded = true
		}
	})
	return loadErr
}

func doLoad() error {
	var err error
	libJVM, err = loadJVMLibrary()
	if err != nil {
		return fmt.Errorf("loading libjvm: %w", err)
	}

	purego.RegisterLibFunc(&jniCreateJavaVM, libJVM, "JNI_CreateJavaVM")
	purego.RegisterLibFunc(&jniGetCreatedJavaVMs, libJVM, "JNI_GetCreatedJavaVMs")
	purego.RegisterLibFunc(&jniGetDefaultVMInitArgs, libJVM, "JNI_GetDefaultJavaVMInitArgs")

	return nil
}

func loadJVMLibrary() (uintptr, error) {
	if libraryPath != "" {
		return tryOpen(libraryPath)
	}

	name := platform.JVMLibraryName()
	for _, dir := range LibrarySearchPaths() {
		lib, err := tryOpen(filepath.Join(dir, name))
		if err == nil {
			return lib, nil
		}
	}

	// Let the dynamic loader try on its own.
	lib, err := tryOpen(name)
	if err == nil {
		return lib, nil
	}

	return 0, fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
}

// tryOpen attempts to open a library with RTLD_NOW | RTLD_GLOBAL.
// RTLD_GLOBAL matters on Linux: HotSpot loads secondary libraries
// (libverify, libjava) that resolve symbols against libjvm.
func tryOpen(path string) (uintptr, error) {
	lib, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return 0, err
	}
	return lib, nil
}

// FindLibrary searches for the JVM library and returns its full path.
// This is useful for diagnostics.
func FindLibrary() (string, error) {
	name := platform.JVMLibraryName()
	for _, dir := range LibrarySearchPaths() {
		fullPath := filepath.Join(dir, name)
		if _, err := os.Stat(fullPath); err == nil {
			return fullPath, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
}

// LibrarySearchPaths returns candidate directories for the JVM library,
// in priority order: JAVA_HOME layouts first, then installed JDK roots.
func LibrarySearchPaths() []string {
	var paths []string

	addHome := func(home string) {
		if home == "" {
			return
		}
		for _, sub := range platform.JVMLibrarySubdirs() {
			paths = append(paths, filepath.Join(home, sub))
		}
	}

	addHome(os.Getenv("JAVA_HOME"))

	switch runtime.GOOS {
	case "linux":
		if ldPath := os.Getenv("LD_LIBRARY_PATH"); ldPath != "" {
			paths = append(paths, filepath.SplitList(ldPath)...)
		}
		// Installed JDK roots, newest layouts first
		for _, root := range []string{"/usr/lib/jvm", "/usr/java", "/opt/java"} {
			entries, err := os.ReadDir(root)
			if err != nil {
				continue
			}
			for _, e := range entries {
				if e.IsDir() {
					addHome(filepath.Join(root, e.Name()))
				}
			}
		}

	case "darwin":
		if dyldPath := os.Getenv("DYLD_LIBRARY_PATH"); dyldPath != "" {
			paths = append(paths, filepath.SplitList(dyldPath)...)
		}
		entries, err := os.ReadDir("/Library/Java/JavaVirtualMachines")
		if err == nil {
			for _, e := range entries {
				if e.IsDir() {
					addHome(filepath.Join("/Library/Java/JavaVirtualMachines",
						e.Name(), "Contents", "Home"))
				}
			}
		}
		addHome("/opt/homebrew/opt/openjdk/libexec/openjdk.jdk/Contents/Home")
		addHome("/usr/local/opt/openjdk/libexec/openjdk.jdk/Contents/Home")

	case "windows":
		if winPath := os.Getenv("PATH"); winPath != "" {
			paths = append(paths, filepath.SplitList(winPath)...)
		}
		for _, root := range []string{
			"C:\\Program Files\\Java",
			"C:\\Program Files\\Eclipse Adoptium",
		} {
			entries, err := os.ReadDir(root)
			if err != nil {
				continue
			}
			for _, e := range entries {
				if e.IsDir() {
					addHome(filepath.Join(root, e.Name()))
				}
			}
		}

	case "freebsd":
		if ldPath := os.Getenv("LD_LIBRARY_PATH"); ldPath != "" {
			paths = append(paths, filepath.SplitList(ldPath)...)
		}
		addHome("/usr/local/openjdk17")
		addHome("/usr/local/openjdk11")
	}

	return paths
}

// LibJVM returns the JVM library handle.
func LibJVM() uintptr {
	return libJVM
}

// CreatedJavaVM returns the JavaVM already created in this process, or
// 0 if none exists. HotSpot supports at most one VM per process.
func CreatedJavaVM() (uintptr, error) {
	if !loaded || jniGetCreatedJavaVMs == nil {
		return 0, ErrNotLoaded
	}
	var vm uintptr
	var n int32
	ret := jniGetCreatedJavaVMs(unsafe.Pointer(&vm), 1, unsafe.Pointer(&n))
	if ret != 0 {
		return 0, fmt.Errorf("javabridge: JNI_GetCreatedJavaVMs failed: %d", ret)
	}
	if n == 0 {
		return 0, nil
	}
	return vm, nil
}

// CreateJavaVM starts a JVM in this process with the given option
// strings (for example "-Xmx512m" or "-Djava.class.path=app.jar") and
// returns the JavaVM handle together with the creating thread's JNIEnv.
func CreateJavaVM(options []string) (vm, env uintptr, err error) {
	if err := Load(); err != nil {
		return 0, 0, err
	}
	return createJavaVM(options)
}

func createJavaVM(options []string) (vm, env uintptr, err error) {
	// JNI_GetDefaultJavaVMInitArgs doubles as the version handshake:
	// a VM that cannot satisfy the requested JNI version rejects it
	// here, before any VM state exists.
	defaults := vmInitArgs{version: jniVersion16}
	if ret := jniGetDefaultVMInitArgs(unsafe.Pointer(&defaults)); ret != 0 {
		return 0, 0, fmt.Errorf("javabridge: JNI version %#x not supported: %d", jniVersion16, ret)
	}

	opts := make([]vmOption, len(options))
	keep := make([][]byte, len(options))
	for i, o := range options {
		b := make([]byte, len(o)+1)
		copy(b, o)
		keep[i] = b
		opts[i] = vmOption{optionString: &b[0]}
	}

	args := vmInitArgs{
		version:            jniVersion16,
		nOptions:           int32(len(opts)),
		ignoreUnrecognized: 1,
	}
	if len(opts) > 0 {
		args.options = &opts[0]
	}

	ret := jniCreateJavaVM(unsafe.Pointer(&vm), unsafe.Pointer(&env), unsafe.Pointer(&args))
	runtime.KeepAlive(keep)
	runtime.KeepAlive(opts)
	if ret != 0 {
		return 0, 0, fmt.Errorf("javabridge: JNI_CreateJavaVM failed: %d", ret)
	}
	return vm, env, nil
}
