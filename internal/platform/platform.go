//go:build amd64 || arm64

// Package platform provides platform detection for javabridge.
// It determines how the JVM shared library is named and where Java
// installations keep it on the current operating system.
package platform

import (
	"path/filepath"
	"runtime"
	"unsafe"
)

// Is64Bit indicates whether the platform is 64-bit.
// javabridge only supports 64-bit platforms due to purego limitations.
const Is64Bit = unsafe.Sizeof(uintptr(0)) == 8

// LibraryExtension is the file extension for shared libraries on this platform.
var LibraryExtension string

// LibraryPrefix is the prefix for shared library names on this platform.
var LibraryPrefix string

func init() {
	switch runtime.GOOS {
	case "darwin":
		LibraryExtension = ".dylib"
		LibraryPrefix = "lib"
	case "windows":
		LibraryExtension = ".dll"
		LibraryPrefix = ""
	default: // linux, freebsd, etc.
		LibraryExtension = ".so"
		LibraryPrefix = "lib"
	}
}

// JVMLibraryName returns the platform-specific filename of the JVM
// shared library.
//
// Examples:
//   - Linux:   "libjvm.so"
//   - macOS:   "libjvm.dylib"
//   - Windows: "jvm.dll"
func JVMLibraryName() string {
	return LibraryPrefix + "jvm" + LibraryExtension
}

// JVMLibrarySubdirs returns the subdirectories of a Java home that may
// contain the JVM library, most specific first. Layouts changed across
// JDK generations: modern JDKs use lib/server, JDK 8 kept the library
// under jre/lib/<arch>/server on Linux.
func JVMLibrarySubdirs() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{
			filepath.Join("bin", "server"),
			filepath.Join("jre", "bin", "server"),
			"bin",
		}
	case "darwin":
		return []string{
			filepath.Join("lib", "server"),
			filepath.Join("jre", "lib", "server"),
		}
	default: // linux, freebsd
		return []string{
			filepath.Join("lib", "server"),
			filepath.Join("jre", "lib", "amd64", "server"),
			filepath.Join("jre", "lib", "aarch64", "server"),
			filepath.Join("jre", "lib", "server"),
			"lib",
		}
	}
}

// GOOS returns the current operating system.
func GOOS() string {
	return runtime.GOOS
}

// GOARCH returns the current architecture.
func GOARCH() string {
	return runtime.GOARCH
}
