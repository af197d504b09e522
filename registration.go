//go:build amd64 || arm64

package javabridge

import (
	"fmt"

	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/obinnaokechukwu/javabridge/internal/jnienv"
)

// RegistrationType is the level of native-method registration performed
// when the library loads.
type RegistrationType int32

const (
	// RegisterAll registers every native method.
	RegisterAll RegistrationType = iota
	// RegisterSelective registers the subset chosen by the stub
	// generator; each registration function consults its own flag.
	RegisterSelective
	// RegisterNone skips registration entirely.
	RegisterNone
)

func (t RegistrationType) String() string {
	switch t {
	case RegisterAll:
		return "all"
	case RegisterSelective:
		return "selective"
	case RegisterNone:
		return "none"
	default:
		return "unknown"
	}
}

var (
	registrationType    atomic.Int32 // holds a RegistrationType; default RegisterAll
	registrationTypeSet atomic.Bool
)

// SetRegistrationType selects the registration level for this process.
// It may be called at most once, before InitVM; the value is immutable
// configuration thereafter, not a runtime switch.
func SetRegistrationType(t RegistrationType) {
	if IsVMInitialized() {
		Logger().Fatal("SetRegistrationType must be called before InitVM")
	}
	if !registrationTypeSet.CAS(false, true) {
		Logger().Fatal("SetRegistrationType called twice")
	}
	registrationType.Store(int32(t))
}

// GetRegistrationType returns the registration level for this process.
// Defaults to RegisterAll when never set.
func GetRegistrationType() RegistrationType {
	return RegistrationType(registrationType.Load())
}

// RegistrationMethod pairs a class name with the function that
// registers its native methods. The stub generator emits one entry per
// class; the aggregated table is consumed once at library load.
type RegistrationMethod struct {
	Name     string
	Register func(*Env) error
}

// RegisterNatives runs the registration table, honoring the process
// registration type. All entries are attempted even when some fail;
// the failures are returned combined.
func RegisterNatives(env *Env, methods []RegistrationMethod) error {
	if GetRegistrationType() == RegisterNone {
		return nil
	}
	var err error
	for _, m := range methods {
		if e := m.Register(env); e != nil {
			err = multierr.Append(err, fmt.Errorf("registering %s natives: %w", m.Name, e))
		}
	}
	return err
}

// NativeMethod describes one native method implementation to bind to a
// Java declaration. Fn is a raw function pointer with the JNI calling
// convention, typically from purego.NewCallback.
type NativeMethod struct {
	Name      string
	Signature string
	Fn        uintptr
}

// RegisterNativeMethods binds the given native method implementations
// on class. Registration functions in a RegistrationMethod table are
// usually thin wrappers around this.
func RegisterNativeMethods(env *Env, class Class, methods []NativeMethod) error {
	raw := make([]jnienv.NativeMethod, len(methods))
	for i, m := range methods {
		raw[i] = jnienv.NativeMethod{Name: m.Name, Signature: m.Signature, Fn: m.Fn}
	}
	if status := envCalls.RegisterNatives(env.raw, uintptr(class), raw); status != jnienv.OK {
		ClearException(env)
		return fmt.Errorf("javabridge: RegisterNatives failed: %d", status)
	}
	return nil
}
