//go:build amd64 || arm64

package javabridge

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/obinnaokechukwu/javabridge/internal/bindings"
)

// ConfigFileName is the conventional name of the bridge configuration
// file.
const ConfigFileName = "javabridge.toml"

// Config is the load-time configuration of the bridge. It is consumed
// once, before the JVM library is loaded, and immutable afterwards.
//
//	[jvm]
//	library = "/usr/lib/jvm/java-17-openjdk/lib/server/libjvm.so"
//	options = ["-Xmx512m", "-Djava.class.path=app.jar"]
//
//	[threads]
//	name_prefix = "MyApp"
//
//	[registration]
//	type = "selective"
type Config struct {
	JVM struct {
		// Library overrides the JVM shared library search.
		Library string `toml:"library"`
		// Options are passed to JNI_CreateJavaVM when this process
		// launches the VM itself.
		Options []string `toml:"options"`
	} `toml:"jvm"`
	Threads struct {
		// NamePrefix replaces the default prefix of generated thread
		// names assigned on first attach.
		NamePrefix string `toml:"name_prefix"`
	} `toml:"threads"`
	Registration struct {
		// Type is one of "all", "selective", "none". Empty keeps the
		// default.
		Type string `toml:"type"`
	} `toml:"registration"`
}

// LoadConfig reads a Config from path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("javabridge: reading config: %w", err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("javabridge: parsing config: %w", err)
	}
	return &cfg, nil
}

// RegistrationType translates the config's registration string.
func (c *Config) RegistrationType() (RegistrationType, error) {
	switch c.Registration.Type {
	case "", "all":
		return RegisterAll, nil
	case "selective":
		return RegisterSelective, nil
	case "none":
		return RegisterNone, nil
	default:
		return RegisterAll, fmt.Errorf("javabridge: unknown registration type %q", c.Registration.Type)
	}
}

// Apply threads the configuration into the bridge. Must run before
// Init/CreateJVM and before InitVM; applying after the VM is
// initialized is a contract violation.
func (c *Config) Apply() error {
	if IsVMInitialized() {
		Logger().Fatal("config applied after InitVM")
	}
	// Validate before mutating: a rejected config leaves no state behind.
	t, err := c.RegistrationType()
	if err != nil {
		return err
	}
	if c.JVM.Library != "" {
		bindings.SetLibraryPath(c.JVM.Library)
	}
	if c.Threads.NamePrefix != "" {
		threadNamePrefix.Store(c.Threads.NamePrefix)
	}
	if c.Registration.Type != "" {
		SetRegistrationType(t)
	}
	return nil
}
