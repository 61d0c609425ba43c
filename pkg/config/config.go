// Package config manages application-wide directories.
// It follows XDG specifications for storing configuration.
package config

import (
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

const (
	// AppName names the XDG subdirectories and the binary.
	AppName = "progdemo"
	// StorageEnv overrides the storage base directory.
	StorageEnv = "PROGDEMO_STORAGE"
	// DefaultStorageDir is used when nothing else names a base directory.
	DefaultStorageDir = "storage"
)

// ReadOnly defines the read-only interface for Config.
// Immutable
type ReadOnly interface {
	GetConfigDir() string
	GetSettingsFile() string
	GetStorageDir() string
	Freeze()
	Checkout() Writable
}

// Writable defines the writable interface for Config.
// Mutable
type Writable interface {
	ReadOnly
	SetConfigDir(string)
	SetStorageDir(string)
}

// Config holds the base directories for progdemo.
// Mutable
type Config struct {
	configDir    string
	settingsFile string
	storageDir   string

	frozen bool
	edited bool
}

var _ ReadOnly = (*Config)(nil)
var _ Writable = (*Config)(nil)

func (c *Config) GetConfigDir() string    { return c.configDir }
func (c *Config) GetSettingsFile() string { return c.settingsFile }
func (c *Config) GetStorageDir() string   { return c.storageDir }

func (c *Config) SetConfigDir(s string) {
	if c.frozen {
		panic("cannot modify frozen config")
	}
	c.configDir = s
	c.updateDerived()
}

func (c *Config) SetStorageDir(s string) {
	if c.frozen {
		panic("cannot modify frozen config")
	}
	c.storageDir = s
}

func (c *Config) Freeze() {
	c.frozen = true
}

func (c *Config) Checkout() Writable {
	if c.frozen {
		panic("cannot checkout from frozen config")
	}
	if c.edited {
		panic("config already checked out")
	}
	c.edited = true
	return c
}

func (c *Config) updateDerived() {
	c.settingsFile = filepath.Join(c.configDir, "settings.json")
}

// Init initializes the configuration using XDG base directories.
func Init() ReadOnly {
	c := &Config{
		configDir:  filepath.Join(xdg.ConfigHome, AppName),
		storageDir: DefaultStorageDir,
	}

	c.updateDerived()

	return c
}

// ResolveStorageDir picks the storage base directory: the command-line
// flag wins over the environment, which wins over the saved setting.
func ResolveStorageDir(flag string, getenv func(string) string, setting string) string {
	for _, s := range []string{flag, getenv(StorageEnv), setting} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return DefaultStorageDir
}
