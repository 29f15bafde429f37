// Package config loads the optional crcsum configuration file.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config represents the optional crcsum configuration file. Pointer fields
// are nil when unset so callers can tell "absent" from a zero value.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
	SSH      SSHConfig      `toml:"ssh"`
	S3       S3Config       `toml:"s3"`
	Theme    ThemeConfig    `toml:"theme"`
}

// DefaultsConfig holds persistent flag defaults.
type DefaultsConfig struct {
	Workers    *int     `toml:"workers"`
	Timeout    *int64   `toml:"timeout"` // milliseconds
	NoProgress *bool    `toml:"no_progress"`
	Verbose    *bool    `toml:"verbose"`
	BWLimit    *string  `toml:"bwlimit"`
	Metrics    *string  `toml:"metrics"` // textfile collector path
	Exclude    []string `toml:"exclude"`
}

// SSHConfig holds defaults for fetching manifests over SFTP.
type SSHConfig struct {
	Port    *int    `toml:"port"`
	KeyFile *string `toml:"key_file"`
}

// S3Config holds defaults for fetching manifests from S3. Credentials come
// from the standard AWS environment.
type S3Config struct {
	Region   *string `toml:"region"`
	Endpoint *string `toml:"endpoint"`
}

// ThemeConfig holds optional color overrides for the check report.
type ThemeConfig struct {
	Changed   *string `toml:"changed"`
	Unchanged *string `toml:"unchanged"`
	Warning   *string `toml:"warning"`
	Muted     *string `toml:"muted"`
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "crcsum", "config.toml")
}

// Load reads the config file from the XDG path. A missing file yields a
// zero Config and no error.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Config{}, nil
	}
	return LoadFile(path)
}

// LoadFile reads the config file at path. A missing file yields a zero
// Config and no error.
func LoadFile(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, &UnknownKeysError{Path: path, Keys: keys}
	}
	return cfg, nil
}

// UnknownKeysError reports keys in the config file that crcsum does not use.
type UnknownKeysError struct {
	Path string
	Keys []string
}

func (e *UnknownKeysError) Error() string {
	return e.Path + ": unknown keys: " + strings.Join(e.Keys, ", ")
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
