// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Session  SessionConfig  `toml:"session"`
	Identity IdentityConfig `toml:"identity"`
}

// SessionConfig maps typing test settings.
type SessionConfig struct {
	Lang         *string `toml:"lang"`
	Duration     *int    `toml:"duration"`
	Exam         *string `toml:"exam"`
	Passages     *string `toml:"passages"`
	Wordlist     *string `toml:"wordlist"`
	PassageWords *int    `toml:"passage-words"`
}

// IdentityConfig maps the signed-in profile.
type IdentityConfig struct {
	Email *string `toml:"email"`
	Name  *string `toml:"name"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
