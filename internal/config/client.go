// Package config loads the terminal client's TOML configuration file and
// validates the room server's environment variables.
//
// ClientConfig is ported from original_source/src/config.rs's shape
// almost unchanged (`data_dir`, `ephemeral`, `euph.rooms[name]`); Load
// follows the original's Config::load exactly: a missing or malformed
// file falls back to the zero-value default rather than aborting the
// client (spec.md §6).
package config

import (
	"context"
	"os"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/emberhall/ember/internal/logging"
)

// RoomConfig holds the autojoin credentials for one named room.
type RoomConfig struct {
	Username      string `toml:"username"`
	ForceUsername bool   `toml:"force_username"`
	Password      string `toml:"password"`
}

// EuphConfig groups every room the client knows autojoin settings for,
// keyed by room name.
type EuphConfig struct {
	Rooms map[string]RoomConfig `toml:"rooms"`
}

// ClientConfig is the terminal client's full configuration.
type ClientConfig struct {
	DataDir   string     `toml:"data_dir"`
	Ephemeral bool       `toml:"ephemeral"`
	Euph      EuphConfig `toml:"euph"`
}

// LoadClient reads and parses the TOML file at path. On any read or
// parse error it returns a zero-value ClientConfig, logging a warning
// for every error except a missing file,
// instead of failing the client's startup, mirroring original_source's
// Config::load swallowing both kinds of error into Self::default().
func LoadClient(path string) ClientConfig {
	content, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn(context.Background(), "error loading config file", zap.String("path", path), zap.Error(err))
		}
		return ClientConfig{}
	}

	var cfg ClientConfig
	if err := toml.Unmarshal(content, &cfg); err != nil {
		logging.Warn(context.Background(), "error parsing config file", zap.String("path", path), zap.Error(err))
		return ClientConfig{}
	}
	return cfg
}

// RoomConfig returns the autojoin settings configured for name, or the
// zero value if the room has no entry.
func (c ClientConfig) RoomConfig(name string) RoomConfig {
	return c.Euph.Rooms[name]
}

// VaultPath returns the path the client should open its history database
// at: empty (meaning in-memory) when Ephemeral is set or DataDir is empty, otherwise
// "<data_dir>/vault.db".
func (c ClientConfig) VaultPath() string {
	if c.Ephemeral || c.DataDir == "" {
		return ""
	}
	return c.DataDir + "/vault.db"
}
