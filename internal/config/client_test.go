package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadClientReturnsZeroValueWhenFileMissing(t *testing.T) {
	cfg := LoadClient(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	assert.Equal(t, ClientConfig{}, cfg)
}

func TestLoadClientReturnsZeroValueOnMalformedToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("this is not valid [toml"), 0o600))

	cfg := LoadClient(path)
	assert.Equal(t, ClientConfig{}, cfg)
}

func TestLoadClientParsesRoomsTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
data_dir = "/home/user/.ember"
ephemeral = false

[euph.rooms.lobby]
username = "alice"
force_username = true
password = "hunter2"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg := LoadClient(path)
	assert.Equal(t, "/home/user/.ember", cfg.DataDir)
	assert.False(t, cfg.Ephemeral)

	room := cfg.RoomConfig("lobby")
	assert.Equal(t, "alice", room.Username)
	assert.True(t, room.ForceUsername)
	assert.Equal(t, "hunter2", room.Password)

	assert.Equal(t, RoomConfig{}, cfg.RoomConfig("unknown-room"))
}

func TestVaultPathEmptyWhenEphemeralOrNoDataDir(t *testing.T) {
	assert.Equal(t, "", ClientConfig{Ephemeral: true, DataDir: "/x"}.VaultPath())
	assert.Equal(t, "", ClientConfig{}.VaultPath())
	assert.Equal(t, "/x/vault.db", ClientConfig{DataDir: "/x"}.VaultPath())
}
