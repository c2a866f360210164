package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, info, err := LoadConfigWithInfo(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Empty(t, info.Path)
	assert.False(t, info.PortSpecified)
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 9000

[data]
backend = "file"

[auth]
admin_username = "boss"
session_ttl_minutes = 30
restrict_status_edit = true
`)
	cfg, info, err := LoadConfigWithInfo(path)
	require.NoError(t, err)
	assert.Equal(t, path, info.Path)
	assert.True(t, info.PortSpecified)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "file", cfg.Data.Backend)
	assert.Equal(t, "data", cfg.Data.DataDir)
	assert.Equal(t, "boss", cfg.Auth.AdminUsername)
	assert.Equal(t, 30, cfg.Auth.SessionTTLMinutes)
	assert.Equal(t, "30m0s", cfg.Auth.SessionTTL().String())
	assert.True(t, cfg.Auth.RestrictStatusEdit)
	assert.Equal(t, "Training Report", cfg.Report.SheetName)
}

func TestLoadConfig_PortNotSpecified(t *testing.T) {
	_, info, err := LoadConfigWithInfo(writeConfig(t, "[data]\ndata_dir = \"x\"\n"))
	require.NoError(t, err)
	assert.False(t, info.PortSpecified)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv(EnvPort, "7070")
	t.Setenv(EnvDataDir, "/srv/sales")
	t.Setenv(EnvBackend, "memory")
	t.Setenv(EnvAdminPassword, "pw")

	path := writeConfig(t, "[auth]\nadmin_password_hash = \"$2a$10$abc\"\n")
	cfg, info, err := LoadConfigWithInfo(path)
	require.NoError(t, err)
	assert.True(t, info.PortSpecified)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "/srv/sales", cfg.Data.DataDir)
	assert.Equal(t, "memory", cfg.Data.Backend)
	assert.Equal(t, "pw", cfg.Auth.AdminPassword)
	assert.Empty(t, cfg.Auth.AdminPasswordHash)
}

func TestLoadConfig_InvalidEnvPort(t *testing.T) {
	t.Setenv(EnvPort, "eighty")
	_, _, err := LoadConfigWithInfo(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestLoadConfig_Malformed(t *testing.T) {
	_, _, err := LoadConfigWithInfo(writeConfig(t, "[server\nport ="))
	require.Error(t, err)
}

func TestSaveAdminPasswordHash_KeepsOtherKeys(t *testing.T) {
	path := writeConfig(t, "[data]\nbackend = \"file\"\n\n[auth]\nadmin_username = \"boss\"\nadmin_password = \"plain\"\n")
	require.NoError(t, SaveAdminPasswordHash(path, "$2a$04$hash"))

	cfg, info, err := LoadConfigWithInfo(path)
	require.NoError(t, err)
	assert.False(t, info.PortSpecified, "defaults are not written back")
	assert.Equal(t, "file", cfg.Data.Backend)
	assert.Equal(t, "boss", cfg.Auth.AdminUsername)
	assert.Empty(t, cfg.Auth.AdminPassword)
	assert.Equal(t, "$2a$04$hash", cfg.Auth.AdminPasswordHash)
}

func TestSaveAdminPasswordHash_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveAdminPasswordHash(path, "h"))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "h", cfg.Auth.AdminPasswordHash)
	assert.Equal(t, DefaultConfig().Server.Port, cfg.Server.Port)
}

func TestEnsureDataDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Data.DataDir = filepath.Join(t.TempDir(), "data")

	dir, err := EnsureDataDir(cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.Data.DataDir, dir)
	assert.DirExists(t, UploadDir(dir))
}
