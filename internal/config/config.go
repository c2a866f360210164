package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Environment overrides
const (
	EnvPort          = "SALESDASH_PORT"
	EnvDataDir       = "SALESDASH_DATA_DIR"
	EnvBackend       = "SALESDASH_BACKEND"
	EnvAdminPassword = "SALESDASH_ADMIN_PASSWORD"
)

// AppConfig is the config.toml layout
type AppConfig struct {
	Server ServerConfig `toml:"server"`
	Data   DataConfig   `toml:"data"`
	Auth   AuthConfig   `toml:"auth"`
	Report ReportConfig `toml:"report"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Port        int  `toml:"port"`
	DevMode     bool `toml:"dev_mode"`
	OpenBrowser bool `toml:"open_browser"`
	// TrustedProxies may set X-Forwarded-For; empty means the peer address is the client
	TrustedProxies []string `toml:"trusted_proxies"`
}

// DataConfig selects the storage backend and location
type DataConfig struct {
	DataDir string `toml:"data_dir"`
	Backend string `toml:"backend"` // sqlite, file or memory
}

// AuthConfig configures the admin login
type AuthConfig struct {
	AdminUsername      string `toml:"admin_username"`
	AdminPassword      string `toml:"admin_password,omitempty"`
	AdminPasswordHash  string `toml:"admin_password_hash,omitempty"`
	SessionTTLMinutes  int    `toml:"session_ttl_minutes"`
	LoginRatePerMinute int    `toml:"login_rate_per_minute"` // negative disables limiting
	RestrictStatusEdit bool   `toml:"restrict_status_edit"`
}

// SessionTTL converts SessionTTLMinutes.
func (a AuthConfig) SessionTTL() time.Duration {
	return time.Duration(a.SessionTTLMinutes) * time.Minute
}

// ReportConfig names the exported workbook
type ReportConfig struct {
	Filename  string `toml:"filename"`
	SheetName string `toml:"sheet_name"`
}

// LoadConfigInfo describes where the config came from
type LoadConfigInfo struct {
	Path          string // empty when no file was found
	PortSpecified bool
}

// DefaultConfig returns built-in defaults
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:        8080,
			DevMode:     false,
			OpenBrowser: false,
		},
		Data: DataConfig{
			DataDir: "data",
			Backend: "sqlite",
		},
		Auth: AuthConfig{
			AdminUsername:      "Admin",
			SessionTTLMinutes:  12 * 60,
			LoginRatePerMinute: 10,
		},
		Report: ReportConfig{
			Filename:  "Sales_Training_Report.xlsx",
			SheetName: "Training Report",
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir returns the directory of the running binary
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultPath is config.toml next to the executable.
func DefaultPath() string {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, "config.toml")
}

// LoadConfigWithInfo loads path (DefaultPath when empty), then applies env overrides.
// A missing file yields the defaults.
func LoadConfigWithInfo(path string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{}
	config := DefaultConfig()

	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		info.Path = path
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, info, err
	}

	if err := applyEnv(config, &info); err != nil {
		return nil, info, err
	}
	return config, info, nil
}

// LoadConfig loads path, falling back to defaults
func LoadConfig(path string) (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo(path)
	return config, err
}

func applyEnv(config *AppConfig, info *LoadConfigInfo) error {
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("invalid %s %q", EnvPort, v)
		}
		config.Server.Port = port
		info.PortSpecified = true
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		config.Data.DataDir = v
	}
	if v := os.Getenv(EnvBackend); v != "" {
		config.Data.Backend = v
	}
	if v := os.Getenv(EnvAdminPassword); v != "" {
		config.Auth.AdminPassword = v
		config.Auth.AdminPasswordHash = ""
	}
	return nil
}

// SaveAdminPasswordHash stores hash as auth.admin_password_hash in the config file at
// path and drops any plain auth.admin_password. Other keys are written back as found,
// so defaults are not pinned into the file.
func SaveAdminPasswordHash(path, hash string) error {
	if path == "" {
		path = DefaultPath()
	}

	raw := map[string]any{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return err
	}

	authSection, ok := raw["auth"].(map[string]any)
	if !ok {
		authSection = map[string]any{}
		raw["auth"] = authSection
	}
	delete(authSection, "admin_password")
	authSection["admin_password_hash"] = hash

	out, err := toml.Marshal(raw)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0600)
}

// ResolveDataDir makes a relative data dir relative to the executable.
func ResolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, config.Data.DataDir)
}

// EnsureDataDir creates the data and upload directories
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	// uploads are spooled here before import
	if err := os.MkdirAll(filepath.Join(dataDir, "uploads"), 0755); err != nil {
		return "", err
	}

	return dataDir, nil
}

// UploadDir is where uploads are spooled
func UploadDir(dataDir string) string {
	return filepath.Join(dataDir, "uploads")
}
