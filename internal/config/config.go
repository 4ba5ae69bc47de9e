package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// EnvPrefix is prepended to every environment override (CARCLI_API_BASE_URL, ...)
	EnvPrefix = "CARCLI"
)

var (
	// ConfigDir is the global configuration directory (~/.carcli)
	ConfigDir string

	// ConfigFile is the YAML configuration file
	ConfigFile string

	// DatabasePath is the SQLite database file for the request history
	DatabasePath string

	// SessionFile is the session state file holding the bearer token
	SessionFile string

	// LogFile is where the structured log is written while the TUI owns the terminal
	LogFile string
)

// Config holds the resolved runtime settings
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	View    ViewConfig    `mapstructure:"view"`
	History HistoryConfig `mapstructure:"history"`
	Log     LogConfig     `mapstructure:"log"`
}

// APIConfig describes the remote car inventory API
type APIConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	LoginURL string        `mapstructure:"login_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ViewConfig tunes the list view
type ViewConfig struct {
	PageSize           int  `mapstructure:"page_size"`
	RefetchAfterDelete bool `mapstructure:"refetch_after_delete"`
}

// HistoryConfig toggles the request log
type HistoryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LogConfig controls the zap logger
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Initialize sets up the configuration directories and files
// It creates ~/.carcli/ if it doesn't exist
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	return InitializeAt(filepath.Join(homeDir, ".carcli"))
}

// InitializeAt sets up the configuration tree rooted at dir
func InitializeAt(dir string) error {
	ConfigDir = dir
	ConfigFile = filepath.Join(ConfigDir, "config.yaml")
	DatabasePath = filepath.Join(ConfigDir, "carcli.db")
	SessionFile = filepath.Join(ConfigDir, ".session.json")
	LogFile = filepath.Join(ConfigDir, "carcli.log")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	// Create empty session file if it doesn't exist
	if _, err := os.Stat(SessionFile); os.IsNotExist(err) {
		if err := os.WriteFile(SessionFile, []byte(`{}`), FilePermissions); err != nil {
			return fmt.Errorf("failed to create session file: %w", err)
		}
	}

	return nil
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:10150")
	v.SetDefault("api.login_url", "")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("view.page_size", 5)
	v.SetDefault("view.refetch_after_delete", false)
	v.SetDefault("history.enabled", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// Load reads the configuration file (local ./carcli.yaml wins over the global one)
// and applies CARCLI_* environment overrides. A missing file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(GetConfigFilePath())
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return decode(v)
}

// FromViper decodes an already populated viper instance (used by tests and flags)
func FromViper(v *viper.Viper) (*Config, error) {
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

func (c *Config) normalize() {
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.LoginURL == "" {
		c.API.LoginURL = c.API.BaseURL + "/user/login"
	}
	if c.API.Timeout <= 0 {
		c.API.Timeout = 30 * time.Second
	}
	if c.View.PageSize <= 0 {
		c.View.PageSize = 5
	}
	if c.Log.File == "" {
		c.Log.File = LogFile
	}
}

// GetConfigFilePath returns the config file path (local or global)
func GetConfigFilePath() string {
	if _, err := os.Stat("carcli.yaml"); err == nil {
		return "carcli.yaml"
	}
	return ConfigFile
}

// GetSessionFilePath returns the session file path (local or global)
func GetSessionFilePath() string {
	if _, err := os.Stat(".session.json"); err == nil {
		return ".session.json"
	}
	return SessionFile
}
