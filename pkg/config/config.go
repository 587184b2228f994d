// Package config provides configuration management for vguard.
// It handles loading, validating and saving the YAML configuration file and
// supplies defaults for every setting so an absent file is a valid configuration.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glorpus-work/vguard/pkg/errors"
	"github.com/glorpus-work/vguard/pkg/fsutil"
	"gopkg.in/yaml.v3"
)

// Backend modes.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// Config represents the application configuration.
type Config struct {
	App        AppConfig        `yaml:"app"`
	Backend    BackendConfig    `yaml:"backend"`
	Protection ProtectionConfig `yaml:"protection"`
	Server     ServerConfig     `yaml:"server"`
	Settings   Settings         `yaml:"settings"`
}

// AppConfig describes the guarded application.
type AppConfig struct {
	// Name is the application's directory name below %LOCALAPPDATA% and its registry key.
	Name string `yaml:"name"`
	// RootDir overrides install path discovery when set.
	RootDir      string   `yaml:"root_dir,omitempty"`
	ProcessNames []string `yaml:"process_names"`
}

// BackendConfig selects where filesystem and process work happens.
type BackendConfig struct {
	Mode    string        `yaml:"mode"` // local, remote
	URL     string        `yaml:"url,omitempty"`
	Timeout time.Duration `yaml:"timeout"`
	// Token is sent as a bearer credential in remote mode.
	Token string `yaml:"token,omitempty"`
}

// ProtectionConfig holds the defaults of a protection run.
type ProtectionConfig struct {
	CleanCache         bool          `yaml:"clean_cache"`
	LockConfig         bool          `yaml:"lock_config"`
	CreateBlockers     bool          `yaml:"create_blockers"`
	BackupBeforeDelete bool          `yaml:"backup_before_delete"`
	Pacing             time.Duration `yaml:"pacing"`
	// AssumeFirstActive treats the first scanned version as active when the backend reports none.
	AssumeFirstActive bool `yaml:"assume_first_active"`
}

// ServerConfig configures `vguard serve`.
type ServerConfig struct {
	Listen  string `yaml:"listen"`
	Metrics bool   `yaml:"metrics"`
	// Token, when set, is required from every client.
	Token string `yaml:"token,omitempty"`
}

// Settings represents general application settings.
type Settings struct {
	StateDir    string `yaml:"state_dir,omitempty"`
	DownloadDir string `yaml:"download_dir,omitempty"`
	BackupDir   string `yaml:"backup_dir,omitempty"`
	HooksDir    string `yaml:"hooks_dir,omitempty"`

	// Network settings
	HTTPTimeout   time.Duration `yaml:"http_timeout"`
	MaxConcurrent int           `yaml:"max_concurrent"`

	// RefreshInterval is how often the dashboard repeats the precheck.
	RefreshInterval time.Duration `yaml:"refresh_interval"`

	// Output settings
	OutputFormat string `yaml:"output_format"` // text, json
	LogLevel     string `yaml:"log_level"`     // debug, info, warn, error
}

// Default configuration values.
const (
	DefaultAppName         = "CapCut"
	DefaultBackendTimeout  = 2 * time.Minute
	DefaultHTTPTimeout     = 30 * time.Second
	DefaultMaxConcurrent   = 3
	DefaultRefreshInterval = 5 * time.Second
	DefaultListen          = "127.0.0.1:7878"

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultProcessNames are the executable names that count as the application running.
var DefaultProcessNames = []string{"CapCut", "CapCut.exe"}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	dataDir, err := fsutil.GetDataDir()
	if err != nil {
		dataDir = filepath.Join(os.TempDir(), fsutil.AppName)
	}
	cacheDir, err := fsutil.GetCacheDir()
	if err != nil {
		cacheDir = filepath.Join(dataDir, "cache")
	}

	return &Config{
		App: AppConfig{
			Name:         DefaultAppName,
			ProcessNames: append([]string(nil), DefaultProcessNames...),
		},
		Backend: BackendConfig{
			Mode:    BackendLocal,
			Timeout: DefaultBackendTimeout,
		},
		Protection: ProtectionConfig{
			CleanCache:         true,
			LockConfig:         true,
			CreateBlockers:     true,
			BackupBeforeDelete: true,
		},
		Server: ServerConfig{
			Listen:  DefaultListen,
			Metrics: true,
		},
		Settings: Settings{
			StateDir:        dataDir,
			DownloadDir:     filepath.Join(cacheDir, "downloads"),
			BackupDir:       filepath.Join(dataDir, "backups"),
			HooksDir:        filepath.Join(dataDir, "hooks"),
			HTTPTimeout:     DefaultHTTPTimeout,
			MaxConcurrent:   DefaultMaxConcurrent,
			RefreshInterval: DefaultRefreshInterval,
			OutputFormat:    "text",
			LogLevel:        "info",
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
// Keys absent from the document keep their default values.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// SaveConfig saves configuration to a file.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(absPath), fsutil.DirModeDefault); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	tempPath := absPath + ".tmp"
	// may hold backend tokens
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeSecure)
	if err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(YAMLIndent)

	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}

	_ = encoder.Close()
	_ = file.Close()

	// Atomically replace the config file
	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigFileRename, err.Error())
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	if strings.TrimSpace(c.App.Name) == "" {
		return errors.Wrap(errors.ErrConfigValidation, "app.name cannot be empty")
	}
	if err := validateBackend(c.Backend); err != nil {
		return err
	}
	if c.Protection.Pacing < 0 {
		return errors.Wrap(errors.ErrConfigValidation, "protection.pacing cannot be negative")
	}
	return validateSettings(c.Settings)
}

func validateBackend(b BackendConfig) error {
	switch b.Mode {
	case BackendLocal:
	case BackendRemote:
		if b.URL == "" {
			return errors.Wrap(errors.ErrConfigValidation, "backend.url is required in remote mode")
		}
	default:
		return errors.Wrapf(errors.ErrInvalidBackendMode, "%q (valid: local, remote)", b.Mode)
	}
	if b.Timeout < 0 {
		return errors.Wrap(errors.ErrConfigValidation, "backend.timeout cannot be negative")
	}
	return nil
}

func validateSettings(s Settings) error {
	if s.HTTPTimeout < 0 {
		return errors.Wrap(errors.ErrConfigValidation, "http_timeout cannot be negative")
	}
	if s.RefreshInterval < 0 {
		return errors.Wrap(errors.ErrConfigValidation, "refresh_interval cannot be negative")
	}
	if s.MaxConcurrent < 1 {
		return errors.Wrap(errors.ErrConfigValidation, "max_concurrent must be at least 1")
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[s.OutputFormat] {
		return errors.Wrapf(errors.ErrInvalidOutputFormat, "%q (valid: text, json)", s.OutputFormat)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return errors.Wrapf(errors.ErrInvalidLogLevel, "%q (valid: debug, info, warn, error)", s.LogLevel)
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, fsutil.AppName, "config.yaml"), nil
}

// GetHistoryPath returns the path of the run history database.
func (c *Config) GetHistoryPath() string {
	return filepath.Join(c.Settings.StateDir, "history.db")
}

// GetLogPath returns the log file used while the terminal UI owns the screen.
func (c *Config) GetLogPath() string {
	return filepath.Join(c.Settings.StateDir, "vguard.log")
}

// applyDefaults fills in values an explicit empty entry in the file cleared.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.App.Name == "" {
		c.App.Name = defaults.App.Name
	}
	if len(c.App.ProcessNames) == 0 {
		c.App.ProcessNames = defaults.App.ProcessNames
	}
	if c.Backend.Mode == "" {
		c.Backend.Mode = defaults.Backend.Mode
	}
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = defaults.Backend.Timeout
	}
	if c.Server.Listen == "" {
		c.Server.Listen = defaults.Server.Listen
	}
	if c.Settings.StateDir == "" {
		c.Settings.StateDir = defaults.Settings.StateDir
	}
	if c.Settings.DownloadDir == "" {
		c.Settings.DownloadDir = defaults.Settings.DownloadDir
	}
	if c.Settings.BackupDir == "" {
		c.Settings.BackupDir = defaults.Settings.BackupDir
	}
	if c.Settings.HooksDir == "" {
		c.Settings.HooksDir = defaults.Settings.HooksDir
	}
	if c.Settings.HTTPTimeout == 0 {
		c.Settings.HTTPTimeout = defaults.Settings.HTTPTimeout
	}
	if c.Settings.MaxConcurrent == 0 {
		c.Settings.MaxConcurrent = defaults.Settings.MaxConcurrent
	}
	if c.Settings.RefreshInterval == 0 {
		c.Settings.RefreshInterval = defaults.Settings.RefreshInterval
	}
	if c.Settings.OutputFormat == "" {
		c.Settings.OutputFormat = defaults.Settings.OutputFormat
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
}
