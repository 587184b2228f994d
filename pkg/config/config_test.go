package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/glorpus-work/vguard/pkg/errors"
	"github.com/glorpus-work/vguard/pkg/fsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Settings.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.Settings.HTTPTimeout)
	assert.Equal(t, DefaultMaxConcurrent, cfg.Settings.MaxConcurrent)
	assert.Equal(t, BackendLocal, cfg.Backend.Mode)
	assert.Equal(t, []string{"CapCut", "CapCut.exe"}, cfg.App.ProcessNames)
	assert.True(t, cfg.Protection.CleanCache)
	assert.True(t, cfg.Protection.LockConfig)
	assert.True(t, cfg.Protection.CreateBlockers)
	assert.True(t, cfg.Protection.BackupBeforeDelete)
	assert.False(t, cfg.Protection.AssumeFirstActive)
	assert.Zero(t, cfg.Protection.Pacing)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	configContent := `app:
  root_dir: /opt/capcut
backend:
  mode: remote
  url: http://10.0.0.5:7878
protection:
  clean_cache: false
  pacing: 200ms
settings:
  log_level: debug`

	err := os.WriteFile(configPath, []byte(configContent), fsutil.FileModeDefault)
	require.NoError(t, err)

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "/opt/capcut", cfg.App.RootDir)
	assert.Equal(t, DefaultAppName, cfg.App.Name)
	assert.Equal(t, BackendRemote, cfg.Backend.Mode)
	assert.Equal(t, "http://10.0.0.5:7878", cfg.Backend.URL)
	assert.False(t, cfg.Protection.CleanCache)
	// keys absent from the file keep their defaults
	assert.True(t, cfg.Protection.LockConfig)
	assert.Equal(t, 200*time.Millisecond, cfg.Protection.Pacing)
	assert.Equal(t, "debug", cfg.Settings.LogLevel)
	assert.Equal(t, DefaultRefreshInterval, cfg.Settings.RefreshInterval)
}

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.ErrorIs(t, err, errors.ErrEmptyConfigPath)
}

func TestLoadConfigFromReader_ParseError(t *testing.T) {
	_, err := LoadConfigFromReader(strings.NewReader("app: [unterminated"))
	assert.ErrorIs(t, err, errors.ErrConfigParse)
}

func TestSaveConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Settings.LogLevel = "debug"
	cfg.Protection.AssumeFirstActive = true

	configPath := filepath.Join(t.TempDir(), "nested", "test-config.yaml")
	require.NoError(t, cfg.SaveConfig(configPath))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.NoFileExists(t, configPath+".tmp")

	loadedCfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, cfg, loadedCfg)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "unknown backend mode",
			mutate:  func(c *Config) { c.Backend.Mode = "cloud" },
			wantErr: errors.ErrInvalidBackendMode,
		},
		{
			name:    "remote without url",
			mutate:  func(c *Config) { c.Backend.Mode = BackendRemote },
			wantErr: errors.ErrConfigValidation,
		},
		{
			name:    "invalid output format",
			mutate:  func(c *Config) { c.Settings.OutputFormat = "xml" },
			wantErr: errors.ErrInvalidOutputFormat,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Settings.LogLevel = "trace" },
			wantErr: errors.ErrInvalidLogLevel,
		},
		{
			name:    "negative pacing",
			mutate:  func(c *Config) { c.Protection.Pacing = -time.Second },
			wantErr: errors.ErrConfigValidation,
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Settings.MaxConcurrent = 0 },
			wantErr: errors.ErrConfigValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSetGetValue(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.SetValue("protection.clean_cache", "false"))
	assert.False(t, cfg.Protection.CleanCache)

	require.NoError(t, cfg.SetValue("protection.pacing", "150ms"))
	assert.Equal(t, 150*time.Millisecond, cfg.Protection.Pacing)

	require.NoError(t, cfg.SetValue("app.process_names", "CapCut.exe, JianyingPro.exe"))
	assert.Equal(t, []string{"CapCut.exe", "JianyingPro.exe"}, cfg.App.ProcessNames)

	val, err := cfg.GetValue("settings.max_concurrent")
	require.NoError(t, err)
	assert.Equal(t, "3", val)

	_, err = cfg.GetValue("settings.nope")
	assert.ErrorIs(t, err, errors.ErrUnknownConfigKey)
	assert.ErrorIs(t, cfg.SetValue("settings.nope", "x"), errors.ErrUnknownConfigKey)
}

func TestSetValue_InvalidLeavesConfigUnchanged(t *testing.T) {
	cfg := DefaultConfig()

	assert.ErrorIs(t, cfg.SetValue("settings.log_level", "loud"), errors.ErrInvalidLogLevel)
	assert.Equal(t, "info", cfg.Settings.LogLevel)

	assert.ErrorIs(t, cfg.SetValue("protection.lock_config", "maybe"), errors.ErrConfigValidation)
	assert.True(t, cfg.Protection.LockConfig)
}

func TestToMap(t *testing.T) {
	cfg := DefaultConfig()
	m := cfg.ToMap()

	assert.Len(t, m, len(Keys()))
	assert.Equal(t, "local", m["backend.mode"])
	assert.Equal(t, "true", m["protection.create_blockers"])
	assert.Equal(t, "5s", m["settings.refresh_interval"])
}

func TestGetDefaultConfigPath(t *testing.T) {
	path, err := GetDefaultConfigPath()
	if err != nil {
		t.Skip("no user config dir in this environment")
	}
	assert.Equal(t, "config.yaml", filepath.Base(path))
	assert.Equal(t, "vguard", filepath.Base(filepath.Dir(path)))
}
