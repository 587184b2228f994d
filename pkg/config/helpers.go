package config

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/glorpus-work/vguard/pkg/errors"
)

// field binds a dotted configuration key to accessors on Config.
type field struct {
	get func(c *Config) string
	set func(c *Config, value string) error
}

func stringField(ptr func(c *Config) *string) field {
	return field{
		get: func(c *Config) string { return *ptr(c) },
		set: func(c *Config, v string) error { *ptr(c) = v; return nil },
	}
}

func boolField(ptr func(c *Config) *bool) field {
	return field{
		get: func(c *Config) string { return strconv.FormatBool(*ptr(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return errors.Wrapf(errors.ErrConfigValidation, "invalid boolean value %q", v)
			}
			*ptr(c) = b
			return nil
		},
	}
}

func durationField(ptr func(c *Config) *time.Duration) field {
	return field{
		get: func(c *Config) string { return ptr(c).String() },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return errors.Wrapf(errors.ErrConfigValidation, "invalid duration value %q", v)
			}
			*ptr(c) = d
			return nil
		},
	}
}

func intField(ptr func(c *Config) *int) field {
	return field{
		get: func(c *Config) string { return strconv.Itoa(*ptr(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return errors.Wrapf(errors.ErrConfigValidation, "invalid integer value %q", v)
			}
			*ptr(c) = n
			return nil
		},
	}
}

var fields = map[string]field{
	"app.name":     stringField(func(c *Config) *string { return &c.App.Name }),
	"app.root_dir": stringField(func(c *Config) *string { return &c.App.RootDir }),
	"app.process_names": {
		get: func(c *Config) string { return strings.Join(c.App.ProcessNames, ",") },
		set: func(c *Config, v string) error {
			var names []string
			for _, n := range strings.Split(v, ",") {
				if n = strings.TrimSpace(n); n != "" {
					names = append(names, n)
				}
			}
			c.App.ProcessNames = names
			return nil
		},
	},
	"backend.mode":                    stringField(func(c *Config) *string { return &c.Backend.Mode }),
	"backend.url":                     stringField(func(c *Config) *string { return &c.Backend.URL }),
	"backend.timeout":                 durationField(func(c *Config) *time.Duration { return &c.Backend.Timeout }),
	"backend.token":                   stringField(func(c *Config) *string { return &c.Backend.Token }),
	"protection.clean_cache":          boolField(func(c *Config) *bool { return &c.Protection.CleanCache }),
	"protection.lock_config":          boolField(func(c *Config) *bool { return &c.Protection.LockConfig }),
	"protection.create_blockers":      boolField(func(c *Config) *bool { return &c.Protection.CreateBlockers }),
	"protection.backup_before_delete": boolField(func(c *Config) *bool { return &c.Protection.BackupBeforeDelete }),
	"protection.pacing":               durationField(func(c *Config) *time.Duration { return &c.Protection.Pacing }),
	"protection.assume_first_active":  boolField(func(c *Config) *bool { return &c.Protection.AssumeFirstActive }),
	"server.listen":                   stringField(func(c *Config) *string { return &c.Server.Listen }),
	"server.metrics":                  boolField(func(c *Config) *bool { return &c.Server.Metrics }),
	"server.token":                    stringField(func(c *Config) *string { return &c.Server.Token }),
	"settings.state_dir":              stringField(func(c *Config) *string { return &c.Settings.StateDir }),
	"settings.download_dir":           stringField(func(c *Config) *string { return &c.Settings.DownloadDir }),
	"settings.backup_dir":             stringField(func(c *Config) *string { return &c.Settings.BackupDir }),
	"settings.hooks_dir":              stringField(func(c *Config) *string { return &c.Settings.HooksDir }),
	"settings.http_timeout":           durationField(func(c *Config) *time.Duration { return &c.Settings.HTTPTimeout }),
	"settings.max_concurrent":         intField(func(c *Config) *int { return &c.Settings.MaxConcurrent }),
	"settings.refresh_interval":       durationField(func(c *Config) *time.Duration { return &c.Settings.RefreshInterval }),
	"settings.output_format":          stringField(func(c *Config) *string { return &c.Settings.OutputFormat }),
	"settings.log_level":              stringField(func(c *Config) *string { return &c.Settings.LogLevel }),
}

// SetValue sets a configuration value by its dotted key, e.g. "protection.clean_cache".
// The resulting configuration is validated; an invalid value leaves c unchanged.
func (c *Config) SetValue(key, value string) error {
	f, ok := fields[key]
	if !ok {
		return errors.Wrap(errors.ErrUnknownConfigKey, key)
	}
	candidate := *c
	candidate.App.ProcessNames = append([]string(nil), c.App.ProcessNames...)
	if err := f.set(&candidate, value); err != nil {
		return err
	}
	if err := candidate.Validate(); err != nil {
		return err
	}
	*c = candidate
	return nil
}

// GetValue returns a configuration value by its dotted key.
func (c *Config) GetValue(key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", errors.Wrap(errors.ErrUnknownConfigKey, key)
	}
	return f.get(c), nil
}

// Keys returns every supported dotted key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ToMap returns every setting keyed by its dotted key. This is useful for displaying the configuration.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string, len(fields))
	for k, f := range fields {
		result[k] = f.get(c)
	}
	return result
}
