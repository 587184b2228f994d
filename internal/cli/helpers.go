package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/glorpus-work/vguard/internal/logger"
	"github.com/glorpus-work/vguard/pkg/auth"
	"github.com/glorpus-work/vguard/pkg/backend"
	"github.com/glorpus-work/vguard/pkg/backend/local"
	"github.com/glorpus-work/vguard/pkg/config"
	"github.com/glorpus-work/vguard/pkg/errors"
	"github.com/glorpus-work/vguard/pkg/history"
	"github.com/glorpus-work/vguard/pkg/hooks"
	"github.com/glorpus-work/vguard/pkg/model"
	"github.com/glorpus-work/vguard/pkg/orchestrator"
	"github.com/glorpus-work/vguard/pkg/rpc"
)

// These variables will be set by the main package
var (
	ConfigPath   *string
	Verbose      *bool
	OutputFormat *string
)

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}

	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		logger.Warn("Failed to get default config path, using empty path", logger.Fields{"error": err})
		return ""
	}
	return defaultPath
}

// loadConfig reads the configuration, applies the global flags and sets up logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if OutputFormat != nil && *OutputFormat != "" {
		if err := cfg.SetValue("settings.output_format", *OutputFormat); err != nil {
			return nil, err
		}
	}
	if Verbose != nil && *Verbose {
		cfg.Settings.LogLevel = "debug"
	}

	logger.InitLogger(cfg.Settings.LogLevel, logger.OutputFormat(cfg.Settings.OutputFormat))
	return cfg, nil
}

// newLocalBackend builds the backend working on this machine's installation.
func newLocalBackend(cfg *config.Config) *local.Backend {
	return local.New(local.Options{
		AppName:            cfg.App.Name,
		RootDir:            cfg.App.RootDir,
		ProcessNames:       cfg.App.ProcessNames,
		BackupDir:          cfg.Settings.BackupDir,
		BackupBeforeDelete: cfg.Protection.BackupBeforeDelete,
	})
}

// newService picks the backend for backend.mode.
func newService(cfg *config.Config) (backend.Service, error) {
	if cfg.Backend.Mode != config.BackendRemote {
		return newLocalBackend(cfg), nil
	}
	var opts []rpc.ClientOption
	if cfg.Backend.Token != "" {
		opts = append(opts, rpc.WithAuth(auth.BearerAuth{Token: cfg.Backend.Token}))
	}
	client, err := rpc.NewClient(cfg.Backend.URL, cfg.Backend.Timeout, opts...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Using remote backend", logger.Fields{"url": cfg.Backend.URL})
	return client, nil
}

// session bundles what most commands need: configuration, backend and run history.
type session struct {
	cfg     *config.Config
	svc     backend.Service
	history *history.Store
}

func openSession() (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	svc, err := newService(cfg)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, svc: svc}, nil
}

// openHistory opens the run history. A history that cannot be opened is logged and skipped.
func (s *session) openHistory() {
	store, err := history.Open(s.cfg.GetHistoryPath())
	if err != nil {
		logger.Warn("Run history unavailable", logger.Fields{"error": err})
		return
	}
	s.history = store
}

func (s *session) Close() {
	if s.history != nil {
		_ = s.history.Close()
	}
}

// orchestrator creates an orchestrator for views with the user's hook scripts loaded.
func (s *session) orchestrator(views orchestrator.ViewSet) (*orchestrator.Orchestrator, error) {
	o := orchestrator.New(s.svc, orchestrator.Options{
		Views:             views,
		Pacing:            s.cfg.Protection.Pacing,
		AssumeFirstActive: s.cfg.Protection.AssumeFirstActive,
		LockConfig:        s.cfg.Protection.LockConfig,
		CreateBlockers:    s.cfg.Protection.CreateBlockers,
	})
	o.SetCacheCleanup(s.cfg.Protection.CleanCache)

	executor := hooks.NewTengoExecutor()
	if err := hooks.LoadDir(executor, s.cfg.Settings.HooksDir); err != nil {
		return nil, err
	}
	o.Scripts = executor
	return o, nil
}

// recordRuns attaches the run history to o.
func (s *session) recordRuns(o *orchestrator.Orchestrator) {
	if s.history == nil {
		s.openHistory()
	}
	if s.history != nil {
		o.History = s.history
	}
}

// load fetches kinds and returns the first load that failed.
func load(ctx context.Context, o *orchestrator.Orchestrator, kinds ...orchestrator.LoadKind) error {
	o.RunLoads(ctx, o.Refresh(kinds...))
	if err := ctx.Err(); err != nil {
		return err
	}
	errs := o.LoadErrors()
	for _, k := range kinds {
		if errs[k] != nil {
			return errs[k]
		}
	}
	return nil
}

// findInstalled resolves a version by exact path or name.
func findInstalled(versions []model.InstalledVersion, query string) (model.InstalledVersion, error) {
	for _, v := range versions {
		if v.Path == query {
			return v, nil
		}
	}
	for _, v := range versions {
		if v.Name == query {
			return v, nil
		}
	}
	return model.InstalledVersion{}, errors.Wrapf(errors.ErrUnknownVersion, "%q", query)
}

func wantJSON(cfg *config.Config) bool {
	return cfg.Settings.OutputFormat == string(logger.FormatJSON)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// confirm asks a yes/no question on in. Anything but y or yes is a no.
func confirm(in io.Reader, out io.Writer, question string) bool {
	_, _ = fmt.Fprintf(out, "%s [y/N]: ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// logMark renders a classified backend log line for terminal output.
func logMark(l model.LogLine) string {
	switch l.Severity {
	case model.SeverityOK:
		return "✓ " + l.Text
	case model.SeverityWarn:
		return "! " + l.Text
	}
	return "  " + l.Text
}
