package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/vguard/internal/logger"
	"github.com/glorpus-work/vguard/pkg/errors"
	"github.com/glorpus-work/vguard/pkg/fsutil"
	"github.com/glorpus-work/vguard/pkg/hooks"
)

// NewHooksCmd creates the hooks command with subcommands.
func NewHooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hooks",
		Short: "Manage hook scripts",
		Long:  "List and create the Tengo scripts run around protection and switch runs",
	}

	cmd.AddCommand(
		newHooksListCmd(),
		newHooksInitCmd(),
	)

	return cmd
}

func newHooksListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show which hooks are installed",
		Args:  cobra.NoArgs,
		RunE:  runHooksList,
	}
}

func newHooksInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init TYPE",
		Short: "Create a hook script from a template",
		Long:  fmt.Sprintf("Create <hooks_dir>/TYPE%s. TYPE is one of %v", hooks.HookFileExtension, hooks.Types),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHooksInit(cmd, hooks.HookType(args[0]), force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing script")

	return cmd
}

type hookRow struct {
	Type      hooks.HookType `json:"type"`
	Path      string         `json:"path"`
	Installed bool           `json:"installed"`
}

func runHooksList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	executor := hooks.NewTengoExecutor()
	if err := hooks.LoadDir(executor, cfg.Settings.HooksDir); err != nil {
		return err
	}
	rows := make([]hookRow, 0, len(hooks.Types))
	for _, t := range hooks.Types {
		rows = append(rows, hookRow{
			Type:      t,
			Path:      hookPath(cfg.Settings.HooksDir, t),
			Installed: executor.HasScript(t),
		})
	}

	if wantJSON(cfg) {
		return writeJSON(cmd.OutOrStdout(), rows)
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "HOOK\tINSTALLED\tPATH")
	_, _ = fmt.Fprintln(tw, "----\t---------\t----")
	for _, r := range rows {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Type, yesNo(r.Installed), r.Path)
	}
	return tw.Flush()
}

func runHooksInit(cmd *cobra.Command, t hooks.HookType, force bool) error {
	if !t.Valid() {
		return errors.Wrapf(errors.ErrConfigValidation, "unknown hook type %q", t)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := hookPath(cfg.Settings.HooksDir, t)
	if fsutil.Exists(path) && !force {
		return fmt.Errorf("hook %s: %w", path, errors.ErrConfigFileExists)
	}
	if err := fsutil.EnsureFileDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(hooks.HookTemplate(t)), fsutil.FileModeDefault); err != nil {
		return fmt.Errorf("failed to write hook: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
	logger.Success("Hook created", logger.Fields{"type": t, "path": path})
	return nil
}

func hookPath(dir string, t hooks.HookType) string {
	return filepath.Join(dir, string(t)+hooks.HookFileExtension)
}
