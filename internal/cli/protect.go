package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/vguard/internal/logger"
	"github.com/glorpus-work/vguard/pkg/errors"
	"github.com/glorpus-work/vguard/pkg/model"
	"github.com/glorpus-work/vguard/pkg/orchestrator"
)

// NewProtectCmd creates the protect command with subcommands.
func NewProtectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "protect",
		Short: "Protect a version against automatic updates",
		Long:  "Keep one version, remove the others and block the updater",
	}

	cmd.AddCommand(
		newProtectRunCmd(),
		newProtectStatusCmd(),
		newProtectRemoveCmd(),
	)

	return cmd
}

type protectOptions struct {
	keep       string
	cleanCache bool
	yes        bool
}

func newProtectRunCmd() *cobra.Command {
	var opts protectOptions

	cmd := &cobra.Command{
		Use:   "run --keep VERSION",
		Short: "Run a protection",
		Long: `Keep VERSION, delete every other installed version and apply the configured
protection measures: cache cleanup, config lock and update blockers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProtect(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.keep, "keep", "", "Version to keep, by name or path")
	cmd.Flags().BoolVar(&opts.cleanCache, "clean-cache", true, "Clean the cache during protection (default: protection.clean_cache)")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Do not ask for confirmation")
	_ = cmd.MarkFlagRequired("keep")

	return cmd
}

func newProtectStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show protection measures",
		Long:  "Show whether the config lock and update blockers are in place",
		Args:  cobra.NoArgs,
		RunE:  runProtectStatus,
	}

	return cmd
}

func newProtectRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove protection measures",
		Long:  "Unlock the config and delete the update blockers so the application can update again",
		Args:  cobra.NoArgs,
		RunE:  runProtectRemove,
	}

	return cmd
}

func runProtect(cmd *cobra.Command, opts protectOptions) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	o, err := s.orchestrator(orchestrator.WizardViews)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("clean-cache") {
		o.SetCacheCleanup(opts.cleanCache)
	}

	ctx := cmd.Context()
	o.RunLoads(ctx, o.Refresh(orchestrator.LoadPrecheck, orchestrator.LoadInstalled))
	vm := o.View()
	switch vm.Status {
	case orchestrator.StatusRisk:
		return errors.Wrapf(errors.ErrAppRunning, "close %s first", s.cfg.App.Name)
	case orchestrator.StatusNoInstallation:
		return errors.ErrInstallationNotFound
	case orchestrator.StatusUnknown:
		logger.Warn("Precheck failed, continuing", logger.Fields{"error": vm.LoadErrors[orchestrator.LoadPrecheck]})
	}
	if err := o.LoadErrors()[orchestrator.LoadInstalled]; err != nil {
		return fmt.Errorf("failed to scan versions: %w", err)
	}

	keep, err := findInstalled(vm.Installed, opts.keep)
	if err != nil {
		return err
	}
	o.SelectPath(keep.Path)
	targets, err := o.DeletionSet()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Keep %s and delete %d version(s):\n", keep.Name, len(targets))
	for _, t := range targets {
		_, _ = fmt.Fprintf(out, "  - %s\n", t)
	}
	if !opts.yes && !confirm(cmd.InOrStdin(), out, "Continue?") {
		logger.Info("Protection cancelled")
		return nil
	}

	s.recordRuns(o)
	o.Hooks.OnEvent = func(e orchestrator.Event) {
		logger.Info(e.Msg, logger.Fields{"phase": e.Phase, "percent": e.Percent})
	}
	outcome, err := o.Protect(ctx)
	if outcome == nil {
		return err
	}

	if wantJSON(s.cfg) {
		if werr := writeJSON(out, outcome); werr != nil {
			return werr
		}
	} else {
		for _, line := range outcome.Logs {
			_, _ = fmt.Fprintln(out, logMark(line))
		}
	}
	if err != nil {
		return fmt.Errorf("protection failed: %w", err)
	}
	logger.Success("Protection complete", logger.Fields{"kept": keep.Name, "deleted": len(outcome.Deleted)})
	return nil
}

func runProtectStatus(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ps, err := s.svc.ProtectionStatus(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get protection status: %w", err)
	}
	if wantJSON(s.cfg) {
		return writeJSON(cmd.OutOrStdout(), ps)
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, TabWidth, ' ', 0)
	printProtection(tw, ps)
	return tw.Flush()
}

func runProtectRemove(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.svc.RemoveProtection(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to remove protection: %w", err)
	}
	if wantJSON(s.cfg) {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	for _, line := range model.ParseLogLines(res.Logs) {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), logMark(line))
	}
	if !res.Success {
		return &errors.BackendFailure{Op: "remove protection", Message: res.Error}
	}
	logger.Success("Protection removed")
	return nil
}
