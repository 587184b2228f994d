package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/vguard/internal/logger"
	"github.com/glorpus-work/vguard/internal/tui"
	"github.com/glorpus-work/vguard/pkg/errors"
	"github.com/glorpus-work/vguard/pkg/orchestrator"
)

// NewUICmd creates the ui command.
func NewUICmd() *cobra.Command {
	var (
		wizard bool
		mode   string
	)

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Open the terminal dashboard",
		Long:  "Open the interactive dashboard, or the step-by-step protection wizard with --mode wizard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if wizard {
				mode = orchestrator.WizardViews.Name
			}
			return runUI(cmd, mode)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", orchestrator.DashboardViews.Name, "Presentation: dashboard or wizard")
	cmd.Flags().BoolVar(&wizard, "wizard", false, "Shorthand for --mode wizard")

	return cmd
}

func runUI(cmd *cobra.Command, mode string) error {
	views, ok := orchestrator.ViewSetByName(mode)
	if !ok {
		return errors.Wrapf(errors.ErrConfigValidation, "unknown ui mode %q", mode)
	}
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	o, err := s.orchestrator(views)
	if err != nil {
		return err
	}
	s.recordRuns(o)

	// the terminal belongs to the UI until it exits
	restore, err := logger.ToFile(s.cfg.GetLogPath())
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer restore()

	return tui.Run(cmd.Context(), o, tui.Options{
		AppName:         s.cfg.App.Name,
		RefreshInterval: s.cfg.Settings.RefreshInterval,
	})
}
