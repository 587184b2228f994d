package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/vguard/internal/logger"
	"github.com/glorpus-work/vguard/pkg/model"
	"github.com/glorpus-work/vguard/pkg/orchestrator"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show installation and protection status",
		Long:  "Run the precheck and show installed versions, the active version, cache size and protection measures",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}

	return cmd
}

type statusReport struct {
	App         string                  `json:"app"`
	Status      string                  `json:"status"`
	AppsPath    string                  `json:"apps_path,omitempty"`
	Versions    int                     `json:"versions"`
	TotalMB     float64                 `json:"total_mb"`
	Active      string                  `json:"active,omitempty"`
	ActiveState string                  `json:"active_state"`
	CacheMB     *float64                `json:"cache_mb,omitempty"`
	Protection  *model.ProtectionStatus `json:"protection,omitempty"`
	Errors      map[string]string       `json:"errors,omitempty"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	o, err := s.orchestrator(orchestrator.DashboardViews)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	o.RunLoads(ctx, o.Reload())
	vm := o.View()

	report := statusReport{
		App:         s.cfg.App.Name,
		Status:      string(vm.Status),
		AppsPath:    vm.Precheck.AppsPath,
		Versions:    len(vm.Installed),
		TotalMB:     model.TotalSizeMB(vm.Installed),
		ActiveState: string(vm.Active.State),
		Errors:      map[string]string{},
	}
	if vm.Active.Version != nil {
		report.Active = vm.Active.Version.Name
	}
	if vm.CacheSizeKnown {
		size := vm.CacheSizeMB
		report.CacheMB = &size
	}
	for kind, msg := range vm.LoadErrors {
		report.Errors[string(kind)] = msg
	}
	if ps, err := s.svc.ProtectionStatus(ctx); err != nil {
		logger.Debug("Protection status unavailable", logger.Fields{"error": err})
		report.Errors["protection"] = err.Error()
	} else {
		report.Protection = &ps
	}

	if wantJSON(s.cfg) {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	printStatus(cmd.OutOrStdout(), report)
	return nil
}

func statusText(app string, status orchestrator.PrecheckStatus) string {
	switch status {
	case orchestrator.StatusProtected:
		return "Ready"
	case orchestrator.StatusRisk:
		return fmt.Sprintf("%s is running. Close it before making changes.", app)
	case orchestrator.StatusNoInstallation:
		return fmt.Sprintf("%s installation not found", app)
	}
	return "Unknown"
}

func printStatus(w io.Writer, r statusReport) {
	tw := tabwriter.NewWriter(w, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Status:\t%s\n", statusText(r.App, orchestrator.PrecheckStatus(r.Status)))
	if r.AppsPath != "" {
		_, _ = fmt.Fprintf(tw, "Apps path:\t%s\n", r.AppsPath)
	}
	_, _ = fmt.Fprintf(tw, "Installed versions:\t%d (%.1f MB)\n", r.Versions, r.TotalMB)

	active := "unknown"
	switch {
	case r.Active != "" && r.ActiveState == string(orchestrator.ActiveAssumed):
		active = r.Active + " (assumed)"
	case r.Active != "":
		active = r.Active
	}
	_, _ = fmt.Fprintf(tw, "Active version:\t%s\n", active)

	if r.CacheMB != nil {
		_, _ = fmt.Fprintf(tw, "Cache:\t%.1f MB\n", *r.CacheMB)
	}
	if r.Protection != nil {
		printProtection(tw, *r.Protection)
	}
	for _, kind := range slices.Sorted(maps.Keys(r.Errors)) {
		_, _ = fmt.Fprintf(tw, "Error (%s):\t%s\n", kind, r.Errors[kind])
	}
	_ = tw.Flush()
}

func printProtection(w io.Writer, p model.ProtectionStatus) {
	_, _ = fmt.Fprintf(w, "Protected:\t%s\n", yesNo(p.IsProtected))
	_, _ = fmt.Fprintf(w, "Config locked:\t%s\n", yesNo(p.ConfigLocked))
	_, _ = fmt.Fprintf(w, "Update blockers:\t%s\n", yesNo(p.BlockersExist))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed versions",
		Long:  "List every installed version with its size and whether it is active",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}

	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	o, err := s.orchestrator(orchestrator.DashboardViews)
	if err != nil {
		return err
	}
	if err := load(cmd.Context(), o, orchestrator.LoadInstalled); err != nil {
		return fmt.Errorf("failed to scan versions: %w", err)
	}
	vm := o.View()

	if wantJSON(s.cfg) {
		return writeJSON(cmd.OutOrStdout(), vm.Installed)
	}
	if len(vm.Installed) == 0 {
		logger.Info("No versions installed")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tSIZE\tACTIVE\tPATH")
	_, _ = fmt.Fprintln(tw, "----\t----\t------\t----")
	for _, v := range vm.Installed {
		active := ""
		if vm.Active.IsActive(v.Path) {
			active = "*"
			if vm.Active.State == orchestrator.ActiveAssumed {
				active = "assumed"
			}
		}
		_, _ = fmt.Fprintf(tw, "%s\t%.1f MB\t%s\t%s\n", v.Name, v.SizeMB, active, v.Path)
	}
	_ = tw.Flush()
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d version(s), %.1f MB\n", len(vm.Installed), model.TotalSizeMB(vm.Installed))
	return nil
}
