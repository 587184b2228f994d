package cli

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/vguard/internal/logger"
	"github.com/glorpus-work/vguard/pkg/catalog"
	"github.com/glorpus-work/vguard/pkg/download"
	"github.com/glorpus-work/vguard/pkg/errors"
	"github.com/glorpus-work/vguard/pkg/model"
	"github.com/glorpus-work/vguard/pkg/orchestrator"
)

// NewArchiveCmd creates the archive command with subcommands.
func NewArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Browse and download archived releases",
		Long:  "List historical releases with their risk level and download installers",
	}

	cmd.AddCommand(
		newArchiveListCmd(),
		newArchiveDownloadCmd(),
	)

	return cmd
}

func newArchiveListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived releases",
		Long:  "List the curated releases, or every known release with --all",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runArchiveList(cmd, all)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "List every known release instead of the curated ones")

	return cmd
}

func newArchiveDownloadCmd() *cobra.Command {
	var (
		dir    string
		mirror string
	)

	cmd := &cobra.Command{
		Use:   "download VERSION...",
		Short: "Download release installers",
		Long:  "Download the installers of one or more archived releases, by version or persona",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArchiveDownload(cmd, args, dir, mirror)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Destination directory (default: settings.download_dir)")
	cmd.Flags().StringVar(&mirror, "mirror", "", "Base URL of a mirror serving the same paths")

	return cmd
}

type archiveRow struct {
	model.ArchiveVersion
	Installed bool `json:"installed"`
}

func runArchiveList(cmd *cobra.Command, all bool) error {
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
	o.RunLoads(ctx, o.Refresh(orchestrator.LoadArchive, orchestrator.LoadInstalled))
	vm := o.View()

	var rows []archiveRow
	if all {
		releases, err := catalog.All()
		if err != nil {
			return err
		}
		for _, a := range releases {
			rows = append(rows, archiveRow{ArchiveVersion: a, Installed: a.IsInstalled(vm.Installed)})
		}
	} else {
		if err := o.LoadErrors()[orchestrator.LoadArchive]; err != nil {
			return fmt.Errorf("failed to get archive versions: %w", err)
		}
		for _, e := range vm.Archive {
			rows = append(rows, archiveRow{ArchiveVersion: e.ArchiveVersion, Installed: e.Installed})
		}
	}

	if wantJSON(s.cfg) {
		if rows == nil {
			rows = []archiveRow{}
		}
		return writeJSON(cmd.OutOrStdout(), rows)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "VERSION\tPERSONA\tRISK\tINSTALLED\tDESCRIPTION")
	_, _ = fmt.Fprintln(tw, "-------\t-------\t----\t---------\t-----------")
	for _, r := range rows {
		installed := ""
		if r.Installed {
			installed = "yes"
		}
		desc := r.Description
		if len(desc) > MaxDescriptionLength {
			desc = desc[:MaxDescriptionLength-3] + "..."
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Version, r.Persona, r.RiskLevel, installed, desc)
	}
	_ = tw.Flush()
	return nil
}

func runArchiveDownload(cmd *cobra.Command, args []string, dir, mirror string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if dir == "" {
		dir = cfg.Settings.DownloadDir
	}
	dir, err = filepath.Abs(dir)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidPath, err.Error())
	}

	cfgDL := download.Config{
		Timeout:     cfg.Settings.HTTPTimeout,
		Concurrency: cfg.Settings.MaxConcurrent,
		OnProgress: func(id string, written, total int64) {
			if written == total {
				logger.Debug("Download finished", logger.Fields{"id": id, "bytes": written})
			}
		},
	}
	if mirror != "" {
		if cfgDL.Mirror, err = download.ParseMirror(mirror); err != nil {
			return err
		}
	}

	items := make([]download.Item, 0, len(args))
	for _, arg := range args {
		release, err := catalog.Find(arg)
		if err != nil {
			return err
		}
		item, err := download.ItemFor(release)
		if err != nil {
			return err
		}
		items = append(items, item)
	}

	results, err := download.New(cfgDL).Download(cmd.Context(), dir, items...)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	if wantJSON(cfg) {
		return writeJSON(cmd.OutOrStdout(), results)
	}
	for _, r := range results {
		logger.Success("Downloaded", logger.Fields{"release": r.ID, "path": r.Path, "reused": r.Reused})
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", r.ID, r.Path)
	}
	return nil
}
