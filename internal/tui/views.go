package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/glorpus-work/vguard/pkg/model"
	"github.com/glorpus-work/vguard/pkg/orchestrator"
)

var viewTitles = map[orchestrator.ViewID]string{
	orchestrator.ViewDashboard: "Dashboard",
	orchestrator.ViewVersions:  "My Versions",
	orchestrator.ViewLibrary:   "Library",
	orchestrator.ViewCleaner:   "Cleaner",
	orchestrator.ViewWelcome:   "Welcome",
	orchestrator.ViewPrecheck:  "System Check",
	orchestrator.ViewSelect:    "Select Version",
	orchestrator.ViewCleanup:   "Cleanup",
	orchestrator.ViewProgress:  "Protecting",
	orchestrator.ViewComplete:  "Complete",
	orchestrator.ViewError:     "Error",
}

func (m Model) View() string {
	vm := m.orch.View()
	var b strings.Builder

	crumbs := []string{"vguard"}
	for _, v := range vm.History {
		crumbs = append(crumbs, viewTitles[v])
	}
	b.WriteString(headerBarStyle.Render(strings.Join(crumbs, " > ")))
	b.WriteString("\n")

	views := m.orch.Options().Views
	if views.Name == orchestrator.DashboardViews.Name {
		b.WriteString(renderTabs(views, vm.Current))
		b.WriteString("\n\n")
	}

	switch vm.Current {
	case orchestrator.ViewDashboard:
		b.WriteString(m.viewDashboard(vm))
	case orchestrator.ViewVersions:
		b.WriteString(m.viewVersions(vm))
	case orchestrator.ViewLibrary:
		b.WriteString(m.viewLibrary(vm))
	case orchestrator.ViewCleaner:
		b.WriteString(m.viewCleaner(vm))
	case orchestrator.ViewWelcome:
		b.WriteString(m.viewWelcome())
	case orchestrator.ViewPrecheck:
		b.WriteString(m.viewPrecheck(vm))
	case orchestrator.ViewSelect:
		b.WriteString(m.viewSelect(vm))
	case orchestrator.ViewCleanup:
		b.WriteString(m.viewCleanup(vm))
	case orchestrator.ViewProgress:
		b.WriteString(m.viewProgress(vm))
	case orchestrator.ViewComplete, orchestrator.ViewError:
		b.WriteString(m.viewResult(vm))
	}

	if vm.Notice != "" {
		b.WriteString("\n" + selectedStyle.Render(vm.Notice) + "\n")
	}
	if m.busy != "" || m.pending > 0 {
		label := m.busy
		if label == "" {
			label = "Loading"
		}
		b.WriteString("\n" + m.spinner.View() + " " + label + "...\n")
	}
	b.WriteString(footerStyle.Render(m.hints(vm)))
	return b.String()
}

func renderTabs(views orchestrator.ViewSet, current orchestrator.ViewID) string {
	tabs := make([]string, 0, len(views.Views))
	for i, v := range views.Views {
		label := fmt.Sprintf("%d %s", i+1, viewTitles[v])
		if v == current {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) hints(vm orchestrator.ViewModel) string {
	switch {
	case m.busy == "Protecting":
		return "please wait"
	case vm.PendingSwitch != "":
		return "y confirm switch  n cancel"
	case m.confirmProtect:
		return "y delete listed versions  n cancel"
	}
	base := "r refresh  esc back  q quit"
	switch vm.Current {
	case orchestrator.ViewVersions:
		return "↑/↓ move  enter switch  p keep only this  " + base
	case orchestrator.ViewLibrary:
		return "↑/↓ move  " + base
	case orchestrator.ViewCleaner:
		return "c clean now  t toggle cleanup during protection  " + base
	case orchestrator.ViewWelcome, orchestrator.ViewPrecheck:
		return "enter continue  " + base
	case orchestrator.ViewSelect:
		return "↑/↓ move  space select  u unselect  enter continue  " + base
	case orchestrator.ViewCleanup:
		return "t toggle  enter start protection  " + base
	case orchestrator.ViewComplete, orchestrator.ViewError:
		return "s start over  enter quit"
	}
	return "1-4 switch view  tab next  " + base
}

func statusLine(vm orchestrator.ViewModel, app string) string {
	switch vm.Status {
	case orchestrator.StatusProtected:
		return okStyle.Render("● Ready") + dimStyle.Render("  "+vm.Precheck.AppsPath)
	case orchestrator.StatusRisk:
		return warnStyle.Render(fmt.Sprintf("● %s is running. Close it before making changes.", app))
	case orchestrator.StatusNoInstallation:
		return errStyle.Render(fmt.Sprintf("● %s installation not found", app))
	case orchestrator.StatusUnknown:
		msg := "● Status unknown"
		if e := vm.LoadErrors[orchestrator.LoadPrecheck]; e != "" {
			msg += ": " + e
		}
		return dimStyle.Render(msg)
	}
	return dimStyle.Render("● Checking...")
}

func activeLine(vm orchestrator.ViewModel) string {
	switch vm.Active.State {
	case orchestrator.ActiveReported:
		return "Active version: " + selectedStyle.Render(vm.Active.Version.Name)
	case orchestrator.ActiveAssumed:
		return "Active version: " + vm.Active.Version.Name + dimStyle.Render(" (assumed)")
	}
	return "Active version: " + dimStyle.Render("unknown")
}

func cacheLine(vm orchestrator.ViewModel) string {
	if e := vm.LoadErrors[orchestrator.LoadCacheSize]; e != "" {
		return "Cache: " + errStyle.Render(e)
	}
	if !vm.CacheSizeKnown {
		return "Cache: " + dimStyle.Render("...")
	}
	return fmt.Sprintf("Cache: %.1f MB", vm.CacheSizeMB)
}

func (m Model) viewDashboard(vm orchestrator.ViewModel) string {
	var b strings.Builder
	b.WriteString(statusLine(vm, m.opts.AppName) + "\n\n")
	b.WriteString(fmt.Sprintf("Installed versions: %d (%.1f MB)\n", len(vm.Installed), model.TotalSizeMB(vm.Installed)))
	b.WriteString(activeLine(vm) + "\n")
	b.WriteString(cacheLine(vm) + "\n")
	return b.String()
}

func (m Model) versionRows(vm orchestrator.ViewModel, marks bool) string {
	if e := vm.LoadErrors[orchestrator.LoadInstalled]; e != "" {
		return errStyle.Render("Could not load versions: "+e) + "\n"
	}
	if vm.InstalledLoaded && len(vm.Installed) == 0 {
		return dimStyle.Render("No versions installed") + "\n"
	}
	var b strings.Builder
	for i, v := range vm.Installed {
		prefix := "  "
		if i == m.cursor {
			prefix = "> "
		}
		check := ""
		if marks {
			check = "[ ] "
			if vm.Selected != nil && vm.Selected.Path == v.Path {
				check = "[x] "
			}
		}
		line := fmt.Sprintf("%s%s%-20s %8.1f MB", prefix, check, v.Name, v.SizeMB)
		if vm.Active.IsActive(v.Path) {
			line += okStyle.Render("  active")
		}
		if vm.PendingSwitch == v.Path {
			line += warnStyle.Render("  switch here?")
		}
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) viewVersions(vm orchestrator.ViewModel) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Installed versions") + "\n")
	b.WriteString(m.versionRows(vm, false))
	if m.confirmProtect {
		b.WriteString(m.deletionPreview(vm))
	}
	return b.String()
}

func (m Model) deletionPreview(vm orchestrator.ViewModel) string {
	set, err := m.orch.DeletionSet()
	if err != nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n" + warnStyle.Render(fmt.Sprintf("Keep %s and delete %d version(s):", vm.Selected.Name, len(set))) + "\n")
	for _, p := range set {
		b.WriteString("  - " + p + "\n")
	}
	if vm.CacheCleanupEnabled {
		b.WriteString(dimStyle.Render("  cache will be cleaned") + "\n")
	}
	return b.String()
}

func riskStyle(r model.RiskLevel) lipgloss.Style {
	switch r {
	case model.RiskLow:
		return okStyle
	case model.RiskMedium:
		return warnStyle
	}
	return errStyle
}

func (m Model) viewLibrary(vm orchestrator.ViewModel) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Version library") + "\n")
	if e := vm.LoadErrors[orchestrator.LoadArchive]; e != "" {
		return b.String() + errStyle.Render("Could not load archive: "+e) + "\n"
	}
	for i, a := range vm.Archive {
		prefix := "  "
		if i == m.cursor {
			prefix = "> "
		}
		line := fmt.Sprintf("%s%-10s %-22s %s", prefix, a.Version, a.Persona, riskStyle(a.RiskLevel).Render(string(a.RiskLevel)))
		if a.Installed {
			line += okStyle.Render("  installed")
		}
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	if m.cursor < len(vm.Archive) {
		a := vm.Archive[m.cursor]
		b.WriteString("\n" + a.Description + "\n")
		for _, f := range a.Features {
			b.WriteString(dimStyle.Render("  • "+f) + "\n")
		}
	}
	return b.String()
}

func (m Model) viewCleaner(vm orchestrator.ViewModel) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Cache cleaner") + "\n")
	b.WriteString(cacheLine(vm) + "\n")
	b.WriteString(fmt.Sprintf("Clean cache during protection: %s\n", onOff(vm.CacheCleanupEnabled)))
	return b.String()
}

func (m Model) viewWelcome() string {
	return titleStyle.Render("Keep your "+m.opts.AppName+" version") + "\n" +
		"This wizard keeps one installed version, removes the others and blocks automatic updates.\n"
}

func (m Model) viewPrecheck(vm orchestrator.ViewModel) string {
	s := titleStyle.Render("System check") + "\n" + statusLine(vm, m.opts.AppName) + "\n"
	if !canContinue(vm.Status) && vm.Status != orchestrator.StatusChecking {
		s += "\n" + dimStyle.Render("Press r to check again.") + "\n"
	}
	return s
}

func (m Model) viewSelect(vm orchestrator.ViewModel) string {
	return titleStyle.Render("Which version do you want to keep?") + "\n" + m.versionRows(vm, true)
}

func (m Model) viewCleanup(vm orchestrator.ViewModel) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Cleanup") + "\n")
	b.WriteString(cacheLine(vm) + "\n")
	b.WriteString(fmt.Sprintf("Clean cache: %s\n", onOff(vm.CacheCleanupEnabled)))
	if vm.Selected != nil {
		b.WriteString(m.deletionPreview(vm))
	}
	return b.String()
}

func (m Model) viewProgress(vm orchestrator.ViewModel) string {
	msg := vm.Run.Message
	if m.lastEvent.Msg != "" && m.lastEvent.Percent >= vm.Run.Percent {
		msg = m.lastEvent.Msg
	}
	pct := vm.Run.Percent
	if m.lastEvent.Percent > pct {
		pct = m.lastEvent.Percent
	}
	return titleStyle.Render("Protecting") + "\n" + m.bar.ViewAs(float64(pct)/100) + "\n\n" + msg + "\n"
}

func (m Model) viewResult(vm orchestrator.ViewModel) string {
	var b strings.Builder
	if vm.Run.Phase == orchestrator.RunSucceeded {
		b.WriteString(okStyle.Render("Protection complete") + "\n\n")
	} else {
		b.WriteString(errStyle.Render("Protection failed") + "\n")
		if vm.Run.Error != "" {
			b.WriteString(vm.Run.Error + "\n")
		}
		b.WriteString("\n")
	}
	for _, l := range vm.Run.Logs {
		switch l.Severity {
		case model.SeverityOK:
			b.WriteString(okStyle.Render("✓ "+l.Text) + "\n")
		case model.SeverityWarn:
			b.WriteString(warnStyle.Render("! "+l.Text) + "\n")
		default:
			b.WriteString("  " + l.Text + "\n")
		}
	}
	return b.String()
}

func onOff(b bool) string {
	if b {
		return okStyle.Render("on")
	}
	return dimStyle.Render("off")
}
