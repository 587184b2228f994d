package tui

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glorpus-work/vguard/pkg/orchestrator"
)

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	// a running protection, switch or clean owns the input
	if m.busy != "" {
		return m, nil
	}

	vm := m.orch.View()

	if vm.PendingSwitch != "" {
		switch key {
		case "y", "enter":
			m.busy = "Switching"
			o, ctx := m.orch, m.ctx
			return m, tea.Batch(func() tea.Msg {
				res, err := o.ConfirmSwitch(ctx)
				return switchDoneMsg{res: res, err: err}
			}, m.spinner.Tick)
		case "n", "esc":
			m.orch.CancelSwitch()
		}
		return m, nil
	}

	if m.confirmProtect {
		switch key {
		case "y", "enter":
			return m.startProtect()
		case "n", "esc":
			m.confirmProtect = false
			m.orch.ClearSelection()
		}
		return m, nil
	}

	switch key {
	case "q":
		return m, tea.Quit
	case "esc", "backspace":
		if m.orch.GoBack() {
			m.cursor = 0
			return m.reload()
		}
		return m, nil
	case "r":
		return m.reload()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < m.listLen()-1 {
			m.cursor++
		}
		return m, nil
	}

	views := m.orch.Options().Views
	if views.Name == orchestrator.DashboardViews.Name {
		if next, ok := tabTarget(views, vm.Current, key); ok {
			return m.navigate(next)
		}
		return m.dashboardKey(vm, key)
	}
	return m.wizardKey(vm, key)
}

// tabTarget maps number keys and tab/shift+tab to a sidebar view.
func tabTarget(views orchestrator.ViewSet, current orchestrator.ViewID, key string) (orchestrator.ViewID, bool) {
	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(views.Views) {
		return views.Views[n-1], true
	}
	idx := 0
	for i, v := range views.Views {
		if v == current {
			idx = i
		}
	}
	switch key {
	case "tab":
		return views.Views[(idx+1)%len(views.Views)], true
	case "shift+tab":
		return views.Views[(idx+len(views.Views)-1)%len(views.Views)], true
	}
	return "", false
}

func (m Model) dashboardKey(vm orchestrator.ViewModel, key string) (tea.Model, tea.Cmd) {
	switch vm.Current {
	case orchestrator.ViewVersions:
		if m.cursor >= len(vm.Installed) {
			return m, nil
		}
		switch key {
		case "enter", "s":
			_ = m.orch.RequestSwitch(vm.Installed[m.cursor].Path)
		case "p":
			if m.orch.Select(m.cursor) {
				m.confirmProtect = true
			}
		}
	case orchestrator.ViewCleaner:
		switch key {
		case "t":
			m.orch.ToggleCacheCleanup()
		case "c", "enter":
			m.busy = "Cleaning"
			o, ctx := m.orch, m.ctx
			return m, tea.Batch(func() tea.Msg {
				res, err := o.CleanCache(ctx)
				return cleanDoneMsg{res: res, err: err}
			}, m.spinner.Tick)
		}
	}
	return m, nil
}

func (m Model) wizardKey(vm orchestrator.ViewModel, key string) (tea.Model, tea.Cmd) {
	switch vm.Current {
	case orchestrator.ViewWelcome:
		if key == "enter" {
			return m.navigate(orchestrator.ViewPrecheck)
		}
	case orchestrator.ViewPrecheck:
		if key == "enter" && canContinue(vm.Status) {
			return m.navigate(orchestrator.ViewSelect)
		}
	case orchestrator.ViewSelect:
		switch key {
		case " ", "x":
			m.orch.Select(m.cursor)
		case "u":
			m.orch.ClearSelection()
		case "enter":
			if vm.Selected == nil && !m.orch.Select(m.cursor) {
				return m, nil
			}
			return m.navigate(orchestrator.ViewCleanup)
		}
	case orchestrator.ViewCleanup:
		switch key {
		case "t", " ":
			m.orch.ToggleCacheCleanup()
		case "enter":
			if !vm.CanProtect {
				return m, nil
			}
			var nav, run tea.Cmd
			m, nav = m.navigate(orchestrator.ViewProgress)
			m, run = m.startProtect()
			return m, tea.Batch(run, nav)
		}
	case orchestrator.ViewComplete, orchestrator.ViewError:
		switch key {
		case "enter":
			return m, tea.Quit
		case "s":
			m.orch.ResetRun()
			m.orch.ClearSelection()
			m.cursor = 0
			return m.navigate(orchestrator.ViewWelcome)
		}
	}
	return m, nil
}

// canContinue gates the wizard on the precheck. An unknown status does not block.
func canContinue(s orchestrator.PrecheckStatus) bool {
	return s == orchestrator.StatusProtected || s == orchestrator.StatusUnknown
}
