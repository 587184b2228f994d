// Package tui renders the orchestrator as a terminal dashboard or wizard.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/glorpus-work/vguard/pkg/model"
	"github.com/glorpus-work/vguard/pkg/orchestrator"
)

const eventBuffer = 32

type loadsDoneMsg struct {
	applied int
}

type refreshTickMsg time.Time

type eventMsg orchestrator.Event

type protectDoneMsg struct {
	out *orchestrator.Outcome
	err error
}

type switchDoneMsg struct {
	res model.SwitchResult
	err error
}

type cleanDoneMsg struct {
	res model.CacheCleanResult
	err error
}

// Options configure the terminal UI.
type Options struct {
	// AppName is shown in titles and the header.
	AppName string
	// RefreshInterval re-runs the precheck periodically. Zero disables it.
	RefreshInterval time.Duration
}

// Model is the bubbletea model. All state that matters lives in the orchestrator; the
// model only keeps cursor and in-flight bookkeeping.
type Model struct {
	orch *orchestrator.Orchestrator
	ctx  context.Context
	opts Options

	cursor         int
	pending        int
	busy           string
	confirmProtect bool
	events         chan orchestrator.Event
	lastEvent      orchestrator.Event

	spinner spinner.Model
	bar     progress.Model

	width  int
	height int
}

// New creates a model for o. The context bounds every backend call the UI issues.
func New(ctx context.Context, o *orchestrator.Orchestrator, opts Options) Model {
	if opts.AppName == "" {
		opts.AppName = "CapCut"
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle

	return Model{
		orch:    o,
		ctx:     ctx,
		opts:    opts,
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

// Run starts the program in the alternate screen and blocks until the user quits.
func Run(ctx context.Context, o *orchestrator.Orchestrator, opts Options) error {
	p := tea.NewProgram(New(ctx, o, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.loadCmd(m.orch.Reload())}
	if m.opts.RefreshInterval > 0 {
		cmds = append(cmds, m.tickCmd())
	}
	return tea.Batch(cmds...)
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.opts.RefreshInterval, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

func (m Model) loadCmd(loads []orchestrator.Load) tea.Cmd {
	if len(loads) == 0 {
		return nil
	}
	o, ctx := m.orch, m.ctx
	return func() tea.Msg {
		return loadsDoneMsg{applied: o.RunLoads(ctx, loads)}
	}
}

func listenEvents(ch chan orchestrator.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg(e)
	}
}

// startProtect runs one protection in the background and streams its progress events.
func (m Model) startProtect() (Model, tea.Cmd) {
	ch := make(chan orchestrator.Event, eventBuffer)
	m.events = ch
	m.busy = "Protecting"
	m.confirmProtect = false
	m.lastEvent = orchestrator.Event{}
	m.orch.Hooks.OnEvent = func(e orchestrator.Event) {
		select {
		case ch <- e:
		default:
		}
	}
	o, ctx := m.orch, m.ctx
	run := func() tea.Msg {
		defer close(ch)
		out, err := o.Protect(ctx)
		return protectDoneMsg{out: out, err: err}
	}
	return m, tea.Batch(run, listenEvents(ch), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.busy != "" || m.pending > 0 {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case refreshTickMsg:
		return m, tea.Batch(m.loadCmd(m.orch.Refresh(orchestrator.LoadPrecheck)), m.tickCmd())

	case loadsDoneMsg:
		if m.pending > 0 {
			m.pending--
		}
		m.clampCursor()
		return m, nil

	case eventMsg:
		if msg.Percent >= m.lastEvent.Percent {
			m.lastEvent = orchestrator.Event(msg)
		}
		return m, listenEvents(m.events)

	case protectDoneMsg:
		m.busy = ""
		m.orch.Hooks.OnEvent = nil
		if msg.out == nil {
			// refused before anything ran; the orchestrator state is untouched
			return m, nil
		}
		if m.orch.Options().Views.Has(orchestrator.ViewComplete) {
			next := orchestrator.ViewComplete
			if !msg.out.Success {
				next = orchestrator.ViewError
			}
			return m.navigate(next)
		}
		return m.reload()

	case switchDoneMsg:
		m.busy = ""
		return m, nil

	case cleanDoneMsg:
		m.busy = ""
		return m.reloadKinds(orchestrator.LoadCacheSize)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) navigate(view orchestrator.ViewID) (Model, tea.Cmd) {
	m.cursor = 0
	m.confirmProtect = false
	m.orch.ClearNotice()
	loads := m.orch.Navigate(view)
	if len(loads) > 0 {
		m.pending++
	}
	return m, tea.Batch(m.loadCmd(loads), m.spinner.Tick)
}

func (m Model) reload() (Model, tea.Cmd) {
	loads := m.orch.Reload()
	if len(loads) > 0 {
		m.pending++
	}
	return m, m.loadCmd(loads)
}

func (m Model) reloadKinds(kinds ...orchestrator.LoadKind) (Model, tea.Cmd) {
	m.pending++
	return m, m.loadCmd(m.orch.Refresh(kinds...))
}

// listLen is the number of rows the cursor moves over on the current view.
func (m Model) listLen() int {
	vm := m.orch.View()
	switch vm.Current {
	case orchestrator.ViewVersions, orchestrator.ViewSelect:
		return len(vm.Installed)
	case orchestrator.ViewLibrary:
		return len(vm.Archive)
	}
	return 0
}

func (m *Model) clampCursor() {
	n := m.listLen()
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
