package bubbletea

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/wizard"
	"github.com/rivo/uniseg"
)

var _ tea.Model = Model{}

// Model is the Bubble Tea model for the wizard TUI.
type Model struct {
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model
	Spinner  spinner.Model

	streamer Streamer
	sub      *Subscription
	url      string
	req      wizard.Request
	theme    wizard.Theme
	styles   Styles

	state wizard.State
	err   error
	ready bool
}

// New creates a Model that starts req against url when initialized and
// renders the states published to sub.
func New(s Streamer, sub *Subscription, url string, req wizard.Request, theme wizard.Theme) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		Spinner:  sp,
		streamer: s,
		sub:      sub,
		url:      url,
		req:      req,
		theme:    theme,
		styles:   NewStyles(theme),
	}
}

// State returns the last state the model received.
func (m Model) State() wizard.State { return m.state }

// Err returns the error Start returned, if any.
func (m Model) Err() error { return m.err }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Spinner.Tick, m.start(), m.sub.wait())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StateMsg:
		m.state = msg.State
		m.refresh()
		return m, m.sub.wait()

	case startErrMsg:
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	headerHeight := 1
	statusHeight := 1
	borderHeight := 2
	vpHeight := max(msg.Height-headerHeight-statusHeight-borderHeight, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.refresh()
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if m.state.IsStreaming() {
			m.streamer.Reset()
			return m, nil
		}
		return m, tea.Quit
	case "q":
		if !m.state.IsStreaming() {
			return m, tea.Quit
		}
		return m, nil
	case "r":
		if m.state.IsStreaming() {
			return m, nil
		}
		m.err = nil
		return m, m.start()
	}
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

func (m Model) start() tea.Cmd {
	s, url, req := m.streamer, m.url, m.req
	return func() tea.Msg {
		if err := s.Start(context.Background(), url, req); err != nil {
			return startErrMsg{err: err}
		}
		return nil
	}
}

// refresh re-renders the output area and keeps it scrolled to the end.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
}

// blocks derives the output blocks from the current state. Items take
// precedence over the raw text they were reconstructed from.
func (m Model) blocks() []Block {
	var out []Block
	for _, item := range m.state.PartialData {
		out = append(out, ItemBlock{Item: item, Theme: m.theme})
	}
	if len(out) == 0 && m.state.Text != "" && m.state.FinalData == nil {
		out = append(out, TextBlock{Text: m.state.Text, Styles: m.styles})
	}
	if m.state.FinalData != nil && len(m.state.PartialData) == 0 {
		out = append(out, ResultBlock{Data: m.state.FinalData, Styles: m.styles})
	}
	if m.state.Error != "" {
		out = append(out, ErrorBlock{Message: m.state.Error, Styles: m.styles})
	}
	return out
}

func (m Model) renderContent() string {
	blocks := m.blocks()
	views := make([]string, len(blocks))
	for i, b := range blocks {
		views[i] = b.View(m.Viewport.Width)
	}
	return strings.Join(views, "\n\n")
}

func (m Model) header() string {
	title := m.req.Feature
	if m.req.Step != "" {
		title += " / " + m.req.Step
	}
	return m.styles.Title.Render(title)
}

func (m Model) statusLine() string {
	if m.err != nil {
		return m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err))
	}
	s := m.state
	switch s.Phase {
	case wizard.PhaseConnecting:
		msg := "Connecting..."
		if s.Retries > 0 {
			msg = fmt.Sprintf("Reconnecting (retry %d)...", s.Retries)
		}
		return m.Spinner.View() + " " + m.styles.Pending.Render(msg)
	case wizard.PhaseStreaming:
		return m.Spinner.View() + " " + m.styles.Muted.Render(fmt.Sprintf(
			"Streaming... %d items, %d chars  ctrl+c to cancel",
			len(s.PartialData), uniseg.GraphemeClusterCount(s.Text)))
	case wizard.PhaseComplete:
		return m.styles.Success.Render(fmt.Sprintf("Complete: %d items", len(s.PartialData))) +
			m.styles.Muted.Render("  r to restart, q to quit")
	case wizard.PhaseError:
		return m.styles.Error.Render("Failed") + m.styles.Muted.Render("  r to retry, q to quit")
	case wizard.PhaseEnded:
		return m.styles.Pending.Render("Stream ended without a result") + m.styles.Muted.Render("  r to retry, q to quit")
	default:
		return m.styles.Muted.Render("Idle  r to start, q to quit")
	}
}
