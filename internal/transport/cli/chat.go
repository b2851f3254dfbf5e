// Package cli is the terminal chat shell.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sandevgo/folio/internal/core"
	"github.com/sandevgo/folio/internal/service/session"
	"github.com/sandevgo/folio/internal/service/ui"
	"github.com/sandevgo/folio/pkg/conv"
	"github.com/sandevgo/folio/pkg/log"
)

const (
	headerHeight = 2
	inputHeight  = 3
	footerHeight = 2
)

type entry struct {
	sender   core.Sender
	text     string
	hasLinks bool
	notice   bool
}

// Model is the bubbletea chat widget bound to one session.
type Model struct {
	ctx     context.Context
	sess    *session.Session
	bridge  *Bridge
	router  core.CmdRouter
	links   []core.LinkAction
	title   string
	entries []entry

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	ready    bool
	typing   bool
	open     bool
	status   string
	width    int
}

func NewModel(ctx context.Context, sess *session.Session, bridge *Bridge, router core.CmdRouter, links []core.LinkAction, title string) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask about education, experience, skills or projects..."
	ti.CharLimit = 500
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = ui.NoticeStyle

	return Model{
		ctx:     ctx,
		sess:    sess,
		bridge:  bridge,
		router:  router,
		links:   links,
		title:   title,
		input:   ti,
		spinner: sp,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.bridge.wait(),
		openCmd(m.sess),
	)
}

type openedMsg struct{ err error }

func openCmd(sess *session.Session) tea.Cmd {
	return func() tea.Msg {
		return openedMsg{err: sess.Open()}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		height := msg.Height - headerHeight - inputHeight - footerHeight
		if height < 1 {
			height = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.input.Width = msg.Width - 6
		m.refresh()

	case openedMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.open = true
		m.typing = m.sess.State() == session.Presenting

	case messageMsg:
		m.entries = append(m.entries, entry{
			sender:   msg.Sender,
			text:     msg.Text,
			hasLinks: msg.HasLinks,
		})
		m.refresh()
		cmds = append(cmds, m.bridge.wait())

	case typingMsg:
		m.typing = bool(msg)
		if m.typing {
			cmds = append(cmds, m.spinner.Tick)
		}
		cmds = append(cmds, m.bridge.wait())

	case spinner.TickMsg:
		if m.typing {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.bridge.Close()
			return m, tea.Quit
		case tea.KeyEsc:
			return m.toggle()
		case tea.KeyEnter:
			return m.submit()
		}
	}

	var cmd tea.Cmd
	if m.open {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// toggle closes or reopens the widget. A pending reply keeps running.
func (m Model) toggle() (tea.Model, tea.Cmd) {
	if m.open {
		m.sess.Close()
		m.open = false
		m.input.Blur()
		return m, nil
	}
	m.input.Focus()
	return m, openCmd(m.sess)
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if !m.open {
		return m, nil
	}

	text := m.input.Value()
	m.input.Reset()
	m.status = ""

	if out, ok := m.router.Execute(m.ctx, m.sess.ID(), text); ok {
		m.entries = append(m.entries, entry{text: out, notice: true})
		m.refresh()
		return m, nil
	}

	queued, err := m.sess.Submit(text)
	switch {
	case errors.Is(err, session.ErrEmptyInput):
	case errors.Is(err, session.ErrBusy):
		m.status = "Still answering, please wait a moment."
	case err != nil:
		log.FromCtx(m.ctx).Error().Err(err).Msg("failed to submit message")
		m.status = err.Error()
	case queued:
		m.status = "Queued, I'll get to that next."
	}
	return m, nil
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	body := lipgloss.NewStyle().Width(width - 2)

	var b strings.Builder
	for _, e := range m.entries {
		switch {
		case e.notice:
			b.WriteString(body.Render(plain(e.text)) + "\n\n")
		case e.sender == core.SenderUser:
			b.WriteString(ui.UserStyle.Render("You") + "\n")
			b.WriteString(body.Render(e.text) + "\n\n")
		default:
			b.WriteString(ui.AssistantStyle.Render(m.title) + "\n")
			b.WriteString(body.Render(plain(e.text)) + "\n")
			if e.hasLinks {
				b.WriteString(renderLinks(m.links) + "\n")
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) View() string {
	if !m.ready {
		return "Loading...\n"
	}

	header := ui.TitleStyle.Render(m.title)
	if !m.open {
		return header + "\n" + ui.DescStyle.Render("Chat closed. Press esc to open it again, ctrl+c to quit.") + "\n"
	}

	status := ui.DescStyle.Render("enter send · esc close · ctrl+c quit")
	switch {
	case m.typing:
		status = m.spinner.View() + ui.NoticeStyle.Render(" thinking…")
	case m.status != "":
		status = ui.ErrorStyle.Render(m.status)
	}

	return fmt.Sprintf("%s\n%s\n%s\n%s",
		header,
		m.viewport.View(),
		ui.InputBoxStyle.Render(m.input.View()),
		status,
	)
}

// renderLinks draws one button per link, label and target on the same line.
func renderLinks(links []core.LinkAction) string {
	buttons := make([]string, 0, len(links))
	for _, l := range links {
		target := strings.TrimPrefix(l.URL, "mailto:")
		buttons = append(buttons, ui.LinkButtonStyle.Render(l.Label+" "+ui.DescStyle.Render(target)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, buttons...)
}

func plain(md string) string {
	text, err := conv.MarkdownToText([]byte(md))
	if err != nil {
		return md
	}
	return text
}

// Run starts the full-screen chat and blocks until the user quits. The
// session is torn down on return.
func Run(ctx context.Context, sess *session.Session, bridge *Bridge, router core.CmdRouter, links []core.LinkAction, title string) error {
	defer sess.Teardown()
	defer bridge.Close()

	p := tea.NewProgram(
		NewModel(ctx, sess, bridge, router, links, title),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
