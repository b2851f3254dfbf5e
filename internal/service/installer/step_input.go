package installer

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// InputStep collects a single value. It completes immediately when skip
// reports true for the current state.
type InputStep struct {
	input  textinput.Model
	prompt string
	skip   func(*InstallState) bool
	apply  func(*InstallState, string) error
	err    error
}

func newInputStep(prompt, placeholder string, secret bool) *InputStep {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 40
	ti.Placeholder = placeholder
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return &InputStep{input: ti, prompt: prompt}
}

func NewTelegramTokenStep() Step {
	s := newInputStep("Enter your Telegram Bot Token:", "123456789:ABCDEF...", true)
	s.skip = func(state *InstallState) bool { return state.Channel != ChannelTelegram }
	s.apply = func(state *InstallState, v string) error {
		if v == "" {
			return fmt.Errorf("a bot token is required for Telegram")
		}
		state.Settings.TelegramToken = v
		return nil
	}
	return s
}

func NewResendKeyStep() Step {
	s := newInputStep("Enter your Resend API Key for the contact form (optional):", "re_... or press Enter to skip", true)
	s.apply = func(state *InstallState, v string) error {
		state.Settings.ResendAPIKey = v
		return nil
	}
	return s
}

func NewMailToStep() Step {
	s := newInputStep("Which inbox should contact messages go to?", "you@example.com", false)
	s.skip = func(state *InstallState) bool { return state.Settings.ResendAPIKey == "" }
	s.apply = func(state *InstallState, v string) error {
		addr, err := mail.ParseAddress(v)
		if err != nil {
			return fmt.Errorf("%q is not a valid email address", v)
		}
		state.Settings.MailTo = addr.Address
		return nil
	}
	return s
}

func (s *InputStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *InputStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.skip != nil && s.skip(state) {
		return nil, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		if err := s.apply(state, strings.TrimSpace(s.input.Value())); err != nil {
			s.err = err
			return s, nil
		}
		return nil, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *InputStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString(s.prompt + "\n\n")
	b.WriteString(s.input.View() + "\n\n")
	if s.err != nil {
		b.WriteString(errorStyle.Render(s.err.Error()) + "\n\n")
	}
	b.WriteString("(press enter to confirm)\n")
	return b.String()
}
