package installer

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/folio/configs"
)

// FinalizationStep fills derived values
type FinalizationStep struct{}

func NewFinalizationStep() Step {
	return &FinalizationStep{}
}

func (s *FinalizationStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *FinalizationStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	state.Settings.EnableTelegram = state.Settings.TelegramToken != ""

	if state.Settings.ResendAPIKey == "" {
		state.Settings.MailTo = ""
	}
	if state.Settings.Debug == "" {
		state.Settings.Debug = "0"
	}

	// The runtime copy written by InitializeFilesStep.
	state.Settings.KnowledgePath = configs.KnowledgeFile

	return nil, nil
}

func (s *FinalizationStep) View(state *InstallState) string {
	return "Finalizing configuration...\n"
}
