package core

import "context"

// CommandPrefix starts every slash command, in every shell.
const CommandPrefix = "/"

// CmdRouter dispatches slash commands. Execute reports false when input is
// not a command, so the caller hands it to the dialogue instead.
type CmdRouter interface {
	Execute(ctx context.Context, sessionID, input string) (string, bool)
	ListCommands() []Command
}

// Command is one slash command. Errors are shown to the visitor as-is.
type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, sessionID string, args []string) (string, error)
}
