package command

import (
	"context"

	"github.com/sandevgo/folio/internal/core"
	"github.com/sandevgo/folio/internal/knowledge"
)

type contactSubmitter interface {
	Submit(ctx context.Context, sub core.ContactSubmission) (int64, error)
}

type sessionDropper interface {
	Drop(id string)
}

// NewCommands assembles the slash commands. Nil collaborators leave their
// commands out.
func NewCommands(
	kb *knowledge.Base,
	contact contactSubmitter,
	sessions sessionDropper,
) []core.Command {
	commands := []core.Command{
		NewLinksCommand(kb),
	}
	if contact != nil {
		commands = append(commands, NewContactCommand(contact))
	}
	if sessions != nil {
		commands = append(commands, NewResetCommand(sessions))
	}
	return append(commands, NewHelpCommand(commands))
}
