package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/folio/internal/core"
)

type Router struct {
	commands map[string]core.Command
	order    []core.Command
}

func New(commands []core.Command) *Router {
	c := &Router{
		commands: make(map[string]core.Command),
	}

	for _, cmd := range commands {
		if _, dup := c.commands[cmd.Name()]; !dup {
			c.order = append(c.order, cmd)
		}
		c.commands[cmd.Name()] = cmd
	}
	return c
}

// Execute runs input as a slash command. The bool is false when input is
// not a command and should go to the dialogue engine instead.
func (c *Router) Execute(ctx context.Context, sessionID, input string) (string, bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, core.CommandPrefix) {
		return "", false
	}

	parts := strings.Fields(input)
	name := strings.TrimPrefix(parts[0], core.CommandPrefix)
	// Telegram appends the bot name in groups: /links@folio_bot
	name, _, _ = strings.Cut(name, "@")
	args := parts[1:]

	cmd, ok := c.commands[name]
	if !ok {
		return fmt.Sprintf("Unknown command: /%s. Try /help.", name), true
	}

	result, err := cmd.Execute(ctx, sessionID, args)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), true
	}
	return result, true
}

func (c *Router) ListCommands() []core.Command {
	res := make([]core.Command, len(c.order))
	copy(res, c.order)
	return res
}
