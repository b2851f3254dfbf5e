package command

import "context"

type ResetCommand struct {
	sessions  sessionDropper
	formatter *ResponseFormatter
}

func NewResetCommand(sessions sessionDropper) *ResetCommand {
	return &ResetCommand{
		sessions:  sessions,
		formatter: NewResponseFormatter(),
	}
}

func (c *ResetCommand) Name() string {
	return "reset"
}

func (c *ResetCommand) Description() string {
	return "Forget this conversation and start over"
}

func (c *ResetCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	c.sessions.Drop(sessionID)
	return c.formatter.Success("Conversation cleared. Say hi to start again."), nil
}
