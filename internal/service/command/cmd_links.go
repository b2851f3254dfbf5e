package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/folio/internal/knowledge"
)

type LinksCommand struct {
	kb        *knowledge.Base
	formatter *ResponseFormatter
}

func NewLinksCommand(kb *knowledge.Base) *LinksCommand {
	return &LinksCommand{
		kb:        kb,
		formatter: NewResponseFormatter(),
	}
}

func (c *LinksCommand) Name() string {
	return "links"
}

func (c *LinksCommand) Description() string {
	return "Show profile links"
}

func (c *LinksCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	actions := c.kb.LinkActions()
	if len(actions) == 0 {
		return c.formatter.Info("No links are published yet."), nil
	}

	items := make([]string, 0, len(actions))
	for _, a := range actions {
		items = append(items, c.formatter.Link(a.Label, strings.TrimPrefix(a.URL, "mailto:")))
	}

	links := c.kb.Links()
	if links.Twitter != "" {
		items = append(items, c.formatter.Link("Twitter", links.Twitter))
	}
	if links.Website != "" {
		items = append(items, c.formatter.Link("Website", links.Website))
	}

	return c.formatter.Combine(
		c.formatter.Info(fmt.Sprintf("%s online", c.kb.Personal().Name)),
		c.formatter.List(items),
	), nil
}
