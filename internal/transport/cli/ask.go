package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sandevgo/folio/internal/core"
	"github.com/sandevgo/folio/internal/service/session"
)

// Ask runs one turn per question without the full-screen UI and prints the
// replies as plain text. sess must report to bridge.
func Ask(ctx context.Context, w io.Writer, sess *session.Session, bridge *Bridge, links []core.LinkAction, questions ...string) error {
	defer sess.Teardown()
	defer bridge.Close()

	if err := sess.Open(); err != nil {
		return err
	}

	for _, q := range questions {
		if _, err := sess.Submit(q); err != nil {
			return fmt.Errorf("failed to ask %q: %w", q, err)
		}

		reply, err := awaitReply(ctx, bridge)
		if err != nil {
			return err
		}

		fmt.Fprintln(w, plain(reply.Text))
		if reply.HasLinks {
			for _, l := range links {
				fmt.Fprintf(w, "  %s: %s\n", l.Label, strings.TrimPrefix(l.URL, "mailto:"))
			}
		}
	}
	return nil
}

// awaitReply skips notifications until the assistant answers the last
// submitted question.
func awaitReply(ctx context.Context, bridge *Bridge) (core.Message, error) {
	sawUser := false
	for {
		select {
		case <-ctx.Done():
			return core.Message{}, ctx.Err()
		case ev := <-bridge.events:
			msg, ok := ev.(messageMsg)
			if !ok {
				continue
			}
			if msg.Sender == core.SenderUser {
				sawUser = true
				continue
			}
			if sawUser {
				return core.Message(msg), nil
			}
		}
	}
}
