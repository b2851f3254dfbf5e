package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/folio/internal/core"
	"github.com/sandevgo/folio/pkg/conv"
	"github.com/sandevgo/folio/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const maxTelegramMsgLen = 4000 // Safety margin below 4096

type api interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

type sender struct {
	api   api
	links []core.LinkAction
}

func newSender(api api, links []core.LinkAction) *sender {
	return &sender{api: api, links: links}
}

// sendMarkdown converts Markdown to Telegram HTML and sends it in chunks if
// needed. markup, when set, goes with the last chunk.
func (s *sender) sendMarkdown(ctx context.Context, to tele.Recipient, md string, markup *tele.ReplyMarkup) error {
	logger := log.FromCtx(ctx)
	html := strings.TrimSpace(conv.MarkdownToTelegramHTML([]byte(md)))
	if html == "" {
		return nil
	}

	chunks := splitHTML(html, maxTelegramMsgLen)
	for i, chunk := range chunks {
		opts := []interface{}{tele.ModeHTML}
		if markup != nil && i == len(chunks)-1 {
			opts = append(opts, markup)
		}

		if _, err := s.api.Send(to, chunk, opts...); err != nil {
			logger.Error().Err(err).Int("chunk", i).Int("len", len(chunk)).Msg("failed to send telegram chunk")
			return err
		}
	}
	return nil
}

// sendReply sends an assistant message. Replies flagged with links get the
// link buttons; the email address is spelled out since Telegram buttons only
// open web links.
func (s *sender) sendReply(ctx context.Context, to tele.Recipient, msg core.Message) error {
	if !msg.HasLinks {
		return s.sendMarkdown(ctx, to, msg.Text, nil)
	}

	text := msg.Text
	markup, email := linkMarkup(s.links)
	if email != "" {
		text += fmt.Sprintf("\n\nEmail: %s", email)
	}
	return s.sendMarkdown(ctx, to, text, markup)
}

// linkMarkup builds one URL button per web link and returns the mail
// address separately.
func linkMarkup(links []core.LinkAction) (*tele.ReplyMarkup, string) {
	markup := &tele.ReplyMarkup{}
	var (
		buttons []tele.Btn
		email   string
	)
	for _, l := range links {
		if addr, ok := strings.CutPrefix(l.URL, "mailto:"); ok {
			email = addr
			continue
		}
		buttons = append(buttons, markup.URL(l.Label, l.URL))
	}
	if len(buttons) == 0 {
		return nil, email
	}

	rows := make([]tele.Row, 0, (len(buttons)+1)/2)
	for i := 0; i < len(buttons); i += 2 {
		end := min(i+2, len(buttons))
		rows = append(rows, markup.Row(buttons[i:end]...))
	}
	markup.Inline(rows...)
	return markup, email
}

// splitHTML splits text into chunks respecting Telegram's limit.
// It tries to split at newlines to preserve formatting.
func splitHTML(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			chunks = append(chunks, text)
			break
		}

		cut := maxLen
		// Prefer a newline in the last two thirds of the chunk
		if idx := strings.LastIndex(text[:maxLen], "\n"); idx > maxLen/3 {
			cut = idx
		}

		chunks = append(chunks, text[:cut])
		text = strings.TrimSpace(text[cut:])
	}
	return chunks
}
