// Package telegram serves the assistant as a Telegram bot, one session per chat.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/sandevgo/folio/internal/core"
	"github.com/sandevgo/folio/internal/service/command"
	"github.com/sandevgo/folio/internal/service/dialogue"
	"github.com/sandevgo/folio/internal/service/session"
	"github.com/sandevgo/folio/internal/service/state"
	"github.com/sandevgo/folio/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const baseContextKey = "base_context"

type contactSubmitter interface {
	Submit(ctx context.Context, sub core.ContactSubmission) (int64, error)
}

type Bot struct {
	bot      *tele.Bot
	sender   *sender
	sessions *state.Registry
	router   core.CmdRouter
}

// NewBot wires the bot. contact may be nil when mail is not configured.
func NewBot(
	ctx context.Context,
	cfg core.TelegramConfig,
	engine *dialogue.Engine,
	contact contactSubmitter,
	opts ...session.Option,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.GetTelegramToken(),
		Poller: &tele.LongPoller{Timeout: cfg.GetPollTimeout()},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:    b,
		sender: newSender(b, engine.LinkActions()),
	}
	bot.sessions = state.NewRegistry(bot.sessionFactory(engine, opts))

	bot.router = command.New(command.NewCommands(engine.Knowledge(), contact, bot.sessions))

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	b.Handle("/start", bot.handleStart)
	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) sessionFactory(engine *dialogue.Engine, opts []session.Option) state.Factory {
	return func(ctx context.Context, id string) *session.Session {
		chatID, _ := strconv.ParseInt(id, 10, 64)
		obs := &chatObserver{
			ctx:    ctx,
			chat:   tele.ChatID(chatID),
			sender: b.sender,
			typing: func() { _ = b.bot.Notify(tele.ChatID(chatID), tele.Typing) },
		}
		sessionOpts := append(slices.Clone(opts), session.WithObserver(obs))
		return session.New(ctx, id, engine, sessionOpts...)
	}
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return b.sessions.Shutdown(ctx)
}

func sessionID(c tele.Context) string {
	return strconv.FormatInt(c.Chat().ID, 10)
}

// handleStart opens the chat, which posts the greeting once per session.
func (b *Bot) handleStart(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)

	sess, err := b.sessions.Get(ctx, sessionID(c))
	if err != nil {
		return err
	}
	return sess.Open()
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)
	id := sessionID(c)

	if out, ok := b.router.Execute(ctx, id, c.Text()); ok {
		return b.sender.sendMarkdown(ctx, c.Chat(), out, nil)
	}

	sess, err := b.sessions.Get(ctx, id)
	if err != nil {
		return err
	}
	if sess.State() == session.Idle {
		if err := sess.Open(); err != nil {
			return err
		}
	}

	_, err = sess.Submit(c.Text())
	switch {
	case err == nil, errors.Is(err, session.ErrEmptyInput):
		return nil
	case errors.Is(err, session.ErrBusy):
		return c.Send("I'm still answering your earlier messages, one moment please.")
	default:
		logger.Error().Err(err).Str("session", id).Msg("failed to submit telegram message")
		return c.Send("Something went wrong, please try /start again.")
	}
}

// chatObserver posts assistant replies to one chat.
type chatObserver struct {
	ctx    context.Context
	chat   tele.Recipient
	sender *sender
	typing func()
}

func (o *chatObserver) OnMessage(msg core.Message) {
	if msg.Sender != core.SenderAssistant {
		return
	}
	if err := o.sender.sendReply(o.ctx, o.chat, msg); err != nil {
		log.FromCtx(o.ctx).Error().Err(err).Msg("failed to deliver reply")
	}
}

func (o *chatObserver) OnTyping(typing bool) {
	if typing && o.typing != nil {
		o.typing()
	}
}
