package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/folio/internal/config"
	"github.com/sandevgo/folio/internal/core"
	"github.com/sandevgo/folio/internal/knowledge"
	"github.com/sandevgo/folio/internal/providers/mail"
	"github.com/sandevgo/folio/internal/service/contact"
	"github.com/sandevgo/folio/internal/service/dialogue"
	"github.com/sandevgo/folio/internal/service/session"
	"github.com/sandevgo/folio/internal/storage/sqlite"
	"github.com/sandevgo/folio/internal/transport/telegram"
	"github.com/sandevgo/folio/internal/transport/web"
	"github.com/sandevgo/folio/pkg/log"
	"github.com/sandevgo/folio/pkg/retry"
	"github.com/sandevgo/folio/pkg/srv"
)

type contactSubmitter interface {
	Submit(ctx context.Context, sub core.ContactSubmission) (int64, error)
}

// app is everything the commands share: configuration, the dialogue engine
// and, when mail is configured, the contact relay with its outbox.
type app struct {
	cfg         *config.AppConfig
	kb          *knowledge.Base
	engine      *dialogue.Engine
	sessionOpts []session.Option
	contact     *contact.Service

	// cleanups release storage on shutdown
	cleanups []srv.Service
}

func newApp(ctx context.Context) (*app, error) {
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		return nil, fmt.Errorf("failed to init env: %w", err)
	}

	appCfg := config.NewAppConfig(ctx)
	dialogueCfg := config.NewDialogueConfig(ctx)

	kb, err := knowledge.Load(appCfg.GetKnowledgePath())
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:         appCfg,
		kb:          kb,
		engine:      dialogue.NewEngine(kb),
		sessionOpts: sessionOptions(dialogueCfg),
	}

	mailCfg := config.NewMailConfig(ctx)
	if !mailCfg.IsEnabled() {
		log.FromCtx(ctx).Debug().Msg("mail relay not configured, contact form disabled")
		return a, nil
	}

	if err := a.initContact(ctx, mailCfg); err != nil {
		a.close(ctx)
		return nil, err
	}
	return a, nil
}

func (a *app) initContact(ctx context.Context, mailCfg *config.MailConfig) error {
	db, err := sqlite.NewDB(ctx, a.cfg.GetDatabasePath())
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.cleanups = append(a.cleanups, srv.NewCleanup(db.Close))

	sender, err := mail.NewResendSender(mailCfg)
	if err != nil {
		return err
	}

	a.contact = contact.NewService(sqlite.NewContactsRepo(db), sender, retry.NewDefaultRetrier())
	return nil
}

// contactSubmitter returns nil rather than a typed nil when the relay is off.
func (a *app) contactSubmitter() contactSubmitter {
	if a.contact == nil {
		return nil
	}
	return a.contact
}

func (a *app) close(ctx context.Context) {
	srv.StopServices(ctx, a.cleanups)
}

func sessionOptions(cfg core.DialogueConfig) []session.Option {
	return []session.Option{
		session.WithDelay(session.Delay{
			PerChar: cfg.GetCharDelay(),
			Min:     cfg.GetMinDelay(),
			Max:     cfg.GetMaxDelay(),
		}),
		session.WithMaxQueued(cfg.GetMaxQueued()),
	}
}

// NewServices builds the long-running transports for the start command.
func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)

	a, err := newApp(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize folio")
	}
	services := append([]srv.Service(nil), a.cleanups...)

	transports, err := initTransports(ctx, a)
	if err != nil {
		a.close(ctx)
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}
	if len(transports) == 0 {
		a.close(ctx)
		logger.Fatal().Msg("no transport enabled: set FOLIO_ENABLE_TELEGRAM or FOLIO_ENABLE_WEB, or use 'folio chat'")
	}

	return append(services, transports...)
}

func initTransports(ctx context.Context, a *app) ([]srv.Service, error) {
	var services []srv.Service

	// Telegram Bot
	if a.cfg.IsTelegramSelected() {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, a.engine, a.contactSubmitter(), a.sessionOpts...)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	// Widget API
	if a.cfg.IsWebSelected() {
		webCfg := config.NewWebConfig(ctx)
		services = append(services, web.NewServer(ctx, webCfg, web.Deps{
			Engine:      a.engine,
			Contact:     a.contactSubmitter(),
			SessionOpts: a.sessionOpts,
		}))
	}

	return services, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
