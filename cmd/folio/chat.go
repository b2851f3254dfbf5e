package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sandevgo/folio/internal/config"
	"github.com/sandevgo/folio/internal/service/command"
	"github.com/sandevgo/folio/internal/service/session"
	"github.com/sandevgo/folio/internal/transport/cli"
	"github.com/sandevgo/folio/pkg/log"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:          "chat",
	Short:        "Chat with the assistant in the terminal",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// The UI owns the terminal, so logs go to a file.
		logFile, err := log.OpenFile(config.GetLogPath())
		if err != nil {
			return err
		}
		defer logFile.Close()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx, logFile)
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		bridge := cli.NewBridge()
		opts := append(a.sessionOpts, session.WithObserver(bridge))
		sess := session.New(ctx, uuid.NewString(), a.engine, opts...)

		router := command.New(command.NewCommands(a.kb, a.contactSubmitter(), nil))
		title := fmt.Sprintf("%s · portfolio assistant", a.kb.Personal().Name)

		log.FromCtx(ctx).Info().Str("session", sess.ID()).Msg("terminal chat started")
		return cli.Run(ctx, sess, bridge, router, a.engine.LinkActions(), title)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
