package main

import (
	"os"

	"github.com/google/uuid"
	"github.com/sandevgo/folio/internal/service/session"
	"github.com/sandevgo/folio/internal/transport/cli"
	"github.com/spf13/cobra"
)

var noDelay bool

var askCmd = &cobra.Command{
	Use:   "ask <question> [question...]",
	Short: "Ask one or more questions and print the answers",
	Example: `  folio ask "what are your skills?"
  folio ask --no-delay "show me your projects" "tell me more"`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx, os.Stderr)
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		bridge := cli.NewBridge()
		opts := append(a.sessionOpts, session.WithObserver(bridge))
		if noDelay {
			opts = append(opts, session.WithDelay(session.Delay{}))
		}
		sess := session.New(ctx, "ask-"+uuid.NewString(), a.engine, opts...)

		return cli.Ask(ctx, cmd.OutOrStdout(), sess, bridge, a.engine.LinkActions(), args...)
	},
}

func init() {
	askCmd.Flags().BoolVar(&noDelay, "no-delay", false, "answer immediately instead of simulating typing")
	rootCmd.AddCommand(askCmd)
}
