package main

import (
	"os"

	"github.com/sandevgo/folio/internal/service/session"
	"github.com/sandevgo/folio/internal/transport/mcp"
	"github.com/spf13/cobra"
)

var mcpDelay bool

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the assistant as MCP tools over stdio",
	Long: `Runs a Model Context Protocol server on stdin/stdout exposing the ask,
classify, links, reset and (with mail configured) contact tools.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// stdout carries the protocol.
		var flushLog func()
		ctx, flushLog = setupLogger(ctx, os.Stderr)
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		opts := a.sessionOpts
		if !mcpDelay {
			opts = append(opts, session.WithDelay(session.Delay{}))
		}

		s := mcp.NewServer(mcp.Deps{
			Engine:        a.engine,
			KnowledgePath: a.cfg.GetKnowledgePath(),
			Contact:       a.contactSubmitter(),
			SessionOpts:   opts,
		})
		return s.Serve(ctx, os.Stdin, os.Stdout)
	},
}

func init() {
	mcpCmd.Flags().BoolVar(&mcpDelay, "typing-delay", false, "keep the simulated typing delay")
	rootCmd.AddCommand(mcpCmd)
}
