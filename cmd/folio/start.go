package main

import (
	"os"

	"github.com/sandevgo/folio/pkg/log"
	"github.com/sandevgo/folio/pkg/srv"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the Folio bot",
	Long:  `Starts every configured long-running transport (Telegram bot, web widget API) and keeps them running until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// logger setup
		var flushLog func()
		ctx, flushLog = setupLogger(ctx, os.Stdout)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting folio")

		services := NewServices(ctx)

		srv.StartServices(ctx, services)

		// Wait for shutdown signal
		srv.ShutdownServices(ctx, services)
		logger.Info().Msg("folio has been shut down gracefully")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
