package main

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/folio/internal/config"
	"github.com/sandevgo/folio/internal/service/installer"
	"github.com/sandevgo/folio/pkg/log"
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:           "install",
	Short:         "Configure Folio and create its runtime directory",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx, os.Stdout)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting installation process")

		// run wizard (includes save step)
		state, err := installer.RunWizard()
		if err != nil {
			return err
		}

		// Load the newly created .env file so later config reads see the values
		runtimePath := config.GetRuntimePath()
		envPath := filepath.Join(runtimePath, ".env")
		if err := godotenv.Load(envPath); err != nil {
			logger.Warn().Err(err).Str("path", envPath).Msg("failed to load .env file")
		}

		logger.Info().Msgf("initialized runtime directory at: %s", runtimePath)
		if state.Channel == installer.ChannelTelegram {
			logger.Info().Msg("Installation complete! You can now run 'folio start'.")
		} else {
			logger.Info().Msg("Installation complete! You can now run 'folio chat'.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
