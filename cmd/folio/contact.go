package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sandevgo/folio/internal/core"
	"github.com/spf13/cobra"
)

const flushBatch = 50

var (
	contactName    string
	contactEmail   string
	contactMessage string
	contactFlush   bool
)

var contactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Send a contact message, or resend failed ones",
	Example: `  folio contact --name Ada --email ada@example.com --message "Let's talk"
  folio contact --flush`,
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

		if a.contact == nil {
			return errors.New("mail relay is not configured: set FOLIO_RESEND_API_KEY and FOLIO_MAIL_TO or run 'folio install'")
		}

		out := cmd.OutOrStdout()
		if contactFlush {
			sent, err := a.contact.Flush(ctx, flushBatch)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Resent %d message(s).\n", sent)
			return nil
		}

		id, err := a.contact.Submit(ctx, core.ContactSubmission{
			Name:    contactName,
			Email:   contactEmail,
			Message: contactMessage,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Thank you! Your message has been sent (#%d).\n", id)
		return nil
	},
}

func init() {
	contactCmd.Flags().StringVar(&contactName, "name", "", "your name")
	contactCmd.Flags().StringVar(&contactEmail, "email", "", "your email address")
	contactCmd.Flags().StringVarP(&contactMessage, "message", "m", "", "the message")
	contactCmd.Flags().BoolVar(&contactFlush, "flush", false, "resend messages that failed to go out")
	contactCmd.MarkFlagsMutuallyExclusive("flush", "message")
	rootCmd.AddCommand(contactCmd)
}
