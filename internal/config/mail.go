package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/folio/pkg/log"
)

type MailConfig struct {
	ResendAPIKey string `env:"FOLIO_RESEND_API_KEY"`
	From         string `env:"FOLIO_MAIL_FROM" envDefault:"Folio <onboarding@resend.dev>"`
	To           string `env:"FOLIO_MAIL_TO"`
}

func NewMailConfig(ctx context.Context) *MailConfig {
	c := &MailConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Mail config")
	}
	return c
}

func (c MailConfig) GetResendAPIKey() string {
	return c.ResendAPIKey
}

func (c MailConfig) GetMailFrom() string {
	return c.From
}

func (c MailConfig) GetMailTo() string {
	return c.To
}

// IsEnabled reports whether contact messages can be relayed.
func (c MailConfig) IsEnabled() bool {
	return c.ResendAPIKey != "" && c.To != ""
}
