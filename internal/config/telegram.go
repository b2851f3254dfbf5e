package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/folio/pkg/log"
)

type TelegramConfig struct {
	Token       string        `env:"FOLIO_TELEGRAM_TOKEN,required,notEmpty"`
	PollTimeout time.Duration `env:"FOLIO_TELEGRAM_POLL_TIMEOUT" envDefault:"10s"`
}

func NewTelegramConfig(ctx context.Context) *TelegramConfig {
	c := &TelegramConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Telegram config")
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = 10 * time.Second
	}
	return c
}

func (c TelegramConfig) GetTelegramToken() string {
	return c.Token
}

// GetPollTimeout is how long one long-poll request to Telegram may hang.
func (c TelegramConfig) GetPollTimeout() time.Duration {
	return c.PollTimeout
}
