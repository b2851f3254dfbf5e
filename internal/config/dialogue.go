package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/folio/pkg/log"
)

// DialogueConfig tunes the simulated typing delay and input queueing.
type DialogueConfig struct {
	CharDelay time.Duration `env:"FOLIO_TYPING_CHAR_DELAY" envDefault:"20ms"`
	MinDelay  time.Duration `env:"FOLIO_TYPING_MIN_DELAY" envDefault:"1s"`
	MaxDelay  time.Duration `env:"FOLIO_TYPING_MAX_DELAY" envDefault:"3s"`
	MaxQueued int           `env:"FOLIO_MAX_QUEUED" envDefault:"4"`
}

func NewDialogueConfig(ctx context.Context) *DialogueConfig {
	c := &DialogueConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Dialogue config")
	}
	if c.MaxDelay < c.MinDelay {
		log.FromCtx(ctx).Warn().
			Dur("min", c.MinDelay).
			Dur("max", c.MaxDelay).
			Msg("typing max delay below min delay, using min")
		c.MaxDelay = c.MinDelay
	}
	if c.MaxQueued < 0 {
		c.MaxQueued = 0
	}
	return c
}

func (c DialogueConfig) GetCharDelay() time.Duration {
	return c.CharDelay
}

func (c DialogueConfig) GetMinDelay() time.Duration {
	return c.MinDelay
}

func (c DialogueConfig) GetMaxDelay() time.Duration {
	return c.MaxDelay
}

func (c DialogueConfig) GetMaxQueued() int {
	return c.MaxQueued
}
