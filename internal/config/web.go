package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/folio/pkg/log"
)

const (
	defaultSessionTTL  = 30 * time.Minute
	defaultMaxSessions = 1000
)

type WebConfig struct {
	Addr        string        `env:"FOLIO_WEB_ADDR" envDefault:"127.0.0.1:8080"`
	SessionTTL  time.Duration `env:"FOLIO_WEB_SESSION_TTL" envDefault:"30m"`
	MaxSessions int           `env:"FOLIO_WEB_MAX_SESSIONS" envDefault:"1000"`
}

func NewWebConfig(ctx context.Context) *WebConfig {
	c := &WebConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Web config")
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = defaultSessionTTL
	}
	if c.MaxSessions <= 0 {
		c.MaxSessions = defaultMaxSessions
	}
	return c
}

func (c WebConfig) GetWebAddr() string {
	return c.Addr
}

// GetSessionTTL is how long an untouched widget session stays alive.
func (c WebConfig) GetSessionTTL() time.Duration {
	return c.SessionTTL
}

func (c WebConfig) GetMaxSessions() int {
	return c.MaxSessions
}
