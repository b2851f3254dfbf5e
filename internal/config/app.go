package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/folio/pkg/log"
)

type AppConfig struct {
	RuntimePath   string `env:"FOLIO_RUNTIME_PATH" envDefault:".folio"`
	KnowledgePath string `env:"FOLIO_KNOWLEDGE_PATH"`

	// Transport Flags
	EnableTelegram bool `env:"FOLIO_ENABLE_TELEGRAM" envDefault:"false"`
	EnableWeb      bool `env:"FOLIO_ENABLE_WEB" envDefault:"false"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	c.RuntimePath = resolveRuntimePath(c.RuntimePath)
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "folio.db")
}

// GetKnowledgePath returns the knowledge file to load. An empty path selects
// the embedded default.
func (c AppConfig) GetKnowledgePath() string {
	if c.KnowledgePath == "" || filepath.IsAbs(c.KnowledgePath) {
		return c.KnowledgePath
	}
	return filepath.Join(c.RuntimePath, c.KnowledgePath)
}

func (c AppConfig) IsTelegramSelected() bool {
	return c.EnableTelegram
}

func (c AppConfig) IsWebSelected() bool {
	return c.EnableWeb
}
