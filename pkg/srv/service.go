// Package srv runs long-lived components alongside each other.
package srv

import (
	"context"
	"time"

	"github.com/sandevgo/folio/pkg/log"
)

// ShutdownTimeout bounds how long ShutdownServices waits in total.
const ShutdownTimeout = 10 * time.Second

type Service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// StartServices starts each service on its own goroutine. A failing Start
// is fatal.
func StartServices(ctx context.Context, services []Service) {
	logger := log.FromCtx(ctx)
	for _, service := range services {
		go func(service Service) {
			if err := service.Start(ctx); err != nil {
				logger.Fatal().Err(err).Msgf("%T failed to start", service)
			}
		}(service)
	}
}

// ShutdownServices blocks until ctx is done, then shuts the services down in
// reverse order so later services can still use the ones they depend on.
func ShutdownServices(ctx context.Context, services []Service) {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()

	StopServices(shutdownCtx, services)
}

// StopServices shuts the services down in reverse order without waiting.
func StopServices(ctx context.Context, services []Service) {
	logger := log.FromCtx(ctx)
	for i := len(services) - 1; i >= 0; i-- {
		if err := services[i].Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msgf("%T failed to shutdown", services[i])
		}
	}
}
