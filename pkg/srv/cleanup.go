package srv

import "context"

// cleanupService runs a close func on shutdown and nothing on start.
type cleanupService struct {
	cleanup func() error
}

func (c *cleanupService) Start(ctx context.Context) error {
	return nil
}

func (c *cleanupService) Shutdown(ctx context.Context) error {
	if c.cleanup != nil {
		return c.cleanup()
	}
	return nil
}

// NewCleanup turns a resource's Close into a Service, typically a database.
func NewCleanup(fn func() error) Service {
	return &cleanupService{cleanup: fn}
}
