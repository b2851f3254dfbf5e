package log

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContextWithLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "folio.log")
	f, err := OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	ctx, cleanup := NewContextWithLogger(context.Background(), true, f)
	FromCtx(ctx).Debug().Str("session", "abc").Msg("reply scheduled")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "reply scheduled")
	assert.Contains(t, string(data), "session=abc")
}

func TestFromCtx_WithoutLogger(t *testing.T) {
	logger := FromCtx(context.Background())
	require.NotNil(t, logger)
	logger.Info().Msg("discarded")
}

func TestGooseLogger_TagsComponent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.log")
	f, err := OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	ctx, cleanup := NewContextWithLogger(context.Background(), true, f)
	NewGooseLogger(ctx).Printf("OK   %s", "00001_contact_submissions.sql")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "component=migrations")
	assert.Contains(t, string(data), "00001_contact_submissions.sql")
}
