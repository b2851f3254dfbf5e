package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandevgo/folio/internal/config"
	"github.com/sandevgo/folio/internal/core"
	"github.com/sandevgo/folio/internal/knowledge"
	"github.com/sandevgo/folio/internal/service/dialogue"
	"github.com/sandevgo/folio/internal/service/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionOptions(t *testing.T) {
	cfg := &config.DialogueConfig{
		CharDelay: 10 * time.Millisecond,
		MinDelay:  0,
		MaxDelay:  time.Second,
		MaxQueued: 0,
	}

	engine := dialogue.NewEngine(knowledge.MustDefault())
	sess := session.New(context.Background(), "t", engine, sessionOptions(cfg)...)
	t.Cleanup(sess.Teardown)

	require.NoError(t, sess.Open())
	_, err := sess.Submit("hi")
	require.NoError(t, err)

	_, err = sess.Submit("skills")
	assert.ErrorIs(t, err, session.ErrBusy, "a zero queue bound rejects while answering")
}

func TestContactSubmitter_NilWhenDisabled(t *testing.T) {
	a := &app{}
	assert.True(t, a.contactSubmitter() == nil)
}

func TestInitEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, initEnv(context.Background(), dir), "a missing .env is fine")

	// godotenv never overrides, so the variable must be unset.
	t.Setenv("FOLIO_MAIL_TO", "")
	require.NoError(t, os.Unsetenv("FOLIO_MAIL_TO"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FOLIO_MAIL_TO=me@example.com\n"), 0600))
	require.NoError(t, initEnv(context.Background(), dir))

	mailCfg := config.NewMailConfig(context.Background())
	assert.Equal(t, "me@example.com", mailCfg.GetMailTo())
}

var _ core.DialogueConfig = (*config.DialogueConfig)(nil)
