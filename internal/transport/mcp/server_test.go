package mcp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sandevgo/folio/configs"
	"github.com/sandevgo/folio/internal/core"
	"github.com/sandevgo/folio/internal/knowledge"
	"github.com/sandevgo/folio/internal/service/contact"
	"github.com/sandevgo/folio/internal/service/dialogue"
	"github.com/sandevgo/folio/internal/service/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContact struct {
	got []core.ContactSubmission
	err error
}

func (f *fakeContact) Submit(_ context.Context, sub core.ContactSubmission) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.got = append(f.got, sub)
	return int64(len(f.got)), nil
}

func newTestServer(t *testing.T, c contactSubmitter) *Server {
	t.Helper()
	engine := dialogue.NewEngine(knowledge.MustDefault(), dialogue.WithRand(func() float64 { return 0 }))
	s := NewServer(Deps{
		Engine:      engine,
		Contact:     c,
		SessionOpts: []session.Option{session.WithDelay(session.Delay{})},
	})
	t.Cleanup(func() { _ = s.sessions.Shutdown(context.Background()) })
	return s
}

func makeCallToolRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func makeReadResourceRequest(uri string) mcp.ReadResourceRequest {
	return mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: uri},
	}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func TestAsk_AnswersFromKnowledge(t *testing.T) {
	s := newTestServer(t, nil)
	kb := s.deps.Engine.Knowledge()

	res, err := s.handleAsk(context.Background(), makeCallToolRequest("ask", map[string]any{
		"question": "what are your skills?",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), kb.Skills().Languages[0])

	sess, ok := s.sessions.Lookup(defaultSession)
	require.True(t, ok)
	assert.Equal(t, core.IntentSkills, sess.LastIntent())
}

func TestAsk_ContactAppendsLinks(t *testing.T) {
	s := newTestServer(t, nil)
	kb := s.deps.Engine.Knowledge()

	res, err := s.handleAsk(context.Background(), makeCallToolRequest("ask", map[string]any{
		"question": "how can I contact you?",
	}))
	require.NoError(t, err)

	text := resultText(t, res)
	assert.Contains(t, text, "LinkedIn: "+kb.Links().LinkedIn)
	assert.Contains(t, text, "Email: "+kb.Personal().Email)
	assert.NotContains(t, text, "mailto:")
}

func TestAsk_MissingQuestion(t *testing.T) {
	s := newTestServer(t, nil)

	res, err := s.handleAsk(context.Background(), makeCallToolRequest("ask", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "question is required", resultText(t, res))
}

func TestAsk_EmptyQuestionIsRejected(t *testing.T) {
	s := newTestServer(t, nil)

	res, err := s.handleAsk(context.Background(), makeCallToolRequest("ask", map[string]any{
		"question": "   ",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, session.ErrEmptyInput.Error(), resultText(t, res))
}

func TestAsk_SessionsKeepSeparateContext(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	_, err := s.handleAsk(ctx, makeCallToolRequest("ask", map[string]any{
		"question": "show me your projects",
		"session":  "a",
	}))
	require.NoError(t, err)

	res, err := s.handleClassify(ctx, makeCallToolRequest("classify", map[string]any{
		"question": "tell me more",
		"session":  "a",
	}))
	require.NoError(t, err)
	assert.Equal(t, string(core.IntentSpecificProject), resultText(t, res))

	res, err = s.handleClassify(ctx, makeCallToolRequest("classify", map[string]any{
		"question": "tell me more",
		"session":  "b",
	}))
	require.NoError(t, err)
	assert.Equal(t, string(core.IntentGeneral), resultText(t, res))

	_, ok := s.sessions.Lookup("b")
	assert.False(t, ok, "classify must not create sessions")
}

func TestAsk_Cancelled(t *testing.T) {
	engine := dialogue.NewEngine(knowledge.MustDefault())
	s := NewServer(Deps{
		Engine:      engine,
		SessionOpts: []session.Option{session.WithDelay(session.Delay{Min: 1 << 40, Max: 1 << 40})},
	})
	t.Cleanup(func() { _ = s.sessions.Shutdown(context.Background()) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := s.handleAsk(ctx, makeCallToolRequest("ask", map[string]any{"question": "hi"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, context.Canceled.Error(), resultText(t, res))
}

func TestReset_ForgetsConversation(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	_, err := s.handleAsk(ctx, makeCallToolRequest("ask", map[string]any{"question": "hello"}))
	require.NoError(t, err)
	require.Equal(t, 1, s.sessions.Len())

	res, err := s.handleReset(ctx, makeCallToolRequest("reset", map[string]any{}))
	require.NoError(t, err)
	assert.Equal(t, `Conversation "default" cleared.`, resultText(t, res))
	assert.Zero(t, s.sessions.Len())
	assert.Nil(t, s.waiter(defaultSession))
}

func TestLinks(t *testing.T) {
	s := newTestServer(t, nil)
	kb := s.deps.Engine.Knowledge()

	res, err := s.handleLinks(context.Background(), makeCallToolRequest("links", nil))
	require.NoError(t, err)

	want := "LinkedIn: " + kb.Links().LinkedIn + "\n" +
		"GitHub: " + kb.Links().GitHub + "\n" +
		"Email: " + kb.Personal().Email + "\n" +
		"Resume: " + kb.Links().Resume
	assert.Equal(t, want, resultText(t, res))
}

func TestContact(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		args    map[string]any
		want    string
		wantErr bool
	}{
		{
			name: "sent",
			args: map[string]any{"name": "Ada", "email": "ada@example.com", "message": "Hello"},
			want: "Thank you! Your message has been sent.",
		},
		{
			name:    "invalid field",
			err:     &contact.FieldError{Field: "email", Reason: "is not a valid address"},
			args:    map[string]any{"name": "Ada", "email": "nope", "message": "Hello"},
			want:    (&contact.FieldError{Field: "email", Reason: "is not a valid address"}).Error(),
			wantErr: true,
		},
		{
			name:    "relay failure",
			err:     errors.New("smtp down"),
			args:    map[string]any{"name": "Ada", "email": "ada@example.com", "message": "Hello"},
			want:    contact.ErrTryAgainLater.Error(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeContact{err: tt.err}
			s := newTestServer(t, fc)

			res, err := s.handleContact(context.Background(), makeCallToolRequest("contact", tt.args))
			require.NoError(t, err)
			assert.Equal(t, tt.wantErr, res.IsError)
			assert.Equal(t, tt.want, resultText(t, res))
			if !tt.wantErr {
				require.Len(t, fc.got, 1)
				assert.Equal(t, "ada@example.com", fc.got[0].Email)
			}
		})
	}
}

func TestContactTool_OnlyWhenConfigured(t *testing.T) {
	without := newTestServer(t, nil)
	assert.Equal(t, []string{"ask", "classify", "links", "reset"}, without.Tools())

	with := newTestServer(t, &fakeContact{})
	assert.Equal(t, []string{"ask", "classify", "links", "reset", "contact"}, with.Tools())
}

func TestKnowledgeResource(t *testing.T) {
	t.Run("embedded", func(t *testing.T) {
		s := newTestServer(t, nil)
		want, err := configs.FS.ReadFile(configs.KnowledgeFile)
		require.NoError(t, err)

		contents, err := s.handleKnowledge(context.Background(), makeReadResourceRequest(knowledgeURI))
		require.NoError(t, err)
		require.Len(t, contents, 1)

		tc, ok := contents[0].(mcp.TextResourceContents)
		require.True(t, ok)
		assert.Equal(t, knowledgeURI, tc.URI)
		assert.Equal(t, "application/yaml", tc.MIMEType)
		assert.Equal(t, string(want), tc.Text)
	})

	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "kb.yaml")
		require.NoError(t, os.WriteFile(path, []byte("facts: [x]\n"), 0644))

		s := newTestServer(t, nil)
		s.deps.KnowledgePath = path

		contents, err := s.handleKnowledge(context.Background(), makeReadResourceRequest(knowledgeURI))
		require.NoError(t, err)
		assert.Equal(t, "facts: [x]\n", contents[0].(mcp.TextResourceContents).Text)
	})

	t.Run("missing file", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.deps.KnowledgePath = filepath.Join(t.TempDir(), "missing.yaml")

		_, err := s.handleKnowledge(context.Background(), makeReadResourceRequest(knowledgeURI))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
