package command

import (
	"context"
	"errors"
	"testing"

	"github.com/sandevgo/folio/internal/core"
	"github.com/sandevgo/folio/internal/knowledge"
	"github.com/sandevgo/folio/internal/service/contact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContact struct {
	got []core.ContactSubmission
	err error
}

func (f *fakeContact) Submit(ctx context.Context, sub core.ContactSubmission) (int64, error) {
	f.got = append(f.got, sub)
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.got)), nil
}

type fakeSessions struct {
	dropped []string
}

func (f *fakeSessions) Drop(id string) {
	f.dropped = append(f.dropped, id)
}

func newTestRouter(c *fakeContact, s *fakeSessions) *Router {
	return New(NewCommands(knowledge.MustDefault(), c, s))
}

func TestRouter_NotACommand(t *testing.T) {
	r := newTestRouter(&fakeContact{}, &fakeSessions{})

	out, ok := r.Execute(context.Background(), "s1", "tell me about your projects")
	assert.False(t, ok)
	assert.Empty(t, out)
}

func TestRouter_UnknownCommand(t *testing.T) {
	r := newTestRouter(&fakeContact{}, &fakeSessions{})

	out, ok := r.Execute(context.Background(), "s1", "/model gpt")
	assert.True(t, ok)
	assert.Contains(t, out, "Unknown command: /model")
}

func TestRouter_ListCommandsKeepsOrder(t *testing.T) {
	r := newTestRouter(&fakeContact{}, &fakeSessions{})

	var names []string
	for _, cmd := range r.ListCommands() {
		names = append(names, cmd.Name())
	}
	assert.Equal(t, []string{"links", "contact", "reset", "help"}, names)
}

func TestNewCommands_OptionalCollaborators(t *testing.T) {
	cmds := NewCommands(knowledge.MustDefault(), nil, nil)

	var names []string
	for _, cmd := range cmds {
		names = append(names, cmd.Name())
	}
	assert.Equal(t, []string{"links", "help"}, names)
}

func TestLinksCommand(t *testing.T) {
	kb := knowledge.MustDefault()
	r := newTestRouter(&fakeContact{}, &fakeSessions{})

	out, ok := r.Execute(context.Background(), "s1", "/links@folio_bot")
	require.True(t, ok)
	assert.Contains(t, out, kb.Links().GitHub)
	assert.Contains(t, out, kb.Links().LinkedIn)
	assert.Contains(t, out, kb.Personal().Email)
	assert.NotContains(t, out, "mailto:")
}

func TestHelpCommand(t *testing.T) {
	r := newTestRouter(&fakeContact{}, &fakeSessions{})

	out, ok := r.Execute(context.Background(), "s1", "/help")
	require.True(t, ok)
	for _, name := range []string{"/links", "/contact", "/reset", "/help"} {
		assert.Contains(t, out, name)
	}
}

func TestResetCommand(t *testing.T) {
	sessions := &fakeSessions{}
	r := newTestRouter(&fakeContact{}, sessions)

	_, ok := r.Execute(context.Background(), "chat-42", "/reset")
	require.True(t, ok)
	assert.Equal(t, []string{"chat-42"}, sessions.dropped)
}

func TestContactCommand(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		err       error
		want      string
		submitted bool
	}{
		{
			name:  "usage without fields",
			input: "/contact",
			want:  "Usage",
		},
		{
			name:      "sent",
			input:     "/contact Ada | ada@example.com | Hello there",
			want:      "Thank you",
			submitted: true,
		},
		{
			name:      "validation error",
			input:     "/contact Ada | nope | Hello",
			err:       &contact.FieldError{Field: "email", Reason: "is not a valid address"},
			want:      "email is not a valid address",
			submitted: true,
		},
		{
			name:      "relay failure",
			input:     "/contact Ada | ada@example.com | Hello",
			err:       contact.ErrTryAgainLater,
			want:      "Please try again later.",
			submitted: true,
		},
		{
			name:      "other error",
			input:     "/contact Ada | ada@example.com | Hello",
			err:       errors.New("boom"),
			want:      "Error: boom",
			submitted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeContact{err: tt.err}
			r := newTestRouter(c, &fakeSessions{})

			out, ok := r.Execute(context.Background(), "s1", tt.input)
			require.True(t, ok)
			assert.Contains(t, out, tt.want)
			assert.Equal(t, tt.submitted, len(c.got) == 1)
		})
	}
}

func TestContactCommand_PassesFields(t *testing.T) {
	c := &fakeContact{}
	r := newTestRouter(c, &fakeSessions{})

	_, ok := r.Execute(context.Background(), "s1", "/contact Ada Lovelace | ada@example.com | Loved it | really")
	require.True(t, ok)
	require.Len(t, c.got, 1)
	assert.Equal(t, "Ada Lovelace ", c.got[0].Name)
	assert.Equal(t, " ada@example.com ", c.got[0].Email)
	assert.Equal(t, " Loved it | really", c.got[0].Message)
}
