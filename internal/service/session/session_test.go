package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/folio/internal/core"
	"github.com/sandevgo/folio/internal/knowledge"
	"github.com/sandevgo/folio/internal/service/dialogue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	wasActive := !t.stopped && !t.fired
	t.stopped = true
	return wasActive
}

type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{delay: d, fn: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) active() []*fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*fakeTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

// fire runs the oldest active timer.
func (s *fakeScheduler) fire(t *testing.T) {
	t.Helper()
	active := s.active()
	require.NotEmpty(t, active, "no active timer")
	timer := active[0]
	timer.fired = true
	timer.fn()
}

type recorder struct {
	mu     sync.Mutex
	events []string
	msgs   []core.Message
}

func (r *recorder) OnMessage(msg core.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "message:"+string(msg.Sender))
	r.msgs = append(r.msgs, msg)
}

func (r *recorder) OnTyping(typing bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if typing {
		r.events = append(r.events, "typing:on")
	} else {
		r.events = append(r.events, "typing:off")
	}
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func fixedRand(v float64) dialogue.Rand {
	return func() float64 { return v }
}

func newTestSession(t *testing.T, opts ...Option) (*Session, *fakeScheduler, *recorder) {
	t.Helper()
	sched := &fakeScheduler{}
	rec := &recorder{}
	engine := dialogue.NewEngine(knowledge.MustDefault(), dialogue.WithRand(fixedRand(0)))

	base := []Option{WithScheduler(sched), WithObserver(rec)}
	s := New(context.Background(), "test", engine, append(base, opts...)...)
	t.Cleanup(s.Teardown)
	return s, sched, rec
}

func TestOpen_SeedsGreetingOnce(t *testing.T) {
	s, _, rec := newTestSession(t)
	assert.Equal(t, Idle, s.State())

	require.NoError(t, s.Open())
	assert.Equal(t, AwaitingInput, s.State())

	transcript := s.Transcript()
	require.Len(t, transcript, 1)
	first := transcript[0]
	assert.Equal(t, core.SenderAssistant, first.Sender)
	assert.Contains(t, first.Text, dialogue.GreetingPhrase)

	s.Close()
	assert.Equal(t, Idle, s.State())
	require.NoError(t, s.Open())

	transcript = s.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, first, transcript[0])
	assert.Equal(t, []string{"message:assistant"}, rec.snapshot())
}

func TestSubmit_Rejections(t *testing.T) {
	s, sched, _ := newTestSession(t)

	_, err := s.Submit("hi")
	assert.ErrorIs(t, err, ErrNotOpen)

	require.NoError(t, s.Open())

	for _, input := range []string{"", "   ", "\n\t"} {
		_, err := s.Submit(input)
		assert.ErrorIs(t, err, ErrEmptyInput, "input %q", input)
	}
	assert.Len(t, s.Transcript(), 1)
	assert.Empty(t, sched.active())
	assert.Equal(t, core.NewContext(), s.Context())
}

func TestSubmit_PresentsAfterDelay(t *testing.T) {
	s, sched, rec := newTestSession(t)
	require.NoError(t, s.Open())

	queued, err := s.Submit("hi")
	require.NoError(t, err)
	assert.False(t, queued)

	assert.Equal(t, Presenting, s.State())
	assert.True(t, s.Pending())
	assert.Equal(t, core.IntentGreeting, s.LastIntent())
	require.Len(t, s.Transcript(), 2)

	active := sched.active()
	require.Len(t, active, 1)
	delay := active[0].delay

	sched.fire(t)

	transcript := s.Transcript()
	require.Len(t, transcript, 3)
	reply := transcript[2]
	assert.Equal(t, core.SenderAssistant, reply.Sender)
	assert.NotEmpty(t, reply.Text)
	assert.Equal(t, DefaultDelay().For(reply.Text), delay)
	require.NotNil(t, reply.Confidence)
	assert.Equal(t, 1.0, *reply.Confidence)

	assert.Equal(t, AwaitingInput, s.State())
	assert.False(t, s.Pending())
	assert.Equal(t, []string{
		"message:assistant",
		"message:user",
		"typing:on",
		"message:assistant",
		"typing:off",
	}, rec.snapshot())
}

func TestSubmit_ContactCarriesLinks(t *testing.T) {
	s, sched, _ := newTestSession(t)
	require.NoError(t, s.Open())

	_, err := s.Submit("how can I reach you")
	require.NoError(t, err)
	sched.fire(t)

	transcript := s.Transcript()
	reply := transcript[len(transcript)-1]
	assert.True(t, reply.HasLinks)
	assert.NotContains(t, reply.Text, "http")
	assert.NotContains(t, reply.Text, "mailto:")
}

func TestSubmit_RapidDoubleSubmissionKeepsOrder(t *testing.T) {
	s, sched, rec := newTestSession(t)
	require.NoError(t, s.Open())

	queued, err := s.Submit("tell me about your projects")
	require.NoError(t, err)
	assert.False(t, queued)

	queued, err = s.Submit("tell me more")
	require.NoError(t, err)
	assert.True(t, queued)
	assert.Equal(t, 1, s.Queued())
	assert.Len(t, sched.active(), 1, "only one timer may be outstanding")

	sched.fire(t)
	assert.Len(t, sched.active(), 1)
	assert.Equal(t, 0, s.Queued())
	sched.fire(t)

	transcript := s.Transcript()
	require.Len(t, transcript, 5)
	senders := make([]core.Sender, 0, len(transcript))
	for _, m := range transcript {
		senders = append(senders, m.Sender)
	}
	assert.Equal(t, []core.Sender{
		core.SenderAssistant,
		core.SenderUser,
		core.SenderAssistant,
		core.SenderUser,
		core.SenderAssistant,
	}, senders)
	assert.Equal(t, "tell me about your projects", transcript[1].Text)
	assert.Equal(t, "tell me more", transcript[3].Text)

	// The second turn was classified against the context of the first.
	assert.Equal(t, core.IntentSpecificProject, s.LastIntent())

	assert.Equal(t, []string{
		"message:assistant",
		"message:user",
		"typing:on",
		"message:assistant",
		"message:user",
		"typing:on",
		"message:assistant",
		"typing:off",
	}, rec.snapshot())
}

func TestSubmit_QueueBound(t *testing.T) {
	s, _, _ := newTestSession(t, WithMaxQueued(1))
	require.NoError(t, s.Open())

	_, err := s.Submit("hi")
	require.NoError(t, err)
	_, err = s.Submit("skills")
	require.NoError(t, err)

	_, err = s.Submit("projects")
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, 1, s.Queued())
}

func TestSubmit_NoQueueRejectsWhilePending(t *testing.T) {
	s, _, _ := newTestSession(t, WithMaxQueued(0))
	require.NoError(t, s.Open())

	_, err := s.Submit("hi")
	require.NoError(t, err)
	_, err = s.Submit("hi again")
	assert.ErrorIs(t, err, ErrBusy)
}

func TestClose_PendingReplyStillArrives(t *testing.T) {
	s, sched, _ := newTestSession(t)
	require.NoError(t, s.Open())

	_, err := s.Submit("what are your skills")
	require.NoError(t, err)

	s.Close()
	assert.Equal(t, Idle, s.State())
	assert.True(t, s.Pending())

	require.NoError(t, s.Open())
	assert.Equal(t, Presenting, s.State())

	sched.fire(t)
	transcript := s.Transcript()
	require.Len(t, transcript, 3)
	assert.Equal(t, core.SenderAssistant, transcript[2].Sender)
	assert.Equal(t, []core.Intent{core.IntentSkills}, s.Context().AskedAbout)
}

func TestTeardown_StopsTimerAndRejects(t *testing.T) {
	s, sched, rec := newTestSession(t)
	require.NoError(t, s.Open())

	_, err := s.Submit("hi")
	require.NoError(t, err)
	timer := sched.active()[0]

	s.Teardown()
	assert.True(t, timer.stopped)
	assert.Empty(t, sched.active())

	// A callback that raced with Teardown must not append anything.
	timer.fn()
	assert.Len(t, s.Transcript(), 2)
	assert.Len(t, rec.snapshot(), 3)

	_, err = s.Submit("hi")
	assert.ErrorIs(t, err, ErrTornDown)
	assert.ErrorIs(t, s.Open(), ErrTornDown)

	s.Teardown()
}

func TestSubmit_ContextNeverExceedsBounds(t *testing.T) {
	s, sched, _ := newTestSession(t)
	require.NoError(t, s.Open())

	for i := 0; i < 20; i++ {
		_, err := s.Submit("extraordinarily verbose pathological utterance number repeated many times")
		require.NoError(t, err)
		sched.fire(t)
	}

	c := s.Context()
	assert.LessOrEqual(t, len(c.PreviousQuestions), core.MaxPreviousQuestions)
	assert.LessOrEqual(t, len(c.Topics), core.MaxTopics)
}

func TestSession_RealScheduler(t *testing.T) {
	rec := &recorder{}
	engine := dialogue.NewEngine(knowledge.MustDefault())
	s := New(context.Background(), "real", engine,
		WithObserver(rec),
		WithDelay(Delay{PerChar: 0, Min: 5 * time.Millisecond, Max: 5 * time.Millisecond}),
	)
	defer s.Teardown()

	require.NoError(t, s.Open())
	_, err := s.Submit("hello")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(s.Transcript()) == 3
	}, time.Second, time.Millisecond)
	assert.False(t, s.Pending())
}

func TestSession_TeardownLeavesNoTimer(t *testing.T) {
	defer goleak.VerifyNone(t)

	engine := dialogue.NewEngine(knowledge.MustDefault())
	s := New(context.Background(), "leak", engine, WithDelay(Delay{Min: time.Hour, Max: time.Hour}))
	require.NoError(t, s.Open())
	_, err := s.Submit("hello")
	require.NoError(t, err)

	s.Teardown()
	assert.False(t, s.Pending())
}

func TestDelay_For(t *testing.T) {
	d := DefaultDelay()

	tests := []struct {
		name string
		text string
		want time.Duration
	}{
		{name: "empty hits minimum", text: "", want: time.Second},
		{name: "short hits minimum", text: "hi", want: time.Second},
		{name: "proportional", text: string(make([]byte, 100)), want: 2 * time.Second},
		{name: "long hits maximum", text: string(make([]byte, 1000)), want: 3 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.For(tt.text))
		})
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "awaiting_input", AwaitingInput.String())
	assert.Equal(t, "composing_reply", ComposingReply.String())
	assert.Equal(t, "presenting", Presenting.String())
}

func TestReplyWaiter_Ask(t *testing.T) {
	waiter := NewReplyWaiter()
	sess, _, _ := newTestSession(t, WithObserver(waiter), WithScheduler(RealScheduler()), WithDelay(Delay{}))

	reply, err := waiter.Ask(context.Background(), sess, "what are your skills?")
	require.NoError(t, err)
	assert.Equal(t, core.SenderAssistant, reply.Sender)
	assert.Equal(t, core.IntentSkills, sess.LastIntent())

	transcript := sess.Transcript()
	require.Len(t, transcript, 3)
	assert.Equal(t, transcript[2].ID, reply.ID, "the seeded greeting is not returned")
	assert.Equal(t, transcript[1].ID, reply.ReplyTo)
	assert.Equal(t, core.IntentSkills, reply.Intent)

	_, err = waiter.Ask(context.Background(), sess, " ")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestReplyWaiter_Cancelled(t *testing.T) {
	waiter := NewReplyWaiter()
	sess, sched, _ := newTestSession(t, WithObserver(waiter))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := waiter.Ask(ctx, sess, "hi")
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, sess.Pending())

	sess.Teardown()
	assert.Empty(t, sched.active())
}

func TestReplyWaiter_SkipsReplyOfAbandonedAsk(t *testing.T) {
	waiter := NewReplyWaiter()
	sess, sched, _ := newTestSession(t, WithObserver(waiter))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := waiter.Ask(ctx, sess, "how can I reach you")
	require.ErrorIs(t, err, context.Canceled)

	type result struct {
		msg core.Message
		err error
	}
	done := make(chan result, 1)
	go func() {
		msg, err := waiter.Ask(context.Background(), sess, "hi")
		done <- result{msg: msg, err: err}
	}()

	require.Eventually(t, func() bool { return sess.Queued() == 1 }, time.Second, time.Millisecond)
	sched.fire(t) // contact reply, then "hi" starts
	sched.fire(t) // greeting reply

	var res result
	select {
	case res = <-done:
	case <-time.After(time.Second):
		t.Fatal("Ask did not return")
	}
	require.NoError(t, res.err)

	transcript := sess.Transcript()
	require.Len(t, transcript, 5)
	assert.Equal(t, "hi", transcript[3].Text)
	assert.Equal(t, transcript[4].ID, res.msg.ID)
	assert.Equal(t, transcript[3].ID, res.msg.ReplyTo)
	assert.Equal(t, core.IntentGreeting, res.msg.Intent)
	assert.False(t, res.msg.HasLinks)
	assert.Contains(t, res.msg.Text, dialogue.GreetingPhrase)
}

func TestSend_ReplyCarriesTurn(t *testing.T) {
	sess, sched, rec := newTestSession(t)
	require.NoError(t, sess.Open())

	first, queued, err := sess.Send("what are your skills?")
	require.NoError(t, err)
	assert.False(t, queued)
	second, queued, err := sess.Send("how can I reach you")
	require.NoError(t, err)
	assert.True(t, queued)

	sched.fire(t)
	sched.fire(t)

	var replies []core.Message
	for _, m := range rec.msgs {
		if m.Sender == core.SenderAssistant && m.ReplyTo != "" {
			replies = append(replies, m)
		}
	}
	require.Len(t, replies, 2)
	assert.Equal(t, first.ID, replies[0].ReplyTo)
	assert.Equal(t, core.IntentSkills, replies[0].Intent)
	assert.Equal(t, second.ID, replies[1].ReplyTo)
	assert.Equal(t, core.IntentContact, replies[1].Intent)
	assert.True(t, replies[1].HasLinks)
}
