// Package session drives one chat widget: it owns the transcript and the
// conversation context, runs turns through the dialogue engine and reveals
// replies after a typing delay.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sandevgo/folio/internal/core"
	"github.com/sandevgo/folio/internal/service/dialogue"
	"github.com/sandevgo/folio/pkg/log"
)

var (
	ErrEmptyInput = errors.New("message is empty")
	ErrNotOpen    = errors.New("chat is closed")
	ErrBusy       = errors.New("too many messages are waiting for a reply")
	ErrTornDown   = errors.New("chat session has ended")
)

type State int

const (
	Idle State = iota
	AwaitingInput
	ComposingReply
	Presenting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingInput:
		return "awaiting_input"
	case ComposingReply:
		return "composing_reply"
	case Presenting:
		return "presenting"
	}
	return "unknown"
}

// Responder is the dialogue engine as seen by a session.
type Responder interface {
	Respond(c core.Context, utterance string) dialogue.Turn
	SeedGreeting() string
}

// Observer is notified of transcript changes in order. Callbacks run outside
// the session lock but must not call back into the same Session.
type Observer interface {
	OnMessage(msg core.Message)
	OnTyping(typing bool)
}

type nopObserver struct{}

func (nopObserver) OnMessage(core.Message) {}
func (nopObserver) OnTyping(bool)          {}

const DefaultMaxQueued = 4

type Option func(*Session)

func WithScheduler(s Scheduler) Option {
	return func(sess *Session) { sess.sched = s }
}

func WithDelay(d Delay) Option {
	return func(sess *Session) { sess.delay = d }
}

// WithMaxQueued bounds how many submissions may wait behind a pending reply.
// Zero rejects every submission made while a reply is pending.
func WithMaxQueued(n int) Option {
	return func(sess *Session) { sess.maxQueued = n }
}

func WithObserver(o Observer) Option {
	return func(sess *Session) { sess.observer = o }
}

func WithClock(now func() time.Time) Option {
	return func(sess *Session) { sess.now = now }
}

type Session struct {
	id        string
	engine    Responder
	sched     Scheduler
	delay     Delay
	maxQueued int
	now       func() time.Time
	observer  Observer
	logger    *zerolog.Logger

	mu         sync.Mutex
	emitMu     sync.Mutex
	open       bool
	seeded     bool
	tornDown   bool
	phase      State
	transcript []core.Message
	convo      core.Context
	lastIntent core.Intent
	pending    Timer
	seq        uint64
	queue      []core.Message
}

func New(ctx context.Context, id string, engine Responder, opts ...Option) *Session {
	s := &Session{
		id:        id,
		engine:    engine,
		sched:     RealScheduler(),
		delay:     DefaultDelay(),
		maxQueued: DefaultMaxQueued,
		now:       time.Now,
		observer:  nopObserver{},
		logger:    log.FromCtx(ctx),
		phase:     AwaitingInput,
		convo:     core.NewContext(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) ID() string {
	return s.id
}

// Open shows the widget. The first call seeds the greeting message.
func (s *Session) Open() error {
	s.mu.Lock()
	if s.tornDown {
		s.mu.Unlock()
		return ErrTornDown
	}

	var events []event
	if !s.seeded {
		greeting := core.NewAssistantMessage(core.Reply{Text: s.engine.SeedGreeting()}, 1.0, s.now())
		s.transcript = append(s.transcript, greeting)
		s.seeded = true
		events = append(events, messageEvent(greeting))
	}
	s.open = true

	s.unlockAndEmit(events)
	return nil
}

// Close hides the widget. Transcript, context and any pending reply survive.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
}

// Submit runs one user turn. When a reply is still pending the utterance is
// queued and processed after it; queued reports that case.
func (s *Session) Submit(utterance string) (queued bool, err error) {
	_, queued, err = s.Send(utterance)
	return queued, err
}

// Send is Submit that also returns the user message. The assistant reply to
// it carries the message ID in ReplyTo.
func (s *Session) Send(utterance string) (msg core.Message, queued bool, err error) {
	s.mu.Lock()
	switch {
	case s.tornDown:
		s.mu.Unlock()
		return core.Message{}, false, ErrTornDown
	case !s.open:
		s.mu.Unlock()
		return core.Message{}, false, ErrNotOpen
	case strings.TrimSpace(utterance) == "":
		s.mu.Unlock()
		return core.Message{}, false, ErrEmptyInput
	}

	if s.pending != nil {
		if len(s.queue) >= s.maxQueued {
			s.mu.Unlock()
			return core.Message{}, false, ErrBusy
		}
		msg = core.NewUserMessage(utterance, s.now())
		s.queue = append(s.queue, msg)
		s.logger.Debug().Str("session", s.id).Int("queued", len(s.queue)).Msg("reply pending, input queued")
		s.mu.Unlock()
		return msg, true, nil
	}

	msg = core.NewUserMessage(utterance, s.now())
	events := s.beginTurn(msg)
	s.unlockAndEmit(events)
	return msg, false, nil
}

// Teardown releases the pending timer and drops queued input. The session
// cannot be used afterwards.
func (s *Session) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tornDown {
		return
	}
	s.tornDown = true
	s.open = false
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.queue = nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return Idle
	}
	return s.phase
}

func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

func (s *Session) Queued() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *Session) Transcript() []core.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Message(nil), s.transcript...)
}

func (s *Session) Context() core.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.convo.Clone()
}

func (s *Session) LastIntent() core.Intent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastIntent
}

// beginTurn must be called with mu held and no reply pending.
func (s *Session) beginTurn(userMsg core.Message) []event {
	s.transcript = append(s.transcript, userMsg)

	s.phase = ComposingReply
	turn := s.engine.Respond(s.convo, userMsg.Text)
	s.convo = turn.Context
	s.lastIntent = turn.Intent

	s.phase = Presenting
	delay := s.delay.For(turn.Reply.Text)
	s.seq++
	seq := s.seq
	s.pending = s.sched.AfterFunc(delay, func() { s.present(seq, userMsg.ID, turn) })

	s.logger.Debug().
		Str("session", s.id).
		Str("intent", string(turn.Intent)).
		Dur("delay", delay).
		Msg("reply scheduled")

	return []event{messageEvent(userMsg), typingEvent(true)}
}

func (s *Session) present(seq uint64, replyTo string, turn dialogue.Turn) {
	s.mu.Lock()
	if s.tornDown || seq != s.seq || s.pending == nil {
		s.mu.Unlock()
		return
	}

	reply := core.NewAssistantMessage(turn.Reply, turn.Intent.Confidence(), s.now())
	reply.Intent = turn.Intent
	reply.ReplyTo = replyTo
	s.transcript = append(s.transcript, reply)
	s.pending = nil
	events := []event{messageEvent(reply)}

	if len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		events = append(events, s.beginTurn(next)...)
	} else {
		s.phase = AwaitingInput
		events = append(events, typingEvent(false))
	}

	s.unlockAndEmit(events)
}

type event struct {
	msg    *core.Message
	typing bool
}

func messageEvent(msg core.Message) event {
	return event{msg: &msg}
}

func typingEvent(typing bool) event {
	return event{typing: typing}
}

// unlockAndEmit releases mu and delivers events. emitMu is taken before mu is
// released so notifications from consecutive critical sections keep their order.
func (s *Session) unlockAndEmit(events []event) {
	if len(events) == 0 {
		s.mu.Unlock()
		return
	}

	s.emitMu.Lock()
	s.mu.Unlock()
	defer s.emitMu.Unlock()

	for _, ev := range events {
		if ev.msg != nil {
			s.observer.OnMessage(*ev.msg)
			continue
		}
		s.observer.OnTyping(ev.typing)
	}
}
