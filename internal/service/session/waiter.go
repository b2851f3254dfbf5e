package session

import (
	"context"
	"sync"

	"github.com/sandevgo/folio/internal/core"
)

// ReplyWaiter is an Observer for request/response shells. Ask submits one
// question and blocks until its answer is presented. Calls are serialized
// so every question gets its own answer.
type ReplyWaiter struct {
	turn    sync.Mutex
	replies chan core.Message
}

func NewReplyWaiter() *ReplyWaiter {
	return &ReplyWaiter{replies: make(chan core.Message, 8)}
}

func (w *ReplyWaiter) OnMessage(msg core.Message) {
	if msg.Sender != core.SenderAssistant {
		return
	}
	select {
	case w.replies <- msg:
	default:
	}
}

func (w *ReplyWaiter) OnTyping(bool) {}

// Ask opens sess if needed, submits question and waits for the reply to it.
// Replies to earlier questions whose Ask was abandoned are skipped.
func (w *ReplyWaiter) Ask(ctx context.Context, sess *Session, question string) (core.Message, error) {
	w.turn.Lock()
	defer w.turn.Unlock()

	if sess.State() == Idle {
		if err := sess.Open(); err != nil {
			return core.Message{}, err
		}
	}
	w.drain()

	asked, _, err := sess.Send(question)
	if err != nil {
		return core.Message{}, err
	}

	for {
		select {
		case <-ctx.Done():
			return core.Message{}, ctx.Err()
		case msg := <-w.replies:
			if msg.ReplyTo == asked.ID {
				return msg, nil
			}
		}
	}
}

// drain drops the seeded greeting and replies that already landed for a
// cancelled Ask.
func (w *ReplyWaiter) drain() {
	for {
		select {
		case <-w.replies:
		default:
			return
		}
	}
}
