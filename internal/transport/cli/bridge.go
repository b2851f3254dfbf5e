package cli

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/folio/internal/core"
)

type messageMsg core.Message

type typingMsg bool

// Bridge turns session notifications into bubbletea messages. Notifications
// that arrive after Close are dropped.
type Bridge struct {
	events chan tea.Msg
	done   chan struct{}
	once   sync.Once
}

func NewBridge() *Bridge {
	return &Bridge{
		events: make(chan tea.Msg, 64),
		done:   make(chan struct{}),
	}
}

func (b *Bridge) OnMessage(msg core.Message) {
	b.send(messageMsg(msg))
}

func (b *Bridge) OnTyping(typing bool) {
	b.send(typingMsg(typing))
}

func (b *Bridge) send(msg tea.Msg) {
	select {
	case b.events <- msg:
	case <-b.done:
	}
}

func (b *Bridge) Close() {
	b.once.Do(func() { close(b.done) })
}

// wait blocks for the next notification. It returns nil once the bridge is closed.
func (b *Bridge) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.events:
			return msg
		case <-b.done:
			return nil
		}
	}
}
