package dialogue

import (
	"github.com/sandevgo/folio/internal/core"
	"github.com/sandevgo/folio/internal/knowledge"
	"github.com/sandevgo/folio/internal/service/memory"
)

// Turn is the outcome of one user utterance.
type Turn struct {
	Intent  core.Intent
	Reply   core.Reply
	Context core.Context
}

type Option func(*Engine)

// WithRand replaces the fact selector, mostly for tests.
func WithRand(r Rand) Option {
	return func(e *Engine) {
		e.rng = r
	}
}

// Engine ties classification, context tracking and synthesis together.
// It holds no per-session state and is safe for concurrent use.
type Engine struct {
	kb  *knowledge.Base
	rng Rand
}

func NewEngine(kb *knowledge.Base, opts ...Option) *Engine {
	e := &Engine{
		kb:  kb,
		rng: DefaultRand,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Respond classifies the utterance against c, advances the context and
// renders the reply. Naming a linked profile always attaches the links.
// It never fails.
func (e *Engine) Respond(c core.Context, utterance string) Turn {
	intent := Classify(utterance, c)
	next := memory.Advance(c, utterance, intent)
	reply := Synthesize(intent, e.kb, e.rng)
	if NamesLinkTarget(utterance) {
		reply.HasLinks = true
	}

	return Turn{
		Intent:  intent,
		Reply:   reply,
		Context: next,
	}
}

func (e *Engine) SeedGreeting() string {
	return SeedGreeting(e.kb)
}

func (e *Engine) LinkActions() []core.LinkAction {
	return e.kb.LinkActions()
}

func (e *Engine) Knowledge() *knowledge.Base {
	return e.kb
}
