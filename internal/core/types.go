package core

import (
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	FolioName          = "Folio"
	FolioRepositoryURL = "https://github.com/sandevgo/folio"
	FolioVersion       = "0.1.0"
)

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Intent is the symbolic label a user utterance is classified into.
type Intent string

const (
	IntentGreeting        Intent = "greeting"
	IntentPersonal        Intent = "personal"
	IntentEducation       Intent = "education"
	IntentExperience      Intent = "experience"
	IntentSkills          Intent = "skills"
	IntentProjects        Intent = "projects"
	IntentCertifications  Intent = "certifications"
	IntentLeadership      Intent = "leadership"
	IntentContact         Intent = "contact"
	IntentLinks           Intent = "links"
	IntentSpecificProject Intent = "specific-project"
	IntentAchievements    Intent = "achievements"
	IntentFuture          Intent = "future"
	IntentFact            Intent = "fact"
	IntentInternship      Intent = "internship"
	IntentGeneral         Intent = "general"
)

// IsInformational reports whether the intent surfaces a section of the
// knowledge base that follow-up questions can refer back to.
func (i Intent) IsInformational() bool {
	switch i {
	case IntentEducation, IntentExperience, IntentSkills,
		IntentProjects, IntentCertifications, IntentLeadership:
		return true
	}
	return false
}

// Confidence is the score attached to assistant messages answering this intent.
func (i Intent) Confidence() float64 {
	if i == IntentGeneral {
		return 0.5
	}
	return 1.0
}

// Reply is the synthesized answer for one turn.
type Reply struct {
	Text     string
	HasLinks bool
}

type Message struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	Sender     Sender    `json:"sender"`
	Timestamp  time.Time `json:"timestamp"`
	Confidence *float64  `json:"confidence,omitempty"`
	HasLinks   bool      `json:"has_links,omitempty"`
	// Intent and ReplyTo are set on assistant replies to user input.
	Intent  Intent `json:"intent,omitempty"`
	ReplyTo string `json:"reply_to,omitempty"`
}

func NewUserMessage(text string, now time.Time) Message {
	return Message{
		ID:        ulid.Make().String(),
		Text:      text,
		Sender:    SenderUser,
		Timestamp: now,
	}
}

func NewAssistantMessage(reply Reply, confidence float64, now time.Time) Message {
	return Message{
		ID:         ulid.Make().String(),
		Text:       reply.Text,
		Sender:     SenderAssistant,
		Timestamp:  now,
		Confidence: &confidence,
		HasLinks:   reply.HasLinks,
	}
}

// LinkAction is one actionable button a shell renders next to a reply.
type LinkAction struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}
