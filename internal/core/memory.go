package core

const (
	MaxPreviousQuestions = 5
	MaxTopics            = 10
)

// Context is the per-session conversation memory.
type Context struct {
	PreviousQuestions []string `json:"previous_questions"`
	Topics            []string `json:"topics"`
	AskedAbout        []Intent `json:"asked_about"`
	Flow              Intent   `json:"conversation_flow"`
}

func NewContext() Context {
	return Context{
		PreviousQuestions: []string{},
		Topics:            []string{},
		AskedAbout:        []Intent{},
		Flow:              IntentGreeting,
	}
}

func (c Context) HasAskedAbout(intent Intent) bool {
	for _, i := range c.AskedAbout {
		if i == intent {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can never alias another session's slices.
func (c Context) Clone() Context {
	return Context{
		PreviousQuestions: append([]string{}, c.PreviousQuestions...),
		Topics:            append([]string{}, c.Topics...),
		AskedAbout:        append([]Intent{}, c.AskedAbout...),
		Flow:              c.Flow,
	}
}
