package memory

import (
	"strings"
	"unicode/utf8"

	"github.com/sandevgo/folio/internal/core"
)

// minTopicLen is the rune count a token must exceed to count as a topic.
const minTopicLen = 3

// Advance folds one processed turn into the conversation context. The input
// context is left untouched; the result is always within capacity.
func Advance(c core.Context, utterance string, intent core.Intent) core.Context {
	next := c.Clone()

	next.PreviousQuestions = keepLast(append(next.PreviousQuestions, utterance), core.MaxPreviousQuestions)
	next.Topics = keepLast(mergeTopics(next.Topics, Topics(utterance)), core.MaxTopics)

	if intent.IsInformational() {
		if !next.HasAskedAbout(intent) {
			next.AskedAbout = append(next.AskedAbout, intent)
		}
		next.Flow = intent
	}

	return next
}

// Topics extracts candidate topic words from an utterance in the order they appear.
func Topics(utterance string) []string {
	var out []string
	for _, tok := range strings.Fields(utterance) {
		if utf8.RuneCountInString(tok) > minTopicLen {
			out = append(out, tok)
		}
	}
	return out
}

// mergeTopics unions tokens into existing, keeping the first insertion position
// of every distinct token.
func mergeTopics(existing, tokens []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(tokens))
	out := make([]string, 0, len(existing)+len(tokens))
	for _, t := range append(existing, tokens...) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func keepLast(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return append([]string{}, items[len(items)-n:]...)
}
