package dialogue

import (
	"strings"

	"github.com/sandevgo/folio/internal/core"
)

// Classify maps an utterance to exactly one intent.
//
// The reserved keyword outranks everything. A follow-up ("more", "details")
// after the projects section outranks the catalog. Otherwise the first
// catalog entry that matches wins, with no specificity scoring.
func Classify(utterance string, c core.Context) core.Intent {
	normalized := strings.ToLower(utterance)

	if strings.Contains(normalized, reservedKeyword) {
		return core.IntentInternship
	}

	if c.HasAskedAbout(core.IntentProjects) && followUpPattern.MatchString(normalized) {
		return core.IntentSpecificProject
	}

	for _, r := range catalog {
		if r.match(normalized) {
			return r.intent
		}
	}
	return core.IntentGeneral
}
