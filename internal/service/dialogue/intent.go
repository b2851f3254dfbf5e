package dialogue

import (
	"regexp"
	"strings"

	"github.com/sandevgo/folio/internal/core"
)

type recognizer struct {
	intent  core.Intent
	pattern *regexp.Regexp
}

func (r recognizer) match(normalized string) bool {
	return r.pattern.MatchString(normalized)
}

// reservedKeyword forces IntentInternship before the catalog is consulted.
const reservedKeyword = "internship"

// followUpPattern marks a request for more detail on the previous topic.
var followUpPattern = regexp.MustCompile(`\b(more|tell me|details?|specific)\b`)

// linkTargetPattern matches the profiles that are rendered as link buttons.
var linkTargetPattern = regexp.MustCompile(`\b(linkedin|github|resume|cv)\b`)

// NamesLinkTarget reports whether utterance mentions a profile that has a
// link button, whatever intent it classifies as.
func NamesLinkTarget(utterance string) bool {
	return linkTargetPattern.MatchString(strings.ToLower(utterance))
}

// catalog is scanned top to bottom and the first match wins. Keep general last.
var catalog = []recognizer{
	{core.IntentGreeting, regexp.MustCompile(`\b(hi|hello|hey|greetings|good (morning|afternoon|evening))\b`)},
	{core.IntentPersonal, regexp.MustCompile(`\b(age|how old|birthday|birth ?date|born|who are you|who is|introduce|yourself|location|country|city|where (are|do) you (from|live|stay)|based in|reside)\b`)},
	{core.IntentEducation, regexp.MustCompile(`\b(school|college|university|study|studies|studying|education|degree|graduat\w*|alma mater|b\.?tech|vit)\b`)},
	{core.IntentExperience, regexp.MustCompile(`\b(experience|work|worked|working|job|jobs|career|employ\w*|intern|interned|company|companies)\b`)},
	{core.IntentSpecificProject, regexp.MustCompile(`\b(project details|specific project|which project|details (of|on|about) (the |your )?projects?)\b`)},
	{core.IntentProjects, regexp.MustCompile(`\b(projects?|portfolio|built|build|repos?|repositories)\b`)},
	{core.IntentCertifications, regexp.MustCompile(`\b(certifications?|certificates?|certified|credentials?|aws)\b`)},
	{core.IntentLeadership, regexp.MustCompile(`\b(lead|leads|leader|leadership|led|events?|workshops?|seminars?|iete|volunteer\w*|club)\b`)},
	{core.IntentSkills, regexp.MustCompile(`\b(skills?|technolog(y|ies)|stack|programming|languages?|frameworks?|tools?|expertise|speciali[sz]\w*|good at)\b`)},
	{core.IntentContact, regexp.MustCompile(`\b(contact|reach|e-?mail|mail|hire|hiring|get in touch|touch|connect|talk to)\b`)},
	{core.IntentLinks, regexp.MustCompile(`\b(linkedin|github|twitter|tweets?|website|site|resume|cv|profiles?|socials?|links?)\b`)},
	{core.IntentAchievements, regexp.MustCompile(`\b(achievements?|awards?|accomplish\w*|recogni[sz]\w*|proud|highlights?)\b`)},
	{core.IntentFuture, regexp.MustCompile(`\b(future|goals?|plans?|next|aspir\w*|ambitions?|looking for|open to)\b`)},
	{core.IntentFact, regexp.MustCompile(`\b(fun fact|facts?|funny|joke|random|something cool|did you know|trivia)\b`)},
	{core.IntentGeneral, regexp.MustCompile(`(?s).*`)},
}

// Catalog lists the intents in the order they are tried.
func Catalog() []core.Intent {
	out := make([]core.Intent, len(catalog))
	for i, r := range catalog {
		out[i] = r.intent
	}
	return out
}
