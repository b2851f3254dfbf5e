package dialogue

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/sandevgo/folio/internal/core"
	"github.com/sandevgo/folio/internal/knowledge"
)

const (
	GreetingPhrase = "Hello!"
	FunFactPrefix  = "Here's a fun fact: "
	noFactsReply   = "I don't have anything else to share right now. Try asking about projects, skills or experience."
)

// Synthesize renders the reply for intent from the knowledge base. Only the
// fact and general intents consume r.
func Synthesize(intent core.Intent, kb *knowledge.Base, r Rand) core.Reply {
	switch intent {
	case core.IntentGreeting:
		return text(greeting(kb))
	case core.IntentPersonal:
		return text(personal(kb))
	case core.IntentEducation:
		return text(education(kb))
	case core.IntentExperience:
		return text(experience(kb))
	case core.IntentSkills:
		return text(skills(kb))
	case core.IntentProjects:
		return text(projects(kb))
	case core.IntentSpecificProject:
		return text(projectDetails(kb))
	case core.IntentCertifications:
		return text(certifications(kb))
	case core.IntentLeadership:
		return text(leadership(kb))
	case core.IntentContact:
		return withLinks(contact(kb))
	case core.IntentLinks:
		return withLinks(links(kb))
	case core.IntentAchievements:
		return text(achievements(kb))
	case core.IntentFuture:
		return text(future(kb))
	case core.IntentInternship:
		return text(InternshipSummary(kb))
	case core.IntentFact:
		return text(randomFact(kb, r, FunFactPrefix))
	default:
		return text(randomFact(kb, r, fmt.Sprintf("Here's something about %s: ", firstName(kb))))
	}
}

// SeedGreeting is the first message of every session.
func SeedGreeting(kb *knowledge.Base) string {
	name := firstName(kb)
	return fmt.Sprintf("%s I'm %s's assistant. I know about %s's projects, skills, experience and how to get in touch. What would you like to explore today?",
		GreetingPhrase, name, name)
}

// InternshipSummary is the fixed reply for the reserved internship keyword.
func InternshipSummary(kb *knowledge.Base) string {
	internships := kb.ExperienceOfKind(knowledge.KindInternship)
	if len(internships) == 0 {
		return fmt.Sprintf("%s hasn't listed any internships yet.", firstName(kb))
	}

	var sb strings.Builder
	sb.WriteString("**Internship Experience:**\n")
	for _, e := range internships {
		fmt.Fprintf(&sb, "\n- %s at %s (%s)\n  - %s\n", e.Role, e.Organization, e.Duration, e.Description)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func text(s string) core.Reply {
	return core.Reply{Text: s}
}

func withLinks(s string) core.Reply {
	return core.Reply{Text: s, HasLinks: true}
}

func firstName(kb *knowledge.Base) string {
	fields := strings.Fields(kb.Personal().Name)
	if len(fields) == 0 {
		return "the owner"
	}
	return fields[0]
}

func greeting(kb *knowledge.Base) string {
	return fmt.Sprintf("%s How can I assist you in learning more about %s?", GreetingPhrase, firstName(kb))
}

func personal(kb *knowledge.Base) string {
	p := kb.Personal()

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s is %d years old", p.Name, p.Age())
	if p.Birthday != "" {
		fmt.Fprintf(&sb, " (born %s)", p.Birthday)
	}
	if p.Location != "" {
		fmt.Fprintf(&sb, " and is based in %s", p.Location)
	}
	sb.WriteString(".")
	if len(p.Interests) > 0 {
		fmt.Fprintf(&sb, " Interests: %s.", strings.Join(p.Interests, ", "))
	}
	return sb.String()
}

func education(kb *knowledge.Base) string {
	entries := kb.Education()
	if len(entries) == 0 {
		return fmt.Sprintf("%s hasn't listed any education yet.", firstName(kb))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s's education:\n", firstName(kb))
	for _, e := range entries {
		fmt.Fprintf(&sb, "- **%s**, %s (%s)\n", e.Degree, e.Institution, e.Expected)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func experience(kb *knowledge.Base) string {
	entries := kb.Experience()
	if len(entries) == 0 {
		return fmt.Sprintf("%s hasn't listed any experience yet.", firstName(kb))
	}

	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		blocks = append(blocks, experienceBlock(e))
	}
	return fmt.Sprintf("Here's %s's experience:\n\n%s", firstName(kb), strings.Join(blocks, "\n\n"))
}

func experienceBlock(e knowledge.Experience) string {
	return fmt.Sprintf("**%s** at %s (%s)\n%s", e.Role, e.Organization, e.Duration, e.Description)
}

func skills(kb *knowledge.Base) string {
	s := kb.Skills()
	categories := []struct {
		label string
		items []string
	}{
		{"Languages", s.Languages},
		{"Backend", s.Backend},
		{"Databases", s.Databases},
		{"Cloud", s.Cloud},
		{"ML/AI", s.MLAI},
		{"Tools", s.Tools},
		{"Specializations", s.Specializations},
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s's core skills are:", firstName(kb))
	listed := 0
	for _, c := range categories {
		if len(c.items) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n- %s: %s", c.label, strings.Join(c.items, ", "))
		listed++
	}
	if listed == 0 {
		return fmt.Sprintf("%s hasn't listed any skills yet.", firstName(kb))
	}
	return sb.String()
}

func projects(kb *knowledge.Base) string {
	entries := kb.Projects()
	if len(entries) == 0 {
		return fmt.Sprintf("%s hasn't listed any projects yet.", firstName(kb))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s has built:\n", firstName(kb))
	for _, p := range entries {
		fmt.Fprintf(&sb, "- **%s**: %s\n", p.Name, p.Description)
	}
	sb.WriteString("\nAsk me for more details on any of them.")
	return sb.String()
}

func projectDetails(kb *knowledge.Base) string {
	entries := kb.Projects()
	if len(entries) == 0 {
		return fmt.Sprintf("%s hasn't listed any projects yet.", firstName(kb))
	}

	blocks := make([]string, 0, len(entries))
	for _, p := range entries {
		block := fmt.Sprintf("**%s**\n%s", p.Name, p.Description)
		if len(p.Tech) > 0 {
			block += "\nTech: " + strings.Join(p.Tech, ", ")
		}
		if p.Impact != "" {
			block += "\nImpact: " + p.Impact
		}
		blocks = append(blocks, block)
	}
	return "Here are the project details:\n\n" + strings.Join(blocks, "\n\n")
}

func certifications(kb *knowledge.Base) string {
	certs := kb.Certifications()
	if len(certs) == 0 {
		return fmt.Sprintf("%s hasn't listed any certifications yet.", firstName(kb))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s holds these certifications:", firstName(kb))
	for _, c := range certs {
		sb.WriteString("\n- " + c)
	}
	return sb.String()
}

func leadership(kb *knowledge.Base) string {
	var blocks []string
	for _, e := range kb.Experience() {
		if e.Kind == knowledge.KindVolunteer || e.HasTag("Leadership") {
			blocks = append(blocks, experienceBlock(e))
		}
	}
	if len(blocks) == 0 {
		return fmt.Sprintf("%s hasn't listed any leadership roles yet.", firstName(kb))
	}
	return fmt.Sprintf("%s's leadership roles:\n\n%s", firstName(kb), strings.Join(blocks, "\n\n"))
}

func contact(kb *knowledge.Base) string {
	return fmt.Sprintf("The quickest way to reach %s is by email or LinkedIn. Use the links below, or grab a copy of the résumé.", firstName(kb))
}

// links names the profiles without buttons by handle or host, never as a URL.
func links(kb *knowledge.Base) string {
	name := firstName(kb)
	l := kb.Links()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Here are %s's profiles. Pick one of the links below.", name)
	if handle := lastPathSegment(l.Twitter); handle != "" {
		fmt.Fprintf(&sb, " %s is also on Twitter as @%s.", name, handle)
	}
	if host := hostOf(l.Website); host != "" {
		fmt.Fprintf(&sb, " The personal site lives at %s.", host)
	}
	return sb.String()
}

func lastPathSegment(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return path.Base(strings.TrimSuffix(u.Path, "/"))
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Host, "www.")
}

func achievements(kb *knowledge.Base) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Some highlights from %s's work:", firstName(kb))
	for _, p := range kb.Projects() {
		if p.Impact != "" {
			fmt.Fprintf(&sb, "\n- **%s**: %s", p.Name, p.Impact)
		}
	}
	if n := len(kb.Certifications()); n > 0 {
		fmt.Fprintf(&sb, "\n- Holds %d professional certifications", n)
	}
	return sb.String()
}

func future(kb *knowledge.Base) string {
	p := kb.Personal()

	var sb strings.Builder
	sb.WriteString("Looking ahead, " + firstName(kb))
	if p.Philosophy != "" {
		sb.WriteString(" is focused on " + p.Philosophy)
	} else {
		sb.WriteString(" is open to new opportunities")
	}
	if len(p.Interests) > 0 {
		sb.WriteString(", with a particular interest in " + strings.Join(p.Interests, ", "))
	}
	sb.WriteString(".")

	if edu := kb.Education(); len(edu) > 0 {
		fmt.Fprintf(&sb, " Currently studying %s at %s (%s).", edu[0].Degree, edu[0].Institution, edu[0].Expected)
	}
	return sb.String()
}

func randomFact(kb *knowledge.Base, r Rand, prefix string) string {
	fact, ok := pick(kb.Facts(), r)
	if !ok {
		return noFactsReply
	}
	return prefix + fact
}
