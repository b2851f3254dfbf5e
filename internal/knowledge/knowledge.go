// Package knowledge holds the static facts the assistant answers from.
package knowledge

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/sandevgo/folio/configs"
	"github.com/sandevgo/folio/internal/core"
	"gopkg.in/yaml.v3"
)

type ExperienceKind string

const (
	KindInternship ExperienceKind = "internship"
	KindVolunteer  ExperienceKind = "volunteer"
	KindJob        ExperienceKind = "job"
)

type Personal struct {
	Name       string   `yaml:"name"`
	BirthYear  int      `yaml:"birth_year"`
	Birthday   string   `yaml:"birthday"`
	Location   string   `yaml:"location"`
	Email      string   `yaml:"email"`
	Interests  []string `yaml:"interests"`
	Philosophy string   `yaml:"philosophy"`
}

// AgeAt returns the age in whole years as of t.
func (p Personal) AgeAt(t time.Time) int {
	return t.Year() - p.BirthYear
}

func (p Personal) Age() int {
	return p.AgeAt(time.Now())
}

type Education struct {
	Institution string `yaml:"institution"`
	Degree      string `yaml:"degree"`
	Expected    string `yaml:"expected"`
}

type Experience struct {
	Organization string         `yaml:"organization"`
	Role         string         `yaml:"role"`
	Duration     string         `yaml:"duration"`
	Description  string         `yaml:"description"`
	Kind         ExperienceKind `yaml:"kind"`
	Tags         []string       `yaml:"tags"`
}

func (e Experience) HasTag(tag string) bool {
	return slices.Contains(e.Tags, tag)
}

type Skills struct {
	Languages       []string `yaml:"languages"`
	Backend         []string `yaml:"backend"`
	Databases       []string `yaml:"databases"`
	Cloud           []string `yaml:"cloud"`
	MLAI            []string `yaml:"ml_ai"`
	Tools           []string `yaml:"tools"`
	Specializations []string `yaml:"specializations"`
}

type Project struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Tech        []string `yaml:"tech"`
	Impact      string   `yaml:"impact"`
}

type Links struct {
	LinkedIn string `yaml:"linkedin"`
	GitHub   string `yaml:"github"`
	Resume   string `yaml:"resume"`
	Twitter  string `yaml:"twitter"`
	Website  string `yaml:"website"`
}

type document struct {
	Personal       Personal     `yaml:"personal"`
	Education      []Education  `yaml:"education"`
	Experience     []Experience `yaml:"experience"`
	Skills         Skills       `yaml:"skills"`
	Projects       []Project    `yaml:"projects"`
	Certifications []string     `yaml:"certifications"`
	Links          Links        `yaml:"links"`
	Facts          []string     `yaml:"facts"`
}

var (
	ErrMissingName  = errors.New("knowledge base has no personal.name")
	ErrMissingEmail = errors.New("knowledge base has no personal.email")
	ErrNoFacts      = errors.New("knowledge base has no facts")
)

// Base is the read-only knowledge base. Accessors hand out copies, so a
// loaded Base can be shared by every session.
type Base struct {
	doc document
}

// Load reads the knowledge base from path, or the embedded default when
// path is empty.
func Load(path string) (*Base, error) {
	var (
		data []byte
		err  error
	)
	if path == "" {
		data, err = configs.FS.ReadFile(configs.KnowledgeFile)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge base: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Base, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge base: %w", err)
	}
	if err := validate(doc); err != nil {
		return nil, err
	}
	return &Base{doc: doc}, nil
}

// MustDefault loads the embedded knowledge base and panics if it is invalid.
func MustDefault() *Base {
	kb, err := Load("")
	if err != nil {
		panic(err)
	}
	return kb
}

func validate(doc document) error {
	switch {
	case doc.Personal.Name == "":
		return ErrMissingName
	case doc.Personal.Email == "":
		return ErrMissingEmail
	case len(doc.Facts) == 0:
		return ErrNoFacts
	}
	return nil
}

func (b *Base) Personal() Personal {
	p := b.doc.Personal
	p.Interests = slices.Clone(p.Interests)
	return p
}

func (b *Base) Education() []Education {
	return slices.Clone(b.doc.Education)
}

func (b *Base) Experience() []Experience {
	out := make([]Experience, len(b.doc.Experience))
	for i, e := range b.doc.Experience {
		e.Tags = slices.Clone(e.Tags)
		out[i] = e
	}
	return out
}

// ExperienceOfKind filters experience entries, keeping their order.
func (b *Base) ExperienceOfKind(kind ExperienceKind) []Experience {
	var out []Experience
	for _, e := range b.Experience() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (b *Base) Skills() Skills {
	s := b.doc.Skills
	return Skills{
		Languages:       slices.Clone(s.Languages),
		Backend:         slices.Clone(s.Backend),
		Databases:       slices.Clone(s.Databases),
		Cloud:           slices.Clone(s.Cloud),
		MLAI:            slices.Clone(s.MLAI),
		Tools:           slices.Clone(s.Tools),
		Specializations: slices.Clone(s.Specializations),
	}
}

func (b *Base) Projects() []Project {
	out := make([]Project, len(b.doc.Projects))
	for i, p := range b.doc.Projects {
		p.Tech = slices.Clone(p.Tech)
		out[i] = p
	}
	return out
}

func (b *Base) Certifications() []string {
	return slices.Clone(b.doc.Certifications)
}

func (b *Base) Links() Links {
	return b.doc.Links
}

func (b *Base) Facts() []string {
	return slices.Clone(b.doc.Facts)
}

// LinkActions is the fixed set of buttons rendered next to contact replies:
// professional network, code hosting, email and résumé, in that order.
func (b *Base) LinkActions() []core.LinkAction {
	l := b.doc.Links
	candidates := []core.LinkAction{
		{Label: "LinkedIn", URL: l.LinkedIn},
		{Label: "GitHub", URL: l.GitHub},
		{Label: "Email", URL: mailto(b.doc.Personal.Email)},
		{Label: "Resume", URL: l.Resume},
	}

	actions := make([]core.LinkAction, 0, len(candidates))
	for _, a := range candidates {
		if a.URL != "" {
			actions = append(actions, a)
		}
	}
	return actions
}

func mailto(email string) string {
	if email == "" {
		return ""
	}
	return "mailto:" + email
}
