// Package narrator turns a resolved round into flavor text.
package narrator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ericogr/biogenesis/internal/constants"
	"github.com/ericogr/biogenesis/internal/game"
	"github.com/ericogr/biogenesis/internal/gemini"
	"github.com/ericogr/biogenesis/internal/logging"
	"github.com/ericogr/biogenesis/internal/run"
)

// MaxTraits caps the acquired traits kept from a response.
const MaxTraits = 3

// DefaultPromptTemplate is used when no template is configured. Tokens:
// {{environment}}, {{environment_description}}, {{dna}}, {{damage}},
// {{health}}, {{max_health}}, {{language}}.
const DefaultPromptTemplate = `Act as a biological simulation narrator.

CONTEXT:
- Environment: {{environment}} ({{environment_description}})
- Organism DNA: {{dna}}
- CALCULATED DAMAGE: {{damage}} (The organism lost this much HP)
- HP Status: {{health}} / {{max_health}} remaining.

TASK:
Write a short, engaging result in {{language}}.

GUIDELINES:
- If Damage is 0 or low: Describe the organism perfectly adapting, thriving, and resisting the elements.
- If Damage is high: Describe the organism suffering, parts of it freezing/burning/dissolving, barely surviving.
- 'organismName': Give it a cool evolution name based on its DNA traits (A=Heat, T=Cold, C=Toxin, G=Armor).
- 'narrative': A dramatic micro-story (2-3 sentences).
- 'acquiredTraits': 3 short distinct features.`

// JSONGenerator is the slice of the Gemini client the narrator needs.
type JSONGenerator interface {
	GenerateJSON(ctx context.Context, r gemini.Request, out interface{}) error
}

type narrativePayload struct {
	OrganismName     string   `json:"organismName" jsonschema:"description=Sci-fi name of the evolved organism"`
	Description      string   `json:"description" jsonschema:"description=Appearance description"`
	Narrative        string   `json:"narrative" jsonschema:"description=Short story of survival or death"`
	AcquiredTraits   []string `json:"acquiredTraits" jsonschema:"description=List of 3 special abilities"`
	MutationFeedback string   `json:"mutationFeedback" jsonschema:"description=Advice on the DNA"`
}

var narrativeSchema = gemini.SchemaFor(&narrativePayload{})

var ErrInvalidNarrative = errors.New("invalid narrative")

// Narrator asks Gemini to narrate rounds.
type Narrator struct {
	client   JSONGenerator
	template string
	language string
}

// Option customizes a Narrator.
type Option func(*Narrator)

// WithPromptTemplate overrides DefaultPromptTemplate; blank keeps it.
func WithPromptTemplate(t string) Option {
	return func(n *Narrator) {
		if t = strings.TrimSpace(t); t != "" {
			n.template = t
		}
	}
}

// WithLanguage sets the language of the narration.
func WithLanguage(lang string) Option {
	return func(n *Narrator) {
		if lang != "" {
			n.language = lang
		}
	}
}

// New builds a Gemini-backed narrator.
func New(client JSONGenerator, opts ...Option) *Narrator {
	n := &Narrator{client: client, template: DefaultPromptTemplate, language: "English"}
	for _, o := range opts {
		o(n)
	}
	return n
}

// BuildPrompt substitutes the template tokens for req.
func (n *Narrator) BuildPrompt(req run.NarrationRequest) string {
	r := strings.NewReplacer(
		"{{environment}}", req.Environment.Name,
		"{{environment_description}}", req.Environment.Description,
		"{{dna}}", req.Sequence.String(),
		"{{damage}}", strconv.Itoa(req.DamageTaken),
		"{{health}}", strconv.Itoa(req.HealthAfter()),
		"{{max_health}}", strconv.Itoa(req.MaxHealth),
		"{{language}}", n.language,
	)
	return r.Replace(n.template)
}

// Narrate implements run.Narrator.
func (n *Narrator) Narrate(ctx context.Context, req run.NarrationRequest) (game.Narrative, error) {
	prompt := n.BuildPrompt(req)
	logging.Debug("narration prompt", logging.Fields{constants.LogFieldRound: req.Round, constants.LogFieldSequence: req.Sequence.String()})

	var p narrativePayload
	if err := n.client.GenerateJSON(ctx, gemini.Request{Prompt: prompt, Schema: narrativeSchema}, &p); err != nil {
		return game.Narrative{}, err
	}
	return p.toNarrative()
}

func (p narrativePayload) toNarrative() (game.Narrative, error) {
	out := game.Narrative{
		OrganismName:     strings.Trim(strings.TrimSpace(p.OrganismName), "\"'"),
		Description:      strings.TrimSpace(p.Description),
		Narrative:        strings.TrimSpace(p.Narrative),
		MutationFeedback: strings.TrimSpace(p.MutationFeedback),
	}
	if out.OrganismName == "" || out.Narrative == "" {
		return game.Narrative{}, fmt.Errorf("%w: missing name or narrative", ErrInvalidNarrative)
	}
	for _, t := range p.AcquiredTraits {
		if t = strings.TrimSpace(t); t != "" {
			out.AcquiredTraits = append(out.AcquiredTraits, t)
		}
		if len(out.AcquiredTraits) == MaxTraits {
			break
		}
	}
	if out.AcquiredTraits == nil {
		out.AcquiredTraits = []string{}
	}
	return out, nil
}
