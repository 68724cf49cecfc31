// Package envgen produces round environments, either from Gemini or
// procedurally for offline play.
package envgen

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ericogr/biogenesis/internal/constants"
	"github.com/ericogr/biogenesis/internal/game"
	"github.com/ericogr/biogenesis/internal/gemini"
	"github.com/ericogr/biogenesis/internal/logging"
	"github.com/ericogr/biogenesis/internal/run"
)

// Tier is the threat band requested for a round.
type Tier struct {
	Name string
	Min  float64
	Max  float64
}

// TierFor maps a round to its difficulty band.
func TierFor(round int) Tier {
	switch {
	case round <= 2:
		return Tier{Name: "EASY", Min: 20, Max: 50}
	case round <= 5:
		return Tier{Name: "MEDIUM", Min: 40, Max: 80}
	default:
		return Tier{Name: "HARD", Min: 70, Max: 100}
	}
}

// DefaultPromptTemplate is used when no template is configured. Tokens:
// {{round}}, {{max_rounds}}, {{difficulty}}, {{min}}, {{max}}, {{language}}.
const DefaultPromptTemplate = `Generate a sci-fi environment for a biological evolution game.
Current Round: {{round}} of {{max_rounds}}.
Target Difficulty Level: {{difficulty}}.

STAT CONSTRAINTS:
- Temperature, Toxicity, Radiation, Scarcity MUST be between {{min}} and {{max}}.
- Do NOT make everything maximum. Vary the threats.

IMPORTANT:
1. Provide 'name' and 'description' in {{language}}.
2. 'name' should be evocative (e.g. "X-9 Crystal Wastes", "Scorpius Gamma Lava Sea").
3. 'description' should be descriptive and atmospheric.`

// JSONGenerator is the slice of the Gemini client envgen needs.
type JSONGenerator interface {
	GenerateJSON(ctx context.Context, r gemini.Request, out interface{}) error
}

type environmentPayload struct {
	Name             string  `json:"name" jsonschema:"description=Creative name of the planet or biome"`
	Description      string  `json:"description" jsonschema:"description=Atmospheric and dangerous description"`
	Temperature      float64 `json:"temperature" jsonschema:"description=0 to 100"`
	Toxicity         float64 `json:"toxicity" jsonschema:"description=0 to 100"`
	Radiation        float64 `json:"radiation" jsonschema:"description=0 to 100"`
	ResourceScarcity float64 `json:"resourceScarcity" jsonschema:"description=0 to 100"`
	ImgPrompt        string  `json:"imgPrompt" jsonschema:"description=A visual prompt for a background"`
}

var environmentSchema = gemini.SchemaFor(&environmentPayload{})

var ErrInvalidEnvironment = errors.New("invalid environment")

// Generator asks Gemini for environments.
type Generator struct {
	client      JSONGenerator
	template    string
	language    string
	temperature float64
}

// Option customizes a Generator.
type Option func(*Generator)

// WithPromptTemplate overrides DefaultPromptTemplate; blank keeps it.
func WithPromptTemplate(t string) Option {
	return func(g *Generator) {
		if t = strings.TrimSpace(t); t != "" {
			g.template = t
		}
	}
}

// WithLanguage sets the language of names and descriptions.
func WithLanguage(lang string) Option {
	return func(g *Generator) {
		if lang != "" {
			g.language = lang
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(g *Generator) { g.temperature = t }
}

// New builds a Gemini-backed generator.
func New(client JSONGenerator, opts ...Option) *Generator {
	g := &Generator{client: client, template: DefaultPromptTemplate, language: "English", temperature: 1.0}
	for _, o := range opts {
		o(g)
	}
	return g
}

// BuildPrompt substitutes the template tokens for req.
func (g *Generator) BuildPrompt(req run.EnvironmentRequest) string {
	tier := TierFor(req.Round)
	r := strings.NewReplacer(
		"{{round}}", strconv.Itoa(req.Round),
		"{{max_rounds}}", strconv.Itoa(req.RoundCeiling),
		"{{difficulty}}", tier.Name,
		"{{min}}", strconv.FormatFloat(tier.Min, 'f', -1, 64),
		"{{max}}", strconv.FormatFloat(tier.Max, 'f', -1, 64),
		"{{language}}", g.language,
	)
	return r.Replace(g.template)
}

// GenerateEnvironment implements run.EnvironmentGenerator.
func (g *Generator) GenerateEnvironment(ctx context.Context, req run.EnvironmentRequest) (game.Environment, error) {
	prompt := g.BuildPrompt(req)
	logging.Debug("environment prompt", logging.Fields{constants.LogFieldRound: req.Round, "prompt": prompt})

	temp := g.temperature
	var p environmentPayload
	if err := g.client.GenerateJSON(ctx, gemini.Request{Prompt: prompt, Schema: environmentSchema, Temperature: &temp}, &p); err != nil {
		return game.Environment{}, err
	}
	return p.toEnvironment()
}

func (p environmentPayload) toEnvironment() (game.Environment, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return game.Environment{}, fmt.Errorf("%w: empty name", ErrInvalidEnvironment)
	}
	env := game.Environment{
		Name:        name,
		Description: strings.TrimSpace(p.Description),
		ImagePrompt: strings.TrimSpace(p.ImgPrompt),
	}
	var err error
	if env.Temperature, err = threat("temperature", p.Temperature); err != nil {
		return game.Environment{}, err
	}
	if env.Toxicity, err = threat("toxicity", p.Toxicity); err != nil {
		return game.Environment{}, err
	}
	if env.Radiation, err = threat("radiation", p.Radiation); err != nil {
		return game.Environment{}, err
	}
	if env.ResourceScarcity, err = threat("resourceScarcity", p.ResourceScarcity); err != nil {
		return game.Environment{}, err
	}
	return env, nil
}

// threat rejects non-finite values and clamps the rest into [0,100].
func threat(name string, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s is not finite", ErrInvalidEnvironment, name)
	}
	return math.Max(0, math.Min(100, v)), nil
}
