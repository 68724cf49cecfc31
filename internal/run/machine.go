package run

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/ericogr/biogenesis/internal/constants"
	"github.com/ericogr/biogenesis/internal/engine"
	"github.com/ericogr/biogenesis/internal/game"
	"github.com/ericogr/biogenesis/internal/logging"
)

var (
	// ErrActionsLocked rejects player actions while a collaborator call is
	// outstanding.
	ErrActionsLocked = errors.New("actions are locked while the round is scanning or evaluating")
	// ErrInvalidPhase rejects an action the current phase does not accept.
	ErrInvalidPhase = errors.New("action not allowed in the current phase")
	// ErrInvalidSpecies rejects a template whose sequence cannot be parsed.
	ErrInvalidSpecies = errors.New("species template is not a valid sequence")
)

// State is a point-in-time copy of a run.
type State struct {
	Phase        Phase                  `json:"phase"`
	Round        int                    `json:"round"`
	RoundCeiling int                    `json:"round_ceiling"`
	Score        int                    `json:"score"`
	Health       int                    `json:"health"`
	MaxHealth    int                    `json:"max_health"`
	SpeciesKey   string                 `json:"species_key,omitempty"`
	SpeciesName  string                 `json:"species_name,omitempty"`
	Environment  *game.Environment      `json:"environment,omitempty"`
	Working      game.Sequence          `json:"working"`
	Confirmed    game.Sequence          `json:"confirmed"`
	NewSlots     int                    `json:"new_slots"`
	LastResult   *game.EvolutionResult  `json:"last_result,omitempty"`
	History      []game.EvolutionResult `json:"history"`
}

func (s State) clone() State {
	out := s
	if s.Environment != nil {
		env := *s.Environment
		out.Environment = &env
	}
	if s.LastResult != nil {
		r := cloneResult(*s.LastResult)
		out.LastResult = &r
	}
	out.Working = s.Working.Clone()
	out.Confirmed = s.Confirmed.Clone()
	out.History = make([]game.EvolutionResult, len(s.History))
	for i, r := range s.History {
		out.History[i] = cloneResult(r)
	}
	return out
}

func cloneResult(r game.EvolutionResult) game.EvolutionResult {
	r.Sequence = r.Sequence.Clone()
	r.AcquiredTraits = append([]string(nil), r.AcquiredTraits...)
	return r
}

// Prediction is the live engineering readout for the working sequence.
type Prediction struct {
	Stats     game.OrganismStats     `json:"stats"`
	Combos    []engine.ComboMatch    `json:"combos"`
	Breakdown engine.DamageBreakdown `json:"breakdown"`
	Damage    int                    `json:"damage"`
	DamageMin int                    `json:"damage_min"`
	DamageMax int                    `json:"damage_max"`
	GCContent float64                `json:"gc_content"`
	// MutatedSlots lists historical indices that differ from the confirmed
	// sequence.
	MutatedSlots       []int  `json:"mutated_slots"`
	MutationsRemaining int    `json:"mutations_remaining"`
	Editable           []bool `json:"editable"`
}

// Option customizes a Machine.
type Option func(*Machine)

// WithVariance replaces the damage variance source. fn should return values in
// [-engine.MaxVariance, engine.MaxVariance]; anything outside is clamped.
func WithVariance(fn func() float64) Option {
	return func(m *Machine) { m.variance = fn }
}

// WithRunID tags log entries with the owning run.
func WithRunID(id string) Option {
	return func(m *Machine) { m.runID = id }
}

func defaultVariance() float64 {
	return rand.Float64()*2*engine.MaxVariance - engine.MaxVariance
}

// Machine is the round state machine. It is not safe for concurrent use.
type Machine struct {
	rules    Rules
	variance func() float64
	runID    string
	state    State

	scan      *EnvironmentRequest
	narration *NarrationRequest
	baseDmg   int
}

// New builds a machine in the intro phase. It panics when rules are invalid;
// validate configuration before calling it.
func New(rules Rules, opts ...Option) *Machine {
	if err := rules.Validate(); err != nil {
		panic(fmt.Sprintf("run: invalid rules: %v", err))
	}
	m := &Machine{rules: rules, variance: defaultVariance}
	for _, o := range opts {
		o(m)
	}
	m.reset()
	return m
}

func (m *Machine) reset() {
	m.state = State{
		Phase:        PhaseIntro,
		Round:        1,
		RoundCeiling: m.rules.RoundCeiling,
		Health:       m.rules.StartHealth,
		MaxHealth:    m.rules.StartHealth,
		History:      []game.EvolutionResult{},
	}
	m.scan = nil
	m.narration = nil
	m.baseDmg = 0
}

// Rules returns the tuning the machine was built with.
func (m *Machine) Rules() Rules { return m.rules }

// Phase returns the current phase.
func (m *Machine) Phase() Phase { return m.state.Phase }

// Round returns the current 1-based round.
func (m *Machine) Round() int { return m.state.Round }

// Snapshot returns a deep copy of the run state.
func (m *Machine) Snapshot() State { return m.state.clone() }

// Environment returns the current round's environment once scanning is done.
func (m *Machine) Environment() (game.Environment, bool) {
	if m.state.Environment == nil {
		return game.Environment{}, false
	}
	return *m.state.Environment, true
}

// LastResult returns the latest round outcome; it exists only in the
// survived, defeated and victorious phases.
func (m *Machine) LastResult() (game.EvolutionResult, bool) {
	if !m.state.Phase.Resolved() || m.state.LastResult == nil {
		return game.EvolutionResult{}, false
	}
	return cloneResult(*m.state.LastResult), true
}

// History returns every resolved round in order.
func (m *Machine) History() []game.EvolutionResult {
	return m.state.clone().History
}

// ScanRequest is the outstanding environment request while scanning.
func (m *Machine) ScanRequest() (EnvironmentRequest, bool) {
	if m.state.Phase != PhaseScanning || m.scan == nil {
		return EnvironmentRequest{}, false
	}
	return *m.scan, true
}

// NarrationRequest is the outstanding narrator request while evaluating.
func (m *Machine) NarrationRequest() (NarrationRequest, bool) {
	if m.state.Phase != PhaseEvaluating || m.narration == nil {
		return NarrationRequest{}, false
	}
	req := *m.narration
	req.Sequence = req.Sequence.Clone()
	return req, true
}

func (m *Machine) require(p Phase) error {
	if m.state.Phase == p {
		return nil
	}
	if m.state.Phase.Transient() {
		return ErrActionsLocked
	}
	return fmt.Errorf("%w: %s", ErrInvalidPhase, m.state.Phase)
}

func (m *Machine) fields() logging.Fields {
	return logging.Fields{
		constants.LogFieldRunID: m.runID,
		constants.LogFieldRound: m.state.Round,
		constants.LogFieldPhase: string(m.state.Phase),
	}
}

// Begin leaves the intro screen.
func (m *Machine) Begin() error {
	if err := m.require(PhaseIntro); err != nil {
		return err
	}
	m.state.Phase = PhaseSpeciesSelect
	return nil
}

// SelectSpecies seeds the run from a template and starts the first scan.
// The template is extended with the initial new slots.
func (m *Machine) SelectSpecies(sp game.Species) (EnvironmentRequest, error) {
	if err := m.require(PhaseSpeciesSelect); err != nil {
		return EnvironmentRequest{}, err
	}
	tmpl, err := sp.Sequence()
	if err != nil {
		return EnvironmentRequest{}, fmt.Errorf("%w: %s: %v", ErrInvalidSpecies, sp.Key, err)
	}
	if len(tmpl) == 0 {
		return EnvironmentRequest{}, fmt.Errorf("%w: %s is empty", ErrInvalidSpecies, sp.Key)
	}
	working := tmpl.Clone()
	for i := 0; i < m.rules.InitialNewSlots; i++ {
		working = append(working, m.rules.DefaultBase)
	}
	m.state.SpeciesKey = sp.Key
	m.state.SpeciesName = sp.Name
	m.state.Round = 1
	m.state.Score = 0
	m.state.Health = m.rules.StartHealth
	m.state.MaxHealth = m.rules.StartHealth
	m.state.Working = working
	m.state.Confirmed = working.Clone()
	m.state.NewSlots = m.rules.InitialNewSlots
	m.state.History = []game.EvolutionResult{}
	m.state.LastResult = nil
	f := m.fields()
	f[constants.LogFieldSpecies] = sp.Key
	f[constants.LogFieldSequence] = working.String()
	logging.Info("species selected", f)
	return m.startScan(), nil
}

// NextRound grows the organism after a survived round and starts the next
// scan.
func (m *Machine) NextRound() (EnvironmentRequest, error) {
	if err := m.require(PhaseSurvived); err != nil {
		return EnvironmentRequest{}, err
	}
	s := &m.state
	s.Round++
	s.MaxHealth += m.rules.HealthGrowth
	heal := int(float64(s.MaxHealth) * m.rules.HealFraction)
	s.Health += heal
	if s.Health > s.MaxHealth {
		s.Health = s.MaxHealth
	}
	for i := 0; i < m.rules.NewSlotsPerRound; i++ {
		s.Working = append(s.Working, m.rules.DefaultBase)
	}
	s.Confirmed = s.Working.Clone()
	s.NewSlots = m.rules.NewSlotsPerRound
	s.LastResult = nil
	return m.startScan(), nil
}

func (m *Machine) startScan() EnvironmentRequest {
	m.state.Environment = nil
	m.state.Phase = PhaseScanning
	req := EnvironmentRequest{Round: m.state.Round, RoundCeiling: m.state.RoundCeiling}
	m.scan = &req
	m.assertInvariants()
	return req
}

// CompleteScan installs the generator's answer, or the fallback environment
// when it failed, and opens engineering. It never fails on collaborator
// errors.
func (m *Machine) CompleteScan(out EnvironmentOutcome) (game.Environment, error) {
	if m.state.Phase != PhaseScanning {
		return game.Environment{}, fmt.Errorf("%w: %s", ErrInvalidPhase, m.state.Phase)
	}
	env := out.Environment
	err := out.Err
	if err == nil {
		err = checkEnvironment(env)
	}
	if err != nil {
		logging.Error("environment generation failed; using fallback", err, m.fields())
		env = FallbackEnvironment(m.state.Round)
	} else {
		env.Fallback = false
	}
	m.state.Environment = &env
	m.state.Phase = PhaseEngineering
	m.scan = nil
	m.assertInvariants()
	return env, nil
}

// CycleSlot advances the base at index under the mutation policy.
func (m *Machine) CycleSlot(index int) (game.Base, error) {
	if err := m.require(PhaseEngineering); err != nil {
		return 0, err
	}
	next, err := engine.AttemptEdit(index, m.state.Working, m.state.Confirmed, m.state.NewSlots)
	if err != nil {
		return 0, err
	}
	m.state.Working = next
	m.assertInvariants()
	return next[index], nil
}

// Prediction reports stats and expected damage for the working sequence.
func (m *Machine) Prediction() (Prediction, error) {
	s := &m.state
	if s.Environment == nil || len(s.Working) == 0 {
		if s.Phase.Transient() {
			return Prediction{}, ErrActionsLocked
		}
		return Prediction{}, fmt.Errorf("%w: %s", ErrInvalidPhase, s.Phase)
	}
	seq := s.Working
	stats := engine.ComputeStats(seq)
	breakdown := engine.BreakDown(stats, *s.Environment)
	damage := breakdown.Total()
	lo, hi := engine.PredictRange(damage)
	mutated := engine.HistoricalMutations(seq, s.Confirmed, s.NewSlots)
	remaining := engine.MutationsPerRound - len(mutated)
	editable := make([]bool, len(seq))
	if s.Phase == PhaseEngineering {
		for i := range seq {
			editable[i] = engine.IsSlotEditable(i, seq, s.Confirmed, s.NewSlots)
		}
	}
	if mutated == nil {
		mutated = []int{}
	}
	return Prediction{
		Stats:              stats,
		Combos:             engine.MatchCombos(seq),
		Breakdown:          breakdown,
		Damage:             damage,
		DamageMin:          lo,
		DamageMax:          hi,
		GCContent:          seq.GCContent(),
		MutatedSlots:       mutated,
		MutationsRemaining: remaining,
		Editable:           editable,
	}, nil
}

// Commit locks the working sequence, rolls the damage and starts the
// evaluation. The returned request goes to the narrator.
func (m *Machine) Commit() (NarrationRequest, error) {
	if err := m.require(PhaseEngineering); err != nil {
		return NarrationRequest{}, err
	}
	s := &m.state
	stats := engine.ComputeStats(s.Working)
	m.baseDmg = engine.PredictDamage(stats, *s.Environment)
	resolved := engine.ResolveDamage(m.baseDmg, m.variance())
	req := NarrationRequest{
		Round:       s.Round,
		Sequence:    s.Working.Clone(),
		Environment: *s.Environment,
		DamageTaken: resolved,
		Health:      s.Health,
		MaxHealth:   s.MaxHealth,
	}
	m.narration = &req
	s.Phase = PhaseEvaluating
	f := m.fields()
	f[constants.LogFieldSequence] = s.Working.String()
	f[constants.LogFieldBaseDamage] = m.baseDmg
	f[constants.LogFieldDamage] = resolved
	logging.Debug("sequence committed", f)
	m.assertInvariants()
	out := req
	out.Sequence = req.Sequence.Clone()
	return out, nil
}

// CompleteEvaluation applies the committed damage, attaches the narrator's
// content (or the fallback) and decides the round outcome.
func (m *Machine) CompleteEvaluation(out NarrationOutcome) (game.EvolutionResult, error) {
	if m.state.Phase != PhaseEvaluating || m.narration == nil {
		return game.EvolutionResult{}, fmt.Errorf("%w: %s", ErrInvalidPhase, m.state.Phase)
	}
	s := &m.state
	req := *m.narration

	narrative := out.Narrative
	fallback := false
	if out.Err != nil {
		logging.Error("evolution narration failed; using fallback", out.Err, m.fields())
		narrative = FallbackNarrative()
		fallback = true
	}
	narrative.AcquiredTraits = append([]string(nil), narrative.AcquiredTraits...)

	health := req.HealthAfter()
	var next Phase
	switch {
	case health <= 0:
		next = PhaseDefeated
	case s.Round >= s.RoundCeiling:
		next = PhaseVictorious
	default:
		next = PhaseSurvived
	}
	delta := health + s.Round*50
	if next != PhaseDefeated {
		delta += 100
	}

	rc := newRoundContext(req.Environment, engine.ComputeStats(req.Sequence))
	rc.describeDamage(m.baseDmg, req.DamageTaken)
	rc.describeOutcome(next, health, s.MaxHealth, delta)

	result := game.EvolutionResult{
		Round:             s.Round,
		EnvironmentName:   req.Environment.Name,
		Sequence:          req.Sequence.Clone(),
		Survived:          next != PhaseDefeated,
		BaseDamage:        m.baseDmg,
		DamageTaken:       req.DamageTaken,
		HealthRemaining:   health,
		Summary:           rc.joinSummary(),
		Narrative:         narrative,
		NarrativeFallback: fallback,
	}
	s.Health = health
	s.Score += delta
	s.History = append(s.History, result)
	last := cloneResult(result)
	s.LastResult = &last
	s.Phase = next
	m.narration = nil

	f := m.fields()
	f[constants.LogFieldDamage] = req.DamageTaken
	f[constants.LogFieldHealth] = health
	f[constants.LogFieldScore] = s.Score
	logging.Info("round resolved", f)
	m.assertInvariants()
	return cloneResult(result), nil
}

// Restart discards the run and returns to the intro. It is refused while a
// collaborator call is outstanding.
func (m *Machine) Restart() error {
	if m.state.Phase.Transient() {
		return ErrActionsLocked
	}
	m.reset()
	return nil
}

// Scan runs the outstanding environment request through gen.
func (m *Machine) Scan(ctx context.Context, gen EnvironmentGenerator) (game.Environment, error) {
	req, ok := m.ScanRequest()
	if !ok {
		return game.Environment{}, fmt.Errorf("%w: %s", ErrInvalidPhase, m.state.Phase)
	}
	env, err := gen.GenerateEnvironment(ctx, req)
	return m.CompleteScan(EnvironmentOutcome{Environment: env, Err: err})
}

// Evolve commits when engineering, then resolves the round through n.
func (m *Machine) Evolve(ctx context.Context, n Narrator) (game.EvolutionResult, error) {
	if m.state.Phase == PhaseEngineering {
		if _, err := m.Commit(); err != nil {
			return game.EvolutionResult{}, err
		}
	}
	req, ok := m.NarrationRequest()
	if !ok {
		return game.EvolutionResult{}, fmt.Errorf("%w: %s", ErrInvalidPhase, m.state.Phase)
	}
	narrative, err := n.Narrate(ctx, req)
	return m.CompleteEvaluation(NarrationOutcome{Narrative: narrative, Err: err})
}

func (m *Machine) assertInvariants() {
	s := &m.state
	if s.Health < 0 || s.Health > s.MaxHealth {
		panic(fmt.Sprintf("run: health %d outside [0,%d]", s.Health, s.MaxHealth))
	}
	if s.Round < 1 || s.Round > s.RoundCeiling {
		panic(fmt.Sprintf("run: round %d outside [1,%d]", s.Round, s.RoundCeiling))
	}
	if len(s.Working) != len(s.Confirmed) {
		panic(fmt.Sprintf("run: working length %d != confirmed length %d", len(s.Working), len(s.Confirmed)))
	}
	if s.Working != nil && len(engine.HistoricalMutations(s.Working, s.Confirmed, s.NewSlots)) > engine.MutationsPerRound {
		panic("run: historical mutation budget exceeded")
	}
	if s.Phase == PhaseSurvived && s.Round >= s.RoundCeiling {
		panic("run: survived at the round ceiling")
	}
	if s.Phase.Resolved() && s.LastResult == nil {
		panic("run: resolved phase without a result")
	}
}
