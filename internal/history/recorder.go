// Package history writes resolved rounds as CSV rows and summarizes them.
package history

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/gocarina/gocsv"

	"github.com/ericogr/biogenesis/internal/game"
	"github.com/ericogr/biogenesis/internal/run"
)

// Row is one resolved round.
type Row struct {
	RunID            string  `csv:"run_id"`
	Species          string  `csv:"species"`
	Round            int     `csv:"round"`
	Environment      string  `csv:"environment"`
	Temperature      float64 `csv:"temperature"`
	Toxicity         float64 `csv:"toxicity"`
	Radiation        float64 `csv:"radiation"`
	ResourceScarcity float64 `csv:"resource_scarcity"`
	FallbackEnv      bool    `csv:"fallback_environment"`
	Sequence         string  `csv:"sequence"`
	GCContent        float64 `csv:"gc_content"`
	BaseDamage       int     `csv:"base_damage"`
	DamageTaken      int     `csv:"damage_taken"`
	HealthRemaining  int     `csv:"health_remaining"`
	MaxHealth        int     `csv:"max_health"`
	Survived         bool    `csv:"survived"`
	Score            int     `csv:"score"`
	Phase            string  `csv:"phase"`
}

// NewRow flattens a resolved round. st must be the state right after the
// round resolved.
func NewRow(runID string, st run.State, res game.EvolutionResult) Row {
	row := Row{
		RunID:           runID,
		Species:         st.SpeciesKey,
		Round:           res.Round,
		Environment:     res.EnvironmentName,
		Sequence:        res.Sequence.String(),
		GCContent:       res.Sequence.GCContent(),
		BaseDamage:      res.BaseDamage,
		DamageTaken:     res.DamageTaken,
		HealthRemaining: res.HealthRemaining,
		MaxHealth:       st.MaxHealth,
		Survived:        res.Survived,
		Score:           st.Score,
		Phase:           string(st.Phase),
	}
	if env := st.Environment; env != nil {
		row.Temperature = env.Temperature
		row.Toxicity = env.Toxicity
		row.Radiation = env.Radiation
		row.ResourceScarcity = env.ResourceScarcity
		row.FallbackEnv = env.Fallback
	}
	return row
}

// Recorder appends rows to a writer, emitting the header once.
type Recorder struct {
	mu            sync.Mutex
	w             io.Writer
	closer        io.Closer
	headerWritten bool
}

// NewRecorder writes to w. The header is written with the first row.
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{w: w}
}

// OpenFile appends to path, creating it when missing. An existing non-empty
// file is assumed to carry the header already.
func OpenFile(path string) (*Recorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening history file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat history file: %w", err)
	}
	return &Recorder{w: f, closer: f, headerWritten: info.Size() > 0}, nil
}

// Write appends rows.
func (r *Recorder) Write(rows ...Row) error {
	if r == nil || len(rows) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.headerWritten {
		if err := gocsv.Marshal(rows, r.w); err != nil {
			return fmt.Errorf("writing history: %w", err)
		}
		r.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(rows, r.w); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	return nil
}

// RecordRound writes one resolved round.
func (r *Recorder) RecordRound(runID string, st run.State, res game.EvolutionResult) error {
	return r.Write(NewRow(runID, st, res))
}

// Close releases the underlying file, if the recorder owns one.
func (r *Recorder) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// ReadRows parses a history CSV.
func ReadRows(in io.Reader) ([]Row, error) {
	var rows []Row
	if err := gocsv.Unmarshal(in, &rows); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return rows, nil
}
