package game

import (
	"fmt"
	"strings"
)

// Base is one genetic unit. Each base is permanently tied to one resistance
// axis (see Axis).
type Base byte

const (
	BaseA Base = 'A' // Adenine: heat resistance
	BaseT Base = 'T' // Thymine: cold resistance
	BaseC Base = 'C' // Cytosine: toxin resistance
	BaseG Base = 'G' // Guanine: armor / physical strength
)

// StatAxis identifies one of the four organism stat fields.
type StatAxis string

const (
	AxisHeat     StatAxis = "heat_res"
	AxisCold     StatAxis = "cold_res"
	AxisToxin    StatAxis = "toxin_res"
	AxisPhysical StatAxis = "physical_str"
)

// Bases lists the four bases in cycle order.
var Bases = [4]Base{BaseA, BaseT, BaseC, BaseG}

// Valid reports whether b is one of A, T, C, G.
func (b Base) Valid() bool {
	switch b {
	case BaseA, BaseT, BaseC, BaseG:
		return true
	}
	return false
}

// Axis returns the stat axis the base feeds.
func (b Base) Axis() StatAxis {
	switch b {
	case BaseA:
		return AxisHeat
	case BaseT:
		return AxisCold
	case BaseC:
		return AxisToxin
	case BaseG:
		return AxisPhysical
	}
	panic(fmt.Sprintf("game: invalid base %q", byte(b)))
}

// Next advances the base along the fixed cycle A→T→C→G→A.
func (b Base) Next() Base {
	switch b {
	case BaseA:
		return BaseT
	case BaseT:
		return BaseC
	case BaseC:
		return BaseG
	case BaseG:
		return BaseA
	}
	panic(fmt.Sprintf("game: invalid base %q", byte(b)))
}

func (b Base) String() string { return string(rune(b)) }

// MarshalText encodes a base as its single letter.
func (b Base) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("invalid base %q", byte(b))
	}
	return []byte{byte(b)}, nil
}

// UnmarshalText accepts a single letter, case-insensitive.
func (b *Base) UnmarshalText(text []byte) error {
	s := strings.ToUpper(strings.TrimSpace(string(text)))
	if len(s) != 1 || !Base(s[0]).Valid() {
		return fmt.Errorf("invalid base %q", string(text))
	}
	*b = Base(s[0])
	return nil
}

// Sequence is an ordered, index-addressed list of bases.
type Sequence []Base

// ParseSequence converts a symbol string such as "AAAG" into a Sequence.
func ParseSequence(s string) (Sequence, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	out := make(Sequence, 0, len(s))
	for i := 0; i < len(s); i++ {
		b := Base(s[i])
		if !b.Valid() {
			return nil, fmt.Errorf("invalid base %q at position %d", s[i], i)
		}
		out = append(out, b)
	}
	return out, nil
}

// String renders the sequence as a contiguous symbol string.
func (s Sequence) String() string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, b := range s {
		sb.WriteByte(byte(b))
	}
	return sb.String()
}

// Clone returns an independent copy.
func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}

// Equal reports whether both sequences hold the same bases in the same order.
func (s Sequence) Equal(o Sequence) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// GCContent is the fraction of C and G bases, 0 for an empty sequence.
func (s Sequence) GCContent() float64 {
	if len(s) == 0 {
		return 0
	}
	gc := 0
	for _, b := range s {
		if b == BaseC || b == BaseG {
			gc++
		}
	}
	return float64(gc) / float64(len(s))
}

// MarshalText encodes the sequence as its symbol string so JSON carries "AAAG"
// instead of a byte array.
func (s Sequence) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (s *Sequence) UnmarshalText(text []byte) error {
	seq, err := ParseSequence(string(text))
	if err != nil {
		return err
	}
	*s = seq
	return nil
}
