package prompt

import (
	"fmt"
	"strings"
)

// Refinement selects one of the fixed rewrite strategies.
// The zero value is not a valid refinement.
type Refinement int

const (
	Creative Refinement = iota + 1
	Technical
	Simplified
)

type refinementInfo struct {
	name      string
	label     string
	directive string
}

var refinements = map[Refinement]refinementInfo{
	Creative: {
		name:      "creative",
		label:     "Kreatif",
		directive: "Different Perspective, more creative, unconventional approach",
	},
	Technical: {
		name:      "technical",
		label:     "Teknik",
		directive: "Focus on technical details, constraints, step-by-step execution",
	},
	Simplified: {
		name:      "simplified",
		label:     "Sade",
		directive: "Simplify, concise, direct, focus on core value",
	},
}

// Refinements returns all strategies in presentation order.
func Refinements() []Refinement {
	return []Refinement{Creative, Technical, Simplified}
}

// Valid reports whether r is one of the known strategies.
func (r Refinement) Valid() bool {
	_, ok := refinements[r]
	return ok
}

// Name is the machine name ("creative", "technical", "simplified").
func (r Refinement) Name() string {
	return refinements[r].name
}

// Label is the short Turkish label appended to refined record labels.
func (r Refinement) Label() string {
	return refinements[r].label
}

// Directive is the strategy text sent to the model.
func (r Refinement) Directive() string {
	return refinements[r].directive
}

func (r Refinement) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Refinement(%d)", int(r))
	}
	return r.Name()
}

// ParseRefinement accepts a machine name or Turkish label, case-insensitively.
func ParseRefinement(s string) (Refinement, bool) {
	s = strings.TrimSpace(s)
	for _, r := range Refinements() {
		info := refinements[r]
		if strings.EqualFold(s, info.name) || strings.EqualFold(s, info.label) {
			return r, true
		}
	}
	return 0, false
}

// MarshalText implements encoding.TextMarshaler.
func (r Refinement) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid refinement %d", int(r))
	}
	return []byte(r.Name()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Refinement) UnmarshalText(text []byte) error {
	parsed, ok := ParseRefinement(string(text))
	if !ok {
		return fmt.Errorf("unknown refinement %q (want creative, technical or simplified)", string(text))
	}
	*r = parsed
	return nil
}
