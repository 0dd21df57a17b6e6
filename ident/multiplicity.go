package ident

import (
	"fmt"
	"math"

	"github.com/malspec/langspec/langerr"
)

// Infinite is the sentinel max value meaning "unbounded". JSON encodes it
// by omitting the `max` key entirely.
const Infinite = math.MaxInt32

// Multiplicity is the (min, max) cardinality pair on an association field
// end. min is 0 or 1; max is 1 or Infinite.
type Multiplicity struct {
	Min int
	Max int
}

// NewMultiplicity validates and constructs a Multiplicity. min must be 0 or
// 1; max must be 1 or Infinite.
func NewMultiplicity(min, max int) (Multiplicity, error) {
	if min != 0 && min != 1 {
		return Multiplicity{}, langerr.New(langerr.KindSchemaViolation, fmt.Sprintf("multiplicity min must be 0 or 1, got %d", min))
	}
	if max != 1 && max != Infinite {
		return Multiplicity{}, langerr.New(langerr.KindSchemaViolation, fmt.Sprintf("multiplicity max must be 1 or infinite, got %d", max))
	}
	return Multiplicity{Min: min, Max: max}, nil
}

// IsUnbounded reports whether Max is the infinite sentinel.
func (m Multiplicity) IsUnbounded() bool {
	return m.Max == Infinite
}

// MaxJSON returns (value, ok) suitable for JSON encoding: ok is false when
// the max should be omitted (infinite).
func (m Multiplicity) MaxJSON() (int, bool) {
	if m.IsUnbounded() {
		return 0, false
	}
	return m.Max, true
}
