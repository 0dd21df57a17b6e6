package lang

import (
	"github.com/malspec/langspec/ident"
	"github.com/malspec/langspec/stepexpr"
	"github.com/malspec/langspec/ttc"
)

// StepType is the kind of capability an AttackStep represents.
type StepType int

const (
	StepOr StepType = iota
	StepAnd
	StepDefense
	StepExist
	StepNotExist
)

// String returns the JSON-schema spelling of the step type.
func (t StepType) String() string {
	switch t {
	case StepOr:
		return "or"
	case StepAnd:
		return "and"
	case StepDefense:
		return "defense"
	case StepExist:
		return "exist"
	case StepNotExist:
		return "notExist"
	default:
		return "unknown"
	}
}

// StepsGroup is a `requires` or `reaches` list: either a full replacement
// of the inherited list (Overrides true) or an extension appended to it.
type StepsGroup struct {
	Overrides   bool
	Expressions []*stepexpr.Expr

	// Terminals holds, for a `reaches` group, the resolved attack step each
	// top-level expression's attackStep(...) terminal points at, aligned
	// index-for-index with Expressions. Nil for `requires` groups.
	Terminals []*AttackStep

	// Local and LocalTerminals hold only the expressions declared at this
	// asset (pre-merge): Expressions/Terminals are Local prefixed with the
	// super-step's own Expressions/Terminals when Overrides is false.
	// Reconstructing a by-name declaration (builder.FromLang, the JSON
	// codec) must replay Local, not Expressions — replaying the already-
	// merged list through the same extend-on-resolve logic would
	// re-prepend the inherited portion a second time.
	Local          []*stepexpr.Expr
	LocalTerminals []*AttackStep
}

// AttackStep is a named capability (or defense) on an asset.
type AttackStep struct {
	name  string
	meta  ident.Meta
	owner *Asset
	typ   StepType
	tags  []string
	risk  *ident.Risk
	ttc   *ttc.Expr

	// localTags/localRisk/localTTC record whether tags/risk/ttc were
	// actually declared on this step, as opposed to baked in from the
	// super-step during resolution. Without this, a reconstruction
	// (builder.FromLang, the JSON codec) can't tell an override that left
	// a field out apart from one that repeated the inherited value
	// verbatim, and would "lock in" the inherited value on every
	// subsequent round trip instead of continuing to track the ancestor.
	localTags bool
	localRisk bool
	localTTC  bool

	requires *StepsGroup
	reaches  *StepsGroup
}

func (s *AttackStep) Name() string     { return s.name }
func (s *AttackStep) Meta() ident.Meta { return s.meta }
func (s *AttackStep) Owner() *Asset    { return s.owner }
func (s *AttackStep) Type() StepType   { return s.typ }
func (s *AttackStep) Tags() []string   { return s.tags }

func (s *AttackStep) Risk() (ident.Risk, bool) {
	if s.risk == nil {
		return ident.Risk{}, false
	}
	return *s.risk, true
}

// TTC returns the attack step's time-to-compromise expression. A step with
// no TTC at all (neither local nor inherited) returns ttc.Empty().
func (s *AttackStep) TTC() *ttc.Expr {
	if s.ttc == nil {
		return ttc.Empty()
	}
	return s.ttc
}

// LocalTags, LocalRisk, and LocalTTC report, in their second result,
// whether this step declared tags/risk/ttc itself rather than inheriting
// them from a super-step. LocalTags always returns the effective tags;
// LocalRisk and LocalTTC return the value only when it was declared on this
// step, and the zero Risk / nil otherwise. A reconstruction that wants to
// preserve "this was inherited" must consult these instead of Tags/Risk/TTC.
func (s *AttackStep) LocalTags() ([]string, bool) {
	return s.tags, s.localTags
}

func (s *AttackStep) LocalRisk() (ident.Risk, bool) {
	if !s.localRisk {
		return ident.Risk{}, false
	}
	return *s.risk, true
}

func (s *AttackStep) LocalTTC() (*ttc.Expr, bool) {
	if !s.localTTC {
		return nil, false
	}
	return s.ttc, true
}

func (s *AttackStep) Requires() (*StepsGroup, bool) {
	if s.requires == nil {
		return nil, false
	}
	return s.requires, true
}

func (s *AttackStep) Reaches() (*StepsGroup, bool) {
	if s.reaches == nil {
		return nil, false
	}
	return s.reaches, true
}

// AttackStepName implements stepexpr.AttackStepRef.
func (s *AttackStep) AttackStepName() string { return s.name }
