package builder

import (
	"github.com/malspec/langspec/ident"
	"github.com/malspec/langspec/ttc"
)

// VariableBuilder is the by-name description of a variable: its name and
// its (not yet typed) step-expression body.
type VariableBuilder struct {
	name string
	expr *ExprDesc
}

func (v *VariableBuilder) Name() string    { return v.name }
func (v *VariableBuilder) Expr() *ExprDesc { return v.expr }

// AttackStepBuilder is the by-name description of an attack step.
type AttackStepBuilder struct {
	name string
	meta *ident.MetaBuilder
	typ  StepType
	tags []string
	risk *ident.Risk
	ttc  *ttc.Expr

	requires *StepsGroupBuilder
	reaches  *StepsGroupBuilder
}

func (s *AttackStepBuilder) Name() string             { return s.name }
func (s *AttackStepBuilder) Meta() *ident.MetaBuilder  { return s.meta }
func (s *AttackStepBuilder) Type() StepType            { return s.typ }

// AddTag appends a tag, validating it as an identifier.
func (s *AttackStepBuilder) AddTag(tag string) error {
	if err := ident.Check(tag); err != nil {
		return err
	}
	s.tags = append(s.tags, tag)
	return nil
}

func (s *AttackStepBuilder) Tags() []string { return s.tags }

func (s *AttackStepBuilder) SetRisk(r ident.Risk) { s.risk = &r }
func (s *AttackStepBuilder) Risk() (ident.Risk, bool) {
	if s.risk == nil {
		return ident.Risk{}, false
	}
	return *s.risk, true
}

func (s *AttackStepBuilder) SetTTC(expr *ttc.Expr) { s.ttc = expr }
func (s *AttackStepBuilder) TTC() *ttc.Expr         { return s.ttc }

// SetRequires and SetReaches attach a requires/reaches group. Calling one
// again replaces the group it set before.
func (s *AttackStepBuilder) SetRequires(overrides bool, exprs []*ExprDesc) {
	s.requires = &StepsGroupBuilder{Overrides: overrides, Expressions: exprs}
}
func (s *AttackStepBuilder) SetReaches(overrides bool, exprs []*ExprDesc) {
	s.reaches = &StepsGroupBuilder{Overrides: overrides, Expressions: exprs}
}

func (s *AttackStepBuilder) Requires() (*StepsGroupBuilder, bool) {
	if s.requires == nil {
		return nil, false
	}
	return s.requires, true
}
func (s *AttackStepBuilder) Reaches() (*StepsGroupBuilder, bool) {
	if s.reaches == nil {
		return nil, false
	}
	return s.reaches, true
}

// StepsGroupBuilder is the by-name description of a requires/reaches list.
type StepsGroupBuilder struct {
	Overrides   bool
	Expressions []*ExprDesc
}
