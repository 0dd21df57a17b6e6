package builder

import (
	"github.com/malspec/langspec/lang"
	"github.com/malspec/langspec/stepexpr"
)

// ExprDesc is the by-name description of a step expression, built with the
// stepexpr package's Union/Intersection/Field/AttackStep/... constructors
// and attached to a variable or a requires/reaches entry.
type ExprDesc = stepexpr.Desc

// StepType mirrors lang.StepType so callers don't need to import both
// packages to describe an attack step.
type StepType = lang.StepType

const (
	StepOr       = lang.StepOr
	StepAnd      = lang.StepAnd
	StepDefense  = lang.StepDefense
	StepExist    = lang.StepExist
	StepNotExist = lang.StepNotExist
)
