// Package ttc implements the time-to-compromise expression algebra: a small
// tagged tree of arithmetic combinators over a closed catalog of named
// probability distributions, plus a distinguished Empty sentinel standing
// for an explicit "no TTC" (serialized as JSON null, distinct from the key
// being absent).
package ttc

import (
	"math"

	"github.com/malspec/langspec/langerr"
)

// Kind discriminates the variant of an Expr node.
type Kind int

const (
	KindNumber Kind = iota
	KindAddition
	KindSubtraction
	KindMultiplication
	KindDivision
	KindExponentiation
	KindFunction
	KindEmpty
)

// Max is the largest finite float64, standing in for "certain to never
// happen in practice" / "never finishes".
const Max = math.MaxFloat64

// Expr is a node in the TTC expression tree. Binary kinds use Left/Right;
// KindFunction uses Distribution/Args; KindNumber uses Value; KindEmpty
// carries none of the above.
type Expr struct {
	Kind Kind

	Left  *Expr
	Right *Expr

	Distribution string
	Args         []*Expr

	Value float64
}

// empty is the single shared Empty sentinel.
var empty = &Expr{Kind: KindEmpty}

// Empty returns the distinguished "no TTC" expression.
func Empty() *Expr { return empty }

// IsEmpty reports whether e is the Empty sentinel.
func (e *Expr) IsEmpty() bool {
	return e == nil || e.Kind == KindEmpty
}

// Number builds a numeric leaf. value must be finite.
func Number(value float64) (*Expr, error) {
	if !isFinite(value) {
		return nil, langerr.New(langerr.KindInvalidDistributionArgs, "number argument must be finite")
	}
	return &Expr{Kind: KindNumber, Value: value}, nil
}

func binary(kind Kind, lhs, rhs *Expr) *Expr {
	return &Expr{Kind: kind, Left: lhs, Right: rhs}
}

func Addition(lhs, rhs *Expr) *Expr       { return binary(KindAddition, lhs, rhs) }
func Subtraction(lhs, rhs *Expr) *Expr    { return binary(KindSubtraction, lhs, rhs) }
func Multiplication(lhs, rhs *Expr) *Expr { return binary(KindMultiplication, lhs, rhs) }
func Division(lhs, rhs *Expr) *Expr       { return binary(KindDivision, lhs, rhs) }
func Exponentiation(lhs, rhs *Expr) *Expr { return binary(KindExponentiation, lhs, rhs) }

// Function builds a distribution invocation, validating the distribution
// name and its argument values (each argument's own MeanTTC) against the
// catalog in distribution.go.
func Function(name string, args []*Expr) (*Expr, error) {
	dist, ok := distributions[name]
	if !ok {
		return nil, langerr.UnknownReference("distribution", name, suggestDistribution(name))
	}
	if len(args) != dist.Arity {
		return nil, langerr.InvalidDistributionArguments(name)
	}
	values := make([]float64, len(args))
	for i, a := range args {
		v := a.MeanTTC()
		if !isFinite(v) && v != Max {
			return nil, langerr.InvalidDistributionArguments(name)
		}
		values[i] = v
	}
	if dist.Validate != nil {
		if err := dist.Validate(values); err != nil {
			return nil, langerr.InvalidDistributionArguments(name)
		}
	}
	return &Expr{Kind: KindFunction, Distribution: name, Args: append([]*Expr(nil), args...)}, nil
}

// MeanTTC computes the expected time-to-compromise of the expression,
// recursively combining children's means for arithmetic nodes and
// delegating to the distribution catalog for function nodes. The Empty
// sentinel has mean 0.
func (e *Expr) MeanTTC() float64 {
	if e.IsEmpty() {
		return 0
	}
	switch e.Kind {
	case KindNumber:
		return e.Value
	case KindAddition:
		return e.Left.MeanTTC() + e.Right.MeanTTC()
	case KindSubtraction:
		return e.Left.MeanTTC() - e.Right.MeanTTC()
	case KindMultiplication:
		return e.Left.MeanTTC() * e.Right.MeanTTC()
	case KindDivision:
		return e.Left.MeanTTC() / e.Right.MeanTTC()
	case KindExponentiation:
		return math.Pow(e.Left.MeanTTC(), e.Right.MeanTTC())
	case KindFunction:
		dist := distributions[e.Distribution]
		if dist.Mean == nil {
			return 0
		}
		return dist.Mean(e.argValues())
	default:
		return 0
	}
}

// MeanProbability returns the expected probability of success, defined only
// for Enabled, Disabled, and Bernoulli. All other forms return an
// UnsupportedOperation error.
func (e *Expr) MeanProbability() (float64, error) {
	if e.IsEmpty() || e.Kind != KindFunction {
		return 0, langerr.UnsupportedOperation("meanProbability", "this expression")
	}
	dist := distributions[e.Distribution]
	if dist.MeanProbability == nil {
		return 0, langerr.UnsupportedOperation("meanProbability", e.Distribution)
	}
	return dist.MeanProbability(e.argValues())
}

func (e *Expr) argValues() []float64 {
	values := make([]float64, len(e.Args))
	for i, a := range e.Args {
		values[i] = a.MeanTTC()
	}
	return values
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func suggestDistribution(name string) string {
	names := make([]string, 0, len(distributions))
	for n := range distributions {
		names = append(names, n)
	}
	return langerr.Suggest(name, names)
}
