// Package stepexpr implements the step-expression algebra: a tagged tree
// that navigates from a source asset to a target asset across fields,
// sub-type restrictions, transitive closures, and set combinators, and
// type-checks itself against an inheritance lattice supplied by the caller
// through the small interfaces below.
//
// This package never imports the model package that defines assets and
// fields; it instead type-checks against AssetRef/FieldRef/AttackStepRef/
// VariableRef/AssetLookup, which the model package implements. That keeps
// the dependency arrow pointing one way: model -> stepexpr, never back.
package stepexpr

import "github.com/malspec/langspec/langerr"

// AssetRef is everything the step-expression type checker needs to know
// about an asset: its identity, its place in the inheritance lattice, and
// how to resolve the three kinds of names that can appear after it in an
// expression.
type AssetRef interface {
	AssetName() string
	IsSubtypeOf(other AssetRef) bool
	ResolveField(name string) (FieldRef, bool)
	ResolveAttackStep(name string) (AttackStepRef, bool)
	ResolveVariable(name string) (VariableRef, bool)
}

// FieldRef is the minimal shape of a field end needed to follow a
// field(name) navigation to its target asset.
type FieldRef interface {
	TargetAsset() AssetRef
}

// AttackStepRef identifies a terminal attackStep(name) reference's
// resolved attack step, opaque beyond its name (the caller recovers the
// concrete type via a type assertion it controls).
type AttackStepRef interface {
	AttackStepName() string
}

// VariableRef exposes the target asset a resolved variable's own
// expression types to, so that variable(name) can type without this
// package knowing what a Variable is.
type VariableRef interface {
	VariableTargetAsset() AssetRef
}

// AssetLookup resolves an asset by name, used only by subType(typeName, ...).
type AssetLookup interface {
	AssetByName(name string) (AssetRef, bool)
}

// Kind discriminates the variant of a Desc/Expr node.
type Kind int

const (
	KindUnion Kind = iota
	KindIntersection
	KindDifference
	KindCollect
	KindTransitive
	KindSubType
	KindField
	KindAttackStep
	KindVariable
)

// Desc is the unresolved, by-name description of a step-expression node, as
// collected by the builder layer before linking.
type Desc struct {
	Kind Kind

	Left  *Desc // union/intersection/difference/collect
	Right *Desc // union/intersection/difference/collect
	Inner *Desc // transitive/subType

	TypeName string // subType
	Name     string // field/attackStep/variable
}

func Union(lhs, rhs *Desc) *Desc        { return &Desc{Kind: KindUnion, Left: lhs, Right: rhs} }
func Intersection(lhs, rhs *Desc) *Desc { return &Desc{Kind: KindIntersection, Left: lhs, Right: rhs} }
func Difference(lhs, rhs *Desc) *Desc   { return &Desc{Kind: KindDifference, Left: lhs, Right: rhs} }
func Collect(lhs, rhs *Desc) *Desc      { return &Desc{Kind: KindCollect, Left: lhs, Right: rhs} }
func Transitive(inner *Desc) *Desc      { return &Desc{Kind: KindTransitive, Inner: inner} }
func SubType(typeName string, inner *Desc) *Desc {
	return &Desc{Kind: KindSubType, TypeName: typeName, Inner: inner}
}
func Field(name string) *Desc      { return &Desc{Kind: KindField, Name: name} }
func AttackStep(name string) *Desc { return &Desc{Kind: KindAttackStep, Name: name} }
func Variable(name string) *Desc   { return &Desc{Kind: KindVariable, Name: name} }

// Expr is a type-checked step-expression node: every node carries the
// source and target asset computed for it.
type Expr struct {
	Kind Kind

	Source AssetRef
	Target AssetRef

	Left  *Expr
	Right *Expr
	Inner *Expr

	TypeName string
	Name     string

	// ResolvedField/ResolvedAttackStep/ResolvedVariable are populated for
	// the corresponding terminal kinds so a caller holding the concrete
	// model type can type-assert its way back to it.
	ResolvedField      FieldRef
	ResolvedAttackStep AttackStepRef
	ResolvedVariable   VariableRef
}

// IsTerminal reports whether the node is an attackStep(...) reference,
// which may only appear as the top-level element of a requires/reaches
// entry.
func (e *Expr) IsTerminal() bool {
	return e.Kind == KindAttackStep
}

// Build type-checks desc with the given source asset, recursively building
// and typing every child node per the rules in the step-expression algebra
// design. lookup resolves subType's by-name target asset.
func Build(lookup AssetLookup, source AssetRef, desc *Desc) (*Expr, error) {
	if desc == nil {
		return nil, langerr.New(langerr.KindSchemaViolation, "step expression must not be empty")
	}

	switch desc.Kind {
	case KindUnion, KindIntersection, KindDifference:
		return buildSetOp(lookup, source, desc)
	case KindCollect:
		return buildCollect(lookup, source, desc)
	case KindTransitive:
		return buildTransitive(lookup, source, desc)
	case KindSubType:
		return buildSubType(lookup, source, desc)
	case KindField:
		return buildField(source, desc)
	case KindAttackStep:
		return buildAttackStep(source, desc)
	case KindVariable:
		return buildVariable(source, desc)
	default:
		return nil, langerr.New(langerr.KindSchemaViolation, "unknown step expression kind")
	}
}

func buildSetOp(lookup AssetLookup, source AssetRef, desc *Desc) (*Expr, error) {
	lhs, err := Build(lookup, source, desc.Left)
	if err != nil {
		return nil, err
	}
	rhs, err := Build(lookup, source, desc.Right)
	if err != nil {
		return nil, err
	}
	target, ok := lub(lhs.Target, rhs.Target)
	if !ok {
		return nil, langerr.NoCommonSuperAsset(lhs.Target.AssetName(), rhs.Target.AssetName())
	}
	return &Expr{Kind: desc.Kind, Source: source, Target: target, Left: lhs, Right: rhs}, nil
}

func buildCollect(lookup AssetLookup, source AssetRef, desc *Desc) (*Expr, error) {
	lhs, err := Build(lookup, source, desc.Left)
	if err != nil {
		return nil, err
	}
	rhs, err := Build(lookup, lhs.Target, desc.Right)
	if err != nil {
		return nil, err
	}
	return &Expr{Kind: KindCollect, Source: source, Target: rhs.Target, Left: lhs, Right: rhs}, nil
}

func buildTransitive(lookup AssetLookup, source AssetRef, desc *Desc) (*Expr, error) {
	inner, err := Build(lookup, source, desc.Inner)
	if err != nil {
		return nil, err
	}
	if inner.Source.AssetName() != inner.Target.AssetName() {
		return nil, langerr.TransitiveNonUniform(inner.Source.AssetName(), inner.Target.AssetName())
	}
	return &Expr{Kind: KindTransitive, Source: inner.Source, Target: inner.Target, Inner: inner}, nil
}

func buildSubType(lookup AssetLookup, source AssetRef, desc *Desc) (*Expr, error) {
	inner, err := Build(lookup, source, desc.Inner)
	if err != nil {
		return nil, err
	}
	target, ok := lookup.AssetByName(desc.TypeName)
	if !ok {
		var known []string
		if lister, ok := lookup.(assetNamesLister); ok {
			known = lister.AssetNames()
		}
		return nil, langerr.UnknownReferenceWithSuggestion("asset", desc.TypeName, known)
	}
	if !target.IsSubtypeOf(inner.Target) {
		return nil, langerr.IncompatibleSubType(desc.TypeName, inner.Target.AssetName())
	}
	return &Expr{Kind: KindSubType, Source: source, Target: target, Inner: inner, TypeName: desc.TypeName}, nil
}

func buildField(source AssetRef, desc *Desc) (*Expr, error) {
	field, ok := source.ResolveField(desc.Name)
	if !ok {
		return nil, langerr.UnknownReferenceWithSuggestion("field", desc.Name, fieldNames(source))
	}
	return &Expr{Kind: KindField, Source: source, Target: field.TargetAsset(), Name: desc.Name, ResolvedField: field}, nil
}

func buildAttackStep(source AssetRef, desc *Desc) (*Expr, error) {
	step, ok := source.ResolveAttackStep(desc.Name)
	if !ok {
		return nil, langerr.UnknownReferenceWithSuggestion("attackStep", desc.Name, attackStepNames(source))
	}
	return &Expr{Kind: KindAttackStep, Source: source, Target: source, Name: desc.Name, ResolvedAttackStep: step}, nil
}

// assetNamesLister, fieldNamesLister, and attackStepNamesLister are optional
// extensions of AssetLookup/AssetRef that let this package attach a "did
// you mean" suggestion to an UnknownReference error without needing the
// full inheritance-lattice API: a model that doesn't implement one simply
// gets no suggestion.
type assetNamesLister interface {
	AssetNames() []string
}

type fieldNamesLister interface {
	FieldNames() []string
}

type attackStepNamesLister interface {
	AttackStepNames() []string
}

// declaredVariableLister and variableNamesLister are the variable-reference
// analogues: declaredVariableLister lets buildVariable tell a genuinely
// unknown name apart from one that's declared but not yet type-checked
// (a forward reference), and variableNamesLister supplies suggestions for
// the former.
type declaredVariableLister interface {
	HasDeclaredVariable(name string) bool
}

type variableNamesLister interface {
	VariableNames() []string
}

func fieldNames(source AssetRef) []string {
	if lister, ok := source.(fieldNamesLister); ok {
		return lister.FieldNames()
	}
	return nil
}

func attackStepNames(source AssetRef) []string {
	if lister, ok := source.(attackStepNamesLister); ok {
		return lister.AttackStepNames()
	}
	return nil
}

func buildVariable(source AssetRef, desc *Desc) (*Expr, error) {
	v, ok := source.ResolveVariable(desc.Name)
	if !ok {
		if lister, ok := source.(declaredVariableLister); ok && !lister.HasDeclaredVariable(desc.Name) {
			var known []string
			if namer, ok := source.(variableNamesLister); ok {
				known = namer.VariableNames()
			}
			return nil, langerr.UnknownReferenceWithSuggestion("variable", desc.Name, known)
		}
		return nil, langerr.VariableCycle(source.AssetName(), desc.Name)
	}
	return &Expr{Kind: KindVariable, Source: source, Target: v.VariableTargetAsset(), Name: desc.Name, ResolvedVariable: v}, nil
}

// lub computes the least upper bound of a and b: the most specific asset
// that both are, or are subtypes of. When several incomparable candidates
// along a's super-chain satisfy both, the one closest to a wins; b is used
// only to decide whether a candidate qualifies at all, never to break ties
// in a's favor.
func lub(a, b AssetRef) (AssetRef, bool) {
	if a.AssetName() == b.AssetName() {
		return a, true
	}
	for candidate := a; candidate != nil; candidate = superOf(candidate) {
		if b.IsSubtypeOf(candidate) {
			return candidate, true
		}
	}
	return nil, false
}

// superOf walks one step up a's super-chain using only the AssetRef
// interface: IsSubtypeOf(candidate's own super) would require exposing the
// chain directly, so instead we rely on the model's AssetRef
// implementation also satisfying superChain below when it wants lub to see
// past the immediate asset. Models that don't implement it are treated as
// having no super (single-candidate chain).
func superOf(a AssetRef) AssetRef {
	if sc, ok := a.(superChain); ok {
		s, ok := sc.SuperAssetRef()
		if ok {
			return s
		}
	}
	return nil
}

// superChain is an optional extension of AssetRef that exposes the
// immediate super-asset, letting lub walk the chain without needing the
// full inheritance-lattice API.
type superChain interface {
	SuperAssetRef() (AssetRef, bool)
}
