package lang

import (
	"github.com/malspec/langspec/ident"
	"github.com/malspec/langspec/stepexpr"
)

// Asset is a typed kind of node in a threat model, e.g. Host or
// Application. Inherited lookups (variables, attack steps, fields, icons)
// walk local first, then the super-asset chain.
type Asset struct {
	name       string
	meta       ident.Meta
	category   *Category
	isAbstract bool
	super      *Asset

	localVariables   []*Variable
	localAttackSteps []*AttackStep
	localFields      []*Field

	// declaredVariableNames/declaredVariableOrder record every variable
	// name this asset declares, populated by the resolver before any
	// variable body on any asset is type-checked. This lets buildVariable
	// tell "never declared" apart from "declared later in this asset,
	// not yet typed" even while localVariables is still being filled in.
	declaredVariableNames map[string]bool
	declaredVariableOrder []string

	svgIcon []byte
	pngIcon []byte
}

func (a *Asset) Name() string         { return a.name }
func (a *Asset) Meta() ident.Meta     { return a.meta }
func (a *Asset) Category() *Category  { return a.category }
func (a *Asset) IsAbstract() bool     { return a.isAbstract }

// SuperAsset returns the asset's direct super-asset, if any.
func (a *Asset) SuperAsset() (*Asset, bool) {
	if a.super == nil {
		return nil, false
	}
	return a.super, true
}

// LocalVariables, LocalAttackSteps, and LocalFields return the entities
// declared directly on this asset, in declaration order, excluding
// anything inherited.
func (a *Asset) LocalVariables() []*Variable     { return a.localVariables }
func (a *Asset) LocalAttackSteps() []*AttackStep { return a.localAttackSteps }
func (a *Asset) LocalFields() []*Field           { return a.localFields }

// --- stepexpr.AssetRef ---

func (a *Asset) AssetName() string { return a.name }

// IsSubtypeOf reports whether a is other or a transitive sub-asset of
// other (reflexive: an asset is considered a subtype of itself).
func (a *Asset) IsSubtypeOf(other stepexpr.AssetRef) bool {
	o, ok := other.(*Asset)
	if !ok {
		return false
	}
	for cur := a; cur != nil; cur = cur.super {
		if cur == o {
			return true
		}
	}
	return false
}

// SuperAssetRef implements the optional chain-walking extension the
// step-expression algebra's LUB computation uses.
func (a *Asset) SuperAssetRef() (stepexpr.AssetRef, bool) {
	if a.super == nil {
		return nil, false
	}
	return a.super, true
}

func (a *Asset) ResolveField(name string) (stepexpr.FieldRef, bool) {
	f, ok := a.Field(name)
	if !ok {
		return nil, false
	}
	return f, true
}

func (a *Asset) ResolveAttackStep(name string) (stepexpr.AttackStepRef, bool) {
	s, ok := a.AttackStep(name)
	if !ok {
		return nil, false
	}
	return s, true
}

func (a *Asset) ResolveVariable(name string) (stepexpr.VariableRef, bool) {
	v, ok := a.Variable(name)
	if !ok {
		return nil, false
	}
	return v, true
}

// --- inherited lookups ---

// Variable returns the variable named name, local if present, else
// resolved from the super-asset chain.
func (a *Asset) Variable(name string) (*Variable, bool) {
	for cur := a; cur != nil; cur = cur.super {
		for _, v := range cur.localVariables {
			if v.name == name {
				return v, true
			}
		}
	}
	return nil, false
}

// AttackStep returns the attack step named name: local if present
// (an override), else the one inherited from the super-asset chain.
func (a *Asset) AttackStep(name string) (*AttackStep, bool) {
	for cur := a; cur != nil; cur = cur.super {
		for _, s := range cur.localAttackSteps {
			if s.name == name {
				return s, true
			}
		}
	}
	return nil, false
}

// Field returns the field named name, local if present, else inherited.
func (a *Asset) Field(name string) (*Field, bool) {
	for cur := a; cur != nil; cur = cur.super {
		for _, f := range cur.localFields {
			if f.name == name {
				return f, true
			}
		}
	}
	return nil, false
}

// SVGIcon and PNGIcon return the asset's icon bytes, local if present,
// else the nearest ancestor's.
func (a *Asset) SVGIcon() ([]byte, bool) {
	for cur := a; cur != nil; cur = cur.super {
		if cur.svgIcon != nil {
			return cur.svgIcon, true
		}
	}
	return nil, false
}

func (a *Asset) PNGIcon() ([]byte, bool) {
	for cur := a; cur != nil; cur = cur.super {
		if cur.pngIcon != nil {
			return cur.pngIcon, true
		}
	}
	return nil, false
}

// Fields returns every field visible on the asset, local plus inherited,
// local-first then ancestor contributions in chain order (names are
// unique across local+inherited by construction, so no override merge is
// needed the way AttackSteps requires one).
func (a *Asset) Fields() []*Field {
	seen := make(map[string]bool)
	var out []*Field
	for cur := a; cur != nil; cur = cur.super {
		for _, f := range cur.localFields {
			if !seen[f.name] {
				seen[f.name] = true
				out = append(out, f)
			}
		}
	}
	return out
}

// AttackSteps returns the effective set of attack steps on the asset: the
// super-asset's effective set (with any step overridden locally removed),
// followed by the asset's own local attack steps, each portion in its own
// declaration order.
func (a *Asset) AttackSteps() []*AttackStep {
	localNames := make(map[string]bool, len(a.localAttackSteps))
	for _, s := range a.localAttackSteps {
		localNames[s.name] = true
	}

	var inherited []*AttackStep
	if a.super != nil {
		for _, s := range a.super.AttackSteps() {
			if !localNames[s.name] {
				inherited = append(inherited, s)
			}
		}
	}

	out := make([]*AttackStep, 0, len(inherited)+len(a.localAttackSteps))
	out = append(out, inherited...)
	out = append(out, a.localAttackSteps...)
	return out
}

// FieldNames implements stepexpr's optional fieldNamesLister, letting an
// UnknownReference error on field(name) attach a fuzzy-matched suggestion
// from this asset's actually-visible field names.
func (a *Asset) FieldNames() []string {
	fields := a.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name()
	}
	return names
}

// AttackStepNames implements stepexpr's optional attackStepNamesLister, for
// the same purpose on attackStep(name) references.
func (a *Asset) AttackStepNames() []string {
	steps := a.AttackSteps()
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name()
	}
	return names
}

// HasDeclaredVariable implements stepexpr's optional declaredVariableLister,
// reporting whether name is declared anywhere along the super-chain, even if
// that variable's own body hasn't been type-checked yet. This is what lets
// buildVariable distinguish a genuinely unknown name (UnknownReference) from
// one that depends on a not-yet-typed sibling (VariableCycle).
func (a *Asset) HasDeclaredVariable(name string) bool {
	for cur := a; cur != nil; cur = cur.super {
		if cur.declaredVariableNames[name] {
			return true
		}
	}
	return false
}

// VariableNames implements stepexpr's optional variableNamesLister, listing
// every variable name declared locally or by an ancestor so an
// UnknownReference on variable(name) can attach a fuzzy-matched suggestion.
func (a *Asset) VariableNames() []string {
	seen := make(map[string]bool)
	var out []string
	for cur := a; cur != nil; cur = cur.super {
		for _, name := range cur.declaredVariableOrder {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}
