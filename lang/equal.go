package lang

import (
	"reflect"

	"github.com/google/go-cmp/cmp"

	"github.com/malspec/langspec/ident"
	"github.com/malspec/langspec/stepexpr"
	"github.com/malspec/langspec/ttc"
)

// metaCmpOpts lets cmp.Equal see into ident.Meta's unexported keys/values:
// Meta itself is a flat, acyclic value (an ordered string map), so handing
// it to cmp directly is safe — the arena-indexed graph types below are not,
// which is why Equal walks those by hand instead of calling cmp.Equal on
// the whole *Lang.
var metaCmpOpts = cmp.Exporter(func(t reflect.Type) bool { return t == reflect.TypeOf(ident.Meta{}) })

func equalMeta(a, b ident.Meta) bool {
	return cmp.Equal(a, b, metaCmpOpts)
}

// Equal reports whether l and other describe the same Lang: same defines,
// license/notice, categories, assets (name, meta, abstractness, super,
// local fields/variables/attack steps), and associations, compared by
// value rather than by the pointer identity arena indexing gives every
// entity. It is a read-only comparison, not part of the resolver; tests use
// it in place of hand-walking every accessor after a round-trip.
func (l *Lang) Equal(other *Lang) bool {
	if l == nil || other == nil {
		return l == other
	}
	if !equalMeta(l.defines, other.defines) {
		return false
	}
	if !equalOptionalString(l.license, other.license) || !equalOptionalString(l.notice, other.notice) {
		return false
	}
	if len(l.categories) != len(other.categories) {
		return false
	}
	for i, c := range l.categories {
		oc := other.categories[i]
		if c.name != oc.name || !equalMeta(c.meta, oc.meta) {
			return false
		}
	}
	if len(l.assets) != len(other.assets) {
		return false
	}
	for i, a := range l.assets {
		if !equalAsset(a, other.assets[i]) {
			return false
		}
	}
	la, oa := l.Associations(), other.Associations()
	if len(la) != len(oa) {
		return false
	}
	for i, assoc := range la {
		if !equalAssociation(assoc, oa[i]) {
			return false
		}
	}
	return true
}

func equalOptionalString(a, b *string) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

func equalAsset(a, b *Asset) bool {
	if a.name != b.name || a.category.name != b.category.name || a.isAbstract != b.isAbstract {
		return false
	}
	if !equalMeta(a.meta, b.meta) {
		return false
	}
	aSuper, aOK := a.SuperAsset()
	bSuper, bOK := b.SuperAsset()
	if aOK != bOK || (aOK && aSuper.name != bSuper.name) {
		return false
	}
	if len(a.localFields) != len(b.localFields) {
		return false
	}
	for i, f := range a.localFields {
		if !equalField(f, b.localFields[i]) {
			return false
		}
	}
	if len(a.localVariables) != len(b.localVariables) {
		return false
	}
	for i, v := range a.localVariables {
		if !equalVariable(v, b.localVariables[i]) {
			return false
		}
	}
	if len(a.localAttackSteps) != len(b.localAttackSteps) {
		return false
	}
	for i, s := range a.localAttackSteps {
		if !equalAttackStep(s, b.localAttackSteps[i]) {
			return false
		}
	}
	return true
}

func equalField(a, b *Field) bool {
	return a.name == b.name &&
		a.owner.name == b.owner.name &&
		a.multiplicity == b.multiplicity &&
		a.target.name == b.target.name &&
		a.target.owner.name == b.target.owner.name
}

func equalVariable(a, b *Variable) bool {
	return a.name == b.name && equalExpr(a.expr, b.expr)
}

func equalAttackStep(a, b *AttackStep) bool {
	if a.name != b.name || a.typ != b.typ {
		return false
	}
	if !equalMeta(a.meta, b.meta) {
		return false
	}
	if !equalStringSlice(a.tags, b.tags) {
		return false
	}
	aRisk, aOK := a.Risk()
	bRisk, bOK := b.Risk()
	if aOK != bOK || (aOK && aRisk != bRisk) {
		return false
	}
	if !equalTTC(a.TTC(), b.TTC()) {
		return false
	}
	if !equalStepsGroup(a.requires, b.requires) {
		return false
	}
	return equalStepsGroup(a.reaches, b.reaches)
}

func equalStepsGroup(a, b *StepsGroup) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	if a == nil {
		return true
	}
	if a.Overrides != b.Overrides || len(a.Expressions) != len(b.Expressions) {
		return false
	}
	for i, e := range a.Expressions {
		if !equalExpr(e, b.Expressions[i]) {
			return false
		}
	}
	return true
}

func equalAssociation(a, b *Association) bool {
	return a.name == b.name &&
		equalMeta(a.meta, b.meta) &&
		equalField(a.leftField, b.leftField) &&
		equalField(a.rightField, b.rightField)
}

// equalExpr compares two step-expression trees structurally, identifying
// their source/target assets by name rather than recursing into the asset
// graph itself (which would walk straight back into the Asset<->Field<->
// AttackStep cycle this package's arena indexing relies on).
func equalExpr(a, b *stepexpr.Expr) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	if a == nil {
		return true
	}
	if a.Kind != b.Kind || a.TypeName != b.TypeName || a.Name != b.Name {
		return false
	}
	if a.Source.AssetName() != b.Source.AssetName() || a.Target.AssetName() != b.Target.AssetName() {
		return false
	}
	return equalExpr(a.Left, b.Left) && equalExpr(a.Right, b.Right) && equalExpr(a.Inner, b.Inner)
}

// equalTTC compares two TTC expression trees by value: the type is a flat,
// acyclic tree (no back-references), so this could also be written as
// cmp.Equal(a, b) directly; doing it by hand here keeps Equal's recursion
// entirely cycle-free without relying on that being true incidentally.
func equalTTC(a, b *ttc.Expr) bool {
	if a.IsEmpty() || b.IsEmpty() {
		return a.IsEmpty() == b.IsEmpty()
	}
	if a.Kind != b.Kind || a.Value != b.Value || a.Distribution != b.Distribution {
		return false
	}
	if len(a.Args) != len(b.Args) {
		return false
	}
	for i, arg := range a.Args {
		if !equalTTC(arg, b.Args[i]) {
			return false
		}
	}
	return equalTTC(a.Left, b.Left) && equalTTC(a.Right, b.Right)
}

func equalStringSlice(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if v != b[i] {
			return false
		}
	}
	return true
}
