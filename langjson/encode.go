package langjson

import (
	"bytes"
	"encoding/json"

	"github.com/malspec/langspec/lang"
)

// Serialize produces the canonical JSON document for l: formatVersion,
// defines, categories, assets, associations, each key in its schema
// required-list order, arrays in declaration order, 2-space indentation.
// Only LOCAL variables and attack steps are emitted per asset, mirroring
// builder.FromLang: the document is a by-name declaration snapshot, not a
// flattened view of inheritance (re-parsing and resolving it reconstructs
// the same observable Lang).
func Serialize(l *lang.Lang) ([]byte, error) {
	doc := documentWire{
		FormatVersion: supportedFormatVersion,
		Defines:       metaToWire(l.Defines()),
		Categories:    make([]categoryWire, 0, len(l.Categories())),
		Assets:        make([]assetWire, 0, len(l.Assets())),
		Associations:  make([]associationWire, 0, len(l.Associations())),
	}

	for _, c := range l.Categories() {
		doc.Categories = append(doc.Categories, categoryWire{Name: c.Name(), Meta: metaToWire(c.Meta())})
	}
	for _, a := range l.Assets() {
		doc.Assets = append(doc.Assets, encodeAsset(a))
	}
	for _, assoc := range l.Associations() {
		doc.Associations = append(doc.Associations, encodeAssociation(assoc))
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func encodeAsset(a *lang.Asset) assetWire {
	w := assetWire{
		Name:        a.Name(),
		Meta:        metaToWire(a.Meta()),
		Category:    a.Category().Name(),
		IsAbstract:  a.IsAbstract(),
		Variables:   make([]variableWire, 0, len(a.LocalVariables())),
		AttackSteps: make([]attackStepWire, 0, len(a.LocalAttackSteps())),
	}
	if super, ok := a.SuperAsset(); ok {
		name := super.Name()
		w.SuperAsset = &name
	}
	for _, v := range a.LocalVariables() {
		w.Variables = append(w.Variables, variableWire{Name: v.Name(), Expr: stepExprToWire(v.Expr())})
	}
	for _, s := range a.LocalAttackSteps() {
		w.AttackSteps = append(w.AttackSteps, encodeAttackStep(s))
	}
	return w
}

// encodeAttackStep emits tags/risk/ttc the way they were locally declared,
// not their fully-resolved (inherited) values: an override that left one of
// these out re-serializes with empty tags, a null risk, and no ttc key at
// all, so that parsing the result back reconstructs the same "inherits from
// super-step" relationship instead of baking the ancestor's value in as a
// fresh local declaration. A requires/reaches group the step only inherits
// is likewise written as null.
func encodeAttackStep(s *lang.AttackStep) attackStepWire {
	var tags []string
	if localTags, ok := s.LocalTags(); ok {
		tags = append([]string(nil), localTags...)
	}
	if tags == nil {
		tags = []string{}
	}
	risk, riskOK := s.LocalRisk()
	localTTC, ttcOK := s.LocalTTC()

	w := attackStepWire{
		Name:       s.Name(),
		Meta:       metaToWire(s.Meta()),
		Type:       s.Type().String(),
		Tags:       tags,
		Risk:       riskToWire(risk, riskOK),
		TTCPresent: ttcOK,
	}
	if ttcOK {
		w.TTC = ttcToWire(localTTC)
	}
	var superReq, superRch *lang.StepsGroup
	if super, ok := s.Owner().SuperAsset(); ok {
		if superStep, ok := super.AttackStep(s.Name()); ok {
			superReq, _ = superStep.Requires()
			superRch, _ = superStep.Reaches()
		}
	}
	if req, ok := s.Requires(); ok && req != superReq {
		w.Requires = encodeStepsGroup(req)
	}
	if rch, ok := s.Reaches(); ok && rch != superRch {
		w.Reaches = encodeStepsGroup(rch)
	}
	return w
}

// encodeStepsGroup emits a group's Local expressions (the declaration made
// at this asset), not the fully merged Expressions: replaying the merged
// list through the extend-on-resolve logic on a later parse would
// re-prepend the inherited portion a second time. See StepsGroup.Local.
func encodeStepsGroup(g *lang.StepsGroup) *stepsWire {
	exprs := make([]*stepExpressionWire, 0, len(g.Local))
	for _, e := range g.Local {
		exprs = append(exprs, stepExprToWire(e))
	}
	return &stepsWire{Overrides: g.Overrides, StepExpressions: exprs}
}

func encodeAssociation(assoc *lang.Association) associationWire {
	left := assoc.LeftField()
	right := assoc.RightField()
	return associationWire{
		Name:              assoc.Name(),
		Meta:              metaToWire(assoc.Meta()),
		LeftAsset:         left.Owner().Name(),
		LeftField:         left.Name(),
		LeftMultiplicity:  multiplicityToWire(left.Multiplicity()),
		RightAsset:        right.Owner().Name(),
		RightField:        right.Name(),
		RightMultiplicity: multiplicityToWire(right.Multiplicity()),
	}
}
