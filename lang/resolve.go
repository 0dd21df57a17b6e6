package lang

import (
	"strings"

	"github.com/malspec/langspec/builder"
	"github.com/malspec/langspec/langerr"
	"github.com/malspec/langspec/stepexpr"
)

// Resolve links a builder description into an immutable Lang. It runs in
// two passes: a structural pass that builds categories, asset shells (with
// super-asset chains and cycle detection), and association fields; and a
// semantic pass that type-checks every variable and attack step's step
// expressions against the now-complete structural graph.
//
// Resolve lives beside the types it populates rather than in a separate
// package because every field it sets is unexported: Category, Asset,
// Field, Association, Variable, and AttackStep are built once here and
// never mutated again.
func Resolve(lb *builder.LangBuilder) (*Lang, error) {
	defines := lb.Defines().Build()
	if _, ok := defines.Get("id"); !ok {
		return nil, langerr.SchemaViolation("defines.id", "defines must declare an id")
	}
	if _, ok := defines.Get("version"); !ok {
		return nil, langerr.SchemaViolation("defines.version", "defines must declare a version")
	}

	l := &Lang{
		defines:        defines,
		categoryByName: make(map[string]*Category),
		assetByName:    make(map[string]*Asset),
	}
	if text, ok := lb.License(); ok {
		l.license = &text
	}
	if text, ok := lb.Notice(); ok {
		l.notice = &text
	}

	for _, cb := range lb.Categories() {
		c := &Category{name: cb.Name(), meta: cb.Meta().Build()}
		l.categories = append(l.categories, c)
		l.categoryByName[c.Name()] = c
	}

	assetByBuilder := make(map[*builder.AssetBuilder]*Asset, len(lb.Assets()))
	builderByAssetName := make(map[string]*builder.AssetBuilder, len(lb.Assets()))
	for _, ab := range lb.Assets() {
		cat, ok := l.categoryByName[ab.Category()]
		if !ok {
			return nil, langerr.UnknownReferenceWithSuggestion("category", ab.Category(), l.CategoryNames())
		}
		a := &Asset{name: ab.Name(), meta: ab.Meta().Build(), category: cat, isAbstract: ab.IsAbstract()}
		if svg := ab.SVGIcon(); svg != nil {
			a.svgIcon = svg
		}
		if png := ab.PNGIcon(); png != nil {
			a.pngIcon = png
		}
		cat.assets = append(cat.assets, a)
		l.assets = append(l.assets, a)
		l.assetByName[a.name] = a
		assetByBuilder[ab] = a
		builderByAssetName[a.name] = ab
	}

	for _, ab := range lb.Assets() {
		superName, ok := ab.SuperAsset()
		if !ok {
			continue
		}
		super, ok := l.assetByName[superName]
		if !ok {
			return nil, langerr.UnknownReferenceWithSuggestion("asset", superName, l.AssetNames())
		}
		assetByBuilder[ab].super = super
	}
	if path, cyclic := findSuperAssetCycle(l.assets); cyclic {
		return nil, langerr.SuperAssetCycle(path)
	}

	seenAssociationPairs := make(map[string]map[[2]string]bool)
	for _, assocB := range lb.Associations() {
		leftAsset, ok := l.assetByName[assocB.Left().Asset]
		if !ok {
			return nil, langerr.UnknownReferenceWithSuggestion("asset", assocB.Left().Asset, l.AssetNames())
		}
		rightAsset, ok := l.assetByName[assocB.Right().Asset]
		if !ok {
			return nil, langerr.UnknownReferenceWithSuggestion("asset", assocB.Right().Asset, l.AssetNames())
		}

		// Associations may share a name only when disambiguated by their
		// (leftAsset, rightAsset) endpoint pair; the same pair reused under
		// the same name is a duplicate declaration, not an overload.
		pair := [2]string{leftAsset.name, rightAsset.name}
		pairs := seenAssociationPairs[assocB.Name()]
		if pairs == nil {
			pairs = make(map[[2]string]bool)
			seenAssociationPairs[assocB.Name()] = pairs
		}
		if pairs[pair] {
			return nil, langerr.DuplicateName("association", assocB.Name())
		}
		pairs[pair] = true

		assoc := &Association{name: assocB.Name(), meta: assocB.Meta().Build()}
		left := &Field{name: assocB.Left().Field, owner: leftAsset, multiplicity: assocB.Left().Multiplicity, association: assoc}
		right := &Field{name: assocB.Right().Field, owner: rightAsset, multiplicity: assocB.Right().Multiplicity, association: assoc}
		left.target = right
		right.target = left
		assoc.leftField = left
		assoc.rightField = right

		if err := addLocalField(leftAsset, left); err != nil {
			return nil, err
		}
		if err := addLocalField(rightAsset, right); err != nil {
			return nil, err
		}
	}

	order := topoOrder(l.assets)

	// Declared names are registered up front, across every asset, before any
	// variable body is type-checked: buildVariable needs to tell "this name
	// is declared somewhere on the chain but not built yet" (a forward
	// reference, reported as VariableCycle) apart from "this name is never
	// declared" (UnknownReference).
	for _, a := range order {
		ab := builderByAssetName[a.name]
		vbs := ab.Variables()
		a.declaredVariableNames = make(map[string]bool, len(vbs))
		a.declaredVariableOrder = make([]string, 0, len(vbs))
		for _, vb := range vbs {
			a.declaredVariableNames[vb.Name()] = true
			a.declaredVariableOrder = append(a.declaredVariableOrder, vb.Name())
		}
	}

	for _, a := range order {
		ab := builderByAssetName[a.name]
		for _, vb := range ab.Variables() {
			expr, err := stepexpr.Build(l, a, vb.Expr())
			if err != nil {
				return nil, err
			}
			a.localVariables = append(a.localVariables, &Variable{name: vb.Name(), owner: a, expr: expr})
		}
	}

	for _, a := range order {
		ab := builderByAssetName[a.name]
		for _, sb := range ab.AttackSteps() {
			s := &AttackStep{name: sb.Name(), meta: sb.Meta().Build(), owner: a, typ: sb.Type(), tags: sb.Tags()}
			s.localTags = len(s.tags) != 0
			if risk, ok := sb.Risk(); ok {
				s.risk = &risk
				s.localRisk = true
			}
			s.ttc = sb.TTC()
			s.localTTC = s.ttc != nil

			if super, ok := a.SuperAsset(); ok {
				if superStep, ok := super.AttackStep(sb.Name()); ok {
					if superStep.typ != s.typ {
						return nil, langerr.StepTypeMismatch(a.name, sb.Name())
					}
					// Absent locally means inherit: no tags declared, no risk
					// set, and no TTC set each fall back to the nearest
					// ancestor's already-resolved value, but localTags/
					// localRisk/localTTC stay false so a reconstruction can
					// still tell the value was inherited, not re-declared.
					if !s.localTags {
						s.tags = superStep.tags
					}
					if !s.localRisk {
						s.risk = superStep.risk
					}
					if !s.localTTC {
						s.ttc = superStep.ttc
					}
				}
			}
			a.localAttackSteps = append(a.localAttackSteps, s)
		}
	}

	for _, a := range order {
		ab := builderByAssetName[a.name]
		var superAsset *Asset
		if super, ok := a.SuperAsset(); ok {
			superAsset = super
		}
		for i, sb := range ab.AttackSteps() {
			s := a.localAttackSteps[i]

			var superStep *AttackStep
			if superAsset != nil {
				superStep, _ = superAsset.AttackStep(s.name)
			}

			if req, ok := sb.Requires(); ok {
				if s.typ != StepExist && s.typ != StepNotExist {
					return nil, langerr.RequiresOnNonExistenceStep(a.name, s.name)
				}
				var inherited *StepsGroup
				if superStep != nil {
					inherited, _ = superStep.Requires()
				}
				group, err := mergeStepsGroup(l, a, inherited, req, false)
				if err != nil {
					return nil, err
				}
				s.requires = group
			} else if superStep != nil {
				s.requires, _ = superStep.Requires()
			}

			if rch, ok := sb.Reaches(); ok {
				var inherited *StepsGroup
				if superStep != nil {
					inherited, _ = superStep.Reaches()
				}
				group, err := mergeStepsGroup(l, a, inherited, rch, true)
				if err != nil {
					return nil, err
				}
				s.reaches = group
			} else if superStep != nil {
				s.reaches, _ = superStep.Reaches()
			}
		}
	}

	return l, nil
}

func addLocalField(a *Asset, f *Field) error {
	if _, exists := a.Field(f.name); exists {
		return langerr.DuplicateName("field", f.name)
	}
	a.localFields = append(a.localFields, f)
	return nil
}

// mergeStepsGroup builds sgb's local expressions and, when sgb.Overrides is
// false, prepends inherited's already-resolved expressions/terminals ahead
// of them. A nil inherited (no ancestor declared the group) makes the two
// behaviors equivalent, per §4.4.
func mergeStepsGroup(l *Lang, source *Asset, inherited *StepsGroup, sgb *builder.StepsGroupBuilder, isReaches bool) (*StepsGroup, error) {
	local, err := buildStepsGroup(l, source, sgb, isReaches)
	if err != nil {
		return nil, err
	}
	if sgb.Overrides || inherited == nil {
		return local, nil
	}
	merged := &StepsGroup{
		Overrides:      false,
		Expressions:    append(append([]*stepexpr.Expr{}, inherited.Expressions...), local.Expressions...),
		Local:          local.Local,
		LocalTerminals: local.LocalTerminals,
	}
	if isReaches {
		merged.Terminals = append(append([]*AttackStep{}, inherited.Terminals...), local.Terminals...)
	}
	return merged, nil
}

func buildStepsGroup(l *Lang, source *Asset, sgb *builder.StepsGroupBuilder, isReaches bool) (*StepsGroup, error) {
	group := &StepsGroup{Overrides: sgb.Overrides}
	for _, desc := range sgb.Expressions {
		expr, err := stepexpr.Build(l, source, desc)
		if err != nil {
			return nil, err
		}
		group.Expressions = append(group.Expressions, expr)
		if isReaches {
			step, err := terminalAttackStep(expr)
			if err != nil {
				return nil, err
			}
			group.Terminals = append(group.Terminals, step)
		}
	}
	group.Local = group.Expressions
	group.LocalTerminals = group.Terminals
	return group, nil
}

// terminalAttackStep follows a reaches expression's collect chain to its
// final node, which must be an attackStep(...) reference.
func terminalAttackStep(e *stepexpr.Expr) (*AttackStep, error) {
	cur := e
	for cur.Kind == stepexpr.KindCollect {
		cur = cur.Right
	}
	if !cur.IsTerminal() {
		return nil, langerr.New(langerr.KindSchemaViolation, "reaches expression must terminate in an attackStep reference")
	}
	step, ok := cur.ResolvedAttackStep.(*AttackStep)
	if !ok {
		return nil, langerr.New(langerr.KindSchemaViolation, "reaches expression resolved to a foreign attack step type")
	}
	return step, nil
}

// topoOrder returns assets ordered so that every asset's super-asset (if
// any) appears before it. Cycle-freedom is assumed; call after
// findSuperAssetCycle has returned false.
func topoOrder(assets []*Asset) []*Asset {
	visited := make(map[*Asset]bool, len(assets))
	order := make([]*Asset, 0, len(assets))
	var visit func(a *Asset)
	visit = func(a *Asset) {
		if visited[a] {
			return
		}
		if a.super != nil {
			visit(a.super)
		}
		visited[a] = true
		order = append(order, a)
	}
	for _, a := range assets {
		visit(a)
	}
	return order
}

// findSuperAssetCycle walks every asset's super chain looking for a cycle,
// returning the cyclic chain as a "A -> B -> A" path for the error message.
func findSuperAssetCycle(assets []*Asset) (string, bool) {
	state := make(map[*Asset]int, len(assets)) // 0=unvisited, 1=visiting, 2=done

	var path []string
	var visit func(a *Asset) bool
	visit = func(a *Asset) bool {
		switch state[a] {
		case 2:
			return false
		case 1:
			path = append(path, a.name)
			return true
		}
		state[a] = 1
		path = append(path, a.name)
		if a.super != nil && visit(a.super) {
			return true
		}
		path = path[:len(path)-1]
		state[a] = 2
		return false
	}

	for _, a := range assets {
		path = nil
		if visit(a) {
			return strings.Join(path, " -> "), true
		}
	}
	return "", false
}
