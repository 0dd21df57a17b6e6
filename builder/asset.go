package builder

import (
	"github.com/malspec/langspec/ident"
	"github.com/malspec/langspec/langerr"
)

// AssetBuilder is the by-name description of an asset: its super-asset
// (if any), local variables, local attack steps, and icons are collected
// here before the resolver links them against the rest of the Lang.
type AssetBuilder struct {
	name       string
	meta       *ident.MetaBuilder
	category   string
	isAbstract bool
	superAsset string

	variables      []*VariableBuilder
	variableName   map[string]bool
	attackSteps    []*AttackStepBuilder
	attackStepName map[string]bool

	svgIcon []byte
	pngIcon []byte
}

func (a *AssetBuilder) Name() string             { return a.name }
func (a *AssetBuilder) Meta() *ident.MetaBuilder { return a.meta }
func (a *AssetBuilder) Category() string         { return a.category }
func (a *AssetBuilder) IsAbstract() bool         { return a.isAbstract }

// SetSuperAsset records the name of the asset's super-asset. The resolver
// validates that it exists and that the resulting chain has no cycle.
func (a *AssetBuilder) SetSuperAsset(name string) error {
	if err := ident.Check(name); err != nil {
		return err
	}
	a.superAsset = name
	return nil
}

func (a *AssetBuilder) SuperAsset() (string, bool) {
	if a.superAsset == "" {
		return "", false
	}
	return a.superAsset, true
}

func (a *AssetBuilder) SetSVGIcon(data []byte) { a.svgIcon = data }
func (a *AssetBuilder) SetPNGIcon(data []byte) { a.pngIcon = data }
func (a *AssetBuilder) SVGIcon() []byte        { return a.svgIcon }
func (a *AssetBuilder) PNGIcon() []byte        { return a.pngIcon }

// AddVariable declares a local variable. name must be a valid identifier
// and unique among the asset's own variables (it may still shadow one
// inherited from a super-asset).
func (a *AssetBuilder) AddVariable(name string, expr *ExprDesc) (*VariableBuilder, error) {
	if err := ident.Check(name); err != nil {
		return nil, err
	}
	if a.variableName == nil {
		a.variableName = make(map[string]bool)
	}
	if a.variableName[name] {
		return nil, langerr.DuplicateName("variable", name)
	}
	vb := &VariableBuilder{name: name, expr: expr}
	a.variableName[name] = true
	a.variables = append(a.variables, vb)
	return vb, nil
}

func (a *AssetBuilder) Variables() []*VariableBuilder { return a.variables }

// AddAttackStep declares a local attack step. name must be a valid
// identifier and unique among the asset's own attack steps (it may still
// override one inherited from a super-asset).
func (a *AssetBuilder) AddAttackStep(name string, typ StepType) (*AttackStepBuilder, error) {
	if err := ident.Check(name); err != nil {
		return nil, err
	}
	if a.attackStepName == nil {
		a.attackStepName = make(map[string]bool)
	}
	if a.attackStepName[name] {
		return nil, langerr.DuplicateName("attackStep", name)
	}
	sb := &AttackStepBuilder{name: name, meta: ident.NewMetaBuilder(), typ: typ}
	a.attackStepName[name] = true
	a.attackSteps = append(a.attackSteps, sb)
	return sb, nil
}

func (a *AssetBuilder) AttackSteps() []*AttackStepBuilder { return a.attackSteps }
