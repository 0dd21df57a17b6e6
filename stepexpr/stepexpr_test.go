package stepexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malspec/langspec/langerr"
)

// fakeAsset is a minimal AssetRef test double used to exercise the type
// checker in isolation from the model package.
type fakeAsset struct {
	name        string
	super       *fakeAsset
	fields      map[string]*fakeField
	attackSteps map[string]bool
	variables   map[string]*fakeAsset // variable name -> target asset
	declared    map[string]bool       // variable names declared but maybe not yet resolved
}

func (a *fakeAsset) AssetName() string { return a.name }

func (a *fakeAsset) IsSubtypeOf(other AssetRef) bool {
	o, ok := other.(*fakeAsset)
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

func (a *fakeAsset) ResolveField(name string) (FieldRef, bool) {
	for cur := a; cur != nil; cur = cur.super {
		if f, ok := cur.fields[name]; ok {
			return f, true
		}
	}
	return nil, false
}

func (a *fakeAsset) ResolveAttackStep(name string) (AttackStepRef, bool) {
	for cur := a; cur != nil; cur = cur.super {
		if cur.attackSteps[name] {
			return fakeAttackStep(name), true
		}
	}
	return nil, false
}

func (a *fakeAsset) ResolveVariable(name string) (VariableRef, bool) {
	for cur := a; cur != nil; cur = cur.super {
		if target, ok := cur.variables[name]; ok {
			return fakeVariable{target}, true
		}
	}
	return nil, false
}

func (a *fakeAsset) SuperAssetRef() (AssetRef, bool) {
	if a.super == nil {
		return nil, false
	}
	return a.super, true
}

// HasDeclaredVariable and VariableNames implement the optional
// declaredVariableLister/variableNamesLister extensions, letting
// buildVariable's unknown-vs-cycle distinction be exercised directly
// against this test double.
func (a *fakeAsset) HasDeclaredVariable(name string) bool {
	for cur := a; cur != nil; cur = cur.super {
		if cur.declared[name] {
			return true
		}
	}
	return false
}

func (a *fakeAsset) VariableNames() []string {
	var out []string
	for cur := a; cur != nil; cur = cur.super {
		for name := range cur.declared {
			out = append(out, name)
		}
	}
	return out
}

type fakeField struct {
	target *fakeAsset
}

func (f *fakeField) TargetAsset() AssetRef { return f.target }

type fakeAttackStep string

func (f fakeAttackStep) AttackStepName() string { return string(f) }

type fakeVariable struct{ target *fakeAsset }

func (v fakeVariable) VariableTargetAsset() AssetRef { return v.target }

type fakeLookup struct {
	assets map[string]*fakeAsset
}

func (l fakeLookup) AssetByName(name string) (AssetRef, bool) {
	a, ok := l.assets[name]
	return a, ok
}

func newFixture() (lookup fakeLookup, host, app, database *fakeAsset) {
	host = &fakeAsset{name: "Host", fields: map[string]*fakeField{}, attackSteps: map[string]bool{"compromise": true}, variables: map[string]*fakeAsset{}}
	app = &fakeAsset{name: "App", fields: map[string]*fakeField{}, attackSteps: map[string]bool{"exploit": true}, variables: map[string]*fakeAsset{}}
	database = &fakeAsset{name: "Database", super: app, fields: map[string]*fakeField{}, attackSteps: map[string]bool{}, variables: map[string]*fakeAsset{}}

	host.fields["apps"] = &fakeField{target: app}
	app.fields["host"] = &fakeField{target: host}
	host.variables["allApps"] = app

	lookup = fakeLookup{assets: map[string]*fakeAsset{
		"Host": host, "App": app, "Database": database,
	}}
	return
}

func TestBuildFieldNavigation(t *testing.T) {
	lookup, host, app, _ := newFixture()
	expr, err := Build(lookup, host, Field("apps"))
	require.NoError(t, err)
	assert.Equal(t, "Host", expr.Source.AssetName())
	assert.Equal(t, "App", expr.Target.AssetName())
	assert.Same(t, app, expr.Target)
}

func TestBuildAttackStepIsTerminalAndTargetsSource(t *testing.T) {
	lookup, host, _, _ := newFixture()
	expr, err := Build(lookup, host, AttackStep("compromise"))
	require.NoError(t, err)
	assert.True(t, expr.IsTerminal())
	assert.Equal(t, "Host", expr.Target.AssetName())
}

func TestBuildCollectThreadsSourceThroughTarget(t *testing.T) {
	lookup, host, _, _ := newFixture()
	expr, err := Build(lookup, host, Collect(Field("apps"), AttackStep("exploit")))
	require.NoError(t, err)
	assert.Equal(t, "Host", expr.Source.AssetName())
	assert.Equal(t, "App", expr.Target.AssetName())
}

func TestBuildTransitiveRequiresUniformSourceTarget(t *testing.T) {
	lookup, host, _, _ := newFixture()
	_, err := Build(lookup, host, Transitive(Field("apps")))
	require.Error(t, err)

	// A field that maps an asset to itself passes.
	host.fields["self"] = &fakeField{target: host}
	expr, err := Build(lookup, host, Transitive(Field("self")))
	require.NoError(t, err)
	assert.Equal(t, "Host", expr.Target.AssetName())
}

func TestBuildSubTypeRequiresSubtype(t *testing.T) {
	lookup, host, _, database := newFixture()
	expr, err := Build(lookup, host, SubType("Database", Field("apps")))
	require.NoError(t, err)
	assert.Equal(t, "Database", expr.Target.AssetName())
	assert.Same(t, database, expr.Target)

	_, err = Build(lookup, host, SubType("Host", Field("apps")))
	require.Error(t, err)
}

func TestBuildUnionComputesLUB(t *testing.T) {
	lookup, host, app, database := newFixture()
	_ = database
	host.fields["toApp"] = &fakeField{target: app}
	host.fields["toDatabase"] = &fakeField{target: database}

	expr, err := Build(lookup, host, Union(Field("toApp"), Field("toDatabase")))
	require.NoError(t, err)
	assert.Equal(t, "App", expr.Target.AssetName())
}

func TestBuildUnionFailsWithoutCommonAncestor(t *testing.T) {
	lookup, host, app, _ := newFixture()
	unrelated := &fakeAsset{name: "Unrelated", fields: map[string]*fakeField{}, attackSteps: map[string]bool{}, variables: map[string]*fakeAsset{}}
	host.fields["toApp"] = &fakeField{target: app}
	host.fields["toUnrelated"] = &fakeField{target: unrelated}

	_, err := Build(lookup, host, Union(Field("toApp"), Field("toUnrelated")))
	require.Error(t, err)
}

func TestBuildVariableTypesToVariableTarget(t *testing.T) {
	lookup, host, app, _ := newFixture()
	expr, err := Build(lookup, host, Variable("allApps"))
	require.NoError(t, err)
	assert.Equal(t, "App", expr.Target.AssetName())
	assert.Same(t, app, expr.Target)
}

func TestBuildUnknownFieldIsUnknownReference(t *testing.T) {
	lookup, host, _, _ := newFixture()
	_, err := Build(lookup, host, Field("missing"))
	require.Error(t, err)
}

func TestBuildUnknownVariableIsUnknownReference(t *testing.T) {
	lookup, host, _, _ := newFixture()
	host.declared = map[string]bool{"allApps": true}

	_, err := Build(lookup, host, Variable("doesNotExist"))
	require.Error(t, err)
	lerr, ok := err.(*langerr.Error)
	require.True(t, ok)
	assert.Equal(t, langerr.KindUnknownReference, lerr.Kind)
}

func TestBuildVariableDeclaredButNotYetResolvedIsCycle(t *testing.T) {
	lookup, host, _, _ := newFixture()
	host.declared = map[string]bool{"allApps": true, "notYetBuilt": true}

	_, err := Build(lookup, host, Variable("notYetBuilt"))
	require.Error(t, err)
	lerr, ok := err.(*langerr.Error)
	require.True(t, ok)
	assert.Equal(t, langerr.KindVariableCycle, lerr.Kind)
}
