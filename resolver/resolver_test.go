package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/malspec/langspec/builder"
	"github.com/malspec/langspec/ident"
	"github.com/malspec/langspec/langerr"
	"github.com/malspec/langspec/stepexpr"
	"github.com/malspec/langspec/ttc"
)

// buildFixture constructs a small host/application model: Host and App
// assets, an association between them, a variable on Host collecting all
// its apps, and a compromise chain from Host to App's exploit step.
func buildFixture(t *testing.T) *builder.LangBuilder {
	t.Helper()
	lb := builder.NewLangBuilder()
	require.NoError(t, lb.Defines().AddEntry("id", "org.example.test"))
	require.NoError(t, lb.Defines().AddEntry("version", "1.0.0"))

	_, err := lb.AddCategory("Network")
	require.NoError(t, err)

	host, err := lb.AddAsset("Host", "Network", false)
	require.NoError(t, err)
	app, err := lb.AddAsset("App", "Network", false)
	require.NoError(t, err)

	left := builder.AssociationEnd{Asset: "Host", Field: "apps", Multiplicity: ident.Multiplicity{Min: 0, Max: ident.Infinite}}
	right := builder.AssociationEnd{Asset: "App", Field: "host", Multiplicity: ident.Multiplicity{Min: 1, Max: 1}}
	_, err = lb.AddAssociation("AppHosting", left, right)
	require.NoError(t, err)

	_, err = host.AddVariable("allApps", stepexpr.Field("apps"))
	require.NoError(t, err)

	compromise, err := host.AddAttackStep("compromise", builder.StepOr)
	require.NoError(t, err)
	ttcExpr, err := ttc.Function("Exponential", []*ttc.Expr{mustNumber(t, 0.5)})
	require.NoError(t, err)
	compromise.SetTTC(ttcExpr)

	exploit, err := app.AddAttackStep("exploit", builder.StepOr)
	require.NoError(t, err)
	_ = exploit

	compromise.SetReaches(false, []*builder.ExprDesc{
		stepexpr.Collect(stepexpr.Field("apps"), stepexpr.AttackStep("exploit")),
	})

	return lb
}

func mustNumber(t *testing.T, v float64) *ttc.Expr {
	t.Helper()
	n, err := ttc.Number(v)
	require.NoError(t, err)
	return n
}

func TestResolveBuildsAssociationFields(t *testing.T) {
	lb := buildFixture(t)
	l, err := Resolve(lb)
	require.NoError(t, err)

	host, ok := l.Asset("Host")
	require.True(t, ok)
	app, ok := l.Asset("App")
	require.True(t, ok)

	field, ok := host.Field("apps")
	require.True(t, ok)
	require.Same(t, app, field.TargetAsset())

	back, ok := app.Field("host")
	require.True(t, ok)
	require.Same(t, field.TargetField(), back)
}

func TestResolveTypesVariableAgainstField(t *testing.T) {
	lb := buildFixture(t)
	l, err := Resolve(lb)
	require.NoError(t, err)

	host, _ := l.Asset("Host")
	v, ok := host.Variable("allApps")
	require.True(t, ok)
	app, _ := l.Asset("App")
	require.Same(t, app, v.TargetAsset())
}

func TestResolveBuildsReachesTerminal(t *testing.T) {
	lb := buildFixture(t)
	l, err := Resolve(lb)
	require.NoError(t, err)

	host, _ := l.Asset("Host")
	step, ok := host.AttackStep("compromise")
	require.True(t, ok)

	group, ok := step.Reaches()
	require.True(t, ok)
	require.Len(t, group.Terminals, 1)
	require.Equal(t, "exploit", group.Terminals[0].Name())
}

func TestResolveDetectsSuperAssetCycle(t *testing.T) {
	lb := builder.NewLangBuilder()
	require.NoError(t, lb.Defines().AddEntry("id", "org.example.cycle"))
	require.NoError(t, lb.Defines().AddEntry("version", "1.0.0"))
	_, err := lb.AddCategory("C")
	require.NoError(t, err)

	a, err := lb.AddAsset("A", "C", false)
	require.NoError(t, err)
	b, err := lb.AddAsset("B", "C", false)
	require.NoError(t, err)
	require.NoError(t, a.SetSuperAsset("B"))
	require.NoError(t, b.SetSuperAsset("A"))

	_, err = Resolve(lb)
	require.Error(t, err)
}

func TestResolveInheritsAttackStepsWithOverride(t *testing.T) {
	lb := builder.NewLangBuilder()
	require.NoError(t, lb.Defines().AddEntry("id", "org.example.inherit"))
	require.NoError(t, lb.Defines().AddEntry("version", "1.0.0"))
	_, err := lb.AddCategory("C")
	require.NoError(t, err)

	base, err := lb.AddAsset("Base", "C", true)
	require.NoError(t, err)
	_, err = base.AddAttackStep("attack", builder.StepOr)
	require.NoError(t, err)
	_, err = base.AddAttackStep("defend", builder.StepDefense)
	require.NoError(t, err)

	sub, err := lb.AddAsset("Sub", "C", false)
	require.NoError(t, err)
	require.NoError(t, sub.SetSuperAsset("Base"))
	_, err = sub.AddAttackStep("attack", builder.StepOr)
	require.NoError(t, err)

	l, err := Resolve(lb)
	require.NoError(t, err)

	subAsset, _ := l.Asset("Sub")
	steps := subAsset.AttackSteps()
	require.Len(t, steps, 2)
	require.Equal(t, "defend", steps[0].Name())
	require.Equal(t, "attack", steps[1].Name())
	require.Same(t, subAsset, steps[1].Owner())
}

func TestResolveRejectsStepTypeMismatchOnOverride(t *testing.T) {
	lb := builder.NewLangBuilder()
	require.NoError(t, lb.Defines().AddEntry("id", "org.example.mismatch"))
	require.NoError(t, lb.Defines().AddEntry("version", "1.0.0"))
	_, err := lb.AddCategory("C")
	require.NoError(t, err)

	base, err := lb.AddAsset("Base", "C", true)
	require.NoError(t, err)
	_, err = base.AddAttackStep("attack", builder.StepOr)
	require.NoError(t, err)

	sub, err := lb.AddAsset("Sub", "C", false)
	require.NoError(t, err)
	require.NoError(t, sub.SetSuperAsset("Base"))
	_, err = sub.AddAttackStep("attack", builder.StepAnd)
	require.NoError(t, err)

	_, err = Resolve(lb)
	require.Error(t, err)
}

func TestResolveRejectsRequiresOnOrStep(t *testing.T) {
	lb := builder.NewLangBuilder()
	require.NoError(t, lb.Defines().AddEntry("id", "org.example.requires"))
	require.NoError(t, lb.Defines().AddEntry("version", "1.0.0"))
	_, err := lb.AddCategory("C")
	require.NoError(t, err)

	host, err := lb.AddAsset("Host", "C", false)
	require.NoError(t, err)
	step, err := host.AddAttackStep("compromise", builder.StepOr)
	require.NoError(t, err)
	step.SetRequires(false, []*builder.ExprDesc{stepexpr.AttackStep("compromise")})

	_, err = Resolve(lb)
	require.Error(t, err)
}

func TestResolveRejectsDuplicateFieldOnSameAsset(t *testing.T) {
	lb := builder.NewLangBuilder()
	require.NoError(t, lb.Defines().AddEntry("id", "org.example.dupfield"))
	require.NoError(t, lb.Defines().AddEntry("version", "1.0.0"))
	_, err := lb.AddCategory("C")
	require.NoError(t, err)

	_, err = lb.AddAsset("Host", "C", false)
	require.NoError(t, err)
	_, err = lb.AddAsset("App", "C", false)
	require.NoError(t, err)
	_, err = lb.AddAsset("Database", "C", false)
	require.NoError(t, err)

	left1 := builder.AssociationEnd{Asset: "Host", Field: "apps", Multiplicity: ident.Multiplicity{Min: 0, Max: ident.Infinite}}
	right1 := builder.AssociationEnd{Asset: "App", Field: "host", Multiplicity: ident.Multiplicity{Min: 1, Max: 1}}
	_, err = lb.AddAssociation("AppHosting", left1, right1)
	require.NoError(t, err)

	left2 := builder.AssociationEnd{Asset: "Host", Field: "apps", Multiplicity: ident.Multiplicity{Min: 0, Max: ident.Infinite}}
	right2 := builder.AssociationEnd{Asset: "Database", Field: "host", Multiplicity: ident.Multiplicity{Min: 1, Max: 1}}
	_, err = lb.AddAssociation("DbHosting", left2, right2)
	require.NoError(t, err)

	_, err = Resolve(lb)
	require.Error(t, err)
}

func TestResolveRejectsUnknownSuperAsset(t *testing.T) {
	lb := builder.NewLangBuilder()
	require.NoError(t, lb.Defines().AddEntry("id", "org.example.unknown"))
	require.NoError(t, lb.Defines().AddEntry("version", "1.0.0"))
	_, err := lb.AddCategory("C")
	require.NoError(t, err)

	sub, err := lb.AddAsset("Sub", "C", false)
	require.NoError(t, err)
	require.NoError(t, sub.SetSuperAsset("Ghost"))

	_, err = Resolve(lb)
	require.Error(t, err)
}

func TestResolveInheritsTTCWhenLocalOverrideOmitsIt(t *testing.T) {
	lb := builder.NewLangBuilder()
	require.NoError(t, lb.Defines().AddEntry("id", "org.example.ttcinherit"))
	require.NoError(t, lb.Defines().AddEntry("version", "1.0.0"))
	_, err := lb.AddCategory("C")
	require.NoError(t, err)

	base, err := lb.AddAsset("Base", "C", true)
	require.NoError(t, err)
	compromise, err := base.AddAttackStep("compromise", builder.StepOr)
	require.NoError(t, err)
	require.NoError(t, compromise.AddTag("initialAccess"))
	compromise.SetRisk(ident.Risk{Confidentiality: true})
	ttcExpr, err := ttc.Function("Exponential", []*ttc.Expr{mustNumber(t, 1.0)})
	require.NoError(t, err)
	compromise.SetTTC(ttcExpr)

	sub, err := lb.AddAsset("Derived", "C", false)
	require.NoError(t, err)
	require.NoError(t, sub.SetSuperAsset("Base"))
	_, err = sub.AddAttackStep("compromise", builder.StepOr)
	require.NoError(t, err)

	l, err := Resolve(lb)
	require.NoError(t, err)

	derived, ok := l.Asset("Derived")
	require.True(t, ok)
	step, ok := derived.AttackStep("compromise")
	require.True(t, ok)

	require.InDelta(t, 1.0, step.TTC().MeanTTC(), 0.0001)
	require.Equal(t, []string{"initialAccess"}, step.Tags())
	risk, ok := step.Risk()
	require.True(t, ok)
	require.True(t, risk.Confidentiality)

	// Derived's override left tags/risk/ttc out entirely, so none of them
	// should read back as locally declared: they're inherited, not
	// re-declared, and a reconstruction must keep tracking Base rather than
	// baking today's resolved value in as Derived's own.
	_, localTags := step.LocalTags()
	require.False(t, localTags)
	_, localRisk := step.LocalRisk()
	require.False(t, localRisk)
	_, localTTC := step.LocalTTC()
	require.False(t, localTTC)
}

// TestResolveFromLangRoundTripPreservesInheritedTTCProvenance guards against
// the override-with-omission case silently "locking in" an inherited value:
// rebuilding a LangBuilder from the resolved Lang and resolving it again
// must still read the step's tags/risk/ttc as inherited on Derived, not as
// a fresh local declaration that happens to match Base's value.
func TestResolveFromLangRoundTripPreservesInheritedTTCProvenance(t *testing.T) {
	lb := builder.NewLangBuilder()
	require.NoError(t, lb.Defines().AddEntry("id", "org.example.ttcprovenance"))
	require.NoError(t, lb.Defines().AddEntry("version", "1.0.0"))
	_, err := lb.AddCategory("C")
	require.NoError(t, err)

	base, err := lb.AddAsset("Base", "C", true)
	require.NoError(t, err)
	compromise, err := base.AddAttackStep("compromise", builder.StepOr)
	require.NoError(t, err)
	require.NoError(t, compromise.AddTag("initialAccess"))
	compromise.SetRisk(ident.Risk{Confidentiality: true})
	ttcExpr, err := ttc.Function("Exponential", []*ttc.Expr{mustNumber(t, 1.0)})
	require.NoError(t, err)
	compromise.SetTTC(ttcExpr)

	sub, err := lb.AddAsset("Derived", "C", false)
	require.NoError(t, err)
	require.NoError(t, sub.SetSuperAsset("Base"))
	_, err = sub.AddAttackStep("compromise", builder.StepOr)
	require.NoError(t, err)

	l, err := Resolve(lb)
	require.NoError(t, err)

	lb2, err := builder.FromLang(l)
	require.NoError(t, err)
	l2, err := Resolve(lb2)
	require.NoError(t, err)

	derived, ok := l2.Asset("Derived")
	require.True(t, ok)
	step, ok := derived.AttackStep("compromise")
	require.True(t, ok)

	require.InDelta(t, 1.0, step.TTC().MeanTTC(), 0.0001)
	_, localTags := step.LocalTags()
	require.False(t, localTags)
	_, localRisk := step.LocalRisk()
	require.False(t, localRisk)
	_, localTTC := step.LocalTTC()
	require.False(t, localTTC)
}

func TestResolveRejectsUnknownVariableReference(t *testing.T) {
	lb := builder.NewLangBuilder()
	require.NoError(t, lb.Defines().AddEntry("id", "org.example.unknownvar"))
	require.NoError(t, lb.Defines().AddEntry("version", "1.0.0"))
	_, err := lb.AddCategory("C")
	require.NoError(t, err)

	host, err := lb.AddAsset("Host", "C", false)
	require.NoError(t, err)
	_, err = host.AddVariable("v", stepexpr.Variable("doesNotExist"))
	require.NoError(t, err)

	_, err = Resolve(lb)
	require.Error(t, err)
	lerr, ok := err.(*langerr.Error)
	require.True(t, ok)
	require.Equal(t, langerr.KindUnknownReference, lerr.Kind)
	require.Equal(t, "variable", lerr.Entity)
}

func TestResolveReportsVariableCycleForForwardReference(t *testing.T) {
	lb := builder.NewLangBuilder()
	require.NoError(t, lb.Defines().AddEntry("id", "org.example.varcycle"))
	require.NoError(t, lb.Defines().AddEntry("version", "1.0.0"))
	_, err := lb.AddCategory("C")
	require.NoError(t, err)

	host, err := lb.AddAsset("Host", "C", false)
	require.NoError(t, err)
	_, err = host.AddVariable("first", stepexpr.Variable("second"))
	require.NoError(t, err)
	_, err = host.AddVariable("second", stepexpr.Variable("first"))
	require.NoError(t, err)

	_, err = Resolve(lb)
	require.Error(t, err)
	lerr, ok := err.(*langerr.Error)
	require.True(t, ok)
	require.Equal(t, langerr.KindVariableCycle, lerr.Kind)
}

func TestResolveExtendsReachesAcrossInheritance(t *testing.T) {
	lb := builder.NewLangBuilder()
	require.NoError(t, lb.Defines().AddEntry("id", "org.example.reachextend"))
	require.NoError(t, lb.Defines().AddEntry("version", "1.0.0"))
	_, err := lb.AddCategory("C")
	require.NoError(t, err)

	base, err := lb.AddAsset("Base", "C", true)
	require.NoError(t, err)
	_, err = base.AddAttackStep("first", builder.StepOr)
	require.NoError(t, err)
	compromise, err := base.AddAttackStep("compromise", builder.StepOr)
	require.NoError(t, err)
	compromise.SetReaches(false, []*builder.ExprDesc{stepexpr.AttackStep("first")})

	sub, err := lb.AddAsset("Derived", "C", false)
	require.NoError(t, err)
	require.NoError(t, sub.SetSuperAsset("Base"))
	_, err = sub.AddAttackStep("second", builder.StepOr)
	require.NoError(t, err)
	subCompromise, err := sub.AddAttackStep("compromise", builder.StepOr)
	require.NoError(t, err)
	subCompromise.SetReaches(false, []*builder.ExprDesc{stepexpr.AttackStep("second")})

	l, err := Resolve(lb)
	require.NoError(t, err)

	derived, ok := l.Asset("Derived")
	require.True(t, ok)
	step, ok := derived.AttackStep("compromise")
	require.True(t, ok)

	group, ok := step.Reaches()
	require.True(t, ok)
	require.Len(t, group.Terminals, 2)
	require.Equal(t, "first", group.Terminals[0].Name())
	require.Equal(t, "second", group.Terminals[1].Name())
}

func TestResolveAllowsSharedAssociationNameAcrossDistinctEndpoints(t *testing.T) {
	lb := builder.NewLangBuilder()
	require.NoError(t, lb.Defines().AddEntry("id", "org.example.sharedassocname"))
	require.NoError(t, lb.Defines().AddEntry("version", "1.0.0"))
	_, err := lb.AddCategory("C")
	require.NoError(t, err)

	_, err = lb.AddAsset("Host", "C", false)
	require.NoError(t, err)
	_, err = lb.AddAsset("App", "C", false)
	require.NoError(t, err)
	_, err = lb.AddAsset("Database", "C", false)
	require.NoError(t, err)

	left1 := builder.AssociationEnd{Asset: "Host", Field: "apps", Multiplicity: ident.Multiplicity{Min: 0, Max: ident.Infinite}}
	right1 := builder.AssociationEnd{Asset: "App", Field: "host", Multiplicity: ident.Multiplicity{Min: 1, Max: 1}}
	_, err = lb.AddAssociation("Runs", left1, right1)
	require.NoError(t, err)

	left2 := builder.AssociationEnd{Asset: "Host", Field: "databases", Multiplicity: ident.Multiplicity{Min: 0, Max: ident.Infinite}}
	right2 := builder.AssociationEnd{Asset: "Database", Field: "runsOn", Multiplicity: ident.Multiplicity{Min: 1, Max: 1}}
	_, err = lb.AddAssociation("Runs", left2, right2)
	require.NoError(t, err)

	_, err = Resolve(lb)
	require.NoError(t, err)
}

func TestResolveRejectsDuplicateAssociationNameOnSameEndpoints(t *testing.T) {
	lb := builder.NewLangBuilder()
	require.NoError(t, lb.Defines().AddEntry("id", "org.example.dupassocname"))
	require.NoError(t, lb.Defines().AddEntry("version", "1.0.0"))
	_, err := lb.AddCategory("C")
	require.NoError(t, err)

	_, err = lb.AddAsset("Host", "C", false)
	require.NoError(t, err)
	_, err = lb.AddAsset("App", "C", false)
	require.NoError(t, err)

	left1 := builder.AssociationEnd{Asset: "Host", Field: "apps", Multiplicity: ident.Multiplicity{Min: 0, Max: ident.Infinite}}
	right1 := builder.AssociationEnd{Asset: "App", Field: "host", Multiplicity: ident.Multiplicity{Min: 1, Max: 1}}
	_, err = lb.AddAssociation("Runs", left1, right1)
	require.NoError(t, err)

	left2 := builder.AssociationEnd{Asset: "Host", Field: "apps2", Multiplicity: ident.Multiplicity{Min: 0, Max: ident.Infinite}}
	right2 := builder.AssociationEnd{Asset: "App", Field: "host2", Multiplicity: ident.Multiplicity{Min: 1, Max: 1}}
	_, err = lb.AddAssociation("Runs", left2, right2)
	require.NoError(t, err)

	_, err = Resolve(lb)
	require.Error(t, err)
	lerr, ok := err.(*langerr.Error)
	require.True(t, ok)
	require.Equal(t, langerr.KindDuplicateName, lerr.Kind)
}

func TestResolveRoundTripsThroughFromLang(t *testing.T) {
	lb := buildFixture(t)
	l, err := Resolve(lb)
	require.NoError(t, err)

	lb2, err := builder.FromLang(l)
	require.NoError(t, err)
	l2, err := Resolve(lb2)
	require.NoError(t, err)

	host, _ := l2.Asset("Host")
	step, ok := host.AttackStep("compromise")
	require.True(t, ok)
	require.InDelta(t, 2.0, step.TTC().MeanTTC(), 0.0001)
}

func TestResolveRoundTripsExtendedReachesWithoutDuplication(t *testing.T) {
	lb := builder.NewLangBuilder()
	require.NoError(t, lb.Defines().AddEntry("id", "org.example.reachroundtrip"))
	require.NoError(t, lb.Defines().AddEntry("version", "1.0.0"))
	_, err := lb.AddCategory("C")
	require.NoError(t, err)

	base, err := lb.AddAsset("Base", "C", true)
	require.NoError(t, err)
	_, err = base.AddAttackStep("first", builder.StepOr)
	require.NoError(t, err)
	compromise, err := base.AddAttackStep("compromise", builder.StepOr)
	require.NoError(t, err)
	compromise.SetReaches(false, []*builder.ExprDesc{stepexpr.AttackStep("first")})

	sub, err := lb.AddAsset("Derived", "C", false)
	require.NoError(t, err)
	require.NoError(t, sub.SetSuperAsset("Base"))
	_, err = sub.AddAttackStep("second", builder.StepOr)
	require.NoError(t, err)
	subCompromise, err := sub.AddAttackStep("compromise", builder.StepOr)
	require.NoError(t, err)
	subCompromise.SetReaches(false, []*builder.ExprDesc{stepexpr.AttackStep("second")})

	l, err := Resolve(lb)
	require.NoError(t, err)

	lb2, err := builder.FromLang(l)
	require.NoError(t, err)
	l2, err := Resolve(lb2)
	require.NoError(t, err)

	derived, ok := l2.Asset("Derived")
	require.True(t, ok)
	step, ok := derived.AttackStep("compromise")
	require.True(t, ok)

	group, ok := step.Reaches()
	require.True(t, ok)
	require.Len(t, group.Terminals, 2)
	require.Equal(t, "first", group.Terminals[0].Name())
	require.Equal(t, "second", group.Terminals[1].Name())
}
