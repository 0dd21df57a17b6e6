package builder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/malspec/langspec/ident"
	"github.com/malspec/langspec/langerr"
	"github.com/malspec/langspec/stepexpr"
)

func TestLangBuilderAddCategoryRejectsDuplicate(t *testing.T) {
	lb := NewLangBuilder()
	_, err := lb.AddCategory("Network")
	require.NoError(t, err)

	_, err = lb.AddCategory("Network")
	require.Error(t, err)
	var lerr *langerr.Error
	require.ErrorAs(t, err, &lerr)
	require.Equal(t, langerr.KindDuplicateName, lerr.Kind)
}

func TestLangBuilderAddCategoryRejectsInvalidIdentifier(t *testing.T) {
	lb := NewLangBuilder()
	_, err := lb.AddCategory("1Network")
	require.Error(t, err)
}

func TestLangBuilderAddAssetIsUniqueAcrossCategories(t *testing.T) {
	lb := NewLangBuilder()
	_, err := lb.AddAsset("Host", "Network", false)
	require.NoError(t, err)

	_, err = lb.AddAsset("Host", "Compute", false)
	require.Error(t, err)
}

func TestAssetBuilderVariablesAllowShadowingButNotLocalDuplicates(t *testing.T) {
	lb := NewLangBuilder()
	ab, err := lb.AddAsset("Host", "Network", false)
	require.NoError(t, err)

	_, err = ab.AddVariable("self", stepexpr.Field("self"))
	require.NoError(t, err)

	_, err = ab.AddVariable("self", stepexpr.Field("other"))
	require.Error(t, err)

	sub, err := lb.AddAsset("Server", "Network", false)
	require.NoError(t, err)
	require.NoError(t, sub.SetSuperAsset("Host"))
	_, err = sub.AddVariable("self", stepexpr.Field("other"))
	require.NoError(t, err)
}

func TestAssetBuilderAttackStepsAreUniqueLocally(t *testing.T) {
	lb := NewLangBuilder()
	ab, err := lb.AddAsset("Host", "Network", false)
	require.NoError(t, err)

	_, err = ab.AddAttackStep("compromise", StepOr)
	require.NoError(t, err)

	_, err = ab.AddAttackStep("compromise", StepAnd)
	require.Error(t, err)
}

func TestAssetBuilderSuperAssetRequiresValidIdentifier(t *testing.T) {
	lb := NewLangBuilder()
	ab, err := lb.AddAsset("Database", "Network", false)
	require.NoError(t, err)

	require.Error(t, ab.SetSuperAsset("1App"))

	require.NoError(t, ab.SetSuperAsset("App"))
	name, ok := ab.SuperAsset()
	require.True(t, ok)
	require.Equal(t, "App", name)
}

func TestAttackStepBuilderTagsAndRisk(t *testing.T) {
	lb := NewLangBuilder()
	ab, _ := lb.AddAsset("Host", "Network", false)
	sb, err := ab.AddAttackStep("compromise", StepOr)
	require.NoError(t, err)

	require.NoError(t, sb.AddTag("initialAccess"))
	require.Error(t, sb.AddTag("not a tag"))
	require.Equal(t, []string{"initialAccess"}, sb.Tags())

	risk := ident.Risk{Confidentiality: true}
	sb.SetRisk(risk)
	got, ok := sb.Risk()
	require.True(t, ok)
	require.Equal(t, risk, got)
}

func TestAttackStepBuilderRequiresAndReaches(t *testing.T) {
	lb := NewLangBuilder()
	ab, _ := lb.AddAsset("Host", "Network", false)
	sb, err := ab.AddAttackStep("compromise", StepOr)
	require.NoError(t, err)

	_, ok := sb.Requires()
	require.False(t, ok)

	sb.SetRequires(false, []*ExprDesc{stepexpr.AttackStep("physicalAccess")})
	req, ok := sb.Requires()
	require.True(t, ok)
	require.False(t, req.Overrides)
	require.Len(t, req.Expressions, 1)

	_, ok = sb.Reaches()
	require.False(t, ok)

	sb.SetReaches(true, []*ExprDesc{stepexpr.AttackStep("escalate")})
	rch, ok := sb.Reaches()
	require.True(t, ok)
	require.True(t, rch.Overrides)
	require.Len(t, rch.Expressions, 1)
}

func TestAssociationBuilderValidatesFieldNames(t *testing.T) {
	lb := NewLangBuilder()
	_, err := lb.AddAsset("Host", "Network", false)
	require.NoError(t, err)
	_, err = lb.AddAsset("App", "Network", false)
	require.NoError(t, err)

	left := AssociationEnd{Asset: "Host", Field: "apps", Multiplicity: ident.Multiplicity{Min: 0, Max: ident.Infinite}}
	right := AssociationEnd{Asset: "App", Field: "host", Multiplicity: ident.Multiplicity{Min: 1, Max: 1}}

	assoc, err := lb.AddAssociation("AppHosting", left, right)
	require.NoError(t, err)
	require.Equal(t, "AppHosting", assoc.Name())
	require.Equal(t, left, assoc.Left())
	require.Equal(t, right, assoc.Right())

	bad := AssociationEnd{Asset: "Host", Field: "1bad"}
	_, err = lb.AddAssociation("Bad", bad, right)
	require.Error(t, err)
}

func TestLangBuilderDefinesAndLicense(t *testing.T) {
	lb := NewLangBuilder()
	require.NoError(t, lb.Defines().AddEntry("id", "org.example.test"))
	require.NoError(t, lb.Defines().AddEntry("version", "1.0.0"))

	lb.SetLicense("MIT")
	lb.SetNotice("Copyright")

	text, ok := lb.License()
	require.True(t, ok)
	require.Equal(t, "MIT", text)

	notice, ok := lb.Notice()
	require.True(t, ok)
	require.Equal(t, "Copyright", notice)
}
