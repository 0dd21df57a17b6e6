package archive

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/malspec/langspec/builder"
	"github.com/malspec/langspec/langerr"
	"github.com/malspec/langspec/resolver"
)

func emptyZip(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("NOTICE")
	require.NoError(t, err)
	_, err = w.Write([]byte("nothing to see here"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func buildFixture(t *testing.T) *builder.LangBuilder {
	t.Helper()
	lb := builder.NewLangBuilder()
	require.NoError(t, lb.Defines().AddEntry("id", "org.example.archive"))
	require.NoError(t, lb.Defines().AddEntry("version", "1.0.0"))

	_, err := lb.AddCategory("Network")
	require.NoError(t, err)

	host, err := lb.AddAsset("Host", "Network", false)
	require.NoError(t, err)
	_ = host

	return lb
}

// TestArchiveRoundTrip is scenario S6: write a Lang with one asset carrying
// a local SVG icon and a LICENSE string, reopen the written bytes as an
// archive, and expect byte-identical icon bytes, byte-identical LICENSE
// text, and a resolved Lang equal to the original.
func TestArchiveRoundTrip(t *testing.T) {
	lb := buildFixture(t)
	host, ok := findAsset(lb, "Host")
	require.True(t, ok)

	svg := []byte("0123456789")
	host.SetSVGIcon(svg)
	lb.SetLicense("Apache-2.0")

	l, err := resolver.Resolve(lb)
	require.NoError(t, err)

	data, err := Write(l)
	require.NoError(t, err)

	parsedBuilder, err := Read(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	l2, err := resolver.Resolve(parsedBuilder)
	require.NoError(t, err)

	require.True(t, l.Equal(l2))

	asset2, ok := l2.Asset("Host")
	require.True(t, ok)
	icon, ok := asset2.SVGIcon()
	require.True(t, ok)
	require.Equal(t, svg, icon)

	license, ok := l2.License()
	require.True(t, ok)
	require.Equal(t, "Apache-2.0", license)
}

func TestArchiveReadMissingLangSpecIsFatal(t *testing.T) {
	zipBytes := emptyZip(t)
	_, err := Read(bytes.NewReader(zipBytes), int64(len(zipBytes)))
	require.Error(t, err)
	var lerr *langerr.Error
	require.ErrorAs(t, err, &lerr)
	require.Equal(t, langerr.KindArchiveMissingLangSpec, lerr.Kind)
}

func TestArchiveIgnoresIconsWithInvalidIdentifierBaseName(t *testing.T) {
	name, ok := iconAssetName("icons/1Bad.svg", ".svg")
	require.False(t, ok)
	require.Equal(t, "", name)

	name, ok = iconAssetName("icons/Host.svg", ".svg")
	require.True(t, ok)
	require.Equal(t, "Host", name)
}

func findAsset(lb *builder.LangBuilder, name string) (*builder.AssetBuilder, bool) {
	for _, ab := range lb.Assets() {
		if ab.Name() == name {
			return ab, true
		}
	}
	return nil, false
}
