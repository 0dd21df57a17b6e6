// Package archive implements the `.mar` bundle format: a zip container
// holding langspec.json, per-asset icon files, and an optional LICENSE and
// NOTICE. Reading deserializes langspec.json through langjson then attaches
// matching icon bytes to each asset's builder before the caller resolves
// the result; writing does the reverse, serializing an already-resolved
// Lang and re-zipping it deterministically.
package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"sort"

	"github.com/malspec/langspec/builder"
	"github.com/malspec/langspec/ident"
	"github.com/malspec/langspec/lang"
	"github.com/malspec/langspec/langerr"
	"github.com/malspec/langspec/langjson"
)

const (
	langspecEntry = "langspec.json"
	iconsDir      = "icons/"
	licenseEntry  = "LICENSE"
	noticeEntry   = "NOTICE"
)

// Read parses a `.mar` archive from r into a *builder.LangBuilder with
// every recognized icon attached to its matching asset. The caller still
// runs the result through resolver.Resolve.
func Read(r io.ReaderAt, size int64, opts ...langjson.ValidationOptions) (*builder.LangBuilder, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, langerr.Wrap(langerr.KindSchemaViolation, "archive is not a valid zip container", err)
	}

	var langspecData []byte
	svgIcons := make(map[string][]byte)
	pngIcons := make(map[string][]byte)
	var license, notice *string

	for _, f := range zr.File {
		switch {
		case f.Name == langspecEntry:
			data, err := readZipFile(f)
			if err != nil {
				return nil, err
			}
			langspecData = data
		case f.Name == licenseEntry:
			data, err := readZipFile(f)
			if err != nil {
				return nil, err
			}
			text := string(data)
			license = &text
		case f.Name == noticeEntry:
			data, err := readZipFile(f)
			if err != nil {
				return nil, err
			}
			text := string(data)
			notice = &text
		default:
			if name, ok := iconAssetName(f.Name, ".svg"); ok {
				data, err := readZipFile(f)
				if err != nil {
					return nil, err
				}
				svgIcons[name] = data
			} else if name, ok := iconAssetName(f.Name, ".png"); ok {
				data, err := readZipFile(f)
				if err != nil {
					return nil, err
				}
				pngIcons[name] = data
			}
			// unknown entries, including icons/ itself, are ignored
		}
	}

	if langspecData == nil {
		return nil, langerr.ArchiveMissingLangSpec()
	}

	lb, err := langjson.Parse(langspecData, opts...)
	if err != nil {
		return nil, err
	}

	if license != nil {
		lb.SetLicense(*license)
	}
	if notice != nil {
		lb.SetNotice(*notice)
	}
	for _, ab := range lb.Assets() {
		if data, ok := svgIcons[ab.Name()]; ok {
			ab.SetSVGIcon(data)
		}
		if data, ok := pngIcons[ab.Name()]; ok {
			ab.SetPNGIcon(data)
		}
	}

	return lb, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, langerr.Wrap(langerr.KindSchemaViolation, "cannot open archive entry "+f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, langerr.Wrap(langerr.KindSchemaViolation, "cannot read archive entry "+f.Name, err)
	}
	return data, nil
}

// iconAssetName reports whether name matches icons/<identifier><ext>,
// returning the asset name when it does. Icons whose base name is not a
// valid identifier are ignored, per §4.7.
func iconAssetName(name, ext string) (string, bool) {
	if len(name) <= len(iconsDir)+len(ext) {
		return "", false
	}
	if name[:len(iconsDir)] != iconsDir {
		return "", false
	}
	if name[len(name)-len(ext):] != ext {
		return "", false
	}
	base := name[len(iconsDir) : len(name)-len(ext)]
	if !ident.IsIdentifier(base) {
		return "", false
	}
	return base, true
}

// Write serializes l into a `.mar` archive: langspec.json, an explicit
// icons/ directory entry, each asset's local-only SVG/PNG icon, then
// LICENSE and NOTICE if present.
func Write(l *lang.Lang) ([]byte, error) {
	data, err := langjson.Serialize(l)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	if err := writeZipFile(zw, langspecEntry, data); err != nil {
		return nil, err
	}
	if _, err := zw.Create(iconsDir); err != nil {
		return nil, err
	}

	assets := append([]*lang.Asset(nil), l.Assets()...)
	sort.Slice(assets, func(i, j int) bool { return assets[i].Name() < assets[j].Name() })
	for _, a := range assets {
		if svg, ok := a.SVGIcon(); ok && isLocalIcon(a, svg, (*lang.Asset).SVGIcon) {
			if err := writeZipFile(zw, iconsDir+a.Name()+".svg", svg); err != nil {
				return nil, err
			}
		}
		if png, ok := a.PNGIcon(); ok && isLocalIcon(a, png, (*lang.Asset).PNGIcon) {
			if err := writeZipFile(zw, iconsDir+a.Name()+".png", png); err != nil {
				return nil, err
			}
		}
	}

	if text, ok := l.License(); ok {
		if err := writeZipFile(zw, licenseEntry, []byte(text)); err != nil {
			return nil, err
		}
	}
	if text, ok := l.Notice(); ok {
		if err := writeZipFile(zw, noticeEntry, []byte(text)); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeZipFile(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// isLocalIcon reports whether resolved (the value accessor returned for a)
// actually originates on a itself rather than being inherited from its
// super-asset, by re-checking against the super's own resolved icon.
func isLocalIcon(a *lang.Asset, resolved []byte, accessor func(*lang.Asset) ([]byte, bool)) bool {
	super, ok := a.SuperAsset()
	if !ok {
		return true
	}
	inherited, ok := accessor(super)
	return !ok || !bytesEqual(inherited, resolved)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
