package builder

import (
	"github.com/malspec/langspec/ident"
	"github.com/malspec/langspec/lang"
	"github.com/malspec/langspec/stepexpr"
)

// FromLang rebuilds a mutable LangBuilder from an already-resolved Lang,
// deep-copying every by-name description. It exists so a caller holding a
// built Lang can add one more declaration and Build() a new one, without
// this being a general edit/diff/merge API: the result is a plain
// snapshot, no different from one a caller could have assembled by hand
// from a JSON fixture.
func FromLang(l *lang.Lang) (*LangBuilder, error) {
	lb := NewLangBuilder()

	for _, k := range l.Defines().Keys() {
		v, _ := l.Defines().Get(k)
		if err := lb.Defines().AddEntry(k, v); err != nil {
			return nil, err
		}
	}
	if text, ok := l.License(); ok {
		lb.SetLicense(text)
	}
	if text, ok := l.Notice(); ok {
		lb.SetNotice(text)
	}

	for _, c := range l.Categories() {
		cb, err := lb.AddCategory(c.Name())
		if err != nil {
			return nil, err
		}
		if err := copyMeta(cb.Meta(), c.Meta()); err != nil {
			return nil, err
		}
	}

	for _, a := range l.Assets() {
		superName := ""
		if super, ok := a.SuperAsset(); ok {
			superName = super.Name()
		}
		ab, err := lb.AddAsset(a.Name(), a.Category().Name(), a.IsAbstract())
		if err != nil {
			return nil, err
		}
		if superName != "" {
			if err := ab.SetSuperAsset(superName); err != nil {
				return nil, err
			}
		}
		if err := copyMeta(ab.Meta(), a.Meta()); err != nil {
			return nil, err
		}
		if svg, ok := a.SVGIcon(); ok && isLocalSVG(a, svg) {
			ab.SetSVGIcon(svg)
		}
		if png, ok := a.PNGIcon(); ok && isLocalPNG(a, png) {
			ab.SetPNGIcon(png)
		}

		for _, v := range a.LocalVariables() {
			if _, err := ab.AddVariable(v.Name(), exprToDesc(v.Expr())); err != nil {
				return nil, err
			}
		}

		for _, s := range a.LocalAttackSteps() {
			sb, err := ab.AddAttackStep(s.Name(), s.Type())
			if err != nil {
				return nil, err
			}
			if err := copyMeta(sb.Meta(), s.Meta()); err != nil {
				return nil, err
			}
			if tags, ok := s.LocalTags(); ok {
				for _, tag := range tags {
					if err := sb.AddTag(tag); err != nil {
						return nil, err
					}
				}
			}
			if risk, ok := s.LocalRisk(); ok {
				sb.SetRisk(risk)
			}
			if ttcExpr, ok := s.LocalTTC(); ok {
				sb.SetTTC(ttcExpr)
			}
			// A group that is the super-step's own was not declared here.
			var superReq, superRch *lang.StepsGroup
			if super, ok := a.SuperAsset(); ok {
				if superStep, ok := super.AttackStep(s.Name()); ok {
					superReq, _ = superStep.Requires()
					superRch, _ = superStep.Reaches()
				}
			}
			if req, ok := s.Requires(); ok && req != superReq {
				sb.SetRequires(req.Overrides, exprsToDescs(req.Local))
			}
			if rch, ok := s.Reaches(); ok && rch != superRch {
				sb.SetReaches(rch.Overrides, exprsToDescs(rch.Local))
			}
		}
	}

	for _, assoc := range l.Associations() {
		left := AssociationEnd{
			Asset:        assoc.LeftField().Owner().Name(),
			Field:        assoc.LeftField().Name(),
			Multiplicity: assoc.LeftField().Multiplicity(),
		}
		right := AssociationEnd{
			Asset:        assoc.RightField().Owner().Name(),
			Field:        assoc.RightField().Name(),
			Multiplicity: assoc.RightField().Multiplicity(),
		}
		assocB, err := lb.AddAssociation(assoc.Name(), left, right)
		if err != nil {
			return nil, err
		}
		if err := copyMeta(assocB.Meta(), assoc.Meta()); err != nil {
			return nil, err
		}
	}

	return lb, nil
}

func copyMeta(dst *ident.MetaBuilder, src ident.Meta) error {
	for _, k := range src.Keys() {
		v, _ := src.Get(k)
		if err := dst.AddEntry(k, v); err != nil {
			return err
		}
	}
	return nil
}

// isLocalSVG/isLocalPNG distinguish a locally-declared icon from one
// resolved through inheritance: SVGIcon()/PNGIcon() already walk the
// super-chain, so we re-check against the asset's own super to see
// whether the icon actually originates here.
func isLocalSVG(a *lang.Asset, resolved []byte) bool {
	super, ok := a.SuperAsset()
	if !ok {
		return true
	}
	inherited, ok := super.SVGIcon()
	return !ok || !bytesEqual(inherited, resolved)
}

func isLocalPNG(a *lang.Asset, resolved []byte) bool {
	super, ok := a.SuperAsset()
	if !ok {
		return true
	}
	inherited, ok := super.PNGIcon()
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

func exprsToDescs(exprs []*stepexpr.Expr) []*ExprDesc {
	out := make([]*ExprDesc, len(exprs))
	for i, e := range exprs {
		out[i] = exprToDesc(e)
	}
	return out
}

// exprToDesc reverses a type-checked Expr back into its by-name Desc form,
// discarding the resolved source/target typing (the resolver recomputes it
// on the next Build()).
func exprToDesc(e *stepexpr.Expr) *ExprDesc {
	if e == nil {
		return nil
	}
	d := &ExprDesc{Kind: e.Kind, TypeName: e.TypeName, Name: e.Name}
	if e.Left != nil {
		d.Left = exprToDesc(e.Left)
	}
	if e.Right != nil {
		d.Right = exprToDesc(e.Right)
	}
	if e.Inner != nil {
		d.Inner = exprToDesc(e.Inner)
	}
	return d
}
