// Package builder holds the mutable, by-name descriptions of a Lang:
// categories, assets, associations, variables, attack steps, and their
// step expressions, collected before the resolver links them into an
// immutable lang.Lang. Builders are not thread-safe and must be confined
// to one goroutine; a failed Build leaves the caller's builder untouched.
package builder

import (
	"github.com/malspec/langspec/ident"
	"github.com/malspec/langspec/langerr"
)

// LangBuilder collects the top-level declarations of a Lang.
type LangBuilder struct {
	defines      *ident.MetaBuilder
	categories   []*CategoryBuilder
	categoryName map[string]bool
	assets       []*AssetBuilder
	assetName    map[string]bool
	associations []*AssociationBuilder
	license      *string
	notice       *string
}

// NewLangBuilder returns an empty builder.
func NewLangBuilder() *LangBuilder {
	return &LangBuilder{
		defines:      ident.NewMetaBuilder(),
		categoryName: make(map[string]bool),
		assetName:    make(map[string]bool),
	}
}

// Defines returns the builder's `defines` meta builder, for adding entries
// such as `id` and `version`.
func (b *LangBuilder) Defines() *ident.MetaBuilder { return b.defines }

// SetLicense and SetNotice record the archive's LICENSE/NOTICE text.
func (b *LangBuilder) SetLicense(text string) { b.license = &text }
func (b *LangBuilder) SetNotice(text string)  { b.notice = &text }

// AddCategory declares a new category. name must be a valid identifier and
// unique among the Lang's categories.
func (b *LangBuilder) AddCategory(name string) (*CategoryBuilder, error) {
	if err := ident.Check(name); err != nil {
		return nil, err
	}
	if b.categoryName[name] {
		return nil, langerr.DuplicateName("category", name)
	}
	cb := &CategoryBuilder{name: name, meta: ident.NewMetaBuilder()}
	b.categoryName[name] = true
	b.categories = append(b.categories, cb)
	return cb, nil
}

// AddAsset declares a new asset. name must be a valid identifier and
// unique across the whole Lang (not just within category).
func (b *LangBuilder) AddAsset(name, category string, isAbstract bool) (*AssetBuilder, error) {
	if err := ident.Check(name); err != nil {
		return nil, err
	}
	if b.assetName[name] {
		return nil, langerr.DuplicateName("asset", name)
	}
	ab := &AssetBuilder{
		name:       name,
		meta:       ident.NewMetaBuilder(),
		category:   category,
		isAbstract: isAbstract,
	}
	b.assetName[name] = true
	b.assets = append(b.assets, ab)
	return ab, nil
}

// AddAssociation declares a new association between two (asset, field)
// endpoints.
func (b *LangBuilder) AddAssociation(name string, left, right AssociationEnd) (*AssociationBuilder, error) {
	if err := ident.Check(name); err != nil {
		return nil, err
	}
	if err := ident.Check(left.Field); err != nil {
		return nil, err
	}
	if err := ident.Check(right.Field); err != nil {
		return nil, err
	}
	assoc := &AssociationBuilder{name: name, left: left, right: right}
	b.associations = append(b.associations, assoc)
	return assoc, nil
}

func (b *LangBuilder) Categories() []*CategoryBuilder       { return b.categories }
func (b *LangBuilder) Assets() []*AssetBuilder               { return b.assets }
func (b *LangBuilder) Associations() []*AssociationBuilder   { return b.associations }
func (b *LangBuilder) License() (string, bool) {
	if b.license == nil {
		return "", false
	}
	return *b.license, true
}
func (b *LangBuilder) Notice() (string, bool) {
	if b.notice == nil {
		return "", false
	}
	return *b.notice, true
}

// CategoryBuilder is the by-name description of a category.
type CategoryBuilder struct {
	name string
	meta *ident.MetaBuilder
}

func (c *CategoryBuilder) Name() string              { return c.name }
func (c *CategoryBuilder) Meta() *ident.MetaBuilder  { return c.meta }

// AssociationEnd names one side of an association before linking: the
// asset it belongs to, the field name, and its multiplicity.
type AssociationEnd struct {
	Asset        string
	Field        string
	Multiplicity ident.Multiplicity
}

// AssociationBuilder is the by-name description of an association.
type AssociationBuilder struct {
	name        string
	meta        *ident.MetaBuilder
	left, right AssociationEnd
}

func (a *AssociationBuilder) Name() string { return a.name }
func (a *AssociationBuilder) Meta() *ident.MetaBuilder {
	if a.meta == nil {
		a.meta = ident.NewMetaBuilder()
	}
	return a.meta
}
func (a *AssociationBuilder) Left() AssociationEnd  { return a.left }
func (a *AssociationBuilder) Right() AssociationEnd { return a.right }
