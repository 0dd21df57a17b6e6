// Package lang is the immutable object graph produced by resolving a
// builder description: categories, assets (with inheritance), fields,
// associations, variables, attack steps, and their step-expression and
// TTC bodies. Once returned from the resolver, a *Lang never mutates;
// concurrent read-only access from multiple goroutines is safe.
package lang

import (
	"github.com/malspec/langspec/ident"
	"github.com/malspec/langspec/stepexpr"
)

// Lang is the finalized, arena-owning root of the object graph. Assets,
// fields, and associations refer back to it (and to each other) only
// through the accessor methods below, never through exported mutable
// state.
type Lang struct {
	defines ident.Meta

	categories []*Category
	assets     []*Asset

	categoryByName map[string]*Category
	assetByName    map[string]*Asset

	license *string
	notice  *string
}

// Defines returns the Lang's `defines` metadata map (guaranteed to contain
// at least "id" and "version" by the resolver).
func (l *Lang) Defines() ident.Meta { return l.defines }

// Categories returns the Lang's categories in declaration order.
func (l *Lang) Categories() []*Category { return l.categories }

// Assets returns every asset in the Lang, in declaration order.
func (l *Lang) Assets() []*Asset { return l.assets }

// Category looks up a category by name.
func (l *Lang) Category(name string) (*Category, bool) {
	c, ok := l.categoryByName[name]
	return c, ok
}

// Asset looks up an asset by name.
func (l *Lang) Asset(name string) (*Asset, bool) {
	a, ok := l.assetByName[name]
	return a, ok
}

// AssetByName implements stepexpr.AssetLookup, letting the step-expression
// type checker resolve subType(typeName, ...) targets.
func (l *Lang) AssetByName(name string) (stepexpr.AssetRef, bool) {
	a, ok := l.assetByName[name]
	if !ok {
		return nil, false
	}
	return a, true
}

// AssetNames implements stepexpr's optional assetNamesLister, letting an
// UnknownReference error on subType(typeName, ...) attach a fuzzy-matched
// suggestion from the Lang's known asset names.
func (l *Lang) AssetNames() []string {
	names := make([]string, len(l.assets))
	for i, a := range l.assets {
		names[i] = a.Name()
	}
	return names
}

// CategoryNames returns every declared category name, used the same way by
// the resolver's own UnknownReference("category", ...) suggestions.
func (l *Lang) CategoryNames() []string {
	names := make([]string, len(l.categories))
	for i, c := range l.categories {
		names[i] = c.Name()
	}
	return names
}

// License returns the archive's LICENSE text, if present.
func (l *Lang) License() (string, bool) {
	if l.license == nil {
		return "", false
	}
	return *l.license, true
}

// Notice returns the archive's NOTICE text, if present.
func (l *Lang) Notice() (string, bool) {
	if l.notice == nil {
		return "", false
	}
	return *l.notice, true
}

// Associations returns every association across all assets, deduplicated,
// in declaration order.
func (l *Lang) Associations() []*Association {
	seen := make(map[*Association]bool)
	var out []*Association
	for _, a := range l.assets {
		for _, f := range a.localFields {
			if f.association != nil && !seen[f.association] {
				seen[f.association] = true
				out = append(out, f.association)
			}
		}
	}
	return out
}
