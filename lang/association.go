package lang

import "github.com/malspec/langspec/ident"

// Association is a typed binary relation between two assets, with two
// named, cross-linked field endpoints.
type Association struct {
	name       string
	meta       ident.Meta
	leftField  *Field
	rightField *Field
}

func (a *Association) Name() string      { return a.name }
func (a *Association) Meta() ident.Meta  { return a.meta }
func (a *Association) LeftField() *Field { return a.leftField }
func (a *Association) RightField() *Field { return a.rightField }
