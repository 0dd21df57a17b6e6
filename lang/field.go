package lang

import (
	"github.com/malspec/langspec/ident"
	"github.com/malspec/langspec/stepexpr"
)

// Field is one named endpoint of an Association, owned by an asset and
// pointing (through the association) to a target field on the peer asset.
type Field struct {
	name         string
	owner        *Asset
	multiplicity ident.Multiplicity
	association  *Association
	target       *Field
}

func (f *Field) Name() string                     { return f.name }
func (f *Field) Owner() *Asset                     { return f.owner }
func (f *Field) Multiplicity() ident.Multiplicity  { return f.multiplicity }
func (f *Field) Association() *Association         { return f.association }

// TargetField returns the field at the other end of the association.
func (f *Field) TargetField() *Field { return f.target }

// TargetAsset returns the owner of the target field, implementing
// stepexpr.FieldRef.
func (f *Field) TargetAsset() stepexpr.AssetRef { return f.target.owner }
