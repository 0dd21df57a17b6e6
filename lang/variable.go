package lang

import "github.com/malspec/langspec/stepexpr"

// Variable is a named, typed step expression scoped to an owning asset.
type Variable struct {
	name  string
	owner *Asset
	expr  *stepexpr.Expr
}

func (v *Variable) Name() string         { return v.name }
func (v *Variable) Owner() *Asset        { return v.owner }
func (v *Variable) Expr() *stepexpr.Expr { return v.expr }

// TargetAsset returns the asset the variable's expression resolves to.
func (v *Variable) TargetAsset() *Asset {
	return v.expr.Target.(*Asset)
}

// VariableTargetAsset implements stepexpr.VariableRef, letting other
// variables' bodies reference this one via variable(name).
func (v *Variable) VariableTargetAsset() stepexpr.AssetRef {
	return v.expr.Target
}
