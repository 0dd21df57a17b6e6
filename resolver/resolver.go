// Package resolver is the public entry point for linking a builder
// description into a finished Lang. The actual two-phase link lives in
// package lang, next to the types it populates (Category, Asset, Field,
// Association, Variable, AttackStep all carry unexported state that only
// code in that package can set).
package resolver

import (
	"github.com/malspec/langspec/builder"
	"github.com/malspec/langspec/lang"
)

// Resolve links lb into an immutable Lang, or returns the first typed
// error (*langerr.Error) encountered during structural or semantic
// validation.
func Resolve(lb *builder.LangBuilder) (*lang.Lang, error) {
	return lang.Resolve(lb)
}
