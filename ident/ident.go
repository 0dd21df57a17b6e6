// Package ident implements the Identifier, Meta, Multiplicity, and Risk
// primitives shared by every named entity in a Lang.
package ident

import (
	"regexp"

	"github.com/malspec/langspec/langerr"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsIdentifier reports whether s matches the identifier grammar
// ^[A-Za-z_][A-Za-z0-9_]*$.
func IsIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// Check returns an InvalidIdentifier error if s is not a valid identifier,
// nil otherwise.
func Check(s string) error {
	if !IsIdentifier(s) {
		return langerr.InvalidIdentifier(s)
	}
	return nil
}
