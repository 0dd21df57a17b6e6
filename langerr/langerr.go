// Package langerr defines the typed errors raised while building, linking,
// or (de)serializing a Lang. Failures the resolver, the JSON parser, and the
// archive reader detect are reported as one of the Kind values below.
// Errors from the zip writer and the JSON encoder on the write path
// (archive.Write, langjson.Serialize), and a failure to compile the
// built-in schema, are returned as they are.
package langerr

import (
	"fmt"
)

// Kind identifies the category of a langspec error.
type Kind string

const (
	KindInvalidIdentifier          Kind = "InvalidIdentifier"
	KindDuplicateName              Kind = "DuplicateName"
	KindUnknownReference           Kind = "UnknownReference"
	KindSuperAssetCycle            Kind = "SuperAssetCycle"
	KindVariableCycle              Kind = "VariableCycle"
	KindNoCommonSuperAsset         Kind = "NoCommonSuperAsset"
	KindIncompatibleSubType        Kind = "IncompatibleSubType"
	KindTransitiveNonUniform       Kind = "TransitiveNonUniform"
	KindStepTypeMismatch           Kind = "StepTypeMismatch"
	KindRequiresOnNonExistenceStep Kind = "RequiresOnNonExistenceStep"
	KindInvalidDistributionArgs    Kind = "InvalidDistributionArguments"
	KindSchemaViolation            Kind = "SchemaViolation"
	KindArchiveMissingLangSpec     Kind = "ArchiveMissingLangSpec"
	KindUnsupportedOperation       Kind = "UnsupportedOperation"
)

// Error is the single concrete error type produced by this module. It
// carries enough structure for a caller to branch on Kind without parsing
// the message, while Error() still reads as a normal Go error string.
type Error struct {
	Kind Kind

	// Entity/Name identify what the error is about, e.g. Entity="asset",
	// Name="Host". Both may be empty for kinds that don't name a single
	// entity (e.g. SchemaViolation uses Path instead).
	Entity string
	Name   string

	// Path is a JSON-pointer-ish location, populated by the schema
	// validator and the archive reader.
	Path string

	// Suggestion is a nearby known name, populated for UnknownReference
	// errors when a close match exists.
	Suggestion string

	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Entity != "" || e.Name != "" {
		msg += fmt.Sprintf(" (%s %q)", e.Entity, e.Name)
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" at %s", e.Path)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is match on Kind alone, e.g. errors.Is(err, langerr.New(langerr.KindSuperAssetCycle, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func InvalidIdentifier(name string) *Error {
	return &Error{Kind: KindInvalidIdentifier, Name: name, Message: "not a valid identifier"}
}

func DuplicateName(entity, name string) *Error {
	return &Error{Kind: KindDuplicateName, Entity: entity, Name: name, Message: "already defined"}
}

func UnknownReference(entity, name, suggestion string) *Error {
	return &Error{Kind: KindUnknownReference, Entity: entity, Name: name, Suggestion: suggestion, Message: "not defined"}
}

func SuperAssetCycle(path string) *Error {
	return &Error{Kind: KindSuperAssetCycle, Entity: "asset", Path: path, Message: "super-asset chain cycles back on itself"}
}

func VariableCycle(asset, variable string) *Error {
	return &Error{Kind: KindVariableCycle, Entity: "variable", Name: variable, Message: fmt.Sprintf("on asset %q depends on a variable not yet typed", asset)}
}

func NoCommonSuperAsset(lhs, rhs string) *Error {
	return &Error{Kind: KindNoCommonSuperAsset, Message: fmt.Sprintf("%q and %q share no common super-asset", lhs, rhs)}
}

func IncompatibleSubType(sub, sup string) *Error {
	return &Error{Kind: KindIncompatibleSubType, Message: fmt.Sprintf("%q is not a subtype of %q", sub, sup)}
}

func TransitiveNonUniform(source, target string) *Error {
	return &Error{Kind: KindTransitiveNonUniform, Message: fmt.Sprintf("source %q and target %q of transitive's inner expression must match", source, target)}
}

func StepTypeMismatch(asset, step string) *Error {
	return &Error{Kind: KindStepTypeMismatch, Entity: "attackStep", Name: step, Message: fmt.Sprintf("on asset %q does not match its super-step's type", asset)}
}

func RequiresOnNonExistenceStep(asset, step string) *Error {
	return &Error{Kind: KindRequiresOnNonExistenceStep, Entity: "attackStep", Name: step, Message: fmt.Sprintf("on asset %q: requires is only valid on exist/notExist steps", asset)}
}

func InvalidDistributionArguments(distribution string) *Error {
	return &Error{Kind: KindInvalidDistributionArgs, Entity: "distribution", Name: distribution, Message: "argument out of range"}
}

func SchemaViolation(path, reason string) *Error {
	return &Error{Kind: KindSchemaViolation, Path: path, Message: reason}
}

func ArchiveMissingLangSpec() *Error {
	return &Error{Kind: KindArchiveMissingLangSpec, Message: "archive does not contain langspec.json"}
}

func UnsupportedOperation(op, on string) *Error {
	return &Error{Kind: KindUnsupportedOperation, Message: fmt.Sprintf("%s is not defined on %s", op, on)}
}
