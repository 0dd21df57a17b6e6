package langjson

import (
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/malspec/langspec/langerr"
)

// schemaSource is the draft-07 subset schema for a langspec.json document,
// described in prose in §6 of the design: a fixed top-level shape plus the
// StepExpression/TtcExpression tagged-variant recursion.
const schemaSource = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "definitions": {
    "identifier": {
      "type": "string",
      "pattern": "^[A-Za-z_][A-Za-z0-9_]*$"
    },
    "meta": {
      "type": "object",
      "additionalProperties": { "type": "string" },
      "propertyNames": { "$ref": "#/definitions/identifier" }
    },
    "multiplicity": {
      "type": "object",
      "required": ["min"],
      "properties": {
        "min": { "enum": [0, 1] },
        "max": { "enum": [1, null] }
      }
    },
    "risk": {
      "oneOf": [
        { "type": "null" },
        {
          "type": "object",
          "required": ["isConfidentiality", "isIntegrity", "isAvailability"],
          "properties": {
            "isConfidentiality": { "type": "boolean" },
            "isIntegrity": { "type": "boolean" },
            "isAvailability": { "type": "boolean" }
          }
        },
        {
          "type": "array",
          "items": { "enum": ["confidentiality", "integrity", "availability"] }
        }
      ]
    },
    "stepExpression": {
      "type": "object",
      "required": ["kind"],
      "properties": {
        "kind": {
          "enum": ["union", "intersection", "difference", "collect", "transitive", "subType", "field", "attackStep", "variable"]
        },
        "left": { "$ref": "#/definitions/stepExpression" },
        "right": { "$ref": "#/definitions/stepExpression" },
        "inner": { "$ref": "#/definitions/stepExpression" },
        "typeName": { "$ref": "#/definitions/identifier" },
        "name": { "$ref": "#/definitions/identifier" }
      }
    },
    "ttcExpression": {
      "oneOf": [
        { "type": "null" },
        {
          "type": "object",
          "required": ["kind"],
          "properties": {
            "kind": {
              "enum": ["number", "addition", "subtraction", "multiplication", "division", "exponentiation", "function"]
            },
            "value": { "type": "number" },
            "left": { "$ref": "#/definitions/ttcExpression" },
            "right": { "$ref": "#/definitions/ttcExpression" },
            "distribution": { "$ref": "#/definitions/identifier" },
            "arguments": {
              "type": "array",
              "items": { "$ref": "#/definitions/ttcExpression" }
            }
          }
        }
      ]
    },
    "steps": {
      "oneOf": [
        { "type": "null" },
        {
          "type": "object",
          "required": ["overrides", "stepExpressions"],
          "properties": {
            "overrides": { "type": "boolean" },
            "stepExpressions": {
              "type": "array",
              "items": { "$ref": "#/definitions/stepExpression" }
            }
          }
        }
      ]
    },
    "variable": {
      "type": "object",
      "required": ["name", "expr"],
      "properties": {
        "name": { "$ref": "#/definitions/identifier" },
        "expr": { "$ref": "#/definitions/stepExpression" }
      }
    },
    "attackStep": {
      "type": "object",
      "required": ["name", "meta", "type", "tags", "risk", "requires", "reaches"],
      "properties": {
        "name": { "$ref": "#/definitions/identifier" },
        "meta": { "$ref": "#/definitions/meta" },
        "type": { "enum": ["or", "and", "defense", "exist", "notExist"] },
        "tags": {
          "type": "array",
          "items": { "$ref": "#/definitions/identifier" }
        },
        "risk": { "$ref": "#/definitions/risk" },
        "ttc": { "$ref": "#/definitions/ttcExpression" },
        "requires": { "$ref": "#/definitions/steps" },
        "reaches": { "$ref": "#/definitions/steps" }
      }
    },
    "category": {
      "type": "object",
      "required": ["name", "meta"],
      "properties": {
        "name": { "$ref": "#/definitions/identifier" },
        "meta": { "$ref": "#/definitions/meta" }
      }
    },
    "asset": {
      "type": "object",
      "required": ["name", "meta", "category", "isAbstract", "superAsset", "variables", "attackSteps"],
      "properties": {
        "name": { "$ref": "#/definitions/identifier" },
        "meta": { "$ref": "#/definitions/meta" },
        "category": { "$ref": "#/definitions/identifier" },
        "isAbstract": { "type": "boolean" },
        "superAsset": {
          "anyOf": [{ "type": "null" }, { "$ref": "#/definitions/identifier" }]
        },
        "variables": {
          "type": "array",
          "items": { "$ref": "#/definitions/variable" }
        },
        "attackSteps": {
          "type": "array",
          "items": { "$ref": "#/definitions/attackStep" }
        }
      }
    },
    "association": {
      "type": "object",
      "required": ["name", "meta", "leftAsset", "leftField", "leftMultiplicity", "rightAsset", "rightField", "rightMultiplicity"],
      "properties": {
        "name": { "$ref": "#/definitions/identifier" },
        "meta": { "$ref": "#/definitions/meta" },
        "leftAsset": { "$ref": "#/definitions/identifier" },
        "leftField": { "$ref": "#/definitions/identifier" },
        "leftMultiplicity": { "$ref": "#/definitions/multiplicity" },
        "rightAsset": { "$ref": "#/definitions/identifier" },
        "rightField": { "$ref": "#/definitions/identifier" },
        "rightMultiplicity": { "$ref": "#/definitions/multiplicity" }
      }
    }
  },
  "type": "object",
  "required": ["formatVersion", "defines", "categories", "assets", "associations"],
  "properties": {
    "formatVersion": { "type": "string" },
    "defines": { "$ref": "#/definitions/meta" },
    "categories": {
      "type": "array",
      "items": { "$ref": "#/definitions/category" }
    },
    "assets": {
      "type": "array",
      "items": { "$ref": "#/definitions/asset" }
    },
    "associations": {
      "type": "array",
      "items": { "$ref": "#/definitions/association" }
    }
  }
}`

// ValidationOptions is the one tunable exposed to callers of Parse,
// mirroring the teacher's plain-struct validator configuration shape
// without carrying knobs this fixed, self-contained schema has no use for
// (there is no remote $ref to allow or forbid, no caller-supplied schema
// whose size needs bounding).
type ValidationOptions struct {
	// MaxDocumentSize bounds the input before it is handed to the schema
	// compiler/validator, guarding against unbounded allocation from a
	// hostile or corrupt archive. Zero means unbounded.
	MaxDocumentSize int
}

// DefaultValidationOptions returns the options Parse uses when the caller
// doesn't supply its own.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{MaxDocumentSize: 64 * 1024 * 1024}
}

var (
	compiledSchema     *jsonschema.Schema
	compiledSchemaOnce sync.Once
	compiledSchemaErr  error
)

func schema() (*jsonschema.Schema, error) {
	compiledSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft7
		if err := compiler.AddResource("langspec.json", strings.NewReader(schemaSource)); err != nil {
			compiledSchemaErr = err
			return
		}
		compiledSchema, compiledSchemaErr = compiler.Compile("langspec.json")
	})
	return compiledSchema, compiledSchemaErr
}

// validate checks doc (already decoded via jsonschema.UnmarshalJSON) against
// the langspec.json schema, translating the first validation failure into a
// langerr.SchemaViolation carrying the library's JSON-pointer instance
// location.
func validate(doc any) error {
	s, err := schema()
	if err != nil {
		return err
	}
	if err := s.Validate(doc); err != nil {
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return langerr.SchemaViolation("", err.Error())
		}
		return langerr.SchemaViolation(leafLocation(ve), leafMessage(ve))
	}
	return nil
}

// leafLocation and leafMessage walk to the deepest cause of a validation
// error: the root error is usually just "doesn't validate against schema",
// with the actionable detail several Causes down.
func leafLocation(ve *jsonschema.ValidationError) string {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve.InstanceLocation
}

func leafMessage(ve *jsonschema.ValidationError) string {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve.Message
}
