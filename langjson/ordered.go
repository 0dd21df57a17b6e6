package langjson

import (
	"bytes"
	"encoding/json"
	"errors"
)

var errNotJSONObject = errors.New("langjson: expected a JSON object")

// jsonField is one key/value pair written by marshalOrdered, in the order
// given. It exists so the tagged-variant wire types (stepExpression,
// ttcExpression) can emit exactly the keys relevant to their kind, in a
// fixed order, without encoding/json's omitempty ambiguity between "zero
// value" and "not applicable to this kind".
type jsonField struct {
	key   string
	value any
}

func marshalOrdered(fields ...jsonField) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(f.value)
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
