package langjson

import (
	"bytes"
	"encoding/json"

	"github.com/malspec/langspec/ident"
)

// metaWire preserves a meta JSON object's own key order through decode and
// re-emits it unchanged through encode: a Go map would sort its keys on
// marshal, but ident.Meta's insertion order is itself part of the document
// (the defines block and every per-entity meta block are ordered maps, not
// sets).
type metaWire struct {
	keys   []string
	values map[string]string
}

func metaToWire(m ident.Meta) metaWire {
	keys := append([]string(nil), m.Keys()...)
	values := make(map[string]string, len(keys))
	for _, k := range keys {
		v, _ := m.Get(k)
		values[k] = v
	}
	return metaWire{keys: keys, values: values}
}

func (w metaWire) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range w.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(w.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (w *metaWire) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errNotJSONObject
	}
	w.values = make(map[string]string)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return errNotJSONObject
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return err
		}
		w.keys = append(w.keys, key)
		w.values[key] = value
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

func (w metaWire) intoBuilder(b *ident.MetaBuilder) error {
	for _, k := range w.keys {
		if err := b.AddEntry(k, w.values[k]); err != nil {
			return err
		}
	}
	return nil
}
