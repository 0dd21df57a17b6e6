package ident

import "github.com/malspec/langspec/langerr"

// Meta is an order-preserving identifier-to-string mapping, used for the
// `meta` blocks attached to categories, assets, associations, and attack
// steps. It is itself the built, immutable form; MetaBuilder collects
// entries before Build produces one.
type Meta struct {
	keys   []string
	values map[string]string
}

// Len returns the number of entries.
func (m Meta) Len() int { return len(m.keys) }

// Keys returns the entry keys in insertion order. The caller must not
// mutate the returned slice.
func (m Meta) Keys() []string { return m.keys }

// Get returns the value for key and whether it was present.
func (m Meta) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// MetaBuilder accumulates key/value entries before Build.
type MetaBuilder struct {
	keys   []string
	values map[string]string
}

// NewMetaBuilder returns an empty builder.
func NewMetaBuilder() *MetaBuilder {
	return &MetaBuilder{values: make(map[string]string)}
}

// AddEntry validates key as an identifier and records key -> value,
// preserving insertion order. It returns an error (and leaves the builder
// untouched) if key is not a valid identifier or is already present.
func (b *MetaBuilder) AddEntry(key, value string) error {
	if err := Check(key); err != nil {
		return err
	}
	if _, exists := b.values[key]; exists {
		return langerr.DuplicateName("meta key", key)
	}
	b.keys = append(b.keys, key)
	b.values[key] = value
	return nil
}

// Build produces an immutable Meta snapshot of the accumulated entries.
func (b *MetaBuilder) Build() Meta {
	keys := make([]string, len(b.keys))
	copy(keys, b.keys)
	values := make(map[string]string, len(b.values))
	for k, v := range b.values {
		values[k] = v
	}
	return Meta{keys: keys, values: values}
}
