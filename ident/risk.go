package ident

// Risk is the (confidentiality, integrity, availability) triple attached to
// an attack step. It is serialized as an array containing the subset of
// the literals "confidentiality", "integrity", "availability" that are
// true, always in that order, regardless of the order or duplication
// present on decode.
type Risk struct {
	Confidentiality bool
	Integrity       bool
	Availability    bool
}

// canonicalRiskOrder is the fixed C, I, A serialization order.
var canonicalRiskOrder = [...]struct {
	tag string
	get func(Risk) bool
}{
	{"confidentiality", func(r Risk) bool { return r.Confidentiality }},
	{"integrity", func(r Risk) bool { return r.Integrity }},
	{"availability", func(r Risk) bool { return r.Availability }},
}

// Tags returns the canonically-ordered subset of C/I/A tags that are true.
func (r Risk) Tags() []string {
	var tags []string
	for _, entry := range canonicalRiskOrder {
		if entry.get(r) {
			tags = append(tags, entry.tag)
		}
	}
	return tags
}

// RiskFromTags builds a Risk from an unordered, possibly-duplicated set of
// C/I/A tag strings, as accepted on decode. Unrecognized tags are ignored.
func RiskFromTags(tags []string) Risk {
	var r Risk
	for _, t := range tags {
		switch t {
		case "confidentiality":
			r.Confidentiality = true
		case "integrity":
			r.Integrity = true
		case "availability":
			r.Availability = true
		}
	}
	return r
}
