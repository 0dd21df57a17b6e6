package langjson

import (
	"encoding/json"

	"github.com/malspec/langspec/langerr"
	"github.com/malspec/langspec/stepexpr"
)

var stepKindNames = map[stepexpr.Kind]string{
	stepexpr.KindUnion:        "union",
	stepexpr.KindIntersection: "intersection",
	stepexpr.KindDifference:   "difference",
	stepexpr.KindCollect:      "collect",
	stepexpr.KindTransitive:   "transitive",
	stepexpr.KindSubType:      "subType",
	stepexpr.KindField:        "field",
	stepexpr.KindAttackStep:   "attackStep",
	stepexpr.KindVariable:     "variable",
}

var stepKindValues = func() map[string]stepexpr.Kind {
	out := make(map[string]stepexpr.Kind, len(stepKindNames))
	for k, v := range stepKindNames {
		out[v] = k
	}
	return out
}()

// stepExpressionWire is the tagged-variant wire form of a step expression:
// every node carries a "kind" discriminator plus only the fields relevant
// to it (left/right for the set combinators and collect, inner (plus
// typeName for subType) for the unary forms, name for the three terminal
// reference kinds).
type stepExpressionWire struct {
	Kind     string
	Left     *stepExpressionWire
	Right    *stepExpressionWire
	Inner    *stepExpressionWire
	TypeName string
	Name     string
}

func stepExprToWire(e *stepexpr.Expr) *stepExpressionWire {
	if e == nil {
		return nil
	}
	return &stepExpressionWire{
		Kind:     stepKindNames[e.Kind],
		Left:     stepExprToWire(e.Left),
		Right:    stepExprToWire(e.Right),
		Inner:    stepExprToWire(e.Inner),
		TypeName: e.TypeName,
		Name:     e.Name,
	}
}

func wireToStepDesc(w *stepExpressionWire) (*stepexpr.Desc, error) {
	if w == nil {
		return nil, langerr.New(langerr.KindSchemaViolation, "step expression must not be empty")
	}
	kind, ok := stepKindValues[w.Kind]
	if !ok {
		return nil, langerr.SchemaViolation("kind", "unknown step expression kind "+w.Kind)
	}
	d := &stepexpr.Desc{Kind: kind, TypeName: w.TypeName, Name: w.Name}
	var err error
	if w.Left != nil {
		if d.Left, err = wireToStepDesc(w.Left); err != nil {
			return nil, err
		}
	}
	if w.Right != nil {
		if d.Right, err = wireToStepDesc(w.Right); err != nil {
			return nil, err
		}
	}
	if w.Inner != nil {
		if d.Inner, err = wireToStepDesc(w.Inner); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func wireToStepDescs(ws []*stepExpressionWire) ([]*stepexpr.Desc, error) {
	out := make([]*stepexpr.Desc, len(ws))
	for i, w := range ws {
		d, err := wireToStepDesc(w)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

func (w *stepExpressionWire) MarshalJSON() ([]byte, error) {
	fields := []jsonField{{"kind", w.Kind}}
	switch w.Kind {
	case "union", "intersection", "difference", "collect":
		fields = append(fields, jsonField{"left", w.Left}, jsonField{"right", w.Right})
	case "transitive":
		fields = append(fields, jsonField{"inner", w.Inner})
	case "subType":
		fields = append(fields, jsonField{"typeName", w.TypeName}, jsonField{"inner", w.Inner})
	case "field", "attackStep", "variable":
		fields = append(fields, jsonField{"name", w.Name})
	}
	return marshalOrdered(fields...)
}

func (w *stepExpressionWire) UnmarshalJSON(data []byte) error {
	var aux struct {
		Kind     string              `json:"kind"`
		Left     *stepExpressionWire `json:"left"`
		Right    *stepExpressionWire `json:"right"`
		Inner    *stepExpressionWire `json:"inner"`
		TypeName string              `json:"typeName"`
		Name     string              `json:"name"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	w.Kind, w.Left, w.Right, w.Inner = aux.Kind, aux.Left, aux.Right, aux.Inner
	w.TypeName, w.Name = aux.TypeName, aux.Name
	return nil
}
