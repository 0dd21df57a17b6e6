package langjson

import (
	"encoding/json"

	"github.com/malspec/langspec/langerr"
	"github.com/malspec/langspec/ttc"
)

var ttcKindNames = map[ttc.Kind]string{
	ttc.KindNumber:         "number",
	ttc.KindAddition:       "addition",
	ttc.KindSubtraction:    "subtraction",
	ttc.KindMultiplication: "multiplication",
	ttc.KindDivision:       "division",
	ttc.KindExponentiation: "exponentiation",
	ttc.KindFunction:       "function",
}

var binaryTTCKinds = map[string]func(lhs, rhs *ttc.Expr) *ttc.Expr{
	"addition":       ttc.Addition,
	"subtraction":    ttc.Subtraction,
	"multiplication": ttc.Multiplication,
	"division":       ttc.Division,
	"exponentiation": ttc.Exponentiation,
}

// ttcExpressionWire is the tagged-variant wire form of a TTC expression. A
// nil *ttcExpressionWire marshals to (and is produced by unmarshaling) JSON
// null, standing for ttc.Empty() -- the explicit "no TTC" sentinel the
// design calls out as distinct from the key being absent.
type ttcExpressionWire struct {
	Kind         string
	Value        float64
	Left         *ttcExpressionWire
	Right        *ttcExpressionWire
	Distribution string
	Arguments    []*ttcExpressionWire
}

func ttcToWire(e *ttc.Expr) *ttcExpressionWire {
	if e.IsEmpty() {
		return nil
	}
	switch e.Kind {
	case ttc.KindNumber:
		return &ttcExpressionWire{Kind: "number", Value: e.Value}
	case ttc.KindFunction:
		args := make([]*ttcExpressionWire, len(e.Args))
		for i, a := range e.Args {
			args[i] = ttcToWire(a)
		}
		return &ttcExpressionWire{Kind: "function", Distribution: e.Distribution, Arguments: args}
	default:
		return &ttcExpressionWire{Kind: ttcKindNames[e.Kind], Left: ttcToWire(e.Left), Right: ttcToWire(e.Right)}
	}
}

func wireToTTC(w *ttcExpressionWire) (*ttc.Expr, error) {
	if w == nil {
		return ttc.Empty(), nil
	}
	if w.Kind == "number" {
		return ttc.Number(w.Value)
	}
	if build, ok := binaryTTCKinds[w.Kind]; ok {
		left, err := wireToTTC(w.Left)
		if err != nil {
			return nil, err
		}
		right, err := wireToTTC(w.Right)
		if err != nil {
			return nil, err
		}
		return build(left, right), nil
	}
	if w.Kind == "function" {
		args := make([]*ttc.Expr, len(w.Arguments))
		for i, a := range w.Arguments {
			arg, err := wireToTTC(a)
			if err != nil {
				return nil, err
			}
			args[i] = arg
		}
		return ttc.Function(w.Distribution, args)
	}
	return nil, langerr.SchemaViolation("ttc.kind", "unknown ttc expression kind "+w.Kind)
}

func (w *ttcExpressionWire) MarshalJSON() ([]byte, error) {
	fields := []jsonField{{"kind", w.Kind}}
	switch w.Kind {
	case "number":
		fields = append(fields, jsonField{"value", w.Value})
	case "function":
		fields = append(fields, jsonField{"distribution", w.Distribution}, jsonField{"arguments", w.Arguments})
	default:
		fields = append(fields, jsonField{"left", w.Left}, jsonField{"right", w.Right})
	}
	return marshalOrdered(fields...)
}

func (w *ttcExpressionWire) UnmarshalJSON(data []byte) error {
	var aux struct {
		Kind         string               `json:"kind"`
		Value        float64              `json:"value"`
		Left         *ttcExpressionWire   `json:"left"`
		Right        *ttcExpressionWire   `json:"right"`
		Distribution string               `json:"distribution"`
		Arguments    []*ttcExpressionWire `json:"arguments"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	w.Kind, w.Value = aux.Kind, aux.Value
	w.Left, w.Right = aux.Left, aux.Right
	w.Distribution, w.Arguments = aux.Distribution, aux.Arguments
	return nil
}
