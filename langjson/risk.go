package langjson

import (
	"encoding/json"

	"github.com/malspec/langspec/ident"
)

// riskWire serializes a present risk always as the canonical C/I/A tag
// array, and an absent risk as JSON null, per §6's "risk accepted as object
// or array on parse, always emitted as an array on serialize".
type riskWire struct {
	risk ident.Risk
	set  bool
}

func riskToWire(risk ident.Risk, ok bool) riskWire {
	return riskWire{risk: risk, set: ok}
}

func (w riskWire) MarshalJSON() ([]byte, error) {
	if !w.set {
		return []byte("null"), nil
	}
	tags := w.risk.Tags()
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(tags)
}

func (w *riskWire) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		w.set = false
		w.risk = ident.Risk{}
		return nil
	}
	var tags []string
	if err := json.Unmarshal(data, &tags); err == nil {
		w.risk = ident.RiskFromTags(tags)
		w.set = true
		return nil
	}
	var obj struct {
		IsConfidentiality bool `json:"isConfidentiality"`
		IsIntegrity       bool `json:"isIntegrity"`
		IsAvailability    bool `json:"isAvailability"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	w.risk = ident.Risk{
		Confidentiality: obj.IsConfidentiality,
		Integrity:       obj.IsIntegrity,
		Availability:    obj.IsAvailability,
	}
	w.set = true
	return nil
}
