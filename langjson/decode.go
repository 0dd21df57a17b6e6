// Package langjson implements the bidirectional canonical JSON codec for a
// langspec.json document: parsing into a *builder.LangBuilder ready for
// resolver.Resolve, and serializing an already-resolved *lang.Lang back
// into canonical bytes.
package langjson

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/malspec/langspec/builder"
	"github.com/malspec/langspec/langerr"
)

// supportedFormatVersion is the only formatVersion value Parse accepts. A
// reader is expected to reject any other value, per §4.6.
const supportedFormatVersion = "1.0.0"

type categoryWire struct {
	Name string   `json:"name"`
	Meta metaWire `json:"meta"`
}

type variableWire struct {
	Name string              `json:"name"`
	Expr *stepExpressionWire `json:"expr"`
}

type stepsWire struct {
	Overrides       bool                  `json:"overrides"`
	StepExpressions []*stepExpressionWire `json:"stepExpressions"`
}

// attackStepWire's ttc key is the one place in the schema where key absence
// and an explicit JSON null mean different things: absent means "not
// declared here, inherit from the super-step", null means ttc.Empty(), an
// explicit "this step has no TTC at all" declaration (§9). Go's
// encoding/json can't tell a missing key from an explicit null on a pointer
// field, so attackStepWire carries its own TTCPresent flag and implements
// MarshalJSON/UnmarshalJSON to detect and preserve that distinction.
type attackStepWire struct {
	Name       string
	Meta       metaWire
	Type       string
	Tags       []string
	Risk       riskWire
	TTC        *ttcExpressionWire
	TTCPresent bool
	Requires   *stepsWire
	Reaches    *stepsWire
}

func (w attackStepWire) MarshalJSON() ([]byte, error) {
	fields := []jsonField{
		{"name", w.Name},
		{"meta", w.Meta},
		{"type", w.Type},
		{"tags", w.Tags},
		{"risk", w.Risk},
	}
	if w.TTCPresent {
		fields = append(fields, jsonField{"ttc", w.TTC})
	}
	fields = append(fields, jsonField{"requires", w.Requires}, jsonField{"reaches", w.Reaches})
	return marshalOrdered(fields...)
}

func (w *attackStepWire) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var aux struct {
		Name     string             `json:"name"`
		Meta     metaWire           `json:"meta"`
		Type     string             `json:"type"`
		Tags     []string           `json:"tags"`
		Risk     riskWire           `json:"risk"`
		TTC      *ttcExpressionWire `json:"ttc"`
		Requires *stepsWire         `json:"requires"`
		Reaches  *stepsWire         `json:"reaches"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	w.Name, w.Meta, w.Type, w.Tags = aux.Name, aux.Meta, aux.Type, aux.Tags
	w.Risk, w.TTC, w.Requires, w.Reaches = aux.Risk, aux.TTC, aux.Requires, aux.Reaches
	_, w.TTCPresent = raw["ttc"]
	return nil
}

type assetWire struct {
	Name        string           `json:"name"`
	Meta        metaWire         `json:"meta"`
	Category    string           `json:"category"`
	IsAbstract  bool             `json:"isAbstract"`
	SuperAsset  *string          `json:"superAsset"`
	Variables   []variableWire   `json:"variables"`
	AttackSteps []attackStepWire `json:"attackSteps"`
}

type associationWire struct {
	Name              string           `json:"name"`
	Meta              metaWire         `json:"meta"`
	LeftAsset         string           `json:"leftAsset"`
	LeftField         string           `json:"leftField"`
	LeftMultiplicity  multiplicityWire `json:"leftMultiplicity"`
	RightAsset        string           `json:"rightAsset"`
	RightField        string           `json:"rightField"`
	RightMultiplicity multiplicityWire `json:"rightMultiplicity"`
}

type documentWire struct {
	FormatVersion string            `json:"formatVersion"`
	Defines       metaWire          `json:"defines"`
	Categories    []categoryWire    `json:"categories"`
	Assets        []assetWire       `json:"assets"`
	Associations  []associationWire `json:"associations"`
}

var stepTypeValues = map[string]builder.StepType{
	"or":       builder.StepOr,
	"and":      builder.StepAnd,
	"defense":  builder.StepDefense,
	"exist":    builder.StepExist,
	"notExist": builder.StepNotExist,
}

// Parse validates data against the langspec.json schema and decodes it into
// a fresh *builder.LangBuilder. The caller still has to run it through
// resolver.Resolve to obtain an immutable Lang; Parse itself performs no
// cross-reference or type-checking beyond the shape the schema describes.
func Parse(data []byte, opts ...ValidationOptions) (*builder.LangBuilder, error) {
	opt := DefaultValidationOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.MaxDocumentSize > 0 && len(data) > opt.MaxDocumentSize {
		return nil, langerr.SchemaViolation("", fmt.Sprintf("document is %d bytes, exceeding the %d byte limit", len(data), opt.MaxDocumentSize))
	}

	generic, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, langerr.Wrap(langerr.KindSchemaViolation, "document is not valid JSON", err)
	}
	if err := validate(generic); err != nil {
		return nil, err
	}

	var doc documentWire
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, langerr.Wrap(langerr.KindSchemaViolation, "document does not match the langspec document shape", err)
	}

	if _, err := semver.NewVersion(doc.FormatVersion); err != nil {
		return nil, langerr.SchemaViolation("formatVersion", "not a valid semantic version")
	}
	if doc.FormatVersion != supportedFormatVersion {
		return nil, langerr.SchemaViolation("formatVersion", fmt.Sprintf("unsupported formatVersion %q, expected %q", doc.FormatVersion, supportedFormatVersion))
	}

	lb := builder.NewLangBuilder()
	if err := doc.Defines.intoBuilder(lb.Defines()); err != nil {
		return nil, err
	}

	for _, c := range doc.Categories {
		cb, err := lb.AddCategory(c.Name)
		if err != nil {
			return nil, err
		}
		if err := c.Meta.intoBuilder(cb.Meta()); err != nil {
			return nil, err
		}
	}

	for _, a := range doc.Assets {
		if err := decodeAsset(lb, a); err != nil {
			return nil, err
		}
	}

	for _, assoc := range doc.Associations {
		if err := decodeAssociation(lb, assoc); err != nil {
			return nil, err
		}
	}

	return lb, nil
}

func decodeAsset(lb *builder.LangBuilder, a assetWire) error {
	ab, err := lb.AddAsset(a.Name, a.Category, a.IsAbstract)
	if err != nil {
		return err
	}
	if err := a.Meta.intoBuilder(ab.Meta()); err != nil {
		return err
	}
	if a.SuperAsset != nil {
		if err := ab.SetSuperAsset(*a.SuperAsset); err != nil {
			return err
		}
	}

	for _, v := range a.Variables {
		desc, err := wireToStepDesc(v.Expr)
		if err != nil {
			return err
		}
		if _, err := ab.AddVariable(v.Name, desc); err != nil {
			return err
		}
	}

	for _, s := range a.AttackSteps {
		if err := decodeAttackStep(ab, s); err != nil {
			return err
		}
	}
	return nil
}

func decodeAttackStep(ab *builder.AssetBuilder, s attackStepWire) error {
	typ, ok := stepTypeValues[s.Type]
	if !ok {
		return langerr.SchemaViolation("attackSteps.type", "unknown attack step type "+s.Type)
	}
	sb, err := ab.AddAttackStep(s.Name, typ)
	if err != nil {
		return err
	}
	if err := s.Meta.intoBuilder(sb.Meta()); err != nil {
		return err
	}
	for _, tag := range s.Tags {
		if err := sb.AddTag(tag); err != nil {
			return err
		}
	}
	if s.Risk.set {
		sb.SetRisk(s.Risk.risk)
	}
	if s.TTCPresent {
		ttcExpr, err := wireToTTC(s.TTC)
		if err != nil {
			return err
		}
		sb.SetTTC(ttcExpr)
	}

	if s.Requires != nil {
		descs, err := wireToStepDescs(s.Requires.StepExpressions)
		if err != nil {
			return err
		}
		sb.SetRequires(s.Requires.Overrides, descs)
	}
	if s.Reaches != nil {
		descs, err := wireToStepDescs(s.Reaches.StepExpressions)
		if err != nil {
			return err
		}
		sb.SetReaches(s.Reaches.Overrides, descs)
	}
	return nil
}

func decodeAssociation(lb *builder.LangBuilder, assoc associationWire) error {
	leftMult, err := assoc.LeftMultiplicity.toMultiplicity()
	if err != nil {
		return err
	}
	rightMult, err := assoc.RightMultiplicity.toMultiplicity()
	if err != nil {
		return err
	}
	left := builder.AssociationEnd{Asset: assoc.LeftAsset, Field: assoc.LeftField, Multiplicity: leftMult}
	right := builder.AssociationEnd{Asset: assoc.RightAsset, Field: assoc.RightField, Multiplicity: rightMult}
	assocB, err := lb.AddAssociation(assoc.Name, left, right)
	if err != nil {
		return err
	}
	return assoc.Meta.intoBuilder(assocB.Meta())
}
