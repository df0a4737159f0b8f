package scale

import (
	"encoding/json"
	"errors"
	"fmt"
)

type (
	jsonType struct {
		ID   uint32        `json:"id"`
		Type jsonTypeInner `json:"type"`
	}
	jsonTypeInner struct {
		Path   []string    `json:"path,omitempty"`
		Params []jsonParam `json:"params,omitempty"`
		Def    jsonDef     `json:"def"`
		Docs   []string    `json:"docs,omitempty"`
	}
	jsonParam struct {
		Name string  `json:"name"`
		Type *uint32 `json:"type"`
	}
	jsonField struct {
		Name     string   `json:"name,omitempty"`
		Type     uint32   `json:"type"`
		TypeName string   `json:"typeName,omitempty"`
		Docs     []string `json:"docs,omitempty"`
	}
	jsonVariant struct {
		Name   string      `json:"name"`
		Fields []jsonField `json:"fields,omitempty"`
		Index  uint8       `json:"index"`
		Docs   []string    `json:"docs,omitempty"`
	}
	jsonDef struct {
		Composite *struct {
			Fields []jsonField `json:"fields,omitempty"`
		} `json:"composite,omitempty"`
		Variant *struct {
			Variants []jsonVariant `json:"variants,omitempty"`
		} `json:"variant,omitempty"`
		Sequence *struct {
			Type uint32 `json:"type"`
		} `json:"sequence,omitempty"`
		Array *struct {
			Len  uint32 `json:"len"`
			Type uint32 `json:"type"`
		} `json:"array,omitempty"`
		Tuple     *[]uint32 `json:"tuple,omitempty"`
		Primitive *string   `json:"primitive,omitempty"`
		Compact   *struct {
			Type uint32 `json:"type"`
		} `json:"compact,omitempty"`
		BitSequence *struct {
			BitStoreType uint32 `json:"bit_store_type"`
			BitOrderType uint32 `json:"bit_order_type"`
		} `json:"bitsequence,omitempty"`
	}
)

var errNoDef = errors.New("type has no definition")

// UnmarshalJSON implements the json.Unmarshaler interface for the JSON form
// of the portable registry used by contract metadata.
func (r *Registry) UnmarshalJSON(data []byte) error {
	var raw []jsonType
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	types := make([]*Type, 0, len(raw))
	for i := range raw {
		t, err := raw[i].toType()
		if err != nil {
			return fmt.Errorf("type %d: %w", raw[i].ID, err)
		}
		types = append(types, t)
	}
	reg, err := NewRegistry(types)
	if err != nil {
		return err
	}
	*r = *reg
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (r *Registry) MarshalJSON() ([]byte, error) {
	ids := r.IDs()
	raw := make([]jsonType, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, fromType(r.types[id]))
	}
	return json.Marshal(raw)
}

func (j *jsonType) toType() (*Type, error) {
	t := &Type{
		ID:   j.ID,
		Path: j.Type.Path,
		Docs: j.Type.Docs,
	}
	for _, p := range j.Type.Params {
		t.Params = append(t.Params, TypeParam{Name: p.Name, Type: p.Type})
	}
	d := j.Type.Def
	switch {
	case d.Composite != nil:
		t.Kind = KindComposite
		t.Fields = toFields(d.Composite.Fields)
	case d.Variant != nil:
		t.Kind = KindVariant
		for _, v := range d.Variant.Variants {
			t.Variants = append(t.Variants, VariantDef{
				Name:   v.Name,
				Fields: toFields(v.Fields),
				Index:  v.Index,
				Docs:   v.Docs,
			})
		}
	case d.Sequence != nil:
		t.Kind = KindSequence
		t.Elem = d.Sequence.Type
	case d.Array != nil:
		t.Kind = KindArray
		t.Len = d.Array.Len
		t.Elem = d.Array.Type
	case d.Tuple != nil:
		t.Kind = KindTuple
		t.Tuple = *d.Tuple
	case d.Primitive != nil:
		p, ok := PrimitiveFromString(*d.Primitive)
		if !ok {
			return nil, fmt.Errorf("unknown primitive %q", *d.Primitive)
		}
		t.Kind = KindPrimitive
		t.Primitive = p
	case d.Compact != nil:
		t.Kind = KindCompact
		t.Elem = d.Compact.Type
	case d.BitSequence != nil:
		t.Kind = KindBitSequence
		t.BitStore = d.BitSequence.BitStoreType
		t.BitOrder = d.BitSequence.BitOrderType
	default:
		return nil, errNoDef
	}
	return t, nil
}

func toFields(fs []jsonField) []Field {
	if len(fs) == 0 {
		return nil
	}
	res := make([]Field, len(fs))
	for i, f := range fs {
		res[i] = Field(f)
	}
	return res
}

func fromType(t *Type) jsonType {
	j := jsonType{ID: t.ID, Type: jsonTypeInner{Path: t.Path, Docs: t.Docs}}
	for _, p := range t.Params {
		j.Type.Params = append(j.Type.Params, jsonParam{Name: p.Name, Type: p.Type})
	}
	d := &j.Type.Def
	switch t.Kind {
	case KindComposite:
		d.Composite = &struct {
			Fields []jsonField `json:"fields,omitempty"`
		}{Fields: fromFields(t.Fields)}
	case KindVariant:
		vs := make([]jsonVariant, 0, len(t.Variants))
		for _, v := range t.Variants {
			vs = append(vs, jsonVariant{Name: v.Name, Fields: fromFields(v.Fields), Index: v.Index, Docs: v.Docs})
		}
		d.Variant = &struct {
			Variants []jsonVariant `json:"variants,omitempty"`
		}{Variants: vs}
	case KindSequence:
		d.Sequence = &struct {
			Type uint32 `json:"type"`
		}{Type: t.Elem}
	case KindArray:
		d.Array = &struct {
			Len  uint32 `json:"len"`
			Type uint32 `json:"type"`
		}{Len: t.Len, Type: t.Elem}
	case KindTuple:
		tuple := t.Tuple
		if tuple == nil {
			tuple = []uint32{}
		}
		d.Tuple = &tuple
	case KindPrimitive:
		s := t.Primitive.String()
		d.Primitive = &s
	case KindCompact:
		d.Compact = &struct {
			Type uint32 `json:"type"`
		}{Type: t.Elem}
	case KindBitSequence:
		d.BitSequence = &struct {
			BitStoreType uint32 `json:"bit_store_type"`
			BitOrderType uint32 `json:"bit_order_type"`
		}{BitStoreType: t.BitStore, BitOrderType: t.BitOrder}
	}
	return j
}

func fromFields(fs []Field) []jsonField {
	res := make([]jsonField, 0, len(fs))
	for _, f := range fs {
		res = append(res, jsonField(f))
	}
	return res
}
