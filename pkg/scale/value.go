package scale

// NamedValue is a single field of a decoded composite or variant, Name is
// empty for tuple-like fields.
type NamedValue struct {
	Name  string
	Value any
}

// Composite is a decoded struct.
type Composite struct {
	Type   string
	Fields []NamedValue
}

// Get returns the value of the named field.
func (c *Composite) Get(name string) (any, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Variant is a decoded enum value.
type Variant struct {
	Type   string
	Name   string
	Index  uint8
	Fields []NamedValue
}

// Value returns the value of a single-field variant (like Some(x) or Ok(x)),
// nil for field-less ones and a *Composite for variants with several fields.
func (v *Variant) Value() any {
	switch len(v.Fields) {
	case 0:
		return nil
	case 1:
		return v.Fields[0].Value
	}
	return &Composite{Type: v.Name, Fields: v.Fields}
}

// Get returns the value of the named variant field.
func (v *Variant) Get(name string) (any, bool) {
	return (&Composite{Fields: v.Fields}).Get(name)
}

// BitSequence is a raw bit vector, Data holds the packed store words.
type BitSequence struct {
	Len  uint64
	Data []byte
}

// Valuer is implemented by Go types that know how to represent themselves
// as a dynamic value for the given type.
type Valuer interface {
	ScaleValue(t *Type) (any, error)
}

// Some returns a Some(v) option value.
func Some(v any) *Variant {
	return &Variant{Type: "Option", Name: "Some", Index: 1, Fields: []NamedValue{{Value: v}}}
}

// None returns a None option value.
func None() *Variant {
	return &Variant{Type: "Option", Name: "None"}
}
