// Package scale implements a dynamic SCALE codec driven by a scale-info
// portable type registry. The same registry format is embedded in contract
// metadata (as JSON) and in runtime metadata (as SCALE), so both contract
// messages and chain calls/events/storage go through this package.
//
// Decoded values use the following Go types: bool, string (str and char),
// uint8..uint64, *uint256.Int (u128, u256 and big compacts), int8..int64,
// *big.Int (i128, i256), []byte (u8 sequences and arrays), []any (other
// sequences, arrays and tuples), *Composite, *Variant and *BitSequence.
// Composites with a single unnamed field are transparent and decode into
// their inner value. Encoding accepts the same types and also plain Go
// integers, decimal and 0x-hex strings, maps and ordered JSON objects, nil
// for None and names of field-less variants.
package scale

import "strings"

// Kind is the type definition kind, values match the scale-info TypeDef
// enum indices.
type Kind byte

// Type definition kinds.
const (
	KindComposite Kind = iota
	KindVariant
	KindSequence
	KindArray
	KindTuple
	KindPrimitive
	KindCompact
	KindBitSequence
)

var kindNames = []string{"composite", "variant", "sequence", "array", "tuple", "primitive", "compact", "bitsequence"}

// String implements the fmt.Stringer interface.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Primitive is a primitive type, values match the scale-info
// TypeDefPrimitive enum indices.
type Primitive byte

// Primitive types.
const (
	Bool Primitive = iota
	Char
	Str
	U8
	U16
	U32
	U64
	U128
	U256
	I8
	I16
	I32
	I64
	I128
	I256
)

var primitiveNames = []string{"bool", "char", "str", "u8", "u16", "u32", "u64", "u128", "u256",
	"i8", "i16", "i32", "i64", "i128", "i256"}

// String implements the fmt.Stringer interface.
func (p Primitive) String() string {
	if int(p) < len(primitiveNames) {
		return primitiveNames[p]
	}
	return "unknown"
}

// PrimitiveFromString returns a primitive by its name.
func PrimitiveFromString(s string) (Primitive, bool) {
	for i := range primitiveNames {
		if primitiveNames[i] == s {
			return Primitive(i), true
		}
	}
	return 0, false
}

// Size returns the encoded size of fixed-width primitives in bytes and 0 for
// str.
func (p Primitive) Size() int {
	switch p {
	case Bool, U8, I8:
		return 1
	case U16, I16:
		return 2
	case Char, U32, I32:
		return 4
	case U64, I64:
		return 8
	case U128, I128:
		return 16
	case U256, I256:
		return 32
	}
	return 0
}

// IsSigned returns true for signed integer primitives.
func (p Primitive) IsSigned() bool {
	return p >= I8
}

// Field is a composite field or variant field.
type Field struct {
	Name     string
	Type     uint32
	TypeName string
	Docs     []string
}

// VariantDef is a single enum variant definition.
type VariantDef struct {
	Name   string
	Fields []Field
	Index  uint8
	Docs   []string
}

// TypeParam is a generic type parameter, Type is nil for parameters that
// were erased.
type TypeParam struct {
	Name string
	Type *uint32
}

// Type is a resolved type definition.
type Type struct {
	ID     uint32
	Path   []string
	Params []TypeParam
	Docs   []string

	Kind Kind
	// Fields of a composite.
	Fields []Field
	// Variants of a variant.
	Variants []VariantDef
	// Elem is the element type of sequences, arrays and compacts.
	Elem uint32
	// Len is the array length.
	Len uint32
	// Tuple is the list of tuple element types.
	Tuple []uint32
	// Primitive is set for primitives.
	Primitive Primitive
	// BitStore and BitOrder are set for bit sequences.
	BitStore uint32
	BitOrder uint32
}

// PathString returns the type path joined with "::".
func (t *Type) PathString() string {
	return strings.Join(t.Path, "::")
}

// Name returns the last path segment or the kind for anonymous types.
func (t *Type) Name() string {
	if len(t.Path) != 0 {
		return t.Path[len(t.Path)-1]
	}
	if t.Kind == KindPrimitive {
		return t.Primitive.String()
	}
	return t.Kind.String()
}

// Param returns the type of the named generic parameter.
func (t *Type) Param(name string) (uint32, bool) {
	for _, p := range t.Params {
		if p.Name == name && p.Type != nil {
			return *p.Type, true
		}
	}
	return 0, false
}

// IsOption returns true for Option<T> variants.
func (t *Type) IsOption() bool {
	return t.Kind == KindVariant && t.Name() == "Option"
}

// IsResult returns true for Result<T, E> variants.
func (t *Type) IsResult() bool {
	return t.Kind == KindVariant && t.Name() == "Result"
}

// VariantByName returns the variant with the given name.
func (t *Type) VariantByName(name string) (*VariantDef, bool) {
	for i := range t.Variants {
		if t.Variants[i].Name == name {
			return &t.Variants[i], true
		}
	}
	return nil, false
}

// VariantByIndex returns the variant with the given index.
func (t *Type) VariantByIndex(idx uint8) (*VariantDef, bool) {
	for i := range t.Variants {
		if t.Variants[i].Index == idx {
			return &t.Variants[i], true
		}
	}
	return nil, false
}

// newtype returns the inner field type of single-field composites.
func (t *Type) newtype() (uint32, bool) {
	if t.Kind == KindComposite && len(t.Fields) == 1 {
		return t.Fields[0].Type, true
	}
	return 0, false
}
