package scale

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vne-network/priceoracle-go/pkg/io"
)

// maxDepth limits the nesting of values being encoded or decoded.
const maxDepth = 64

// Registry is a portable type registry, types are addressed by their ids.
type Registry struct {
	types map[uint32]*Type
}

// NewRegistry creates a registry from the given types.
func NewRegistry(types []*Type) (*Registry, error) {
	r := &Registry{types: make(map[uint32]*Type, len(types))}
	for _, t := range types {
		if _, ok := r.types[t.ID]; ok {
			return nil, fmt.Errorf("duplicate type id %d", t.ID)
		}
		r.types[t.ID] = t
	}
	return r, nil
}

// Len returns the number of types in the registry.
func (r *Registry) Len() int {
	return len(r.types)
}

// IDs returns sorted type ids.
func (r *Registry) IDs() []uint32 {
	ids := make([]uint32, 0, len(r.types))
	for id := range r.types {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Type returns the type with the given id.
func (r *Registry) Type(id uint32) (*Type, error) {
	t, ok := r.types[id]
	if !ok {
		return nil, &UnknownTypeError{ID: id}
	}
	return t, nil
}

// Resolve checks that the type and everything it references is defined.
func (r *Registry) Resolve(id uint32) error {
	return r.resolve(id, make(map[uint32]bool))
}

func (r *Registry) resolve(id uint32, seen map[uint32]bool) error {
	if seen[id] {
		return nil
	}
	seen[id] = true
	t, err := r.Type(id)
	if err != nil {
		return err
	}
	var refs []uint32
	switch t.Kind {
	case KindComposite:
		for _, f := range t.Fields {
			refs = append(refs, f.Type)
		}
	case KindVariant:
		for _, v := range t.Variants {
			for _, f := range v.Fields {
				refs = append(refs, f.Type)
			}
		}
	case KindSequence, KindArray, KindCompact:
		refs = append(refs, t.Elem)
	case KindTuple:
		refs = t.Tuple
	case KindBitSequence:
		refs = append(refs, t.BitStore, t.BitOrder)
	}
	for _, ref := range refs {
		if err := r.resolve(ref, seen); err != nil {
			return fmt.Errorf("%s: %w", t.Name(), err)
		}
	}
	return nil
}

// TypeName returns a Rust-like name of the type. Named types are shown by
// the last path segment with their generic parameters.
func (r *Registry) TypeName(id uint32) string {
	return r.typeName(id, 0)
}

func (r *Registry) typeName(id uint32, depth int) string {
	t, err := r.Type(id)
	if err != nil || depth > maxDepth {
		return fmt.Sprintf("#%d", id)
	}
	if len(t.Path) != 0 {
		var params []string
		for _, p := range t.Params {
			if p.Type != nil {
				params = append(params, r.typeName(*p.Type, depth+1))
			}
		}
		if len(params) == 0 {
			return t.Name()
		}
		return t.Name() + "<" + strings.Join(params, ", ") + ">"
	}
	switch t.Kind {
	case KindPrimitive:
		return t.Primitive.String()
	case KindSequence:
		return "Vec<" + r.typeName(t.Elem, depth+1) + ">"
	case KindCompact:
		return "Compact<" + r.typeName(t.Elem, depth+1) + ">"
	case KindArray:
		return fmt.Sprintf("[%s; %d]", r.typeName(t.Elem, depth+1), t.Len)
	case KindTuple:
		elems := make([]string, len(t.Tuple))
		for i, e := range t.Tuple {
			elems[i] = r.typeName(e, depth+1)
		}
		return "(" + strings.Join(elems, ", ") + ")"
	}
	return t.Kind.String()
}

// IsEmpty returns true for types that encode to zero bytes: the unit tuple,
// field-less composites and compositions of those.
func (r *Registry) IsEmpty(id uint32) bool {
	return r.isEmpty(id, 0)
}

func (r *Registry) isEmpty(id uint32, depth int) bool {
	t, err := r.Type(id)
	if err != nil || depth > maxDepth {
		return false
	}
	switch t.Kind {
	case KindComposite:
		for _, f := range t.Fields {
			if !r.isEmpty(f.Type, depth+1) {
				return false
			}
		}
		return true
	case KindTuple:
		for _, e := range t.Tuple {
			if !r.isEmpty(e, depth+1) {
				return false
			}
		}
		return true
	case KindArray:
		return t.Len == 0 || r.isEmpty(t.Elem, depth+1)
	}
	return false
}

// DecodeBinary implements the io.Decodable interface for the SCALE-encoded
// PortableRegistry found in runtime metadata.
func (r *Registry) DecodeBinary(br *io.BinReader) {
	n := br.ReadLength()
	r.types = make(map[uint32]*Type, n)
	for i := 0; i < n && br.Err == nil; i++ {
		t := new(Type)
		t.DecodeBinary(br)
		if br.Err != nil {
			return
		}
		r.types[t.ID] = t
	}
}

// DecodeBinary implements the io.Decodable interface for a PortableType.
func (t *Type) DecodeBinary(br *io.BinReader) {
	t.ID = uint32(br.ReadCompact())
	t.Path = readStrings(br)
	pn := br.ReadLength()
	t.Params = make([]TypeParam, pn)
	for i := range t.Params {
		t.Params[i].Name = br.ReadString()
		if br.ReadBool() {
			id := uint32(br.ReadCompact())
			t.Params[i].Type = &id
		}
	}
	t.Kind = Kind(br.ReadB())
	switch t.Kind {
	case KindComposite:
		t.Fields = readFields(br)
	case KindVariant:
		vn := br.ReadLength()
		t.Variants = make([]VariantDef, vn)
		for i := range t.Variants {
			t.Variants[i].Name = br.ReadString()
			t.Variants[i].Fields = readFields(br)
			t.Variants[i].Index = br.ReadB()
			t.Variants[i].Docs = readStrings(br)
		}
	case KindSequence, KindCompact:
		t.Elem = uint32(br.ReadCompact())
	case KindArray:
		t.Len = br.ReadU32LE()
		t.Elem = uint32(br.ReadCompact())
	case KindTuple:
		tn := br.ReadLength()
		t.Tuple = make([]uint32, tn)
		for i := range t.Tuple {
			t.Tuple[i] = uint32(br.ReadCompact())
		}
	case KindPrimitive:
		t.Primitive = Primitive(br.ReadB())
		if br.Err == nil && int(t.Primitive) >= len(primitiveNames) {
			br.Err = fmt.Errorf("unknown primitive %d", t.Primitive)
		}
	case KindBitSequence:
		t.BitStore = uint32(br.ReadCompact())
		t.BitOrder = uint32(br.ReadCompact())
	default:
		if br.Err == nil {
			br.Err = fmt.Errorf("unknown type definition %d", t.Kind)
		}
	}
	t.Docs = readStrings(br)
}

func readFields(br *io.BinReader) []Field {
	n := br.ReadLength()
	if n == 0 {
		return nil
	}
	fields := make([]Field, n)
	for i := range fields {
		if br.ReadBool() {
			fields[i].Name = br.ReadString()
		}
		fields[i].Type = uint32(br.ReadCompact())
		if br.ReadBool() {
			fields[i].TypeName = br.ReadString()
		}
		fields[i].Docs = readStrings(br)
	}
	return fields
}

func readStrings(br *io.BinReader) []string {
	n := br.ReadLength()
	if n == 0 {
		return nil
	}
	res := make([]string, n)
	for i := range res {
		res[i] = br.ReadString()
	}
	return res
}

// EncodeBinary implements the io.Encodable interface, types are written in
// id order.
func (r *Registry) EncodeBinary(bw *io.BinWriter) {
	ids := r.IDs()
	bw.WriteCompact(uint64(len(ids)))
	for _, id := range ids {
		r.types[id].EncodeBinary(bw)
	}
}

// EncodeBinary implements the io.Encodable interface for a PortableType.
func (t *Type) EncodeBinary(bw *io.BinWriter) {
	bw.WriteCompact(uint64(t.ID))
	writeStrings(bw, t.Path)
	bw.WriteCompact(uint64(len(t.Params)))
	for _, p := range t.Params {
		bw.WriteString(p.Name)
		bw.WriteBool(p.Type != nil)
		if p.Type != nil {
			bw.WriteCompact(uint64(*p.Type))
		}
	}
	bw.WriteB(byte(t.Kind))
	switch t.Kind {
	case KindComposite:
		writeFields(bw, t.Fields)
	case KindVariant:
		bw.WriteCompact(uint64(len(t.Variants)))
		for _, v := range t.Variants {
			bw.WriteString(v.Name)
			writeFields(bw, v.Fields)
			bw.WriteB(v.Index)
			writeStrings(bw, v.Docs)
		}
	case KindSequence, KindCompact:
		bw.WriteCompact(uint64(t.Elem))
	case KindArray:
		bw.WriteU32LE(t.Len)
		bw.WriteCompact(uint64(t.Elem))
	case KindTuple:
		bw.WriteCompact(uint64(len(t.Tuple)))
		for _, e := range t.Tuple {
			bw.WriteCompact(uint64(e))
		}
	case KindPrimitive:
		bw.WriteB(byte(t.Primitive))
	case KindBitSequence:
		bw.WriteCompact(uint64(t.BitStore))
		bw.WriteCompact(uint64(t.BitOrder))
	}
	writeStrings(bw, t.Docs)
}

func writeFields(bw *io.BinWriter, fields []Field) {
	bw.WriteCompact(uint64(len(fields)))
	for _, f := range fields {
		bw.WriteBool(f.Name != "")
		if f.Name != "" {
			bw.WriteString(f.Name)
		}
		bw.WriteCompact(uint64(f.Type))
		bw.WriteBool(f.TypeName != "")
		if f.TypeName != "" {
			bw.WriteString(f.TypeName)
		}
		writeStrings(bw, f.Docs)
	}
}

func writeStrings(bw *io.BinWriter, ss []string) {
	bw.WriteCompact(uint64(len(ss)))
	for _, s := range ss {
		bw.WriteString(s)
	}
}
