package scale

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/vne-network/priceoracle-go/pkg/io"
)

// Decode reads a value of the given type from r. See the package
// documentation for the Go types produced.
func (reg *Registry) Decode(id uint32, r *io.BinReader) (any, error) {
	v := reg.decode(id, r, 0)
	if r.Err != nil {
		return nil, r.Err
	}
	return v, nil
}

// DecodeBytes decodes a value of the given type from b, any trailing bytes
// are an error.
func (reg *Registry) DecodeBytes(id uint32, b []byte) (any, error) {
	r := io.NewBinReaderFromBuf(b)
	v, err := reg.Decode(id, r)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, &io.TrailingBytesError{Left: r.Len()}
	}
	return v, nil
}

func (reg *Registry) decode(id uint32, r *io.BinReader, depth int) any {
	if r.Err != nil {
		return nil
	}
	if depth > maxDepth {
		r.Err = fmt.Errorf("type %d: nesting is too deep", id)
		return nil
	}
	t, err := reg.Type(id)
	if err != nil {
		r.Err = err
		return nil
	}
	switch t.Kind {
	case KindComposite:
		if inner, ok := t.newtype(); ok && t.Fields[0].Name == "" {
			return reg.decode(inner, r, depth+1)
		}
		c := &Composite{Type: t.Name(), Fields: make([]NamedValue, len(t.Fields))}
		for i, f := range t.Fields {
			c.Fields[i] = NamedValue{Name: f.Name, Value: reg.decode(f.Type, r, depth+1)}
		}
		return c
	case KindVariant:
		idx := r.ReadB()
		if r.Err != nil {
			return nil
		}
		vd, ok := t.VariantByIndex(idx)
		if !ok {
			r.Err = &UnknownVariantError{Type: t.Name(), Index: int(idx)}
			return nil
		}
		v := &Variant{Type: t.Name(), Name: vd.Name, Index: idx}
		if len(vd.Fields) != 0 {
			v.Fields = make([]NamedValue, len(vd.Fields))
			for i, f := range vd.Fields {
				v.Fields[i] = NamedValue{Name: f.Name, Value: reg.decode(f.Type, r, depth+1)}
			}
		}
		return v
	case KindSequence:
		n := r.ReadLength()
		return reg.decodeList(t.Elem, n, r, depth)
	case KindArray:
		return reg.decodeList(t.Elem, int(t.Len), r, depth)
	case KindTuple:
		res := make([]any, len(t.Tuple))
		for i, e := range t.Tuple {
			res[i] = reg.decode(e, r, depth+1)
		}
		return res
	case KindPrimitive:
		return decodePrimitive(t.Primitive, r)
	case KindCompact:
		v := r.ReadCompactBig()
		if r.Err != nil {
			return nil
		}
		if v.IsUint64() && reg.compactBits(t.Elem) <= 64 {
			return v.Uint64()
		}
		return v
	case KindBitSequence:
		return reg.decodeBits(t, r)
	}
	r.Err = fmt.Errorf("type %d: unsupported kind %d", id, t.Kind)
	return nil
}

func (reg *Registry) decodeList(elem uint32, n int, r *io.BinReader, depth int) any {
	if r.Err != nil {
		return nil
	}
	if reg.isByte(elem) {
		if r.Len() >= 0 && n > r.Len() {
			r.Err = fmt.Errorf("byte sequence of %d exceeds %d remaining bytes", n, r.Len())
			return nil
		}
		b := make([]byte, n)
		r.ReadBytes(b)
		return b
	}
	res := make([]any, 0, min(n, 1024))
	for i := 0; i < n && r.Err == nil; i++ {
		res = append(res, reg.decode(elem, r, depth+1))
	}
	return res
}

func (reg *Registry) decodeBits(t *Type, r *io.BinReader) any {
	n := r.ReadCompact()
	if r.Err != nil {
		return nil
	}
	storeSize := 1
	if st, err := reg.Type(t.BitStore); err == nil && st.Kind == KindPrimitive && st.Primitive.Size() > 0 {
		storeSize = st.Primitive.Size()
	}
	bits := uint64(storeSize * 8)
	words := (n + bits - 1) / bits
	if words*uint64(storeSize) > io.MaxArraySize {
		r.Err = fmt.Errorf("bit sequence is too big (%d)", n)
		return nil
	}
	data := make([]byte, words*uint64(storeSize))
	r.ReadBytes(data)
	return &BitSequence{Len: n, Data: data}
}

// isByte returns true if the type is u8 (possibly wrapped into newtypes).
func (reg *Registry) isByte(id uint32) bool {
	for depth := 0; depth < maxDepth; depth++ {
		t, err := reg.Type(id)
		if err != nil {
			return false
		}
		if t.Kind == KindPrimitive {
			return t.Primitive == U8
		}
		inner, ok := t.newtype()
		if !ok || t.Fields[0].Name != "" {
			return false
		}
		id = inner
	}
	return false
}

// compactBits returns the bit width of the primitive wrapped into Compact.
func (reg *Registry) compactBits(id uint32) int {
	for depth := 0; depth < maxDepth; depth++ {
		t, err := reg.Type(id)
		if err != nil {
			return 256
		}
		if t.Kind == KindPrimitive {
			if t.Primitive.Size() == 0 {
				return 256
			}
			return t.Primitive.Size() * 8
		}
		inner, ok := t.newtype()
		if !ok {
			if t.Kind == KindTuple && len(t.Tuple) == 0 {
				return 0
			}
			return 256
		}
		id = inner
	}
	return 256
}

func decodePrimitive(p Primitive, r *io.BinReader) any {
	switch p {
	case Bool:
		return r.ReadBool()
	case Char:
		c := r.ReadU32LE()
		if r.Err == nil && (c > 0x10ffff || (c >= 0xd800 && c <= 0xdfff)) {
			r.Err = fmt.Errorf("invalid char %#x", c)
		}
		return string(rune(c))
	case Str:
		return r.ReadString()
	case U8:
		return r.ReadB()
	case U16:
		return r.ReadU16LE()
	case U32:
		return r.ReadU32LE()
	case U64:
		return r.ReadU64LE()
	case U128:
		return r.ReadU128LE()
	case U256:
		return r.ReadU256LE()
	case I8:
		return int8(r.ReadB())
	case I16:
		return int16(r.ReadU16LE())
	case I32:
		return int32(r.ReadU32LE())
	case I64:
		return int64(r.ReadU64LE())
	case I128, I256:
		b := make([]byte, p.Size())
		r.ReadBytes(b)
		if r.Err != nil {
			return nil
		}
		return fromTwosComplementLE(b)
	}
	r.Err = fmt.Errorf("unknown primitive %d", p)
	return nil
}

// fromTwosComplementLE converts little-endian two's complement bytes into
// a big.Int.
func fromTwosComplementLE(le []byte) *big.Int {
	be := make([]byte, len(le))
	for i := range le {
		be[len(le)-1-i] = le[i]
	}
	v := new(big.Int).SetBytes(be)
	if len(be) != 0 && be[0]&0x80 != 0 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(len(be)*8)))
	}
	return v
}

// Uint256 converts decoded unsigned integers of any width into a uint256.Int.
func Uint256(v any) (*uint256.Int, bool) {
	switch n := v.(type) {
	case *uint256.Int:
		return n, n != nil
	case uint8:
		return uint256.NewInt(uint64(n)), true
	case uint16:
		return uint256.NewInt(uint64(n)), true
	case uint32:
		return uint256.NewInt(uint64(n)), true
	case uint64:
		return uint256.NewInt(n), true
	}
	return nil, false
}
