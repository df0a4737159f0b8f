package scale

import (
	"fmt"
	"math/big"
	"reflect"
	"sort"

	ojson "github.com/nspcc-dev/go-ordered-json"
	"github.com/vne-network/priceoracle-go/pkg/io"
)

// accountVariants are variant names of address enums that carry a raw
// account, most specific first.
var accountVariants = []string{"Address20", "Id", "Raw"}

// Encode writes v as a value of the given type into w.
func (reg *Registry) Encode(id uint32, v any, w *io.BinWriter) error {
	if err := reg.encode(id, v, w, 0); err != nil {
		return err
	}
	return w.Err
}

// EncodeToBytes encodes v as a value of the given type into a new slice.
func (reg *Registry) EncodeToBytes(id uint32, v any) ([]byte, error) {
	w := io.NewBufBinWriter()
	if err := reg.Encode(id, v, w.BinWriter); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (reg *Registry) encode(id uint32, v any, w *io.BinWriter, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("type %d: nesting is too deep", id)
	}
	t, err := reg.Type(id)
	if err != nil {
		return err
	}
	if val, ok := v.(Valuer); ok {
		v, err = val.ScaleValue(t)
		if err != nil {
			return err
		}
	}
	switch t.Kind {
	case KindComposite:
		return reg.encodeComposite(t, v, w, depth)
	case KindVariant:
		return reg.encodeVariant(t, v, w, depth)
	case KindSequence:
		return reg.encodeList(t, v, -1, w, depth)
	case KindArray:
		return reg.encodeList(t, v, int(t.Len), w, depth)
	case KindTuple:
		return reg.encodeTuple(t, v, w, depth)
	case KindPrimitive:
		return encodePrimitive(t, v, w)
	case KindCompact:
		u, err := toUint256(t, v)
		if err != nil {
			return err
		}
		w.WriteCompactBig(u)
		return nil
	case KindBitSequence:
		bs, ok := v.(*BitSequence)
		if !ok {
			return mismatch(t, v)
		}
		w.WriteCompact(bs.Len)
		w.WriteBytes(bs.Data)
		return nil
	}
	return fmt.Errorf("type %d: unsupported kind %d", id, t.Kind)
}

func (reg *Registry) encodeFields(t *Type, fields []Field, v any, w *io.BinWriter, depth int) error {
	values, err := fieldValues(t, fields, v)
	if err != nil {
		return err
	}
	for i, f := range fields {
		if err := reg.encode(f.Type, values[i], w, depth+1); err != nil {
			if f.Name != "" {
				return fmt.Errorf("%s.%s: %w", t.Name(), f.Name, err)
			}
			return err
		}
	}
	return nil
}

// fieldValues matches v against the field list: by name for maps, ordered
// objects and named composites, by position for slices and unnamed fields.
func fieldValues(t *Type, fields []Field, v any) ([]any, error) {
	res := make([]any, len(fields))
	var named map[string]any
	switch val := v.(type) {
	case *Composite:
		named = make(map[string]any, len(val.Fields))
		if len(val.Fields) == len(fields) && (len(fields) == 0 || fields[0].Name == "") {
			for i := range val.Fields {
				res[i] = val.Fields[i].Value
			}
			return res, nil
		}
		for _, f := range val.Fields {
			named[f.Name] = f.Value
		}
	case map[string]any:
		named = val
	case ojson.OrderedObject:
		named = make(map[string]any, len(val))
		for _, m := range val {
			named[m.Key] = m.Value
		}
	case []any:
		if len(val) != len(fields) {
			return nil, fmt.Errorf("%w: %s expects %d fields, got %d", ErrTypeMismatch, t.Name(), len(fields), len(val))
		}
		copy(res, val)
		return res, nil
	case nil:
		if len(fields) == 0 {
			return res, nil
		}
		return nil, mismatch(t, v)
	default:
		return nil, mismatch(t, v)
	}
	if len(named) != len(fields) {
		return nil, fmt.Errorf("%w: %s expects %d fields, got %d", ErrTypeMismatch, t.Name(), len(fields), len(named))
	}
	for i, f := range fields {
		fv, ok := named[f.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s lacks field %q", ErrTypeMismatch, t.Name(), f.Name)
		}
		res[i] = fv
	}
	return res, nil
}

func (reg *Registry) encodeComposite(t *Type, v any, w *io.BinWriter, depth int) error {
	if inner, ok := t.newtype(); ok {
		switch v.(type) {
		case *Composite, map[string]any, ojson.OrderedObject:
		default:
			if t.Fields[0].Name == "" {
				return reg.encode(inner, v, w, depth+1)
			}
		}
	}
	return reg.encodeFields(t, t.Fields, v, w, depth)
}

func (reg *Registry) encodeVariant(t *Type, v any, w *io.BinWriter, depth int) error {
	var (
		name    string
		fields  any
		wrapped bool
	)
	switch val := v.(type) {
	case *Variant:
		if val == nil {
			name = "None"
			break
		}
		name, fields, wrapped = val.Name, &Composite{Fields: val.Fields}, true
	case string:
		name = val
	case map[string]any:
		if len(val) != 1 {
			return mismatch(t, v)
		}
		for k, f := range val {
			name, fields = k, f
		}
	case ojson.OrderedObject:
		if len(val) != 1 {
			return mismatch(t, v)
		}
		name, fields = val[0].Key, val[0].Value
	}
	if t.IsOption() {
		switch {
		case v == nil:
			name = "None"
		case name != "None" && name != "Some":
			name, fields = "Some", v
		}
	}
	if name == "" {
		if b, ok := v.(interface{ BytesBE() []byte }); ok {
			for _, cand := range accountVariants {
				if vd, ok := t.VariantByName(cand); ok && len(vd.Fields) == 1 {
					name, fields = cand, b
					break
				}
			}
		}
	}
	if name == "" {
		return mismatch(t, v)
	}
	vd, ok := t.VariantByName(name)
	if !ok {
		return &UnknownVariantError{Type: t.Name(), Name: name}
	}
	w.WriteB(vd.Index)
	if len(vd.Fields) == 1 {
		if c, ok := fields.(*Composite); ok && wrapped && len(c.Fields) == 1 {
			fields = c.Fields[0].Value
		}
		if err := reg.encode(vd.Fields[0].Type, fields, w, depth+1); err != nil {
			return fmt.Errorf("%s::%s: %w", t.Name(), name, err)
		}
		return nil
	}
	return reg.encodeFields(t, vd.Fields, fields, w, depth)
}

func (reg *Registry) encodeList(t *Type, v any, fixed int, w *io.BinWriter, depth int) error {
	if reg.isByte(t.Elem) {
		if b, ok := bytesOf(v); ok {
			if fixed >= 0 && len(b) != fixed {
				return fmt.Errorf("%w: expected %d bytes, got %d", ErrTypeMismatch, fixed, len(b))
			}
			if fixed < 0 {
				w.WriteCompact(uint64(len(b)))
			}
			w.WriteBytes(b)
			return nil
		}
	}
	var items []any
	switch val := v.(type) {
	case []any:
		items = val
	case nil:
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return mismatch(t, v)
		}
		items = make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
	}
	if fixed >= 0 && len(items) != fixed {
		return fmt.Errorf("%w: expected %d elements, got %d", ErrTypeMismatch, fixed, len(items))
	}
	if fixed < 0 {
		w.WriteCompact(uint64(len(items)))
	}
	for i := range items {
		if err := reg.encode(t.Elem, items[i], w, depth+1); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

func (reg *Registry) encodeTuple(t *Type, v any, w *io.BinWriter, depth int) error {
	items, ok := v.([]any)
	switch {
	case len(t.Tuple) == 0 && v == nil:
		return nil
	case !ok && len(t.Tuple) == 1:
		items = []any{v}
	case !ok:
		return mismatch(t, v)
	}
	if len(items) != len(t.Tuple) {
		return fmt.Errorf("%w: expected %d-tuple, got %d", ErrTypeMismatch, len(t.Tuple), len(items))
	}
	for i, e := range t.Tuple {
		if err := reg.encode(e, items[i], w, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func encodePrimitive(t *Type, v any, w *io.BinWriter) error {
	switch p := t.Primitive; p {
	case Bool:
		b, ok := v.(bool)
		if !ok {
			return mismatch(t, v)
		}
		w.WriteBool(b)
	case Str:
		s, ok := v.(string)
		if !ok {
			return mismatch(t, v)
		}
		w.WriteString(s)
	case Char:
		var c rune
		switch val := v.(type) {
		case rune:
			c = val
		case string:
			rs := []rune(val)
			if len(rs) != 1 {
				return mismatch(t, v)
			}
			c = rs[0]
		default:
			return mismatch(t, v)
		}
		w.WriteU32LE(uint32(c))
	case U8, U16, U32, U64, U128, U256:
		u, err := toUint256(t, v)
		if err != nil {
			return err
		}
		if u.BitLen() > p.Size()*8 {
			return fmt.Errorf("%w: %s overflows %s", ErrTypeMismatch, u.ToBig(), p)
		}
		switch p {
		case U8:
			w.WriteB(byte(u.Uint64()))
		case U16:
			w.WriteU16LE(uint16(u.Uint64()))
		case U32:
			w.WriteU32LE(uint32(u.Uint64()))
		case U64:
			w.WriteU64LE(u.Uint64())
		case U128:
			w.WriteU128LE(u)
		default:
			w.WriteU256LE(u)
		}
	default:
		b, ok := toBig(v)
		if !ok {
			return mismatch(t, v)
		}
		le, err := toTwosComplementLE(b, p.Size())
		if err != nil {
			return err
		}
		w.WriteBytes(le)
	}
	return nil
}

func toTwosComplementLE(v *big.Int, size int) ([]byte, error) {
	bits := uint(size * 8)
	limit := new(big.Int).Lsh(big.NewInt(1), bits-1)
	if v.Cmp(limit) >= 0 || v.Cmp(new(big.Int).Neg(limit)) < 0 {
		return nil, fmt.Errorf("%w: %s overflows i%d", ErrTypeMismatch, v, bits)
	}
	u := new(big.Int).Set(v)
	if u.Sign() < 0 {
		u.Add(u, new(big.Int).Lsh(big.NewInt(1), bits))
	}
	be := u.FillBytes(make([]byte, size))
	le := make([]byte, size)
	for i := range be {
		le[size-1-i] = be[i]
	}
	return le, nil
}

// sortedKeys returns map keys in a stable order.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
