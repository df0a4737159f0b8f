package scale

import (
	"encoding/hex"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	ojson "github.com/nspcc-dev/go-ordered-json"
	"github.com/stretchr/testify/require"
	"github.com/vne-network/priceoracle-go/pkg/io"
	"github.com/vne-network/priceoracle-go/pkg/util"
)

const testTypes = `[
{"id":0,"type":{"def":{"primitive":"u128"}}},
{"id":1,"type":{"def":{"composite":{"fields":[{"type":2,"typeName":"[u8; 20]"}]}},"path":["ink_primitives","types","AccountId"]}},
{"id":2,"type":{"def":{"array":{"len":20,"type":3}}}},
{"id":3,"type":{"def":{"primitive":"u8"}}},
{"id":4,"type":{"def":{"variant":{"variants":[{"index":0,"name":"None"},{"fields":[{"type":0}],"index":1,"name":"Some"}]}},"params":[{"name":"T","type":0}],"path":["Option"]}},
{"id":5,"type":{"def":{"primitive":"str"}}},
{"id":6,"type":{"def":{"sequence":{"type":5}}}},
{"id":7,"type":{"def":{"variant":{"variants":[{"fields":[{"type":8}],"index":0,"name":"Ok"},{"fields":[{"type":9}],"index":1,"name":"Err"}]}},"params":[{"name":"T","type":8},{"name":"E","type":9}],"path":["Result"]}},
{"id":8,"type":{"def":{"tuple":[]}}},
{"id":9,"type":{"def":{"variant":{"variants":[{"index":1,"name":"CouldNotReadInput"}]}},"path":["ink_primitives","LangError"]}},
{"id":10,"type":{"def":{"composite":{"fields":[{"name":"ref_time","type":11,"typeName":"u64"},{"name":"proof_size","type":11,"typeName":"u64"}]}},"path":["sp_weights","weight_v2","Weight"]}},
{"id":11,"type":{"def":{"compact":{"type":12}}}},
{"id":12,"type":{"def":{"primitive":"u64"}}},
{"id":13,"type":{"def":{"primitive":"i128"}}},
{"id":14,"type":{"def":{"primitive":"bool"}}},
{"id":15,"type":{"def":{"sequence":{"type":3}}}},
{"id":16,"type":{"def":{"variant":{"variants":[{"fields":[{"type":1}],"index":0,"name":"Id"},{"fields":[{"type":11}],"index":1,"name":"Index"}]}},"path":["sp_runtime","multiaddress","MultiAddress"]}},
{"id":17,"type":{"def":{"bitsequence":{"bit_store_type":3,"bit_order_type":18}}}},
{"id":18,"type":{"def":{"composite":{}},"path":["bitvec","order","Lsb0"]}}
]`

func newTestRegistry(t *testing.T) *Registry {
	reg := new(Registry)
	require.NoError(t, json.Unmarshal([]byte(testTypes), reg))
	return reg
}

func encodeHex(t *testing.T, reg *Registry, id uint32, v any) string {
	b, err := reg.EncodeToBytes(id, v)
	require.NoError(t, err)
	return hex.EncodeToString(b)
}

func decodeHex(t *testing.T, reg *Registry, id uint32, s string) any {
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	v, err := reg.DecodeBytes(id, b)
	require.NoError(t, err)
	return v
}

func TestRegistryJSON(t *testing.T) {
	reg := newTestRegistry(t)
	require.Equal(t, 19, reg.Len())
	for _, id := range reg.IDs() {
		require.NoError(t, reg.Resolve(id))
	}

	acc, err := reg.Type(1)
	require.NoError(t, err)
	require.Equal(t, KindComposite, acc.Kind)
	require.Equal(t, "AccountId", acc.Name())
	require.Equal(t, "ink_primitives::types::AccountId", acc.PathString())

	opt, err := reg.Type(4)
	require.NoError(t, err)
	require.True(t, opt.IsOption())
	param, ok := opt.Param("T")
	require.True(t, ok)
	require.Equal(t, uint32(0), param)

	_, err = reg.Type(100)
	var unknown *UnknownTypeError
	require.ErrorAs(t, err, &unknown)

	data, err := json.Marshal(reg)
	require.NoError(t, err)
	actual := new(Registry)
	require.NoError(t, json.Unmarshal(data, actual))
	require.Equal(t, reg, actual)
}

func TestRegistryBadJSON(t *testing.T) {
	reg := new(Registry)
	require.Error(t, json.Unmarshal([]byte(`[{"id":0,"type":{"def":{"primitive":"u512"}}}]`), reg))
	require.Error(t, json.Unmarshal([]byte(`[{"id":0,"type":{"def":{}}}]`), reg))
	require.Error(t, json.Unmarshal([]byte(`[{"id":0,"type":{"def":{"tuple":[]}}},{"id":0,"type":{"def":{"tuple":[]}}}]`), reg))

	require.NoError(t, json.Unmarshal([]byte(`[{"id":0,"type":{"def":{"sequence":{"type":7}}}}]`), reg))
	var unknown *UnknownTypeError
	require.ErrorAs(t, reg.Resolve(0), &unknown)
	require.Equal(t, uint32(7), unknown.ID)
}

func TestRegistryBinary(t *testing.T) {
	reg := newTestRegistry(t)
	b, err := io.ToBytes(reg)
	require.NoError(t, err)

	actual := new(Registry)
	require.NoError(t, io.FromBytes(b, actual))
	require.Equal(t, reg.Len(), actual.Len())
	for _, id := range reg.IDs() {
		expected, _ := reg.Type(id)
		got, err := actual.Type(id)
		require.NoError(t, err)
		require.Equal(t, expected.Kind, got.Kind)
		require.Equal(t, expected.Fields, got.Fields)
		require.Equal(t, expected.Path, got.Path)
	}
}

func TestIsEmpty(t *testing.T) {
	reg := newTestRegistry(t)
	require.True(t, reg.IsEmpty(8))
	require.True(t, reg.IsEmpty(18))
	require.False(t, reg.IsEmpty(0))
	require.False(t, reg.IsEmpty(4))
	require.False(t, reg.IsEmpty(100))
}

func TestU128(t *testing.T) {
	reg := newTestRegistry(t)
	require.Equal(t, "000064a7b3b6e00d0000000000000000", encodeHex(t, reg, 0, "1000000000000000000"))
	require.Equal(t, "000064a7b3b6e00d0000000000000000", encodeHex(t, reg, 0, uint64(1_000_000_000_000_000_000)))
	require.Equal(t, "ff000000000000000000000000000000", encodeHex(t, reg, 0, "0xff"))

	v := decodeHex(t, reg, 0, "000064a7b3b6e00d0000000000000000")
	require.Equal(t, uint256.NewInt(1_000_000_000_000_000_000), v)

	_, err := reg.EncodeToBytes(0, -1)
	require.ErrorIs(t, err, ErrTypeMismatch)
	_, err = reg.EncodeToBytes(3, 256)
	require.ErrorIs(t, err, ErrTypeMismatch)
	_, err = reg.EncodeToBytes(0, "ten")
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestOption(t *testing.T) {
	reg := newTestRegistry(t)
	require.Equal(t, "00", encodeHex(t, reg, 4, nil))
	require.Equal(t, "00", encodeHex(t, reg, 4, None()))
	require.Equal(t, "01"+"05000000000000000000000000000000", encodeHex(t, reg, 4, 5))
	require.Equal(t, "01"+"05000000000000000000000000000000", encodeHex(t, reg, 4, Some(5)))

	v := decodeHex(t, reg, 4, "0105000000000000000000000000000000")
	opt, ok := v.(*Variant)
	require.True(t, ok)
	require.Equal(t, "Some", opt.Name)
	require.Equal(t, uint256.NewInt(5), opt.Value())

	v = decodeHex(t, reg, 4, "00")
	require.Equal(t, "None", v.(*Variant).Name)
	require.Nil(t, v.(*Variant).Value())

	_, err := reg.DecodeBytes(4, []byte{5})
	var unknown *UnknownVariantError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, 5, unknown.Index)
}

func TestAccountNewtype(t *testing.T) {
	reg := newTestRegistry(t)
	acc := util.Uint160{0xaa, 19: 0xbb}
	enc := encodeHex(t, reg, 1, acc)
	require.Equal(t, acc.StringBE(), enc)
	require.Equal(t, acc.BytesBE(), decodeHex(t, reg, 1, enc))

	// Account-like values pick the Id variant.
	require.Equal(t, "00"+acc.StringBE(), encodeHex(t, reg, 16, acc))
	require.Equal(t, "0104", encodeHex(t, reg, 16, map[string]any{"Index": 1}))

	_, err := reg.EncodeToBytes(1, []byte{1, 2})
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestSequences(t *testing.T) {
	reg := newTestRegistry(t)
	require.Equal(t, "08"+"0461"+"086263", encodeHex(t, reg, 6, []string{"a", "bc"}))
	require.Equal(t, "08"+"0461"+"086263", encodeHex(t, reg, 6, []any{"a", "bc"}))
	require.Equal(t, []any{"a", "bc"}, decodeHex(t, reg, 6, "080461086263"))

	require.Equal(t, "080102", encodeHex(t, reg, 15, "0x0102"))
	require.Equal(t, "080102", encodeHex(t, reg, 15, []byte{1, 2}))
	require.Equal(t, []byte{1, 2}, decodeHex(t, reg, 15, "080102"))

	_, err := reg.DecodeBytes(15, []byte{0x10, 1})
	require.Error(t, err)
}

func TestResultUnit(t *testing.T) {
	reg := newTestRegistry(t)
	require.Equal(t, "00", encodeHex(t, reg, 7, "Ok"))
	require.Equal(t, "0101", encodeHex(t, reg, 7, map[string]any{"Err": "CouldNotReadInput"}))

	v := decodeHex(t, reg, 7, "00").(*Variant)
	require.Equal(t, "Ok", v.Name)
	require.Equal(t, []any{}, v.Value())

	v = decodeHex(t, reg, 7, "0101").(*Variant)
	require.Equal(t, "Err", v.Name)
	require.Equal(t, "CouldNotReadInput", v.Value().(*Variant).Name)

	_, err := reg.EncodeToBytes(7, "Maybe")
	var unknown *UnknownVariantError
	require.ErrorAs(t, err, &unknown)
}

func TestCompositeCompact(t *testing.T) {
	reg := newTestRegistry(t)
	enc := encodeHex(t, reg, 10, map[string]any{"ref_time": 1000, "proof_size": 64})
	require.Equal(t, "a10f"+"0101", enc)
	require.Equal(t, enc, encodeHex(t, reg, 10, []any{1000, 64}))
	require.Equal(t, enc, encodeHex(t, reg, 10, ParseValue(`{"proof_size":64,"ref_time":1000}`)))

	v := decodeHex(t, reg, 10, enc).(*Composite)
	require.Equal(t, "Weight", v.Type)
	rt, ok := v.Get("ref_time")
	require.True(t, ok)
	require.Equal(t, uint64(1000), rt)

	_, err := reg.EncodeToBytes(10, map[string]any{"ref_time": 1})
	require.ErrorIs(t, err, ErrTypeMismatch)
	_, err = reg.EncodeToBytes(10, map[string]any{"ref_time": 1, "proofsize": 2})
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestSignedBig(t *testing.T) {
	reg := newTestRegistry(t)
	require.Equal(t, "ffffffffffffffffffffffffffffffff", encodeHex(t, reg, 13, -1))
	require.Equal(t, big.NewInt(-1), decodeHex(t, reg, 13, "ffffffffffffffffffffffffffffffff"))
	require.Equal(t, big.NewInt(2), decodeHex(t, reg, 13, "02000000000000000000000000000000"))

	tooBig := new(big.Int).Lsh(big.NewInt(1), 127)
	_, err := reg.EncodeToBytes(13, tooBig)
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestBitSequence(t *testing.T) {
	reg := newTestRegistry(t)
	v := decodeHex(t, reg, 17, "28ff03")
	bs, ok := v.(*BitSequence)
	require.True(t, ok)
	require.Equal(t, uint64(10), bs.Len)
	require.Equal(t, []byte{0xff, 0x03}, bs.Data)
	require.Equal(t, "28ff03", encodeHex(t, reg, 17, bs))
}

func TestBool(t *testing.T) {
	reg := newTestRegistry(t)
	require.Equal(t, "01", encodeHex(t, reg, 14, true))
	require.Equal(t, true, decodeHex(t, reg, 14, "01"))
	_, err := reg.EncodeToBytes(14, "yes")
	require.ErrorIs(t, err, ErrTypeMismatch)
	_, err = reg.DecodeBytes(14, []byte{1, 0})
	require.Error(t, err)
}

type testValuer struct{}

func (testValuer) ScaleValue(t *Type) (any, error) {
	if t.Kind == KindComposite {
		return map[string]any{"ref_time": 1, "proof_size": 2}, nil
	}
	return 7, nil
}

func TestValuer(t *testing.T) {
	reg := newTestRegistry(t)
	require.Equal(t, "0408", encodeHex(t, reg, 10, testValuer{}))
	require.Equal(t, "1c", encodeHex(t, reg, 11, testValuer{}))
}

func TestJSONValue(t *testing.T) {
	reg := newTestRegistry(t)
	v := decodeHex(t, reg, 10, "a10f0101")
	data, err := MarshalValue(v)
	require.NoError(t, err)
	require.Equal(t, `{"ref_time":1000,"proof_size":64}`, string(data))

	data, err = MarshalValue(Some(uint256.NewInt(1_000_000_000_000_000_000)))
	require.NoError(t, err)
	require.Equal(t, `{"Some":1000000000000000000}`, string(data))

	data, err = MarshalValue([]any{[]byte{1, 2}, None(), util.Uint160{}})
	require.NoError(t, err)
	require.Equal(t, `["0x0102","None","0x0000000000000000000000000000000000000000"]`, string(data))
}

func TestParseValue(t *testing.T) {
	v := ParseValue(`{"b":1,"a":"x"}`)
	obj, ok := v.(ojson.OrderedObject)
	require.True(t, ok)
	require.Equal(t, "b", obj[0].Key)
	require.Equal(t, ojson.Number("1"), obj[0].Value)

	require.Equal(t, "hello", ParseValue("hello"))
	require.Equal(t, "0x0102", ParseValue("0x0102"))
	require.Equal(t, "quoted", ParseValue(`"quoted"`))
	require.Equal(t, true, ParseValue("true"))
	require.Equal(t, "1 2", ParseValue("1 2"))
}
