package io

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPair struct {
	A uint32
	B bool
}

func (p *testPair) EncodeBinary(w *BinWriter) {
	w.WriteU32LE(p.A)
	w.WriteBool(p.B)
}

func (p *testPair) DecodeBinary(r *BinReader) {
	p.A = r.ReadU32LE()
	p.B = r.ReadBool()
}

type badRW struct{}

func (w *badRW) Write(p []byte) (int, error) {
	return 0, errors.New("it always fails")
}

func (w *badRW) Read(p []byte) (int, error) {
	return w.Write(p)
}

func TestWriteLEIntegers(t *testing.T) {
	bw := NewBufBinWriter()
	bw.WriteU64LE(0x0102030405060708)
	bw.WriteU32LE(0x0a0b0c0d)
	bw.WriteU16LE(0xbeef)
	bw.WriteB(7)
	bw.WriteBool(true)
	require.NoError(t, bw.Err)
	b := bw.Bytes()
	require.Equal(t, "0807060504030201"+"0d0c0b0a"+"efbe"+"07"+"01", hex.EncodeToString(b))

	br := NewBinReaderFromBuf(b)
	assert.Equal(t, uint64(0x0102030405060708), br.ReadU64LE())
	assert.Equal(t, uint32(0x0a0b0c0d), br.ReadU32LE())
	assert.Equal(t, uint16(0xbeef), br.ReadU16LE())
	assert.Equal(t, byte(7), br.ReadB())
	assert.True(t, br.ReadBool())
	require.NoError(t, br.Err)
	require.Equal(t, 0, br.Len())
}

func TestReadBoolStrict(t *testing.T) {
	br := NewBinReaderFromBuf([]byte{2})
	br.ReadBool()
	require.Error(t, br.Err)
}

func TestCompactBoundaries(t *testing.T) {
	var testCases = []struct {
		val uint64
		enc string
	}{
		{0, "00"},
		{1, "04"},
		{42, "a8"},
		{63, "fc"},
		{64, "0101"},
		{69, "1501"},
		{16383, "fdff"},
		{16384, "02000100"},
		{1<<30 - 1, "feffffff"},
		{1 << 30, "0300000040"},
		{1<<32 - 1, "03ffffffff"},
		{1 << 32, "070000000001"},
		{1<<64 - 1, "13ffffffffffffffff"},
	}
	for _, tc := range testCases {
		bw := NewBufBinWriter()
		bw.WriteCompact(tc.val)
		require.NoError(t, bw.Err)
		require.Equal(t, tc.enc, hex.EncodeToString(bw.Bytes()), tc.val)

		raw, err := hex.DecodeString(tc.enc)
		require.NoError(t, err)
		br := NewBinReaderFromBuf(raw)
		require.Equal(t, tc.val, br.ReadCompact(), tc.enc)
		require.NoError(t, br.Err)
	}
}

func TestCompactNonCanonical(t *testing.T) {
	for _, enc := range []string{
		"0100",         // 0 in two-byte mode
		"fd00",         // 63 in two-byte mode
		"02000000",     // 0 in four-byte mode
		"03ffffff3f",   // 2^30-1 in big mode
		"070000000000", // zero top byte
	} {
		raw, err := hex.DecodeString(enc)
		require.NoError(t, err)
		br := NewBinReaderFromBuf(raw)
		br.ReadCompactBig()
		require.ErrorIs(t, br.Err, ErrNonCanonical, enc)
	}
}

func TestCompactBig(t *testing.T) {
	v, err := uint256.FromHex("0xffffffffffffffffffffffffffffffff")
	require.NoError(t, err)
	bw := NewBufBinWriter()
	bw.WriteCompactBig(v)
	require.NoError(t, bw.Err)
	b := bw.Bytes()
	require.Equal(t, 17, len(b))
	require.Equal(t, byte(12<<2|3), b[0])

	br := NewBinReaderFromBuf(b)
	require.Equal(t, v, br.ReadCompactBig())
	require.NoError(t, br.Err)

	br = NewBinReaderFromBuf(b)
	br.ReadCompact()
	require.Error(t, br.Err)
}

func TestU128(t *testing.T) {
	v := uint256.NewInt(1_000_000_000_000_000_000)
	bw := NewBufBinWriter()
	bw.WriteU128LE(v)
	bw.WriteU128LE(nil)
	require.NoError(t, bw.Err)
	b := bw.Bytes()
	require.Equal(t, "000064a7b3b6e00d0000000000000000"+"00000000000000000000000000000000", hex.EncodeToString(b))

	br := NewBinReaderFromBuf(b)
	require.Equal(t, v, br.ReadU128LE())
	require.True(t, br.ReadU128LE().IsZero())
	require.NoError(t, br.Err)

	tooBig := new(uint256.Int).Lsh(uint256.NewInt(1), 128)
	bw = NewBufBinWriter()
	bw.WriteU128LE(tooBig)
	require.Error(t, bw.Err)
}

func TestVarBytesAndString(t *testing.T) {
	bw := NewBufBinWriter()
	bw.WriteVarBytes([]byte{1, 2, 3})
	bw.WriteString("abc")
	require.NoError(t, bw.Err)
	b := bw.Bytes()
	require.Equal(t, "0c010203"+"0c616263", hex.EncodeToString(b))

	br := NewBinReaderFromBuf(b)
	require.Equal(t, []byte{1, 2, 3}, br.ReadVarBytes())
	require.Equal(t, "abc", br.ReadString())
	require.NoError(t, br.Err)

	br = NewBinReaderFromBuf(b)
	br.ReadVarBytes(2)
	require.Error(t, br.Err)

	// Length prefix exceeding the data.
	br = NewBinReaderFromBuf([]byte{0x10, 1})
	br.ReadVarBytes()
	require.Error(t, br.Err)
}

func TestArray(t *testing.T) {
	arr := []testPair{{A: 1, B: true}, {A: 2}}
	bw := NewBufBinWriter()
	WriteArray(bw.BinWriter, []*testPair{&arr[0], &arr[1]})
	require.NoError(t, bw.Err)
	b := bw.Bytes()

	br := NewBinReaderFromBuf(b)
	actual := ReadArray[testPair](br)
	require.NoError(t, br.Err)
	require.Equal(t, arr, actual)

	br = NewBinReaderFromBuf(b)
	ReadArray[testPair](br, 1)
	require.Error(t, br.Err)
}

func TestStickyErrors(t *testing.T) {
	bw := NewBinWriterFromIO(&badRW{})
	bw.WriteU32LE(1)
	require.Error(t, bw.Err)
	bw.WriteCompact(100)
	require.Error(t, bw.Err)

	br := NewBinReaderFromIO(&badRW{})
	require.Equal(t, uint64(0), br.ReadCompact())
	require.Error(t, br.Err)
	require.Equal(t, -1, br.Len())
}

func TestBufBinWriterDrain(t *testing.T) {
	bw := NewBufBinWriter()
	bw.WriteB(1)
	require.Equal(t, 1, bw.Len())
	require.Equal(t, []byte{1}, bw.Bytes())
	require.Nil(t, bw.Bytes())
	bw.WriteB(2)
	require.ErrorIs(t, bw.Err, ErrDrained)
	bw.Reset()
	bw.WriteB(3)
	require.Equal(t, []byte{3}, bw.Bytes())
}

func TestToFromBytes(t *testing.T) {
	p := &testPair{A: 5, B: true}
	b, err := ToBytes(p)
	require.NoError(t, err)

	var actual testPair
	require.NoError(t, FromBytes(b, &actual))
	require.Equal(t, *p, actual)

	err = FromBytes(append(b, 0), &actual)
	var trailing *TrailingBytesError
	require.ErrorAs(t, err, &trailing)
	require.Equal(t, 1, trailing.Left)
}
