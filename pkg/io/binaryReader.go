package io

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/holiman/uint256"
)

// MaxArraySize is the maximum size of an array (or a byte string) that can be
// decoded.
const MaxArraySize = 0x1000000

// ErrNonCanonical is returned when a compact integer is encoded using more
// bytes than necessary.
var ErrNonCanonical = errors.New("non-canonical compact encoding")

// BinReader is a convenient wrapper around a io.Reader and err object.
// Used to simplify error handling when reading into a struct with many fields.
// All multi-byte integers are little-endian, as SCALE mandates.
type BinReader struct {
	r   io.Reader
	buf *bytes.Reader
	uv  [16]byte
	Err error
}

// NewBinReaderFromIO makes a BinReader from io.Reader.
func NewBinReaderFromIO(ior io.Reader) *BinReader {
	return &BinReader{r: ior}
}

// NewBinReaderFromBuf makes a BinReader from byte buffer.
func NewBinReaderFromBuf(b []byte) *BinReader {
	r := bytes.NewReader(b)
	return &BinReader{r: r, buf: r}
}

// Len returns the number of unread bytes for buffer-backed readers and -1
// for readers created from a generic io.Reader.
func (r *BinReader) Len() int {
	if r.buf == nil {
		return -1
	}
	return r.buf.Len()
}

// ReadU64LE reads a little-endian encoded uint64 value from the underlying
// io.Reader. On read failures it returns zero.
func (r *BinReader) ReadU64LE() uint64 {
	r.ReadBytes(r.uv[:8])
	if r.Err != nil {
		return 0
	}
	return binary.LittleEndian.Uint64(r.uv[:8])
}

// ReadU32LE reads a little-endian encoded uint32 value from the underlying
// io.Reader. On read failures it returns zero.
func (r *BinReader) ReadU32LE() uint32 {
	r.ReadBytes(r.uv[:4])
	if r.Err != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(r.uv[:4])
}

// ReadU16LE reads a little-endian encoded uint16 value from the underlying
// io.Reader. On read failures it returns zero.
func (r *BinReader) ReadU16LE() uint16 {
	r.ReadBytes(r.uv[:2])
	if r.Err != nil {
		return 0
	}
	return binary.LittleEndian.Uint16(r.uv[:2])
}

// ReadB reads a byte from the underlying io.Reader. On read failures it
// returns zero.
func (r *BinReader) ReadB() byte {
	r.ReadBytes(r.uv[:1])
	if r.Err != nil {
		return 0
	}
	return r.uv[0]
}

// ReadBool reads a boolean value encoded in a zero/one byte from the
// underlying io.Reader. Any other byte value is an error.
func (r *BinReader) ReadBool() bool {
	b := r.ReadB()
	if r.Err == nil && b > 1 {
		r.Err = fmt.Errorf("invalid boolean byte %d", b)
	}
	return b == 1
}

// ReadU128LE reads a 16-byte little-endian unsigned integer.
func (r *BinReader) ReadU128LE() *uint256.Int {
	return r.readUintLE(16)
}

// ReadU256LE reads a 32-byte little-endian unsigned integer.
func (r *BinReader) ReadU256LE() *uint256.Int {
	return r.readUintLE(32)
}

func (r *BinReader) readUintLE(n int) *uint256.Int {
	b := make([]byte, n)
	r.ReadBytes(b)
	if r.Err != nil {
		return nil
	}
	reverse(b)
	return new(uint256.Int).SetBytes(b)
}

// ReadCompact reads a SCALE compact-encoded integer that fits into uint64.
// Non-canonical encodings are rejected.
func (r *BinReader) ReadCompact() uint64 {
	v := r.ReadCompactBig()
	if r.Err != nil {
		return 0
	}
	if !v.IsUint64() {
		r.Err = fmt.Errorf("compact value %s overflows uint64", v.ToBig())
		return 0
	}
	return v.Uint64()
}

// ReadCompactBig reads a SCALE compact-encoded integer of up to 256 bits.
func (r *BinReader) ReadCompactBig() *uint256.Int {
	b := r.ReadB()
	if r.Err != nil {
		return nil
	}
	switch b & 3 {
	case 0:
		return uint256.NewInt(uint64(b >> 2))
	case 1:
		next := r.ReadB()
		v := (uint64(b) | uint64(next)<<8) >> 2
		if r.Err == nil && v < 1<<6 {
			r.Err = ErrNonCanonical
		}
		return uint256.NewInt(v)
	case 2:
		r.ReadBytes(r.uv[1:4])
		if r.Err != nil {
			return nil
		}
		r.uv[0] = b
		v := uint64(binary.LittleEndian.Uint32(r.uv[:4]) >> 2)
		if v < 1<<14 {
			r.Err = ErrNonCanonical
		}
		return uint256.NewInt(v)
	}
	n := int(b>>2) + 4
	if n > 32 {
		r.Err = fmt.Errorf("compact integer of %d bytes is too big", n)
		return nil
	}
	v := r.readUintLE(n)
	if r.Err != nil {
		return nil
	}
	// The most significant byte must be non-zero, otherwise a shorter
	// encoding exists.
	if v.BitLen() <= (n-1)*8 || (n == 4 && v.BitLen() <= 30) {
		r.Err = ErrNonCanonical
		return nil
	}
	return v
}

// ReadBytes copies fixed-size buffer from the reader to provided slice.
func (r *BinReader) ReadBytes(buf []byte) {
	if r.Err != nil {
		return
	}
	_, r.Err = io.ReadFull(r.r, buf)
}

// ReadVarBytes reads a compact-length-prefixed byte string. An optional
// maxSize limits the length accepted (MaxArraySize by default).
func (r *BinReader) ReadVarBytes(maxSize ...int) []byte {
	n := r.ReadCompact()
	ms := MaxArraySize
	if len(maxSize) != 0 {
		ms = maxSize[0]
	}
	if r.Err != nil {
		return nil
	}
	if n > uint64(ms) {
		r.Err = fmt.Errorf("byte-slice is too big (%d)", n)
		return nil
	}
	if r.buf != nil && int(n) > r.buf.Len() {
		r.Err = io.ErrUnexpectedEOF
		return nil
	}
	b := make([]byte, n)
	r.ReadBytes(b)
	return b
}

// ReadString reads a compact-length-prefixed string.
func (r *BinReader) ReadString(maxSize ...int) string {
	b := r.ReadVarBytes(maxSize...)
	return string(b)
}

// ReadLength reads a compact-encoded collection length and checks it against
// MaxArraySize.
func (r *BinReader) ReadLength() int {
	n := r.ReadCompact()
	if r.Err == nil && n > MaxArraySize {
		r.Err = fmt.Errorf("array is too big (%d)", n)
	}
	if r.Err != nil {
		return 0
	}
	return int(n)
}

// ReadArray reads a compact length-prefixed sequence of decodable items.
func ReadArray[E any, P interface {
	*E
	Decodable
}](r *BinReader, maxSize ...int) []E {
	ms := MaxArraySize
	if len(maxSize) != 0 {
		ms = maxSize[0]
	}
	n := r.ReadCompact()
	if r.Err != nil {
		return nil
	}
	if n > uint64(ms) {
		r.Err = fmt.Errorf("array is too big (%d)", n)
		return nil
	}
	arr := make([]E, n)
	for i := range arr {
		P(&arr[i]).DecodeBinary(r)
		if r.Err != nil {
			return nil
		}
	}
	return arr
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
