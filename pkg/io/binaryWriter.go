package io

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/holiman/uint256"
)

// BinWriter is a convenient wrapper around an io.Writer and err object.
// Used to simplify error handling when writing into an io.Writer
// from a struct with many fields.
type BinWriter struct {
	w   io.Writer
	Err error
	uv  [9]byte
}

// NewBinWriterFromIO makes a BinWriter from io.Writer.
func NewBinWriterFromIO(iow io.Writer) *BinWriter {
	return &BinWriter{w: iow}
}

// WriteU64LE writes a uint64 value into the underlying io.Writer in
// little-endian format.
func (w *BinWriter) WriteU64LE(u64 uint64) {
	binary.LittleEndian.PutUint64(w.uv[:8], u64)
	w.WriteBytes(w.uv[:8])
}

// WriteU32LE writes a uint32 value into the underlying io.Writer in
// little-endian format.
func (w *BinWriter) WriteU32LE(u32 uint32) {
	binary.LittleEndian.PutUint32(w.uv[:4], u32)
	w.WriteBytes(w.uv[:4])
}

// WriteU16LE writes a uint16 value into the underlying io.Writer in
// little-endian format.
func (w *BinWriter) WriteU16LE(u16 uint16) {
	binary.LittleEndian.PutUint16(w.uv[:2], u16)
	w.WriteBytes(w.uv[:2])
}

// WriteB writes a byte into the underlying io.Writer.
func (w *BinWriter) WriteB(u8 byte) {
	w.uv[0] = u8
	w.WriteBytes(w.uv[:1])
}

// WriteBool writes a boolean value into the underlying io.Writer encoded as
// a byte with values of 0 or 1.
func (w *BinWriter) WriteBool(b bool) {
	var i byte
	if b {
		i = 1
	}
	w.WriteB(i)
}

// WriteU128LE writes v as a 16-byte little-endian integer. Values that don't
// fit into 128 bits set an error. nil is treated as zero.
func (w *BinWriter) WriteU128LE(v *uint256.Int) {
	w.writeUintLE(v, 16)
}

// WriteU256LE writes v as a 32-byte little-endian integer.
func (w *BinWriter) WriteU256LE(v *uint256.Int) {
	w.writeUintLE(v, 32)
}

func (w *BinWriter) writeUintLE(v *uint256.Int, n int) {
	if w.Err != nil {
		return
	}
	if v == nil {
		v = new(uint256.Int)
	}
	if v.BitLen() > n*8 {
		w.Err = fmt.Errorf("value %s doesn't fit into %d bits", v.ToBig(), n*8)
		return
	}
	b32 := v.Bytes32()
	b := b32[32-n:]
	reverse(b)
	w.WriteBytes(b)
}

// WriteCompact writes val using SCALE compact encoding.
func (w *BinWriter) WriteCompact(val uint64) {
	if w.Err != nil {
		return
	}
	switch {
	case val < 1<<6:
		w.WriteB(byte(val << 2))
	case val < 1<<14:
		w.WriteU16LE(uint16(val<<2 | 1))
	case val < 1<<30:
		w.WriteU32LE(uint32(val<<2 | 2))
	default:
		w.WriteCompactBig(uint256.NewInt(val))
	}
}

// WriteCompactBig writes val of up to 256 bits using SCALE compact encoding.
func (w *BinWriter) WriteCompactBig(val *uint256.Int) {
	if w.Err != nil {
		return
	}
	if val == nil {
		val = new(uint256.Int)
	}
	if val.BitLen() <= 30 {
		w.WriteCompact(val.Uint64())
		return
	}
	n := (val.BitLen() + 7) / 8
	w.WriteB(byte((n-4)<<2) | 3)
	w.writeUintLE(val, n)
}

// WriteBytes writes a variable byte into the underlying io.Writer without prefix.
func (w *BinWriter) WriteBytes(b []byte) {
	if w.Err != nil {
		return
	}
	_, w.Err = w.w.Write(b)
}

// WriteVarBytes writes a compact-length-prefixed byte string.
func (w *BinWriter) WriteVarBytes(b []byte) {
	w.WriteCompact(uint64(len(b)))
	w.WriteBytes(b)
}

// WriteString writes a compact-length-prefixed string.
func (w *BinWriter) WriteString(s string) {
	w.WriteCompact(uint64(len(s)))
	if w.Err != nil {
		return
	}
	_, w.Err = io.WriteString(w.w, s)
}

// WriteArray writes a slice arr into w prefixed with its compact length.
func WriteArray[Slice ~[]E, E Encodable](w *BinWriter, arr Slice) {
	w.WriteCompact(uint64(len(arr)))
	for i := range arr {
		arr[i].EncodeBinary(w)
	}
}

// Grow tries to increase the underlying buffer capacity so that at least n bytes
// can be written without reallocation. If the writer is not a buffer, this is a no-op.
func (w *BinWriter) Grow(n int) {
	if b, ok := w.w.(*bytes.Buffer); ok {
		b.Grow(n)
	}
}
