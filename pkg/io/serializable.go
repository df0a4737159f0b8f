package io

// Serializable defines the binary encoding/decoding interface. Errors are
// returned via the BinReader/BinWriter Err field.
type Serializable interface {
	Decodable
	Encodable
}

// Decodable is anything that can be decoded from SCALE.
type Decodable interface {
	DecodeBinary(*BinReader)
}

// Encodable is anything that can be encoded to SCALE.
type Encodable interface {
	EncodeBinary(*BinWriter)
}

// ToBytes encodes e into a new byte slice.
func ToBytes(e Encodable) ([]byte, error) {
	w := NewBufBinWriter()
	e.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return nil, w.Err
	}
	return w.Bytes(), nil
}

// FromBytes decodes d from b, all of b must be consumed.
func FromBytes(b []byte, d Decodable) error {
	r := NewBinReaderFromBuf(b)
	d.DecodeBinary(r)
	if r.Err != nil {
		return r.Err
	}
	if r.Len() != 0 {
		return errTrailing(r.Len())
	}
	return nil
}
