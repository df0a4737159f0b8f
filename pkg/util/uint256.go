package util

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Uint256Size is the size of Uint256 in bytes.
const Uint256Size = 32

// Uint256 is a 32 byte long unsigned integer. Block and extrinsic hashes use
// it, bytes are kept in their natural (wire) order.
type Uint256 [Uint256Size]uint8

// Uint256DecodeStringBE attempts to decode the given hex string (with or
// without 0x prefix) into a Uint256.
func Uint256DecodeStringBE(s string) (u Uint256, err error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != Uint256Size*2 {
		return u, fmt.Errorf("expected string size of %d got %d", Uint256Size*2, len(s))
	}
	_, err = hex.Decode(u[:], []byte(s))
	return u, err
}

// Uint256DecodeBytesBE attempts to decode the given bytes into a Uint256.
func Uint256DecodeBytesBE(b []byte) (u Uint256, err error) {
	if len(b) != Uint256Size {
		return u, fmt.Errorf("expected []byte of size %d got %d", Uint256Size, len(b))
	}
	copy(u[:], b)
	return u, nil
}

// BytesBE returns a byte slice representation of u.
func (u Uint256) BytesBE() []byte {
	return u[:]
}

// StringBE produces a hex string without prefix.
func (u Uint256) StringBE() string {
	return hex.EncodeToString(u.BytesBE())
}

// String implements the fmt.Stringer interface, it returns 0x-prefixed hex.
func (u Uint256) String() string {
	return "0x" + u.StringBE()
}

// Equals returns true if both Uint256 values are the same.
func (u Uint256) Equals(other Uint256) bool {
	return u == other
}

// UnmarshalJSON implements the json unmarshaller interface.
func (u *Uint256) UnmarshalJSON(data []byte) (err error) {
	var js string
	if err = json.Unmarshal(data, &js); err != nil {
		return err
	}
	*u, err = Uint256DecodeStringBE(js)
	return err
}

// MarshalJSON implements the json marshaller interface.
func (u Uint256) MarshalJSON() ([]byte, error) {
	r := make([]byte, 4+Uint256Size*2)
	copy(r, `"0x`)
	r[len(r)-1] = '"'
	hex.Encode(r[3:], u.BytesBE())
	return r, nil
}
