package util

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Uint160Size is the size of Uint160 in bytes.
const Uint160Size = 20

// Uint160 is a 20 byte long unsigned integer. It's used to represent
// Ethereum-style (AccountId20) chain accounts, bytes are stored in the same
// (big-endian) order they're displayed and encoded on the wire.
type Uint160 [Uint160Size]uint8

// Uint160DecodeStringBE attempts to decode the given hex string (with or
// without 0x prefix) into a Uint160.
func Uint160DecodeStringBE(s string) (Uint160, error) {
	var u Uint160
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != Uint160Size*2 {
		return u, fmt.Errorf("expected string size of %d got %d", Uint160Size*2, len(s))
	}
	_, err := hex.Decode(u[:], []byte(s))
	if err != nil {
		return u, err
	}
	return u, nil
}

// Uint160DecodeBytesBE attempts to decode the given bytes into a Uint160.
func Uint160DecodeBytesBE(b []byte) (u Uint160, err error) {
	if len(b) != Uint160Size {
		return u, fmt.Errorf("expected byte size of %d got %d", Uint160Size, len(b))
	}
	copy(u[:], b)
	return
}

// BytesBE returns a byte slice representation of u.
func (u Uint160) BytesBE() []byte {
	return u[:]
}

// StringBE returns a lowercase hex representation of u without prefix.
func (u Uint160) StringBE() string {
	return hex.EncodeToString(u.BytesBE())
}

// String implements the fmt.Stringer interface, it returns 0x-prefixed
// lowercase hex. Use address.Uint160ToString for checksummed form.
func (u Uint160) String() string {
	return "0x" + u.StringBE()
}

// Equals returns true if both Uint160 values are the same.
func (u Uint160) Equals(other Uint160) bool {
	return u == other
}

// Less returns true if this value is less than the given Uint160 value. It's
// primarily intended to be used for sorting purposes.
func (u Uint160) Less(other Uint160) bool {
	return bytes.Compare(u[:], other[:]) < 0
}

// UnmarshalJSON implements the json unmarshaller interface.
func (u *Uint160) UnmarshalJSON(data []byte) (err error) {
	var js string
	if err = json.Unmarshal(data, &js); err != nil {
		return err
	}
	*u, err = Uint160DecodeStringBE(js)
	return err
}

// MarshalJSON implements the json marshaller interface.
func (u Uint160) MarshalJSON() ([]byte, error) {
	r := make([]byte, 4+Uint160Size*2)
	copy(r, `"0x`)
	r[len(r)-1] = '"'
	hex.Encode(r[3:], u.BytesBE())
	return r, nil
}
