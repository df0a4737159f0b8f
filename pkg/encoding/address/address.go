package address

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/vne-network/priceoracle-go/pkg/crypto/hash"
	"github.com/vne-network/priceoracle-go/pkg/util"
)

// Prefix is the mandatory prefix of textual account addresses.
const Prefix = "0x"

var (
	// ErrInvalidPrefix is returned for addresses that lack Prefix.
	ErrInvalidPrefix = errors.New("address must start with 0x")
	// ErrInvalidChecksum is returned for mixed-case addresses that don't
	// match their EIP-55 checksum.
	ErrInvalidChecksum = errors.New("address checksum mismatch")
)

// Uint160ToString returns the EIP-55 checksummed textual form of the given
// account.
func Uint160ToString(u util.Uint160) string {
	return Prefix + checksum(u.StringBE())
}

// StringToUint160 attempts to decode the given address string into a Uint160.
// All-lowercase and all-uppercase hex is accepted as is, mixed-case addresses
// must carry a valid checksum.
func StringToUint160(s string) (u util.Uint160, err error) {
	if !strings.HasPrefix(s, Prefix) {
		return u, ErrInvalidPrefix
	}
	body := s[len(Prefix):]
	if len(body) != util.Uint160Size*2 {
		return u, fmt.Errorf("invalid address length %d", len(body))
	}
	b, err := hex.DecodeString(body)
	if err != nil {
		return u, fmt.Errorf("invalid address: %w", err)
	}
	copy(u[:], b)
	if body != strings.ToLower(body) && body != strings.ToUpper(body) &&
		checksum(strings.ToLower(body)) != body {
		return u, ErrInvalidChecksum
	}
	return u, nil
}

func checksum(lower string) string {
	h := hash.Keccak256([]byte(lower))
	res := []byte(lower)
	for i, c := range res {
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := h[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if nibble&0x0f >= 8 {
			res[i] = c - 'a' + 'A'
		}
	}
	return string(res)
}
