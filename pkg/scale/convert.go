package scale

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	ojson "github.com/nspcc-dev/go-ordered-json"
)

// toBig converts Go integers, decimal/0x-hex strings and JSON numbers into
// a big.Int.
func toBig(v any) (*big.Int, bool) {
	switch n := v.(type) {
	case int:
		return big.NewInt(int64(n)), true
	case int8:
		return big.NewInt(int64(n)), true
	case int16:
		return big.NewInt(int64(n)), true
	case int32:
		return big.NewInt(int64(n)), true
	case int64:
		return big.NewInt(n), true
	case uint:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint8:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint16:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint64:
		return new(big.Int).SetUint64(n), true
	case float64:
		if n != float64(int64(n)) {
			return nil, false
		}
		return big.NewInt(int64(n)), true
	case *big.Int:
		return n, n != nil
	case *uint256.Int:
		if n == nil {
			return nil, false
		}
		return n.ToBig(), true
	case json.Number:
		return toBig(string(n))
	case ojson.Number:
		return toBig(string(n))
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), "_", "")
		base := 10
		if strings.HasPrefix(s, "0x") {
			s, base = s[2:], 16
		}
		if s == "" {
			return nil, false
		}
		return new(big.Int).SetString(s, base)
	}
	return nil, false
}

func toUint256(t *Type, v any) (*uint256.Int, error) {
	if u, ok := v.(*uint256.Int); ok && u != nil {
		return u, nil
	}
	b, ok := toBig(v)
	if !ok {
		return nil, mismatch(t, v)
	}
	if b.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative value %s for %s", ErrTypeMismatch, b, t.Name())
	}
	u, overflow := uint256.FromBig(b)
	if overflow {
		return nil, fmt.Errorf("%w: %s overflows %s", ErrTypeMismatch, b, t.Name())
	}
	return u, nil
}

// bytesOf returns the raw bytes of []byte values, 0x-hex strings and
// account-like values.
func bytesOf(v any) ([]byte, bool) {
	switch b := v.(type) {
	case []byte:
		return b, true
	case string:
		if strings.HasPrefix(b, "0x") {
			raw, err := hex.DecodeString(b[2:])
			return raw, err == nil
		}
		return []byte(b), true
	case interface{ BytesBE() []byte }:
		return b.BytesBE(), true
	}
	return nil, false
}
