package result

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/vne-network/priceoracle-go/pkg/crypto/hash"
	"github.com/vne-network/priceoracle-go/pkg/util"
)

type (
	// HexBytes is a byte slice encoded as a 0x-prefixed hex string in JSON.
	HexBytes []byte

	// HexNumber is an integer encoded as a 0x-prefixed hex string in JSON.
	HexNumber uint64

	// Header is a block header.
	Header struct {
		ParentHash     util.Uint256 `json:"parentHash"`
		Number         HexNumber    `json:"number"`
		StateRoot      util.Uint256 `json:"stateRoot"`
		ExtrinsicsRoot util.Uint256 `json:"extrinsicsRoot"`
	}

	// Block is a block with opaque encoded extrinsics.
	Block struct {
		Header     Header     `json:"header"`
		Extrinsics []HexBytes `json:"extrinsics"`
	}

	// SignedBlock is the chain_getBlock result.
	SignedBlock struct {
		Block Block `json:"block"`
	}
)

// MarshalJSON implements the json.Marshaler interface.
func (b HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal("0x" + hex.EncodeToString(b))
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (b *HexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimPrefix(s, "0x")
	res, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	*b = res
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (n HexNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal("0x" + strconv.FormatUint(uint64(n), 16))
}

// UnmarshalJSON implements the json.Unmarshaler interface. Plain JSON
// numbers are accepted too.
func (n *HexNumber) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var u uint64
		if err := json.Unmarshal(data, &u); err != nil {
			return fmt.Errorf("invalid number %s", data)
		}
		*n = HexNumber(u)
		return nil
	}
	u, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 64)
	if err != nil {
		return err
	}
	*n = HexNumber(u)
	return nil
}

// ExtrinsicIndex returns the position of the extrinsic with the given hash in
// the block.
func (b *Block) ExtrinsicIndex(h util.Uint256) (int, bool) {
	for i, ext := range b.Extrinsics {
		if hash.Blake2b256(ext).Equals(h) {
			return i, true
		}
	}
	return -1, false
}
