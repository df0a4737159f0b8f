package keys

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/vne-network/priceoracle-go/pkg/crypto/hash"
	"github.com/vne-network/priceoracle-go/pkg/encoding/address"
	"github.com/vne-network/priceoracle-go/pkg/util"
)

// PublicKey represents a secp256k1 public key.
type PublicKey struct {
	key *secp256k1.PublicKey
}

// NewPublicKeyFromBytes returns a public key parsed from its compressed or
// uncompressed form.
func NewPublicKeyFromBytes(b []byte) (*PublicKey, error) {
	k, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, err
	}
	return &PublicKey{key: k}, nil
}

// NewPublicKeyFromString returns a public key created from the given hex string.
func NewPublicKeyFromString(s string) (*PublicKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return NewPublicKeyFromBytes(b)
}

// RecoverPublicKey recovers the signer of the digest from a 65-byte R || S || V
// signature. V can be either a bare recovery id or have 27 added to it.
func RecoverPublicKey(sig []byte, digest util.Uint256) (*PublicKey, error) {
	if len(sig) != SignatureLen {
		return nil, fmt.Errorf("invalid signature length %d", len(sig))
	}
	v := sig[64]
	if v >= 27 {
		v -= 27
	}
	if v > 3 {
		return nil, fmt.Errorf("invalid recovery id %d", sig[64])
	}
	compact := make([]byte, SignatureLen)
	compact[0] = 27 + v
	copy(compact[1:], sig[:64])
	k, _, err := ecdsa.RecoverCompact(compact, digest[:])
	if err != nil {
		return nil, err
	}
	return &PublicKey{key: k}, nil
}

// Bytes returns the compressed (33-byte) form of the key.
func (p *PublicKey) Bytes() []byte {
	return p.key.SerializeCompressed()
}

// UncompressedBytes returns the uncompressed (65-byte) form of the key.
func (p *PublicKey) UncompressedBytes() []byte {
	return p.key.SerializeUncompressed()
}

// AccountID returns the last 20 bytes of the Keccak-256 hash of the
// uncompressed key without its 0x04 tag.
func (p *PublicKey) AccountID() util.Uint160 {
	var u util.Uint160
	h := hash.Keccak256(p.UncompressedBytes()[1:])
	copy(u[:], h[12:])
	return u
}

// Address returns the checksummed textual address of the key.
func (p *PublicKey) Address() string {
	return address.Uint160ToString(p.AccountID())
}

// Equal returns true in case public keys are equal.
func (p *PublicKey) Equal(key *PublicKey) bool {
	return p.key.IsEqual(key.key)
}

// Verify returns true if sig is a valid R || S (|| V) signature of the digest
// made by this key.
func (p *PublicKey) Verify(sig []byte, digest util.Uint256) bool {
	if len(sig) != SignatureLen && len(sig) != SignatureLen-1 {
		return false
	}
	var r, s secp256k1.ModNScalar
	if r.SetByteSlice(sig[:32]) || s.SetByteSlice(sig[32:64]) {
		return false
	}
	return ecdsa.NewSignature(&r, &s).Verify(digest[:], p.key)
}

// String implements the Stringer interface.
func (p *PublicKey) String() string {
	return hex.EncodeToString(p.Bytes())
}

// MarshalJSON implements the json.Marshaler interface.
func (p PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(p.Bytes()))
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (p *PublicKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	k, err := NewPublicKeyFromString(s)
	if err != nil {
		return err
	}
	*p = *k
	return nil
}
