package keys

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/vne-network/priceoracle-go/pkg/crypto/hash"
	"github.com/vne-network/priceoracle-go/pkg/util"
)

// SignatureLen is the length of a recoverable signature: R, S and the
// recovery id.
const SignatureLen = 65

// ErrInvalidKey is returned for zero or out-of-range private keys.
var ErrInvalidKey = errors.New("invalid secp256k1 private key")

// PrivateKey represents a secp256k1 private key of an Ethereum-style account.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// NewPrivateKey creates a new random secp256k1 private key.
func NewPrivateKey() (*PrivateKey, error) {
	k, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key: k}, nil
}

// NewPrivateKeyFromHex returns a PrivateKey created from the given hex string
// (0x prefix is optional).
func NewPrivateKeyFromHex(str string) (*PrivateKey, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(str), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key hex: %w", err)
	}
	defer clear(b)
	return NewPrivateKeyFromBytes(b)
}

// NewPrivateKeyFromBytes returns a PrivateKey from the given 32-byte big-endian
// scalar.
func NewPrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf(
			"invalid byte length: expected %d bytes got %d", 32, len(b),
		)
	}
	var s secp256k1.ModNScalar
	if overflow := s.SetByteSlice(b); overflow || s.IsZero() {
		return nil, ErrInvalidKey
	}
	return &PrivateKey{key: secp256k1.NewPrivateKey(&s)}, nil
}

// PublicKey derives the public key from the private key.
func (p *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{key: p.key.PubKey()}
}

// AccountID returns the 20-byte account derived from the key.
func (p *PrivateKey) AccountID() util.Uint160 {
	return p.PublicKey().AccountID()
}

// Address returns the checksummed textual address of the key.
func (p *PrivateKey) Address() string {
	return p.PublicKey().Address()
}

// Sign signs arbitrary length data using the private key. It uses Keccak-256
// to calculate hash and then SignHash to create a signature.
func (p *PrivateKey) Sign(data []byte) []byte {
	return p.SignHash(hash.Keccak256(data))
}

// SignHash signs the given digest returning a 65-byte R || S || V signature
// with V being the recovery id (0 or 1).
func (p *PrivateKey) SignHash(digest util.Uint256) []byte {
	compact := ecdsa.SignCompact(p.key, digest[:], false)
	sig := make([]byte, SignatureLen)
	copy(sig, compact[1:])
	sig[64] = compact[0] - 27
	return sig
}

// Bytes returns the underlying 32 bytes of the PrivateKey.
func (p *PrivateKey) Bytes() []byte {
	return p.key.Serialize()
}

// Destroy wipes the key from memory, it can't be used after that.
func (p *PrivateKey) Destroy() {
	p.key.Zero()
}
