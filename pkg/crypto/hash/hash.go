// Package hash provides the hash functions used by the chain: Keccak-256 for
// accounts and signatures, BLAKE2b for extrinsic hashes and selectors and
// xxHash for storage keys.
package hash

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/vne-network/priceoracle-go/pkg/util"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Keccak256 hashes the incoming byte slice using the legacy Keccak-256
// algorithm (not the standardized SHA3-256).
func Keccak256(data []byte) util.Uint256 {
	var h util.Uint256
	hasher := sha3.NewLegacyKeccak256()
	_, _ = hasher.Write(data)
	hasher.Sum(h[:0])
	return h
}

// Blake2b256 hashes the incoming byte slice using BLAKE2b with a 32-byte
// digest.
func Blake2b256(data []byte) util.Uint256 {
	return blake2b.Sum256(data)
}

// Blake2b128 returns a 16-byte BLAKE2b digest of data.
func Blake2b128(data []byte) []byte {
	h, _ := blake2b.New(16, nil)
	_, _ = h.Write(data)
	return h.Sum(nil)
}

// Twox128 returns the 128-bit xxHash64-based digest used to build storage
// keys: two xxHash64 sums with seeds 0 and 1 concatenated in little-endian.
func Twox128(data []byte) []byte {
	res := make([]byte, 16)
	for seed := uint64(0); seed < 2; seed++ {
		d := xxhash.NewWithSeed(seed)
		_, _ = d.Write(data)
		binary.LittleEndian.PutUint64(res[seed*8:], d.Sum64())
	}
	return res
}

// StorageKey returns the key prefix of a plain storage value.
func StorageKey(pallet, entry string) []byte {
	return append(Twox128([]byte(pallet)), Twox128([]byte(entry))...)
}

// Selector returns the first four bytes of the BLAKE2b-256 hash of the given
// label, that's how contract message selectors are derived.
func Selector(label string) [4]byte {
	var sel [4]byte
	h := Blake2b256([]byte(label))
	copy(sel[:], h[:4])
	return sel
}
