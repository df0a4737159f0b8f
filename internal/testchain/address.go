package testchain

import (
	"github.com/vne-network/priceoracle-go/pkg/crypto/keys"
	"github.com/vne-network/priceoracle-go/pkg/util"
)

// devKeys are well-known development accounts, never use them on a real
// network.
var devKeys = []string{
	"5fb92d6e98884f76de468fa3f6278f8807c48bebc13595d45af5bdc4da702133",
	"8075991ce870b93a8870eca0c0f91913d12f47948ca0fd25b49c6fa7cdbeee8b",
	"0b6e18cafb6ed99687ec547bd28139cafdd2bffe70e6b688025de6b445aa5c5b",
}

// PrivateKey returns private key of development account #i.
func PrivateKey(i int) *keys.PrivateKey {
	priv, err := keys.NewPrivateKeyFromHex(devKeys[i])
	if err != nil {
		panic(err)
	}
	return priv
}

// PrivateKeyHex returns hex-encoded private key of development account #i.
func PrivateKeyHex(i int) string {
	return devKeys[i]
}

// AccountID returns the account of development key #i.
func AccountID(i int) util.Uint160 {
	return PrivateKey(i).AccountID()
}

// ContractAddress returns a deterministic contract address used in tests.
func ContractAddress() util.Uint160 {
	return util.Uint160{0xc0, 0x17, 0xac, 19: 0x01}
}
