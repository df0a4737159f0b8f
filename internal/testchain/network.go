package testchain

import "github.com/vne-network/priceoracle-go/pkg/util"

// Chain parameters of the test network.
const (
	ChainName          = "Priceoracle Testnet"
	SpecVersion        = 1042
	TransactionVersion = 2
)

// GenesisHash returns the genesis block hash of the test network.
func GenesisHash() util.Uint256 {
	h, err := util.Uint256DecodeStringBE("0x91b171bb158e2d3848fa23a9f1c25182fb8e20313b2c1eb49219da7a70ce90c3")
	if err != nil {
		panic(err)
	}
	return h
}
