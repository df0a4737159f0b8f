package testchain

import (
	"path/filepath"
	"runtime"

	"github.com/vne-network/priceoracle-go/pkg/smartcontract/manifest"
)

// ManifestPath returns the path of the price oracle metadata fixture.
func ManifestPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "pkg", "smartcontract", "manifest", "testdata", "priceoracle.json")
}

// PriceOracle returns the parsed price oracle metadata fixture.
func PriceOracle() *manifest.Manifest {
	m, err := manifest.NewFromFile(ManifestPath())
	if err != nil {
		panic(err)
	}
	return m
}

// Output encodes the value as the output of the message (wrapping it into
// MessageResult::Ok).
func Output(m *manifest.Manifest, method string, v any) []byte {
	msg := m.Message(method)
	if msg == nil {
		panic("unknown method " + method)
	}
	b, err := m.Types.EncodeToBytes(msg.ReturnType.Type, map[string]any{"Ok": v})
	if err != nil {
		panic(err)
	}
	return b
}
