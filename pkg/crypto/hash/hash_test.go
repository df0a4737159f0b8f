package hash

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeccak256(t *testing.T) {
	require.Equal(t, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		Keccak256(nil).StringBE())
	require.Equal(t, "4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45",
		Keccak256([]byte("abc")).StringBE())
}

func TestBlake2b(t *testing.T) {
	require.Equal(t, "0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8",
		Blake2b256(nil).StringBE())
	assert.Equal(t, "789f1c09383940a7773420432ffd084a", hex.EncodeToString(Blake2b128([]byte("System"))))
}

func TestTwox128(t *testing.T) {
	assert.Equal(t, "26aa394eea5630e07c48ae0c9558cef7", hex.EncodeToString(Twox128([]byte("System"))))
	assert.Equal(t, "26aa394eea5630e07c48ae0c9558cef780d41e5e16056765bc8461851072c9d7",
		hex.EncodeToString(StorageKey("System", "Events")))
}

func TestSelector(t *testing.T) {
	var testCases = map[string]string{
		"new":                  "9bae9d5e",
		"set_price_per_letter": "ca16b7aa",
		"calculate_price":      "cd71b8b5",
		"read_owner":           "386b9e44",
	}
	for label, expected := range testCases {
		sel := Selector(label)
		assert.Equal(t, expected, hex.EncodeToString(sel[:]), label)
	}
}
