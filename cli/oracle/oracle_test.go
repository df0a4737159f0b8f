package oracle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	for s, expected := range map[string]uint64{
		"0":           0,
		"1000":        1000,
		"31536000000": 31536000000,
		"1s":          1000,
		"8760h":       31536000000,
		"1h30m":       5400000,
		"1500us":      1,
	} {
		ms, err := ParseDuration(s)
		require.NoError(t, err, s)
		require.Equal(t, expected, ms, s)
	}
	for _, s := range []string{"", "year", "-1s", "1.5", "0x10"} {
		_, err := ParseDuration(s)
		require.Error(t, err, s)
	}
}
