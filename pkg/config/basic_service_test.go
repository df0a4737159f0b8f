package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBasicService_FormatAddress(t *testing.T) {
	for expected, tc := range map[string]BasicService{
		"localhost:2112": {Address: "localhost", Port: 2112},
		"127.0.0.1:0":    {Address: "127.0.0.1"},
		":0":             {},
		"[::1]:80":       {Address: "::1", Port: 80},
	} {
		t.Run(expected, func(t *testing.T) {
			require.Equal(t, expected, tc.FormatAddress())
		})
	}
}
