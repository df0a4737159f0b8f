package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vne-network/priceoracle-go/cli/options"
	"github.com/vne-network/priceoracle-go/internal/testchain"
	"github.com/vne-network/priceoracle-go/pkg/wallet"
)

func TestWalletInit(t *testing.T) {
	e := newExecutor(t, false)
	t.Setenv(options.PrivateKeyEnv, "")
	path := filepath.Join(t.TempDir(), "wallet.json")

	t.Run("passwords mismatch", func(t *testing.T) {
		e.In.WriteString("one\rtwo\r")
		e.RunWithError(t, "priceoracle", "wallet", "init", "-w", path, "--scrypt-n", "2")
		_, err := os.Stat(path)
		require.True(t, os.IsNotExist(err))
	})

	e.In.WriteString("one\rone\r")
	e.Run(t, "priceoracle", "wallet", "init", "-w", path, "--scrypt-n", "2")
	line := e.getNextLine(t)
	require.Regexp(t, "^0x[0-9a-fA-F]{40}$", line)
	e.checkEOF(t)

	acc, err := wallet.NewAccountFromFile(path)
	require.NoError(t, err)
	require.Equal(t, line, acc.Address)
	require.Error(t, acc.Decrypt("two"))
	require.NoError(t, acc.Decrypt("one"))

	e.Run(t, "priceoracle", "wallet", "address", "-w", path)
	e.checkNextLine(t, "^"+line+"$")
	e.checkEOF(t)

	t.Run("already exists", func(t *testing.T) {
		e.In.WriteString("one\rone\r")
		e.RunWithError(t, "priceoracle", "wallet", "init", "-w", path, "--scrypt-n", "2")
	})
}

func TestWalletImport(t *testing.T) {
	e := newExecutor(t, false)
	t.Setenv(options.PrivateKeyEnv, testchain.PrivateKeyHex(1))
	path := filepath.Join(t.TempDir(), "wallet.json")

	e.In.WriteString("pass\rpass\r")
	e.Run(t, "priceoracle", "wallet", "init", "--import", "-w", path, "--scrypt-n", "2")
	e.checkNextLine(t, "^(?i)"+testchain.AccountID(1).String()+"$")
	e.checkEOF(t)

	acc, err := wallet.NewAccountFromFile(path)
	require.NoError(t, err)
	require.Equal(t, testchain.AccountID(1), acc.AccountID())
}

func TestWalletAddress(t *testing.T) {
	e := newExecutor(t, false)

	t.Run("nothing configured", func(t *testing.T) {
		t.Setenv(options.PrivateKeyEnv, "")
		e.RunWithError(t, "priceoracle", "wallet", "address")
	})
	t.Run("environment key", func(t *testing.T) {
		t.Setenv(options.PrivateKeyEnv, testchain.PrivateKeyHex(0))
		e.Run(t, "priceoracle", "wallet", "address")
		e.checkNextLine(t, "^"+ownerAddr+"$")
		e.checkEOF(t)
	})
	t.Run("invalid key", func(t *testing.T) {
		const key = "0123456789abcdefgh"
		t.Setenv(options.PrivateKeyEnv, key)
		e.RunWithError(t, "priceoracle", "wallet", "address")
		require.NotContains(t, e.Out.String(), key)
		require.NotContains(t, e.Err.String(), key)
	})
	t.Run("missing keystore", func(t *testing.T) {
		t.Setenv(options.PrivateKeyEnv, "")
		e.RunWithError(t, "priceoracle", "wallet", "address", "-w", filepath.Join(t.TempDir(), "none.json"))
	})
}
