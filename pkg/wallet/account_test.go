package wallet

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vne-network/priceoracle-go/internal/testchain"
	"github.com/vne-network/priceoracle-go/pkg/core/transaction"
	"github.com/vne-network/priceoracle-go/pkg/crypto/hash"
	"github.com/vne-network/priceoracle-go/pkg/crypto/keys"
)

// Fast parameters for tests.
var testScrypt = ScryptParams{N: 2, R: 1, P: 1}

var _ transaction.Signer = (*Account)(nil)

func TestNewAccount(t *testing.T) {
	acc, err := NewAccount()
	require.NoError(t, err)
	require.True(t, acc.CanSign())
	require.Equal(t, acc.PrivateKey().Address(), acc.Address)
	require.Equal(t, acc.PrivateKey().AccountID(), acc.AccountID())
}

func TestNewAccountFromHex(t *testing.T) {
	acc, err := NewAccountFromHex("0x0000000000000000000000000000000000000000000000000000000000000001")
	require.NoError(t, err)
	require.Equal(t, "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf", acc.Address)

	_, err = NewAccountFromHex("0x01")
	require.Error(t, err)
}

func TestAccountSign(t *testing.T) {
	acc := NewAccountFromPrivateKey(testchain.PrivateKey(0))
	payload := []byte("payload")
	sig, err := acc.Sign(payload)
	require.NoError(t, err)
	require.Len(t, sig, keys.SignatureLen)

	pub, err := keys.RecoverPublicKey(sig, hash.Keccak256(payload))
	require.NoError(t, err)
	require.Equal(t, acc.AccountID(), pub.AccountID())

	acc.Close()
	require.False(t, acc.CanSign())
	_, err = acc.Sign(payload)
	require.ErrorIs(t, err, ErrLocked)
	require.ErrorIs(t, acc.Encrypt("pass", testScrypt), ErrLocked)
}

func TestKeystoreRoundTrip(t *testing.T) {
	priv := testchain.PrivateKey(1)
	ks, err := Encrypt(priv, "pass", testScrypt)
	require.NoError(t, err)
	require.Equal(t, KeystoreVersion, ks.Version)
	require.Equal(t, priv.AccountID().StringBE(), ks.Address)
	require.Len(t, ks.ID, 36)

	data, err := json.Marshal(ks)
	require.NoError(t, err)
	back := new(Keystore)
	require.NoError(t, json.Unmarshal(data, back))

	dec, err := back.Decrypt("pass")
	require.NoError(t, err)
	require.Equal(t, priv.Bytes(), dec.Bytes())

	_, err = back.Decrypt("wrong")
	require.ErrorIs(t, err, ErrDecryption)

	id, err := back.AccountID()
	require.NoError(t, err)
	require.Equal(t, priv.AccountID(), id)
}

func TestKeystoreNormalizedPassword(t *testing.T) {
	priv := testchain.PrivateKey(0)
	// "é" as a single code point and as "e" + combining acute accent.
	ks, err := Encrypt(priv, "caf\u00e9", testScrypt)
	require.NoError(t, err)
	dec, err := ks.Decrypt("cafe\u0301")
	require.NoError(t, err)
	require.Equal(t, priv.AccountID(), dec.AccountID())
}

func TestKeystoreErrors(t *testing.T) {
	ks, err := Encrypt(testchain.PrivateKey(0), "pass", testScrypt)
	require.NoError(t, err)

	for name, mutate := range map[string]func(k *Keystore){
		"version": func(k *Keystore) { k.Version = 1 },
		"cipher":  func(k *Keystore) { k.Crypto.Cipher = "aes-256-gcm" },
		"kdf":     func(k *Keystore) { k.Crypto.KDF = "pbkdf2" },
		"dklen":   func(k *Keystore) { k.Crypto.KDFParams.DKLen = 16 },
	} {
		t.Run(name, func(t *testing.T) {
			k := *ks
			mutate(&k)
			_, err := k.Decrypt("pass")
			require.ErrorIs(t, err, ErrUnsupportedKeystore)
		})
	}
	for name, mutate := range map[string]func(k *Keystore){
		"salt":       func(k *Keystore) { k.Crypto.KDFParams.Salt = "zz" },
		"iv":         func(k *Keystore) { k.Crypto.CipherParams.IV = "zz" },
		"ciphertext": func(k *Keystore) { k.Crypto.CipherText = "zz" },
		"mac":        func(k *Keystore) { k.Crypto.MAC = "00" },
		"address":    func(k *Keystore) { k.Address = testchain.AccountID(2).StringBE() },
	} {
		t.Run(name, func(t *testing.T) {
			k := *ks
			mutate(&k)
			_, err := k.Decrypt("pass")
			require.Error(t, err)
		})
	}
}

func TestAccountFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.json")

	acc := NewAccountFromPrivateKey(testchain.PrivateKey(2))
	require.Error(t, acc.Save(path))
	require.NoError(t, acc.Encrypt("secret", testScrypt))
	require.NoError(t, acc.Save(path))

	fi, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	loaded, err := NewAccountFromFile(path)
	require.NoError(t, err)
	require.False(t, loaded.CanSign())
	require.Equal(t, acc.Address, loaded.Address)
	require.Equal(t, acc.AccountID(), loaded.AccountID())
	_, err = loaded.Sign([]byte{1})
	require.ErrorIs(t, err, ErrLocked)

	require.ErrorIs(t, loaded.Decrypt("nope"), ErrDecryption)
	require.NoError(t, loaded.Decrypt("secret"))
	require.True(t, loaded.CanSign())

	_, err = NewAccountFromFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	_, err = NewAccountFromFile(bad)
	require.Error(t, err)

	require.Error(t, NewAccountFromPrivateKey(testchain.PrivateKey(0)).Decrypt("x"))
}
