package keys

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vne-network/priceoracle-go/pkg/crypto/hash"
)

const keyOne = "0000000000000000000000000000000000000000000000000000000000000001"

func TestPrivateKeyAddress(t *testing.T) {
	priv, err := NewPrivateKeyFromHex("0x" + keyOne)
	require.NoError(t, err)
	assert.Equal(t, "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf", priv.Address())
	assert.Equal(t, "7e5f4552091a69125d5dfcb7b8c2659029395bdf", priv.AccountID().StringBE())
	assert.Equal(t, keyOne, hex.EncodeToString(priv.Bytes()))
	assert.Equal(t, "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798",
		priv.PublicKey().String())
}

func TestPrivateKeyInvalid(t *testing.T) {
	_, err := NewPrivateKeyFromHex("0102")
	require.Error(t, err)

	_, err = NewPrivateKeyFromHex("zz")
	require.Error(t, err)

	_, err = NewPrivateKeyFromBytes(make([]byte, 32))
	require.ErrorIs(t, err, ErrInvalidKey)

	// Curve order N.
	_, err = NewPrivateKeyFromHex("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestSignRecoverVerify(t *testing.T) {
	priv, err := NewPrivateKey()
	require.NoError(t, err)

	msg := []byte("price oracle")
	sig := priv.Sign(msg)
	require.Equal(t, SignatureLen, len(sig))
	require.True(t, sig[64] == 0 || sig[64] == 1)

	digest := hash.Keccak256(msg)
	pub, err := RecoverPublicKey(sig, digest)
	require.NoError(t, err)
	require.True(t, pub.Equal(priv.PublicKey()))
	require.Equal(t, priv.AccountID(), pub.AccountID())
	require.True(t, pub.Verify(sig, digest))

	sig[64] += 27
	pub, err = RecoverPublicKey(sig, digest)
	require.NoError(t, err)
	require.True(t, pub.Equal(priv.PublicKey()))

	require.False(t, pub.Verify(sig, hash.Keccak256([]byte("other"))))
	require.False(t, pub.Verify(sig[:10], digest))

	_, err = RecoverPublicKey(sig[:64], digest)
	require.Error(t, err)
}

func TestSignDeterministic(t *testing.T) {
	priv, err := NewPrivateKeyFromHex(keyOne)
	require.NoError(t, err)
	require.Equal(t, priv.Sign([]byte{1}), priv.Sign([]byte{1}))
}

func TestPublicKeyJSON(t *testing.T) {
	priv, err := NewPrivateKey()
	require.NoError(t, err)
	pub := priv.PublicKey()

	data, err := json.Marshal(pub)
	require.NoError(t, err)

	actual := new(PublicKey)
	require.NoError(t, json.Unmarshal(data, actual))
	require.True(t, pub.Equal(actual))

	uncompressed, err := NewPublicKeyFromBytes(pub.UncompressedBytes())
	require.NoError(t, err)
	require.True(t, pub.Equal(uncompressed))
}
