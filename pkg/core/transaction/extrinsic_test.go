package transaction

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"github.com/vne-network/priceoracle-go/internal/testchain"
	"github.com/vne-network/priceoracle-go/pkg/core/metadata"
	"github.com/vne-network/priceoracle-go/pkg/crypto/hash"
	"github.com/vne-network/priceoracle-go/pkg/crypto/keys"
	"github.com/vne-network/priceoracle-go/pkg/io"
	"github.com/vne-network/priceoracle-go/pkg/util"
)

type keySigner struct {
	*keys.PrivateKey
}

func (s keySigner) Sign(payload []byte) ([]byte, error) {
	return s.PrivateKey.Sign(payload), nil
}

type failingSigner struct{}

func (failingSigner) AccountID() util.Uint160 { return util.Uint160{} }
func (failingSigner) Sign([]byte) ([]byte, error) {
	return nil, errors.New("locked")
}

func testParams() Params {
	return Params{
		GenesisHash:        testchain.GenesisHash(),
		SpecVersion:        testchain.SpecVersion,
		TransactionVersion: testchain.TransactionVersion,
		Nonce:              5,
	}
}

func contractCall(t *testing.T, md *metadata.Metadata, data []byte) *Call {
	call, err := NewCall(md, "Contracts", "call", map[string]any{
		"dest":                  testchain.ContractAddress(),
		"value":                 0,
		"gas_limit":             map[string]any{"ref_time": 1000, "proof_size": 64},
		"storage_deposit_limit": nil,
		"data":                  data,
	})
	require.NoError(t, err)
	return call
}

func TestNewCall(t *testing.T) {
	md := testchain.Metadata()
	call := contractCall(t, md, []byte{0x38, 0x6b, 0x9e, 0x44})
	require.Equal(t, "Contracts.call", call.String())
	expected := "2806" + testchain.ContractAddress().StringBE() + "00" + "a10f0101" + "00" + "10386b9e44"
	require.Equal(t, expected, hex.EncodeToString(call.Data))

	_, err := NewCall(md, "Contracts", "remove_code", nil)
	var notFound *metadata.NotFoundError
	require.ErrorAs(t, err, &notFound)

	_, err = NewCall(md, "Contracts", "call", map[string]any{"dest": 1})
	require.Error(t, err)
}

func TestSign(t *testing.T) {
	md := testchain.Metadata()
	priv := testchain.PrivateKey(0)
	call := contractCall(t, md, []byte{1, 2, 3, 4})
	p := testParams()

	tx, err := Sign(md, call, p, keySigner{priv})
	require.NoError(t, err)
	require.Equal(t, priv.AccountID(), tx.Sender)
	require.Equal(t, uint64(5), tx.Nonce)
	require.Equal(t, hash.Blake2b256(tx.Bytes()), tx.Hash())
	require.Equal(t, "0x"+hex.EncodeToString(tx.Bytes()), tx.Hex())

	r := io.NewBinReaderFromBuf(tx.Bytes())
	body := r.ReadVarBytes()
	require.NoError(t, r.Err)
	require.Equal(t, 0, r.Len())

	require.Equal(t, byte(0x84), body[0])
	sender, err := util.Uint160DecodeBytesBE(body[1:21])
	require.NoError(t, err)
	require.Equal(t, priv.AccountID(), sender)
	sig := body[21:86]

	extra, additional, err := extensions(md, p)
	require.NoError(t, err)
	// Immortal era, compact nonce, zero tip and disabled metadata hash mode.
	require.Equal(t, "00"+"14"+"00"+"00", hex.EncodeToString(extra))
	require.Equal(t, extra, body[86:86+len(extra)])
	require.Equal(t, call.Data, body[86+len(extra):])

	payload := append(append(append([]byte{}, call.Data...), extra...), additional...)
	pub, err := keys.RecoverPublicKey(sig, hash.Keccak256(payload))
	require.NoError(t, err)
	require.Equal(t, priv.AccountID(), pub.AccountID())
}

func TestSignLongPayload(t *testing.T) {
	md := testchain.Metadata()
	priv := testchain.PrivateKey(1)
	call := contractCall(t, md, make([]byte, 300))
	p := testParams()

	tx, err := Sign(md, call, p, keySigner{priv})
	require.NoError(t, err)

	r := io.NewBinReaderFromBuf(tx.Bytes())
	body := r.ReadVarBytes()
	require.NoError(t, r.Err)

	extra, additional, err := extensions(md, p)
	require.NoError(t, err)
	payload := append(append(append([]byte{}, call.Data...), extra...), additional...)
	digest := hash.Blake2b256(payload)
	pub, err := keys.RecoverPublicKey(body[21:86], hash.Keccak256(digest[:]))
	require.NoError(t, err)
	require.Equal(t, priv.AccountID(), pub.AccountID())
}

func TestAdditionalSigned(t *testing.T) {
	md := testchain.Metadata()
	p := testParams()
	p.Tip = uint256.NewInt(1)
	extra, additional, err := extensions(md, p)
	require.NoError(t, err)
	require.Equal(t, "00"+"14"+"04"+"00", hex.EncodeToString(extra))

	w := io.NewBufBinWriter()
	w.WriteU32LE(testchain.SpecVersion)
	w.WriteU32LE(testchain.TransactionVersion)
	w.WriteBytes(p.GenesisHash.BytesBE())
	w.WriteBytes(p.GenesisHash.BytesBE())
	w.WriteB(0)
	require.Equal(t, w.Bytes(), additional)
}

func TestUnsupportedExtension(t *testing.T) {
	md := testchain.Metadata()
	u32 := md.Extrinsic.SignedExtensions[1].AdditionalSigned
	md.Extrinsic.SignedExtensions = append(md.Extrinsic.SignedExtensions,
		metadata.SignedExtension{Identifier: "CheckSomething", Type: u32, AdditionalSigned: u32})
	_, _, err := extensions(md, testParams())
	require.ErrorIs(t, err, ErrUnsupportedExtension)

	md.Extrinsic.SignedExtensions[len(md.Extrinsic.SignedExtensions)-1].Type =
		md.Extrinsic.SignedExtensions[0].Type
	md.Extrinsic.SignedExtensions[len(md.Extrinsic.SignedExtensions)-1].AdditionalSigned =
		md.Extrinsic.SignedExtensions[0].AdditionalSigned
	_, _, err = extensions(md, testParams())
	require.NoError(t, err)
}

func TestSignFailure(t *testing.T) {
	md := testchain.Metadata()
	call := contractCall(t, md, nil)
	_, err := Sign(md, call, testParams(), failingSigner{})
	require.Error(t, err)
}
