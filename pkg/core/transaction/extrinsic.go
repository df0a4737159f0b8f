package transaction

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/vne-network/priceoracle-go/pkg/core/metadata"
	"github.com/vne-network/priceoracle-go/pkg/crypto/hash"
	"github.com/vne-network/priceoracle-go/pkg/io"
	"github.com/vne-network/priceoracle-go/pkg/util"
)

const (
	// signedBit marks signed extrinsics in the version byte.
	signedBit = 0x80
	// maxPayloadSize is the size above which the signing payload is hashed.
	maxPayloadSize = 256
)

// ErrUnsupportedExtension is returned for signed extensions that carry data
// this package doesn't know how to fill.
var ErrUnsupportedExtension = errors.New("unsupported signed extension")

// Params are the chain-specific values mixed into the signing payload.
type Params struct {
	GenesisHash        util.Uint256
	SpecVersion        uint32
	TransactionVersion uint32
	Nonce              uint64
	// Tip is an optional tip for the block author, nil means zero.
	Tip *uint256.Int
}

// Extrinsic is a signed extrinsic ready for submission.
type Extrinsic struct {
	Sender util.Uint160
	Call   *Call
	Nonce  uint64

	bytes []byte
	hash  util.Uint256
}

// Sign builds a signed extrinsic for the given call.
func Sign(md *metadata.Metadata, call *Call, p Params, s Signer) (*Extrinsic, error) {
	xp, err := md.ExtrinsicParams()
	if err != nil {
		return nil, err
	}
	extra, additional, err := extensions(md, p)
	if err != nil {
		return nil, err
	}

	payload := make([]byte, 0, len(call.Data)+len(extra)+len(additional))
	payload = append(payload, call.Data...)
	payload = append(payload, extra...)
	payload = append(payload, additional...)
	if len(payload) > maxPayloadSize {
		h := hash.Blake2b256(payload)
		payload = h[:]
	}
	sig, err := s.Sign(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to sign: %w", err)
	}

	sender := s.AccountID()
	body := io.NewBufBinWriter()
	body.WriteB(signedBit | md.Extrinsic.Version)
	if err := md.Types.Encode(xp.Address, sender, body.BinWriter); err != nil {
		return nil, fmt.Errorf("address: %w", err)
	}
	if err := encodeSignature(md, xp.Signature, sig, body.BinWriter); err != nil {
		return nil, fmt.Errorf("signature: %w", err)
	}
	body.WriteBytes(extra)
	body.WriteBytes(call.Data)
	if body.Err != nil {
		return nil, body.Err
	}
	raw := body.Bytes()

	full := io.NewBufBinWriter()
	full.WriteVarBytes(raw)
	if full.Err != nil {
		return nil, full.Err
	}
	tx := &Extrinsic{
		Sender: sender,
		Call:   call,
		Nonce:  p.Nonce,
		bytes:  full.Bytes(),
	}
	tx.hash = hash.Blake2b256(tx.bytes)
	return tx, nil
}

func encodeSignature(md *metadata.Metadata, id uint32, sig []byte, w *io.BinWriter) error {
	t, err := md.Types.Type(id)
	if err != nil {
		return err
	}
	if _, ok := t.VariantByName("Ecdsa"); ok {
		return md.Types.Encode(id, map[string]any{"Ecdsa": sig}, w)
	}
	return md.Types.Encode(id, sig, w)
}

// extensions returns encoded "extra" and "additional signed" data for all
// signed extensions listed in metadata.
func extensions(md *metadata.Metadata, p Params) ([]byte, []byte, error) {
	extra := io.NewBufBinWriter()
	additional := io.NewBufBinWriter()
	tip := p.Tip
	if tip == nil {
		tip = new(uint256.Int)
	}
	for _, se := range md.Extrinsic.SignedExtensions {
		var ex, add any
		switch se.Identifier {
		case "CheckSpecVersion":
			add = p.SpecVersion
		case "CheckTxVersion":
			add = p.TransactionVersion
		case "CheckGenesis":
			add = p.GenesisHash
		case "CheckMortality", "CheckEra":
			ex, add = "Immortal", p.GenesisHash
		case "CheckNonce":
			ex = p.Nonce
		case "ChargeTransactionPayment":
			ex = tip
		case "ChargeAssetTxPayment":
			ex = map[string]any{"tip": tip, "asset_id": nil}
		case "CheckMetadataHash":
			ex = map[string]any{"mode": "Disabled"}
		default:
			if !md.Types.IsEmpty(se.Type) || !md.Types.IsEmpty(se.AdditionalSigned) {
				return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedExtension, se.Identifier)
			}
		}
		if err := md.Types.Encode(se.Type, ex, extra.BinWriter); err != nil {
			return nil, nil, fmt.Errorf("%s extra: %w", se.Identifier, err)
		}
		if err := md.Types.Encode(se.AdditionalSigned, add, additional.BinWriter); err != nil {
			return nil, nil, fmt.Errorf("%s additional: %w", se.Identifier, err)
		}
	}
	return extra.Bytes(), additional.Bytes(), nil
}

// Bytes returns the encoded extrinsic including its length prefix.
func (e *Extrinsic) Bytes() []byte {
	return e.bytes
}

// Hex returns 0x-prefixed hex of Bytes.
func (e *Extrinsic) Hex() string {
	return "0x" + hex.EncodeToString(e.bytes)
}

// Hash returns the BLAKE2b-256 hash of the encoded extrinsic, that's how
// extrinsics are identified in blocks.
func (e *Extrinsic) Hash() util.Uint256 {
	return e.hash
}
