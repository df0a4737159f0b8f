package transaction

import "github.com/vne-network/priceoracle-go/pkg/util"

// Signer signs extrinsic payloads on behalf of an account.
type Signer interface {
	// AccountID returns the account extrinsics are sent from.
	AccountID() util.Uint160
	// Sign returns a 65-byte recoverable signature of the payload.
	Sign(payload []byte) ([]byte, error)
}
