package transaction

import (
	"fmt"

	"github.com/vne-network/priceoracle-go/pkg/core/metadata"
)

// Call is an encoded runtime call.
type Call struct {
	Pallet string
	Name   string
	Data   []byte
}

// NewCall encodes the given pallet call with named arguments using the
// runtime call type from metadata.
func NewCall(md *metadata.Metadata, pallet, name string, args map[string]any) (*Call, error) {
	if _, _, err := md.Call(pallet, name); err != nil {
		return nil, err
	}
	params, err := md.ExtrinsicParams()
	if err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	data, err := md.Types.EncodeToBytes(params.Call, map[string]any{
		pallet: map[string]any{name: args},
	})
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", pallet, name, err)
	}
	return &Call{Pallet: pallet, Name: name, Data: data}, nil
}

// String implements the fmt.Stringer interface.
func (c *Call) String() string {
	return c.Pallet + "." + c.Name
}
