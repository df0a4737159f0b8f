/*
Package contract provides a generic RPC binding for ink! contracts.

ContractReader dry-runs contract messages described by the contract metadata
(encoding arguments and decoding results according to it) and Contract adds
state-changing calls on top of that. Contract-specific packages wrap these
with typed methods.
*/
package contract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"github.com/vne-network/priceoracle-go/pkg/chainrpc/result"
	"github.com/vne-network/priceoracle-go/pkg/encoding/address"
	"github.com/vne-network/priceoracle-go/pkg/rpcclient/actor"
	"github.com/vne-network/priceoracle-go/pkg/rpcclient/unwrap"
	"github.com/vne-network/priceoracle-go/pkg/scale"
	"github.com/vne-network/priceoracle-go/pkg/smartcontract/manifest"
	"github.com/vne-network/priceoracle-go/pkg/util"
)

var (
	// ErrUnknownMethod is returned for methods not described by the
	// metadata.
	ErrUnknownMethod = errors.New("unknown method")
	// ErrReadOnly is returned when submitting a message that doesn't change
	// state.
	ErrReadOnly = errors.New("method doesn't change state")
	// ErrNotPayable is returned when sending value to a non-payable method.
	ErrNotPayable = errors.New("method is not payable")
)

// Invoker is used by ContractReader to dry-run contract messages.
type Invoker interface {
	CallWithValue(ctx context.Context, contract util.Uint160, input []byte, value *uint256.Int) (*result.Invoke, error)
}

// Actor is used by Contract to submit state-changing calls.
type Actor interface {
	Invoker

	SendCall(ctx context.Context, contract util.Uint160, input []byte, value *uint256.Int) (*actor.Subscription, error)
}

// ContractReader dry-runs contract messages.
type ContractReader struct {
	invoker  Invoker
	address  util.Uint160
	manifest *manifest.Manifest
}

// Contract provides both dry-run and state-changing contract calls.
type Contract struct {
	ContractReader

	actor Actor
}

// Outcome is the result of a dry-run call. Exactly one of Value and Rejected
// is meaningful, Exec holds the execution details (gas, storage deposit,
// debug output).
type Outcome struct {
	Value    any
	Rejected *unwrap.RejectedError
	Exec     *result.Invoke
}

// Event is a decoded contract event.
type Event struct {
	Name   string
	Fields []scale.NamedValue
}

// ParseAddress parses a 0x-prefixed hex contract address. Mixed-case
// addresses must have a valid checksum. Only the syntax is checked, the
// contract may not exist.
func ParseAddress(s string) (util.Uint160, error) {
	u, err := address.StringToUint160(strings.TrimSpace(s))
	if err != nil {
		return u, fmt.Errorf("contract address %q: %w", s, err)
	}
	return u, nil
}

// NewReader creates a ContractReader for the contract deployed at the given
// address. The metadata is validated, so any type it references must be in
// its registry.
func NewReader(inv Invoker, addr util.Uint160, m *manifest.Manifest) (*ContractReader, error) {
	if err := m.IsValid(); err != nil {
		return nil, err
	}
	return &ContractReader{invoker: inv, address: addr, manifest: m}, nil
}

// New creates a Contract, see NewReader.
func New(a Actor, addr util.Uint160, m *manifest.Manifest) (*Contract, error) {
	r, err := NewReader(a, addr, m)
	if err != nil {
		return nil, err
	}
	return &Contract{ContractReader: *r, actor: a}, nil
}

// Address returns the contract address.
func (c *ContractReader) Address() util.Uint160 {
	return c.address
}

// Manifest returns the contract metadata.
func (c *ContractReader) Manifest() *manifest.Manifest {
	return c.manifest
}

// Methods returns sorted message labels.
func (c *ContractReader) Methods() []string {
	return c.manifest.Methods()
}

// Message returns the message with the given label or its camelCase alias.
func (c *ContractReader) Message(name string) (*manifest.Message, error) {
	msg := c.manifest.Message(name)
	if msg == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, name)
	}
	return msg, nil
}

func (c *ContractReader) input(name string, args []any) (*manifest.Message, []byte, error) {
	msg, err := c.Message(name)
	if err != nil {
		return nil, nil, err
	}
	input, err := c.manifest.EncodeInput(msg, args...)
	if err != nil {
		return nil, nil, err
	}
	return msg, input, nil
}

// Call dry-runs the method and returns its decoded result, rejections are
// returned as *unwrap.RejectedError. It's mostly useful with unwrap helpers.
func (c *ContractReader) Call(ctx context.Context, method string, args ...any) (any, error) {
	msg, input, err := c.input(method, args)
	if err != nil {
		return nil, err
	}
	res, err := c.invoker.CallWithValue(ctx, c.address, input, nil)
	return unwrap.Value(c.manifest, msg, res, err)
}

// Query dry-runs the method with the given value (nil for none). A
// rejected call is not an error, it's reported in Outcome.
func (c *ContractReader) Query(ctx context.Context, method string, value *uint256.Int, args ...any) (*Outcome, error) {
	msg, input, err := c.input(method, args)
	if err != nil {
		return nil, err
	}
	res, err := c.invoker.CallWithValue(ctx, c.address, input, value)
	if err != nil {
		return nil, err
	}
	out := &Outcome{Exec: res}
	out.Value, err = unwrap.Value(c.manifest, msg, res, nil)
	if err != nil {
		var rej *unwrap.RejectedError
		if !errors.As(err, &rej) {
			return nil, err
		}
		out.Rejected = rej
	}
	return out, nil
}

// Events decodes events emitted by this contract in the receipt.
func (c *ContractReader) Events(r *actor.Receipt) ([]Event, error) {
	var res []Event
	for _, ev := range r.Find(actor.ContractsPallet, "ContractEmitted") {
		emitter, _ := ev.Field("contract")
		if b, ok := emitter.([]byte); !ok || !bytes.Equal(b, c.address.BytesBE()) {
			continue
		}
		data, _ := ev.Field("data")
		raw, ok := data.([]byte)
		if !ok {
			return nil, fmt.Errorf("unexpected event data %T", data)
		}
		spec, fields, err := c.manifest.DecodeEvent(raw)
		if err != nil {
			return nil, err
		}
		res = append(res, Event{Name: spec.Label, Fields: fields})
	}
	return res, nil
}

// Submit sends a state-changing call of the method. The call is dry-run
// first and a rejection is returned as *unwrap.RejectedError without
// submitting anything.
func (c *Contract) Submit(ctx context.Context, method string, value *uint256.Int, args ...any) (*actor.Subscription, error) {
	msg, input, err := c.input(method, args)
	if err != nil {
		return nil, err
	}
	if !msg.Mutates {
		return nil, fmt.Errorf("%w: %s", ErrReadOnly, msg.Label)
	}
	if value != nil && !value.IsZero() && !msg.Payable {
		return nil, fmt.Errorf("%w: %s", ErrNotPayable, msg.Label)
	}
	res, err := c.actor.CallWithValue(ctx, c.address, input, value)
	if _, err := unwrap.Value(c.manifest, msg, res, err); err != nil {
		return nil, err
	}
	return c.actor.SendCall(ctx, c.address, input, value)
}
