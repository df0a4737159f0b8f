/*
Package invoker provides a convenient wrapper to perform dry-run contract
calls via RPC client.

Dry runs are executed by the node at the best block, they don't produce
extrinsics and don't change the chain state, so no signature is needed. The
result is returned as is, interpreting it is left for the upper (contract)
layer.
*/
package invoker

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/vne-network/priceoracle-go/pkg/chainrpc/result"
	"github.com/vne-network/priceoracle-go/pkg/util"
)

// RPCInvoke is a set of RPC methods needed to dry-run contract calls.
type RPCInvoke interface {
	ContractCall(ctx context.Context, req *result.CallRequest) (*result.Invoke, error)
	ContractInstantiate(ctx context.Context, req *result.InstantiateRequest) (*result.Instantiate, error)
}

// Invoker performs dry runs on behalf of the given caller with the given
// limits. Limits are never defaulted, they must be set explicitly.
type Invoker struct {
	client RPCInvoke
	caller util.Uint160
	limits result.Limits
}

// New creates an Invoker.
func New(client RPCInvoke, caller util.Uint160, limits result.Limits) *Invoker {
	return &Invoker{
		client: client,
		caller: caller,
		limits: limits,
	}
}

// Caller returns the account calls are made from.
func (v *Invoker) Caller() util.Uint160 {
	return v.caller
}

// Limits returns the limits used for calls.
func (v *Invoker) Limits() result.Limits {
	return v.limits
}

// Call dry-runs a contract call with the given encoded input (selector and
// arguments) and returns the result as is.
func (v *Invoker) Call(ctx context.Context, contract util.Uint160, input []byte) (*result.Invoke, error) {
	return v.CallWithValue(ctx, contract, input, nil)
}

// CallWithValue is like Call, but also transfers value to payable messages.
func (v *Invoker) CallWithValue(ctx context.Context, contract util.Uint160, input []byte, value *uint256.Int) (*result.Invoke, error) {
	if err := v.limits.Validate(); err != nil {
		return nil, err
	}
	res, err := v.client.ContractCall(ctx, &result.CallRequest{
		Origin: v.caller,
		Dest:   contract,
		Value:  value,
		Limits: v.limits,
		Input:  input,
	})
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", contract, err)
	}
	return res, nil
}

// Instantiate dry-runs contract instantiation with the given code and
// constructor input. It returns the address the contract would get and the
// resources instantiation would need.
func (v *Invoker) Instantiate(ctx context.Context, code []byte, input []byte, salt []byte, value *uint256.Int) (*result.Instantiate, error) {
	if err := v.limits.Validate(); err != nil {
		return nil, err
	}
	res, err := v.client.ContractInstantiate(ctx, &result.InstantiateRequest{
		Origin: v.caller,
		Value:  value,
		Limits: v.limits,
		Code:   code,
		Data:   input,
		Salt:   salt,
	})
	if err != nil {
		return nil, fmt.Errorf("instantiate: %w", err)
	}
	return res, nil
}
