/*
Package management provides contract deployment helpers.

Contracts are deployed with Contracts.instantiate_with_code extrinsics
uploading the code and calling a constructor in one go. The deployment is
dry-run first to surface constructor failures and to get the address the
contract will have.
*/
package management

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/vne-network/priceoracle-go/pkg/chainrpc/result"
	"github.com/vne-network/priceoracle-go/pkg/rpcclient/actor"
	"github.com/vne-network/priceoracle-go/pkg/rpcclient/unwrap"
	"github.com/vne-network/priceoracle-go/pkg/smartcontract/manifest"
	"github.com/vne-network/priceoracle-go/pkg/util"
)

var (
	// ErrNoInstantiated is returned when deployment events have no
	// Contracts.Instantiated event.
	ErrNoInstantiated = errors.New("no Instantiated event")
	// ErrAmbiguousInstantiated is returned when deployment events have more
	// than one Contracts.Instantiated event.
	ErrAmbiguousInstantiated = errors.New("several Instantiated events")
	// ErrUnknownConstructor is returned for constructors missing from the
	// metadata.
	ErrUnknownConstructor = errors.New("unknown constructor")
)

// Actor is used to deploy contracts.
type Actor interface {
	Instantiate(ctx context.Context, code []byte, input []byte, salt []byte, value *uint256.Int) (*result.Instantiate, error)
	SendInstantiate(ctx context.Context, code []byte, input []byte, salt []byte, value *uint256.Int) (*actor.Subscription, error)
	Wait(ctx context.Context, sub *actor.Subscription, milestone result.TxStatusKind) (*actor.Receipt, error)
}

// Options are deployment parameters.
type Options struct {
	// Constructor name, the default one is used if empty.
	Constructor string
	// Value transferred to the contract.
	Value *uint256.Int
	// Salt distinguishes instances of the same code deployed by the same
	// account, a random one is generated if nil.
	Salt []byte
}

// Deployment is a submitted deployment.
type Deployment struct {
	// Address is the contract address predicted by the dry run.
	Address util.Uint160
	// DryRun is the dry run result.
	DryRun *result.Instantiate
	Salt   []byte
	// Subscription delivers the extrinsic statuses.
	Subscription *actor.Subscription
}

// Deploy deploys the contract code from the metadata calling the given
// constructor (default one if empty) with the arguments.
func Deploy(ctx context.Context, a Actor, m *manifest.Manifest, constructor string, args ...any) (*Deployment, error) {
	return DeployTuned(ctx, a, m, Options{Constructor: constructor}, args...)
}

// DeployTuned is Deploy with Options. A rejected dry run is returned as
// *unwrap.RejectedError and nothing is submitted then.
func DeployTuned(ctx context.Context, a Actor, m *manifest.Manifest, opts Options, args ...any) (*Deployment, error) {
	if err := m.VerifyCode(); err != nil {
		return nil, err
	}
	code, err := m.Code()
	if err != nil {
		return nil, err
	}
	ctor := m.Constructor(opts.Constructor)
	if ctor == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownConstructor, opts.Constructor)
	}
	input, err := m.EncodeConstructor(ctor, args...)
	if err != nil {
		return nil, err
	}
	salt := opts.Salt
	if salt == nil {
		id := uuid.New()
		salt = id[:]
	}
	dry, err := a.Instantiate(ctx, code, input, salt, opts.Value)
	if err != nil {
		return nil, fmt.Errorf("dry run: %w", err)
	}
	if dry.Failed() || dry.Reverted() {
		return nil, &unwrap.RejectedError{
			Method:        ctor.Label,
			DispatchError: dry.DispatchError,
			Reverted:      dry.Reverted(),
			Data:          dry.Data,
			DebugMessage:  dry.DebugMessage,
		}
	}
	sub, err := a.SendInstantiate(ctx, code, input, salt, opts.Value)
	if err != nil {
		return nil, err
	}
	return &Deployment{
		Address:      dry.Address,
		DryRun:       dry,
		Salt:         salt,
		Subscription: sub,
	}, nil
}

// DeployAndWait deploys the contract and waits for the deployment to reach
// the milestone, the address is taken from the Instantiated event.
func DeployAndWait(ctx context.Context, a Actor, m *manifest.Manifest, milestone result.TxStatusKind, opts Options, args ...any) (util.Uint160, *actor.Receipt, error) {
	d, err := DeployTuned(ctx, a, m, opts, args...)
	if err != nil {
		return util.Uint160{}, nil, err
	}
	r, err := a.Wait(ctx, d.Subscription, milestone)
	if err != nil {
		return util.Uint160{}, r, err
	}
	addr, err := ContractAddress(r.Events)
	return addr, r, err
}

// ContractAddress returns the address of the contract instantiated by the
// extrinsic with the given events. Exactly one Contracts.Instantiated event
// is expected.
func ContractAddress(events []result.Event) (util.Uint160, error) {
	var (
		addr  util.Uint160
		found int
	)
	for _, ev := range events {
		if !ev.Is(actor.ContractsPallet, "Instantiated") {
			continue
		}
		found++
		v, _ := ev.Field("contract")
		b, ok := v.([]byte)
		if !ok {
			return addr, fmt.Errorf("unexpected contract field %T", v)
		}
		u, err := util.Uint160DecodeBytesBE(b)
		if err != nil {
			return addr, err
		}
		addr = u
	}
	switch found {
	case 0:
		return addr, ErrNoInstantiated
	case 1:
		return addr, nil
	}
	return util.Uint160{}, fmt.Errorf("%w: %d", ErrAmbiguousInstantiated, found)
}
