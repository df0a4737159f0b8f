/*
Package actor provides a way to change chain state via RPC client.

This layer builds on top of the basic RPC client and [invoker] package, it
simplifies creating, signing and submitting extrinsics calling contracts
(since that's the only way their state is changed). It's generic enough to
be used for any contract and contract-specific bindings build on top of it.

Submission returns a Subscription delivering extrinsic lifecycle statuses,
Waiter turns it into a Receipt with the events of the extrinsic.
*/
package actor

import (
	"context"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/vne-network/priceoracle-go/pkg/chainrpc/result"
	"github.com/vne-network/priceoracle-go/pkg/core/transaction"
	"github.com/vne-network/priceoracle-go/pkg/rpcclient/invoker"
	"github.com/vne-network/priceoracle-go/pkg/util"
	"github.com/vne-network/priceoracle-go/pkg/wallet"
	"go.uber.org/zap"
)

// ContractsPallet is the name of the pallet handling contracts.
const ContractsPallet = "Contracts"

// defaultStatusBuffer is the default capacity of subscription channels.
const defaultStatusBuffer = 16

// RPCActor is an interface required from the RPC client to successfully
// create and submit extrinsics.
type RPCActor interface {
	invoker.RPCInvoke
	RPCWaiter

	GenesisHash() (util.Uint256, error)
	RuntimeVersion() (*result.RuntimeVersion, error)
	AccountNextIndex(ctx context.Context, acc util.Uint160) (uint64, error)
	SubmitAndWatchExtrinsic(ctx context.Context, tx *transaction.Extrinsic, rcvr chan<- result.TxStatus) (string, error)
	UnwatchExtrinsic(ctx context.Context, id string) error
}

// Actor keeps a connection to the RPC endpoint and allows to perform
// state-changing contract calls on behalf of the given account. It also
// provides an Invoker to dry-run calls with the same account and limits and
// a Waiter to wait for submitted extrinsics.
//
// Make* methods create signed extrinsics without submitting them, Send*
// methods submit them and return a Subscription.
type Actor struct {
	invoker.Invoker
	Waiter

	client  RPCActor
	account *wallet.Account
	limits  result.Limits
	opts    Options
}

// Options are used to create Actor with non-standard settings.
type Options struct {
	// Tip is added to every extrinsic, none by default.
	Tip *uint256.Int
	// StatusBuffer is the capacity of Subscription status channels.
	StatusBuffer int
	// Logger is used to log submissions, nothing is logged if nil.
	Logger *zap.Logger
}

// New creates an Actor for the given unlocked account. Limits are used for
// every call and must be set explicitly. The client must be initialized
// (have metadata and chain parameters cached).
func New(ra RPCActor, acc *wallet.Account, limits result.Limits) (*Actor, error) {
	return NewTuned(ra, acc, limits, Options{})
}

// NewTuned creates an Actor with the given Options.
func NewTuned(ra RPCActor, acc *wallet.Account, limits result.Limits, opts Options) (*Actor, error) {
	if acc == nil {
		return nil, errors.New("no account")
	}
	if !acc.CanSign() {
		return nil, fmt.Errorf("account %s: %w", acc.Address, wallet.ErrLocked)
	}
	if _, err := ra.Metadata(); err != nil {
		return nil, err
	}
	if opts.StatusBuffer <= 0 {
		opts.StatusBuffer = defaultStatusBuffer
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Actor{
		Invoker: *invoker.New(ra, acc.AccountID(), limits),
		Waiter:  *NewWaiter(ra),
		client:  ra,
		account: acc,
		limits:  limits,
		opts:    opts,
	}, nil
}

// Sender returns the account extrinsics are signed by.
func (a *Actor) Sender() util.Uint160 {
	return a.account.AccountID()
}

// MakeCall creates a signed Contracts.call extrinsic calling the contract
// with the given input (selector and arguments) and value.
func (a *Actor) MakeCall(ctx context.Context, contract util.Uint160, input []byte, value *uint256.Int) (*transaction.Extrinsic, error) {
	if err := a.limits.Validate(); err != nil {
		return nil, err
	}
	return a.makeTx(ctx, "call", map[string]any{
		"dest":                  contract,
		"value":                 orZero(value),
		"gas_limit":             a.limits.GasLimit,
		"storage_deposit_limit": a.limits.ScaleDepositLimit(),
		"data":                  input,
	})
}

// MakeInstantiate creates a signed Contracts.instantiate_with_code extrinsic
// uploading the code and calling the constructor with the given input.
func (a *Actor) MakeInstantiate(ctx context.Context, code []byte, input []byte, salt []byte, value *uint256.Int) (*transaction.Extrinsic, error) {
	if err := a.limits.Validate(); err != nil {
		return nil, err
	}
	if salt == nil {
		salt = []byte{}
	}
	return a.makeTx(ctx, "instantiate_with_code", map[string]any{
		"value":                 orZero(value),
		"gas_limit":             a.limits.GasLimit,
		"storage_deposit_limit": a.limits.ScaleDepositLimit(),
		"code":                  code,
		"data":                  input,
		"salt":                  salt,
	})
}

func orZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}

func (a *Actor) makeTx(ctx context.Context, name string, args map[string]any) (*transaction.Extrinsic, error) {
	md, err := a.client.Metadata()
	if err != nil {
		return nil, err
	}
	params, err := a.txParams(ctx)
	if err != nil {
		return nil, err
	}
	call, err := transaction.NewCall(md, ContractsPallet, name, args)
	if err != nil {
		return nil, err
	}
	tx, err := transaction.Sign(md, call, params, a.account)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (a *Actor) txParams(ctx context.Context) (transaction.Params, error) {
	var p transaction.Params
	genesis, err := a.client.GenesisHash()
	if err != nil {
		return p, err
	}
	version, err := a.client.RuntimeVersion()
	if err != nil {
		return p, err
	}
	nonce, err := a.client.AccountNextIndex(ctx, a.account.AccountID())
	if err != nil {
		return p, fmt.Errorf("failed to get nonce: %w", err)
	}
	return transaction.Params{
		GenesisHash:        genesis,
		SpecVersion:        version.SpecVersion,
		TransactionVersion: version.TransactionVersion,
		Nonce:              nonce,
		Tip:                a.opts.Tip,
	}, nil
}

// SendCall creates, signs and submits a contract call, see MakeCall.
func (a *Actor) SendCall(ctx context.Context, contract util.Uint160, input []byte, value *uint256.Int) (*Subscription, error) {
	tx, err := a.MakeCall(ctx, contract, input, value)
	if err != nil {
		return nil, err
	}
	return a.Send(ctx, tx)
}

// SendInstantiate creates, signs and submits a contract instantiation, see
// MakeInstantiate.
func (a *Actor) SendInstantiate(ctx context.Context, code []byte, input []byte, salt []byte, value *uint256.Int) (*Subscription, error) {
	tx, err := a.MakeInstantiate(ctx, code, input, salt, value)
	if err != nil {
		return nil, err
	}
	return a.Send(ctx, tx)
}

// Send submits the extrinsic and subscribes to its status updates. The
// subscription is bound to the context, it's unwatched when the context is
// done, when a terminal status is received or when it's closed.
func (a *Actor) Send(ctx context.Context, tx *transaction.Extrinsic) (*Subscription, error) {
	rcvr := make(chan result.TxStatus, a.opts.StatusBuffer)
	id, err := a.client.SubmitAndWatchExtrinsic(ctx, tx, rcvr)
	if err != nil {
		return nil, fmt.Errorf("failed to submit %s: %w", tx.Call, err)
	}
	a.opts.Logger.Info("extrinsic submitted",
		zap.Stringer("call", tx.Call),
		zap.Stringer("hash", tx.Hash()),
		zap.Uint64("nonce", tx.Nonce))
	return newSubscription(ctx, a.client, tx.Hash(), id, rcvr, a.opts), nil
}
