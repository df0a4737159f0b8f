/*
Package priceoracle provides RPC wrappers for the price oracle contract.

The contract prices name registrations: the price of a name is the per-letter
price times the name length plus the per-year price times the duration in
years, premium names cost ten times more. Only the owner (the account passed
to the constructor) can change prices and the premium name list, calls from
other accounts trap.
*/
package priceoracle

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/vne-network/priceoracle-go/pkg/rpcclient/actor"
	"github.com/vne-network/priceoracle-go/pkg/rpcclient/contract"
	"github.com/vne-network/priceoracle-go/pkg/rpcclient/unwrap"
	"github.com/vne-network/priceoracle-go/pkg/smartcontract/manifest"
	"github.com/vne-network/priceoracle-go/pkg/util"
)

// Default prices set by the constructor, 1 and 20 units of an 18-decimal
// currency.
var (
	DefaultPricePerLetter = uint256.NewInt(1_000_000_000_000_000_000)
	DefaultPricePerYear   = new(uint256.Int).Mul(uint256.NewInt(20), DefaultPricePerLetter)
)

// Method names.
const (
	MethodCalculatePrice    = "calculate_price"
	MethodReadOwner         = "read_owner"
	MethodGetPricePerYear   = "get_price_per_year"
	MethodGetPricePerLetter = "get_price_per_letter"
	MethodGetPremiumNames   = "get_premium_names"
	MethodSetPricePerLetter = "set_price_per_letter"
	MethodSetPricePerYear   = "set_price_per_year"
	MethodAddPremiumName    = "add_premium_name"
	MethodRemovePremiumName = "remove_premium_name"
)

// Invoker is used by ContractReader to call read-only methods.
type Invoker interface {
	contract.Invoker
}

// Actor is used by Contract to call state-changing methods.
type Actor interface {
	contract.Actor
}

// ContractReader implements read-only contract methods.
type ContractReader struct {
	*contract.ContractReader
}

// Contract provides full price oracle interface, both read-only and
// state-changing methods.
type Contract struct {
	ContractReader

	writer *contract.Contract
}

// NewReader creates an instance of ContractReader using the contract
// address, its metadata and the given Invoker.
func NewReader(invoker Invoker, addr util.Uint160, m *manifest.Manifest) (*ContractReader, error) {
	r, err := contract.NewReader(invoker, addr, m)
	if err != nil {
		return nil, err
	}
	return &ContractReader{r}, nil
}

// New creates an instance of Contract using the contract address, its
// metadata and the given Actor.
func New(a Actor, addr util.Uint160, m *manifest.Manifest) (*Contract, error) {
	c, err := contract.New(a, addr, m)
	if err != nil {
		return nil, err
	}
	return &Contract{ContractReader{&c.ContractReader}, c}, nil
}

// CalculatePrice invokes `calculate_price` method of contract. Duration is
// in milliseconds, nil is returned when the contract can't price the name.
// Zero duration makes the contract trap.
func (c *ContractReader) CalculatePrice(ctx context.Context, name string, duration uint64) (*uint256.Int, error) {
	return unwrap.OptionalUint128(c.Call(ctx, MethodCalculatePrice, name, duration))
}

// ReadOwner invokes `read_owner` method of contract.
func (c *ContractReader) ReadOwner(ctx context.Context) (util.Uint160, error) {
	return unwrap.Address(c.Call(ctx, MethodReadOwner))
}

// GetPricePerYear invokes `get_price_per_year` method of contract.
func (c *ContractReader) GetPricePerYear(ctx context.Context) (*uint256.Int, error) {
	return unwrap.Uint128(c.Call(ctx, MethodGetPricePerYear))
}

// GetPricePerLetter invokes `get_price_per_letter` method of contract.
func (c *ContractReader) GetPricePerLetter(ctx context.Context) (*uint256.Int, error) {
	return unwrap.Uint128(c.Call(ctx, MethodGetPricePerLetter))
}

// GetPremiumNames invokes `get_premium_names` method of contract.
func (c *ContractReader) GetPremiumNames(ctx context.Context) ([]string, error) {
	return unwrap.Strings(c.Call(ctx, MethodGetPremiumNames))
}

// SetPricePerLetter creates a transaction invoking `set_price_per_letter`
// method of the contract. This transaction is signed and immediately sent
// to the network, the status subscription is returned.
func (c *Contract) SetPricePerLetter(ctx context.Context, price *uint256.Int) (*actor.Subscription, error) {
	return c.writer.Submit(ctx, MethodSetPricePerLetter, nil, price)
}

// SetPricePerYear creates a transaction invoking `set_price_per_year` method
// of the contract, see SetPricePerLetter.
func (c *Contract) SetPricePerYear(ctx context.Context, price *uint256.Int) (*actor.Subscription, error) {
	return c.writer.Submit(ctx, MethodSetPricePerYear, nil, price)
}

// AddPremiumName creates a transaction invoking `add_premium_name` method of
// the contract, see SetPricePerLetter.
func (c *Contract) AddPremiumName(ctx context.Context, name string) (*actor.Subscription, error) {
	return c.writer.Submit(ctx, MethodAddPremiumName, nil, name)
}

// RemovePremiumName creates a transaction invoking `remove_premium_name`
// method of the contract, see SetPricePerLetter. The contract returns
// whether the name was in the list, use a dry run to check it.
func (c *Contract) RemovePremiumName(ctx context.Context, name string) (*actor.Subscription, error) {
	return c.writer.Submit(ctx, MethodRemovePremiumName, nil, name)
}
