package flags

import (
	"flag"
	"fmt"
	"strings"

	"github.com/urfave/cli"
	"github.com/vne-network/priceoracle-go/pkg/encoding/address"
	"github.com/vne-network/priceoracle-go/pkg/util"
)

// Address is a wrapper for a Uint160 with flag.Value methods.
type Address struct {
	IsSet bool
	Value util.Uint160
}

// AddressFlag is a flag with type Uint160.
type AddressFlag struct {
	Name  string
	Usage string
	Value Address
}

var (
	_ flag.Value = (*Address)(nil)
	_ cli.Flag   = AddressFlag{}
)

// String implements the fmt.Stringer interface.
func (a Address) String() string {
	return address.Uint160ToString(a.Value)
}

// Set implements the flag.Value interface.
func (a *Address) Set(s string) error {
	addr, err := address.StringToUint160(strings.TrimSpace(s))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	a.IsSet = true
	a.Value = addr
	return nil
}

// Uint160 casts an address to Uint160.
func (a *Address) Uint160() (u util.Uint160) {
	if !a.IsSet {
		// It is a programmer error to call this method without
		// checking if the value was provided.
		panic("address was not set")
	}
	return a.Value
}

// IsSet checks if flag was set to a non-default value.
func (f AddressFlag) IsSet() bool {
	return f.Value.IsSet
}

// String returns a readable representation of this value
// (for usage defaults).
func (f AddressFlag) String() string {
	var names []string
	for _, name := range splitName(f.Name) {
		names = append(names, getNameHelp(name))
	}
	return strings.Join(names, ", ") + "\t" + f.Usage
}

// splitName returns all names of the flag, urfave/cli separates them with
// commas.
func splitName(name string) []string {
	parts := strings.Split(name, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func getNameHelp(name string) string {
	if len(name) == 1 {
		return fmt.Sprintf("-%s value", name)
	}
	return fmt.Sprintf("--%s value", name)
}

// GetName implements the cli.Flag interface.
func (f AddressFlag) GetName() string {
	return f.Name
}

// Apply implements the cli.Flag interface.
func (f AddressFlag) Apply(set *flag.FlagSet) {
	for _, name := range splitName(f.Name) {
		set.Var(&f.Value, name, f.Usage)
	}
}

// Get returns the address flag value from the context (the zero Address if
// it's not set).
func Get(ctx *cli.Context, name string) Address {
	adr, ok := ctx.Generic(name).(*Address)
	if !ok || adr == nil {
		return Address{}
	}
	return *adr
}
