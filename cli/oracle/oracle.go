/*
Package oracle implements price oracle contract commands.
*/
package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/holiman/uint256"
	"github.com/urfave/cli"
	"github.com/vne-network/priceoracle-go/cli/options"
	"github.com/vne-network/priceoracle-go/cli/smartcontract"
	"github.com/vne-network/priceoracle-go/pkg/chainrpc/result"
	"github.com/vne-network/priceoracle-go/pkg/rpcclient/actor"
	"github.com/vne-network/priceoracle-go/pkg/rpcclient/priceoracle"
)

type (
	readFunc  func(ctx *cli.Context, gctx context.Context, r *priceoracle.ContractReader) (string, error)
	writeFunc func(ctx *cli.Context, gctx context.Context, c *priceoracle.Contract) (*actor.Subscription, error)
)

var (
	errNoName  = errors.New("name is required")
	errNoPrice = errors.New("price is required")
)

// NewCommands returns 'oracle' command.
func NewCommands() []cli.Command {
	readFlags := append([]cli.Flag{options.Caller}, smartcontract.CallFlags...)
	writeFlags := append([]cli.Flag{options.Await}, smartcontract.CallFlags...)
	return []cli.Command{{
		Name:  "oracle",
		Usage: "query and manage the price oracle contract",
		Description: `Price oracle prices name registrations: the price is the per-letter price
   times the name length plus the per-year price times the registration
   duration in years, premium names cost ten times more. Only the contract
   owner can change prices and premium names.`,
		Subcommands: []cli.Command{
			{
				Name:      "calculate-price",
				Usage:     "calculate the price of a name registration",
				UsageText: "calculate-price name duration",
				Description: `Duration is either a number of milliseconds or a Go duration
   string like '8760h'. Zero duration makes the contract trap.`,
				Action: reader(calculatePrice),
				Flags:  readFlags,
			},
			{
				Name:   "owner",
				Usage:  "print the contract owner",
				Action: reader(readOwner),
				Flags:  readFlags,
			},
			{
				Name:   "price-per-letter",
				Usage:  "print the per-letter price",
				Action: reader(pricePerLetter),
				Flags:  readFlags,
			},
			{
				Name:   "price-per-year",
				Usage:  "print the per-year price",
				Action: reader(pricePerYear),
				Flags:  readFlags,
			},
			{
				Name:   "premium-names",
				Usage:  "list premium names",
				Action: reader(premiumNames),
				Flags:  readFlags,
			},
			{
				Name:      "set-price-per-letter",
				Usage:     "set the per-letter price (owner only)",
				UsageText: "set-price-per-letter price",
				Action:    writer(setPricePerLetter),
				Flags:     writeFlags,
			},
			{
				Name:      "set-price-per-year",
				Usage:     "set the per-year price (owner only)",
				UsageText: "set-price-per-year price",
				Action:    writer(setPricePerYear),
				Flags:     writeFlags,
			},
			{
				Name:      "add-premium-name",
				Usage:     "add a premium name (owner only)",
				UsageText: "add-premium-name name",
				Action:    writer(addPremiumName),
				Flags:     writeFlags,
			},
			{
				Name:      "remove-premium-name",
				Usage:     "remove a premium name (owner only)",
				UsageText: "remove-premium-name name",
				Action:    writer(removePremiumName),
				Flags:     writeFlags,
			},
		},
	}}
}

func reader(f readFunc) func(*cli.Context) error {
	return func(ctx *cli.Context) error {
		cfg, log, gctx, cleanup, exitErr := options.Setup(ctx)
		if exitErr != nil {
			return exitErr
		}
		defer cleanup()

		c, r, exitErr := smartcontract.GetReader(ctx, gctx, cfg, log)
		if exitErr != nil {
			return exitErr
		}
		defer c.Close()

		res, err := f(ctx, gctx, &priceoracle.ContractReader{ContractReader: r})
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		fmt.Fprintln(ctx.App.Writer, res)
		return nil
	}
}

func writer(f writeFunc) func(*cli.Context) error {
	return func(ctx *cli.Context) error {
		if _, _, err := options.GetMilestone(ctx); err != nil {
			return cli.NewExitError(err, 1)
		}
		cfg, log, gctx, cleanup, exitErr := options.Setup(ctx)
		if exitErr != nil {
			return exitErr
		}
		defer cleanup()

		c, a, ct, exitErr := smartcontract.GetContract(gctx, cfg, log)
		if exitErr != nil {
			return exitErr
		}
		defer c.Close()
		po, err := priceoracle.New(a, ct.Address(), ct.Manifest())
		if err != nil {
			return cli.NewExitError(err, 1)
		}

		fmt.Fprintf(ctx.App.Writer, "Signer: %s\n", a.Sender())
		sub, err := f(ctx, gctx, po)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		_, err = smartcontract.Await(ctx, gctx, a, sub)
		return err
	}
}

// ParseDuration parses a number of milliseconds or a Go duration string.
func ParseDuration(s string) (uint64, error) {
	if ms, err := strconv.ParseUint(s, 10, 64); err == nil {
		return ms, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return uint64(d.Milliseconds()), nil
}

func balanceString(b *uint256.Int) string {
	return b.ToBig().String()
}

func calculatePrice(ctx *cli.Context, gctx context.Context, r *priceoracle.ContractReader) (string, error) {
	if ctx.NArg() != 2 {
		return "", errors.New("name and duration are required")
	}
	duration, err := ParseDuration(ctx.Args().Get(1))
	if err != nil {
		return "", err
	}
	price, err := r.CalculatePrice(gctx, ctx.Args().First(), duration)
	if err != nil {
		return "", err
	}
	if price == nil {
		return "none", nil
	}
	return balanceString(price), nil
}

func readOwner(_ *cli.Context, gctx context.Context, r *priceoracle.ContractReader) (string, error) {
	owner, err := r.ReadOwner(gctx)
	if err != nil {
		return "", err
	}
	return owner.String(), nil
}

func pricePerLetter(_ *cli.Context, gctx context.Context, r *priceoracle.ContractReader) (string, error) {
	price, err := r.GetPricePerLetter(gctx)
	if err != nil {
		return "", err
	}
	return balanceString(price), nil
}

func pricePerYear(_ *cli.Context, gctx context.Context, r *priceoracle.ContractReader) (string, error) {
	price, err := r.GetPricePerYear(gctx)
	if err != nil {
		return "", err
	}
	return balanceString(price), nil
}

func premiumNames(_ *cli.Context, gctx context.Context, r *priceoracle.ContractReader) (string, error) {
	names, err := r.GetPremiumNames(gctx)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(names)
	return string(b), err
}

func priceArg(ctx *cli.Context) (*uint256.Int, error) {
	if ctx.NArg() != 1 {
		return nil, errNoPrice
	}
	return result.ParseBalance(ctx.Args().First())
}

func nameArg(ctx *cli.Context) (string, error) {
	if ctx.NArg() != 1 || ctx.Args().First() == "" {
		return "", errNoName
	}
	return ctx.Args().First(), nil
}

func setPricePerLetter(ctx *cli.Context, gctx context.Context, c *priceoracle.Contract) (*actor.Subscription, error) {
	price, err := priceArg(ctx)
	if err != nil {
		return nil, err
	}
	return c.SetPricePerLetter(gctx, price)
}

func setPricePerYear(ctx *cli.Context, gctx context.Context, c *priceoracle.Contract) (*actor.Subscription, error) {
	price, err := priceArg(ctx)
	if err != nil {
		return nil, err
	}
	return c.SetPricePerYear(gctx, price)
}

func addPremiumName(ctx *cli.Context, gctx context.Context, c *priceoracle.Contract) (*actor.Subscription, error) {
	name, err := nameArg(ctx)
	if err != nil {
		return nil, err
	}
	return c.AddPremiumName(gctx, name)
}

func removePremiumName(ctx *cli.Context, gctx context.Context, c *priceoracle.Contract) (*actor.Subscription, error) {
	name, err := nameArg(ctx)
	if err != nil {
		return nil, err
	}
	return c.RemovePremiumName(gctx, name)
}
