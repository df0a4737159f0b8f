package smartcontract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli"
	"github.com/vne-network/priceoracle-go/cli/cmdargs"
	"github.com/vne-network/priceoracle-go/cli/options"
	"github.com/vne-network/priceoracle-go/pkg/chainrpc/result"
	"github.com/vne-network/priceoracle-go/pkg/config"
	"github.com/vne-network/priceoracle-go/pkg/rpcclient"
	"github.com/vne-network/priceoracle-go/pkg/rpcclient/actor"
	"github.com/vne-network/priceoracle-go/pkg/rpcclient/contract"
	"github.com/vne-network/priceoracle-go/pkg/rpcclient/invoker"
	"github.com/vne-network/priceoracle-go/pkg/scale"
	"github.com/vne-network/priceoracle-go/pkg/smartcontract/manifest"
	"go.uber.org/zap"
)

var errNoMethod = errors.New("no method specified")

// CallFlags are the flags of commands calling a deployed contract.
var CallFlags = append(append(append([]cli.Flag{
	options.Metadata,
	options.ContractAddress,
	options.Wallet,
}, options.Config...), options.RPC...), options.Limits...)

// NewCommands returns 'contract' command.
func NewCommands() []cli.Command {
	queryFlags := append([]cli.Flag{options.Caller, options.Value}, CallFlags...)
	submitFlags := append([]cli.Flag{options.Value, options.Await}, CallFlags...)
	deployFlags := append([]cli.Flag{
		cli.StringFlag{
			Name:  "constructor",
			Usage: "constructor to call (the default one if omitted)",
		},
		cli.StringFlag{
			Name:  "salt",
			Usage: "0x-prefixed hex salt for the contract address (random if omitted)",
		},
		options.Value,
		cli.StringFlag{
			Name:  options.AwaitFlag,
			Value: "finalized",
			Usage: "wait for the deployment to be included into a block ('inblock') or finalized ('finalized')",
		},
		options.Metadata,
		options.Wallet,
	}, options.Config...)
	deployFlags = append(append(deployFlags, options.RPC...), options.Limits...)
	deploymentsFlags := append(append([]cli.Flag{
		cli.StringFlag{
			Name:  "contract",
			Usage: "only list deployments of the contract with this name",
		},
	}, options.Config...), options.RPC...)
	return []cli.Command{{
		Name:  "contract",
		Usage: "deploy and call ink! smart contracts",
		Subcommands: []cli.Command{
			{
				Name:      "deploy",
				Usage:     "deploy a contract",
				UsageText: "deploy -m metadata [--constructor name] [--value balance] [--salt hex] [--await inblock|finalized] [args...]",
				Description: `Uploads the code from the contract metadata (it must be a .contract bundle
   or a .json file with embedded code) and calls the constructor with the
   given arguments in a single extrinsic. The deployment is dry-run first,
   constructor failures are reported without submitting anything. The signer
   address and every extrinsic status are printed, the contract address is
   taken from the Contracts.Instantiated event and is recorded into the
   deployment registry.

` + cmdargs.ParamsParsingDoc,
				Action: contractDeploy,
				Flags:  deployFlags,
			},
			{
				Name:      "methods",
				Usage:     "list contract messages and constructors",
				UsageText: "methods -m metadata",
				Action:    contractMethods,
				Flags:     []cli.Flag{options.Metadata, options.Config[0]},
			},
			{
				Name:      "query",
				Usage:     "dry-run a contract message",
				UsageText: "query -m metadata [-a address] [--caller address] [--value balance] method [args...]",
				Description: `Dry-runs the message against the current state and prints its result along
   with the gas consumed and required, nothing is submitted. A rejected call
   (contract trap, revert or runtime error) is reported as an error.

` + cmdargs.ParamsParsingDoc,
				Action: contractQuery,
				Flags:  queryFlags,
			},
			{
				Name:      "submit",
				Usage:     "submit a state-changing contract call",
				UsageText: "submit -m metadata [-a address] [--value balance] [--await inblock|finalized] method [args...]",
				Description: `Dry-runs the message and submits it if it succeeds. The extrinsic hash is
   printed, with '--await' the command waits for the extrinsic to be included
   into a block or finalized printing statuses and contract events.

` + cmdargs.ParamsParsingDoc,
				Action: contractSubmit,
				Flags:  submitFlags,
			},
			{
				Name:      "deployments",
				Usage:     "list recorded deployments on the chain",
				UsageText: "deployments [--contract name]",
				Action:    listDeployments,
				Flags:     deploymentsFlags,
			},
		},
	}}
}

func contractMethods(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	m, err := options.GetManifest(cfg)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if err := m.IsValid(); err != nil {
		return cli.NewExitError(err, 1)
	}
	printMethods(ctx.App.Writer, m)
	return nil
}

func printMethods(w io.Writer, m *manifest.Manifest) {
	fmt.Fprintf(w, "Contract: %s %s\n", m.Contract.Name, m.Contract.Version)
	for i := range m.Spec.Constructors {
		c := &m.Spec.Constructors[i]
		fmt.Fprintf(w, "constructor %s%s\n", c, flagsString(c.Payable, false, c.Default))
	}
	for _, name := range m.Methods() {
		msg := m.Message(name)
		fmt.Fprintf(w, "message %s%s\n", m.Signature(msg), flagsString(msg.Payable, msg.Mutates, msg.Default))
	}
}

func flagsString(payable, mutates, def bool) string {
	var res []string
	if mutates {
		res = append(res, "mutates")
	}
	if payable {
		res = append(res, "payable")
	}
	if def {
		res = append(res, "default")
	}
	if len(res) == 0 {
		return ""
	}
	return " [" + strings.Join(res, ", ") + "]"
}

// GetReader connects to the node and creates a reader for the configured
// contract. The caller is responsible for closing the client.
func GetReader(ctx *cli.Context, gctx context.Context, cfg config.Config, log *zap.Logger) (*rpcclient.WSClient, *contract.ContractReader, cli.ExitCoder) {
	m, err := options.GetManifest(cfg)
	if err != nil {
		return nil, nil, cli.NewExitError(err, 1)
	}
	limits, err := cfg.Limits.Result()
	if err != nil {
		return nil, nil, cli.NewExitError(fmt.Errorf("%w, use '--ref-time' and '--proof-size' or configure Limits", err), 1)
	}
	caller, err := options.GetCaller(ctx, cfg.Wallet)
	if err != nil {
		return nil, nil, cli.NewExitError(err, 1)
	}
	c, exitErr := options.GetRPCClient(gctx, cfg, log)
	if exitErr != nil {
		return nil, nil, exitErr
	}
	r, err := newReader(c, invoker.New(c, caller, limits), cfg, m)
	if err != nil {
		c.Close()
		return nil, nil, cli.NewExitError(err, 1)
	}
	return c, r, nil
}

func newReader(c *rpcclient.WSClient, inv contract.Invoker, cfg config.Config, m *manifest.Manifest) (*contract.ContractReader, error) {
	genesis, err := c.GenesisHash()
	if err != nil {
		return nil, err
	}
	addr, err := options.GetContractAddress(cfg, genesis, m.Name())
	if err != nil {
		return nil, err
	}
	return contract.NewReader(inv, addr, m)
}

// GetContract connects to the node and creates a Contract for the
// configured contract signing with the configured account. The caller is
// responsible for closing the client.
func GetContract(gctx context.Context, cfg config.Config, log *zap.Logger) (*rpcclient.WSClient, *actor.Actor, *contract.Contract, cli.ExitCoder) {
	m, err := options.GetManifest(cfg)
	if err != nil {
		return nil, nil, nil, cli.NewExitError(err, 1)
	}
	c, a, exitErr := options.GetActor(gctx, cfg, log)
	if exitErr != nil {
		return nil, nil, nil, exitErr
	}
	r, err := newReader(c, a, cfg, m)
	if err != nil {
		c.Close()
		return nil, nil, nil, cli.NewExitError(err, 1)
	}
	ct, err := contract.New(a, r.Address(), m)
	if err != nil {
		c.Close()
		return nil, nil, nil, cli.NewExitError(err, 1)
	}
	return c, a, ct, nil
}

func contractQuery(ctx *cli.Context) error {
	if !ctx.Args().Present() {
		return cli.NewExitError(errNoMethod, 1)
	}
	method := ctx.Args().First()
	params, parseErr := cmdargs.GetParamsFromContext(ctx, 1)
	if parseErr != nil {
		return parseErr
	}
	value, err := options.GetValue(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	cfg, log, gctx, cleanup, exitErr := options.Setup(ctx)
	if exitErr != nil {
		return exitErr
	}
	defer cleanup()

	c, r, exitErr := GetReader(ctx, gctx, cfg, log)
	if exitErr != nil {
		return exitErr
	}
	defer c.Close()

	out, err := r.Query(gctx, method, value, params...)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	w := ctx.App.Writer
	if out.Rejected == nil {
		if err := PrintValue(w, "Result", out.Value); err != nil {
			return cli.NewExitError(err, 1)
		}
	}
	PrintExecution(w, out.Exec)
	if out.Rejected != nil {
		return cli.NewExitError(out.Rejected, 1)
	}
	return nil
}

// PrintValue prints the decoded value as JSON.
func PrintValue(w io.Writer, label string, v any) error {
	b, err := scale.MarshalValue(v)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %s\n", label, b)
	return nil
}

// PrintExecution prints dry run execution details.
func PrintExecution(w io.Writer, res *result.Invoke) {
	fmt.Fprintf(w, "Gas consumed: %s\n", res.GasConsumed)
	fmt.Fprintf(w, "Gas required: %s\n", res.GasRequired)
	fmt.Fprintf(w, "Storage deposit: %s\n", res.StorageDeposit)
	if res.DebugMessage != "" {
		fmt.Fprintf(w, "Debug message: %s\n", res.DebugMessage)
	}
}

func contractSubmit(ctx *cli.Context) error {
	if !ctx.Args().Present() {
		return cli.NewExitError(errNoMethod, 1)
	}
	method := ctx.Args().First()
	params, parseErr := cmdargs.GetParamsFromContext(ctx, 1)
	if parseErr != nil {
		return parseErr
	}
	value, err := options.GetValue(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if _, _, err := options.GetMilestone(ctx); err != nil {
		return cli.NewExitError(err, 1)
	}
	cfg, log, gctx, cleanup, exitErr := options.Setup(ctx)
	if exitErr != nil {
		return exitErr
	}
	defer cleanup()

	c, a, ct, exitErr := GetContract(gctx, cfg, log)
	if exitErr != nil {
		return exitErr
	}
	defer c.Close()

	fmt.Fprintf(ctx.App.Writer, "Signer: %s\n", a.Sender())
	sub, err := ct.Submit(gctx, method, value, params...)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	rcpt, err := Await(ctx, gctx, a, sub)
	if err != nil || rcpt == nil {
		return err
	}
	events, err := ct.Events(rcpt)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return PrintEvents(ctx.App.Writer, events)
}

// Await prints the extrinsic hash and waits for the milestone requested with
// the --await flag printing every status. Nil receipt is returned if there is
// nothing to wait for, the subscription is closed in any case.
func Await(ctx *cli.Context, gctx context.Context, a *actor.Actor, sub *actor.Subscription) (*actor.Receipt, error) {
	w := ctx.App.Writer
	fmt.Fprintf(w, "Extrinsic: %s\n", sub.TxHash)
	milestone, await, err := options.GetMilestone(ctx)
	if err != nil || !await {
		sub.Close()
		if err != nil {
			return nil, cli.NewExitError(err, 1)
		}
		return nil, nil
	}
	a.Hook = func(st result.TxStatus) {
		fmt.Fprintf(w, "Status: %s\n", st)
	}
	rcpt, err := a.Wait(gctx, sub, milestone)
	if rcpt != nil {
		fmt.Fprintf(w, "Block: %s\n", rcpt.BlockHash)
		fmt.Fprintf(w, "Index: %d\n", rcpt.Index)
	}
	if err != nil {
		return rcpt, cli.NewExitError(err, 1)
	}
	return rcpt, nil
}

// PrintEvents prints decoded contract events.
func PrintEvents(w io.Writer, events []contract.Event) error {
	for _, ev := range events {
		if err := PrintValue(w, "Event "+ev.Name, &scale.Composite{Fields: ev.Fields}); err != nil {
			return cli.NewExitError(err, 1)
		}
	}
	return nil
}
