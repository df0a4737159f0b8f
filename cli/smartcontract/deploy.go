package smartcontract

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli"
	"github.com/vne-network/priceoracle-go/cli/cmdargs"
	"github.com/vne-network/priceoracle-go/cli/options"
	"github.com/vne-network/priceoracle-go/pkg/deployments"
	"github.com/vne-network/priceoracle-go/pkg/rpcclient/management"
	"go.uber.org/zap"
)

func contractDeploy(ctx *cli.Context) error {
	params, parseErr := cmdargs.GetParamsFromContext(ctx, 0)
	if parseErr != nil {
		return parseErr
	}
	value, err := options.GetValue(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	var salt []byte
	if s := ctx.String("salt"); s != "" {
		salt, err = hex.DecodeString(strings.TrimPrefix(s, "0x"))
		if err != nil {
			return cli.NewExitError(fmt.Errorf("invalid salt: %w", err), 1)
		}
	}
	if _, _, err := options.GetMilestone(ctx); err != nil {
		return cli.NewExitError(err, 1)
	}
	cfg, log, gctx, cleanup, exitErr := options.Setup(ctx)
	if exitErr != nil {
		return exitErr
	}
	defer cleanup()

	m, err := options.GetManifest(cfg)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if err := m.IsValid(); err != nil {
		return cli.NewExitError(err, 1)
	}
	codeHash, err := m.CodeHash()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	c, a, exitErr := options.GetActor(gctx, cfg, log)
	if exitErr != nil {
		return exitErr
	}
	defer c.Close()

	w := ctx.App.Writer
	fmt.Fprintf(w, "Signer: %s\n", a.Sender())
	d, err := management.DeployTuned(gctx, a, m, management.Options{
		Constructor: ctx.String("constructor"),
		Value:       value,
		Salt:        salt,
	}, params...)
	if err != nil {
		return cli.NewExitError(fmt.Errorf("deployment failed: %w", err), 1)
	}
	fmt.Fprintf(w, "Predicted address: %s\n", d.Address)
	rcpt, err := Await(ctx, gctx, a, d.Subscription)
	if err != nil || rcpt == nil {
		return err
	}
	addr, err := management.ContractAddress(rcpt.Events)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintf(w, "Contract: %s\n", addr)

	genesis, err := c.GenesisHash()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	store, err := deployments.Open(cfg.Deployments)
	if err != nil {
		return cli.NewExitError(fmt.Errorf("contract is deployed, but can't be recorded: %w", err), 1)
	}
	defer store.Close()
	err = store.Put(&deployments.Record{
		Genesis:  genesis,
		Address:  addr,
		Contract: m.Name(),
		CodeHash: codeHash,
		Deployer: a.Sender(),
		TxHash:   rcpt.TxHash,
		Block:    rcpt.BlockHash,
		Salt:     d.Salt,
		Time:     time.Now(),
	})
	if err != nil {
		return cli.NewExitError(fmt.Errorf("contract is deployed, but can't be recorded: %w", err), 1)
	}
	log.Info("deployment recorded", zap.Stringer("address", addr), zap.String("contract", m.Name()))
	return nil
}

func listDeployments(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	cfg, log, gctx, cleanup, exitErr := options.Setup(ctx)
	if exitErr != nil {
		return exitErr
	}
	defer cleanup()

	c, exitErr := options.GetRPCClient(gctx, cfg, log)
	if exitErr != nil {
		return exitErr
	}
	defer c.Close()
	genesis, err := c.GenesisHash()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	store, err := deployments.Open(cfg.Deployments)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer store.Close()
	list, err := store.List(genesis)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	name := ctx.String("contract")
	w := ctx.App.Writer
	var n int
	for _, r := range list {
		if name != "" && r.Contract != name {
			continue
		}
		n++
		fmt.Fprintf(w, "%s\t%s\t%s\tblock %s\tby %s\n", r.Time.UTC().Format(time.RFC3339), r.Contract, r.Address, r.Block, r.Deployer)
	}
	if n == 0 {
		return cli.NewExitError(errors.New("no deployments recorded"), 1)
	}
	return nil
}
