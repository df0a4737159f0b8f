/*
Package options contains a set of common CLI options and helper functions to use them.
*/
package options

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/holiman/uint256"
	"github.com/urfave/cli"
	"github.com/vne-network/priceoracle-go/cli/flags"
	"github.com/vne-network/priceoracle-go/cli/input"
	"github.com/vne-network/priceoracle-go/pkg/chainrpc/result"
	"github.com/vne-network/priceoracle-go/pkg/config"
	"github.com/vne-network/priceoracle-go/pkg/deployments"
	"github.com/vne-network/priceoracle-go/pkg/encoding/address"
	"github.com/vne-network/priceoracle-go/pkg/rpcclient"
	"github.com/vne-network/priceoracle-go/pkg/rpcclient/actor"
	"github.com/vne-network/priceoracle-go/pkg/smartcontract/manifest"
	"github.com/vne-network/priceoracle-go/pkg/util"
	"github.com/vne-network/priceoracle-go/pkg/wallet"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// DefaultTimeout is the default timeout used for RPC requests.
	DefaultTimeout = 10 * time.Second
	// DefaultAwaitableTimeout is the default timeout used for RPC requests that
	// require extrinsic awaiting. Finalization takes a couple of blocks
	// after inclusion.
	DefaultAwaitableTimeout = 60 * time.Second
)

// PrivateKeyEnv is the environment variable with a hex-encoded private key
// used for signing instead of the keystore.
const PrivateKeyEnv = "PRICEORACLE_PRIVATE_KEY"

// RPCEndpointFlag is a long flag name for an RPC endpoint. It can be used to
// check for flag presence in the context.
const RPCEndpointFlag = "rpc-endpoint"

// AwaitFlag is a long flag name for the milestone to wait for.
const AwaitFlag = "await"

// Config is a set of flags for configuration and logging.
var Config = []cli.Flag{
	cli.StringFlag{
		Name:  "config-file",
		Usage: "path to the configuration file (" + config.DefaultConfigPath + " is used if it exists)",
	},
	cli.BoolFlag{
		Name:  "debug, d",
		Usage: "enable debug logging (overrides configuration)",
	},
}

// RPC is a set of flags used for RPC connections (endpoint and timeout).
var RPC = []cli.Flag{
	cli.StringFlag{
		Name:  RPCEndpointFlag + ", r",
		Usage: "RPC node address (ws:// or wss://)",
	},
	cli.DurationFlag{
		Name:  "timeout, s",
		Value: DefaultTimeout,
		Usage: "Timeout for the operation",
	},
}

// Wallet is a flag for the keystore used to sign extrinsics.
var Wallet = cli.StringFlag{
	Name:  "wallet, w",
	Usage: "keystore file to get the key for signing from (" + PrivateKeyEnv + " takes precedence)",
}

// Metadata is a flag for the contract metadata file.
var Metadata = cli.StringFlag{
	Name:  "metadata, m",
	Usage: "path to the contract metadata (.json or .contract bundle)",
}

// ContractAddress is a flag for the address of the deployed contract.
var ContractAddress = flags.AddressFlag{
	Name:  "address, a",
	Usage: "contract address (the latest recorded deployment is used if omitted)",
}

// Caller is a flag for the account queries are made on behalf of.
var Caller = flags.AddressFlag{
	Name:  "caller",
	Usage: "account to dry-run calls from (the signing account or zero account by default)",
}

// Limits is a set of flags for contract call resource limits.
var Limits = []cli.Flag{
	cli.Uint64Flag{
		Name:  "ref-time",
		Usage: "gas limit (computation time) for the call",
	},
	cli.Uint64Flag{
		Name:  "proof-size",
		Usage: "gas limit (proof size) for the call",
	},
	cli.StringFlag{
		Name:  "storage-deposit-limit",
		Usage: "maximum storage deposit the call can charge (unlimited if omitted)",
	},
}

// Value is a flag for the balance transferred with a call.
var Value = cli.StringFlag{
	Name:  "value",
	Usage: "balance to transfer to the contract with the call",
}

// Await is a flag for commands that can wait for extrinsic inclusion.
var Await = cli.StringFlag{
	Name:  AwaitFlag,
	Usage: "wait for the extrinsic to be included into a block ('inblock') or finalized ('finalized')",
}

var (
	errNoEndpoint       = errors.New("no RPC endpoint specified, use option '--" + RPCEndpointFlag + "' or '-r'")
	errNoWallet         = errors.New("no signing key, set " + PrivateKeyEnv + " or specify a keystore with the '--wallet' or '-w' flag")
	errInvalidKey       = errors.New("invalid " + PrivateKeyEnv + " value")
	errNoMetadata       = errors.New("no contract metadata specified, use option '--metadata' or '-m'")
	errInvalidMilestone = errors.New("invalid '--" + AwaitFlag + "' value, use 'inblock' or 'finalized'")
)

// GetConfigFromContext loads the configuration file given by the flag (or the
// default one if it exists) and applies flag overrides to it.
func GetConfigFromContext(ctx *cli.Context) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if path := ctx.String("config-file"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadOrDefault(config.DefaultConfigPath)
	}
	if err != nil {
		return cfg, err
	}
	if s := ctx.String(RPCEndpointFlag); s != "" {
		cfg.RPC.Endpoint = s
	}
	if s := ctx.String("wallet"); s != "" {
		cfg.Wallet.Path = s
	}
	if s := ctx.String("metadata"); s != "" {
		cfg.Contract.Metadata = s
	}
	if addr := flags.Get(ctx, "address"); addr.IsSet {
		cfg.Contract.Address = address.Uint160ToString(addr.Value)
	}
	if ctx.IsSet("ref-time") {
		cfg.Limits.RefTime = ctx.Uint64("ref-time")
	}
	if ctx.IsSet("proof-size") {
		cfg.Limits.ProofSize = ctx.Uint64("proof-size")
	}
	if ctx.IsSet("storage-deposit-limit") {
		cfg.Limits.StorageDepositLimit = ctx.String("storage-deposit-limit")
	}
	return cfg, cfg.Validate()
}

// GetTimeoutContext returns a context.Context with the default or a user-set timeout.
func GetTimeoutContext(ctx *cli.Context) (context.Context, func()) {
	dur := ctx.Duration("timeout")
	if dur == 0 {
		dur = DefaultTimeout
	}
	if !ctx.IsSet("timeout") && ctx.String(AwaitFlag) != "" {
		dur = DefaultAwaitableTimeout
	}
	return context.WithTimeout(context.Background(), dur)
}

// HandleLoggingParams reads logging parameters.
// If a user selected debug level -- function enables it.
// If logPath is configured -- function creates a dir and a file for logging.
func HandleLoggingParams(debug bool, cfg config.Logger) (*zap.Logger, *zap.AtomicLevel, error) {
	var (
		level = zapcore.InfoLevel
		err   error
	)
	if len(cfg.LogLevel) > 0 {
		level, err = zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, nil, fmt.Errorf("log setting: %w", err)
		}
	}
	if debug {
		level = zapcore.DebugLevel
	}

	cc := zap.NewProductionConfig()
	cc.DisableCaller = true
	cc.DisableStacktrace = true
	cc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	cc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cc.Encoding = "console"
	if cfg.LogEncoding != "" {
		cc.Encoding = cfg.LogEncoding
	}
	cc.Level = zap.NewAtomicLevelAt(level)
	cc.Sampling = nil

	if logPath := cfg.LogPath; logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), os.ModePerm); err != nil {
			return nil, nil, fmt.Errorf("could not create dir for logger: %w", err)
		}
		cc.OutputPaths = []string{logPath}
	}

	log, err := cc.Build()
	return log, &cc.Level, err
}

// GetRPCClient returns an initialized RPC client connected to the configured
// endpoint.
func GetRPCClient(gctx context.Context, cfg config.Config, log *zap.Logger) (*rpcclient.WSClient, cli.ExitCoder) {
	if len(cfg.RPC.Endpoint) == 0 {
		return nil, cli.NewExitError(errNoEndpoint, 1)
	}
	c, err := rpcclient.NewWS(gctx, cfg.RPC.Endpoint, rpcclient.Options{
		DialTimeout:    cfg.RPC.DialTimeout,
		RequestTimeout: cfg.RPC.RequestTimeout,
		Logger:         log,
	})
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	err = c.Init(gctx)
	if err != nil {
		c.Close()
		return nil, cli.NewExitError(err, 1)
	}
	return c, nil
}

// GetAccount returns an unlocked signing account. The key is taken from the
// PrivateKeyEnv environment variable if it's set, otherwise the configured
// keystore is decrypted with the configured password or the one the user
// enters.
func GetAccount(cfg config.Wallet) (*wallet.Account, error) {
	if hexKey := strings.TrimSpace(os.Getenv(PrivateKeyEnv)); hexKey != "" {
		acc, err := wallet.NewAccountFromHex(hexKey)
		if err != nil {
			// The key itself must never end up in the output.
			return nil, errInvalidKey
		}
		return acc, nil
	}
	if cfg.Path == "" {
		return nil, errNoWallet
	}
	acc, err := wallet.NewAccountFromFile(cfg.Path)
	if err != nil {
		return nil, err
	}
	pass := cfg.Password
	if pass == "" {
		pass, err = input.ReadPassword(fmt.Sprintf("Enter password for %s > ", acc.Address))
		if err != nil {
			return nil, fmt.Errorf("error reading password: %w", err)
		}
	}
	if err := acc.Decrypt(pass); err != nil {
		return nil, fmt.Errorf("can't unlock %s: %w", acc.Address, err)
	}
	return acc, nil
}

// GetActor returns an RPC client and an Actor signing with the configured
// account. Limits must be configured.
func GetActor(gctx context.Context, cfg config.Config, log *zap.Logger) (*rpcclient.WSClient, *actor.Actor, cli.ExitCoder) {
	limits, err := cfg.Limits.Result()
	if err != nil {
		return nil, nil, cli.NewExitError(fmt.Errorf("%w, use '--ref-time' and '--proof-size' or configure Limits", err), 1)
	}
	acc, err := GetAccount(cfg.Wallet)
	if err != nil {
		return nil, nil, cli.NewExitError(err, 1)
	}
	c, exitErr := GetRPCClient(gctx, cfg, log)
	if exitErr != nil {
		return nil, nil, exitErr
	}
	a, err := actor.NewTuned(c, acc, limits, actor.Options{Logger: log})
	if err != nil {
		c.Close()
		return nil, nil, cli.NewExitError(fmt.Errorf("failed to create Actor: %w", err), 1)
	}
	return c, a, nil
}

// GetMilestone returns the status to wait for, false is returned if the
// extrinsic shouldn't be awaited.
func GetMilestone(ctx *cli.Context) (result.TxStatusKind, bool, error) {
	switch strings.ToLower(ctx.String(AwaitFlag)) {
	case "":
		return 0, false, nil
	case "inblock":
		return result.InBlock, true, nil
	case "finalized":
		return result.Finalized, true, nil
	}
	return 0, false, errInvalidMilestone
}

// GetValue returns the balance to transfer, nil if it's not set.
func GetValue(ctx *cli.Context) (*uint256.Int, error) {
	s := ctx.String("value")
	if s == "" {
		return nil, nil
	}
	return result.ParseBalance(s)
}

// GetManifest reads the configured contract metadata.
func GetManifest(cfg config.Config) (*manifest.Manifest, error) {
	if cfg.Contract.Metadata == "" {
		return nil, errNoMetadata
	}
	return manifest.NewFromFile(cfg.Contract.Metadata)
}

// GetContractAddress returns the configured contract address or the address
// of the latest recorded deployment of the contract on the chain with the
// given genesis hash.
func GetContractAddress(cfg config.Config, genesis util.Uint256, contract string) (util.Uint160, error) {
	if cfg.Contract.Address != "" {
		return address.StringToUint160(cfg.Contract.Address)
	}
	store, err := deployments.Open(cfg.Deployments)
	if err != nil {
		return util.Uint160{}, err
	}
	defer store.Close()
	r, err := store.Latest(genesis, contract)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("no contract address given and no %s deployment recorded: %w", contract, err)
	}
	return r.Address, nil
}

// Setup loads the configuration and sets up logging for the command, the
// returned context has the command timeout. The cleanup function must be
// called when the command is done.
func Setup(ctx *cli.Context) (config.Config, *zap.Logger, context.Context, func(), cli.ExitCoder) {
	cfg, err := GetConfigFromContext(ctx)
	if err != nil {
		return cfg, nil, nil, nil, cli.NewExitError(err, 1)
	}
	log, _, err := HandleLoggingParams(ctx.Bool("debug"), cfg.Logger)
	if err != nil {
		return cfg, nil, nil, nil, cli.NewExitError(err, 1)
	}
	gctx, cancel := GetTimeoutContext(ctx)
	return cfg, log, gctx, func() {
		cancel()
		_ = log.Sync()
	}, nil
}

// GetCaller returns the account queries are made on behalf of: the one given
// with the --caller flag, the one of the signing key or keystore (it's not
// decrypted) or the zero account if there is nothing configured.
func GetCaller(ctx *cli.Context, cfg config.Wallet) (util.Uint160, error) {
	if caller := flags.Get(ctx, "caller"); caller.IsSet {
		return caller.Value, nil
	}
	if hexKey := strings.TrimSpace(os.Getenv(PrivateKeyEnv)); hexKey != "" {
		acc, err := wallet.NewAccountFromHex(hexKey)
		if err != nil {
			return util.Uint160{}, errInvalidKey
		}
		defer acc.Close()
		return acc.AccountID(), nil
	}
	if cfg.Path != "" {
		acc, err := wallet.NewAccountFromFile(cfg.Path)
		if err != nil {
			return util.Uint160{}, err
		}
		return acc.AccountID(), nil
	}
	return util.Uint160{}, nil
}
