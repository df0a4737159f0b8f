package wallet

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli"
	"github.com/vne-network/priceoracle-go/cli/flags"
	"github.com/vne-network/priceoracle-go/cli/input"
	"github.com/vne-network/priceoracle-go/cli/options"
	"github.com/vne-network/priceoracle-go/pkg/config"
	"github.com/vne-network/priceoracle-go/pkg/encoding/address"
	"github.com/vne-network/priceoracle-go/pkg/wallet"
)

var (
	errNoPath    = errors.New("keystore path is mandatory and should be passed using (--wallet, -w) flags")
	errFileExist = errors.New("keystore file already exists")
)

var (
	walletPathFlag = cli.StringFlag{
		Name:  "wallet, w",
		Usage: "Target location of the keystore file",
	}
	scryptNFlag = cli.IntFlag{
		Name:   "scrypt-n",
		Value:  wallet.NewScryptParams().N,
		Usage:  "scrypt CPU/memory cost parameter",
		Hidden: true,
	}
)

// NewCommands returns 'wallet' command.
func NewCommands() []cli.Command {
	return []cli.Command{{
		Name:  "wallet",
		Usage: "create and inspect the signing key",
		Subcommands: []cli.Command{
			{
				Name:  "init",
				Usage: "create a new key and store it into an encrypted keystore",
				Description: `Generates a new secp256k1 key and saves it into an Ethereum v3 (scrypt)
   keystore file encrypted with the password entered. With '--import' the
   hex-encoded key is read from ` + options.PrivateKeyEnv + ` instead.`,
				Action: initWallet,
				Flags: flags.MarkRequired([]cli.Flag{
					walletPathFlag,
					cli.BoolFlag{
						Name:  "import",
						Usage: "encrypt the key from " + options.PrivateKeyEnv,
					},
					scryptNFlag,
				}, "wallet"),
			},
			{
				Name:  "address",
				Usage: "print the address of the signing account",
				Description: `Prints the address of the key from ` + options.PrivateKeyEnv + ` if it's
   set or the one of the keystore given, the keystore is not decrypted.`,
				Action: printAddress,
				Flags:  append([]cli.Flag{options.Wallet}, options.Config...),
			},
		},
	}}
}

func initWallet(ctx *cli.Context) error {
	path := ctx.String("wallet")
	if len(path) == 0 {
		return cli.NewExitError(errNoPath, 1)
	}
	if _, err := os.Stat(path); err == nil {
		return cli.NewExitError(fmt.Errorf("%w: %s", errFileExist, path), 1)
	}
	var (
		acc *wallet.Account
		err error
	)
	if ctx.Bool("import") {
		acc, err = options.GetAccount(config.Wallet{})
	} else {
		acc, err = wallet.NewAccount()
	}
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer acc.Close()

	pass, err := input.ConfirmPassword("Enter password > ")
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	params := wallet.NewScryptParams()
	params.N = ctx.Int("scrypt-n")
	if err := acc.Encrypt(pass, params); err != nil {
		return cli.NewExitError(err, 1)
	}
	if err := acc.Save(path); err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, acc.Address)
	return nil
}

func printAddress(ctx *cli.Context) error {
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if cfg.Wallet.Path == "" && os.Getenv(options.PrivateKeyEnv) == "" {
		return cli.NewExitError(errNoPath, 1)
	}
	addr, err := options.GetCaller(ctx, cfg.Wallet)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, address.Uint160ToString(addr))
	return nil
}
