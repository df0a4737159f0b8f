package app

import (
	"fmt"
	"os"
	"runtime"

	"github.com/urfave/cli"
	"github.com/vne-network/priceoracle-go/cli/console"
	"github.com/vne-network/priceoracle-go/cli/oracle"
	"github.com/vne-network/priceoracle-go/cli/smartcontract"
	"github.com/vne-network/priceoracle-go/cli/wallet"
	"github.com/vne-network/priceoracle-go/pkg/config"
)

func versionPrinter(c *cli.Context) {
	_, _ = fmt.Fprintf(c.App.Writer, "PriceOracle\nVersion: %s\nGoVersion: %s\n",
		config.Version,
		runtime.Version(),
	)
}

// New creates a price oracle client instance of [cli.App] with all commands
// included.
func New() *cli.App {
	cli.VersionPrinter = versionPrinter
	ctl := cli.NewApp()
	ctl.Name = "priceoracle"
	ctl.Version = config.Version
	ctl.Usage = "Price oracle contract client"
	ctl.ErrWriter = os.Stdout

	var cmds []cli.Command
	cmds = append(cmds, smartcontract.NewCommands()...)
	cmds = append(cmds, oracle.NewCommands()...)
	cmds = append(cmds, wallet.NewCommands()...)
	ctl.Commands = append(cmds, console.NewCommands(cmds)...)
	return ctl
}
