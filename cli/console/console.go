/*
Package console implements an interactive shell running price oracle client
commands.
*/
package console

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/urfave/cli"
	"github.com/vne-network/priceoracle-go/cli/options"
	"github.com/vne-network/priceoracle-go/pkg/config"
	"github.com/vne-network/priceoracle-go/pkg/services/metrics"
	"go.uber.org/zap"
)

const prompt = "priceoracle> "

// Shell reads commands line by line and executes them.
type Shell struct {
	rl    *readline.Instance
	shell *cli.App
	done  bool
}

// NewCommands returns 'console' command running the given commands.
func NewCommands(cmds []cli.Command) []cli.Command {
	return []cli.Command{{
		Name:  "console",
		Usage: "start an interactive shell",
		Description: `Runs contract, oracle and wallet commands typed line by line, 'exit'
   leaves the shell. Prometheus and pprof services are started along with it
   if they're enabled in the configuration.`,
		Action: func(ctx *cli.Context) error {
			return startConsole(ctx, cmds)
		},
		Flags: options.Config,
	}}
}

func startConsole(ctx *cli.Context, cmds []cli.Command) error {
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	log, _, err := options.HandleLoggingParams(ctx.Bool("debug"), cfg.Logger)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer func() { _ = log.Sync() }()

	services := startServices(cfg, log)
	defer func() {
		for _, s := range services {
			s.ShutDown()
		}
	}()

	sh, err := New(&readline.Config{
		Prompt: prompt,
		Stdout: ctx.App.Writer,
		Stderr: ctx.App.ErrWriter,
	}, cmds)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer sh.Close()
	return sh.Run()
}

func startServices(cfg config.Config, log *zap.Logger) []*metrics.Service {
	res := []*metrics.Service{
		metrics.NewPrometheusService(cfg.Prometheus, log),
		metrics.NewPprofService(cfg.Pprof, log),
	}
	for _, s := range res {
		go s.Start()
	}
	return res
}

// New creates a shell reading lines with the given configuration.
func New(c *readline.Config, cmds []cli.Command) (*Shell, error) {
	if c.AutoComplete == nil {
		c.AutoComplete = completer(cmds)
	}
	l, err := readline.NewEx(c)
	if err != nil {
		return nil, fmt.Errorf("failed to create readline instance: %w", err)
	}
	sh := &Shell{rl: l}

	ctl := cli.NewApp()
	ctl.Name = ""
	ctl.HelpName = ""
	ctl.UsageText = ""
	ctl.Usage = "price oracle shell"
	ctl.Version = config.Version
	ctl.Writer = l.Stdout()
	ctl.ErrWriter = l.Stderr()
	// Errors are printed by Run, the shell keeps going.
	ctl.ExitErrHandler = func(*cli.Context, error) {}
	ctl.Commands = append(append([]cli.Command{}, cmds...), cli.Command{
		Name:    "exit",
		Aliases: []string{"quit"},
		Usage:   "leave the shell",
		Action: func(ctx *cli.Context) error {
			fmt.Fprintln(ctx.App.Writer, "Bye!")
			sh.done = true
			return nil
		},
	})
	sh.shell = ctl
	return sh, nil
}

func completer(cmds []cli.Command) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, c := range cmds {
		if c.Hidden {
			continue
		}
		var sub []readline.PrefixCompleterInterface
		for _, s := range c.Subcommands {
			var flagItems []readline.PrefixCompleterInterface
			for _, f := range s.Flags {
				name := strings.SplitN(f.GetName(), ", ", 2)[0] // Long name only.
				flagItems = append(flagItems, readline.PcItem("--"+name))
			}
			sub = append(sub, readline.PcItem(s.Name, flagItems...))
		}
		items = append(items, readline.PcItem(c.Name, sub...))
	}
	items = append(items, readline.PcItem("exit"))
	return readline.NewPrefixCompleter(items...)
}

// Run executes commands until 'exit', EOF or interrupt.
func (s *Shell) Run() error {
	for !s.done {
		line, err := s.rl.Readline()
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		args, err := shellquote.Split(line)
		if err != nil {
			writeErr(s.shell.ErrWriter, fmt.Errorf("failed to parse arguments: %w", err))
			continue
		}
		if len(args) == 0 {
			continue
		}
		if err := s.shell.Run(append([]string{"priceoracle"}, args...)); err != nil {
			writeErr(s.shell.ErrWriter, err)
		}
	}
	return nil
}

// Close releases the terminal.
func (s *Shell) Close() error {
	return s.rl.Close()
}

func writeErr(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %s\n", err)
}
