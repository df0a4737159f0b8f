package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
	"github.com/vne-network/priceoracle-go/cli/app"
	"github.com/vne-network/priceoracle-go/cli/input"
	"github.com/vne-network/priceoracle-go/internal/testchain"
	"github.com/vne-network/priceoracle-go/internal/testnode"
	"github.com/vne-network/priceoracle-go/pkg/encoding/address"
	"golang.org/x/term"
)

var (
	ownerAddr    = address.Uint160ToString(testchain.AccountID(0))
	contractAddr = address.Uint160ToString(testchain.ContractAddress())
)

// executor represents context for a test instance.
// It can be safely used in multiple tests, but not in parallel.
type executor struct {
	// CLI is a cli application to test.
	CLI *cli.App
	// Node is a scripted RPC node to query (can be empty).
	Node *testnode.Node
	// Config is a path to the configuration file using Node.
	Config string
	// Out contains command output.
	Out *bytes.Buffer
	// Err contains command errors.
	Err *bytes.Buffer
	// In contains command input.
	In *bytes.Buffer
}

func newExecutor(t *testing.T, needNode bool) *executor {
	e := &executor{
		CLI: app.New(),
		Out: bytes.NewBuffer(nil),
		Err: bytes.NewBuffer(nil),
		In:  bytes.NewBuffer(nil),
	}
	e.CLI.Writer = e.Out
	e.CLI.ErrWriter = e.Err
	if needNode {
		e.Node = testnode.New(t)
		e.Config = writeConfig(t, e.Node.URL())
	}
	t.Cleanup(func() {
		e.Close(t)
	})
	return e
}

// writeConfig creates a configuration with limits, metadata and a temporary
// deployment registry.
func writeConfig(t *testing.T, endpoint string) string {
	dir := t.TempDir()
	cfg := fmt.Sprintf(`RPC:
  Endpoint: %q
Limits:
  RefTime: 1000000000
  ProofSize: 100000
Contract:
  Metadata: %q
Deployments:
  FilePath: %q
Logger:
  LogLevel: error
`, endpoint, testchain.ManifestPath(), filepath.Join(dir, "deployments.db"))
	path := filepath.Join(dir, "priceoracle.yml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func (e *executor) Close(t *testing.T) {
	input.Terminal = nil
}

func (e *executor) getNextLine(t *testing.T) string {
	line, err := e.Out.ReadString('\n')
	require.NoError(t, err)
	return strings.TrimSuffix(line, "\n")
}

func (e *executor) checkNextLine(t *testing.T, expected string) {
	line := e.getNextLine(t)
	e.checkLine(t, line, expected)
}

func (e *executor) checkLine(t *testing.T, line, expected string) {
	require.Regexp(t, expected, line)
}

func (e *executor) checkEOF(t *testing.T) {
	_, err := e.Out.ReadString('\n')
	require.True(t, errors.Is(err, io.EOF))
}

func setExitFunc() <-chan int {
	ch := make(chan int, 1)
	cli.OsExiter = func(code int) {
		ch <- code
	}
	return ch
}

func checkExit(t *testing.T, ch <-chan int, code int) {
	select {
	case c := <-ch:
		require.Equal(t, code, c)
	default:
		if code != 0 {
			require.Fail(t, "no exit was called")
		}
	}
}

// RunWithError runs command and checks that is exits with error.
func (e *executor) RunWithError(t *testing.T, args ...string) {
	ch := setExitFunc()
	require.Error(t, e.run(args...))
	checkExit(t, ch, 1)
}

// Run runs command and checks that there were no errors.
func (e *executor) Run(t *testing.T, args ...string) {
	ch := setExitFunc()
	require.NoError(t, e.run(args...))
	checkExit(t, ch, 0)
}

func (e *executor) run(args ...string) error {
	e.Out.Reset()
	e.Err.Reset()
	input.Terminal = term.NewTerminal(input.ReadWriter{
		Reader: e.In,
		Writer: io.Discard,
	}, "")
	err := e.CLI.Run(args)
	input.Terminal = nil
	e.In.Reset()
	return err
}
