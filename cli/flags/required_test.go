package flags

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

func TestMarkRequired(t *testing.T) {
	fs := []cli.Flag{
		cli.StringFlag{Name: "wallet, w"},
		cli.IntFlag{Name: "scrypt-n"},
		cli.BoolFlag{Name: "import"},
		cli.DurationFlag{Name: "timeout, s"},
	}
	res := MarkRequired(fs, "w", "scrypt-n", "timeout")
	require.Len(t, res, len(fs))
	require.True(t, res[0].(cli.StringFlag).Required)
	require.True(t, res[1].(cli.IntFlag).Required)
	require.False(t, res[2].(cli.BoolFlag).Required)
	require.Equal(t, fs[3], res[3])

	// The original set is not changed.
	require.False(t, fs[0].(cli.StringFlag).Required)

	app := cli.NewApp()
	app.Writer = io.Discard
	app.Flags = MarkRequired([]cli.Flag{cli.StringFlag{Name: "wallet, w"}}, "wallet")
	app.Action = func(*cli.Context) error { return nil }
	require.Error(t, app.Run([]string{"test"}))
	require.NoError(t, app.Run([]string{"test", "-w", "key.json"}))
}

func TestSplitName(t *testing.T) {
	require.Equal(t, []string{"wallet", "w"}, splitName("wallet, w"))
	require.Equal(t, []string{"caller"}, splitName("caller"))
}
