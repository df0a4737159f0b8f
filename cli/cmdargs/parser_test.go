package cmdargs

import (
	"os"
	"path/filepath"
	"testing"

	json "github.com/nspcc-dev/go-ordered-json"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	t.Run("scalars", func(t *testing.T) {
		res, err := ParseParams([]string{"alice", "42", `"42"`, "true", "null", "0x01ff"})
		require.NoError(t, err)
		require.Equal(t, []any{"alice", json.Number("42"), "42", true, nil, "0x01ff"}, res)
	})
	t.Run("arrays", func(t *testing.T) {
		res, err := ParseParams([]string{"[", "a", "[", "1", "]", "]", "b"})
		require.NoError(t, err)
		require.Equal(t, []any{[]any{"a", []any{json.Number("1")}}, "b"}, res)

		res, err = ParseParams([]string{"[", "]"})
		require.NoError(t, err)
		require.Equal(t, []any{[]any{}}, res)
	})
	t.Run("json", func(t *testing.T) {
		res, err := ParseParams([]string{`{"Some":5}`, `["a","b"]`})
		require.NoError(t, err)
		require.Equal(t, []any{
			json.OrderedObject{{Key: "Some", Value: json.Number("5")}},
			[]any{"a", "b"},
		}, res)
	})
	t.Run("filebytes", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data.bin")
		require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o600))
		res, err := ParseParams([]string{FileBytesPrefix + path})
		require.NoError(t, err)
		require.Equal(t, []any{[]byte{1, 2, 3}}, res)

		_, err = ParseParams([]string{FileBytesPrefix + filepath.Join(t.TempDir(), "missing")})
		require.Error(t, err)
	})
	t.Run("bad brackets", func(t *testing.T) {
		for _, args := range [][]string{
			{"["},
			{"]"},
			{"[", "a"},
			{"a", "]", "["},
			{"[", "[", "]"},
		} {
			_, err := ParseParams(args)
			require.Error(t, err, args)
		}
	})
}
