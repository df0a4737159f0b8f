/*
Package cmdargs contains helpers to parse positional command arguments.
*/
package cmdargs

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli"
	"github.com/vne-network/priceoracle-go/pkg/scale"
)

const (
	// ArrayStartSeparator marks the start of array cli arg.
	ArrayStartSeparator = "["
	// ArrayEndSeparator marks the end of array cli arg.
	ArrayEndSeparator = "]"
	// FileBytesPrefix marks an argument read from a file as raw bytes.
	FileBytesPrefix = "filebytes:"
)

const (
	// ParamsParsingDoc is a documentation for parameters parsing.
	ParamsParsingDoc = `   Arguments are converted to the types the contract metadata specifies for
   the message, so they don't need explicit typing. Each argument is parsed
   as JSON if it's valid JSON and is taken as a plain string otherwise:
    * integers are decimal numbers (any size up to the declared type) or
      0x-prefixed hex strings;
    * 'true' and 'false' are booleans;
    * strings are given as is, quote them ('"42"') if they look like numbers
      or other JSON values;
    * account addresses and byte arrays are 0x-prefixed hex strings;
    * 'null' is Option::None, any other value for an Option type is Some;
    * enum variants are their names ('"Variant"') or single-key objects
      ('{"Variant": value}');
    * structs are JSON objects with field names as keys, tuples are JSON
      arrays.

   Vectors and arrays are either JSON arrays or space-separated '[' and ']'
   symbols around element values (each parsed by the same rules). Nested
   arrays are supported.

   Raw bytes can be read from a file using 'filebytes:' prefix with a file
   path after the colon, e.g. 'filebytes:my_file.bin'.

   Examples:
    * '42' is a number
    * 'alice' and '"alice"' are both a string "alice"
    * '[ alice bob ]' and '["alice","bob"]' are both a vector of two strings
    * '{"Some": 5}' and '5' are both Some(5) for Option<u32>
`
)

// GetParamsFromContext returns the positional arguments starting with offset
// parsed as contract message arguments.
func GetParamsFromContext(ctx *cli.Context, offset int) ([]any, *cli.ExitError) {
	args := ctx.Args()
	if len(args) <= offset {
		return nil, nil
	}
	params, err := ParseParams(args[offset:])
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	return params, nil
}

// EnsureNone returns an error if there are any positional arguments present.
// It can be used to check for them in commands that don't accept arguments.
func EnsureNone(ctx *cli.Context) *cli.ExitError {
	if ctx.Args().Present() {
		return cli.NewExitError("additional arguments given while this command expects none", 1)
	}
	return nil
}

// ParseParams converts the given args into values accepted by the SCALE
// encoder, see ParamsParsingDoc.
func ParseParams(args []string) ([]any, error) {
	_, res, err := parseParams(args, true)
	return res, err
}

// parseParams returns the number of handled words and the values. Nested
// calls stop at the closing bracket.
func parseParams(args []string, top bool) (int, []any, error) {
	res := []any{}
	for k := 0; k < len(args); {
		s := args[k]
		switch {
		case s == ArrayStartSeparator:
			numWordsRead, array, err := parseParams(args[k+1:], false)
			if err != nil {
				return 0, nil, fmt.Errorf("failed to parse array: %w", err)
			}
			res = append(res, array)
			k += 1 + numWordsRead // `1` for opening bracket
		case s == ArrayEndSeparator:
			if top {
				return 0, nil, errors.New("invalid array syntax: missing opening bracket")
			}
			return k + 1, res, nil // `1` to convert index to numWordsRead
		case strings.HasPrefix(s, FileBytesPrefix):
			b, err := os.ReadFile(strings.TrimPrefix(s, FileBytesPrefix))
			if err != nil {
				return 0, nil, fmt.Errorf("failed to parse argument #%d: %w", k+1, err)
			}
			res = append(res, b)
			k++
		default:
			res = append(res, scale.ParseValue(s))
			k++
		}
	}
	if top {
		return len(args), res, nil
	}
	return 0, nil, errors.New("invalid array syntax: missing closing bracket")
}
