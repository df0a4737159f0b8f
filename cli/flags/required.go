package flags

import (
	"github.com/urfave/cli"
)

// MarkRequired returns a copy of the flag set with the named flags made
// required. A flag is matched by any of its names, flags of other types than
// string, int and bool are left as is.
func MarkRequired(flagSet []cli.Flag, names ...string) []cli.Flag {
	res := make([]cli.Flag, len(flagSet))
	for i, f := range flagSet {
		res[i] = f
		if !matchName(f.GetName(), names) {
			continue
		}
		switch f := f.(type) {
		case cli.StringFlag:
			f.Required = true
			res[i] = f
		case cli.IntFlag:
			f.Required = true
			res[i] = f
		case cli.BoolFlag:
			f.Required = true
			res[i] = f
		}
	}
	return res
}

func matchName(name string, names []string) bool {
	for _, n := range splitName(name) {
		for _, want := range names {
			if n == want {
				return true
			}
		}
	}
	return false
}
