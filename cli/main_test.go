package main

import (
	"testing"

	"github.com/vne-network/priceoracle-go/pkg/config"
)

func TestCLIVersion(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		e := newExecutor(t, false)
		e.Run(t, "priceoracle", "--version")
		e.checkNextLine(t, "^PriceOracle$")
		e.checkNextLine(t, "^Version: dev$")
		e.checkNextLine(t, "^GoVersion: go")
		e.checkEOF(t)
	})
	t.Run("set", func(t *testing.T) {
		config.Version = "0.1.0-test"
		t.Cleanup(func() { config.Version = "dev" })
		e := newExecutor(t, false)
		e.Run(t, "priceoracle", "-v")
		e.checkNextLine(t, "^PriceOracle$")
		e.checkNextLine(t, "^Version: 0.1.0-test$")
		e.checkNextLine(t, "^GoVersion: go")
		e.checkEOF(t)
	})
}
