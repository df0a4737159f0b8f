package metrics

import (
	"net/http"
	"net/http/pprof"

	"github.com/vne-network/priceoracle-go/pkg/config"
	"go.uber.org/zap"
)

// pprofRoutes are the profiling endpoints served, named profiles (heap,
// goroutine, etc) are served by the index.
var pprofRoutes = map[string]http.HandlerFunc{
	"/debug/pprof/":        pprof.Index,
	"/debug/pprof/cmdline": pprof.Cmdline,
	"/debug/pprof/profile": pprof.Profile,
	"/debug/pprof/symbol":  pprof.Symbol,
	"/debug/pprof/trace":   pprof.Trace,
}

// NewPprofService creates a service profiling the console session, see
// https://golang.org/pkg/net/http/pprof/.
func NewPprofService(cfg config.BasicService, log *zap.Logger) *Service {
	mux := http.NewServeMux()
	for path, h := range pprofRoutes {
		mux.HandleFunc(path, h)
	}
	return NewService("Pprof", mux, cfg, log)
}
