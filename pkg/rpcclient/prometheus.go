package rpcclient

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vne-network/priceoracle-go/pkg/chainrpc"
)

// Metrics of the RPC client.
var (
	rpcCounter = map[string]prometheus.Counter{}
	rpcTimes   = map[string]prometheus.Histogram{}

	activeSubscriptions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Help:      "Number of active extrinsic status subscriptions",
			Name:      "active_subscriptions",
			Namespace: "priceoracle",
			Subsystem: "rpcclient",
		},
	)
)

func addReqTimeMetric(name string, t time.Duration) {
	hist, ok := rpcTimes[name]
	if ok {
		hist.Observe(t.Seconds())
	}
	ctr, ok := rpcCounter[name]
	if ok {
		ctr.Inc()
	}
}

func regCounter(call string) {
	ctr := prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of " + call + " requests sent",
			Name:      call + "_requests",
			Namespace: "priceoracle",
			Subsystem: "rpcclient",
		},
	)
	prometheus.MustRegister(ctr)
	rpcCounter[call] = ctr
	rpcTimes[call] = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Help:      "RPC " + call + " round trip time",
			Name:      call + "_time",
			Namespace: "priceoracle",
			Subsystem: "rpcclient",
		},
	)
	prometheus.MustRegister(rpcTimes[call])
}

func init() {
	for _, call := range []string{
		chainrpc.ChainGetBlockHash,
		chainrpc.ChainGetBlock,
		chainrpc.StateGetRuntimeVersion,
		chainrpc.StateGetMetadata,
		chainrpc.StateGetStorage,
		chainrpc.StateCall,
		chainrpc.SystemAccountNextIndex,
		chainrpc.SystemChain,
		chainrpc.AuthorSubmitAndWatch,
		chainrpc.AuthorUnwatchExtrinsic,
	} {
		regCounter(call)
	}
	prometheus.MustRegister(activeSubscriptions)
}
