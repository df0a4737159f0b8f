package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vne-network/priceoracle-go/pkg/config"
	"go.uber.org/zap"
)

// NewPrometheusService creates a service exposing RPC client metrics
// (request durations and active subscriptions) registered in the default
// prometheus registry, see https://prometheus.io/docs/guides/go-application.
func NewPrometheusService(cfg config.BasicService, log *zap.Logger) *Service {
	return NewGathererService(cfg, prometheus.DefaultGatherer, log)
}

// NewGathererService creates a prometheus service for the given gatherer.
// Collection errors are logged, metrics that were gathered are still served.
func NewGathererService(cfg config.BasicService, g prometheus.Gatherer, log *zap.Logger) *Service {
	if log == nil {
		return nil
	}
	handler := promhttp.HandlerFor(g, promhttp.HandlerOpts{
		ErrorLog:      zap.NewStdLog(log.Named("prometheus")),
		ErrorHandling: promhttp.ContinueOnError,
	})
	return NewService("Prometheus", handler, cfg, log)
}
