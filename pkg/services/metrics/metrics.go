package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/vne-network/priceoracle-go/pkg/config"
	"go.uber.org/zap"
)

// Service serves metrics.
type Service struct {
	*http.Server
	config      config.BasicService
	log         *zap.Logger
	serviceType string
}

// NewService creates a new Service with the given handler. Nil is returned
// if there is no logger.
func NewService(name string, handler http.Handler, cfg config.BasicService, log *zap.Logger) *Service {
	if log == nil {
		return nil
	}
	return &Service{
		Server: &http.Server{
			Addr:    cfg.FormatAddress(),
			Handler: handler,
		},
		config:      cfg,
		serviceType: name,
		log:         log.With(zap.String("service", name)),
	}
}

// Name returns the service name.
func (ms *Service) Name() string {
	return ms.serviceType
}

// Start runs http service with the exposed endpoint on the configured port.
// It blocks until the service is shut down.
func (ms *Service) Start() {
	if ms.config.Enabled {
		ms.log.Info("service is running", zap.String("endpoint", ms.Addr))
		err := ms.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			ms.log.Warn("service couldn't start on configured port", zap.Error(err))
		}
	} else {
		ms.log.Info("service hasn't started since it's disabled")
	}
}

// ShutDown stops the service.
func (ms *Service) ShutDown() {
	if !ms.config.Enabled {
		return
	}
	ms.log.Info("shutting down service", zap.String("endpoint", ms.Addr))
	err := ms.Shutdown(context.Background())
	if err != nil {
		ms.log.Error("can't shut service down", zap.Error(err))
	}
}
