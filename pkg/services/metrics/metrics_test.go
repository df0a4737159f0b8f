package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/vne-network/priceoracle-go/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestNilLogger(t *testing.T) {
	require.Nil(t, NewPrometheusService(config.BasicService{Enabled: true}, nil))
}

func TestPrometheusHandler(t *testing.T) {
	s := NewPrometheusService(config.BasicService{Enabled: true, Address: "localhost", Port: 2112}, zaptest.NewLogger(t))
	require.Equal(t, "Prometheus", s.Name())
	require.Equal(t, "localhost:2112", s.Addr)

	srv := httptest.NewServer(s.Handler)
	t.Cleanup(srv.Close)
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), "go_goroutines"))
}

func TestPprofHandler(t *testing.T) {
	s := NewPprofService(config.BasicService{Enabled: true}, zap.NewNop())
	srv := httptest.NewServer(s.Handler)
	t.Cleanup(srv.Close)
	resp, err := http.Get(srv.URL + "/debug/pprof/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDisabled(t *testing.T) {
	s := NewPrometheusService(config.BasicService{}, zap.NewNop())
	s.Start() // Returns immediately.
	s.ShutDown()
}

func TestStartShutDown(t *testing.T) {
	s := NewPrometheusService(config.BasicService{Enabled: true, Address: "127.0.0.1", Port: 0}, zaptest.NewLogger(t))
	done := make(chan struct{})
	go func() {
		s.Start()
		close(done)
	}()
	require.Eventually(t, func() bool {
		s.ShutDown()
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
}

func TestGathererService(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Namespace: "priceoracle", Name: "test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	s := NewGathererService(config.BasicService{Enabled: true}, reg, zaptest.NewLogger(t))
	srv := httptest.NewServer(s.Handler)
	t.Cleanup(srv.Close)
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "priceoracle_test_total 1")
	require.NotContains(t, string(body), "go_goroutines")

	require.Nil(t, NewGathererService(config.BasicService{}, reg, nil))
}

func TestPprofRoutes(t *testing.T) {
	s := NewPprofService(config.BasicService{Enabled: true}, zap.NewNop())
	srv := httptest.NewServer(s.Handler)
	t.Cleanup(srv.Close)
	resp, err := http.Get(srv.URL + "/debug/pprof/cmdline")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
