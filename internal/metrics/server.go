package metrics

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/iyhunko/product-catalog/internal/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewServer returns the metrics HTTP server exposing /metrics.
func NewServer(conf *config.Config) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              ":" + conf.MetricsServer.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// StartMetricsServer starts the metrics HTTP server in a goroutine and returns it
// so the caller can shut it down.
func StartMetricsServer(conf *config.Config) *http.Server {
	metricsServer := NewServer(conf)
	go func() {
		slog.Info("Metrics server starting", slog.String("port", conf.MetricsServer.Port))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("error while listening to metrics requests", slog.Any("err", err))
		}
	}()
	return metricsServer
}
