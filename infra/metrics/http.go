package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kilianp07/wrsn/infra/logger"
)

// StartPromServer serves the default registry on addr until ctx is
// canceled. routes are mounted next to /metrics.
func StartPromServer(ctx context.Context, addr string, routes map[string]http.Handler) error {
	return StartPromServerFor(ctx, addr, prometheus.DefaultGatherer, routes)
}

// StartPromServerFor serves g on addr/metrics until ctx is canceled. A
// dedicated ServeMux keeps handlers registered on the default one out.
func StartPromServerFor(ctx context.Context, addr string, g prometheus.Gatherer, routes map[string]http.Handler) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	for pattern, h := range routes {
		mux.Handle(pattern, h)
	}
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	log := logger.New("prom-server")
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("prom server shutdown: %v", err)
		}
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
