// Package metrics holds the Prometheus collectors for the HTTP surface and
// the store.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agenthands/playbill/internal/store"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playbill_http_requests_total",
		Help: "HTTP requests handled, by route and status",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "playbill_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	StoreTransactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playbill_store_transactions_total",
		Help: "Store transactions, by mode and outcome",
	}, []string{"mode", "outcome"})

	StoreDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "playbill_store_transaction_duration_seconds",
		Help:    "Store transaction latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records one request count and latency sample per request,
// labelled by the matched route pattern.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// InstrumentStore wraps s so every transaction is counted and timed.
func InstrumentStore(s store.Store) store.Store {
	return &instrumentedStore{next: s}
}

type instrumentedStore struct {
	next store.Store
}

func (s *instrumentedStore) Read(ctx context.Context, fn func(tx store.Tx) error) error {
	return observe("read", func() error { return s.next.Read(ctx, fn) })
}

func (s *instrumentedStore) Write(ctx context.Context, fn func(tx store.Tx) error) error {
	return observe("write", func() error { return s.next.Write(ctx, fn) })
}

func (s *instrumentedStore) Close(ctx context.Context) error {
	return s.next.Close(ctx)
}

func observe(mode string, run func() error) error {
	start := time.Now()
	err := run()
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	StoreTransactions.WithLabelValues(mode, outcome).Inc()
	StoreDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	return err
}
