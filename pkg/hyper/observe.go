package hyper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Request outcomes recorded by the observer.
const (
	outcomeOK    = "ok"
	outcomeNotOK = "not_ok"
	outcomeFatal = "fatal"
	outcomeError = "error"
)

type clientMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newClientMetrics(reg prometheus.Registerer) (*clientMetrics, error) {
	m := &clientMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hyper",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Hyper requests by service, operation and outcome.",
		}, []string{"service", "operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hyper",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Hyper request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "operation"}),
	}
	if err := registerOrReuse(reg, &m.requests); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers c, or swaps in the collector already registered
// under the same name so several clients can share one registry.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("hyper: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("hyper: register metric: %w", err)
	}
	return nil
}

type observer struct {
	logger  *slog.Logger
	metrics *clientMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newClientMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

func (o *observer) observe(ctx context.Context, req LogicalRequest, op string, start time.Time, status int, outcome string, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	svc := string(req.Service)

	if o.metrics != nil {
		o.metrics.requests.WithLabelValues(svc, op, outcome).Inc()
		o.metrics.duration.WithLabelValues(svc, op).Observe(dur.Seconds())
	}

	attrs := []slog.Attr{
		slog.String("service", svc),
		slog.String("operation", op),
		slog.String("method", req.Method),
		slog.String("path", requestPath(req)),
		slog.String("outcome", outcome),
		slog.Int64("duration_ms", dur.Milliseconds()),
	}
	if status != 0 {
		attrs = append(attrs, slog.Int("status", status))
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		o.log().LogAttrs(ctx, slog.LevelWarn, "hyper request failed", attrs...)
		return
	}
	o.log().LogAttrs(ctx, slog.LevelDebug, "hyper request completed", attrs...)
}

func (o *observer) log() *slog.Logger {
	if o.logger != nil {
		return o.logger
	}
	return slog.Default()
}

// requestPath is the service-relative path of a request, for logs. It never
// contains credentials.
func requestPath(req LogicalRequest) string {
	p := "/" + string(req.Service)
	switch {
	case req.Resource != "":
		p += "/" + url.PathEscape(req.Resource)
	case req.Action != "":
		p += "/" + string(req.Action)
	}
	return p
}
