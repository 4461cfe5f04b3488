package resource

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

type metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	operations, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rest_layer",
		Subsystem: "resource",
		Name:      "operations_total",
		Help:      "Number of service operations by operation, record type and status.",
	}, []string{"operation", "type", "status"}))
	if err != nil {
		return nil, err
	}
	duration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "rest_layer",
		Subsystem: "resource",
		Name:      "operation_duration_seconds",
		Help:      "Duration of service operations by operation and record type.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "type"}))
	if err != nil {
		return nil, err
	}
	return &metrics{operations: operations, duration: duration}, nil
}

// register registers c on reg, reusing the collector already registered
// under the same description if any.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func status(err error) string {
	if err == nil {
		return "ok"
	}
	return KindOf(err).String()
}

// trace logs and measures a service operation.
func (s *Service) trace(ctx context.Context, op, typeName string, start time.Time, err error) {
	d := time.Since(start)
	if s.metrics != nil {
		s.metrics.operations.WithLabelValues(op, typeName, status(err)).Inc()
		s.metrics.duration.WithLabelValues(op, typeName).Observe(d.Seconds())
	}
	zerolog.Ctx(ctx).Debug().
		Str("operation", op).
		Str("type", typeName).
		Dur("duration", d).
		Err(err).
		Msgf("resource.%s(%s)", op, typeName)
}
