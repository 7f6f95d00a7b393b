package metrics

import (
	"errors"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"

	"github.com/dshills/ansistr/internal/engine/buffer"
)

// Operation results used as the "result" label.
const (
	ResultOK       = "ok"
	ResultBenign   = "benign"
	ResultCanceled = "canceled"
	ResultError    = "error"
)

// Observer implements buffer.Observer on top of Prometheus collectors.
// It is safe for concurrent use.
type Observer struct {
	ops      *prometheus.CounterVec
	grows    *prometheus.CounterVec
	capacity prometheus.Histogram
}

// NewObserver creates an observer and registers its collectors with reg.
func NewObserver(reg prometheus.Registerer) *Observer {
	f := promauto.With(reg)
	return &Observer{
		ops: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ansistr",
				Subsystem: "buffer",
				Name:      "operations_total",
				Help:      "Total number of buffer operations by outcome",
			},
			[]string{"op", "result"},
		),
		grows: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ansistr",
				Subsystem: "buffer",
				Name:      "grows_total",
				Help:      "Total number of storage reallocations by resulting mode",
			},
			[]string{"mode"},
		),
		capacity: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "ansistr",
				Subsystem: "buffer",
				Name:      "grown_capacity_bytes",
				Help:      "Capacity after each reallocation",
				Buckets:   prometheus.ExponentialBuckets(64, 4, 10),
			},
		),
	}
}

// Operation implements buffer.Observer.
func (o *Observer) Operation(op string, err error) {
	o.ops.WithLabelValues(op, Result(err)).Inc()
}

// Grew implements buffer.Observer.
func (o *Observer) Grew(from, to int, mode buffer.Mode) {
	o.grows.WithLabelValues(mode.String()).Inc()
	o.capacity.Observe(float64(to))
}

// Result classifies an operation error for the result label.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, buffer.ErrCanceled):
		return ResultCanceled
	case buffer.IsBenign(err):
		return ResultBenign
	default:
		return ResultError
	}
}

// Dump writes every metric family gathered from g in text format.
func Dump(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
