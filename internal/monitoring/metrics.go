package monitoring

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"phone_sales/internal/sales"
)

var (
	StorageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sales_storage_operation_duration_seconds",
			Help:    "Duration of storage operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"backend", "operation"},
	)

	StorageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_storage_operations_total",
			Help: "Total number of storage operations by outcome",
		},
		[]string{"backend", "operation", "result"},
	)

	SalesCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_created_total",
			Help: "Total number of sales created per channel",
		},
		[]string{"channel"},
	)

	PhonesSoldTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_phones_sold_total",
			Help: "Total number of phones sold per channel",
		},
		[]string{"channel"},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// TimeStorageOperation returns a func that observes the elapsed time when called.
func TimeStorageOperation(backend, operation string) func() {
	start := time.Now()
	return func() {
		StorageOperationDuration.WithLabelValues(backend, operation).Observe(time.Since(start).Seconds())
	}
}

// RecordStorageResult counts one operation under a coarse outcome label.
func RecordStorageResult(backend, operation string, err error) {
	StorageOperationsTotal.WithLabelValues(backend, operation, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, sales.ErrNotFound):
		return "not_found"
	case errors.Is(err, sales.ErrDuplicateKey):
		return "duplicate"
	case errors.Is(err, sales.ErrUnknownField):
		return "unknown_field"
	case errors.Is(err, sales.ErrValidation):
		return "invalid"
	case errors.Is(err, sales.ErrUnknownVariant):
		return "unknown_variant"
	}
	return "error"
}

// RecordSaleCreated updates the business counters.
func RecordSaleCreated(sale sales.Sale) {
	SalesCreatedTotal.WithLabelValues(string(sale.Channel)).Inc()
	PhonesSoldTotal.WithLabelValues(string(sale.Channel)).Add(float64(sale.Quantity))
}
