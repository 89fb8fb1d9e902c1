package monitoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phone_sales/internal/sales"
	"phone_sales/internal/storage/storagetest"
)

func TestInstrumentedStorage_Contract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) sales.Storage {
		return InstrumentStorage("memory_contract", sales.NewLocalStorage())
	})
}

func TestInstrumentedStorage_Counters(t *testing.T) {
	ctx := context.Background()
	st := InstrumentStorage("memory", sales.NewLocalStorage())

	sale := storagetest.MustSale(t, sales.ChannelLocal, "1234567", "2024-01-01", "Perez Juan", "3")
	createdBefore := testutil.ToFloat64(SalesCreatedTotal.WithLabelValues("local"))
	phonesBefore := testutil.ToFloat64(PhonesSoldTotal.WithLabelValues("local"))

	require.NoError(t, st.Create(ctx, sale))
	assert.ErrorIs(t, st.Create(ctx, sale), sales.ErrDuplicateKey)
	_, err := st.Read(ctx, 7654321)
	assert.ErrorIs(t, err, sales.ErrNotFound)

	assert.Equal(t, 1.0, testutil.ToFloat64(StorageOperationsTotal.WithLabelValues("memory", "create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(StorageOperationsTotal.WithLabelValues("memory", "create", "duplicate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(StorageOperationsTotal.WithLabelValues("memory", "read", "not_found")))
	assert.Equal(t, createdBefore+1, testutil.ToFloat64(SalesCreatedTotal.WithLabelValues("local")))
	assert.Equal(t, phonesBefore+3, testutil.ToFloat64(PhonesSoldTotal.WithLabelValues("local")))
}

func TestResultLabel(t *testing.T) {
	assert.Equal(t, "ok", resultLabel(nil))
	assert.Equal(t, "unknown_field", resultLabel(&sales.UnknownFieldError{Field: "x"}))
	assert.Equal(t, "invalid", resultLabel(&sales.ValidationError{Field: "dni"}))
	assert.Equal(t, "error", resultLabel(sales.NewStorageError("file", "write", assert.AnError)))
}

func TestHandler(t *testing.T) {
	StorageOperationsTotal.WithLabelValues("memory", "list", "ok").Add(0)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sales_storage_operations_total")
}
