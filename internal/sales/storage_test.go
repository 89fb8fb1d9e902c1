package sales_test

import (
	"testing"

	"phone_sales/internal/sales"
	"phone_sales/internal/storage/storagetest"
)

func TestLocalStorage(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) sales.Storage {
		return sales.NewLocalStorage()
	})
}
