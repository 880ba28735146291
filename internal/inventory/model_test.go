package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		name      string
		level     *Level
		available int
		threshold int
		status    StockStatus
	}{
		{"no row", nil, 0, 10, OutOfStock},
		{"plenty", &Level{Quantity: 50, ReservedQuantity: 5, LowStockThreshold: 10}, 45, 10, InStock},
		{"low", &Level{Quantity: 8, ReservedQuantity: 2}, 6, 10, LowStock},
		{"at threshold", &Level{Quantity: 5, LowStockThreshold: 5}, 5, 5, LowStock},
		{"fully reserved", &Level{Quantity: 4, ReservedQuantity: 4, LowStockThreshold: 2}, 0, 2, OutOfStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.available, tt.level.Available())
			assert.Equal(t, tt.threshold, tt.level.Threshold())
			assert.Equal(t, tt.status, tt.level.Status())
		})
	}
}
