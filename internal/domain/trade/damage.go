package trade

import (
	"time"

	"github.com/erp/console/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DamageInput holds the editable fields of a damage record
type DamageInput struct {
	ProductID   string          `json:"productId" validate:"required"`
	WarehouseID string          `json:"warehouseId" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	Reason      string          `json:"reason" validate:"required,max=500"`
	Date        shared.Date     `json:"date" validate:"required"`
}

// DamageRecord as returned by the API
type DamageRecord struct {
	ID string `json:"id"`
	DamageInput
	ProductName   string    `json:"productName,omitempty"`
	WarehouseName string    `json:"warehouseName,omitempty"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
}
