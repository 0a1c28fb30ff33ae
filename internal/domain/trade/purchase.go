package trade

import (
	"time"

	"github.com/erp/console/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PurchaseStatus represents the receiving state of a purchase
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusPartial   PurchaseStatus = "partial"
	PurchaseStatusReceived  PurchaseStatus = "received"
	PurchaseStatusCancelled PurchaseStatus = "cancelled"
)

// PurchaseInput holds the editable fields of a purchase
type PurchaseInput struct {
	SupplierID   string      `json:"supplierId" validate:"required"`
	WarehouseID  string      `json:"warehouseId" validate:"required"`
	PurchaseDate shared.Date `json:"purchaseDate" validate:"required"`
	Currency     string      `json:"currency" validate:"required"`
	Items        []LineItem  `json:"items" validate:"required,min=1,dive"`
	Notes        string      `json:"notes,omitempty"`
}

// Purchase as returned by the API
type Purchase struct {
	ID string `json:"id"`
	PurchaseInput
	InvoiceNumber string          `json:"invoiceNumber,omitempty"`
	SupplierName  string          `json:"supplierName,omitempty"`
	WarehouseName string          `json:"warehouseName,omitempty"`
	Status        PurchaseStatus  `json:"status"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	CreatedAt     time.Time       `json:"createdAt,omitempty"`
}

// UnmarshalText rejects unknown purchase statuses
func (s *PurchaseStatus) UnmarshalText(text []byte) error {
	parsed, err := shared.ParseEnum("purchase status", string(text),
		PurchaseStatusPending, PurchaseStatusPartial, PurchaseStatusReceived, PurchaseStatusCancelled)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
