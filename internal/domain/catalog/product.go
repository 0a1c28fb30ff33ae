package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus represents whether a product can be sold
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// ProductInput holds the editable fields of a product.
// Purchasing fields are required only when both a supplier and a warehouse
// are selected, because only then does the API record an opening purchase.
type ProductInput struct {
	Name          string           `json:"name" validate:"required,max=200"`
	Code          string           `json:"code" validate:"required,max=50"`
	CategoryID    string           `json:"categoryId" validate:"required"`
	QuantityUnit  string           `json:"quantityUnit" validate:"required"`
	PackingUnit   string           `json:"packingUnit,omitempty"`
	Pouch         string           `json:"pouch,omitempty"`
	Description   string           `json:"description,omitempty" validate:"max=2000"`
	SupplierID    string           `json:"supplierId,omitempty"`
	WarehouseID   string           `json:"warehouseId,omitempty"`
	Currency      string           `json:"currency,omitempty" validate:"required_with_all=SupplierID WarehouseID"`
	PurchaseRate  *decimal.Decimal `json:"purchaseRate,omitempty" validate:"required_with_all=SupplierID WarehouseID"`
	WholesaleRate *decimal.Decimal `json:"wholesaleRate,omitempty" validate:"required_with_all=SupplierID WarehouseID"`
	RetailRate    *decimal.Decimal `json:"retailRate,omitempty" validate:"required_with_all=SupplierID WarehouseID"`
	StockQuantity *int             `json:"stockQuantity,omitempty" validate:"required_with_all=SupplierID WarehouseID"`
}

// PurchasingFields are the json names of the conditionally required fields
var PurchasingFields = []string{"currency", "purchaseRate", "wholesaleRate", "retailRate", "stockQuantity"}

// PurchasingRequired reports whether the purchasing fields must be filled
func (p ProductInput) PurchasingRequired() bool {
	return p.SupplierID != "" && p.WarehouseID != ""
}

// Product is a product as returned by the API
type Product struct {
	ID string `json:"id"`
	ProductInput
	CategoryName string        `json:"categoryName,omitempty"`
	Status       ProductStatus `json:"status,omitempty"`
	ImageURL     string        `json:"imageUrl,omitempty"`
	CreatedAt    time.Time     `json:"createdAt,omitempty"`
	UpdatedAt    time.Time     `json:"updatedAt,omitempty"`
}

// UnmarshalText rejects unknown product statuses
func (s *ProductStatus) UnmarshalText(text []byte) error {
	parsed, err := parseProductStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
