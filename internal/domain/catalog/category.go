package catalog

import "github.com/erp/console/internal/domain/shared"

// Category groups products
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Currency is a currency offered on the product form
type Currency struct {
	Code string `json:"code"`
	Name string `json:"name,omitempty"`
}

// QuantityUnit is the base unit a product is counted in (piece, kg, litre)
type QuantityUnit struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PackingUnit is a package size offered for a quantity unit
type PackingUnit struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	QuantityUnitID string `json:"quantityUnitId"`
}

// Pouch is a container offered for a packing unit
type Pouch struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	PackingUnitID string `json:"packingUnitId"`
}

func parseProductStatus(raw string) (ProductStatus, error) {
	return shared.ParseOptionalEnum("product status", raw, ProductStatusActive, ProductStatusInactive)
}
