package partner

import "time"

// ShopInput holds the editable fields of a shop
type ShopInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Location    string `json:"location" validate:"required,max=500"`
	Phone       string `json:"phone,omitempty" validate:"max=50"`
	WarehouseID string `json:"warehouseId,omitempty"`
}

// Shop as returned by the API
type Shop struct {
	ID string `json:"id"`
	ShopInput
	Status    Status    `json:"status,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}
