package partner

import "time"

// WarehouseInput holds the editable fields of a warehouse
type WarehouseInput struct {
	Name     string `json:"name" validate:"required,max=200"`
	Location string `json:"location" validate:"required,max=500"`
	Manager  string `json:"manager,omitempty" validate:"max=100"`
	Phone    string `json:"phone,omitempty" validate:"max=50"`
}

// Warehouse as returned by the API
type Warehouse struct {
	ID string `json:"id"`
	WarehouseInput
	Status    Status    `json:"status,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}
