package partner

import "time"

// SupplierInput holds the editable fields of a supplier
type SupplierInput struct {
	Name          string `json:"name" validate:"required,max=200"`
	ContactPerson string `json:"contactPerson,omitempty" validate:"max=100"`
	Phone         string `json:"phone" validate:"required,max=50"`
	Email         string `json:"email,omitempty" validate:"omitempty,email,max=200"`
	Address       string `json:"address,omitempty" validate:"max=500"`
	Notes         string `json:"notes,omitempty"`
}

// Supplier as returned by the API
type Supplier struct {
	ID string `json:"id"`
	SupplierInput
	Status    Status    `json:"status,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}
