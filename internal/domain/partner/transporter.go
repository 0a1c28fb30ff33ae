package partner

import "time"

// TransporterInput holds the editable fields of a transporter
type TransporterInput struct {
	Name          string `json:"name" validate:"required,max=200"`
	ContactPerson string `json:"contactPerson,omitempty" validate:"max=100"`
	Phone         string `json:"phone" validate:"required,max=50"`
	VehicleNumber string `json:"vehicleNumber,omitempty" validate:"max=50"`
	Address       string `json:"address,omitempty" validate:"max=500"`
}

// Transporter as returned by the API
type Transporter struct {
	ID string `json:"id"`
	TransporterInput
	Status    Status    `json:"status,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}
