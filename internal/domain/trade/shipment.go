package trade

import (
	"time"

	"github.com/erp/console/internal/domain/shared"
)

// ShipmentStatus represents where a shipment is in its journey
type ShipmentStatus string

const (
	ShipmentStatusPending   ShipmentStatus = "pending"
	ShipmentStatusInTransit ShipmentStatus = "in_transit"
	ShipmentStatusDelivered ShipmentStatus = "delivered"
	ShipmentStatusCancelled ShipmentStatus = "cancelled"
)

// AllShipmentStatuses lists the statuses in journey order
var AllShipmentStatuses = []ShipmentStatus{
	ShipmentStatusPending, ShipmentStatusInTransit, ShipmentStatusDelivered, ShipmentStatusCancelled,
}

// ShipmentInput holds the editable fields of a shipment
type ShipmentInput struct {
	TransporterID   string         `json:"transporterId" validate:"required"`
	FromWarehouseID string         `json:"fromWarehouseId" validate:"required"`
	ToShopID        string         `json:"toShopId" validate:"required"`
	ShipDate        shared.Date    `json:"shipDate" validate:"required"`
	Status          ShipmentStatus `json:"status" validate:"required"`
	Items           []LineItem     `json:"items" validate:"required,min=1,dive"`
}

// JourneyEvent is one step in a shipment's history
type JourneyEvent struct {
	Status ShipmentStatus `json:"status"`
	At     time.Time      `json:"at"`
	Note   string         `json:"note,omitempty"`
}

// Shipment as returned by the API
type Shipment struct {
	ID string `json:"id"`
	ShipmentInput
	TrackingNumber  string         `json:"trackingNumber,omitempty"`
	TransporterName string         `json:"transporterName,omitempty"`
	History         []JourneyEvent `json:"history,omitempty"`
	CreatedAt       time.Time      `json:"createdAt,omitempty"`
}

// UnmarshalText rejects unknown shipment statuses. A blank select decodes
// to the empty status and is reported by the required check.
func (s *ShipmentStatus) UnmarshalText(text []byte) error {
	parsed, err := shared.ParseOptionalEnum("shipment status", string(text), AllShipmentStatuses...)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseShipmentStatus validates a shipment status
func ParseShipmentStatus(raw string) (ShipmentStatus, error) {
	return shared.ParseEnum("shipment status", raw, AllShipmentStatuses...)
}
