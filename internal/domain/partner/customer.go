package partner

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerInput holds the editable fields of a customer
type CustomerInput struct {
	Name    string `json:"name" validate:"required,max=200"`
	Phone   string `json:"phone" validate:"required,max=50"`
	Email   string `json:"email,omitempty" validate:"omitempty,email,max=200"`
	Address string `json:"address,omitempty" validate:"max=500"`
	ShopID  string `json:"shopId,omitempty"`
}

// Customer as returned by the API
type Customer struct {
	ID string `json:"id"`
	CustomerInput
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"createdAt,omitempty"`
}
