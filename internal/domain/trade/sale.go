package trade

import (
	"time"

	"github.com/erp/console/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents how much of a sale has been paid
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
)

// SaleInput holds the editable fields of a sale
type SaleInput struct {
	CustomerID    string           `json:"customerId,omitempty"`
	ShopID        string           `json:"shopId" validate:"required"`
	SaleDate      shared.Date      `json:"saleDate" validate:"required"`
	Items         []LineItem       `json:"items" validate:"required,min=1,dive"`
	Discount      *decimal.Decimal `json:"discount,omitempty"`
	PaidAmount    *decimal.Decimal `json:"paidAmount,omitempty"`
	BankAccountID string           `json:"bankAccountId,omitempty"`
}

// Sale as returned by the API
type Sale struct {
	ID string `json:"id"`
	SaleInput
	InvoiceNumber string          `json:"invoiceNumber,omitempty"`
	CustomerName  string          `json:"customerName,omitempty"`
	ShopName      string          `json:"shopName,omitempty"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	CreatedAt     time.Time       `json:"createdAt,omitempty"`
}

// Due returns the unpaid remainder of the sale
func (s Sale) Due() decimal.Decimal {
	due := s.TotalAmount
	if s.PaidAmount != nil {
		due = due.Sub(*s.PaidAmount)
	}
	if due.IsNegative() {
		return decimal.Zero
	}
	return due
}

// UnmarshalText rejects unknown payment statuses
func (s *PaymentStatus) UnmarshalText(text []byte) error {
	parsed, err := shared.ParseEnum("payment status", string(text),
		PaymentStatusPaid, PaymentStatusPartial, PaymentStatusUnpaid)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
