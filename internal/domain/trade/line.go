package trade

import "github.com/shopspring/decimal"

// LineItem is a product line on a purchase or sale
type LineItem struct {
	ProductID   string          `json:"productId" validate:"required"`
	ProductName string          `json:"productName,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
}

// Amount returns quantity multiplied by rate
func (l LineItem) Amount() decimal.Decimal {
	return l.Quantity.Mul(l.Rate)
}

// Total sums the amounts of the given lines
func Total(lines []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount())
	}
	return total
}
