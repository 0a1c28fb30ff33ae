package partner

import (
	"time"

	"github.com/erp/console/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AccountType is the kind of bank account
type AccountType string

const (
	AccountTypeCurrent AccountType = "current"
	AccountTypeSavings AccountType = "savings"
	AccountTypeCash    AccountType = "cash"
)

// BankAccountInput holds the editable fields of a bank account
type BankAccountInput struct {
	AccountName   string           `json:"accountName" validate:"required,max=200"`
	AccountNumber string           `json:"accountNumber" validate:"required,max=100"`
	BankName      string           `json:"bankName" validate:"required,max=200"`
	Branch        string           `json:"branch,omitempty" validate:"max=200"`
	AccountType   AccountType      `json:"accountType" validate:"required"`
	OpeningAmount *decimal.Decimal `json:"openingAmount,omitempty"`
}

// BankAccount as returned by the API
type BankAccount struct {
	ID string `json:"id"`
	BankAccountInput
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"createdAt,omitempty"`
}

// UnmarshalText rejects unknown account types. A blank select decodes to
// the empty type and is reported by the required check.
func (t *AccountType) UnmarshalText(text []byte) error {
	parsed, err := shared.ParseOptionalEnum("account type", string(text),
		AccountTypeCurrent, AccountTypeSavings, AccountTypeCash)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
