package finance

import (
	"strings"
	"time"

	"github.com/erp/console/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ExpenseKind is one of the seven expense categories the console manages,
// each with its own list and form screens
type ExpenseKind string

const (
	ExpenseKindGeneral       ExpenseKind = "general"
	ExpenseKindSalary        ExpenseKind = "salary"
	ExpenseKindRent          ExpenseKind = "rent"
	ExpenseKindUtility       ExpenseKind = "utility"
	ExpenseKindTransport     ExpenseKind = "transport"
	ExpenseKindMaintenance   ExpenseKind = "maintenance"
	ExpenseKindMiscellaneous ExpenseKind = "miscellaneous"
)

// AllExpenseKinds lists every expense kind
var AllExpenseKinds = []ExpenseKind{
	ExpenseKindGeneral,
	ExpenseKindSalary,
	ExpenseKindRent,
	ExpenseKindUtility,
	ExpenseKindTransport,
	ExpenseKindMaintenance,
	ExpenseKindMiscellaneous,
}

// ParseExpenseKind validates an expense kind
func ParseExpenseKind(raw string) (ExpenseKind, error) {
	return shared.ParseEnum("expense kind", raw, AllExpenseKinds...)
}

// UnmarshalText rejects unknown expense kinds
func (k *ExpenseKind) UnmarshalText(text []byte) error {
	parsed, err := ParseExpenseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ExpenseInput holds the editable fields of an expense record
type ExpenseInput struct {
	Title         string          `json:"title" validate:"required,max=200"`
	Amount        decimal.Decimal `json:"amount"`
	Date          shared.Date     `json:"date" validate:"required"`
	BankAccountID string          `json:"bankAccountId,omitempty"`
	ShopID        string          `json:"shopId,omitempty"`
	Description   string          `json:"description,omitempty" validate:"max=2000"`
}

// ExpenseRecord as returned by the API
type ExpenseRecord struct {
	ID string `json:"id"`
	ExpenseInput
	Kind      ExpenseKind `json:"kind,omitempty"`
	CreatedAt time.Time   `json:"createdAt,omitempty"`
}

// DisplayName returns the screen title for the kind
func (k ExpenseKind) DisplayName() string {
	switch k {
	case ExpenseKindGeneral:
		return "General Expenses"
	case ExpenseKindSalary:
		return "Salary Expenses"
	case ExpenseKindRent:
		return "Rent Expenses"
	case ExpenseKindUtility:
		return "Utility Expenses"
	case ExpenseKindTransport:
		return "Transport Expenses"
	case ExpenseKindMaintenance:
		return "Maintenance Expenses"
	case ExpenseKindMiscellaneous:
		return "Miscellaneous Expenses"
	default:
		return string(k)
	}
}

// SingularName names one record of the kind, as in "Rent Expense"
func (k ExpenseKind) SingularName() string {
	if name, ok := strings.CutSuffix(k.DisplayName(), " Expenses"); ok {
		return name + " Expense"
	}
	return string(k)
}
