package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

// Sign convention: a positive Transaction.Amount is an outflow (money leaving
// the account), a negative amount is an inflow.

const (
	Checking   AccountType = "checking"
	Savings    AccountType = "savings"
	Credit     AccountType = "credit"
	Investment AccountType = "investment"
	Loan       AccountType = "loan"
	Other      AccountType = "other"
)

type (
	AccountType string

	Date struct {
		time.Time
	}

	// PersonalFinanceCategory is the structured category attached by the
	// account aggregator.
	PersonalFinanceCategory struct {
		Primary  string `json:"primary"`
		Detailed string `json:"detailed"`
	}

	Transaction struct {
		ID                      string                   `json:"id"`
		Date                    Date                     `json:"date"`
		Name                    string                   `json:"name,omitempty"`
		Amount                  float64                  `json:"amount"`
		RawCategory             []string                 `json:"raw_category,omitempty"`
		PersonalFinanceCategory *PersonalFinanceCategory `json:"personal_finance_category,omitempty"`
	}

	Account struct {
		ID             string      `json:"id"`
		Name           string      `json:"name"`
		Type           AccountType `json:"type"`
		Subtype        string      `json:"subtype,omitempty"`
		CurrentBalance float64     `json:"current_balance"`
		CreditLimit    *float64    `json:"credit_limit,omitempty"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyTitle    = errors.New("empty title")
	ErrTitleTooLong  = errors.New("title too long (max 100 characters)")
	ErrInvalidTarget = errors.New("target amount must be positive")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string. Unparseable input yields the zero Date.
func ParseDate(s string) Date {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}
	}
	return Date{Time: t}
}

// IsEmpty returns true if the date is zero
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	*d = ParseDate(s)
	return nil
}

// IsValid reports whether t is one of the known account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Checking, Savings, Credit, Investment, Loan, Other:
		return true
	default:
		return false
	}
}

// IsLiability reports whether a positive balance on this account type is
// money owed rather than money held.
func (t AccountType) IsLiability() bool {
	return t == Credit || t == Loan
}

// ParseAccountType maps aggregator type strings onto AccountType. The
// aggregator reports checking and savings as "depository" with a subtype.
func ParseAccountType(typ, subtype string) AccountType {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "checking":
		return Checking
	case "savings":
		return Savings
	case "credit":
		return Credit
	case "investment", "brokerage":
		return Investment
	case "loan":
		return Loan
	case "depository":
		switch strings.ToLower(strings.TrimSpace(subtype)) {
		case "checking":
			return Checking
		case "savings", "money market", "cd", "hsa":
			return Savings
		}
		return Checking
	}
	return Other
}

// NetContribution is the account's contribution to net worth.
func (a Account) NetContribution() float64 {
	if a.Type.IsLiability() {
		return -a.CurrentBalance
	}
	return a.CurrentBalance
}

// IsOutflow reports whether the transaction counts as spending. Non-finite
// amounts never do.
func (t Transaction) IsOutflow() bool {
	return t.Amount > 0 && !math.IsInf(t.Amount, 1)
}
