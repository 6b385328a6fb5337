package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the user's bank account as known to this client.
// Balance is an arbitrary-precision decimal and must only be changed through
// the ledger's delta application; nothing else writes it.
type Account struct {
	ID        int
	UserID    *int
	Name      string
	Balance   decimal.Decimal
	Currency  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CurrencySymbol returns the display glyph for the account currency, falling
// back to the raw currency code for anything it does not recognize.
func (a Account) CurrencySymbol() string {
	switch a.Currency {
	case "RUB":
		return "₽"
	case "USD":
		return "$"
	case "EUR":
		return "€"
	default:
		return a.Currency
	}
}

// WithBalance returns a copy of the account with the balance replaced and the
// update timestamp refreshed.
func (a Account) WithBalance(balance decimal.Decimal) Account {
	a.Balance = balance
	a.UpdatedAt = time.Now()
	return a
}
