package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one money movement against an account. Amount is always a
// non-negative magnitude; the sign of its effect on the balance comes from the
// category direction, never from a negative amount.
type Transaction struct {
	ID              int
	Account         Account
	Category        Category
	Amount          decimal.Decimal
	TransactionDate time.Time
	Comment         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SignedAmount combines the magnitude with the category direction to produce
// the balance-affecting delta of this transaction.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Category.IsIncome {
		return t.Amount
	}
	return t.Amount.Neg()
}

// InPeriod reports whether the transaction date falls inside [from, to].
func (t Transaction) InPeriod(from, to time.Time) bool {
	return !t.TransactionDate.Before(from) && !t.TransactionDate.After(to)
}

// TransactionStub is the shallow wire form of a transaction: foreign-key ids
// instead of embedded account/category. The engine materializes it into a full
// Transaction through the catalog and ledger.
type TransactionStub struct {
	ID              int
	AccountID       int
	CategoryID      int
	Amount          decimal.Decimal
	TransactionDate time.Time
	Comment         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewProvisionalID synthesizes a temporary id for a transaction created while
// offline. Provisional ids are negative so they can never collide with
// server-assigned ids; the server replaces them on sync.
func NewProvisionalID() int {
	return -int(time.Now().UnixNano())
}

// IsProvisionalID reports whether id was synthesized locally and is unknown to
// the server.
func IsProvisionalID(id int) bool {
	return id < 0
}

// UniqueByID keeps the first occurrence of every transaction id, preserving
// order.
func UniqueByID(txs []Transaction) []Transaction {
	seen := make(map[int]struct{}, len(txs))
	out := txs[:0:0]
	for _, tx := range txs {
		if _, dup := seen[tx.ID]; dup {
			continue
		}
		seen[tx.ID] = struct{}{}
		out = append(out, tx)
	}
	return out
}

// SumAmounts totals the magnitudes of the given transactions.
func SumAmounts(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return total
}

// NetTotal totals the signed amounts of the given transactions.
func NetTotal(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.SignedAmount())
	}
	return total
}
