package remote

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yfin/finsync/internal/domain"
)

// Amounts cross the wire as decimal-formatted strings with a fixed two
// fraction digits; dates as ISO-8601 with or without fractional seconds.
const (
	dateLayoutFraction = "2006-01-02T15:04:05.000Z07:00"
	dateLayoutPlain    = time.RFC3339
	periodDateLayout   = "2006-01-02"
)

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d, nil
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayoutFraction)
}

// parseDate accepts both the with-fraction and without-fraction ISO-8601
// variants the server is known to emit.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayoutFraction, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayoutPlain, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// accountDTO mirrors the server's account resource.
type accountDTO struct {
	ID        int    `json:"id"`
	UserID    *int   `json:"userId,omitempty"`
	Name      string `json:"name"`
	Balance   string `json:"balance"`
	Currency  string `json:"currency"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

func (d accountDTO) toDomain() (domain.Account, error) {
	balance, err := parseAmount(d.Balance)
	if err != nil {
		return domain.Account{}, err
	}
	acc := domain.Account{
		ID:       d.ID,
		UserID:   d.UserID,
		Name:     d.Name,
		Balance:  balance,
		Currency: d.Currency,
	}
	// Timestamps are optional on some endpoints; missing ones stay zero.
	if d.CreatedAt != "" {
		if acc.CreatedAt, err = parseDate(d.CreatedAt); err != nil {
			return domain.Account{}, err
		}
	}
	if d.UpdatedAt != "" {
		if acc.UpdatedAt, err = parseDate(d.UpdatedAt); err != nil {
			return domain.Account{}, err
		}
	}
	return acc, nil
}

// accountUpdateDTO is the PUT /accounts/{id} payload.
type accountUpdateDTO struct {
	Name     string `json:"name"`
	Balance  string `json:"balance"`
	Currency string `json:"currency"`
}

// categoryDTO mirrors the server's category resource. The emoji arrives as a
// string; only its first glyph is meaningful.
type categoryDTO struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Emoji    string `json:"emoji"`
	IsIncome bool   `json:"isIncome"`
}

func (d categoryDTO) toDomain() (domain.Category, error) {
	runes := []rune(d.Emoji)
	if len(runes) == 0 {
		return domain.Category{}, fmt.Errorf("category %d: empty emoji", d.ID)
	}
	return domain.Category{
		ID:       d.ID,
		Name:     d.Name,
		Emoji:    runes[0],
		IsIncome: d.IsIncome,
	}, nil
}

// transactionRequestDTO is the POST/PUT transaction payload.
type transactionRequestDTO struct {
	AccountID       int     `json:"accountId"`
	CategoryID      int     `json:"categoryId"`
	Amount          string  `json:"amount"`
	TransactionDate string  `json:"transactionDate"`
	Comment         *string `json:"comment,omitempty"`
}

func transactionRequest(tx domain.Transaction) transactionRequestDTO {
	req := transactionRequestDTO{
		AccountID:       tx.Account.ID,
		CategoryID:      tx.Category.ID,
		Amount:          formatAmount(tx.Amount),
		TransactionDate: formatDate(tx.TransactionDate),
	}
	if tx.Comment != "" {
		comment := tx.Comment
		req.Comment = &comment
	}
	return req
}

// transactionStubDTO is the shallow response of POST/PUT /transactions:
// foreign-key ids only.
type transactionStubDTO struct {
	ID              int     `json:"id"`
	AccountID       int     `json:"accountId"`
	CategoryID      int     `json:"categoryId"`
	Amount          string  `json:"amount"`
	TransactionDate string  `json:"transactionDate"`
	Comment         *string `json:"comment,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

func (d transactionStubDTO) toDomain() (domain.TransactionStub, error) {
	amount, err := parseAmount(d.Amount)
	if err != nil {
		return domain.TransactionStub{}, err
	}
	date, err := parseDate(d.TransactionDate)
	if err != nil {
		return domain.TransactionStub{}, err
	}
	stub := domain.TransactionStub{
		ID:              d.ID,
		AccountID:       d.AccountID,
		CategoryID:      d.CategoryID,
		Amount:          amount,
		TransactionDate: date,
	}
	if d.Comment != nil {
		stub.Comment = *d.Comment
	}
	if d.CreatedAt != "" {
		if stub.CreatedAt, err = parseDate(d.CreatedAt); err != nil {
			return domain.TransactionStub{}, err
		}
	}
	if d.UpdatedAt != "" {
		if stub.UpdatedAt, err = parseDate(d.UpdatedAt); err != nil {
			return domain.TransactionStub{}, err
		}
	}
	return stub, nil
}

// transactionDTO is the full transaction resource returned by period fetches,
// with account and category embedded.
type transactionDTO struct {
	ID              int         `json:"id"`
	Account         accountDTO  `json:"account"`
	Category        categoryDTO `json:"category"`
	Amount          string      `json:"amount"`
	TransactionDate string      `json:"transactionDate"`
	Comment         *string     `json:"comment,omitempty"`
	CreatedAt       string      `json:"createdAt,omitempty"`
	UpdatedAt       string      `json:"updatedAt,omitempty"`
}

func (d transactionDTO) toDomain() (domain.Transaction, error) {
	account, err := d.Account.toDomain()
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction %d: %w", d.ID, err)
	}
	category, err := d.Category.toDomain()
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction %d: %w", d.ID, err)
	}
	amount, err := parseAmount(d.Amount)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction %d: %w", d.ID, err)
	}
	date, err := parseDate(d.TransactionDate)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction %d: %w", d.ID, err)
	}
	tx := domain.Transaction{
		ID:              d.ID,
		Account:         account,
		Category:        category,
		Amount:          amount,
		TransactionDate: date,
	}
	if d.Comment != nil {
		tx.Comment = *d.Comment
	}
	if d.CreatedAt != "" {
		if tx.CreatedAt, err = parseDate(d.CreatedAt); err != nil {
			return domain.Transaction{}, fmt.Errorf("transaction %d: %w", d.ID, err)
		}
	}
	if d.UpdatedAt != "" {
		if tx.UpdatedAt, err = parseDate(d.UpdatedAt); err != nil {
			return domain.Transaction{}, fmt.Errorf("transaction %d: %w", d.ID, err)
		}
	}
	return tx, nil
}

func transactionWire(tx domain.Transaction) transactionDTO {
	dto := transactionDTO{
		ID: tx.ID,
		Account: accountDTO{
			ID:       tx.Account.ID,
			UserID:   tx.Account.UserID,
			Name:     tx.Account.Name,
			Balance:  formatAmount(tx.Account.Balance),
			Currency: tx.Account.Currency,
		},
		Category: categoryDTO{
			ID:       tx.Category.ID,
			Name:     tx.Category.Name,
			Emoji:    string(tx.Category.Emoji),
			IsIncome: tx.Category.IsIncome,
		},
		Amount:          formatAmount(tx.Amount),
		TransactionDate: formatDate(tx.TransactionDate),
	}
	if tx.Comment != "" {
		comment := tx.Comment
		dto.Comment = &comment
	}
	if !tx.Account.CreatedAt.IsZero() {
		dto.Account.CreatedAt = formatDate(tx.Account.CreatedAt)
	}
	if !tx.Account.UpdatedAt.IsZero() {
		dto.Account.UpdatedAt = formatDate(tx.Account.UpdatedAt)
	}
	if !tx.CreatedAt.IsZero() {
		dto.CreatedAt = formatDate(tx.CreatedAt)
	}
	if !tx.UpdatedAt.IsZero() {
		dto.UpdatedAt = formatDate(tx.UpdatedAt)
	}
	return dto
}

// EncodeTransaction renders a transaction in the full wire form. It is used by
// the SQLite store to persist backup snapshots in the same shape the server
// speaks.
func EncodeTransaction(tx domain.Transaction) ([]byte, error) {
	return json.Marshal(transactionWire(tx))
}

// DecodeTransaction is the inverse of EncodeTransaction.
func DecodeTransaction(data []byte) (domain.Transaction, error) {
	var dto transactionDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return domain.Transaction{}, fmt.Errorf("decode transaction: %w", err)
	}
	return dto.toDomain()
}
