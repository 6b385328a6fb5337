package remote

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yfin/finsync/internal/domain"
)

// Accounts fetches every account visible to the authenticated user.
func (c *Client) Accounts(ctx context.Context) ([]domain.Account, error) {
	var dtos []accountDTO
	if err := c.request(ctx, http.MethodGet, "accounts", nil, nil, &dtos); err != nil {
		return nil, err
	}
	accounts := make([]domain.Account, 0, len(dtos))
	for _, dto := range dtos {
		acc, err := dto.toDomain()
		if err != nil {
			return nil, decodingError(err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// UpdateAccount pushes a new name/balance/currency for the account and returns
// the server's copy.
func (c *Client) UpdateAccount(ctx context.Context, id int, name string, balance decimal.Decimal, currency string) (domain.Account, error) {
	payload := accountUpdateDTO{
		Name:     name,
		Balance:  formatAmount(balance),
		Currency: currency,
	}
	var dto accountDTO
	if err := c.request(ctx, http.MethodPut, idPath("accounts", id), nil, payload, &dto); err != nil {
		return domain.Account{}, err
	}
	acc, err := dto.toDomain()
	if err != nil {
		return domain.Account{}, decodingError(err)
	}
	return acc, nil
}

// Categories fetches the full category reference list.
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var dtos []categoryDTO
	if err := c.request(ctx, http.MethodGet, "categories", nil, nil, &dtos); err != nil {
		return nil, err
	}
	categories := make([]domain.Category, 0, len(dtos))
	for _, dto := range dtos {
		cat, err := dto.toDomain()
		if err != nil {
			return nil, decodingError(err)
		}
		categories = append(categories, cat)
	}
	return categories, nil
}

// CategoriesByDirection fetches only income or only outcome categories.
func (c *Client) CategoriesByDirection(ctx context.Context, isIncome bool) ([]domain.Category, error) {
	path := "categories/type/false"
	if isIncome {
		path = "categories/type/true"
	}
	var dtos []categoryDTO
	if err := c.request(ctx, http.MethodGet, path, nil, nil, &dtos); err != nil {
		return nil, err
	}
	categories := make([]domain.Category, 0, len(dtos))
	for _, dto := range dtos {
		cat, err := dto.toDomain()
		if err != nil {
			return nil, decodingError(err)
		}
		categories = append(categories, cat)
	}
	return categories, nil
}

// TransactionsForPeriod fetches the account's transactions with dates inside
// [from, to], fully populated with embedded account and category.
func (c *Client) TransactionsForPeriod(ctx context.Context, accountID int, from, to time.Time) ([]domain.Transaction, error) {
	path := idPath("transactions/account", accountID) + "/period"
	var dtos []transactionDTO
	if err := c.request(ctx, http.MethodGet, path, periodQuery(from, to), nil, &dtos); err != nil {
		return nil, err
	}
	txs := make([]domain.Transaction, 0, len(dtos))
	for _, dto := range dtos {
		tx, err := dto.toDomain()
		if err != nil {
			return nil, decodingError(err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// CreateTransaction posts a new transaction and returns the server-assigned
// stub (foreign-key ids only).
func (c *Client) CreateTransaction(ctx context.Context, tx domain.Transaction) (domain.TransactionStub, error) {
	var dto transactionStubDTO
	if err := c.request(ctx, http.MethodPost, "transactions", nil, transactionRequest(tx), &dto); err != nil {
		return domain.TransactionStub{}, err
	}
	stub, err := dto.toDomain()
	if err != nil {
		return domain.TransactionStub{}, decodingError(err)
	}
	return stub, nil
}

// UpdateTransaction replaces the transaction's payload on the server.
func (c *Client) UpdateTransaction(ctx context.Context, id int, tx domain.Transaction) (domain.TransactionStub, error) {
	var dto transactionStubDTO
	if err := c.request(ctx, http.MethodPut, idPath("transactions", id), nil, transactionRequest(tx), &dto); err != nil {
		return domain.TransactionStub{}, err
	}
	stub, err := dto.toDomain()
	if err != nil {
		return domain.TransactionStub{}, decodingError(err)
	}
	return stub, nil
}

// DeleteTransaction removes the transaction on the server. The response body
// is empty on success.
func (c *Client) DeleteTransaction(ctx context.Context, id int) error {
	return c.request(ctx, http.MethodDelete, idPath("transactions", id), nil, nil, nil)
}
