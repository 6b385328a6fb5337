package sqlite

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yfin/finsync/internal/domain"
)

// Rows keep money as decimal strings so SQLite never sees a binary float.
// Domain timestamps are persisted verbatim; gorm's automatic timestamping is
// switched off where it would clobber them.

type transactionRow struct {
	ID               int `gorm:"primaryKey;autoIncrement:false"`
	AccountID        int
	AccountUserID    *int
	AccountName      string
	AccountBalance   string
	AccountCurrency  string
	CategoryID       int
	CategoryName     string
	CategoryEmoji    string
	CategoryIsIncome bool
	Amount           string
	TransactionDate  time.Time `gorm:"index"`
	Comment          string
	CreatedAt        time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime:false"`
}

func (transactionRow) TableName() string { return "transactions" }

func newTransactionRow(tx domain.Transaction) transactionRow {
	return transactionRow{
		ID:               tx.ID,
		AccountID:        tx.Account.ID,
		AccountUserID:    tx.Account.UserID,
		AccountName:      tx.Account.Name,
		AccountBalance:   tx.Account.Balance.String(),
		AccountCurrency:  tx.Account.Currency,
		CategoryID:       tx.Category.ID,
		CategoryName:     tx.Category.Name,
		CategoryEmoji:    string(tx.Category.Emoji),
		CategoryIsIncome: tx.Category.IsIncome,
		Amount:           tx.Amount.String(),
		TransactionDate:  tx.TransactionDate,
		Comment:          tx.Comment,
		CreatedAt:        tx.CreatedAt,
		UpdatedAt:        tx.UpdatedAt,
	}
}

func (r transactionRow) toDomain() (domain.Transaction, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return domain.Transaction{}, err
	}
	balance, err := decimal.NewFromString(r.AccountBalance)
	if err != nil {
		return domain.Transaction{}, err
	}
	emoji := domain.OfflineCategoryEmoji
	if runes := []rune(r.CategoryEmoji); len(runes) > 0 {
		emoji = runes[0]
	}
	return domain.Transaction{
		ID: r.ID,
		Account: domain.Account{
			ID:       r.AccountID,
			UserID:   r.AccountUserID,
			Name:     r.AccountName,
			Balance:  balance,
			Currency: r.AccountCurrency,
		},
		Category: domain.Category{
			ID:       r.CategoryID,
			Name:     r.CategoryName,
			Emoji:    emoji,
			IsIncome: r.CategoryIsIncome,
		},
		Amount:          amount,
		TransactionDate: r.TransactionDate,
		Comment:         r.Comment,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}, nil
}

type accountRow struct {
	ID        int `gorm:"primaryKey;autoIncrement:false"`
	UserID    *int
	Name      string
	Balance   string
	Currency  string
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}

func (accountRow) TableName() string { return "accounts" }

func newAccountRow(acc domain.Account) accountRow {
	return accountRow{
		ID:        acc.ID,
		UserID:    acc.UserID,
		Name:      acc.Name,
		Balance:   acc.Balance.String(),
		Currency:  acc.Currency,
		CreatedAt: acc.CreatedAt,
		UpdatedAt: acc.UpdatedAt,
	}
}

func (r accountRow) toDomain() (domain.Account, error) {
	balance, err := decimal.NewFromString(r.Balance)
	if err != nil {
		return domain.Account{}, err
	}
	return domain.Account{
		ID:        r.ID,
		UserID:    r.UserID,
		Name:      r.Name,
		Balance:   balance,
		Currency:  r.Currency,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

type categoryRow struct {
	ID       int `gorm:"primaryKey;autoIncrement:false"`
	Name     string
	Emoji    string
	IsIncome bool
}

func (categoryRow) TableName() string { return "categories" }

func newCategoryRow(cat domain.Category) categoryRow {
	return categoryRow{
		ID:       cat.ID,
		Name:     cat.Name,
		Emoji:    string(cat.Emoji),
		IsIncome: cat.IsIncome,
	}
}

func (r categoryRow) toDomain() domain.Category {
	emoji := domain.OfflineCategoryEmoji
	if runes := []rune(r.Emoji); len(runes) > 0 {
		emoji = runes[0]
	}
	return domain.Category{
		ID:       r.ID,
		Name:     r.Name,
		Emoji:    emoji,
		IsIncome: r.IsIncome,
	}
}

// backupRow persists one pending operation. Seq orders replay; TxID carries
// the one-operation-per-transaction invariant. The transaction snapshot is
// stored in the server wire format.
type backupRow struct {
	Seq          uint   `gorm:"primaryKey;autoIncrement"`
	TxID         int    `gorm:"uniqueIndex"`
	Action       string
	BalanceDelta string
	Snapshot     []byte
}

func (backupRow) TableName() string { return "backup_operations" }
