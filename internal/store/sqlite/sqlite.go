// Package sqlite implements the store contracts on an embedded SQLite
// database via gorm. One DB handle backs all four stores.
package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yfin/finsync/internal/domain"
	"github.com/yfin/finsync/internal/remote"
	"github.com/yfin/finsync/internal/store"
)

// DB wraps the gorm handle shared by the stores.
type DB struct {
	db *gorm.DB
}

// Open opens (or creates) the database at path and migrates the schema.
func Open(path string) (*DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&transactionRow{}, &accountRow{}, &categoryRow{}, &backupRow{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Transactions returns the transaction store view of the database.
func (d *DB) Transactions() *TransactionStore { return &TransactionStore{db: d.db} }

// Accounts returns the account store view of the database.
func (d *DB) Accounts() *AccountStore { return &AccountStore{db: d.db} }

// Categories returns the category store view of the database.
func (d *DB) Categories() *CategoryStore { return &CategoryStore{db: d.db} }

// Backups returns the backup queue view of the database.
func (d *DB) Backups() *BackupStore { return &BackupStore{db: d.db} }

// TransactionStore is the SQLite-backed store.TransactionStore.
type TransactionStore struct {
	db *gorm.DB
}

// Load implements store.TransactionStore.
func (s *TransactionStore) Load(ctx context.Context) ([]domain.Transaction, error) {
	var rows []transactionRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	txs := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("load transaction %d: %w", row.ID, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// Get implements store.TransactionStore.
func (s *TransactionStore) Get(ctx context.Context, id int) (domain.Transaction, error) {
	var row transactionRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Transaction{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return row.toDomain()
}

// Add implements store.TransactionStore as an upsert.
func (s *TransactionStore) Add(ctx context.Context, tx domain.Transaction) error {
	row := newTransactionRow(tx)
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("save transaction %d: %w", tx.ID, err)
	}
	return nil
}

// Update implements store.TransactionStore; same upsert as Add.
func (s *TransactionStore) Update(ctx context.Context, tx domain.Transaction) error {
	return s.Add(ctx, tx)
}

// Remove implements store.TransactionStore. A missing id is a no-op.
func (s *TransactionStore) Remove(ctx context.Context, id int) error {
	if err := s.db.WithContext(ctx).Delete(&transactionRow{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("remove transaction %d: %w", id, err)
	}
	return nil
}

// AccountStore is the SQLite-backed store.AccountStore.
type AccountStore struct {
	db *gorm.DB
}

// Get implements store.AccountStore.
func (s *AccountStore) Get(ctx context.Context, id int) (domain.Account, error) {
	var row accountRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Account{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("get account %d: %w", id, err)
	}
	return row.toDomain()
}

// First implements store.AccountStore.
func (s *AccountStore) First(ctx context.Context) (domain.Account, error) {
	var row accountRow
	err := s.db.WithContext(ctx).Order("id").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Account{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("first account: %w", err)
	}
	return row.toDomain()
}

// Save implements store.AccountStore as an upsert.
func (s *AccountStore) Save(ctx context.Context, acc domain.Account) error {
	row := newAccountRow(acc)
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("save account %d: %w", acc.ID, err)
	}
	return nil
}

// CategoryStore is the SQLite-backed store.CategoryStore.
type CategoryStore struct {
	db *gorm.DB
}

// Load implements store.CategoryStore.
func (s *CategoryStore) Load(ctx context.Context) ([]domain.Category, error) {
	var rows []categoryRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	categories := make([]domain.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, row.toDomain())
	}
	return categories, nil
}

// SaveAll implements store.CategoryStore, replacing the cached list in one
// transaction.
func (s *CategoryStore) SaveAll(ctx context.Context, categories []domain.Category) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&categoryRow{}).Error; err != nil {
			return err
		}
		for _, cat := range categories {
			row := newCategoryRow(cat)
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save categories: %w", err)
	}
	return nil
}

// BackupStore is the SQLite-backed store.BackupStore.
type BackupStore struct {
	db *gorm.DB
}

// Load implements store.BackupStore, in queue (Seq) order.
func (s *BackupStore) Load(ctx context.Context) ([]domain.BackupOperation, error) {
	var rows []backupRow
	if err := s.db.WithContext(ctx).Order("seq").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load backup queue: %w", err)
	}
	ops := make([]domain.BackupOperation, 0, len(rows))
	for _, row := range rows {
		op, err := rowToOperation(row)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// Get implements store.BackupStore.
func (s *BackupStore) Get(ctx context.Context, id int) (domain.BackupOperation, error) {
	var row backupRow
	err := s.db.WithContext(ctx).First(&row, "tx_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.BackupOperation{}, store.ErrNotFound
	}
	if err != nil {
		return domain.BackupOperation{}, fmt.Errorf("get backup %d: %w", id, err)
	}
	return rowToOperation(row)
}

// AddOrUpdate implements store.BackupStore. Any existing entry for the same
// transaction id is dropped first so the queue never holds two operations for
// one id; the replacement re-enters at the back of the queue.
func (s *BackupStore) AddOrUpdate(ctx context.Context, op domain.BackupOperation) error {
	snapshot, err := remote.EncodeTransaction(op.Transaction)
	if err != nil {
		return fmt.Errorf("encode backup %d: %w", op.ID, err)
	}
	row := backupRow{
		TxID:         op.ID,
		Action:       string(op.Action),
		BalanceDelta: op.BalanceDelta.String(),
		Snapshot:     snapshot,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&backupRow{}, "tx_id = ?", op.ID).Error; err != nil {
			return err
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return fmt.Errorf("save backup %d: %w", op.ID, err)
	}
	return nil
}

// Remove implements store.BackupStore. A missing id is a no-op.
func (s *BackupStore) Remove(ctx context.Context, id int) error {
	if err := s.db.WithContext(ctx).Delete(&backupRow{}, "tx_id = ?", id).Error; err != nil {
		return fmt.Errorf("remove backup %d: %w", id, err)
	}
	return nil
}

// RemoveMany implements store.BackupStore.
func (s *BackupStore) RemoveMany(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Delete(&backupRow{}, "tx_id IN ?", ids).Error; err != nil {
		return fmt.Errorf("remove backups: %w", err)
	}
	return nil
}

// Clear implements store.BackupStore.
func (s *BackupStore) Clear(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&backupRow{}).Error; err != nil {
		return fmt.Errorf("clear backup queue: %w", err)
	}
	return nil
}

func rowToOperation(row backupRow) (domain.BackupOperation, error) {
	tx, err := remote.DecodeTransaction(row.Snapshot)
	if err != nil {
		return domain.BackupOperation{}, fmt.Errorf("decode backup %d: %w", row.TxID, err)
	}
	delta, err := decimal.NewFromString(row.BalanceDelta)
	if err != nil {
		return domain.BackupOperation{}, fmt.Errorf("decode backup %d delta: %w", row.TxID, err)
	}
	return domain.BackupOperation{
		ID:           row.TxID,
		Action:       domain.BackupAction(row.Action),
		Transaction:  tx,
		BalanceDelta: delta,
	}, nil
}

// Compile-time interface checks.
var (
	_ store.TransactionStore = (*TransactionStore)(nil)
	_ store.AccountStore     = (*AccountStore)(nil)
	_ store.CategoryStore    = (*CategoryStore)(nil)
	_ store.BackupStore      = (*BackupStore)(nil)
)
