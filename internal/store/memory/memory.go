// Package memory provides mutex-guarded in-memory implementations of the
// store contracts. They back tests and degraded operation when the SQLite
// store cannot be opened; data does not survive a restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/yfin/finsync/internal/domain"
	"github.com/yfin/finsync/internal/store"
)

// TransactionStore keeps transactions in a map keyed by id.
type TransactionStore struct {
	mu  sync.RWMutex
	txs map[int]domain.Transaction
}

// NewTransactionStore creates an empty in-memory transaction store.
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{txs: make(map[int]domain.Transaction)}
}

// Load implements store.TransactionStore. Results are ordered by id so
// repeated loads are deterministic.
func (s *TransactionStore) Load(ctx context.Context) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Transaction, 0, len(s.txs))
	for _, tx := range s.txs {
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get implements store.TransactionStore.
func (s *TransactionStore) Get(ctx context.Context, id int) (domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.txs[id]
	if !ok {
		return domain.Transaction{}, store.ErrNotFound
	}
	return tx, nil
}

// Add implements store.TransactionStore. Adding an existing id overwrites.
func (s *TransactionStore) Add(ctx context.Context, tx domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.txs[tx.ID] = tx
	return nil
}

// Update implements store.TransactionStore as an upsert.
func (s *TransactionStore) Update(ctx context.Context, tx domain.Transaction) error {
	return s.Add(ctx, tx)
}

// Remove implements store.TransactionStore. Removing a missing id is a no-op.
func (s *TransactionStore) Remove(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.txs, id)
	return nil
}

// AccountStore keeps accounts in a map keyed by id.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[int]domain.Account
	order    []int
}

// NewAccountStore creates an empty in-memory account store.
func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[int]domain.Account)}
}

// Get implements store.AccountStore.
func (s *AccountStore) Get(ctx context.Context, id int) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[id]
	if !ok {
		return domain.Account{}, store.ErrNotFound
	}
	return acc, nil
}

// First implements store.AccountStore, returning the earliest saved account.
func (s *AccountStore) First(ctx context.Context) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.order) == 0 {
		return domain.Account{}, store.ErrNotFound
	}
	return s.accounts[s.order[0]], nil
}

// Save implements store.AccountStore as an upsert.
func (s *AccountStore) Save(ctx context.Context, acc domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[acc.ID]; !exists {
		s.order = append(s.order, acc.ID)
	}
	s.accounts[acc.ID] = acc
	return nil
}

// CategoryStore keeps the category reference list.
type CategoryStore struct {
	mu         sync.RWMutex
	categories []domain.Category
}

// NewCategoryStore creates an empty in-memory category store.
func NewCategoryStore() *CategoryStore {
	return &CategoryStore{}
}

// Load implements store.CategoryStore.
func (s *CategoryStore) Load(ctx context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Category, len(s.categories))
	copy(out, s.categories)
	return out, nil
}

// SaveAll implements store.CategoryStore, replacing the cached list.
func (s *CategoryStore) SaveAll(ctx context.Context, categories []domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.categories = make([]domain.Category, len(categories))
	copy(s.categories, categories)
	return nil
}

// BackupStore keeps pending operations keyed by transaction id while
// preserving insertion order for replay.
type BackupStore struct {
	mu    sync.RWMutex
	ops   map[int]domain.BackupOperation
	order []int
}

// NewBackupStore creates an empty in-memory backup queue.
func NewBackupStore() *BackupStore {
	return &BackupStore{ops: make(map[int]domain.BackupOperation)}
}

// Load implements store.BackupStore, returning operations in insertion order.
func (s *BackupStore) Load(ctx context.Context) ([]domain.BackupOperation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.BackupOperation, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.ops[id])
	}
	return out, nil
}

// Get implements store.BackupStore.
func (s *BackupStore) Get(ctx context.Context, id int) (domain.BackupOperation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	op, ok := s.ops[id]
	if !ok {
		return domain.BackupOperation{}, store.ErrNotFound
	}
	return op, nil
}

// AddOrUpdate implements store.BackupStore. A replacement moves the operation
// to the back of the queue, matching the delete-then-insert behavior of the
// durable store.
func (s *BackupStore) AddOrUpdate(ctx context.Context, op domain.BackupOperation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ops[op.ID]; exists {
		s.dropLocked(op.ID)
	}
	s.ops[op.ID] = op
	s.order = append(s.order, op.ID)
	return nil
}

// Remove implements store.BackupStore. Removing a missing id is a no-op.
func (s *BackupStore) Remove(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dropLocked(id)
	return nil
}

// RemoveMany implements store.BackupStore.
func (s *BackupStore) RemoveMany(ctx context.Context, ids []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		s.dropLocked(id)
	}
	return nil
}

// Clear implements store.BackupStore.
func (s *BackupStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ops = make(map[int]domain.BackupOperation)
	s.order = nil
	return nil
}

func (s *BackupStore) dropLocked(id int) {
	if _, ok := s.ops[id]; !ok {
		return
	}
	delete(s.ops, id)
	for i, queued := range s.order {
		if queued == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Compile-time interface checks.
var (
	_ store.TransactionStore = (*TransactionStore)(nil)
	_ store.AccountStore     = (*AccountStore)(nil)
	_ store.CategoryStore    = (*CategoryStore)(nil)
	_ store.BackupStore      = (*BackupStore)(nil)
)
