// Package store defines the durable keyed-storage contracts the sync engine
// relies on. Implementations live in store/memory and store/sqlite.
package store

import (
	"context"
	"errors"

	"github.com/yfin/finsync/internal/domain"
)

// ErrNotFound is returned by Get methods when the key is absent. Removing an
// absent key is a no-op, not an error.
var ErrNotFound = errors.New("store: not found")

// TransactionStore persists the confirmed and optimistic local copies of
// transactions. Add and Update are both upserts; all operations are
// idempotent.
type TransactionStore interface {
	Load(ctx context.Context) ([]domain.Transaction, error)
	Get(ctx context.Context, id int) (domain.Transaction, error)
	Add(ctx context.Context, tx domain.Transaction) error
	Update(ctx context.Context, tx domain.Transaction) error
	Remove(ctx context.Context, id int) error
}

// AccountStore caches the user's accounts for offline fallback.
type AccountStore interface {
	Get(ctx context.Context, id int) (domain.Account, error)
	// First returns the cached account the client operates on. The backend
	// exposes a list but the client only ever uses the first entry.
	First(ctx context.Context) (domain.Account, error)
	Save(ctx context.Context, acc domain.Account) error
}

// CategoryStore caches the category reference list.
type CategoryStore interface {
	Load(ctx context.Context) ([]domain.Category, error)
	// SaveAll replaces the cached list wholesale; categories are reference
	// data and always arrive as a complete set.
	SaveAll(ctx context.Context, categories []domain.Category) error
}

// BackupStore is the durable queue of pending mutations. The queue holds at
// most one operation per transaction id; AddOrUpdate replaces any existing
// entry for the same id. Load returns operations in insertion order, which a
// replacement resets to the back of the queue.
type BackupStore interface {
	Load(ctx context.Context) ([]domain.BackupOperation, error)
	Get(ctx context.Context, id int) (domain.BackupOperation, error)
	AddOrUpdate(ctx context.Context, op domain.BackupOperation) error
	Remove(ctx context.Context, id int) error
	RemoveMany(ctx context.Context, ids []int) error
	Clear(ctx context.Context) error
}
