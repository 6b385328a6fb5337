package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yfin/finsync/internal/domain"
)

// TransactionAPI is the slice of the remote client the engine replays and
// writes through.
type TransactionAPI interface {
	TransactionsForPeriod(ctx context.Context, accountID int, from, to time.Time) ([]domain.Transaction, error)
	CreateTransaction(ctx context.Context, tx domain.Transaction) (domain.TransactionStub, error)
	UpdateTransaction(ctx context.Context, id int, tx domain.Transaction) (domain.TransactionStub, error)
	DeleteTransaction(ctx context.Context, id int) error
}

// AccountLedger is the engine's view of the balance owner. Every balance
// change goes through ApplyDelta; the engine never writes a balance itself.
// PushLocal settles replayed operations (the cached balance already carries
// their deltas) and Reload resyncs from the server after a remote-wins pass
// abandons queued operations.
type AccountLedger interface {
	Current(ctx context.Context) (domain.Account, error)
	ApplyDelta(ctx context.Context, accountID int, delta decimal.Decimal) (domain.Account, error)
	PushLocal(ctx context.Context, accountID int) (domain.Account, error)
	Reload(ctx context.Context) (domain.Account, error)
}

// CategoryResolver materializes category ids from server responses into full
// categories, with the catalog's offline fallback behind it.
type CategoryResolver interface {
	ByID(ctx context.Context, id int) (domain.Category, error)
}
