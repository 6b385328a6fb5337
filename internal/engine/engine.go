// Package engine is the offline-first reconciliation core. It keeps the
// local store, the backup queue of unconfirmed mutations, and the account
// balance consistent with the server under unreliable connectivity.
//
// Every write first tries the server. On success the local store and ledger
// are brought in line and any pending operation for the id is retired. On
// failure the change is applied optimistically and recorded as a backup
// operation, which later reconciliation passes replay. Reads drain the queue
// first, then prefer the server's answer, degrading to the merged local view
// when the server is unreachable.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yfin/finsync/internal/domain"
	"github.com/yfin/finsync/internal/logger"
	"github.com/yfin/finsync/internal/store"
)

// ErrNotFound is returned when a transaction id is absent both locally and in
// the backup queue.
var ErrNotFound = errors.New("engine: transaction not found")

// Engine orchestrates reconciliation. All dependencies are injected at
// construction; a single mutex serializes every pass so queue replay, ledger
// deltas, and store rewrites never interleave.
type Engine struct {
	mu         sync.Mutex
	api        TransactionAPI
	txs        store.TransactionStore
	backups    store.BackupStore
	ledger     AccountLedger
	categories CategoryResolver
}

// New wires an engine from its collaborators.
func New(api TransactionAPI, txs store.TransactionStore, backups store.BackupStore, ledger AccountLedger, categories CategoryResolver) *Engine {
	return &Engine{
		api:        api,
		txs:        txs,
		backups:    backups,
		ledger:     ledger,
		categories: categories,
	}
}

// Add creates a transaction. On remote failure the transaction is kept
// locally under a synthesized provisional id, a create operation is queued,
// and the original error is returned alongside the optimistic copy.
func (e *Engine) Add(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if tx.Amount.IsNegative() {
		return domain.Transaction{}, fmt.Errorf("engine: negative amount %s", tx.Amount)
	}

	// A retried add of an unsynced offline create folds into the pending
	// operation instead of opening a second one.
	if domain.IsProvisionalID(tx.ID) {
		if op, err := e.backups.Get(ctx, tx.ID); err == nil {
			return e.foldPendingLocked(ctx, op, tx)
		}
	}

	delta := tx.SignedAmount()

	stub, err := e.api.CreateTransaction(ctx, tx)
	if err == nil {
		confirmed := e.resolveStubLocked(ctx, stub, tx)
		return confirmed, e.confirmLocked(ctx, confirmed, tx.ID, delta)
	}

	provisional := tx
	if provisional.ID == 0 {
		provisional.ID = domain.NewProvisionalID()
	}
	now := time.Now()
	provisional.CreatedAt = now
	provisional.UpdatedAt = now

	if qErr := e.queueFailureLocked(ctx, domain.BackupCreate, provisional, delta, true); qErr != nil {
		return domain.Transaction{}, qErr
	}
	return provisional, err
}

// Update edits a transaction. Edits against an unsynced offline create fold
// into the pending create without touching the network. On remote failure the
// new payload replaces any queued one, the incremental delta is applied, and
// the original error is returned alongside the pending copy.
func (e *Engine) Update(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if tx.Amount.IsNegative() {
		return domain.Transaction{}, fmt.Errorf("engine: negative amount %s", tx.Amount)
	}

	if op, err := e.backups.Get(ctx, tx.ID); err == nil && domain.IsProvisionalID(tx.ID) {
		return e.foldPendingLocked(ctx, op, tx)
	}

	delta := tx.SignedAmount().Sub(e.effectiveSignedLocked(ctx, tx.ID))

	stub, err := e.api.UpdateTransaction(ctx, tx.ID, tx)
	if err == nil {
		confirmed := e.resolveStubLocked(ctx, stub, tx)
		return confirmed, e.confirmLocked(ctx, confirmed, tx.ID, delta)
	}

	pending := tx
	pending.UpdatedAt = time.Now()
	if qErr := e.queueFailureLocked(ctx, domain.BackupUpdate, pending, delta, false); qErr != nil {
		return domain.Transaction{}, qErr
	}
	return pending, err
}

// Delete removes a transaction. Deleting an unsynced offline create simply
// retires the pending operation and reverses its delta, with no network call.
// On remote failure the local copy is removed optimistically, a delete
// operation is queued, and the original error is returned.
func (e *Engine) Delete(ctx context.Context, id int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pendingOp, opErr := e.backups.Get(ctx, id)
	local, localErr := e.txs.Get(ctx, id)
	if opErr != nil && localErr != nil {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	// Unsynced offline create: nothing to delete on the server.
	if opErr == nil && pendingOp.Action == domain.BackupCreate && domain.IsProvisionalID(id) {
		if err := e.backups.Remove(ctx, id); err != nil {
			return err
		}
		if err := e.txs.Remove(ctx, id); err != nil {
			return err
		}
		_, err := e.ledger.ApplyDelta(ctx, pendingOp.Transaction.Account.ID, pendingOp.BalanceDelta.Neg())
		return err
	}

	snapshot := local
	if localErr != nil {
		snapshot = pendingOp.Transaction
	} else if opErr == nil && pendingOp.Transaction.UpdatedAt.After(local.UpdatedAt) {
		snapshot = pendingOp.Transaction
	}
	delta := snapshot.SignedAmount().Neg()

	err := e.api.DeleteTransaction(ctx, id)
	if err == nil || isNotFoundStatus(err) {
		// Gone on the server either way.
		if rmErr := e.txs.Remove(ctx, id); rmErr != nil {
			return rmErr
		}
		if rmErr := e.backups.Remove(ctx, id); rmErr != nil {
			return rmErr
		}
		_, applyErr := e.ledger.ApplyDelta(ctx, snapshot.Account.ID, delta)
		if applyErr != nil {
			return applyErr
		}
		return nil
	}

	if qErr := e.queueFailureLocked(ctx, domain.BackupDelete, snapshot, delta, false); qErr != nil {
		return qErr
	}
	if rmErr := e.txs.Remove(ctx, id); rmErr != nil {
		return rmErr
	}
	return err
}

// confirmLocked settles a server-confirmed mutation: local store update,
// ledger delta, pending operation retired.
func (e *Engine) confirmLocked(ctx context.Context, confirmed domain.Transaction, requestID int, delta decimal.Decimal) error {
	if requestID != 0 && requestID != confirmed.ID {
		// Server assigned a fresh id; drop any copy kept under the old one.
		if err := e.txs.Remove(ctx, requestID); err != nil {
			return err
		}
		if err := e.backups.Remove(ctx, requestID); err != nil {
			return err
		}
	}
	if err := e.txs.Update(ctx, confirmed); err != nil {
		return err
	}
	if _, err := e.ledger.ApplyDelta(ctx, confirmed.Account.ID, delta); err != nil {
		return err
	}
	return e.backups.Remove(ctx, confirmed.ID)
}

// queueFailureLocked records a failed mutation as a pending operation and
// applies its optimistic effects. delta is incremental against the current
// local state, so replacing an existing operation sums deltas instead of
// stacking the full amount twice.
func (e *Engine) queueFailureLocked(ctx context.Context, action domain.BackupAction, tx domain.Transaction, delta decimal.Decimal, writeLocal bool) error {
	op := domain.BackupOperation{
		ID:           tx.ID,
		Action:       action,
		Transaction:  tx,
		BalanceDelta: delta,
	}
	if existing, err := e.backups.Get(ctx, tx.ID); err == nil {
		op.BalanceDelta = existing.BalanceDelta.Add(delta)
		if existing.Action == domain.BackupCreate && action != domain.BackupDelete {
			op.Action = domain.BackupCreate
		}
	}
	if err := e.backups.AddOrUpdate(ctx, op); err != nil {
		return err
	}
	if writeLocal {
		if err := e.txs.Update(ctx, tx); err != nil {
			return err
		}
	}
	_, err := e.ledger.ApplyDelta(ctx, tx.Account.ID, delta)
	return err
}

// foldPendingLocked merges an edit of a not-yet-synced create into its
// pending operation: latest payload, summed delta, no network.
func (e *Engine) foldPendingLocked(ctx context.Context, op domain.BackupOperation, tx domain.Transaction) (domain.Transaction, error) {
	delta := tx.SignedAmount().Sub(op.Transaction.SignedAmount())

	merged := tx
	merged.ID = op.ID
	merged.CreatedAt = op.Transaction.CreatedAt
	merged.UpdatedAt = time.Now()

	op.Transaction = merged
	op.BalanceDelta = op.BalanceDelta.Add(delta)
	if err := e.backups.AddOrUpdate(ctx, op); err != nil {
		return domain.Transaction{}, err
	}
	if op.Action == domain.BackupCreate {
		if err := e.txs.Update(ctx, merged); err != nil {
			return domain.Transaction{}, err
		}
	}
	if !delta.IsZero() {
		if _, err := e.ledger.ApplyDelta(ctx, merged.Account.ID, delta); err != nil {
			return domain.Transaction{}, err
		}
	}
	return merged, nil
}

// effectiveSignedLocked is the signed amount the balance currently reflects
// for id: the pending payload when one is queued, the local copy otherwise,
// zero when the id is unknown.
func (e *Engine) effectiveSignedLocked(ctx context.Context, id int) decimal.Decimal {
	if op, err := e.backups.Get(ctx, id); err == nil {
		return op.Transaction.SignedAmount()
	}
	if local, err := e.txs.Get(ctx, id); err == nil {
		return local.SignedAmount()
	}
	return decimal.Zero
}

// resolveStubLocked turns a shallow server response into a fully-populated
// transaction, re-fetching the category when the server's id differs from
// what the caller sent and substituting the offline placeholder when it
// cannot be resolved at all.
func (e *Engine) resolveStubLocked(ctx context.Context, stub domain.TransactionStub, fallback domain.Transaction) domain.Transaction {
	log := logger.FromContext(ctx)

	category := fallback.Category
	if stub.CategoryID != category.ID {
		resolved, err := e.categories.ByID(ctx, stub.CategoryID)
		if err != nil {
			log.Warn().Err(err).Int("category_id", stub.CategoryID).Msg("Category unresolved, substituting offline placeholder")
			resolved = domain.OfflineCategory(stub.CategoryID, fallback.Category.IsIncome)
		}
		category = resolved
	}

	account := fallback.Account
	if current, err := e.ledger.Current(ctx); err == nil && current.ID == stub.AccountID {
		account = current
	}

	tx := domain.Transaction{
		ID:              stub.ID,
		Account:         account,
		Category:        category,
		Amount:          stub.Amount,
		TransactionDate: stub.TransactionDate,
		Comment:         stub.Comment,
		CreatedAt:       stub.CreatedAt,
		UpdatedAt:       stub.UpdatedAt,
	}
	if tx.UpdatedAt.IsZero() {
		tx.UpdatedAt = time.Now()
	}
	return tx
}
