package engine

import (
	"context"
	"time"

	"github.com/yfin/finsync/internal/domain"
	"github.com/yfin/finsync/internal/logger"
	"github.com/yfin/finsync/internal/remote"
)

func isNotFoundStatus(err error) bool { return remote.IsNotFound(err) }

// Get returns the account's transactions dated inside [from, to]. Each call
// is one reconciliation pass: the backup queue is drained first, then the
// server is asked for the window. A successful fetch is authoritative — it
// overwrites the local window and clears the queue. On failure the merged
// local view is served instead; the error surfaces only when local data is
// unavailable too.
func (e *Engine) Get(ctx context.Context, from, to time.Time) ([]domain.Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	log := logger.FromContext(ctx)

	account, accErr := e.ledger.Current(ctx)
	if accErr != nil {
		log.Warn().Err(accErr).Msg("Account unresolved, serving merged local view")
		return e.mergedViewLocked(ctx, 0, from, to)
	}

	e.replayLocked(ctx)

	txs, err := e.api.TransactionsForPeriod(ctx, account.ID, from, to)
	if err != nil {
		log.Warn().Err(err).Msg("Period fetch failed, serving merged local view")
		merged, mergeErr := e.mergedViewLocked(ctx, account.ID, from, to)
		if mergeErr != nil {
			return nil, err
		}
		return merged, nil
	}

	// The server is now authoritative for the whole window.
	for _, tx := range txs {
		if rmErr := e.txs.Remove(ctx, tx.ID); rmErr != nil {
			log.Warn().Err(rmErr).Int("id", tx.ID).Msg("Failed to replace local transaction")
			continue
		}
		if addErr := e.txs.Add(ctx, tx); addErr != nil {
			log.Warn().Err(addErr).Int("id", tx.ID).Msg("Failed to store server transaction")
		}
	}
	abandoned := false
	if ops, loadErr := e.backups.Load(ctx); loadErr == nil {
		abandoned = len(ops) > 0
		// Provisional copies of creates the server never saw would be
		// unreachable once the queue is gone; drop them with it.
		for _, op := range ops {
			if domain.IsProvisionalID(op.ID) {
				if rmErr := e.txs.Remove(ctx, op.ID); rmErr != nil {
					log.Warn().Err(rmErr).Int("id", op.ID).Msg("Failed to drop provisional transaction")
				}
			}
		}
	}
	if clearErr := e.backups.Clear(ctx); clearErr != nil {
		log.Warn().Err(clearErr).Msg("Failed to clear backup queue")
	}
	if abandoned {
		// The abandoned operations' optimistic deltas are baked into the
		// cached balance; the server's balance is the truth now.
		if _, reloadErr := e.ledger.Reload(ctx); reloadErr != nil {
			log.Warn().Err(reloadErr).Msg("Failed to resync account after clearing queue")
		}
	}

	return domain.FilterPeriod(domain.UniqueByID(txs), from, to), nil
}

// GetByDirection is Get narrowed to income or outcome transactions.
func (e *Engine) GetByDirection(ctx context.Context, from, to time.Time, d domain.Direction) ([]domain.Transaction, error) {
	txs, err := e.Get(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return domain.FilterDirection(txs, d), nil
}

// Sync drains the backup queue without a period fetch and reports how many
// operations remain queued afterwards.
func (e *Engine) Sync(ctx context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.replayLocked(ctx)

	ops, err := e.backups.Load(ctx)
	if err != nil {
		return 0, err
	}
	return len(ops), nil
}

// Pending lists the operations still waiting for the server.
func (e *Engine) Pending(ctx context.Context) ([]domain.BackupOperation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.backups.Load(ctx)
}

// replayLocked attempts every queued operation in queue order. Failures are
// logged and skipped so one unreachable operation never aborts the pass;
// successes are retired from the queue in one batch at the end.
func (e *Engine) replayLocked(ctx context.Context) {
	log := logger.FromContext(ctx)

	ops, err := e.backups.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load backup queue, skipping replay")
		return
	}
	if len(ops) == 0 {
		return
	}

	var synced []int
	for _, op := range ops {
		if err := e.replayOneLocked(ctx, op); err != nil {
			log.Warn().
				Err(err).
				Int("id", op.ID).
				Str("action", string(op.Action)).
				Msg("Replay failed, operation stays queued")
			continue
		}
		log.Info().
			Int("id", op.ID).
			Str("action", string(op.Action)).
			Msg("Replayed pending operation")
		synced = append(synced, op.ID)
	}

	if len(synced) > 0 {
		if err := e.backups.RemoveMany(ctx, synced); err != nil {
			log.Warn().Err(err).Msg("Failed to retire replayed operations")
		}
	}
}

// replayOneLocked re-sends one queued mutation. The cached balance already
// carries the operation's delta, so settling the balance is a push of the
// absolute local value, never a re-application of the delta — the write-time
// PUT may or may not have landed, and a push is correct either way.
func (e *Engine) replayOneLocked(ctx context.Context, op domain.BackupOperation) error {
	switch op.Action {
	case domain.BackupCreate:
		stub, err := e.api.CreateTransaction(ctx, op.Transaction)
		if err != nil {
			return err
		}
		confirmed := e.resolveStubLocked(ctx, stub, op.Transaction)
		// The server assigned the real id; the provisional copy goes away.
		if err := e.txs.Remove(ctx, op.ID); err != nil {
			return err
		}
		if err := e.txs.Add(ctx, confirmed); err != nil {
			return err
		}
		_, err = e.ledger.PushLocal(ctx, confirmed.Account.ID)
		return err

	case domain.BackupUpdate:
		// If the local confirmed copy already matches the payload the server
		// has seen this update; replaying it would be redundant and unsafe.
		if local, err := e.txs.Get(ctx, op.ID); err == nil && samePayload(local, op.Transaction) {
			return nil
		}
		stub, err := e.api.UpdateTransaction(ctx, op.ID, op.Transaction)
		if err != nil {
			return err
		}
		confirmed := e.resolveStubLocked(ctx, stub, op.Transaction)
		if err := e.txs.Update(ctx, confirmed); err != nil {
			return err
		}
		_, err = e.ledger.PushLocal(ctx, confirmed.Account.ID)
		return err

	case domain.BackupDelete:
		err := e.api.DeleteTransaction(ctx, op.ID)
		if err != nil && !isNotFoundStatus(err) {
			return err
		}
		if err := e.txs.Remove(ctx, op.ID); err != nil {
			return err
		}
		_, pushErr := e.ledger.PushLocal(ctx, op.Transaction.Account.ID)
		return pushErr

	default:
		// Unknown actions are retired rather than replayed forever.
		return nil
	}
}

// mergedViewLocked builds the read fallback: confirmed local transactions
// unioned with pending non-delete snapshots, pending deletes suppressed,
// deduplicated by id with the later UpdatedAt winning, filtered to the
// account and period.
func (e *Engine) mergedViewLocked(ctx context.Context, accountID int, from, to time.Time) ([]domain.Transaction, error) {
	local, err := e.txs.Load(ctx)
	if err != nil {
		return nil, err
	}

	var pending []domain.Transaction
	deleted := make(map[int]struct{})
	if ops, err := e.backups.Load(ctx); err == nil {
		for _, op := range ops {
			if op.Action == domain.BackupDelete {
				deleted[op.ID] = struct{}{}
				continue
			}
			pending = append(pending, op.Transaction)
		}
	} else {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Msg("Failed to load backup queue for merged view")
	}

	merged := domain.MergeTransactions(local, pending)
	out := make([]domain.Transaction, 0, len(merged))
	for _, tx := range merged {
		if _, gone := deleted[tx.ID]; gone {
			continue
		}
		if accountID != 0 && tx.Account.ID != accountID {
			continue
		}
		if tx.InPeriod(from, to) {
			out = append(out, tx)
		}
	}
	return out, nil
}

// samePayload reports whether two copies of a transaction would produce the
// same server state: identical category, amount, date, and comment.
func samePayload(a, b domain.Transaction) bool {
	return a.Category.ID == b.Category.ID &&
		a.Amount.Equal(b.Amount) &&
		a.TransactionDate.Equal(b.TransactionDate) &&
		a.Comment == b.Comment
}
