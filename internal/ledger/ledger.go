// Package ledger owns the account balance. Every balance change in the
// client funnels through ApplyDelta; nothing else writes the balance field.
//
// The locally cached account is authoritative for the balance: the server
// only ever learns balances this client pushed, so the cache is never behind
// the server. Deltas are applied on the cached balance, and because balances
// cross the wire as absolute values, any one successful push catches the
// server up on every adjustment it missed in between.
package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/yfin/finsync/internal/domain"
	"github.com/yfin/finsync/internal/logger"
	"github.com/yfin/finsync/internal/store"
)

// AccountAPI is the slice of the remote client the ledger needs.
type AccountAPI interface {
	Accounts(ctx context.Context) ([]domain.Account, error)
	UpdateAccount(ctx context.Context, id int, name string, balance decimal.Decimal, currency string) (domain.Account, error)
}

// Ledger resolves the current account and applies signed balance deltas.
// All operations are serialized through one mutex so a read-modify-write of
// the balance can never race with another caller.
type Ledger struct {
	mu       sync.Mutex
	api      AccountAPI
	accounts store.AccountStore
}

// New builds a ledger over the given remote API and local account cache.
func New(api AccountAPI, accounts store.AccountStore) *Ledger {
	return &Ledger{api: api, accounts: accounts}
}

// Current resolves the account the client operates on: the cached copy when
// one exists, otherwise the first account the server reports, cached for next
// time. The cache is preferred because its balance carries optimistic
// adjustments the server may not have seen yet.
func (l *Ledger) Current(ctx context.Context) (domain.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentLocked(ctx)
}

func (l *Ledger) currentLocked(ctx context.Context) (domain.Account, error) {
	if acc, err := l.accounts.First(ctx); err == nil {
		return acc, nil
	}
	return l.reloadLocked(ctx)
}

// Reload discards the cached copy in favor of the server's. Called when the
// server has become authoritative, such as after a full-period fetch that
// abandoned queued operations along with their optimistic deltas.
func (l *Ledger) Reload(ctx context.Context) (domain.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reloadLocked(ctx)
}

func (l *Ledger) reloadLocked(ctx context.Context) (domain.Account, error) {
	log := logger.FromContext(ctx)

	accounts, err := l.api.Accounts(ctx)
	if err != nil {
		return domain.Account{}, fmt.Errorf("ledger: fetch accounts: %w", err)
	}
	if len(accounts) == 0 {
		return domain.Account{}, fmt.Errorf("ledger: server returned no accounts")
	}
	acc := accounts[0]
	if saveErr := l.accounts.Save(ctx, acc); saveErr != nil {
		log.Warn().Err(saveErr).Int("account_id", acc.ID).Msg("Failed to cache account locally")
	}
	return acc, nil
}

// ApplyDelta adds delta to the cached balance and persists the result both
// locally and remotely (PUT). Applying on the cached base makes successive
// applications compose: D1 then D2 lands on the same balance as a single
// D1+D2, regardless of what the server has seen.
//
// A failed remote PUT is not an error here: the local balance is still
// adjusted, and the next successful push of the absolute balance settles it.
func (l *Ledger) ApplyDelta(ctx context.Context, accountID int, delta decimal.Decimal) (domain.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	log := logger.FromContext(ctx)

	acc, err := l.baseAccountLocked(ctx, accountID)
	if err != nil {
		return domain.Account{}, err
	}

	updated := acc.WithBalance(acc.Balance.Add(delta))

	if remoteAcc, err := l.api.UpdateAccount(ctx, updated.ID, updated.Name, updated.Balance, updated.Currency); err != nil {
		log.Warn().
			Err(err).
			Int("account_id", updated.ID).
			Str("delta", delta.String()).
			Msg("Remote balance update failed, keeping local adjustment")
	} else {
		updated = remoteAcc
	}

	if err := l.accounts.Save(ctx, updated); err != nil {
		return domain.Account{}, fmt.Errorf("ledger: persist balance: %w", err)
	}

	log.Debug().
		Int("account_id", updated.ID).
		Str("delta", delta.String()).
		Str("balance", updated.Balance.String()).
		Msg("Applied balance delta")
	return updated, nil
}

// baseAccountLocked resolves the balance the delta applies on top of: the
// cached copy, which already reflects every earlier optimistic adjustment.
// The server is consulted only for an account never cached before.
func (l *Ledger) baseAccountLocked(ctx context.Context, accountID int) (domain.Account, error) {
	if local, err := l.accounts.Get(ctx, accountID); err == nil {
		return local, nil
	}
	acc, err := l.reloadLocked(ctx)
	if err != nil {
		return domain.Account{}, err
	}
	if acc.ID != accountID {
		return domain.Account{}, fmt.Errorf("ledger: unknown account %d", accountID)
	}
	return acc, nil
}

// PushLocal re-sends the cached balance to the server without changing it.
// Replay uses this to settle queued adjustments: the cached balance already
// includes them, and pushing it as an absolute value cannot apply anything
// twice — not even when the optimistic PUT at write time had landed. A failed
// push is logged and left for the next successful push to carry.
func (l *Ledger) PushLocal(ctx context.Context, accountID int) (domain.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	log := logger.FromContext(ctx)

	acc, err := l.accounts.Get(ctx, accountID)
	if err != nil {
		return domain.Account{}, fmt.Errorf("ledger: push balance for account %d: %w", accountID, err)
	}

	remoteAcc, err := l.api.UpdateAccount(ctx, acc.ID, acc.Name, acc.Balance, acc.Currency)
	if err != nil {
		log.Warn().
			Err(err).
			Int("account_id", acc.ID).
			Msg("Balance push failed, keeping local copy")
		return acc, nil
	}
	if saveErr := l.accounts.Save(ctx, remoteAcc); saveErr != nil {
		return domain.Account{}, fmt.Errorf("ledger: persist balance: %w", saveErr)
	}
	return remoteAcc, nil
}

// UpdateAccount pushes a user-edited name/balance/currency for the account,
// keeping the local cache in step. Used by the balance-editing screen, not by
// the sync engine.
func (l *Ledger) UpdateAccount(ctx context.Context, acc domain.Account) (domain.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	updated, err := l.api.UpdateAccount(ctx, acc.ID, acc.Name, acc.Balance, acc.Currency)
	if err != nil {
		return domain.Account{}, err
	}
	if saveErr := l.accounts.Save(ctx, updated); saveErr != nil {
		return domain.Account{}, fmt.Errorf("ledger: persist account: %w", saveErr)
	}
	return updated, nil
}
