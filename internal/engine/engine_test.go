package engine

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yfin/finsync/internal/catalog"
	"github.com/yfin/finsync/internal/domain"
	"github.com/yfin/finsync/internal/ledger"
	"github.com/yfin/finsync/internal/remote"
	"github.com/yfin/finsync/internal/store/memory"
)

var (
	periodFrom = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	periodTo   = time.Date(2025, 7, 31, 23, 59, 59, 0, time.UTC)

	salaryCategory = domain.Category{ID: 2, Name: "Salary", Emoji: '💼', IsIncome: true}
	foodCategory   = domain.Category{ID: 1, Name: "Food", Emoji: '🍔'}
)

// fakeServer simulates the finance API end to end: accounts, categories, and
// transaction CRUD, with a switchable network and per-endpoint failure knobs.
type fakeServer struct {
	online      bool
	failCreates bool
	failUpdates bool

	nextID     int
	account    domain.Account
	categories []domain.Category
	txs        map[int]domain.Transaction

	createCalls int
	updateCalls int
	deleteCalls int
	periodCalls int
}

func newFakeServer(balance string) *fakeServer {
	return &fakeServer{
		online: true,
		nextID: 100,
		account: domain.Account{
			ID:       1,
			Name:     "Main",
			Balance:  decimal.RequireFromString(balance),
			Currency: "RUB",
		},
		categories: []domain.Category{foodCategory, salaryCategory},
		txs:        make(map[int]domain.Transaction),
	}
}

func (f *fakeServer) offlineErr() error {
	return &remote.Error{Kind: remote.KindTransport}
}

func (f *fakeServer) Accounts(ctx context.Context) ([]domain.Account, error) {
	if !f.online {
		return nil, f.offlineErr()
	}
	return []domain.Account{f.account}, nil
}

func (f *fakeServer) UpdateAccount(ctx context.Context, id int, name string, balance decimal.Decimal, currency string) (domain.Account, error) {
	if !f.online {
		return domain.Account{}, f.offlineErr()
	}
	f.account.Name = name
	f.account.Balance = balance
	f.account.Currency = currency
	return f.account, nil
}

func (f *fakeServer) CategoriesByDirection(ctx context.Context, isIncome bool) ([]domain.Category, error) {
	if !f.online {
		return nil, f.offlineErr()
	}
	var out []domain.Category
	for _, cat := range f.categories {
		if cat.IsIncome == isIncome {
			out = append(out, cat)
		}
	}
	return out, nil
}

func (f *fakeServer) Categories(ctx context.Context) ([]domain.Category, error) {
	if !f.online {
		return nil, f.offlineErr()
	}
	return f.categories, nil
}

func (f *fakeServer) TransactionsForPeriod(ctx context.Context, accountID int, from, to time.Time) ([]domain.Transaction, error) {
	f.periodCalls++
	if !f.online {
		return nil, f.offlineErr()
	}
	var out []domain.Transaction
	for _, tx := range f.txs {
		if tx.Account.ID == accountID && tx.InPeriod(from, to) {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeServer) CreateTransaction(ctx context.Context, tx domain.Transaction) (domain.TransactionStub, error) {
	f.createCalls++
	if !f.online {
		return domain.TransactionStub{}, f.offlineErr()
	}
	if f.failCreates {
		return domain.TransactionStub{}, &remote.Error{Kind: remote.KindHTTPStatus, Status: 500}
	}
	now := time.Now()
	stored := tx
	stored.ID = f.nextID
	f.nextID++
	stored.Account = f.account
	for _, cat := range f.categories {
		if cat.ID == tx.Category.ID {
			stored.Category = cat
		}
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now
	f.txs[stored.ID] = stored
	return f.stub(stored), nil
}

func (f *fakeServer) UpdateTransaction(ctx context.Context, id int, tx domain.Transaction) (domain.TransactionStub, error) {
	f.updateCalls++
	if !f.online || f.failUpdates {
		return domain.TransactionStub{}, f.offlineErr()
	}
	stored, ok := f.txs[id]
	if !ok {
		return domain.TransactionStub{}, &remote.Error{Kind: remote.KindHTTPStatus, Status: 404}
	}
	stored.Category = tx.Category
	stored.Amount = tx.Amount
	stored.TransactionDate = tx.TransactionDate
	stored.Comment = tx.Comment
	stored.UpdatedAt = time.Now()
	f.txs[id] = stored
	return f.stub(stored), nil
}

func (f *fakeServer) DeleteTransaction(ctx context.Context, id int) error {
	f.deleteCalls++
	if !f.online {
		return f.offlineErr()
	}
	if _, ok := f.txs[id]; !ok {
		return &remote.Error{Kind: remote.KindHTTPStatus, Status: 404}
	}
	delete(f.txs, id)
	return nil
}

func (f *fakeServer) stub(tx domain.Transaction) domain.TransactionStub {
	return domain.TransactionStub{
		ID:              tx.ID,
		AccountID:       tx.Account.ID,
		CategoryID:      tx.Category.ID,
		Amount:          tx.Amount,
		TransactionDate: tx.TransactionDate,
		Comment:         tx.Comment,
		CreatedAt:       tx.CreatedAt,
		UpdatedAt:       tx.UpdatedAt,
	}
}

type fixture struct {
	server   *fakeServer
	txs      *memory.TransactionStore
	backups  *memory.BackupStore
	accounts *memory.AccountStore
	eng      *Engine
}

// newFixture wires a full engine over in-memory stores with the account cache
// pre-warmed, like a client that has been online at least once.
func newFixture(t *testing.T, balance string) *fixture {
	t.Helper()
	server := newFakeServer(balance)
	f := &fixture{
		server:   server,
		txs:      memory.NewTransactionStore(),
		backups:  memory.NewBackupStore(),
		accounts: memory.NewAccountStore(),
	}
	require.NoError(t, f.accounts.Save(context.Background(), server.account))

	led := ledger.New(server, f.accounts)
	cats := catalog.NewCategoryService(server, memory.NewCategoryStore())
	f.eng = New(server, f.txs, f.backups, led, cats)
	return f
}

func (f *fixture) localBalance(t *testing.T) decimal.Decimal {
	t.Helper()
	acc, err := f.accounts.Get(context.Background(), 1)
	require.NoError(t, err)
	return acc.Balance
}

func (f *fixture) pending(t *testing.T) []domain.BackupOperation {
	t.Helper()
	ops, err := f.backups.Load(context.Background())
	require.NoError(t, err)
	return ops
}

func draftTx(cat domain.Category, amount, comment string) domain.Transaction {
	return domain.Transaction{
		Account:         domain.Account{ID: 1, Name: "Main", Currency: "RUB"},
		Category:        cat,
		Amount:          decimal.RequireFromString(amount),
		TransactionDate: time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC),
		Comment:         comment,
	}
}

func assertBalance(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "balance: got %s, want %s", got, want)
}

func TestAdd_Online(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "5000.00")

	created, err := f.eng.Add(ctx, draftTx(salaryCategory, "1000.00", "July salary"))
	require.NoError(t, err)

	assert.Equal(t, 100, created.ID, "server assigns the id")
	assert.Equal(t, salaryCategory, created.Category)
	assert.Empty(t, f.pending(t))
	assertBalance(t, "6000.00", f.server.account.Balance)
	assertBalance(t, "6000.00", f.localBalance(t))

	local, err := f.txs.Get(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, "July salary", local.Comment)
}

func TestAdd_RejectsNegativeAmount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "5000.00")

	_, err := f.eng.Add(ctx, draftTx(foodCategory, "0", ""))
	require.NoError(t, err, "zero is a valid amount")

	draft := draftTx(foodCategory, "10.00", "")
	draft.Amount = draft.Amount.Neg()
	_, err = f.eng.Add(ctx, draft)
	assert.Error(t, err)
	_, err = f.eng.Update(ctx, draft)
	assert.Error(t, err)
}

// The canonical offline-create run: a 1000.00 income against a 5000.00 balance
// while unreachable must leave a provisional local copy, exactly one pending
// create, a 6000.00 local balance, and a merged view that shows the new
// transaction.
func TestAdd_OfflineScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "5000.00")
	f.server.online = false

	created, err := f.eng.Add(ctx, draftTx(salaryCategory, "1000.00", "July salary"))
	require.Error(t, err, "the network failure still surfaces")
	assert.True(t, domain.IsProvisionalID(created.ID))

	ops := f.pending(t)
	require.Len(t, ops, 1)
	assert.Equal(t, domain.BackupCreate, ops[0].Action)
	assert.Equal(t, created.ID, ops[0].ID)
	assert.True(t, decimal.RequireFromString("1000").Equal(ops[0].BalanceDelta))

	local, err := f.txs.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1000").Equal(local.Amount))

	assertBalance(t, "6000.00", f.localBalance(t))
	assertBalance(t, "5000.00", f.server.account.Balance)

	view, err := f.eng.Get(ctx, periodFrom, periodTo)
	require.NoError(t, err, "offline reads degrade to the merged view, not an error")
	require.Len(t, view, 1)
	assert.Equal(t, created.ID, view[0].ID)
}

// Reconnecting and reading the period must replay the pending create, clear
// the queue, swap the provisional copy for the server's, and settle the
// balance at the optimistic 6000.00 on both sides.
func TestGet_ReconcilesAfterReconnect(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "5000.00")
	f.server.online = false

	created, err := f.eng.Add(ctx, draftTx(salaryCategory, "1000.00", "July salary"))
	require.Error(t, err)

	f.server.online = true
	view, err := f.eng.Get(ctx, periodFrom, periodTo)
	require.NoError(t, err)

	require.Len(t, view, 1)
	assert.Equal(t, 100, view[0].ID)
	assert.Empty(t, f.pending(t))

	_, err = f.txs.Get(ctx, created.ID)
	assert.Error(t, err, "provisional copy must be gone")

	local, err := f.txs.Get(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, "July salary", local.Comment)

	assertBalance(t, "6000.00", f.server.account.Balance)
	assertBalance(t, "6000.00", f.localBalance(t))
	// One failed offline attempt plus exactly one replay.
	assert.Equal(t, 2, f.server.createCalls)
}

func TestSync_ReplayIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "5000.00")
	f.server.online = false

	_, err := f.eng.Add(ctx, draftTx(salaryCategory, "1000.00", ""))
	require.Error(t, err)

	remaining, err := f.eng.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining, "offline sync leaves the operation queued")

	f.server.online = true
	remaining, err = f.eng.Sync(ctx)
	require.NoError(t, err)
	assert.Zero(t, remaining)

	// A second pass has nothing to do: same server state, same balance. The
	// create hit the network three times in total — the failed offline
	// attempt, the failed offline replay, and the one successful replay.
	remaining, err = f.eng.Sync(ctx)
	require.NoError(t, err)
	assert.Zero(t, remaining)
	assert.Equal(t, 3, f.server.createCalls)
	assertBalance(t, "6000.00", f.server.account.Balance)
}

// Repeated offline edits of one transaction keep a single pending operation
// whose summed delta equals the single-edit delta, so D1 then D2 lands the
// balance exactly where D1+D2 would.
func TestUpdate_OfflineKeepsOneOperationPerID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "5000.00")

	created, err := f.eng.Add(ctx, draftTx(foodCategory, "100.00", "groceries"))
	require.NoError(t, err)
	assertBalance(t, "4900.00", f.localBalance(t))

	f.server.online = false

	edit := created
	edit.Amount = decimal.RequireFromString("250.00")
	_, err = f.eng.Update(ctx, edit)
	require.Error(t, err)

	edit.Amount = decimal.RequireFromString("300.00")
	_, err = f.eng.Update(ctx, edit)
	require.Error(t, err)

	ops := f.pending(t)
	require.Len(t, ops, 1)
	assert.Equal(t, domain.BackupUpdate, ops[0].Action)
	assert.True(t, decimal.RequireFromString("300").Equal(ops[0].Transaction.Amount))
	assert.True(t, decimal.RequireFromString("-200").Equal(ops[0].BalanceDelta),
		"100 -> 250 -> 300 outcome must sum to the same delta as 100 -> 300")
	assertBalance(t, "4700.00", f.localBalance(t))

	// The confirmed local copy stays untouched until the server accepts the
	// edit; the pending payload lives only in the queue.
	local, err := f.txs.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("100").Equal(local.Amount))
}

// An online edit that succeeds while an earlier edit is still queued must
// settle the queued delta too, not just the increment: 100 -> 250 offline ->
// 300 online is a net -200 against the original balance.
func TestUpdate_OnlineSettlesQueuedDelta(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "5000.00")

	created, err := f.eng.Add(ctx, draftTx(foodCategory, "100.00", "groceries"))
	require.NoError(t, err)
	assertBalance(t, "4900.00", f.localBalance(t))

	f.server.online = false
	edit := created
	edit.Amount = decimal.RequireFromString("250.00")
	_, err = f.eng.Update(ctx, edit)
	require.Error(t, err)
	assertBalance(t, "4750.00", f.localBalance(t))

	f.server.online = true
	edit.Amount = decimal.RequireFromString("300.00")
	updated, err := f.eng.Update(ctx, edit)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("300").Equal(updated.Amount))

	assert.Empty(t, f.pending(t))
	assertBalance(t, "4700.00", f.localBalance(t))
	assertBalance(t, "4700.00", f.server.account.Balance)

	local, err := f.txs.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("300").Equal(local.Amount))
}

// When the transaction endpoint fails but the optimistic balance push lands,
// the later replay must not add the delta on top of the already-adjusted
// server balance.
func TestSync_NoDoubleApplyAfterPartialFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "5000.00")
	f.server.failCreates = true

	created, err := f.eng.Add(ctx, draftTx(salaryCategory, "1000.00", ""))
	require.Error(t, err)
	assert.True(t, domain.IsProvisionalID(created.ID))

	// The create never reached the server, but the balance push did.
	assertBalance(t, "6000.00", f.localBalance(t))
	assertBalance(t, "6000.00", f.server.account.Balance)
	require.Len(t, f.pending(t), 1)

	f.server.failCreates = false
	remaining, err := f.eng.Sync(ctx)
	require.NoError(t, err)
	assert.Zero(t, remaining)

	assertBalance(t, "6000.00", f.server.account.Balance)
	assertBalance(t, "6000.00", f.localBalance(t))
	require.Len(t, f.server.txs, 1)
}

// The merged view prefers the copy with the later UpdatedAt, so a pending
// offline edit shadows the stale confirmed copy without duplicating the row.
func TestGet_MergedViewDeduplicates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "5000.00")

	created, err := f.eng.Add(ctx, draftTx(foodCategory, "100.00", "groceries"))
	require.NoError(t, err)

	f.server.online = false
	edit := created
	edit.Amount = decimal.RequireFromString("250.00")
	_, err = f.eng.Update(ctx, edit)
	require.Error(t, err)

	view, err := f.eng.Get(ctx, periodFrom, periodTo)
	require.NoError(t, err)
	require.Len(t, view, 1, "local and pending copies of one id collapse to one row")
	assert.True(t, decimal.RequireFromString("250").Equal(view[0].Amount))
}

// Editing a not-yet-synced offline create folds into the pending create: no
// network traffic, one operation, create action preserved, delta summed.
func TestUpdate_FoldsIntoPendingCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "5000.00")
	f.server.online = false

	created, err := f.eng.Add(ctx, draftTx(salaryCategory, "1000.00", ""))
	require.Error(t, err)

	edit := created
	edit.Amount = decimal.RequireFromString("1500.00")
	folded, err := f.eng.Update(ctx, edit)
	require.NoError(t, err, "folding needs no network and must not fail")
	assert.Equal(t, created.ID, folded.ID)

	ops := f.pending(t)
	require.Len(t, ops, 1)
	assert.Equal(t, domain.BackupCreate, ops[0].Action, "the pending operation stays a create")
	assert.True(t, decimal.RequireFromString("1500").Equal(ops[0].Transaction.Amount))
	assert.True(t, decimal.RequireFromString("1500").Equal(ops[0].BalanceDelta))
	assertBalance(t, "6500.00", f.localBalance(t))
	assert.Equal(t, 1, f.server.createCalls, "only the original failed attempt hit the network")
	assert.Zero(t, f.server.updateCalls)

	local, err := f.txs.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1500").Equal(local.Amount))
}

// Deleting an unsynced offline create retires the pending operation and
// reverses its delta without ever talking to the server.
func TestDelete_UnsyncedCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "5000.00")
	f.server.online = false

	created, err := f.eng.Add(ctx, draftTx(salaryCategory, "1000.00", ""))
	require.Error(t, err)
	assertBalance(t, "6000.00", f.localBalance(t))

	require.NoError(t, f.eng.Delete(ctx, created.ID))

	assert.Empty(t, f.pending(t))
	_, err = f.txs.Get(ctx, created.ID)
	assert.Error(t, err)
	assertBalance(t, "5000.00", f.localBalance(t))
	assert.Zero(t, f.server.deleteCalls)
}

func TestDelete_OfflineQueuesAndSuppresses(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "5000.00")

	created, err := f.eng.Add(ctx, draftTx(foodCategory, "100.00", "groceries"))
	require.NoError(t, err)
	assertBalance(t, "4900.00", f.localBalance(t))

	f.server.online = false
	err = f.eng.Delete(ctx, created.ID)
	require.Error(t, err, "the network failure still surfaces")

	ops := f.pending(t)
	require.Len(t, ops, 1)
	assert.Equal(t, domain.BackupDelete, ops[0].Action)
	assert.True(t, decimal.RequireFromString("100").Equal(ops[0].BalanceDelta),
		"deleting an outcome gives the amount back")
	assertBalance(t, "5000.00", f.localBalance(t))

	view, err := f.eng.Get(ctx, periodFrom, periodTo)
	require.NoError(t, err)
	assert.Empty(t, view, "pending deletes are suppressed from the merged view")

	// Reconnect: the queued delete replays and the server copy goes away.
	f.server.online = true
	remaining, err := f.eng.Sync(ctx)
	require.NoError(t, err)
	assert.Zero(t, remaining)
	assert.NotContains(t, f.server.txs, created.ID)
	assertBalance(t, "5000.00", f.server.account.Balance)
}

func TestDelete_GoneOnServerCountsAsSuccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "5000.00")

	created, err := f.eng.Add(ctx, draftTx(foodCategory, "100.00", ""))
	require.NoError(t, err)

	// Someone else already deleted it server-side.
	delete(f.server.txs, created.ID)

	require.NoError(t, f.eng.Delete(ctx, created.ID))
	assert.Empty(t, f.pending(t))
	assertBalance(t, "5000.00", f.localBalance(t))
}

func TestDelete_UnknownID(t *testing.T) {
	f := newFixture(t, "5000.00")
	err := f.eng.Delete(context.Background(), 777)
	assert.ErrorIs(t, err, ErrNotFound)
}

// A successful full-period fetch is authoritative: the local window is
// rewritten from the server and the queue is cleared even when a replay in the
// same pass failed.
func TestGet_RemoteWinsAndClearsQueue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "5000.00")

	created, err := f.eng.Add(ctx, draftTx(foodCategory, "100.00", "groceries"))
	require.NoError(t, err)

	f.server.online = false
	edit := created
	edit.Amount = decimal.RequireFromString("250.00")
	_, err = f.eng.Update(ctx, edit)
	require.Error(t, err)

	// Back online, but updates keep failing: the replay cannot land while the
	// period fetch succeeds.
	f.server.online = true
	f.server.failUpdates = true

	view, err := f.eng.Get(ctx, periodFrom, periodTo)
	require.NoError(t, err)

	require.Len(t, view, 1)
	assert.True(t, decimal.RequireFromString("100").Equal(view[0].Amount),
		"the server's copy wins over the unsynced edit")
	assert.Empty(t, f.pending(t), "a full-period fetch clears the queue")

	local, err := f.txs.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("100").Equal(local.Amount))

	// The abandoned edit's optimistic delta is rolled back with the op: the
	// server's balance is re-fetched and wins.
	assertBalance(t, "4900.00", f.localBalance(t))
	assertBalance(t, "4900.00", f.server.account.Balance)
}

func TestGetByDirection(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "5000.00")

	_, err := f.eng.Add(ctx, draftTx(salaryCategory, "1000.00", ""))
	require.NoError(t, err)
	_, err = f.eng.Add(ctx, draftTx(foodCategory, "100.00", ""))
	require.NoError(t, err)

	income, err := f.eng.GetByDirection(ctx, periodFrom, periodTo, domain.Income)
	require.NoError(t, err)
	require.Len(t, income, 1)
	assert.Equal(t, salaryCategory.ID, income[0].Category.ID)

	outcome, err := f.eng.GetByDirection(ctx, periodFrom, periodTo, domain.Outcome)
	require.NoError(t, err)
	assert.Len(t, outcome, 1)
}

func TestPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "5000.00")
	f.server.online = false

	_, err := f.eng.Add(ctx, draftTx(salaryCategory, "1000.00", ""))
	require.Error(t, err)

	ops, err := f.eng.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, domain.BackupCreate, ops[0].Action)
}

// A replayed update against a local copy the server already refreshed is
// skipped instead of re-sent.
func TestReplay_SkipsAlreadyAppliedUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "5000.00")

	created, err := f.eng.Add(ctx, draftTx(foodCategory, "100.00", "groceries"))
	require.NoError(t, err)

	f.server.online = false
	edit := created
	edit.Amount = decimal.RequireFromString("250.00")
	_, err = f.eng.Update(ctx, edit)
	require.Error(t, err)

	// Simulate the server having seen the edit through another device and the
	// local store having been refreshed to match.
	serverCopy := f.server.txs[created.ID]
	serverCopy.Amount = decimal.RequireFromString("250.00")
	f.server.txs[created.ID] = serverCopy
	refreshed := edit
	require.NoError(t, f.txs.Update(ctx, refreshed))

	f.server.online = true
	updateCallsBefore := f.server.updateCalls
	remaining, err := f.eng.Sync(ctx)
	require.NoError(t, err)
	assert.Zero(t, remaining)
	assert.Equal(t, updateCallsBefore, f.server.updateCalls, "an identical local copy must not be re-sent")
}

func TestGet_OfflineWithEmptyStores(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "5000.00")
	f.server.online = false

	view, err := f.eng.Get(ctx, periodFrom, periodTo)
	require.NoError(t, err)
	assert.Empty(t, view)
}
