package domain

import "github.com/shopspring/decimal"

// BackupAction is the kind of mutation a BackupOperation will replay.
type BackupAction string

const (
	BackupCreate BackupAction = "create"
	BackupUpdate BackupAction = "update"
	BackupDelete BackupAction = "delete"
)

// BackupOperation is a durable record of a mutation that has not been
// confirmed by the server yet. ID is the id of the transaction it concerns;
// the queue holds at most one operation per id, so a later offline edit of the
// same transaction replaces the earlier record instead of stacking on it.
// BalanceDelta is the total signed balance adjustment this pending operation
// has already applied to the account.
type BackupOperation struct {
	ID           int
	Action       BackupAction
	Transaction  Transaction
	BalanceDelta decimal.Decimal
}
