package domain

import (
	"sort"
	"time"
)

// MergeTransactions builds the deduplicated union of confirmed local
// transactions and still-pending backup snapshots. When the same id appears in
// both sets the copy with the later UpdatedAt wins. The result is sorted by
// transaction date, newest first.
func MergeTransactions(local, pending []Transaction) []Transaction {
	byID := make(map[int]Transaction, len(local)+len(pending))
	for _, tx := range local {
		byID[tx.ID] = tx
	}
	for _, tx := range pending {
		if existing, ok := byID[tx.ID]; ok && existing.UpdatedAt.After(tx.UpdatedAt) {
			continue
		}
		byID[tx.ID] = tx
	}

	merged := make([]Transaction, 0, len(byID))
	for _, tx := range byID {
		merged = append(merged, tx)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].TransactionDate.After(merged[j].TransactionDate)
	})
	return merged
}

// FilterPeriod keeps only the transactions whose date falls inside [from, to].
func FilterPeriod(txs []Transaction, from, to time.Time) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.InPeriod(from, to) {
			out = append(out, tx)
		}
	}
	return out
}

// FilterDirection keeps only the transactions whose category matches the
// given direction.
func FilterDirection(txs []Transaction, d Direction) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Category.Direction() == d {
			out = append(out, tx)
		}
	}
	return out
}
