package remote

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yfin/finsync/internal/domain"
)

func TestParseDate_BothVariants(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "with fractional seconds", input: "2025-07-15T12:30:45.123Z"},
		{name: "without fractional seconds", input: "2025-07-15T12:30:45Z"},
		{name: "with offset", input: "2025-07-15T12:30:45+03:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := parseDate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, 2025, parsed.Year())
		})
	}

	_, err := parseDate("15.07.2025")
	assert.Error(t, err)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1000.00", formatAmount(decimal.RequireFromString("1000")))
	assert.Equal(t, "0.50", formatAmount(decimal.RequireFromString("0.5")))
	assert.Equal(t, "-12.35", formatAmount(decimal.RequireFromString("-12.345")))
}

func TestEncodeDecodeTransaction_RoundTrip(t *testing.T) {
	userID := 7
	original := domain.Transaction{
		ID: 42,
		Account: domain.Account{
			ID:        1,
			UserID:    &userID,
			Name:      "Main",
			Balance:   decimal.RequireFromString("5000.00"),
			Currency:  "RUB",
			CreatedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC),
		},
		Category: domain.Category{ID: 3, Name: "Salary", Emoji: '💼', IsIncome: true},
		Amount:   decimal.RequireFromString("1000.00"),
		// Sub-millisecond precision is not preserved on the wire; dates must
		// survive within a one second tolerance.
		TransactionDate: time.Date(2025, 7, 15, 12, 0, 0, 123456789, time.UTC),
		Comment:         "July salary",
		CreatedAt:       time.Date(2025, 7, 15, 12, 0, 1, 0, time.UTC),
		UpdatedAt:       time.Date(2025, 7, 15, 12, 0, 1, 0, time.UTC),
	}

	data, err := EncodeTransaction(original)
	require.NoError(t, err)

	decoded, err := DecodeTransaction(data)
	require.NoError(t, err)

	assert.Equal(t, original.ID, decoded.ID)
	assert.Equal(t, original.Account.ID, decoded.Account.ID)
	require.NotNil(t, decoded.Account.UserID)
	assert.Equal(t, userID, *decoded.Account.UserID)
	assert.True(t, original.Account.Balance.Equal(decoded.Account.Balance))
	assert.Equal(t, original.Category, decoded.Category)
	assert.True(t, original.Amount.Equal(decoded.Amount))
	assert.Equal(t, original.Comment, decoded.Comment)
	assert.WithinDuration(t, original.TransactionDate, decoded.TransactionDate, time.Second)
	assert.WithinDuration(t, original.CreatedAt, decoded.CreatedAt, time.Second)
	assert.WithinDuration(t, original.UpdatedAt, decoded.UpdatedAt, time.Second)
}

func TestEncodeDecodeTransaction_ProvisionalID(t *testing.T) {
	tx := domain.Transaction{
		ID:              domain.NewProvisionalID(),
		Account:         domain.Account{ID: 1, Balance: decimal.Zero, Currency: "RUB"},
		Category:        domain.Category{ID: 3, Name: "Food", Emoji: '🍔'},
		Amount:          decimal.RequireFromString("250.00"),
		TransactionDate: time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC),
	}

	data, err := EncodeTransaction(tx)
	require.NoError(t, err)

	decoded, err := DecodeTransaction(data)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, decoded.ID, "provisional negative ids survive the snapshot codec")
	assert.Empty(t, decoded.Comment)
}

func TestCategoryDTO_EmptyEmoji(t *testing.T) {
	_, err := categoryDTO{ID: 1, Name: "Broken"}.toDomain()
	assert.Error(t, err)
}
