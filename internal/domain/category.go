package domain

// Direction tells whether a category adds to or subtracts from the balance.
type Direction int

const (
	Outcome Direction = iota
	Income
)

func (d Direction) String() string {
	if d == Income {
		return "income"
	}
	return "outcome"
}

// Category is reference data fetched from the server; the client never edits it.
type Category struct {
	ID       int
	Name     string
	Emoji    rune
	IsIncome bool
}

// Direction derives the balance direction from the income flag.
func (c Category) Direction() Direction {
	if c.IsIncome {
		return Income
	}
	return Outcome
}

// OfflineCategoryName and OfflineCategoryEmoji label the placeholder category
// substituted when the real category cannot be resolved while offline.
const (
	OfflineCategoryName  = "Offline"
	OfflineCategoryEmoji = '❓'
)

// OfflineCategory builds a renderable placeholder for category id when the
// catalog cannot resolve it. The id is kept so a later sync can reconcile the
// real category.
func OfflineCategory(id int, isIncome bool) Category {
	return Category{
		ID:       id,
		Name:     OfflineCategoryName,
		Emoji:    OfflineCategoryEmoji,
		IsIncome: isIncome,
	}
}
