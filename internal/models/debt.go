package models

// Debt records that Debtor owes Creditor Amount within a group.
// Several records for the same pair add up.
type Debt struct {
	// ID is the unique identifier for the debt (UUID format).
	ID string

	// GroupID is the group this debt belongs to.
	GroupID string

	// Debtor is the member who owes.
	Debtor string

	// Creditor is the member who is owed.
	Creditor string

	// Amount is the owed amount in minor units. Always positive.
	Amount int64

	// Note is an optional description (e.g., "dinner", "cab").
	Note string

	// CreatedAt is the Unix timestamp when the debt was recorded.
	CreatedAt int64

	// CreatedBy is the account that recorded this debt.
	CreatedBy string
}
