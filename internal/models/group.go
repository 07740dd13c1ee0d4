package models

// Group is a settlement roster owned by an account.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Flatmates", "Goa Trip").
	Name string

	// OwnerID is the account that created the group.
	OwnerID string

	// Members is the ordered roster. Members[0] is the Treasurer.
	Members []Member

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Member is one participant in a group.
type Member struct {
	// Name identifies the member within its group.
	Name string

	// Channels are the payment identifiers the member can send and receive on.
	Channels []string
}

// MemberNames returns the member names in roster order.
func (g *Group) MemberNames() []string {
	names := make([]string, len(g.Members))
	for i, m := range g.Members {
		names[i] = m.Name
	}
	return names
}

// Treasurer returns the first member, or the zero Member for an empty roster.
func (g *Group) Treasurer() Member {
	if len(g.Members) == 0 {
		return Member{}
	}
	return g.Members[0]
}
