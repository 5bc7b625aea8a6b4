package models

// MemberID identifies a household member (e.g., "lucas").
type MemberID string

// Member is one person in the household.
type Member struct {
	// ID is the stable identifier used in every record.
	ID MemberID

	// Name is the display name.
	Name string
}

// MemberIDs returns the ids of members in the given order.
func MemberIDs(members []Member) []MemberID {
	ids := make([]MemberID, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	return ids
}
