package models

// Owner identifies a household member, or the shared "Both" pseudo-owner.
type Owner string

// OwnerBoth is the shared scope. As a filter it matches every owner.
const OwnerBoth Owner = "Both"

// Matches reports whether a record owned by o is visible under filter.
// An empty filter or OwnerBoth passes everything through.
func (o Owner) Matches(filter Owner) bool {
	if filter == "" || filter == OwnerBoth {
		return true
	}
	return o == filter
}

// Household names the two members sharing the ledger.
type Household struct {
	MemberA Owner
	MemberB Owner
}

// Members returns the two named members in a stable order.
func (h Household) Members() []Owner {
	return []Owner{h.MemberA, h.MemberB}
}

// IsValidOwner reports whether o is one of the members or OwnerBoth.
func (h Household) IsValidOwner(o Owner) bool {
	return o == OwnerBoth || o == h.MemberA || o == h.MemberB
}
