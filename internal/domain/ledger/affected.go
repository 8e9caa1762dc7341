package ledger

import (
	"sort"

	"github.com/google/uuid"
)

// AffectedUsers is the set of users whose cached balances a mutation
// invalidates. Derived from the record being written, not from whatever is
// currently cached, so eviction stays correct even when cache state is stale.
type AffectedUsers map[uuid.UUID]struct{}

// NewAffectedUsers builds a set from the given user IDs
func NewAffectedUsers(ids ...uuid.UUID) AffectedUsers {
	set := make(AffectedUsers, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Add inserts a user into the set
func (a AffectedUsers) Add(id uuid.UUID) {
	a[id] = struct{}{}
}

// Contains reports whether the user is in the set
func (a AffectedUsers) Contains(id uuid.UUID) bool {
	_, ok := a[id]
	return ok
}

// Union merges another set into this one and returns the receiver
func (a AffectedUsers) Union(other AffectedUsers) AffectedUsers {
	for id := range other {
		a[id] = struct{}{}
	}
	return a
}

// IDs returns the members sorted by ID for deterministic iteration
func (a AffectedUsers) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(a))
	for id := range a {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}
