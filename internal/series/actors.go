package series

import (
	"slices"
)

// ActorSet holds the unique actor identifiers seen in one window.
type ActorSet map[string]struct{}

func NewActorSet() ActorSet {
	return make(ActorSet)
}

func ActorSetFromSlice(ids []string) ActorSet {
	set := make(ActorSet, len(ids))
	for _, id := range ids {
		set.Add(id)
	}
	return set
}

func (s ActorSet) Add(id string) {
	s[id] = struct{}{}
}

func (s ActorSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

func (s ActorSet) Len() int {
	return len(s)
}

// Difference counts the members of s that are absent from other.
func (s ActorSet) Difference(other ActorSet) int {
	count := 0
	for id := range s {
		if !other.Contains(id) {
			count++
		}
	}
	return count
}

// Sorted returns the members in ascending order so persisted snapshots are stable.
func (s ActorSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// NewWallets is the inflow between two consecutive windows. Without a previous
// window there is nothing to compare against and the inflow is zero.
func NewWallets(current, previous ActorSet) uint64 {
	if previous.Len() == 0 {
		return 0
	}
	return uint64(current.Difference(previous))
}
