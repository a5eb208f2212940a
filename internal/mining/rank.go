package mining

import "sort"

// entry pairs the first item seen under a key with the key's accumulator.
type entry[T, A any] struct {
	item T
	acc  A
}

// groups is a group-by that remembers the order in which keys first
// appeared, so that stable ranking breaks ties by encounter order.
type groups[K comparable, T, A any] struct {
	pos     map[K]int
	entries []entry[T, A]
}

func newGroups[K comparable, T, A any]() *groups[K, T, A] {
	return &groups[K, T, A]{pos: make(map[K]int)}
}

// at returns the accumulator for key, registering item the first time the
// key is seen. The pointer is only valid until the next call.
func (g *groups[K, T, A]) at(key K, item T) *A {
	i, ok := g.pos[key]
	if !ok {
		i = len(g.entries)
		g.pos[key] = i
		g.entries = append(g.entries, entry[T, A]{item: item})
	}
	return &g.entries[i].acc
}

// rank orders the groups by before, keeping encounter order among equals,
// and returns the representative items. rank consumes g.
func (g *groups[K, T, A]) rank(before func(a, b A) bool) []T {
	sort.SliceStable(g.entries, func(i, j int) bool {
		return before(g.entries[i].acc, g.entries[j].acc)
	})
	out := make([]T, len(g.entries))
	for i, e := range g.entries {
		out[i] = e.item
	}
	g.pos = nil
	return out
}

// top returns at most k leading items, or nil when there are none.
func top[T any](items []T, k int) []T {
	if len(items) == 0 {
		return nil
	}
	if k < len(items) {
		items = items[:k]
	}
	return items
}

func descending(a, b int) bool { return a > b }
