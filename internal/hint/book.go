package hint

import (
	"slices"
	"sort"
)

// Book is the ordered set of hints one slot can see. Hints are unique by
// Key; a newer version of the same hint replaces the old one in place.
type Book struct {
	order []Key
	hints map[Key]Hint
}

func NewBook() *Book {
	return &Book{hints: make(map[Key]Hint)}
}

// Add inserts h, or replaces the stored hint with the same key. It reports
// whether anything changed.
func (b *Book) Add(h Hint) bool {
	k := h.Key()
	old, ok := b.hints[k]
	if !ok {
		b.order = append(b.order, k)
	} else if old == h {
		return false
	}
	b.hints[k] = h
	return true
}

func (b *Book) Get(k Key) (Hint, bool) {
	h, ok := b.hints[k]
	return h, ok
}

func (b *Book) Len() int { return len(b.order) }

// List returns the hints in insertion order.
func (b *Book) List() []Hint {
	out := make([]Hint, 0, len(b.order))
	for _, k := range b.order {
		out = append(out, b.hints[k])
	}
	return out
}

// Ranked returns the hints with the most important status first, found
// hints last. Ties keep insertion order.
func (b *Book) Ranked() []Hint {
	out := b.List()
	sort.SliceStable(out, func(i, j int) bool {
		return rank(out[i]) > rank(out[j])
	})
	return out
}

func rank(h Hint) int {
	if h.Found {
		return -1
	}
	return int(h.Status)
}

// Update applies fn to every stored hint and returns the ones that changed.
func (b *Book) Update(fn func(Hint) Hint) []Hint {
	var changed []Hint
	for _, k := range b.order {
		old := b.hints[k]
		next := fn(old)
		if next != old {
			b.hints[k] = next
			changed = append(changed, next)
		}
	}
	return changed
}

// Keys returns the stored keys in insertion order.
func (b *Book) Keys() []Key {
	return slices.Clone(b.order)
}
