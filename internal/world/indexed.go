package world

import (
	"iter"
	"maps"
	"slices"
	"sort"
)

// remainingEntry is a location pre-sorted by (receiver, item).
type remainingEntry struct {
	Remaining
	location int64
}

// IndexedStore answers the same queries as LocationStore from indexes
// computed once at build time. FindItem only visits placements of the
// requested item and Remaining needs no per-query sort.
type IndexedStore struct {
	slots       []slotLocations
	byItem      map[int64][]Found
	byReceiver  map[int]map[int]LocationSet
	remainOrder [][]remainingEntry // per slot, sorted
}

var _ LocationIndex = (*IndexedStore)(nil)

// BuildIndexed validates u like Build and precomputes the query indexes.
func BuildIndexed(u Universe) (*IndexedStore, error) {
	if err := validate(u); err != nil {
		return nil, err
	}
	s := &IndexedStore{
		slots:       copySlots(u),
		byItem:      make(map[int64][]Found),
		byReceiver:  make(map[int]map[int]LocationSet),
		remainOrder: make([][]remainingEntry, len(u)),
	}
	for i := range s.slots {
		finding := i + 1
		sl := &s.slots[i]
		entries := make([]remainingEntry, 0, len(sl.order))
		for _, loc := range sl.order {
			p := sl.placements[loc]
			s.byItem[p.Item] = append(s.byItem[p.Item], Found{
				FindingSlot: finding, Location: loc, Item: p.Item, Receiver: p.Receiver, Flags: p.Flags,
			})
			recv := s.byReceiver[p.Receiver]
			if recv == nil {
				recv = make(map[int]LocationSet)
				s.byReceiver[p.Receiver] = recv
			}
			if recv[finding] == nil {
				recv[finding] = make(LocationSet)
			}
			recv[finding][loc] = struct{}{}
			entries = append(entries, remainingEntry{Remaining: Remaining{Receiver: p.Receiver, Item: p.Item}, location: loc})
		}
		sort.SliceStable(entries, func(a, b int) bool { return lessRemaining(entries[a].Remaining, entries[b].Remaining) })
		s.remainOrder[i] = entries
	}
	return s, nil
}

func (s *IndexedStore) slot(slot int) (*slotLocations, error) {
	if slot < 1 || slot > len(s.slots) {
		return nil, errSlot(slot)
	}
	return &s.slots[slot-1], nil
}

func (s *IndexedStore) SlotCount() int { return len(s.slots) }

func (s *IndexedStore) Locations(slot int) ([]int64, error) {
	sl, err := s.slot(slot)
	if err != nil {
		return nil, err
	}
	return slices.Clone(sl.order), nil
}

func (s *IndexedStore) Placement(slot int, location int64) (Placement, bool) {
	sl, err := s.slot(slot)
	if err != nil {
		return Placement{}, false
	}
	p, ok := sl.placements[location]
	return p, ok
}

func (s *IndexedStore) FindItem(slots SlotSet, item int64) iter.Seq[Found] {
	return func(yield func(Found) bool) {
		for _, f := range s.byItem[item] {
			if !slots.Has(f.Receiver) {
				continue
			}
			if !yield(f) {
				return
			}
		}
	}
}

// LocationsForReceivingSlot returns a copy; the index itself stays private.
func (s *IndexedStore) LocationsForReceivingSlot(slot int) map[int]LocationSet {
	out := make(map[int]LocationSet, len(s.byReceiver[slot]))
	for finding, set := range s.byReceiver[slot] {
		out[finding] = maps.Clone(set)
	}
	return out
}

func (s *IndexedStore) Checked(state CheckState, team, slot int) ([]int64, error) {
	sl, err := s.slot(slot)
	if err != nil {
		return nil, err
	}
	checked := state.Checked(team, slot)
	if len(checked) == 0 {
		return []int64{}, nil
	}
	out := make([]int64, 0, len(checked))
	if len(checked) < len(sl.order)/4 {
		// Sparse: walk the checked set instead of every location.
		for loc := range checked {
			if _, ok := sl.placements[loc]; ok {
				out = append(out, loc)
			}
		}
		slices.Sort(out)
		return out, nil
	}
	for _, loc := range sl.order {
		if checked.Has(loc) {
			out = append(out, loc)
		}
	}
	return out, nil
}

func (s *IndexedStore) Missing(state CheckState, team, slot int) ([]int64, error) {
	sl, err := s.slot(slot)
	if err != nil {
		return nil, err
	}
	checked := state.Checked(team, slot)
	if len(checked) == 0 {
		return slices.Clone(sl.order), nil
	}
	out := make([]int64, 0, len(sl.order))
	for _, loc := range sl.order {
		if !checked.Has(loc) {
			out = append(out, loc)
		}
	}
	return out, nil
}

func (s *IndexedStore) Remaining(state CheckState, team, slot int) ([]Remaining, error) {
	if _, err := s.slot(slot); err != nil {
		return nil, err
	}
	entries := s.remainOrder[slot-1]
	checked := state.Checked(team, slot)
	out := make([]Remaining, 0, len(entries))
	for _, e := range entries {
		if !checked.Has(e.location) {
			out = append(out, e.Remaining)
		}
	}
	return out, nil
}
