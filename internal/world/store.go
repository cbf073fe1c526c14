package world

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"sort"
)

var (
	ErrEmptyGame          = errors.New("rejecting game with 0 slots")
	ErrNonContiguousSlots = errors.New("slot ids not contiguous")
	ErrReservedSlot       = errors.New("invalid slot id 0 for location")
	ErrSlotNotFound       = errors.New("slot not found")
)

type slotLocations struct {
	order      []int64 // ascending
	placements map[int64]Placement
}

// LocationStore is the reference LocationIndex. It scans per query and
// keeps no derived indexes. Read-only after Build; holds no locks.
type LocationStore struct {
	slots []slotLocations // slots[i] is slot i+1
}

var _ LocationIndex = (*LocationStore)(nil)

// validate checks the universe invariants: at least one slot, no slot 0,
// and finding slots numbered exactly 1..N.
func validate(u Universe) error {
	if len(u) == 0 {
		return ErrEmptyGame
	}
	if _, ok := u[0]; ok {
		return ErrReservedSlot
	}
	n := len(u)
	for slot := range u {
		if slot < 1 || slot > n {
			return fmt.Errorf("%w: slot %d outside 1..%d", ErrNonContiguousSlots, slot, n)
		}
	}
	return nil
}

func copySlots(u Universe) []slotLocations {
	slots := make([]slotLocations, len(u))
	for slot, locs := range u {
		sl := slotLocations{
			order:      make([]int64, 0, len(locs)),
			placements: make(map[int64]Placement, len(locs)),
		}
		for loc, p := range locs {
			sl.order = append(sl.order, loc)
			sl.placements[loc] = p
		}
		slices.Sort(sl.order)
		slots[slot-1] = sl
	}
	return slots
}

// Build validates u and copies it into a LocationStore. Any invariant
// violation aborts construction.
func Build(u Universe) (*LocationStore, error) {
	if err := validate(u); err != nil {
		return nil, err
	}
	return &LocationStore{slots: copySlots(u)}, nil
}

func (s *LocationStore) slot(slot int) (*slotLocations, error) {
	if slot < 1 || slot > len(s.slots) {
		return nil, errSlot(slot)
	}
	return &s.slots[slot-1], nil
}

func errSlot(slot int) error {
	return fmt.Errorf("%w: %d", ErrSlotNotFound, slot)
}

func (s *LocationStore) SlotCount() int { return len(s.slots) }

func (s *LocationStore) Locations(slot int) ([]int64, error) {
	sl, err := s.slot(slot)
	if err != nil {
		return nil, err
	}
	return slices.Clone(sl.order), nil
}

func (s *LocationStore) Placement(slot int, location int64) (Placement, bool) {
	sl, err := s.slot(slot)
	if err != nil {
		return Placement{}, false
	}
	p, ok := sl.placements[location]
	return p, ok
}

func (s *LocationStore) FindItem(slots SlotSet, item int64) iter.Seq[Found] {
	return func(yield func(Found) bool) {
		for i := range s.slots {
			sl := &s.slots[i]
			for _, loc := range sl.order {
				p := sl.placements[loc]
				if p.Item != item || !slots.Has(p.Receiver) {
					continue
				}
				if !yield(Found{FindingSlot: i + 1, Location: loc, Item: p.Item, Receiver: p.Receiver, Flags: p.Flags}) {
					return
				}
			}
		}
	}
}

func (s *LocationStore) LocationsForReceivingSlot(slot int) map[int]LocationSet {
	out := make(map[int]LocationSet)
	for i := range s.slots {
		for loc, p := range s.slots[i].placements {
			if p.Receiver != slot {
				continue
			}
			set := out[i+1]
			if set == nil {
				set = make(LocationSet)
				out[i+1] = set
			}
			set[loc] = struct{}{}
		}
	}
	return out
}

func (s *LocationStore) Checked(state CheckState, team, slot int) ([]int64, error) {
	sl, err := s.slot(slot)
	if err != nil {
		return nil, err
	}
	checked := state.Checked(team, slot)
	if len(checked) == 0 {
		// Fresh games: everyone connects with nothing checked.
		return []int64{}, nil
	}
	out := make([]int64, 0, len(checked))
	for _, loc := range sl.order {
		if checked.Has(loc) {
			out = append(out, loc)
		}
	}
	return out, nil
}

func (s *LocationStore) Missing(state CheckState, team, slot int) ([]int64, error) {
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

func (s *LocationStore) Remaining(state CheckState, team, slot int) ([]Remaining, error) {
	sl, err := s.slot(slot)
	if err != nil {
		return nil, err
	}
	checked := state.Checked(team, slot)
	out := make([]Remaining, 0, len(sl.order))
	for _, loc := range sl.order {
		if checked.Has(loc) {
			continue
		}
		p := sl.placements[loc]
		out = append(out, Remaining{Receiver: p.Receiver, Item: p.Item})
	}
	sort.Slice(out, func(i, j int) bool { return lessRemaining(out[i], out[j]) })
	return out, nil
}

func lessRemaining(a, b Remaining) bool {
	if a.Receiver != b.Receiver {
		return a.Receiver < b.Receiver
	}
	return a.Item < b.Item
}
