package session

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mwhost/server/internal/hint"
	"github.com/mwhost/server/internal/netdata"
	"github.com/mwhost/server/internal/world"
)

// HintCost is the price in points of one hint for slot.
func (s *Session) HintCost(slot int) int {
	if s.opts.HintCost <= 0 {
		return 0
	}
	locs, err := s.store.Locations(slot)
	if err != nil {
		return 0
	}
	if s.opts.Coster != nil {
		if cost, ok := s.opts.Coster.HintCost(len(locs), s.opts.HintCost); ok {
			return cost
		}
	}
	return max(1, s.opts.HintCost*len(locs)/100)
}

// HintPoints returns the points slot can still spend on hints.
func (s *Session) HintPoints(team, slot int) int {
	earned := len(s.state.Checked(team, slot)) * locationCheckPoints
	return earned - s.spent[world.TeamSlot{Team: team, Slot: slot}]
}

// HintItem reveals where item is placed for slot, including copies destined
// for the groups slot belongs to. Only hints that are new and not yet found
// are charged; nothing is registered when slot cannot pay.
func (s *Session) HintItem(team, slot int, item int64) ([]hint.Hint, error) {
	if err := s.requireSlot(slot); err != nil {
		return nil, err
	}
	receivers := world.NewSlotSet(append(s.roster.GroupsOf(slot), slot)...)
	var found []hint.Hint
	for f := range s.store.FindItem(receivers, item) {
		h := hint.Hint{
			Receiving: f.Receiver,
			Finding:   f.FindingSlot,
			Location:  f.Location,
			Item:      f.Item,
			ItemFlags: f.Flags,
			Status:    netdata.HintUnspecified,
		}
		found = append(found, h.ReCheckIn(s.state, team))
	}
	if err := s.register(team, slot, found); err != nil {
		return nil, err
	}
	return s.current(team, slot, found), nil
}

// HintLocation reveals what one of slot's own locations holds.
func (s *Session) HintLocation(team, slot int, location int64) (hint.Hint, error) {
	if err := s.requireSlot(slot); err != nil {
		return hint.Hint{}, err
	}
	p, ok := s.store.Placement(slot, location)
	if !ok {
		return hint.Hint{}, fmt.Errorf("%w: %d in slot %d", ErrUnknownLocation, location, slot)
	}
	h := hint.Hint{
		Receiving: p.Receiver,
		Finding:   slot,
		Location:  location,
		Item:      p.Item,
		ItemFlags: p.Flags,
		Status:    netdata.HintUnspecified,
	}.ReCheckIn(s.state, team)
	if err := s.register(team, slot, []hint.Hint{h}); err != nil {
		return hint.Hint{}, err
	}
	return s.current(team, slot, []hint.Hint{h})[0], nil
}

// register charges for and stores hints requested by slot.
func (s *Session) register(team, slot int, hints []hint.Hint) error {
	own := s.book(team, slot)
	charge := false
	for _, h := range hints {
		if _, known := own.Get(h.Key()); !known && !h.Found {
			charge = true
			break
		}
	}
	if charge {
		cost := s.HintCost(slot)
		if points := s.HintPoints(team, slot); points < cost {
			return fmt.Errorf("%w: have %d, need %d", ErrNotEnoughPoints, points, cost)
		}
		if cost > 0 {
			s.spent[world.TeamSlot{Team: team, Slot: slot}] += cost
			s.emitSlotState(team, slot)
		}
	}
	for _, h := range hints {
		s.addHint(team, slot, h)
	}
	return nil
}

// addHint stores h in the books of everyone it concerns: the requester, the
// receiver (or every member of a receiving group) and the finder.
func (s *Session) addHint(team, requester int, h hint.Hint) {
	targets := []int{requester, h.Receiving, h.Finding}
	if info, ok := s.roster.Slot(h.Receiving); ok && info.Type == netdata.SlotGroup {
		targets = append(targets, info.GroupMembers...)
	}
	seen := make(map[int]bool, len(targets))
	for _, slot := range targets {
		if seen[slot] {
			continue
		}
		seen[slot] = true
		b := s.book(team, slot)
		next := h
		if old, ok := b.Get(h.Key()); ok {
			// keep a priority this book already holds
			next = h.RePrioritize(old.Status)
		}
		if b.Add(next) {
			s.emitHint(team, slot, next)
		}
	}
	s.log.Debug("hint registered",
		zap.Int("team", team), zap.Int("receiving", h.Receiving), zap.Int("finding", h.Finding),
		zap.Int64("location", h.Location), zap.Int64("item", h.Item))
}

func (s *Session) current(team, slot int, hints []hint.Hint) []hint.Hint {
	b := s.book(team, slot)
	out := make([]hint.Hint, 0, len(hints))
	for _, h := range hints {
		if stored, ok := b.Get(h.Key()); ok {
			h = stored
		}
		out = append(out, h)
	}
	return out
}

// UpdateHintStatus changes the priority of a hint. Only the receiving slot
// may do so, and Found cannot be set by hand.
func (s *Session) UpdateHintStatus(team, slot int, key hint.Key, status netdata.HintStatus) (hint.Hint, error) {
	if status == netdata.HintFound {
		return hint.Hint{}, fmt.Errorf("%w: %v", ErrInvalidStatus, status)
	}
	if _, ok := hintStatusSettable[status]; !ok {
		return hint.Hint{}, fmt.Errorf("%w: %d", ErrInvalidStatus, int(status))
	}
	h, ok := s.book(team, slot).Get(key)
	if !ok {
		return hint.Hint{}, ErrUnknownHint
	}
	if !s.receives(slot, h.Receiving) {
		return hint.Hint{}, fmt.Errorf("update hint: %w", ErrPermission)
	}
	for _, k := range s.bookKeys(team) {
		b := s.books[k]
		old, ok := b.Get(key)
		if !ok {
			continue
		}
		next := old.RePrioritize(status)
		if b.Add(next) {
			s.emitHint(team, k.Slot, next)
		}
	}
	h, _ = s.book(team, slot).Get(key)
	return h, nil
}

var hintStatusSettable = map[netdata.HintStatus]struct{}{
	netdata.HintUnspecified: {},
	netdata.HintNoPriority:  {},
	netdata.HintAvoid:       {},
	netdata.HintPriority:    {},
}

// receives reports whether slot is receiver or a member of the receiving group.
func (s *Session) receives(slot, receiver int) bool {
	if slot == receiver {
		return true
	}
	info, ok := s.roster.Slot(receiver)
	return ok && info.Type == netdata.SlotGroup && info.HasMember(slot)
}

// Hints lists the hints slot can see, most important first.
func (s *Session) Hints(team, slot int) []hint.Hint {
	key := world.TeamSlot{Team: team, Slot: slot}
	b, ok := s.books[key]
	if !ok {
		return nil
	}
	return b.Ranked()
}
