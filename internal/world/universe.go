package world

import (
	"iter"

	"github.com/mwhost/server/internal/netdata"
)

// Placement is what a location holds: an item and the slot it is for.
type Placement struct {
	Item     int64
	Receiver int
	Flags    netdata.ItemFlags
}

// Universe maps finding slot -> location id -> placement. It is produced
// once at generation time and never changes during a session.
type Universe map[int]map[int64]Placement

// TeamSlot addresses one slot of one team.
type TeamSlot struct {
	Team int
	Slot int
}

// LocationSet is a set of location ids.
type LocationSet map[int64]struct{}

func (s LocationSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// SlotSet is a set of slot ids.
type SlotSet map[int]struct{}

func NewSlotSet(slots ...int) SlotSet {
	s := make(SlotSet, len(slots))
	for _, slot := range slots {
		s[slot] = struct{}{}
	}
	return s
}

func (s SlotSet) Has(slot int) bool {
	_, ok := s[slot]
	return ok
}

// CheckState records which locations each (team, slot) has checked. It is
// owned by the session, not by the store; the store only reads it.
type CheckState map[TeamSlot]LocationSet

// Add marks ids as checked and returns the ones that were not checked
// before. Re-adding an id is a no-op.
func (c CheckState) Add(team, slot int, ids ...int64) []int64 {
	key := TeamSlot{Team: team, Slot: slot}
	set := c[key]
	if set == nil {
		set = make(LocationSet, len(ids))
		c[key] = set
	}
	var added []int64
	for _, id := range ids {
		if set.Has(id) {
			continue
		}
		set[id] = struct{}{}
		added = append(added, id)
	}
	return added
}

// Checked returns the checked set for (team, slot); nil when nothing was checked yet.
func (c CheckState) Checked(team, slot int) LocationSet {
	return c[TeamSlot{Team: team, Slot: slot}]
}

// Found is one match from FindItem.
type Found struct {
	FindingSlot int
	Location    int64
	Item        int64
	Receiver    int
	Flags       netdata.ItemFlags
}

// Remaining is an unchecked item as seen by its recipient: what and for
// whom, deliberately without where.
type Remaining struct {
	Receiver int
	Item     int64
}

// LocationIndex answers per-slot location queries against a check state.
// It sits on the hot path of every location check, so callers depend on
// this interface and the implementation can be swapped freely.
type LocationIndex interface {
	// FindItem yields every placement of item destined for one of slots.
	// Each range over the result performs a fresh scan.
	FindItem(slots SlotSet, item int64) iter.Seq[Found]
	// LocationsForReceivingSlot maps finding slot -> locations delivering to slot.
	LocationsForReceivingSlot(slot int) map[int]LocationSet
	// Checked lists the slot's checked locations in ascending id order.
	Checked(state CheckState, team, slot int) ([]int64, error)
	// Missing lists the slot's unchecked locations in ascending id order.
	Missing(state CheckState, team, slot int) ([]int64, error)
	// Remaining lists (receiver, item) for every unchecked location of the
	// slot, sorted by receiver then item.
	Remaining(state CheckState, team, slot int) ([]Remaining, error)

	// SlotCount is the number of finding slots; ids run 1..SlotCount.
	SlotCount() int
	// Locations lists every location of slot in ascending id order.
	Locations(slot int) ([]int64, error)
	// Placement returns what location holds in slot's world.
	Placement(slot int, location int64) (Placement, bool)
}
