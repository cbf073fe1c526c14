package event

import (
	"github.com/mwhost/server/internal/hint"
	"github.com/mwhost/server/internal/netdata"
	"github.com/mwhost/server/internal/richtext"
	"github.com/mwhost/server/internal/world"
)

// LocationsChecked is emitted once per CheckLocations call that added at
// least one new location.
type LocationsChecked struct {
	SessionID string
	Team      int
	Slot      int
	Locations []int64
}

// ItemSent is emitted for every placement delivered by a new check.
type ItemSent struct {
	Team    int
	Found   world.Found
	Message richtext.Message
}

// HintUpdated is emitted when a hint is added to or changed in the book of
// (Team, Slot).
type HintUpdated struct {
	SessionID    string
	Team         int
	Slot         int
	Hint         hint.Hint
	Announcement hint.Announcement
}

// ClientStatusChanged carries an announcement when the slot reached its goal.
type ClientStatusChanged struct {
	Team    int
	Slot    int
	Old     netdata.ClientStatus
	New     netdata.ClientStatus
	Message richtext.Message
}

// SlotStateChanged carries the per-slot state a restarted session needs
// back: the reported client status and the hint points spent so far.
type SlotStateChanged struct {
	SessionID  string
	Team       int
	Slot       int
	Status     netdata.ClientStatus
	HintsSpent int
}
