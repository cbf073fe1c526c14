// Package hint holds hint records and their status transitions.
// Hints are values: every transition returns a new Hint and leaves the
// receiver untouched.
package hint

import (
	"github.com/mwhost/server/internal/netdata"
	"github.com/mwhost/server/internal/richtext"
	"github.com/mwhost/server/internal/world"
)

// Hint points a receiving slot at the location of one of its items.
type Hint struct {
	Receiving int
	Finding   int
	Location  int64
	Item      int64
	Found     bool
	Entrance  string
	ItemFlags netdata.ItemFlags
	Status    netdata.HintStatus
}

// Key is the identity of a hint. Status and Found are not part of it, so a
// hint can be looked up again after it changed.
type Key struct {
	Receiving int
	Finding   int
	Location  int64
	Item      int64
	Entrance  string
}

func (h Hint) Key() Key {
	return Key{
		Receiving: h.Receiving,
		Finding:   h.Finding,
		Location:  h.Location,
		Item:      h.Item,
		Entrance:  h.Entrance,
	}
}

// Same reports whether h and o are the same hint, ignoring status.
func (h Hint) Same(o Hint) bool { return h.Key() == o.Key() }

// Local reports whether the hinted item is in its receiver's own world.
func (h Hint) Local() bool { return h.Receiving == h.Finding }

// ReCheck marks the hint found once its location has been checked.
func (h Hint) ReCheck(isChecked bool) Hint {
	if h.Found && h.Status == netdata.HintFound {
		return h
	}
	if !isChecked {
		return h
	}
	h.Found = true
	h.Status = netdata.HintFound
	return h
}

// ReCheckIn is ReCheck against the finding slot's entry in state.
func (h Hint) ReCheckIn(state world.CheckState, team int) Hint {
	return h.ReCheck(state.Checked(team, h.Finding).Has(h.Location))
}

// RePrioritize changes the status. Found is terminal: a found hint keeps
// HintFound whatever is requested.
func (h Hint) RePrioritize(status netdata.HintStatus) Hint {
	if h.Found {
		status = netdata.HintFound
	}
	if status == h.Status {
		return h
	}
	h.Status = status
	return h
}

// NetworkItem is the hinted placement as sent to clients; Player is the
// finding slot.
func (h Hint) NetworkItem() netdata.NetworkItem {
	return netdata.NetworkItem{Item: h.Item, Location: h.Location, Player: h.Finding, Flags: h.ItemFlags}
}

// Announcement is a rendered-ready hint message plus the fields machine
// consumers read instead of parsing text.
type Announcement struct {
	Parts     richtext.Message
	Receiving int
	Item      netdata.NetworkItem
	Found     bool
}

// Announcement builds the "[Hint]: X's Item is at Location in Y's World." message.
func (h Hint) Announcement() Announcement {
	suffix := "'s World"
	if h.Entrance != "" {
		suffix += " at " + h.Entrance
	}
	return Announcement{
		Parts: richtext.Message{
			richtext.Text("[Hint]: "),
			richtext.PlayerID(h.Receiving),
			richtext.Text("'s "),
			richtext.Item(h.Item, h.Receiving, h.ItemFlags),
			richtext.Text(" is at "),
			richtext.Location(h.Location, h.Finding),
			richtext.Text(" in "),
			richtext.PlayerID(h.Finding),
			richtext.Text(suffix),
			richtext.Text(". "),
			richtext.Colored(h.Status.Label(), h.Status.Color()),
		},
		Receiving: h.Receiving,
		Item:      h.NetworkItem(),
		Found:     h.Found,
	}
}

// Payload is the PrintJSON command carrying the announcement, ready for
// codec.Encode.
func (a Announcement) Payload() map[string]any {
	return map[string]any{
		"cmd":       "PrintJSON",
		"data":      a.Parts,
		"type":      "Hint",
		"receiving": a.Receiving,
		"item":      a.Item,
		"found":     a.Found,
	}
}
