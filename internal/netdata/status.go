package netdata

import (
	"fmt"
	"strings"
)

// HintStatus ranks how much a player cares about a hinted item.
// Values are spaced by 10 so new levels can be slotted in later.
type HintStatus int

const (
	HintUnspecified HintStatus = 0
	HintNoPriority  HintStatus = 10
	HintAvoid       HintStatus = 20
	HintPriority    HintStatus = 30
	HintFound       HintStatus = 40
)

var hintStatusLabels = map[HintStatus]string{
	HintFound:       "(found)",
	HintUnspecified: "(unspecified)",
	HintNoPriority:  "(no priority)",
	HintAvoid:       "(avoid)",
	HintPriority:    "(priority)",
}

var hintStatusColors = map[HintStatus]string{
	HintFound:       "green",
	HintUnspecified: "white",
	HintNoPriority:  "lightgray",
	HintAvoid:       "salmon",
	HintPriority:    "gold",
}

// Label returns the bracketed text shown next to a hint.
func (s HintStatus) Label() string {
	if l, ok := hintStatusLabels[s]; ok {
		return l
	}
	return "(unknown)"
}

// Color returns the palette name used to render the status label.
func (s HintStatus) Color() string {
	if c, ok := hintStatusColors[s]; ok {
		return c
	}
	return "red"
}

func (s HintStatus) String() string {
	switch s {
	case HintUnspecified:
		return "unspecified"
	case HintNoPriority:
		return "no_priority"
	case HintAvoid:
		return "avoid"
	case HintPriority:
		return "priority"
	case HintFound:
		return "found"
	default:
		return fmt.Sprintf("HintStatus(%d)", int(s))
	}
}

// ParseHintStatus maps a status name as typed by a player ("priority",
// "no priority", "no_priority", "avoid", ...) to its value.
func ParseHintStatus(text string) (HintStatus, bool) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(text)), " ", "_")
	switch key {
	case "unspecified":
		return HintUnspecified, true
	case "no_priority", "nopriority":
		return HintNoPriority, true
	case "avoid":
		return HintAvoid, true
	case "priority":
		return HintPriority, true
	case "found":
		return HintFound, true
	}
	return HintUnspecified, false
}

// ClientStatus is the progress a connected client reports for its slot.
type ClientStatus int

const (
	ClientUnknown   ClientStatus = 0
	ClientConnected ClientStatus = 5
	ClientReady     ClientStatus = 10
	ClientPlaying   ClientStatus = 20
	ClientGoal      ClientStatus = 30
)

func (s ClientStatus) String() string {
	switch s {
	case ClientUnknown:
		return "Unknown"
	case ClientConnected:
		return "Connected"
	case ClientReady:
		return "Ready"
	case ClientPlaying:
		return "Playing"
	case ClientGoal:
		return "Goal"
	default:
		return fmt.Sprintf("ClientStatus(%d)", int(s))
	}
}
