package netdata

import "strings"

// Permission gates release/collect/remaining style commands.
type Permission int

const (
	PermissionDisabled    Permission = 0b000 // no access
	PermissionEnabled     Permission = 0b001 // manual use any time
	PermissionGoal        Permission = 0b010 // manual use after goal completion
	PermissionAuto        Permission = 0b110 // forced on goal completion
	PermissionAutoEnabled Permission = 0b111 // forced on goal, manual any time
)

// ParsePermission reads a config value such as "auto-enabled" or "goal".
// Unknown text yields PermissionDisabled.
func ParsePermission(text string) Permission {
	var p Permission
	if strings.Contains(text, "auto") {
		p |= PermissionAuto
	} else if strings.Contains(text, "goal") {
		p |= PermissionGoal
	}
	if strings.Contains(text, "enabled") {
		p |= PermissionEnabled
	}
	return p
}

// Manual reports whether the command may be used before goal.
func (p Permission) Manual() bool { return p&PermissionEnabled != 0 }

// AfterGoal reports whether the command may be used once the slot reached its goal.
func (p Permission) AfterGoal() bool { return p&PermissionGoal != 0 || p.Manual() }

// Automatic reports whether the command runs by itself on goal completion.
func (p Permission) Automatic() bool { return p&PermissionAuto == PermissionAuto }

func (p Permission) String() string {
	switch p {
	case PermissionDisabled:
		return "disabled"
	case PermissionEnabled:
		return "enabled"
	case PermissionGoal:
		return "goal"
	case PermissionAuto:
		return "auto"
	case PermissionAutoEnabled:
		return "auto-enabled"
	default:
		return "custom"
	}
}

// SlotType describes what occupies a slot.
type SlotType int

const (
	SlotSpectator SlotType = 0b00
	SlotPlayer    SlotType = 0b01
	SlotGroup     SlotType = 0b10
)

// AlwaysGoal marks slots that count as having reached their goal from the start.
func (t SlotType) AlwaysGoal() bool { return t != SlotPlayer }

func (t SlotType) String() string {
	switch t {
	case SlotSpectator:
		return "spectator"
	case SlotPlayer:
		return "player"
	case SlotGroup:
		return "group"
	default:
		return "unknown"
	}
}

// ItemFlags classify an item. Bits combine freely.
type ItemFlags int

const (
	ItemFiller        ItemFlags = 0
	ItemProgression   ItemFlags = 0b0001
	ItemUseful        ItemFlags = 0b0010
	ItemTrap          ItemFlags = 0b0100
	ItemSkipBalancing ItemFlags = 0b1000
)

func (f ItemFlags) Has(bit ItemFlags) bool { return f&bit != 0 }
