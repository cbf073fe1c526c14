package netdata

import (
	"bytes"
	"fmt"
	"slices"
)

// NetworkItem is one item placement as sent to clients. Player is the
// sending slot, except in scout replies where it is the receiving slot.
type NetworkItem struct {
	Item     int64
	Location int64
	Player   int
	Flags    ItemFlags
}

func (i NetworkItem) Equal(o NetworkItem) bool { return i == o }

// NetworkPlayer is a particular player on a particular team.
// Pronouns and Avatar are optional; empty means absent.
type NetworkPlayer struct {
	Team     int
	Slot     int
	Alias    string
	Name     string
	Pronouns string
	Avatar   []byte
}

func (p NetworkPlayer) Equal(o NetworkPlayer) bool {
	return p.Team == o.Team &&
		p.Slot == o.Slot &&
		p.Alias == o.Alias &&
		p.Name == o.Name &&
		p.Pronouns == o.Pronouns &&
		bytes.Equal(p.Avatar, o.Avatar)
}

// NetworkSlot describes a slot independent of team.
// GroupMembers is only populated for SlotGroup.
type NetworkSlot struct {
	Name         string
	Game         string
	Type         SlotType
	GroupMembers []int
}

func (s NetworkSlot) Equal(o NetworkSlot) bool {
	if s.Name != o.Name || s.Game != o.Game || s.Type != o.Type {
		return false
	}
	if len(s.GroupMembers) == 0 && len(o.GroupMembers) == 0 {
		return true
	}
	return slices.Equal(s.GroupMembers, o.GroupMembers)
}

// HasMember reports whether slot is part of this group.
func (s NetworkSlot) HasMember(slot int) bool {
	return s.Type == SlotGroup && slices.Contains(s.GroupMembers, slot)
}

// Version is a semantic version as exchanged with clients.
type Version struct {
	Major int
	Minor int
	Build int
}

func (v Version) Equal(o Version) bool { return v == o }

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Build)
}
