package session

import (
	"fmt"

	"github.com/mwhost/server/internal/richtext"
)

// view resolves rich text for one (team, slot) viewer.
type view struct {
	s    *Session
	team int
	slot int
}

var _ richtext.Context = view{}

// View returns the rendering context for slot in team.
func (s *Session) View(team, slot int) richtext.Context {
	return view{s: s, team: team, slot: slot}
}

func (v view) PlayerName(slot int) string {
	if p, ok := v.s.roster.Player(v.team, slot); ok && p.Alias != "" {
		return p.Alias
	}
	return fmt.Sprintf("Player %d", slot)
}

// ConcernsSelf is true for the viewer's own slot and for any group slot the
// viewer is a member of.
func (v view) ConcernsSelf(slot int) bool {
	if slot == v.slot {
		return true
	}
	s, ok := v.s.roster.Slot(slot)
	return ok && s.HasMember(v.slot)
}

func (v view) ItemName(item int64, slot int) string {
	if name, ok := v.s.names.ItemName(v.s.game(slot), item); ok {
		return name
	}
	return unknownItem(item)
}

func (v view) LocationName(location int64, slot int) string {
	if name, ok := v.s.names.LocationName(v.s.game(slot), location); ok {
		return name
	}
	return unknownLocation(location)
}
