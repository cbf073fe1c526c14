package data

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mwhost/server/internal/netdata"
	"github.com/mwhost/server/internal/world"
)

// Roster describes who plays which slot: the per-slot game info shared by
// every team and the connected player identity per (team, slot).
type Roster struct {
	slots   map[int]netdata.NetworkSlot
	players map[world.TeamSlot]netdata.NetworkPlayer
	groups  map[int][]int // member slot -> group slots containing it
	teams   []int
}

type rosterSlotYAML struct {
	Slot         int    `yaml:"slot"`
	Name         string `yaml:"name"`
	Game         string `yaml:"game"`
	Type         string `yaml:"type"` // "player" (default), "group" or "spectator"
	GroupMembers []int  `yaml:"group_members"`
}

type rosterPlayerYAML struct {
	Slot     int    `yaml:"slot"`
	Alias    string `yaml:"alias"`
	Pronouns string `yaml:"pronouns"`
}

type rosterTeamYAML struct {
	Team    int                `yaml:"team"`
	Players []rosterPlayerYAML `yaml:"players"`
}

type rosterFile struct {
	Slots []rosterSlotYAML `yaml:"slots"`
	Teams []rosterTeamYAML `yaml:"teams"`
}

func parseSlotType(text string) (netdata.SlotType, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "", "player":
		return netdata.SlotPlayer, nil
	case "group":
		return netdata.SlotGroup, nil
	case "spectator":
		return netdata.SlotSpectator, nil
	}
	return 0, fmt.Errorf("unknown slot type %q", text)
}

// LoadRoster loads roster.yaml.
func LoadRoster(path string) (*Roster, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	var f rosterFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}

	r := &Roster{
		slots:   make(map[int]netdata.NetworkSlot, len(f.Slots)),
		players: make(map[world.TeamSlot]netdata.NetworkPlayer),
		groups:  make(map[int][]int),
	}
	for _, s := range f.Slots {
		if _, dup := r.slots[s.Slot]; dup {
			return nil, fmt.Errorf("roster: slot %d listed twice", s.Slot)
		}
		typ, err := parseSlotType(s.Type)
		if err != nil {
			return nil, fmt.Errorf("roster: slot %d: %w", s.Slot, err)
		}
		r.slots[s.Slot] = netdata.NetworkSlot{
			Name:         s.Name,
			Game:         s.Game,
			Type:         typ,
			GroupMembers: s.GroupMembers,
		}
		if typ == netdata.SlotGroup {
			for _, m := range s.GroupMembers {
				r.groups[m] = append(r.groups[m], s.Slot)
			}
		}
	}
	for _, t := range f.Teams {
		r.teams = append(r.teams, t.Team)
		for _, p := range t.Players {
			slot, ok := r.slots[p.Slot]
			if !ok {
				return nil, fmt.Errorf("roster: team %d player for unknown slot %d", t.Team, p.Slot)
			}
			alias := p.Alias
			if alias == "" {
				alias = slot.Name
			}
			r.players[world.TeamSlot{Team: t.Team, Slot: p.Slot}] = netdata.NetworkPlayer{
				Team:     t.Team,
				Slot:     p.Slot,
				Alias:    alias,
				Name:     slot.Name,
				Pronouns: p.Pronouns,
			}
		}
	}
	if len(r.teams) == 0 {
		r.teams = []int{0}
	}
	slices.Sort(r.teams)
	for m := range r.groups {
		slices.Sort(r.groups[m])
	}
	return r, nil
}

// Slot returns the game info of slot.
func (r *Roster) Slot(slot int) (netdata.NetworkSlot, bool) {
	s, ok := r.slots[slot]
	return s, ok
}

// Player returns the identity playing slot in team. Slots without an
// explicit player entry fall back to the slot name.
func (r *Roster) Player(team, slot int) (netdata.NetworkPlayer, bool) {
	if p, ok := r.players[world.TeamSlot{Team: team, Slot: slot}]; ok {
		return p, true
	}
	s, ok := r.slots[slot]
	if !ok {
		return netdata.NetworkPlayer{}, false
	}
	return netdata.NetworkPlayer{Team: team, Slot: slot, Alias: s.Name, Name: s.Name}, true
}

// GroupsOf lists the group slots slot belongs to, ascending.
func (r *Roster) GroupsOf(slot int) []int {
	return slices.Clone(r.groups[slot])
}

// SlotIDs lists every slot id, ascending.
func (r *Roster) SlotIDs() []int {
	ids := make([]int, 0, len(r.slots))
	for id := range r.slots {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Teams lists every team id, ascending.
func (r *Roster) Teams() []int { return slices.Clone(r.teams) }

// SlotByName finds a slot by its exact or case-insensitive name.
func (r *Roster) SlotByName(name string) (int, bool) {
	for _, id := range r.SlotIDs() {
		if r.slots[id].Name == name {
			return id, true
		}
	}
	for _, id := range r.SlotIDs() {
		if strings.EqualFold(r.slots[id].Name, name) {
			return id, true
		}
	}
	return 0, false
}

// Count returns the number of slots loaded.
func (r *Roster) Count() int {
	return len(r.slots)
}
