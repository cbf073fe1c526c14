package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type gameNames struct {
	items     map[int64]string
	locations map[int64]string
}

// NameTable maps item and location ids to display names, per game.
type NameTable struct {
	games map[string]*gameNames
}

type gameNamesYAML struct {
	Game      string           `yaml:"game"`
	Items     map[int64]string `yaml:"items"`
	Locations map[int64]string `yaml:"locations"`
}

type nameListFile struct {
	Games []gameNamesYAML `yaml:"games"`
}

// LoadNameTable loads names.yaml.
func LoadNameTable(path string) (*NameTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read name table: %w", err)
	}
	var f nameListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse name table: %w", err)
	}
	t := &NameTable{games: make(map[string]*gameNames, len(f.Games))}
	for _, g := range f.Games {
		names, ok := t.games[g.Game]
		if !ok {
			names = &gameNames{items: make(map[int64]string), locations: make(map[int64]string)}
			t.games[g.Game] = names
		}
		for id, n := range g.Items {
			names.items[id] = n
		}
		for id, n := range g.Locations {
			names.locations[id] = n
		}
	}
	return t, nil
}

// ItemName returns the name of item in game.
func (t *NameTable) ItemName(game string, item int64) (string, bool) {
	g, ok := t.games[game]
	if !ok {
		return "", false
	}
	n, ok := g.items[item]
	return n, ok
}

// LocationName returns the name of location in game.
func (t *NameTable) LocationName(game string, location int64) (string, bool) {
	g, ok := t.games[game]
	if !ok {
		return "", false
	}
	n, ok := g.locations[location]
	return n, ok
}

// ItemID is the reverse lookup used by console commands taking names.
func (t *NameTable) ItemID(game, name string) (int64, bool) {
	g, ok := t.games[game]
	if !ok {
		return 0, false
	}
	for id, n := range g.items {
		if n == name {
			return id, true
		}
	}
	return 0, false
}

// LocationID is the reverse of LocationName.
func (t *NameTable) LocationID(game, name string) (int64, bool) {
	g, ok := t.games[game]
	if !ok {
		return 0, false
	}
	for id, n := range g.locations {
		if n == name {
			return id, true
		}
	}
	return 0, false
}

// Count returns the number of games with names loaded.
func (t *NameTable) Count() int {
	return len(t.games)
}
