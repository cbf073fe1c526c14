package data

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/mwhost/server/internal/netdata"
	"github.com/mwhost/server/internal/world"
)

//go:embed schema/universe.schema.json
var universeSchemaText string

type placementEntry struct {
	Location int64 `yaml:"location" json:"location"`
	Item     int64 `yaml:"item" json:"item"`
	Receiver int   `yaml:"receiver" json:"receiver"`
	Flags    int   `yaml:"flags" json:"flags"`
}

type slotEntry struct {
	Slot      int              `yaml:"slot" json:"slot"`
	Locations []placementEntry `yaml:"locations" json:"locations"`
}

type universeFile struct {
	SeedName string      `yaml:"seed_name" json:"seed_name"`
	Slots    []slotEntry `yaml:"slots" json:"slots"`
}

// LoadUniverse loads the placement table of a generated multiworld from YAML.
// The result still has to go through world.Build, which checks slot numbering.
func LoadUniverse(path string) (world.Universe, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read universe: %w", err)
	}
	var f universeFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse universe: %w", err)
	}
	return f.universe()
}

// LoadUniverseJSON is LoadUniverse for JSON generation output. The document
// is checked against the embedded schema before it is converted.
func LoadUniverseJSON(path string) (world.Universe, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read universe: %w", err)
	}
	if err := validateUniverseJSON(raw); err != nil {
		return nil, err
	}
	var f universeFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse universe: %w", err)
	}
	return f.universe()
}

func validateUniverseJSON(raw []byte) error {
	schema, err := jsonschema.CompileString("universe.schema.json", universeSchemaText)
	if err != nil {
		return fmt.Errorf("compile universe schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse universe: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("validate universe: %w", err)
	}
	return nil
}

func (f *universeFile) universe() (world.Universe, error) {
	u := make(world.Universe, len(f.Slots))
	for _, s := range f.Slots {
		if _, dup := u[s.Slot]; dup {
			return nil, fmt.Errorf("universe: slot %d listed twice", s.Slot)
		}
		locs := make(map[int64]world.Placement, len(s.Locations))
		for _, l := range s.Locations {
			if _, dup := locs[l.Location]; dup {
				return nil, fmt.Errorf("universe: slot %d location %d listed twice", s.Slot, l.Location)
			}
			locs[l.Location] = world.Placement{
				Item:     l.Item,
				Receiver: l.Receiver,
				Flags:    netdata.ItemFlags(l.Flags),
			}
		}
		u[s.Slot] = locs
	}
	return u, nil
}

