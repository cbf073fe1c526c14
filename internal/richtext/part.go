// Package richtext implements the typed-part message format used to
// announce events to clients, and renders it for terminals and logs.
package richtext

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mwhost/server/internal/netdata"
)

// PartType selects how a part's text is interpreted.
type PartType string

const (
	PartText         PartType = "text"
	PartColor        PartType = "color"
	PartPlayerID     PartType = "player_id"
	PartPlayerName   PartType = "player_name"
	PartItemID       PartType = "item_id"
	PartItemName     PartType = "item_name"
	PartLocationID   PartType = "location_id"
	PartLocationName PartType = "location_name"
	PartEntranceName PartType = "entrance_name"
	PartHintStatus   PartType = "hint_status"
)

// Part is one span of a message. Text is always present; for *_id types
// it holds the decimal id to resolve.
type Part struct {
	Text       string              `json:"text"`
	Type       PartType            `json:"type,omitempty"`
	Color      string              `json:"color,omitempty"`
	Player     int                 `json:"player,omitempty"`
	Flags      netdata.ItemFlags   `json:"flags,omitempty"`
	HintStatus *netdata.HintStatus `json:"hint_status,omitempty"`
}

// Message is an ordered list of parts.
type Message []Part

// ParseMessage decodes a JSON array of parts.
func ParseMessage(b []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse message: %w", err)
	}
	return m, nil
}

func Text(text string) Part {
	return Part{Text: text, Type: PartText}
}

func Colored(text, color string) Part {
	return Part{Text: text, Type: PartColor, Color: color}
}

func PlayerID(slot int) Part {
	return Part{Text: strconv.Itoa(slot), Type: PartPlayerID}
}

func PlayerName(name string) Part {
	return Part{Text: name, Type: PartPlayerName}
}

// Item references item as owned by player's game.
func Item(item int64, player int, flags netdata.ItemFlags) Part {
	return Part{Text: strconv.FormatInt(item, 10), Type: PartItemID, Player: player, Flags: flags}
}

// Location references location in player's game.
func Location(location int64, player int) Part {
	return Part{Text: strconv.FormatInt(location, 10), Type: PartLocationID, Player: player}
}

func Entrance(name string) Part {
	return Part{Text: name, Type: PartEntranceName}
}

// Status renders the label of status.
func Status(status netdata.HintStatus) Part {
	s := status
	return Part{Text: status.Label(), Type: PartHintStatus, HintStatus: &s}
}
