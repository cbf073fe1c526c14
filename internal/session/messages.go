package session

import (
	"github.com/mwhost/server/internal/richtext"
	"github.com/mwhost/server/internal/world"
)

// itemSendMessage is the broadcast for a placement delivered by a check.
func itemSendMessage(f world.Found) richtext.Message {
	item := richtext.Item(f.Item, f.Receiver, f.Flags)
	location := richtext.Location(f.Location, f.FindingSlot)
	if f.Receiver == f.FindingSlot {
		return richtext.Message{
			richtext.PlayerID(f.FindingSlot),
			richtext.Text(" found their "),
			item,
			richtext.Text(" ("),
			location,
			richtext.Text(")"),
		}
	}
	return richtext.Message{
		richtext.PlayerID(f.FindingSlot),
		richtext.Text(" sent "),
		item,
		richtext.Text(" to "),
		richtext.PlayerID(f.Receiver),
		richtext.Text(" ("),
		location,
		richtext.Text(")"),
	}
}

func goalMessage(slot int) richtext.Message {
	return richtext.Message{
		richtext.PlayerID(slot),
		richtext.Text(" has completed their goal."),
	}
}
