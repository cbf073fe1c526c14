package transcript

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/mwhost/server/internal/codec"
	"github.com/mwhost/server/internal/core/event"
	"github.com/mwhost/server/internal/netdata"
	"github.com/mwhost/server/internal/richtext"
)

// Viewer supplies the rendering context of a slot; *session.Session
// implements it.
type Viewer interface {
	View(team, slot int) richtext.Context
}

// Recorder turns session events into transcript entries.
type Recorder struct {
	w      *Writer
	viewer Viewer
	log    *zap.Logger
}

func NewRecorder(w *Writer, viewer Viewer, log *zap.Logger) *Recorder {
	return &Recorder{w: w, viewer: viewer, log: log}
}

// Attach subscribes the recorder to the broadcast events.
func (r *Recorder) Attach(bus *event.Bus) {
	event.Subscribe(bus, r.onItemSent)
	event.Subscribe(bus, r.onHintUpdated)
	event.Subscribe(bus, r.onClientStatus)
}

func (r *Recorder) onItemSent(e event.ItemSent) {
	f := e.Found
	r.record("ItemSend", e.Team, f.FindingSlot, e.Message, map[string]any{
		"cmd":       "PrintJSON",
		"type":      "ItemSend",
		"data":      e.Message,
		"receiving": f.Receiver,
		"item":      netdata.NetworkItem{Item: f.Item, Location: f.Location, Player: f.FindingSlot, Flags: f.Flags},
	})
}

func (r *Recorder) onHintUpdated(e event.HintUpdated) {
	r.record("Hint", e.Team, e.Slot, e.Announcement.Parts, e.Announcement.Payload())
}

func (r *Recorder) onClientStatus(e event.ClientStatusChanged) {
	if e.Message == nil {
		return
	}
	r.record("Goal", e.Team, e.Slot, e.Message, map[string]any{
		"cmd":  "PrintJSON",
		"type": "Goal",
		"data": e.Message,
		"team": e.Team,
		"slot": e.Slot,
	})
}

func (r *Recorder) record(kind string, team, slot int, msg richtext.Message, payload map[string]any) {
	text := richtext.NewRawRenderer(r.viewer.View(team, slot), r.log).Render(msg)
	entry := Entry{Kind: kind, Team: team, Slot: slot, Text: text}
	if encoded, err := codec.Encode(payload); err != nil {
		r.log.Warn("encode transcript payload", zap.String("kind", kind), zap.Error(err))
	} else {
		entry.Payload = json.RawMessage(encoded)
	}
	if err := r.w.Write(entry); err != nil {
		r.log.Error("write transcript", zap.String("kind", kind), zap.Error(err))
	}
}
