package transcript

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/mwhost/server/internal/codec"
	"github.com/mwhost/server/internal/core/event"
	"github.com/mwhost/server/internal/hint"
	"github.com/mwhost/server/internal/netdata"
	"github.com/mwhost/server/internal/richtext"
	"github.com/mwhost/server/internal/world"
)

func TestWriterRotatesHourly(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "messages")
	base := time.Date(2024, 3, 9, 10, 59, 0, 0, time.UTC)

	for i, at := range []time.Time{base, base.Add(30 * time.Second), base.Add(2 * time.Minute)} {
		if err := w.Write(Entry{Time: at, Kind: "Test", Text: strings.Repeat("x", i+1)}); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	first, err := ReadFile(w.PathForHour("2024-03-09-10"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	second, err := ReadFile(w.PathForHour("2024-03-09-11"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(first) != 2 || len(second) != 1 || second[0].Text != "xxx" {
		t.Fatalf("first=%+v second=%+v", first, second)
	}
	if !first[0].Time.Equal(base) {
		t.Fatalf("time = %v", first[0].Time)
	}
}

func TestWriterAppendsAcrossRestarts(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		w := NewWriter(dir, "messages")
		if err := w.Write(Entry{Time: at, Kind: "Test"}); err != nil {
			t.Fatal(err)
		}
		w.Close()
	}
	got, err := ReadFile(filepath.Join(dir, "messages-2024-03-09-10.jsonl.zst"))
	if err != nil || len(got) != 2 {
		t.Fatalf("got %d entries, %v", len(got), err)
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "absent.jsonl.zst")); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("err = %v", err)
	}
}

type names struct{}

func (names) PlayerName(slot int) string {
	return map[int]string{1: "Alice", 2: "Bob"}[slot]
}

func (names) ConcernsSelf(slot int) bool { return false }

func (names) ItemName(item int64, slot int) string { return "Lamp" }

func (names) LocationName(location int64, slot int) string { return "Dock" }

type viewer struct{}

func (viewer) View(team, slot int) richtext.Context { return names{} }

func TestRecorder(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "messages")
	fixed := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return fixed }

	bus := event.NewBus()
	NewRecorder(w, viewer{}, zaptest.NewLogger(t)).Attach(bus)

	f := world.Found{FindingSlot: 2, Location: 200, Item: 7, Receiver: 1, Flags: netdata.ItemUseful}
	event.Emit(bus, event.ItemSent{Team: 0, Found: f, Message: richtext.Message{
		richtext.PlayerID(2), richtext.Text(" sent "), richtext.Item(7, 1, f.Flags),
		richtext.Text(" to "), richtext.PlayerID(1),
	}})
	h := hint.Hint{Receiving: 1, Finding: 2, Location: 200, Item: 7, Status: netdata.HintPriority}
	event.Emit(bus, event.HintUpdated{Team: 0, Slot: 1, Hint: h, Announcement: h.Announcement()})
	event.Emit(bus, event.ClientStatusChanged{Slot: 2, New: netdata.ClientPlaying})
	event.Emit(bus, event.ClientStatusChanged{Slot: 2, New: netdata.ClientGoal, Message: richtext.Message{
		richtext.PlayerID(2), richtext.Text(" has completed their goal."),
	}})
	bus.Flush()
	w.Close()

	entries, err := ReadFile(w.PathForHour("2024-03-09-10"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %+v", entries)
	}
	want := []struct{ kind, text string }{
		{"ItemSend", "Bob sent Lamp to Alice"},
		{"Hint", "[Hint]: Alice's Lamp is at Dock in Bob's World. (priority)"},
		{"Goal", "Bob has completed their goal."},
	}
	for i, exp := range want {
		if entries[i].Kind != exp.kind || entries[i].Text != exp.text {
			t.Fatalf("entry %d = %s %q", i, entries[i].Kind, entries[i].Text)
		}
	}

	payload, err := codec.Decode(string(entries[0].Payload))
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	item := payload.(map[string]any)["item"]
	if item != (netdata.NetworkItem{Item: 7, Location: 200, Player: 2, Flags: netdata.ItemUseful}) {
		t.Fatalf("payload item = %#v", item)
	}
}
