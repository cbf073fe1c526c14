package richtext

import (
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/mwhost/server/internal/netdata"
)

type fakeContext struct {
	self      int
	players   map[int]string
	items     map[int]map[int64]string
	locations map[int]map[int64]string
	panics    bool
}

func (c *fakeContext) PlayerName(slot int) string {
	if c.panics {
		panic("roster unavailable")
	}
	if n, ok := c.players[slot]; ok {
		return n
	}
	return "Unknown"
}

func (c *fakeContext) ConcernsSelf(slot int) bool { return slot == c.self }

func (c *fakeContext) ItemName(item int64, slot int) string {
	if n, ok := c.items[slot][item]; ok {
		return n
	}
	return "Unknown item"
}

func (c *fakeContext) LocationName(location int64, slot int) string {
	if n, ok := c.locations[slot][location]; ok {
		return n
	}
	return "Unknown location"
}

func testContext() *fakeContext {
	return &fakeContext{
		self:    1,
		players: map[int]string{1: "Alice", 2: "Bob"},
		items: map[int]map[int64]string{
			2: {3: "Sword"},
			1: {7: "Hookshot"},
		},
		locations: map[int]map[int64]string{
			1: {100: "Link's House"},
		},
	}
}

func wrap(code, text string) string {
	return "\x1b[" + code + "m" + text + "\x1b[0m"
}

func TestScenarioB_ItemIDProgression(t *testing.T) {
	msg, err := ParseMessage([]byte(`[{"text":"3","type":"item_id","player":2,"flags":1}]`))
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	got := NewRenderer(testContext(), zaptest.NewLogger(t)).Render(msg)
	want := wrap(Palette["progression"], "Sword")
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestRenderHandlers(t *testing.T) {
	status := netdata.HintAvoid
	tests := []struct {
		name string
		part Part
		want string
	}{
		{"plain text", Part{Text: "hello"}, wrap("37", "hello")},
		{"explicit text", Text("hi"), wrap("37", "hi")},
		{"unknown type", Part{Text: "x", Type: "sparkles"}, wrap("37", "x")},
		{"color joined", Colored("c", "bold;red"), wrap("1;31", "c")},
		{"unknown color dropped", Colored("c", "bold;glitter;underline"), wrap("1;4", "c")},
		{"no known color", Colored("c", "glitter"), "c\x1b[0m"},
		{"player self", PlayerID(1), wrap(Palette["self"], "Alice")},
		{"player other", PlayerID(2), wrap(Palette["other"], "Bob")},
		{"player name", PlayerName("Zed"), wrap(Palette["other"], "Zed")},
		{"bad player id", Part{Text: "not-a-slot", Type: PartPlayerID}, wrap("37", "not-a-slot")},
		{"location", Location(100, 1), wrap(Palette["found"], "Link's House")},
		{"location name", Part{Text: "Cave", Type: PartLocationName}, wrap(Palette["found"], "Cave")},
		{"entrance", Entrance("Hyrule Castle"), wrap(Palette["entrance"], "Hyrule Castle")},
		{"hint status", Status(netdata.HintPriority), wrap("33", "(priority)")},
		{"hint status avoid", Part{Text: "(avoid)", Type: PartHintStatus, HintStatus: &status}, wrap("31", "(avoid)")},
		{"hint status missing", Part{Text: "?", Type: PartHintStatus}, wrap("31", "?")},
		{"item name", Part{Text: "Bomb", Type: PartItemName, Flags: netdata.ItemTrap}, wrap(Palette["trap"], "Bomb")},
	}
	r := NewRenderer(testContext(), zaptest.NewLogger(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Render(Message{tt.part}); got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestItemColor(t *testing.T) {
	tests := []struct {
		flags netdata.ItemFlags
		want  string
	}{
		{0, "filler"},
		{netdata.ItemSkipBalancing, "filler"},
		{netdata.ItemSkipBalancing | netdata.ItemProgression, "progression"},
		{netdata.ItemSkipBalancing | netdata.ItemUseful, "filler"},
		{netdata.ItemProgression, "progression"},
		{netdata.ItemProgression | netdata.ItemUseful, "progression"},
		{netdata.ItemUseful, "useful"},
		{netdata.ItemUseful | netdata.ItemTrap, "useful"},
		{netdata.ItemTrap, "trap"},
		{16, "filler"},
	}
	for _, tt := range tests {
		if got := ItemColor(tt.flags); got != tt.want {
			t.Fatalf("ItemColor(%04b) = %s, want %s", tt.flags, got, tt.want)
		}
	}
}

func TestRawRendererIsPlainText(t *testing.T) {
	msg := Message{
		Text("[Hint]: "),
		Colored("careful", "red;bold"),
		Part{Text: " and "},
		Part{Text: "more", Type: "unknown"},
	}
	got := NewRawRenderer(testContext(), zaptest.NewLogger(t)).Render(msg)
	var want strings.Builder
	for _, p := range msg {
		want.WriteString(p.Text)
	}
	if got != want.String() {
		t.Fatalf("got %q want %q", got, want.String())
	}
	if strings.Contains(got, "\x1b") {
		t.Fatalf("raw output contains escapes: %q", got)
	}
}

func TestRawRendererResolvesIDs(t *testing.T) {
	msg := Message{PlayerID(2), Text("'s "), Item(3, 2, netdata.ItemProgression), Text(" at "), Location(100, 1)}
	got := NewRawRenderer(testContext(), zaptest.NewLogger(t)).Render(msg)
	if want := "Bob's Sword at Link's House"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestRenderDoesNotMutateMessage(t *testing.T) {
	msg := Message{PlayerID(2), Text("x")}
	NewRenderer(testContext(), nil).Render(msg)
	if msg[0].Text != "2" || msg[0].Color != "" || msg[1].Color != "" {
		t.Fatalf("message mutated: %+v", msg)
	}
}

func TestRenderRecoversFromResolverPanic(t *testing.T) {
	ctx := testContext()
	ctx.panics = true
	got := NewRenderer(ctx, zaptest.NewLogger(t)).Render(Message{PlayerID(2), Text("!")})
	if want := "2" + wrap("37", "!"); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestRenderNilContext(t *testing.T) {
	got := NewRawRenderer(nil, nil).Render(Message{PlayerID(4), Item(9, 1, 0), Location(5, 1)})
	if got != "495" {
		t.Fatalf("got %q", got)
	}
}

func TestParseMessage(t *testing.T) {
	msg, err := ParseMessage([]byte(`[{"text":"a"},{"text":"(found)","type":"hint_status","hint_status":40},{"text":"b","color":"red"}]`))
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	if len(msg) != 3 || msg[1].HintStatus == nil || *msg[1].HintStatus != netdata.HintFound || msg[2].Color != "red" {
		t.Fatalf("got %+v", msg)
	}
	if _, err := ParseMessage([]byte(`{"text":"a"}`)); err == nil {
		t.Fatalf("object accepted as message")
	}
}
