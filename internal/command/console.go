// Package command implements the operator console: text commands applied to
// the session on behalf of a selected (team, slot).
package command

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mwhost/server/internal/data"
	"github.com/mwhost/server/internal/netdata"
	"github.com/mwhost/server/internal/richtext"
	"github.com/mwhost/server/internal/session"
)

// Console parses and runs console lines. Like the session it drives, it is
// used from a single goroutine.
type Console struct {
	sess   *session.Session
	roster *data.Roster
	names  *data.NameTable // reverse lookups for name arguments; may be nil
	out    io.Writer
	raw    bool
	team   int
	slot   int
	log    *zap.Logger
}

func NewConsole(sess *session.Session, roster *data.Roster, names *data.NameTable, out io.Writer, log *zap.Logger) *Console {
	return &Console{sess: sess, roster: roster, names: names, out: out, slot: 1, log: log}
}

// SetRaw switches between colored and plain output.
func (c *Console) SetRaw(raw bool) { c.raw = raw }

// Handle runs one line. It reports false when the operator asked to quit.
func (c *Console) Handle(line string) bool {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "!/.")
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help":
		c.help()
	case "as", "slot":
		c.as(args)
	case "check":
		c.check(args)
	case "hint":
		c.hint(args)
	case "hintloc", "hint_location":
		c.hintLocation(args)
	case "hints":
		c.hints()
	case "priority":
		c.priority(args)
	case "status":
		c.status(args)
	case "missing":
		c.missing()
	case "checked":
		c.checked()
	case "remaining":
		c.remaining()
	case "release":
		c.release()
	case "collect":
		c.collect()
	case "quit", "exit":
		return false
	default:
		c.msg("Unknown command: " + cmd + "  (type help for the command list)")
	}
	return true
}

// --- Helpers ---

func (c *Console) msg(text string) {
	fmt.Fprintln(c.out, text)
}

func (c *Console) msgf(format string, a ...any) {
	c.msg(fmt.Sprintf(format, a...))
}

func (c *Console) render(m richtext.Message) {
	ctx := c.sess.View(c.team, c.slot)
	var r *richtext.Renderer
	if c.raw {
		r = richtext.NewRawRenderer(ctx, c.log)
	} else {
		r = richtext.NewRenderer(ctx, c.log)
	}
	c.msg(r.Render(m))
}

func (c *Console) fail(err error) {
	switch {
	case errors.Is(err, session.ErrPermission):
		c.msgf("You are not allowed to do that now (%v).", err)
	case errors.Is(err, session.ErrNotEnoughPoints):
		c.msgf("Not enough hint points: %v.", err)
	default:
		c.msgf("Error: %v", err)
	}
}

func (c *Console) game() string {
	if s, ok := c.roster.Slot(c.slot); ok {
		return s.Game
	}
	return ""
}

// --- Commands ---

func (c *Console) help() {
	c.msg("=== Console commands ===")
	c.msg("as <slot|name> [team]  - act as another slot")
	c.msg("check <location...>  - check locations of the acting slot")
	c.msg("hint <item>  - show where an item for the acting slot is")
	c.msg("hintloc <location>  - show what a location of the acting slot holds")
	c.msg("hints  - list known hints")
	c.msg("priority <n> <no_priority|avoid|priority|unspecified>  - set the status of hint n")
	c.msg("status <connected|ready|playing|goal>  - set the client status")
	c.msg("missing / checked / remaining  - list locations or remaining items")
	c.msg("release / collect  - release own items, collect own items from others")
	c.msg("quit  - stop the server")
}

func (c *Console) as(args []string) {
	if len(args) < 1 {
		c.msgf("Acting as %s (slot %d, team %d).", c.sess.View(c.team, c.slot).PlayerName(c.slot), c.slot, c.team)
		return
	}
	slot, err := strconv.Atoi(args[0])
	if err != nil {
		var ok bool
		if slot, ok = c.roster.SlotByName(args[0]); !ok {
			c.msg("No slot named " + args[0] + ".")
			return
		}
	}
	if _, ok := c.roster.Slot(slot); !ok {
		c.msgf("No slot %d.", slot)
		return
	}
	team := c.team
	if len(args) > 1 {
		if team, err = strconv.Atoi(args[1]); err != nil {
			c.msg("Team must be a number.")
			return
		}
	}
	c.team, c.slot = team, slot
	c.msgf("Now acting as %s (slot %d, team %d).", c.sess.View(team, slot).PlayerName(slot), slot, team)
}

// locationArg parses a location id or, failing that, a location name of the
// acting slot's game.
func (c *Console) locationArg(arg string) (int64, bool) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return id, true
	}
	if c.names == nil {
		return 0, false
	}
	return c.names.LocationID(c.game(), arg)
}

func (c *Console) itemArg(arg string) (int64, bool) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return id, true
	}
	if c.names == nil {
		return 0, false
	}
	return c.names.ItemID(c.game(), arg)
}

func (c *Console) check(args []string) {
	if len(args) < 1 {
		c.msg("Usage: check <location...>")
		return
	}
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, ok := c.locationArg(a)
		if !ok {
			c.msg("Unknown location: " + a)
			return
		}
		ids = append(ids, id)
	}
	added, err := c.sess.CheckLocations(c.team, c.slot, ids)
	if err != nil {
		c.fail(err)
		return
	}
	c.msgf("%d new location check(s).", len(added))
}

func (c *Console) hint(args []string) {
	if len(args) < 1 {
		c.msgf("Usage: hint <item>  (%d points available, a hint costs %d)",
			c.sess.HintPoints(c.team, c.slot), c.sess.HintCost(c.slot))
		return
	}
	name := strings.Join(args, " ")
	item, ok := c.itemArg(name)
	if !ok {
		c.msg("Unknown item: " + name)
		return
	}
	hints, err := c.sess.HintItem(c.team, c.slot, item)
	if err != nil {
		c.fail(err)
		return
	}
	if len(hints) == 0 {
		c.msg("No such item is placed for you.")
		return
	}
	for _, h := range hints {
		c.render(h.Announcement().Parts)
	}
}

func (c *Console) hintLocation(args []string) {
	if len(args) < 1 {
		c.msg("Usage: hintloc <location>")
		return
	}
	name := strings.Join(args, " ")
	loc, ok := c.locationArg(name)
	if !ok {
		c.msg("Unknown location: " + name)
		return
	}
	h, err := c.sess.HintLocation(c.team, c.slot, loc)
	if err != nil {
		c.fail(err)
		return
	}
	c.render(h.Announcement().Parts)
}

func (c *Console) hints() {
	hints := c.sess.Hints(c.team, c.slot)
	if len(hints) == 0 {
		c.msg("No hints yet.")
		return
	}
	for i, h := range hints {
		c.render(append(richtext.Message{richtext.Text(strconv.Itoa(i+1) + ". ")}, h.Announcement().Parts...))
	}
}

func (c *Console) priority(args []string) {
	if len(args) < 2 {
		c.msg("Usage: priority <n> <status>")
		return
	}
	hints := c.sess.Hints(c.team, c.slot)
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(hints) {
		c.msgf("Hint number must be between 1 and %d.", len(hints))
		return
	}
	status, ok := netdata.ParseHintStatus(strings.Join(args[1:], " "))
	if !ok {
		c.msg("Unknown hint status: " + strings.Join(args[1:], " "))
		return
	}
	h, err := c.sess.UpdateHintStatus(c.team, c.slot, hints[n-1].Key(), status)
	if err != nil {
		c.fail(err)
		return
	}
	c.render(h.Announcement().Parts)
}

var clientStatuses = map[string]netdata.ClientStatus{
	"connected": netdata.ClientConnected,
	"ready":     netdata.ClientReady,
	"playing":   netdata.ClientPlaying,
	"goal":      netdata.ClientGoal,
}

func (c *Console) status(args []string) {
	if len(args) < 1 {
		c.msgf("Client status: %v", c.sess.ClientStatus(c.team, c.slot))
		return
	}
	status, ok := clientStatuses[strings.ToLower(args[0])]
	if !ok {
		c.msg("Unknown client status: " + args[0])
		return
	}
	if err := c.sess.SetClientStatus(c.team, c.slot, status); err != nil {
		c.fail(err)
		return
	}
	c.msgf("Client status: %v", c.sess.ClientStatus(c.team, c.slot))
}

func (c *Console) listLocations(ids []int64, verb string) {
	for _, id := range ids {
		c.render(richtext.Message{richtext.Location(id, c.slot)})
	}
	c.msgf("Found %d %s location checks", len(ids), verb)
}

func (c *Console) missing() {
	ids, err := c.sess.Missing(c.team, c.slot)
	if err != nil {
		c.fail(err)
		return
	}
	c.listLocations(ids, "missing")
}

func (c *Console) checked() {
	ids, err := c.sess.Checked(c.team, c.slot)
	if err != nil {
		c.fail(err)
		return
	}
	c.listLocations(ids, "done")
}

func (c *Console) remaining() {
	rem, err := c.sess.Remaining(c.team, c.slot)
	if err != nil {
		c.fail(err)
		return
	}
	if len(rem) == 0 {
		c.msg("No remaining items found.")
		return
	}
	for _, r := range rem {
		c.render(richtext.Message{
			richtext.Item(r.Item, r.Receiver, 0),
			richtext.Text(" for "),
			richtext.PlayerID(r.Receiver),
		})
	}
	c.msgf("%d item(s) remaining", len(rem))
}

func (c *Console) release() {
	n, err := c.sess.Release(c.team, c.slot)
	if err != nil {
		c.fail(err)
		return
	}
	c.msgf("Released %d location(s).", n)
}

func (c *Console) collect() {
	n, err := c.sess.Collect(c.team, c.slot)
	if err != nil {
		c.fail(err)
		return
	}
	c.msgf("Collected %d location(s).", n)
}
