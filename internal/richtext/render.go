package richtext

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Context resolves the semantic references inside a message. It is
// supplied by the session for one viewing slot.
type Context interface {
	// PlayerName returns the display name for slot.
	PlayerName(slot int) string
	// ConcernsSelf reports whether slot is the viewer (or a group the viewer is in).
	ConcernsSelf(slot int) bool
	// ItemName resolves item in the game played by slot.
	ItemName(item int64, slot int) string
	// LocationName resolves location in the game played by slot.
	LocationName(location int64, slot int) string
}

type handlerFunc func(r *Renderer, p Part) string

// handlers is the fixed dispatch table. Parts with an unknown or empty
// type go to the text handler.
var handlers = map[PartType]handlerFunc{
	PartText:         (*Renderer).handleText,
	PartColor:        (*Renderer).handleColor,
	PartPlayerID:     (*Renderer).handlePlayerID,
	PartPlayerName:   (*Renderer).handlePlayerName,
	PartItemID:       (*Renderer).handleItemID,
	PartItemName:     (*Renderer).handleItemName,
	PartLocationID:   (*Renderer).handleLocationID,
	PartLocationName: (*Renderer).handleLocationName,
	PartEntranceName: (*Renderer).handleEntranceName,
	PartHintStatus:   (*Renderer).handleHintStatus,
}

// Renderer turns messages into terminal text. It never fails: anything it
// cannot resolve is rendered as the part's own text.
type Renderer struct {
	ctx Context
	raw bool
	log *zap.Logger
}

// NewRenderer returns a renderer emitting ANSI color escapes.
func NewRenderer(ctx Context, log *zap.Logger) *Renderer {
	return &Renderer{ctx: ctx, log: log}
}

// NewRawRenderer returns a renderer producing plain text, for logs and
// transcripts.
func NewRawRenderer(ctx Context, log *zap.Logger) *Renderer {
	return &Renderer{ctx: ctx, raw: true, log: log}
}

// Render concatenates the rendering of every part in order.
func (r *Renderer) Render(msg Message) string {
	var b strings.Builder
	for _, p := range msg {
		b.WriteString(r.renderPart(p))
	}
	return b.String()
}

// renderPart dispatches one part. A panicking resolver must not take a
// gameplay message down with it, so panics degrade to the raw text.
func (r *Renderer) renderPart(p Part) (out string) {
	defer func() {
		if rec := recover(); rec != nil {
			if r.log != nil {
				r.log.Warn("rich text part failed to render",
					zap.String("type", string(p.Type)),
					zap.String("text", p.Text),
					zap.String("panic", fmt.Sprint(rec)),
				)
			}
			out = p.Text
		}
	}()
	h, ok := handlers[p.Type]
	if !ok {
		h = handlers[PartText]
	}
	return h(r, p)
}

func (r *Renderer) handleText(p Part) string {
	p.Color = "default"
	return r.handleColor(p)
}

func (r *Renderer) handleColor(p Part) string {
	if r.raw {
		return p.Text
	}
	return colorize(p.Color, p.Text)
}

func (r *Renderer) handlePlayerID(p Part) string {
	slot, err := strconv.Atoi(strings.TrimSpace(p.Text))
	if err != nil || r.ctx == nil {
		return r.handleText(p)
	}
	if r.ctx.ConcernsSelf(slot) {
		p.Color = "self"
	} else {
		p.Color = "other"
	}
	p.Text = r.ctx.PlayerName(slot)
	return r.handleColor(p)
}

func (r *Renderer) handlePlayerName(p Part) string {
	p.Color = "other"
	return r.handleColor(p)
}

func (r *Renderer) handleItemID(p Part) string {
	item, err := strconv.ParseInt(strings.TrimSpace(p.Text), 10, 64)
	if err != nil || r.ctx == nil {
		return r.handleItemName(p)
	}
	p.Text = r.ctx.ItemName(item, p.Player)
	return r.handleItemName(p)
}

func (r *Renderer) handleItemName(p Part) string {
	p.Color = ItemColor(p.Flags)
	return r.handleColor(p)
}

func (r *Renderer) handleLocationID(p Part) string {
	location, err := strconv.ParseInt(strings.TrimSpace(p.Text), 10, 64)
	if err != nil || r.ctx == nil {
		return r.handleLocationName(p)
	}
	p.Text = r.ctx.LocationName(location, p.Player)
	return r.handleLocationName(p)
}

func (r *Renderer) handleLocationName(p Part) string {
	p.Color = "found"
	return r.handleColor(p)
}

func (r *Renderer) handleEntranceName(p Part) string {
	p.Color = "entrance"
	return r.handleColor(p)
}

func (r *Renderer) handleHintStatus(p Part) string {
	p.Color = "red"
	if p.HintStatus != nil {
		p.Color = p.HintStatus.Color()
	}
	return r.handleColor(p)
}
