// Package session applies player commands to one running multiworld: it owns
// the check state, the hint books and client statuses, and publishes what
// changed on the event bus. A Session has a single owner and takes no locks.
package session

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mwhost/server/internal/core/event"
	"github.com/mwhost/server/internal/data"
	"github.com/mwhost/server/internal/hint"
	"github.com/mwhost/server/internal/netdata"
	"github.com/mwhost/server/internal/world"
)

var (
	ErrPermission      = errors.New("not permitted")
	ErrNotEnoughPoints = errors.New("not enough hint points")
	ErrUnknownLocation = errors.New("unknown location")
	ErrUnknownHint     = errors.New("unknown hint")
	ErrInvalidStatus   = errors.New("invalid hint status")
	ErrUnknownSlot     = world.ErrSlotNotFound
)

// points earned per checked location
const locationCheckPoints = 1

// HintCoster overrides the default hint price.
type HintCoster interface {
	HintCost(totalLocations, percent int) (int, bool)
}

type Options struct {
	SeedName  string // stable session id when set
	Release   netdata.Permission
	Collect   netdata.Permission
	Remaining netdata.Permission
	HintCost  int // percent of the slot's locations; 0 = hints are free
	Coster    HintCoster
}

type Session struct {
	ID string

	store    world.LocationIndex
	state    world.CheckState
	roster   *data.Roster
	names    Names
	books    map[world.TeamSlot]*hint.Book
	statuses map[world.TeamSlot]netdata.ClientStatus
	spent    map[world.TeamSlot]int
	opts     Options
	bus      *event.Bus
	log      *zap.Logger
}

// New creates a session over store. The id is derived from the seed name so
// a restarted server finds its journal again.
func New(store world.LocationIndex, roster *data.Roster, names Names, bus *event.Bus, opts Options, log *zap.Logger) *Session {
	id := uuid.NewString()
	if opts.SeedName != "" {
		id = uuid.NewSHA1(uuid.NameSpaceOID, []byte(opts.SeedName)).String()
	}
	return &Session{
		ID:       id,
		store:    store,
		state:    make(world.CheckState),
		roster:   roster,
		names:    names,
		books:    make(map[world.TeamSlot]*hint.Book),
		statuses: make(map[world.TeamSlot]netdata.ClientStatus),
		spent:    make(map[world.TeamSlot]int),
		opts:     opts,
		bus:      bus,
		log:      log,
	}
}

func (s *Session) game(slot int) string {
	if info, ok := s.roster.Slot(slot); ok {
		return info.Game
	}
	return ""
}

func (s *Session) book(team, slot int) *hint.Book {
	key := world.TeamSlot{Team: team, Slot: slot}
	b, ok := s.books[key]
	if !ok {
		b = hint.NewBook()
		s.books[key] = b
	}
	return b
}

func (s *Session) requireSlot(slot int) error {
	if slot < 1 || slot > s.store.SlotCount() {
		return fmt.Errorf("%w: %d", ErrUnknownSlot, slot)
	}
	return nil
}

// CheckLocations marks ids as checked by slot and returns the ones that
// were new. Ids that are not locations of slot are ignored.
func (s *Session) CheckLocations(team, slot int, ids []int64) ([]int64, error) {
	if err := s.requireSlot(slot); err != nil {
		return nil, err
	}
	valid := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := s.store.Placement(slot, id); ok {
			valid = append(valid, id)
		} else {
			s.log.Debug("ignoring check of unknown location", zap.Int("slot", slot), zap.Int64("location", id))
		}
	}
	added := s.state.Add(team, slot, valid...)
	if len(added) == 0 {
		return nil, nil
	}
	slices.Sort(added)

	for _, loc := range added {
		p, _ := s.store.Placement(slot, loc)
		f := world.Found{FindingSlot: slot, Location: loc, Item: p.Item, Receiver: p.Receiver, Flags: p.Flags}
		event.Emit(s.bus, event.ItemSent{Team: team, Found: f, Message: itemSendMessage(f)})
	}
	s.recheckHints(team, slot, setOf(added))
	event.Emit(s.bus, event.LocationsChecked{SessionID: s.ID, Team: team, Slot: slot, Locations: added})
	s.log.Debug("locations checked", zap.Int("team", team), zap.Int("slot", slot), zap.Int("count", len(added)))
	return added, nil
}

func setOf(ids []int64) world.LocationSet {
	m := make(world.LocationSet, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

// recheckHints marks found every hint of team pointing at one of the newly
// checked locations of finding.
func (s *Session) recheckHints(team, finding int, checked world.LocationSet) {
	for _, key := range s.bookKeys(team) {
		changed := s.books[key].Update(func(h hint.Hint) hint.Hint {
			return h.ReCheck(h.Finding == finding && checked.Has(h.Location))
		})
		for _, h := range changed {
			s.emitHint(team, key.Slot, h)
		}
	}
}

// bookKeys lists team's books in slot order so events come out deterministically.
func (s *Session) bookKeys(team int) []world.TeamSlot {
	var keys []world.TeamSlot
	for k := range s.books {
		if k.Team == team {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, func(a, b world.TeamSlot) int { return a.Slot - b.Slot })
	return keys
}

func (s *Session) emitHint(team, slot int, h hint.Hint) {
	event.Emit(s.bus, event.HintUpdated{
		SessionID:    s.ID,
		Team:         team,
		Slot:         slot,
		Hint:         h,
		Announcement: h.Announcement(),
	})
}

// Restore re-applies journaled checks without emitting events. Ids that are
// not locations of slot, or an unknown slot, are dropped.
func (s *Session) Restore(team, slot int, ids []int64) {
	if err := s.requireSlot(slot); err != nil {
		s.log.Warn("dropping journaled checks", zap.Int("team", team), zap.Int("slot", slot), zap.Error(err))
		return
	}
	valid := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := s.store.Placement(slot, id); ok {
			valid = append(valid, id)
		}
	}
	if dropped := len(ids) - len(valid); dropped > 0 {
		s.log.Warn("dropping journaled checks of unknown locations",
			zap.Int("team", team), zap.Int("slot", slot), zap.Int("count", dropped))
	}
	s.state.Add(team, slot, valid...)
}

// RestoreSlotState puts back a journaled client status and the hint points
// already spent. Reaching goal this way does not run release or collect
// again; their checks are journaled on their own.
func (s *Session) RestoreSlotState(team, slot int, status netdata.ClientStatus, hintsSpent int) {
	if err := s.requireSlot(slot); err != nil {
		s.log.Warn("dropping journaled slot state", zap.Int("team", team), zap.Int("slot", slot), zap.Error(err))
		return
	}
	key := world.TeamSlot{Team: team, Slot: slot}
	if status != netdata.ClientUnknown {
		s.statuses[key] = status
	}
	if hintsSpent > 0 {
		s.spent[key] = hintsSpent
	}
}

// emitSlotState publishes the journaled part of a slot's state.
func (s *Session) emitSlotState(team, slot int) {
	key := world.TeamSlot{Team: team, Slot: slot}
	event.Emit(s.bus, event.SlotStateChanged{
		SessionID:  s.ID,
		Team:       team,
		Slot:       slot,
		Status:     s.statuses[key],
		HintsSpent: s.spent[key],
	})
}

// RestoreHint puts a journaled hint back into the book of (team, slot).
func (s *Session) RestoreHint(team, slot int, h hint.Hint) {
	s.book(team, slot).Add(h.ReCheckIn(s.state, team))
}

func (s *Session) Checked(team, slot int) ([]int64, error) {
	return s.store.Checked(s.state, team, slot)
}

func (s *Session) Missing(team, slot int) ([]int64, error) {
	return s.store.Missing(s.state, team, slot)
}

// Remaining lists what slot's world still holds, gated by the remaining
// permission.
func (s *Session) Remaining(team, slot int) ([]world.Remaining, error) {
	if err := s.requireSlot(slot); err != nil {
		return nil, err
	}
	if !s.allowed(s.opts.Remaining, team, slot) {
		return nil, fmt.Errorf("remaining: %w", ErrPermission)
	}
	return s.store.Remaining(s.state, team, slot)
}

// allowed reports whether a manual command gated by p may run now.
func (s *Session) allowed(p netdata.Permission, team, slot int) bool {
	if p.Manual() {
		return true
	}
	return p.AfterGoal() && s.ClientStatus(team, slot) == netdata.ClientGoal
}

// ClientStatus returns the last reported status. Slots that are not played
// by a client (groups, spectators) always count as having reached their goal.
func (s *Session) ClientStatus(team, slot int) netdata.ClientStatus {
	if info, ok := s.roster.Slot(slot); ok && info.Type.AlwaysGoal() {
		return netdata.ClientGoal
	}
	return s.statuses[world.TeamSlot{Team: team, Slot: slot}]
}

// SetClientStatus records a client's progress. Goal is terminal; reaching
// it runs automatic release and collect.
func (s *Session) SetClientStatus(team, slot int, status netdata.ClientStatus) error {
	if err := s.requireSlot(slot); err != nil {
		return err
	}
	key := world.TeamSlot{Team: team, Slot: slot}
	old := s.statuses[key]
	if old == netdata.ClientGoal || old == status {
		return nil
	}
	s.statuses[key] = status

	ev := event.ClientStatusChanged{Team: team, Slot: slot, Old: old, New: status}
	if status == netdata.ClientGoal {
		ev.Message = goalMessage(slot)
	}
	event.Emit(s.bus, ev)
	s.emitSlotState(team, slot)
	s.log.Info("client status changed",
		zap.Int("team", team), zap.Int("slot", slot),
		zap.Stringer("old", old), zap.Stringer("new", status))

	if status != netdata.ClientGoal {
		return nil
	}
	if s.opts.Release.Automatic() {
		if _, err := s.release(team, slot); err != nil {
			return err
		}
	}
	if s.opts.Collect.Automatic() {
		if _, err := s.collect(team, slot); err != nil {
			return err
		}
	}
	return nil
}

// Release checks every location still missing in slot's world, sending out
// the items it holds. It returns the number of locations checked.
func (s *Session) Release(team, slot int) (int, error) {
	if err := s.requireSlot(slot); err != nil {
		return 0, err
	}
	if !s.allowed(s.opts.Release, team, slot) {
		return 0, fmt.Errorf("release: %w", ErrPermission)
	}
	return s.release(team, slot)
}

func (s *Session) release(team, slot int) (int, error) {
	missing, err := s.store.Missing(s.state, team, slot)
	if err != nil {
		return 0, fmt.Errorf("release: %w", err)
	}
	added, err := s.CheckLocations(team, slot, missing)
	return len(added), err
}

// Collect checks, in every world, the locations holding items for slot.
// It returns the number of locations checked.
func (s *Session) Collect(team, slot int) (int, error) {
	if err := s.requireSlot(slot); err != nil {
		return 0, err
	}
	if !s.allowed(s.opts.Collect, team, slot) {
		return 0, fmt.Errorf("collect: %w", ErrPermission)
	}
	return s.collect(team, slot)
}

func (s *Session) collect(team, slot int) (int, error) {
	byFinder := s.store.LocationsForReceivingSlot(slot)
	finders := make([]int, 0, len(byFinder))
	for f := range byFinder {
		finders = append(finders, f)
	}
	slices.Sort(finders)

	total := 0
	for _, f := range finders {
		locs := make([]int64, 0, len(byFinder[f]))
		for loc := range byFinder[f] {
			locs = append(locs, loc)
		}
		slices.Sort(locs)
		added, err := s.CheckLocations(team, f, locs)
		if err != nil {
			return total, fmt.Errorf("collect: %w", err)
		}
		total += len(added)
	}
	return total, nil
}

// Flush delivers every queued event, including follow-ups emitted by handlers.
func (s *Session) Flush() int {
	return s.bus.Flush()
}
