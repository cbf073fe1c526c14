package session

import (
	"context"
	"path/filepath"
	"slices"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/mwhost/server/internal/hint"
	"github.com/mwhost/server/internal/netdata"
	"github.com/mwhost/server/internal/persist"
	"github.com/mwhost/server/internal/world"
)

func TestJournalReplayRestoresSlotState(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")
	opts := Options{
		SeedName:  "weekly-7",
		HintCost:  50,
		Release:   netdata.PermissionGoal,
		Collect:   netdata.PermissionGoal,
		Remaining: netdata.PermissionGoal,
	}

	j, err := persist.OpenSQLiteJournal(ctx, path, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("OpenSQLiteJournal: %v", err)
	}
	s, _ := newTestSession(t, opts)
	b := persist.NewBatcher(j, zaptest.NewLogger(t))
	b.Attach(s.bus)

	if _, err := s.CheckLocations(0, 1, []int64{100, 101}); err != nil {
		t.Fatalf("CheckLocations: %v", err)
	}
	if _, err := s.HintItem(0, 1, 7); err != nil {
		t.Fatalf("HintItem: %v", err)
	}
	if err := s.SetClientStatus(0, 1, netdata.ClientGoal); err != nil {
		t.Fatalf("SetClientStatus: %v", err)
	}
	s.Flush()
	if err := b.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if p := s.HintPoints(0, 1); p != 1 {
		t.Fatalf("points before restart = %d", p)
	}
	j.Close()

	j, err = persist.OpenSQLiteJournal(ctx, path, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer j.Close()
	restarted, rec := newTestSession(t, opts)
	stats, err := persist.Replay(ctx, j, restarted.ID, restarted)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if stats.Checks != 2 || stats.Slots != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if restarted.Flush() != 0 || len(rec.statuses) != 0 {
		t.Fatalf("replay emitted events")
	}

	if p := restarted.HintPoints(0, 1); p != 1 {
		t.Fatalf("points after replay = %d, want 1", p)
	}
	if st := restarted.ClientStatus(0, 1); st != netdata.ClientGoal {
		t.Fatalf("status after replay = %v", st)
	}
	if _, err := restarted.Remaining(0, 1); err != nil {
		t.Fatalf("Remaining after replay: %v", err)
	}
	if checked, _ := restarted.Checked(0, 1); !slices.Equal(checked, []int64{100, 101}) {
		t.Fatalf("checked after replay = %v", checked)
	}
	if len(restarted.Hints(0, 1)) != 1 {
		t.Fatalf("hints after replay = %+v", restarted.Hints(0, 1))
	}
	// goal is terminal after a restart too
	if err := restarted.SetClientStatus(0, 1, netdata.ClientPlaying); err != nil || restarted.ClientStatus(0, 1) != netdata.ClientGoal {
		t.Fatalf("goal reverted after replay: %v", err)
	}
}

func TestRestoreDropsUnknownLocations(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	s.Restore(0, 1, []int64{100, 200, 999})
	s.Restore(0, 9, []int64{100})
	s.RestoreSlotState(0, 9, netdata.ClientGoal, 4)

	if checked, _ := s.Checked(0, 1); !slices.Equal(checked, []int64{100}) {
		t.Fatalf("checked = %v", checked)
	}
	if p := s.HintPoints(0, 1); p != 1 {
		t.Fatalf("foreign ids earned points: %d", p)
	}
	if got := s.state.Checked(0, 9); len(got) != 0 {
		t.Fatalf("unknown slot restored: %v", got)
	}
	if _, ok := s.statuses[worldKey(0, 9)]; ok {
		t.Fatalf("unknown slot state restored")
	}
}

func TestAddHintKeepsPriorityPerBook(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	// slot 1 already prioritized the hint; slot 2, the finder, never saw it
	h := hint.Hint{Receiving: 1, Finding: 2, Location: 200, Item: 7, ItemFlags: netdata.ItemUseful, Status: netdata.HintPriority}
	s.RestoreHint(0, 1, h)

	if _, err := s.HintItem(0, 1, 7); err != nil {
		t.Fatalf("HintItem: %v", err)
	}
	if got := s.Hints(0, 1); len(got) != 1 || got[0].Status != netdata.HintPriority {
		t.Fatalf("requester book = %+v", got)
	}
	if got := s.Hints(0, 2); len(got) != 1 || got[0].Status != netdata.HintUnspecified {
		t.Fatalf("finder book inherited another book's status: %+v", got)
	}
}

func worldKey(team, slot int) world.TeamSlot {
	return world.TeamSlot{Team: team, Slot: slot}
}
