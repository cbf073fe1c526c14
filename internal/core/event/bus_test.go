package event

import (
	"testing"

	"github.com/mwhost/server/internal/netdata"
)

func TestEmitVisibleAfterSwap(t *testing.T) {
	b := NewBus()
	var got []ClientStatusChanged
	Subscribe(b, func(e ClientStatusChanged) { got = append(got, e) })

	Emit(b, ClientStatusChanged{Slot: 1, New: netdata.ClientGoal})
	if n := b.DispatchAll(); n != 0 || len(got) != 0 {
		t.Fatalf("event delivered before swap")
	}
	b.SwapBuffers()
	if n := b.DispatchAll(); n != 1 || len(got) != 1 {
		t.Fatalf("delivered %d, handler saw %d", n, len(got))
	}
	if b.DispatchAll() != 0 {
		t.Fatalf("front buffer not drained")
	}
}

func TestDispatchKeepsEmissionOrderAcrossTypes(t *testing.T) {
	b := NewBus()
	var order []string
	Subscribe(b, func(e LocationsChecked) { order = append(order, "checked") })
	Subscribe(b, func(e ClientStatusChanged) { order = append(order, "status") })

	Emit(b, ClientStatusChanged{})
	Emit(b, LocationsChecked{})
	Emit(b, ClientStatusChanged{})
	b.Flush()

	want := []string{"status", "checked", "status"}
	if len(order) != len(want) {
		t.Fatalf("got %v want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v want %v", order, want)
		}
	}
}

func TestFlushDeliversFollowUps(t *testing.T) {
	b := NewBus()
	statuses := 0
	Subscribe(b, func(e LocationsChecked) {
		Emit(b, ClientStatusChanged{Team: e.Team, Slot: e.Slot})
	})
	Subscribe(b, func(ClientStatusChanged) { statuses++ })

	Emit(b, LocationsChecked{Slot: 2})
	if n := b.Flush(); n != 2 {
		t.Fatalf("Flush delivered %d, want 2", n)
	}
	if statuses != 1 || b.Pending() != 0 {
		t.Fatalf("statuses=%d pending=%d", statuses, b.Pending())
	}
}

func TestUnsubscribedEventsAreDropped(t *testing.T) {
	b := NewBus()
	Emit(b, ItemSent{})
	if n := b.Flush(); n != 1 {
		t.Fatalf("Flush = %d", n)
	}
}
