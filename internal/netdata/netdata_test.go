package netdata

import "testing"

func TestParsePermission(t *testing.T) {
	tests := []struct {
		text string
		want Permission
	}{
		{"disabled", PermissionDisabled},
		{"enabled", PermissionEnabled},
		{"goal", PermissionGoal},
		{"auto", PermissionAuto},
		{"auto-enabled", PermissionAutoEnabled},
		{"auto_enabled", PermissionAutoEnabled},
		{"goal-enabled", PermissionGoal | PermissionEnabled},
		{"nonsense", PermissionDisabled},
		{"", PermissionDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := ParsePermission(tt.text); got != tt.want {
				t.Fatalf("ParsePermission(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestPermissionPredicates(t *testing.T) {
	if PermissionDisabled.Manual() || PermissionDisabled.AfterGoal() || PermissionDisabled.Automatic() {
		t.Fatalf("disabled must grant nothing")
	}
	if PermissionGoal.Manual() || !PermissionGoal.AfterGoal() || PermissionGoal.Automatic() {
		t.Fatalf("goal: manual only after goal")
	}
	if PermissionAuto.Manual() || !PermissionAuto.Automatic() {
		t.Fatalf("auto: automatic, not manual")
	}
	if !PermissionAutoEnabled.Manual() || !PermissionAutoEnabled.Automatic() {
		t.Fatalf("auto-enabled: both")
	}
}

func TestSlotTypeAlwaysGoal(t *testing.T) {
	if SlotPlayer.AlwaysGoal() {
		t.Fatalf("player slots must play to goal")
	}
	if !SlotSpectator.AlwaysGoal() || !SlotGroup.AlwaysGoal() {
		t.Fatalf("spectator and group slots are always at goal")
	}
}

func TestHintStatusTables(t *testing.T) {
	tests := []struct {
		status HintStatus
		label  string
		color  string
	}{
		{HintUnspecified, "(unspecified)", "white"},
		{HintNoPriority, "(no priority)", "lightgray"},
		{HintAvoid, "(avoid)", "salmon"},
		{HintPriority, "(priority)", "gold"},
		{HintFound, "(found)", "green"},
		{HintStatus(15), "(unknown)", "red"},
	}
	for _, tt := range tests {
		if got := tt.status.Label(); got != tt.label {
			t.Fatalf("%v label: got %q want %q", tt.status, got, tt.label)
		}
		if got := tt.status.Color(); got != tt.color {
			t.Fatalf("%v color: got %q want %q", tt.status, got, tt.color)
		}
	}
}

func TestHintStatusOrdering(t *testing.T) {
	order := []HintStatus{HintUnspecified, HintNoPriority, HintAvoid, HintPriority, HintFound}
	for i := 1; i < len(order); i++ {
		if order[i-1] >= order[i] {
			t.Fatalf("status scale not ascending at %d", i)
		}
	}
}

func TestParseHintStatus(t *testing.T) {
	for _, text := range []string{"no priority", "No_Priority", "nopriority"} {
		if s, ok := ParseHintStatus(text); !ok || s != HintNoPriority {
			t.Fatalf("ParseHintStatus(%q) = %v, %v", text, s, ok)
		}
	}
	if _, ok := ParseHintStatus("urgent"); ok {
		t.Fatalf("unknown status accepted")
	}
}

func TestRecordEquality(t *testing.T) {
	a := NetworkPlayer{Team: 0, Slot: 1, Alias: "a", Name: "A", Avatar: []byte{1, 2}}
	b := NetworkPlayer{Team: 0, Slot: 1, Alias: "a", Name: "A", Avatar: []byte{1, 2}}
	if !a.Equal(b) {
		t.Fatalf("equal players compared unequal")
	}
	b.Avatar = []byte{1, 3}
	if a.Equal(b) {
		t.Fatalf("avatar difference ignored")
	}

	s1 := NetworkSlot{Name: "g", Game: "Archipelago", Type: SlotGroup, GroupMembers: []int{1, 2}}
	s2 := NetworkSlot{Name: "g", Game: "Archipelago", Type: SlotGroup, GroupMembers: []int{1, 2}}
	if !s1.Equal(s2) {
		t.Fatalf("equal slots compared unequal")
	}
	if !s1.HasMember(2) || s1.HasMember(3) {
		t.Fatalf("HasMember wrong")
	}
	if !(NetworkSlot{Name: "x"}).Equal(NetworkSlot{Name: "x", GroupMembers: []int{}}) {
		t.Fatalf("nil and empty member lists must compare equal")
	}
}
