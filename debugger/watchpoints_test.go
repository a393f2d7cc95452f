package debugger

import (
	"testing"

	"github.com/aluvm/aluvm/service"
	"github.com/aluvm/aluvm/vm"
)

func TestWatchpointManagerAddAndCheck(t *testing.T) {
	wm := NewWatchpointManager()
	wp, err := wm.AddWatchpoint("a0[0]")
	if err != nil {
		t.Fatalf("AddWatchpoint: %v", err)
	}

	rf := vm.NewRegisterFile()
	snap := service.SnapshotRegisters(rf)
	if _, changed := wm.Check(snap); changed {
		t.Fatal("expected no change on first check against an all-unset baseline after construction")
	}

	rf.Set(vm.RegRef{Family: vm.FamilyA, Bank: 0, Index: 0}, vm.Some(vm.FromSlice([]byte{1}, vm.IntLayout(false, 1))))
	snap = service.SnapshotRegisters(rf)
	got, changed := wm.Check(snap)
	if !changed || got.ID != wp.ID {
		t.Fatalf("expected watchpoint %d to fire, got %+v changed=%v", wp.ID, got, changed)
	}
	if got.HitCount != 1 {
		t.Fatalf("expected hit count 1, got %d", got.HitCount)
	}
}

func TestWatchpointManagerDeleteAndEnable(t *testing.T) {
	wm := NewWatchpointManager()
	wp, _ := wm.AddWatchpoint("r0[0]")

	if err := wm.SetEnabled(wp.ID, false); err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}
	if err := wm.DeleteWatchpoint(wp.ID); err != nil {
		t.Fatalf("DeleteWatchpoint: %v", err)
	}
	if err := wm.DeleteWatchpoint(wp.ID); err == nil {
		t.Fatal("expected error deleting an already-deleted watchpoint")
	}
}

func TestWatchpointManagerRejectsBadExpression(t *testing.T) {
	wm := NewWatchpointManager()
	if _, err := wm.AddWatchpoint("not-a-ref"); err == nil {
		t.Fatal("expected error for malformed watch expression")
	}
}
