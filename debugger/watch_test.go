package debugger

import (
	"testing"

	"github.com/aluvm/aluvm/service"
	"github.com/aluvm/aluvm/vm"
)

func TestParseRegRefVariants(t *testing.T) {
	ref, err := ParseRegRef("a3[7]")
	if err != nil {
		t.Fatalf("ParseRegRef: %v", err)
	}
	if ref != (vm.RegRef{Family: vm.FamilyA, Bank: 3, Index: 7}) {
		t.Fatalf("unexpected ref: %+v", ref)
	}

	ref, err = ParseRegRef("s[200]")
	if err != nil {
		t.Fatalf("ParseRegRef: %v", err)
	}
	if ref != (vm.RegRef{Family: vm.FamilyS, Index: 200}) {
		t.Fatalf("unexpected s ref: %+v", ref)
	}

	if _, err := ParseRegRef("bogus"); err == nil {
		t.Fatal("expected error for malformed ref")
	}
}

func TestEvaluateWatchComparesRegisterValue(t *testing.T) {
	rf := vm.NewRegisterFile()
	rf.Set(vm.RegRef{Family: vm.FamilyA, Bank: 0, Index: 0}, vm.Some(vm.FromSlice([]byte{0x2a}, vm.IntLayout(false, 1))))

	ok, err := EvaluateWatch(rf, "a0[0] == 0x2a")
	if err != nil {
		t.Fatalf("EvaluateWatch: %v", err)
	}
	if !ok {
		t.Fatal("expected a0[0] == 0x2a to hold")
	}

	ok, err = EvaluateWatch(rf, "a0[0] != 0x2a")
	if err != nil {
		t.Fatalf("EvaluateWatch: %v", err)
	}
	if ok {
		t.Fatal("expected a0[0] != 0x2a to be false")
	}
}

func TestEvaluateWatchScalarsAndUnset(t *testing.T) {
	rf := vm.NewRegisterFile()
	ok, err := EvaluateWatch(rf, "st0")
	if err != nil || !ok {
		t.Fatalf("expected st0 true by default, got %v err=%v", ok, err)
	}

	if _, err := EvaluateWatch(rf, "a1[0]"); err != nil {
		t.Fatalf("bare unset ref should not error: %v", err)
	}
	ok, err = EvaluateWatch(rf, "a1[0]")
	if err != nil {
		t.Fatalf("EvaluateWatch: %v", err)
	}
	if ok {
		t.Fatal("expected unset slot to report false")
	}
}

func TestEvaluateWatchRejectsUnsetSlotInComparison(t *testing.T) {
	snap := service.RegisterState{S: map[byte]string{}}
	if _, err := evaluateWatch(snap, "a2[0] == 0x01"); err == nil {
		t.Fatal("expected error comparing an unset slot")
	}
}
