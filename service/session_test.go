package service

import (
	"testing"

	"github.com/aluvm/aluvm/config"
	"github.com/aluvm/aluvm/vm"
)

func buildPutSuccLibrary(t *testing.T) *vm.Library {
	t.Helper()
	scratch := vm.NewLibrary("ALU", nil, nil, nil)
	c := vm.NewCursor(scratch)

	c.WriteByte(byte(vm.OpPutA))
	c.WriteRegRef(vm.RegRef{Family: vm.FamilyA, Bank: 0, Index: 0})
	if _, err := c.WriteFixed([]byte{0x2A}); err != nil {
		t.Fatalf("WriteFixed: %v", err)
	}

	c.WriteByte(byte(vm.OpSucc))

	return vm.NewLibrary(scratch.ISAE, scratch.Code, scratch.Data, scratch.Deps)
}

func TestSessionStepRunsToCompletion(t *testing.T) {
	lib := buildPutSuccLibrary(t)
	s := NewSession(config.DefaultConfig())
	s.LoadLibrary(lib)
	if err := s.LoadEntry(vm.LibrarySite{Lib: lib.Id()}); err != nil {
		t.Fatalf("LoadEntry: %v", err)
	}

	if err := s.Step(); err != nil {
		t.Fatalf("first Step: %v", err)
	}
	if s.GetExecutionState() != StateRunning {
		t.Fatalf("expected running after put_a, got %s", s.GetExecutionState())
	}

	if err := s.Step(); err != nil {
		t.Fatalf("second Step: %v", err)
	}
	if s.GetExecutionState() != StateHalted {
		t.Fatalf("expected halted after succ, got %s", s.GetExecutionState())
	}

	regs := s.GetRegisterState()
	if !regs.St0 {
		t.Error("expected st0 true after succ")
	}
	if !regs.A[0][0].Set || regs.A[0][0].Hex != "2a" {
		t.Errorf("expected a0[0]=0x2a, got %+v", regs.A[0][0])
	}
}

func TestSessionContinueStopsAtBreakpoint(t *testing.T) {
	lib := buildPutSuccLibrary(t)
	s := NewSession(config.DefaultConfig())
	s.LoadLibrary(lib)
	if err := s.LoadEntry(vm.LibrarySite{Lib: lib.Id()}); err != nil {
		t.Fatalf("LoadEntry: %v", err)
	}

	// The succ opcode sits right after the put_a instruction's operands.
	succOffset := uint16(len(lib.Code) - 1)
	s.AddBreakpoint(vm.LibrarySite{Lib: lib.Id(), Offset: succOffset}, "")

	state, err := s.Continue()
	if err != nil {
		t.Fatalf("Continue: %v", err)
	}
	if state != StateBreakpoint {
		t.Fatalf("expected breakpoint stop, got %s", state)
	}
	site, ok := s.GetCurrentSite()
	if !ok || site.Offset != succOffset {
		t.Fatalf("expected paused at offset %d, got %+v (ok=%v)", succOffset, site, ok)
	}
}

func TestSessionResetRewindsToEntry(t *testing.T) {
	lib := buildPutSuccLibrary(t)
	s := NewSession(config.DefaultConfig())
	s.LoadLibrary(lib)
	entry := vm.LibrarySite{Lib: lib.Id()}
	if err := s.LoadEntry(entry); err != nil {
		t.Fatalf("LoadEntry: %v", err)
	}
	if err := s.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	if err := s.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	site, ok := s.GetCurrentSite()
	if !ok || site != entry {
		t.Fatalf("expected reset to entry %+v, got %+v (ok=%v)", entry, site, ok)
	}
	if len(s.GetHistory()) != 0 {
		t.Error("expected history cleared after reset")
	}
}

func TestSessionStepWithoutEntryFails(t *testing.T) {
	s := NewSession(config.DefaultConfig())
	if err := s.Step(); err != ErrNoEntryPoint {
		t.Fatalf("expected ErrNoEntryPoint, got %v", err)
	}
}

func TestSessionGetDisassembly(t *testing.T) {
	lib := buildPutSuccLibrary(t)
	s := NewSession(config.DefaultConfig())
	s.LoadLibrary(lib)

	lines, err := s.GetDisassembly(lib.Id())
	if err != nil {
		t.Fatalf("GetDisassembly: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 disassembled lines, got %d", len(lines))
	}
	if lines[0].Mnemonic != "put_a" || lines[1].Mnemonic != "succ" {
		t.Errorf("unexpected mnemonics: %+v", lines)
	}
}
