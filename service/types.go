package service

import (
	"fmt"

	"github.com/aluvm/aluvm/vm"
)

// SlotValue is a display-friendly rendering of one register slot: either
// unset, or the hex encoding of its significant bytes in the bank's layout
// (spec §3's unset is a distinguishable state, never collapsed to a zero
// value for display purposes either).
type SlotValue struct {
	Set bool   `json:"set"`
	Hex string `json:"hex"`
}

func slotValue(m vm.MaybeValue) SlotValue {
	v, ok := m.Unwrap()
	if !ok {
		return SlotValue{}
	}
	return SlotValue{Set: true, Hex: fmt.Sprintf("%x", v.Significant())}
}

// RegisterState is a point-in-time snapshot of a RegisterFile, the AluVM
// analogue of the teacher's fixed 16-register ARM snapshot: three typed
// banks of 32 slots each instead of one flat array, plus the byte-string
// bank and the status/counter/call-stack scalars.
type RegisterState struct {
	A [8][vm.RegSlotsPerBank]SlotValue `json:"a"`
	F [8][vm.RegSlotsPerBank]SlotValue `json:"f"`
	R [8][vm.RegSlotsPerBank]SlotValue `json:"r"`
	S map[byte]string                 `json:"s"` // index -> hex contents, only slots currently set

	St0       bool   `json:"st0"`
	Cy0       uint16 `json:"cy0"`
	Ca0       uint64 `json:"ca0"`
	CallDepth int    `json:"call_depth"`
}

// SnapshotRegisters copies rf into a RegisterState. The copy is independent
// of rf: later writes to rf never retroactively change a snapshot already
// taken, matching the teacher's GetRegisterState contract.
func SnapshotRegisters(rf *vm.RegisterFile) RegisterState {
	snap := RegisterState{
		St0:       rf.St0,
		Cy0:       rf.Cy0,
		Ca0:       rf.Ca0,
		CallDepth: rf.Cp0(),
		S:         make(map[byte]string),
	}
	for bank := 0; bank < 8; bank++ {
		for idx := 0; idx < vm.RegSlotsPerBank; idx++ {
			snap.A[bank][idx] = slotValue(rf.A[bank][idx])
			snap.F[bank][idx] = slotValue(rf.F[bank][idx])
			snap.R[bank][idx] = slotValue(rf.R[bank][idx])
		}
	}
	for idx := 0; idx < vm.SSlotCount; idx++ {
		if s, ok := rf.GetS(byte(idx)); ok {
			snap.S[byte(idx)] = fmt.Sprintf("%x", s.Bytes())
		}
	}
	return snap
}

// BreakpointInfo represents a breakpoint for UI display. Addresses in
// AluVM are (library, offset) pairs rather than a single flat address
// space, so a breakpoint pins a LibrarySite instead of a uint32.
type BreakpointInfo struct {
	ID        int            `json:"id"`
	Site      vm.LibrarySite `json:"site"`
	Enabled   bool           `json:"enabled"`
	Condition string         `json:"condition"` // watch-expression evaluated against the live RegisterFile
}

// ExecutionState represents the current state of a debugging session.
type ExecutionState string

const (
	StateRunning    ExecutionState = "running"
	StateHalted     ExecutionState = "halted"
	StateBreakpoint ExecutionState = "breakpoint"
	StateError      ExecutionState = "error"
)

// DisassemblyLine represents a single disassembled instruction, carrying
// the library it belongs to since a session may hold several loaded
// libraries simultaneously (call/exec cross library boundaries).
type DisassemblyLine struct {
	Lib      vm.LibID `json:"lib"`
	Offset   uint16   `json:"offset"`
	Mnemonic string   `json:"mnemonic"`
	Operands string   `json:"operands"`
}

// CallStackEntry represents a single entry of the live call stack (cs0),
// the AluVM analogue of the teacher's flat-memory StackEntry.
type CallStackEntry struct {
	Lib    vm.LibID `json:"lib"`
	Offset uint16   `json:"offset"`
}

// HistoryEntry records one executed step, the session's trace trail as
// returned by Session.GetHistory.
type HistoryEntry struct {
	Site vm.LibrarySite `json:"site"`
	Ca0  uint64         `json:"ca0"` // cumulative complexity immediately after this step
}
