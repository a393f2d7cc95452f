package tools

import (
	"testing"

	"github.com/aluvm/aluvm/vm"
)

// buildLib assembles a minimal library from a sequence of writer funcs, each
// emitting one instruction's bytes onto the cursor.
func buildLib(t *testing.T, deps []vm.LibID, writers ...func(c *vm.Cursor)) *vm.Library {
	t.Helper()
	scratch := vm.NewLibrary("ALU", nil, nil, deps)
	c := vm.NewCursor(scratch)
	for _, w := range writers {
		w(c)
	}
	return vm.NewLibrary(scratch.ISAE, scratch.Code, scratch.Data, scratch.Deps)
}

func writeOp(op vm.Opcode) func(c *vm.Cursor) {
	return func(c *vm.Cursor) { c.WriteByte(byte(op)) }
}

func writeJmp(op vm.Opcode, target uint16) func(c *vm.Cursor) {
	return func(c *vm.Cursor) {
		c.WriteByte(byte(op))
		c.WriteWord(target)
	}
}

func TestLint_BadJumpTarget(t *testing.T) {
	// jmp 0x00ff lands mid-stream: only offsets 0x00 and 0x03 are valid.
	lib := buildLib(t, nil,
		writeJmp(vm.OpJmp, 0x00ff),
		writeOp(vm.OpSucc),
	)

	linter := NewLinter(DefaultLintOptions())
	issues, err := linter.Lint(lib)
	if err != nil {
		t.Fatalf("Lint: %v", err)
	}

	found := false
	for _, issue := range issues {
		if issue.Code == "BAD_JUMP_TARGET" {
			found = true
			if issue.Level != LintError {
				t.Errorf("expected error level, got %v", issue.Level)
			}
		}
	}
	if !found {
		t.Error("expected BAD_JUMP_TARGET issue")
	}
}

func TestLint_ValidJumpTarget(t *testing.T) {
	// jmp 0x03 targets the succ instruction that follows the jmp itself.
	lib := buildLib(t, nil,
		writeJmp(vm.OpJmp, 0x03),
		writeOp(vm.OpSucc),
	)

	linter := NewLinter(DefaultLintOptions())
	issues, err := linter.Lint(lib)
	if err != nil {
		t.Fatalf("Lint: %v", err)
	}
	for _, issue := range issues {
		if issue.Code == "BAD_JUMP_TARGET" {
			t.Errorf("unexpected BAD_JUMP_TARGET issue: %v", issue)
		}
	}
}

func TestLint_UnreachableCode(t *testing.T) {
	// fail ends execution; succ right after it with no jump targeting it is
	// dead code.
	lib := buildLib(t, nil,
		writeOp(vm.OpFail),
		writeOp(vm.OpSucc),
	)

	linter := NewLinter(DefaultLintOptions())
	issues, err := linter.Lint(lib)
	if err != nil {
		t.Fatalf("Lint: %v", err)
	}

	found := false
	for _, issue := range issues {
		if issue.Code == "UNREACHABLE_CODE" {
			found = true
			if issue.Offset != 1 {
				t.Errorf("expected unreachable offset 1, got %d", issue.Offset)
			}
		}
	}
	if !found {
		t.Error("expected UNREACHABLE_CODE issue")
	}
}

func TestLint_ReachableViaJumpTarget(t *testing.T) {
	// jif 0x04 skips over the fail to the succ at offset 4; the succ is a
	// jump target so it must not be flagged even though it follows fail.
	lib := buildLib(t, nil,
		writeJmp(vm.OpJif, 0x04),
		writeOp(vm.OpFail),
		writeOp(vm.OpSucc),
	)

	linter := NewLinter(DefaultLintOptions())
	issues, err := linter.Lint(lib)
	if err != nil {
		t.Fatalf("Lint: %v", err)
	}
	for _, issue := range issues {
		if issue.Code == "UNREACHABLE_CODE" {
			t.Errorf("unexpected UNREACHABLE_CODE issue: %v", issue)
		}
	}
}

func TestLint_BadDepIndex(t *testing.T) {
	dep := vm.LibID{0x01}
	// A raw call byte sequence referencing dep index 3, out of range of the
	// single declared dependency at index 0. Built directly rather than via
	// Cursor.WriteRef, which refuses to emit a reference absent from Deps -
	// exactly the malformed case this check exists to catch once such a
	// library is decoded from the wire.
	lib := buildLib(t, []vm.LibID{dep},
		func(c *vm.Cursor) {
			c.WriteByte(byte(vm.OpCall))
			c.WriteByte(3)
			c.WriteWord(0)
		},
	)

	linter := NewLinter(DefaultLintOptions())
	issues, err := linter.Lint(lib)
	if err != nil {
		t.Fatalf("Lint: %v", err)
	}

	found := false
	for _, issue := range issues {
		if issue.Code == "BAD_DEP_INDEX" {
			found = true
		}
	}
	if !found {
		t.Error("expected BAD_DEP_INDEX issue")
	}
}

func TestLint_ReservedOpcode(t *testing.T) {
	lib := buildLib(t, nil,
		func(c *vm.Cursor) { c.WriteByte(0xfe) },
	)

	linter := NewLinter(DefaultLintOptions())
	issues, err := linter.Lint(lib)
	if err != nil {
		t.Fatalf("Lint: %v", err)
	}

	found := false
	for _, issue := range issues {
		if issue.Code == "RESERVED_OPCODE" {
			found = true
			if issue.Level != LintInfo {
				t.Errorf("expected info level, got %v", issue.Level)
			}
		}
	}
	if !found {
		t.Error("expected RESERVED_OPCODE issue")
	}
}
