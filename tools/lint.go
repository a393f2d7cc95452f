// Package tools provides static analysis over decoded AluVM libraries:
// disassembly-level linting and dependency-graph inspection. Both operate
// on the text-level output of package encoder rather than on package vm's
// unexported instruction decoder, the same way the teacher's own lint and
// cross-reference tools operate on a parsed assembly program rather than
// reaching into the interpreter.
package tools

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aluvm/aluvm/encoder"
	"github.com/aluvm/aluvm/vm"
)

// LintLevel represents the severity of a lint issue.
type LintLevel int

const (
	LintError   LintLevel = iota // malformed jump targets, bad dependency indices
	LintWarning                  // unreachable code
	LintInfo                     // reserved opcodes
)

func (l LintLevel) String() string {
	switch l {
	case LintError:
		return "error"
	case LintWarning:
		return "warning"
	case LintInfo:
		return "info"
	default:
		return "unknown"
	}
}

// LintIssue is a single finding, anchored to the code-segment offset of the
// instruction it concerns.
type LintIssue struct {
	Level   LintLevel
	Offset  uint16
	Message string
	Code    string // e.g. "BAD_JUMP_TARGET", "UNREACHABLE_CODE"
}

func (i *LintIssue) String() string {
	return fmt.Sprintf("%04x: %s: %s [%s]", i.Offset, i.Level, i.Message, i.Code)
}

// LintOptions controls which passes the Linter runs.
type LintOptions struct {
	CheckJumpTargets bool // jmp/jif/routine offsets land on an instruction boundary
	CheckDeps        bool // call/exec dependency indices resolve within Deps
	CheckReach       bool // code after an unconditional terminator is a jump target
	CheckReserved    bool // unrecognized opcode bytes (encoder's "db 0x.." fallback)
}

// DefaultLintOptions enables every pass.
func DefaultLintOptions() *LintOptions {
	return &LintOptions{
		CheckJumpTargets: true,
		CheckDeps:        true,
		CheckReach:       true,
		CheckReserved:    true,
	}
}

// Linter analyzes a library's disassembly for issues.
type Linter struct {
	options *LintOptions
	issues  []*LintIssue

	lines   []encoder.Line
	offsets map[uint16]bool // valid instruction-start offsets
	targets map[uint16]bool // offsets referenced by some jmp/jif/routine
}

// NewLinter creates a new linter. A nil options uses DefaultLintOptions.
func NewLinter(options *LintOptions) *Linter {
	if options == nil {
		options = DefaultLintOptions()
	}
	return &Linter{options: options}
}

// Lint disassembles lib and runs the configured analysis passes over it.
func (l *Linter) Lint(lib *vm.Library) ([]*LintIssue, error) {
	lines, err := encoder.Disassemble(lib)
	if err != nil {
		return nil, fmt.Errorf("lint: disassemble: %w", err)
	}

	l.issues = nil
	l.lines = lines
	l.offsets = make(map[uint16]bool, len(lines))
	l.targets = make(map[uint16]bool)
	for _, ln := range lines {
		l.offsets[ln.Offset] = true
	}

	l.collectTargets()

	if l.options.CheckJumpTargets {
		l.checkJumpTargets()
	}
	if l.options.CheckDeps {
		l.checkDeps(lib)
	}
	if l.options.CheckReach {
		l.checkUnreachableCode()
	}
	if l.options.CheckReserved {
		l.checkReservedOpcodes()
	}

	sort.Slice(l.issues, func(i, j int) bool { return l.issues[i].Offset < l.issues[j].Offset })
	return l.issues, nil
}

// collectTargets records every offset addressed by a jmp, jif, or routine
// instruction, the AluVM equivalent of the teacher's defined-label set: a
// jump target makes the code at that offset reachable regardless of what
// precedes it.
func (l *Linter) collectTargets() {
	for _, ln := range l.lines {
		switch ln.Mnemonic {
		case "jmp", "jif", "routine":
			if off, ok := parseHexOperand(ln.Operands); ok {
				l.targets[off] = true
			}
		}
	}
}

// checkJumpTargets flags jmp/jif/routine instructions whose operand does not
// land on an actual instruction boundary in this library's code segment.
func (l *Linter) checkJumpTargets() {
	for _, ln := range l.lines {
		switch ln.Mnemonic {
		case "jmp", "jif", "routine":
			off, ok := parseHexOperand(ln.Operands)
			if !ok || !l.offsets[off] {
				l.issues = append(l.issues, &LintIssue{
					Level:   LintError,
					Offset:  ln.Offset,
					Message: fmt.Sprintf("%s targets offset 0x%04x, which is not an instruction boundary", ln.Mnemonic, off),
					Code:    "BAD_JUMP_TARGET",
				})
			}
		}
	}
}

// checkDeps flags call/exec instructions whose dependency index falls
// outside lib.Deps.
func (l *Linter) checkDeps(lib *vm.Library) {
	for _, ln := range l.lines {
		if ln.Mnemonic != "call" && ln.Mnemonic != "exec" {
			continue
		}
		idx, ok := parseDepIndex(ln.Operands)
		if !ok {
			continue
		}
		if _, exists := lib.DepByIndex(idx); !exists {
			l.issues = append(l.issues, &LintIssue{
				Level:   LintError,
				Offset:  ln.Offset,
				Message: fmt.Sprintf("%s references dep[%d], library declares %d dependencies", ln.Mnemonic, idx, len(lib.Deps)),
				Code:    "BAD_DEP_INDEX",
			})
		}
	}
}

// checkUnreachableCode mirrors the teacher's local unreachable-code check:
// the instruction immediately after an unconditional terminator is flagged
// unless some jmp/jif/routine elsewhere in the library targets it.
func (l *Linter) checkUnreachableCode() {
	for i, ln := range l.lines {
		if !isTerminator(ln.Mnemonic) {
			continue
		}
		if i+1 >= len(l.lines) {
			continue
		}
		next := l.lines[i+1]
		if l.targets[next.Offset] {
			continue
		}
		l.issues = append(l.issues, &LintIssue{
			Level:   LintWarning,
			Offset:  next.Offset,
			Message: "unreachable code: not a jump target and preceded by a non-returning instruction",
			Code:    "UNREACHABLE_CODE",
		})
	}
}

// checkReservedOpcodes flags bytes the encoder could not map to a mnemonic.
func (l *Linter) checkReservedOpcodes() {
	for _, ln := range l.lines {
		if strings.HasPrefix(ln.Mnemonic, "db ") {
			l.issues = append(l.issues, &LintIssue{
				Level:   LintInfo,
				Offset:  ln.Offset,
				Message: fmt.Sprintf("reserved or unrecognized opcode byte (%s)", ln.Mnemonic),
				Code:    "RESERVED_OPCODE",
			})
		}
	}
}

// isTerminator reports whether mnemonic never falls through to the next
// instruction: fail/succ/ret end execution or return, jmp and exec transfer
// control unconditionally elsewhere. jif is conditional and so is not a
// terminator; call and routine push a return site and fall through to it.
func isTerminator(mnemonic string) bool {
	switch mnemonic {
	case "fail", "succ", "ret", "jmp", "exec":
		return true
	default:
		return false
	}
}

// parseHexOperand parses an encoder-rendered "0x%04x" operand.
func parseHexOperand(operands string) (uint16, bool) {
	operands = strings.TrimSpace(operands)
	if !strings.HasPrefix(operands, "0x") {
		return 0, false
	}
	v, err := strconv.ParseUint(operands[2:], 16, 16)
	if err != nil {
		return 0, false
	}
	return uint16(v), true
}

// parseDepIndex parses an encoder-rendered "dep[%d] 0x%04x" operand pair.
func parseDepIndex(operands string) (byte, bool) {
	fields := strings.Fields(operands)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "dep[") {
		return 0, false
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(fields[0], "dep["), "]")
	v, err := strconv.ParseUint(inner, 10, 8)
	if err != nil {
		return 0, false
	}
	return byte(v), true
}
