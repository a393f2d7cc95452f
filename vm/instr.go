package vm

// StepKind tags the directive an instruction's execution returns (spec
// §4.4.11).
type StepKind byte

const (
	StepStop StepKind = iota
	StepNext
	StepJump
	StepCall
)

// Step is the result of executing one instruction (spec §4.4.11, §4.6).
type Step struct {
	Kind   StepKind
	Offset uint16      // valid when Kind == StepJump
	Site   LibrarySite // valid when Kind == StepCall
}

func Stop() Step                      { return Step{Kind: StepStop} }
func Next() Step                       { return Step{Kind: StepNext} }
func Jump(offset uint16) Step          { return Step{Kind: StepJump, Offset: offset} }
func CallStep(site LibrarySite) Step   { return Step{Kind: StepCall, Site: site} }

// Context is the opaque host-provided value passed to every instruction's
// Execute (spec §6 "Host context"). The core spec does not depend on its
// contents; ISA extensions (e.g. curve opcodes) may type-assert it to a
// concrete type they require. The zero Context (nil) is valid for any
// program that uses no such extension.
type Context interface{}

// Instruction is the tagged union of spec §4.4: every instruction family
// implements Execute and Complexity. Decoding the bit-packed wire layout
// into these concrete types is opcodes.go's decodeInstruction; package
// encoder independently re-reads the same wire format for disassembly.
type Instruction interface {
	// Execute runs the instruction against rf, given the site it was
	// fetched from (library id + offset) and the host context.
	Execute(rf *RegisterFile, site LibrarySite, ctx Context) Step

	// Complexity is this instruction's contribution to ca0 (spec
	// §4.4.11).
	Complexity() uint64
}

// Reserved is a decoded-but-unrecognized opcode (spec §4.4.10): executing
// it is equivalent to fail.
type Reserved struct {
	Opcode byte
}

func (Reserved) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	rf.St0 = false
	return Stop()
}

func (Reserved) Complexity() uint64 { return ComplexityDefault }

// Nop is opcode 0xFF (spec §4.4.10): consumes its complexity budget and
// advances.
type Nop struct{}

func (Nop) Execute(*RegisterFile, LibrarySite, Context) Step { return Next() }
func (Nop) Complexity() uint64                                { return ComplexityDefault }
