package vm

// OneStepResult is the outcome of decoding and executing exactly one
// instruction via StepOne, the granular primitive a debugger steps through
// one line at a time (the teacher's DebuggerService drives its CPU the same
// way, calling Step() once per "step" command and Run()-equivalent looping
// for "continue").
type OneStepResult struct {
	Instr    Instruction
	Site     LibrarySite // where this instruction was decoded from
	NextPos  uint16      // cursor position after this instruction, valid only when Halted is false and Crossed is nil
	Halted   bool        // execution stopped: explicit fail/succ, end of code, decode error, or complexity ceiling crossed
	Crossed  *LibrarySite // set when this instruction transferred control to another site (call/exec/ret); nil otherwise
}

// StepOne decodes and executes a single instruction at pos within library,
// mutating regs in place. It never follows a cross-library reference itself;
// StepCall results are reported via Crossed for the caller to resolve.
func StepOne(library *Library, pos uint16, regs *RegisterFile, ctx Context, complexityCeiling uint64) OneStepResult {
	if int(pos) > len(library.Code) {
		regs.St0 = false
		return OneStepResult{Halted: true}
	}
	cursor := NewCursor(library)
	cursor.Seek(pos)
	libID := library.Id()

	if cursor.AtEnd() {
		regs.St0 = false
		return OneStepResult{Halted: true}
	}

	site := LibrarySite{Lib: libID, Offset: pos}
	instr, err := decodeInstruction(cursor, libID)
	if err != nil {
		regs.St0 = false
		return OneStepResult{Site: site, Halted: true}
	}

	step := instr.Execute(regs, site, ctx)

	if !regs.AddComplexity(instr.Complexity(), complexityCeiling) {
		regs.St0 = false
		return OneStepResult{Instr: instr, Site: site, Halted: true}
	}

	switch step.Kind {
	case StepStop:
		return OneStepResult{Instr: instr, Site: site, Halted: true}
	case StepJump:
		return OneStepResult{Instr: instr, Site: site, NextPos: step.Offset}
	case StepCall:
		return OneStepResult{Instr: instr, Site: site, Crossed: &step.Site}
	default: // StepNext
		return OneStepResult{Instr: instr, Site: site, NextPos: cursor.Pos()}
	}
}

// Execute runs library starting at entrypoint against regs (spec §4.6). It
// returns the site execution crossed into on a call/exec, or nil if
// execution halted. The caller resolves that site's library and re-enters
// here; the loop itself never follows a cross-library reference.
func Execute(library *Library, entrypoint uint16, regs *RegisterFile, ctx Context, complexityCeiling uint64) *LibrarySite {
	pos := entrypoint
	for {
		result := StepOne(library, pos, regs, ctx, complexityCeiling)
		if result.Halted {
			return nil
		}
		if result.Crossed != nil {
			return result.Crossed
		}
		pos = result.NextPos
	}
}

// Run drives Execute across library boundaries using resolve to look up a
// LibrarySite's Library. It is the "outer loop" the spec leaves to
// collaborators (§4.6 "The caller's outer loop is responsible for looking
// up the next library and re-entering with the returned site").
func Run(entry LibrarySite, resolve func(LibID) (*Library, bool), regs *RegisterFile, ctx Context, complexityCeiling uint64) error {
	site := entry
	for {
		lib, ok := resolve(site.Lib)
		if !ok {
			regs.St0 = false
			return ErrLibUnknown
		}
		next := Execute(lib, site.Offset, regs, ctx, complexityCeiling)
		if next == nil {
			return nil
		}
		site = *next
	}
}
