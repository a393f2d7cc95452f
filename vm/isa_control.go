package vm

// Control-flow family (spec §4.4.1).

// Fail sets st0=false and stops.
type Fail struct{}

func (Fail) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	rf.St0 = false
	return Stop()
}
func (Fail) Complexity() uint64 { return ComplexityControlFlow }

// Succ sets st0=true and stops.
type Succ struct{}

func (Succ) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	rf.St0 = true
	return Stop()
}
func (Succ) Complexity() uint64 { return ComplexityControlFlow }

// Jmp jumps unconditionally within the current library.
type Jmp struct {
	Offset uint16
}

func (i Jmp) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	if !rf.Jmp() {
		return Stop()
	}
	return Jump(i.Offset)
}
func (Jmp) Complexity() uint64 { return ComplexityControlFlow }

// Jif jumps only if st0 is true; otherwise advances (spec §4.4.1 jif).
type Jif struct {
	Offset uint16
}

func (i Jif) Execute(rf *RegisterFile, site LibrarySite, ctx Context) Step {
	if !rf.St0 {
		return Next()
	}
	return Jmp{Offset: i.Offset}.Execute(rf, site, ctx)
}
func (Jif) Complexity() uint64 { return ComplexityControlFlow }

// Routine is an intra-library call: pushes a return site, then jumps
// (spec §4.4.1 routine).
type Routine struct {
	Offset     uint16
	ReturnSite LibrarySite
}

func (i Routine) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	if !rf.Call(CallSite{Lib: i.ReturnSite.Lib, Offset: i.ReturnSite.Offset}) {
		return Stop()
	}
	return Jump(i.Offset)
}
func (Routine) Complexity() uint64 { return ComplexityControlFlow }

// Call is a cross-library call: pushes a return site, transfers control
// (spec §4.4.1 call).
type Call struct {
	Target     LibrarySite
	ReturnSite LibrarySite
}

func (i Call) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	if !rf.Call(CallSite{Lib: i.ReturnSite.Lib, Offset: i.ReturnSite.Offset}) {
		return Stop()
	}
	return CallStep(i.Target)
}
func (Call) Complexity() uint64 { return ComplexityControlFlow }

// Exec is a cross-library tail-call: transfers control without pushing a
// return site (spec §4.4.1 exec).
type Exec struct {
	Target LibrarySite
}

func (i Exec) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	if !rf.Jmp() {
		return Stop()
	}
	return CallStep(i.Target)
}
func (Exec) Complexity() uint64 { return ComplexityControlFlow }

// Ret pops and returns the call site, or stops if the stack is empty
// (spec §4.4.1 ret).
type Ret struct{}

func (Ret) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	site, ok := rf.Ret()
	if !ok {
		return Stop()
	}
	return CallStep(LibrarySite{Lib: site.Lib, Offset: site.Offset})
}
func (Ret) Complexity() uint64 { return ComplexityControlFlow }
