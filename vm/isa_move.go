package vm

// Move family (spec §4.4.3). mov/dup/swp operate within a bank; cpy/cnv
// cross banks of the same family; spy swaps-and-reshapes between A and R;
// cnv_af/cnv_fa cross the integer/float boundary. Every variant sets st0
// to the reshape-is-lossless result.

// Mov moves a value from src to dst within the same bank (same layout).
type Mov struct {
	Src, Dst RegRef
}

func (i Mov) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	v := rf.Get(i.Src)
	_, lossless := rf.SetReshape(i.Dst, v)
	rf.St0 = lossless
	return Next()
}
func (Mov) Complexity() uint64 { return ComplexityDefault }

// Dup copies src to dst, leaving src untouched.
type Dup struct {
	Src, Dst RegRef
}

func (i Dup) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	v := rf.Get(i.Src)
	_, lossless := rf.SetReshape(i.Dst, v)
	rf.St0 = lossless
	return Next()
}
func (Dup) Complexity() uint64 { return ComplexityDefault }

// Swp exchanges the contents of two slots in the same bank.
type Swp struct {
	A, B RegRef
}

func (i Swp) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	va, vb := rf.Get(i.A), rf.Get(i.B)
	rf.Set(i.A, vb)
	rf.Set(i.B, va)
	rf.St0 = true
	return Next()
}
func (Swp) Complexity() uint64 { return ComplexityDefault }

// Cpy copies between banks of the same family, preserving sign semantics
// (spec §4.4.3 cpy).
type Cpy struct {
	Src, Dst RegRef
}

func (i Cpy) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	v := rf.Get(i.Src)
	_, lossless := rf.SetReshape(i.Dst, v)
	rf.St0 = lossless
	return Next()
}
func (Cpy) Complexity() uint64 { return ComplexityDefault }

// Cnv converts across sign within the A family.
type Cnv struct {
	Src, Dst RegRef
	Signed   bool
}

func (i Cnv) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	v, ok := rf.Get(i.Src).Unwrap()
	if !ok {
		rf.Clear(i.Dst)
		rf.St0 = false
		return Next()
	}
	target := bankLayout(i.Dst.Family, i.Dst.Bank)
	target.Signed = i.Signed
	out := v
	lossless := out.Reshape(target)
	rf.Set(i.Dst, Some(out))
	rf.St0 = lossless
	return Next()
}
func (Cnv) Complexity() uint64 { return ComplexityDefault }

// Spy performs a simultaneous swap-and-reshape between an A slot and an R
// slot (spec §4.4.3 spy).
type Spy struct {
	A, R RegRef
}

func (i Spy) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	va, vb := rf.Get(i.A), rf.Get(i.R)
	_, l1 := rf.SetReshape(i.A, vb)
	_, l2 := rf.SetReshape(i.R, va)
	rf.St0 = l1 && l2
	return Next()
}
func (Spy) Complexity() uint64 { return ComplexityDefault }

// CnvAF converts an integer A value to a float F value.
type CnvAF struct {
	Src, Dst RegRef
}

func (i CnvAF) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	v, ok := rf.Get(i.Src).Unwrap()
	if !ok {
		rf.Clear(i.Dst)
		rf.St0 = false
		return Next()
	}
	out := v
	lossless := out.Reshape(bankLayout(FamilyF, i.Dst.Bank))
	rf.Set(i.Dst, Some(out))
	rf.St0 = lossless
	return Next()
}
func (CnvAF) Complexity() uint64 { return ComplexityFloatArith }

// CnvFA converts a float F value to an integer A value.
type CnvFA struct {
	Src, Dst RegRef
}

func (i CnvFA) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	v, ok := rf.Get(i.Src).Unwrap()
	if !ok {
		rf.Clear(i.Dst)
		rf.St0 = false
		return Next()
	}
	out := v
	lossless := out.Reshape(bankLayout(FamilyA, i.Dst.Bank))
	rf.Set(i.Dst, Some(out))
	rf.St0 = lossless
	return Next()
}
func (CnvFA) Complexity() uint64 { return ComplexityFloatArith }
