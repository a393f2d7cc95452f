package vm

// Compare family (spec §4.4.4).

// Gt/Lt/Eq operate on A (with sign flag carried by the layout itself via
// the register bank), F (with rounding-equality flag), or R.

type Gt struct {
	A, B RegRef
}

func (i Gt) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	va, vb, ok := rf.GetBoth(i.A, i.B)
	if !ok {
		rf.St0 = false
		return Next()
	}
	rf.St0 = Compare(va, vb) == Greater
	return Next()
}
func (Gt) Complexity() uint64 { return ComplexityDefault }

type Lt struct {
	A, B RegRef
}

func (i Lt) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	va, vb, ok := rf.GetBoth(i.A, i.B)
	if !ok {
		rf.St0 = false
		return Next()
	}
	rf.St0 = Compare(va, vb) == Less
	return Next()
}
func (Lt) Complexity() uint64 { return ComplexityDefault }

// Eq on A/R takes UnsetEqMode selecting whether both-unset compares equal.
// Eq on F with an unset operand is always false (spec §4.4.4).
type Eq struct {
	A, B    RegRef
	UnsetEq UnsetEqMode
	Round   FloatEqMode
}

func (i Eq) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	ma, mb := rf.Get(i.A), rf.Get(i.B)
	va, oka := ma.Unwrap()
	vb, okb := mb.Unwrap()

	isFloat := i.A.Family == FamilyF
	if !oka || !okb {
		if isFloat {
			rf.St0 = false
		} else {
			rf.St0 = (!oka && !okb) && i.UnsetEq == UnsetEqTrue
		}
		return Next()
	}

	if isFloat && i.Round == FloatEqRounding {
		rf.St0 = RoundingCompare(va, vb) == Equal
	} else {
		rf.St0 = Compare(va, vb) == Equal
	}
	return Next()
}
func (Eq) Complexity() uint64 { return ComplexityDefault }

// IfZero sets st0 = (value == 0); unset is never zero.
type IfZero struct {
	Ref RegRef
}

func (i IfZero) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	v, ok := rf.Get(i.Ref).Unwrap()
	rf.St0 = ok && v.IsZero()
	return Next()
}
func (IfZero) Complexity() uint64 { return ComplexityDefault }

// IfNotSet sets st0 = (slot is unset).
type IfNotSet struct {
	Ref RegRef
}

func (i IfNotSet) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	rf.St0 = !rf.Get(i.Ref).IsSet()
	return Next()
}
func (IfNotSet) Complexity() uint64 { return ComplexityDefault }

// StMerge combines st0 into a register's low bit (spec §4.4.4).
type StMerge struct {
	Mode StMergeMode
	Ref  RegRef
}

func (i StMerge) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	v, ok := rf.Get(i.Ref).Unwrap()
	if !ok {
		return Next()
	}
	out := v.ToClean()
	bit := byte(0)
	if rf.St0 {
		bit = 1
	}
	switch i.Mode {
	case StMergeSet:
		out.bytes[0] = out.bytes[0]&^1 | bit
	case StMergeAddSaturating:
		if out.bytes[0]&1 == 1 || bit == 1 {
			out.bytes[0] |= 1
		}
	case StMergeAnd:
		out.bytes[0] = out.bytes[0]&^1 | (out.bytes[0] & bit & 1)
	case StMergeOr:
		out.bytes[0] |= bit
	}
	rf.Set(i.Ref, Some(out))
	return Next()
}
func (StMerge) Complexity() uint64 { return ComplexityDefault }

// StInv inverts st0.
type StInv struct{}

func (StInv) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	rf.St0 = !rf.St0
	return Next()
}
func (StInv) Complexity() uint64 { return ComplexityDefault }
