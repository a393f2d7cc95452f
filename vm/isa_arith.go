package vm

// Arithmetic family (spec §4.4.5). Integer variants take IntFlags; float
// variants take a RoundingMode. Every arithmetic op sets st0 to "operation
// produced a value", so a subsequent compare/jif can observe overflow.

type NegA struct{ Ref RegRef }

func (i NegA) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	v, ok := rf.Get(i.Ref).Unwrap()
	if !ok {
		rf.St0 = false
		return Next()
	}
	out, ok := Neg(v)
	if !ok {
		rf.Clear(i.Ref)
	} else {
		rf.Set(i.Ref, Some(out))
	}
	rf.St0 = ok
	return Next()
}
func (NegA) Complexity() uint64 { return ComplexityDefault }

type NegF struct{ Ref RegRef }

func (i NegF) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	v, ok := rf.Get(i.Ref).Unwrap()
	if !ok {
		rf.St0 = false
		return Next()
	}
	out, ok := Neg(v)
	if !ok {
		rf.Clear(i.Ref)
	} else {
		rf.Set(i.Ref, Some(out))
	}
	rf.St0 = ok
	return Next()
}
func (NegF) Complexity() uint64 { return ComplexityFloatArith }

type AbsA struct{ Ref RegRef }

func (i AbsA) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	v, ok := rf.Get(i.Ref).Unwrap()
	if !ok {
		rf.St0 = false
		return Next()
	}
	out, ok := Abs(v)
	if !ok {
		rf.Clear(i.Ref)
	} else {
		rf.Set(i.Ref, Some(out))
	}
	rf.St0 = ok
	return Next()
}
func (AbsA) Complexity() uint64 { return ComplexityDefault }

type AbsF struct{ Ref RegRef }

func (i AbsF) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	v, ok := rf.Get(i.Ref).Unwrap()
	if !ok {
		rf.St0 = false
		return Next()
	}
	out, ok := Abs(v)
	if !ok {
		rf.Clear(i.Ref)
	} else {
		rf.Set(i.Ref, Some(out))
	}
	rf.St0 = ok
	return Next()
}
func (AbsF) Complexity() uint64 { return ComplexityFloatArith }

// intArithOp is the shared body for add/sub/mul/div/rem on A.
func intArithOp(rf *RegisterFile, a, b, dst RegRef, flags IntFlags, op func(x, y Value, f IntFlags) (Value, bool)) Step {
	va, vb, ok := rf.GetBoth(a, b)
	if !ok {
		rf.Clear(dst)
		rf.St0 = false
		return Next()
	}
	out, ok := op(va, vb, flags)
	if !ok {
		rf.Clear(dst)
	} else {
		rf.Set(dst, Some(out))
	}
	rf.St0 = ok
	return Next()
}

type AddA struct {
	A, B, Dst RegRef
	Flags     IntFlags
}

func (i AddA) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	return intArithOp(rf, i.A, i.B, i.Dst, i.Flags, IntAdd)
}
func (AddA) Complexity() uint64 { return ComplexityDefault }

type SubA struct {
	A, B, Dst RegRef
	Flags     IntFlags
}

func (i SubA) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	return intArithOp(rf, i.A, i.B, i.Dst, i.Flags, IntSub)
}
func (SubA) Complexity() uint64 { return ComplexityDefault }

type MulA struct {
	A, B, Dst RegRef
	Flags     IntFlags
}

func (i MulA) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	return intArithOp(rf, i.A, i.B, i.Dst, i.Flags, IntMul)
}
func (MulA) Complexity() uint64 { return ComplexityDefault }

type DivA struct {
	A, B, Dst RegRef
	Flags     IntFlags
}

func (i DivA) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	return intArithOp(rf, i.A, i.B, i.Dst, i.Flags, IntDiv)
}
func (DivA) Complexity() uint64 { return ComplexityDefault }

type RemA struct {
	A, B, Dst RegRef
	Flags     IntFlags
}

func (i RemA) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	return intArithOp(rf, i.A, i.B, i.Dst, i.Flags, IntRem)
}
func (RemA) Complexity() uint64 { return ComplexityDefault }

// floatArithOp is the shared body for add/sub/mul/div on F.
func floatArithOp(rf *RegisterFile, a, b, dst RegRef, rounding RoundingMode, op func(x, y Value, r RoundingMode) (Value, bool)) Step {
	va, vb, ok := rf.GetBoth(a, b)
	if !ok {
		rf.Clear(dst)
		rf.St0 = false
		return Next()
	}
	out, ok := op(va, vb, rounding)
	if !ok {
		rf.Clear(dst)
	} else {
		rf.Set(dst, Some(out))
	}
	rf.St0 = ok
	return Next()
}

type AddF struct {
	A, B, Dst RegRef
	Rounding  RoundingMode
}

func (i AddF) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	return floatArithOp(rf, i.A, i.B, i.Dst, i.Rounding, FloatAdd)
}
func (AddF) Complexity() uint64 { return ComplexityFloatArith }

type SubF struct {
	A, B, Dst RegRef
	Rounding  RoundingMode
}

func (i SubF) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	return floatArithOp(rf, i.A, i.B, i.Dst, i.Rounding, FloatSub)
}
func (SubF) Complexity() uint64 { return ComplexityFloatArith }

type MulF struct {
	A, B, Dst RegRef
	Rounding  RoundingMode
}

func (i MulF) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	return floatArithOp(rf, i.A, i.B, i.Dst, i.Rounding, FloatMul)
}
func (MulF) Complexity() uint64 { return ComplexityFloatArith }

type DivF struct {
	A, B, Dst RegRef
	Rounding  RoundingMode
}

func (i DivF) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	return floatArithOp(rf, i.A, i.B, i.Dst, i.Rounding, FloatDiv)
}
func (DivF) Complexity() uint64 { return ComplexityFloatArith }

// Stp increments a register by a signed 16-bit step (spec §4.4.5 stp).
type Stp struct {
	Ref   RegRef
	Step  int16
	Flags IntFlags
}

func (i Stp) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	v, ok := rf.Get(i.Ref).Unwrap()
	if !ok {
		rf.St0 = false
		return Next()
	}
	out, ok := stpValue(v, i.Step, i.Flags)
	if !ok {
		rf.Clear(i.Ref)
	} else {
		rf.Set(i.Ref, Some(out))
	}
	rf.St0 = ok
	return Next()
}
func (Stp) Complexity() uint64 { return ComplexityDefault }
