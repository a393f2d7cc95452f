package vm

// Put/clear family (spec §4.4.2). One opcode shape per family (A/F/R); the
// literal itself is carried as a MaybeValue already resolved by decode from
// the (deduplicated) data segment.

// Clr sets a slot to unset.
type Clr struct {
	Ref RegRef
}

func (i Clr) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	rf.Clear(i.Ref)
	return Next()
}
func (Clr) Complexity() uint64 { return ComplexityDefault }

// Put sets a slot unconditionally.
type Put struct {
	Ref     RegRef
	Literal Value
}

func (i Put) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	rf.Set(i.Ref, Some(i.Literal))
	return Next()
}
func (Put) Complexity() uint64 { return ComplexityDefault }

// PutIf sets a slot only when currently unset.
type PutIf struct {
	Ref     RegRef
	Literal Value
}

func (i PutIf) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	rf.SetIfUnset(i.Ref, Some(i.Literal))
	return Next()
}
func (PutIf) Complexity() uint64 { return ComplexityDefault }
