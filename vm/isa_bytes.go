package vm

// Bytes family (spec §4.4.7): operations over the 256 S-register slots.

type PutS struct {
	Idx  byte
	Data []byte
}

func (i PutS) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	rf.SetS(i.Idx, NewByteString(i.Data))
	return Next()
}
func (PutS) Complexity() uint64 { return ComplexityDefault }

type MovS struct{ Src, Dst byte }

func (i MovS) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	s, ok := rf.GetS(i.Src)
	if !ok {
		rf.ClearS(i.Dst)
		rf.St0 = false
		return Next()
	}
	rf.SetS(i.Dst, s)
	rf.St0 = true
	return Next()
}
func (MovS) Complexity() uint64 { return ComplexityDefault }

type SwpS struct{ A, B byte }

func (i SwpS) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	a, b := rf.S[i.A], rf.S[i.B]
	rf.S[i.A], rf.S[i.B] = b, a
	rf.St0 = true
	return Next()
}
func (SwpS) Complexity() uint64 { return ComplexityDefault }

// FillS fills bytes [from,to) of idx with value, failing or extending the
// string on out-of-range per extend flag (spec §4.4.7 fill).
type FillS struct {
	Idx        byte
	From, To   int
	Value      byte
	ExtendFlag bool
}

func (i FillS) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	s, ok := rf.GetS(i.Idx)
	if !ok {
		rf.St0 = false
		return Next()
	}
	buf := append([]byte(nil), s.Bytes()...)
	if i.To > len(buf) {
		if !i.ExtendFlag {
			rf.St0 = false
			return Next()
		}
		grown := make([]byte, i.To)
		copy(grown, buf)
		buf = grown
	}
	for j := i.From; j < i.To && j >= 0; j++ {
		buf[j] = i.Value
	}
	rf.SetS(i.Idx, NewByteString(buf))
	rf.St0 = true
	return Next()
}
func (FillS) Complexity() uint64 { return ComplexityDefault }

// LenS writes the length of an S-register into an A/R destination.
type LenS struct {
	Src byte
	Dst RegRef
}

func (i LenS) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	s, ok := rf.GetS(i.Src)
	if !ok {
		rf.Clear(i.Dst)
		rf.St0 = false
		return Next()
	}
	layout := bankLayout(i.Dst.Family, i.Dst.Bank)
	v := FromSlice(uint16LE(uint16(s.Len())), layout)
	rf.Set(i.Dst, Some(v))
	rf.St0 = true
	return Next()
}
func (LenS) Complexity() uint64 { return ComplexityDefault }

func uint16LE(v uint16) []byte { return []byte{byte(v), byte(v >> 8)} }

// CntS counts occurrences of a byte (read from byteReg) within src, writing
// the count into dst (spec §4.4.7 cnt).
type CntS struct {
	Src     byte
	ByteReg RegRef
	Dst     RegRef
}

func (i CntS) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	s, ok := rf.GetS(i.Src)
	bv, bok := rf.Get(i.ByteReg).Unwrap()
	if !ok || !bok {
		rf.Clear(i.Dst)
		rf.St0 = false
		return Next()
	}
	target := bv.bytes[0]
	n := 0
	for _, b := range s.Bytes() {
		if b == target {
			n++
		}
	}
	layout := bankLayout(i.Dst.Family, i.Dst.Bank)
	rf.Set(i.Dst, Some(FromSlice(uint16LE(uint16(n)), layout)))
	rf.St0 = true
	return Next()
}
func (CntS) Complexity() uint64 { return ComplexityDefault }

// EqS compares two S-registers for byte equality.
type EqS struct{ A, B byte }

func (i EqS) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	sa, oka := rf.GetS(i.A)
	sb, okb := rf.GetS(i.B)
	if !oka || !okb {
		rf.St0 = oka == okb
		return Next()
	}
	rf.St0 = equalBytes(sa.Bytes(), sb.Bytes())
	return Next()
}
func (EqS) Complexity() uint64 { return ComplexityDefault }

// ConS finds the (n+1)th common substring of a and b, writing its offset
// and length into A16 registers (spec §4.4.7 con).
type ConS struct {
	A, B       byte
	N          int
	DstOff     RegRef
	DstLen     RegRef
}

func (i ConS) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	sa, oka := rf.GetS(i.A)
	sb, okb := rf.GetS(i.B)
	if !oka || !okb {
		rf.St0 = false
		return Next()
	}
	off, length, found := nthCommonSubstring(sa.Bytes(), sb.Bytes(), i.N)
	if !found {
		rf.St0 = false
		return Next()
	}
	rf.Set(i.DstOff, Some(FromSlice(uint16LE(uint16(off)), bankLayout(FamilyA, 1))))
	rf.Set(i.DstLen, Some(FromSlice(uint16LE(uint16(length)), bankLayout(FamilyA, 1))))
	rf.St0 = true
	return Next()
}
func (ConS) Complexity() uint64 { return ComplexityDefault }

// nthCommonSubstring finds the (n+1)th longest common substring occurrence
// of a within b by scanning decreasing lengths, returning its offset in a.
func nthCommonSubstring(a, b []byte, n int) (offset, length int, found bool) {
	count := 0
	for l := len(a); l >= 1; l-- {
		for off := 0; off+l <= len(a); off++ {
			if indexOf(b, a[off:off+l]) >= 0 {
				if count == n {
					return off, l, true
				}
				count++
			}
		}
	}
	return 0, 0, false
}

// FindS counts occurrences of b within a into A16[0] (spec §4.4.7 find).
type FindS struct{ A, B byte }

func (i FindS) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	sa, oka := rf.GetS(i.A)
	sb, okb := rf.GetS(i.B)
	if !oka || !okb || sb.Len() == 0 {
		rf.St0 = false
		return Next()
	}
	n := 0
	haystack := sa.Bytes()
	needle := sb.Bytes()
	for off := 0; off+len(needle) <= len(haystack); off++ {
		if equalBytes(haystack[off:off+len(needle)], needle) {
			n++
		}
	}
	rf.Set(RegRef{Family: FamilyA, Bank: 1, Index: 0}, Some(FromSlice(uint16LE(uint16(n)), bankLayout(FamilyA, 1))))
	rf.St0 = true
	return Next()
}
func (FindS) Complexity() uint64 { return ComplexityDefault }

// ExtrS extracts register-width bytes from src starting at an
// offset-register into an A/R destination (spec §4.4.7 extr).
type ExtrS struct {
	Src    byte
	Dst    RegRef
	Offset RegRef
}

func (i ExtrS) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	s, ok := rf.GetS(i.Src)
	off, offOk := rf.Get(i.Offset).Unwrap()
	if !ok || !offOk {
		rf.Clear(i.Dst)
		rf.St0 = false
		return Next()
	}
	offset := intFromValue(off)
	w := bankLayout(i.Dst.Family, i.Dst.Bank).Width()
	data := s.Bytes()
	if offset < 0 || offset+w > len(data) {
		rf.Clear(i.Dst)
		rf.St0 = false
		return Next()
	}
	rf.Set(i.Dst, Some(FromSlice(data[offset:offset+w], bankLayout(i.Dst.Family, i.Dst.Bank))))
	rf.St0 = true
	return Next()
}
func (ExtrS) Complexity() uint64 { return ComplexityDefault }

func intFromValue(v Value) int {
	n := 0
	w := v.layout.Width()
	for i := w - 1; i >= 0 && i < 8; i-- {
		n = n<<8 | int(v.bytes[i])
	}
	return n
}

// InjS injects a register's bytes into src at an offset register (spec
// §4.4.7 inj).
type InjS struct {
	Dst    byte
	Src    RegRef
	Offset RegRef
}

func (i InjS) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	s, ok := rf.GetS(i.Dst)
	srcV, srcOk := rf.Get(i.Src).Unwrap()
	off, offOk := rf.Get(i.Offset).Unwrap()
	if !ok || !srcOk || !offOk {
		rf.St0 = false
		return Next()
	}
	offset := intFromValue(off)
	data := append([]byte(nil), s.Bytes()...)
	sig := srcV.Significant()
	if offset < 0 {
		rf.St0 = false
		return Next()
	}
	if offset+len(sig) > len(data) {
		grown := make([]byte, offset+len(sig))
		copy(grown, data)
		data = grown
	}
	copy(data[offset:], sig)
	rf.SetS(i.Dst, NewByteString(data))
	rf.St0 = true
	return Next()
}
func (InjS) Complexity() uint64 { return ComplexityDefault }

// JoinS concatenates a and b into dst.
type JoinS struct{ A, B, Dst byte }

func (i JoinS) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	sa, oka := rf.GetS(i.A)
	sb, okb := rf.GetS(i.B)
	if !oka || !okb {
		rf.St0 = false
		return Next()
	}
	out := append(append([]byte(nil), sa.Bytes()...), sb.Bytes()...)
	rf.SetS(i.Dst, NewByteString(out))
	rf.St0 = true
	return Next()
}
func (JoinS) Complexity() uint64 { return ComplexityDefault }

// SpltS splits src at offset into two destinations.
type SpltS struct {
	Src        byte
	Offset     int
	DstA, DstB byte
}

func (i SpltS) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	s, ok := rf.GetS(i.Src)
	if !ok || i.Offset < 0 || i.Offset > s.Len() {
		rf.St0 = false
		return Next()
	}
	data := s.Bytes()
	rf.SetS(i.DstA, NewByteString(data[:i.Offset]))
	rf.SetS(i.DstB, NewByteString(data[i.Offset:]))
	rf.St0 = true
	return Next()
}
func (SpltS) Complexity() uint64 { return ComplexityDefault }

// InsS inserts bytes into src at offset.
type InsS struct {
	Src    byte
	Offset int
	Data   []byte
}

func (i InsS) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	s, ok := rf.GetS(i.Src)
	if !ok || i.Offset < 0 || i.Offset > s.Len() {
		rf.St0 = false
		return Next()
	}
	data := s.Bytes()
	out := append(append(append([]byte(nil), data[:i.Offset]...), i.Data...), data[i.Offset:]...)
	rf.SetS(i.Src, NewByteString(out))
	rf.St0 = true
	return Next()
}
func (InsS) Complexity() uint64 { return ComplexityDefault }

// DelS deletes bytes [from,to) from src.
type DelS struct {
	Src      byte
	From, To int
}

func (i DelS) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	s, ok := rf.GetS(i.Src)
	if !ok || i.From < 0 || i.To > s.Len() || i.From > i.To {
		rf.St0 = false
		return Next()
	}
	data := s.Bytes()
	out := append(append([]byte(nil), data[:i.From]...), data[i.To:]...)
	rf.SetS(i.Src, NewByteString(out))
	rf.St0 = true
	return Next()
}
func (DelS) Complexity() uint64 { return ComplexityDefault }

// RevS reverses the bytes of src.
type RevS struct{ Src byte }

func (i RevS) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	s, ok := rf.GetS(i.Src)
	if !ok {
		rf.St0 = false
		return Next()
	}
	data := append([]byte(nil), s.Bytes()...)
	for i, j := 0, len(data)-1; i < j; i, j = i+1, j-1 {
		data[i], data[j] = data[j], data[i]
	}
	rf.SetS(i.Src, NewByteString(data))
	rf.St0 = true
	return Next()
}
func (RevS) Complexity() uint64 { return ComplexityDefault }
