package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutMovSwpS(t *testing.T) {
	rf := NewRegisterFile()
	PutS{Idx: 0, Data: []byte("hello")}.Execute(rf, LibrarySite{}, nil)
	s, ok := rf.GetS(0)
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), s.Bytes())

	MovS{Src: 0, Dst: 1}.Execute(rf, LibrarySite{}, nil)
	s1, ok := rf.GetS(1)
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), s1.Bytes())

	PutS{Idx: 2, Data: []byte("world")}.Execute(rf, LibrarySite{}, nil)
	SwpS{A: 1, B: 2}.Execute(rf, LibrarySite{}, nil)
	s1, _ = rf.GetS(1)
	s2, _ := rf.GetS(2)
	assert.Equal(t, []byte("world"), s1.Bytes())
	assert.Equal(t, []byte("hello"), s2.Bytes())
}

func TestFillSExtendsWhenFlagSet(t *testing.T) {
	rf := NewRegisterFile()
	PutS{Idx: 0, Data: []byte{1, 2, 3}}.Execute(rf, LibrarySite{}, nil)

	FillS{Idx: 0, From: 1, To: 5, Value: 0xAA, ExtendFlag: true}.Execute(rf, LibrarySite{}, nil)
	s, _ := rf.GetS(0)
	assert.Equal(t, []byte{1, 0xAA, 0xAA, 0xAA, 0xAA}, s.Bytes())
	assert.True(t, rf.St0)

	FillS{Idx: 0, From: 1, To: 10, ExtendFlag: false}.Execute(rf, LibrarySite{}, nil)
	assert.False(t, rf.St0)
}

func TestLenCntEqS(t *testing.T) {
	rf := NewRegisterFile()
	PutS{Idx: 0, Data: []byte("aabbaa")}.Execute(rf, LibrarySite{}, nil)
	PutS{Idx: 1, Data: []byte("aabbaa")}.Execute(rf, LibrarySite{}, nil)

	LenS{Src: 0, Dst: RegRef{Family: FamilyA, Bank: 1, Index: 0}}.Execute(rf, LibrarySite{}, nil)
	v, ok := rf.Get(RegRef{Family: FamilyA, Bank: 1, Index: 0}).Unwrap()
	require.True(t, ok)
	assert.Equal(t, 6, intFromValue(v))

	rf.Set(RegRef{Family: FamilyA, Bank: 0, Index: 0}, Some(FromSlice([]byte{'a'}, IntLayout(false, 1))))
	CntS{
		Src:     0,
		ByteReg: RegRef{Family: FamilyA, Bank: 0, Index: 0},
		Dst:     RegRef{Family: FamilyA, Bank: 1, Index: 1},
	}.Execute(rf, LibrarySite{}, nil)
	v, _ = rf.Get(RegRef{Family: FamilyA, Bank: 1, Index: 1}).Unwrap()
	assert.Equal(t, 4, intFromValue(v))

	EqS{A: 0, B: 1}.Execute(rf, LibrarySite{}, nil)
	assert.True(t, rf.St0)
}

func TestJoinSpltInsDelRevS(t *testing.T) {
	rf := NewRegisterFile()
	PutS{Idx: 0, Data: []byte("foo")}.Execute(rf, LibrarySite{}, nil)
	PutS{Idx: 1, Data: []byte("bar")}.Execute(rf, LibrarySite{}, nil)

	JoinS{A: 0, B: 1, Dst: 2}.Execute(rf, LibrarySite{}, nil)
	s, _ := rf.GetS(2)
	assert.Equal(t, []byte("foobar"), s.Bytes())

	SpltS{Src: 2, Offset: 3, DstA: 3, DstB: 4}.Execute(rf, LibrarySite{}, nil)
	sa, _ := rf.GetS(3)
	sb, _ := rf.GetS(4)
	assert.Equal(t, []byte("foo"), sa.Bytes())
	assert.Equal(t, []byte("bar"), sb.Bytes())

	InsS{Src: 2, Offset: 3, Data: []byte("-")}.Execute(rf, LibrarySite{}, nil)
	s, _ = rf.GetS(2)
	assert.Equal(t, []byte("foo-bar"), s.Bytes())

	DelS{Src: 2, From: 3, To: 4}.Execute(rf, LibrarySite{}, nil)
	s, _ = rf.GetS(2)
	assert.Equal(t, []byte("foobar"), s.Bytes())

	RevS{Src: 2}.Execute(rf, LibrarySite{}, nil)
	s, _ = rf.GetS(2)
	assert.Equal(t, []byte("raboof"), s.Bytes())
}

func TestFindSCountsOccurrences(t *testing.T) {
	rf := NewRegisterFile()
	PutS{Idx: 0, Data: []byte("abcabcabc")}.Execute(rf, LibrarySite{}, nil)
	PutS{Idx: 1, Data: []byte("abc")}.Execute(rf, LibrarySite{}, nil)

	FindS{A: 0, B: 1}.Execute(rf, LibrarySite{}, nil)
	v, ok := rf.Get(RegRef{Family: FamilyA, Bank: 1, Index: 0}).Unwrap()
	require.True(t, ok)
	assert.Equal(t, 3, intFromValue(v))
}
