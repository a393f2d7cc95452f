package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func a8(n byte) RegRef { return RegRef{Family: FamilyA, Bank: 0, Index: n} }

func TestBitwiseAndOrXorNot(t *testing.T) {
	rf := NewRegisterFile()
	rf.Set(a8(0), Some(FromSlice([]byte{0b1100}, IntLayout(false, 1))))
	rf.Set(a8(1), Some(FromSlice([]byte{0b1010}, IntLayout(false, 1))))

	And{A: a8(0), B: a8(1), Dst: a8(2)}.Execute(rf, LibrarySite{}, nil)
	v, ok := rf.Get(a8(2)).Unwrap()
	require.True(t, ok)
	assert.Equal(t, byte(0b1000), v.bytes[0])

	Or{A: a8(0), B: a8(1), Dst: a8(3)}.Execute(rf, LibrarySite{}, nil)
	v, _ = rf.Get(a8(3)).Unwrap()
	assert.Equal(t, byte(0b1110), v.bytes[0])

	Xor{A: a8(0), B: a8(1), Dst: a8(4)}.Execute(rf, LibrarySite{}, nil)
	v, _ = rf.Get(a8(4)).Unwrap()
	assert.Equal(t, byte(0b0110), v.bytes[0])

	Not{Ref: a8(0)}.Execute(rf, LibrarySite{}, nil)
	v, _ = rf.Get(a8(0)).Unwrap()
	assert.Equal(t, byte(0xF3), v.bytes[0])
}

func TestShiftLogicalLeftAndRight(t *testing.T) {
	rf := NewRegisterFile()
	rf.Set(a8(0), Some(FromSlice([]byte{0b00000001}, IntLayout(false, 1))))
	rf.Set(RegRef{Family: FamilyA, Bank: 0, Index: 31}, Some(FromSlice([]byte{3}, IntLayout(false, 1))))

	Shl{Src: a8(0), Dst: a8(5), ShiftReg: 31}.Execute(rf, LibrarySite{}, nil)
	v, ok := rf.Get(a8(5)).Unwrap()
	require.True(t, ok)
	assert.Equal(t, byte(0b00001000), v.bytes[0])

	rf.Set(a8(0), Some(FromSlice([]byte{0b10000000}, IntLayout(false, 1))))
	ShrR{Src: a8(0), Dst: a8(6), ShiftReg: 31}.Execute(rf, LibrarySite{}, nil)
	v, _ = rf.Get(a8(6)).Unwrap()
	assert.Equal(t, byte(0b00010000), v.bytes[0])
}

func TestRotateLeftAndRight(t *testing.T) {
	rf := NewRegisterFile()
	rf.Set(a8(0), Some(FromSlice([]byte{0b10000001}, IntLayout(false, 1))))
	rf.Set(RegRef{Family: FamilyA, Bank: 0, Index: 31}, Some(FromSlice([]byte{1}, IntLayout(false, 1))))

	Scl{Src: a8(0), Dst: a8(7), ShiftReg: 31}.Execute(rf, LibrarySite{}, nil)
	v, _ := rf.Get(a8(7)).Unwrap()
	assert.Equal(t, byte(0b00000011), v.bytes[0])

	Scr{Src: a8(0), Dst: a8(8), ShiftReg: 31}.Execute(rf, LibrarySite{}, nil)
	v, _ = rf.Get(a8(8)).Unwrap()
	assert.Equal(t, byte(0b11000000), v.bytes[0])
}

func TestRevBitOrder(t *testing.T) {
	rf := NewRegisterFile()
	rf.Set(a8(0), Some(FromSlice([]byte{0b10000001}, IntLayout(false, 1))))
	Rev{Ref: a8(0)}.Execute(rf, LibrarySite{}, nil)
	v, _ := rf.Get(a8(0)).Unwrap()
	assert.Equal(t, byte(0b10000001), v.bytes[0]) // palindromic bit pattern
}

func TestArithmeticShiftRightPreservesSign(t *testing.T) {
	rf := NewRegisterFile()
	signed := IntLayout(true, 1)
	rf.Set(a8(0), Some(FromSlice([]byte{0b11111000}, signed))) // -8
	rf.Set(RegRef{Family: FamilyA, Bank: 0, Index: 31}, Some(FromSlice([]byte{1}, IntLayout(false, 1))))

	ShrA{Src: a8(0), Dst: a8(9), ShiftReg: 31, Signed: true}.Execute(rf, LibrarySite{}, nil)
	v, _ := rf.Get(a8(9)).Unwrap()
	assert.Equal(t, byte(0b11111100), v.bytes[0]) // -4, sign-extended
}
