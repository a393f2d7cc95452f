package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInstructionCoversSecp256kMulAddNeg(t *testing.T) {
	lib := assembledLibrary(t, nil, func(c *Cursor) {
		c.WriteByte(byte(OpSecp256kMul))
		c.WriteRegRef(r256(0))
		c.WriteRegRef(r256(1))
		c.WriteRegRef(r256(2))
		c.WriteRegRef(r256(3))
		c.WriteRegRef(r256(4))

		c.WriteByte(byte(OpSecp256kAdd))
		c.WriteRegRef(r256(0))
		c.WriteRegRef(r256(1))
		c.WriteRegRef(r256(2))
		c.WriteRegRef(r256(3))
		c.WriteRegRef(r256(4))
		c.WriteRegRef(r256(5))

		c.WriteByte(byte(OpSecp256kNeg))
		c.WriteRegRef(r256(0))
		c.WriteRegRef(r256(1))
	})

	cursor := NewCursor(lib)
	libID := lib.Id()

	instr, err := decodeInstruction(cursor, libID)
	require.NoError(t, err)
	mul, ok := instr.(Secp256kMul)
	require.True(t, ok)
	assert.Equal(t, r256(0), mul.Scalar)
	assert.Equal(t, r256(3), mul.DstX)
	assert.Equal(t, r256(4), mul.DstY)

	instr, err = decodeInstruction(cursor, libID)
	require.NoError(t, err)
	add, ok := instr.(Secp256kAdd)
	require.True(t, ok)
	assert.Equal(t, r256(4), add.DstX)
	assert.Equal(t, r256(5), add.DstY)

	instr, err = decodeInstruction(cursor, libID)
	require.NoError(t, err)
	neg, ok := instr.(Secp256kNeg)
	require.True(t, ok)
	assert.Equal(t, r256(0), neg.X)
	assert.Equal(t, r256(1), neg.Y)
}

func TestDecodeInstructionCoversBytesFamilyGaps(t *testing.T) {
	lib := assembledLibrary(t, nil, func(c *Cursor) {
		c.WriteByte(byte(OpFillS))
		c.WriteByte(7)
		c.WriteWord(2)
		c.WriteWord(5)
		c.WriteByte(0xAB)
		c.WriteBits(1, 1) // extend

		c.WriteByte(byte(OpLenS))
		c.WriteByte(7)
		c.WriteBits(1, 0) // family A
		c.WriteRegRef(a8(2))

		c.WriteByte(byte(OpDelS))
		c.WriteByte(3)
		c.WriteWord(1)
		c.WriteWord(4)
	})

	cursor := NewCursor(lib)
	libID := lib.Id()

	instr, err := decodeInstruction(cursor, libID)
	require.NoError(t, err)
	fill, ok := instr.(FillS)
	require.True(t, ok)
	assert.Equal(t, byte(7), fill.Idx)
	assert.Equal(t, 2, fill.From)
	assert.Equal(t, 5, fill.To)
	assert.Equal(t, byte(0xAB), fill.Value)
	assert.True(t, fill.ExtendFlag)

	instr, err = decodeInstruction(cursor, libID)
	require.NoError(t, err)
	lenS, ok := instr.(LenS)
	require.True(t, ok)
	assert.Equal(t, byte(7), lenS.Src)
	assert.Equal(t, a8(2), lenS.Dst)

	instr, err = decodeInstruction(cursor, libID)
	require.NoError(t, err)
	del, ok := instr.(DelS)
	require.True(t, ok)
	assert.Equal(t, byte(3), del.Src)
	assert.Equal(t, 1, del.From)
	assert.Equal(t, 4, del.To)
}

func TestDecodeInstructionRejectsReservedOpcodeWithoutError(t *testing.T) {
	lib := assembledLibrary(t, nil, func(c *Cursor) {
		c.WriteByte(byte(OpReservedFirst))
	})
	cursor := NewCursor(lib)

	instr, err := decodeInstruction(cursor, lib.Id())
	require.NoError(t, err)
	reserved, ok := instr.(Reserved)
	require.True(t, ok)
	assert.Equal(t, byte(OpReservedFirst), reserved.Opcode)
}
