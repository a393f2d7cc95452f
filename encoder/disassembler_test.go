package encoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aluvm/aluvm/vm"
)

func buildSimpleLibrary(t *testing.T) *vm.Library {
	t.Helper()
	scratch := vm.NewLibrary("ALU", nil, nil, nil)
	c := vm.NewCursor(scratch)

	c.WriteByte(byte(vm.OpPutA))
	c.WriteRegRef(vm.RegRef{Family: vm.FamilyA, Bank: 0, Index: 0})
	_, err := c.WriteFixed([]byte{0x2A})
	require.NoError(t, err)

	c.WriteByte(byte(vm.OpAddA))
	c.WriteRegRef(vm.RegRef{Family: vm.FamilyA, Bank: 0, Index: 0})
	c.WriteRegRef(vm.RegRef{Family: vm.FamilyA, Bank: 0, Index: 0})
	c.WriteRegRef(vm.RegRef{Family: vm.FamilyA, Bank: 0, Index: 1})
	c.WriteBits(2, 0)

	c.WriteByte(byte(vm.OpSucc))

	return vm.NewLibrary(scratch.ISAE, scratch.Code, scratch.Data, scratch.Deps)
}

func TestDisassembleRendersKnownMnemonics(t *testing.T) {
	lib := buildSimpleLibrary(t)

	lines, err := Disassemble(lib)
	require.NoError(t, err)
	require.Len(t, lines, 3)

	assert.Equal(t, "put_a", lines[0].Mnemonic)
	assert.Equal(t, "add_a", lines[1].Mnemonic)
	assert.Equal(t, "succ", lines[2].Mnemonic)
	assert.Equal(t, uint16(0), lines[0].Offset)
}

func TestDisassembleRejectsTruncatedRecord(t *testing.T) {
	scratch := vm.NewLibrary("ALU", nil, nil, nil)
	c := vm.NewCursor(scratch)
	c.WriteByte(byte(vm.OpPutA))
	c.WriteRegRef(vm.RegRef{Family: vm.FamilyA, Bank: 0, Index: 0})
	// Deliberately omit the literal bytes put_a needs.
	lib := vm.NewLibrary(scratch.ISAE, scratch.Code, scratch.Data, scratch.Deps)

	_, err := Disassemble(lib)
	require.Error(t, err)
}

func TestDisassembleRendersNopAndReserved(t *testing.T) {
	scratch := vm.NewLibrary("ALU", nil, nil, nil)
	c := vm.NewCursor(scratch)
	c.WriteByte(byte(vm.OpNop))
	c.WriteByte(byte(vm.OpReservedFirst))
	lib := vm.NewLibrary(scratch.ISAE, scratch.Code, scratch.Data, scratch.Deps)

	lines, err := Disassemble(lib)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "nop", lines[0].Mnemonic)
	assert.Contains(t, lines[1].Mnemonic, "db 0x")
}

func TestLineStringFormatsOffsetMnemonicOperands(t *testing.T) {
	line := Line{Offset: 5, Mnemonic: "put_a", Operands: "a0[0] 0x2a"}
	assert.Equal(t, "0005: put_a a0[0] 0x2a", line.String())

	bare := Line{Offset: 9, Mnemonic: "succ"}
	assert.Equal(t, "0009: succ", bare.String())
}
