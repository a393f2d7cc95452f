package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assembledLibrary builds a scratch Library, lets fn write instructions to
// it via a Cursor, then rebuilds an immutable Library from the resulting
// segments so its cached identifier reflects the final code.
func assembledLibrary(t *testing.T, deps []LibID, fn func(c *Cursor)) *Library {
	t.Helper()
	scratch := NewLibrary("", nil, nil, deps)
	fn(NewCursor(scratch))
	return NewLibrary(scratch.ISAE, scratch.Code, scratch.Data, scratch.Deps)
}

// buildPutAddSucc assembles: put a8[0] = lhs; put a8[1] = rhs;
// add_a a8[0] a8[1] -> a8[2]; succ.
func buildPutAddSucc(t *testing.T, lhs, rhs byte) *Library {
	t.Helper()
	return assembledLibrary(t, nil, func(c *Cursor) {
		c.WriteByte(byte(OpPutA))
		c.WriteRegRef(a8(0))
		c.WriteFixed([]byte{lhs})

		c.WriteByte(byte(OpPutA))
		c.WriteRegRef(a8(1))
		c.WriteFixed([]byte{rhs})

		c.WriteByte(byte(OpAddA))
		c.WriteRegRef(a8(0))
		c.WriteRegRef(a8(1))
		c.WriteRegRef(a8(2))
		c.WriteBits(2, 0) // unsigned, no wrap

		c.WriteByte(byte(OpSucc))
	})
}

func TestExecuteRunsPutAddSuccToCompletion(t *testing.T) {
	lib := buildPutAddSucc(t, 3, 4)
	rf := NewRegisterFile()

	next := Execute(lib, 0, rf, nil, DefaultComplexityLimit)
	assert.Nil(t, next)
	assert.True(t, rf.St0)

	sum, ok := rf.Get(a8(2)).Unwrap()
	require.True(t, ok)
	assert.Equal(t, byte(7), sum.bytes[0])
}

func TestExecuteHaltsOnFail(t *testing.T) {
	lib := assembledLibrary(t, nil, func(c *Cursor) { c.WriteByte(byte(OpFail)) })

	rf := NewRegisterFile()
	next := Execute(lib, 0, rf, nil, DefaultComplexityLimit)
	assert.Nil(t, next)
	assert.False(t, rf.St0)
}

func TestExecuteStopsAtEndOfCodeWithoutExplicitHalt(t *testing.T) {
	lib := assembledLibrary(t, nil, func(c *Cursor) { c.WriteByte(byte(OpNop)) })

	rf := NewRegisterFile()
	next := Execute(lib, 0, rf, nil, DefaultComplexityLimit)
	assert.Nil(t, next)
	assert.False(t, rf.St0)
}

func TestExecuteHaltsWhenComplexityCeilingCrossed(t *testing.T) {
	lib := assembledLibrary(t, nil, func(c *Cursor) {
		c.WriteByte(byte(OpNop))
		c.WriteByte(byte(OpNop))
		c.WriteByte(byte(OpSucc))
	})

	rf := NewRegisterFile()
	next := Execute(lib, 0, rf, nil, 1) // budget exhausted after first nop
	assert.Nil(t, next)
	assert.False(t, rf.St0)
}

func TestExecuteReturnsCallSiteOnCrossLibraryCall(t *testing.T) {
	callee := assembledLibrary(t, nil, func(c *Cursor) { c.WriteByte(byte(OpSucc)) })

	caller := assembledLibrary(t, []LibID{callee.Id()}, func(c *Cursor) {
		c.WriteByte(byte(OpCall))
		c.WriteByte(0) // dep index
		c.WriteWord(0) // entry offset in callee
	})

	rf := NewRegisterFile()
	next := Execute(caller, 0, rf, nil, DefaultComplexityLimit)
	require.NotNil(t, next)
	assert.Equal(t, callee.Id(), next.Lib)
	assert.Equal(t, uint16(0), next.Offset)
}

func TestRunDrivesAcrossLibraryBoundary(t *testing.T) {
	callee := assembledLibrary(t, nil, func(c *Cursor) { c.WriteByte(byte(OpSucc)) })

	caller := assembledLibrary(t, []LibID{callee.Id()}, func(c *Cursor) {
		c.WriteByte(byte(OpCall))
		c.WriteByte(0)
		c.WriteWord(0)
	})

	libs := map[LibID]*Library{caller.Id(): caller, callee.Id(): callee}
	rf := NewRegisterFile()
	err := Run(LibrarySite{Lib: caller.Id(), Offset: 0}, func(id LibID) (*Library, bool) {
		l, ok := libs[id]
		return l, ok
	}, rf, nil, DefaultComplexityLimit)

	require.NoError(t, err)
	assert.True(t, rf.St0)
}
