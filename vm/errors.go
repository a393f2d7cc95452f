package vm

import "errors"

// Error taxonomy (spec §7). Decoding errors inside the executor terminate
// execution with st0=false; arithmetic failures never abort execution and
// instead clear the destination and set st0=false (propagation policy,
// spec §7).
var (
	// ErrCodeEOF: the cursor attempted to read past the end of the code
	// segment.
	ErrCodeEOF = errors.New("vm: end of code segment")

	// ErrDataSegmentMiss: a data reference pointed outside the data
	// segment; the caller proceeds with a clamped slice.
	ErrDataSegmentMiss = errors.New("vm: data segment reference out of range")

	// ErrLibUnknown: encode-side only — writing a dependency reference for
	// a library not present in the dependency segment.
	ErrLibUnknown = errors.New("vm: unknown library dependency")

	// ErrDataTooLarge: encode-side only — a literal write would push the
	// data segment past its 2^16 bound.
	ErrDataTooLarge = errors.New("vm: data segment would exceed maximum size")

	// ErrReservedOpcode: a reserved opcode was decoded; its execution is
	// equivalent to fail.
	ErrReservedOpcode = errors.New("vm: reserved opcode")

	// ErrMisaligned: a multi-bit read/write left the cursor off a byte
	// boundary where the operation required alignment (spec §4.3).
	ErrMisaligned = errors.New("vm: cursor is not byte-aligned")

	// ErrEntryOutOfRange: execute() was asked to begin at an offset past
	// the end of the code segment (spec §4.6 step 1).
	ErrEntryOutOfRange = errors.New("vm: entrypoint offset out of range")
)
