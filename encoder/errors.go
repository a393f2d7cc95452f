package encoder

import (
	"errors"
	"fmt"
)

// Sentinel errors returned while disassembling library code, mirroring
// package vm's own sentinel-error style (vm/errors.go).
var (
	// ErrTruncated means the code segment ended mid-instruction.
	ErrTruncated = errors.New("encoder: instruction truncated at end of code segment")
)

// EncodingError provides detailed context for disassembly failures. It is
// adapted from the teacher's EncodingError, which carried a
// *parser.Instruction source location (file/line/column); this VM has no
// assembly source, only a persisted code segment, so the context here is
// the byte offset and opcode that failed to decode.
type EncodingError struct {
	Offset  uint16 // byte offset into the code segment
	Opcode  byte   // opcode byte at that offset
	Message string
	Wrapped error
}

func (e *EncodingError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("offset %d (opcode 0x%02x): %s: %v", e.Offset, e.Opcode, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("offset %d (opcode 0x%02x): %s", e.Offset, e.Opcode, e.Message)
}

func (e *EncodingError) Unwrap() error { return e.Wrapped }

// NewEncodingError builds an EncodingError at the given code offset/opcode.
func NewEncodingError(offset uint16, opcode byte, message string) *EncodingError {
	return &EncodingError{Offset: offset, Opcode: opcode, Message: message}
}

// WrapEncodingError wraps err with offset/opcode context, leaving an
// existing EncodingError untouched rather than double-wrapping it.
func WrapEncodingError(offset uint16, opcode byte, err error) error {
	if err == nil {
		return nil
	}
	var existing *EncodingError
	if errors.As(err, &existing) {
		return err
	}
	return &EncodingError{Offset: offset, Opcode: opcode, Message: "failed to decode instruction", Wrapped: err}
}
