package api

import (
	"time"

	"github.com/aluvm/aluvm/service"
)

// SessionCreateRequest represents a request to create a new session.
type SessionCreateRequest struct{}

// SessionCreateResponse represents the response from creating a session.
type SessionCreateResponse struct {
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionStatusResponse represents the current status of a session.
type SessionStatusResponse struct {
	SessionID string `json:"sessionId"`
	State     string `json:"state"`
	Lib       string `json:"lib,omitempty"`
	Offset    uint16 `json:"offset"`
	Ca0       uint64 `json:"ca0"`
	Error     string `json:"error,omitempty"`
}

// LoadLibraryRequest represents a request to load a compiled library.
type LoadLibraryRequest struct {
	Code  string `json:"code"`  // hex-encoded wire-format library, per package loader
	Entry uint16 `json:"entry"` // entrypoint offset within the library's code segment
}

// LoadLibraryResponse represents the response from loading a library.
type LoadLibraryResponse struct {
	Success bool   `json:"success"`
	LibID   string `json:"libId,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RegistersResponse mirrors service.RegisterState for wire transport.
type RegistersResponse struct {
	A         [8][]SlotResponse `json:"a"`
	F         [8][]SlotResponse `json:"f"`
	R         [8][]SlotResponse `json:"r"`
	S         map[byte]string   `json:"s"`
	St0       bool              `json:"st0"`
	Cy0       uint16            `json:"cy0"`
	Ca0       uint64            `json:"ca0"`
	CallDepth int               `json:"callDepth"`
}

// SlotResponse is one register slot's wire representation.
type SlotResponse struct {
	Set bool   `json:"set"`
	Hex string `json:"hex,omitempty"`
}

// DisassemblyResponse represents disassembled instructions for a library.
type DisassemblyResponse struct {
	Lines []InstructionInfo `json:"lines"`
}

// InstructionInfo represents a disassembled instruction.
type InstructionInfo struct {
	Offset   uint16 `json:"offset"`
	Mnemonic string `json:"mnemonic"`
	Operands string `json:"operands"`
}

// BreakpointRequest represents a request to add a breakpoint.
type BreakpointRequest struct {
	Offset    uint16 `json:"offset"`
	Condition string `json:"condition,omitempty"`
}

// BreakpointInfo is one breakpoint's wire representation.
type BreakpointInfo struct {
	ID        int    `json:"id"`
	Lib       string `json:"lib"`
	Offset    uint16 `json:"offset"`
	Enabled   bool   `json:"enabled"`
	Condition string `json:"condition,omitempty"`
}

// BreakpointsResponse represents a list of breakpoints.
type BreakpointsResponse struct {
	Breakpoints []BreakpointInfo `json:"breakpoints"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// SuccessResponse represents a simple success response.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Event represents a WebSocket event.
type Event struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// ToRegisterResponse converts a service.RegisterState to its wire form.
func ToRegisterResponse(regs *service.RegisterState) *RegistersResponse {
	resp := &RegistersResponse{
		St0:       regs.St0,
		Cy0:       regs.Cy0,
		Ca0:       regs.Ca0,
		CallDepth: regs.CallDepth,
		S:         regs.S,
	}
	for bank := 0; bank < 8; bank++ {
		resp.A[bank] = make([]SlotResponse, len(regs.A[bank]))
		resp.F[bank] = make([]SlotResponse, len(regs.F[bank]))
		resp.R[bank] = make([]SlotResponse, len(regs.R[bank]))
		for idx := range regs.A[bank] {
			resp.A[bank][idx] = SlotResponse{Set: regs.A[bank][idx].Set, Hex: regs.A[bank][idx].Hex}
			resp.F[bank][idx] = SlotResponse{Set: regs.F[bank][idx].Set, Hex: regs.F[bank][idx].Hex}
			resp.R[bank][idx] = SlotResponse{Set: regs.R[bank][idx].Set, Hex: regs.R[bank][idx].Hex}
		}
	}
	return resp
}

// ToInstructionInfo converts a service.DisassemblyLine to its wire form.
func ToInstructionInfo(line service.DisassemblyLine) InstructionInfo {
	return InstructionInfo{
		Offset:   line.Offset,
		Mnemonic: line.Mnemonic,
		Operands: line.Operands,
	}
}
