package api

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"

	"github.com/aluvm/aluvm/loader"
	"github.com/aluvm/aluvm/service"
	"github.com/aluvm/aluvm/vm"
)

// handleCreateSession handles POST /api/v1/session.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req SessionCreateRequest
	if r.ContentLength > 0 {
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	session, err := s.sessions.CreateSession(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to create session: %v", err))
		return
	}

	writeJSON(w, http.StatusCreated, SessionCreateResponse{
		SessionID: session.ID,
		CreatedAt: session.CreatedAt,
	})
}

// handleListSessions handles GET /api/v1/session.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids := s.sessions.ListSessions()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": ids,
		"count":    len(ids),
	})
}

// handleGetSessionStatus handles GET /api/v1/session/{id}.
func (s *Server) handleGetSessionStatus(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	regs := session.Service.GetRegisterState()
	state := session.Service.GetExecutionState()
	site, hasSite := session.Service.GetCurrentSite()

	resp := SessionStatusResponse{
		SessionID: sessionID,
		State:     string(state),
		Ca0:       regs.Ca0,
	}
	if hasSite {
		resp.Lib = site.Lib.String()
		resp.Offset = site.Offset
	}
	if lastErr := session.Service.LastError(); lastErr != nil {
		resp.Error = lastErr.Error()
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleDestroySession handles DELETE /api/v1/session/{id}.
func (s *Server) handleDestroySession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := s.sessions.DestroySession(sessionID); err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Session destroyed"})
}

// handleLoadLibrary handles POST /api/v1/session/{id}/load. The request
// carries a hex-encoded library in the §6 wire format (package loader).
func (s *Server) handleLoadLibrary(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req LoadLibraryRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	raw, err := hex.DecodeString(req.Code)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, LoadLibraryResponse{Error: "code is not valid hex"})
		return
	}

	lib, err := loader.DecodeLibrary(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, LoadLibraryResponse{Error: err.Error()})
		return
	}

	session.Service.LoadLibrary(lib)
	libID := lib.Id()
	if err := session.Service.LoadEntry(vm.LibrarySite{Lib: libID, Offset: req.Entry}); err != nil {
		writeJSON(w, http.StatusBadRequest, LoadLibraryResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, LoadLibraryResponse{Success: true, LibID: loader.FormatLibID(libID)})
}

// handleRun handles POST /api/v1/session/{id}/run: drives the library to
// completion and reports the final register state.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	runErr := session.Service.Run()
	regs := session.Service.GetRegisterState()
	s.broadcastState(sessionID, &regs)

	if runErr != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Run failed: %v", runErr))
		return
	}

	writeJSON(w, http.StatusOK, ToRegisterResponse(&regs))
}

// handleContinue handles POST /api/v1/session/{id}/continue: resumes
// execution asynchronously until halt or breakpoint, broadcasting the
// final state over the websocket.
func (s *Server) handleContinue(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	go func() {
		state, contErr := session.Service.Continue()
		regs := session.Service.GetRegisterState()
		s.broadcastState(sessionID, &regs)
		if contErr != nil {
			s.broadcaster.BroadcastExecutionEvent(sessionID, "error", map[string]interface{}{"message": contErr.Error()})
			return
		}
		s.broadcaster.BroadcastExecutionEvent(sessionID, string(state), nil)
	}()

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Continuing"})
}

// handleStep handles POST /api/v1/session/{id}/step.
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	if stepErr := session.Service.Step(); stepErr != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Step failed: %v", stepErr))
		return
	}

	regs := session.Service.GetRegisterState()
	s.broadcastState(sessionID, &regs)

	writeJSON(w, http.StatusOK, ToRegisterResponse(&regs))
}

// handleReset handles POST /api/v1/session/{id}/reset.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	if err := session.Service.Reset(); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Reset failed: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Session reset"})
}

// handleGetRegisters handles GET /api/v1/session/{id}/registers.
func (s *Server) handleGetRegisters(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	regs := session.Service.GetRegisterState()
	writeJSON(w, http.StatusOK, ToRegisterResponse(&regs))
}

// handleGetDisassembly handles GET /api/v1/session/{id}/disassembly.
func (s *Server) handleGetDisassembly(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	site, ok := session.Service.GetCurrentSite()
	if !ok {
		writeError(w, http.StatusBadRequest, "No library loaded")
		return
	}

	lines, dasmErr := session.Service.GetDisassembly(site.Lib)
	if dasmErr != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Disassembly failed: %v", dasmErr))
		return
	}

	infos := make([]InstructionInfo, len(lines))
	for i, ln := range lines {
		infos[i] = ToInstructionInfo(ln)
	}

	writeJSON(w, http.StatusOK, DisassemblyResponse{Lines: infos})
}

// handleBreakpoint handles POST /api/v1/session/{id}/breakpoint.
func (s *Server) handleBreakpoint(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	switch r.Method {
	case http.MethodPost:
		var req BreakpointRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		site, ok := session.Service.GetCurrentSite()
		if !ok {
			writeError(w, http.StatusBadRequest, "No library loaded")
			return
		}
		site.Offset = req.Offset

		id := session.Service.AddBreakpoint(site, req.Condition)
		writeJSON(w, http.StatusOK, BreakpointInfo{
			ID: id, Lib: site.Lib.String(), Offset: site.Offset, Enabled: true, Condition: req.Condition,
		})

	case http.MethodDelete:
		id, parseErr := strconv.Atoi(r.URL.Query().Get("id"))
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "Invalid breakpoint id")
			return
		}
		if err := session.Service.RemoveBreakpoint(id); err != nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Failed to remove breakpoint: %v", err))
			return
		}
		writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Breakpoint removed"})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleListBreakpoints handles GET /api/v1/session/{id}/breakpoints.
func (s *Server) handleListBreakpoints(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	bps := session.Service.ListBreakpoints()
	infos := make([]BreakpointInfo, len(bps))
	for i, bp := range bps {
		infos[i] = BreakpointInfo{
			ID: bp.ID, Lib: bp.Site.Lib.String(), Offset: bp.Site.Offset, Enabled: bp.Enabled, Condition: bp.Condition,
		}
	}

	writeJSON(w, http.StatusOK, BreakpointsResponse{Breakpoints: infos})
}

// broadcastState broadcasts a register-file snapshot to subscribed
// websocket clients.
func (s *Server) broadcastState(sessionID string, regs *service.RegisterState) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastState(sessionID, map[string]interface{}{
		"st0":       regs.St0,
		"cy0":       regs.Cy0,
		"ca0":       regs.Ca0,
		"callDepth": regs.CallDepth,
	})
}
