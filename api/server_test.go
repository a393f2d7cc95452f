package api

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aluvm/aluvm/config"
	"github.com/aluvm/aluvm/loader"
	"github.com/aluvm/aluvm/vm"
)

func buildPutSuccLibraryBytes(t *testing.T) []byte {
	t.Helper()
	scratch := vm.NewLibrary("ALU", nil, nil, nil)
	c := vm.NewCursor(scratch)

	c.WriteByte(byte(vm.OpPutA))
	c.WriteRegRef(vm.RegRef{Family: vm.FamilyA, Bank: 0, Index: 0})
	if _, err := c.WriteFixed([]byte{0x2A}); err != nil {
		t.Fatalf("WriteFixed: %v", err)
	}
	c.WriteByte(byte(vm.OpSucc))

	lib := vm.NewLibrary(scratch.ISAE, scratch.Code, scratch.Data, scratch.Deps)
	raw, err := loader.EncodeLibrary(lib)
	if err != nil {
		t.Fatalf("EncodeLibrary: %v", err)
	}
	return raw
}

func newTestServer() *Server {
	cfg := config.DefaultConfig()
	cfg.API.ListenAddr = "127.0.0.1:0"
	return NewServer(cfg)
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestSessionLifecycle(t *testing.T) {
	srv := newTestServer()

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/session", SessionCreateRequest{})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session: status %d body %s", rec.Code, rec.Body.String())
	}
	var created SessionCreateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.SessionID == "" {
		t.Fatal("expected non-empty session id")
	}

	raw := buildPutSuccLibraryBytes(t)
	loadReq := LoadLibraryRequest{Code: hex.EncodeToString(raw), Entry: 0}
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/session/"+created.SessionID+"/load", loadReq)
	if rec.Code != http.StatusOK {
		t.Fatalf("load library: status %d body %s", rec.Code, rec.Body.String())
	}
	var loaded LoadLibraryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &loaded); err != nil {
		t.Fatalf("decode load response: %v", err)
	}
	if !loaded.Success {
		t.Fatalf("expected successful load, got %+v", loaded)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/session/"+created.SessionID+"/disassembly", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("disassembly: status %d body %s", rec.Code, rec.Body.String())
	}
	var dasm DisassemblyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &dasm); err != nil {
		t.Fatalf("decode disassembly: %v", err)
	}
	if len(dasm.Lines) != 2 {
		t.Fatalf("expected 2 disassembled lines, got %d", len(dasm.Lines))
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/session/"+created.SessionID+"/run", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("run: status %d body %s", rec.Code, rec.Body.String())
	}
	var regs RegistersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &regs); err != nil {
		t.Fatalf("decode registers: %v", err)
	}
	if !regs.St0 {
		t.Error("expected st0 true after run")
	}
	if !regs.A[0][0].Set || regs.A[0][0].Hex != "2a" {
		t.Errorf("expected a0[0]=0x2a, got %+v", regs.A[0][0])
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/v1/session/"+created.SessionID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("destroy session: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/session/"+created.SessionID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after destroy, got %d", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer()
	rec := doJSON(t, srv, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health: status %d", rec.Code)
	}
}

func TestBreakpointCRUD(t *testing.T) {
	srv := newTestServer()

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/session", SessionCreateRequest{})
	var created SessionCreateResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &created)

	raw := buildPutSuccLibraryBytes(t)
	doJSON(t, srv, http.MethodPost, "/api/v1/session/"+created.SessionID+"/load",
		LoadLibraryRequest{Code: hex.EncodeToString(raw), Entry: 0})

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/session/"+created.SessionID+"/breakpoint",
		BreakpointRequest{Offset: 3})
	if rec.Code != http.StatusOK {
		t.Fatalf("add breakpoint: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/session/"+created.SessionID+"/breakpoints", nil)
	var list BreakpointsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode breakpoints: %v", err)
	}
	if len(list.Breakpoints) != 1 || list.Breakpoints[0].Offset != 3 {
		t.Fatalf("unexpected breakpoints list: %+v", list.Breakpoints)
	}
}
