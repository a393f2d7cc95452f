package service

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/aluvm/aluvm/config"
	"github.com/aluvm/aluvm/encoder"
	"github.com/aluvm/aluvm/vm"
)

var (
	// ErrLibraryNotLoaded: a session operation referenced a library id the
	// session never loaded.
	ErrLibraryNotLoaded = errors.New("service: library not loaded")

	// ErrNoEntryPoint: Step/Continue/Run was called before LoadEntry.
	ErrNoEntryPoint = errors.New("service: no entry point set")

	// ErrBreakpointNotFound: RemoveBreakpoint/SetBreakpointEnabled
	// referenced an unknown id.
	ErrBreakpointNotFound = errors.New("service: breakpoint not found")
)

var serviceLog *log.Logger

func init() {
	if os.Getenv("ALUVM_DEBUG") != "" {
		// Note: file handle intentionally kept open for the process
		// lifetime; the OS reclaims it on exit.
		logPath := filepath.Join(os.TempDir(), "aluvm-service-debug.log")
		f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600) // #nosec G304 -- fixed filename in temp dir
		if err != nil {
			serviceLog = log.New(os.Stderr, "SERVICE: ", log.Ltime|log.Lmicroseconds)
		} else {
			serviceLog = log.New(f, "SERVICE: ", log.Ltime|log.Lmicroseconds)
		}
	} else {
		serviceLog = log.New(io.Discard, "", 0)
	}
}

// ConditionEvaluator evaluates a breakpoint's watch-expression against the
// live register file. Session ships without a grammar of its own (spec has
// no watch-expression concept); package debugger wires its own evaluator in
// via SetConditionEvaluator, keeping that dependency one-directional.
type ConditionEvaluator func(rf *vm.RegisterFile, expr string) (bool, error)

// Session is a debugging session over a set of loaded libraries. It wraps
// vm.StepOne/vm.Run the way the teacher's DebuggerService wraps its ARM
// CPU, adding breakpoints, single-stepping, run-to-completion, and a
// bounded execution history for backward inspection.
type Session struct {
	mu sync.RWMutex

	cfg *config.Config

	libraries map[vm.LibID]*vm.Library
	regs      *vm.RegisterFile

	entry   vm.LibrarySite
	current vm.LibrarySite
	hasSite bool

	state    ExecutionState
	running  bool
	haltErr  error
	evalCond ConditionEvaluator

	breakpoints map[int]*BreakpointInfo
	nextBPID    int

	history []HistoryEntry
}

// NewSession builds an empty session using cfg's complexity ceiling and
// debugger history size.
func NewSession(cfg *config.Config) *Session {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Session{
		cfg:         cfg,
		libraries:   make(map[vm.LibID]*vm.Library),
		regs:        vm.NewRegisterFile(),
		state:       StateHalted,
		breakpoints: make(map[int]*BreakpointInfo),
	}
}

// SetConditionEvaluator installs the watch-expression evaluator conditional
// breakpoints use; nil disables conditions (every breakpoint behaves as
// unconditional).
func (s *Session) SetConditionEvaluator(fn ConditionEvaluator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evalCond = fn
}

// LoadLibrary registers a library so it can be entered directly or resolved
// as a call/exec target. Re-loading the same id overwrites the prior copy
// (content-addressed identity means this is only ever a no-op or a bug).
func (s *Session) LoadLibrary(lib *vm.Library) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.libraries[lib.Id()] = lib
	serviceLog.Printf("loaded library %s (%d code bytes)", lib.Id(), len(lib.Code))
}

// LoadEntry sets the session's entry point and resets the register file to
// its initial state (spec §4.6 step 1: st0=true, everything else unset).
func (s *Session) LoadEntry(site vm.LibrarySite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.libraries[site.Lib]; !ok {
		return ErrLibraryNotLoaded
	}
	s.entry = site
	s.current = site
	s.hasSite = true
	s.regs = vm.NewRegisterFile()
	s.state = StateHalted
	s.running = false
	s.haltErr = nil
	s.history = s.history[:0]
	return nil
}

// Reset rewinds the session back to its entry point without forgetting
// loaded libraries or breakpoints.
func (s *Session) Reset() error {
	s.mu.Lock()
	entry, hasSite := s.entry, s.hasSite
	s.mu.Unlock()
	if !hasSite {
		return ErrNoEntryPoint
	}
	return s.LoadEntry(entry)
}

// GetRegisterState returns a snapshot of the live register file.
func (s *Session) GetRegisterState() RegisterState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SnapshotRegisters(s.regs)
}

// GetExecutionState reports the session's current state.
func (s *Session) GetExecutionState() ExecutionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// GetCurrentSite returns the site execution is paused at.
func (s *Session) GetCurrentSite() (vm.LibrarySite, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.hasSite
}

// IsRunning reports whether a Continue loop is actively executing.
func (s *Session) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// GetCallStack returns the live call stack, most recent call last.
func (s *Session) GetCallStack() []CallStackEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cs := s.regs.CallStack()
	out := make([]CallStackEntry, len(cs))
	for i, c := range cs {
		out[i] = CallStackEntry{Lib: c.Lib, Offset: c.Offset}
	}
	return out
}

// GetHistory returns the bounded execution trace collected so far.
func (s *Session) GetHistory() []HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]HistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}

// GetDisassembly disassembles a loaded library's code segment (package
// encoder), the session's entry point to static disassembly.
func (s *Session) GetDisassembly(lib vm.LibID) ([]DisassemblyLine, error) {
	s.mu.RLock()
	l, ok := s.libraries[lib]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrLibraryNotLoaded
	}
	lines, err := encoder.Disassemble(l)
	if err != nil {
		return nil, err
	}
	out := make([]DisassemblyLine, len(lines))
	for i, ln := range lines {
		out[i] = DisassemblyLine{Lib: lib, Offset: ln.Offset, Mnemonic: ln.Mnemonic, Operands: ln.Operands}
	}
	return out, nil
}

// AddBreakpoint registers a breakpoint at site and returns its id.
func (s *Session) AddBreakpoint(site vm.LibrarySite, condition string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextBPID++
	id := s.nextBPID
	s.breakpoints[id] = &BreakpointInfo{ID: id, Site: site, Enabled: true, Condition: condition}
	return id
}

// RemoveBreakpoint deletes a breakpoint by id.
func (s *Session) RemoveBreakpoint(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.breakpoints[id]; !ok {
		return ErrBreakpointNotFound
	}
	delete(s.breakpoints, id)
	return nil
}

// SetBreakpointEnabled toggles a breakpoint without removing it.
func (s *Session) SetBreakpointEnabled(id int, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bp, ok := s.breakpoints[id]
	if !ok {
		return ErrBreakpointNotFound
	}
	bp.Enabled = enabled
	return nil
}

// ListBreakpoints returns every registered breakpoint.
func (s *Session) ListBreakpoints() []BreakpointInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]BreakpointInfo, 0, len(s.breakpoints))
	for _, bp := range s.breakpoints {
		out = append(out, *bp)
	}
	return out
}

// breakpointAt reports the first enabled, condition-satisfied breakpoint at
// site, if any. Caller must hold s.mu.
func (s *Session) breakpointAt(site vm.LibrarySite) *BreakpointInfo {
	for _, bp := range s.breakpoints {
		if !bp.Enabled || bp.Site != site {
			continue
		}
		if bp.Condition == "" || s.evalCond == nil {
			return bp
		}
		ok, err := s.evalCond(s.regs, bp.Condition)
		if err == nil && ok {
			return bp
		}
	}
	return nil
}

// resolve looks up a library by id among those this session has loaded,
// the collaborator vm.Run needs to cross a call/exec boundary.
func (s *Session) resolve(id vm.LibID) (*vm.Library, bool) {
	lib, ok := s.libraries[id]
	return lib, ok
}

func (s *Session) recordStep(result vm.OneStepResult) {
	s.history = append(s.history, HistoryEntry{Site: result.Site, Ca0: s.regs.Ca0})
	limit := s.cfg.Debugger.HistorySize
	if limit > 0 && len(s.history) > limit {
		s.history = s.history[len(s.history)-limit:]
	}
}

// Step executes exactly one instruction, following a single call/exec
// cross-library transfer if that is what the instruction does, and pausing
// at the landing site. This mirrors the teacher's one-command-per-line
// debugger Step, generalized from one flat address space to LibrarySites.
func (s *Session) Step() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stepLocked()
}

func (s *Session) stepLocked() error {
	if !s.hasSite {
		return ErrNoEntryPoint
	}
	lib, ok := s.libraries[s.current.Lib]
	if !ok {
		s.state = StateError
		s.haltErr = ErrLibraryNotLoaded
		return ErrLibraryNotLoaded
	}

	result := vm.StepOne(lib, s.current.Offset, s.regs, nil, s.cfg.Execution.ComplexityCeiling)
	s.recordStep(result)
	serviceLog.Printf("step at %s -> halted=%v crossed=%v", s.current, result.Halted, result.Crossed != nil)

	switch {
	case result.Halted:
		s.state = StateHalted
		s.running = false
		return nil
	case result.Crossed != nil:
		if _, ok := s.libraries[result.Crossed.Lib]; !ok {
			s.state = StateError
			s.running = false
			s.haltErr = ErrLibraryNotLoaded
			return ErrLibraryNotLoaded
		}
		s.current = *result.Crossed
	default:
		s.current = vm.LibrarySite{Lib: s.current.Lib, Offset: result.NextPos}
	}

	if bp := s.breakpointAt(s.current); bp != nil {
		s.state = StateBreakpoint
		s.running = false
		return nil
	}
	s.state = StateRunning
	return nil
}

// Continue repeatedly steps until the session halts, hits an enabled
// breakpoint, or Pause is called from another goroutine. It returns the
// state execution stopped in.
func (s *Session) Continue() (ExecutionState, error) {
	s.mu.Lock()
	if !s.hasSite {
		s.mu.Unlock()
		return StateError, ErrNoEntryPoint
	}
	s.running = true
	s.mu.Unlock()

	for {
		s.mu.Lock()
		if !s.running {
			s.state = StateHalted
			st := s.state
			s.mu.Unlock()
			return st, nil
		}
		err := s.stepLocked()
		state := s.state
		s.mu.Unlock()
		if err != nil {
			return StateError, err
		}
		if state != StateRunning {
			return state, nil
		}
	}
}

// Pause stops an in-flight Continue loop at its next step boundary.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

// Run drives vm.Run to completion across library boundaries without
// per-step breakpoint checks or history recording, for callers that only
// want the final outcome (e.g. a non-interactive CLI `run` subcommand).
func (s *Session) Run() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasSite {
		return ErrNoEntryPoint
	}
	err := vm.Run(s.entry, s.resolve, s.regs, nil, s.cfg.Execution.ComplexityCeiling)
	if err != nil {
		s.state = StateError
		s.haltErr = err
		return err
	}
	s.state = StateHalted
	return nil
}

// LastError returns the error Run/Continue/Step last failed with, if any.
func (s *Session) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.haltErr
}

// String renders a one-line session status, handy for CLI/log output.
func (s *Session) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fmt.Sprintf("session state=%s site=%s st0=%v ca0=%d", s.state, s.current, s.regs.St0, s.regs.Ca0)
}
