// Package debugger implements an interactive command layer over a
// service.Session: breakpoints, watchpoints, step/continue control, and
// register/disassembly inspection, driven either from a line-oriented REPL
// (interface.go) or a tview-based TUI (tui.go).
package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aluvm/aluvm/service"
	"github.com/aluvm/aluvm/vm"
)

// Debugger is the command-dispatch layer over a session, the AluVM
// counterpart of the teacher's Debugger wrapping an ARM *vm.VM directly:
// here state lives in service.Session (register file, breakpoints,
// execution control) and Debugger adds the REPL-facing concerns the
// session itself has no notion of (watchpoints, command history, output
// buffering).
type Debugger struct {
	Session     *service.Session
	Watchpoints *WatchpointManager
	History     *CommandHistory

	LastCommand string
	Output      strings.Builder
}

// NewDebugger creates a new debugger instance over session.
func NewDebugger(session *service.Session) *Debugger {
	d := &Debugger{
		Session:     session,
		Watchpoints: NewWatchpointManager(),
		History:     NewCommandHistory(),
	}
	session.SetConditionEvaluator(EvaluateWatch)
	return d
}

// ExecuteCommand processes and executes a debugger command line.
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)
	if cmdLine == "" {
		cmdLine = d.LastCommand
	}
	if cmdLine != "" {
		d.History.Add(cmdLine)
		d.LastCommand = cmdLine
	}

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return nil
	}
	return d.handleCommand(strings.ToLower(parts[0]), parts[1:])
}

func (d *Debugger) handleCommand(cmd string, args []string) error {
	switch cmd {
	case "run", "r":
		return d.cmdRun(args)
	case "continue", "c":
		return d.cmdContinue(args)
	case "step", "s", "si":
		return d.cmdStep(args)
	case "break", "b":
		return d.cmdBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "enable":
		return d.cmdEnable(args)
	case "disable":
		return d.cmdDisable(args)
	case "watch", "w":
		return d.cmdWatch(args)
	case "unwatch":
		return d.cmdUnwatch(args)
	case "print", "p":
		return d.cmdPrint(args)
	case "info", "i":
		return d.cmdInfo(args)
	case "backtrace", "bt", "where":
		return d.cmdBacktrace(args)
	case "list", "l":
		return d.cmdList(args)
	case "reset":
		return d.cmdReset(args)
	case "help", "h", "?":
		return d.cmdHelp(args)
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

// GetOutput returns and clears the output buffer.
func (d *Debugger) GetOutput() string {
	out := d.Output.String()
	d.Output.Reset()
	return out
}

// Printf writes formatted output to the output buffer.
func (d *Debugger) Printf(format string, args ...interface{}) {
	fmt.Fprintf(&d.Output, format, args...)
}

// Println writes a line to the output buffer.
func (d *Debugger) Println(args ...interface{}) {
	fmt.Fprintln(&d.Output, args...)
}

// parseSite parses a breakpoint/watch target: a bare hex offset ("1a")
// applies to the library execution is currently paused in; "<libid>:<hex
// offset>" names an explicit library.
func (d *Debugger) parseSite(s string) (vm.LibrarySite, error) {
	if idx := strings.IndexByte(s, ':'); idx >= 0 {
		libHex, offHex := s[:idx], s[idx+1:]
		raw, err := parseHexBytes(libHex)
		if err != nil || len(raw) != vm.LibIDSize {
			return vm.LibrarySite{}, fmt.Errorf("bad library id %q", libHex)
		}
		var id vm.LibID
		copy(id[:], raw)
		off, err := strconv.ParseUint(offHex, 16, 16)
		if err != nil {
			return vm.LibrarySite{}, fmt.Errorf("bad offset %q", offHex)
		}
		return vm.LibrarySite{Lib: id, Offset: uint16(off)}, nil
	}

	site, ok := d.Session.GetCurrentSite()
	if !ok {
		return vm.LibrarySite{}, fmt.Errorf("no current library; use <libid>:<offset>")
	}
	off, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return vm.LibrarySite{}, fmt.Errorf("bad offset %q", s)
	}
	site.Offset = uint16(off)
	return site, nil
}

func parseHexBytes(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("odd-length hex string")
	}
	out := make([]byte, len(s)/2)
	for i := range out {
		v, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return nil, err
		}
		out[i] = byte(v)
	}
	return out, nil
}

func (d *Debugger) cmdRun(args []string) error {
	if err := d.Session.Reset(); err != nil {
		return err
	}
	d.Println("Starting execution...")
	return d.runLoop()
}

func (d *Debugger) cmdContinue(args []string) error {
	if d.Session.GetExecutionState() == service.StateHalted {
		return fmt.Errorf("program is not running")
	}
	d.Println("Continuing...")
	return d.runLoop()
}

func (d *Debugger) runLoop() error {
	state, err := d.Session.Continue()
	if err != nil {
		return err
	}
	site, _ := d.Session.GetCurrentSite()
	switch state {
	case service.StateHalted:
		d.Printf("Program halted at %s\n", site)
	case service.StateBreakpoint:
		d.Printf("Stopped at breakpoint, site %s\n", site)
	case service.StateError:
		d.Printf("Runtime error: %v\n", d.Session.LastError())
	}
	return nil
}

func (d *Debugger) cmdStep(args []string) error {
	if err := d.Session.Step(); err != nil {
		return err
	}
	site, _ := d.Session.GetCurrentSite()
	d.Printf("Stepped to %s (%s)\n", site, d.Session.GetExecutionState())
	return nil
}

func (d *Debugger) cmdBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: break <offset|libid:offset> [if <condition>]")
	}
	site, err := d.parseSite(args[0])
	if err != nil {
		return err
	}
	var condition string
	if len(args) > 1 && strings.ToLower(args[1]) == "if" {
		condition = strings.Join(args[2:], " ")
	}
	id := d.Session.AddBreakpoint(site, condition)
	if condition != "" {
		d.Printf("Breakpoint %d at %s (condition: %s)\n", id, site, condition)
	} else {
		d.Printf("Breakpoint %d at %s\n", id, site)
	}
	return nil
}

func (d *Debugger) cmdDelete(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: delete <id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("bad breakpoint id %q", args[0])
	}
	if err := d.Session.RemoveBreakpoint(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d deleted\n", id)
	return nil
}

func (d *Debugger) cmdEnable(args []string) error {
	return d.setBreakpointEnabled(args, true)
}

func (d *Debugger) cmdDisable(args []string) error {
	return d.setBreakpointEnabled(args, false)
}

func (d *Debugger) setBreakpointEnabled(args []string, enabled bool) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: enable|disable <id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("bad breakpoint id %q", args[0])
	}
	return d.Session.SetBreakpointEnabled(id, enabled)
}

func (d *Debugger) cmdWatch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: watch <ref>")
	}
	wp, err := d.Watchpoints.AddWatchpoint(args[0])
	if err != nil {
		return err
	}
	d.Printf("Watchpoint %d on %s\n", wp.ID, wp.Expr)
	return nil
}

func (d *Debugger) cmdUnwatch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: unwatch <id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("bad watchpoint id %q", args[0])
	}
	return d.Watchpoints.DeleteWatchpoint(id)
}

func (d *Debugger) cmdPrint(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: print <ref>")
	}
	snap := d.Session.GetRegisterState()
	ref, err := ParseRegRef(args[0])
	if err != nil {
		switch args[0] {
		case "st0":
			d.Printf("st0 = %v\n", snap.St0)
			return nil
		case "cy0":
			d.Printf("cy0 = %d\n", snap.Cy0)
			return nil
		case "ca0":
			d.Printf("ca0 = %d\n", snap.Ca0)
			return nil
		}
		return err
	}
	hex, set := refHex(snap, ref)
	if !set {
		d.Printf("%s = <unset>\n", args[0])
		return nil
	}
	d.Printf("%s = 0x%s\n", args[0], hex)
	return nil
}

func (d *Debugger) cmdInfo(args []string) error {
	if len(args) == 0 || args[0] == "registers" || args[0] == "r" {
		d.printRegisters()
		return nil
	}
	if args[0] == "breakpoints" {
		for _, bp := range d.Session.ListBreakpoints() {
			d.Printf("breakpoint %d at %s enabled=%v cond=%q\n", bp.ID, bp.Site, bp.Enabled, bp.Condition)
		}
		return nil
	}
	if args[0] == "watchpoints" {
		for _, wp := range d.Watchpoints.GetAllWatchpoints() {
			d.Printf("watchpoint %d on %s enabled=%v hits=%d\n", wp.ID, wp.Expr, wp.Enabled, wp.HitCount)
		}
		return nil
	}
	return fmt.Errorf("usage: info [registers|breakpoints|watchpoints]")
}

func (d *Debugger) printRegisters() {
	snap := d.Session.GetRegisterState()
	d.Printf("st0=%v cy0=%d ca0=%d\n", snap.St0, snap.Cy0, snap.Ca0)
	for bank := 0; bank < RegisterViewBanks; bank++ {
		for idx := 0; idx < RegisterGroupSize; idx++ {
			if sv := snap.A[bank][idx]; sv.Set {
				d.Printf("a%d[%d]=0x%s ", bank, idx, sv.Hex)
			}
		}
	}
	d.Println()
}

func (d *Debugger) cmdBacktrace(args []string) error {
	stack := d.Session.GetCallStack()
	if len(stack) == 0 {
		d.Println("(empty call stack)")
		return nil
	}
	for i := len(stack) - 1; i >= 0; i-- {
		d.Printf("#%d %s:%04x\n", len(stack)-1-i, stack[i].Lib, stack[i].Offset)
	}
	return nil
}

func (d *Debugger) cmdList(args []string) error {
	site, ok := d.Session.GetCurrentSite()
	if !ok {
		return fmt.Errorf("no current library")
	}
	lines, err := d.Session.GetDisassembly(site.Lib)
	if err != nil {
		return err
	}
	for _, ln := range lines {
		marker := "  "
		if ln.Offset == site.Offset {
			marker = "->"
		}
		d.Printf("%s %04x: %s %s\n", marker, ln.Offset, ln.Mnemonic, ln.Operands)
	}
	return nil
}

func (d *Debugger) cmdReset(args []string) error {
	if err := d.Session.Reset(); err != nil {
		return err
	}
	d.Println("Session reset to entry point")
	return nil
}

func (d *Debugger) cmdHelp(args []string) error {
	d.Println("run/r, continue/c, step/s, break/b <offset> [if <cond>], delete/d <id>,")
	d.Println("enable/disable <id>, watch/w <ref>, unwatch <id>, print/p <ref>,")
	d.Println("info/i [registers|breakpoints|watchpoints], backtrace/bt, list/l, reset, help")
	return nil
}
