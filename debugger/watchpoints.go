package debugger

import (
	"fmt"
	"sync"

	"github.com/aluvm/aluvm/service"
	"github.com/aluvm/aluvm/vm"
)

// Watchpoint monitors a single register slot for value changes (spec §3's
// register banks are the only mutable state this VM has — no flat memory
// to watch by address, unlike the teacher's ARM memory watchpoints).
type Watchpoint struct {
	ID        int
	Expr      string // the raw watch expression, e.g. "a0[3]"
	Ref       vm.RegRef
	Enabled   bool
	LastHex   string
	LastSet   bool
	HitCount  int
}

// WatchpointManager manages all watchpoints for a session.
type WatchpointManager struct {
	mu          sync.RWMutex
	watchpoints map[int]*Watchpoint
	nextID      int
}

// NewWatchpointManager creates a new watchpoint manager.
func NewWatchpointManager() *WatchpointManager {
	return &WatchpointManager{
		watchpoints: make(map[int]*Watchpoint),
		nextID:      1,
	}
}

// AddWatchpoint registers a watchpoint on expr, a bare register reference
// (e.g. "a0[3]", "s[7]"), and returns it.
func (wm *WatchpointManager) AddWatchpoint(expr string) (*Watchpoint, error) {
	ref, err := ParseRegRef(expr)
	if err != nil {
		return nil, err
	}
	wm.mu.Lock()
	defer wm.mu.Unlock()
	wp := &Watchpoint{ID: wm.nextID, Expr: expr, Ref: ref, Enabled: true}
	wm.watchpoints[wp.ID] = wp
	wm.nextID++
	return wp, nil
}

// DeleteWatchpoint removes a watchpoint by ID.
func (wm *WatchpointManager) DeleteWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	if _, ok := wm.watchpoints[id]; !ok {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	delete(wm.watchpoints, id)
	return nil
}

// SetEnabled toggles a watchpoint by ID.
func (wm *WatchpointManager) SetEnabled(id int, enabled bool) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	wp, ok := wm.watchpoints[id]
	if !ok {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	wp.Enabled = enabled
	return nil
}

// GetAllWatchpoints returns every registered watchpoint.
func (wm *WatchpointManager) GetAllWatchpoints() []*Watchpoint {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	out := make([]*Watchpoint, 0, len(wm.watchpoints))
	for _, wp := range wm.watchpoints {
		out = append(out, wp)
	}
	return out
}

// Check inspects every enabled watchpoint against the live session and
// returns the first whose value changed since the last Check.
func (wm *WatchpointManager) Check(snap service.RegisterState) (*Watchpoint, bool) {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	for _, wp := range wm.watchpoints {
		if !wp.Enabled {
			continue
		}
		hex, set := refHex(snap, wp.Ref)
		if hex != wp.LastHex || set != wp.LastSet {
			wp.HitCount++
			wp.LastHex, wp.LastSet = hex, set
			return wp, true
		}
	}
	return nil, false
}

// Clear removes all watchpoints.
func (wm *WatchpointManager) Clear() {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	wm.watchpoints = make(map[int]*Watchpoint)
}

// Count returns the number of watchpoints.
func (wm *WatchpointManager) Count() int {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	return len(wm.watchpoints)
}
