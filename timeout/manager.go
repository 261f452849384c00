package timeout

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kbukum/guardrail/logger"
)

// Manager tracks many independent named deadlines. Each deadline fires its
// callback exactly once unless cleared first. Extend restarts a pending
// deadline with the time remaining plus the extra duration, so already
// elapsed time is preserved.
type Manager struct {
	mu      sync.Mutex
	log     *logger.Logger
	handles map[string]*handle
}

type handle struct {
	timer    *time.Timer
	deadline time.Time
	duration time.Duration
	onExpire func()
}

// NewManager creates a Manager. A nil logger falls back to the package default.
func NewManager(log *logger.Logger) *Manager {
	return &Manager{
		log:     logger.OrDefault(log).WithComponent("timeout"),
		handles: make(map[string]*handle),
	}
}

// Create registers a named deadline that calls onExpire when it fires.
// Creating an id that already exists replaces the pending deadline.
func (m *Manager) Create(id string, d time.Duration, onExpire func()) {
	if d <= 0 {
		d = DefaultTimeout
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.handles[id]; ok {
		old.timer.Stop()
	}

	h := &handle{
		deadline: time.Now().Add(d),
		duration: d,
		onExpire: onExpire,
	}
	h.timer = time.AfterFunc(d, func() { m.expire(id, h) })
	m.handles[id] = h
}

// Clear cancels a pending deadline. Returns false if id is not active.
func (m *Manager) Clear(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.handles[id]
	if !ok {
		return false
	}
	h.timer.Stop()
	delete(m.handles, id)
	return true
}

// Extend pushes out a pending deadline by extra. The new deadline is the
// remaining time plus extra, so elapsed time is not lost. Returns an error
// if id is not active (it may already have fired).
func (m *Manager) Extend(id string, extra time.Duration) error {
	if extra <= 0 {
		return fmt.Errorf("extend %q: extra duration must be positive", id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.handles[id]
	if !ok {
		return fmt.Errorf("extend %q: no active deadline", id)
	}

	remaining := time.Until(h.deadline)
	if remaining < 0 {
		remaining = 0
	}
	next := remaining + extra

	h.timer.Stop()
	h.deadline = time.Now().Add(next)
	h.duration += extra
	h.timer = time.AfterFunc(next, func() { m.expire(id, h) })

	m.log.Debug("deadline extended", logger.Fields(
		logger.FieldLabel, id,
		logger.FieldTimeout, next.Milliseconds(),
	))
	return nil
}

// Active returns the ids of all pending deadlines, sorted.
func (m *Manager) Active() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.handles))
	for id := range m.handles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Stop cancels all pending deadlines without firing their callbacks.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, h := range m.handles {
		h.timer.Stop()
		delete(m.handles, id)
	}
}

// expire runs on the timer goroutine when a deadline fires.
func (m *Manager) expire(id string, h *handle) {
	m.mu.Lock()
	// The handle may have been cleared or replaced between the timer firing
	// and this lock being acquired. Only the current handle may expire.
	if cur, ok := m.handles[id]; !ok || cur != h {
		m.mu.Unlock()
		return
	}
	delete(m.handles, id)
	m.mu.Unlock()

	m.log.Debug("deadline expired", logger.Fields(
		logger.FieldLabel, id,
		logger.FieldTimeout, h.duration.Milliseconds(),
	))

	if h.onExpire != nil {
		h.onExpire()
	}
}
