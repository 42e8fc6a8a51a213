package server

import (
	"sort"
	"sync"
	"time"
)

// ComponentStatus is the last observed state of one collaborator.
type ComponentStatus struct {
	Healthy     bool      `json:"healthy"`
	LastCheck   time.Time `json:"last_check"`
	LastSuccess time.Time `json:"last_success,omitzero"`
	Message     string    `json:"message,omitempty"`
	Failures    int       `json:"failures"`
	lastErr     error
}

// Health tracks the collaborators the API depends on.
type Health struct {
	mu         sync.RWMutex
	components map[string]*ComponentStatus
	now        func() time.Time
}

// NewHealth creates a new health tracker.
func NewHealth() *Health {
	return &Health{
		components: make(map[string]*ComponentStatus),
		now:        time.Now,
	}
}

func (h *Health) component(name string) *ComponentStatus {
	st, ok := h.components[name]
	if !ok {
		st = &ComponentStatus{}
		h.components[name] = st
	}
	return st
}

// SetHealthy records a successful check of a component.
func (h *Health) SetHealthy(name, message string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	st := h.component(name)
	st.Healthy = true
	st.LastCheck = now
	st.LastSuccess = now
	st.Message = message
	st.Failures = 0
	st.lastErr = nil
}

// SetUnhealthy records a failed check of a component.
func (h *Health) SetUnhealthy(name string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	st := h.component(name)
	st.Healthy = false
	st.LastCheck = h.now()
	st.Message = err.Error()
	st.Failures++
	st.lastErr = err
}

// Status returns a copy of a component's status, or nil when it was never
// checked.
func (h *Health) Status(name string) *ComponentStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	st, ok := h.components[name]
	if !ok {
		return nil
	}
	cp := *st
	return &cp
}

// LastError returns the error of a component's last failed check.
func (h *Health) LastError(name string) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if st, ok := h.components[name]; ok {
		return st.lastErr
	}
	return nil
}

// Snapshot returns copies of every component status.
func (h *Health) Snapshot() map[string]ComponentStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]ComponentStatus, len(h.components))
	for name, st := range h.components {
		out[name] = *st
	}
	return out
}

// Unhealthy returns the sorted names of failing components.
func (h *Health) Unhealthy() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var names []string
	for name, st := range h.components {
		if !st.Healthy {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// IsOverallHealthy reports whether every component is healthy.
func (h *Health) IsOverallHealthy() bool {
	return len(h.Unhealthy()) == 0
}
