package server

import (
	"sync"
	"time"
)

// ComponentStatus is the health of one component.
type ComponentStatus struct {
	Healthy   bool      `json:"healthy"`
	LastCheck time.Time `json:"last_check"`
	Message   string    `json:"message,omitempty"`
}

// Health tracks the health of the server's components (catalog, llm).
type Health struct {
	mu         sync.RWMutex
	components map[string]ComponentStatus
}

// NewHealth creates a new health tracker.
func NewHealth() *Health {
	return &Health{components: make(map[string]ComponentStatus)}
}

// SetHealthy marks a component as healthy.
func (h *Health) SetHealthy(component, message string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.components[component] = ComponentStatus{
		Healthy:   true,
		LastCheck: time.Now(),
		Message:   message,
	}
}

// SetUnhealthy marks a component as unhealthy.
func (h *Health) SetUnhealthy(component string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.components[component] = ComponentStatus{
		Healthy:   false,
		LastCheck: time.Now(),
		Message:   err.Error(),
	}
}

// Snapshot returns a copy of all component statuses and whether every
// component is healthy.
func (h *Health) Snapshot() (map[string]ComponentStatus, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]ComponentStatus, len(h.components))
	ok := true
	for name, status := range h.components {
		out[name] = status
		if !status.Healthy {
			ok = false
		}
	}
	return out, ok
}
