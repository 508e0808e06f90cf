// Package host models the application that loads the plugin: a global
// object that addons register themselves on, and a sync runner that hands
// out storage controllers.
package host

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrAlreadyRegistered = errors.New("addon instance already registered")
	ErrUnknownBackend    = errors.New("unknown storage backend")
)

// Host is the global object shared by every addon.
type Host struct {
	mu     sync.RWMutex
	addons map[string]any
	runner *Runner
}

func New(runner *Runner) *Host {
	return &Host{
		addons: map[string]any{},
		runner: runner,
	}
}

func (h *Host) SyncRunner() *Runner {
	return h.runner
}

// Register publishes an addon instance under name.
func (h *Host) Register(name string, instance any) error {
	if name == "" {
		return fmt.Errorf("addon instance name is required")
	}
	if instance == nil {
		return fmt.Errorf("addon instance %q is nil", name)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.addons[name]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}
	h.addons[name] = instance
	return nil
}

func (h *Host) Unregister(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.addons, name)
}

func (h *Host) Lookup(name string) (any, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	instance, ok := h.addons[name]
	return instance, ok
}

// Addons returns the registered instance names in sorted order.
func (h *Host) Addons() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.addons))
	for name := range h.addons {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
