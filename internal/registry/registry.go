// Package registry manages the vocabulary of component tags the compiler
// accepts: their prop schemas, tree-shape constraints, and the attribute
// allow-list the sanitizing parser is built from.
package registry

import (
	"strings"
	"sync"
	"time"

	"github.com/isleforge/isleforge/internal/types"
)

// ComponentRegistry manages all registered component definitions
type ComponentRegistry struct {
	components map[string]*types.ComponentRegistration
	// lower maps lowercase tag names back to the canonical registration,
	// because HTML parsing lowercases tag names.
	lower    map[string]*types.ComponentRegistration
	mutex    sync.RWMutex
	watchers []chan ComponentEvent
}

// ComponentEvent represents a change in the component registry
type ComponentEvent struct {
	Type      EventType
	Component *types.ComponentRegistration
	Timestamp time.Time
}

// EventType represents the type of component event
type EventType int

const (
	EventTypeAdded EventType = iota
	EventTypeUpdated
	EventTypeRemoved
)

// NewComponentRegistry creates an empty component registry
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		components: make(map[string]*types.ComponentRegistration),
		lower:      make(map[string]*types.ComponentRegistration),
		watchers:   make([]chan ComponentEvent, 0),
	}
}

// Register adds or updates a component in the registry
func (r *ComponentRegistry) Register(component *types.ComponentRegistration) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	eventType := EventTypeAdded
	if _, exists := r.components[component.Name]; exists {
		eventType = EventTypeUpdated
	}

	r.components[component.Name] = component
	r.lower[strings.ToLower(component.Name)] = component

	r.notify(ComponentEvent{
		Type:      eventType,
		Component: component,
		Timestamp: time.Now(),
	})
}

// Get retrieves a component by name. Lookup falls back to the lowercase
// form so tags surviving HTML parsing still resolve.
func (r *ComponentRegistry) Get(name string) (*types.ComponentRegistration, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if component, exists := r.components[name]; exists {
		return component, true
	}
	component, exists := r.lower[strings.ToLower(name)]
	return component, exists
}

// IsRegistered reports whether a tag names a registered component.
func (r *ComponentRegistry) IsRegistered(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// GetAll returns all registered components keyed by canonical name
func (r *ComponentRegistry) GetAll() map[string]*types.ComponentRegistration {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make(map[string]*types.ComponentRegistration, len(r.components))
	for name, component := range r.components {
		result[name] = component
	}
	return result
}

// Names returns the canonical names of all registered components.
func (r *ComponentRegistry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	return names
}

// Remove removes a component from the registry
func (r *ComponentRegistry) Remove(name string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	component, exists := r.components[name]
	if !exists {
		return
	}

	delete(r.components, name)
	delete(r.lower, strings.ToLower(name))

	r.notify(ComponentEvent{
		Type:      EventTypeRemoved,
		Component: component,
		Timestamp: time.Now(),
	})
}

// Replace swaps the entire registration set in one locked operation, used
// by the registry file watcher on reload.
func (r *ComponentRegistry) Replace(components []*types.ComponentRegistration) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.components = make(map[string]*types.ComponentRegistration, len(components))
	r.lower = make(map[string]*types.ComponentRegistration, len(components))
	for _, component := range components {
		r.components[component.Name] = component
		r.lower[strings.ToLower(component.Name)] = component
		r.notify(ComponentEvent{
			Type:      EventTypeUpdated,
			Component: component,
			Timestamp: time.Now(),
		})
	}
}

// Count returns the number of registered components
func (r *ComponentRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.components)
}

// Watch returns a channel that receives component events
func (r *ComponentRegistry) Watch() <-chan ComponentEvent {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan ComponentEvent, 100)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it
func (r *ComponentRegistry) UnWatch(ch <-chan ComponentEvent) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

// notify must be called with the mutex held.
func (r *ComponentRegistry) notify(event ComponentEvent) {
	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}
