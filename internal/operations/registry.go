package operations

import (
	"fmt"
	"sync"
)

// Registry manages registered pipeline steps
type Registry struct {
	mu    sync.RWMutex
	steps map[string]Step
	order []string // Maintains registration order
}

// NewRegistry creates a new Step registry
func NewRegistry() *Registry {
	return &Registry{
		steps: make(map[string]Step),
		order: make([]string, 0),
	}
}

// Register adds steps to the registry
func (r *Registry) Register(steps ...Step) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, step := range steps {
		if step == nil {
			return fmt.Errorf("cannot register nil step")
		}
		id := step.ID()
		if id == "" {
			return fmt.Errorf("step ID cannot be empty")
		}
		if _, exists := r.steps[id]; exists {
			return fmt.Errorf("step with ID %s already registered", id)
		}
		r.steps[id] = step
		r.order = append(r.order, id)
	}
	return nil
}

// Get retrieves a Step by ID
func (r *Registry) Get(id string) (Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	step, exists := r.steps[id]
	if !exists {
		return nil, NewNotFoundError(id)
	}
	return step, nil
}

// Has checks if a Step is registered
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.steps[id]
	return exists
}

// ListIDs returns all registered Step IDs in registration order
func (r *Registry) ListIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// GetDependencyOrder returns every step ordered by dependencies
func (r *Registry) GetDependencyOrder() ([]Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.orderLocked(r.order)
}

// Plan returns the requested steps plus everything they depend on, ordered
// by dependencies. An empty request plans every registered step.
func (r *Registry) Plan(ids []string) ([]Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(ids) == 0 {
		return r.orderLocked(r.order)
	}

	needed := make(map[string]bool)
	var visit func(id string) error
	visit = func(id string) error {
		if needed[id] {
			return nil
		}
		step, ok := r.steps[id]
		if !ok {
			return NewNotFoundError(id)
		}
		needed[id] = true
		for _, dep := range step.GetDependencies() {
			if err := visit(dep); err != nil {
				return err
			}
		}
		return nil
	}
	for _, id := range ids {
		if err := visit(id); err != nil {
			return nil, err
		}
	}

	subset := make([]string, 0, len(needed))
	for _, id := range r.order {
		if needed[id] {
			subset = append(subset, id)
		}
	}
	return r.orderLocked(subset)
}

// orderLocked sorts ids topologically with Kahn's algorithm. Steps that
// become ready together run in registration order.
func (r *Registry) orderLocked(ids []string) ([]Step, error) {
	inSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		inSet[id] = true
	}

	graph := make(map[string][]string)
	inDegree := make(map[string]int)
	for _, id := range ids {
		for _, dep := range r.steps[id].GetDependencies() {
			if _, exists := r.steps[dep]; !exists {
				return nil, fmt.Errorf("step %s depends on non-existent step %s", id, dep)
			}
			if !inSet[dep] {
				continue
			}
			graph[dep] = append(graph[dep], id)
			inDegree[id]++
		}
	}

	ready := make(map[string]bool)
	for _, id := range ids {
		if inDegree[id] == 0 {
			ready[id] = true
		}
	}

	ordered := make([]Step, 0, len(ids))
	done := make(map[string]bool, len(ids))
	for len(ordered) < len(ids) {
		next := ""
		for _, id := range ids {
			if ready[id] && !done[id] {
				next = id
				break
			}
		}
		if next == "" {
			return nil, fmt.Errorf("dependency cycle detected")
		}
		done[next] = true
		ordered = append(ordered, r.steps[next])
		for _, dependent := range graph[next] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				ready[dependent] = true
			}
		}
	}
	return ordered, nil
}

// GetDependents returns the registered steps that depend on stepID
func (r *Registry) GetDependents(stepID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var dependents []string
	for _, id := range r.order {
		for _, dep := range r.steps[id].GetDependencies() {
			if dep == stepID {
				dependents = append(dependents, id)
				break
			}
		}
	}
	return dependents
}
