package pricing

import (
	"fmt"
	"sort"
	"sync"

	"github.com/katalvlaran/lattix/models/european"
)

// Registry maps model names to Models. Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	models map[string]Model
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]Model)}
}

// Default returns a registry holding europeanPut, europeanCall and mortgage.
func Default() *Registry {
	r := NewRegistry()
	for _, m := range []Model{
		NewEuropean(european.Put),
		NewEuropean(european.Call),
		NewMortgage(),
	} {
		r.MustRegister(m)
	}

	return r
}

// MustRegister is Register for static tables; it panics on a duplicate name.
func (r *Registry) MustRegister(m Model) {
	if err := r.Register(m); err != nil {
		panic(err)
	}
}

// Register adds m under m.Name().
// Errors: ErrDuplicateModel.
func (r *Registry) Register(m Model) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.models[m.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateModel, m.Name())
	}
	r.models[m.Name()] = m

	return nil
}

// Get returns the model registered under name.
// Errors: ErrUnknownModel.
func (r *Registry) Get(name string) (Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.models[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}

	return m, nil
}

// Names returns the registered names in ascending order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
