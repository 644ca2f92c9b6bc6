package concepts

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateConcept is returned when a concept name is registered twice.
	ErrDuplicateConcept = errors.New("concept already registered")

	// ErrConceptNotFound is returned when a concept name is not known.
	ErrConceptNotFound = errors.New("concept not found")
)

// Registry holds concepts in registration order and rejects duplicate names.
type Registry struct {
	ordered []*Concept
	byName  map[string]*Concept
}

// NewRegistry creates a registry holding the given concepts.
func NewRegistry(cs ...*Concept) (*Registry, error) {
	r := &Registry{byName: make(map[string]*Concept)}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register validates and adds a concept. Keyword surfaces are normalized to
// lower case.
func (r *Registry) Register(c *Concept) error {
	if c == nil {
		return fmt.Errorf("concept must not be nil")
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if _, exists := r.byName[c.Name]; exists {
		return fmt.Errorf("concept %q: %w", c.Name, ErrDuplicateConcept)
	}
	c.normalize()
	r.ordered = append(r.ordered, c)
	r.byName[c.Name] = c
	return nil
}

// Get returns the concept with the given name.
func (r *Registry) Get(name string) (*Concept, error) {
	if c, ok := r.byName[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("concept %q: %w", name, ErrConceptNotFound)
}

// Concepts returns all concepts in registration order.
func (r *Registry) Concepts() []*Concept {
	out := make([]*Concept, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Names returns concept names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.ordered))
	for i, c := range r.ordered {
		names[i] = c.Name
	}
	return names
}

// Len returns the number of registered concepts.
func (r *Registry) Len() int {
	return len(r.ordered)
}
