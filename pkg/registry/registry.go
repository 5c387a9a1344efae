// Package registry owns the in-memory mapping from container id to
// container record. It is the only component allowed to mutate that
// mapping; every mutation is serialized by a single mutex held for the
// duration of one map operation, never across I/O.
package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/willdeuschle/cruise/pkg/container"
)

// ErrorKind distinguishes the reasons a registry operation can fail.
type ErrorKind int

const (
	// ContainerAlreadyExists means Add was called with an id already present.
	ContainerAlreadyExists ErrorKind = iota
	// ContainerNotFound means the id was not present for a read or update.
	ContainerNotFound
)

// Error is the registry's error type: it names the failing operation and
// the container id involved.
type Error struct {
	Kind        ErrorKind
	ContainerID container.ID
}

func (e *Error) Error() string {
	switch e.Kind {
	case ContainerAlreadyExists:
		return fmt.Sprintf("container with id %s already exists", e.ContainerID)
	case ContainerNotFound:
		return fmt.Sprintf("container with id %s not found", e.ContainerID)
	default:
		return fmt.Sprintf("registry error for container id %s", e.ContainerID)
	}
}

// IsNotFound reports whether err is a registry ContainerNotFound error.
func IsNotFound(err error) bool {
	re, ok := err.(*Error)
	return ok && re.Kind == ContainerNotFound
}

// IsAlreadyExists reports whether err is a registry ContainerAlreadyExists error.
func IsAlreadyExists(err error) bool {
	re, ok := err.(*Error)
	return ok && re.Kind == ContainerAlreadyExists
}

// Registry is a single-writer, single-reader-at-a-time map of container
// records, guarded by one mutex. There is no per-container lock: two
// concurrent operations against the same id are serialized only at the
// granularity of a single field update, never across an entire lifecycle
// operation.
type Registry struct {
	mu   sync.Mutex
	byID map[container.ID]*container.Container
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{byID: make(map[container.ID]*container.Container)}
}

// Add inserts a new record. It fails if the id is already present.
func (r *Registry) Add(c *container.Container) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[c.ID]; ok {
		return &Error{Kind: ContainerAlreadyExists, ContainerID: c.ID}
	}
	r.byID[c.ID] = c.Clone()
	return nil
}

// Get returns an owned clone of the record, so the caller cannot mutate
// registry-owned state through the returned pointer.
func (r *Registry) Get(id container.ID) (*container.Container, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, &Error{Kind: ContainerNotFound, ContainerID: id}
	}
	return c.Clone(), nil
}

// List returns clones of every record currently registered. The result is
// a snapshot: it does not reflect adds or removes that happen after it is
// taken.
func (r *Registry) List() []*container.Container {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*container.Container, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c.Clone())
	}
	return out
}

// Remove deletes the record for id. It is idempotent: removing an absent
// id is not an error.
func (r *Registry) Remove(id container.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
}

// UpdateStatus mutates the status field of an existing record.
func (r *Registry) UpdateStatus(id container.ID, status container.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return &Error{Kind: ContainerNotFound, ContainerID: id}
	}
	c.Status = status
	return nil
}

// UpdateCreatedAt mutates the created_at field of an existing record.
func (r *Registry) UpdateCreatedAt(id container.ID, ts time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return &Error{Kind: ContainerNotFound, ContainerID: id}
	}
	c.CreatedAt = &ts
	return nil
}

// UpdateStartedAt mutates the started_at field of an existing record.
func (r *Registry) UpdateStartedAt(id container.ID, ts time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return &Error{Kind: ContainerNotFound, ContainerID: id}
	}
	c.StartedAt = &ts
	return nil
}
