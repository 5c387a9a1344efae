// Package container defines the container record and the closed set of
// lifecycle states it can occupy.
package container

import (
	"time"

	"github.com/google/uuid"
)

// ID uniquely identifies a container. It is a UUID v4 string, generated
// once at creation and never reused.
type ID = string

// NewID generates a fresh, globally unique container id.
func NewID() ID {
	return uuid.NewString()
}

// Status is the closed set of states a container can occupy.
type Status string

const (
	// Initialized is an internal, pre-insertion state. A container is
	// never persisted to disk while in this state.
	Initialized Status = "Initialized"
	Created     Status = "Created"
	Running     Status = "Running"
	Stopped     Status = "Stopped"
	// Paused and Unknown are only reachable via runtime reconciliation,
	// never as the direct result of an API call.
	Paused  Status = "Paused"
	Unknown Status = "Unknown"
)

// NoExitCode is the sentinel exit code meaning "not yet known".
const NoExitCode int32 = -1

// Container is the in-memory and on-disk representation of a single
// container's metadata. The runtime's own process/namespace state lives
// outside this struct entirely; this is bookkeeping only.
type Container struct {
	ID         ID         `json:"id"`
	Name       string     `json:"name"`
	Status     Status     `json:"status"`
	ExitCode   int32      `json:"exit_code"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Command    string     `json:"command"`
	Args       []string   `json:"args"`
}

// Options captures the caller-supplied inputs to create a container.
type Options struct {
	Name       string
	Command    string
	Args       []string
	RootfsPath string
}

// New builds a freshly initialized container record. It is not yet safe to
// persist: callers must progress it to Created before writing it to disk.
func New(id ID, opts Options) *Container {
	return &Container{
		ID:       id,
		Name:     opts.Name,
		Status:   Initialized,
		ExitCode: NoExitCode,
		Command:  opts.Command,
		Args:     append([]string(nil), opts.Args...),
	}
}

// Clone returns a deep copy, so callers holding a reference cannot observe
// or cause mutation of state owned by the registry.
func (c *Container) Clone() *Container {
	clone := *c
	clone.Args = append([]string(nil), c.Args...)
	if c.CreatedAt != nil {
		t := *c.CreatedAt
		clone.CreatedAt = &t
	}
	if c.StartedAt != nil {
		t := *c.StartedAt
		clone.StartedAt = &t
	}
	if c.FinishedAt != nil {
		t := *c.FinishedAt
		clone.FinishedAt = &t
	}
	return &clone
}
