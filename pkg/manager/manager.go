// Package manager composes the registry, store, and runtime adapter into
// the container lifecycle operations exposed over RPC. It is the only
// package that knows how those three pieces fit together; each of them is
// oblivious to the others.
package manager

import (
	"fmt"
	"time"

	"github.com/willdeuschle/cruise/pkg/container"
	"github.com/willdeuschle/cruise/pkg/log"
	"github.com/willdeuschle/cruise/pkg/metrics"
	"github.com/willdeuschle/cruise/pkg/registry"
	"github.com/willdeuschle/cruise/pkg/runtimeadapter"
	"github.com/willdeuschle/cruise/pkg/store"
)

const pidfileRelPath = "container.pidfile"

// PreconditionKind distinguishes the lifecycle preconditions an operation
// can find violated.
type PreconditionKind int

const (
	// PreconditionStartNotCreated means StartContainer was called against
	// a container that is not in the Created state.
	PreconditionStartNotCreated PreconditionKind = iota
	// PreconditionStopNotRunning means StopContainer was called against a
	// container that is not in the Running state.
	PreconditionStopNotRunning
	// PreconditionDeleteNotDeletable means DeleteContainer was called
	// against a container that is neither Created nor Stopped.
	PreconditionDeleteNotDeletable
)

// PreconditionError reports that an operation's required starting state
// did not hold. The registry and store are left exactly as they were.
type PreconditionError struct {
	Kind         PreconditionKind
	ContainerID  container.ID
	ActualStatus container.Status
}

func (e *PreconditionError) Error() string {
	switch e.Kind {
	case PreconditionStartNotCreated:
		return fmt.Sprintf("cannot start container %s: status is %s, want %s", e.ContainerID, e.ActualStatus, container.Created)
	case PreconditionStopNotRunning:
		return fmt.Sprintf("cannot stop container %s: status is %s, want %s", e.ContainerID, e.ActualStatus, container.Running)
	case PreconditionDeleteNotDeletable:
		return fmt.Sprintf("cannot delete container %s: status is %s, want %s or %s", e.ContainerID, e.ActualStatus, container.Created, container.Stopped)
	default:
		return fmt.Sprintf("precondition violated for container %s", e.ContainerID)
	}
}

// IsPrecondition reports whether err is a PreconditionError.
func IsPrecondition(err error) bool {
	_, ok := err.(*PreconditionError)
	return ok
}

// IsNotFound reports whether err means the container is unknown to either
// the registry or the runtime.
func IsNotFound(err error) bool {
	return registry.IsNotFound(err) || runtimeadapter.IsNotFound(err)
}

// Config configures a ContainerManager.
type Config struct {
	// RootDir is the on-disk root under which container directories live.
	RootDir string
	// RuntimePath is the path to the OCI runtime binary (e.g. runc).
	RuntimePath string
}

// ContainerManager orchestrates the registry, store, and runtime adapter
// into the container lifecycle. It holds no lock of its own: it relies on
// the registry's internal serialization for record mutation and accepts
// that a single logical operation is not atomic across its steps.
type ContainerManager struct {
	registry *registry.Registry
	store    *store.Store
	runtime  *runtimeadapter.Adapter
}

// New builds a ContainerManager rooted at cfg.RootDir, invoking cfg.RuntimePath
// as the OCI runtime, and reconciles it against whatever the store and
// runtime already know about before returning it to the caller.
func New(cfg Config) (*ContainerManager, error) {
	st, err := store.New(cfg.RootDir)
	if err != nil {
		return nil, err
	}
	cm := &ContainerManager{
		registry: registry.New(),
		store:    st,
		runtime:  runtimeadapter.New(cfg.RuntimePath),
	}
	cm.reload()
	return cm, nil
}

// reload is a one-shot startup reconciliation: every on-disk container
// directory is read, added to the registry, and reconciled against the
// runtime. Anything that fails any of these steps is dropped rather than
// left in an inconsistent state: reload never fails the whole process, it
// only ever shrinks the set of containers the manager knows about.
func (cm *ContainerManager) reload() {
	logger := log.WithComponent("manager")

	ids, err := cm.store.ListIDs()
	if err != nil {
		logger.Error().Err(err).Msg("failed to enumerate containers during reload")
		return
	}

	for _, id := range ids {
		l := log.WithContainerID(id)

		c, err := cm.store.ReadState(id)
		if err != nil {
			l.Warn().Err(err).Msg("dropping container with unreadable state during reload")
			cm.store.RemoveContainerDirectory(id)
			continue
		}

		if err := cm.registry.Add(c); err != nil {
			l.Warn().Err(err).Msg("dropping duplicate container during reload")
			continue
		}

		if err := cm.syncWithRuntime(id); err != nil {
			l.Warn().Err(err).Msg("dropping container that failed runtime reconciliation during reload")
			cm.registry.Remove(id)
			cm.store.RemoveContainerDirectory(id)
			continue
		}

		l.Info().Msg("reconciled container during reload")
	}
}

// CreateContainer allocates a fresh id, registers an Initialized record,
// lays out its on-disk bundle, asks the runtime to create it, and advances
// the record to Created. Any failure after the record is registered
// triggers a best-effort rollback: the registry entry and the on-disk
// directory are removed, regardless of how far the flow got.
func (cm *ContainerManager) CreateContainer(opts container.Options) (container.ID, error) {
	start := time.Now()
	id := container.NewID()
	l := log.WithContainerID(id)

	c := container.New(id, opts)
	if err := cm.registry.Add(c); err != nil {
		l.Error().Err(err).Msg("failed to register container")
		return "", err
	}

	rollback := func(err error) (container.ID, error) {
		cm.registry.Remove(id)
		cm.store.RemoveContainerDirectory(id)
		l.Error().Err(err).Msg("create_container failed, rolled back")
		return "", err
	}

	if err := cm.store.CreateContainerDirectory(id); err != nil {
		return rollback(err)
	}

	bundleDir, err := cm.store.CreateContainerBundle(id, opts.RootfsPath)
	if err != nil {
		return rollback(err)
	}

	if err := cm.runtime.GenerateSpec(bundleDir, opts.Command, opts.Args); err != nil {
		return rollback(err)
	}

	if err := cm.runtime.Create(bundleDir, pidfileRelPath, id); err != nil {
		return rollback(err)
	}

	now := time.Now()
	if err := cm.registry.UpdateCreatedAt(id, now); err != nil {
		return rollback(err)
	}
	if err := cm.registry.UpdateStatus(id, container.Created); err != nil {
		return rollback(err)
	}

	record, err := cm.registry.Get(id)
	if err != nil {
		return rollback(err)
	}
	if err := cm.store.AtomicPersist(record); err != nil {
		return rollback(err)
	}

	metrics.OperationDuration.WithLabelValues("create").Observe(time.Since(start).Seconds())
	l.Info().Msg("created container")
	return id, nil
}

// StartContainer requires the container to be Created, asks the runtime to
// start it, and advances the record to Running. The runtime call is
// asynchronous: the record reflects the intent to start, not confirmation
// that the process is alive.
func (cm *ContainerManager) StartContainer(id container.ID) error {
	start := time.Now()
	l := log.WithContainerID(id)

	c, err := cm.registry.Get(id)
	if err != nil {
		return err
	}
	if c.Status != container.Created {
		return &PreconditionError{Kind: PreconditionStartNotCreated, ContainerID: id, ActualStatus: c.Status}
	}

	if err := cm.runtime.Start(id); err != nil {
		l.Error().Err(err).Msg("failed to start container")
		return err
	}

	now := time.Now()
	if err := cm.registry.UpdateStartedAt(id, now); err != nil {
		return err
	}
	if err := cm.registry.UpdateStatus(id, container.Running); err != nil {
		return err
	}
	record, err := cm.registry.Get(id)
	if err != nil {
		return err
	}
	if err := cm.store.AtomicPersist(record); err != nil {
		return err
	}

	metrics.OperationDuration.WithLabelValues("start").Observe(time.Since(start).Seconds())
	l.Info().Msg("started container")
	return nil
}

// StopContainer requires the container to be Running, sends it SIGKILL via
// the runtime, and advances the record to Stopped.
func (cm *ContainerManager) StopContainer(id container.ID) error {
	start := time.Now()
	l := log.WithContainerID(id)

	c, err := cm.registry.Get(id)
	if err != nil {
		return err
	}
	if c.Status != container.Running {
		return &PreconditionError{Kind: PreconditionStopNotRunning, ContainerID: id, ActualStatus: c.Status}
	}

	if err := cm.runtime.Kill(id); err != nil {
		l.Error().Err(err).Msg("failed to stop container")
		return err
	}

	if err := cm.registry.UpdateStatus(id, container.Stopped); err != nil {
		return err
	}
	record, err := cm.registry.Get(id)
	if err != nil {
		return err
	}
	if err := cm.store.AtomicPersist(record); err != nil {
		return err
	}

	metrics.OperationDuration.WithLabelValues("stop").Observe(time.Since(start).Seconds())
	l.Info().Msg("stopped container")
	return nil
}

// DeleteContainer requires the container to be Created or Stopped, tells
// the runtime to delete it, and removes both the registry entry and the
// on-disk directory. A runtime delete failure is logged but does not block
// removal: once a container is deletable by our own bookkeeping, the
// record should not survive just because the runtime objected.
func (cm *ContainerManager) DeleteContainer(id container.ID) error {
	start := time.Now()
	l := log.WithContainerID(id)

	c, err := cm.registry.Get(id)
	if err != nil {
		return err
	}
	if c.Status != container.Created && c.Status != container.Stopped {
		return &PreconditionError{Kind: PreconditionDeleteNotDeletable, ContainerID: id, ActualStatus: c.Status}
	}

	if err := cm.runtime.Delete(id); err != nil {
		l.Warn().Err(err).Msg("runtime delete failed, proceeding with bookkeeping removal")
	}

	cm.registry.Remove(id)
	cm.store.RemoveContainerDirectory(id)

	metrics.OperationDuration.WithLabelValues("delete").Observe(time.Since(start).Seconds())
	l.Info().Msg("deleted container")
	return nil
}

// GetContainer reconciles the container's status with the runtime, then
// returns the resulting record.
func (cm *ContainerManager) GetContainer(id container.ID) (*container.Container, error) {
	if err := cm.syncWithRuntime(id); err != nil {
		return nil, err
	}
	return cm.registry.Get(id)
}

// ListContainers reconciles every record currently in the registry against
// the runtime and returns the resulting snapshot. A reconciliation failure
// on any one container fails the whole call: the caller gets either a
// fully reconciled list or an error, never a partially reconciled one.
func (cm *ContainerManager) ListContainers() ([]*container.Container, error) {
	records := cm.registry.List()
	for _, c := range records {
		if err := cm.syncWithRuntime(c.ID); err != nil {
			return nil, err
		}
	}
	return cm.registry.List(), nil
}

// syncWithRuntime asks the runtime for a container's current status,
// writes it into the registry, and persists the result. A NotFound from
// the runtime propagates unchanged: callers decide how to treat it.
func (cm *ContainerManager) syncWithRuntime(id container.ID) error {
	status, err := cm.runtime.State(id)
	if err != nil {
		return err
	}

	if err := cm.registry.UpdateStatus(id, status); err != nil {
		return err
	}
	record, err := cm.registry.Get(id)
	if err != nil {
		return err
	}
	return cm.store.AtomicPersist(record)
}
