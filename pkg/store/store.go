// Package store owns the on-disk layout of containers under root_dir:
// per-container directories, OCI bundles, and atomically-written state
// files. It never touches the in-memory registry or the runtime; it knows
// nothing but paths, bytes, and renames.
package store

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/willdeuschle/cruise/pkg/container"
)

// ErrorKind distinguishes the reasons a store operation can fail.
type ErrorKind int

const (
	StoreCreate ErrorKind = iota
	StoreRead
	StorePersist
	RootfsCopy
	SerializeState
	ParseState
	ContainerDirAlreadyExists
)

// Error names the failing operation, the path or container id involved, and
// wraps the underlying cause.
type Error struct {
	Kind        ErrorKind
	ContainerID container.ID
	Path        string
	Cause       error
}

func (e *Error) Error() string {
	var what string
	switch e.Kind {
	case StoreCreate:
		what = fmt.Sprintf("failed to create %s", e.Path)
	case StoreRead:
		what = fmt.Sprintf("failed to read %s", e.Path)
	case StorePersist:
		what = fmt.Sprintf("failed to persist state for container %s", e.ContainerID)
	case RootfsCopy:
		what = fmt.Sprintf("failed to copy rootfs for container %s", e.ContainerID)
	case SerializeState:
		what = fmt.Sprintf("failed to serialize state for container %s", e.ContainerID)
	case ParseState:
		what = fmt.Sprintf("failed to parse state for container %s", e.ContainerID)
	case ContainerDirAlreadyExists:
		what = fmt.Sprintf("container directory already exists for container %s", e.ContainerID)
	default:
		what = "store error"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", what, e.Cause)
	}
	return what
}

func (e *Error) Unwrap() error { return e.Cause }

// IsAlreadyExists reports whether err is a ContainerDirAlreadyExists store error.
func IsAlreadyExists(err error) bool {
	se, ok := err.(*Error)
	return ok && se.Kind == ContainerDirAlreadyExists
}

const (
	containersSubdir  = "containers"
	bundleSubdir      = "bundle"
	rootfsSubdir      = "rootfs"
	stateFileName     = "container.state"
	tempStateFileName = "container.state.temp"
)

// Store owns the filesystem layout rooted at root_dir.
type Store struct {
	rootDir string
}

// New ensures <root_dir>/containers exists and returns a Store over it.
func New(rootDir string) (*Store, error) {
	s := &Store{rootDir: rootDir}
	if err := os.MkdirAll(s.containersDir(), 0o755); err != nil {
		return nil, &Error{Kind: StoreCreate, Path: s.containersDir(), Cause: err}
	}
	return s, nil
}

// CreateContainerDirectory creates <root_dir>/containers/<id>. It must be
// the first side effect of a create flow, so rollback can key off its
// presence: if this call never succeeded, there is nothing to roll back.
func (s *Store) CreateContainerDirectory(id container.ID) error {
	dir := s.containerDir(id)
	if _, err := os.Stat(dir); err == nil {
		return &Error{Kind: ContainerDirAlreadyExists, ContainerID: id}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &Error{Kind: StoreCreate, ContainerID: id, Path: dir, Cause: err}
	}
	return nil
}

// RemoveContainerDirectory best-effort recursively removes a container's
// directory. It never errors: callers use it both for rollback and for
// delete, and in neither case is a failure here something the caller can
// usefully act on.
func (s *Store) RemoveContainerDirectory(id container.ID) {
	_ = os.RemoveAll(s.containerDir(id))
}

// CreateContainerBundle creates <container_dir>/bundle/rootfs and
// recursively copies every entry of srcRootfs into it, preserving
// directory structure and basenames. It returns the absolute bundle
// directory path.
func (s *Store) CreateContainerBundle(id container.ID, srcRootfs string) (string, error) {
	rootfsDir := s.rootfsDir(id)
	if err := os.MkdirAll(rootfsDir, 0o755); err != nil {
		return "", &Error{Kind: RootfsCopy, ContainerID: id, Path: rootfsDir, Cause: err}
	}
	if err := copyTree(srcRootfs, rootfsDir); err != nil {
		return "", &Error{Kind: RootfsCopy, ContainerID: id, Path: srcRootfs, Cause: err}
	}
	bundleDir, err := filepath.Abs(s.bundleDir(id))
	if err != nil {
		return "", &Error{Kind: StoreCreate, ContainerID: id, Path: s.bundleDir(id), Cause: err}
	}
	return bundleDir, nil
}

// AtomicPersist serializes the record to JSON, writes it to a scratch file,
// then renames that file onto the committed state file. The rename is the
// atomic commit point: a reader never observes a partially-written state
// file, only the prior content or the new content.
func (s *Store) AtomicPersist(c *container.Container) error {
	data, err := json.Marshal(c)
	if err != nil {
		return &Error{Kind: SerializeState, ContainerID: c.ID, Cause: err}
	}
	tmp := s.tempStateFile(c.ID)
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &Error{Kind: StorePersist, ContainerID: c.ID, Path: tmp, Cause: err}
	}
	final := s.stateFile(c.ID)
	if err := os.Rename(tmp, final); err != nil {
		return &Error{Kind: StorePersist, ContainerID: c.ID, Path: final, Cause: err}
	}
	return nil
}

// ReadState reads and deserializes a container's state file.
func (s *Store) ReadState(id container.ID) (*container.Container, error) {
	path := s.stateFile(id)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Kind: StoreRead, ContainerID: id, Path: path, Cause: err}
	}
	var c container.Container
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, &Error{Kind: ParseState, ContainerID: id, Path: path, Cause: err}
	}
	return &c, nil
}

// ListIDs enumerates the containers directory; each entry's basename is an id.
func (s *Store) ListIDs() ([]container.ID, error) {
	entries, err := os.ReadDir(s.containersDir())
	if err != nil {
		return nil, &Error{Kind: StoreRead, Path: s.containersDir(), Cause: err}
	}
	ids := make([]container.ID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.Name())
	}
	return ids, nil
}

func (s *Store) containersDir() string           { return filepath.Join(s.rootDir, containersSubdir) }
func (s *Store) containerDir(id container.ID) string {
	return filepath.Join(s.containersDir(), id)
}
func (s *Store) bundleDir(id container.ID) string {
	return filepath.Join(s.containerDir(id), bundleSubdir)
}
func (s *Store) rootfsDir(id container.ID) string {
	return filepath.Join(s.bundleDir(id), rootfsSubdir)
}
func (s *Store) stateFile(id container.ID) string {
	return filepath.Join(s.containerDir(id), stateFileName)
}
func (s *Store) tempStateFile(id container.ID) string {
	return filepath.Join(s.containerDir(id), tempStateFileName)
}

// copyTree recursively copies the contents of src into dst, which must
// already exist. Directories are created as needed; regular files are
// copied byte for byte. It errors if src does not exist.
func copyTree(src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			if err := os.MkdirAll(dstPath, 0o755); err != nil {
				return err
			}
			if err := copyTree(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(srcPath, dstPath); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
