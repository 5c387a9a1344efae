// Package runtimeadapter is a thin, typed wrapper around invocations of an
// external OCI-compatible runtime binary (runc) and its JSON status format.
// It owns no state of its own beyond the runtime's path; every method
// spawns a child process and either waits on it or, for the two calls the
// spec documents as asynchronous, returns as soon as the child is spawned.
package runtimeadapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/willdeuschle/cruise/pkg/container"
	"github.com/willdeuschle/cruise/pkg/log"
	"github.com/willdeuschle/cruise/pkg/metrics"
)

// Method names a runc subcommand, used to tag errors and log lines.
type Method string

const (
	MethodSpec   Method = "spec"
	MethodCreate Method = "create"
	MethodStart  Method = "start"
	MethodKill   Method = "kill"
	MethodDelete Method = "delete"
	MethodState  Method = "state"
)

// ErrorKind distinguishes the reasons a runtime invocation can fail.
type ErrorKind int

const (
	// RuntimeInvoke means spawning or waiting on the runtime binary failed.
	RuntimeInvoke ErrorKind = iota
	// RuntimeStatusDecode means the state output was not valid UTF-8.
	RuntimeStatusDecode
	// RuntimeStatusParse means the state output was not parseable JSON.
	RuntimeStatusParse
	// RuntimeNotFound means the runtime does not know about this container.
	RuntimeNotFound
)

// Error names the failing method, the container id when applicable, and
// wraps the underlying cause.
type Error struct {
	Kind        ErrorKind
	Method      Method
	ContainerID container.ID
	Cause       error
}

func (e *Error) Error() string {
	var what string
	switch e.Kind {
	case RuntimeInvoke:
		if e.ContainerID == "" {
			what = fmt.Sprintf("failed to execute runtime %s", e.Method)
		} else {
			what = fmt.Sprintf("failed to execute runtime %s for container %s", e.Method, e.ContainerID)
		}
	case RuntimeStatusDecode:
		what = fmt.Sprintf("failed to decode runtime status output for container %s", e.ContainerID)
	case RuntimeStatusParse:
		what = fmt.Sprintf("failed to parse runtime status output for container %s", e.ContainerID)
	case RuntimeNotFound:
		what = fmt.Sprintf("container %s not known to the runtime", e.ContainerID)
	default:
		what = "runtime adapter error"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", what, e.Cause)
	}
	return what
}

func (e *Error) Unwrap() error { return e.Cause }

// IsNotFound reports whether err means the runtime does not know this container.
func IsNotFound(err error) bool {
	re, ok := err.(*Error)
	return ok && re.Kind == RuntimeNotFound
}

// runtimeStatus is the subset of `runc state` output we need.
type runtimeStatus struct {
	Status string `json:"status"`
}

// Adapter invokes an OCI runtime binary at a fixed path.
type Adapter struct {
	runtimePath string
}

// New returns an Adapter that shells out to the binary at runtimePath.
func New(runtimePath string) *Adapter {
	return &Adapter{runtimePath: runtimePath}
}

// GenerateSpec runs `runtime spec --bundle bundlePath`, which writes a
// default config.json into the bundle, then rewrites two of its literal
// tokens: the default `"args": ["sh"]` becomes the caller's command and
// args, and `"terminal": true` becomes `"terminal": false`. This is a
// textual substitution against the generated spec's literal tokens, not a
// JSON-aware edit: a future upstream runtime that changes its default spec
// could silently defeat it (see DESIGN.md).
func (a *Adapter) GenerateSpec(bundlePath, command string, args []string) error {
	logger := log.WithComponent("runtime-adapter")
	cmd := exec.Command(a.runtimePath, string(MethodSpec), "--bundle", bundlePath)
	logger.Debug().Strs("argv", cmd.Args).Msg("invoking runtime")
	if err := cmd.Run(); err != nil {
		metrics.RuntimeInvocationsTotal.WithLabelValues(string(MethodSpec), "error").Inc()
		return &Error{Kind: RuntimeInvoke, Method: MethodSpec, Cause: err}
	}
	metrics.RuntimeInvocationsTotal.WithLabelValues(string(MethodSpec), "ok").Inc()
	logger.Debug().Msg("runtime call succeeded")

	configPath := filepath.Join(bundlePath, "config.json")
	data, err := os.ReadFile(configPath)
	if err != nil {
		return &Error{Kind: RuntimeInvoke, Method: MethodSpec, Cause: err}
	}

	content := strings.Replace(string(data), `"sh"`, argsToken(command, args), 1)
	content = strings.Replace(content, `"terminal": true`, `"terminal": false`, 1)

	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		return &Error{Kind: RuntimeInvoke, Method: MethodSpec, Cause: err}
	}
	return nil
}

// argsToken renders command+args as the comma-separated quoted JSON array
// elements that replace the literal "sh" token.
func argsToken(command string, args []string) string {
	quoted := make([]string, 0, len(args)+1)
	quoted = append(quoted, fmt.Sprintf("%q", command))
	for _, arg := range args {
		quoted = append(quoted, fmt.Sprintf("%q", arg))
	}
	return strings.Join(quoted, ", ")
}

// Create invokes `runtime create --bundle bundlePath --pid-file
// bundlePath/pidfileRelPath id`. It is launched asynchronously: this
// returns as soon as the child is spawned, without waiting on it.
func (a *Adapter) Create(bundlePath, pidfileRelPath string, id container.ID) error {
	logger := log.WithComponent("runtime-adapter")
	pidfile := filepath.Join(bundlePath, pidfileRelPath)
	cmd := exec.Command(a.runtimePath, string(MethodCreate), "--bundle", bundlePath, "--pid-file", pidfile, id)
	logger.Debug().Strs("argv", cmd.Args).Msg("invoking runtime")
	if err := cmd.Start(); err != nil {
		metrics.RuntimeInvocationsTotal.WithLabelValues(string(MethodCreate), "error").Inc()
		return &Error{Kind: RuntimeInvoke, Method: MethodCreate, ContainerID: id, Cause: err}
	}
	metrics.RuntimeInvocationsTotal.WithLabelValues(string(MethodCreate), "ok").Inc()
	return nil
}

// Start invokes `runtime start id`, asynchronously like Create.
func (a *Adapter) Start(id container.ID) error {
	logger := log.WithComponent("runtime-adapter")
	cmd := exec.Command(a.runtimePath, string(MethodStart), id)
	logger.Debug().Strs("argv", cmd.Args).Msg("invoking runtime")
	if err := cmd.Start(); err != nil {
		metrics.RuntimeInvocationsTotal.WithLabelValues(string(MethodStart), "error").Inc()
		return &Error{Kind: RuntimeInvoke, Method: MethodStart, ContainerID: id, Cause: err}
	}
	metrics.RuntimeInvocationsTotal.WithLabelValues(string(MethodStart), "ok").Inc()
	return nil
}

// Kill invokes `runtime kill id 9` and waits for completion.
func (a *Adapter) Kill(id container.ID) error {
	logger := log.WithComponent("runtime-adapter")
	cmd := exec.Command(a.runtimePath, string(MethodKill), id, "9")
	logger.Debug().Strs("argv", cmd.Args).Msg("invoking runtime")
	if err := cmd.Run(); err != nil {
		metrics.RuntimeInvocationsTotal.WithLabelValues(string(MethodKill), "error").Inc()
		return &Error{Kind: RuntimeInvoke, Method: MethodKill, ContainerID: id, Cause: err}
	}
	metrics.RuntimeInvocationsTotal.WithLabelValues(string(MethodKill), "ok").Inc()
	logger.Debug().Msg("runtime call succeeded")
	return nil
}

// Delete invokes `runtime delete id` and waits for completion.
func (a *Adapter) Delete(id container.ID) error {
	logger := log.WithComponent("runtime-adapter")
	cmd := exec.Command(a.runtimePath, string(MethodDelete), id)
	logger.Debug().Strs("argv", cmd.Args).Msg("invoking runtime")
	if err := cmd.Run(); err != nil {
		metrics.RuntimeInvocationsTotal.WithLabelValues(string(MethodDelete), "error").Inc()
		return &Error{Kind: RuntimeInvoke, Method: MethodDelete, ContainerID: id, Cause: err}
	}
	metrics.RuntimeInvocationsTotal.WithLabelValues(string(MethodDelete), "ok").Inc()
	logger.Debug().Msg("runtime call succeeded")
	return nil
}

// State invokes `runtime state id`, captures stdout, and parses it as JSON
// `{"status": "..."}`. Empty output means the runtime does not know about
// this container, surfaced as a distinguished RuntimeNotFound error.
func (a *Adapter) State(id container.ID) (container.Status, error) {
	logger := log.WithComponent("runtime-adapter")
	cmd := exec.Command(a.runtimePath, string(MethodState), id)
	logger.Debug().Strs("argv", cmd.Args).Msg("invoking runtime")

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		metrics.RuntimeInvocationsTotal.WithLabelValues(string(MethodState), "error").Inc()
		return "", &Error{Kind: RuntimeInvoke, Method: MethodState, ContainerID: id, Cause: err}
	}

	raw := stdout.Bytes()
	if len(bytes.TrimSpace(raw)) == 0 {
		metrics.RuntimeInvocationsTotal.WithLabelValues(string(MethodState), "not_found").Inc()
		return "", &Error{Kind: RuntimeNotFound, Method: MethodState, ContainerID: id}
	}
	if !utf8.Valid(raw) {
		metrics.RuntimeInvocationsTotal.WithLabelValues(string(MethodState), "error").Inc()
		return "", &Error{Kind: RuntimeStatusDecode, Method: MethodState, ContainerID: id}
	}

	var rs runtimeStatus
	if err := json.Unmarshal(raw, &rs); err != nil {
		metrics.RuntimeInvocationsTotal.WithLabelValues(string(MethodState), "error").Inc()
		return "", &Error{Kind: RuntimeStatusParse, Method: MethodState, ContainerID: id, Cause: err}
	}
	metrics.RuntimeInvocationsTotal.WithLabelValues(string(MethodState), "ok").Inc()
	logger.Debug().Msg("runtime call succeeded")
	return translateStatus(rs.Status), nil
}

// translateStatus maps a runc status string to the internal status enum.
// Anything not explicitly recognized maps to Unknown.
func translateStatus(runtimeStatus string) container.Status {
	switch runtimeStatus {
	case "created":
		return container.Created
	case "running", "pausing":
		return container.Running
	case "paused":
		return container.Paused
	case "stopped":
		return container.Stopped
	default:
		return container.Unknown
	}
}
