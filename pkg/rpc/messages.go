// Package rpc defines the wire messages and service contract between
// cruised and its clients. There is no protoc-generated code here: the
// messages are plain Go structs carried over gRPC by a JSON codec (see
// codec.go), and the service description is hand-written (see service.go).
package rpc

import (
	"time"

	"github.com/willdeuschle/cruise/pkg/container"
)

const (
	notCreatedYet = "Not created yet."
	notStartedYet = "Not started yet."
	notFinished   = "n/a"
)

// CreateContainerRequest is the request for CreateContainer.
type CreateContainerRequest struct {
	Name       string   `json:"name"`
	Command    string   `json:"command"`
	Args       []string `json:"args"`
	RootfsPath string   `json:"rootfs_path"`
}

// CreateContainerResponse is the response for CreateContainer.
type CreateContainerResponse struct {
	ContainerID string `json:"container_id"`
}

// ContainerIDRequest is the request shared by StartContainer, StopContainer,
// DeleteContainer, and GetContainer: they all key off a single id.
type ContainerIDRequest struct {
	ContainerID string `json:"container_id"`
}

// SuccessResponse is the response for StartContainer, StopContainer, and
// DeleteContainer: a bare acknowledgement, since the interesting state
// lives in the record returned by GetContainer.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// GetContainerResponse is the response for GetContainer, and the element
// type of ListContainersResponse.
type GetContainerResponse struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Status     string   `json:"status"`
	ExitCode   int32    `json:"exit_code"`
	CreatedAt  string   `json:"created_at"`
	StartedAt  string   `json:"started_at"`
	FinishedAt string   `json:"finished_at"`
	Command    string   `json:"command"`
	Args       []string `json:"args"`
}

// ListContainersRequest carries no fields: ListContainers takes nothing.
type ListContainersRequest struct{}

// ListContainersResponse is the response for ListContainers.
type ListContainersResponse struct {
	Containers []*GetContainerResponse `json:"containers"`
}

// RenderTimestamp renders a timestamp pointer as ISO-8601-extended, or the
// given placeholder if the pointer is nil. Each of the three timestamp
// fields on a container record has its own placeholder, per spec.
func RenderTimestamp(t *time.Time, placeholder string) string {
	if t == nil {
		return placeholder
	}
	return t.Format(time.RFC3339)
}

// NotCreatedYet is the placeholder for an absent created_at.
func NotCreatedYet() string { return notCreatedYet }

// NotStartedYet is the placeholder for an absent started_at.
func NotStartedYet() string { return notStartedYet }

// NotFinished is the placeholder for an absent finished_at.
func NotFinished() string { return notFinished }

// FromContainer renders a container record as the wire response shape,
// applying the timestamp placeholder rules.
func FromContainer(c *container.Container) *GetContainerResponse {
	return &GetContainerResponse{
		ID:         c.ID,
		Name:       c.Name,
		Status:     string(c.Status),
		ExitCode:   c.ExitCode,
		CreatedAt:  RenderTimestamp(c.CreatedAt, notCreatedYet),
		StartedAt:  RenderTimestamp(c.StartedAt, notStartedYet),
		FinishedAt: RenderTimestamp(c.FinishedAt, notFinished),
		Command:    c.Command,
		Args:       c.Args,
	}
}
