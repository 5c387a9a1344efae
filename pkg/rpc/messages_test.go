package rpc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/willdeuschle/cruise/pkg/container"
)

func TestFromContainerRendersAbsentTimestamps(t *testing.T) {
	c := &container.Container{
		ID:      "id-1",
		Name:    "c",
		Status:  container.Initialized,
		Command: "/bin/echo",
	}

	resp := FromContainer(c)
	assert.Equal(t, notCreatedYet, resp.CreatedAt)
	assert.Equal(t, notStartedYet, resp.StartedAt)
	assert.Equal(t, notFinished, resp.FinishedAt)
	assert.Equal(t, "Initialized", resp.Status)
}

func TestFromContainerRendersPresentTimestamps(t *testing.T) {
	createdAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := &container.Container{
		ID:        "id-1",
		Status:    container.Created,
		CreatedAt: &createdAt,
	}

	resp := FromContainer(c)
	assert.Equal(t, createdAt.Format(time.RFC3339), resp.CreatedAt)
	assert.Equal(t, notStartedYet, resp.StartedAt)
}

func TestJSONCodecRoundTrips(t *testing.T) {
	var codec jsonCodec
	req := &CreateContainerRequest{Name: "c", Command: "/bin/echo", Args: []string{"a", "b"}, RootfsPath: "/tmp/rootfs"}

	data, err := codec.Marshal(req)
	assert.NoError(t, err)

	got := new(CreateContainerRequest)
	assert.NoError(t, codec.Unmarshal(data, got))
	assert.Equal(t, req, got)
	assert.Equal(t, "json", codec.Name())
}
