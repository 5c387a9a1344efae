// Package client wraps rpc.ContainerManagerClient for cruisectl. Like the
// server it talks to, it uses plain TCP with insecure gRPC credentials:
// RPC authentication is out of scope.
package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/willdeuschle/cruise/pkg/rpc"
)

// Client wraps a gRPC connection to cruised.
type Client struct {
	conn *grpc.ClientConn
	rpc  rpc.ContainerManagerClient
}

// NewClient dials addr (host:port) and returns a ready Client.
func NewClient(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	return &Client{conn: conn, rpc: rpc.NewContainerManagerClient(conn)}, nil
}

// Close tears down the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// CreateContainer creates a container and returns its id.
func (c *Client) CreateContainer(ctx context.Context, name, command string, args []string, rootfsPath string) (string, error) {
	resp, err := c.rpc.CreateContainer(ctx, &rpc.CreateContainerRequest{
		Name:       name,
		Command:    command,
		Args:       args,
		RootfsPath: rootfsPath,
	})
	if err != nil {
		return "", err
	}
	return resp.ContainerID, nil
}

// StartContainer starts a previously created container.
func (c *Client) StartContainer(ctx context.Context, id string) error {
	_, err := c.rpc.StartContainer(ctx, &rpc.ContainerIDRequest{ContainerID: id})
	return err
}

// StopContainer stops a running container.
func (c *Client) StopContainer(ctx context.Context, id string) error {
	_, err := c.rpc.StopContainer(ctx, &rpc.ContainerIDRequest{ContainerID: id})
	return err
}

// DeleteContainer deletes a stopped or never-started container.
func (c *Client) DeleteContainer(ctx context.Context, id string) error {
	_, err := c.rpc.DeleteContainer(ctx, &rpc.ContainerIDRequest{ContainerID: id})
	return err
}

// GetContainer fetches a single container's current record.
func (c *Client) GetContainer(ctx context.Context, id string) (*rpc.GetContainerResponse, error) {
	return c.rpc.GetContainer(ctx, &rpc.ContainerIDRequest{ContainerID: id})
}

// ListContainers fetches every container's current record.
func (c *Client) ListContainers(ctx context.Context) ([]*rpc.GetContainerResponse, error) {
	resp, err := c.rpc.ListContainers(ctx, &rpc.ListContainersRequest{})
	if err != nil {
		return nil, err
	}
	return resp.Containers, nil
}
