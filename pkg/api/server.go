// Package api implements the RPC surface over a *manager.ContainerManager.
// There is no transport security here: RPC authentication and
// authorization are an explicit non-goal, so the server listens on plain
// TCP with insecure gRPC credentials.
package api

import (
	"context"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/willdeuschle/cruise/pkg/container"
	"github.com/willdeuschle/cruise/pkg/log"
	"github.com/willdeuschle/cruise/pkg/manager"
	"github.com/willdeuschle/cruise/pkg/registry"
	"github.com/willdeuschle/cruise/pkg/rpc"
)

// Server implements rpc.ContainerManagerServer over a single
// *manager.ContainerManager. It owns the gRPC listener but none of the
// container lifecycle logic.
type Server struct {
	mgr  *manager.ContainerManager
	grpc *grpc.Server
}

// NewServer wraps mgr for RPC exposure.
func NewServer(mgr *manager.ContainerManager) *Server {
	return &Server{
		mgr:  mgr,
		grpc: grpc.NewServer(grpc.Creds(insecure.NewCredentials())),
	}
}

// Serve registers the service and blocks accepting connections on addr
// until the listener is closed.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	log.WithComponent("api").Info().Str("addr", addr).Msg("rpc server listening")
	return s.ServeListener(lis)
}

// ServeListener registers the service and blocks accepting connections on
// an already-bound listener. Useful for tests that need to know the
// ephemeral port before the server starts accepting.
func (s *Server) ServeListener(lis net.Listener) error {
	rpc.RegisterContainerManagerServer(s.grpc, s)
	return s.grpc.Serve(lis)
}

// Stop gracefully stops the gRPC server.
func (s *Server) Stop() {
	s.grpc.GracefulStop()
}

func (s *Server) CreateContainer(ctx context.Context, req *rpc.CreateContainerRequest) (*rpc.CreateContainerResponse, error) {
	id, err := s.mgr.CreateContainer(container.Options{
		Name:       req.Name,
		Command:    req.Command,
		Args:       req.Args,
		RootfsPath: req.RootfsPath,
	})
	if err != nil {
		return nil, translateError(err)
	}
	return &rpc.CreateContainerResponse{ContainerID: id}, nil
}

func (s *Server) StartContainer(ctx context.Context, req *rpc.ContainerIDRequest) (*rpc.SuccessResponse, error) {
	if err := s.mgr.StartContainer(req.ContainerID); err != nil {
		return nil, translateError(err)
	}
	return &rpc.SuccessResponse{Success: true}, nil
}

func (s *Server) StopContainer(ctx context.Context, req *rpc.ContainerIDRequest) (*rpc.SuccessResponse, error) {
	if err := s.mgr.StopContainer(req.ContainerID); err != nil {
		return nil, translateError(err)
	}
	return &rpc.SuccessResponse{Success: true}, nil
}

func (s *Server) DeleteContainer(ctx context.Context, req *rpc.ContainerIDRequest) (*rpc.SuccessResponse, error) {
	if err := s.mgr.DeleteContainer(req.ContainerID); err != nil {
		return nil, translateError(err)
	}
	return &rpc.SuccessResponse{Success: true}, nil
}

func (s *Server) GetContainer(ctx context.Context, req *rpc.ContainerIDRequest) (*rpc.GetContainerResponse, error) {
	c, err := s.mgr.GetContainer(req.ContainerID)
	if err != nil {
		return nil, translateError(err)
	}
	return rpc.FromContainer(c), nil
}

func (s *Server) ListContainers(ctx context.Context, req *rpc.ListContainersRequest) (*rpc.ListContainersResponse, error) {
	containers, err := s.mgr.ListContainers()
	if err != nil {
		return nil, translateError(err)
	}
	resp := &rpc.ListContainersResponse{Containers: make([]*rpc.GetContainerResponse, 0, len(containers))}
	for _, c := range containers {
		resp.Containers = append(resp.Containers, rpc.FromContainer(c))
	}
	return resp, nil
}

// translateError maps the manager's error taxonomy to grpc status codes.
// Everything not explicitly named here becomes codes.Internal, carrying
// the original message across the wire.
func translateError(err error) error {
	switch {
	case manager.IsNotFound(err):
		return status.Error(codes.NotFound, err.Error())
	case registry.IsAlreadyExists(err):
		return status.Error(codes.AlreadyExists, err.Error())
	case manager.IsPrecondition(err):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
