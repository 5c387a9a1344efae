package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// serviceName is the fully-qualified gRPC service name used on the wire.
// There is no .proto package to derive it from, so it is spelled out here
// the way protoc would have spelled it out for us.
const serviceName = "cruise.rpc.ContainerManager"

// ContainerManagerServer is the interface cruised implements against
// *manager.ContainerManager. It mirrors what protoc-gen-go-grpc would have
// generated from spec.md's RPC table.
type ContainerManagerServer interface {
	CreateContainer(context.Context, *CreateContainerRequest) (*CreateContainerResponse, error)
	StartContainer(context.Context, *ContainerIDRequest) (*SuccessResponse, error)
	StopContainer(context.Context, *ContainerIDRequest) (*SuccessResponse, error)
	DeleteContainer(context.Context, *ContainerIDRequest) (*SuccessResponse, error)
	GetContainer(context.Context, *ContainerIDRequest) (*GetContainerResponse, error)
	ListContainers(context.Context, *ListContainersRequest) (*ListContainersResponse, error)
}

// RegisterContainerManagerServer wires srv into gs using the hand-written
// ServiceDesc below.
func RegisterContainerManagerServer(gs *grpc.Server, srv ContainerManagerServer) {
	gs.RegisterService(&serviceDesc, srv)
}

func createContainerHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CreateContainerRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ContainerManagerServer).CreateContainer(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/CreateContainer"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ContainerManagerServer).CreateContainer(ctx, req.(*CreateContainerRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func startContainerHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ContainerIDRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ContainerManagerServer).StartContainer(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/StartContainer"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ContainerManagerServer).StartContainer(ctx, req.(*ContainerIDRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func stopContainerHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ContainerIDRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ContainerManagerServer).StopContainer(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/StopContainer"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ContainerManagerServer).StopContainer(ctx, req.(*ContainerIDRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func deleteContainerHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ContainerIDRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ContainerManagerServer).DeleteContainer(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/DeleteContainer"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ContainerManagerServer).DeleteContainer(ctx, req.(*ContainerIDRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getContainerHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ContainerIDRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ContainerManagerServer).GetContainer(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/GetContainer"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ContainerManagerServer).GetContainer(ctx, req.(*ContainerIDRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func listContainersHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListContainersRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ContainerManagerServer).ListContainers(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/ListContainers"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ContainerManagerServer).ListContainers(ctx, req.(*ListContainersRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// serviceDesc is the same shape protoc-gen-go-grpc emits: a service name,
// the server interface for type assertions, and one MethodDesc per unary
// RPC. There are no streaming methods.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ContainerManagerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateContainer", Handler: createContainerHandler},
		{MethodName: "StartContainer", Handler: startContainerHandler},
		{MethodName: "StopContainer", Handler: stopContainerHandler},
		{MethodName: "DeleteContainer", Handler: deleteContainerHandler},
		{MethodName: "GetContainer", Handler: getContainerHandler},
		{MethodName: "ListContainers", Handler: listContainersHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cruise.proto",
}

// ContainerManagerClient is the interface cruisectl drives. It mirrors
// ContainerManagerServer, with every method accepting a context and
// returning the same response/error shape a generated client would.
type ContainerManagerClient interface {
	CreateContainer(ctx context.Context, in *CreateContainerRequest, opts ...grpc.CallOption) (*CreateContainerResponse, error)
	StartContainer(ctx context.Context, in *ContainerIDRequest, opts ...grpc.CallOption) (*SuccessResponse, error)
	StopContainer(ctx context.Context, in *ContainerIDRequest, opts ...grpc.CallOption) (*SuccessResponse, error)
	DeleteContainer(ctx context.Context, in *ContainerIDRequest, opts ...grpc.CallOption) (*SuccessResponse, error)
	GetContainer(ctx context.Context, in *ContainerIDRequest, opts ...grpc.CallOption) (*GetContainerResponse, error)
	ListContainers(ctx context.Context, in *ListContainersRequest, opts ...grpc.CallOption) (*ListContainersResponse, error)
}

type containerManagerClient struct {
	cc grpc.ClientConnInterface
}

// NewContainerManagerClient wraps a grpc.ClientConnInterface, forcing every
// call onto the JSON content-subtype registered in codec.go.
func NewContainerManagerClient(cc grpc.ClientConnInterface) ContainerManagerClient {
	return &containerManagerClient{cc: cc}
}

func withJSONSubtype(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
}

func (c *containerManagerClient) CreateContainer(ctx context.Context, in *CreateContainerRequest, opts ...grpc.CallOption) (*CreateContainerResponse, error) {
	out := new(CreateContainerResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/CreateContainer", in, out, withJSONSubtype(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *containerManagerClient) StartContainer(ctx context.Context, in *ContainerIDRequest, opts ...grpc.CallOption) (*SuccessResponse, error) {
	out := new(SuccessResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/StartContainer", in, out, withJSONSubtype(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *containerManagerClient) StopContainer(ctx context.Context, in *ContainerIDRequest, opts ...grpc.CallOption) (*SuccessResponse, error) {
	out := new(SuccessResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/StopContainer", in, out, withJSONSubtype(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *containerManagerClient) DeleteContainer(ctx context.Context, in *ContainerIDRequest, opts ...grpc.CallOption) (*SuccessResponse, error) {
	out := new(SuccessResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/DeleteContainer", in, out, withJSONSubtype(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *containerManagerClient) GetContainer(ctx context.Context, in *ContainerIDRequest, opts ...grpc.CallOption) (*GetContainerResponse, error) {
	out := new(GetContainerResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/GetContainer", in, out, withJSONSubtype(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *containerManagerClient) ListContainers(ctx context.Context, in *ListContainersRequest, opts ...grpc.CallOption) (*ListContainersResponse, error) {
	out := new(ListContainersResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/ListContainers", in, out, withJSONSubtype(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}
