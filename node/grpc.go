package node

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/quilclient/quilclient/wire"
)

// ServiceName is the fully qualified name of the node's gRPC service.
const ServiceName = "quilibrium.node.node.pb.NodeService"

const (
	methodGetFrames      = "/" + ServiceName + "/GetFrames"
	methodGetFrameInfo   = "/" + ServiceName + "/GetFrameInfo"
	methodGetPeerInfo    = "/" + ServiceName + "/GetPeerInfo"
	methodGetNetworkInfo = "/" + ServiceName + "/GetNetworkInfo"
	methodGetTokenInfo   = "/" + ServiceName + "/GetTokenInfo"
)

// NodeServiceServer is the server API for the NodeService.
//
// Messages are the hand-written wire types; servers must be created with
// ServerOptions so the wire codec is used.
type NodeServiceServer interface {
	GetFrames(context.Context, *wire.GetFramesRequest) (*wire.FramesResponse, error)
	GetFrameInfo(context.Context, *wire.GetFrameInfoRequest) (*wire.FrameInfoResponse, error)
	GetPeerInfo(context.Context, *wire.Empty) (*wire.PeerInfoResponse, error)
	GetNetworkInfo(context.Context, *wire.Empty) (*wire.NetworkInfoResponse, error)
	GetTokenInfo(context.Context, *wire.Empty) (*wire.TokenInfoResponse, error)
}

// UnimplementedNodeServiceServer can be embedded to have forward compatible implementations.
type UnimplementedNodeServiceServer struct{}

func (UnimplementedNodeServiceServer) GetFrames(context.Context, *wire.GetFramesRequest) (*wire.FramesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetFrames not implemented")
}
func (UnimplementedNodeServiceServer) GetFrameInfo(context.Context, *wire.GetFrameInfoRequest) (*wire.FrameInfoResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetFrameInfo not implemented")
}
func (UnimplementedNodeServiceServer) GetPeerInfo(context.Context, *wire.Empty) (*wire.PeerInfoResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetPeerInfo not implemented")
}
func (UnimplementedNodeServiceServer) GetNetworkInfo(context.Context, *wire.Empty) (*wire.NetworkInfoResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetNetworkInfo not implemented")
}
func (UnimplementedNodeServiceServer) GetTokenInfo(context.Context, *wire.Empty) (*wire.TokenInfoResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetTokenInfo not implemented")
}

// RegisterNodeServiceServer registers the NodeService on a gRPC server.
func RegisterNodeServiceServer(s grpc.ServiceRegistrar, srv NodeServiceServer) {
	s.RegisterService(&NodeService_ServiceDesc, srv)
}

// ServerOptions returns the options a server needs to speak the wire codec.
func ServerOptions() []grpc.ServerOption {
	return []grpc.ServerOption{grpc.ForceServerCodec(wire.Codec{})}
}

// NodeServiceClient is the client API for the NodeService.
type NodeServiceClient interface {
	GetFrames(ctx context.Context, in *wire.GetFramesRequest, opts ...grpc.CallOption) (*wire.FramesResponse, error)
	GetFrameInfo(ctx context.Context, in *wire.GetFrameInfoRequest, opts ...grpc.CallOption) (*wire.FrameInfoResponse, error)
	GetPeerInfo(ctx context.Context, in *wire.Empty, opts ...grpc.CallOption) (*wire.PeerInfoResponse, error)
	GetNetworkInfo(ctx context.Context, in *wire.Empty, opts ...grpc.CallOption) (*wire.NetworkInfoResponse, error)
	GetTokenInfo(ctx context.Context, in *wire.Empty, opts ...grpc.CallOption) (*wire.TokenInfoResponse, error)
}

type nodeServiceClient struct{ cc grpc.ClientConnInterface }

func NewNodeServiceClient(cc grpc.ClientConnInterface) NodeServiceClient {
	return &nodeServiceClient{cc: cc}
}

func (c *nodeServiceClient) invoke(ctx context.Context, method string, in, out wire.Message, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.ForceCodec(wire.Codec{})}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *nodeServiceClient) GetFrames(ctx context.Context, in *wire.GetFramesRequest, opts ...grpc.CallOption) (*wire.FramesResponse, error) {
	out := new(wire.FramesResponse)
	if err := c.invoke(ctx, methodGetFrames, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nodeServiceClient) GetFrameInfo(ctx context.Context, in *wire.GetFrameInfoRequest, opts ...grpc.CallOption) (*wire.FrameInfoResponse, error) {
	out := new(wire.FrameInfoResponse)
	if err := c.invoke(ctx, methodGetFrameInfo, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nodeServiceClient) GetPeerInfo(ctx context.Context, in *wire.Empty, opts ...grpc.CallOption) (*wire.PeerInfoResponse, error) {
	out := new(wire.PeerInfoResponse)
	if err := c.invoke(ctx, methodGetPeerInfo, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nodeServiceClient) GetNetworkInfo(ctx context.Context, in *wire.Empty, opts ...grpc.CallOption) (*wire.NetworkInfoResponse, error) {
	out := new(wire.NetworkInfoResponse)
	if err := c.invoke(ctx, methodGetNetworkInfo, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nodeServiceClient) GetTokenInfo(ctx context.Context, in *wire.Empty, opts ...grpc.CallOption) (*wire.TokenInfoResponse, error) {
	out := new(wire.TokenInfoResponse)
	if err := c.invoke(ctx, methodGetTokenInfo, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func _NodeService_GetFrames_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wire.GetFramesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeServiceServer).GetFrames(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetFrames}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NodeServiceServer).GetFrames(ctx, req.(*wire.GetFramesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _NodeService_GetFrameInfo_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wire.GetFrameInfoRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeServiceServer).GetFrameInfo(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetFrameInfo}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NodeServiceServer).GetFrameInfo(ctx, req.(*wire.GetFrameInfoRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _NodeService_GetPeerInfo_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wire.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeServiceServer).GetPeerInfo(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetPeerInfo}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NodeServiceServer).GetPeerInfo(ctx, req.(*wire.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _NodeService_GetNetworkInfo_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wire.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeServiceServer).GetNetworkInfo(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetNetworkInfo}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NodeServiceServer).GetNetworkInfo(ctx, req.(*wire.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _NodeService_GetTokenInfo_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wire.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeServiceServer).GetTokenInfo(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetTokenInfo}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NodeServiceServer).GetTokenInfo(ctx, req.(*wire.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// NodeService_ServiceDesc is the grpc.ServiceDesc for NodeService.
var NodeService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*NodeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetFrames", Handler: _NodeService_GetFrames_Handler},
		{MethodName: "GetFrameInfo", Handler: _NodeService_GetFrameInfo_Handler},
		{MethodName: "GetPeerInfo", Handler: _NodeService_GetPeerInfo_Handler},
		{MethodName: "GetNetworkInfo", Handler: _NodeService_GetNetworkInfo_Handler},
		{MethodName: "GetTokenInfo", Handler: _NodeService_GetTokenInfo_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "node.proto",
}
