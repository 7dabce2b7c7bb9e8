package transportrpc

import "context"

import "google.golang.org/grpc"
import "google.golang.org/grpc/codes"
import "google.golang.org/grpc/status"


//=========================================== PeerTransport Service


/*
	Hand-written in the shape protoc-gen-go-grpc would produce from
	transport.proto -- a ServiceDesc is plain Go data (method/stream name,
	handler func, handler type), it needs no descriptor bytes, unlike the
	message types in Messages.go/Codec.go (see DESIGN.md).
*/

const PeerTransportChannelFullMethodName = "/transportrpc.PeerTransport/Channel"

type PeerTransportClient interface {
	Channel(ctx context.Context, opts ...grpc.CallOption) (PeerTransport_ChannelClient, error)
}

type peerTransportClient struct {
	cc grpc.ClientConnInterface
}

func NewPeerTransportClient(cc grpc.ClientConnInterface) PeerTransportClient {
	return &peerTransportClient{cc}
}

func (c *peerTransportClient) Channel(ctx context.Context, opts ...grpc.CallOption) (PeerTransport_ChannelClient, error) {
	stream, err := c.cc.NewStream(ctx, &PeerTransportServiceDesc.Streams[0], PeerTransportChannelFullMethodName, opts...)
	if err != nil { return nil, err }

	return &peerTransportChannelClient{stream}, nil
}

type PeerTransport_ChannelClient interface {
	Send(*Envelope) error
	Recv() (*Ack, error)
	grpc.ClientStream
}

type peerTransportChannelClient struct {
	grpc.ClientStream
}

func (x *peerTransportChannelClient) Send(m *Envelope) error {
	return x.ClientStream.SendMsg(m)
}

func (x *peerTransportChannelClient) Recv() (*Ack, error) {
	m := new(Ack)
	if err := x.ClientStream.RecvMsg(m); err != nil { return nil, err }

	return m, nil
}

type PeerTransportServer interface {
	Channel(PeerTransport_ChannelServer) error
}

type UnimplementedPeerTransportServer struct{}

func (UnimplementedPeerTransportServer) Channel(PeerTransport_ChannelServer) error {
	return status.Errorf(codes.Unimplemented, "method Channel not implemented")
}

func RegisterPeerTransportServer(s grpc.ServiceRegistrar, srv PeerTransportServer) {
	s.RegisterService(&PeerTransportServiceDesc, srv)
}

func peerTransportChannelHandler(srv interface{}, stream grpc.ServerStream) error {
	return srv.(PeerTransportServer).Channel(&peerTransportChannelServer{stream})
}

type PeerTransport_ChannelServer interface {
	Send(*Ack) error
	Recv() (*Envelope, error)
	grpc.ServerStream
}

type peerTransportChannelServer struct {
	grpc.ServerStream
}

func (x *peerTransportChannelServer) Send(m *Ack) error {
	return x.ServerStream.SendMsg(m)
}

func (x *peerTransportChannelServer) Recv() (*Envelope, error) {
	m := new(Envelope)
	if err := x.ServerStream.RecvMsg(m); err != nil { return nil, err }

	return m, nil
}

var PeerTransportServiceDesc = grpc.ServiceDesc{
	ServiceName: "transportrpc.PeerTransport",
	HandlerType: (*PeerTransportServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Channel",
			Handler:       peerTransportChannelHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "transport.proto",
}
