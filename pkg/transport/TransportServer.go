package transport

import "io"

import "github.com/lapis-ps/paramserver/pkg/transport/transportrpc"
import "github.com/lapis-ps/paramserver/pkg/wire"


//=========================================== Peer Transport Server


/*
	transportServer implements transportrpc.PeerTransportServer. One Channel
	stream is opened per ordered (source,destination) pair by the source's
	outbound writer (Send.go); this is the destination-side half that drains
	it, mirroring RelayService's grpc.ServiceDesc-registered handler shape.
*/

type transportServer struct {
	transportrpc.UnimplementedPeerTransportServer
	t *grpcTransport
}

func newTransportServer(t *grpcTransport) *transportServer {
	return &transportServer{t: t}
}

/*
	Channel reads Envelopes off the stream for as long as the peer keeps it
	open, delivering each into the pending queue Probe/Recv drain, and Acks
	every envelope it consumes so the sender's writer goroutine can retire
	the matching SendRecord.

	transportrpc.Envelope.Tag is the wire.MessageKind directly and .Payload
	is the opaque application payload -- there is no second encoding layer
	(wire.Envelope.Marshal is not used on this stream).

	The source rank isn't carried by the message at all: one Channel stream
	is opened per ordered (source,destination) pair, and the source rank
	rides in gRPC metadata set once when the stream is opened (see Send.go).
*/

func (s *transportServer) Channel(stream transportrpc.PeerTransport_ChannelServer) error {
	src, srcErr := rankFromContext(stream.Context())
	if srcErr != nil {
		Log.Error("rejecting channel stream, no source rank:", srcErr.Error())
		return srcErr
	}

	for {
		msg, recvErr := stream.Recv()
		if recvErr == io.EOF { return nil }
		if recvErr != nil {
			Log.Warn("channel stream from", int32(src), "ended:", recvErr.Error())
			return recvErr
		}

		s.t.deliver(src, wire.MessageKind(msg.Tag), msg.Payload)

		if ackErr := stream.Send(&transportrpc.Ack{Tag: msg.Tag}); ackErr != nil {
			Log.Warn("failed to ack envelope from", int32(src), ":", ackErr.Error())
			return ackErr
		}
	}
}
