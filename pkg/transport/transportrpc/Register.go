package transportrpc

import "google.golang.org/grpc/encoding"


//=========================================== Codec Registration


/*
	Registering the codec at package init means any grpc.ClientConn dialed
	with grpc.WithDefaultCallOptions(grpc.CallContentSubtype(Name)), and any
	grpc.Server receiving a request with that content-subtype, negotiate
	EnvelopeCodec automatically -- the same "import for side effect" pattern
	google.golang.org/grpc/encoding/proto itself uses to register the
	default codec.
*/

func init() {
	encoding.RegisterCodec(EnvelopeCodec{})
}
