package transportrpc


//=========================================== Wire Messages


/*
	Envelope and Ack are the two messages of transport.proto. They're kept
	as plain structs distinct from wire.Envelope -- the same separation the
	teacher draws between e.g. replogrpc.LogEntry (wire) and
	system.LogEntry[T] (domain) -- and are marshaled by EnvelopeCodec rather
	than a protoc-generated, descriptor-backed Marshal/Unmarshal pair (see
	DESIGN.md).
*/

type Envelope struct {
	Tag     int32
	Payload []byte
}

type Ack struct {
	Tag int32
}
