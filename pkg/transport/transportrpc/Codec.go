package transportrpc

import "fmt"

import "google.golang.org/protobuf/encoding/protowire"


//=========================================== Envelope Codec


/*
	EnvelopeCodec implements google.golang.org/grpc/encoding.Codec directly
	against the protobuf wire format using protowire's low-level append/
	consume primitives, instead of depending on protoc-generated,
	descriptor-backed message types (see DESIGN.md for why).

	Registered once via encoding.RegisterCodec and selected per-dial with
	grpc.WithDefaultCallOptions(grpc.CallContentSubtype(Name)).
*/

const Name = "envelopepb"

type EnvelopeCodec struct{}

func (EnvelopeCodec) Name() string { return Name }

func (EnvelopeCodec) Marshal(v interface{}) ([]byte, error) {
	switch msg := v.(type) {
		case *Envelope:
			b := make([]byte, 0, len(msg.Payload) + 16)
			b = protowire.AppendTag(b, 1, protowire.VarintType)
			b = protowire.AppendVarint(b, uint64(uint32(msg.Tag)))
			b = protowire.AppendTag(b, 2, protowire.BytesType)
			b = protowire.AppendBytes(b, msg.Payload)
			return b, nil
		case *Ack:
			b := make([]byte, 0, 8)
			b = protowire.AppendTag(b, 1, protowire.VarintType)
			b = protowire.AppendVarint(b, uint64(uint32(msg.Tag)))
			return b, nil
		default:
			return nil, fmt.Errorf("transportrpc: codec cannot marshal %T", v)
	}
}

func (EnvelopeCodec) Unmarshal(data []byte, v interface{}) error {
	switch msg := v.(type) {
		case *Envelope:
			return unmarshalEnvelope(data, msg)
		case *Ack:
			return unmarshalAck(data, msg)
		default:
			return fmt.Errorf("transportrpc: codec cannot unmarshal into %T", v)
	}
}

func unmarshalEnvelope(b []byte, env *Envelope) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 { return fmt.Errorf("transportrpc: malformed envelope tag: %w", protowire.ParseError(n)) }
		b = b[n:]

		switch {
			case num == 1 && typ == protowire.VarintType:
				v, n := protowire.ConsumeVarint(b)
				if n < 0 { return fmt.Errorf("transportrpc: malformed envelope kind: %w", protowire.ParseError(n)) }
				env.Tag = int32(v)
				b = b[n:]
			case num == 2 && typ == protowire.BytesType:
				v, n := protowire.ConsumeBytes(b)
				if n < 0 { return fmt.Errorf("transportrpc: malformed envelope payload: %w", protowire.ParseError(n)) }
				env.Payload = v
				b = b[n:]
			default:
				n := protowire.ConsumeFieldValue(num, typ, b)
				if n < 0 { return fmt.Errorf("transportrpc: malformed envelope field %d: %w", num, protowire.ParseError(n)) }
				b = b[n:]
		}
	}

	return nil
}

func unmarshalAck(b []byte, ack *Ack) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 { return fmt.Errorf("transportrpc: malformed ack tag: %w", protowire.ParseError(n)) }
		b = b[n:]

		switch {
			case num == 1 && typ == protowire.VarintType:
				v, n := protowire.ConsumeVarint(b)
				if n < 0 { return fmt.Errorf("transportrpc: malformed ack kind: %w", protowire.ParseError(n)) }
				ack.Tag = int32(v)
				b = b[n:]
			default:
				n := protowire.ConsumeFieldValue(num, typ, b)
				if n < 0 { return fmt.Errorf("transportrpc: malformed ack field %d: %w", num, protowire.ParseError(n)) }
				b = b[n:]
		}
	}

	return nil
}
