package wire

import "fmt"

import "google.golang.org/protobuf/encoding/protowire"


//=========================================== Tagged Envelope


/*
	Envelope pairs a MessageKind tag with an opaque serialized payload --
	the unit transported between the transceiver, the response pool, and
	the request queues (spec.md §3/§4.A).

	Payload encoding is opaque to the core; only PutRequest/GetRequest
	payloads are ever inspected, and only to extract the key field.

	Envelope itself is wire-encoded as a two-field protobuf message (field 1
	varint tag, field 2 length-delimited payload) using the low-level
	protowire primitives directly -- see DESIGN.md for why this repo hand
	-encodes the wire format instead of depending on protoc-generated
	descriptors.
*/

type Envelope struct {
	Tag     MessageKind
	Payload []byte
}

const tagFieldNumber = protowire.Number(1)
const payloadFieldNumber = protowire.Number(2)

func (e *Envelope) Marshal() []byte {
	b := make([]byte, 0, len(e.Payload) + 16)

	b = protowire.AppendTag(b, tagFieldNumber, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(uint32(e.Tag)))

	b = protowire.AppendTag(b, payloadFieldNumber, protowire.BytesType)
	b = protowire.AppendBytes(b, e.Payload)

	return b
}

func UnmarshalEnvelope(b []byte) (*Envelope, error) {
	env := &Envelope{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 { return nil, fmt.Errorf("wire: malformed envelope tag: %w", protowire.ParseError(n)) }
		b = b[n:]

		switch {
			case num == tagFieldNumber && typ == protowire.VarintType:
				v, n := protowire.ConsumeVarint(b)
				if n < 0 { return nil, fmt.Errorf("wire: malformed envelope kind: %w", protowire.ParseError(n)) }
				env.Tag = MessageKind(int32(v))
				b = b[n:]
			case num == payloadFieldNumber && typ == protowire.BytesType:
				v, n := protowire.ConsumeBytes(b)
				if n < 0 { return nil, fmt.Errorf("wire: malformed envelope payload: %w", protowire.ParseError(n)) }
				env.Payload = v
				b = b[n:]
			default:
				n := protowire.ConsumeFieldValue(num, typ, b)
				if n < 0 { return nil, fmt.Errorf("wire: malformed envelope field %d: %w", num, protowire.ParseError(n)) }
				b = b[n:]
		}
	}

	return env, nil
}
