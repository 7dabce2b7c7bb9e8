package wire

import "github.com/lapis-ps/paramserver/pkg/ferrors"
import "github.com/lapis-ps/paramserver/pkg/utils"


//=========================================== Payload Schemas


/*
	Payload schemas are opaque to the core except for key extraction
	(spec.md §6). They're JSON-encoded the same way the teacher encodes
	replicated log commands (utils.EncodeStructToString/DecodeStringToStruct)
	rather than protobuf, since the core never needs to reflect over their
	full structure -- only ExtractKey below inspects them, and only for
	the `key` field.

	Named *Payload to avoid colliding with the MessageKind constants of the
	same name in Kinds.go.
*/

type GetRequestPayload struct {
	Key    string
	Source int32
}

type PutRequestPayload struct {
	Key   string
	Shard int32
	Value []byte
}

type GetResponsePayload struct {
	Key   string
	Value []byte
	Found bool
}

type PutResponsePayload struct {
	Key     string
	Applied bool
}

// EmptyPayload acknowledges a broadcast; carries no data.
type EmptyPayload struct{}

/*
	ExtractKey pulls the `key` field out of a PutRequest/GetRequest payload
	without the caller needing to know which schema applies -- mirrors
	RequestQueue::ExtractKey in original_source/src/core/rpc.cc. A payload
	that doesn't parse against the schema its tag promises is a
	ferrors.ProtocolError, fatal per spec.md §7.
*/

func ExtractKey(tag MessageKind, payload []byte) (string, error) {
	switch tag {
		case GetRequest:
			req, err := utils.DecodeBytesToStruct[GetRequestPayload](payload)
			if err != nil { return "", ferrors.NewProtocolError(int32(tag), err.Error()) }
			return req.Key, nil
		case PutRequest:
			req, err := utils.DecodeBytesToStruct[PutRequestPayload](payload)
			if err != nil { return "", ferrors.NewProtocolError(int32(tag), err.Error()) }
			return req.Key, nil
		default:
			return "", nil
	}
}
