package wire


//=========================================== Message Kind


/*
	MessageKind is the tag carried by every Envelope. The enumeration is
	closed and bounded at compile time by MaxMessageKind, which sizes the
	per-kind table of the response pool (spec.md §3).
*/

type MessageKind int32

const (
	PutRequest MessageKind = iota
	GetRequest
	PutResponse
	GetResponse
	ShardAssignment
	RegisterWorker
	WorkerShutdown
	SyncReply // acknowledges a broadcast, consumed by WaitForSync

	MaxMessageKind // sentinel -- not a real kind, sizes per-kind tables
)

func (k MessageKind) String() string {
	switch k {
		case PutRequest: return "PUT_REQUEST"
		case GetRequest: return "GET_REQUEST"
		case PutResponse: return "PUT_RESPONSE"
		case GetResponse: return "GET_RESPONSE"
		case ShardAssignment: return "SHARD_ASSIGNMENT"
		case RegisterWorker: return "REGISTER_WORKER"
		case WorkerShutdown: return "WORKER_SHUTDOWN"
		case SyncReply: return "SYNC_REPLY"
		default: return "UNKNOWN"
	}
}

/*
	IsRequest reports whether this kind is routed to a request queue (D/E)
	rather than the response pool (C).
*/

func (k MessageKind) IsRequest() bool {
	return k == PutRequest || k == GetRequest
}
