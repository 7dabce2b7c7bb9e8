package transport

import "sync"

import "github.com/google/uuid"

import "github.com/lapis-ps/paramserver/pkg/clog"
import "github.com/lapis-ps/paramserver/pkg/connpool"
import "github.com/lapis-ps/paramserver/pkg/peer"
import "github.com/lapis-ps/paramserver/pkg/transport/transportrpc"
import "github.com/lapis-ps/paramserver/pkg/wire"


//=========================================== Transport


const NAME = "Transport"

var Log = clog.NewCustomLog(NAME)

const InboxBuffSize = 4096
const OutboxBuffSize = 4096

/*
	Transport is the realized form of the external, MPI-shaped contract the
	core depends on: a rank/size addressing scheme, a non-blocking Probe for
	any-source tag-matched arrival, a blocking Recv against a known source,
	a Send that returns a handle pollable for completion, and a Finalize
	that tears the whole thing down exactly once.
*/

type Transport interface {
	Rank() peer.PeerID
	Size() int
	Probe() (src peer.PeerID, kind wire.MessageKind, ok bool)
	Recv(src peer.PeerID) ([]byte, error)
	Send(dst peer.PeerID, kind wire.MessageKind, payload []byte) *PendingSend
	Finalize() error
}

/*
	SendRecord tracks one outstanding Send the way RPCRequest tracked one
	outstanding MPI_Isend in original_source -- a correlation id, the
	destination, the number of transparent retries absorbed so far, and a
	completion signal.
*/

type SendRecord struct {
	ID       uuid.UUID
	Dst      peer.PeerID
	Tag      wire.MessageKind
	Payload  []byte
	Failures int

	done chan struct{}
	err  error
}

/*
	PendingSend is the handle returned to the caller. The record's done
	channel is closed exactly once the single-writer goroutine for Dst has
	written the envelope onto its stream and received the peer's Ack (or
	permanently failed after exhausting retries); closing rather than
	sending lets both Wait() and the engine's
	reaper observe completion without racing each other for a single
	buffered value.
*/

type PendingSend struct {
	record *SendRecord
}

/*
	NewCompletedSend builds a PendingSend that is already done -- for fake
	Transport implementations (e.g. in engine tests) that resolve a send
	synchronously rather than through a real outbound stream.
*/

func NewCompletedSend(err error) *PendingSend {
	done := make(chan struct{})
	close(done)
	return &PendingSend{record: &SendRecord{done: done, err: err}}
}

func (p *PendingSend) Wait() error {
	<-p.record.done
	return p.record.err
}

/*
	Done returns a channel that's closed on completion, for select-based
	polling (the engine's reaper).
*/

func (p *PendingSend) Done() <-chan struct{} {
	return p.record.done
}

/*
	Err returns the completion error. Only meaningful after Done() has
	fired.
*/

func (p *PendingSend) Err() error {
	return p.record.err
}

/*
	inboundItem is one Envelope delivered off a peer's Channel stream,
	queued for Probe/Recv to drain in arrival order.
*/

type inboundItem struct {
	src     peer.PeerID
	kind    wire.MessageKind
	payload []byte
}

/*
	outbound is the single-writer owner of one destination's Channel
	stream. Every SendRecord for that destination is funneled through its
	queue channel so writes onto the stream -- and therefore the peer's
	observed order -- exactly match enqueue order (spec.md §5 / Q6).
*/

type outbound struct {
	dst   peer.PeerID
	queue chan *SendRecord
	done  chan struct{}
}

/*
	grpcTransport is the concrete Transport, modeled on connpool.ConnectionPool
	for connection reuse and on RelayService/RepLogService for the
	goroutine-per-responsibility shape: one long-lived PeerTransport server
	accepting inbound streams, one outbound writer goroutine per peer.
*/

type grpcTransport struct {
	rank  peer.PeerID
	peers []*peer.Peer

	pool *connpool.ConnectionPool

	pendingMu sync.Mutex
	pending   []inboundItem

	outboundMu sync.Mutex
	outbounds  map[peer.PeerID]*outbound

	server *transportServer

	closeOnce sync.Once
	closed    chan struct{}
}

var _ Transport = (*grpcTransport)(nil)
var _ transportrpc.PeerTransportServer = (*transportServer)(nil)
