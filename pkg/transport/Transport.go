package transport

import "errors"
import "net"
import "time"

import "google.golang.org/grpc"

import "github.com/lapis-ps/paramserver/pkg/connpool"
import "github.com/lapis-ps/paramserver/pkg/peer"
import "github.com/lapis-ps/paramserver/pkg/transport/transportrpc"
import "github.com/lapis-ps/paramserver/pkg/wire"


//=========================================== Transport Lifecycle


type TransportOpts struct {
	Self         *peer.Peer
	Peers        []*peer.Peer // every peer, Self included, indexed by rank
	ConnPoolOpts connpool.ConnectionPoolOpts
}

const PollSleep = 500 * time.Microsecond

var ErrTransportClosed = errors.New("transport: finalized")

/*
	NewTransport builds the grpcTransport for one rank. The connection pool
	is opened with CallContentSubtype(transportrpc.Name) as a default call
	option so every dial through it negotiates EnvelopeCodec rather than
	grpc-go's default proto codec (see DESIGN.md).
*/

func NewTransport(opts TransportOpts) *grpcTransport {
	dialOpts := append([]grpc.DialOption{
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(transportrpc.Name)),
	}, opts.ConnPoolOpts.DialOptions...)

	poolOpts := opts.ConnPoolOpts
	poolOpts.DialOptions = dialOpts
	if poolOpts.MaxConn == 0 { poolOpts.MaxConn = 1 }

	t := &grpcTransport{
		rank:      opts.Self.ID,
		peers:     opts.Peers,
		pool:      connpool.NewConnectionPool(poolOpts),
		pending:   make([]inboundItem, 0, InboxBuffSize),
		outbounds: make(map[peer.PeerID]*outbound),
		closed:    make(chan struct{}),
	}

	t.server = newTransportServer(t)

	return t
}

/*
	Listen starts the PeerTransport gRPC server for this rank on listener,
	mirroring RelayService.StartRelayService's serve-in-a-goroutine shape.
*/

func (t *grpcTransport) Listen(listener net.Listener) {
	srv := grpc.NewServer()
	transportrpc.RegisterPeerTransportServer(srv, t.server)

	Log.Info("transport gRPC server listening on", listener.Addr().String())

	go func() {
		if err := srv.Serve(listener); err != nil { Log.Error("transport server stopped serving:", err.Error()) }
	}()
}

func (t *grpcTransport) Rank() peer.PeerID { return t.rank }
func (t *grpcTransport) Size() int { return len(t.peers) }

/*
	Probe reports whether an envelope has arrived from any source, without
	consuming it -- the non-blocking, any-source half of the MPI contract
	spec.md §6 asks for.
*/

func (t *grpcTransport) Probe() (peer.PeerID, wire.MessageKind, bool) {
	t.pendingMu.Lock()
	defer t.pendingMu.Unlock()

	if len(t.pending) == 0 { return 0, 0, false }

	head := t.pending[0]
	return head.src, head.kind, true
}

/*
	Recv blocks until an envelope from src is available, then consumes and
	returns its payload. No condition variables -- a short sleep between
	failed lookups, matching the cooperative-sleep polling model used
	throughout the engine (spec.md design notes).
*/

func (t *grpcTransport) Recv(src peer.PeerID) ([]byte, error) {
	for {
		t.pendingMu.Lock()
		for i, item := range t.pending {
			if item.src == src {
				t.pending = append(t.pending[:i], t.pending[i+1:]...)
				t.pendingMu.Unlock()
				return item.payload, nil
			}
		}
		t.pendingMu.Unlock()

		select {
			case <-t.closed: return nil, ErrTransportClosed
			default:
		}

		time.Sleep(PollSleep)
	}
}

func (t *grpcTransport) deliver(src peer.PeerID, kind wire.MessageKind, payload []byte) {
	t.pendingMu.Lock()
	t.pending = append(t.pending, inboundItem{src: src, kind: kind, payload: payload})
	t.pendingMu.Unlock()
}

/*
	Finalize tears down every outbound writer and every pooled connection
	exactly once, mirroring NetworkThread::Shutdown's running_-guarded
	MPI_Finalize call.
*/

func (t *grpcTransport) Finalize() error {
	var closeErr error

	t.closeOnce.Do(func() {
		close(t.closed)

		t.outboundMu.Lock()
		for _, ob := range t.outbounds { close(ob.queue) }
		t.outboundMu.Unlock()

		for _, ob := range t.outbounds { <-ob.done }

		closeErr = t.pool.CloseAll()
	})

	return closeErr
}
