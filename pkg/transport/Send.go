package transport

import "context"
import "fmt"
import "strconv"

import "google.golang.org/grpc/metadata"

import "github.com/google/uuid"

import "github.com/lapis-ps/paramserver/pkg/ferrors"
import "github.com/lapis-ps/paramserver/pkg/peer"
import "github.com/lapis-ps/paramserver/pkg/transport/transportrpc"
import "github.com/lapis-ps/paramserver/pkg/utils"
import "github.com/lapis-ps/paramserver/pkg/wire"


//=========================================== Outbound Send Path


const rankMetadataKey = "x-paramserver-rank"

/*
	Send enqueues an envelope onto the single-writer goroutine that owns the
	destination's Channel stream, lazily starting that goroutine (and
	dialing the peer) on first use -- one stream per ordered (src,dst) pair,
	preserving per-destination FIFO send order (spec.md Q6).
*/

func (t *grpcTransport) Send(dst peer.PeerID, kind wire.MessageKind, payload []byte) *PendingSend {
	record := &SendRecord{
		ID:      uuid.New(),
		Dst:     dst,
		Tag:     kind,
		Payload: payload,
		done:    make(chan struct{}),
	}

	ob := t.outboundFor(dst)
	ob.queue <- record

	return &PendingSend{record: record}
}

func (t *grpcTransport) outboundFor(dst peer.PeerID) *outbound {
	t.outboundMu.Lock()
	defer t.outboundMu.Unlock()

	if ob, ok := t.outbounds[dst]; ok { return ob }

	ob := &outbound{
		dst:   dst,
		queue: make(chan *SendRecord, OutboxBuffSize),
		done:  make(chan struct{}),
	}
	t.outbounds[dst] = ob

	go t.runOutbound(ob)

	return ob
}

/*
	runOutbound owns one Channel stream to dst for the lifetime of the
	transport, writing every enqueued SendRecord onto it in order and
	retiring each once Ack'd. If the stream breaks it is reopened and
	retried with exponential backoff, mirroring CollectActive's
	failures-counted retry of a dead MPI request.
*/

func (t *grpcTransport) runOutbound(ob *outbound) {
	defer close(ob.done)

	var stream transportrpc.PeerTransport_ChannelClient

	for record := range ob.queue {
		if stream == nil {
			s, streamErr := t.openStream(ob.dst)
			if streamErr != nil {
				Log.Error("could not open channel stream to", int32(ob.dst), ":", streamErr.Error())
				record.err = ferrors.NewTransportError(int(ob.dst), streamErr.Error())
				close(record.done)
				continue
			}
			stream = s
		}

		sendOne := func() (struct{}, error) {
			if sendErr := stream.Send(&transportrpc.Envelope{Tag: int32(record.Tag), Payload: record.Payload}); sendErr != nil {
				return struct{}{}, sendErr
			}
			if _, ackErr := stream.Recv(); ackErr != nil { return struct{}{}, ackErr }
			return struct{}{}, nil
		}

		maxRetries := utils.DefaultMaxRetries
		expBackoff := utils.NewExponentialBackoffStrat[struct{}](utils.ExpBackoffOpts{ MaxRetries: &maxRetries })

		_, failures, sendErr := expBackoff.PerformBackoff(sendOne)
		record.Failures = failures

		if sendErr != nil {
			Log.Warn("send to", int32(ob.dst), "failed after", failures, "attempts:", sendErr.Error())
			stream = nil
			record.err = ferrors.NewTransportError(int(ob.dst), sendErr.Error())
			close(record.done)
			continue
		}

		if failures > 0 { Log.Debug("send to", int32(ob.dst), "succeeded after", failures, "failures") }

		close(record.done)
	}
}

/*
	openStream dials dst (through the pooled connection) and opens its one
	Channel stream, stamping this rank into outgoing metadata so the peer's
	server-side handler knows which source slot to deliver into.
*/

func (t *grpcTransport) openStream(dst peer.PeerID) (transportrpc.PeerTransport_ChannelClient, error) {
	p := peer.FindByID(t.peers, dst)
	if p == nil { return nil, fmt.Errorf("transport: no peer registered for rank %d", dst) }

	conn, connErr := t.pool.GetConnection(p.Address)
	if connErr != nil { return nil, connErr }

	client := transportrpc.NewPeerTransportClient(conn)

	ctx := metadata.AppendToOutgoingContext(context.Background(), rankMetadataKey, strconv.Itoa(int(t.rank)))

	return client.Channel(ctx)
}

func rankFromContext(ctx context.Context) (peer.PeerID, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok { return 0, fmt.Errorf("transport: no metadata on channel stream") }

	vals := md.Get(rankMetadataKey)
	if len(vals) == 0 { return 0, fmt.Errorf("transport: no %s in channel stream metadata", rankMetadataKey) }

	rank, parseErr := strconv.Atoi(vals[0])
	if parseErr != nil { return 0, fmt.Errorf("transport: malformed rank metadata %q: %w", vals[0], parseErr) }

	return peer.PeerID(rank), nil
}
