package responsepool

import "sort"
import "sync"
import "time"

import "github.com/lapis-ps/paramserver/pkg/clog"
import "github.com/lapis-ps/paramserver/pkg/peer"
import "github.com/lapis-ps/paramserver/pkg/wire"


//=========================================== Response Pool


const NAME = "ResponsePool"

var Log = clog.NewCustomLog(NAME)

const SleepInterval = 1 * time.Millisecond

/*
	kindPool holds every source's FIFO for one MessageKind behind its own
	mutex -- one lock per kind (spec.md §5), rather than one lock for the
	whole pool. A plain sync.Mutex is enough here, unlike the recursive
	mutex per kind original_source uses: nothing in Deliver/Poll/pollAny
	re-enters another of the three while already holding it.
*/

type kindPool struct {
	mu      sync.Mutex
	fifos   map[peer.PeerID][][]byte
	sources []peer.PeerID
	seen    map[peer.PeerID]struct{}
}

func newKindPool() *kindPool {
	return &kindPool{fifos: make(map[peer.PeerID][][]byte), seen: make(map[peer.PeerID]struct{})}
}

/*
	ResponsePool holds one FIFO per (MessageKind, source) pair -- component
	C. It is the transceiver's drop box for anything that isn't a PUT/GET
	request (responses, control messages, sync replies) and the only path
	by which the coordinator or a caller of Send observes a reply.
	MaxMessageKind sizes the fixed, kind-indexed lock table.
*/

type ResponsePool struct {
	kinds [wire.MaxMessageKind]*kindPool
}

func New() *ResponsePool {
	p := &ResponsePool{}
	for i := range p.kinds { p.kinds[i] = newKindPool() }

	return p
}

/*
	Deliver appends payload to the (kind, src) FIFO. Called by the
	transceiver for every inbound envelope whose kind is not a request
	(spec.md §4.F).
*/

func (p *ResponsePool) Deliver(kind wire.MessageKind, src peer.PeerID, payload []byte) {
	kp := p.kinds[kind]

	kp.mu.Lock()
	defer kp.mu.Unlock()

	kp.fifos[src] = append(kp.fifos[src], payload)

	if _, ok := kp.seen[src]; !ok {
		kp.seen[src] = struct{}{}
		kp.sources = append(kp.sources, src)
		sort.Slice(kp.sources, func(i, j int) bool { return kp.sources[i] < kp.sources[j] })
	}
}

/*
	Poll is the non-blocking half of the contract: return and remove the
	head of the (kind, source) FIFO if present.
*/

func (p *ResponsePool) Poll(kind wire.MessageKind, src peer.PeerID) ([]byte, bool) {
	kp := p.kinds[kind]

	kp.mu.Lock()
	defer kp.mu.Unlock()

	fifo := kp.fifos[src]
	if len(fifo) == 0 { return nil, false }

	payload := fifo[0]
	kp.fifos[src] = fifo[1:]

	return payload, true
}

/*
	pollAny scans every source that has ever delivered kind, in ascending
	PeerID order, and returns the first with a pending envelope.
*/

func (p *ResponsePool) pollAny(kind wire.MessageKind) ([]byte, peer.PeerID, bool) {
	kp := p.kinds[kind]

	kp.mu.Lock()
	defer kp.mu.Unlock()

	for _, src := range kp.sources {
		fifo := kp.fifos[src]
		if len(fifo) == 0 { continue }

		payload := fifo[0]
		kp.fifos[src] = fifo[1:]
		return payload, src, true
	}

	return nil, 0, false
}

/*
	Read blocks (cooperative sleep, no condition variables) until a matching
	envelope is available. src == nil means ANY: sources are scanned in
	ascending order and the first match wins.
*/

func (p *ResponsePool) Read(kind wire.MessageKind, src *peer.PeerID, stop <-chan struct{}) ([]byte, peer.PeerID, bool) {
	for {
		select {
			case <-stop: return nil, 0, false
			default:
		}

		if src != nil {
			if payload, ok := p.Poll(kind, *src); ok { return payload, *src, true }
		} else if payload, from, ok := p.pollAny(kind); ok {
			return payload, from, true
		}

		time.Sleep(SleepInterval)
	}
}

/*
	Depth sums every pending envelope across every (kind, source) FIFO --
	a gauge fed into pkg/stats.
*/

func (p *ResponsePool) Depth() int {
	total := 0

	for _, kp := range p.kinds {
		kp.mu.Lock()
		for _, fifo := range kp.fifos { total += len(fifo) }
		kp.mu.Unlock()
	}

	return total
}

/*
	WaitForSync reads and discards count envelopes of replyKind from any
	source -- the join point for a broadcast (spec.md §4.C/§4.F).
*/

func (p *ResponsePool) WaitForSync(replyKind wire.MessageKind, count int, stop <-chan struct{}) bool {
	for i := 0; i < count; i++ {
		if _, _, ok := p.Read(replyKind, nil, stop); !ok { return false }
	}

	return true
}
