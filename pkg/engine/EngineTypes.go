package engine

import "sync"
import "time"

import "github.com/lapis-ps/paramserver/pkg/clog"
import "github.com/lapis-ps/paramserver/pkg/peer"
import "github.com/lapis-ps/paramserver/pkg/queue"
import "github.com/lapis-ps/paramserver/pkg/responsepool"
import "github.com/lapis-ps/paramserver/pkg/transport"
import "github.com/lapis-ps/paramserver/pkg/wire"


//=========================================== Network Engine Types


const NAME = "Engine"

var Log = clog.NewCustomLog(NAME)

const DefaultSleepInterval = 1 * time.Millisecond

/*
	requestQueue is satisfied by both queue.SyncQueue and queue.AsyncQueue --
	Init picks one or the other based on EngineOpts.SyncUpdate, exactly as
	RequestQueue::Create picked a SyncRequestQueue or AsyncRequestQueue in
	original_source (spec.md §4.F: "a single process-wide engine instance
	with explicit init() ... init() chooses the sync or async queue
	implementation based on a boolean configuration option").
*/

type requestQueue interface {
	Enqueue(tag wire.MessageKind, payload []byte) error
	Next(stop <-chan struct{}) (queue.Item, bool)
}

type EngineOpts struct {
	Transport     transport.Transport
	SyncUpdate    bool
	NumMemServers int
	SleepInterval time.Duration
}

/*
	Engine is the single process-wide transceiver+processor pair -- component
	F. One Engine owns exactly one Transport, one request queue, and one
	response pool; RegisterCallback/RegisterRequestHandler wire in the
	application-level dispatch the spec requires stay outside the core
	(shard assignment handling, PUT/GET handler dispatch).
*/

type Engine struct {
	transport transport.Transport
	queue     requestQueue
	pool      *responsepool.ResponsePool

	sleepInterval time.Duration

	callbacksMu sync.RWMutex
	callbacks   map[wire.MessageKind]func(src peer.PeerID, payload []byte)

	requestHandlersMu sync.RWMutex
	requestHandlers   map[wire.MessageKind]func(payload []byte) error

	inFlightMu sync.Mutex
	inFlight   []*transport.PendingSend

	runningMu sync.Mutex
	running   bool
	stop      chan struct{}
	stopped   sync.WaitGroup
}
