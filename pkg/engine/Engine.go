package engine

import "github.com/lapis-ps/paramserver/pkg/peer"
import "github.com/lapis-ps/paramserver/pkg/queue"
import "github.com/lapis-ps/paramserver/pkg/responsepool"
import "github.com/lapis-ps/paramserver/pkg/wire"


//=========================================== Engine Lifecycle


/*
	Init builds the Engine and launches its transceiver and processor
	goroutines -- the Go expression of the teacher's NewXService +
	StartXService pair, and of original_source's
	NetworkThread::Init/NetworkLoop/ProcessLoop split into two goroutines
	instead of two pthreads.
*/

func Init(opts EngineOpts) *Engine {
	sleep := opts.SleepInterval
	if sleep <= 0 { sleep = DefaultSleepInterval }

	var q requestQueue
	if opts.SyncUpdate {
		q = queue.NewSyncQueue()
	} else {
		q = queue.NewAsyncQueue(opts.NumMemServers)
	}

	e := &Engine{
		transport:       opts.Transport,
		queue:           q,
		pool:            responsepool.New(),
		sleepInterval:   sleep,
		callbacks:       make(map[wire.MessageKind]func(src peer.PeerID, payload []byte)),
		requestHandlers: make(map[wire.MessageKind]func(payload []byte) error),
		stop:            make(chan struct{}),
		running:         true,
	}

	e.stopped.Add(2)
	go e.transceiverLoop()
	go e.processorLoop()

	return e
}
