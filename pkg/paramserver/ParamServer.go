package paramserver

import "fmt"
import "net"
import "time"

import "github.com/lapis-ps/paramserver/pkg/checkpoint"
import "github.com/lapis-ps/paramserver/pkg/engine"
import "github.com/lapis-ps/paramserver/pkg/handlers"
import "github.com/lapis-ps/paramserver/pkg/transport"


//=========================================== Param Server Lifecycle


/*
	NewParamServer assembles one rank's transport, engine, handler
	instance, and checkpoint ledger -- the paramserver analogue of
	NewRaftService, minus the leader election / replicated log / snapshot
	modules this domain has no use for.
*/

func NewParamServer(opts ParamServerOpts) (*ParamServer, error) {
	registry := handlers.NewRegistry()

	handler, handlerErr := registry.Create(opts.HandlerID)
	if handlerErr != nil { return nil, handlerErr }

	if setupErr := handler.Setup(opts.HandlerConfig); setupErr != nil { return nil, setupErr }

	ledger, ledgerErr := checkpoint.NewLedger(opts.CheckpointName)
	if ledgerErr != nil { return nil, ledgerErr }

	t := transport.NewTransport(transport.TransportOpts{
		Self:         opts.Self,
		Peers:        opts.Peers,
		ConnPoolOpts: opts.ConnPoolOpts,
	})

	listener, listenErr := net.Listen("tcp", opts.Self.Address)
	if listenErr != nil { return nil, fmt.Errorf("paramserver: could not listen on %s: %w", opts.Self.Address, listenErr) }

	t.Listen(listener)

	sleep := time.Duration(opts.SleepInterval) * time.Millisecond

	e := engine.Init(engine.EngineOpts{
		Transport:     t,
		SyncUpdate:    opts.SyncUpdate,
		NumMemServers: opts.NumMemServers,
		SleepInterval: sleep,
	})

	statsInterval := DefaultStatsInterval
	if opts.StatsInterval > 0 { statsInterval = time.Duration(opts.StatsInterval) * time.Millisecond }

	ps := &ParamServer{
		Self:       opts.Self,
		Engine:     e,
		Handler:    handler,
		Ledger:     ledger,
		Table:      newParamTable(),
		HandlerCfg: opts.HandlerConfig,

		statsInterval: statsInterval,
		statsStop:     make(chan struct{}),
	}

	ps.registerRequestHandlers()
	ps.registerCallbacks()
	ps.startStatsLoop()

	return ps, nil
}

/*
	Shutdown stops the stats loop, tears the engine (and therefore the
	transport) down, then closes the checkpoint ledger. Idempotent: the
	stats loop stops through statsStopOnce, the engine through its own
	running-flag guard.
*/

func (ps *ParamServer) Shutdown() error {
	ps.statsStopOnce.Do(func() { close(ps.statsStop) })
	ps.statsDone.Wait()

	if shutdownErr := ps.Engine.Shutdown(); shutdownErr != nil { return shutdownErr }
	return ps.Ledger.Close()
}
