package paramserver

import "sync"
import "time"

import "github.com/lapis-ps/paramserver/pkg/checkpoint"
import "github.com/lapis-ps/paramserver/pkg/clog"
import "github.com/lapis-ps/paramserver/pkg/connpool"
import "github.com/lapis-ps/paramserver/pkg/engine"
import "github.com/lapis-ps/paramserver/pkg/handlers"
import "github.com/lapis-ps/paramserver/pkg/peer"


//=========================================== Param Server


const NAME = "ParamServer"

var Log = clog.NewCustomLog(NAME)

/*
	ParamServerOpts wires one rank's transport, engine, handler, and
	checkpoint ledger together -- the paramserver analogue of
	RaftServiceOpts, built and passed by value from a literal struct in
	cmd/paramserver/main.go rather than through a flags/config-file layer
	(spec.md §A: no CLI parsing library is introduced).
*/

type ParamServerOpts struct {
	Self  *peer.Peer
	Peers []*peer.Peer

	SyncUpdate    bool
	NumMemServers int
	SleepInterval int // milliseconds, 0 means engine default

	HandlerID     string
	HandlerConfig handlers.HandlerConfig

	CheckpointName string
	StatsInterval  int // milliseconds, 0 means DefaultStatsInterval

	ConnPoolOpts connpool.ConnectionPoolOpts
}

// DefaultStatsInterval is how often ParamServer logs its depth gauges (see pkg/stats).
const DefaultStatsInterval = 30 * time.Second

/*
	tableEntry is one key's live parameter state plus the training step it
	was last updated at -- the step feeds both the learning-rate schedule
	(handlers.updateHyperParam) and the handler's CheckpointNow
	checkpoint-after/checkpoint-frequency predicate; when that predicate
	fires, the step is recorded in the checkpoint ledger. The table/shard store
	proper stays an external collaborator (spec.md §1 non-goals); this map
	is only enough in-memory state for the handler contract to operate on
	in this process.
*/

type tableEntry struct {
	mu    sync.Mutex
	value handlers.Value
	step  int
}

/*
	ParamTable is a structural-mutex-guarded map of per-key entries,
	following the same "lock the index to create or look up a slot, then
	lock the slot itself" discipline as queue.keyTable.
*/

type ParamTable struct {
	structMu sync.Mutex
	entries  map[string]*tableEntry
}

func newParamTable() *ParamTable {
	return &ParamTable{entries: make(map[string]*tableEntry)}
}

func (t *ParamTable) resolve(key string) *tableEntry {
	t.structMu.Lock()
	defer t.structMu.Unlock()

	entry, ok := t.entries[key]
	if !ok {
		entry = &tableEntry{}
		t.entries[key] = entry
	}

	return entry
}

/*
	ParamServer owns one rank's Engine plus the handler/checkpoint state
	the engine's registered request handlers close over.
*/

type ParamServer struct {
	Self *peer.Peer

	Engine     *engine.Engine
	Handler    handlers.Handler
	Ledger     *checkpoint.Ledger
	Table      *ParamTable
	HandlerCfg handlers.HandlerConfig

	statsInterval time.Duration
	statsStop     chan struct{}
	statsStopOnce sync.Once
	statsDone     sync.WaitGroup
}
