package checkpoint

import bolt "go.etcd.io/bbolt"

import "github.com/lapis-ps/paramserver/pkg/clog"


//=========================================== Checkpoint Ledger Types


const NAME = "Checkpoint"

var Log = clog.NewCustomLog(NAME)

const RootBucket = "checkpoints"

/*
	Ledger is a narrow, per-handler-instance record of "what step was key
	last checkpointed at", backed by a bbolt database local to this process
	-- not the parameter table/shard store itself, which stays an external
	collaborator (spec.md §1 non-goals). Modeled on statemachine.StateMachine's
	single-bucket bolt.DB ownership, minus the collection/index sub-buckets
	this ledger has no use for.
*/

type Ledger struct {
	DBFile string
	DB     *bolt.DB
}
