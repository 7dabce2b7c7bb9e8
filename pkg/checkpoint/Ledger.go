package checkpoint

import "encoding/binary"
import "os"
import "path/filepath"

import bolt "go.etcd.io/bbolt"


//=========================================== Checkpoint Ledger


/*
	NewLedger opens (creating if absent) the bolt database at
	~/.paramserver/<name>-checkpoints.db and ensures the root bucket exists
	-- the same open-then-CreateBucketIfNotExists shape as
	statemachine.NewStateMachine, scoped to one bucket.
*/

func NewLedger(name string) (*Ledger, error) {
	homedir, homeErr := os.UserHomeDir()
	if homeErr != nil { return nil, homeErr }

	dir := filepath.Join(homedir, ".paramserver")
	if mkErr := os.MkdirAll(dir, 0700); mkErr != nil { return nil, mkErr }

	dbPath := filepath.Join(dir, name+"-checkpoints.db")

	db, openErr := bolt.Open(dbPath, 0600, nil)
	if openErr != nil { return nil, openErr }

	initTx := func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists([]byte(RootBucket))
		return createErr
	}

	if initErr := db.Update(initTx); initErr != nil { return nil, initErr }

	return &Ledger{DBFile: dbPath, DB: db}, nil
}

/*
	LastCheckpointed returns the last step key was checkpointed at, or -1 if
	key has never been checkpointed.
*/

func (l *Ledger) LastCheckpointed(key string) (int, error) {
	last := -1

	transaction := func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(RootBucket))
		raw := bucket.Get([]byte(key))
		if raw == nil { return nil }

		last = int(binary.BigEndian.Uint64(raw))
		return nil
	}

	if err := l.DB.View(transaction); err != nil { return -1, err }

	return last, nil
}

/*
	Record persists step as the last-checkpointed step for key.
*/

func (l *Ledger) Record(key string, step int) error {
	transaction := func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(RootBucket))

		raw := make([]byte, 8)
		binary.BigEndian.PutUint64(raw, uint64(step))

		return bucket.Put([]byte(key), raw)
	}

	return l.DB.Update(transaction)
}

/*
	Due reports whether key should be checkpointed at step, given a policy
	of "begin after checkpointAfter steps, then every checkpointFrequency
	steps" -- a pure function of (checkpointAfter, checkpointFrequency,
	lastCheckpointedStep) as spec'd, so it survives process restarts of the
	handler without needing any extra in-memory counters.
*/

func (l *Ledger) Due(key string, step int, checkpointAfter int, checkpointFrequency int) (bool, error) {
	if step < checkpointAfter { return false, nil }

	last, err := l.LastCheckpointed(key)
	if err != nil { return false, err }

	if last < 0 { return true, nil }
	if checkpointFrequency <= 0 { return false, nil }

	return step-last >= checkpointFrequency, nil
}

/*
	Close releases the underlying bolt database.
*/

func (l *Ledger) Close() error {
	return l.DB.Close()
}
