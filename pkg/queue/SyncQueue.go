package queue

import "sync"
import "time"

import "github.com/lapis-ps/paramserver/pkg/wire"


//=========================================== Synchronous Request Queue


/*
	SyncQueue serializes request processing so at most one request per key
	is in flight, keys serviced strict round-robin -- component D.
	Grounded on original_source's SyncRequestQueue::Enqueue/NextRequest.
*/

const SleepInterval = 1 * time.Millisecond

type syncSlot struct {
	mu sync.Mutex
	q  fifo
}

type SyncQueue struct {
	keys  *keyTable
	slots []*syncSlot

	slotsMu sync.RWMutex
	cursor  int
}

func NewSyncQueue() *SyncQueue {
	return &SyncQueue{keys: newKeyTable()}
}

/*
	Enqueue extracts the key from the payload and appends the request to
	that key's slot, creating the slot under the structural lock if this is
	the first sighting of the key.
*/

func (q *SyncQueue) Enqueue(tag wire.MessageKind, payload []byte) error {
	key, keyErr := wire.ExtractKey(tag, payload)
	if keyErr != nil { return keyErr }

	idx := q.keys.resolve(key, func() {
		q.slotsMu.Lock()
		q.slots = append(q.slots, &syncSlot{})
		q.slotsMu.Unlock()
	})

	q.slotsMu.RLock()
	slot := q.slots[idx]
	q.slotsMu.RUnlock()

	slot.mu.Lock()
	slot.q.push(newItem(tag, payload))
	slot.mu.Unlock()

	return nil
}

/*
	Next walks the slot table starting at cursor, one visit per slot,
	popping the first non-empty slot's head. If no slot exists yet, or every
	slot is currently empty, it sleeps SleepInterval and retries -- the
	cooperative-sleep polling model used throughout the engine, no condition
	variables. Returns false only once stop is closed.
*/

func (q *SyncQueue) Next(stop <-chan struct{}) (Item, bool) {
	for {
		select {
			case <-stop: return Item{}, false
			default:
		}

		n := q.keys.slotCount()
		if n == 0 {
			time.Sleep(SleepInterval)
			continue
		}

		q.slotsMu.RLock()
		idx := q.cursor % n
		slot := q.slots[idx]
		q.slotsMu.RUnlock()

		slot.mu.Lock()
		item, ok := slot.q.pop()
		slot.mu.Unlock()

		q.cursor = (q.cursor + 1) % n

		if ok { return item, true }

		time.Sleep(SleepInterval)
	}
}
