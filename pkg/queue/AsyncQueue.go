package queue

import "fmt"
import "sync"
import "time"

import "github.com/lapis-ps/paramserver/pkg/ferrors"
import "github.com/lapis-ps/paramserver/pkg/wire"


//=========================================== Asynchronous Request Queue


/*
	AsyncQueue interleaves PUT and GET bursts per key: after a key's first
	PUT, it drains N GETs then N PUTs then N GETs ... where N is the number
	of memory servers -- component E. Grounded on original_source's
	AsyncRequestQueue::Enqueue/NextRequest, including the first-drain flip
	and the CHECK_LT overflow abort (translated to a returned ConfigError
	rather than a process-aborting CHECK, since a Go library has no business
	crash-aborting its caller's process directly -- see DESIGN.md).
*/

type lane int

const (
	putLane lane = iota
	getLane
)

type asyncSlot struct {
	mu sync.Mutex

	put fifo
	get fifo

	current    lane
	counter    int
	firstDrain bool
}

func newAsyncSlot() *asyncSlot {
	return &asyncSlot{current: putLane, firstDrain: true}
}

type AsyncQueue struct {
	keys  *keyTable
	slots []*asyncSlot
	n     int

	slotsMu sync.RWMutex
	cursor  int
}

/*
	NewAsyncQueue builds the queue for a deployment of numMemServers memory
	servers -- N in the state machine above.
*/

func NewAsyncQueue(numMemServers int) *AsyncQueue {
	return &AsyncQueue{keys: newKeyTable(), n: numMemServers}
}

/*
	Enqueue routes tag's payload into the PUT or GET lane of its key's slot.
	A lane already holding N messages is a caller bug -- each memory server
	should have at most one outstanding request of each kind per key at a
	time -- and is reported as a ConfigError rather than silently dropped or
	blocked.
*/

func (q *AsyncQueue) Enqueue(tag wire.MessageKind, payload []byte) error {
	key, keyErr := wire.ExtractKey(tag, payload)
	if keyErr != nil { return keyErr }

	idx := q.keys.resolve(key, func() {
		q.slotsMu.Lock()
		q.slots = append(q.slots, newAsyncSlot())
		q.slotsMu.Unlock()
	})

	q.slotsMu.RLock()
	slot := q.slots[idx]
	q.slotsMu.RUnlock()

	slot.mu.Lock()
	defer slot.mu.Unlock()

	switch tag {
		case wire.PutRequest:
			if slot.put.len() >= q.n {
				return ferrors.NewConfigError(fmt.Sprintf("async queue overflow: put lane for key %q already holds %d messages", key, q.n))
			}
			slot.put.push(newItem(tag, payload))
		case wire.GetRequest:
			if slot.get.len() >= q.n {
				return ferrors.NewConfigError(fmt.Sprintf("async queue overflow: get lane for key %q already holds %d messages", key, q.n))
			}
			slot.get.push(newItem(tag, payload))
		default:
			return ferrors.NewConfigError(fmt.Sprintf("async queue: unexpected tag %s, only PUT/GET requests are queued", tag))
	}

	return nil
}

/*
	Next rotates across slots one visit at a time. At each slot, it drains
	one message from the current lane if that lane is non-empty, applying
	the first-drain special case (flip PUT->GET immediately after the very
	first successful drain at that slot) and the N-counted alternation
	thereafter.
*/

func (q *AsyncQueue) Next(stop <-chan struct{}) (Item, bool) {
	for {
		select {
			case <-stop: return Item{}, false
			default:
		}

		count := q.keys.slotCount()
		if count == 0 {
			time.Sleep(SleepInterval)
			continue
		}

		q.slotsMu.RLock()
		idx := q.cursor % count
		slot := q.slots[idx]
		q.slotsMu.RUnlock()

		item, ok := q.drain(slot)

		q.cursor = (q.cursor + 1) % count

		if ok { return item, true }

		time.Sleep(SleepInterval)
	}
}

func (q *AsyncQueue) drain(slot *asyncSlot) (Item, bool) {
	slot.mu.Lock()
	defer slot.mu.Unlock()

	var current *fifo
	if slot.current == putLane { current = &slot.put } else { current = &slot.get }

	item, ok := current.pop()
	if !ok { return Item{}, false }

	slot.counter++

	if slot.firstDrain {
		slot.current = getLane
		slot.counter = 0
		slot.firstDrain = false
	} else if slot.counter == q.n {
		if slot.current == putLane { slot.current = getLane } else { slot.current = putLane }
		slot.counter = 0
	}

	return item, true
}
