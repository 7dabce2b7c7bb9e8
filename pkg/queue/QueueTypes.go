package queue

import "sync"

import "github.com/lapis-ps/paramserver/pkg/clog"
import "github.com/lapis-ps/paramserver/pkg/wire"


//=========================================== Request Queue Types


const NAME = "Queue"

var Log = clog.NewCustomLog(NAME)

/*
	Item is one dequeued request, ready for dispatch to a handler.
*/

type Item struct {
	Tag     wire.MessageKind
	Payload []byte
}

func newItem(tag wire.MessageKind, payload []byte) Item {
	return Item{Tag: tag, Payload: payload}
}

/*
	fifo is an unbounded, lock-free-to-the-caller append/pop slice. Every
	queue type in this package guards a fifo with its own slot lock -- the
	structural lock (below) is only ever held to grow the slot table itself,
	mirroring the whole_queue_lock_/key_lock split in original_source's
	SyncRequestQueue/AsyncRequestQueue.
*/

type fifo struct {
	items []Item
}

func (q *fifo) push(item Item) {
	q.items = append(q.items, item)
}

func (q *fifo) pop() (Item, bool) {
	if len(q.items) == 0 { return Item{}, false }

	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

func (q *fifo) len() int { return len(q.items) }

/*
	keyTable resolves keys to slot indices, growing under a structural lock
	(spec.md §5: structural lock before any slot lock, never two slot locks
	at once). Shared by SyncQueue and AsyncQueue.
*/

type keyTable struct {
	structMu sync.Mutex
	index    map[string]int
	order    []string
}

func newKeyTable() *keyTable {
	return &keyTable{index: make(map[string]int)}
}

/*
	resolve returns the slot index for key, creating one (and calling
	onCreate to initialize slot-specific state) if key has never been seen.
*/

func (kt *keyTable) resolve(key string, onCreate func()) int {
	kt.structMu.Lock()
	defer kt.structMu.Unlock()

	if idx, ok := kt.index[key]; ok { return idx }

	idx := len(kt.order)
	kt.order = append(kt.order, key)
	kt.index[key] = idx
	onCreate()

	return idx
}

func (kt *keyTable) slotCount() int {
	kt.structMu.Lock()
	defer kt.structMu.Unlock()

	return len(kt.order)
}
