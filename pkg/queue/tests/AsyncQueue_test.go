package queuetests

import "testing"

import "github.com/lapis-ps/paramserver/pkg/ferrors"
import "github.com/lapis-ps/paramserver/pkg/queue"
import "github.com/lapis-ps/paramserver/pkg/utils"
import "github.com/lapis-ps/paramserver/pkg/wire"


func getPayload(t *testing.T, key string) []byte {
	encoded, err := utils.EncodeStructToBytes[wire.GetRequestPayload](wire.GetRequestPayload{Key: key})
	if err != nil { t.Fatalf("failed to encode get payload: %s", err.Error()) }
	return encoded
}

/*
	TestAsyncQueueFirstDrainFlipsLaneImmediately covers Q5/scenario 4: the
	very first PUT for a key installs the value and the queue immediately
	flips to GET, rather than draining N-1 more PUTs first.
*/

func TestAsyncQueueFirstDrainFlipsLaneImmediately(t *testing.T) {
	q := queue.NewAsyncQueue(2)

	if err := q.Enqueue(wire.PutRequest, putPayload(t, "k")); err != nil { t.Fatalf("enqueue put: %s", err.Error()) }
	if err := q.Enqueue(wire.GetRequest, getPayload(t, "k")); err != nil { t.Fatalf("enqueue get: %s", err.Error()) }

	stop := make(chan struct{})
	defer close(stop)

	item, ok := q.Next(stop)
	if !ok { t.Fatalf("expected an item") }

	t.Logf("first drained tag: %s", item.Tag.String())
	if item.Tag != wire.PutRequest {
		t.Errorf("expected the priming PUT to drain first, got %s", item.Tag.String())
	}

	item, ok = q.Next(stop)
	if !ok { t.Fatalf("expected a second item") }

	t.Logf("second drained tag: %s", item.Tag.String())
	if item.Tag != wire.GetRequest {
		t.Errorf("expected the lane to have flipped to GET immediately after the first drain, got %s", item.Tag.String())
	}
}

/*
	TestAsyncQueueAlternatesInBurstsOfN covers the steady-state state
	machine: after priming, N gets drain before switching back to puts.
*/

func TestAsyncQueueAlternatesInBurstsOfN(t *testing.T) {
	n := 3
	q := queue.NewAsyncQueue(n)

	if err := q.Enqueue(wire.PutRequest, putPayload(t, "k")); err != nil { t.Fatalf("enqueue priming put: %s", err.Error()) }

	stop := make(chan struct{})
	defer close(stop)

	primed, ok := q.Next(stop)
	if !ok || primed.Tag != wire.PutRequest { t.Fatalf("priming drain did not behave as expected") }

	for i := 0; i < n; i++ {
		if err := q.Enqueue(wire.GetRequest, getPayload(t, "k")); err != nil { t.Fatalf("enqueue get %d: %s", i, err.Error()) }
	}
	if err := q.Enqueue(wire.PutRequest, putPayload(t, "k")); err != nil { t.Fatalf("enqueue next put: %s", err.Error()) }

	for i := 0; i < n; i++ {
		item, ok := q.Next(stop)
		if !ok { t.Fatalf("expected drain %d", i) }
		if item.Tag != wire.GetRequest {
			t.Errorf("expected %d consecutive GETs before the lane flips back, drain %d was %s", n, i, item.Tag.String())
		}
	}

	item, ok := q.Next(stop)
	if !ok { t.Fatalf("expected drain after the N GETs") }
	if item.Tag != wire.PutRequest {
		t.Errorf("expected the lane to flip back to PUT after draining exactly %d GETs, got %s", n, item.Tag.String())
	}
}

/*
	TestAsyncQueueOverflowIsConfigError covers the CHECK_LT-translated
	overflow invariant: a lane already holding N messages must fail
	Enqueue with a ConfigError rather than silently growing unbounded.
*/

func TestAsyncQueueOverflowIsConfigError(t *testing.T) {
	n := 1
	q := queue.NewAsyncQueue(n)

	if err := q.Enqueue(wire.PutRequest, putPayload(t, "k")); err != nil { t.Fatalf("enqueue first put: %s", err.Error()) }

	err := q.Enqueue(wire.PutRequest, putPayload(t, "k"))
	t.Logf("overflow error: %v", err)
	if err == nil {
		t.Fatalf("expected the second PUT on an already-full lane to fail")
	}
	if _, ok := err.(*ferrors.ConfigError); !ok {
		t.Errorf("expected a *ferrors.ConfigError, got %T", err)
	}
}
