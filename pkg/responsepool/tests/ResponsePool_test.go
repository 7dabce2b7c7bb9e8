package responsepooltests

import "testing"
import "time"

import "github.com/lapis-ps/paramserver/pkg/peer"
import "github.com/lapis-ps/paramserver/pkg/responsepool"
import "github.com/lapis-ps/paramserver/pkg/wire"


func TestPollIsFIFOPerSource(t *testing.T) {
	pool := responsepool.New()

	pool.Deliver(wire.GetResponse, peer.PeerID(1), []byte("first"))
	pool.Deliver(wire.GetResponse, peer.PeerID(1), []byte("second"))

	payload, ok := pool.Poll(wire.GetResponse, peer.PeerID(1))
	t.Logf("first poll: %q, ok=%v", payload, ok)
	if !ok || string(payload) != "first" {
		t.Errorf("expected FIFO order, got %q", payload)
	}

	payload, ok = pool.Poll(wire.GetResponse, peer.PeerID(1))
	if !ok || string(payload) != "second" {
		t.Errorf("expected second delivery next, got %q", payload)
	}

	_, ok = pool.Poll(wire.GetResponse, peer.PeerID(1))
	if ok { t.Errorf("expected the FIFO to be drained") }
}

/*
	TestReadAnyScansSourcesAscending covers spec.md's ANY-source Read
	contract: ascending rank order, first pending source wins.
*/

func TestReadAnyScansSourcesAscending(t *testing.T) {
	pool := responsepool.New()

	pool.Deliver(wire.SyncReply, peer.PeerID(3), []byte("from-3"))
	pool.Deliver(wire.SyncReply, peer.PeerID(1), []byte("from-1"))

	stop := make(chan struct{})
	defer close(stop)

	payload, src, ok := pool.Read(wire.SyncReply, nil, stop)
	t.Logf("read from %d: %q", int32(src), payload)
	if !ok || src != peer.PeerID(1) {
		t.Errorf("expected ascending scan to return source 1 first, got %d", int32(src))
	}

	payload, src, ok = pool.Read(wire.SyncReply, nil, stop)
	if !ok || src != peer.PeerID(3) {
		t.Errorf("expected source 3 next, got %d (%q)", int32(src), payload)
	}
}

func TestWaitForSyncCountsAcrossSources(t *testing.T) {
	pool := responsepool.New()
	stop := make(chan struct{})
	defer close(stop)

	go func() {
		time.Sleep(5 * time.Millisecond)
		pool.Deliver(wire.SyncReply, peer.PeerID(0), []byte{})
		pool.Deliver(wire.SyncReply, peer.PeerID(1), []byte{})
	}()

	ok := pool.WaitForSync(wire.SyncReply, 2, stop)
	if !ok { t.Errorf("expected WaitForSync to observe both replies") }
}

func TestWaitForSyncInterruptedByStop(t *testing.T) {
	pool := responsepool.New()
	stop := make(chan struct{})

	done := make(chan bool)
	go func() { done <- pool.WaitForSync(wire.SyncReply, 3, stop) }()

	time.Sleep(5 * time.Millisecond)
	close(stop)

	select {
		case ok := <-done:
			if ok { t.Errorf("expected WaitForSync to report false once stop fired before count was reached") }
		case <-time.After(time.Second):
			t.Fatalf("WaitForSync did not return after stop was closed")
	}
}
