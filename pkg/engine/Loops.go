package engine

import "time"

import "github.com/lapis-ps/paramserver/pkg/ferrors"
import "github.com/lapis-ps/paramserver/pkg/peer"
import "github.com/lapis-ps/paramserver/pkg/wire"


//=========================================== Transceiver / Processor Loops


/*
	transceiverLoop is component F's transceiver thread: probe for any
	inbound envelope; on a hit, receive it and route PUT/GET requests to the
	request queue, everything else to the response pool keyed by
	(tag, source); invoke the per-tag callback if one is registered; reap
	completed in-flight sends; sleep if nothing was available.
*/

func (e *Engine) transceiverLoop() {
	defer e.stopped.Done()

	for {
		select {
			case <-e.stop: return
			default:
		}

		src, kind, ok := e.transport.Probe()
		if ok {
			payload, recvErr := e.transport.Recv(src)
			if recvErr != nil {
				Log.Warn("recv from", int32(src), "failed:", recvErr.Error())
			} else {
				e.route(src, kind, payload)
				e.invokeCallback(src, kind, payload)
			}
		}

		e.reapInFlight()

		if !ok { time.Sleep(e.sleepInterval) }
	}
}

/*
	route sends a PUT_REQUEST/GET_REQUEST envelope into the request queue;
	every other kind lands in the response pool, keyed by (kind, src).
	Enqueue only ever fails with a ferrors.ProtocolError (payload doesn't
	parse against its tag's schema) or a ferrors.ConfigError (async-queue
	overflow, or an unexpected tag reaching the queue) -- both are
	terminal per spec.md §7; there is no drop path for a malformed or
	unbounded request (spec.md §3).
*/

func (e *Engine) route(src peer.PeerID, kind wire.MessageKind, payload []byte) {
	if kind.IsRequest() {
		if enqueueErr := e.queue.Enqueue(kind, payload); enqueueErr != nil {
			switch enqueueErr.(type) {
				case *ferrors.ProtocolError, *ferrors.ConfigError:
					Log.Fatal("request from", int32(src), "tag", kind.String(), ":", enqueueErr.Error())
				default:
					Log.Error("dropping request from", int32(src), "tag", kind.String(), ":", enqueueErr.Error())
			}
		}
		return
	}

	e.pool.Deliver(kind, src, payload)
}

func (e *Engine) invokeCallback(src peer.PeerID, kind wire.MessageKind, payload []byte) {
	e.callbacksMu.RLock()
	fn, ok := e.callbacks[kind]
	e.callbacksMu.RUnlock()

	if ok { fn(src, payload) }
}

/*
	reapInFlight removes completed sends from the in-flight set without
	blocking -- the Go analogue of CollectActive's MPI_Test sweep. A send
	that errored after exhausting retries is logged once here and dropped;
	its PendingSend.Wait() already observed the error when it fired.
*/

func (e *Engine) reapInFlight() {
	e.inFlightMu.Lock()
	defer e.inFlightMu.Unlock()

	remaining := e.inFlight[:0]
	for _, pending := range e.inFlight {
		select {
			case <-pending.Done():
				if err := pending.Err(); err != nil { Log.Warn("send permanently failed:", err.Error()) }
			default:
				remaining = append(remaining, pending)
		}
	}

	e.inFlight = remaining
}

/*
	processorLoop is component F's processor thread: pull the next envelope
	from the request queue and invoke the registered handler for its tag.
	Handlers are registered once at startup via RegisterRequestHandler.
*/

func (e *Engine) processorLoop() {
	defer e.stopped.Done()

	for {
		item, ok := e.queue.Next(e.stop)
		if !ok { return }

		e.requestHandlersMu.RLock()
		fn, handlerOk := e.requestHandlers[item.Tag]
		e.requestHandlersMu.RUnlock()

		if !handlerOk {
			Log.Warn("no request handler registered for tag", item.Tag.String())
			continue
		}

		if dispatchErr := fn(item.Payload); dispatchErr != nil {
			switch dispatchErr.(type) {
				case *ferrors.ProtocolError, *ferrors.ConfigError:
					Log.Fatal("request handler for", item.Tag.String(), ":", dispatchErr.Error())
				default:
					Log.Error("request handler for", item.Tag.String(), "failed:", dispatchErr.Error())
			}
		}
	}
}
