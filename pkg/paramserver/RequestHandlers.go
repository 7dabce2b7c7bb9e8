package paramserver

import "github.com/lapis-ps/paramserver/pkg/ferrors"
import "github.com/lapis-ps/paramserver/pkg/handlers"
import "github.com/lapis-ps/paramserver/pkg/peer"
import "github.com/lapis-ps/paramserver/pkg/utils"
import "github.com/lapis-ps/paramserver/pkg/wire"


//=========================================== Processor-side Request Dispatch


/*
	registerRequestHandlers wires the processor loop's two dispatch
	functions (spec.md §4.F): PUT_REQUEST installs or merges a key's value
	through the handler, GET_REQUEST materializes a read response and
	sends it back to the requester.
*/

func (ps *ParamServer) registerRequestHandlers() {
	ps.Engine.RegisterRequestHandler(wire.PutRequest, ps.handlePut)
	ps.Engine.RegisterRequestHandler(wire.GetRequest, ps.handleGet)
}

/*
	registerCallbacks installs simple logging callbacks for the urgent,
	non-request kinds (spec.md §4.F: "used for urgent kinds like shard
	assignment") -- coordinator/worker choreography itself is out of
	scope, but the core still exposes the hook these kinds are meant to
	drive.
*/

func (ps *ParamServer) registerCallbacks() {
	ps.Engine.RegisterCallback(wire.ShardAssignment, func(src peer.PeerID, payload []byte) {
		Log.Info("shard assignment received from", int32(src), "(", len(payload), "bytes)")
	})

	ps.Engine.RegisterCallback(wire.RegisterWorker, func(src peer.PeerID, payload []byte) {
		Log.Info("worker registered from", int32(src))
	})

	ps.Engine.RegisterCallback(wire.WorkerShutdown, func(src peer.PeerID, payload []byte) {
		Log.Info("worker shutdown notice from", int32(src))
	})
}

/*
	handlePut decodes a PutRequestPayload and drives the handler: a key
	seen for the first time is installed via Handler.Put; a key already in
	the table is merged via Handler.Update, since PUT_REQUEST is reused
	for updates (spec.md §6). No response is sent -- PutRequestPayload
	carries no source, matching a fire-and-forget push.
*/

func (ps *ParamServer) handlePut(payload []byte) error {
	req, decodeErr := utils.DecodeBytesToStruct[wire.PutRequestPayload](payload)
	if decodeErr != nil { return ferrors.NewProtocolError(int32(wire.PutRequest), decodeErr.Error()) }

	incoming, vecErr := utils.DecodeBytesToStruct[handlers.Vector](req.Value)
	if vecErr != nil { return ferrors.NewProtocolError(int32(wire.PutRequest), vecErr.Error()) }

	entry := ps.Table.resolve(req.Key)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	var next handlers.Value
	var applyErr error

	if entry.step == 0 && entry.value.Params == nil {
		next, applyErr = ps.Handler.Put(req.Key, entry.value, handlers.Value{Params: *incoming})
	} else {
		entry.step++
		next, applyErr = ps.Handler.Update(entry.step, entry.value, handlers.Value{Params: *incoming})
	}

	if applyErr != nil { return applyErr }

	entry.value = next

	if ps.Handler.CheckpointNow(req.Key, entry.step) {
		if recordErr := ps.Ledger.Record(req.Key, entry.step); recordErr != nil {
			Log.Error("checkpoint record for", req.Key, "failed:", recordErr.Error())
		}
	}

	return nil
}

/*
	handleGet decodes a GetRequestPayload, materializes a read response
	through the handler, and sends GET_RESPONSE back to Source -- the only
	request-queue path that produces a reply, since GetRequestPayload is
	the only request schema carrying a source rank.
*/

func (ps *ParamServer) handleGet(payload []byte) error {
	req, decodeErr := utils.DecodeBytesToStruct[wire.GetRequestPayload](payload)
	if decodeErr != nil { return ferrors.NewProtocolError(int32(wire.GetRequest), decodeErr.Error()) }

	entry := ps.Table.resolve(req.Key)

	entry.mu.Lock()
	stored := entry.value
	found := stored.Params != nil
	entry.mu.Unlock()

	response, getErr := ps.Handler.Get(req.Key, stored)
	if getErr != nil { return getErr }

	encoded, encodeErr := utils.EncodeStructToBytes[handlers.Vector](response.Params)
	if encodeErr != nil { return encodeErr }

	respPayload, respErr := utils.EncodeStructToBytes[wire.GetResponsePayload](wire.GetResponsePayload{
		Key:   req.Key,
		Value: encoded,
		Found: found,
	})
	if respErr != nil { return respErr }

	ps.Engine.Send(peer.PeerID(req.Source), wire.GetResponse, respPayload)

	return nil
}
