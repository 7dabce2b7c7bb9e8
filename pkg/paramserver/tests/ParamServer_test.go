package paramservertests

import "net"
import "os"
import "path/filepath"
import "testing"
import "time"

import "github.com/lapis-ps/paramserver/pkg/connpool"
import "github.com/lapis-ps/paramserver/pkg/engine"
import "github.com/lapis-ps/paramserver/pkg/handlers"
import "github.com/lapis-ps/paramserver/pkg/paramserver"
import "github.com/lapis-ps/paramserver/pkg/peer"
import "github.com/lapis-ps/paramserver/pkg/transport"
import "github.com/lapis-ps/paramserver/pkg/utils"
import "github.com/lapis-ps/paramserver/pkg/wire"


/*
	TestParamServerPutThenGetRoundTrips drives one real ParamServer (rank
	0) and a bare client engine (rank 1) over loopback gRPC: PUT installs a
	vector through the SGD handler, GET reads it back via the engine's
	response path -- the end-to-end exercise of
	registerRequestHandlers/handlePut/handleGet.
*/

func TestParamServerPutThenGetRoundTrips(t *testing.T) {
	serverListener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil { t.Fatalf("listen server: %s", err.Error()) }
	serverListener.Close() // just reserving an address; NewParamServer re-listens on it below

	clientListener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil { t.Fatalf("listen client: %s", err.Error()) }
	clientListener.Close() // just reserving an address; the client transport re-listens on it below

	serverPeer := &peer.Peer{ ID: 0, Address: serverListener.Addr().String() }
	clientPeer := &peer.Peer{ ID: 1, Address: clientListener.Addr().String() }
	allPeers := []*peer.Peer{serverPeer, clientPeer}

	checkpointName := "test-" + t.Name()
	homedir, _ := os.UserHomeDir()
	t.Cleanup(func() { os.Remove(filepath.Join(homedir, ".paramserver", checkpointName+"-checkpoints.db")) })

	ps, psErr := paramserver.NewParamServer(paramserver.ParamServerOpts{
		Self:          serverPeer,
		Peers:         allPeers,
		SyncUpdate:    true,
		HandlerID:     handlers.SGDName,
		HandlerConfig: handlers.HandlerConfig{LearningRate: 0.1, LearningRateChange: handlers.Fixed},
		CheckpointName: checkpointName,
		ConnPoolOpts:  connpool.ConnectionPoolOpts{MaxConn: 5},
	})
	if psErr != nil { t.Fatalf("new param server: %s", psErr.Error()) }
	defer ps.Shutdown()

	clientTransport := transport.NewTransport(transport.TransportOpts{
		Self: clientPeer, Peers: allPeers, ConnPoolOpts: connpool.ConnectionPoolOpts{MaxConn: 5},
	})

	clientReListener, listenErr := net.Listen("tcp", clientPeer.Address)
	if listenErr != nil { t.Fatalf("re-listen client: %s", listenErr.Error()) }
	clientTransport.Listen(clientReListener)

	clientEngine := engine.Init(engine.EngineOpts{Transport: clientTransport, SyncUpdate: true})
	defer clientEngine.Shutdown()

	responses := make(chan wire.GetResponsePayload, 4)
	clientEngine.RegisterCallback(wire.GetResponse, func(src peer.PeerID, payload []byte) {
		resp, decodeErr := utils.DecodeBytesToStruct[wire.GetResponsePayload](payload)
		if decodeErr != nil { t.Errorf("decode get response: %s", decodeErr.Error()); return }
		responses <- *resp
	})

	putVec, encodeErr := utils.EncodeStructToBytes[handlers.Vector](handlers.Vector{1, 2, 3})
	if encodeErr != nil { t.Fatalf("encode vector: %s", encodeErr.Error()) }

	putPayload, encodeErr := utils.EncodeStructToBytes[wire.PutRequestPayload](wire.PutRequestPayload{Key: "w", Value: putVec})
	if encodeErr != nil { t.Fatalf("encode put payload: %s", encodeErr.Error()) }

	putPending := clientEngine.Send(serverPeer.ID, wire.PutRequest, putPayload)
	if waitErr := putPending.Wait(); waitErr != nil { t.Fatalf("put send: %s", waitErr.Error()) }

	time.Sleep(50 * time.Millisecond) // let the server's processor loop drain the PUT before the GET races it

	getPayload, encodeErr := utils.EncodeStructToBytes[wire.GetRequestPayload](wire.GetRequestPayload{Key: "w", Source: int32(clientPeer.ID)})
	if encodeErr != nil { t.Fatalf("encode get payload: %s", encodeErr.Error()) }

	getPending := clientEngine.Send(serverPeer.ID, wire.GetRequest, getPayload)
	if waitErr := getPending.Wait(); waitErr != nil { t.Fatalf("get send: %s", waitErr.Error()) }

	select {
		case resp := <-responses:
			decodedVec, decodeErr := utils.DecodeBytesToStruct[handlers.Vector](resp.Value)
			if decodeErr != nil { t.Fatalf("decode response vector: %s", decodeErr.Error()) }

			t.Logf("get response: key=%s found=%v value=%v", resp.Key, resp.Found, *decodedVec)

			if !resp.Found { t.Errorf("expected the key installed by PUT to be found") }
			if len(*decodedVec) != 3 || (*decodedVec)[0] != 1 {
				t.Errorf("expected the installed vector [1 2 3] to round-trip, got %v", *decodedVec)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("never received a GET_RESPONSE")
	}
}
