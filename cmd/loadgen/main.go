package main

import cryptoRand "crypto/rand"
import "fmt"
import mathRand "math/rand"
import "net"
import "os"
import "sync"
import "time"

import "github.com/lapis-ps/paramserver/pkg/clog"
import "github.com/lapis-ps/paramserver/pkg/connpool"
import "github.com/lapis-ps/paramserver/pkg/engine"
import "github.com/lapis-ps/paramserver/pkg/handlers"
import "github.com/lapis-ps/paramserver/pkg/peer"
import "github.com/lapis-ps/paramserver/pkg/transport"
import "github.com/lapis-ps/paramserver/pkg/utils"
import "github.com/lapis-ps/paramserver/pkg/wire"


//=========================================== Load Generator


/*
	loadgen drives PUT/GET traffic against a fixed set of param server
	ranks -- the engine-level analogue of scripts/SimulateClient.go's
	fan-out HTTP client, aimed at the gRPC transport/engine this domain
	uses instead of an HTTP statemachine endpoint.
*/

const NAME = "LoadGen"

var Log = clog.NewCustomLog(NAME)

const ClientRank peer.PeerID = 100
const VectorLength = 16
const NumWorkers = 8

func main() {
	hostname, hostErr := os.Hostname()
	if hostErr != nil { Log.Fatal("unable to get hostname") }

	memServers := []*peer.Peer{
		{ ID: 0, Address: "psrv1:9001" },
		{ ID: 1, Address: "psrv2:9001" },
		{ ID: 2, Address: "psrv3:9001" },
	}

	self := &peer.Peer{ ID: ClientRank, Address: hostname + ":9101" }
	allPeers := append(append([]*peer.Peer{}, memServers...), self)

	t := transport.NewTransport(transport.TransportOpts{
		Self:         self,
		Peers:        allPeers,
		ConnPoolOpts: connpool.ConnectionPoolOpts{ MaxConn: 10 },
	})

	listener, listenErr := net.Listen("tcp", self.Address)
	if listenErr != nil { Log.Fatal("unable to listen on", self.Address, ":", listenErr.Error()) }
	t.Listen(listener)

	e := engine.Init(engine.EngineOpts{
		Transport:     t,
		SyncUpdate:    false,
		NumMemServers: len(memServers),
	})

	e.RegisterCallback(wire.GetResponse, func(src peer.PeerID, payload []byte) {
		resp, decodeErr := utils.DecodeBytesToStruct[wire.GetResponsePayload](payload)
		if decodeErr != nil { Log.Warn("could not decode get response:", decodeErr.Error()); return }

		Log.Debug("get response for", resp.Key, "from", int32(src), "found:", resp.Found)
	})

	var workerWG sync.WaitGroup

	for i := 0; i < NumWorkers; i++ {
		workerWG.Add(1)

		go func(workerID int) {
			defer workerWG.Done()

			for {
				key := fmt.Sprintf("w%d-k%d", workerID, mathRand.Intn(64))
				dst := memServers[mathRand.Intn(len(memServers))].ID

				if mathRand.Intn(2) == 0 {
					sendPut(e, dst, key)
				} else {
					sendGet(e, dst, key)
				}

				time.Sleep(time.Duration(mathRand.Intn(50)+10) * time.Millisecond)
			}
		}(i)
	}

	workerWG.Wait()

	select{}
}

func randomVector(length int) handlers.Vector {
	seed := make([]byte, length*8)
	cryptoRand.Read(seed)

	vec := make(handlers.Vector, length)
	for i := range vec {
		vec[i] = mathRand.Float64()*2 - 1
	}

	return vec
}

func sendPut(e *engine.Engine, dst peer.PeerID, key string) {
	encoded, encodeErr := utils.EncodeStructToBytes[handlers.Vector](randomVector(VectorLength))
	if encodeErr != nil { Log.Warn("failed to encode vector:", encodeErr.Error()); return }

	payload, payloadErr := utils.EncodeStructToBytes[wire.PutRequestPayload](wire.PutRequestPayload{
		Key:   key,
		Shard: int32(dst),
		Value: encoded,
	})
	if payloadErr != nil { Log.Warn("failed to encode put request:", payloadErr.Error()); return }

	e.Send(dst, wire.PutRequest, payload)
}

func sendGet(e *engine.Engine, dst peer.PeerID, key string) {
	payload, payloadErr := utils.EncodeStructToBytes[wire.GetRequestPayload](wire.GetRequestPayload{
		Key:    key,
		Source: int32(ClientRank),
	})
	if payloadErr != nil { Log.Warn("failed to encode get request:", payloadErr.Error()); return }

	e.Send(dst, wire.GetRequest, payload)
}
