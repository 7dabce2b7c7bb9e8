package main

import "os"

import "github.com/lapis-ps/paramserver/pkg/clog"
import "github.com/lapis-ps/paramserver/pkg/connpool"
import "github.com/lapis-ps/paramserver/pkg/handlers"
import "github.com/lapis-ps/paramserver/pkg/paramserver"
import "github.com/lapis-ps/paramserver/pkg/peer"
import "github.com/lapis-ps/paramserver/pkg/utils"


const NAME = "Main"

var Log = clog.NewCustomLog(NAME)


func main() {
	hostname, hostErr := os.Hostname()
	if hostErr != nil { Log.Fatal("unable to get hostname") }

	peersList := []*peer.Peer{
		{ ID: 0, Address: "psrv1:9001" },
		{ ID: 1, Address: "psrv2:9001" },
		{ ID: 2, Address: "psrv3:9001" },
		{ ID: 3, Address: "psrv4:9001" }, // coordinator -- excluded from Engine.Broadcast
	}

	selfFilter := func(p *peer.Peer) bool { return p.Address == hostname+":9001" }
	selves := utils.Filter[*peer.Peer](peersList, selfFilter)
	if len(selves) != 1 { Log.Fatal("could not uniquely resolve this host among configured peers") }

	opts := paramserver.ParamServerOpts{
		Self:          selves[0],
		Peers:         peersList,
		SyncUpdate:    false,
		NumMemServers: len(peersList) - 1,
		SleepInterval: 1,
		HandlerID:     handlers.SGDName,
		HandlerConfig: handlers.HandlerConfig{
			LearningRate:            0.01,
			Gamma:                   0.1,
			Momentum:                0.9,
			WeightDecay:             0.0001,
			LearningRateChange:      handlers.Step,
			LearningRateChangeSteps: 10000,
			CheckpointAfter:         1000,
			CheckpointFrequency:     500,
		},
		CheckpointName: hostname,
		ConnPoolOpts:   connpool.ConnectionPoolOpts{ MaxConn: 10 },
	}

	ps, psErr := paramserver.NewParamServer(opts)
	if psErr != nil { Log.Fatal("unable to start param server:", psErr.Error()) }

	Log.Info("param server listening as rank", int32(ps.Self.ID), "at", ps.Self.Address)

	select{}
}
