package paramserver

import "time"

import "github.com/lapis-ps/paramserver/pkg/stats"


//=========================================== Depth Gauge Logging


/*
	startStatsLoop periodically snapshots this rank's Engine depth gauges
	and logs them -- the running-service analogue of RaftService.InitStats
	/RepLogApply's on-demand stats.CalculateCurrentStats calls, generalized
	from a one-shot/on-decision snapshot into a steady heartbeat since this
	domain has no WAL-backed stats bucket to persist into (spec.md §1
	non-goals) and no snapshot-trigger decision point to recompute stats
	at -- logging on an interval is the simplest analogue that still
	surfaces the gauges Engine.InFlightCount/ResponsePoolDepth exist for.
*/

func (ps *ParamServer) startStatsLoop() {
	ps.statsDone.Add(1)

	go func() {
		defer ps.statsDone.Done()

		ticker := time.NewTicker(ps.statsInterval)
		defer ticker.Stop()

		for {
			select {
				case <-ps.statsStop:
					return
				case <-ticker.C:
					snapshot, calcErr := stats.CalculateCurrentStats(ps.Engine)
					if calcErr != nil {
						stats.Log.Error("unable to calculate current stats:", calcErr.Error())
						continue
					}

					stats.Log.Info("in-flight sends", snapshot.InFlightSends, "response pool depth", snapshot.ResponsePoolDepth, "at", snapshot.Timestamp)
			}
		}
	}()
}
