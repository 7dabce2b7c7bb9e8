package stats

import "time"

import "github.com/lapis-ps/paramserver/pkg/engine"


/*
	CalculateCurrentStats snapshots e's depth gauges -- the in-flight send
	count and the response pool depth -- the way the teacher's version
	snapshotted syscall.Statfs for a replicated log's disk usage.
*/

func CalculateCurrentStats(e *engine.Engine) (*Stats, error) {
	currTime := time.Now()
	formattedTime := currTime.Format(time.RFC3339)

	return &Stats{
		InFlightSends:     e.InFlightCount(),
		ResponsePoolDepth: e.ResponsePoolDepth(),
		Timestamp:         formattedTime,
	}, nil
}
