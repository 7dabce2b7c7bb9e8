package stats

import "github.com/lapis-ps/paramserver/pkg/clog"


//=========================================== Engine Stats Types


const NAME = "Stats"

var Log = clog.NewCustomLog(NAME)

/*
	Stats is a point-in-time depth snapshot of one rank's Engine --
	repurposed from the teacher's disk-usage Stats (AvailableDiskSpaceInBytes
	/TotalDiskSpaceInBytes/UsedDiskSpaceInBytes), which measured a concern
	this domain doesn't have a disk-backed table store for (spec.md §1
	non-goals). The depth gauges here are the ones the core itself can see:
	sends not yet reaped, and envelopes sitting unread in the response pool.
*/

type Stats struct {
	InFlightSends     int
	ResponsePoolDepth int
	Timestamp         string
}
