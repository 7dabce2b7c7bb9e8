package peer

import "github.com/lapis-ps/paramserver/pkg/utils"


//=========================================== Peer


/*
	PeerID is the rank identifier the transport contract requires
	(spec.md §6): an integer rank, stable for the lifetime of the process.
*/

type PeerID int32

/*
	Peer is the minimal addressing record the transport needs to dial a
	rank -- adapted from the teacher's system.System, stripped of the raft
	-specific term/log/status fields this domain has no use for (no leader
	election, no replicated log: spec.md's Non-goals exclude failure
	detection and dynamic membership, so there is no "Status" to track).
*/

type Peer struct {
	ID      PeerID
	Address string
}

/*
	Coordinator is the highest-rank peer, excluded from broadcasts
	(spec.md GLOSSARY).
*/

func Coordinator(size int) PeerID {
	return PeerID(size - 1)
}

func IsCoordinator(id PeerID, size int) bool {
	return id == Coordinator(size)
}

func FindByID(peers []*Peer, id PeerID) *Peer {
	found := utils.Filter[*Peer](peers, func(p *Peer) bool { return p.ID == id })
	if len(found) == 0 { return nil }
	return found[0]
}
