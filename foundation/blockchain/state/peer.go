package state

import (
	"context"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/consensus"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// RegisterPeer adds the node at the specified address to the set of known
// peers. The bool reports whether the peer was new.
func (s *State) RegisterPeer(address string) (peer.Peer, bool, error) {
	pr, err := peer.New(address)
	if err != nil {
		return peer.Peer{}, false, err
	}

	if pr.Match(s.host) {
		return peer.Peer{}, false, fmt.Errorf("peer %s is this node", pr)
	}

	added := s.knownPeers.Add(pr)
	if added {
		s.evHandler("state: RegisterPeer: added peer[%s]: total[%d]", pr, s.knownPeers.Count())
	}

	return pr, added, nil
}

// RemoveKnownPeer drops the peer from the set of known peers.
func (s *State) RemoveKnownPeer(pr peer.Peer) {
	s.knownPeers.Remove(pr)
}

// CountKnownPeers returns the number of registered peers.
func (s *State) CountKnownPeers() int {
	return s.knownPeers.Count()
}

// NetRequestPeerStatus asks the peer for its status and adds any peers it
// knows about to this node's set.
func (s *State) NetRequestPeerStatus(ctx context.Context, pr peer.Peer) (peer.PeerStatus, error) {
	s.evHandler("state: NetRequestPeerStatus: started: %s", pr)
	defer s.evHandler("state: NetRequestPeerStatus: completed: %s", pr)

	ps, err := s.fetcher.FetchStatus(ctx, pr)
	if err != nil {
		return peer.PeerStatus{}, err
	}

	for _, reported := range ps.KnownPeers {
		known, err := peer.New(reported.Host)
		if err != nil {
			s.evHandler("state: NetRequestPeerStatus: peer-node[%s]: skipping peer[%q]: %s", pr, reported.Host, err)
			continue
		}
		if known.Match(s.host) {
			continue
		}
		if s.knownPeers.Add(known) {
			s.evHandler("state: NetRequestPeerStatus: adding peer-node[%s]", known)
		}
	}

	s.evHandler("state: NetRequestPeerStatus: peer-node[%s]: latest-blkidx[%d]: peer-list[%s]", pr, ps.LatestBlockIndex, ps.KnownPeers)

	return ps, nil
}

// ResolveConflicts queries every known peer and adopts the longest valid
// chain if it is longer than the local one. It reports whether the local
// chain was replaced.
func (s *State) ResolveConflicts(ctx context.Context) bool {
	replaced := consensus.Resolve(ctx, s.fetcher, s.RetrieveKnownPeers(), s.chain, consensus.EventHandler(s.evHandler))

	if replaced {
		latest := s.chain.LatestBlock()
		s.evHandler("viewer: chain replaced: length[%d]: latest[%s]", s.chain.Length(), latest.Hash)
	}

	return replaced
}
