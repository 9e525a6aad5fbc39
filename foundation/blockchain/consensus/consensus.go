// Package consensus implements the longest valid chain rule used to settle
// disagreements between nodes.
package consensus

import (
	"context"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/chain"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// EventHandler defines a function that is called when events
// occur while resolving conflicts.
type EventHandler func(v string, args ...any)

// Fetcher represents the behavior required to retrieve the chain a peer
// is currently serving.
type Fetcher interface {
	FetchChain(ctx context.Context, pr peer.Peer) (chain.ChainData, error)
}

// result is what came back from a single peer.
type result struct {
	peer peer.Peer
	data chain.ChainData
	err  error
}

// Resolve asks every peer for its chain and replaces the local chain with the
// longest candidate that is strictly longer than the local chain and fully
// valid. Peers that fail to answer, answer with malformed records, or serve
// an invalid chain are skipped. When two candidates have the same length the
// one from the peer listed first wins. It reports whether the local chain was
// replaced.
func Resolve(ctx context.Context, fetcher Fetcher, peers []peer.Peer, ch *chain.Chain, ev EventHandler) bool {
	if ev == nil {
		ev = func(string, ...any) {}
	}

	ev("consensus: Resolve: started: peers[%d]", len(peers))
	defer ev("consensus: Resolve: completed")

	results := fetchAll(ctx, fetcher, peers)

	var best []chain.Block
	bestLen := ch.Length()

	for _, res := range results {
		if res.err != nil {
			ev("consensus: Resolve: peer[%s]: ERROR: %s", res.peer, res.err)
			continue
		}

		if res.data.Length != len(res.data.Chain) {
			ev("consensus: Resolve: peer[%s]: claimed length[%d] doesn't match blocks[%d]", res.peer, res.data.Length, len(res.data.Chain))
			continue
		}

		if len(res.data.Chain) <= bestLen {
			ev("consensus: Resolve: peer[%s]: length[%d] not longer than best[%d]", res.peer, len(res.data.Chain), bestLen)
			continue
		}

		blocks, err := chain.ToBlocks(res.data.Chain)
		if err != nil {
			ev("consensus: Resolve: peer[%s]: malformed chain: %s", res.peer, err)
			continue
		}

		if !ch.IsValidChain(blocks) {
			ev("consensus: Resolve: peer[%s]: invalid chain of length[%d]", res.peer, len(blocks))
			continue
		}

		ev("consensus: Resolve: peer[%s]: new best candidate: length[%d]", res.peer, len(blocks))
		best = blocks
		bestLen = len(blocks)
	}

	if best == nil {
		ev("consensus: Resolve: local chain is authoritative")
		return false
	}

	// The chain may have grown while peers were being queried. Replace
	// checks the length and validity again under the chain's lock.
	if !ch.Replace(best) {
		ev("consensus: Resolve: WARNING: candidate no longer longer than local chain")
		return false
	}

	return true
}

// fetchAll queries the peers concurrently and returns the results in the
// order the peers were provided.
func fetchAll(ctx context.Context, fetcher Fetcher, peers []peer.Peer) []result {
	results := make([]result, len(peers))

	var wg sync.WaitGroup
	wg.Add(len(peers))

	for i, pr := range peers {
		go func() {
			defer wg.Done()
			data, err := fetcher.FetchChain(ctx, pr)
			results[i] = result{peer: pr, data: data, err: err}
		}()
	}

	wg.Wait()

	return results
}
