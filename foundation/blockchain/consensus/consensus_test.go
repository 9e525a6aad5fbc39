package consensus_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/chain"
	"github.com/ardanlabs/ledger/foundation/blockchain/consensus"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// fetcher serves canned chains keyed by peer host.
type fetcher struct {
	chains map[string]chain.ChainData
}

func (f fetcher) FetchChain(ctx context.Context, pr peer.Peer) (chain.ChainData, error) {
	cd, exists := f.chains[pr.Host]
	if !exists {
		return chain.ChainData{}, errors.New("connection refused")
	}
	return cd, nil
}

// newChain constructs a chain and mines n blocks, tagging transactions with
// the label so different chains diverge after genesis.
func newChain(t *testing.T, label string, n int) *chain.Chain {
	t.Helper()

	now := time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC)
	c, err := chain.New(chain.Config{
		Genesis: genesis.Genesis{
			Date:         time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
			Difficulty:   1,
			MiningReward: 100,
		},
		Clock: func() time.Time {
			now = now.Add(time.Second)
			return now
		},
	})
	if err != nil {
		t.Fatalf("Should be able to construct a chain: %v", err)
	}

	for i := range n {
		c.AddTransaction(chain.NewTx(label, "ale", float64(i+1)))
		if _, mined, err := c.Mine(context.Background(), label); err != nil || !mined {
			t.Fatalf("Should be able to mine block %d: mined[%v] err[%v]", i+1, mined, err)
		}
	}

	return c
}

func toChainData(blocks []chain.Block) chain.ChainData {
	records := make([]chain.BlockData, len(blocks))
	for i, block := range blocks {
		records[i] = chain.NewBlockData(block)
	}
	return chain.ChainData{Length: len(records), Chain: records}
}

func peers(t *testing.T, hosts ...string) []peer.Peer {
	t.Helper()

	var prs []peer.Peer
	for _, host := range hosts {
		pr, err := peer.New(host)
		if err != nil {
			t.Fatalf("Should be able to parse peer %q: %v", host, err)
		}
		prs = append(prs, pr)
	}
	return prs
}

// =============================================================================

func Test_Resolve(t *testing.T) {
	t.Log("Given the need to adopt the longest valid chain in the network.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen peers serve chains of length 5 and 4.", testID)
		{
			local := newChain(t, "local", 0)
			long := newChain(t, "alpha", 4)
			short := newChain(t, "beta", 3)

			f := fetcher{chains: map[string]chain.ChainData{
				"host1:9080": toChainData(long.Blocks()),
				"host2:9080": toChainData(short.Blocks()),
			}}

			if !consensus.Resolve(context.Background(), f, peers(t, "host1:9080", "host2:9080"), local, nil) {
				t.Fatalf("\t%s\tTest %d:\tShould replace the local chain.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould replace the local chain.", success, testID)

			if local.Length() != 5 || local.LatestBlock().Hash != long.LatestBlock().Hash {
				t.Fatalf("\t%s\tTest %d:\tShould hold the chain of length 5.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould hold the chain of length 5.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen peers serve chains no longer than the local one.", testID)
		{
			local := newChain(t, "local", 2)
			latest := local.LatestBlock().Hash

			f := fetcher{chains: map[string]chain.ChainData{
				"host1:9080": toChainData(newChain(t, "alpha", 1).Blocks()),
				"host2:9080": toChainData(newChain(t, "beta", 2).Blocks()),
			}}

			if consensus.Resolve(context.Background(), f, peers(t, "host1:9080", "host2:9080"), local, nil) {
				t.Fatalf("\t%s\tTest %d:\tShould keep the local chain.", failed, testID)
			}
			if local.LatestBlock().Hash != latest {
				t.Fatalf("\t%s\tTest %d:\tShould not change the local chain.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould keep the local chain.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the longest chain has been tampered with.", testID)
		{
			local := newChain(t, "local", 0)

			forged := newChain(t, "alpha", 5).Blocks()
			forged[3].Transactions[0].Amount = 1_000_000

			f := fetcher{chains: map[string]chain.ChainData{
				"host1:9080": toChainData(forged),
				"host2:9080": toChainData(newChain(t, "beta", 2).Blocks()),
			}}

			if !consensus.Resolve(context.Background(), f, peers(t, "host1:9080", "host2:9080"), local, nil) {
				t.Fatalf("\t%s\tTest %d:\tShould adopt the valid shorter chain.", failed, testID)
			}
			if local.Length() != 3 {
				t.Fatalf("\t%s\tTest %d:\tShould ignore the invalid chain, got length %d.", failed, testID, local.Length())
			}
			t.Logf("\t%s\tTest %d:\tShould ignore the invalid chain.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a peer can't be reached.", testID)
		{
			local := newChain(t, "local", 0)
			long := newChain(t, "alpha", 2)

			f := fetcher{chains: map[string]chain.ChainData{
				"host2:9080": toChainData(long.Blocks()),
			}}

			if !consensus.Resolve(context.Background(), f, peers(t, "host1:9080", "host2:9080"), local, nil) {
				t.Fatalf("\t%s\tTest %d:\tShould skip the failing peer.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould skip the failing peer.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a peer claims a length that doesn't match its blocks.", testID)
		{
			local := newChain(t, "local", 0)

			cd := toChainData(newChain(t, "alpha", 3).Blocks())
			cd.Length = 10

			f := fetcher{chains: map[string]chain.ChainData{"host1:9080": cd}}

			if consensus.Resolve(context.Background(), f, peers(t, "host1:9080"), local, nil) {
				t.Fatalf("\t%s\tTest %d:\tShould skip the inconsistent peer.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould skip the inconsistent peer.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen two peers serve valid chains of the same length.", testID)
		{
			local := newChain(t, "local", 0)
			first := newChain(t, "alpha", 2)
			second := newChain(t, "beta", 2)

			f := fetcher{chains: map[string]chain.ChainData{
				"host1:9080": toChainData(first.Blocks()),
				"host2:9080": toChainData(second.Blocks()),
			}}

			if !consensus.Resolve(context.Background(), f, peers(t, "host1:9080", "host2:9080"), local, nil) {
				t.Fatalf("\t%s\tTest %d:\tShould replace the local chain.", failed, testID)
			}
			if local.LatestBlock().Hash != first.LatestBlock().Hash {
				t.Fatalf("\t%s\tTest %d:\tShould keep the chain of the first peer listed.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould keep the chain of the first peer listed.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen there are no peers.", testID)
		{
			local := newChain(t, "local", 1)

			if consensus.Resolve(context.Background(), fetcher{}, nil, local, nil) {
				t.Fatalf("\t%s\tTest %d:\tShould keep the local chain.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould keep the local chain.", success, testID)
		}
	}
}
