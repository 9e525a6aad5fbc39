package state_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/chain"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/logger"
	"github.com/ardanlabs/ledger/foundation/validate"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const minerAddress = "0xFef311483Cc040e1A89fb9bb469eeB8A70935EF8"

func ifErrFailNow(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Error(err)
		t.FailNow()
	}
}

func newState(t *testing.T, host string) *state.State {
	t.Helper()

	log, err := logger.New("TEST")
	ifErrFailNow(t, err)
	t.Cleanup(func() { log.Sync() })

	ev := func(v string, args ...any) {
		log.Debugw(fmt.Sprintf(v, args...), "traceid", "00000000-0000-0000-0000-000000000000")
	}

	st, err := state.New(state.Config{
		MinerAddress: minerAddress,
		Host:         host,
		Genesis: genesis.Genesis{
			Date:         time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
			Difficulty:   1,
			MiningReward: 100,
		},
		KnownPeers:  peer.NewPeerSet(),
		PeerTimeout: time.Second,
		EvHandler:   ev,
	})
	ifErrFailNow(t, err)

	return st
}

// serve starts a fake peer whose private API serves the chain and status
// of the specified node state.
func serve(t *testing.T, st *state.State) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/node/chain", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(st.RetrieveChainData())
	})
	mux.HandleFunc("/v1/node/status", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(st.RetrieveStatus())
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

// =============================================================================

func Test_SubmitAndMine(t *testing.T) {
	t.Log("Given the need to submit and mine transactions through the node.")
	{
		st := newState(t, "127.0.0.1:9080")
		ctx := context.Background()

		testID := 0
		t.Logf("\tTest %d:\tWhen mining with nothing pending.", testID)
		{
			if _, err := st.MineNewBlock(ctx, minerAddress); !errors.Is(err, state.ErrNoTransactions) {
				t.Fatalf("\t%s\tTest %d:\tShould get the no transactions error: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get the no transactions error.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen submitting a malformed transaction.", testID)
		{
			_, err := st.SubmitTransaction(chain.Tx{Sender: "bill", Amount: -1})
			if !validate.IsFieldErrors(err) {
				t.Fatalf("\t%s\tTest %d:\tShould get field errors: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get field errors.", success, testID)

			fields := validate.GetFieldErrors(err).Fields()
			if _, exists := fields["recipient"]; !exists {
				t.Fatalf("\t%s\tTest %d:\tShould name the recipient field: %v", failed, testID, fields)
			}
			if _, exists := fields["amount"]; !exists {
				t.Fatalf("\t%s\tTest %d:\tShould name the amount field: %v", failed, testID, fields)
			}
			t.Logf("\t%s\tTest %d:\tShould name the failing fields.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen submitting and mining transactions.", testID)
		{
			for i := range 3 {
				n, err := st.SubmitTransaction(chain.NewTx("bill", "ale", float64(i)))
				ifErrFailNow(t, err)
				if n != i+1 {
					t.Fatalf("\t%s\tTest %d:\tShould report %d pending, got %d.", failed, testID, i+1, n)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould report the pending count.", success, testID)

			block, err := st.MineNewBlock(ctx, minerAddress)
			ifErrFailNow(t, err)

			if block.Index != 1 || len(block.Transactions) != 4 {
				t.Fatalf("\t%s\tTest %d:\tShould mine block 1 with the reward, got %+v.", failed, testID, block)
			}
			t.Logf("\t%s\tTest %d:\tShould mine block 1 with the reward.", success, testID)

			if len(st.RetrieveMempool()) != 0 || !st.IsChainValid() {
				t.Fatalf("\t%s\tTest %d:\tShould leave an empty pool and a valid chain.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould leave an empty pool and a valid chain.", success, testID)

			status := st.RetrieveStatus()
			if status.LatestBlockIndex != 1 || status.LatestBlockHash != block.Hash {
				t.Fatalf("\t%s\tTest %d:\tShould report the new block in the status.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould report the new block in the status.", success, testID)
		}
	}
}

func Test_RegisterPeer(t *testing.T) {
	t.Log("Given the need to register peers.")
	{
		st := newState(t, "127.0.0.1:9080")

		testID := 0
		t.Logf("\tTest %d:\tWhen registering the same node twice.", testID)
		{
			_, added, err := st.RegisterPeer("http://127.0.0.1:5001")
			ifErrFailNow(t, err)
			if !added {
				t.Fatalf("\t%s\tTest %d:\tShould add a new peer.", failed, testID)
			}

			_, added, err = st.RegisterPeer("127.0.0.1:5001")
			ifErrFailNow(t, err)
			if added || st.CountKnownPeers() != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould keep a single peer.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould keep a single peer.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen registering bad addresses.", testID)
		{
			if _, _, err := st.RegisterPeer(""); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould reject an empty address.", failed, testID)
			}
			if _, _, err := st.RegisterPeer("http://127.0.0.1:9080"); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould reject this node's own address.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject bad addresses.", success, testID)
		}
	}
}

func Test_ResolveConflicts(t *testing.T) {
	t.Log("Given the need to converge with peers over HTTP.")
	{
		ctx := context.Background()

		remote := newState(t, "remote:9080")
		for i := range 2 {
			_, err := remote.SubmitTransaction(chain.NewTx("carl", "dan", float64(i+1)))
			ifErrFailNow(t, err)
			_, err = remote.MineNewBlock(ctx, "")
			ifErrFailNow(t, err)
		}
		srv := serve(t, remote)

		testID := 0
		t.Logf("\tTest %d:\tWhen a peer holds a longer chain.", testID)
		{
			local := newState(t, "127.0.0.1:9080")

			_, err := local.SubmitTransaction(chain.NewTx("bill", "ale", 1))
			ifErrFailNow(t, err)

			_, _, err = local.RegisterPeer(srv.URL)
			ifErrFailNow(t, err)

			if !local.ResolveConflicts(ctx) {
				t.Fatalf("\t%s\tTest %d:\tShould adopt the peer chain.", failed, testID)
			}
			if local.RetrieveLatestBlock().Hash != remote.RetrieveLatestBlock().Hash {
				t.Fatalf("\t%s\tTest %d:\tShould hold the same latest block as the peer.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould adopt the peer chain.", success, testID)

			if len(local.RetrieveMempool()) != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould keep the pending transactions.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould keep the pending transactions.", success, testID)

			if local.ResolveConflicts(ctx) {
				t.Fatalf("\t%s\tTest %d:\tShould not replace an equal length chain.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not replace an equal length chain.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a peer is unreachable.", testID)
		{
			local := newState(t, "127.0.0.1:9080")

			_, _, err := local.RegisterPeer("127.0.0.1:1")
			ifErrFailNow(t, err)
			_, _, err = local.RegisterPeer(srv.URL)
			ifErrFailNow(t, err)

			if !local.ResolveConflicts(ctx) {
				t.Fatalf("\t%s\tTest %d:\tShould skip the unreachable peer.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould skip the unreachable peer.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen asking a peer for its status.", testID)
		{
			_, _, err := remote.RegisterPeer("10.0.0.7:9080")
			ifErrFailNow(t, err)

			local := newState(t, "127.0.0.1:9080")
			pr, _, err := local.RegisterPeer(srv.URL)
			ifErrFailNow(t, err)

			ps, err := local.NetRequestPeerStatus(ctx, pr)
			ifErrFailNow(t, err)

			if ps.LatestBlockIndex != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould get the peer's latest block, got %d.", failed, testID, ps.LatestBlockIndex)
			}
			t.Logf("\t%s\tTest %d:\tShould get the peer's latest block.", success, testID)

			if local.CountKnownPeers() != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould learn the peers the peer knows, got %d.", failed, testID, local.CountKnownPeers())
			}
			t.Logf("\t%s\tTest %d:\tShould learn the peers the peer knows.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a peer reports addresses in mixed forms.", testID)
		{
			mux := http.NewServeMux()
			mux.HandleFunc("/v1/node/status", func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(peer.PeerStatus{
					KnownPeers: []peer.Peer{
						{Host: "10.0.0.7:9080"},
						{Host: "HTTP://10.0.0.7:9080/"},
						{Host: "10.0.0.7:9080/v1"},
						{Host: ""},
						{Host: "127.0.0.1:9080"},
					},
				})
			})
			messy := httptest.NewServer(mux)
			defer messy.Close()

			local := newState(t, "127.0.0.1:9080")
			pr, _, err := local.RegisterPeer(messy.URL)
			ifErrFailNow(t, err)

			_, err = local.NetRequestPeerStatus(ctx, pr)
			ifErrFailNow(t, err)

			peers := local.RetrieveKnownPeers()
			if len(peers) != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould keep one entry per normalized host, got %v.", failed, testID, peers)
			}
			t.Logf("\t%s\tTest %d:\tShould keep one entry per normalized host.", success, testID)

			var found bool
			for _, p := range peers {
				if p.Host == "10.0.0.7:9080" {
					found = true
				}
			}
			if !found {
				t.Fatalf("\t%s\tTest %d:\tShould store the reported peer as host:port, got %v.", failed, testID, peers)
			}
			t.Logf("\t%s\tTest %d:\tShould store the reported peer as host:port.", success, testID)
		}
	}
}
