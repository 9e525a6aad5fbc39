package peer_test

import (
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

func Test_CRUD(t *testing.T) {
	type table struct {
		name      string
		addresses []string
		unique    int
	}

	tt := []table{
		{
			name:      "basic",
			addresses: []string{"host1:9080", "host2:9080", "host3:9080"},
			unique:    3,
		},
		{
			name:      "duplicates",
			addresses: []string{"http://127.0.0.1:5001", "127.0.0.1:5001", "https://127.0.0.1:5001/v1/node/chain", "127.0.0.1:5002"},
			unique:    2,
		},
		{
			name:      "case",
			addresses: []string{"http://LocalHost:9080", "localhost:9080"},
			unique:    1,
		},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			ps := peer.NewPeerSet()

			for _, address := range tst.addresses {
				pr, err := peer.New(address)
				if err != nil {
					t.Fatalf("Test %s:\tShould be able to parse %q: %v", tst.name, address, err)
				}
				ps.Add(pr)
			}

			peers := ps.Copy("")
			if len(peers) != tst.unique {
				t.Logf("Test %s:\tgot: %d", tst.name, len(peers))
				t.Logf("Test %s:\texp: %d", tst.name, tst.unique)
				t.Fatalf("Test %s:\tShould get back the right peers.", tst.name)
			}

			peers = ps.Copy(peers[0].Host)
			if len(peers) != tst.unique-1 {
				t.Logf("Test %s:\tgot: %d", tst.name, len(peers))
				t.Logf("Test %s:\texp: %d", tst.name, tst.unique-1)
				t.Fatalf("Test %s:\tShould exclude the specified host.", tst.name)
			}

			if ps.Count() != tst.unique {
				t.Fatalf("Test %s:\tShould count the unique peers.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_New(t *testing.T) {
	type table struct {
		address string
		host    string
		fail    bool
	}

	tt := []table{
		{address: "http://127.0.0.1:5001", host: "127.0.0.1:5001"},
		{address: "127.0.0.1:5001/chain", host: "127.0.0.1:5001"},
		{address: " node-a:9080 ", host: "node-a:9080"},
		{address: "http://[::1]:9080", host: "[::1]:9080"},
		{address: "", fail: true},
		{address: "http://", fail: true},
		{address: ":9080", fail: true},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			pr, err := peer.New(tst.address)
			switch {
			case tst.fail && err == nil:
				t.Fatalf("Test %q:\tShould reject the address, got %q.", tst.address, pr.Host)
			case !tst.fail && err != nil:
				t.Fatalf("Test %q:\tShould accept the address: %v", tst.address, err)
			case !tst.fail && pr.Host != tst.host:
				t.Logf("Test %q:\tgot: %s", tst.address, pr.Host)
				t.Logf("Test %q:\texp: %s", tst.address, tst.host)
				t.Fatalf("Test %q:\tShould normalize the address.", tst.address)
			}
		}

		t.Run(tst.address, f)
	}
}
